package persona

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScenarioShape(t *testing.T) {
	s := New(1).Scenario()
	assert.True(t, strings.HasSuffix(s, "."))
	assert.Len(t, strings.Split(strings.TrimSuffix(s, "."), ". "), 2)
}

func TestSameSeedSameOutput(t *testing.T) {
	a, b := New(42), New(42)
	assert.Equal(t, a.Scenario(), b.Scenario())
	assert.Equal(t, a.Profiles(4), b.Profiles(4))
}

func TestNamesAreDistinct(t *testing.T) {
	g := New(3)
	names := g.Names(60)
	seen := make(map[string]bool)
	for _, n := range names {
		assert.False(t, seen[n], "duplicate name %s", n)
		seen[n] = true
	}
}

func TestPersonaMentionsEnglish(t *testing.T) {
	p := New(9).Persona()
	assert.True(t, strings.HasPrefix(p, "A "))
	assert.Contains(t, p, "English")
	assert.Contains(t, p, "years old")
}

func TestJoinItems(t *testing.T) {
	assert.Equal(t, "a", joinItems([]string{"a"}))
	assert.Equal(t, "a and b", joinItems([]string{"a", "b"}))
	assert.Equal(t, "a, b and c", joinItems([]string{"a", "b", "c"}))
}
