package roster

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aaronzipp/among-llms/internal/models"
)

func entry(n int) models.ContextEntry {
	return models.ContextEntry{Role: models.RoleInput, MessageID: strconv.Itoa(n)}
}

func TestWindowEvictsOldestFirst(t *testing.T) {
	w := NewWindow(3)
	for i := range 3 {
		_, evicted := w.Push(entry(i))
		assert.False(t, evicted)
	}
	assert.Equal(t, 3, w.Len())

	old, evicted := w.Push(entry(3))
	assert.True(t, evicted)
	assert.Equal(t, entry(0), old)
	assert.Equal(t, []models.ContextEntry{entry(1), entry(2), entry(3)}, w.Entries())
}

func TestWindowNeverExceedsCapacity(t *testing.T) {
	w := NewWindow(4)
	for i := range 50 {
		w.Push(entry(i))
		assert.LessOrEqual(t, w.Len(), w.Cap())
	}
	entries := w.Entries()
	assert.Len(t, entries, 4)
	assert.Equal(t, entry(46), entries[0])
	assert.Equal(t, entry(49), entries[3])
}

func TestWindowClearAndMinimumCapacity(t *testing.T) {
	w := NewWindow(0)
	assert.Equal(t, 1, w.Cap())
	w.Push(entry(1))
	w.Push(entry(2))
	assert.Equal(t, []models.ContextEntry{entry(2)}, w.Entries())

	w.Clear()
	assert.Zero(t, w.Len())
	assert.Empty(t, w.Entries())
}
