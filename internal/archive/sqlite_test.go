package archive

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronzipp/among-llms/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.Save(ctx, Transcript{
		SessionID: "sess-1",
		Scenario:  "A lighthouse keepers' forum",
		Human:     "3",
		Won:       true,
		Lines:     []string{"[SCENARIO] A lighthouse keepers' forum", "You are [3]"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", got.SessionID)
	assert.Equal(t, "3", got.Human)
	assert.True(t, got.Won)
	assert.Equal(t, []string{"[SCENARIO] A lighthouse keepers' forum", "You are [3]"}, got.Lines)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestGetMissing(t *testing.T) {
	_, err := newTestStore(t).Get(context.Background(), "nope")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	base := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)

	_, err := s.Save(ctx, Transcript{SessionID: "old", Scenario: "x", Human: "1", Lines: []string{"a"}, CreatedAt: base})
	require.NoError(t, err)
	_, err = s.Save(ctx, Transcript{SessionID: "new", Scenario: "y", Human: "2", Lines: []string{"b"}, CreatedAt: base.Add(time.Hour)})
	require.NoError(t, err)

	list, err := s.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].SessionID)
	assert.Equal(t, "old", list[1].SessionID)
	assert.Nil(t, list[0].Lines)

	list, err = s.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
