package vote

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronzipp/among-llms/internal/clock"
	"github.com/aaronzipp/among-llms/internal/models"
)

var t0 = time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)

func TestStartOnlyWhenIdle(t *testing.T) {
	p := NewProtocol(clock.NewManual(t0), time.Minute)
	assert.False(t, p.Active())
	assert.True(t, p.Start("alice"))
	assert.False(t, p.Start("bob"))

	st := p.Status()
	assert.True(t, st.Active)
	assert.Equal(t, "alice", st.Initiator)
	assert.Equal(t, t0, st.StartedAt)
	assert.Equal(t, t0.Add(time.Minute), st.EndsAt)
}

func TestCastOneBallotPerVoter(t *testing.T) {
	p := NewProtocol(clock.NewManual(t0), time.Minute)
	assert.False(t, p.Cast("alice", "bob"), "idle protocol rejects ballots")

	require.True(t, p.Start("alice"))
	assert.True(t, p.Cast("alice", "bob"))
	assert.False(t, p.Cast("alice", "carol"))
	assert.Equal(t, 1, p.TotalVotes())

	target, ok := p.VotedFor("alice")
	assert.True(t, ok)
	assert.Equal(t, "bob", target)
	assert.True(t, p.HasVoted("alice"))
	assert.False(t, p.HasVoted("carol"))
}

func TestEndReturnsTallyAndResets(t *testing.T) {
	clk := clock.NewManual(t0)
	p := NewProtocol(clk, time.Minute)

	_, err := p.End()
	assert.ErrorIs(t, err, models.ErrNotActive)

	require.True(t, p.Start("a"))
	p.Cast("a", "x")
	p.Cast("b", "x")
	p.Cast("c", "y")
	clk.Advance(10 * time.Second)

	res, err := p.End()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"x": 2, "y": 1}, res.Tally)
	assert.Equal(t, []Ballot{{"a", "x"}, {"b", "x"}, {"c", "y"}}, res.Ballots)
	assert.Equal(t, 3, res.Total())
	assert.Equal(t, "a", res.Initiator)
	assert.Equal(t, t0.Add(10*time.Second), res.EndedAt)

	assert.False(t, p.Active())
	assert.Equal(t, Status{}, p.Status())

	// a fresh cycle forgets prior ballots
	require.True(t, p.Start("b"))
	assert.Zero(t, p.TotalVotes())
	assert.True(t, p.Cast("a", "y"))
}

func TestExpired(t *testing.T) {
	clk := clock.NewManual(t0)
	p := NewProtocol(clk, time.Minute)
	assert.False(t, p.Expired(t0.Add(time.Hour)))

	require.True(t, p.Start("a"))
	assert.False(t, p.Expired(t0.Add(59*time.Second)))
	assert.True(t, p.Expired(t0.Add(time.Minute)))
}

func TestConcurrentCastsNeverTear(t *testing.T) {
	p := NewProtocol(nil, time.Minute)
	require.True(t, p.Start("v0"))

	var wg sync.WaitGroup
	for i := range 64 {
		voter := fmt.Sprintf("v%d", i)
		// every voter tries twice, only one ballot may land
		for range 2 {
			wg.Go(func() { p.Cast(voter, "x") })
		}
	}
	wg.Wait()

	assert.Equal(t, 64, p.TotalVotes())
	res, err := p.End()
	require.NoError(t, err)
	assert.Equal(t, 64, res.Tally["x"])
}

func TestReset(t *testing.T) {
	p := NewProtocol(nil, time.Minute)
	require.True(t, p.Start("a"))
	p.Cast("a", "b")
	p.Reset()
	assert.False(t, p.Active())
	assert.Zero(t, p.TotalVotes())
}

func TestWithdrawDropsBallotsByAndAgainst(t *testing.T) {
	p := NewProtocol(clock.NewManual(t0), time.Minute)
	assert.Zero(t, p.Withdraw("a"), "no vote active")

	require.True(t, p.Start("a"))
	require.True(t, p.Cast("a", "b"))
	require.True(t, p.Cast("c", "b"))
	require.True(t, p.Cast("b", "c"))
	require.True(t, p.Cast("d", "c"))

	assert.Equal(t, 3, p.Withdraw("b"))
	assert.Equal(t, 1, p.TotalVotes())
	assert.False(t, p.HasVoted("a"))
	assert.False(t, p.HasVoted("b"))
	assert.True(t, p.HasVoted("d"))
	assert.True(t, p.Cast("a", "c"), "a voter whose target was withdrawn votes again")

	res, err := p.End()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"c": 2}, res.Tally)
	assert.Equal(t, []Ballot{{Voter: "d", Target: "c"}, {Voter: "a", Target: "c"}}, res.Ballots)
}
