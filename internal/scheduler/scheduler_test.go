package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronzipp/among-llms/internal/decision"
)

type sent struct {
	from string
	body string
}

type fakeHost struct {
	mu         sync.Mutex
	sent       []sent
	missed     map[string]int
	ticks      int
	voteActive bool
	initiator  string
	ballots    map[string]string
	ended      atomic.Bool
}

func newFakeHost() *fakeHost {
	return &fakeHost{missed: make(map[string]int), ballots: make(map[string]string)}
}

func (h *fakeHost) Ended() bool { return h.ended.Load() }

func (h *fakeHost) VoteActive() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.voteActive
}

func (h *fakeHost) ExpireVote(time.Time) bool { return false }

func (h *fakeHost) DecisionRequest(id string) (decision.Request, error) {
	return decision.Request{Participant: id, Remaining: []string{"a", "b", "c"}}, nil
}

func (h *fakeHost) SendDecision(id string, d *decision.Decision) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sent = append(h.sent, sent{from: id, body: d.Body})
	return "1", nil
}

func (h *fakeHost) StartVote(initiator string, _ bool) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.voteActive {
		return false
	}
	h.voteActive = true
	h.initiator = initiator
	return true
}

func (h *fakeHost) Vote(voter, target string, _ bool) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.ballots[voter]; ok || !h.voteActive {
		return false
	}
	h.ballots[voter] = target
	return true
}

func (h *fakeHost) TurnMissed(id, _ string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.missed[id]++
}

func (h *fakeHost) Tick(time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ticks++
}

func (h *fakeHost) sentBy(id string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, s := range h.sent {
		if s.from == id {
			n++
		}
	}
	return n
}

func (h *fakeHost) missedBy(id string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.missed[id]
}

func fastConfig() Config {
	return Config{MinDelay: time.Millisecond, MaxDelay: 3 * time.Millisecond, Tick: 2 * time.Millisecond, Seed: 1}
}

func say(body string) decision.Provider {
	return decision.Func(func(context.Context, decision.Request) (*decision.Decision, error) {
		return &decision.Decision{Body: body}, nil
	})
}

func TestAgentsTakeTurnsIndependently(t *testing.T) {
	host := newFakeHost()
	provider := decision.Func(func(_ context.Context, req decision.Request) (*decision.Decision, error) {
		if req.Participant == "b" {
			return nil, errors.New("model offline")
		}
		return &decision.Decision{Body: "hi from " + req.Participant}, nil
	})
	s := New(host, provider, fastConfig(), nil, nil)
	require.NoError(t, s.Start(context.Background(), []string{"a", "b"}))
	defer func() { s.Stop(); s.Wait() }()

	require.Eventually(t, func() bool {
		return host.sentBy("a") >= 3 && host.missedBy("b") >= 3
	}, 2*time.Second, 5*time.Millisecond)
	assert.Zero(t, host.sentBy("b"))
}

func TestPanickingProviderIsAMissedTurn(t *testing.T) {
	host := newFakeHost()
	provider := decision.Func(func(context.Context, decision.Request) (*decision.Decision, error) {
		panic("provider bug")
	})
	s := New(host, provider, fastConfig(), nil, nil)
	require.NoError(t, s.Start(context.Background(), []string{"a"}))
	defer func() { s.Stop(); s.Wait() }()

	require.Eventually(t, func() bool { return host.missedBy("a") >= 2 }, 2*time.Second, 5*time.Millisecond)
	state, _ := s.State("a")
	assert.Equal(t, Running, state)
}

func TestInvalidDecisionIsAMissedTurn(t *testing.T) {
	host := newFakeHost()
	provider := decision.Func(func(context.Context, decision.Request) (*decision.Decision, error) {
		return &decision.Decision{Body: "hi", Recipient: "ghost"}, nil
	})
	s := New(host, provider, fastConfig(), nil, nil)
	require.NoError(t, s.Start(context.Background(), []string{"a"}))
	defer func() { s.Stop(); s.Wait() }()

	require.Eventually(t, func() bool { return host.missedBy("a") >= 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Zero(t, host.sentBy("a"))
}

func TestCancelStopsOnlyThatAgent(t *testing.T) {
	host := newFakeHost()
	s := New(host, say("hello"), fastConfig(), nil, nil)
	require.NoError(t, s.Start(context.Background(), []string{"a", "b"}))
	defer func() { s.Stop(); s.Wait() }()

	require.Eventually(t, func() bool { return host.sentBy("a") > 0 }, 2*time.Second, 5*time.Millisecond)
	assert.True(t, s.Cancel("a"))
	assert.False(t, s.Cancel("a"))
	assert.False(t, s.Cancel("nobody"))

	require.Eventually(t, func() bool {
		state, _ := s.State("a")
		return state == Stopped
	}, 2*time.Second, 5*time.Millisecond)
	after := host.sentBy("a")
	before := host.sentBy("b")

	require.Eventually(t, func() bool { return host.sentBy("b") > before+2 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, after, host.sentBy("a"))
}

func TestInFlightDecisionIsDiscardedOnCancel(t *testing.T) {
	host := newFakeHost()
	entered := make(chan struct{}, 1)
	provider := decision.Func(func(ctx context.Context, _ decision.Request) (*decision.Decision, error) {
		select {
		case entered <- struct{}{}:
		default:
		}
		<-ctx.Done()
		// a provider that ignores cancellation and still answers
		return &decision.Decision{Body: "too late", StartVote: true, VoteFor: "b"}, nil
	})
	s := New(host, provider, fastConfig(), nil, nil)
	require.NoError(t, s.Start(context.Background(), []string{"a"}))

	<-entered
	s.Cancel("a")
	require.Eventually(t, func() bool {
		state, _ := s.State("a")
		return state == Stopped
	}, 2*time.Second, 5*time.Millisecond)
	s.Stop()
	s.Wait()

	assert.Zero(t, host.sentBy("a"))
	assert.False(t, host.VoteActive())
}

func TestStopIsIdempotent(t *testing.T) {
	host := newFakeHost()
	s := New(host, say("x"), fastConfig(), nil, nil)
	require.NoError(t, s.Start(context.Background(), []string{"a", "b"}))

	s.Stop()
	s.Stop()
	s.Wait()
	s.Stop()

	for _, id := range []string{"a", "b"} {
		state, ok := s.State(id)
		assert.True(t, ok)
		assert.Equal(t, Stopped, state)
	}
	assert.ErrorIs(t, s.Start(context.Background(), []string{"a"}), ErrAlreadyStarted)
}

func TestStopBeforeStart(t *testing.T) {
	s := New(newFakeHost(), say("x"), fastConfig(), nil, nil)
	assert.NotPanics(t, s.Stop)
	s.Wait()
}

func TestPauseSkipsTurns(t *testing.T) {
	host := newFakeHost()
	var calls atomic.Int64
	provider := decision.Func(func(context.Context, decision.Request) (*decision.Decision, error) {
		calls.Add(1)
		return &decision.Decision{Body: "x"}, nil
	})
	s := New(host, provider, fastConfig(), nil, nil)
	s.Pause()
	require.NoError(t, s.Start(context.Background(), []string{"a"}))
	defer func() { s.Stop(); s.Wait() }()

	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, calls.Load())
	assert.True(t, s.Paused())

	s.Resume()
	require.Eventually(t, func() bool { return calls.Load() > 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestEndedGameStopsLoops(t *testing.T) {
	host := newFakeHost()
	host.ended.Store(true)
	s := New(host, say("x"), fastConfig(), nil, nil)
	require.NoError(t, s.Start(context.Background(), []string{"a"}))

	require.Eventually(t, func() bool {
		state, _ := s.State("a")
		return state == Stopped
	}, 2*time.Second, 5*time.Millisecond)
	assert.Zero(t, host.sentBy("a"))
	s.Stop()
	s.Wait()
}

func TestWatchdogTicks(t *testing.T) {
	host := newFakeHost()
	s := New(host, say("x"), fastConfig(), nil, nil)
	require.NoError(t, s.Start(context.Background(), nil))

	require.Eventually(t, func() bool {
		host.mu.Lock()
		defer host.mu.Unlock()
		return host.ticks >= 3
	}, 2*time.Second, 5*time.Millisecond)
	s.Stop()
	s.Wait()
}

func TestStartVoteThenBallot(t *testing.T) {
	host := newFakeHost()
	provider := decision.Func(func(_ context.Context, req decision.Request) (*decision.Decision, error) {
		return &decision.Decision{Body: "vote!", StartVote: true, VoteFor: "c"}, nil
	})
	s := New(host, provider, fastConfig(), nil, nil)
	require.NoError(t, s.Start(context.Background(), []string{"a", "b"}))
	defer func() { s.Stop(); s.Wait() }()

	require.Eventually(t, func() bool {
		host.mu.Lock()
		defer host.mu.Unlock()
		return len(host.ballots) == 2
	}, 2*time.Second, 5*time.Millisecond)

	host.mu.Lock()
	defer host.mu.Unlock()
	assert.Contains(t, []string{"a", "b"}, host.initiator)
	assert.Equal(t, map[string]string{"a": "c", "b": "c"}, host.ballots)
}

func TestDelayWithinBounds(t *testing.T) {
	s := New(newFakeHost(), say("x"), Config{MinDelay: time.Second, MaxDelay: 4 * time.Second}, nil, nil)
	for range 200 {
		d := s.delay()
		assert.GreaterOrEqual(t, d, time.Second)
		assert.LessOrEqual(t, d, 4*time.Second)
	}
}
