// Package scheduler runs one turn loop per agent plus a watchdog that
// enforces wall-clock deadlines. All game state lives behind Host.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aaronzipp/among-llms/internal/clock"
	"github.com/aaronzipp/among-llms/internal/decision"
)

// Host is the game the scheduler drives. Every method must be safe for
// concurrent use and must not call back into the scheduler while holding a
// lock the scheduler's caller could need.
type Host interface {
	Ended() bool
	VoteActive() bool
	// ExpireVote force-ends an active vote whose deadline passed
	ExpireVote(now time.Time) bool
	DecisionRequest(participant string) (decision.Request, error)
	// SendDecision posts the decision's message and returns its id, or ""
	// when the sender is no longer in play
	SendDecision(participant string, d *decision.Decision) (string, error)
	StartVote(initiator string, byHuman bool) bool
	Vote(voter, target string, byHuman bool) bool
	TurnMissed(participant, reason string)
	// Tick advances wall-clock bookkeeping
	Tick(now time.Time)
}

// State of a single agent loop
type State int

const (
	Running State = iota
	Stopping
	Stopped
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	default:
		return "stopped"
	}
}

// Config controls turn pacing
type Config struct {
	MinDelay time.Duration
	MaxDelay time.Duration
	Tick     time.Duration
	Seed     uint64
}

var ErrAlreadyStarted = errors.New("scheduler already started")

type task struct {
	state  State
	cancel context.CancelFunc
}

// Scheduler owns the agent goroutines. Stop and Cancel never block; use
// Wait to join the goroutines.
type Scheduler struct {
	host     Host
	provider decision.Provider
	cfg      Config
	clock    clock.Clock
	logger   *slog.Logger

	rngMu sync.Mutex
	rng   *rand.Rand

	mu      sync.Mutex
	tasks   map[string]*task
	cancel  context.CancelFunc
	started bool
	stopped bool

	paused atomic.Bool
	wg     sync.WaitGroup
}

// New creates a scheduler. A nil clock uses the wall clock and a nil logger
// discards output.
func New(host Host, provider decision.Provider, cfg Config, clk clock.Clock, logger *slog.Logger) *Scheduler {
	if clk == nil {
		clk = clock.Real{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Tick <= 0 {
		cfg.Tick = time.Second
	}
	if cfg.MaxDelay < cfg.MinDelay {
		cfg.MaxDelay = cfg.MinDelay
	}
	return &Scheduler{
		host:     host,
		provider: provider,
		cfg:      cfg,
		clock:    clk,
		logger:   logger,
		rng:      rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0xa0761d6478bd642f)),
		tasks:    make(map[string]*task),
	}
}

// Start launches one loop per agent and the watchdog
func (s *Scheduler) Start(ctx context.Context, agents []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true

	root, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for _, id := range agents {
		agentCtx, agentCancel := context.WithCancel(root)
		s.tasks[id] = &task{state: Running, cancel: agentCancel}
		s.wg.Add(1)
		go s.run(agentCtx, id)
	}
	s.wg.Add(1)
	go s.watchdog(root)

	s.logger.Info("turns started", "agents", len(agents))
	return nil
}

// Cancel stops a single agent loop. It returns false if the agent is unknown
// or already stopping.
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok || t.state != Running {
		return false
	}
	t.state = Stopping
	t.cancel()
	s.logger.Debug("agent loop cancelled", "participant", id)
	return true
}

// Stop cancels every loop and the watchdog. Calling it again is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	for _, t := range s.tasks {
		if t.state == Running {
			t.state = Stopping
		}
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.logger.Info("turns stopped")
}

// Wait blocks until every goroutine started by Start has returned
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// Pause makes agents skip their turns until Resume. Cancellation still applies.
func (s *Scheduler) Pause() { s.paused.Store(true) }

func (s *Scheduler) Resume() { s.paused.Store(false) }

func (s *Scheduler) Paused() bool { return s.paused.Load() }

// State reports the state of an agent loop
func (s *Scheduler) State(id string) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return Stopped, false
	}
	return t.state, true
}

func (s *Scheduler) finish(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tasks[id]; ok {
		t.state = Stopped
		t.cancel()
	}
}

func (s *Scheduler) delay() time.Duration {
	span := s.cfg.MaxDelay - s.cfg.MinDelay
	if span <= 0 {
		return s.cfg.MinDelay
	}
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.cfg.MinDelay + time.Duration(s.rng.Int64N(int64(span)+1))
}

// sleep returns false if ctx ended first
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (s *Scheduler) run(ctx context.Context, id string) {
	defer s.wg.Done()
	defer s.finish(id)
	log := s.logger.With("participant", id)

	for {
		if !sleep(ctx, s.delay()) {
			return
		}
		if s.paused.Load() {
			continue
		}
		if ctx.Err() != nil || s.host.Ended() {
			return
		}

		if s.host.ExpireVote(s.clock.Now()) {
			log.Info("vote deadline passed, vote ended")
		}
		if ctx.Err() != nil {
			return
		}

		req, err := s.host.DecisionRequest(id)
		if err != nil {
			log.Warn("no decision request, stopping loop", "error", err)
			return
		}

		log.Debug("requesting decision")
		d, err := s.decide(ctx, req)
		if ctx.Err() != nil {
			log.Debug("discarding decision after cancellation")
			return
		}
		if err != nil {
			log.Error("decision failed", "error", err)
			s.host.TurnMissed(id, err.Error())
			continue
		}
		if d == nil {
			s.host.TurnMissed(id, "no decision")
			continue
		}
		if err := d.Validate(id, req.Remaining); err != nil {
			log.Warn("invalid decision", "error", err)
			s.host.TurnMissed(id, err.Error())
			continue
		}

		s.apply(ctx, id, d, log)
	}
}

// provider failures, panics included, become missed turns
func (s *Scheduler) decide(ctx context.Context, req decision.Request) (d *decision.Decision, err error) {
	defer func() {
		if r := recover(); r != nil {
			d, err = nil, fmt.Errorf("decision provider panicked: %v", r)
		}
	}()
	return s.provider.Decide(ctx, req)
}

func (s *Scheduler) apply(ctx context.Context, id string, d *decision.Decision, log *slog.Logger) {
	if ctx.Err() != nil {
		return
	}
	msgID, err := s.host.SendDecision(id, d)
	if err != nil {
		log.Warn("message not sent", "error", err)
	} else if msgID != "" {
		log.Debug("message sent", "message", msgID, "recipient", d.Recipient)
	}

	if d.VoteFor == "" || ctx.Err() != nil {
		return
	}
	if s.host.VoteActive() {
		s.host.Vote(id, d.VoteFor, false)
		return
	}
	if !d.StartVote {
		return
	}
	if s.host.StartVote(id, false) {
		log.Info("vote started", "target", d.VoteFor)
		if ctx.Err() != nil {
			return
		}
		s.host.Vote(id, d.VoteFor, false)
	}
}

func (s *Scheduler) watchdog(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.cfg.Tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.host.Tick(s.clock.Now())
		}
	}
}
