// Package session glues the roster, message history, voting protocol and
// turn scheduler of one game together. Every composite operation runs under
// the session lock; events are published after the lock is released, so
// event handlers may call back into the session.
package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aaronzipp/among-llms/internal/chat"
	"github.com/aaronzipp/among-llms/internal/clock"
	"github.com/aaronzipp/among-llms/internal/decision"
	"github.com/aaronzipp/among-llms/internal/events"
	"github.com/aaronzipp/among-llms/internal/game"
	"github.com/aaronzipp/among-llms/internal/models"
	"github.com/aaronzipp/among-llms/internal/roster"
	"github.com/aaronzipp/among-llms/internal/scheduler"
	"github.com/aaronzipp/among-llms/internal/vote"
)

// Generator produces the scenario and participants of a new game
type Generator interface {
	Scenario() string
	Profiles(n int) []models.Profile
	Intn(n int) int
}

// Options configures a session. Zero values fall back to the game defaults.
type Options struct {
	Provider     decision.Provider
	Generator    Generator
	Bus          *events.Bus
	Clock        clock.Clock
	Logger       *slog.Logger
	AgentCount   int
	Lookback     int
	VoteDuration time.Duration
	Quorum       float64
	Turns        scheduler.Config
	IDOrigin     int64
}

// Session is one game. Create it with New, then NewGame, AssignHuman and
// StartTurns.
type Session struct {
	opts    Options
	clock   clock.Clock
	logger  *slog.Logger
	bus     *events.Bus
	ids     *chat.IDGenerator
	history *chat.History
	roster  *roster.Roster
	votes   *vote.Protocol

	mu        sync.Mutex
	created   bool
	scenario  string
	status    models.GameStatus
	ended     bool
	won       bool
	startedAt time.Time
	elapsed   time.Duration
	sched     *scheduler.Scheduler
}

// outbox collects events raised under the lock
type outbox []events.Event

func (o *outbox) add(e events.Event) { *o = append(*o, e) }

// New creates an idle session
func New(opts Options) *Session {
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Bus == nil {
		opts.Bus = events.NewBus(opts.Logger)
	}
	if opts.AgentCount < game.MinAgents {
		opts.AgentCount = game.DefaultAgentCount
	}
	if opts.Lookback < 1 {
		opts.Lookback = game.DefaultLookback
	}
	if opts.VoteDuration <= 0 {
		opts.VoteDuration = game.DefaultVoteDuration
	}
	if opts.Quorum <= 0 || opts.Quorum > 1 {
		opts.Quorum = game.DefaultQuorum
	}
	if opts.Turns.Tick <= 0 {
		opts.Turns.Tick = game.DefaultTick
	}
	if opts.Turns.MinDelay <= 0 && opts.Turns.MaxDelay <= 0 {
		opts.Turns.MinDelay, opts.Turns.MaxDelay = game.DefaultMinDelay, game.DefaultMaxDelay
	}

	return &Session{
		opts:    opts,
		clock:   opts.Clock,
		logger:  opts.Logger,
		bus:     opts.Bus,
		ids:     chat.NewIDGenerator(opts.IDOrigin),
		history: chat.NewHistory(opts.Clock),
		roster:  roster.New(opts.Lookback),
		votes:   vote.NewProtocol(opts.Clock, opts.VoteDuration),
		status:  models.StatusIdle,
	}
}

// do runs fn under the session lock and publishes the events it raised
// once the lock is released
func (s *Session) do(fn func(out *outbox)) {
	var out outbox
	func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		fn(&out)
	}()
	for _, e := range out {
		s.bus.Publish(e)
	}
}

// must be called with mu held
func (s *Session) mustBeCreated(op string) {
	if !s.created {
		panic(fmt.Sprintf("session: %s called before NewGame", op))
	}
}

// NewGame resets all state and generates a scenario and participants.
// Turns are not started.
func (s *Session) NewGame() {
	if s.opts.Generator == nil {
		panic("session: NewGame requires a Generator")
	}
	scenario := s.opts.Generator.Scenario()
	profiles := s.opts.Generator.Profiles(s.opts.AgentCount)
	if err := s.NewGameWith(scenario, profiles); err != nil {
		panic(fmt.Sprintf("session: generated participants: %v", err))
	}
}

// NewGameWith resets all state and starts a game with the given scenario and
// participants. Turns are not started.
func (s *Session) NewGameWith(scenario string, profiles []models.Profile) error {
	if len(profiles) < game.MinAgents {
		return fmt.Errorf("new game: need at least %d participants, got %d: %w",
			game.MinAgents, len(profiles), models.ErrNotEligible)
	}

	s.mu.Lock()
	old := s.sched
	s.sched = nil
	s.mu.Unlock()
	if old != nil {
		old.Stop()
		old.Wait()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.roster.Initialize(profiles); err != nil {
		return fmt.Errorf("new game: %w", err)
	}
	s.history.Reset()
	s.ids.Reset(s.opts.IDOrigin)
	s.votes.Reset()

	s.created = true
	s.scenario = scenario
	s.status = models.StatusReady
	s.ended, s.won = false, false
	s.startedAt, s.elapsed = time.Time{}, 0

	s.logger.Info("new game", "participants", len(profiles))
	return nil
}

// AssignHuman binds the human player to a participant
func (s *Session) AssignHuman(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mustBeCreated("AssignHuman")
	if err := s.roster.AssignHuman(id); err != nil {
		return err
	}
	s.logger.Info("human assigned", "participant", id)
	return nil
}

// AssignRandomHuman binds the human to a random participant and returns its id
func (s *Session) AssignRandomHuman() (string, error) {
	s.mu.Lock()
	all := s.roster.All()
	s.mu.Unlock()
	if len(all) == 0 {
		panic("session: AssignRandomHuman called before NewGame")
	}
	id := all[s.opts.Generator.Intn(len(all))]
	return id, s.AssignHuman(id)
}

// UpdateScenario replaces the scenario. Only allowed before turns start.
func (s *Session) UpdateScenario(text string) error {
	text = strings.TrimSpace(text)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mustBeCreated("UpdateScenario")
	if err := s.customizableLocked(text); err != nil {
		return fmt.Errorf("update scenario: %w", err)
	}
	s.scenario = text
	s.logger.Info("scenario updated")
	return nil
}

// UpdatePersona replaces a participant's persona. Only allowed before turns
// start.
func (s *Session) UpdatePersona(id, text string) error {
	text = strings.TrimSpace(text)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mustBeCreated("UpdatePersona")
	if err := s.customizableLocked(text); err != nil {
		return fmt.Errorf("update persona %s: %w", id, err)
	}
	p, err := s.roster.Get(id)
	if err != nil {
		return err
	}
	p.UpdatePersona(text)
	s.logger.Info("persona updated", "participant", id)
	return nil
}

// must be called with mu held
func (s *Session) customizableLocked(text string) error {
	switch {
	case s.ended:
		return models.ErrGameEnded
	case s.status != models.StatusReady:
		return models.ErrInPlay
	case text == "":
		return models.ErrEmptyText
	}
	return nil
}

// StartTurns launches one loop per agent and the watchdog
func (s *Session) StartTurns(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mustBeCreated("StartTurns")
	switch {
	case s.ended:
		return models.ErrGameEnded
	case s.roster.Human() == "":
		return models.ErrNoHuman
	case s.sched != nil:
		return scheduler.ErrAlreadyStarted
	}
	if s.opts.Provider == nil {
		panic("session: StartTurns requires a decision Provider")
	}

	s.sched = scheduler.New(s, s.opts.Provider, s.opts.Turns, s.clock, s.logger)
	s.startedAt = s.clock.Now()
	s.status = models.StatusPlaying
	return s.sched.Start(ctx, s.roster.Agents())
}

// Pause suspends agent turns
func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sched == nil || s.status != models.StatusPlaying {
		return models.ErrNotStarted
	}
	s.sched.Pause()
	s.status = models.StatusPaused
	return nil
}

// Resume continues agent turns after Pause
func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sched == nil || s.status != models.StatusPaused {
		return models.ErrNotStarted
	}
	s.sched.Resume()
	s.status = models.StatusPlaying
	return nil
}

// EndGame ends the game. Only the first call has an effect.
func (s *Session) EndGame(won bool) {
	s.do(func(out *outbox) {
		s.mustBeCreated("EndGame")
		s.endGameLocked(won, out)
	})
}

// Shutdown stops every turn loop, ending the game as lost if it is still
// running, and waits for the loops to exit. It is safe to call repeatedly
// and must not be called from an event handler.
func (s *Session) Shutdown() {
	var sched *scheduler.Scheduler
	s.do(func(out *outbox) {
		if s.created {
			s.endGameLocked(false, out)
		}
		sched = s.sched
	})
	if sched != nil {
		sched.Stop()
		sched.Wait()
	}
}

// must be called with mu held
func (s *Session) endGameLocked(won bool, out *outbox) {
	if s.ended {
		return
	}
	s.ended = true
	s.won = won
	s.status = models.StatusEnded
	if s.votes.Active() {
		s.votes.Reset()
	}
	if s.sched != nil {
		s.sched.Stop()
	}
	s.logger.Info("game ended", "won", won)
	out.add(events.GameEnded{Won: won})
}

// Bus returns the bus the session publishes on
func (s *Session) Bus() *events.Bus {
	return s.bus
}
