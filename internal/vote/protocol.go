// Package vote implements the elimination vote state machine. Eligibility
// of voters and targets and the quorum/tie policy are applied by the caller.
package vote

import (
	"fmt"
	"sync"
	"time"

	"github.com/aaronzipp/among-llms/internal/clock"
	"github.com/aaronzipp/among-llms/internal/models"
)

// Ballot is a single cast vote
type Ballot struct {
	Voter  string `json:"voter"`
	Target string `json:"target"`
}

// Status describes the protocol state at a point in time
type Status struct {
	Active    bool
	Initiator string
	Ballots   int
	StartedAt time.Time
	EndsAt    time.Time
}

// Result is the tally of a finished vote
type Result struct {
	Initiator string
	StartedAt time.Time
	EndedAt   time.Time
	Tally     map[string]int
	Ballots   []Ballot // in cast order
}

// Total returns the number of ballots cast
func (r Result) Total() int {
	return len(r.Ballots)
}

// Protocol is Idle until Start, Active until End. Each vote is a fresh
// cycle and each voter gets exactly one ballot per cycle.
type Protocol struct {
	mu        sync.Mutex
	clock     clock.Clock
	duration  time.Duration
	active    bool
	initiator string
	startedAt time.Time
	ballots   []Ballot
	voted     map[string]string
}

// NewProtocol creates an idle protocol whose votes last for duration
func NewProtocol(clk clock.Clock, duration time.Duration) *Protocol {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Protocol{
		clock:    clk,
		duration: duration,
		voted:    make(map[string]string),
	}
}

// Start opens a vote. It returns false if a vote is already active.
func (p *Protocol) Start(initiator string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active {
		return false
	}
	p.active = true
	p.initiator = initiator
	p.startedAt = p.clock.Now()
	p.ballots = nil
	p.voted = make(map[string]string)
	return true
}

// Cast records a ballot. It returns false when no vote is active or the
// voter already voted in this cycle.
func (p *Protocol) Cast(voter, target string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.active || voter == "" || target == "" {
		return false
	}
	if _, done := p.voted[voter]; done {
		return false
	}
	p.voted[voter] = target
	p.ballots = append(p.ballots, Ballot{Voter: voter, Target: target})
	return true
}

// Withdraw discards the ballots cast by id and the ballots cast against id
// in the active cycle. Voters whose target was withdrawn may vote again. It
// returns the number of ballots discarded.
func (p *Protocol) Withdraw(id string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.active {
		return 0
	}
	kept := p.ballots[:0]
	for _, b := range p.ballots {
		if b.Voter == id || b.Target == id {
			delete(p.voted, b.Voter)
			continue
		}
		kept = append(kept, b)
	}
	dropped := len(p.ballots) - len(kept)
	clear(p.ballots[len(kept):])
	p.ballots = kept
	return dropped
}

func (p *Protocol) TotalVotes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.ballots)
}

func (p *Protocol) HasVoted(voter string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.voted[voter]
	return ok
}

// VotedFor returns the target of the voter's ballot in the active cycle
func (p *Protocol) VotedFor(voter string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	target, ok := p.voted[voter]
	return target, ok
}

func (p *Protocol) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

func (p *Protocol) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.active {
		return Status{}
	}
	return Status{
		Active:    true,
		Initiator: p.initiator,
		Ballots:   len(p.ballots),
		StartedAt: p.startedAt,
		EndsAt:    p.startedAt.Add(p.duration),
	}
}

// Expired reports whether an active vote has passed its end time
func (p *Protocol) Expired(now time.Time) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active && !now.Before(p.startedAt.Add(p.duration))
}

// End closes the active vote and returns its tally
func (p *Protocol) End() (Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.active {
		return Result{}, fmt.Errorf("end vote: %w", models.ErrNotActive)
	}
	res := Result{
		Initiator: p.initiator,
		StartedAt: p.startedAt,
		EndedAt:   p.clock.Now(),
		Tally:     make(map[string]int),
		Ballots:   p.ballots,
	}
	for _, b := range p.ballots {
		res.Tally[b.Target]++
	}
	p.active = false
	p.initiator = ""
	p.ballots = nil
	p.voted = make(map[string]string)
	return res, nil
}

// Reset abandons any active vote
func (p *Protocol) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active = false
	p.initiator = ""
	p.startedAt = time.Time{}
	p.ballots = nil
	p.voted = make(map[string]string)
}
