// Package decision defines the contract between the turn scheduler and
// whatever decides what an agent says, plus the providers shipped with the
// server.
package decision

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/aaronzipp/among-llms/internal/models"
)

// Provider decides an agent's next action. Implementations must be safe for
// concurrent use by different participants. A nil decision with a nil error
// is a missed turn.
type Provider interface {
	Decide(ctx context.Context, req Request) (*Decision, error)
}

// Func adapts a function to Provider
type Func func(ctx context.Context, req Request) (*Decision, error)

func (f Func) Decide(ctx context.Context, req Request) (*Decision, error) {
	return f(ctx, req)
}

// ContextLine is a resolved entry of a participant's rolling window
type ContextLine struct {
	Role models.ContextRole
	Text string
}

// VoteState is the voting situation as seen by the deciding participant
type VoteState struct {
	Active    bool
	Initiator string
	VotedFor  string // the participant's own ballot, if cast
}

// Request is everything a provider may use to decide a turn
type Request struct {
	Participant string
	Persona     string
	Scenario    string
	Personas    map[string]string // every participant, removed ones included
	Remaining   []string
	Eliminated  []string
	Context     []ContextLine
	Vote        VoteState
}

// Decision is one agent turn: a message plus optional vote actions
type Decision struct {
	Body      string
	Intent    string
	Recipient string // empty for a public message
	Suspicion *models.Suspicion
	StartVote bool
	VoteFor   string
}

var (
	ErrEmptyMessage      = errors.New("message is empty")
	ErrUnknownRecipient  = errors.New("unknown recipient")
	ErrSelfMessage       = errors.New("cannot send a direct message to yourself")
	ErrUnknownSuspect    = errors.New("unknown suspect")
	ErrConfidence        = errors.New("suspect confidence must be within 0-100")
	ErrUnknownTarget     = errors.New("unknown vote target")
	ErrVoteWithoutTarget = errors.New("start_a_vote is true but no agent was voted for")
)

// Validate checks the decision of participant self against the ids it may
// reference
func (d *Decision) Validate(self string, allowed []string) error {
	if d.Body == "" {
		return ErrEmptyMessage
	}
	if d.Recipient != "" {
		if d.Recipient == self {
			return ErrSelfMessage
		}
		if !slices.Contains(allowed, d.Recipient) {
			return fmt.Errorf("%w: %s", ErrUnknownRecipient, d.Recipient)
		}
	}
	if d.Suspicion != nil {
		if !slices.Contains(allowed, d.Suspicion.Target) {
			return fmt.Errorf("%w: %s", ErrUnknownSuspect, d.Suspicion.Target)
		}
		if d.Suspicion.Confidence < 0 || d.Suspicion.Confidence > 100 {
			return fmt.Errorf("%w: got %d", ErrConfidence, d.Suspicion.Confidence)
		}
	}
	if d.StartVote && d.VoteFor == "" {
		return ErrVoteWithoutTarget
	}
	if d.VoteFor != "" && !slices.Contains(allowed, d.VoteFor) {
		return fmt.Errorf("%w: %s", ErrUnknownTarget, d.VoteFor)
	}
	return nil
}
