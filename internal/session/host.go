package session

import (
	"fmt"
	"time"

	"github.com/aaronzipp/among-llms/internal/decision"
	"github.com/aaronzipp/among-llms/internal/events"
	"github.com/aaronzipp/among-llms/internal/models"
	"github.com/aaronzipp/among-llms/internal/render"
	"github.com/aaronzipp/among-llms/internal/scheduler"
)

var _ scheduler.Host = (*Session)(nil)

// Ended reports whether the game is over
func (s *Session) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

// VoteActive reports whether a vote is in progress
func (s *Session) VoteActive() bool {
	return s.votes.Active()
}

// DecisionRequest builds what the decision provider sees for a participant
// still in play
func (s *Session) DecisionRequest(id string) (decision.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mustBeCreated("DecisionRequest")
	if s.ended {
		return decision.Request{}, models.ErrGameEnded
	}
	p, err := s.roster.Get(id)
	if err != nil {
		return decision.Request{}, err
	}
	if !s.roster.IsRemaining(id) {
		return decision.Request{}, fmt.Errorf("decision request %s: %w", id, models.ErrAlreadyRemoved)
	}

	req := decision.Request{
		Participant: id,
		Persona:     p.Persona(),
		Scenario:    s.scenario,
		Personas:    make(map[string]string),
		Remaining:   s.roster.Remaining(),
	}
	for _, pid := range s.roster.All() {
		other, err := s.roster.Get(pid)
		if err != nil {
			continue
		}
		req.Personas[pid] = other.Persona()
		if !s.roster.IsRemaining(pid) {
			req.Eliminated = append(req.Eliminated, pid)
		}
	}

	for _, entry := range p.Context() {
		text := entry.Text
		if entry.IsMessageRef() {
			msg, err := s.history.Get(entry.MessageID)
			if err != nil {
				s.logger.Warn("context references missing message", "participant", id, "message", entry.MessageID)
				continue
			}
			text = render.Message(msg)
		}
		req.Context = append(req.Context, decision.ContextLine{Role: entry.Role, Text: text})
	}

	if st := s.votes.Status(); st.Active {
		req.Vote = decision.VoteState{Active: true, Initiator: st.Initiator}
		req.Vote.VotedFor, _ = s.votes.VotedFor(id)
	}
	return req, nil
}

// SendDecision posts an agent's decided message
func (s *Session) SendDecision(id string, d *decision.Decision) (string, error) {
	return s.SendMessage(SendRequest{
		From:      id,
		To:        d.Recipient,
		Body:      d.Body,
		Intent:    d.Intent,
		Suspicion: d.Suspicion,
	})
}

// TurnMissed reports an agent turn that produced no decision
func (s *Session) TurnMissed(id, reason string) {
	s.bus.Publish(events.TurnMissed{Participant: id, Reason: reason})
}

// Tick updates the elapsed time and force-ends an expired vote
func (s *Session) Tick(now time.Time) {
	s.do(func(out *outbox) {
		if !s.created || s.ended {
			return
		}
		if !s.startedAt.IsZero() {
			s.elapsed = now.Sub(s.startedAt)
		}
		if s.votes.Expired(now) {
			s.logger.Info("vote deadline passed, ending vote")
			s.endVoteLocked(out)
		}
	})
}
