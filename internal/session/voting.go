package session

import (
	"fmt"
	"time"

	"github.com/aaronzipp/among-llms/internal/events"
	"github.com/aaronzipp/among-llms/internal/game"
	"github.com/aaronzipp/among-llms/internal/models"
	"github.com/aaronzipp/among-llms/internal/render"
)

// StartVote opens a vote. It returns false if a vote is already active, the
// game is over, or the initiator is not in play.
func (s *Session) StartVote(initiator string, byHuman bool) (started bool) {
	s.do(func(out *outbox) {
		s.mustBeCreated("StartVote")
		if s.ended || !s.roster.IsRemaining(initiator) {
			s.logger.Warn("vote not started, initiator not eligible", "participant", initiator)
			return
		}
		if !s.votes.Start(initiator) {
			return
		}
		started = true
		status := s.votes.Status()

		s.announceLocked(render.VoteStarted(initiator, status.EndsAt), out)
		if byHuman && initiator != s.roster.Human() {
			s.pushLocked(initiator, models.RoleSystem, "", render.VoteStartedByHuman())
		}
		s.logger.Info("vote started", "initiator", initiator, "by_human", byHuman)
		out.add(events.VoteStarted{Initiator: initiator, ByHuman: byHuman, EndsAt: status.EndsAt})
	})
	return started
}

// Vote casts voter's ballot. It returns false if no vote is active, either
// party is not in play, or the voter already voted. The vote ends as soon
// as every remaining participant has voted.
func (s *Session) Vote(voter, target string, byHuman bool) (cast bool) {
	s.do(func(out *outbox) {
		s.mustBeCreated("Vote")
		if s.ended || !s.roster.IsRemaining(voter) || !s.roster.IsRemaining(target) {
			s.logger.Warn("ballot rejected, participant not eligible", "voter", voter, "target", target)
			return
		}
		if !s.votes.Cast(voter, target) {
			return
		}
		cast = true

		if byHuman && voter != s.roster.Human() {
			s.pushLocked(voter, models.RoleSystem, "", render.VotedByHuman(target))
		}
		s.logger.Debug("ballot cast", "voter", voter, "target", target, "by_human", byHuman)
		out.add(events.BallotCast{Voter: voter, Target: target, ByHuman: byHuman})

		if s.votes.TotalVotes() >= s.roster.RemainingCount() {
			s.endVoteLocked(out)
		}
	})
	return cast
}

// EndVote closes the active vote and applies the quorum and tie policy
func (s *Session) EndVote() (outcome game.Outcome, err error) {
	s.do(func(out *outbox) {
		s.mustBeCreated("EndVote")
		outcome, err = s.endVoteLocked(out)
	})
	return outcome, err
}

// ExpireVote ends the active vote if its deadline has passed
func (s *Session) ExpireVote(now time.Time) (expired bool) {
	s.do(func(out *outbox) {
		if !s.created || s.ended || !s.votes.Expired(now) {
			return
		}
		s.logger.Info("vote deadline passed")
		_, err := s.endVoteLocked(out)
		expired = err == nil
	})
	return expired
}

// must be called with mu held
func (s *Session) endVoteLocked(out *outbox) (game.Outcome, error) {
	res, err := s.votes.End()
	if err != nil {
		return game.Outcome{}, err
	}
	outcome := game.ResolveVote(res, s.roster.Remaining(), s.opts.Quorum)
	s.announceLocked(outcome.Conclusion, out)
	s.logger.Info("vote ended", "eliminated", outcome.Eliminated, "ballots", outcome.Total, "required", outcome.Required)
	out.add(events.VoteEnded{Outcome: outcome})

	if !outcome.Rejected() {
		if err := s.terminateLocked(outcome.Eliminated, out); err != nil {
			s.logger.Error("vote winner not eliminated", "participant", outcome.Eliminated, "error", err)
		}
	}
	return outcome, nil
}

// TerminateParticipant removes a participant from play and applies the win rule
func (s *Session) TerminateParticipant(id string) (err error) {
	s.do(func(out *outbox) {
		s.mustBeCreated("TerminateParticipant")
		if s.ended {
			err = models.ErrGameEnded
			return
		}
		err = s.terminateLocked(id, out)
	})
	return err
}

// must be called with mu held
func (s *Session) terminateLocked(id string, out *outbox) error {
	human := s.roster.Human()
	before := s.roster.RemainingCount()
	if err := s.roster.Remove(id); err != nil {
		return fmt.Errorf("terminate: %w", err)
	}
	if s.sched != nil {
		s.sched.Cancel(id)
	}
	withdrawn := s.votes.Withdraw(id)
	s.logger.Info("participant terminated", "participant", id, "remaining", before-1, "ballots_withdrawn", withdrawn)

	if ended, won := game.Conclude(id, human, before); ended {
		s.endGameLocked(won, out)
		return nil
	}
	s.announceLocked(game.EliminationNotice(id), out)
	out.add(events.AgentsListChanged{Remaining: s.roster.Remaining()})

	if s.votes.Active() && s.votes.TotalVotes() > 0 && s.votes.TotalVotes() >= s.roster.RemainingCount() {
		s.endVoteLocked(out)
	}
	return nil
}

// VoteStatus returns the state of the vote in progress
func (s *Session) VoteStatus() models.VoteSnapshot {
	st := s.votes.Status()
	return models.VoteSnapshot{
		Active:    st.Active,
		Initiator: st.Initiator,
		Ballots:   st.Ballots,
		StartedAt: st.StartedAt,
		EndsAt:    st.EndsAt,
	}
}
