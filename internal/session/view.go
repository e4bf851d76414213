package session

import (
	"github.com/aaronzipp/among-llms/internal/models"
	"github.com/aaronzipp/among-llms/internal/render"
)

// Snapshot returns a consistent view of the game state
func (s *Session) Snapshot() models.GameSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.GameSnapshot{
		Status:    s.status,
		Scenario:  s.scenario,
		Human:     s.roster.Human(),
		All:       s.roster.All(),
		Remaining: s.roster.Remaining(),
		Ended:     s.ended,
		Won:       s.won,
		StartedAt: s.startedAt,
		Elapsed:   s.elapsed,
		Vote:      s.VoteStatus(),
		Messages:  s.history.Len(),
	}
}

// Export renders the full transcript, one message per line, after a
// scenario line and a line naming the human's participant
func (s *Session) Export() []string {
	s.mu.Lock()
	scenario, human := s.scenario, s.roster.Human()
	msgs := s.history.All()
	s.mu.Unlock()
	return render.Export(scenario, human, msgs)
}

// Message returns a copy of a stored message
func (s *Session) Message(id string) (*models.Message, error) {
	return s.history.Get(id)
}

// Messages returns every message in order
func (s *Session) Messages() []*models.Message {
	return s.history.All()
}

// VisibleTo returns the messages a participant is entitled to see
func (s *Session) VisibleTo(id string) []*models.Message {
	return s.history.VisibleTo(id)
}

// Participant returns a participant's bookkeeping
func (s *Session) Participant(id string) (models.ParticipantView, error) {
	return s.roster.View(id)
}

func (s *Session) Remaining() []string {
	return s.roster.Remaining()
}

func (s *Session) Human() string {
	return s.roster.Human()
}

func (s *Session) Scenario() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scenario
}

func (s *Session) Status() models.GameStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}
