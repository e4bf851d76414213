// Package roster tracks the participants of a game: who is still in play,
// which one the human controls, and each participant's rolling context.
package roster

import (
	"fmt"
	"slices"
	"sync"

	"github.com/aaronzipp/among-llms/internal/game"
	"github.com/aaronzipp/among-llms/internal/models"
)

// Roster holds every participant of a game. Participants are never deleted,
// only removed from the remaining set.
type Roster struct {
	mu        sync.RWMutex
	lookback  int
	order     []string
	byID      map[string]*Participant
	remaining map[string]struct{}
	human     string
}

// New creates an empty roster whose context windows hold lookback entries
func New(lookback int) *Roster {
	return &Roster{
		lookback:  lookback,
		byID:      make(map[string]*Participant),
		remaining: make(map[string]struct{}),
	}
}

// Initialize replaces the roster with the given participants, all remaining
func (r *Roster) Initialize(profiles []models.Profile) error {
	byID := make(map[string]*Participant, len(profiles))
	order := make([]string, 0, len(profiles))
	for _, p := range profiles {
		if _, exists := byID[p.ID]; exists {
			return fmt.Errorf("initialize roster: participant %s: %w", p.ID, models.ErrDuplicateID)
		}
		byID[p.ID] = newParticipant(p, r.lookback)
		order = append(order, p.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID = byID
	r.order = order
	r.remaining = make(map[string]struct{}, len(order))
	for _, id := range order {
		r.remaining[id] = struct{}{}
	}
	r.human = ""
	return nil
}

// Get returns the participant with the given id
func (r *Roster) Get(id string) (*Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("participant %s: %w", id, models.ErrNotFound)
	}
	return p, nil
}

// All returns every participant id, including removed ones, sorted
func (r *Roster) All() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := slices.Clone(r.order)
	slices.SortFunc(ids, game.CompareIDs)
	return ids
}

// Remaining returns the ids still in play, sorted deterministically
func (r *Roster) Remaining() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.remaining))
	for id := range r.remaining {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, game.CompareIDs)
	return ids
}

func (r *Roster) IsRemaining(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.remaining[id]
	return ok
}

func (r *Roster) RemainingCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.remaining)
}

// Remove takes a participant out of the remaining set
func (r *Roster) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return fmt.Errorf("remove participant %s: %w", id, models.ErrNotFound)
	}
	if _, ok := r.remaining[id]; !ok {
		return fmt.Errorf("remove participant %s: %w", id, models.ErrAlreadyRemoved)
	}
	delete(r.remaining, id)
	return nil
}

// AssignHuman binds the human player to a participant. The binding is one-time.
func (r *Roster) AssignHuman(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return fmt.Errorf("assign human %s: %w", id, models.ErrNotFound)
	}
	if r.human != "" {
		return fmt.Errorf("assign human %s: %w", id, models.ErrHumanAssigned)
	}
	r.human = id
	return nil
}

// Human returns the id controlled by the human, or "" before assignment
func (r *Roster) Human() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.human
}

// Agents returns the remaining ids not controlled by the human
func (r *Roster) Agents() []string {
	human := r.Human()
	return slices.DeleteFunc(r.Remaining(), func(id string) bool { return id == human })
}

// Reset empties the roster
func (r *Roster) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.byID {
		p.reset()
	}
	r.byID = make(map[string]*Participant)
	r.remaining = make(map[string]struct{})
	r.order = nil
	r.human = ""
}

// View returns a read-only copy of a participant's bookkeeping
func (r *Roster) View(id string) (models.ParticipantView, error) {
	p, err := r.Get(id)
	if err != nil {
		return models.ParticipantView{}, err
	}
	return models.ParticipantView{
		ID:        p.ID(),
		Persona:   p.Persona(),
		Remaining: r.IsRemaining(id),
		Human:     r.Human() == id,
		Authored:  p.Authored(),
		Context:   p.Context(),
	}, nil
}
