// Package chat holds the message ledger of a game: identifier issuance and
// the ordered, editable history with per-recipient views.
package chat

import (
	"fmt"
	"sync"

	"github.com/aaronzipp/among-llms/internal/clock"
	"github.com/aaronzipp/among-llms/internal/models"
)

// History is the append-only message ledger. Messages are edited and
// deleted in place; every change is recorded in the message's audit trail.
type History struct {
	mu    sync.RWMutex
	clock clock.Clock
	order []string
	byID  map[string]*models.Message
}

// NewHistory creates an empty history
func NewHistory(clk clock.Clock) *History {
	if clk == nil {
		clk = clock.Real{}
	}
	return &History{
		clock: clk,
		byID:  make(map[string]*models.Message),
	}
}

// Add stores a copy of msg. A reply must reference an existing message.
func (h *History) Add(msg *models.Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.byID[msg.ID]; exists {
		return fmt.Errorf("add message %s: %w", msg.ID, models.ErrDuplicateID)
	}
	if msg.ReplyTo != "" {
		if _, exists := h.byID[msg.ReplyTo]; !exists {
			return fmt.Errorf("add message %s: reply to %s: %w", msg.ID, msg.ReplyTo, models.ErrNotFound)
		}
	}

	stored := msg.Clone()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = h.clock.Now()
	}
	h.byID[stored.ID] = stored
	h.order = append(h.order, stored.ID)
	return nil
}

// Edit replaces the body of a message and returns the updated copy
func (h *History) Edit(id, body string, byHuman bool) (*models.Message, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	msg, err := h.modifiable(id)
	if err != nil {
		return nil, fmt.Errorf("edit message: %w", err)
	}
	msg.Audit = append(msg.Audit, models.AuditRecord{
		At:           h.clock.Now(),
		PreviousBody: msg.Body,
		ByHuman:      byHuman,
	})
	msg.Body = body
	msg.Edited = true
	return msg.Clone(), nil
}

// Delete marks a message deleted. The body is kept for the audit trail.
func (h *History) Delete(id string, byHuman bool) (*models.Message, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	msg, err := h.modifiable(id)
	if err != nil {
		return nil, fmt.Errorf("delete message: %w", err)
	}
	msg.Audit = append(msg.Audit, models.AuditRecord{
		At:           h.clock.Now(),
		PreviousBody: msg.Body,
		ByHuman:      byHuman,
		Deleted:      true,
	})
	msg.Deleted = true
	return msg.Clone(), nil
}

// must be called with the write lock held
func (h *History) modifiable(id string) (*models.Message, error) {
	msg, ok := h.byID[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, models.ErrNotFound)
	}
	if msg.Deleted {
		return nil, fmt.Errorf("%s: %w", id, models.ErrMessageDeleted)
	}
	return msg, nil
}

// Get returns a copy of the message with the given id
func (h *History) Get(id string) (*models.Message, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	msg, ok := h.byID[id]
	if !ok {
		return nil, fmt.Errorf("get message %s: %w", id, models.ErrNotFound)
	}
	return msg.Clone(), nil
}

// Exists reports whether a message with the given id is stored
func (h *History) Exists(id string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.byID[id]
	return ok
}

// All returns copies of every message in insertion order
func (h *History) All() []*models.Message {
	return h.filter(func(*models.Message) bool { return true })
}

// VisibleTo returns, in insertion order, the public messages plus the
// direct messages the participant sent or received
func (h *History) VisibleTo(participantID string) []*models.Message {
	return h.filter(func(m *models.Message) bool { return m.VisibleTo(participantID) })
}

func (h *History) filter(keep func(*models.Message) bool) []*models.Message {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*models.Message, 0, len(h.order))
	for _, id := range h.order {
		if msg := h.byID[id]; keep(msg) {
			out = append(out, msg.Clone())
		}
	}
	return out
}

// Len returns the number of stored messages
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.order)
}

// Reset drops every message
func (h *History) Reset() {
	h.mu.Lock()
	h.order = nil
	h.byID = make(map[string]*models.Message)
	h.mu.Unlock()
}
