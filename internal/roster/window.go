package roster

import "github.com/aaronzipp/among-llms/internal/models"

// Window is a fixed-capacity FIFO of context entries. Pushing onto a full
// window evicts the oldest entry. Not safe for concurrent use; the owning
// Participant serializes access.
type Window struct {
	buf   []models.ContextEntry
	start int
	size  int
}

// NewWindow creates a window holding at most capacity entries
func NewWindow(capacity int) *Window {
	if capacity < 1 {
		capacity = 1
	}
	return &Window{buf: make([]models.ContextEntry, capacity)}
}

// Push appends an entry, evicting the oldest when full. It returns the
// evicted entry and whether one was evicted.
func (w *Window) Push(e models.ContextEntry) (models.ContextEntry, bool) {
	if w.size < len(w.buf) {
		w.buf[(w.start+w.size)%len(w.buf)] = e
		w.size++
		return models.ContextEntry{}, false
	}
	evicted := w.buf[w.start]
	w.buf[w.start] = e
	w.start = (w.start + 1) % len(w.buf)
	return evicted, true
}

// Entries returns the entries oldest first
func (w *Window) Entries() []models.ContextEntry {
	out := make([]models.ContextEntry, w.size)
	for i := range w.size {
		out[i] = w.buf[(w.start+i)%len(w.buf)]
	}
	return out
}

func (w *Window) Len() int { return w.size }

func (w *Window) Cap() int { return len(w.buf) }

// Clear empties the window without changing its capacity
func (w *Window) Clear() {
	clear(w.buf)
	w.start, w.size = 0, 0
}
