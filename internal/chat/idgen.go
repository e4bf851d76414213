package chat

import (
	"strconv"
	"sync"
)

// IDGenerator hands out message identifiers as decimal strings of a
// strictly increasing counter.
type IDGenerator struct {
	mu   sync.Mutex
	next int64
}

// NewIDGenerator creates a generator whose first identifier is origin
func NewIDGenerator(origin int64) *IDGenerator {
	return &IDGenerator{next: origin}
}

// Next returns the next identifier
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.next
	g.next++
	return strconv.FormatInt(id, 10)
}

// Reset restarts the sequence at origin
func (g *IDGenerator) Reset(origin int64) {
	g.mu.Lock()
	g.next = origin
	g.mu.Unlock()
}
