package roster

import (
	"maps"
	"slices"
	"strconv"
	"sync"

	"github.com/aaronzipp/among-llms/internal/models"
)

// Participant is one member of the chatroom. Each participant guards its own
// bookkeeping so different participants can be updated concurrently.
type Participant struct {
	id string

	mu       sync.RWMutex
	persona  string
	authored map[string]struct{}
	dmSent   map[string]map[string]struct{} // counterpart -> message ids
	dmRecv   map[string]map[string]struct{}
	window   *Window
}

func newParticipant(p models.Profile, lookback int) *Participant {
	return &Participant{
		id:       p.ID,
		persona:  p.Persona,
		authored: make(map[string]struct{}),
		dmSent:   make(map[string]map[string]struct{}),
		dmRecv:   make(map[string]map[string]struct{}),
		window:   NewWindow(lookback),
	}
}

func (p *Participant) ID() string { return p.id }

func (p *Participant) Persona() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.persona
}

func (p *Participant) UpdatePersona(persona string) {
	p.mu.Lock()
	p.persona = persona
	p.mu.Unlock()
}

// RecordAuthored notes a message written by this participant
func (p *Participant) RecordAuthored(msgID string) {
	p.mu.Lock()
	p.authored[msgID] = struct{}{}
	p.mu.Unlock()
}

// RecordDirect notes a direct message exchanged with counterpart
func (p *Participant) RecordDirect(msgID, counterpart string, received bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	index := p.dmSent
	if received {
		index = p.dmRecv
	}
	if index[counterpart] == nil {
		index[counterpart] = make(map[string]struct{})
	}
	index[counterpart][msgID] = struct{}{}
}

// PushContext appends to the rolling window, evicting the oldest entry when full
func (p *Participant) PushContext(e models.ContextEntry) {
	p.mu.Lock()
	p.window.Push(e)
	p.mu.Unlock()
}

// Context returns the rolling window, oldest first
func (p *Participant) Context() []models.ContextEntry {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.window.Entries()
}

// Authored returns ids of messages this participant wrote, oldest first
func (p *Participant) Authored() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return sortedIDs(p.authored)
}

// Direct returns ids of direct messages sent to (received=false) or
// received from (received=true) counterpart, oldest first
func (p *Participant) Direct(counterpart string, received bool) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	index := p.dmSent
	if received {
		index = p.dmRecv
	}
	return sortedIDs(index[counterpart])
}

func (p *Participant) reset() {
	p.mu.Lock()
	clear(p.authored)
	clear(p.dmSent)
	clear(p.dmRecv)
	p.window.Clear()
	p.mu.Unlock()
}

// message ids are decimal counters, so order them numerically
func sortedIDs(set map[string]struct{}) []string {
	ids := slices.Collect(maps.Keys(set))
	slices.SortFunc(ids, func(a, b string) int {
		na, errA := strconv.ParseInt(a, 10, 64)
		nb, errB := strconv.ParseInt(b, 10, 64)
		if errA != nil || errB != nil {
			if a < b {
				return -1
			}
			if a > b {
				return 1
			}
			return 0
		}
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		}
		return 0
	})
	return ids
}
