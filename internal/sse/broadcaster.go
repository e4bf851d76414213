// Package sse fans session events out to server-sent-event clients.
package sse

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/aaronzipp/among-llms/internal/events"
)

// Message is one server-sent event
type Message struct {
	Event string
	Data  string
}

// Hub relays the events of one bus to its connected clients. Events are
// queued by the publisher and delivered on the hub's own goroutine, so a
// slow client never holds up a turn loop.
type Hub struct {
	mu      sync.RWMutex
	clients map[chan Message]string // channel -> viewer
	closed  bool
	done    chan struct{}
	queue   chan Message

	timeout     time.Duration
	logger      *slog.Logger
	unsubscribe func()
}

// NewHub subscribes a hub to every event on bus
func NewHub(bus *events.Bus, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	h := &Hub{
		clients: make(map[chan Message]string),
		done:    make(chan struct{}),
		queue:   make(chan Message, BufferSize),
		timeout: SendTimeout,
		logger:  logger,
	}
	h.unsubscribe = bus.SubscribeAll(h.relay)
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case msg := <-h.queue:
			h.Broadcast(msg.Event, msg.Data)
		case <-h.done:
			return
		}
	}
}

// AddClient registers a client channel for viewer
func (h *Hub) AddClient(viewer string) chan Message {
	client := make(chan Message, BufferSize)
	h.mu.Lock()
	defer h.mu.Unlock()
	dup := 0
	for _, v := range h.clients {
		if v == viewer {
			dup++
		}
	}
	if dup > 0 {
		h.logger.Debug("viewer opened additional SSE connection", "viewer", viewer, "existing", dup)
	}
	h.clients[client] = viewer
	return client
}

// RemoveClient unregisters a client channel
func (h *Hub) RemoveClient(client chan Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, client)
	h.logger.Debug("SSE client removed", "clients", len(h.clients))
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Done is closed when the hub is closed
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Close detaches the hub from the bus and releases its clients
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	h.unsubscribe()
	close(h.done)
}

func (h *Hub) relay(e events.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		h.logger.Error("encode event", "kind", e.Kind().String(), "err", err)
		return
	}
	msg := Message{Event: e.Kind().String(), Data: string(data)}
	select {
	case h.queue <- msg:
	case <-h.done:
	default:
		h.logger.Warn("SSE queue full, event dropped", "event", msg.Event)
	}
}

// Broadcast sends a message to all connected clients. A client that does
// not accept within the send timeout misses the message.
func (h *Hub) Broadcast(event, data string) {
	h.mu.RLock()
	// Collect all client channels while holding the lock
	clients := make([]chan Message, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	// Send WITHOUT holding the lock
	msg := Message{Event: event, Data: data}
	sent := 0
	for _, client := range clients {
		select {
		case client <- msg:
			sent++
		case <-time.After(h.timeout):
			h.logger.Warn("SSE client too slow, event dropped", "event", event)
		case <-h.done:
			return
		}
	}
	h.logger.Debug("broadcast", "event", event, "sent", sent, "clients", len(clients))
}

// SetHeaders prepares w for an event stream and flushes the headers
func SetHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable buffering in nginx/proxies
	w.WriteHeader(http.StatusOK)
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Write writes one event and flushes it
func Write(w io.Writer, msg Message) error {
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Event, msg.Data); err != nil {
		return err
	}
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
	return nil
}
