package hub

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

// queueSize bounds pending publishes; beyond it new messages are dropped.
const queueSize = 256

// Hub owns one dashboard stream. A single goroutine (Run) owns the viewer
// set; Publish, join and leave talk to it over channels.
type Hub struct {
	name   string
	logger *slog.Logger

	publish chan Message
	joins   chan *Client
	leaves  chan *Client
	done    chan struct{}

	// mu guards the fields below for readers outside Run.
	mu      sync.RWMutex
	viewers map[*Client]struct{}
	latest  *Message
	running bool
}

// New creates a hub; call Run to start it.
func New(name string, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		name:    name,
		logger:  logger.With("component", "hub", "stream", name),
		publish: make(chan Message, queueSize),
		joins:   make(chan *Client),
		leaves:  make(chan *Client),
		done:    make(chan struct{}),
		viewers: make(map[*Client]struct{}),
	}
}

// Run serves joins, leaves and publishes until ctx is done, then closes every
// viewer's queue.
func (h *Hub) Run(ctx context.Context) {
	h.mu.Lock()
	h.running = true
	h.mu.Unlock()
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.joins:
			h.add(c)
		case c := <-h.leaves:
			h.remove(c, "left")
		case msg := <-h.publish:
			h.fanOut(msg)
		}
	}
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	h.viewers[c] = struct{}{}
	if h.latest != nil {
		// Fresh queue, so this never blocks.
		c.send <- *h.latest
	}
	n := len(h.viewers)
	h.mu.Unlock()
	h.logger.Debug("viewer joined", "viewers", n)
}

func (h *Hub) remove(c *Client, reason string) {
	h.mu.Lock()
	_, ok := h.viewers[c]
	if ok {
		delete(h.viewers, c)
		close(c.send)
	}
	n := len(h.viewers)
	h.mu.Unlock()
	if ok {
		h.logger.Debug("viewer removed", "reason", reason, "viewers", n)
	}
}

func (h *Hub) fanOut(msg Message) {
	h.mu.Lock()
	h.latest = &msg
	var slow []*Client
	for c := range h.viewers {
		select {
		case c.send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.Unlock()

	for _, c := range slow {
		h.remove(c, "slow")
		h.logger.Warn("dropped slow viewer", "kind", msg.Kind)
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	for c := range h.viewers {
		close(c.send)
	}
	clear(h.viewers)
	h.running = false
	h.mu.Unlock()
	close(h.done)
}

// Publish queues msg for every viewer. It never blocks; when the queue is
// full the message is dropped.
func (h *Hub) Publish(msg Message) {
	select {
	case h.publish <- msg:
	default:
		h.logger.Debug("publish queue full, dropping", "kind", msg.Kind)
	}
}

// PublishStatus JSON-encodes v and publishes it as a status message.
func (h *Hub) PublishStatus(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.Publish(StatusMessage(data))
	return nil
}

// PublishFrame publishes an encoded camera image.
func (h *Hub) PublishFrame(data []byte) {
	h.Publish(FrameMessage(data))
}

// Viewers returns the number of connected viewers.
func (h *Hub) Viewers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.viewers)
}

// IsRunning reports whether Run is active.
func (h *Hub) IsRunning() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.running
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// join registers c unless the hub has stopped.
func (h *Hub) join(c *Client) bool {
	select {
	case h.joins <- c:
		return true
	case <-h.done:
		return false
	}
}

// leave unregisters c unless the hub has stopped.
func (h *Hub) leave(c *Client) {
	select {
	case h.leaves <- c:
	case <-h.done:
	}
}
