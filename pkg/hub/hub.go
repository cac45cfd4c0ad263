package hub

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

// Hub maintains the set of active clients and broadcasts messages to them.
// All client bookkeeping happens on the Run goroutine.
type Hub struct {
	name   string
	logger *slog.Logger

	clients    map[*Client]bool
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	// mu guards count for readers outside Run.
	mu    sync.RWMutex
	count int
}

// New creates a hub. name labels its logs and metrics.
func New(name string, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		name:       name,
		logger:     logger.With("component", "hub", "hub", name),
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run is the hub's main loop. It returns when ctx is cancelled, after
// closing every client's send queue.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for c := range h.clients {
			h.remove(c)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.register:
			h.clients[c] = true
			h.setCount()
			h.logger.Info("client connected", "clients", len(h.clients))

		case c := <-h.unregister:
			if h.clients[c] {
				h.remove(c)
				h.logger.Info("client disconnected", "clients", len(h.clients))
			}

		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// The client keeps its connection and misses this message.
					droppedTotal.WithLabelValues(h.name, "slow_client").Inc()
				}
			}
		}
	}
}

func (h *Hub) remove(c *Client) {
	delete(h.clients, c)
	close(c.send)
	h.setCount()
}

func (h *Hub) setCount() {
	h.mu.Lock()
	h.count = len(h.clients)
	h.mu.Unlock()
	clientsGauge.WithLabelValues(h.name).Set(float64(len(h.clients)))
}

// Send queues a message for every client. It never blocks; when the
// backlog is full the message is dropped.
func (h *Hub) Send(msg Message) {
	select {
	case h.broadcast <- msg:
	default:
		droppedTotal.WithLabelValues(h.name, "backlog").Inc()
		h.logger.Debug("broadcast backlog full, dropping message")
	}
}

// Broadcast sends a binary frame. It makes Hub a camera.Sink.
func (h *Hub) Broadcast(frame []byte) {
	h.Send(Frame(frame))
}

// BroadcastJSON encodes v and sends it as a text message.
func (h *Hub) BroadcastJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.Send(Text(data))
	return nil
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}
