// Package live pushes session updates to websocket subscribers.
package live

import (
	"context"
	"sync"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

type message struct {
	room    string
	payload []byte
}

// Hub fans messages out to the clients of a room. Rooms are session ids.
type Hub struct {
	rooms map[string]map[*Client]struct{}
	mu    sync.RWMutex

	register   chan *Client
	unregister chan *Client
	broadcast  chan message
	done       chan struct{}
}

// NewHub creates a Hub. Start it with Run.
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, 256),
		done:       make(chan struct{}),
	}
}

// Run dispatches messages until ctx is cancelled, then disconnects every
// client.
func (h *Hub) Run(ctx context.Context) error {
	lg := zctx.From(ctx).Named("live")
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for room, clients := range h.rooms {
				for c := range clients {
					close(c.send)
				}
				delete(h.rooms, room)
			}
			h.mu.Unlock()
			return nil

		case c := <-h.register:
			h.mu.Lock()
			if h.rooms[c.room] == nil {
				h.rooms[c.room] = make(map[*Client]struct{})
			}
			h.rooms[c.room][c] = struct{}{}
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			h.dropLocked(c)
			h.mu.Unlock()

		case m := <-h.broadcast:
			h.mu.Lock()
			for c := range h.rooms[m.room] {
				select {
				case c.send <- m.payload:
				default:
					lg.Warn("Dropping slow subscriber", zap.String("session_id", m.room))
					h.dropLocked(c)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) dropLocked(c *Client) {
	clients, ok := h.rooms[c.room]
	if !ok {
		return
	}
	if _, ok := clients[c]; !ok {
		return
	}
	delete(clients, c)
	close(c.send)
	if len(clients) == 0 {
		delete(h.rooms, c.room)
	}
}

// Broadcast queues payload for every client in room. It never blocks: when
// the queue is full the message is dropped and false is returned.
func (h *Hub) Broadcast(room string, payload []byte) bool {
	select {
	case h.broadcast <- message{room: room, payload: payload}:
		return true
	default:
		return false
	}
}

// Subscribers returns the number of clients in room.
func (h *Hub) Subscribers(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}
