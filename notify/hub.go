package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Hub keeps websocket clients grouped by room and pushes team events to
// them. Only Run closes a client's Send channel, always under mu, so
// broadcasts never write to a closed channel.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	rooms      map[string]map[*Client]struct{}
	mu         sync.RWMutex
	logger     *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		rooms:      make(map[string]map[*Client]struct{}),
		logger:     logger,
	}
}

// Run serves registrations until ctx is done, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if _, ok := h.rooms[client.Room]; !ok {
				h.rooms[client.Room] = make(map[*Client]struct{})
			}
			h.rooms[client.Room][client] = struct{}{}
			size := len(h.rooms[client.Room])
			h.mu.Unlock()
			h.logger.Debug("websocket client registered", slog.String("room", client.Room), slog.Int("clients", size))

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case <-ctx.Done():
			h.mu.Lock()
			for _, clients := range h.rooms {
				for client := range clients {
					h.remove(client)
				}
			}
			h.mu.Unlock()
			return
		}
	}
}

// remove must be called with mu held.
func (h *Hub) remove(client *Client) {
	clients, ok := h.rooms[client.Room]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.Send)
	if len(clients) == 0 {
		delete(h.rooms, client.Room)
	}
	h.logger.Debug("websocket client unregistered", slog.String("room", client.Room), slog.Int("clients", len(clients)))
}

// RoomSize reports how many clients are connected to room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// BroadcastToRoom queues message for every client in room and returns how
// many clients got it. Clients with a full buffer miss the message.
func (h *Hub) BroadcastToRoom(room string, message []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for client := range h.rooms[room] {
		select {
		case client.Send <- message:
			delivered++
		default:
			h.logger.Warn("websocket client buffer full, dropping message", slog.String("room", room))
		}
	}
	return delivered
}

func (h *Hub) Name() string { return "websocket_hub" }

// Deliver pushes the event to the team's room. Events without a team are
// not broadcast.
func (h *Hub) Deliver(ctx context.Context, event Event) error {
	if event.TeamID == 0 {
		return nil
	}
	message, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode websocket message: %w", err)
	}
	h.BroadcastToRoom(TeamRoom(event.TeamID), message)
	return nil
}
