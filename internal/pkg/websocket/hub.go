// Package websocket serves the seat feed: connected clients of a section
// receive a dto.SeatUpdate every time its enrolled count changes.
package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"github.com/yigit/campus/internal/app/models/dto"
	"github.com/yigit/campus/internal/pkg/metrics"
)

const broadcastBuffer = 256

// Hub keeps the connected clients per section and fans seat updates out to them
type Hub struct {
	// Registered clients organized by section ID
	clients map[int64]map[*Client]bool
	mu      sync.RWMutex

	broadcast  chan dto.SeatUpdate
	register   chan *Client
	unregister chan *Client
	// done is closed when Run returns.
	done chan struct{}

	logger zerolog.Logger
}

// ErrHubStopped is returned by Serve once the hub no longer runs.
var ErrHubStopped = errors.New("seat feed hub stopped")

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		broadcast:  make(chan dto.SeatUpdate, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run serves registrations and broadcasts until ctx is done, then closes
// every client. It must be called once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case update := <-h.broadcast:
			h.broadcastUpdate(update)
		}
	}
}

// PublishSeats queues update for the clients of its section. It never
// blocks: when the queue is full the update is dropped, since a later one
// supersedes it.
func (h *Hub) PublishSeats(update dto.SeatUpdate) {
	select {
	case h.broadcast <- update:
	default:
		h.logger.Warn().Int64("sectionID", update.SectionID).Msg("Seat feed queue full, dropping update")
	}
}

// ClientsCount returns the number of connected clients of a section
func (h *Hub) ClientsCount(sectionID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sectionID])
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.sectionID]; !ok {
		h.clients[client.sectionID] = make(map[*Client]bool)
	}
	h.clients[client.sectionID][client] = true
	metrics.SeatSubscribers.Inc()

	h.logger.Debug().
		Int64("sectionID", client.sectionID).
		Int64("userID", client.userID).
		Msg("Seat feed client registered")
}

// leave hands client back to the hub. After Run returned, the client was
// already dropped by closeAll and there is nobody to receive.
func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(client)
}

// dropLocked removes client and closes its send channel. h.mu must be held.
func (h *Hub) dropLocked(client *Client) {
	clients, ok := h.clients[client.sectionID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	close(client.send)
	metrics.SeatSubscribers.Dec()
	if len(clients) == 0 {
		delete(h.clients, client.sectionID)
	}

	h.logger.Debug().
		Int64("sectionID", client.sectionID).
		Int64("userID", client.userID).
		Msg("Seat feed client unregistered")
}

func (h *Hub) broadcastUpdate(update dto.SeatUpdate) {
	data, err := json.Marshal(update)
	if err != nil {
		h.logger.Error().Err(err).Int64("sectionID", update.SectionID).Msg("Failed to marshal seat update")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients[update.SectionID] {
		select {
		case client.send <- data:
		default:
			// Slow consumer.
			h.dropLocked(client)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.clients {
		for client := range clients {
			h.dropLocked(client)
		}
	}
}
