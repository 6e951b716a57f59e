package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/lacarte/orderdesk/internal/service/models/event"
)

// Hub is the registry of connected WebSocket sessions: the admin broadcast
// group and the per-customer sessions. It is the only owner of that state;
// sessions are added and removed strictly through the connect/disconnect
// lifecycle, never reached through package globals.
//
// Pushes are best effort. A slow or dead session is dropped rather than
// allowed to block fan-out; clients resynchronize through the pull
// endpoints after reconnecting.
type Hub struct {
	mu        sync.RWMutex
	admins    map[*Session]struct{}
	customers map[int64]map[*Session]struct{}
}

// NewHub creates an empty session registry.
func NewHub() *Hub {
	return &Hub{
		admins:    make(map[*Session]struct{}),
		customers: make(map[int64]map[*Session]struct{}),
	}
}

func (h *Hub) addAdmin(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.admins[s] = struct{}{}
}

func (h *Hub) addCustomer(customerID int64, s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	sessions, ok := h.customers[customerID]
	if !ok {
		sessions = make(map[*Session]struct{})
		h.customers[customerID] = sessions
	}
	sessions[s] = struct{}{}
}

func (h *Hub) remove(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.admins, s)
	if s.customerID != 0 {
		if sessions, ok := h.customers[s.customerID]; ok {
			delete(sessions, s)
			if len(sessions) == 0 {
				delete(h.customers, s.customerID)
			}
		}
	}
}

// adminSnapshot copies the admin set so fan-out never iterates a map that a
// concurrent connect or disconnect is mutating.
func (h *Hub) adminSnapshot() []*Session {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]*Session, 0, len(h.admins))
	for s := range h.admins {
		out = append(out, s)
	}

	return out
}

func (h *Hub) customerSnapshot(customerID int64) []*Session {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sessions := h.customers[customerID]
	out := make([]*Session, 0, len(sessions))
	for s := range sessions {
		out = append(out, s)
	}

	return out
}

// BroadcastOrderCreated pushes a new order to every admin subscriber.
func (h *Hub) BroadcastOrderCreated(ctx context.Context, evt event.OrderCreated) {
	body, err := json.Marshal(evt)
	if err != nil {
		slog.ErrorContext(ctx, "failed to marshal order created event", "error", err)

		return
	}

	for _, s := range h.adminSnapshot() {
		s.push(ctx, body)
	}
}

// BroadcastStatusChanged pushes a status change to every admin subscriber
// and to the sessions of the owning customer, if any are connected.
func (h *Hub) BroadcastStatusChanged(ctx context.Context, evt event.OrderStatusChanged) {
	body, err := json.Marshal(evt)
	if err != nil {
		slog.ErrorContext(ctx, "failed to marshal status changed event", "error", err)

		return
	}

	for _, s := range h.adminSnapshot() {
		s.push(ctx, body)
	}
	for _, s := range h.customerSnapshot(evt.CustomerID) {
		s.push(ctx, body)
	}
}

// CloseAll disconnects every session for graceful shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	sessions := make([]*Session, 0, len(h.admins))
	for s := range h.admins {
		sessions = append(sessions, s)
	}
	for _, set := range h.customers {
		for s := range set {
			sessions = append(sessions, s)
		}
	}
	h.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
}
