// Package eventfabric routes domain events produced by every other
// component to connected players over WebSocket, generalizing
// EverforgeWorks-Galaxies-Server's single global broadcast hub into
// per-scope routing (region, sector, team, player, admin). Durable events
// are additionally persisted for reconnect replay (store.go) and can fan
// out across processes via Postgres LISTEN/NOTIFY (pgbus.go).
package eventfabric

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/sectorwars2102/gameserver/internal/apperrors"
	"github.com/sectorwars2102/gameserver/internal/domain"
)

// Hub owns client registration and routes published events to every
// client subscribed to one of the event's scopes. It satisfies the
// narrow Publisher interface every other component package declares for
// itself (federation, trading, combatengine, simulation).
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]bool // scope -> registered clients

	register   chan *Client
	unregister chan *Client

	store *Store
	bus   *PGBus

	outboundHighWater   int
	durableSendDeadline time.Duration
}

// SetBus wires a cross-process fan-out bus. Every durable Publish call
// notifies peers through it once set; unset (the default single-process
// deployment) the in-memory hub alone is authoritative.
func (h *Hub) SetBus(bus *PGBus) { h.bus = bus }

// NewHub constructs a Hub. store may be nil, in which case durable events
// are routed live but never persisted for replay.
func NewHub(store *Store, outboundHighWater int, durableSendDeadline time.Duration) *Hub {
	if outboundHighWater <= 0 {
		outboundHighWater = 256
	}
	if durableSendDeadline <= 0 {
		durableSendDeadline = 2 * time.Second
	}
	return &Hub{
		clients:             make(map[string]map[*Client]bool),
		register:            make(chan *Client),
		unregister:          make(chan *Client),
		store:               store,
		outboundHighWater:   outboundHighWater,
		durableSendDeadline: durableSendDeadline,
	}
}

// Run is the hub's registration loop; it must run in its own goroutine
// for the hub's lifetime. Publish does not go through this loop — it
// reads the client registry directly under the hub's mutex, so
// publishing is never serialized behind register/unregister traffic.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.mu.Lock()
			for scope := range c.scopes {
				if h.clients[scope] == nil {
					h.clients[scope] = make(map[*Client]bool)
				}
				h.clients[scope][c] = true
			}
			h.mu.Unlock()
			socketsConnected.Inc()
		case c := <-h.unregister:
			h.mu.Lock()
			for scope := range c.scopes {
				delete(h.clients[scope], c)
			}
			h.mu.Unlock()
			close(c.send)
			socketsConnected.Dec()
		}
	}
}

// Publish fans event out to every client subscribed to one of its
// scopes. Best-effort (non-durable) events use a non-blocking send and
// are silently dropped for a client whose outbound buffer is full;
// durable events use a bounded blocking send and, if any subscriber's
// deadline elapses, the publish fails with Unavailable so the
// originating mutation can report it (per the degrade-vs-fail split in
// the unavailable-dependency policy).
func (h *Hub) Publish(ctx context.Context, event domain.Event) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	eventsPublished.WithLabelValues(event.Type, durableLabel(event.Durable)).Inc()

	if event.Durable && h.store != nil {
		if _, err := h.store.Append(ctx, event); err != nil {
			return err
		}
	}

	if h.bus != nil {
		_ = h.bus.NotifyPeers(ctx, event)
	}

	return h.route(event, true)
}

// deliverLocal routes an event received from another process via PGBus
// to this process's own clients. It never re-persists (the originating
// process already appended it to the durable store) and never fails the
// caller on a slow subscriber — there is no local mutation waiting on it.
func (h *Hub) deliverLocal(event domain.Event) {
	_ = h.route(event, false)
}

func (h *Hub) route(event domain.Event, enforceDeadline bool) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	h.mu.RLock()
	seen := make(map[*Client]bool)
	targets := make([]*Client, 0, 8)
	for _, scope := range event.Scopes {
		for c := range h.clients[scope] {
			if !seen[c] {
				seen[c] = true
				targets = append(targets, c)
			}
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if !event.Durable || !enforceDeadline {
			select {
			case c.send <- data:
			default:
			}
			continue
		}
		select {
		case c.send <- data:
		case <-time.After(h.durableSendDeadline):
			durableSendTimeouts.Inc()
			return apperrors.Unavailable("publish durable event", context.DeadlineExceeded)
		}
	}
	return nil
}

// Presence reports the hub's current connection counts, refreshed from
// live registry state under its mutex.
func (h *Hub) Presence() Presence {
	h.mu.RLock()
	defer h.mu.RUnlock()

	p := Presence{PerScope: make(map[string]int, len(h.clients))}
	seen := make(map[*Client]bool)
	for scope, clients := range h.clients {
		p.PerScope[scope] = len(clients)
		for c := range clients {
			if !seen[c] {
				seen[c] = true
				p.TotalSockets++
				if c.isAdmin {
					p.AdminSockets++
				}
			}
		}
	}
	return p
}
