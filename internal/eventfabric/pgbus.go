package eventfabric

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"time"

	"github.com/lib/pq"

	"github.com/sectorwars2102/gameserver/internal/domain"
)

// fabricChannel is the single Postgres NOTIFY channel every process
// listens on; scope-based routing happens in-process after receipt, the
// same as it does for locally originated events.
const fabricChannel = "sectorwars_fabric"

// PGBus fans durable events out across processes over Postgres
// LISTEN/NOTIFY, grounded on r3e-network-service_layer's pkg/pgnotify
// bus. In the default single-process deployment this is unused — the
// in-memory Hub alone is authoritative — but wiring it costs nothing and
// lets a multi-process deployment share the fabric without redesign.
type PGBus struct {
	db       *sql.DB
	listener *pq.Listener
	hub      *Hub
}

// NewPGBus constructs a bus that notifies over dsn and delivers incoming
// notifications into hub.
func NewPGBus(dsn string, db *sql.DB, hub *Hub) *PGBus {
	reportProblem := func(_ pq.ListenerEventType, err error) {
		if err != nil {
			log.Printf("eventfabric: pgbus listener error: %v", err)
		}
	}
	return &PGBus{
		db:       db,
		listener: pq.NewListener(dsn, 10*time.Second, time.Minute, reportProblem),
		hub:      hub,
	}
}

// Start subscribes to the fabric channel and begins delivering
// notifications into the bus's hub until ctx is canceled.
func (b *PGBus) Start(ctx context.Context) error {
	if err := b.listener.Listen(fabricChannel); err != nil {
		return err
	}
	go b.run(ctx)
	return nil
}

func (b *PGBus) run(ctx context.Context) {
	defer b.listener.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-b.listener.Notify:
			if n == nil {
				continue // connection dropped; pq.Listener reconnects and relistens itself
			}
			var event domain.Event
			if err := json.Unmarshal([]byte(n.Extra), &event); err != nil {
				log.Printf("eventfabric: pgbus decode error: %v", err)
				continue
			}
			b.hub.deliverLocal(event)
		case <-time.After(90 * time.Second):
			_ = b.listener.Ping()
		}
	}
}

// NotifyPeers publishes event to every other process listening on the
// fabric channel.
func (b *PGBus) NotifyPeers(ctx context.Context, event domain.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = b.db.ExecContext(ctx, "SELECT pg_notify($1, $2)", fabricChannel, string(payload))
	return err
}
