package eventfabric

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/sectorwars2102/gameserver/internal/apperrors"
	"github.com/sectorwars2102/gameserver/internal/domain"
)

// Store is the durable append log backing event replay: every durable
// event is recorded keyed by (scope, sequence), and a reconnecting
// client resumes from sequence > cursor in order.
type Store struct {
	db *sql.DB
}

// NewStore constructs a Store over the global shard's connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// StoredEvent is one durable event as recorded in a given scope's log.
type StoredEvent struct {
	Scope    string
	Sequence int64
	Event    domain.Event
}

// Append records event once per scope it carries and returns the highest
// sequence assigned. Each (scope, sequence) pair is unique per scope, so
// a scope's log is independently ordered.
func (s *Store) Append(ctx context.Context, event domain.Event) (int64, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return 0, apperrors.Unavailable("encode durable event", err)
	}

	var lastSeq int64
	for _, scope := range event.Scopes {
		row := s.db.QueryRowContext(ctx, `
			WITH bumped AS (
				INSERT INTO fabric_scope_cursors (scope, next_sequence) VALUES ($1, 1)
				ON CONFLICT (scope) DO UPDATE SET next_sequence = fabric_scope_cursors.next_sequence + 1
				RETURNING next_sequence
			)
			INSERT INTO fabric_events (scope, sequence, event_type, payload, occurred_at)
			SELECT $1, next_sequence, $2, $3, $4 FROM bumped
			RETURNING sequence
		`, scope, event.Type, payload, event.OccurredAt)
		if err := row.Scan(&lastSeq); err != nil {
			return 0, apperrors.Unavailable("append durable event", err)
		}
	}
	return lastSeq, nil
}

// Since returns every event recorded for scope with sequence greater
// than cursor, in ascending sequence order.
func (s *Store) Since(ctx context.Context, scope string, cursor int64) ([]StoredEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT scope, sequence, event_type, payload, occurred_at
		FROM fabric_events WHERE scope = $1 AND sequence > $2 ORDER BY sequence ASC
	`, scope, cursor)
	if err != nil {
		return nil, apperrors.Unavailable("replay durable events", err)
	}
	defer rows.Close()

	var out []StoredEvent
	for rows.Next() {
		var se StoredEvent
		var payload []byte
		if err := rows.Scan(&se.Scope, &se.Sequence, &se.Event.Type, &payload, &se.Event.OccurredAt); err != nil {
			return nil, apperrors.Unavailable("scan durable event", err)
		}
		if err := json.Unmarshal(payload, &se.Event); err != nil {
			return nil, apperrors.Unavailable("decode durable event payload", err)
		}
		out = append(out, se)
	}
	return out, rows.Err()
}

func marshalStored(e StoredEvent) ([]byte, error) {
	return json.Marshal(e.Event)
}
