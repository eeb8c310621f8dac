package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sectorwars2102/gameserver/internal/apperrors"
	"github.com/sectorwars2102/gameserver/internal/domain/audit"
)

// AuditRepository persists audit.Entry records in the global shard: audit
// trails must survive and remain queryable independent of any one
// region's availability.
type AuditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Ingest inserts an entry unless its dedup key has already been recorded,
// matching audit.Ledger's in-memory semantics at the storage layer so
// at-least-once delivery from callers never double-records.
func (r *AuditRepository) Ingest(ctx context.Context, e *audit.Entry) (inserted bool, err error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_entries (id, dedup_key, actor_id, action, target_type, target_id, detail, severity, occurred_at, ingested_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (dedup_key) DO NOTHING
	`, e.ID, e.DedupKey, e.ActorID, e.Action, e.TargetType, e.TargetID, e.Detail, e.Severity, e.OccurredAt, e.IngestedAt)
	if err != nil {
		return false, apperrors.Unavailable("ingest audit entry", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Unavailable("ingest audit entry", err)
	}
	return n > 0, nil
}

func (r *AuditRepository) Get(ctx context.Context, id string) (*audit.Entry, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, dedup_key, actor_id, action, target_type, target_id, detail, severity, occurred_at, ingested_at
		FROM audit_entries WHERE id = $1
	`, id)
	return scanAuditEntry(row)
}

func scanAuditEntry(row *sql.Row) (*audit.Entry, error) {
	var e audit.Entry
	err := row.Scan(&e.ID, &e.DedupKey, &e.ActorID, &e.Action, &e.TargetType, &e.TargetID, &e.Detail, &e.Severity, &e.OccurredAt, &e.IngestedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("audit entry")
	}
	if err != nil {
		return nil, apperrors.Unavailable("scan audit entry", err)
	}
	return &e, nil
}

// ListByTarget loads every audit entry recorded against a target, most
// recent first, for surfacing in an admin/incident-review view.
func (r *AuditRepository) ListByTarget(ctx context.Context, targetType, targetID string, limit int) ([]*audit.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, dedup_key, actor_id, action, target_type, target_id, detail, severity, occurred_at, ingested_at
		FROM audit_entries
		WHERE target_type = $1 AND target_id = $2
		ORDER BY occurred_at DESC
		LIMIT $3
	`, targetType, targetID, limit)
	if err != nil {
		return nil, apperrors.Unavailable("list audit entries", err)
	}
	defer rows.Close()

	var out []*audit.Entry
	for rows.Next() {
		var e audit.Entry
		if err := rows.Scan(&e.ID, &e.DedupKey, &e.ActorID, &e.Action, &e.TargetType, &e.TargetID, &e.Detail, &e.Severity, &e.OccurredAt, &e.IngestedAt); err != nil {
			return nil, apperrors.Unavailable("scan audit entry", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

// ListByActor loads every audit entry attributed to an actor, most recent
// first, used by abuse-detection to scan an account's recent history.
func (r *AuditRepository) ListByActor(ctx context.Context, actorID string, limit int) ([]*audit.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, dedup_key, actor_id, action, target_type, target_id, detail, severity, occurred_at, ingested_at
		FROM audit_entries
		WHERE actor_id = $1
		ORDER BY occurred_at DESC
		LIMIT $2
	`, actorID, limit)
	if err != nil {
		return nil, apperrors.Unavailable("list audit entries by actor", err)
	}
	defer rows.Close()

	var out []*audit.Entry
	for rows.Next() {
		var e audit.Entry
		if err := rows.Scan(&e.ID, &e.DedupKey, &e.ActorID, &e.Action, &e.TargetType, &e.TargetID, &e.Detail, &e.Severity, &e.OccurredAt, &e.IngestedAt); err != nil {
			return nil, apperrors.Unavailable("scan audit entry", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
