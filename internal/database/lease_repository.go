package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sectorwars2102/gameserver/internal/apperrors"
)

// LeaseRepository persists scheduler_leases rows in the global shard: one
// row per region shard, giving at most one scheduler process ownership of
// that shard's periodic jobs at a time.
type LeaseRepository struct {
	db *sql.DB
}

func NewLeaseRepository(db *sql.DB) *LeaseRepository {
	return &LeaseRepository{db: db}
}

// Acquire claims shardID for owner if it is unclaimed or its existing
// lease has expired, extending the lease to expiresAt. Returns false
// without error if another owner currently holds a live lease.
func (r *LeaseRepository) Acquire(ctx context.Context, shardID, owner string, expiresAt time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO scheduler_leases (shard_id, lease_owner, lease_expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (shard_id) DO UPDATE
			SET lease_owner = $2, lease_expires_at = $3
			WHERE scheduler_leases.lease_owner = $2 OR scheduler_leases.lease_expires_at < now()
	`, shardID, owner, expiresAt)
	if err != nil {
		return false, apperrors.Unavailable("acquire scheduler lease", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Unavailable("acquire scheduler lease rows affected", err)
	}
	return rows > 0, nil
}

// Renew extends an already-held lease; it is a no-op (returning false) if
// owner no longer holds the lease, e.g. another process reclaimed it
// after this one stalled past the previous expiry.
func (r *LeaseRepository) Renew(ctx context.Context, shardID, owner string, expiresAt time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE scheduler_leases SET lease_expires_at = $3
		WHERE shard_id = $1 AND lease_owner = $2
	`, shardID, owner, expiresAt)
	if err != nil {
		return false, apperrors.Unavailable("renew scheduler lease", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Unavailable("renew scheduler lease rows affected", err)
	}
	return rows > 0, nil
}

// Release drops ownership early, e.g. on graceful shutdown, so another
// process can acquire the shard without waiting out the full TTL.
func (r *LeaseRepository) Release(ctx context.Context, shardID, owner string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM scheduler_leases WHERE shard_id = $1 AND lease_owner = $2
	`, shardID, owner)
	if err != nil {
		return apperrors.Unavailable("release scheduler lease", err)
	}
	return nil
}

// Holder returns the current owner and expiry for shardID, for
// diagnostics; NotFound if no lease row exists yet.
func (r *LeaseRepository) Holder(ctx context.Context, shardID string) (owner string, expiresAt time.Time, err error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT lease_owner, lease_expires_at FROM scheduler_leases WHERE shard_id = $1
	`, shardID)
	if scanErr := row.Scan(&owner, &expiresAt); scanErr != nil {
		if errors.Is(scanErr, sql.ErrNoRows) {
			return "", time.Time{}, apperrors.NotFound("scheduler lease")
		}
		return "", time.Time{}, apperrors.Unavailable("scan scheduler lease", scanErr)
	}
	return owner, expiresAt, nil
}
