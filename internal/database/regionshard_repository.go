package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sectorwars2102/gameserver/internal/apperrors"
)

// RegionShardAssignment records which physical connection string a
// region's own shard is reachable at.
type RegionShardAssignment struct {
	RegionID   string
	ShardDSN   string
	AssignedAt time.Time
}

// RegionShardRepository persists region-to-shard-DSN assignments in the
// global shard, resolved by the shard registry at region activation or
// server bootstrap.
type RegionShardRepository struct {
	db *sql.DB
}

func NewRegionShardRepository(db *sql.DB) *RegionShardRepository {
	return &RegionShardRepository{db: db}
}

func (r *RegionShardRepository) Assign(ctx context.Context, regionID, shardDSN string, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO region_shard_assignments (region_id, shard_dsn, assigned_at)
		VALUES ($1,$2,$3)
		ON CONFLICT (region_id) DO UPDATE SET shard_dsn = $2, assigned_at = $3
	`, regionID, shardDSN, now)
	if err != nil {
		return apperrors.Unavailable("assign region shard", err)
	}
	return nil
}

func (r *RegionShardRepository) Get(ctx context.Context, regionID string) (*RegionShardAssignment, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT region_id, shard_dsn, assigned_at FROM region_shard_assignments WHERE region_id = $1
	`, regionID)
	var a RegionShardAssignment
	err := row.Scan(&a.RegionID, &a.ShardDSN, &a.AssignedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("region shard assignment")
	}
	if err != nil {
		return nil, apperrors.Unavailable("scan region shard assignment", err)
	}
	return &a, nil
}

// List loads every assignment, used to repopulate the in-memory shard
// registry on server startup.
func (r *RegionShardRepository) List(ctx context.Context) ([]*RegionShardAssignment, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT region_id, shard_dsn, assigned_at FROM region_shard_assignments`)
	if err != nil {
		return nil, apperrors.Unavailable("list region shard assignments", err)
	}
	defer rows.Close()

	var out []*RegionShardAssignment
	for rows.Next() {
		var a RegionShardAssignment
		if err := rows.Scan(&a.RegionID, &a.ShardDSN, &a.AssignedAt); err != nil {
			return nil, apperrors.Unavailable("scan region shard assignment", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}
