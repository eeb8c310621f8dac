package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sectorwars2102/gameserver/internal/apperrors"
	"github.com/sectorwars2102/gameserver/internal/domain/treaty"
)

// TreatyRepository persists Treaty aggregates in the global shard: a
// treaty directs a relationship between two regions and must be readable
// regardless of which region shard is being queried.
type TreatyRepository struct {
	db *sql.DB
}

func NewTreatyRepository(db *sql.DB) *TreatyRepository {
	return &TreatyRepository{db: db}
}

func (r *TreatyRepository) Create(ctx context.Context, t *treaty.Treaty) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO treaties (id, region_a_id, region_b_id, type, status, terms_json, expires_at, created_at, updated_at, version)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, t.ID, t.RegionAID, t.RegionBID, t.Type, t.Status, t.TermsJSON, t.ExpiresAt, t.CreatedAt, t.UpdatedAt, t.Version)
	if err != nil {
		return apperrors.Unavailable("create treaty", err)
	}
	return nil
}

func (r *TreatyRepository) Get(ctx context.Context, id string) (*treaty.Treaty, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, region_a_id, region_b_id, type, status, terms_json, expires_at, created_at, updated_at, version
		FROM treaties WHERE id = $1
	`, id)
	return scanTreaty(row)
}

func scanTreaty(row *sql.Row) (*treaty.Treaty, error) {
	var t treaty.Treaty
	err := row.Scan(&t.ID, &t.RegionAID, &t.RegionBID, &t.Type, &t.Status, &t.TermsJSON, &t.ExpiresAt, &t.CreatedAt, &t.UpdatedAt, &t.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("treaty")
	}
	if err != nil {
		return nil, apperrors.Unavailable("scan treaty", err)
	}
	return &t, nil
}

// ListByRegion loads every treaty directed to or from a region, used by
// the federation layer to enforce diplomacy checks on travel/trade.
func (r *TreatyRepository) ListByRegion(ctx context.Context, regionID string) ([]*treaty.Treaty, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, region_a_id, region_b_id, type, status, terms_json, expires_at, created_at, updated_at, version
		FROM treaties WHERE region_a_id = $1 OR region_b_id = $1
	`, regionID)
	if err != nil {
		return nil, apperrors.Unavailable("list treaties", err)
	}
	defer rows.Close()

	var out []*treaty.Treaty
	for rows.Next() {
		var t treaty.Treaty
		if err := rows.Scan(&t.ID, &t.RegionAID, &t.RegionBID, &t.Type, &t.Status, &t.TermsJSON, &t.ExpiresAt, &t.CreatedAt, &t.UpdatedAt, &t.Version); err != nil {
			return nil, apperrors.Unavailable("scan treaty", err)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (r *TreatyRepository) Update(ctx context.Context, t *treaty.Treaty) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE treaties SET status = $2, updated_at = $3, version = version + 1
		WHERE id = $1 AND version = $4
	`, t.ID, t.Status, t.UpdatedAt, t.Version)
	if err != nil {
		return apperrors.Unavailable("update treaty", err)
	}
	return CheckVersionedUpdate(result, "treaty")
}
