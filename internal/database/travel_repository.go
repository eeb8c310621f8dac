package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/sectorwars2102/gameserver/internal/apperrors"
	"github.com/sectorwars2102/gameserver/internal/domain/travel"
)

// TravelRepository persists Travel saga records in the global shard: the
// Record step of the saga is, by definition, the durable global record of
// an in-flight cross-shard transit.
type TravelRepository struct {
	db *sql.DB
}

func NewTravelRepository(db *sql.DB) *TravelRepository {
	return &TravelRepository{db: db}
}

func (r *TravelRepository) Create(ctx context.Context, t *travel.Travel) error {
	manifestJSON, err := json.Marshal(t.Manifest)
	if err != nil {
		return apperrors.Unavailable("marshal travel manifest", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO travels (id, player_id, source_region_id, dest_region_id, method, cost, manifest,
			state, reserved_at, recorded_at, materialized_at, failure_reason, created_at, updated_at, version)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`, t.ID, t.PlayerID, t.SourceRegionID, t.DestRegionID, t.Method, t.Cost, manifestJSON,
		t.State, t.ReservedAt, t.RecordedAt, t.MaterializedAt, t.FailureReason, t.CreatedAt, t.UpdatedAt, t.Version)
	if err != nil {
		return apperrors.Unavailable("create travel", err)
	}
	return nil
}

func (r *TravelRepository) Get(ctx context.Context, id string) (*travel.Travel, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, player_id, source_region_id, dest_region_id, method, cost, manifest,
		       state, reserved_at, recorded_at, materialized_at, failure_reason, created_at, updated_at, version
		FROM travels WHERE id = $1
	`, id)
	var t travel.Travel
	var manifestRaw []byte
	err := row.Scan(&t.ID, &t.PlayerID, &t.SourceRegionID, &t.DestRegionID, &t.Method, &t.Cost, &manifestRaw,
		&t.State, &t.ReservedAt, &t.RecordedAt, &t.MaterializedAt, &t.FailureReason, &t.CreatedAt, &t.UpdatedAt, &t.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("travel")
	}
	if err != nil {
		return nil, apperrors.Unavailable("scan travel", err)
	}
	if len(manifestRaw) > 0 {
		if err := json.Unmarshal(manifestRaw, &t.Manifest); err != nil {
			return nil, apperrors.Unavailable("unmarshal travel manifest", err)
		}
	}
	return &t, nil
}

// Upsert persists a travel record idempotently keyed by id: invoked at
// each saga step (Reserve/Record/Materialize), repeated calls with the
// same step already applied are no-ops on the domain object, so this is a
// plain unconditional save rather than a versioned one.
func (r *TravelRepository) Upsert(ctx context.Context, t *travel.Travel) error {
	manifestJSON, err := json.Marshal(t.Manifest)
	if err != nil {
		return apperrors.Unavailable("marshal travel manifest", err)
	}
	_, err = r.db.ExecContext(ctx, `
		UPDATE travels
		SET state = $2, reserved_at = $3, recorded_at = $4, materialized_at = $5, failure_reason = $6,
		    manifest = $7, updated_at = $8
		WHERE id = $1
	`, t.ID, t.State, t.ReservedAt, t.RecordedAt, t.MaterializedAt, t.FailureReason, manifestJSON, t.UpdatedAt)
	if err != nil {
		return apperrors.Unavailable("save travel", err)
	}
	return nil
}

// ListInTransitForRegion loads every still-in-transit travel whose source
// or destination is a region, used by a newly activated or resuming
// region shard to replay pending arrivals/departures.
func (r *TravelRepository) ListInTransitForRegion(ctx context.Context, regionID string) ([]*travel.Travel, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, player_id, source_region_id, dest_region_id, method, cost, manifest,
		       state, reserved_at, recorded_at, materialized_at, failure_reason, created_at, updated_at, version
		FROM travels
		WHERE (source_region_id = $1 OR dest_region_id = $1) AND state = $2
	`, regionID, travel.StateInTransit)
	if err != nil {
		return nil, apperrors.Unavailable("list in-transit travels", err)
	}
	defer rows.Close()

	var out []*travel.Travel
	for rows.Next() {
		var t travel.Travel
		var manifestRaw []byte
		if err := rows.Scan(&t.ID, &t.PlayerID, &t.SourceRegionID, &t.DestRegionID, &t.Method, &t.Cost, &manifestRaw,
			&t.State, &t.ReservedAt, &t.RecordedAt, &t.MaterializedAt, &t.FailureReason, &t.CreatedAt, &t.UpdatedAt, &t.Version); err != nil {
			return nil, apperrors.Unavailable("scan travel", err)
		}
		if len(manifestRaw) > 0 {
			_ = json.Unmarshal(manifestRaw, &t.Manifest)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

// ListInTransitRecordedBefore loads every still-in-transit travel whose
// global record step completed before cutoff without having since
// materialized, for the scheduler's travel-timeout sweep: a travel
// recorded long ago and never arrived is presumed lost in the
// destination shard and gets compensated via TravelService.Fail.
func (r *TravelRepository) ListInTransitRecordedBefore(ctx context.Context, cutoff time.Time) ([]*travel.Travel, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, player_id, source_region_id, dest_region_id, method, cost, manifest,
		       state, reserved_at, recorded_at, materialized_at, failure_reason, created_at, updated_at, version
		FROM travels
		WHERE state = $1 AND recorded_at IS NOT NULL AND recorded_at <= $2
	`, travel.StateInTransit, cutoff)
	if err != nil {
		return nil, apperrors.Unavailable("list timed-out travels", err)
	}
	defer rows.Close()

	var out []*travel.Travel
	for rows.Next() {
		var t travel.Travel
		var manifestRaw []byte
		if err := rows.Scan(&t.ID, &t.PlayerID, &t.SourceRegionID, &t.DestRegionID, &t.Method, &t.Cost, &manifestRaw,
			&t.State, &t.ReservedAt, &t.RecordedAt, &t.MaterializedAt, &t.FailureReason, &t.CreatedAt, &t.UpdatedAt, &t.Version); err != nil {
			return nil, apperrors.Unavailable("scan travel", err)
		}
		if len(manifestRaw) > 0 {
			_ = json.Unmarshal(manifestRaw, &t.Manifest)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}
