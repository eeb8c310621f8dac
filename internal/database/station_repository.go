package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/sectorwars2102/gameserver/internal/apperrors"
	"github.com/sectorwars2102/gameserver/internal/domain/station"
)

// StationRepository persists Station aggregates in a region's own shard.
type StationRepository struct {
	db *sql.DB
}

func NewStationRepository(db *sql.DB) *StationRepository {
	return &StationRepository{db: db}
}

func (r *StationRepository) Create(ctx context.Context, s *station.Station) error {
	invJSON, err := json.Marshal(s.Inventory)
	if err != nil {
		return apperrors.Unavailable("marshal station inventory", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO stations (id, sector_id, name, owner_id, services, inventory, defenses, created_at, updated_at, version)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, s.ID, s.SectorID, s.Name, s.OwnerID, s.Services, invJSON, s.Defenses, s.CreatedAt, s.UpdatedAt, s.Version)
	if err != nil {
		return apperrors.Unavailable("create station", err)
	}
	return nil
}

func (r *StationRepository) Get(ctx context.Context, id string) (*station.Station, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, sector_id, name, owner_id, services, inventory, defenses, created_at, updated_at, version
		FROM stations WHERE id = $1
	`, id)
	return scanStation(row)
}

func scanStation(row *sql.Row) (*station.Station, error) {
	var s station.Station
	var invRaw []byte
	err := row.Scan(&s.ID, &s.SectorID, &s.Name, &s.OwnerID, &s.Services, &invRaw, &s.Defenses, &s.CreatedAt, &s.UpdatedAt, &s.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("station")
	}
	if err != nil {
		return nil, apperrors.Unavailable("scan station", err)
	}
	if len(invRaw) > 0 {
		if err := json.Unmarshal(invRaw, &s.Inventory); err != nil {
			return nil, apperrors.Unavailable("unmarshal station inventory", err)
		}
	}
	return &s, nil
}

// ListBySector loads every station offering services within a sector.
func (r *StationRepository) ListBySector(ctx context.Context, sectorID string) ([]*station.Station, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, sector_id, name, owner_id, services, inventory, defenses, created_at, updated_at, version
		FROM stations WHERE sector_id = $1
	`, sectorID)
	if err != nil {
		return nil, apperrors.Unavailable("list stations", err)
	}
	defer rows.Close()

	var out []*station.Station
	for rows.Next() {
		var s station.Station
		var invRaw []byte
		if err := rows.Scan(&s.ID, &s.SectorID, &s.Name, &s.OwnerID, &s.Services, &invRaw, &s.Defenses, &s.CreatedAt, &s.UpdatedAt, &s.Version); err != nil {
			return nil, apperrors.Unavailable("scan station", err)
		}
		if len(invRaw) > 0 {
			_ = json.Unmarshal(invRaw, &s.Inventory)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

func (r *StationRepository) Update(ctx context.Context, s *station.Station) error {
	invJSON, err := json.Marshal(s.Inventory)
	if err != nil {
		return apperrors.Unavailable("marshal station inventory", err)
	}
	result, err := r.db.ExecContext(ctx, `
		UPDATE stations
		SET owner_id = $2, services = $3, inventory = $4, defenses = $5, updated_at = $6, version = version + 1
		WHERE id = $1 AND version = $7
	`, s.ID, s.OwnerID, s.Services, invJSON, s.Defenses, s.UpdatedAt, s.Version)
	if err != nil {
		return apperrors.Unavailable("update station", err)
	}
	return CheckVersionedUpdate(result, "station")
}
