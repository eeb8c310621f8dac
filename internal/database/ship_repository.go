package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/sectorwars2102/gameserver/internal/apperrors"
	"github.com/sectorwars2102/gameserver/internal/domain/ship"
)

// ShipRepository persists Ship aggregates in a region's own shard: a ship
// is always physically located in one sector of one region.
type ShipRepository struct {
	db *sql.DB
}

func NewShipRepository(db *sql.DB) *ShipRepository {
	return &ShipRepository{db: db}
}

func (r *ShipRepository) Create(ctx context.Context, s *ship.Ship) error {
	manifestJSON, slotsJSON, err := marshalShipBlobs(s)
	if err != nil {
		return apperrors.Unavailable("marshal ship", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO ships (id, owner_player_id, team_ledger_id, name, hull, sector_id, condition,
			shield, cargo_capacity, cargo_manifest, fuel, max_fuel, insurance, modification_slots,
			maintenance_debt, created_at, updated_at, version)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
	`, s.ID, s.OwnerPlayerID, s.TeamLedgerID, s.Name, s.Hull, s.SectorID, s.Condition,
		s.Shield, s.CargoCapacity, manifestJSON, s.Fuel, s.MaxFuel, s.Insurance, slotsJSON,
		s.MaintenanceDebt, s.CreatedAt, s.UpdatedAt, s.Version)
	if err != nil {
		return apperrors.Unavailable("create ship", err)
	}
	return nil
}

func marshalShipBlobs(s *ship.Ship) (manifestJSON, slotsJSON []byte, err error) {
	manifestJSON, err = json.Marshal(s.CargoManifest)
	if err != nil {
		return nil, nil, err
	}
	slotsJSON, err = json.Marshal(s.ModificationSlots)
	if err != nil {
		return nil, nil, err
	}
	return manifestJSON, slotsJSON, nil
}

func (r *ShipRepository) Get(ctx context.Context, id string) (*ship.Ship, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, owner_player_id, team_ledger_id, name, hull, sector_id, condition,
		       shield, cargo_capacity, cargo_manifest, fuel, max_fuel, insurance, modification_slots,
		       maintenance_debt, created_at, updated_at, version
		FROM ships WHERE id = $1
	`, id)
	return scanShip(row)
}

func scanShip(row *sql.Row) (*ship.Ship, error) {
	var s ship.Ship
	var manifestRaw, slotsRaw []byte
	err := row.Scan(&s.ID, &s.OwnerPlayerID, &s.TeamLedgerID, &s.Name, &s.Hull, &s.SectorID, &s.Condition,
		&s.Shield, &s.CargoCapacity, &manifestRaw, &s.Fuel, &s.MaxFuel, &s.Insurance, &slotsRaw,
		&s.MaintenanceDebt, &s.CreatedAt, &s.UpdatedAt, &s.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("ship")
	}
	if err != nil {
		return nil, apperrors.Unavailable("scan ship", err)
	}
	if len(manifestRaw) > 0 {
		if err := json.Unmarshal(manifestRaw, &s.CargoManifest); err != nil {
			return nil, apperrors.Unavailable("unmarshal ship cargo manifest", err)
		}
	}
	if len(slotsRaw) > 0 {
		if err := json.Unmarshal(slotsRaw, &s.ModificationSlots); err != nil {
			return nil, apperrors.Unavailable("unmarshal ship modification slots", err)
		}
	}
	return &s, nil
}

// ListByOwner loads every ship owned by a player, used to resolve a
// player's fleet.
func (r *ShipRepository) ListByOwner(ctx context.Context, ownerPlayerID string) ([]*ship.Ship, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_player_id, team_ledger_id, name, hull, sector_id, condition,
		       shield, cargo_capacity, cargo_manifest, fuel, max_fuel, insurance, modification_slots,
		       maintenance_debt, created_at, updated_at, version
		FROM ships WHERE owner_player_id = $1
	`, ownerPlayerID)
	if err != nil {
		return nil, apperrors.Unavailable("list ships", err)
	}
	defer rows.Close()

	var out []*ship.Ship
	for rows.Next() {
		var s ship.Ship
		var manifestRaw, slotsRaw []byte
		if err := rows.Scan(&s.ID, &s.OwnerPlayerID, &s.TeamLedgerID, &s.Name, &s.Hull, &s.SectorID, &s.Condition,
			&s.Shield, &s.CargoCapacity, &manifestRaw, &s.Fuel, &s.MaxFuel, &s.Insurance, &slotsRaw,
			&s.MaintenanceDebt, &s.CreatedAt, &s.UpdatedAt, &s.Version); err != nil {
			return nil, apperrors.Unavailable("scan ship", err)
		}
		if len(manifestRaw) > 0 {
			_ = json.Unmarshal(manifestRaw, &s.CargoManifest)
		}
		if len(slotsRaw) > 0 {
			_ = json.Unmarshal(slotsRaw, &s.ModificationSlots)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

func (r *ShipRepository) Update(ctx context.Context, s *ship.Ship) error {
	manifestJSON, slotsJSON, err := marshalShipBlobs(s)
	if err != nil {
		return apperrors.Unavailable("marshal ship", err)
	}
	result, err := r.db.ExecContext(ctx, `
		UPDATE ships
		SET sector_id = $2, condition = $3, shield = $4, cargo_manifest = $5, fuel = $6,
		    insurance = $7, modification_slots = $8, maintenance_debt = $9, updated_at = $10,
		    version = version + 1
		WHERE id = $1 AND version = $11
	`, s.ID, s.SectorID, s.Condition, s.Shield, manifestJSON, s.Fuel,
		s.Insurance, slotsJSON, s.MaintenanceDebt, s.UpdatedAt, s.Version)
	if err != nil {
		return apperrors.Unavailable("update ship", err)
	}
	return CheckVersionedUpdate(result, "ship")
}
