package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/sectorwars2102/gameserver/internal/apperrors"
	"github.com/sectorwars2102/gameserver/internal/domain/region"
)

// RegionRepository persists Region aggregates in the global shard: region
// metadata (governance, lifecycle, tax policy) must be readable without
// connecting to the region's own shard, notably while that shard is being
// provisioned or has been suspended.
type RegionRepository struct {
	db *sql.DB
}

func NewRegionRepository(db *sql.DB) *RegionRepository {
	return &RegionRepository{db: db}
}

func (r *RegionRepository) Create(ctx context.Context, reg *region.Region) error {
	bonusJSON, err := json.Marshal(reg.TradeBonusTable)
	if err != nil {
		return apperrors.Unavailable("marshal region trade bonus table", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO regions (
			id, name, display_name, owner_account_id, status, governance, tax_rate,
			voting_threshold, election_cadence_days, trade_bonus_table, cultural_payload,
			economic_specialization, starting_resource_template, nexus_gate_sector_index,
			sector_count, created_at, updated_at, version
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
	`, reg.ID, reg.Name, reg.DisplayName, reg.OwnerAccountID, reg.Status, reg.Governance,
		reg.TaxRate, reg.VotingThreshold, reg.ElectionCadenceDays, bonusJSON, reg.CulturalPayload,
		reg.EconomicSpecialization, reg.StartingResourceTemplate, reg.NexusGateSectorIndex,
		reg.SectorCount, reg.CreatedAt, reg.UpdatedAt, reg.Version)
	if err != nil {
		return apperrors.Unavailable("create region", err)
	}
	return nil
}

func (r *RegionRepository) Get(ctx context.Context, id string) (*region.Region, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, display_name, owner_account_id, status, governance, tax_rate,
		       voting_threshold, election_cadence_days, trade_bonus_table, cultural_payload,
		       economic_specialization, starting_resource_template, nexus_gate_sector_index,
		       sector_count, created_at, updated_at, version, termination_started_at
		FROM regions WHERE id = $1
	`, id)
	return scanRegion(row)
}

func (r *RegionRepository) GetByName(ctx context.Context, name string) (*region.Region, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, display_name, owner_account_id, status, governance, tax_rate,
		       voting_threshold, election_cadence_days, trade_bonus_table, cultural_payload,
		       economic_specialization, starting_resource_template, nexus_gate_sector_index,
		       sector_count, created_at, updated_at, version, termination_started_at
		FROM regions WHERE name = $1
	`, name)
	return scanRegion(row)
}

func scanRegion(row *sql.Row) (*region.Region, error) {
	var reg region.Region
	var bonusRaw []byte
	err := row.Scan(&reg.ID, &reg.Name, &reg.DisplayName, &reg.OwnerAccountID, &reg.Status, &reg.Governance,
		&reg.TaxRate, &reg.VotingThreshold, &reg.ElectionCadenceDays, &bonusRaw, &reg.CulturalPayload,
		&reg.EconomicSpecialization, &reg.StartingResourceTemplate, &reg.NexusGateSectorIndex,
		&reg.SectorCount, &reg.CreatedAt, &reg.UpdatedAt, &reg.Version, &reg.TerminationStartedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("region")
	}
	if err != nil {
		return nil, apperrors.Unavailable("scan region", err)
	}
	if len(bonusRaw) > 0 {
		if err := json.Unmarshal(bonusRaw, &reg.TradeBonusTable); err != nil {
			return nil, apperrors.Unavailable("unmarshal region trade bonus table", err)
		}
	}
	return &reg, nil
}

func (r *RegionRepository) Update(ctx context.Context, reg *region.Region) error {
	bonusJSON, err := json.Marshal(reg.TradeBonusTable)
	if err != nil {
		return apperrors.Unavailable("marshal region trade bonus table", err)
	}
	result, err := r.db.ExecContext(ctx, `
		UPDATE regions
		SET status = $2, governance = $3, tax_rate = $4, voting_threshold = $5,
		    election_cadence_days = $6, trade_bonus_table = $7, cultural_payload = $8,
		    nexus_gate_sector_index = $9, updated_at = $10, termination_started_at = $11,
		    version = version + 1
		WHERE id = $1 AND version = $12
	`, reg.ID, reg.Status, reg.Governance, reg.TaxRate, reg.VotingThreshold,
		reg.ElectionCadenceDays, bonusJSON, reg.CulturalPayload, reg.NexusGateSectorIndex,
		reg.UpdatedAt, reg.TerminationStartedAt, reg.Version)
	if err != nil {
		return apperrors.Unavailable("update region", err)
	}
	return CheckVersionedUpdate(result, "region")
}

// ListActive returns every region with an active lifecycle status, used by
// the federation layer to enumerate valid travel destinations.
func (r *RegionRepository) ListActive(ctx context.Context) ([]*region.Region, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, display_name, owner_account_id, status, governance, tax_rate,
		       voting_threshold, election_cadence_days, trade_bonus_table, cultural_payload,
		       economic_specialization, starting_resource_template, nexus_gate_sector_index,
		       sector_count, created_at, updated_at, version, termination_started_at
		FROM regions WHERE status = $1
	`, region.StatusActive)
	if err != nil {
		return nil, apperrors.Unavailable("list active regions", err)
	}
	defer rows.Close()

	var out []*region.Region
	for rows.Next() {
		var reg region.Region
		var bonusRaw []byte
		if err := rows.Scan(&reg.ID, &reg.Name, &reg.DisplayName, &reg.OwnerAccountID, &reg.Status, &reg.Governance,
			&reg.TaxRate, &reg.VotingThreshold, &reg.ElectionCadenceDays, &bonusRaw, &reg.CulturalPayload,
			&reg.EconomicSpecialization, &reg.StartingResourceTemplate, &reg.NexusGateSectorIndex,
			&reg.SectorCount, &reg.CreatedAt, &reg.UpdatedAt, &reg.Version, &reg.TerminationStartedAt); err != nil {
			return nil, apperrors.Unavailable("scan region", err)
		}
		if len(bonusRaw) > 0 {
			if err := json.Unmarshal(bonusRaw, &reg.TradeBonusTable); err != nil {
				return nil, apperrors.Unavailable("unmarshal region trade bonus table", err)
			}
		}
		out = append(out, &reg)
	}
	return out, rows.Err()
}
