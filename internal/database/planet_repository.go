package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/sectorwars2102/gameserver/internal/apperrors"
	"github.com/sectorwars2102/gameserver/internal/domain/planet"
)

// PlanetRepository persists Planet aggregates in a region's own shard.
type PlanetRepository struct {
	db *sql.DB
}

func NewPlanetRepository(db *sql.DB) *PlanetRepository {
	return &PlanetRepository{db: db}
}

func (r *PlanetRepository) Create(ctx context.Context, p *planet.Planet) error {
	resJSON, rateJSON, err := marshalPlanetBlobs(p)
	if err != nil {
		return apperrors.Unavailable("marshal planet", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO planets (id, sector_id, name, type, status, owner_player_id, specialization,
			population, max_population, defenses, resources, production_rate, last_tick_index,
			siege_started_at, created_at, updated_at, version)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
	`, p.ID, p.SectorID, p.Name, p.Type, p.Status, p.OwnerPlayerID, p.Specialization,
		p.Population, p.MaxPopulation, p.Defenses, resJSON, rateJSON, p.LastTickIndex,
		p.SiegeStartedAt, p.CreatedAt, p.UpdatedAt, p.Version)
	if err != nil {
		return apperrors.Unavailable("create planet", err)
	}
	return nil
}

func marshalPlanetBlobs(p *planet.Planet) (resJSON, rateJSON []byte, err error) {
	resJSON, err = json.Marshal(p.Resources)
	if err != nil {
		return nil, nil, err
	}
	rateJSON, err = json.Marshal(p.ProductionRate)
	if err != nil {
		return nil, nil, err
	}
	return resJSON, rateJSON, nil
}

func (r *PlanetRepository) Get(ctx context.Context, id string) (*planet.Planet, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, sector_id, name, type, status, owner_player_id, specialization,
		       population, max_population, defenses, resources, production_rate, last_tick_index,
		       siege_started_at, created_at, updated_at, version
		FROM planets WHERE id = $1
	`, id)
	return scanPlanet(row)
}

func scanPlanet(row *sql.Row) (*planet.Planet, error) {
	var p planet.Planet
	var resRaw, rateRaw []byte
	err := row.Scan(&p.ID, &p.SectorID, &p.Name, &p.Type, &p.Status, &p.OwnerPlayerID, &p.Specialization,
		&p.Population, &p.MaxPopulation, &p.Defenses, &resRaw, &rateRaw, &p.LastTickIndex,
		&p.SiegeStartedAt, &p.CreatedAt, &p.UpdatedAt, &p.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("planet")
	}
	if err != nil {
		return nil, apperrors.Unavailable("scan planet", err)
	}
	if len(resRaw) > 0 {
		if err := json.Unmarshal(resRaw, &p.Resources); err != nil {
			return nil, apperrors.Unavailable("unmarshal planet resources", err)
		}
	}
	if len(rateRaw) > 0 {
		if err := json.Unmarshal(rateRaw, &p.ProductionRate); err != nil {
			return nil, apperrors.Unavailable("unmarshal planet production rate", err)
		}
	}
	return &p, nil
}

// ListBySector loads every planet in a sector.
func (r *PlanetRepository) ListBySector(ctx context.Context, sectorID string) ([]*planet.Planet, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, sector_id, name, type, status, owner_player_id, specialization,
		       population, max_population, defenses, resources, production_rate, last_tick_index,
		       siege_started_at, created_at, updated_at, version
		FROM planets WHERE sector_id = $1
	`, sectorID)
	if err != nil {
		return nil, apperrors.Unavailable("list planets", err)
	}
	defer rows.Close()

	var out []*planet.Planet
	for rows.Next() {
		var p planet.Planet
		var resRaw, rateRaw []byte
		if err := rows.Scan(&p.ID, &p.SectorID, &p.Name, &p.Type, &p.Status, &p.OwnerPlayerID, &p.Specialization,
			&p.Population, &p.MaxPopulation, &p.Defenses, &resRaw, &rateRaw, &p.LastTickIndex,
			&p.SiegeStartedAt, &p.CreatedAt, &p.UpdatedAt, &p.Version); err != nil {
			return nil, apperrors.Unavailable("scan planet", err)
		}
		if len(resRaw) > 0 {
			_ = json.Unmarshal(resRaw, &p.Resources)
		}
		if len(rateRaw) > 0 {
			_ = json.Unmarshal(rateRaw, &p.ProductionRate)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// ColonizedDueForTick lists colonized planets whose last-applied tick is
// older than tickIndex, used by the colony scheduler to fan work out
// without re-ticking planets already caught up.
func (r *PlanetRepository) ColonizedDueForTick(ctx context.Context, tickIndex int64) ([]*planet.Planet, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, sector_id, name, type, status, owner_player_id, specialization,
		       population, max_population, defenses, resources, production_rate, last_tick_index,
		       siege_started_at, created_at, updated_at, version
		FROM planets WHERE status = $1 AND last_tick_index < $2
	`, planet.StatusColonized, tickIndex)
	if err != nil {
		return nil, apperrors.Unavailable("list due planets", err)
	}
	defer rows.Close()

	var out []*planet.Planet
	for rows.Next() {
		var p planet.Planet
		var resRaw, rateRaw []byte
		if err := rows.Scan(&p.ID, &p.SectorID, &p.Name, &p.Type, &p.Status, &p.OwnerPlayerID, &p.Specialization,
			&p.Population, &p.MaxPopulation, &p.Defenses, &resRaw, &rateRaw, &p.LastTickIndex,
			&p.SiegeStartedAt, &p.CreatedAt, &p.UpdatedAt, &p.Version); err != nil {
			return nil, apperrors.Unavailable("scan planet", err)
		}
		if len(resRaw) > 0 {
			_ = json.Unmarshal(resRaw, &p.Resources)
		}
		if len(rateRaw) > 0 {
			_ = json.Unmarshal(rateRaw, &p.ProductionRate)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (r *PlanetRepository) Update(ctx context.Context, p *planet.Planet) error {
	resJSON, rateJSON, err := marshalPlanetBlobs(p)
	if err != nil {
		return apperrors.Unavailable("marshal planet", err)
	}
	result, err := r.db.ExecContext(ctx, `
		UPDATE planets
		SET status = $2, owner_player_id = $3, specialization = $4, population = $5,
		    defenses = $6, resources = $7, production_rate = $8, last_tick_index = $9,
		    siege_started_at = $10, updated_at = $11, version = version + 1
		WHERE id = $1 AND version = $12
	`, p.ID, p.Status, p.OwnerPlayerID, p.Specialization, p.Population,
		p.Defenses, resJSON, rateJSON, p.LastTickIndex, p.SiegeStartedAt, p.UpdatedAt, p.Version)
	if err != nil {
		return apperrors.Unavailable("update planet", err)
	}
	return CheckVersionedUpdate(result, "planet")
}
