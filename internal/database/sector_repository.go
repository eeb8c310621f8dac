package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sectorwars2102/gameserver/internal/apperrors"
	"github.com/sectorwars2102/gameserver/internal/domain/sector"
)

// SectorRepository persists Sector and WarpLink rows in a region's own
// shard: galaxy topology is region-local and never crosses shard
// boundaries.
type SectorRepository struct {
	db *sql.DB
}

func NewSectorRepository(db *sql.DB) *SectorRepository {
	return &SectorRepository{db: db}
}

func (r *SectorRepository) Create(ctx context.Context, s *sector.Sector) error {
	if err := s.Validate(); err != nil {
		return apperrors.ValidationError("security_level", err.Error())
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sectors (id, region_id, index, type, hazard_level, radiation_level,
			security_level, development_level, traffic_level, district_tag, version)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, s.ID, s.RegionID, s.Index, s.Type, s.HazardLevel, s.RadiationLevel,
		s.SecurityLevel, s.DevelopmentLevel, s.TrafficLevel, s.DistrictTag, s.Version)
	if err != nil {
		return apperrors.Unavailable("create sector", err)
	}
	return nil
}

func (r *SectorRepository) Get(ctx context.Context, id string) (*sector.Sector, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, region_id, index, type, hazard_level, radiation_level,
		       security_level, development_level, traffic_level, district_tag, version
		FROM sectors WHERE id = $1
	`, id)
	return scanSector(row)
}

func scanSector(row *sql.Row) (*sector.Sector, error) {
	var s sector.Sector
	err := row.Scan(&s.ID, &s.RegionID, &s.Index, &s.Type, &s.HazardLevel, &s.RadiationLevel,
		&s.SecurityLevel, &s.DevelopmentLevel, &s.TrafficLevel, &s.DistrictTag, &s.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("sector")
	}
	if err != nil {
		return nil, apperrors.Unavailable("scan sector", err)
	}
	return &s, nil
}

// ListByRegion loads every sector in a region, used to assemble the
// in-memory sector.Graph for navigation and galaxy-generation checks.
func (r *SectorRepository) ListByRegion(ctx context.Context, regionID string) ([]*sector.Sector, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, region_id, index, type, hazard_level, radiation_level,
		       security_level, development_level, traffic_level, district_tag, version
		FROM sectors WHERE region_id = $1
	`, regionID)
	if err != nil {
		return nil, apperrors.Unavailable("list sectors", err)
	}
	defer rows.Close()

	var out []*sector.Sector
	for rows.Next() {
		var s sector.Sector
		if err := rows.Scan(&s.ID, &s.RegionID, &s.Index, &s.Type, &s.HazardLevel, &s.RadiationLevel,
			&s.SecurityLevel, &s.DevelopmentLevel, &s.TrafficLevel, &s.DistrictTag, &s.Version); err != nil {
			return nil, apperrors.Unavailable("scan sector", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

func (r *SectorRepository) CreateWarpLink(ctx context.Context, l *sector.WarpLink) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO warp_links (id, region_id, from_sector_id, to_sector_id, bidirectional,
			travel_cost, toll, restricted, restriction_tag)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, l.ID, l.RegionID, l.FromSectorID, l.ToSectorID, l.Bidirectional, l.TravelCost, l.Toll, l.Restricted, l.RestrictionTag)
	if err != nil {
		return apperrors.Unavailable("create warp link", err)
	}
	return nil
}

// ListLinksByRegion loads every warp link in a region.
func (r *SectorRepository) ListLinksByRegion(ctx context.Context, regionID string) ([]*sector.WarpLink, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, region_id, from_sector_id, to_sector_id, bidirectional, travel_cost, toll, restricted, restriction_tag
		FROM warp_links WHERE region_id = $1
	`, regionID)
	if err != nil {
		return nil, apperrors.Unavailable("list warp links", err)
	}
	defer rows.Close()

	var out []*sector.WarpLink
	for rows.Next() {
		var l sector.WarpLink
		if err := rows.Scan(&l.ID, &l.RegionID, &l.FromSectorID, &l.ToSectorID, &l.Bidirectional, &l.TravelCost, &l.Toll, &l.Restricted, &l.RestrictionTag); err != nil {
			return nil, apperrors.Unavailable("scan warp link", err)
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}

// Graph assembles the in-memory navigation graph for a region from its
// persisted sectors and warp links.
func (r *SectorRepository) Graph(ctx context.Context, regionID string) (*sector.Graph, error) {
	sectors, err := r.ListByRegion(ctx, regionID)
	if err != nil {
		return nil, err
	}
	links, err := r.ListLinksByRegion(ctx, regionID)
	if err != nil {
		return nil, err
	}
	return sector.NewGraph(sectors, links), nil
}
