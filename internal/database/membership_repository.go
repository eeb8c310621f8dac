package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sectorwars2102/gameserver/internal/apperrors"
	"github.com/sectorwars2102/gameserver/internal/domain/membership"
)

// MembershipRepository persists Membership rows in a region's own shard:
// membership standing (visitor/resident/citizen) is regional, unique by
// (player, region).
type MembershipRepository struct {
	db *sql.DB
}

func NewMembershipRepository(db *sql.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

func (r *MembershipRepository) Create(ctx context.Context, m *membership.Membership) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO memberships (player_id, region_id, type, reputation, voting_weight,
			visit_count, first_visit_at, last_visit_at, version)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, m.PlayerID, m.RegionID, m.Type, m.Reputation, m.VotingWeight, m.VisitCount, m.FirstVisitAt, m.LastVisitAt, m.Version)
	if err != nil {
		return apperrors.Unavailable("create membership", err)
	}
	return nil
}

func (r *MembershipRepository) Get(ctx context.Context, playerID, regionID string) (*membership.Membership, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT player_id, region_id, type, reputation, voting_weight, visit_count, first_visit_at, last_visit_at, version
		FROM memberships WHERE player_id = $1 AND region_id = $2
	`, playerID, regionID)
	var m membership.Membership
	err := row.Scan(&m.PlayerID, &m.RegionID, &m.Type, &m.Reputation, &m.VotingWeight, &m.VisitCount, &m.FirstVisitAt, &m.LastVisitAt, &m.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("membership")
	}
	if err != nil {
		return nil, apperrors.Unavailable("scan membership", err)
	}
	return &m, nil
}

func (r *MembershipRepository) Update(ctx context.Context, m *membership.Membership) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE memberships
		SET type = $3, reputation = $4, voting_weight = $5, visit_count = $6, last_visit_at = $7,
		    version = version + 1
		WHERE player_id = $1 AND region_id = $2 AND version = $8
	`, m.PlayerID, m.RegionID, m.Type, m.Reputation, m.VotingWeight, m.VisitCount, m.LastVisitAt, m.Version)
	if err != nil {
		return apperrors.Unavailable("update membership", err)
	}
	return CheckVersionedUpdate(result, "membership")
}

// ListVotersByRegion loads every membership within a region that can
// vote, used by the governance engine to tally regional elections.
func (r *MembershipRepository) ListVotersByRegion(ctx context.Context, regionID string) ([]*membership.Membership, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT player_id, region_id, type, reputation, voting_weight, visit_count, first_visit_at, last_visit_at, version
		FROM memberships WHERE region_id = $1 AND type IN ($2, $3)
	`, regionID, membership.TypeResident, membership.TypeCitizen)
	if err != nil {
		return nil, apperrors.Unavailable("list voters", err)
	}
	defer rows.Close()

	var out []*membership.Membership
	for rows.Next() {
		var m membership.Membership
		if err := rows.Scan(&m.PlayerID, &m.RegionID, &m.Type, &m.Reputation, &m.VotingWeight, &m.VisitCount, &m.FirstVisitAt, &m.LastVisitAt, &m.Version); err != nil {
			return nil, apperrors.Unavailable("scan membership", err)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}
