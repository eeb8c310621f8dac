package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/sectorwars2102/gameserver/internal/apperrors"
	"github.com/sectorwars2102/gameserver/internal/domain/team"
)

// TeamRepository persists Team aggregates in a region's own shard: a team
// is unique by name within one region.
type TeamRepository struct {
	db *sql.DB
}

func NewTeamRepository(db *sql.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) Create(ctx context.Context, t *team.Team) error {
	membersJSON, appsJSON, err := marshalTeamBlobs(t)
	if err != nil {
		return apperrors.Unavailable("marshal team", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO teams (id, region_id, name, type, size_cap, join_policy, treasury, members,
			applications, created_at, updated_at, version)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`, t.ID, t.RegionID, t.Name, t.Type, t.SizeCap, t.JoinPolicy, t.Treasury, membersJSON,
		appsJSON, t.CreatedAt, t.UpdatedAt, t.Version)
	if err != nil {
		return apperrors.Unavailable("create team", err)
	}
	return nil
}

func marshalTeamBlobs(t *team.Team) (membersJSON, appsJSON []byte, err error) {
	membersJSON, err = json.Marshal(t.Members)
	if err != nil {
		return nil, nil, err
	}
	appsJSON, err = json.Marshal(t.Applications)
	if err != nil {
		return nil, nil, err
	}
	return membersJSON, appsJSON, nil
}

func (r *TeamRepository) Get(ctx context.Context, id string) (*team.Team, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, region_id, name, type, size_cap, join_policy, treasury, members, applications,
		       created_at, updated_at, version
		FROM teams WHERE id = $1
	`, id)
	return scanTeam(row)
}

func (r *TeamRepository) GetByName(ctx context.Context, regionID, name string) (*team.Team, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, region_id, name, type, size_cap, join_policy, treasury, members, applications,
		       created_at, updated_at, version
		FROM teams WHERE region_id = $1 AND name = $2
	`, regionID, name)
	return scanTeam(row)
}

func scanTeam(row *sql.Row) (*team.Team, error) {
	var t team.Team
	var membersRaw, appsRaw []byte
	err := row.Scan(&t.ID, &t.RegionID, &t.Name, &t.Type, &t.SizeCap, &t.JoinPolicy, &t.Treasury, &membersRaw, &appsRaw,
		&t.CreatedAt, &t.UpdatedAt, &t.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("team")
	}
	if err != nil {
		return nil, apperrors.Unavailable("scan team", err)
	}
	if len(membersRaw) > 0 {
		if err := json.Unmarshal(membersRaw, &t.Members); err != nil {
			return nil, apperrors.Unavailable("unmarshal team members", err)
		}
	}
	if len(appsRaw) > 0 {
		if err := json.Unmarshal(appsRaw, &t.Applications); err != nil {
			return nil, apperrors.Unavailable("unmarshal team applications", err)
		}
	}
	return &t, nil
}

func (r *TeamRepository) Update(ctx context.Context, t *team.Team) error {
	membersJSON, appsJSON, err := marshalTeamBlobs(t)
	if err != nil {
		return apperrors.Unavailable("marshal team", err)
	}
	result, err := r.db.ExecContext(ctx, `
		UPDATE teams
		SET join_policy = $2, treasury = $3, members = $4, applications = $5, updated_at = $6,
		    version = version + 1
		WHERE id = $1 AND version = $7
	`, t.ID, t.JoinPolicy, t.Treasury, membersJSON, appsJSON, t.UpdatedAt, t.Version)
	if err != nil {
		return apperrors.Unavailable("update team", err)
	}
	return CheckVersionedUpdate(result, "team")
}
