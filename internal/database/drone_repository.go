package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/sectorwars2102/gameserver/internal/apperrors"
	"github.com/sectorwars2102/gameserver/internal/domain/drone"
)

// DroneRepository persists Drone stock and Deployment rows in a region's
// own shard: deployments are always pinned to a region-local target.
type DroneRepository struct {
	db *sql.DB
}

func NewDroneRepository(db *sql.DB) *DroneRepository {
	return &DroneRepository{db: db}
}

func (r *DroneRepository) Create(ctx context.Context, d *drone.Drone) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO drone_stocks (id, owner_player_id, count, created_at, updated_at, version)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, d.ID, d.OwnerPlayerID, d.Count, d.CreatedAt, d.UpdatedAt, d.Version)
	if err != nil {
		return apperrors.Unavailable("create drone stock", err)
	}
	return nil
}

func (r *DroneRepository) Get(ctx context.Context, id string) (*drone.Drone, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, owner_player_id, count, created_at, updated_at, version
		FROM drone_stocks WHERE id = $1
	`, id)
	var d drone.Drone
	err := row.Scan(&d.ID, &d.OwnerPlayerID, &d.Count, &d.CreatedAt, &d.UpdatedAt, &d.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("drone stock")
	}
	if err != nil {
		return nil, apperrors.Unavailable("scan drone stock", err)
	}
	return &d, nil
}

func (r *DroneRepository) Update(ctx context.Context, d *drone.Drone) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE drone_stocks SET count = $2, updated_at = $3, version = version + 1
		WHERE id = $1 AND version = $4
	`, d.ID, d.Count, d.UpdatedAt, d.Version)
	if err != nil {
		return apperrors.Unavailable("update drone stock", err)
	}
	return CheckVersionedUpdate(result, "drone stock")
}

func (r *DroneRepository) CreateDeployment(ctx context.Context, dep *drone.Deployment) error {
	policyJSON, err := json.Marshal(dep.Policy)
	if err != nil {
		return apperrors.Unavailable("marshal deployment policy", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO drone_deployments (id, drone_id, owner_player_id, target_type, target_id, count, policy, created_at, updated_at, version)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, dep.ID, dep.DroneID, dep.OwnerPlayerID, dep.TargetType, dep.TargetID, dep.Count, policyJSON, dep.CreatedAt, dep.UpdatedAt, dep.Version)
	if err != nil {
		return apperrors.Unavailable("create drone deployment", err)
	}
	return nil
}

// ListDeploymentsByTarget loads every deployment pinned to a target, used
// by the combat engine to assemble each side's drone pool.
func (r *DroneRepository) ListDeploymentsByTarget(ctx context.Context, targetType drone.TargetType, targetID string) ([]*drone.Deployment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, drone_id, owner_player_id, target_type, target_id, count, policy, created_at, updated_at, version
		FROM drone_deployments WHERE target_type = $1 AND target_id = $2
	`, targetType, targetID)
	if err != nil {
		return nil, apperrors.Unavailable("list drone deployments", err)
	}
	defer rows.Close()

	var out []*drone.Deployment
	for rows.Next() {
		var dep drone.Deployment
		var policyRaw []byte
		if err := rows.Scan(&dep.ID, &dep.DroneID, &dep.OwnerPlayerID, &dep.TargetType, &dep.TargetID, &dep.Count, &policyRaw, &dep.CreatedAt, &dep.UpdatedAt, &dep.Version); err != nil {
			return nil, apperrors.Unavailable("scan drone deployment", err)
		}
		if len(policyRaw) > 0 {
			_ = json.Unmarshal(policyRaw, &dep.Policy)
		}
		out = append(out, &dep)
	}
	return out, rows.Err()
}

func (r *DroneRepository) UpdateDeployment(ctx context.Context, dep *drone.Deployment) error {
	policyJSON, err := json.Marshal(dep.Policy)
	if err != nil {
		return apperrors.Unavailable("marshal deployment policy", err)
	}
	result, err := r.db.ExecContext(ctx, `
		UPDATE drone_deployments SET count = $2, policy = $3, updated_at = $4, version = version + 1
		WHERE id = $1 AND version = $5
	`, dep.ID, dep.Count, policyJSON, dep.UpdatedAt, dep.Version)
	if err != nil {
		return apperrors.Unavailable("update drone deployment", err)
	}
	return CheckVersionedUpdate(result, "drone deployment")
}
