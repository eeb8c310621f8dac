package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/sectorwars2102/gameserver/internal/apperrors"
	"github.com/sectorwars2102/gameserver/internal/domain/player"
)

// PlayerRepository persists Player aggregates in the global shard: a
// player's identity and cross-region reputation ledger must be reachable
// regardless of which region shard it is currently standing in.
type PlayerRepository struct {
	db *sql.DB
}

func NewPlayerRepository(db *sql.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) Create(ctx context.Context, p *player.Player) error {
	repJSON, err := json.Marshal(p.Reputation)
	if err != nil {
		return apperrors.Unavailable("marshal player reputation", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO players (id, account_id, handle, current_region_id, current_ship_id, reputation, credits, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, p.ID, p.AccountID, p.Handle, p.CurrentRegionID, p.CurrentShipID, repJSON, p.Credits, p.CreatedAt, p.UpdatedAt, p.Version)
	if err != nil {
		return apperrors.Unavailable("create player", err)
	}
	return nil
}

func (r *PlayerRepository) Get(ctx context.Context, id string) (*player.Player, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, account_id, handle, current_region_id, current_ship_id, reputation, credits, created_at, updated_at, version
		FROM players WHERE id = $1
	`, id)
	return scanPlayer(row)
}

func (r *PlayerRepository) GetByAccountID(ctx context.Context, accountID string) (*player.Player, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, account_id, handle, current_region_id, current_ship_id, reputation, credits, created_at, updated_at, version
		FROM players WHERE account_id = $1
	`, accountID)
	return scanPlayer(row)
}

func scanPlayer(row *sql.Row) (*player.Player, error) {
	var p player.Player
	var repRaw []byte
	err := row.Scan(&p.ID, &p.AccountID, &p.Handle, &p.CurrentRegionID, &p.CurrentShipID, &repRaw, &p.Credits, &p.CreatedAt, &p.UpdatedAt, &p.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("player")
	}
	if err != nil {
		return nil, apperrors.Unavailable("scan player", err)
	}
	if len(repRaw) > 0 {
		if err := json.Unmarshal(repRaw, &p.Reputation); err != nil {
			return nil, apperrors.Unavailable("unmarshal player reputation", err)
		}
	}
	return &p, nil
}

func (r *PlayerRepository) Update(ctx context.Context, p *player.Player) error {
	repJSON, err := json.Marshal(p.Reputation)
	if err != nil {
		return apperrors.Unavailable("marshal player reputation", err)
	}
	result, err := r.db.ExecContext(ctx, `
		UPDATE players
		SET handle = $2, current_region_id = $3, current_ship_id = $4, reputation = $5,
		    credits = $6, updated_at = $7, version = version + 1
		WHERE id = $1 AND version = $8
	`, p.ID, p.Handle, p.CurrentRegionID, p.CurrentShipID, repJSON, p.Credits, p.UpdatedAt, p.Version)
	if err != nil {
		return apperrors.Unavailable("update player", err)
	}
	return CheckVersionedUpdate(result, "player")
}
