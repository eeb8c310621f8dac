package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/sectorwars2102/gameserver/internal/apperrors"
	"github.com/sectorwars2102/gameserver/internal/domain/firstlogin"
)

// FirstLoginRepository persists onboarding Session records in a region's
// own shard: a first-login dialogue is scoped to the region a new player
// is assigned into.
type FirstLoginRepository struct {
	db *sql.DB
}

func NewFirstLoginRepository(db *sql.DB) *FirstLoginRepository {
	return &FirstLoginRepository{db: db}
}

func (r *FirstLoginRepository) Create(ctx context.Context, s *firstlogin.Session) error {
	logJSON, err := json.Marshal(s.ExchangeLog)
	if err != nil {
		return apperrors.Unavailable("marshal exchange log", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO first_login_sessions (id, player_id, stage, exchange_log, claimed_ship_id, outcome, created_at, updated_at, version)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, s.ID, s.PlayerID, s.Stage, logJSON, s.ClaimedShipID, s.Outcome, s.CreatedAt, s.UpdatedAt, s.Version)
	if err != nil {
		return apperrors.Unavailable("create first-login session", err)
	}
	return nil
}

func (r *FirstLoginRepository) Get(ctx context.Context, id string) (*firstlogin.Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, player_id, stage, exchange_log, claimed_ship_id, outcome, created_at, updated_at, version
		FROM first_login_sessions WHERE id = $1
	`, id)
	return scanFirstLoginSession(row)
}

// GetByPlayer loads the active onboarding session for a player, used to
// resume a dialogue across reconnects since state is never held in memory.
func (r *FirstLoginRepository) GetByPlayer(ctx context.Context, playerID string) (*firstlogin.Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, player_id, stage, exchange_log, claimed_ship_id, outcome, created_at, updated_at, version
		FROM first_login_sessions WHERE player_id = $1
	`, playerID)
	return scanFirstLoginSession(row)
}

func scanFirstLoginSession(row *sql.Row) (*firstlogin.Session, error) {
	var s firstlogin.Session
	var logRaw []byte
	err := row.Scan(&s.ID, &s.PlayerID, &s.Stage, &logRaw, &s.ClaimedShipID, &s.Outcome, &s.CreatedAt, &s.UpdatedAt, &s.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("first-login session")
	}
	if err != nil {
		return nil, apperrors.Unavailable("scan first-login session", err)
	}
	if len(logRaw) > 0 {
		if err := json.Unmarshal(logRaw, &s.ExchangeLog); err != nil {
			return nil, apperrors.Unavailable("unmarshal exchange log", err)
		}
	}
	return &s, nil
}

func (r *FirstLoginRepository) Update(ctx context.Context, s *firstlogin.Session) error {
	logJSON, err := json.Marshal(s.ExchangeLog)
	if err != nil {
		return apperrors.Unavailable("marshal exchange log", err)
	}
	result, err := r.db.ExecContext(ctx, `
		UPDATE first_login_sessions
		SET stage = $2, exchange_log = $3, claimed_ship_id = $4, outcome = $5, updated_at = $6, version = version + 1
		WHERE id = $1 AND version = $7
	`, s.ID, s.Stage, logJSON, s.ClaimedShipID, s.Outcome, s.UpdatedAt, s.Version)
	if err != nil {
		return apperrors.Unavailable("update first-login session", err)
	}
	return CheckVersionedUpdate(result, "first-login session")
}
