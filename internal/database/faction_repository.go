package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sectorwars2102/gameserver/internal/apperrors"
	"github.com/sectorwars2102/gameserver/internal/domain/faction"
)

// FactionRepository persists per-player faction Reputation rows in the
// global shard: standing with the fixed NPC catalog follows the player
// across regions.
type FactionRepository struct {
	db *sql.DB
}

func NewFactionRepository(db *sql.DB) *FactionRepository {
	return &FactionRepository{db: db}
}

func (r *FactionRepository) Create(ctx context.Context, rep *faction.Reputation) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO faction_reputations (player_id, faction_id, value, version)
		VALUES ($1,$2,$3,$4)
	`, rep.PlayerID, rep.FactionID, rep.Value, rep.Version)
	if err != nil {
		return apperrors.Unavailable("create faction reputation", err)
	}
	return nil
}

func (r *FactionRepository) Get(ctx context.Context, playerID, factionID string) (*faction.Reputation, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT player_id, faction_id, value, version
		FROM faction_reputations WHERE player_id = $1 AND faction_id = $2
	`, playerID, factionID)
	var rep faction.Reputation
	err := row.Scan(&rep.PlayerID, &rep.FactionID, &rep.Value, &rep.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("faction reputation")
	}
	if err != nil {
		return nil, apperrors.Unavailable("scan faction reputation", err)
	}
	return &rep, nil
}

// ListByPlayer loads every faction reputation record for a player.
func (r *FactionRepository) ListByPlayer(ctx context.Context, playerID string) ([]*faction.Reputation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT player_id, faction_id, value, version FROM faction_reputations WHERE player_id = $1
	`, playerID)
	if err != nil {
		return nil, apperrors.Unavailable("list faction reputations", err)
	}
	defer rows.Close()

	var out []*faction.Reputation
	for rows.Next() {
		var rep faction.Reputation
		if err := rows.Scan(&rep.PlayerID, &rep.FactionID, &rep.Value, &rep.Version); err != nil {
			return nil, apperrors.Unavailable("scan faction reputation", err)
		}
		out = append(out, &rep)
	}
	return out, rows.Err()
}

func (r *FactionRepository) Update(ctx context.Context, rep *faction.Reputation) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE faction_reputations SET value = $3, version = version + 1
		WHERE player_id = $1 AND faction_id = $2 AND version = $4
	`, rep.PlayerID, rep.FactionID, rep.Value, rep.Version)
	if err != nil {
		return apperrors.Unavailable("update faction reputation", err)
	}
	return CheckVersionedUpdate(result, "faction reputation")
}
