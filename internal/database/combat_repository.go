package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/sectorwars2102/gameserver/internal/apperrors"
	"github.com/sectorwars2102/gameserver/internal/domain/combat"
)

// CombatRepository persists Combat instances in a region's own shard. The
// combatant map and append-only round log are stored as JSON columns: they
// are never queried piecemeal, only ever loaded and resolved as a whole by
// the combat engine holding the resolution lock for that combat id.
type CombatRepository struct {
	db *sql.DB
}

func NewCombatRepository(db *sql.DB) *CombatRepository {
	return &CombatRepository{db: db}
}

func (r *CombatRepository) Create(ctx context.Context, c *combat.Combat) error {
	combatantsJSON, logJSON, err := marshalCombatBlobs(c)
	if err != nil {
		return apperrors.Unavailable("marshal combat", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO combats (id, combatants, round_cap, round, state, round_log, created_at, updated_at, version)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, c.ID, combatantsJSON, c.RoundCap, c.Round, c.State, logJSON, c.CreatedAt, c.UpdatedAt, 1)
	if err != nil {
		return apperrors.Unavailable("create combat", err)
	}
	return nil
}

func marshalCombatBlobs(c *combat.Combat) (combatantsJSON, logJSON []byte, err error) {
	combatantsJSON, err = json.Marshal(c.Combatants)
	if err != nil {
		return nil, nil, err
	}
	logJSON, err = json.Marshal(c.RoundLog)
	if err != nil {
		return nil, nil, err
	}
	return combatantsJSON, logJSON, nil
}

func (r *CombatRepository) Get(ctx context.Context, id string) (*combat.Combat, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, combatants, round_cap, round, state, round_log, created_at, updated_at
		FROM combats WHERE id = $1
	`, id)
	var c combat.Combat
	var combatantsRaw, logRaw []byte
	err := row.Scan(&c.ID, &combatantsRaw, &c.RoundCap, &c.Round, &c.State, &logRaw, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("combat")
	}
	if err != nil {
		return nil, apperrors.Unavailable("scan combat", err)
	}
	if len(combatantsRaw) > 0 {
		if err := json.Unmarshal(combatantsRaw, &c.Combatants); err != nil {
			return nil, apperrors.Unavailable("unmarshal combat combatants", err)
		}
	}
	if len(logRaw) > 0 {
		if err := json.Unmarshal(logRaw, &c.RoundLog); err != nil {
			return nil, apperrors.Unavailable("unmarshal combat round log", err)
		}
	}
	return &c, nil
}

// Save persists the state after a round resolution. Combat round
// resolution already holds a per-combat lock (the simulation engine
// serializes resolution through the scheduler lease), so this uses a plain
// unconditional update rather than optimistic-concurrency versioning.
func (r *CombatRepository) Save(ctx context.Context, c *combat.Combat) error {
	combatantsJSON, logJSON, err := marshalCombatBlobs(c)
	if err != nil {
		return apperrors.Unavailable("marshal combat", err)
	}
	_, err = r.db.ExecContext(ctx, `
		UPDATE combats SET combatants = $2, round = $3, state = $4, round_log = $5, updated_at = $6
		WHERE id = $1
	`, c.ID, combatantsJSON, c.Round, c.State, logJSON, c.UpdatedAt)
	if err != nil {
		return apperrors.Unavailable("save combat", err)
	}
	return nil
}

// ListByIDs loads the combat for each id in turn, in the order given;
// terminal combats are included. It stops with the first id that cannot
// be loaded.
func (r *CombatRepository) ListByIDs(ctx context.Context, ids []string) ([]*combat.Combat, error) {
	out := make([]*combat.Combat, 0, len(ids))
	for _, id := range ids {
		c, err := r.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
