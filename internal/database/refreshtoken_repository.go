package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sectorwars2102/gameserver/internal/apperrors"
	"github.com/sectorwars2102/gameserver/internal/domain/refreshtoken"
)

// RefreshTokenRepository persists refresh-token chain links in the global
// shard, the same shard that owns Account.
type RefreshTokenRepository struct {
	db *sql.DB
}

func NewRefreshTokenRepository(db *sql.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

// Create inserts a newly issued link, either the first in a chain (at
// login) or a rotated continuation.
func (r *RefreshTokenRepository) Create(ctx context.Context, t *refreshtoken.Token) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (id, account_id, chain_id, token_hash, device_fingerprint, revoked, replaced_by_id, expires_at, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, t.ID, t.AccountID, t.ChainID, t.TokenHash, t.DeviceFingerprint, t.Revoked, t.ReplacedByID, t.ExpiresAt, t.CreatedAt)
	if err != nil {
		return apperrors.Unavailable("create refresh token", err)
	}
	return nil
}

// GetByHash looks up the link presented by a client. Returns NotFound if
// no link carries that hash, which callers treat identically to an
// already-revoked token (reject the refresh, do not reveal which).
func (r *RefreshTokenRepository) GetByHash(ctx context.Context, tokenHash string) (*refreshtoken.Token, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, account_id, chain_id, token_hash, device_fingerprint, revoked, replaced_by_id, expires_at, created_at
		FROM refresh_tokens WHERE token_hash = $1
	`, tokenHash)
	return scanRefreshToken(row)
}

func scanRefreshToken(row *sql.Row) (*refreshtoken.Token, error) {
	var t refreshtoken.Token
	err := row.Scan(&t.ID, &t.AccountID, &t.ChainID, &t.TokenHash, &t.DeviceFingerprint, &t.Revoked, &t.ReplacedByID, &t.ExpiresAt, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("refresh token")
	}
	if err != nil {
		return nil, apperrors.Unavailable("scan refresh token", err)
	}
	return &t, nil
}

// MarkReplaced records that a link has been rotated forward, so a second
// presentation of the same raw token is recognized as reuse.
func (r *RefreshTokenRepository) MarkReplaced(ctx context.Context, id, replacedByID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE refresh_tokens SET replaced_by_id = $2 WHERE id = $1
	`, id, replacedByID)
	if err != nil {
		return apperrors.Unavailable("mark refresh token replaced", err)
	}
	return nil
}

// RevokeChain revokes every link in a chain at once, the reuse-detection
// response: presenting an already-replaced token compromises the whole
// chain, not just the one link.
func (r *RefreshTokenRepository) RevokeChain(ctx context.Context, chainID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE refresh_tokens SET revoked = true WHERE chain_id = $1
	`, chainID)
	if err != nil {
		return apperrors.Unavailable("revoke refresh token chain", err)
	}
	return nil
}
