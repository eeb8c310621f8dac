package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/sectorwars2102/gameserver/internal/apperrors"
	"github.com/sectorwars2102/gameserver/internal/domain/account"
)

// AccountRepository persists Account aggregates in the global shard.
type AccountRepository struct {
	db *sql.DB
}

// NewAccountRepository constructs a repository over the global shard pool.
func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts a new account row.
func (r *AccountRepository) Create(ctx context.Context, a *account.Account) error {
	mfaJSON, bindingsJSON, err := marshalAccountBlobs(a)
	if err != nil {
		return apperrors.Unavailable("marshal account", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO accounts (id, handle, email, credential_hash, role, mfa, external_bindings, tombstoned, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, a.ID, a.Handle, a.Email, a.CredentialHash, a.Role, mfaJSON, bindingsJSON, a.Tombstoned, a.CreatedAt, a.UpdatedAt, a.Version)
	if err != nil {
		return apperrors.Unavailable("create account", err)
	}
	return nil
}

func marshalAccountBlobs(a *account.Account) (mfaJSON, bindingsJSON []byte, err error) {
	mfaJSON, err = json.Marshal(a.MFA)
	if err != nil {
		return nil, nil, err
	}
	bindingsJSON, err = json.Marshal(a.ExternalBindings)
	if err != nil {
		return nil, nil, err
	}
	return mfaJSON, bindingsJSON, nil
}

// Get fetches an account by id.
func (r *AccountRepository) Get(ctx context.Context, id string) (*account.Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, handle, email, credential_hash, role, mfa, external_bindings, tombstoned, created_at, updated_at, version
		FROM accounts WHERE id = $1
	`, id)
	return scanAccount(row)
}

// GetByHandle fetches an account by its unique handle, used by
// authentication and registration-uniqueness checks.
func (r *AccountRepository) GetByHandle(ctx context.Context, handle string) (*account.Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, handle, email, credential_hash, role, mfa, external_bindings, tombstoned, created_at, updated_at, version
		FROM accounts WHERE handle = $1
	`, handle)
	return scanAccount(row)
}

func scanAccount(row *sql.Row) (*account.Account, error) {
	var a account.Account
	var mfaRaw, bindingsRaw []byte
	err := row.Scan(&a.ID, &a.Handle, &a.Email, &a.CredentialHash, &a.Role, &mfaRaw, &bindingsRaw, &a.Tombstoned, &a.CreatedAt, &a.UpdatedAt, &a.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("account")
	}
	if err != nil {
		return nil, apperrors.Unavailable("scan account", err)
	}
	if len(mfaRaw) > 0 {
		if err := json.Unmarshal(mfaRaw, &a.MFA); err != nil {
			return nil, apperrors.Unavailable("unmarshal account mfa", err)
		}
	}
	if len(bindingsRaw) > 0 {
		if err := json.Unmarshal(bindingsRaw, &a.ExternalBindings); err != nil {
			return nil, apperrors.Unavailable("unmarshal account bindings", err)
		}
	}
	return &a, nil
}

// Update persists an account's mutable fields, enforcing optimistic
// concurrency via the version column.
func (r *AccountRepository) Update(ctx context.Context, a *account.Account) error {
	mfaJSON, bindingsJSON, err := marshalAccountBlobs(a)
	if err != nil {
		return apperrors.Unavailable("marshal account", err)
	}
	result, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET handle = $2, email = $3, credential_hash = $4, role = $5, mfa = $6,
		    external_bindings = $7, tombstoned = $8, updated_at = $9, version = version + 1
		WHERE id = $1 AND version = $10
	`, a.ID, a.Handle, a.Email, a.CredentialHash, a.Role, mfaJSON, bindingsJSON, a.Tombstoned, a.UpdatedAt, a.Version)
	if err != nil {
		return apperrors.Unavailable("update account", err)
	}
	return CheckVersionedUpdate(result, "account")
}
