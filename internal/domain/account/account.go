// Package account models the authentication principal: credentials,
// role, MFA enrollment, and external-provider bindings.
package account

import "time"

// Role distinguishes a player account from an administrator account.
type Role string

const (
	RolePlayer        Role = "player"
	RoleAdministrator Role = "administrator"
)

// Provider identifies one of the three supported external sign-in providers.
type Provider string

const (
	ProviderCodeHost     Provider = "code-host"
	ProviderSearchEngine Provider = "search-engine"
	ProviderGamingPlatform Provider = "gaming-platform"
)

// ExternalBinding links an account to an external provider's account id.
type ExternalBinding struct {
	Provider         Provider
	ProviderAccountID string
	DisplayName      string
	BoundAt          time.Time
}

// MFAState tracks second-factor enrollment for an account.
type MFAState struct {
	Enrolled       bool
	Secret         string   // TOTP secret, empty until enrolled
	BackupCodeHashes []string
}

// Account is the authentication principal. Deletion is soft: Tombstoned
// preserves the row (and its audit chain) rather than removing it.
type Account struct {
	ID              string
	Handle          string
	Email           string
	CredentialHash  string // argon2id hash, see internal/identity
	Role            Role
	MFA             MFAState
	ExternalBindings []ExternalBinding
	Tombstoned      bool
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// New constructs a fresh player-role account. Administrators are never
// self-registered through this constructor.
func New(id, handle, email, credentialHash string, now time.Time) *Account {
	return &Account{
		ID:             id,
		Handle:         handle,
		Email:          email,
		CredentialHash: credentialHash,
		Role:           RolePlayer,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// NewFromProvider constructs an account auto-created on first external-login
// bind, per the identity contract.
func NewFromProvider(id string, binding ExternalBinding, now time.Time) *Account {
	a := &Account{
		ID:              id,
		Handle:          binding.DisplayName,
		Role:            RolePlayer,
		ExternalBindings: []ExternalBinding{binding},
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	return a
}

// BindProvider attaches an additional external-provider binding, replacing
// any existing binding for the same provider.
func (a *Account) BindProvider(binding ExternalBinding, now time.Time) {
	out := make([]ExternalBinding, 0, len(a.ExternalBindings)+1)
	for _, b := range a.ExternalBindings {
		if b.Provider != binding.Provider {
			out = append(out, b)
		}
	}
	out = append(out, binding)
	a.ExternalBindings = out
	a.UpdatedAt = now
}

// EnrollMFA records a freshly generated TOTP secret and hashed backup codes.
func (a *Account) EnrollMFA(secret string, backupCodeHashes []string, now time.Time) {
	a.MFA = MFAState{Enrolled: true, Secret: secret, BackupCodeHashes: backupCodeHashes}
	a.UpdatedAt = now
}

// ConsumeBackupCode removes a matched backup-code hash, returning whether
// it was found. Backup codes are single-use, per the identity contract.
func (a *Account) ConsumeBackupCode(hash string) bool {
	for i, h := range a.MFA.BackupCodeHashes {
		if h == hash {
			a.MFA.BackupCodeHashes = append(a.MFA.BackupCodeHashes[:i], a.MFA.BackupCodeHashes[i+1:]...)
			return true
		}
	}
	return false
}

// Tombstone soft-deletes the account, preserving it for audit-chain
// integrity.
func (a *Account) Tombstone(now time.Time) {
	a.Tombstoned = true
	a.UpdatedAt = now
}

// IsAdministrator reports whether the account carries the administrator
// role.
func (a *Account) IsAdministrator() bool {
	return a.Role == RoleAdministrator
}
