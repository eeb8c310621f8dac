// Package refreshtoken models a single link in an account's refresh-token
// chain: opaque, single-use, and rotating. Presenting a token whose hash
// doesn't match the latest-issued link in its chain revokes the chain,
// per the identity contract's reuse-detection rule.
package refreshtoken

import "time"

// Token is one issued refresh token, stored by its hash only.
type Token struct {
	ID              string
	AccountID       string
	ChainID         string // constant across rotations of one login session
	TokenHash       string // sha256 of the opaque token, hex-encoded
	DeviceFingerprint string
	Revoked         bool
	ReplacedByID    string // set once rotated forward
	ExpiresAt       time.Time
	CreatedAt       time.Time
}

// New starts a fresh chain at login.
func New(id, accountID, chainID, tokenHash, deviceFingerprint string, expiresAt, now time.Time) *Token {
	return &Token{
		ID:                id,
		AccountID:         accountID,
		ChainID:           chainID,
		TokenHash:         tokenHash,
		DeviceFingerprint: deviceFingerprint,
		ExpiresAt:         expiresAt,
		CreatedAt:         now,
	}
}

// Rotate continues the same chain with a freshly issued token, and links
// this token forward to it.
func (t *Token) Rotate(nextID, nextHash string, expiresAt, now time.Time) *Token {
	t.ReplacedByID = nextID
	next := New(nextID, t.AccountID, t.ChainID, nextHash, t.DeviceFingerprint, expiresAt, now)
	return next
}

// IsActive reports whether the token can still be redeemed.
func (t *Token) IsActive(now time.Time) bool {
	return !t.Revoked && t.ReplacedByID == "" && now.Before(t.ExpiresAt)
}
