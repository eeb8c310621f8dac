// Package identity implements account registration, authentication, MFA
// enrollment/challenge, refresh-token rotation, and external-provider
// binding for the game server's player and administrator accounts.
package identity

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	credentialSaltLen = 16
	credentialKeyLen  = 32
	argon2Parallelism = 2
)

// CredentialHasher argon2id-hashes account credentials. Parallelism is
// fixed; memory and iteration cost are operator-tunable via config so the
// work factor can be raised as hardware improves without a migration.
type CredentialHasher struct {
	memoryKB   uint32
	iterations uint32
}

// NewCredentialHasher builds a hasher from the configured work factor.
func NewCredentialHasher(memoryKB, iterations uint32) *CredentialHasher {
	return &CredentialHasher{memoryKB: memoryKB, iterations: iterations}
}

// Hash returns an encoded argon2id hash carrying its own salt and work
// factor, so verification never depends on the caller's current config.
func (h *CredentialHasher) Hash(password string) (string, error) {
	salt := make([]byte, credentialSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	sum := argon2.IDKey([]byte(password), salt, h.iterations, h.memoryKB, argon2Parallelism, credentialKeyLen)
	return fmt.Sprintf("argon2id$%d$%d$%d$%s$%s",
		h.memoryKB, h.iterations, argon2Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sum),
	), nil
}

// Verify checks a password against a previously encoded hash in constant
// time, using the work factor embedded in the hash rather than the
// hasher's current configuration.
func Verify(encoded, password string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "argon2id" {
		return false
	}
	var memoryKB, iterations, parallelism uint32
	if _, err := fmt.Sscanf(parts[1], "%d", &memoryKB); err != nil {
		return false
	}
	if _, err := fmt.Sscanf(parts[2], "%d", &iterations); err != nil {
		return false
	}
	if _, err := fmt.Sscanf(parts[3], "%d", &parallelism); err != nil {
		return false
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}
	got := argon2.IDKey([]byte(password), salt, iterations, memoryKB, uint8(parallelism), uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1
}
