package identity

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"

	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
)

// MFAManager enrolls and verifies TOTP second factors and their backup
// codes.
type MFAManager struct {
	issuer string
}

// NewMFAManager builds a manager that stamps the given issuer name into
// generated TOTP URLs (shown in authenticator apps).
func NewMFAManager(issuer string) *MFAManager {
	if issuer == "" {
		issuer = "Sectorwars2102"
	}
	return &MFAManager{issuer: issuer}
}

// GenerateSecret creates a fresh TOTP secret for an account handle.
func (m *MFAManager) GenerateSecret(handle string) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      m.issuer,
		AccountName: handle,
		SecretSize:  32,
	})
	if err != nil {
		return "", fmt.Errorf("generate totp secret: %w", err)
	}
	return key.Secret(), nil
}

// VerifyCode checks a 6-digit TOTP code against the enrolled secret.
func (m *MFAManager) VerifyCode(secret, code string) bool {
	return totp.Validate(code, secret)
}

// GenerateBackupCodes returns plaintext codes for one-time display and
// their bcrypt hashes for storage; only the hashes are ever persisted.
func (m *MFAManager) GenerateBackupCodes(count int) (codes []string, hashes []string, err error) {
	if count <= 0 {
		count = 10
	}
	codes = make([]string, count)
	hashes = make([]string, count)
	for i := 0; i < count; i++ {
		code, err := randomBackupCode(10)
		if err != nil {
			return nil, nil, err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
		if err != nil {
			return nil, nil, fmt.Errorf("hash backup code: %w", err)
		}
		codes[i] = code
		hashes[i] = string(hash)
	}
	return codes, hashes, nil
}

// MatchBackupCode finds which hash, if any, a presented backup code
// matches. Callers are responsible for removing the matched hash from the
// account's remaining set, per the single-use contract.
func MatchBackupCode(hashes []string, code string) (index int, matched bool) {
	for i, h := range hashes {
		if bcrypt.CompareHashAndPassword([]byte(h), []byte(code)) == nil {
			return i, true
		}
	}
	return -1, false
}

func randomBackupCode(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	encoded := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf)
	if len(encoded) > length {
		encoded = encoded[:length]
	}
	return encoded, nil
}
