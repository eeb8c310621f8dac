package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Scope is a coarse claim carried on access tokens, distinguishing a full
// session from a pending-MFA challenge token.
type Scope string

const (
	ScopeSession   Scope = "session"
	ScopeMFAPending Scope = "mfa-pending"
)

// Claims is the access-token payload: account id, role, and scope.
type Claims struct {
	AccountID string `json:"account_id"`
	Role      string `json:"role"`
	Scope     Scope  `json:"scope"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates HS256 JWTs signed with the configured
// JWT secret.
type TokenManager struct {
	secret       []byte
	accessExpiry time.Duration
}

// NewTokenManager builds a manager over the configured secret and access
// token lifetime. A blank secret means tokens can be neither issued nor
// validated, surfaced as an error rather than a panic so a misconfigured
// non-production environment fails the request, not the process.
func NewTokenManager(secret string, accessExpiry time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), accessExpiry: accessExpiry}
}

// IssueAccess mints a full-session access token.
func (m *TokenManager) IssueAccess(accountID, role string) (string, time.Time, error) {
	return m.issue(accountID, role, ScopeSession, m.accessExpiry)
}

// IssueChallenge mints a short-lived token scoped to completing an MFA
// challenge, returned by Authenticate in place of a full pair when the
// account has MFA enrolled.
func (m *TokenManager) IssueChallenge(accountID, role string, ttl time.Duration) (string, time.Time, error) {
	return m.issue(accountID, role, ScopeMFAPending, ttl)
}

func (m *TokenManager) issue(accountID, role string, scope Scope, ttl time.Duration) (string, time.Time, error) {
	if len(m.secret) == 0 {
		return "", time.Time{}, errors.New("jwt secret not configured")
	}
	exp := time.Now().Add(ttl)
	claims := Claims{
		AccountID: accountID,
		Role:      role,
		Scope:     scope,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   accountID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	return signed, exp, err
}

// Validate parses and verifies an access or challenge token.
func (m *TokenManager) Validate(tokenString string) (*Claims, error) {
	if len(m.secret) == 0 {
		return nil, errors.New("jwt secret not configured")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// ValidateChallenge validates a token and additionally requires it carry
// the MFA-pending scope, rejecting a full session token presented where a
// challenge token is expected (and vice versa).
func (m *TokenManager) ValidateChallenge(tokenString string) (*Claims, error) {
	claims, err := m.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Scope != ScopeMFAPending {
		return nil, errors.New("token is not an mfa challenge token")
	}
	return claims, nil
}
