package identity

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sectorwars2102/gameserver/internal/apperrors"
	"github.com/sectorwars2102/gameserver/internal/database"
	"github.com/sectorwars2102/gameserver/internal/domain/account"
	"github.com/sectorwars2102/gameserver/internal/domain/audit"
	"github.com/sectorwars2102/gameserver/internal/domain/player"
	"github.com/sectorwars2102/gameserver/internal/domain/refreshtoken"
)

// TokenPair is a full session credential: a short-lived JWT access token
// plus a long-lived opaque refresh token (returned to the caller raw,
// stored only hashed).
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// ChallengeResult is returned by Authenticate in place of a TokenPair when
// the account has MFA enrolled: the caller must complete
// CompleteMFAChallenge before it receives a session.
type ChallengeResult struct {
	ChallengeToken string
	ExpiresAt      time.Time
}

const mfaChallengeTTL = 5 * time.Minute

// Service orchestrates registration, authentication, MFA, refresh-token
// rotation, and external-provider binding. It is the single write path
// into the account/player/refresh-token tables for identity operations.
type Service struct {
	accounts      *database.AccountRepository
	players       *database.PlayerRepository
	regions       *database.RegionRepository
	refreshTokens *database.RefreshTokenRepository
	auditRepo     *database.AuditRepository
	hasher        *CredentialHasher
	tokens        *TokenManager
	mfa           *MFAManager
	oauth         *OAuthClient
	refreshExpiry time.Duration
}

// NewService wires the identity service over its repositories and the
// configured work factors/secrets.
func NewService(
	accounts *database.AccountRepository,
	players *database.PlayerRepository,
	regions *database.RegionRepository,
	refreshTokens *database.RefreshTokenRepository,
	auditRepo *database.AuditRepository,
	hasher *CredentialHasher,
	tokens *TokenManager,
	mfa *MFAManager,
	oauth *OAuthClient,
	refreshExpiry time.Duration,
) *Service {
	return &Service{
		accounts:      accounts,
		players:       players,
		regions:       regions,
		refreshTokens: refreshTokens,
		auditRepo:     auditRepo,
		hasher:        hasher,
		tokens:        tokens,
		mfa:           mfa,
		oauth:         oauth,
		refreshExpiry: refreshExpiry,
	}
}

// Register creates a fresh player-role account and its companion Player,
// auto-assigned into the Nexus region.
func (s *Service) Register(ctx context.Context, handle, email, password string) (*account.Account, *player.Player, error) {
	if _, err := s.accounts.GetByHandle(ctx, handle); err == nil {
		return nil, nil, apperrors.Conflict("handle already registered")
	} else if apperrors.As(err) == nil || apperrors.As(err).Code != apperrors.CodeResourceNotFound {
		return nil, nil, err
	}

	credentialHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, nil, apperrors.Unavailable("hash credential", err)
	}

	now := time.Now().UTC()
	acct := account.New(uuid.New().String(), handle, email, credentialHash, now)
	if err := s.accounts.Create(ctx, acct); err != nil {
		return nil, nil, err
	}

	nexus, err := s.regions.GetByName(ctx, "central-nexus")
	if err != nil {
		return nil, nil, err
	}
	p := player.New(uuid.New().String(), acct.ID, handle, nexus.ID, now)
	if err := s.players.Create(ctx, p); err != nil {
		return nil, nil, err
	}

	s.emitAudit(ctx, acct.ID, "account.registered", "account", acct.ID, "info")
	return acct, p, nil
}

// Authenticate verifies a handle/password pair. If the account has MFA
// enrolled, it returns a ChallengeResult instead of a TokenPair; the
// caller must complete CompleteMFAChallenge to obtain a session.
func (s *Service) Authenticate(ctx context.Context, handle, password, deviceFingerprint string) (*TokenPair, *ChallengeResult, error) {
	acct, err := s.accounts.GetByHandle(ctx, handle)
	if err != nil {
		if apperrors.As(err) != nil && apperrors.As(err).Code == apperrors.CodeResourceNotFound {
			return nil, nil, apperrors.AuthenticationRequired("invalid handle or password")
		}
		return nil, nil, err
	}
	if acct.Tombstoned || !Verify(acct.CredentialHash, password) {
		s.emitAudit(ctx, acct.ID, "account.login_failed", "account", acct.ID, "warning")
		return nil, nil, apperrors.AuthenticationRequired("invalid handle or password")
	}

	if acct.MFA.Enrolled {
		token, exp, err := s.tokens.IssueChallenge(acct.ID, string(acct.Role), mfaChallengeTTL)
		if err != nil {
			return nil, nil, apperrors.Unavailable("issue mfa challenge", err)
		}
		s.emitAudit(ctx, acct.ID, "account.mfa_challenge_issued", "account", acct.ID, "info")
		return nil, &ChallengeResult{ChallengeToken: token, ExpiresAt: exp}, nil
	}

	pair, err := s.issueSession(ctx, acct, deviceFingerprint)
	if err != nil {
		return nil, nil, err
	}
	s.emitAudit(ctx, acct.ID, "account.login_succeeded", "account", acct.ID, "info")
	return pair, nil, nil
}

// CompleteMFAChallenge exchanges a challenge token plus a TOTP code or
// backup code for a full session.
func (s *Service) CompleteMFAChallenge(ctx context.Context, challengeToken, code, deviceFingerprint string) (*TokenPair, error) {
	claims, err := s.tokens.ValidateChallenge(challengeToken)
	if err != nil {
		return nil, apperrors.AuthenticationRequired("invalid or expired mfa challenge")
	}
	acct, err := s.accounts.Get(ctx, claims.AccountID)
	if err != nil {
		return nil, err
	}

	if s.mfa.VerifyCode(acct.MFA.Secret, code) {
		s.emitAudit(ctx, acct.ID, "account.mfa_verified", "account", acct.ID, "info")
		return s.issueSession(ctx, acct, deviceFingerprint)
	}

	if idx, matched := MatchBackupCode(acct.MFA.BackupCodeHashes, code); matched {
		acct.ConsumeBackupCode(acct.MFA.BackupCodeHashes[idx])
		acct.UpdatedAt = time.Now().UTC()
		if err := s.accounts.Update(ctx, acct); err != nil {
			return nil, err
		}
		s.emitAudit(ctx, acct.ID, "account.mfa_backup_code_consumed", "account", acct.ID, "warning")
		return s.issueSession(ctx, acct, deviceFingerprint)
	}

	s.emitAudit(ctx, acct.ID, "account.mfa_challenge_failed", "account", acct.ID, "warning")
	return nil, apperrors.AuthenticationRequired("invalid mfa code")
}

// EnrollMFA generates a fresh TOTP secret and a set of backup codes for an
// account, persisting only the secret and the backup-code hashes.
// Enrollment is not active until ConfirmMFAEnrollment verifies a code.
func (s *Service) EnrollMFA(ctx context.Context, accountID string) (secret string, backupCodes []string, err error) {
	acct, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		return "", nil, err
	}
	secret, err = s.mfa.GenerateSecret(acct.Handle)
	if err != nil {
		return "", nil, apperrors.Unavailable("generate totp secret", err)
	}
	codes, hashes, err := s.mfa.GenerateBackupCodes(10)
	if err != nil {
		return "", nil, apperrors.Unavailable("generate backup codes", err)
	}
	acct.EnrollMFA(secret, hashes, time.Now().UTC())
	if err := s.accounts.Update(ctx, acct); err != nil {
		return "", nil, err
	}
	return secret, codes, nil
}

// ConfirmMFAEnrollment verifies the first TOTP code against a just-enrolled
// secret, proving the operator's authenticator app is correctly paired.
func (s *Service) ConfirmMFAEnrollment(ctx context.Context, accountID, code string) error {
	acct, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		return err
	}
	if !s.mfa.VerifyCode(acct.MFA.Secret, code) {
		return apperrors.ValidationError("code", "totp code did not verify against the enrolled secret")
	}
	s.emitAudit(ctx, acct.ID, "account.mfa_enrolled", "account", acct.ID, "info")
	return nil
}

// Refresh redeems a raw refresh token for a new TokenPair, rotating the
// chain forward. Presenting a token that has already been rotated past
// (reuse) revokes the entire chain instead of issuing a new pair.
func (s *Service) Refresh(ctx context.Context, rawToken, deviceFingerprint string) (*TokenPair, error) {
	hash := hashRefreshToken(rawToken)
	link, err := s.refreshTokens.GetByHash(ctx, hash)
	if err != nil {
		return nil, apperrors.AuthenticationRequired("invalid refresh token")
	}

	now := time.Now().UTC()
	if link.Revoked || link.ReplacedByID != "" {
		if err := s.refreshTokens.RevokeChain(ctx, link.ChainID); err != nil {
			return nil, err
		}
		s.emitAudit(ctx, link.AccountID, "account.refresh_reuse_detected", "account", link.AccountID, "critical")
		return nil, apperrors.AuthenticationRequired("refresh token reuse detected; session revoked")
	}
	if now.After(link.ExpiresAt) {
		return nil, apperrors.AuthenticationRequired("refresh token expired")
	}

	acct, err := s.accounts.Get(ctx, link.AccountID)
	if err != nil {
		return nil, err
	}

	rawNext, nextHash, err := generateOpaqueToken()
	if err != nil {
		return nil, apperrors.Unavailable("generate refresh token", err)
	}
	next := link.Rotate(uuid.New().String(), nextHash, now.Add(s.refreshExpiry), now)
	if err := s.refreshTokens.Create(ctx, next); err != nil {
		return nil, err
	}
	if err := s.refreshTokens.MarkReplaced(ctx, link.ID, next.ID); err != nil {
		return nil, err
	}

	accessToken, accessExp, err := s.tokens.IssueAccess(acct.ID, string(acct.Role))
	if err != nil {
		return nil, apperrors.Unavailable("issue access token", err)
	}
	s.emitAudit(ctx, acct.ID, "account.token_refreshed", "account", acct.ID, "info")
	return &TokenPair{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExp,
		RefreshToken:     rawNext,
		RefreshExpiresAt: next.ExpiresAt,
	}, nil
}

// BindExternalProvider completes an OAuth2 authorization-code exchange and
// binds the resulting external identity to an account, auto-creating one
// (and its Nexus-assigned Player) on first bind for that provider account,
// per the identity contract.
func (s *Service) BindExternalProvider(ctx context.Context, provider account.Provider, code, redirectURL string) (*account.Account, bool, error) {
	identity, err := s.oauth.Exchange(ctx, provider, code, redirectURL)
	if err != nil {
		return nil, false, apperrors.Unavailable("oauth exchange", err)
	}

	now := time.Now().UTC()
	binding := account.ExternalBinding{
		Provider:          provider,
		ProviderAccountID: identity.ProviderAccountID,
		DisplayName:       identity.DisplayName,
		BoundAt:           now,
	}

	acct := account.NewFromProvider(uuid.New().String(), binding, now)
	if identity.Email != "" {
		acct.Email = identity.Email
	}
	if err := s.accounts.Create(ctx, acct); err != nil {
		return nil, false, err
	}

	nexus, err := s.regions.GetByName(ctx, "central-nexus")
	if err != nil {
		return nil, false, err
	}
	p := player.New(uuid.New().String(), acct.ID, identity.DisplayName, nexus.ID, now)
	if err := s.players.Create(ctx, p); err != nil {
		return nil, false, err
	}

	s.emitAudit(ctx, acct.ID, "account.provider_bound", "account", acct.ID, "info")
	return acct, true, nil
}

func (s *Service) issueSession(ctx context.Context, acct *account.Account, deviceFingerprint string) (*TokenPair, error) {
	accessToken, accessExp, err := s.tokens.IssueAccess(acct.ID, string(acct.Role))
	if err != nil {
		return nil, apperrors.Unavailable("issue access token", err)
	}

	now := time.Now().UTC()
	rawRefresh, refreshHash, err := generateOpaqueToken()
	if err != nil {
		return nil, apperrors.Unavailable("generate refresh token", err)
	}
	expiresAt := now.Add(s.refreshExpiry)
	chainID := uuid.New().String()
	link := refreshtoken.New(uuid.New().String(), acct.ID, chainID, refreshHash, deviceFingerprint, expiresAt, now)
	if err := s.refreshTokens.Create(ctx, link); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExp,
		RefreshToken:     rawRefresh,
		RefreshExpiresAt: expiresAt,
	}, nil
}

func (s *Service) emitAudit(ctx context.Context, actorID, action, targetType, targetID, severity string) {
	now := time.Now().UTC()
	detail, _ := json.Marshal(map[string]string{"action": action})
	entry := &audit.Entry{
		ID:         uuid.New().String(),
		DedupKey:   fmt.Sprintf("%s:%s:%d", action, actorID, now.UnixNano()),
		ActorID:    actorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Detail:     string(detail),
		Severity:   severity,
		OccurredAt: now,
		IngestedAt: now,
	}
	// Audit ingestion failures never block the identity operation that
	// triggered them; C8 owns surfacing ingestion health separately.
	_, _ = s.auditRepo.Ingest(ctx, entry)
}

func generateOpaqueToken() (raw, hash string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	raw = base64.RawURLEncoding.EncodeToString(buf)
	return raw, hashRefreshToken(raw), nil
}

func hashRefreshToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
