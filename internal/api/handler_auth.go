package api

import (
	"net/http"
	"time"

	"github.com/sectorwars2102/gameserver/internal/apperrors"
	"github.com/sectorwars2102/gameserver/internal/domain/account"
	"github.com/sectorwars2102/gameserver/internal/identity"
	"github.com/sectorwars2102/gameserver/internal/security"
)

type registerRequest struct {
	Handle   string `json:"handle"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerResponse struct {
	AccountID string `json:"account_id"`
	PlayerID  string `json:"player_id"`
	Handle    string `json:"handle"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	fe := newFieldErrors()
	fe.require("handle", req.Handle)
	fe.minLen("handle", req.Handle, 3)
	fe.maxLen("handle", req.Handle, 32)
	fe.require("email", req.Email)
	fe.minLen("password", req.Password, 8)
	if !fe.ok() {
		writeError(w, r, fe.asError())
		return
	}

	acct, p, err := s.identity.Register(r.Context(), req.Handle, req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, registerResponse{AccountID: acct.ID, PlayerID: p.ID, Handle: acct.Handle})
}

type signInRequest struct {
	Handle            string `json:"handle"`
	Password          string `json:"password"`
	DeviceFingerprint string `json:"device_fingerprint"`
}

type tokenPairResponse struct {
	AccessToken      string `json:"access_token"`
	AccessExpiresAt  string `json:"access_expires_at"`
	RefreshToken     string `json:"refresh_token"`
	RefreshExpiresAt string `json:"refresh_expires_at"`
}

type challengeResponse struct {
	ChallengeToken string `json:"challenge_token"`
	ExpiresAt      string `json:"expires_at"`
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	fe := newFieldErrors()
	fe.require("handle", req.Handle)
	fe.require("password", req.Password)
	if !fe.ok() {
		writeError(w, r, fe.asError())
		return
	}

	pair, challenge, err := s.identity.Authenticate(r.Context(), req.Handle, req.Password, req.DeviceFingerprint)
	if err != nil {
		if ge := apperrors.As(err); ge != nil && ge.Code == apperrors.CodeAuthenticationRequired && s.abuse != nil {
			key := security.ClientIP(r) + ":" + req.Handle
			if s.abuse.RecordFailedLogin(key, timeNowUTC()) {
				s.limiter.SetFamilyBudget(security.FamilyAuth, 1, time.Minute)
			}
		}
		writeError(w, r, err)
		return
	}
	if challenge != nil {
		writeJSON(w, http.StatusAccepted, challengeResponse{
			ChallengeToken: challenge.ChallengeToken,
			ExpiresAt:      challenge.ExpiresAt.Format(timeLayout),
		})
		return
	}
	writeJSON(w, http.StatusOK, tokenPairFromPair(pair))
}

type mfaChallengeRequest struct {
	ChallengeToken    string `json:"challenge_token"`
	Code              string `json:"code"`
	DeviceFingerprint string `json:"device_fingerprint"`
}

func (s *Server) handleCompleteMFAChallenge(w http.ResponseWriter, r *http.Request) {
	var req mfaChallengeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	fe := newFieldErrors()
	fe.require("challenge_token", req.ChallengeToken)
	fe.require("code", req.Code)
	if !fe.ok() {
		writeError(w, r, fe.asError())
		return
	}
	pair, err := s.identity.CompleteMFAChallenge(r.Context(), req.ChallengeToken, req.Code, req.DeviceFingerprint)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenPairFromPair(pair))
}

type refreshRequest struct {
	RefreshToken      string `json:"refresh_token"`
	DeviceFingerprint string `json:"device_fingerprint"`
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	fe := newFieldErrors()
	fe.require("refresh_token", req.RefreshToken)
	if !fe.ok() {
		writeError(w, r, fe.asError())
		return
	}
	pair, err := s.identity.Refresh(r.Context(), req.RefreshToken, req.DeviceFingerprint)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenPairFromPair(pair))
}

type providerCallbackRequest struct {
	Code        string `json:"code"`
	RedirectURL string `json:"redirect_url"`
}

func (s *Server) handleProviderCallback(w http.ResponseWriter, r *http.Request) {
	provider := account.Provider(routeVar(r, "provider"))
	var req providerCallbackRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	fe := newFieldErrors()
	fe.require("code", req.Code)
	fe.oneOf("provider", string(provider), string(account.ProviderCodeHost), string(account.ProviderSearchEngine), string(account.ProviderGamingPlatform))
	if !fe.ok() {
		writeError(w, r, fe.asError())
		return
	}
	acct, created, err := s.identity.BindExternalProvider(r.Context(), provider, req.Code, req.RedirectURL)
	if err != nil {
		writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, registerResponse{AccountID: acct.ID, Handle: acct.Handle})
}

func (s *Server) handleEnrollMFA(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	secret, codes, err := s.identity.EnrollMFA(r.Context(), claims.AccountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"secret": secret, "backup_codes": codes})
}

type confirmMFARequest struct {
	Code string `json:"code"`
}

func (s *Server) handleConfirmMFAEnrollment(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	var req confirmMFARequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.identity.ConfirmMFAEnrollment(r.Context(), claims.AccountID, req.Code); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "confirmed"})
}

func tokenPairFromPair(pair *identity.TokenPair) tokenPairResponse {
	return tokenPairResponse{
		AccessToken:      pair.AccessToken,
		AccessExpiresAt:  pair.AccessExpiresAt.Format(timeLayout),
		RefreshToken:     pair.RefreshToken,
		RefreshExpiresAt: pair.RefreshExpiresAt.Format(timeLayout),
	}
}
