package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/sectorwars2102/gameserver/internal/apperrors"
	"github.com/sectorwars2102/gameserver/internal/identity"
	"github.com/sectorwars2102/gameserver/internal/logging"
	"github.com/sectorwars2102/gameserver/internal/security"
)

type ctxKey int

const (
	ctxRequestIDKey ctxKey = iota
	ctxClaimsKey
)

func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxRequestIDKey).(string)
	return id
}

// claimsFromContext returns the validated access-token claims attached by
// requireAuth, or nil for an endpoint mounted without it.
func claimsFromContext(ctx context.Context) *identity.Claims {
	c, _ := ctx.Value(ctxClaimsKey).(*identity.Claims)
	return c
}

// requestIDMiddleware reads X-Request-ID from the caller or generates one,
// echoing it into the response header and the request's logging context.
func requestIDMiddleware(logger *logging.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", requestID)
			ctx := context.WithValue(r.Context(), ctxRequestIDKey, requestID)
			ctx = logging.WithTraceID(ctx, requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// loggingMiddleware logs each request's method, path, status, and
// duration, tagged with the request id set by requestIDMiddleware.
func loggingMiddleware(logger *logging.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.LogRequest(r.Context(), r.Method, r.URL.Path, rec.status, time.Since(start))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// requireAuth validates the bearer token and attaches its claims to the
// request context; anything else fails with AuthenticationRequired before
// the handler ever runs.
func requireAuth(tokens *identity.TokenManager) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeError(w, r, apperrors.AuthenticationRequired(""))
				return
			}
			claims, err := tokens.Validate(strings.TrimPrefix(header, "Bearer "))
			if err != nil || claims.Scope != identity.ScopeSession {
				writeError(w, r, apperrors.AuthenticationRequired("invalid or expired token"))
				return
			}
			ctx := context.WithValue(r.Context(), ctxClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requireAdmin additionally rejects any caller whose role isn't
// administrator, for the administrative family.
func requireAdmin() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := claimsFromContext(r.Context())
			if claims == nil || claims.Role != "administrator" {
				writeError(w, r, apperrors.InsufficientPermissions("administrator role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// rateLimitMiddleware enforces limiter's budget for family, keyed on the
// caller's account id once authenticated, falling back to client IP before
// requireAuth has run (the auth family itself).
func rateLimitMiddleware(limiter *security.RateLimiter, family security.Family) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := security.ClientIP(r)
			if claims := claimsFromContext(r.Context()); claims != nil {
				key = claims.AccountID
			}
			if !limiter.Allow(key, family) {
				writeError(w, r, apperrors.RateLimited(1))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// corsMiddleware allows the (separately hosted) game client to call the
// API from its own origin.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
