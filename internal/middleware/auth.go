package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/roomledger/roomledger/internal/auth"
	"github.com/roomledger/roomledger/internal/models"
	"github.com/roomledger/roomledger/internal/storage"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// identityKey is the context key for the resolved identity.
const identityKey contextKey = "identity"

// GetIdentity extracts the resolved identity from the context.
// Returns nil if the request did not pass through RequireAuth.
func GetIdentity(ctx context.Context) *models.Identity {
	identity, _ := ctx.Value(identityKey).(*models.Identity)
	return identity
}

// RequireAuth resolves the bearer token into an identity and attaches it to
// the request context. Missing or malformed credentials, invalid tokens,
// stale token versions and vanished roommates are all rejected as
// unauthenticated without distinguishing the cause; store failures are a
// distinct internal error, not an authentication failure.
func RequireAuth(tokens *auth.TokenManager, store storage.Store, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, auth.ErrMissingToken.Error())
				return
			}

			claims, err := tokens.Validate(token)
			if errors.Is(err, auth.ErrMisconfigured) {
				logger.Error("JWT secret is not configured")
				writeError(w, http.StatusInternalServerError, auth.ErrMisconfigured.Error())
				return
			}
			if err != nil {
				writeError(w, http.StatusUnauthorized, auth.ErrInvalidToken.Error())
				return
			}

			identity, err := store.GetIdentity(r.Context(), claims.Subject)
			if errors.Is(err, storage.ErrNotFound) {
				writeError(w, http.StatusUnauthorized, auth.ErrInvalidToken.Error())
				return
			}
			if err != nil {
				logger.Error("Identity lookup failed", "roommate_id", claims.Subject, "error", err)
				writeError(w, http.StatusInternalServerError, "Auth check failed")
				return
			}

			// Version pinning: every login bumps the stored tokenVersion, so
			// a token carrying an older version has been invalidated.
			if claims.Version != identity.TokenVersion {
				writeError(w, http.StatusUnauthorized, auth.ErrInvalidToken.Error())
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// writeError emits the standard {"error": message} body. Duplicated from the
// server package to keep middleware free of a dependency on it.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
