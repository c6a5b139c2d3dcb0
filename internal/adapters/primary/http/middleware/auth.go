package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/lorrc/skycrm-backend/internal/core/domain"
	apperrors "github.com/lorrc/skycrm-backend/internal/core/errors"
	"github.com/lorrc/skycrm-backend/internal/core/ports"
	"github.com/lorrc/skycrm-backend/internal/infrastructure/logging"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// IdentityKey is the key used to store the caller identity in the request context.
const IdentityKey contextKey = "identity"

// RequireIdentity verifies the bearer token and stores the identity it
// carries in the request context.
func RequireIdentity(verifier ports.TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				writeUnauthorized(w, "Authorization header must be Bearer {token}")
				return
			}

			identity, err := verifier.Verify(token)
			if err != nil {
				msg := "Invalid or expired token"
				if errors.Is(err, apperrors.ErrMissingCredential) {
					msg = "Authorization header must be Bearer {token}"
				}
				writeUnauthorized(w, msg)
				return
			}

			ctx := WithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects callers without the admin role. It must run after
// RequireIdentity.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok || !identity.IsAdmin() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":"You do not have permission to perform this action","code":"FORBIDDEN"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithIdentity attaches identity to ctx, including the ids the context
// logger reads.
func WithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	ctx = context.WithValue(ctx, IdentityKey, identity)
	ctx = logging.WithUserID(ctx, identity.UserID.String())
	return logging.WithTenantID(ctx, identity.TenantID.String())
}

// IdentityFromContext returns the identity stored by RequireIdentity.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(IdentityKey).(domain.Identity)
	return identity, ok
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"` + message + `","code":"UNAUTHORIZED"}`))
}
