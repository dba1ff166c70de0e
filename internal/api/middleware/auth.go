package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/brentkao/roomcoord/internal/api/apierr"
	"github.com/brentkao/roomcoord/internal/model"
)

// Verifier turns a bearer credential into an identity
type Verifier interface {
	Verify(token string) (model.Identity, error)
}

type contextKey string

const identityContextKey contextKey = "identity"

// Auth rejects requests without a valid bearer credential and stores the
// verified identity in the request context
func Auth(verifier Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			identity, err := verifier.Verify(token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole allows only identities holding one of roles. It must run
// after Auth.
func RequireRole(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := GetIdentity(r.Context())
			if !ok {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}
			if !slices.Contains(roles, identity.Role) {
				apierr.WriteError(w, model.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractToken reads the Authorization header
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// GetIdentity returns the verified identity from the request context
func GetIdentity(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(model.Identity)
	return identity, ok && !identity.IsZero()
}

// MustGetIdentity returns the verified identity or panics
func MustGetIdentity(ctx context.Context) model.Identity {
	identity, ok := GetIdentity(ctx)
	if !ok {
		panic("no identity in context - auth middleware not applied?")
	}
	return identity
}
