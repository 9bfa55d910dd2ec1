// Package handlers contains HTTP handler interfaces and implementations.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// ══════════════════════════════════════════════════════════════════════════════
// SESSION AUTHENTICATION MIDDLEWARE
// Bearer tokens are opaque; the resolver looks them up in the session
// store (Redis). An expired or unknown token is indistinguishable from
// a missing one: both yield an anonymous request.
// ══════════════════════════════════════════════════════════════════════════════

// Identity is the authenticated caller attached to a request.
type Identity struct {
	// UserID is the internal user ID of the session owner.
	UserID string

	// Role is the role recorded when the session was opened.
	Role string
}

// SessionResolver resolves a bearer token into an identity.
// It returns an error when the token is unknown or expired.
type SessionResolver func(ctx context.Context, token string) (Identity, error)

// SessionAuth authenticates requests against the session store.
type SessionAuth struct {
	resolve SessionResolver
}

// NewSessionAuth creates a new SessionAuth.
func NewSessionAuth(resolve SessionResolver) *SessionAuth {
	return &SessionAuth{resolve: resolve}
}

// Authenticate attaches the caller's identity to the request context
// when a valid bearer token is present. It never rejects: endpoints
// that need authentication wrap themselves with Require.
func (a *SessionAuth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := TokenFromRequest(r)
		if token == "" || a.resolve == nil {
			next.ServeHTTP(w, r)
			return
		}

		identity, err := a.resolve(r.Context(), token)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyIdentity, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Require rejects anonymous requests with 401.
func Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFromContext(r.Context()); !ok {
			writeUnauthorized(w)
			return
		}
		next(w, r)
	}
}

// IdentityFromContext extracts the authenticated identity, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(contextKeyIdentity).(Identity)
	return identity, ok
}

// TokenFromRequest extracts the bearer token from the Authorization
// header. Returns "" when the header is absent or malformed.
func TokenFromRequest(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

type contextKey string

const contextKeyIdentity contextKey = "auth_identity"

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error": map[string]string{
			"code":    "unauthorized",
			"message": "Authentication required",
		},
	})
}
