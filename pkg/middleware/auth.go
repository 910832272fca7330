package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Shorabul/Homigo-Server/pkg/logger"
)

type contextKeyType string

const principalKey contextKeyType = "principal"

// Principal is the verified caller identity produced by token verification.
// It is request-scoped and never persisted.
type Principal struct {
	Subject string `json:"subject"`
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
}

// Verifier validates a bearer token and returns the verified principal.
// The concrete implementation is injected by the application (JWKS-backed
// in production, a stub in tests).
type Verifier func(ctx context.Context, token string) (*Principal, error)

// Auth returns middleware that admits or rejects requests based on the
// Authorization header. On any rejection it writes exactly one 401 response
// and returns without invoking the wrapped handler. On success the principal
// is stored in the request context and the handler runs exactly once.
func Auth(verify Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeAuthError(w, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
				writeAuthError(w, "invalid authorization header format")
				return
			}

			principal, err := verify(r.Context(), parts[1])
			if err != nil {
				writeAuthError(w, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			ctx = logger.WithActor(ctx, principal.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext extracts the verified principal from the request
// context. It returns nil when the request did not pass the Auth middleware.
func PrincipalFromContext(ctx context.Context) *Principal {
	if p, ok := ctx.Value(principalKey).(*Principal); ok {
		return p
	}
	return nil
}

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":    "UNAUTHORIZED",
		"message": message,
	})
}
