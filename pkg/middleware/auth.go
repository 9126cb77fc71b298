// pkg/middleware/auth.go
package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"expensio/internal/api"
	"expensio/internal/apperr"
	"expensio/internal/token"
	"expensio/internal/user"
)

type contextKey string

// UserIDKey carries the authenticated user's id (int64) in the request context.
const UserIDKey contextKey = "userID"

// UserGetter resolves a token's claimed identity to a live user row.
type UserGetter interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
}

// JWTAuth guards protected routes: it extracts the bearer token, verifies it
// against the access secret, confirms the user still exists and attaches the
// identity to the context.
func JWTAuth(tokens *token.Service, users UserGetter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				api.WriteError(w, r, apperr.Unauthorized("Unauthorized request"))
				return
			}

			parts := strings.SplitN(auth, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				api.WriteError(w, r, apperr.Unauthorized("Unauthorized request"))
				return
			}

			userID, err := tokens.VerifyAccess(parts[1])
			if err != nil {
				api.WriteError(w, r, apperr.Unauthorized("Invalid or expired access token"))
				return
			}

			u, err := users.GetByID(r.Context(), userID)
			if errors.Is(err, sql.ErrNoRows) {
				api.WriteError(w, r, apperr.Unauthorized("User not found for access token"))
				return
			}
			if err != nil {
				api.WriteError(w, r, apperr.Internal(err))
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, u.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID returns the authenticated identity placed by JWTAuth.
func UserID(r *http.Request) (int64, bool) {
	id, ok := r.Context().Value(UserIDKey).(int64)
	return id, ok
}

// BasicAuth protects the metrics endpoint with constant-time credential
// comparison.
func BasicAuth(username, password string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("WWW-Authenticate", `Basic realm="metrics"`)

			name, pass, ok := r.BasicAuth()
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !constantTimeCompare(name, username) || !constantTimeCompare(pass, password) {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func constantTimeCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	result := 0
	for i := range a {
		result |= int(a[i] ^ b[i])
	}
	return result == 0
}
