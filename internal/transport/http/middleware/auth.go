package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/oyaa52/finsense/services/login-service/internal/domain"
)

// TokenResolver is the minimal surface the middleware needs to map a
// presented durable token to a user.
type TokenResolver interface {
	FindUserIDByToken(ctx context.Context, token string) (int64, error)
}

type WriteErrFunc func(http.ResponseWriter, *http.Request, error)

type userIDKey struct{}

// TokenAuth verifies "Authorization: Token <key>" against the durable API
// token store and injects the user id into the request context.
func TokenAuth(tokens TokenResolver, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if h == "" {
				writeErr(w, r, domain.ErrTokenMissing())
				return
			}

			parts := strings.SplitN(h, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Token") {
				writeErr(w, r, domain.ErrTokenInvalid())
				return
			}

			raw := strings.TrimSpace(parts[1])
			if raw == "" {
				writeErr(w, r, domain.ErrTokenInvalid())
				return
			}

			userID, err := tokens.FindUserIDByToken(r.Context(), raw)
			if err != nil {
				writeErr(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey{}, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext returns the authenticated user id, if any.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey{}).(int64)
	return id, ok
}
