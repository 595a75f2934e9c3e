package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Josh363/small-business-app/internal/domain/entities"
	apperrors "github.com/Josh363/small-business-app/pkg/errors"
)

// TokenCookie is the cookie carrying the session token
const TokenCookie = "token"

type contextKey string

const userKey contextKey = "user"

// Authenticator resolves a bearer token to a user
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*entities.User, error)
}

// WithUser returns a copy of ctx carrying the authenticated user
func WithUser(ctx context.Context, user *entities.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the authenticated user, or nil
func UserFromContext(ctx context.Context) *entities.User {
	user, _ := ctx.Value(userKey).(*entities.User)
	return user
}

// Protect rejects requests without a valid token. The token is read from the
// Authorization header first, then from the token cookie.
func Protect(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := auth.Authenticate(r.Context(), tokenFrom(r))
			if err != nil {
				writeAppError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// Authorize admits only users holding one of roles. It must run after Protect.
func Authorize(roles ...entities.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if user == nil {
				writeAppError(w, apperrors.NewUnauthenticatedError("Not authorized to access this route"))
				return
			}
			if !user.HasRole(roles...) {
				writeAppError(w, apperrors.NewUnauthorizedError(fmt.Sprintf("User role %s is not authorized to access this route", user.Role)))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func tokenFrom(r *http.Request) string {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if c, err := r.Cookie(TokenCookie); err == nil {
		return c.Value
	}
	return ""
}
