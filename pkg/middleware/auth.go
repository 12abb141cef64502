package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/logger"
)

type contextKeyType string

const (
	userIDKey   contextKeyType = "user_id"
	userNameKey contextKeyType = "user_name"
)

// Claims is what a validated bearer token tells us about the caller.
type Claims struct {
	UserID string
	Name   string
}

// TokenValidator validates a bearer token and returns its claims.
type TokenValidator func(token string) (*Claims, error)

// Auth rejects requests without a valid bearer token and stores the caller
// in the request context. The request-scoped logger gains a user_id field.
func Auth(validate TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				httputil.WriteFail(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				httputil.WriteFail(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			claims, err := validate(parts[1])
			if err != nil {
				httputil.WriteFail(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
			ctx = context.WithValue(ctx, userNameKey, claims.Name)
			ctx = logger.WithUserID(ctx, claims.UserID)
			if l, ok := requestLogger(ctx); ok {
				ctx = logger.NewContext(ctx, l.With("user_id", claims.UserID))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext extracts the authenticated user ID from the request context.
func UserIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}

// UserNameFromContext extracts the authenticated user's display name.
func UserNameFromContext(ctx context.Context) string {
	if name, ok := ctx.Value(userNameKey).(string); ok {
		return name
	}
	return ""
}
