package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/ailubes/veterans-orden-sub001/internal/security"
)

type contextKey string

const adminIDKey contextKey = "admin_id"

// AdminAuth validates the bearer token and stores the admin ID in the request
// context.
func AdminAuth(tokens security.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			claims, err := tokens.ValidateToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			if claims.Role != "admin" {
				writeError(w, http.StatusForbidden, "admin role required")
				return
			}
			ctx := context.WithValue(r.Context(), adminIDKey, claims.AdminID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminIDFromContext returns the authenticated admin's ID.
func AdminIDFromContext(ctx context.Context) (int32, bool) {
	id, ok := ctx.Value(adminIDKey).(int32)
	return id, ok
}
