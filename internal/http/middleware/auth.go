package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/stormarchive/timeline-service/internal/utils/jwt"
	"github.com/stormarchive/timeline-service/internal/utils/response"
)

type contextKey string

const AdminIDKey contextKey = "adminID"

// SessionCookieName carries the signed session token for browser clients.
const SessionCookieName = "admin_session"

// AuthMiddleware validates the session token from the admin_session
// cookie or an Authorization bearer header and puts the admin ID in the
// request context.
func AuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := sessionToken(r)
			if token == "" {
				response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(
					errors.New("authentication required")))
				return
			}

			adminID, err := jwt.ExtractAdminIDFromToken(token, jwtSecret)
			if err != nil {
				response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(
					errors.New("invalid session")))
				return
			}

			ctx := context.WithValue(r.Context(), AdminIDKey, adminID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionToken(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	return ""
}

// GetAdminIDFromContext extracts the admin ID from the request context
func GetAdminIDFromContext(ctx context.Context) (string, bool) {
	adminID, ok := ctx.Value(AdminIDKey).(string)
	return adminID, ok
}
