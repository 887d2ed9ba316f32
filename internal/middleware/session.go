package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/waypoint-labs/waypoint/backend/internal/auth"
)

// SessionCookieName is the cookie that carries the signed session token.
const SessionCookieName = "waypoint_session"

type contextKey string

const userIDKey contextKey = "userID"

// RequireSession returns middleware that validates the session cookie and
// places the verified user ID in the request context. Requests without a
// valid session receive 401 and never reach the handler, so downstream code
// can trust UserID unconditionally: ownership is always derived from the
// session, never from client-supplied parameters.
func RequireSession(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				writeUnauthorized(w, "authentication required")
				return
			}

			claims, err := auth.ValidateToken(cookie.Value, secret)
			if err != nil {
				writeUnauthorized(w, "invalid or expired session")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID extracts the verified session identity set by RequireSession.
// The boolean is false on routes not behind the session middleware.
func UserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": "unauthorized", "message": message},
	})
}
