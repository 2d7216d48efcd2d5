package middleware

import (
	"context"
	"net/http"

	"github.com/paperdesk/paperdesk/internal/api"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// Identity resolves the requesting user from the X-User-ID header set by the
// authenticating gateway. Requests without it are rejected.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-User-ID")
		if userID == "" {
			api.Error(w, http.StatusUnauthorized, "missing user identity")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID returns the requesting user's id from context.
func GetUserID(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDKey).(string)
	return userID
}
