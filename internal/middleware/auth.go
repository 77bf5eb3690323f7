package middleware

import (
	"context"
	"net/http"

	"github.com/nattapon/inkwell/internal/auth"
)

// SessionResolver answers "who is the caller, if anyone" for an opaque
// session handle. A blank userID with a nil error means no session.
type SessionResolver interface {
	Get(ctx context.Context, sessionID string) (string, error)
}

// RequireAuth validates the session cookie and injects the user_id into
// the request context. Requests without a valid session get a 401.
func RequireAuth(sessions SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := resolve(sessions, r)
			if userID == "" {
				http.Error(w, `{"error":"not authenticated"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), "user_id", userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireGuest rejects requests that already carry a valid session.
// Login, registration and the reset flow are guest-only.
func RequireGuest(sessions SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if resolve(sessions, r) != "" {
				http.Error(w, `{"error":"already authenticated"}`, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// resolve returns the session's userID or "" for missing, malformed or
// expired handles. Lookup errors count as no session rather than a 500:
// the guards must never crash a request over a bad cookie.
func resolve(sessions SessionResolver, r *http.Request) string {
	cookie, err := r.Cookie(auth.SessionCookie)
	if err != nil {
		return ""
	}
	userID, err := sessions.Get(r.Context(), cookie.Value)
	if err != nil {
		return ""
	}
	return userID
}
