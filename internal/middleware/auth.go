// Package middleware provides HTTP middleware for the admin API:
// session-token authentication resolving the acting user for every
// mutating call.
package middleware

import (
	"context"
	"net/http"

	"github.com/janvanerven/pawtal/internal/models"
	"github.com/janvanerven/pawtal/internal/store"
)

// SessionCookie is the name of the session cookie sent to the browser.
const SessionCookie = "pawtal_session"

type contextKey string

const userKey contextKey = "user"

// UserFrom returns the authenticated user stored in the request context,
// or nil when the request is anonymous.
func UserFrom(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey).(*models.User)
	return u
}

// LoadSession resolves the session cookie to a user and stores it in the
// request context. Requests without a valid session pass through anonymous.
func LoadSession(sessions *store.SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := sessions.Validate(r.Context(), cookie.Value)
			if err != nil || user == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects requests that did not resolve to a user.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFrom(r.Context()) == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"authentication required"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
