package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/janvanerven/pawtal/internal/middleware"
	"github.com/janvanerven/pawtal/internal/store"
)

// Auth groups the authentication endpoints.
type Auth struct {
	users    *store.UserStore
	sessions *store.SessionStore
	secure   bool
}

// NewAuth creates a new Auth handler group. secure marks session cookies
// HTTPS-only.
func NewAuth(users *store.UserStore, sessions *store.SessionStore, secure bool) *Auth {
	return &Auth{users: users, sessions: sessions, secure: secure}
}

// Login validates credentials and opens a session.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	user, err := a.users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if user == nil || !a.users.CheckPassword(user, req.Password) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid email or password"})
		return
	}

	token, err := a.sessions.Create(r.Context(), user.ID, store.DefaultSessionTTL)
	if err != nil {
		slog.Error("session create failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(store.DefaultSessionTTL.Seconds()),
	})
	writeJSON(w, http.StatusOK, user)
}

// Logout ends the current session and clears the cookie.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookie); err == nil {
		if err := a.sessions.Delete(r.Context(), cookie.Value); err != nil {
			slog.Warn("session delete failed", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	w.WriteHeader(http.StatusNoContent)
}
