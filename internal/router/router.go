// Package router sets up all HTTP routes and middleware chains for the
// Pawtal API. Routes split into a public read-only group and an
// authenticated admin group.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/janvanerven/pawtal/internal/handlers"
	"github.com/janvanerven/pawtal/internal/middleware"
	"github.com/janvanerven/pawtal/internal/store"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(sessions *store.SessionStore, auth *handlers.Auth, content *handlers.Content, audit *handlers.Audit) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.LoadSession(sessions))

	// Health check — no auth.
	r.Get("/health", healthHandler)

	// Public reads — published content only, cache-backed.
	r.Get("/{kind:pages|articles}/{slug}", content.Public)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", auth.Login)
		r.Post("/auth/logout", auth.Logout)

		// Admin API — requires a valid session.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Get("/audit", audit.Recent)

			r.Route("/{kind:pages|articles}", func(r chi.Router) {
				r.Get("/", content.List)
				r.Post("/", content.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", content.Get)
					r.Put("/", content.Update)
					r.Post("/publish", content.Publish)
					r.Post("/trash", content.Trash)
					r.Post("/restore", content.Restore)
					r.Post("/schedule", content.Schedule)
					r.Get("/revisions", content.Revisions)
					r.Post("/revisions/{revisionID}/restore", content.RestoreRevision)
				})
			})
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
