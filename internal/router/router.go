// Package router sets up all HTTP routes and middleware chains for the
// TreeCrest category service. The whole API sits behind the admin token;
// only the health check is open.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"treecrest/internal/handlers"
	"treecrest/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(categories *handlers.Categories, tokenHash string) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	// Health check — no auth.
	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RequireToken(tokenHash))

		r.Route("/categories", func(r chi.Router) {
			r.Post("/", categories.Create)
			r.Get("/tree", categories.Tree)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", categories.Get)
				r.Patch("/", categories.Rename)
				r.Delete("/", categories.Delete)
				r.Post("/move", categories.Move)
				r.Post("/archive", categories.Archive)
				r.Post("/approve", categories.Approve)
				r.Post("/reject", categories.Reject)
				r.Get("/scope", categories.Scope)
				r.Get("/items", categories.Items)
				r.Get("/items/count", categories.ItemCount)
			})
		})

		// Out-of-band consistency repair.
		r.Post("/maintenance/rebuild", categories.Rebuild)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
