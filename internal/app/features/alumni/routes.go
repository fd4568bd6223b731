// internal/app/features/alumni/routes.go
package alumni

import (
	"github.com/dalemusser/peerhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted under /alumni. Any signed-in user may browse; only
// admins curate.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeGet)

	r.Group(func(ar chi.Router) {
		ar.Use(auth.RequireAdmin)

		ar.Get("/stats/overview", h.ServeStats)
		ar.Post("/", h.HandleCreate)
		ar.Put("/{id}", h.HandleUpdate)
		ar.Delete("/{id}", h.HandleDelete)
	})

	return r
}
