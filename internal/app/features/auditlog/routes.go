// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/dalemusser/peerhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the audit log under the path where this router is mounted
// (typically "/audit" from bootstrap). Access is restricted to admins.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Use(auth.RequireAdmin)

		pr.Get("/", h.ServeList)
	})

	return r
}
