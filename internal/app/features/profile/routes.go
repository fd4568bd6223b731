// internal/app/features/profile/routes.go
package profile

import (
	"github.com/dalemusser/peerhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Get("/view", h.ServeView)
	r.Patch("/edit", h.HandleEdit)
	r.Patch("/password", h.HandleChangePassword)
	return r
}
