package requests

import (
	"github.com/dalemusser/peerhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted under /request.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Post("/send/{status}/{toUserId}", h.HandleSend)
	r.Post("/review/{status}/{requestId}", h.HandleReview)
	r.Delete("/cancel/{toUserId}", h.HandleCancel)
	return r
}

// UserRoutes is mounted under /user.
func UserRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Get("/requests/received", h.ServeReceived)
	r.Get("/connections", h.ServeConnections)
	return r
}
