// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/peerhub/internal/app/system/apperr"
)

// Handler serves the router fallbacks.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// NotFound answers unknown routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	RenderKind(w, apperr.KindNotFound, "Route not found")
}

// MethodNotAllowed answers known routes hit with the wrong method.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusMethodNotAllowed, errorBody{
		Success: false,
		Kind:    string(apperr.KindValidation),
		Message: "Method not allowed",
	})
}
