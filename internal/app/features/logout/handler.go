// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	uierrors "github.com/dalemusser/peerhub/internal/app/features/errors"
	"go.uber.org/zap"
)

// Sessions clears the session credential.
type Sessions interface {
	SignOut(w http.ResponseWriter, r *http.Request) error
}

type Handler struct {
	Log      *zap.Logger
	Sessions Sessions
}

func NewHandler(sessions Sessions, logger *zap.Logger) *Handler {
	return &Handler{
		Log:      logger,
		Sessions: sessions,
	}
}

// HandleLogout serves POST /logout. Bearer tokens are stateless, so only
// the cookie is cleared; clients drop their stored token themselves.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.SignOut(w, r); err != nil {
		// Still answer success: the expired cookie was written regardless.
		h.Log.Warn("logout: clear session", zap.Error(err))
	}
	uierrors.Success(w, http.StatusOK, "Logout successful", nil)
}
