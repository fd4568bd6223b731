// internal/app/features/systemusers/handler.go
package systemusers

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/peerhub/internal/app/features/errors"
	"github.com/dalemusser/peerhub/internal/app/features/shared"
	"github.com/dalemusser/peerhub/internal/app/system/timeouts"
	"github.com/dalemusser/peerhub/internal/domain/models"
	"go.uber.org/zap"
)

// Promoter grants administrator rights to an existing account.
type Promoter interface {
	PromoteAdmin(ctx context.Context, email, secret string) (*models.Account, error)
}

type Handler struct {
	Promoter Promoter
	Log      *zap.Logger
}

// NewHandler constructs the system users handler.
func NewHandler(p Promoter, logger *zap.Logger) *Handler {
	return &Handler{
		Promoter: p,
		Log:      logger,
	}
}

type createAdminRequest struct {
	Email       string `json:"email"`
	AdminSecret string `json:"admin_secret"`
}

// HandleCreateAdmin serves POST /create-admin. The caller proves authority
// with the configured admin secret rather than a session.
func (h *Handler) HandleCreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req createAdminRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		uierrors.Render(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	acct, err := h.Promoter.PromoteAdmin(ctx, req.Email, req.AdminSecret)
	if err != nil {
		uierrors.Render(w, r, h.Log, err)
		return
	}

	h.Log.Info("account promoted to admin", zap.String("user_id", acct.ID.Hex()), zap.String("email", acct.Email))
	uierrors.Success(w, http.StatusOK, acct.FirstName+" "+acct.LastName+" is now an admin", map[string]any{
		"user": acct,
	})
}
