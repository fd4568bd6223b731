// Package login serves sign-in and the password reset endpoints.
package login

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/peerhub/internal/app/features/errors"
	"github.com/dalemusser/peerhub/internal/app/features/shared"
	"github.com/dalemusser/peerhub/internal/app/services/provision"
	"github.com/dalemusser/peerhub/internal/app/system/apperr"
	"github.com/dalemusser/peerhub/internal/app/system/normalize"
	"github.com/dalemusser/peerhub/internal/app/system/ratelimit"
	"github.com/dalemusser/peerhub/internal/app/system/timeouts"
	"github.com/dalemusser/peerhub/internal/domain/models"
	"go.uber.org/zap"
)

// Authenticator is the part of provision.Service these handlers call.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*models.Account, error)
	RequestPasswordReset(ctx context.Context, email string) (provision.ResetResult, error)
	CompletePasswordReset(ctx context.Context, token, newPassword string) error
}

// Sessions issues the credential for a signed-in account.
type Sessions interface {
	SignIn(w http.ResponseWriter, r *http.Request, a *models.Account) (string, error)
}

type Handler struct {
	Auth     Authenticator
	Sessions Sessions
	Limiter  *ratelimit.LoginLimiter // nil disables throttling
	Log      *zap.Logger
}

func NewHandler(a Authenticator, sessions Sessions, limiter *ratelimit.LoginLimiter, logger *zap.Logger) *Handler {
	return &Handler{
		Auth:     a,
		Sessions: sessions,
		Limiter:  limiter,
		Log:      logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin serves POST /login. The token is returned in the body and
// also set as the session cookie.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		uierrors.Render(w, r, h.Log, err)
		return
	}
	email := normalize.Email(req.Email)

	if h.Limiter != nil {
		if ok, msg := h.Limiter.Check(r, email); !ok {
			h.Log.Warn("login rate limited", zap.String("email", email), zap.String("ip", ratelimit.ClientIP(r)))
			uierrors.RenderKind(w, apperr.KindRateLimited, msg)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	acct, err := h.Auth.Login(ctx, email, req.Password)
	if err != nil {
		uierrors.Render(w, r, h.Log, err)
		return
	}

	token, err := h.Sessions.SignIn(w, r, acct)
	if err != nil {
		uierrors.Render(w, r, h.Log, apperr.Internal(err))
		return
	}
	if h.Limiter != nil {
		h.Limiter.ResetEmail(email)
	}

	h.Log.Info("user signed in", zap.String("user_id", acct.ID.Hex()), zap.String("email", acct.Email))
	uierrors.Success(w, http.StatusOK, "Login successful", map[string]any{
		"user":  acct,
		"token": token,
	})
}

type forgotRequest struct {
	Email string `json:"email"`
}

// HandleForgotPassword serves POST /forgot-password.
func (h *Handler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		uierrors.Render(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	res, err := h.Auth.RequestPasswordReset(ctx, req.Email)
	if err != nil {
		uierrors.Render(w, r, h.Log, err)
		return
	}
	var extra map[string]any
	if res.DevResetToken != "" {
		extra = map[string]any{"dev_mode": true, "reset_token": res.DevResetToken}
	}
	uierrors.Success(w, http.StatusOK, res.Message, extra)
}

type resetRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// HandleResetPassword serves POST /reset-password.
func (h *Handler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		uierrors.Render(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Auth.CompletePasswordReset(ctx, req.Token, req.NewPassword); err != nil {
		uierrors.Render(w, r, h.Log, err)
		return
	}
	uierrors.Success(w, http.StatusOK, "Password has been reset successfully. You can now log in.", nil)
}
