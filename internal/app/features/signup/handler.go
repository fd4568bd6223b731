// Package signup serves the two-phase registration endpoints.
package signup

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/peerhub/internal/app/features/errors"
	"github.com/dalemusser/peerhub/internal/app/features/shared"
	"github.com/dalemusser/peerhub/internal/app/services/provision"
	"github.com/dalemusser/peerhub/internal/app/system/timeouts"
	"github.com/dalemusser/peerhub/internal/domain/models"
	"go.uber.org/zap"
)

// Provisioner is the part of provision.Service these handlers call.
type Provisioner interface {
	BeginSignup(ctx context.Context, in provision.SignupInput) (provision.SignupResult, error)
	VerifyPasscode(ctx context.Context, email, code string) (*models.Account, error)
	ResendPasscode(ctx context.Context, email string) (provision.ResendResult, error)
}

type Handler struct {
	Provision Provisioner
	Log       *zap.Logger
}

func NewHandler(p Provisioner, logger *zap.Logger) *Handler {
	return &Handler{Provision: p, Log: logger}
}

type signupRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	models.Profile
}

// HandleSignup serves POST /signup. A new pending signup answers 201, a
// refreshed one 200.
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		uierrors.Render(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	res, err := h.Provision.BeginSignup(ctx, provision.SignupInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Profile:   req.Profile,
	})
	if err != nil {
		uierrors.Render(w, r, h.Log, err)
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	extra := map[string]any{"requires_verification": true}
	if res.DevPasscode != "" {
		extra["dev_mode"] = true
		extra["otp"] = res.DevPasscode
	}
	uierrors.Success(w, status, res.Message, extra)
}

type verifyRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// HandleVerify serves POST /verify-otp.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		uierrors.Render(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if _, err := h.Provision.VerifyPasscode(ctx, req.Email, req.OTP); err != nil {
		uierrors.Render(w, r, h.Log, err)
		return
	}
	uierrors.Success(w, http.StatusOK, "Email verified successfully! You can now log in.", nil)
}

type resendRequest struct {
	Email string `json:"email"`
}

// HandleResend serves POST /resend-otp.
func (h *Handler) HandleResend(w http.ResponseWriter, r *http.Request) {
	var req resendRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		uierrors.Render(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	res, err := h.Provision.ResendPasscode(ctx, req.Email)
	if err != nil {
		uierrors.Render(w, r, h.Log, err)
		return
	}
	var extra map[string]any
	if res.DevPasscode != "" {
		extra = map[string]any{"dev_mode": true, "otp": res.DevPasscode}
	}
	uierrors.Success(w, http.StatusOK, res.Message, extra)
}
