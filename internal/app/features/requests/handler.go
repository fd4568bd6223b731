// Package requests serves the connection request endpoints and the
// per-user views built on them.
package requests

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/peerhub/internal/app/features/errors"
	"github.com/dalemusser/peerhub/internal/app/features/shared"
	"github.com/dalemusser/peerhub/internal/app/services/connreq"
	"github.com/dalemusser/peerhub/internal/app/system/auth"
	"github.com/dalemusser/peerhub/internal/app/system/timeouts"
	"github.com/dalemusser/peerhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Requests is the connection request workflow.
type Requests interface {
	Send(ctx context.Context, from, to primitive.ObjectID, status string) (*models.ConnectionRequest, error)
	Review(ctx context.Context, receiver, requestID primitive.ObjectID, decision string) (*models.ConnectionRequest, error)
	Cancel(ctx context.Context, requester, counterpart primitive.ObjectID) error
	Received(ctx context.Context, userID primitive.ObjectID) ([]connreq.Received, error)
	Connections(ctx context.Context, userID primitive.ObjectID) ([]models.PublicProfile, error)
}

type Handler struct {
	Requests Requests
	Log      *zap.Logger
}

func NewHandler(reqs Requests, logger *zap.Logger) *Handler {
	return &Handler{Requests: reqs, Log: logger}
}

var sendMessages = map[string]string{
	models.StatusInterested: "Interest shown successfully",
	models.StatusIgnored:    "Profile ignored successfully",
}

// HandleSend handles POST /request/send/{status}/{toUserId}.
func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	to, err := shared.PathID(r, "toUserId", "user")
	if err != nil {
		uierrors.Render(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	req, err := h.Requests.Send(ctx, user.ID, to, chi.URLParam(r, "status"))
	if err != nil {
		uierrors.Render(w, r, h.Log, err)
		return
	}
	uierrors.Success(w, http.StatusOK, sendMessages[req.Status], map[string]any{"data": req})
}

// HandleReview handles POST /request/review/{status}/{requestId}.
func (h *Handler) HandleReview(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	id, err := shared.PathID(r, "requestId", "request")
	if err != nil {
		uierrors.Render(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	req, err := h.Requests.Review(ctx, user.ID, id, chi.URLParam(r, "status"))
	if err != nil {
		uierrors.Render(w, r, h.Log, err)
		return
	}
	uierrors.Success(w, http.StatusOK, "Connection request "+req.Status+" successfully", map[string]any{"data": req})
}

// HandleCancel handles DELETE /request/cancel/{toUserId}.
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	to, err := shared.PathID(r, "toUserId", "user")
	if err != nil {
		uierrors.Render(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Requests.Cancel(ctx, user.ID, to); err != nil {
		uierrors.Render(w, r, h.Log, err)
		return
	}
	uierrors.Success(w, http.StatusOK, "Connection request cancelled successfully", nil)
}

// ServeReceived handles GET /user/requests/received.
func (h *Handler) ServeReceived(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Requests.Received(ctx, user.ID)
	if err != nil {
		uierrors.Render(w, r, h.Log, err)
		return
	}
	uierrors.Success(w, http.StatusOK, "Data fetched successfully", map[string]any{"data": list})
}

// ServeConnections handles GET /user/connections.
func (h *Handler) ServeConnections(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Requests.Connections(ctx, user.ID)
	if err != nil {
		uierrors.Render(w, r, h.Log, err)
		return
	}
	uierrors.Success(w, http.StatusOK, "Connections fetched successfully", map[string]any{"data": list})
}
