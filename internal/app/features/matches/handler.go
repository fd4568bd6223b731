// Package matches serves the ranked skill-exchange suggestions.
package matches

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/peerhub/internal/app/features/errors"
	"github.com/dalemusser/peerhub/internal/app/features/shared"
	"github.com/dalemusser/peerhub/internal/app/services/matching"
	"github.com/dalemusser/peerhub/internal/app/system/auth"
	"github.com/dalemusser/peerhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Matcher computes matches for a viewer.
type Matcher interface {
	Matches(ctx context.Context, viewerID primitive.ObjectID) ([]matching.Match, error)
	Match(ctx context.Context, viewerID, peerID primitive.ObjectID) (matching.Match, error)
}

type Handler struct {
	Matcher Matcher
	Log     *zap.Logger
}

func NewHandler(m Matcher, logger *zap.Logger) *Handler {
	return &Handler{Matcher: m, Log: logger}
}

// ServeList handles GET /matches.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Matcher.Matches(ctx, user.ID)
	if err != nil {
		uierrors.Render(w, r, h.Log, err)
		return
	}
	uierrors.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(list),
		"matches": list,
	})
}

// ServeOne handles GET /matches/{userId}.
func (h *Handler) ServeOne(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	peerID, err := shared.PathID(r, "userId", "user")
	if err != nil {
		uierrors.Render(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	m, err := h.Matcher.Match(ctx, user.ID, peerID)
	if err != nil {
		uierrors.Render(w, r, h.Log, err)
		return
	}
	uierrors.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"match":   m,
	})
}
