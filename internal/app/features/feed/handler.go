// Package feed lists peers the viewer has not interacted with yet.
package feed

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/peerhub/internal/app/features/errors"
	"github.com/dalemusser/peerhub/internal/app/features/shared"
	accountstore "github.com/dalemusser/peerhub/internal/app/store/accounts"
	"github.com/dalemusser/peerhub/internal/app/system/apperr"
	"github.com/dalemusser/peerhub/internal/app/system/auth"
	"github.com/dalemusser/peerhub/internal/app/system/paging"
	"github.com/dalemusser/peerhub/internal/app/system/timeouts"
	"github.com/dalemusser/peerhub/internal/domain/models"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Accounts lists and reads verified accounts.
type Accounts interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Account, error)
	ListVerified(ctx context.Context, f accountstore.CandidateFilter) ([]models.Account, error)
}

// Partners lists everyone the viewer already has a request with.
type Partners interface {
	PartnerIDs(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error)
}

type Handler struct {
	Accounts Accounts
	Partners Partners
	Log      *zap.Logger
}

func NewHandler(accounts Accounts, partners Partners, logger *zap.Logger) *Handler {
	return &Handler{Accounts: accounts, Partners: partners, Log: logger}
}

// ServeFeed handles GET /feed?limit=&after=. Pages are keyset-ordered by id;
// "next" is the cursor for the following page.
func (h *Handler) ServeFeed(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	size := paging.ParseLimit(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	partners, err := h.Partners.PartnerIDs(ctx, user.ID)
	if err != nil {
		uierrors.Render(w, r, h.Log, apperr.Internal(err))
		return
	}

	rows, err := h.Accounts.ListVerified(ctx, accountstore.CandidateFilter{
		Exclude: append(partners, user.ID),
		After:   paging.ParseAfter(r),
		Limit:   paging.LimitPlusOne(size),
	})
	if err != nil {
		uierrors.Render(w, r, h.Log, apperr.Internal(err))
		return
	}
	page := paging.TrimPage(&rows, size, func(a models.Account) primitive.ObjectID { return a.ID })

	users := lo.Map(rows, func(a models.Account, _ int) models.PublicProfile { return a.Public() })
	uierrors.Success(w, http.StatusOK, "Feed data retrieved successfully", map[string]any{
		"users":       users,
		"total_users": len(users),
		"has_next":    page.HasNext,
		"next":        page.Next,
	})
}

// ServeUser handles GET /feed/user/{userId}.
func (h *Handler) ServeUser(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(r, "userId", "user")
	if err != nil {
		uierrors.Render(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	acct, err := h.Accounts.GetByID(ctx, id)
	switch {
	case errors.Is(err, accountstore.ErrNotFound):
		uierrors.RenderKind(w, apperr.KindNotFound, "User not found")
		return
	case err != nil:
		uierrors.Render(w, r, h.Log, apperr.Internal(err))
		return
	case !acct.EmailVerified:
		uierrors.RenderKind(w, apperr.KindNotFound, "User not found")
		return
	}
	uierrors.Success(w, http.StatusOK, "User data retrieved successfully", map[string]any{
		"user": acct.Public(),
	})
}
