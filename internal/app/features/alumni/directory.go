// internal/app/features/alumni/directory.go
package alumni

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	uierrors "github.com/dalemusser/peerhub/internal/app/features/errors"
	"github.com/dalemusser/peerhub/internal/app/features/shared"
	alumnistore "github.com/dalemusser/peerhub/internal/app/store/alumni"
	"github.com/dalemusser/peerhub/internal/app/system/apperr"
	"github.com/dalemusser/peerhub/internal/app/system/paging"
	"github.com/dalemusser/peerhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
)

const msgNotFound = "Alumni not found"

// ServeList handles GET /alumni: active entries, newest first, filtered by
// company, college, year and a free-text search over name, role and
// expertise.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	size := paging.ParseLimit(r)
	page := 1
	if p, err := strconv.Atoi(query.Get(r, "page")); err == nil && p > 0 {
		page = p
	}
	filter := alumnistore.Filter{
		Company: query.Search(r, "company"),
		College: query.Search(r, "college"),
		Year:    query.Get(r, "year"),
		Search:  query.Search(r, "search"),
		Limit:   int64(size),
		Offset:  int64((page - 1) * size),
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rows, err := h.Directory.List(ctx, filter)
	if err != nil {
		uierrors.Render(w, r, h.Log, apperr.Internal(fmt.Errorf("list alumni: %w", err)))
		return
	}
	total, err := h.Directory.Count(ctx, filter)
	if err != nil {
		uierrors.Render(w, r, h.Log, apperr.Internal(fmt.Errorf("count alumni: %w", err)))
		return
	}

	totalPages := int((total + int64(size) - 1) / int64(size))
	uierrors.JSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"count":       len(rows),
		"total":       total,
		"page":        page,
		"total_pages": totalPages,
		"alumni":      rows,
	})
}

// ServeGet handles GET /alumni/{id}. Removed entries are not found.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(r, "id", "alumni")
	if err != nil {
		uierrors.Render(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, err := h.Directory.GetActive(ctx, id)
	if err != nil {
		uierrors.Render(w, r, h.Log, storeErr(err))
		return
	}
	uierrors.JSON(w, http.StatusOK, map[string]any{"success": true, "alumni": a})
}

// ServeStats handles GET /alumni/stats/overview.
func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "alumni stats")
	defer cancel()

	stats, err := h.Directory.Stats(ctx)
	if err != nil {
		uierrors.Render(w, r, h.Log, apperr.Internal(fmt.Errorf("alumni stats: %w", err)))
		return
	}
	uierrors.JSON(w, http.StatusOK, map[string]any{"success": true, "stats": stats})
}

func storeErr(err error) error {
	if errors.Is(err, alumnistore.ErrNotFound) {
		return apperr.NotFound(msgNotFound)
	}
	return apperr.Internal(err)
}
