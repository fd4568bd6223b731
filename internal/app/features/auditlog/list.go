// internal/app/features/auditlog/list.go
package auditlog

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	uierrors "github.com/dalemusser/peerhub/internal/app/features/errors"
	"github.com/dalemusser/peerhub/internal/app/store/audit"
	"github.com/dalemusser/peerhub/internal/app/system/apperr"
	"github.com/dalemusser/peerhub/internal/app/system/timeouts"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const pageSize = 50

const dateLayout = "2006-01-02"

// ServeList handles GET /audit: the newest audit events, filtered by
// category, event_type, user_id and an inclusive start_date/end_date range.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	filter, page, err := parseFilter(r)
	if err != nil {
		uierrors.Render(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		uierrors.Render(w, r, h.Log, apperr.Internal(fmt.Errorf("query audit events: %w", err)))
		return
	}
	total, err := h.Events.CountByFilter(ctx, filter)
	if err != nil {
		uierrors.Render(w, r, h.Log, apperr.Internal(fmt.Errorf("count audit events: %w", err)))
		return
	}

	totalPages := int((total + pageSize - 1) / pageSize)
	if totalPages < 1 {
		totalPages = 1
	}

	uierrors.JSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"events":      lo.Map(events, func(e audit.Event, _ int) listItem { return toItem(e) }),
		"total":       total,
		"page":        page,
		"total_pages": totalPages,
	})
}

func parseFilter(r *http.Request) (audit.QueryFilter, int, error) {
	q := r.URL.Query()

	page := 1
	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		page = p
	}

	filter := audit.QueryFilter{
		Category:  strings.TrimSpace(q.Get("category")),
		EventType: strings.TrimSpace(q.Get("event_type")),
		Limit:     pageSize,
		Offset:    int64((page - 1) * pageSize),
	}
	if filter.Category != "" && !knownCategory(filter.Category) {
		return filter, page, apperr.Validation("Unknown category: " + filter.Category)
	}
	if filter.EventType != "" && !knownEventType(filter.EventType) {
		return filter, page, apperr.Validation("Unknown event type: " + filter.EventType)
	}

	if raw := strings.TrimSpace(q.Get("user_id")); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return filter, page, apperr.Validation("Invalid user ID format")
		}
		filter.UserID = &id
	}

	if raw := strings.TrimSpace(q.Get("start_date")); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return filter, page, apperr.Validation("start_date must be YYYY-MM-DD")
		}
		filter.StartTime = &t
	}
	if raw := strings.TrimSpace(q.Get("end_date")); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return filter, page, apperr.Validation("end_date must be YYYY-MM-DD")
		}
		// End of day
		endOfDay := t.Add(24*time.Hour - time.Nanosecond)
		filter.EndTime = &endOfDay
	}

	return filter, page, nil
}
