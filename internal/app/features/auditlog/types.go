// internal/app/features/auditlog/types.go
package auditlog

import (
	"time"

	"github.com/dalemusser/peerhub/internal/app/store/audit"
	"github.com/samber/lo"
)

// listItem is one audit event as returned to admins.
type listItem struct {
	ID            string            `json:"id"`
	Timestamp     time.Time         `json:"timestamp"`
	Category      string            `json:"category"`
	EventType     string            `json:"event_type"`
	UserID        string            `json:"user_id,omitempty"`
	ActorID       string            `json:"actor_id,omitempty"`
	Email         string            `json:"email,omitempty"`
	Success       bool              `json:"success"`
	FailureReason string            `json:"failure_reason,omitempty"`
	Details       map[string]string `json:"details,omitempty"`
}

func toItem(e audit.Event) listItem {
	item := listItem{
		ID:            e.ID.Hex(),
		Timestamp:     e.Timestamp,
		Category:      e.Category,
		EventType:     e.EventType,
		Email:         e.Email,
		Success:       e.Success,
		FailureReason: e.FailureReason,
		Details:       e.Details,
	}
	if e.UserID != nil {
		item.UserID = e.UserID.Hex()
	}
	if e.ActorID != nil {
		item.ActorID = e.ActorID.Hex()
	}
	return item
}

// eventTypes lists the event types recorded under each category.
var eventTypes = map[string][]string{
	audit.CategoryAuth: {
		audit.EventSignupStarted,
		audit.EventSignupVerified,
		audit.EventPasscodeResent,
		audit.EventLoginSuccess,
		audit.EventLoginFailed,
		audit.EventPasswordResetRequested,
		audit.EventPasswordResetCompleted,
		audit.EventPasswordChanged,
	},
	audit.CategoryAdmin: {
		audit.EventAdminPromoted,
	},
	audit.CategoryConnection: {
		audit.EventRequestSent,
		audit.EventRequestReviewed,
		audit.EventRequestCancelled,
	},
}

func knownCategory(c string) bool {
	_, ok := eventTypes[c]
	return ok
}

func knownEventType(t string) bool {
	return lo.ContainsBy(lo.Values(eventTypes), func(types []string) bool {
		return lo.Contains(types, t)
	})
}
