package auditlog_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/peerhub/internal/app/features/auditlog"
	"github.com/dalemusser/peerhub/internal/app/store/audit"
	"github.com/dalemusser/peerhub/internal/app/system/auth"
	"github.com/dalemusser/peerhub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeEvents struct {
	events []audit.Event
	total  int64
	err    error
	got    audit.QueryFilter
}

func (f *fakeEvents) Query(_ context.Context, filter audit.QueryFilter) ([]audit.Event, error) {
	f.got = filter
	return f.events, f.err
}

func (f *fakeEvents) CountByFilter(_ context.Context, _ audit.QueryFilter) (int64, error) {
	return f.total, f.err
}

func serve(h *auditlog.Handler, user *auth.SessionUser, target string) *testutil.ResponseRecorder {
	req := testutil.NewRequest("GET", target)
	if user != nil {
		req = auth.WithTestUser(req, user)
	}
	rec := testutil.NewRecorder()
	auditlog.Routes(h).ServeHTTP(rec, req)
	return rec
}

func admin() *auth.SessionUser {
	return &auth.SessionUser{ID: primitive.NewObjectID(), Name: "Root Admin", IsAdmin: true}
}

func TestServeList_RequiresAdmin(t *testing.T) {
	h := auditlog.NewHandler(&fakeEvents{}, zap.NewNop())

	serve(h, nil, "/").AssertStatus(t, http.StatusUnauthorized)
	serve(h, &auth.SessionUser{ID: primitive.NewObjectID()}, "/").AssertStatus(t, http.StatusForbidden)
}

func TestServeList_ReturnsEvents(t *testing.T) {
	userID := primitive.NewObjectID()
	events := &fakeEvents{
		events: []audit.Event{{
			ID:        primitive.NewObjectID(),
			Timestamp: time.Now().UTC(),
			Category:  audit.CategoryAuth,
			EventType: audit.EventLoginFailed,
			UserID:    &userID,
			Email:     "ada@example.com",
			Details:   map[string]string{"reason": "wrong password"},
		}},
		total: 51,
	}
	h := auditlog.NewHandler(events, zap.NewNop())

	rec := serve(h, admin(), "/?category=auth&event_type=login_failed&user_id="+userID.Hex()+"&page=2")
	rec.AssertStatus(t, http.StatusOK)

	body := rec.DecodeJSON(t)
	assert.Equal(t, float64(51), body["total"])
	assert.Equal(t, float64(2), body["page"])
	assert.Equal(t, float64(2), body["total_pages"])
	list, _ := body["events"].([]any)
	require.Len(t, list, 1)
	first := list[0].(map[string]any)
	assert.Equal(t, userID.Hex(), first["user_id"])
	assert.Equal(t, "login_failed", first["event_type"])

	assert.Equal(t, "auth", events.got.Category)
	assert.Equal(t, int64(50), events.got.Offset)
	require.NotNil(t, events.got.UserID)
	assert.Equal(t, userID, *events.got.UserID)
}

func TestServeList_DateRange(t *testing.T) {
	events := &fakeEvents{}
	h := auditlog.NewHandler(events, zap.NewNop())

	serve(h, admin(), "/?start_date=2026-01-01&end_date=2026-01-31").AssertStatus(t, http.StatusOK)
	require.NotNil(t, events.got.StartTime)
	require.NotNil(t, events.got.EndTime)
	assert.Equal(t, 1, events.got.StartTime.Day())
	assert.Equal(t, 31, events.got.EndTime.Day())
	assert.Equal(t, 23, events.got.EndTime.Hour())
}

func TestServeList_BadFilters(t *testing.T) {
	h := auditlog.NewHandler(&fakeEvents{}, zap.NewNop())

	tests := []struct {
		query string
		want  string
	}{
		{"?category=billing", "Unknown category"},
		{"?event_type=teleported", "Unknown event type"},
		{"?user_id=nope", "Invalid user ID format"},
		{"?start_date=01/02/2026", "start_date"},
		{"?end_date=yesterday", "end_date"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := serve(h, admin(), "/"+tt.query)
			rec.AssertStatus(t, http.StatusBadRequest)
			rec.AssertContains(t, tt.want)
		})
	}
}

func TestServeList_StoreError(t *testing.T) {
	h := auditlog.NewHandler(&fakeEvents{err: errors.New("boom")}, zap.NewNop())

	rec := serve(h, admin(), "/")
	rec.AssertStatus(t, http.StatusInternalServerError)
	assert.NotContains(t, rec.Body.String(), "boom")
}
