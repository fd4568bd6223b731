package audit_test

import (
	"testing"
	"time"

	"github.com/dalemusser/peerhub/internal/app/store/audit"
	"github.com/dalemusser/peerhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Log(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	event := audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		UserID:    &userID,
		Email:     "ada@example.com",
		Success:   true,
	}

	if err := store.Log(ctx, event); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events, err := store.GetByUser(ctx, userID, 10)
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].ID.IsZero() {
		t.Error("expected ID to be auto-generated")
	}
	if events[0].Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}
}

func TestStore_Log_WithDetails(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	actor := primitive.NewObjectID()
	target := primitive.NewObjectID()
	event := audit.Event{
		Category:  audit.CategoryConnection,
		EventType: audit.EventRequestSent,
		ActorID:   &actor,
		UserID:    &target,
		Success:   true,
		Details:   map[string]string{"status": "interested"},
	}
	if err := store.Log(ctx, event); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events, err := store.Query(ctx, audit.QueryFilter{Category: audit.CategoryConnection})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Details["status"] != "interested" {
		t.Errorf("details not stored: %v", events[0].Details)
	}
	if events[0].ActorID == nil || *events[0].ActorID != actor {
		t.Errorf("actor not stored")
	}
}

func TestStore_GetByUser_Limit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	for i := 0; i < 5; i++ {
		if err := store.Log(ctx, audit.Event{
			Category:  audit.CategoryAuth,
			EventType: audit.EventLoginSuccess,
			UserID:    &userID,
			Success:   true,
		}); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	events, err := store.GetByUser(ctx, userID, 3)
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if len(events) != 3 {
		t.Errorf("expected 3 events, got %d", len(events))
	}
}

func TestStore_GetRecent_NewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Now().UTC().Add(-time.Hour)
	types := []string{audit.EventSignupStarted, audit.EventSignupVerified, audit.EventLoginSuccess}
	for i, typ := range types {
		if err := store.Log(ctx, audit.Event{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Category:  audit.CategoryAuth,
			EventType: typ,
			Success:   true,
		}); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	events, err := store.GetRecent(ctx, 10)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].EventType != audit.EventLoginSuccess {
		t.Errorf("expected newest first, got %q", events[0].EventType)
	}
}

func TestStore_Query_ByTimeRangeAndOffset(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC()
	for _, ago := range []time.Duration{3 * time.Hour, 2 * time.Hour, time.Hour, 0} {
		if err := store.Log(ctx, audit.Event{
			Timestamp: now.Add(-ago),
			Category:  audit.CategoryAuth,
			EventType: audit.EventPasscodeResent,
			Success:   true,
		}); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	start := now.Add(-150 * time.Minute)
	events, err := store.Query(ctx, audit.QueryFilter{StartTime: &start})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 3 {
		t.Errorf("expected 3 events in range, got %d", len(events))
	}

	page, err := store.Query(ctx, audit.QueryFilter{Offset: 2, Limit: 10})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(page) != 2 {
		t.Errorf("expected 2 events after offset, got %d", len(page))
	}

	n, err := store.CountByFilter(ctx, audit.QueryFilter{EventType: audit.EventPasscodeResent})
	if err != nil {
		t.Fatalf("CountByFilter failed: %v", err)
	}
	if n != 4 {
		t.Errorf("expected count 4, got %d", n)
	}
}

func TestStore_GetFailedLogins(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logs := []audit.Event{
		{Category: audit.CategoryAuth, EventType: audit.EventLoginFailed, Email: "a@example.com", FailureReason: "invalid_credentials"},
		{Category: audit.CategoryAuth, EventType: audit.EventLoginFailed, Email: "b@example.com", FailureReason: "not_found"},
		{Category: audit.CategoryAuth, EventType: audit.EventLoginSuccess, Email: "c@example.com", Success: true},
	}
	for _, e := range logs {
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	events, err := store.GetFailedLogins(ctx, time.Now().Add(-time.Hour), 10)
	if err != nil {
		t.Fatalf("GetFailedLogins failed: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("expected 2 failed logins, got %d", len(events))
	}
	for _, e := range events {
		if e.Success {
			t.Errorf("unexpected successful event %+v", e)
		}
	}
}
