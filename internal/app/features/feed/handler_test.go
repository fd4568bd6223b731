package feed_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/dalemusser/peerhub/internal/app/features/feed"
	"github.com/dalemusser/peerhub/internal/app/services/connreq"
	accountstore "github.com/dalemusser/peerhub/internal/app/store/accounts"
	connectionstore "github.com/dalemusser/peerhub/internal/app/store/connections"
	"github.com/dalemusser/peerhub/internal/domain/models"
	"github.com/dalemusser/peerhub/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func newRouter(t *testing.T) (http.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	accounts := accountstore.New(db)
	requests := connreq.New(connectionstore.New(db), accounts, nil, zap.NewNop())

	r := chi.NewRouter()
	r.Mount("/feed", feed.Routes(feed.NewHandler(accounts, requests, zap.NewNop())))
	return r, testutil.NewFixtures(t, db)
}

func names(t *testing.T, body map[string]any) []string {
	t.Helper()
	users, ok := body["users"].([]any)
	if !ok {
		t.Fatalf("users missing from %v", body)
	}
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.(map[string]any)["first_name"].(string))
	}
	return out
}

func TestServeFeed_ExcludesSelfPartnersAndUnverified(t *testing.T) {
	h, fx := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	viewer := fx.CreateAccount(ctx, "Viewer", "viewer@example.com", nil, nil)
	sent := fx.CreateAccount(ctx, "Sent", "sent@example.com", nil, nil)
	received := fx.CreateAccount(ctx, "Received", "received@example.com", nil, nil)
	fx.CreateAccount(ctx, "Fresh", "fresh@example.com", nil, nil)
	fx.CreateUnverifiedAccount(ctx, "Legacy", "legacy@example.com")
	fx.CreateConnectionRequest(ctx, viewer.ID, sent.ID, models.StatusIgnored)
	fx.CreateConnectionRequest(ctx, received.ID, viewer.ID, models.StatusInterested)

	rec := testutil.NewRecorder()
	h.ServeHTTP(rec, testutil.WithAccount(testutil.NewRequest("GET", "/feed"), viewer))

	rec.AssertStatus(t, http.StatusOK)
	body := rec.DecodeJSON(t)
	got := names(t, body)
	if len(got) != 1 || got[0] != "Fresh" {
		t.Errorf("feed: got %v, want [Fresh]", got)
	}
	if body["message"] != "Feed data retrieved successfully" {
		t.Errorf("message: got %v", body["message"])
	}
	rec.AssertContains(t, `"total_users":1`)
}

func TestServeFeed_Paging(t *testing.T) {
	h, fx := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	viewer := fx.CreateAccount(ctx, "Viewer", "viewer@example.com", nil, nil)
	for _, n := range []string{"A", "B", "C"} {
		fx.CreateAccount(ctx, n, n+"@example.com", nil, nil)
	}

	rec := testutil.NewRecorder()
	h.ServeHTTP(rec, testutil.WithAccount(testutil.NewRequest("GET", "/feed?limit=2"), viewer))
	rec.AssertStatus(t, http.StatusOK)
	body := rec.DecodeJSON(t)
	if got := names(t, body); len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Fatalf("first page: got %v", got)
	}
	if body["has_next"] != true {
		t.Fatal("expected has_next on first page")
	}

	rec = testutil.NewRecorder()
	h.ServeHTTP(rec, testutil.WithAccount(testutil.NewRequest("GET", "/feed?limit=2&after="+body["next"].(string)), viewer))
	body = rec.DecodeJSON(t)
	if got := names(t, body); len(got) != 1 || got[0] != "C" {
		t.Errorf("second page: got %v", got)
	}
	if body["has_next"] != false {
		t.Error("expected last page")
	}
}

func TestServeUser(t *testing.T) {
	h, fx := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	viewer := fx.CreateAccount(ctx, "Viewer", "viewer@example.com", nil, nil)
	peer := fx.CreateAccount(ctx, "Peer", "peer@example.com", []string{"Go"}, nil)
	legacy := fx.CreateUnverifiedAccount(ctx, "Legacy", "legacy@example.com")

	rec := testutil.NewRecorder()
	h.ServeHTTP(rec, testutil.WithAccount(testutil.NewRequest("GET", "/feed/user/"+peer.ID.Hex()), viewer))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "User data retrieved successfully")
	if body := rec.Body.String(); strings.Contains(body, "password") || strings.Contains(body, "peer@example.com") {
		t.Errorf("private fields leaked: %s", body)
	}

	rec = testutil.NewRecorder()
	h.ServeHTTP(rec, testutil.WithAccount(testutil.NewRequest("GET", "/feed/user/"+legacy.ID.Hex()), viewer))
	rec.AssertStatus(t, http.StatusNotFound)

	rec = testutil.NewRecorder()
	h.ServeHTTP(rec, testutil.WithAccount(testutil.NewRequest("GET", "/feed/user/xyz"), viewer))
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "Invalid user ID format")
}

func TestServeFeed_RequiresSignIn(t *testing.T) {
	h, _ := newRouter(t)
	rec := testutil.NewRecorder()
	h.ServeHTTP(rec, testutil.NewRequest("GET", "/feed"))
	rec.AssertStatus(t, http.StatusUnauthorized)
}
