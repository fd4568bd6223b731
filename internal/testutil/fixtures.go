package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/peerhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// FixturePassword is the plain password of every fixture account.
const FixturePassword = "Secret#123"

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) hash(plain string) string {
	f.t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("hash: %v", err)
	}
	return string(h)
}

// CreateAccount inserts a verified account with the given skills.
func (f *Fixtures) CreateAccount(ctx context.Context, first, email string, wants, teaches []string) models.Account {
	f.t.Helper()
	return f.insertAccount(ctx, first, email, wants, teaches, true)
}

// CreateUnverifiedAccount inserts a single-phase account that never verified.
func (f *Fixtures) CreateUnverifiedAccount(ctx context.Context, first, email string) models.Account {
	f.t.Helper()
	return f.insertAccount(ctx, first, email, nil, nil, false)
}

func (f *Fixtures) insertAccount(ctx context.Context, first, email string, wants, teaches []string, verified bool) models.Account {
	f.t.Helper()
	if wants == nil {
		wants = []string{}
	}
	if teaches == nil {
		teaches = []string{}
	}
	now := time.Now().UTC()
	a := models.Account{
		ID:            primitive.NewObjectID(),
		FirstName:     first,
		LastName:      "Tester",
		Email:         email,
		PasswordHash:  f.hash(FixturePassword),
		EmailVerified: verified,
		Profile: models.Profile{
			SkillsWanted: wants,
			SkillsTaught: teaches,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("accounts").InsertOne(ctx, a); err != nil {
		f.t.Fatalf("failed to create test account: %v", err)
	}
	return a
}

// CreatePendingSignup inserts a pending signup whose passcode is code.
func (f *Fixtures) CreatePendingSignup(ctx context.Context, email, code string, expiresAt time.Time) models.PendingSignup {
	f.t.Helper()
	now := time.Now().UTC()
	p := models.PendingSignup{
		ID:           primitive.NewObjectID(),
		Email:        email,
		FirstName:    "Pending",
		LastName:     "Tester",
		PasswordHash: f.hash(FixturePassword),
		Profile:      models.Profile{SkillsWanted: []string{}, SkillsTaught: []string{}},
		PasscodeHash: f.hash(code),
		ExpiresAt:    expiresAt.UTC(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("pending_signups").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test pending signup: %v", err)
	}
	return p
}

// CreateConnectionRequest inserts a request from -> to with status.
func (f *Fixtures) CreateConnectionRequest(ctx context.Context, from, to primitive.ObjectID, status string) models.ConnectionRequest {
	f.t.Helper()
	now := time.Now().UTC()
	c := models.ConnectionRequest{
		ID:         primitive.NewObjectID(),
		FromUserID: from,
		ToUserID:   to,
		Status:     status,
		PairKey:    models.PairKey(from, to),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("connection_requests").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("failed to create test connection request: %v", err)
	}
	return c
}
