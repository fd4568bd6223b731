package validators_test

import (
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/peerhub/internal/app/system/validators"
	"github.com/dalemusser/peerhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func setup(t *testing.T) *mongo.Database {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	return db
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesCollections(t *testing.T) {
	db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}
	collMap := make(map[string]bool)
	for _, name := range names {
		collMap[name] = true
	}
	for _, expected := range []string{"accounts", "pending_signups", "connection_requests", "audit_events", "alumni"} {
		if !collMap[expected] {
			t.Errorf("expected collection %q to exist", expected)
		}
	}
}

func validAccount() bson.M {
	return bson.M{
		"email":          "ada@example.com",
		"first_name":     "Ada",
		"password_hash":  "hash",
		"email_verified": true,
		"skills_wanted":  bson.A{"Go"},
		"skills_taught":  bson.A{},
		"year":           "2nd",
		"created_at":     time.Now(),
	}
}

func TestAccountsValidator(t *testing.T) {
	db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tests := []struct {
		name    string
		mutate  func(bson.M)
		wantErr bool
	}{
		{"valid", func(bson.M) {}, false},
		{"missing email", func(d bson.M) { delete(d, "email") }, true},
		{"blank first name", func(d bson.M) { d["first_name"] = "   " }, true},
		{"bad year", func(d bson.M) { d["year"] = "5th" }, true},
		{"bio too long", func(d bson.M) { d["bio"] = strings.Repeat("x", 501) }, true},
		{"skills not array", func(d bson.M) { d["skills_taught"] = "Go" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validAccount()
			tt.mutate(doc)
			_, err := db.Collection("accounts").InsertOne(ctx, doc)
			if (err != nil) != tt.wantErr {
				t.Errorf("InsertOne err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPendingSignupsValidator_RequiredFields(t *testing.T) {
	db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := db.Collection("pending_signups").InsertOne(ctx, bson.M{"email": "ada@example.com"})
	if err == nil {
		t.Error("expected validation error for pending signup without passcode")
	}

	_, err = db.Collection("pending_signups").InsertOne(ctx, bson.M{
		"email":         "ada@example.com",
		"first_name":    "Ada",
		"password_hash": "hash",
		"passcode_hash": "hash",
		"expires_at":    time.Now().Add(10 * time.Minute),
	})
	if err != nil {
		t.Errorf("valid pending signup rejected: %v", err)
	}
}

func TestConnectionRequestsValidator_Status(t *testing.T) {
	db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	doc := func(status string) bson.M {
		return bson.M{
			"from_user_id": primitive.NewObjectID(),
			"to_user_id":   primitive.NewObjectID(),
			"status":       status,
			"pair_key":     primitive.NewObjectID().Hex(),
		}
	}

	for _, status := range []string{"interested", "ignored", "accepted", "rejected"} {
		if _, err := db.Collection("connection_requests").InsertOne(ctx, doc(status)); err != nil {
			t.Errorf("status %q rejected: %v", status, err)
		}
	}
	if _, err := db.Collection("connection_requests").InsertOne(ctx, doc("pending")); err == nil {
		t.Error("expected unknown status to be rejected")
	}
}

func TestAlumniValidator(t *testing.T) {
	db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	valid := func() bson.M {
		return bson.M{
			"name":              "Grace",
			"email":             "grace@example.com",
			"graduation_year":   "2021",
			"current_company":   "Acme",
			"current_role":      "Engineer",
			"is_active":         true,
			"expertise":         bson.A{"Go"},
			"interview_process": bson.M{"rounds": 3, "difficulty": "Medium"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(bson.M)
		wantErr bool
	}{
		{"valid", func(bson.M) {}, false},
		{"no difficulty", func(d bson.M) { d["interview_process"] = bson.M{} }, false},
		{"missing role", func(d bson.M) { delete(d, "current_role") }, true},
		{"blank company", func(d bson.M) { d["current_company"] = " " }, true},
		{"bad difficulty", func(d bson.M) { d["interview_process"] = bson.M{"difficulty": "Brutal"} }, true},
		{"negative rounds", func(d bson.M) { d["interview_process"] = bson.M{"rounds": -1} }, true},
		{"active not bool", func(d bson.M) { d["is_active"] = "yes" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := valid()
			tt.mutate(doc)
			_, err := db.Collection("alumni").InsertOne(ctx, doc)
			if (err != nil) != tt.wantErr {
				t.Errorf("InsertOne err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
