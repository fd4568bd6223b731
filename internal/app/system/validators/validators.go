// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/peerhub/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	// helper: ensure collection exists (with truthful logging) and then validator (if provided)
	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			// DocumentDB or other deployments may not support collMod/validators.
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	// Core collections this app uses
	ensure("accounts", accountsSchema())
	ensure("pending_signups", pendingSignupsSchema())
	ensure("connection_requests", connectionRequestsSchema())
	ensure("alumni", alumniSchema())

	// Append-only; no validator, but the collection must exist for the TTL index.
	ensure("audit_events", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

// nonBlank matches a string with at least one non-space character.
var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

func skillListSchema() bson.M {
	return bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}}
}

// profileProperties are shared by accounts and pending signups.
func profileProperties() bson.M {
	years := bson.A{""}
	for _, y := range models.Years {
		years = append(years, y)
	}
	return bson.M{
		"skills_wanted": skillListSchema(),
		"skills_taught": skillListSchema(),
		"skills":        skillListSchema(),
		"age":           bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
		"bio":           bson.M{"bsonType": "string", "maxLength": models.MaxBioLength},
		"year":          bson.M{"enum": years},
	}
}

func withProfile(props bson.M) bson.M {
	for k, v := range profileProperties() {
		props[k] = v
	}
	return props
}

func accountsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"email", "first_name", "password_hash", "email_verified"},
			"properties": withProfile(bson.M{
				"email":          nonBlank,
				"first_name":     nonBlank,
				"last_name":      bson.M{"bsonType": "string"},
				"password_hash":  nonBlank,
				"email_verified": bson.M{"bsonType": "bool"},
				"is_admin":       bson.M{"bsonType": "bool"},
				"created_at":     bson.M{"bsonType": "date"},
				"updated_at":     bson.M{"bsonType": "date"},
			}),
		},
	}
}

func pendingSignupsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"email", "first_name", "password_hash", "passcode_hash", "expires_at"},
			"properties": withProfile(bson.M{
				"email":         nonBlank,
				"first_name":    nonBlank,
				"password_hash": nonBlank,
				"passcode_hash": nonBlank,
				"expires_at":    bson.M{"bsonType": "date"},
			}),
		},
	}
}

func connectionRequestsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"from_user_id", "to_user_id", "status", "pair_key"},
			"properties": bson.M{
				"from_user_id": bson.M{"bsonType": "objectId"},
				"to_user_id":   bson.M{"bsonType": "objectId"},
				"status": bson.M{"enum": bson.A{
					models.StatusInterested,
					models.StatusIgnored,
					models.StatusAccepted,
					models.StatusRejected,
				}},
				"pair_key":   nonBlank,
				"created_at": bson.M{"bsonType": "date"},
				"updated_at": bson.M{"bsonType": "date"},
			},
		},
	}
}

func alumniSchema() bson.M {
	difficulties := bson.A{""}
	for _, d := range models.Difficulties {
		difficulties = append(difficulties, d)
	}
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "email", "graduation_year", "current_company", "current_role", "is_active"},
			"properties": bson.M{
				"name":            nonBlank,
				"email":           nonBlank,
				"graduation_year": nonBlank,
				"current_company": nonBlank,
				"current_role":    nonBlank,
				"bio":             bson.M{"bsonType": "string", "maxLength": models.MaxBioLength},
				"expertise":       skillListSchema(),
				"is_active":       bson.M{"bsonType": "bool"},
				"interview_process": bson.M{
					"bsonType": "object",
					"properties": bson.M{
						"rounds":     bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
						"difficulty": bson.M{"enum": difficulties},
					},
				},
				"created_at": bson.M{"bsonType": "date"},
				"updated_at": bson.M{"bsonType": "date"},
			},
		},
	}
}
