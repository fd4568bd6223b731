// internal/app/store/pendingsignups/store.go
package pendingstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/peerhub/internal/app/system/normalize"
	"github.com/dalemusser/peerhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the pending signups collection name. Its expires_at TTL
// index evicts stale records; see the indexes package.
const Collection = "pending_signups"

// ErrNotFound is returned when no pending signup exists for an email.
var ErrNotFound = errors.New("pending signup not found")

// Store manages pending signup records.
type Store struct {
	c *mongo.Collection
}

// New creates a new Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// UpsertResult describes the outcome of Upsert.
type UpsertResult struct {
	// Record is the stored pending signup after the write.
	Record models.PendingSignup
	// Created is true when no record existed for the email.
	Created bool
}

// Upsert writes p for its email in one atomic step. When a record already
// exists only the passcode hash and expiry are refreshed; the identity and
// profile captured on the first attempt are kept.
func (s *Store) Upsert(ctx context.Context, p models.PendingSignup) (UpsertResult, error) {
	p.Email = normalize.Email(p.Email)
	now := time.Now().UTC()

	onInsert, err := insertFields(p, now)
	if err != nil {
		return UpsertResult{}, err
	}
	update := bson.M{
		"$set": bson.M{
			"passcode_hash": p.PasscodeHash,
			"expires_at":    p.ExpiresAt.UTC(),
			"updated_at":    now,
		},
		"$setOnInsert": onInsert,
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.Before)

	var before models.PendingSignup
	err = s.c.FindOneAndUpdate(ctx, bson.M{"email": p.Email}, update, opts).Decode(&before)
	if wafflemongo.IsDup(err) {
		// A concurrent upsert inserted first; the retry takes the update path.
		err = s.c.FindOneAndUpdate(ctx, bson.M{"email": p.Email}, update, opts).Decode(&before)
	}

	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		p.ID = onInsert["_id"].(primitive.ObjectID)
		p.CreatedAt = now
		p.UpdatedAt = now
		p.ExpiresAt = p.ExpiresAt.UTC()
		return UpsertResult{Record: p, Created: true}, nil
	case err != nil:
		return UpsertResult{}, fmt.Errorf("upsert pending signup: %w", err)
	}

	before.PasscodeHash = p.PasscodeHash
	before.ExpiresAt = p.ExpiresAt.UTC()
	before.UpdatedAt = now
	return UpsertResult{Record: before, Created: false}, nil
}

// insertFields renders the document fields written only on insert.
func insertFields(p models.PendingSignup, now time.Time) (bson.M, error) {
	raw, err := bson.Marshal(p.Profile)
	if err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}
	doc := bson.M{}
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}
	doc["_id"] = primitive.NewObjectID()
	doc["email"] = p.Email
	doc["first_name"] = p.FirstName
	doc["last_name"] = p.LastName
	doc["password_hash"] = p.PasswordHash
	doc["created_at"] = now
	return doc, nil
}

// GetByEmail loads the pending signup for email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.PendingSignup, error) {
	var p models.PendingSignup
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// RefreshPasscode replaces the passcode hash and expiry of an existing
// record and returns the updated record.
func (s *Store) RefreshPasscode(ctx context.Context, email, passcodeHash string, expiresAt time.Time) (*models.PendingSignup, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.PendingSignup
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"email": normalize.Email(email)},
		bson.M{"$set": bson.M{
			"passcode_hash": passcodeHash,
			"expires_at":    expiresAt.UTC(),
			"updated_at":    time.Now().UTC(),
		}},
		opts,
	).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// DeleteByID removes one record. Deleting a missing record is not an error.
func (s *Store) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// DeleteExpired removes records whose expiry is before now and reports how
// many were removed. It backs up the TTL monitor, which runs about once a
// minute.
func (s *Store) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lt": now.UTC()}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// CountByEmail reports how many records exist for email.
func (s *Store) CountByEmail(ctx context.Context, email string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"email": normalize.Email(email)})
}
