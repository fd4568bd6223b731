// internal/app/store/accounts/accountstore.go
package accountstore

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

// Collection is the accounts collection name.
const Collection = "accounts"

var (
	// ErrNotFound is returned when no account matches.
	ErrNotFound = errors.New("account not found")
	// ErrDuplicateEmail is returned when an account with the email already exists.
	ErrDuplicateEmail = errors.New("an account with this email already exists")
)

// Store manages account records.
type Store struct {
	c *mongo.Collection
}

// New creates a new account Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (*models.Account, error) {
	var a models.Account
	if err := s.c.FindOne(ctx, filter).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// GetByID loads an account by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Account, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// GetByEmail looks up an account by normalized email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return s.findOne(ctx, bson.M{"email": normalize.Email(email)})
}

// Create inserts a new account. ID and timestamps are assigned here.
func (s *Store) Create(ctx context.Context, a models.Account) (models.Account, error) {
	a.ID = primitive.NewObjectID()
	a.Email = normalize.Email(a.Email)
	a.FirstName = normalize.Name(a.FirstName)
	a.LastName = normalize.Name(a.LastName)
	if a.SkillsWanted == nil {
		a.SkillsWanted = []string{}
	}
	if a.SkillsTaught == nil {
		a.SkillsTaught = []string{}
	}

	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, a); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Account{}, ErrDuplicateEmail
		}
		return models.Account{}, fmt.Errorf("insert account: %w", err)
	}
	return a, nil
}

// DeleteUnverifiedByEmail removes an unverified account left by the
// single-phase signup. Verified accounts are never touched.
func (s *Store) DeleteUnverifiedByEmail(ctx context.Context, email string) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{
		"email":          normalize.Email(email),
		"email_verified": bson.M{"$ne": true},
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// SetResetToken stores the hash of a password reset token.
func (s *Store) SetResetToken(ctx context.Context, id primitive.ObjectID, tokenHash string, expiresAt time.Time) error {
	return s.update(ctx, id, bson.M{"$set": bson.M{
		"reset_token_hash": tokenHash,
		"reset_expires_at": expiresAt.UTC(),
		"updated_at":       time.Now().UTC(),
	}})
}

// ClearResetToken removes any outstanding reset token.
func (s *Store) ClearResetToken(ctx context.Context, id primitive.ObjectID) error {
	return s.update(ctx, id, bson.M{
		"$unset": bson.M{"reset_token_hash": "", "reset_expires_at": ""},
		"$set":   bson.M{"updated_at": time.Now().UTC()},
	})
}

// ConsumeResetToken atomically clears the reset token matching tokenHash and
// returns the account as it was before, so the caller can check expiry.
// A token can therefore be consumed only once.
func (s *Store) ConsumeResetToken(ctx context.Context, tokenHash string) (*models.Account, error) {
	if tokenHash == "" {
		return nil, ErrNotFound
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)
	var a models.Account
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"reset_token_hash": tokenHash},
		bson.M{
			"$unset": bson.M{"reset_token_hash": "", "reset_expires_at": ""},
			"$set":   bson.M{"updated_at": time.Now().UTC()},
		},
		opts,
	).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// SetPasswordHash replaces the stored credential hash.
func (s *Store) SetPasswordHash(ctx context.Context, id primitive.ObjectID, hash string) error {
	return s.update(ctx, id, bson.M{"$set": bson.M{
		"password_hash": hash,
		"updated_at":    time.Now().UTC(),
	}})
}

// SetAdmin grants the administrator flag. It reports false when the account
// was already an administrator.
func (s *Store) SetAdmin(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "is_admin": bson.M{"$ne": true}},
		bson.M{"$set": bson.M{"is_admin": true, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// SetLegacyPasscode refreshes the passcode stored on a single-phase account.
func (s *Store) SetLegacyPasscode(ctx context.Context, id primitive.ObjectID, hash string, expiresAt time.Time) error {
	return s.update(ctx, id, bson.M{"$set": bson.M{
		"legacy_passcode_hash":       hash,
		"legacy_passcode_expires_at": expiresAt.UTC(),
		"updated_at":                 time.Now().UTC(),
	}})
}

func (s *Store) update(ctx context.Context, id primitive.ObjectID, upd bson.M) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, upd)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
