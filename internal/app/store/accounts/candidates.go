package accountstore

import (
	"context"

	"github.com/dalemusser/peerhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CandidateFilter selects verified accounts for matching and the feed.
type CandidateFilter struct {
	// Exclude lists ids that must not be returned (viewer, existing partners).
	Exclude []primitive.ObjectID
	// AnySkill, when non-empty, keeps accounts whose taught or wanted
	// skills contain at least one of the given strings exactly.
	AnySkill []string
	// After continues a keyset page from this id.
	After primitive.ObjectID
	// Limit caps the result. Zero means no cap.
	Limit int64
}

// ListVerified returns verified accounts in _id order (insertion order).
func (s *Store) ListVerified(ctx context.Context, f CandidateFilter) ([]models.Account, error) {
	filter := bson.M{"email_verified": true}

	idCond := bson.M{}
	if len(f.Exclude) > 0 {
		idCond["$nin"] = f.Exclude
	}
	if !f.After.IsZero() {
		idCond["$gt"] = f.After
	}
	if len(idCond) > 0 {
		filter["_id"] = idCond
	}

	if len(f.AnySkill) > 0 {
		filter["$or"] = bson.A{
			bson.M{"skills_taught": bson.M{"$in": f.AnySkill}},
			bson.M{"skills_wanted": bson.M{"$in": f.AnySkill}},
		}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetProjection(publicProjection)
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}
	return s.find(ctx, filter, opts)
}

// GetByIDs loads the accounts with the given ids, in _id order, without
// credentials. Missing ids are skipped.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Account, error) {
	if len(ids) == 0 {
		return []models.Account{}, nil
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetProjection(publicProjection)
	return s.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
}

var publicProjection = bson.M{
	"password_hash":              0,
	"reset_token_hash":           0,
	"legacy_passcode_hash":       0,
	"legacy_passcode_expires_at": 0,
}

func (s *Store) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Account, error) {
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Account{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
