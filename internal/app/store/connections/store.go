// internal/app/store/connections/store.go
package connectionstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/peerhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the connection requests collection name.
const Collection = "connection_requests"

var (
	// ErrNotFound is returned when no request matches.
	ErrNotFound = errors.New("connection request not found")
	// ErrPairExists is returned by Insert when the unordered pair already
	// has a request. The unique pair_key index enforces it.
	ErrPairExists = errors.New("connection request already exists for pair")
)

// Store manages connection requests.
type Store struct {
	c *mongo.Collection
}

// New creates a new Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Insert stores a new request from -> to with status. The pair key is
// derived here so callers cannot get it wrong.
func (s *Store) Insert(ctx context.Context, from, to primitive.ObjectID, status string) (*models.ConnectionRequest, error) {
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
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		if wafflemongo.IsDup(err) {
			return nil, ErrPairExists
		}
		return nil, fmt.Errorf("insert connection request: %w", err)
	}
	return &c, nil
}

// GetByID loads one request.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.ConnectionRequest, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// GetByPair loads the request between a and b in either direction.
func (s *Store) GetByPair(ctx context.Context, a, b primitive.ObjectID) (*models.ConnectionRequest, error) {
	return s.findOne(ctx, bson.M{"pair_key": models.PairKey(a, b)})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (*models.ConnectionRequest, error) {
	var c models.ConnectionRequest
	if err := s.c.FindOne(ctx, filter).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Review moves a pending request addressed to receiver into status. The
// filter and the update are one atomic step, so a request already reviewed
// or addressed to someone else yields ErrNotFound.
func (s *Store) Review(ctx context.Context, id, receiver primitive.ObjectID, status string) (*models.ConnectionRequest, error) {
	filter := bson.M{
		"_id":        id,
		"to_user_id": receiver,
		"status":     models.StatusInterested,
	}
	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var c models.ConnectionRequest
	if err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("review connection request: %w", err)
	}
	return &c, nil
}

// DeleteByID removes a request. Returns ErrNotFound when nothing was removed.
func (s *Store) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListReceived returns pending requests addressed to userID, newest first.
func (s *Store) ListReceived(ctx context.Context, userID primitive.ObjectID) ([]models.ConnectionRequest, error) {
	return s.find(ctx,
		bson.M{"to_user_id": userID, "status": models.StatusInterested},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
}

// ListAccepted returns accepted requests userID takes part in.
func (s *Store) ListAccepted(ctx context.Context, userID primitive.ObjectID) ([]models.ConnectionRequest, error) {
	return s.find(ctx,
		bson.M{"status": models.StatusAccepted, "$or": involving(userID)},
		options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}}),
	)
}

// ListInvolving returns every request userID takes part in, whatever its
// status.
func (s *Store) ListInvolving(ctx context.Context, userID primitive.ObjectID) ([]models.ConnectionRequest, error) {
	return s.find(ctx, bson.M{"$or": involving(userID)}, options.Find())
}

// ExistsAccepted reports whether a and b have an accepted request.
func (s *Store) ExistsAccepted(ctx context.Context, a, b primitive.ObjectID) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{
		"pair_key": models.PairKey(a, b),
		"status":   models.StatusAccepted,
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func involving(userID primitive.ObjectID) bson.A {
	return bson.A{
		bson.M{"from_user_id": userID},
		bson.M{"to_user_id": userID},
	}
}

func (s *Store) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.ConnectionRequest, error) {
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.ConnectionRequest{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
