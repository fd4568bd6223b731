// internal/domain/models/connectionrequest.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Connection request statuses.
const (
	StatusInterested = "interested"
	StatusIgnored    = "ignored"
	StatusAccepted   = "accepted"
	StatusRejected   = "rejected"
)

// IsSendStatus reports whether s may open a request.
func IsSendStatus(s string) bool {
	return s == StatusInterested || s == StatusIgnored
}

// IsReviewStatus reports whether s may close a pending request.
func IsReviewStatus(s string) bool {
	return s == StatusAccepted || s == StatusRejected
}

// ConnectionRequest records a directed interest signal. The unordered pair
// is the identity: PairKey is unique, From only records who initiated.
type ConnectionRequest struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FromUserID primitive.ObjectID `bson:"from_user_id" json:"from_user_id"`
	ToUserID   primitive.ObjectID `bson:"to_user_id" json:"to_user_id"`
	Status     string             `bson:"status" json:"status"`
	PairKey    string             `bson:"pair_key" json:"-"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}

// PairKey is the canonical identity of the unordered pair {a, b}.
func PairKey(a, b primitive.ObjectID) string {
	x, y := a.Hex(), b.Hex()
	if y < x {
		x, y = y, x
	}
	return x + "-" + y
}

// Involves reports whether id is one of the two participants.
func (c ConnectionRequest) Involves(id primitive.ObjectID) bool {
	return c.FromUserID == id || c.ToUserID == id
}

// Other returns the participant that is not id.
func (c ConnectionRequest) Other(id primitive.ObjectID) primitive.ObjectID {
	if c.FromUserID == id {
		return c.ToUserID
	}
	return c.FromUserID
}
