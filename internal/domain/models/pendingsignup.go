// internal/domain/models/pendingsignup.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PendingSignup is an unverified registration waiting for its passcode.
// Exactly one document per email; the TTL index on expires_at evicts it.
type PendingSignup struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	FirstName    string             `bson:"first_name" json:"first_name"`
	LastName     string             `bson:"last_name" json:"last_name"`
	PasswordHash string             `bson:"password_hash" json:"-"`

	Profile `bson:",inline"`

	PasscodeHash string    `bson:"passcode_hash" json:"-"` // bcrypt of the 6-digit code
	ExpiresAt    time.Time `bson:"expires_at" json:"expires_at"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Expired reports whether the passcode window has closed at now.
func (p PendingSignup) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}
