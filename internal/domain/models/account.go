// internal/domain/models/account.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Account is a verified peer. Accounts are only created by promoting a
// PendingSignup after its passcode was confirmed; the legacy fields are set
// on records written by the earlier single-phase signup.
//
// NOTE:
//   - SkillsWanted/SkillsTaught hold display strings. Compare them through
//     the skills package keys, never directly.
//   - Connections live in the connection_requests collection.
type Account struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName     string             `bson:"first_name" json:"first_name"`
	LastName      string             `bson:"last_name" json:"last_name"`
	Email         string             `bson:"email" json:"email"` // normalized lowercase
	PasswordHash  string             `bson:"password_hash" json:"-"`
	EmailVerified bool               `bson:"email_verified" json:"email_verified"`
	IsAdmin       bool               `bson:"is_admin" json:"is_admin"`

	Profile `bson:",inline"`

	// Password reset. Only the SHA-256 of the token is kept.
	ResetTokenHash string     `bson:"reset_token_hash,omitempty" json:"-"`
	ResetExpiresAt *time.Time `bson:"reset_expires_at,omitempty" json:"-"`

	// Single-phase signup leftovers (see provision.LegacyAccounts).
	LegacyPasscodeHash      string     `bson:"legacy_passcode_hash,omitempty" json:"-"`
	LegacyPasscodeExpiresAt *time.Time `bson:"legacy_passcode_expires_at,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// FullName joins first and last name for greetings.
func (a Account) FullName() string {
	if a.LastName == "" {
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}

// Public strips credentials and administrative state.
func (a Account) Public() PublicProfile {
	return PublicProfile{
		ID:        a.ID,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Profile:   a.Profile,
	}
}

// PublicProfile is the shape other peers see in feeds, matches and requests.
type PublicProfile struct {
	ID        primitive.ObjectID `json:"id"`
	FirstName string             `json:"first_name"`
	LastName  string             `json:"last_name"`
	Profile
}
