// internal/app/features/profile/handler.go
package profile

import (
	"context"

	accountstore "github.com/dalemusser/peerhub/internal/app/store/accounts"
	"github.com/dalemusser/peerhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Accounts reads and updates the signed-in account.
type Accounts interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Account, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, upd accountstore.ProfileUpdate) (*models.Account, error)
}

// Passwords changes the password of a signed-in account.
type Passwords interface {
	ChangePassword(ctx context.Context, accountID primitive.ObjectID, current, next string) error
}

// Handler owns all user profile handlers.
type Handler struct {
	Accounts  Accounts
	Passwords Passwords
	Log       *zap.Logger
}

// NewHandler constructs a profile Handler.
func NewHandler(accounts Accounts, passwords Passwords, logger *zap.Logger) *Handler {
	return &Handler{
		Accounts:  accounts,
		Passwords: passwords,
		Log:       logger,
	}
}
