// internal/app/features/alumni/handler.go
package alumni

import (
	"context"

	alumnistore "github.com/dalemusser/peerhub/internal/app/store/alumni"
	"github.com/dalemusser/peerhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Directory reads and curates alumni entries. Implemented by
// alumnistore.Store.
type Directory interface {
	Create(ctx context.Context, a models.Alumni) (*models.Alumni, error)
	GetActive(ctx context.Context, id primitive.ObjectID) (*models.Alumni, error)
	Update(ctx context.Context, id primitive.ObjectID, ch alumnistore.Changes) (*models.Alumni, error)
	Deactivate(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, f alumnistore.Filter) ([]models.Alumni, error)
	Count(ctx context.Context, f alumnistore.Filter) (int64, error)
	Stats(ctx context.Context) (models.AlumniStats, error)
}

// Handler owns the alumni directory handlers.
type Handler struct {
	Directory Directory
	Log       *zap.Logger
}

// NewHandler constructs an alumni Handler.
func NewHandler(dir Directory, logger *zap.Logger) *Handler {
	return &Handler{
		Directory: dir,
		Log:       logger,
	}
}
