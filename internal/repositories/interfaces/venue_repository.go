package interfaces

import (
	"context"

	"courtside/internal/models"
	"courtside/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VenueRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, venue *models.Venue) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Venue, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// Search and filtering
	GetActive(ctx context.Context, params *utils.PaginationParams) ([]*models.Venue, int64, error)
	GetByOwner(ctx context.Context, ownerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Venue, int64, error)
	GetByCity(ctx context.Context, city string, params *utils.PaginationParams) ([]*models.Venue, int64, error)
}
