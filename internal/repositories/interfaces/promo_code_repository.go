package interfaces

import (
	"context"

	"courtside/internal/models"
	"courtside/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PromoCodeRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, promo *models.PromoCode) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.PromoCode, error)
	GetByCode(ctx context.Context, code string) (*models.PromoCode, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// GetByCodes fetches the codes applied to a booking request. Unknown
	// codes are simply absent from the result (the validator fails closed).
	GetByCodes(ctx context.Context, codes []string) ([]*models.PromoCode, error)

	// Listing
	GetActive(ctx context.Context, params *utils.PaginationParams) ([]*models.PromoCode, int64, error)
	List(ctx context.Context, params *utils.PaginationParams) ([]*models.PromoCode, int64, error)

	// IncrementUsage performs an atomic compare-and-increment guarded by the
	// usage limit, for call sites outside the booking-creation transaction.
	IncrementUsage(ctx context.Context, id primitive.ObjectID) error
}
