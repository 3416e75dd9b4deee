package interfaces

import (
	"context"
	"time"

	"courtside/internal/models"
	"courtside/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	GetByUser(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Notification, int64, error)
	MarkSent(ctx context.Context, id primitive.ObjectID, at time.Time) error
}
