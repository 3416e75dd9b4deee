package interfaces

import (
	"context"
	"time"

	"courtside/internal/models"
	"courtside/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error

	// Conflict detection. FindOverlapping only considers bookings whose
	// status still holds the slot (pending, confirmed).
	FindOverlapping(ctx context.Context, venueID primitive.ObjectID, start, end time.Time, excludeID *primitive.ObjectID) ([]*models.Booking, error)

	// CreateWithNoOverlap inserts the booking and consumes promo usage as one
	// atomic operation: inside a transaction it re-checks the overlap, inserts,
	// and increments each promo's used_count under its usage-limit guard.
	// Returns a conflict error when the slot was taken or a promo cap was
	// exhausted concurrently.
	CreateWithNoOverlap(ctx context.Context, booking *models.Booking, promoIDs []primitive.ObjectID) error

	// UpdateWindowWithNoOverlap moves a booking's time window/participants.
	// Like CreateWithNoOverlap it runs inside a transaction: the overlap
	// re-check (excluding the booking's own id) and the write commit
	// together, so a concurrent creation cannot slip into the new window.
	// The write is guarded by the booking still being in an active status.
	UpdateWindowWithNoOverlap(ctx context.Context, id primitive.ObjectID, start, end time.Time, participants int, notes string) error

	// Status transitions. Each issues a conditional write filtered on the
	// expected current status, so a lost race surfaces as a conflict instead
	// of a silently re-applied transition.
	ConfirmPayment(ctx context.Context, id primitive.ObjectID, transactionID, paymentMethod string) error
	CheckIn(ctx context.Context, id primitive.ObjectID, at time.Time) error
	CheckOut(ctx context.Context, id primitive.ObjectID, at time.Time) error
	Cancel(ctx context.Context, id primitive.ObjectID, reason string, at time.Time, refundAmount float64, paymentStatus models.PaymentStatus) error
	MarkNoShow(ctx context.Context, id primitive.ObjectID, at time.Time) error

	// Search and filtering
	GetByUser(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Booking, int64, error)
	GetByVenue(ctx context.Context, venueID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Booking, int64, error)
	GetByStatus(ctx context.Context, status models.BookingStatus, params *utils.PaginationParams) ([]*models.Booking, int64, error)
	GetByDateRange(ctx context.Context, startDate, endDate time.Time, params *utils.PaginationParams) ([]*models.Booking, int64, error)
	GetVenueCalendar(ctx context.Context, venueID primitive.ObjectID, day time.Time) ([]*models.Booking, error)

	// Batch scans for the reminder/overdue loops; these are periodic reads
	// outside the synchronous correctness path.
	GetNeedingReminder(ctx context.Context, now time.Time, lead time.Duration) ([]*models.Booking, error)
	MarkReminderSent(ctx context.Context, id primitive.ObjectID, at time.Time) error
	GetOverdueCheckIns(ctx context.Context, now time.Time) ([]*models.Booking, error)

	// Analytics and statistics
	GetVenueAnalytics(ctx context.Context, venueID primitive.ObjectID, startDate, endDate time.Time) (map[string]interface{}, error)
	GetDashboardStats(ctx context.Context, startDate, endDate time.Time) (map[string]interface{}, error)
}
