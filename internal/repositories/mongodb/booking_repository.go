package mongodb

import (
	"context"
	"fmt"
	"time"

	"courtside/internal/apperrors"
	"courtside/internal/models"
	"courtside/internal/repositories/interfaces"
	"courtside/internal/utils"
	"courtside/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type bookingRepository struct {
	db         *database.MongoDB
	collection *mongo.Collection
	promos     *mongo.Collection
}

func NewBookingRepository(db *database.MongoDB) interfaces.BookingRepository {
	return &bookingRepository{
		db:         db,
		collection: db.Collection("bookings"),
		promos:     db.Collection("promo_codes"),
	}
}

func activeStatusFilter() bson.M {
	return bson.M{"$in": models.ActiveBookingStatuses}
}

// Basic CRUD operations
func (r *bookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	if booking.ID.IsZero() {
		booking.ID = primitive.NewObjectID()
	}
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	var booking models.Booking
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&booking)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("booking")
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	return &booking, nil
}

func (r *bookingRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFound("booking")
	}

	return nil
}

// Conflict detection
func (r *bookingRepository) FindOverlapping(ctx context.Context, venueID primitive.ObjectID, start, end time.Time, excludeID *primitive.ObjectID) ([]*models.Booking, error) {
	filter := overlapFilter(venueID, start, end, excludeID)

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*models.Booking
	for cursor.Next(ctx) {
		var booking models.Booking
		if err := cursor.Decode(&booking); err != nil {
			return nil, fmt.Errorf("failed to decode booking: %w", err)
		}
		bookings = append(bookings, &booking)
	}

	return bookings, nil
}

// overlapFilter matches active bookings whose half-open window [start_time,
// end_time) intersects [start, end): start_time < end AND end_time > start.
func overlapFilter(venueID primitive.ObjectID, start, end time.Time, excludeID *primitive.ObjectID) bson.M {
	filter := bson.M{
		"venue_id":   venueID,
		"status":     activeStatusFilter(),
		"start_time": bson.M{"$lt": end},
		"end_time":   bson.M{"$gt": start},
	}
	if excludeID != nil {
		filter["_id"] = bson.M{"$ne": *excludeID}
	}
	return filter
}

// CreateWithNoOverlap runs the overlap re-check, the insert and the promo
// usage increments as one transaction, so two concurrent creations for the
// same slot cannot both succeed.
func (r *bookingRepository) CreateWithNoOverlap(ctx context.Context, booking *models.Booking, promoIDs []primitive.ObjectID) error {
	if booking.ID.IsZero() {
		booking.ID = primitive.NewObjectID()
	}
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = time.Now()

	_, err := r.db.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		count, err := r.collection.CountDocuments(sessCtx, overlapFilter(booking.VenueID, booking.StartTime, booking.EndTime, nil))
		if err != nil {
			return nil, fmt.Errorf("failed to re-check overlap: %w", err)
		}
		if count > 0 {
			return nil, apperrors.Conflict("venue is already booked for the requested time")
		}

		if _, err := r.collection.InsertOne(sessCtx, booking); err != nil {
			return nil, fmt.Errorf("failed to create booking: %w", err)
		}

		for _, promoID := range promoIDs {
			// Compare-and-increment under the usage cap; losing the race
			// aborts the whole transaction so the cap is never exceeded.
			result, err := r.promos.UpdateOne(
				sessCtx,
				bson.M{
					"_id":       promoID,
					"is_active": true,
					"$or": []bson.M{
						{"usage_limit": 0},
						{"$expr": bson.M{"$lt": []interface{}{"$used_count", "$usage_limit"}}},
					},
				},
				bson.M{
					"$inc": bson.M{"used_count": 1},
					"$set": bson.M{"updated_at": time.Now()},
				},
			)
			if err != nil {
				return nil, fmt.Errorf("failed to increment promo usage: %w", err)
			}
			if result.MatchedCount == 0 {
				return nil, apperrors.Conflict("promo code usage limit reached")
			}
		}

		return nil, nil
	})

	return err
}

// UpdateWindowWithNoOverlap re-checks the overlap against the new window and
// writes it in one transaction, mirroring CreateWithNoOverlap: a concurrent
// creation committing between a caller's pre-check and this write still
// surfaces as a conflict.
func (r *bookingRepository) UpdateWindowWithNoOverlap(ctx context.Context, id primitive.ObjectID, start, end time.Time, participants int, notes string) error {
	updates := bson.M{
		"start_time":   start,
		"end_time":     end,
		"participants": participants,
		"updated_at":   time.Now(),
	}
	if notes != "" {
		updates["notes"] = notes
	}

	_, err := r.db.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		var booking models.Booking
		if err := r.collection.FindOne(sessCtx, bson.M{"_id": id}).Decode(&booking); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, apperrors.NotFound("booking")
			}
			return nil, fmt.Errorf("failed to get booking: %w", err)
		}

		count, err := r.collection.CountDocuments(sessCtx, overlapFilter(booking.VenueID, start, end, &id))
		if err != nil {
			return nil, fmt.Errorf("failed to re-check overlap: %w", err)
		}
		if count > 0 {
			return nil, apperrors.Conflict("venue is already booked for the requested time")
		}

		result, err := r.collection.UpdateOne(
			sessCtx,
			bson.M{"_id": id, "status": activeStatusFilter()},
			bson.M{"$set": updates},
		)
		if err != nil {
			return nil, fmt.Errorf("failed to update booking window: %w", err)
		}
		if result.MatchedCount == 0 {
			return nil, apperrors.Conflict("booking is no longer active")
		}

		return nil, nil
	})

	return err
}

// Status transitions. Each write is filtered on the expected current status
// so a concurrent transition surfaces as a conflict.
func (r *bookingRepository) ConfirmPayment(ctx context.Context, id primitive.ObjectID, transactionID, paymentMethod string) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "status": models.BookingStatusPending},
		bson.M{"$set": bson.M{
			"status":         models.BookingStatusConfirmed,
			"payment_status": models.PaymentStatusPaid,
			"transaction_id": transactionID,
			"payment_method": paymentMethod,
			"updated_at":     time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to confirm payment: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.Conflict("booking is no longer pending")
	}

	return nil
}

func (r *bookingRepository) CheckIn(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "status": models.BookingStatusConfirmed},
		bson.M{"$set": bson.M{
			"status":        models.BookingStatusCheckedIn,
			"check_in_time": at,
			"updated_at":    time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to check in booking: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.Conflict("booking is no longer confirmed")
	}

	return nil
}

func (r *bookingRepository) CheckOut(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "status": models.BookingStatusCheckedIn},
		bson.M{"$set": bson.M{
			"status":         models.BookingStatusCompleted,
			"check_out_time": at,
			"updated_at":     time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to check out booking: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.Conflict("booking is not checked in")
	}

	return nil
}

func (r *bookingRepository) Cancel(ctx context.Context, id primitive.ObjectID, reason string, at time.Time, refundAmount float64, paymentStatus models.PaymentStatus) error {
	updates := bson.M{
		"status":              models.BookingStatusCancelled,
		"cancellation_reason": reason,
		"cancelled_at":        at,
		"refund_amount":       refundAmount,
		"updated_at":          time.Now(),
	}
	if refundAmount > 0 {
		updates["payment_status"] = paymentStatus
		updates["refunded_at"] = at
	}

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "status": activeStatusFilter()},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to cancel booking: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.Conflict("booking is no longer active")
	}

	return nil
}

func (r *bookingRepository) MarkNoShow(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "status": models.BookingStatusConfirmed},
		bson.M{"$set": bson.M{
			"status":     models.BookingStatusNoShow,
			"updated_at": at,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark booking as no-show: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.Conflict("booking is no longer confirmed")
	}

	return nil
}

// Search and filtering
func (r *bookingRepository) GetByUser(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	return r.findBookingsWithFilter(ctx, bson.M{"user_id": userID}, params)
}

func (r *bookingRepository) GetByVenue(ctx context.Context, venueID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	return r.findBookingsWithFilter(ctx, bson.M{"venue_id": venueID}, params)
}

func (r *bookingRepository) GetByStatus(ctx context.Context, status models.BookingStatus, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	return r.findBookingsWithFilter(ctx, bson.M{"status": status}, params)
}

func (r *bookingRepository) GetByDateRange(ctx context.Context, startDate, endDate time.Time, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	filter := bson.M{
		"start_time": bson.M{
			"$gte": startDate,
			"$lte": endDate,
		},
	}
	return r.findBookingsWithFilter(ctx, filter, params)
}

func (r *bookingRepository) GetVenueCalendar(ctx context.Context, venueID primitive.ObjectID, day time.Time) ([]*models.Booking, error) {
	filter := bson.M{
		"venue_id":   venueID,
		"status":     activeStatusFilter(),
		"start_time": bson.M{"$gte": utils.StartOfDay(day), "$lte": utils.EndOfDay(day)},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get venue calendar: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*models.Booking
	for cursor.Next(ctx) {
		var booking models.Booking
		if err := cursor.Decode(&booking); err != nil {
			return nil, fmt.Errorf("failed to decode booking: %w", err)
		}
		bookings = append(bookings, &booking)
	}

	return bookings, nil
}

// Batch scans
func (r *bookingRepository) GetNeedingReminder(ctx context.Context, now time.Time, lead time.Duration) ([]*models.Booking, error) {
	filter := bson.M{
		"status":           models.BookingStatusConfirmed,
		"reminder_sent_at": nil,
		"start_time": bson.M{
			"$gte": now,
			"$lte": now.Add(lead),
		},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings needing reminder: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*models.Booking
	for cursor.Next(ctx) {
		var booking models.Booking
		if err := cursor.Decode(&booking); err != nil {
			return nil, fmt.Errorf("failed to decode booking: %w", err)
		}
		bookings = append(bookings, &booking)
	}

	return bookings, nil
}

func (r *bookingRepository) MarkReminderSent(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"reminder_sent_at": at, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark reminder sent: %w", err)
	}

	return nil
}

func (r *bookingRepository) GetOverdueCheckIns(ctx context.Context, now time.Time) ([]*models.Booking, error) {
	filter := bson.M{
		"status":   models.BookingStatusConfirmed,
		"end_time": bson.M{"$lt": now},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find overdue bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*models.Booking
	for cursor.Next(ctx) {
		var booking models.Booking
		if err := cursor.Decode(&booking); err != nil {
			return nil, fmt.Errorf("failed to decode booking: %w", err)
		}
		bookings = append(bookings, &booking)
	}

	return bookings, nil
}

// Analytics
func (r *bookingRepository) GetVenueAnalytics(ctx context.Context, venueID primitive.ObjectID, startDate, endDate time.Time) (map[string]interface{}, error) {
	match := bson.M{
		"venue_id": venueID,
		"start_time": bson.M{
			"$gte": startDate,
			"$lte": endDate,
		},
	}
	return r.aggregateStats(ctx, match, startDate, endDate)
}

func (r *bookingRepository) GetDashboardStats(ctx context.Context, startDate, endDate time.Time) (map[string]interface{}, error) {
	match := bson.M{
		"start_time": bson.M{
			"$gte": startDate,
			"$lte": endDate,
		},
	}
	return r.aggregateStats(ctx, match, startDate, endDate)
}

func (r *bookingRepository) aggregateStats(ctx context.Context, match bson.M, startDate, endDate time.Time) (map[string]interface{}, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":            "$status",
			"count":          bson.M{"$sum": 1},
			"total_revenue":  bson.M{"$sum": "$total_price"},
			"total_discount": bson.M{"$sum": "$discount_amount"},
			"total_refunded": bson.M{"$sum": "$refund_amount"},
			"avg_value":      bson.M{"$avg": "$total_price"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate booking stats: %w", err)
	}
	defer cursor.Close(ctx)

	stats := make(map[string]interface{})
	var totalBookings int64
	var totalRevenue, totalRefunded float64

	for cursor.Next(ctx) {
		var result struct {
			ID            models.BookingStatus `bson:"_id"`
			Count         int64                `bson:"count"`
			TotalRevenue  float64              `bson:"total_revenue"`
			TotalDiscount float64              `bson:"total_discount"`
			TotalRefunded float64              `bson:"total_refunded"`
			AvgValue      float64              `bson:"avg_value"`
		}

		if err := cursor.Decode(&result); err != nil {
			return nil, fmt.Errorf("failed to decode booking stats: %w", err)
		}

		stats[string(result.ID)] = map[string]interface{}{
			"count":          result.Count,
			"total_revenue":  result.TotalRevenue,
			"total_discount": result.TotalDiscount,
			"total_refunded": result.TotalRefunded,
			"avg_value":      result.AvgValue,
		}

		totalBookings += result.Count
		// Only bookings that kept their payment count toward revenue.
		if result.ID == models.BookingStatusConfirmed ||
			result.ID == models.BookingStatusCheckedIn ||
			result.ID == models.BookingStatusCompleted ||
			result.ID == models.BookingStatusNoShow {
			totalRevenue += result.TotalRevenue
		}
		totalRefunded += result.TotalRefunded
	}

	stats["summary"] = map[string]interface{}{
		"total_bookings": totalBookings,
		"total_revenue":  totalRevenue,
		"total_refunded": totalRefunded,
		"start_date":     startDate,
		"end_date":       endDate,
	}

	return stats, nil
}

// Helper methods
func (r *bookingRepository) findBookingsWithFilter(ctx context.Context, filter bson.M, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	opts := params.GetSortOptions()
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*models.Booking
	for cursor.Next(ctx) {
		var booking models.Booking
		if err := cursor.Decode(&booking); err != nil {
			return nil, 0, fmt.Errorf("failed to decode booking: %w", err)
		}
		bookings = append(bookings, &booking)
	}

	return bookings, total, nil
}
