package services

import (
	"context"
	"fmt"

	"courtside/internal/models"
	"courtside/internal/repositories/interfaces"
	"courtside/internal/utils"
	"courtside/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationService interface {
	NotifyBookingCreated(ctx context.Context, booking *models.Booking)
	NotifyBookingConfirmed(ctx context.Context, booking *models.Booking)
	NotifyBookingCancelled(ctx context.Context, booking *models.Booking)
	NotifyBookingReminder(ctx context.Context, booking *models.Booking)
	NotifyBookingNoShow(ctx context.Context, booking *models.Booking)
	GetUserNotifications(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Notification, int64, error)
}

type notificationService struct {
	notificationRepo interfaces.NotificationRepository
	logger           *logger.Logger
}

func NewNotificationService(notificationRepo interfaces.NotificationRepository, logger *logger.Logger) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

func (s *notificationService) NotifyBookingCreated(ctx context.Context, booking *models.Booking) {
	s.record(ctx, booking, models.NotificationTypeBookingCreated,
		"Booking created",
		fmt.Sprintf("Your booking from %s to %s is awaiting payment.",
			utils.FormatTimeISO(booking.StartTime), utils.FormatTimeISO(booking.EndTime)))
}

func (s *notificationService) NotifyBookingConfirmed(ctx context.Context, booking *models.Booking) {
	s.record(ctx, booking, models.NotificationTypeBookingConfirmed,
		"Booking confirmed",
		fmt.Sprintf("Your booking on %s is confirmed. See you there!",
			utils.FormatTimeISO(booking.StartTime)))
}

func (s *notificationService) NotifyBookingCancelled(ctx context.Context, booking *models.Booking) {
	message := "Your booking has been cancelled."
	if booking.RefundAmount > 0 {
		message = fmt.Sprintf("Your booking has been cancelled. A refund of %.2f %s is on its way.",
			booking.RefundAmount, booking.Currency)
	}
	s.record(ctx, booking, models.NotificationTypeBookingCancelled, "Booking cancelled", message)
}

func (s *notificationService) NotifyBookingReminder(ctx context.Context, booking *models.Booking) {
	s.record(ctx, booking, models.NotificationTypeBookingReminder,
		"Upcoming booking",
		fmt.Sprintf("Reminder: your booking starts at %s.",
			utils.FormatTimeISO(booking.StartTime)))
}

func (s *notificationService) NotifyBookingNoShow(ctx context.Context, booking *models.Booking) {
	s.record(ctx, booking, models.NotificationTypeBookingNoShow,
		"Missed booking",
		"You were marked as a no-show for your booking. The slot has been released.")
}

func (s *notificationService) GetUserNotifications(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Notification, int64, error) {
	return s.notificationRepo.GetByUser(ctx, userID, params)
}

// record writes the delivery request. Failures are logged and swallowed: a
// notification must never fail the booking operation that triggered it.
func (s *notificationService) record(ctx context.Context, booking *models.Booking, notificationType models.NotificationType, title, message string) {
	notification := &models.Notification{
		UserID:    booking.UserID,
		BookingID: booking.ID,
		Type:      notificationType,
		Status:    models.NotificationStatusPending,
		Title:     title,
		Message:   message,
		Data: map[string]interface{}{
			"venue_id":   booking.VenueID.Hex(),
			"start_time": booking.StartTime,
			"end_time":   booking.EndTime,
		},
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.WithError(err).WithBookingID(booking.ID).Warn("Failed to record notification")
	}
}
