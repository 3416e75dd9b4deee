package services

import (
	"context"
	"time"

	"courtside/internal/apperrors"
	"courtside/internal/models"
	"courtside/internal/pricing"
	"courtside/internal/repositories/interfaces"
	"courtside/internal/utils"
	"courtside/internal/validators"
	"courtside/pkg/events"
	"courtside/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SuggestedSlot is an alternative free window offered when the requested one
// is taken.
type SuggestedSlot struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type AvailabilityResult struct {
	Available           bool              `json:"available"`
	ConflictingBookings []*models.Booking `json:"conflicting_bookings,omitempty"`
	SuggestedSlots      []SuggestedSlot   `json:"suggested_slots,omitempty"`
}

/// Cache is the slice of pkg/cache.RedisCache the booking service uses: the
// per-venue advisory lock and invalidation of promo code entries whose
// used_count moved inside the creation transaction.
type Cache interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	Delete(ctx context.Context, keys ...string) error
}

type BookingService interface {
	// Lifecycle
	CreateBooking(ctx context.Context, userID primitive.ObjectID, req *validators.CreateBookingRequest) (*models.Booking, error)
	UpdateBooking(ctx context.Context, id, actorID primitive.ObjectID, actorType string, req *validators.UpdateBookingRequest) (*models.Booking, error)
	CancelBooking(ctx context.Context, id, actorID primitive.ObjectID, actorType, reason string) (*models.Booking, error)
	ConfirmPayment(ctx context.Context, id, actorID primitive.ObjectID, actorType string, req *validators.ConfirmPaymentRequest) (*models.Booking, error)
	CheckIn(ctx context.Context, id, actorID primitive.ObjectID, actorType string) (*models.Booking, error)
	CheckOut(ctx context.Context, id, actorID primitive.ObjectID, actorType string) (*models.Booking, error)
	MarkNoShow(ctx context.Context, id, actorID primitive.ObjectID, actorType string) (*models.Booking, error)

	// Reads
	GetBooking(ctx context.Context, id, actorID primitive.ObjectID, actorType string) (*models.Booking, error)
	GetUserBookings(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Booking, int64, error)
	GetVenueBookings(ctx context.Context, venueID, actorID primitive.ObjectID, actorType string, params *utils.PaginationParams) ([]*models.Booking, int64, error)
	GetVenueCalendar(ctx context.Context, venueID primitive.ObjectID, day time.Time) ([]*models.Booking, error)

	// Availability
	CheckAvailability(ctx context.Context, venueID primitive.ObjectID, start, end time.Time) (*AvailabilityResult, error)

	// Analytics
	GetVenueAnalytics(ctx context.Context, venueID, actorID primitive.ObjectID, actorType string, startDate, endDate time.Time) (map[string]interface{}, error)
	GetDashboardStats(ctx context.Context, startDate, endDate time.Time) (map[string]interface{}, error)

	// Background loops
	ScanAndSendReminders(ctx context.Context, lead time.Duration) error
	ScanOverdueCheckIns(ctx context.Context) error
}

type bookingService struct {
	bookingRepo  interfaces.BookingRepository
	venueRepo    interfaces.VenueRepository
	pricing      PricingService
	notification NotificationService
	cache        Cache
	publisher    *events.Publisher
	logger       *logger.Logger
}

func NewBookingService(
	bookingRepo interfaces.BookingRepository,
	venueRepo interfaces.VenueRepository,
	pricingService PricingService,
	notificationService NotificationService,
	cache Cache,
	publisher *events.Publisher,
	logger *logger.Logger,
) BookingService {
	return &bookingService{
		bookingRepo:  bookingRepo,
		venueRepo:    venueRepo,
		pricing:      pricingService,
		notification: notificationService,
		cache:        cache,
		publisher:    publisher,
		logger:       logger,
	}
}

// Lifecycle

func (s *bookingService) CreateBooking(ctx context.Context, userID primitive.ObjectID, req *validators.CreateBookingRequest) (*models.Booking, error) {
	now := time.Now()

	if verrs := validators.ValidateCreateBooking(req, now); len(verrs) > 0 {
		return nil, apperrors.Validation(verrs.Error())
	}

	venueID, err := primitive.ObjectIDFromHex(req.VenueID)
	if err != nil {
		return nil, apperrors.Validation("invalid venue id")
	}

	venue, err := s.venueRepo.GetByID(ctx, venueID)
	if err != nil {
		return nil, err
	}
	if !venue.IsActive {
		return nil, apperrors.Validation("venue is not accepting bookings")
	}
	if venue.Capacity > 0 && req.Participants > venue.Capacity {
		return nil, apperrors.Validationf("venue capacity is %d participants", venue.Capacity)
	}

	// Per-venue advisory lock. It narrows the race window cheaply; the
	// transaction in CreateWithNoOverlap is what actually guarantees
	// disjointness.
	if s.cache != nil {
		lockKey := utils.CacheBookingLockPrefix + venueID.Hex()
		acquired, lockErr := s.cache.SetNX(ctx, lockKey, userID.Hex(), utils.BookingLockTTL)
		if lockErr == nil {
			if !acquired {
				return nil, apperrors.Conflict("another booking for this venue is being processed, please retry")
			}
			defer func() {
				_ = s.cache.Delete(ctx, lockKey)
			}()
		}
	}

	conflicts, err := s.bookingRepo.FindOverlapping(ctx, venueID, req.StartTime, req.EndTime, nil)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, apperrors.Conflict("venue is already booked for the requested time")
	}

	quote, promoIDs, err := s.pricing.QuoteForVenue(ctx, venue, req.StartTime, req.EndTime, req.Participants, req.PromoCodes, now)
	if err != nil {
		return nil, err
	}

	bookingType := models.BookingType(req.BookingType)
	if bookingType == "" {
		bookingType = models.BookingTypeCasual
	}

	booking := &models.Booking{
		VenueID:           venueID,
		UserID:            userID,
		BookingType:       bookingType,
		Status:            models.BookingStatusPending,
		StartTime:         req.StartTime,
		EndTime:           req.EndTime,
		Participants:      req.Participants,
		BasePrice:         quote.BasePrice,
		DiscountAmount:    quote.DiscountAmount,
		TotalPrice:        quote.TotalPrice,
		PricingType:       quote.PricingType,
		AppliedPromoCodes: quote.AppliedPromos,
		Currency:          quote.Currency,
		PaymentStatus:     models.PaymentStatusPending,
		Notes:             req.Notes,
	}

	if err := s.bookingRepo.CreateWithNoOverlap(ctx, booking, promoIDs); err != nil {
		return nil, err
	}

	// The transaction moved each applied code's used_count past the cached
	// copy; drop the entries so reads see the remaining uses.
	if s.cache != nil && len(booking.AppliedPromoCodes) > 0 {
		keys := make([]string, 0, len(booking.AppliedPromoCodes))
		for _, promo := range booking.AppliedPromoCodes {
			keys = append(keys, utils.CachePromoPrefix+promo.Code)
		}
		if err := s.cache.Delete(ctx, keys...); err != nil {
			s.logger.WithError(err).WithBookingID(booking.ID).Warn("Failed to invalidate promo code cache")
		}
	}

	s.logger.LogBookingEvent(booking.ID, "created", map[string]interface{}{
		"venue_id":    venueID.Hex(),
		"total_price": booking.TotalPrice,
	})
	s.publishEvent(events.TopicBookingCreated, booking, map[string]interface{}{
		"total_price": booking.TotalPrice,
		"currency":    booking.Currency,
	})
	s.notification.NotifyBookingCreated(ctx, booking)

	return booking, nil
}

func (s *bookingService) UpdateBooking(ctx context.Context, id, actorID primitive.ObjectID, actorType string, req *validators.UpdateBookingRequest) (*models.Booking, error) {
	if verrs := validators.ValidateUpdateBooking(req); len(verrs) > 0 {
		return nil, apperrors.Validation(verrs.Error())
	}

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeBookingOwner(booking, actorID, actorType); err != nil {
		return nil, err
	}
	if err := booking.CanUpdate(); err != nil {
		return nil, err
	}

	start, end := booking.StartTime, booking.EndTime
	if req.StartTime != nil && req.EndTime != nil {
		start, end = *req.StartTime, *req.EndTime
		if verrs := validators.ValidateAvailabilityWindow(start, end, time.Now()); len(verrs) > 0 {
			return nil, apperrors.Validation(verrs.Error())
		}

		conflicts, err := s.bookingRepo.FindOverlapping(ctx, booking.VenueID, start, end, &booking.ID)
		if err != nil {
			return nil, err
		}
		if len(conflicts) > 0 {
			return nil, apperrors.Conflict("venue is already booked for the requested time")
		}
	}

	participants := booking.Participants
	if req.Participants != nil {
		participants = *req.Participants
	}
	notes := ""
	if req.Notes != nil {
		notes = *req.Notes
	}

	// The price snapshot is intentionally left untouched: the amount agreed
	// at creation stands even when the window moves.
	if err := s.bookingRepo.UpdateWindowWithNoOverlap(ctx, id, start, end, participants, notes); err != nil {
		return nil, err
	}

	updated, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publishEvent(events.TopicBookingUpdated, updated, nil)

	return updated, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, id, actorID primitive.ObjectID, actorType, reason string) (*models.Booking, error) {
	now := time.Now()

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeBookingOwner(booking, actorID, actorType); err != nil {
		return nil, err
	}
	if err := booking.CanCancel(now); err != nil {
		return nil, err
	}

	var refundAmount float64
	var refundPercent int
	paymentStatus := booking.PaymentStatus
	if booking.PaymentStatus == models.PaymentStatusPaid {
		refundAmount, refundPercent = pricing.RefundAmount(booking.HoursUntilStart(now), booking.TotalPrice)
		switch refundPercent {
		case 100:
			paymentStatus = models.PaymentStatusRefunded
		case 50:
			paymentStatus = models.PaymentStatusPartiallyRefunded
		}
	}

	if err := s.bookingRepo.Cancel(ctx, id, reason, now, refundAmount, paymentStatus); err != nil {
		return nil, err
	}

	cancelled, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.LogBookingEvent(id, "cancelled", map[string]interface{}{
		"refund_amount":  refundAmount,
		"refund_percent": refundPercent,
	})
	s.publishEvent(events.TopicBookingCancelled, cancelled, map[string]interface{}{
		"reason":         reason,
		"refund_amount":  refundAmount,
		"refund_percent": refundPercent,
	})
	s.notification.NotifyBookingCancelled(ctx, cancelled)

	return cancelled, nil
}

func (s *bookingService) ConfirmPayment(ctx context.Context, id, actorID primitive.ObjectID, actorType string, req *validators.ConfirmPaymentRequest) (*models.Booking, error) {
	if verrs := validators.ValidateStruct(req); len(verrs) > 0 {
		return nil, apperrors.Validation(verrs.Error())
	}

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeBookingOwner(booking, actorID, actorType); err != nil {
		return nil, err
	}
	if err := booking.CanConfirmPayment(); err != nil {
		return nil, err
	}

	if err := s.bookingRepo.ConfirmPayment(ctx, id, req.TransactionID, req.PaymentMethod); err != nil {
		return nil, err
	}

	confirmed, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.LogPaymentEvent(id, "confirmed", confirmed.TotalPrice, confirmed.Currency)
	s.publishEvent(events.TopicBookingPaymentConfirmed, confirmed, map[string]interface{}{
		"transaction_id": req.TransactionID,
		"amount":         confirmed.TotalPrice,
	})
	s.notification.NotifyBookingConfirmed(ctx, confirmed)

	return confirmed, nil
}

func (s *bookingService) CheckIn(ctx context.Context, id, actorID primitive.ObjectID, actorType string) (*models.Booking, error) {
	now := time.Now()

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeBookingOwner(booking, actorID, actorType); err != nil {
		return nil, err
	}
	if err := booking.CanCheckIn(now); err != nil {
		return nil, err
	}

	if err := s.bookingRepo.CheckIn(ctx, id, now); err != nil {
		return nil, err
	}

	checkedIn, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publishEvent(events.TopicBookingCheckedIn, checkedIn, nil)

	return checkedIn, nil
}

func (s *bookingService) CheckOut(ctx context.Context, id, actorID primitive.ObjectID, actorType string) (*models.Booking, error) {
	now := time.Now()

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeBookingOwner(booking, actorID, actorType); err != nil {
		return nil, err
	}
	if err := booking.CanCheckOut(); err != nil {
		return nil, err
	}

	if err := s.bookingRepo.CheckOut(ctx, id, now); err != nil {
		return nil, err
	}

	completed, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publishEvent(events.TopicBookingCompleted, completed, nil)

	return completed, nil
}

func (s *bookingService) MarkNoShow(ctx context.Context, id, actorID primitive.ObjectID, actorType string) (*models.Booking, error) {
	now := time.Now()

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Only the venue side may declare a no-show; the booking owner has no
	// incentive to report their own absence.
	if err := s.authorizeVenueOwner(ctx, booking.VenueID, actorID, actorType); err != nil {
		return nil, err
	}
	if err := booking.CanMarkNoShow(now); err != nil {
		return nil, err
	}

	if err := s.bookingRepo.MarkNoShow(ctx, id, now); err != nil {
		return nil, err
	}

	noShow, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.LogBookingEvent(id, "no_show", nil)
	s.publishEvent(events.TopicBookingNoShow, noShow, nil)
	s.notification.NotifyBookingNoShow(ctx, noShow)

	return noShow, nil
}

// Reads

func (s *bookingService) GetBooking(ctx context.Context, id, actorID primitive.ObjectID, actorType string) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeBookingParticipant(ctx, booking, actorID, actorType); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *bookingService) GetUserBookings(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	return s.bookingRepo.GetByUser(ctx, userID, params)
}

func (s *bookingService) GetVenueBookings(ctx context.Context, venueID, actorID primitive.ObjectID, actorType string, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	if err := s.authorizeVenueOwner(ctx, venueID, actorID, actorType); err != nil {
		return nil, 0, err
	}
	return s.bookingRepo.GetByVenue(ctx, venueID, params)
}

func (s *bookingService) GetVenueCalendar(ctx context.Context, venueID primitive.ObjectID, day time.Time) ([]*models.Booking, error) {
	if _, err := s.venueRepo.GetByID(ctx, venueID); err != nil {
		return nil, err
	}
	return s.bookingRepo.GetVenueCalendar(ctx, venueID, day)
}

// Availability

func (s *bookingService) CheckAvailability(ctx context.Context, venueID primitive.ObjectID, start, end time.Time) (*AvailabilityResult, error) {
	now := time.Now()

	if verrs := validators.ValidateAvailabilityWindow(start, end, now); len(verrs) > 0 {
		return nil, apperrors.Validation(verrs.Error())
	}

	venue, err := s.venueRepo.GetByID(ctx, venueID)
	if err != nil {
		return nil, err
	}
	if !venue.IsActive {
		return nil, apperrors.Validation("venue is not accepting bookings")
	}

	conflicts, err := s.bookingRepo.FindOverlapping(ctx, venueID, start, end, nil)
	if err != nil {
		return nil, err
	}

	result := &AvailabilityResult{
		Available:           len(conflicts) == 0,
		ConflictingBookings: conflicts,
	}
	if result.Available {
		return result, nil
	}

	slots, err := s.suggestSlots(ctx, venueID, start, now)
	if err != nil {
		// Suggestions are a convenience; a failure here should not turn a
		// successful availability answer into an error.
		s.logger.WithError(err).WithVenueID(venueID).Warn("Failed to compute suggested slots")
		return result, nil
	}
	result.SuggestedSlots = slots

	return result, nil
}

// suggestSlots scans the same day hourly for free windows of the standard
// suggestion length, starting from the venue's typical opening time.
func (s *bookingService) suggestSlots(ctx context.Context, venueID primitive.ObjectID, day time.Time, now time.Time) ([]SuggestedSlot, error) {
	calendar, err := s.bookingRepo.GetVenueCalendar(ctx, venueID, day)
	if err != nil {
		return nil, err
	}

	var slots []SuggestedSlot
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), utils.SuggestedSlotStartHour, 0, 0, 0, day.Location())
	dayEnd := utils.EndOfDay(day)

	for candidate := dayStart; candidate.Add(utils.SuggestedSlotDuration).Before(dayEnd); candidate = candidate.Add(time.Hour) {
		if len(slots) >= utils.SuggestedSlotCount {
			break
		}
		if !candidate.After(now) {
			continue
		}

		candidateEnd := candidate.Add(utils.SuggestedSlotDuration)
		free := true
		for _, existing := range calendar {
			if existing.Overlaps(candidate, candidateEnd) {
				free = false
				break
			}
		}
		if free {
			slots = append(slots, SuggestedSlot{StartTime: candidate, EndTime: candidateEnd})
		}
	}

	return slots, nil
}

// Analytics

func (s *bookingService) GetVenueAnalytics(ctx context.Context, venueID, actorID primitive.ObjectID, actorType string, startDate, endDate time.Time) (map[string]interface{}, error) {
	if err := s.authorizeVenueOwner(ctx, venueID, actorID, actorType); err != nil {
		return nil, err
	}
	return s.bookingRepo.GetVenueAnalytics(ctx, venueID, startDate, endDate)
}

func (s *bookingService) GetDashboardStats(ctx context.Context, startDate, endDate time.Time) (map[string]interface{}, error) {
	return s.bookingRepo.GetDashboardStats(ctx, startDate, endDate)
}

// Background loops

func (s *bookingService) ScanAndSendReminders(ctx context.Context, lead time.Duration) error {
	now := time.Now()

	bookings, err := s.bookingRepo.GetNeedingReminder(ctx, now, lead)
	if err != nil {
		return err
	}

	for _, booking := range bookings {
		s.notification.NotifyBookingReminder(ctx, booking)
		if err := s.bookingRepo.MarkReminderSent(ctx, booking.ID, now); err != nil {
			s.logger.WithError(err).WithBookingID(booking.ID).Warn("Failed to mark reminder sent")
		}
	}

	if len(bookings) > 0 {
		s.logger.WithField("count", len(bookings)).Info("Booking reminders queued")
	}

	return nil
}

// ScanOverdueCheckIns surfaces confirmed bookings whose window has elapsed
// without a check-in. They are only logged: the no-show transition stays a
// deliberate venue-owner action.
func (s *bookingService) ScanOverdueCheckIns(ctx context.Context) error {
	bookings, err := s.bookingRepo.GetOverdueCheckIns(ctx, time.Now())
	if err != nil {
		return err
	}

	for _, booking := range bookings {
		s.logger.WithBookingID(booking.ID).WithVenueID(booking.VenueID).Info("Booking window elapsed without check-in")
	}

	return nil
}

// Authorization helpers

func (s *bookingService) authorizeBookingOwner(booking *models.Booking, actorID primitive.ObjectID, actorType string) error {
	if actorType == "admin" || booking.UserID == actorID {
		return nil
	}
	return apperrors.Forbidden("you do not have access to this booking")
}

// authorizeBookingParticipant admits the booking owner and the venue side.
// Used for reads only; transitions stay with authorizeBookingOwner or
// authorizeVenueOwner.
func (s *bookingService) authorizeBookingParticipant(ctx context.Context, booking *models.Booking, actorID primitive.ObjectID, actorType string) error {
	if actorType == "admin" || booking.UserID == actorID {
		return nil
	}
	venue, err := s.venueRepo.GetByID(ctx, booking.VenueID)
	if err == nil && venue.OwnerID == actorID {
		return nil
	}
	return apperrors.Forbidden("you do not have access to this booking")
}

func (s *bookingService) authorizeVenueOwner(ctx context.Context, venueID, actorID primitive.ObjectID, actorType string) error {
	if actorType == "admin" {
		return nil
	}
	venue, err := s.venueRepo.GetByID(ctx, venueID)
	if err != nil {
		return err
	}
	if venue.OwnerID != actorID {
		return apperrors.Forbidden("only the venue owner may perform this action")
	}
	return nil
}

func (s *bookingService) publishEvent(topic string, booking *models.Booking, data map[string]interface{}) {
	if s.publisher == nil {
		return
	}

	err := s.publisher.PublishBookingEvent(topic, &events.BookingEvent{
		BookingID: booking.ID.Hex(),
		UserID:    booking.UserID.Hex(),
		VenueID:   booking.VenueID.Hex(),
		Status:    string(booking.Status),
		Data:      data,
	})
	if err != nil {
		s.logger.WithError(err).WithBookingID(booking.ID).WithField("topic", topic).Warn("Failed to publish booking event")
	}
}
