package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"courtside/internal/apperrors"
	"courtside/internal/models"
	"courtside/internal/pricing"
	"courtside/internal/utils"
	"courtside/internal/validators"
	"courtside/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	testVenueID = mustID("64f000000000000000000001")
	testOwnerID = mustID("64f000000000000000000002")
	testUserID  = mustID("64f000000000000000000003")
	otherUserID = mustID("64f000000000000000000004")
)

func mustID(hex string) primitive.ObjectID {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		panic(err)
	}
	return id
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Format: "text", Output: "stderr"})
	require.NoError(t, err)
	return log
}

func activeVenue() *models.Venue {
	return &models.Venue{
		ID:         testVenueID,
		OwnerID:    testOwnerID,
		Name:       "Center Court",
		Sport:      models.SportBadminton,
		HourlyRate: 50,
		Currency:   "USD",
		Capacity:   10,
		IsActive:   true,
	}
}

type testEnv struct {
	service  BookingService
	bookings *fakeBookingRepo
	promos   *fakePromoRepo
	venues   *fakeVenueRepo
	notifier *fakeNotifier
	cache    *fakeCache
}

func newTestEnv(t *testing.T, promos ...*models.PromoCode) *testEnv {
	t.Helper()
	return newTestEnvWithCache(t, nil, promos...)
}

func newTestEnvWithCache(t *testing.T, cache *fakeCache, promos ...*models.PromoCode) *testEnv {
	t.Helper()

	log := testLogger(t)
	promoRepo := newFakePromoRepo(promos...)
	bookingRepo := newFakeBookingRepo(promoRepo)
	venueRepo := newFakeVenueRepo(activeVenue())
	notifier := &fakeNotifier{}

	// A plain nil keeps the service's cache truly absent; a typed nil
	// pointer would slip past its nil check.
	var svcCache Cache
	if cache != nil {
		svcCache = cache
	}

	calculator := pricing.NewCalculator(pricing.DefaultConfig())
	pricingService := NewPricingService(venueRepo, promoRepo, calculator, log)
	service := NewBookingService(bookingRepo, venueRepo, pricingService, notifier, svcCache, nil, log)

	return &testEnv{
		service:  service,
		bookings: bookingRepo,
		promos:   promoRepo,
		venues:   venueRepo,
		notifier: notifier,
		cache:    cache,
	}
}

func createRequest(start, end time.Time) *validators.CreateBookingRequest {
	return &validators.CreateBookingRequest{
		VenueID:      testVenueID.Hex(),
		StartTime:    start,
		EndTime:      end,
		Participants: 2,
	}
}

// seed inserts a booking directly, bypassing the creation path, so tests can
// shape arbitrary statuses and windows.
func (e *testEnv) seed(t *testing.T, status models.BookingStatus, paymentStatus models.PaymentStatus, start, end time.Time, totalPrice float64) *models.Booking {
	t.Helper()
	booking := &models.Booking{
		VenueID:       testVenueID,
		UserID:        testUserID,
		Status:        status,
		PaymentStatus: paymentStatus,
		StartTime:     start,
		EndTime:       end,
		Participants:  2,
		TotalPrice:    totalPrice,
		Currency:      "USD",
	}
	require.NoError(t, e.bookings.Create(context.Background(), booking))
	return booking
}

func TestCreateBooking(t *testing.T) {
	env := newTestEnv(t)
	start := time.Now().Add(48 * time.Hour).Truncate(time.Hour)

	booking, err := env.service.CreateBooking(context.Background(), testUserID, createRequest(start, start.Add(2*time.Hour)))
	require.NoError(t, err)

	assert.Equal(t, models.BookingStatusPending, booking.Status)
	assert.Equal(t, models.PaymentStatusPending, booking.PaymentStatus)
	assert.Greater(t, booking.BasePrice, 0.0)
	assert.Greater(t, booking.TotalPrice, 0.0)
	assert.LessOrEqual(t, booking.TotalPrice, booking.BasePrice)
	assert.Equal(t, 1, env.notifier.created)
}

func TestCreateBookingRejectsOverlap(t *testing.T) {
	env := newTestEnv(t)
	start := time.Now().Add(48 * time.Hour).Truncate(time.Hour)

	_, err := env.service.CreateBooking(context.Background(), testUserID, createRequest(start, start.Add(2*time.Hour)))
	require.NoError(t, err)

	// Same window.
	_, err = env.service.CreateBooking(context.Background(), otherUserID, createRequest(start, start.Add(2*time.Hour)))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))

	// Partial overlap.
	_, err = env.service.CreateBooking(context.Background(), otherUserID, createRequest(start.Add(time.Hour), start.Add(3*time.Hour)))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestCreateBookingConcurrentSameSlot(t *testing.T) {
	env := newTestEnv(t)
	start := time.Now().Add(48 * time.Hour).Truncate(time.Hour)

	// Race N creations of the same window; the conditional write lets
	// exactly one through.
	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.service.CreateBooking(context.Background(), testUserID, createRequest(start, start.Add(2*time.Hour)))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
	}
	assert.Equal(t, 1, succeeded)
}

func TestCreateBookingAllowsBackToBack(t *testing.T) {
	env := newTestEnv(t)
	start := time.Now().Add(48 * time.Hour).Truncate(time.Hour)

	_, err := env.service.CreateBooking(context.Background(), testUserID, createRequest(start, start.Add(2*time.Hour)))
	require.NoError(t, err)

	// A window starting exactly where the first ends shares only the
	// boundary instant and must be accepted.
	_, err = env.service.CreateBooking(context.Background(), otherUserID, createRequest(start.Add(2*time.Hour), start.Add(4*time.Hour)))
	assert.NoError(t, err)
}

func TestCreateBookingDurationBounds(t *testing.T) {
	env := newTestEnv(t)
	start := time.Now().Add(48 * time.Hour).Truncate(time.Hour)

	// Below the minimum.
	_, err := env.service.CreateBooking(context.Background(), testUserID, createRequest(start, start.Add(30*time.Minute)))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	// Exactly one hour is allowed.
	_, err = env.service.CreateBooking(context.Background(), testUserID, createRequest(start, start.Add(time.Hour)))
	assert.NoError(t, err)

	// Exactly 24 hours is allowed.
	farStart := start.AddDate(0, 0, 7)
	_, err = env.service.CreateBooking(context.Background(), testUserID, createRequest(farStart, farStart.Add(24*time.Hour)))
	assert.NoError(t, err)

	// Over the maximum.
	farStart2 := start.AddDate(0, 0, 14)
	_, err = env.service.CreateBooking(context.Background(), testUserID, createRequest(farStart2, farStart2.Add(25*time.Hour)))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestCreateBookingRejectsPastStart(t *testing.T) {
	env := newTestEnv(t)
	start := time.Now().Add(-time.Hour)

	_, err := env.service.CreateBooking(context.Background(), testUserID, createRequest(start, start.Add(2*time.Hour)))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestCreateBookingRejectsInactiveVenue(t *testing.T) {
	env := newTestEnv(t)
	env.venues.venues[testVenueID].IsActive = false
	start := time.Now().Add(48 * time.Hour).Truncate(time.Hour)

	_, err := env.service.CreateBooking(context.Background(), testUserID, createRequest(start, start.Add(2*time.Hour)))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestCreateBookingRejectsOverCapacity(t *testing.T) {
	env := newTestEnv(t)
	start := time.Now().Add(48 * time.Hour).Truncate(time.Hour)

	req := createRequest(start, start.Add(2*time.Hour))
	req.Participants = 11

	_, err := env.service.CreateBooking(context.Background(), testUserID, req)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestCreateBookingConsumesPromoUsage(t *testing.T) {
	now := time.Now()
	promo := &models.PromoCode{
		ID:            mustID("64f000000000000000000020"),
		Code:          "SAVE10",
		DiscountType:  models.DiscountTypePercentage,
		DiscountValue: 10,
		UsageLimit:    2,
		IsActive:      true,
		ValidFrom:     now.AddDate(0, 0, -1),
		ValidUntil:    now.AddDate(0, 1, 0),
	}
	env := newTestEnv(t, promo)
	start := now.Add(48 * time.Hour).Truncate(time.Hour)

	req := createRequest(start, start.Add(2*time.Hour))
	req.PromoCodes = []string{"SAVE10"}

	booking, err := env.service.CreateBooking(context.Background(), testUserID, req)
	require.NoError(t, err)
	require.Len(t, booking.AppliedPromoCodes, 1)
	assert.Equal(t, 1, promo.UsedCount)
	assert.Greater(t, booking.DiscountAmount, 0.0)

	// Cancelling does not hand the grant back.
	_, err = env.service.CancelBooking(context.Background(), booking.ID, testUserID, "user", "plans changed")
	require.NoError(t, err)
	assert.Equal(t, 1, promo.UsedCount)
}

func TestCreateBookingInvalidatesPromoCache(t *testing.T) {
	now := time.Now()
	promo := &models.PromoCode{
		ID:            mustID("64f000000000000000000022"),
		Code:          "SAVE10",
		DiscountType:  models.DiscountTypePercentage,
		DiscountValue: 10,
		UsageLimit:    2,
		IsActive:      true,
		ValidFrom:     now.AddDate(0, 0, -1),
		ValidUntil:    now.AddDate(0, 1, 0),
	}
	env := newTestEnvWithCache(t, newFakeCache(), promo)
	start := now.Add(48 * time.Hour).Truncate(time.Hour)

	req := createRequest(start, start.Add(2*time.Hour))
	req.PromoCodes = []string{"SAVE10"}

	booking, err := env.service.CreateBooking(context.Background(), testUserID, req)
	require.NoError(t, err)
	require.Len(t, booking.AppliedPromoCodes, 1)

	// The code's cached copy predates the in-transaction usage bump; it
	// has to be dropped so reads see the remaining uses.
	assert.Contains(t, env.cache.deletedKeys(), utils.CachePromoPrefix+"SAVE10")
}

func TestCreateBookingVenueLockHeld(t *testing.T) {
	cache := newFakeCache()
	cache.hold(utils.CacheBookingLockPrefix + testVenueID.Hex())
	env := newTestEnvWithCache(t, cache)
	start := time.Now().Add(48 * time.Hour).Truncate(time.Hour)

	_, err := env.service.CreateBooking(context.Background(), testUserID, createRequest(start, start.Add(2*time.Hour)))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestCreateBookingExhaustedPromoStillBooks(t *testing.T) {
	now := time.Now()
	promo := &models.PromoCode{
		ID:            mustID("64f000000000000000000021"),
		Code:          "GONE",
		DiscountType:  models.DiscountTypePercentage,
		DiscountValue: 10,
		UsageLimit:    1,
		UsedCount:     1,
		IsActive:      true,
		ValidFrom:     now.AddDate(0, 0, -1),
		ValidUntil:    now.AddDate(0, 1, 0),
	}
	env := newTestEnv(t, promo)
	start := now.Add(48 * time.Hour).Truncate(time.Hour)

	req := createRequest(start, start.Add(2*time.Hour))
	req.PromoCodes = []string{"GONE"}

	// The exhausted code contributes nothing but the booking goes through.
	booking, err := env.service.CreateBooking(context.Background(), testUserID, req)
	require.NoError(t, err)
	assert.Empty(t, booking.AppliedPromoCodes)
	assert.Equal(t, 0.0, booking.DiscountAmount)
	assert.Equal(t, 1, promo.UsedCount)
}

func TestUpdateBookingKeepsPriceSnapshot(t *testing.T) {
	env := newTestEnv(t)
	start := time.Now().Add(48 * time.Hour).Truncate(time.Hour)

	booking, err := env.service.CreateBooking(context.Background(), testUserID, createRequest(start, start.Add(2*time.Hour)))
	require.NoError(t, err)
	originalTotal := booking.TotalPrice
	originalBase := booking.BasePrice

	newStart := start.AddDate(0, 0, 1)
	newEnd := newStart.Add(3 * time.Hour)
	updated, err := env.service.UpdateBooking(context.Background(), booking.ID, testUserID, "user", &validators.UpdateBookingRequest{
		StartTime: &newStart,
		EndTime:   &newEnd,
	})
	require.NoError(t, err)

	assert.Equal(t, newStart, updated.StartTime)
	assert.Equal(t, newEnd, updated.EndTime)
	assert.Equal(t, originalTotal, updated.TotalPrice)
	assert.Equal(t, originalBase, updated.BasePrice)
}

func TestUpdateBookingRejectsOverlap(t *testing.T) {
	env := newTestEnv(t)
	start := time.Now().Add(48 * time.Hour).Truncate(time.Hour)

	first, err := env.service.CreateBooking(context.Background(), testUserID, createRequest(start, start.Add(2*time.Hour)))
	require.NoError(t, err)

	second, err := env.service.CreateBooking(context.Background(), otherUserID, createRequest(start.Add(3*time.Hour), start.Add(5*time.Hour)))
	require.NoError(t, err)

	// Moving the second onto the first must conflict.
	newStart := first.StartTime.Add(time.Hour)
	newEnd := newStart.Add(2 * time.Hour)
	_, err = env.service.UpdateBooking(context.Background(), second.ID, otherUserID, "user", &validators.UpdateBookingRequest{
		StartTime: &newStart,
		EndTime:   &newEnd,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestUpdateBookingConcurrentSameTarget(t *testing.T) {
	env := newTestEnv(t)
	base := time.Now().Add(48 * time.Hour).Truncate(time.Hour)

	// Distinct non-overlapping bookings, all about to be moved onto the
	// same free window.
	const attempts = 4
	bookings := make([]*models.Booking, attempts)
	for i := 0; i < attempts; i++ {
		bookings[i] = env.seed(t, models.BookingStatusPending, models.PaymentStatusPending, base.Add(time.Duration(i)*3*time.Hour), base.Add(time.Duration(i)*3*time.Hour+2*time.Hour), 100)
	}

	target := base.Add(24 * time.Hour)
	targetEnd := target.Add(2 * time.Hour)
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.service.UpdateBooking(context.Background(), bookings[i].ID, testUserID, "user", &validators.UpdateBookingRequest{
				StartTime: &target,
				EndTime:   &targetEnd,
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
	}
	assert.Equal(t, 1, succeeded)
}

func TestUpdateBookingForbiddenForOtherUser(t *testing.T) {
	env := newTestEnv(t)
	start := time.Now().Add(48 * time.Hour).Truncate(time.Hour)

	booking, err := env.service.CreateBooking(context.Background(), testUserID, createRequest(start, start.Add(2*time.Hour)))
	require.NoError(t, err)

	participants := 3
	_, err = env.service.UpdateBooking(context.Background(), booking.ID, otherUserID, "user", &validators.UpdateBookingRequest{
		Participants: &participants,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
}

func TestCancelBookingRefundTiers(t *testing.T) {
	tests := []struct {
		name              string
		hoursUntilStart   time.Duration
		wantRefund        float64
		wantPaymentStatus models.PaymentStatus
	}{
		{"full refund at 25 hours", 25 * time.Hour, 80, models.PaymentStatusRefunded},
		{"half refund at 15 hours", 15 * time.Hour, 40, models.PaymentStatusPartiallyRefunded},
		{"no refund at 10 hours", 10 * time.Hour, 0, models.PaymentStatusPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			start := time.Now().Add(tt.hoursUntilStart)
			booking := env.seed(t, models.BookingStatusConfirmed, models.PaymentStatusPaid, start, start.Add(2*time.Hour), 80)

			cancelled, err := env.service.CancelBooking(context.Background(), booking.ID, testUserID, "user", "weather")
			require.NoError(t, err)

			assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)
			assert.Equal(t, tt.wantRefund, cancelled.RefundAmount)
			assert.Equal(t, tt.wantPaymentStatus, cancelled.PaymentStatus)
			assert.Equal(t, "weather", cancelled.CancellationReason)
		})
	}
}

func TestCancelUnpaidBookingHasNoRefund(t *testing.T) {
	env := newTestEnv(t)
	start := time.Now().Add(48 * time.Hour)
	booking := env.seed(t, models.BookingStatusPending, models.PaymentStatusPending, start, start.Add(2*time.Hour), 80)

	cancelled, err := env.service.CancelBooking(context.Background(), booking.ID, testUserID, "user", "changed plans")
	require.NoError(t, err)

	assert.Equal(t, 0.0, cancelled.RefundAmount)
	assert.Equal(t, models.PaymentStatusPending, cancelled.PaymentStatus)
}

func TestCancelAfterStartRejected(t *testing.T) {
	env := newTestEnv(t)
	start := time.Now().Add(-time.Hour)
	booking := env.seed(t, models.BookingStatusConfirmed, models.PaymentStatusPaid, start, start.Add(2*time.Hour), 80)

	_, err := env.service.CancelBooking(context.Background(), booking.ID, testUserID, "user", "too late")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestConfirmPaymentTransitions(t *testing.T) {
	env := newTestEnv(t)
	start := time.Now().Add(48 * time.Hour)
	booking := env.seed(t, models.BookingStatusPending, models.PaymentStatusPending, start, start.Add(2*time.Hour), 100)

	req := &validators.ConfirmPaymentRequest{TransactionID: "txn-1", PaymentMethod: "card"}
	confirmed, err := env.service.ConfirmPayment(context.Background(), booking.ID, testUserID, "user", req)
	require.NoError(t, err)

	assert.Equal(t, models.BookingStatusConfirmed, confirmed.Status)
	assert.Equal(t, models.PaymentStatusPaid, confirmed.PaymentStatus)
	assert.Equal(t, "txn-1", confirmed.TransactionID)
	assert.Equal(t, 1, env.notifier.confirmed)

	// Confirming twice is a validation failure, not a double charge.
	_, err = env.service.ConfirmPayment(context.Background(), booking.ID, testUserID, "user", req)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestCheckInWindow(t *testing.T) {
	env := newTestEnv(t)

	// Starting in 10 minutes: inside the early check-in window.
	start := time.Now().Add(10 * time.Minute)
	booking := env.seed(t, models.BookingStatusConfirmed, models.PaymentStatusPaid, start, start.Add(2*time.Hour), 100)

	checkedIn, err := env.service.CheckIn(context.Background(), booking.ID, testUserID, "user")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCheckedIn, checkedIn.Status)
	require.NotNil(t, checkedIn.CheckInTime)

	// Starting in 2 hours: too early.
	farStart := time.Now().Add(2 * time.Hour)
	early := env.seed(t, models.BookingStatusConfirmed, models.PaymentStatusPaid, farStart, farStart.Add(2*time.Hour), 100)

	_, err = env.service.CheckIn(context.Background(), early.ID, testUserID, "user")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestCheckOutCompletes(t *testing.T) {
	env := newTestEnv(t)
	start := time.Now().Add(-time.Hour)
	booking := env.seed(t, models.BookingStatusCheckedIn, models.PaymentStatusPaid, start, start.Add(2*time.Hour), 100)

	completed, err := env.service.CheckOut(context.Background(), booking.ID, testUserID, "user")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCompleted, completed.Status)
	require.NotNil(t, completed.CheckOutTime)
}

func TestCheckInBookingOwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	start := time.Now().Add(10 * time.Minute)
	booking := env.seed(t, models.BookingStatusConfirmed, models.PaymentStatusPaid, start, start.Add(2*time.Hour), 100)

	// Checking in is the booking owner's move; the venue side cannot do it
	// on their behalf.
	_, err := env.service.CheckIn(context.Background(), booking.ID, testOwnerID, "venue_owner")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	checkedIn, err := env.service.CheckIn(context.Background(), booking.ID, testUserID, "user")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCheckedIn, checkedIn.Status)
}

func TestCheckOutBookingOwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	start := time.Now().Add(-time.Hour)
	booking := env.seed(t, models.BookingStatusCheckedIn, models.PaymentStatusPaid, start, start.Add(2*time.Hour), 100)

	_, err := env.service.CheckOut(context.Background(), booking.ID, testOwnerID, "venue_owner")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	completed, err := env.service.CheckOut(context.Background(), booking.ID, testUserID, "user")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCompleted, completed.Status)
}

func TestMarkNoShowVenueOwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	start := time.Now().Add(-3 * time.Hour)
	booking := env.seed(t, models.BookingStatusConfirmed, models.PaymentStatusPaid, start, start.Add(2*time.Hour), 100)

	// The booking owner cannot declare their own no-show.
	_, err := env.service.MarkNoShow(context.Background(), booking.ID, testUserID, "user")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	// The venue owner can.
	noShow, err := env.service.MarkNoShow(context.Background(), booking.ID, testOwnerID, "venue_owner")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusNoShow, noShow.Status)
	assert.Equal(t, 1, env.notifier.noShows)
}

func TestMarkNoShowBeforeWindowEndsRejected(t *testing.T) {
	env := newTestEnv(t)
	start := time.Now().Add(-30 * time.Minute)
	booking := env.seed(t, models.BookingStatusConfirmed, models.PaymentStatusPaid, start, start.Add(2*time.Hour), 100)

	_, err := env.service.MarkNoShow(context.Background(), booking.ID, testOwnerID, "venue_owner")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestCheckAvailability(t *testing.T) {
	env := newTestEnv(t)
	start := time.Now().Add(48 * time.Hour).Truncate(time.Hour)

	_, err := env.service.CreateBooking(context.Background(), testUserID, createRequest(start, start.Add(2*time.Hour)))
	require.NoError(t, err)

	// Free window.
	result, err := env.service.CheckAvailability(context.Background(), testVenueID, start.Add(4*time.Hour), start.Add(6*time.Hour))
	require.NoError(t, err)
	assert.True(t, result.Available)
	assert.Empty(t, result.ConflictingBookings)

	// Taken window: unavailable, with alternatives that dodge the calendar.
	result, err = env.service.CheckAvailability(context.Background(), testVenueID, start, start.Add(2*time.Hour))
	require.NoError(t, err)
	assert.False(t, result.Available)
	assert.Len(t, result.ConflictingBookings, 1)
	for _, slot := range result.SuggestedSlots {
		overlaps := slot.StartTime.Before(start.Add(2*time.Hour)) && start.Before(slot.EndTime)
		assert.False(t, overlaps, "suggested slot %v overlaps the taken window", slot)
	}
}

func TestScanAndSendReminders(t *testing.T) {
	env := newTestEnv(t)
	start := time.Now().Add(time.Hour)
	booking := env.seed(t, models.BookingStatusConfirmed, models.PaymentStatusPaid, start, start.Add(2*time.Hour), 100)

	require.NoError(t, env.service.ScanAndSendReminders(context.Background(), 2*time.Hour))
	assert.Equal(t, 1, env.notifier.reminders)

	stored, err := env.bookings.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.ReminderSentAt)

	// Already-reminded bookings are not picked up again.
	require.NoError(t, env.service.ScanAndSendReminders(context.Background(), 2*time.Hour))
	assert.Equal(t, 1, env.notifier.reminders)
}
