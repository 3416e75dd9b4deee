package models

import (
	"time"

	"courtside/internal/apperrors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingStatus string
type BookingType string
type PaymentStatus string
type PricingType string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCheckedIn BookingStatus = "checked_in"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusNoShow    BookingStatus = "no_show"

	BookingTypeCasual     BookingType = "casual"
	BookingTypeTraining   BookingType = "training"
	BookingTypeTournament BookingType = "tournament"

	PaymentStatusPending           PaymentStatus = "pending"
	PaymentStatusPaid              PaymentStatus = "paid"
	PaymentStatusRefunded          PaymentStatus = "refunded"
	PaymentStatusPartiallyRefunded PaymentStatus = "partially_refunded"

	PricingTypeStandard PricingType = "standard"
	PricingTypePeak     PricingType = "peak"
	PricingTypeOffPeak  PricingType = "off_peak"
)

const (
	MinBookingDuration = time.Hour
	MaxBookingDuration = 24 * time.Hour
	EarlyCheckInWindow = 30 * time.Minute
)

// AppliedPromo records a promo code that contributed a discount to the
// pricing snapshot at creation time.
type AppliedPromo struct {
	Code     string  `json:"code" bson:"code"`
	Discount float64 `json:"discount" bson:"discount"`
}

type Booking struct {
	ID                 primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	VenueID            primitive.ObjectID `json:"venue_id" bson:"venue_id" validate:"required"`
	UserID             primitive.ObjectID `json:"user_id" bson:"user_id" validate:"required"`
	BookingType        BookingType        `json:"booking_type" bson:"booking_type" default:"casual"`
	Status             BookingStatus      `json:"status" bson:"status" default:"pending"`
	StartTime          time.Time          `json:"start_time" bson:"start_time" validate:"required"`
	EndTime            time.Time          `json:"end_time" bson:"end_time" validate:"required"`
	Participants       int                `json:"participants" bson:"participants" validate:"required,min=1"`
	BasePrice          float64            `json:"base_price" bson:"base_price"`
	DiscountAmount     float64            `json:"discount_amount" bson:"discount_amount" default:"0"`
	TotalPrice         float64            `json:"total_price" bson:"total_price"`
	PricingType        PricingType        `json:"pricing_type" bson:"pricing_type" default:"standard"`
	AppliedPromoCodes  []AppliedPromo     `json:"applied_promo_codes" bson:"applied_promo_codes"`
	Currency           string             `json:"currency" bson:"currency" default:"USD"`
	PaymentStatus      PaymentStatus      `json:"payment_status" bson:"payment_status" default:"pending"`
	TransactionID      string             `json:"transaction_id" bson:"transaction_id"`
	PaymentMethod      string             `json:"payment_method" bson:"payment_method"`
	RefundAmount       float64            `json:"refund_amount" bson:"refund_amount" default:"0"`
	CheckInTime        *time.Time         `json:"check_in_time" bson:"check_in_time"`
	CheckOutTime       *time.Time         `json:"check_out_time" bson:"check_out_time"`
	CancelledAt        *time.Time         `json:"cancelled_at" bson:"cancelled_at"`
	RefundedAt         *time.Time         `json:"refunded_at" bson:"refunded_at"`
	ReminderSentAt     *time.Time         `json:"reminder_sent_at" bson:"reminder_sent_at"`
	Notes              string             `json:"notes" bson:"notes"`
	CancellationReason string             `json:"cancellation_reason" bson:"cancellation_reason"`
	CreatedAt          time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at" bson:"updated_at"`
}

// ActiveBookingStatuses are the statuses that hold a venue slot. Completed,
// cancelled and no_show bookings never block new reservations.
var ActiveBookingStatuses = []BookingStatus{BookingStatusPending, BookingStatusConfirmed}

func (b *Booking) Duration() time.Duration {
	return b.EndTime.Sub(b.StartTime)
}

func (b *Booking) HoursUntilStart(now time.Time) float64 {
	return b.StartTime.Sub(now).Hours()
}

// IsActive reports whether this booking currently holds its slot.
func (b *Booking) IsActive() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}

func (b *Booking) IsTerminal() bool {
	switch b.Status {
	case BookingStatusCompleted, BookingStatusCancelled, BookingStatusNoShow:
		return true
	}
	return false
}

// Overlaps reports whether the half-open window [start, end) intersects this
// booking's window.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartTime.Before(end) && start.Before(b.EndTime)
}

// CanConfirmPayment guards the pending -> confirmed transition.
func (b *Booking) CanConfirmPayment() error {
	if b.Status != BookingStatusPending {
		return apperrors.Validationf("cannot confirm payment for a %s booking", b.Status)
	}
	return nil
}

// CanCheckIn guards confirmed -> checked_in. Check-in opens 30 minutes before
// the start time and closes when the window ends.
func (b *Booking) CanCheckIn(now time.Time) error {
	if b.Status != BookingStatusConfirmed {
		return apperrors.Validationf("cannot check in a %s booking", b.Status)
	}
	if now.Before(b.StartTime.Add(-EarlyCheckInWindow)) {
		return apperrors.Validation("cannot check in more than 30 minutes before the start time")
	}
	if now.After(b.EndTime) {
		return apperrors.Validation("cannot check in after the booking window has ended")
	}
	return nil
}

// CanCheckOut guards checked_in -> completed.
func (b *Booking) CanCheckOut() error {
	if b.Status != BookingStatusCheckedIn {
		return apperrors.Validationf("cannot check out a %s booking", b.Status)
	}
	return nil
}

// CanCancel guards pending/confirmed -> cancelled. A booking cannot be
// cancelled once its window has started.
func (b *Booking) CanCancel(now time.Time) error {
	if !b.IsActive() {
		return apperrors.Validationf("cannot cancel a %s booking", b.Status)
	}
	if !b.StartTime.After(now) {
		return apperrors.Validation("cannot cancel a booking after its start time")
	}
	return nil
}

// CanMarkNoShow guards confirmed -> no_show, which is only reachable once the
// booking window has fully elapsed without a check-in.
func (b *Booking) CanMarkNoShow(now time.Time) error {
	if b.Status != BookingStatusConfirmed {
		return apperrors.Validationf("cannot mark a %s booking as no-show", b.Status)
	}
	if now.Before(b.EndTime) {
		return apperrors.Validation("cannot mark no-show before the booking window has ended")
	}
	return nil
}

// CanUpdate guards time/participant changes, which are only allowed while the
// booking still holds its slot.
func (b *Booking) CanUpdate() error {
	if !b.IsActive() {
		return apperrors.Validationf("cannot update a %s booking", b.Status)
	}
	return nil
}
