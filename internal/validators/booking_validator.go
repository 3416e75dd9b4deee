package validators

import (
	"fmt"
	"strings"
	"time"

	"courtside/internal/models"
	"courtside/internal/utils"
)

type CreateBookingRequest struct {
	VenueID      string    `json:"venue_id" validate:"required,object_id"`
	StartTime    time.Time `json:"start_time" validate:"required"`
	EndTime      time.Time `json:"end_time" validate:"required"`
	Participants int       `json:"participants" validate:"required,min=1"`
	BookingType  string    `json:"booking_type" validate:"omitempty,oneof=casual training tournament"`
	PromoCodes   []string  `json:"promo_codes" validate:"omitempty,max=5,dive,promo_code"`
	Notes        string    `json:"notes" validate:"omitempty,max=500"`
}

type UpdateBookingRequest struct {
	StartTime    *time.Time `json:"start_time" validate:"omitempty"`
	EndTime      *time.Time `json:"end_time" validate:"omitempty"`
	Participants *int       `json:"participants" validate:"omitempty,min=1"`
	Notes        *string    `json:"notes" validate:"omitempty,max=500"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason" validate:"required,max=255"`
}

type ConfirmPaymentRequest struct {
	TransactionID string `json:"transaction_id" validate:"required,max=100"`
	PaymentMethod string `json:"payment_method" validate:"required,oneof=card wallet bank_transfer cash"`
}

type CheckAvailabilityRequest struct {
	VenueID   string    `json:"venue_id" validate:"required,object_id"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`
}

type PricePreviewRequest struct {
	VenueID      string    `json:"venue_id" validate:"required,object_id"`
	StartTime    time.Time `json:"start_time" validate:"required"`
	EndTime      time.Time `json:"end_time" validate:"required"`
	Participants int       `json:"participants" validate:"required,min=1"`
	PromoCodes   []string  `json:"promo_codes" validate:"omitempty,max=5,dive,promo_code"`
}

func ValidateCreateBooking(req *CreateBookingRequest, now time.Time) ValidationErrors {
	errors := ValidateStruct(req)
	errors = append(errors, validateBookingWindow(req.StartTime, req.EndTime, now)...)

	if hasDuplicateCodes(req.PromoCodes) {
		errors = append(errors, ValidationError{
			Field:   "promo_codes",
			Message: "Promo codes must be distinct",
		})
	}

	return errors
}

func ValidateUpdateBooking(req *UpdateBookingRequest) ValidationErrors {
	errors := ValidateStruct(req)

	// The window moves as a pair; a lone endpoint is ambiguous.
	if (req.StartTime == nil) != (req.EndTime == nil) {
		errors = append(errors, ValidationError{
			Field:   "start_time",
			Message: "Start and end time must be provided together",
		})
	}

	return errors
}

func ValidateAvailabilityWindow(start, end, now time.Time) ValidationErrors {
	return validateBookingWindow(start, end, now)
}

// validateBookingWindow enforces the shared window rules: future start,
// end strictly after start, duration within [1h, 24h] inclusive.
func validateBookingWindow(start, end, now time.Time) ValidationErrors {
	var errors ValidationErrors

	if start.IsZero() || end.IsZero() {
		return errors
	}

	if !start.After(now) {
		errors = append(errors, ValidationError{
			Field:   "start_time",
			Message: "Start time must be in the future",
		})
	}

	if !end.After(start) {
		errors = append(errors, ValidationError{
			Field:   "end_time",
			Message: "End time must be after start time",
		})
		return errors
	}

	duration := end.Sub(start)
	if duration < models.MinBookingDuration {
		errors = append(errors, ValidationError{
			Field:   "end_time",
			Message: fmt.Sprintf("Booking must be at least %s long", utils.FormatDuration(models.MinBookingDuration)),
		})
	}
	if duration > models.MaxBookingDuration {
		errors = append(errors, ValidationError{
			Field:   "end_time",
			Message: fmt.Sprintf("Booking must be at most %s long", utils.FormatDuration(models.MaxBookingDuration)),
		})
	}

	return errors
}

func hasDuplicateCodes(codes []string) bool {
	seen := make(map[string]bool, len(codes))
	for _, code := range codes {
		normalized := strings.ToUpper(strings.TrimSpace(code))
		if seen[normalized] {
			return true
		}
		seen[normalized] = true
	}
	return false
}
