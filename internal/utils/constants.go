package utils

import "time"

// Application Constants
const (
	AppName    = "Courtside"
	AppVersion = "1.0.0"

	// Default values
	DefaultCurrency = "USD"
	DefaultTimeZone = "UTC"

	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1

	// Booking Constants
	MaxNotesLength              = 500
	MaxCancellationReasonLength = 255
	MaxPromoCodesPerBooking     = 5
	SuggestedSlotCount          = 3
	SuggestedSlotDuration       = 2 * time.Hour
	SuggestedSlotStartHour      = 9

	// Advisory lock around booking creation
	BookingLockTTL = 10 * time.Second

	// Reminder scan
	ReminderLeadTime     = 2 * time.Hour
	ReminderScanInterval = 5 * time.Minute

	// Cache TTLs
	VenueCacheTTL = 10 * time.Minute
	PromoCacheTTL = 30 * time.Minute
)

// HTTP Status Messages
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error Messages
const (
	ErrInternalServer   = "internal server error"
	ErrUnauthorized     = "unauthorized"
	ErrForbidden        = "forbidden"
	ErrValidationFailed = "validation failed"
)

// Cache Keys
const (
	CacheVenuePrefix       = "venue:"
	CachePromoPrefix       = "promo_code:"
	CacheBookingLockPrefix = "booking_lock:"
)
