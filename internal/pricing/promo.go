package pricing

import (
	"time"

	"courtside/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ApplyPromo returns the discount a promo code contributes against the given
// booking amount, or zero. It fails closed: any validation failure (missing,
// inactive, outside its validity window, over its usage cap, wrong venue, or
// below the minimum booking amount) yields zero rather than an error.
func (c *Calculator) ApplyPromo(code *models.PromoCode, bookingAmount float64, venueID primitive.ObjectID, now time.Time) float64 {
	if code == nil || !code.IsActive {
		return 0
	}
	if now.Before(code.ValidFrom) || now.After(code.ValidUntil) {
		return 0
	}
	if !code.HasRemainingUses() {
		return 0
	}
	if !code.AppliesToVenue(venueID) {
		return 0
	}
	if bookingAmount < code.MinBookingAmount {
		return 0
	}

	var discount float64
	switch code.DiscountType {
	case models.DiscountTypePercentage:
		discount = bookingAmount * code.DiscountValue / 100
	case models.DiscountTypeFixed:
		discount = code.DiscountValue
	default:
		return 0
	}

	if code.MaxDiscountAmount > 0 && discount > code.MaxDiscountAmount {
		discount = code.MaxDiscountAmount
	}

	return RoundCents(discount)
}
