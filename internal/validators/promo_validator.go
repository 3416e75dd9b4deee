package validators

import "time"

type CreatePromoCodeRequest struct {
	Code              string    `json:"code" validate:"required,promo_code"`
	Description       string    `json:"description" validate:"omitempty,max=255"`
	DiscountType      string    `json:"discount_type" validate:"required,oneof=percentage fixed"`
	DiscountValue     float64   `json:"discount_value" validate:"required,gt=0"`
	MaxDiscountAmount float64   `json:"max_discount_amount" validate:"omitempty,gt=0"`
	MinBookingAmount  float64   `json:"min_booking_amount" validate:"omitempty,gte=0"`
	UsageLimit        int       `json:"usage_limit" validate:"omitempty,min=0"`
	ApplicableVenues  []string  `json:"applicable_venues" validate:"omitempty,dive,object_id"`
	ValidFrom         time.Time `json:"valid_from" validate:"required"`
	ValidUntil        time.Time `json:"valid_until" validate:"required"`
}

type UpdatePromoCodeRequest struct {
	Description       *string    `json:"description" validate:"omitempty,max=255"`
	DiscountValue     *float64   `json:"discount_value" validate:"omitempty,gt=0"`
	MaxDiscountAmount *float64   `json:"max_discount_amount" validate:"omitempty,gt=0"`
	MinBookingAmount  *float64   `json:"min_booking_amount" validate:"omitempty,gte=0"`
	UsageLimit        *int       `json:"usage_limit" validate:"omitempty,min=0"`
	ValidUntil        *time.Time `json:"valid_until" validate:"omitempty"`
	IsActive          *bool      `json:"is_active"`
}

func ValidateCreatePromoCode(req *CreatePromoCodeRequest) ValidationErrors {
	errors := ValidateStruct(req)

	if !req.ValidUntil.After(req.ValidFrom) {
		errors = append(errors, ValidationError{
			Field:   "valid_until",
			Message: "Validity window must end after it starts",
		})
	}

	if req.DiscountType == "percentage" && req.DiscountValue > 100 {
		errors = append(errors, ValidationError{
			Field:   "discount_value",
			Message: "Percentage discount cannot exceed 100",
		})
	}

	return errors
}
