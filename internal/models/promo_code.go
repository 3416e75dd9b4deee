package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

// PromoCode is an operator-issued discount token. UsedCount counts consumed
// grants: it is incremented atomically alongside booking creation and is never
// decremented when a booking is later cancelled.
type PromoCode struct {
	ID                primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Code              string               `json:"code" bson:"code" validate:"required"`
	Description       string               `json:"description" bson:"description"`
	DiscountType      DiscountType         `json:"discount_type" bson:"discount_type" validate:"required"`
	DiscountValue     float64              `json:"discount_value" bson:"discount_value" validate:"required,gt=0"`
	MaxDiscountAmount float64              `json:"max_discount_amount" bson:"max_discount_amount"`
	MinBookingAmount  float64              `json:"min_booking_amount" bson:"min_booking_amount"`
	UsageLimit        int                  `json:"usage_limit" bson:"usage_limit"`
	UsedCount         int                  `json:"used_count" bson:"used_count" default:"0"`
	ApplicableVenues  []primitive.ObjectID `json:"applicable_venues" bson:"applicable_venues"`
	ValidFrom         time.Time            `json:"valid_from" bson:"valid_from"`
	ValidUntil        time.Time            `json:"valid_until" bson:"valid_until"`
	IsActive          bool                 `json:"is_active" bson:"is_active" default:"true"`
	CreatedAt         time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at" bson:"updated_at"`
}

// AppliesToVenue reports whether the code may be used for the given venue. An
// empty allow-list means the code applies everywhere.
func (p *PromoCode) AppliesToVenue(venueID primitive.ObjectID) bool {
	if len(p.ApplicableVenues) == 0 {
		return true
	}
	for _, id := range p.ApplicableVenues {
		if id == venueID {
			return true
		}
	}
	return false
}

// HasRemainingUses reports whether the usage cap still allows another grant.
// A zero limit means unlimited.
func (p *PromoCode) HasRemainingUses() bool {
	return p.UsageLimit == 0 || p.UsedCount < p.UsageLimit
}
