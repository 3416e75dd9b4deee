package pricing

import (
	"math"
	"time"

	"courtside/internal/models"
)

// Config holds the pricing knobs. Defaults match the published rate card.
type Config struct {
	PeakMultiplier   float64
	PeakStartHour    int
	EarlyBirdDays    int
	EarlyBirdPercent float64
	GroupThreshold   int
	GroupPercent     float64
}

func DefaultConfig() Config {
	return Config{
		PeakMultiplier:   1.5,
		PeakStartHour:    17,
		EarlyBirdDays:    7,
		EarlyBirdPercent: 0.10,
		GroupThreshold:   5,
		GroupPercent:     0.15,
	}
}

// Discount is a single line item in the price breakdown. Every discount is
// computed against the base price, not against the running discounted amount.
type Discount struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

type Quote struct {
	BasePrice      float64               `json:"base_price"`
	Discounts      []Discount            `json:"discounts"`
	DiscountAmount float64               `json:"discount_amount"`
	TotalPrice     float64               `json:"total_price"`
	PricingType    models.PricingType    `json:"pricing_type"`
	AppliedPromos  []models.AppliedPromo `json:"applied_promos"`
	Currency       string                `json:"currency"`
	DurationHours  float64               `json:"duration_hours"`
}

// Calculator prices a booking window. It is a pure component: callers pass in
// now explicitly so quotes are reproducible in tests.
type Calculator struct {
	config Config
}

func NewCalculator(config Config) *Calculator {
	return &Calculator{config: config}
}

// PricingTypeFor classifies a start time. Evenings (from the configured peak
// hour) and weekends are peak; everything else is off-peak.
func (c *Calculator) PricingTypeFor(start time.Time) models.PricingType {
	if start.Hour() >= c.config.PeakStartHour {
		return models.PricingTypePeak
	}
	switch start.Weekday() {
	case time.Saturday, time.Sunday:
		return models.PricingTypePeak
	}
	return models.PricingTypeOffPeak
}

// Quote computes the full price breakdown for a booking window. Promo codes
// that fail validation contribute zero and are skipped silently so one bad
// code never fails the whole booking.
func (c *Calculator) Quote(venue *models.Venue, start, end time.Time, participants int, promos []*models.PromoCode, now time.Time) *Quote {
	durationHours := end.Sub(start).Hours()

	pricingType := c.PricingTypeFor(start)
	rate := venue.HourlyRate
	if pricingType == models.PricingTypePeak {
		rate *= c.config.PeakMultiplier
	}
	base := RoundCents(rate * durationHours)

	quote := &Quote{
		BasePrice:     base,
		PricingType:   pricingType,
		Currency:      venue.Currency,
		DurationHours: durationHours,
	}

	if start.Sub(now) >= time.Duration(c.config.EarlyBirdDays)*24*time.Hour {
		quote.addDiscount("early_bird", RoundCents(base*c.config.EarlyBirdPercent))
	}

	if participants >= c.config.GroupThreshold {
		quote.addDiscount("group", RoundCents(base*c.config.GroupPercent))
	}

	for _, promo := range promos {
		amount := c.ApplyPromo(promo, base, venue.ID, now)
		if amount <= 0 {
			continue
		}
		quote.addDiscount("promo:"+promo.Code, amount)
		quote.AppliedPromos = append(quote.AppliedPromos, models.AppliedPromo{
			Code:     promo.Code,
			Discount: amount,
		})
	}

	total := base - quote.DiscountAmount
	if total < 0 {
		total = 0
	}
	quote.TotalPrice = RoundCents(total)

	return quote
}

func (q *Quote) addDiscount(label string, amount float64) {
	q.Discounts = append(q.Discounts, Discount{Label: label, Amount: amount})
	q.DiscountAmount = RoundCents(q.DiscountAmount + amount)
}

// RoundCents rounds a monetary amount to two decimal places.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
