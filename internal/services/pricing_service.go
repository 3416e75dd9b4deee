package services

import (
	"context"
	"time"

	"courtside/internal/apperrors"
	"courtside/internal/models"
	"courtside/internal/pricing"
	"courtside/internal/repositories/interfaces"
	"courtside/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PricingService interface {
	// PreviewPrice quotes a prospective booking without reserving anything.
	PreviewPrice(ctx context.Context, venueID primitive.ObjectID, start, end time.Time, participants int, promoCodes []string) (*pricing.Quote, error)

	// QuoteForVenue prices a window against an already-loaded venue and
	// returns the ids of the promo codes that actually contributed a
	// discount, in the order they were applied.
	QuoteForVenue(ctx context.Context, venue *models.Venue, start, end time.Time, participants int, promoCodes []string, now time.Time) (*pricing.Quote, []primitive.ObjectID, error)
}

type pricingService struct {
	venueRepo  interfaces.VenueRepository
	promoRepo  interfaces.PromoCodeRepository
	calculator *pricing.Calculator
	logger     *logger.Logger
}

func NewPricingService(
	venueRepo interfaces.VenueRepository,
	promoRepo interfaces.PromoCodeRepository,
	calculator *pricing.Calculator,
	logger *logger.Logger,
) PricingService {
	return &pricingService{
		venueRepo:  venueRepo,
		promoRepo:  promoRepo,
		calculator: calculator,
		logger:     logger,
	}
}

func (s *pricingService) PreviewPrice(ctx context.Context, venueID primitive.ObjectID, start, end time.Time, participants int, promoCodes []string) (*pricing.Quote, error) {
	venue, err := s.venueRepo.GetByID(ctx, venueID)
	if err != nil {
		return nil, err
	}
	if !venue.IsActive {
		return nil, apperrors.Validation("venue is not accepting bookings")
	}

	quote, _, err := s.QuoteForVenue(ctx, venue, start, end, participants, promoCodes, time.Now())
	return quote, err
}

func (s *pricingService) QuoteForVenue(ctx context.Context, venue *models.Venue, start, end time.Time, participants int, promoCodes []string, now time.Time) (*pricing.Quote, []primitive.ObjectID, error) {
	var promos []*models.PromoCode
	if len(promoCodes) > 0 {
		// Unknown codes are simply absent here; the calculator skips
		// anything that fails validation, so a bad code quietly
		// contributes nothing.
		found, err := s.promoRepo.GetByCodes(ctx, promoCodes)
		if err != nil {
			return nil, nil, err
		}
		promos = found
	}

	quote := s.calculator.Quote(venue, start, end, participants, promos, now)

	applied := make(map[string]bool, len(quote.AppliedPromos))
	for _, promo := range quote.AppliedPromos {
		applied[promo.Code] = true
	}

	var promoIDs []primitive.ObjectID
	for _, promo := range promos {
		if applied[promo.Code] {
			promoIDs = append(promoIDs, promo.ID)
		}
	}

	return quote, promoIDs, nil
}
