package services

import (
	"context"
	"strings"
	"time"

	"courtside/internal/apperrors"
	"courtside/internal/models"
	"courtside/internal/pricing"
	"courtside/internal/repositories/interfaces"
	"courtside/internal/utils"
	"courtside/internal/validators"
	"courtside/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PromoValidationResult reports what a code would be worth against a given
// booking amount.
type PromoValidationResult struct {
	Code     string  `json:"code"`
	Valid    bool    `json:"valid"`
	Discount float64 `json:"discount"`
}

type PromoCodeService interface {
	CreatePromoCode(ctx context.Context, req *validators.CreatePromoCodeRequest) (*models.PromoCode, error)
	GetPromoCode(ctx context.Context, id primitive.ObjectID) (*models.PromoCode, error)
	UpdatePromoCode(ctx context.Context, id primitive.ObjectID, req *validators.UpdatePromoCodeRequest) (*models.PromoCode, error)
	DeletePromoCode(ctx context.Context, id primitive.ObjectID) error
	ListPromoCodes(ctx context.Context, activeOnly bool, params *utils.PaginationParams) ([]*models.PromoCode, int64, error)

	// ValidateCode is the preview endpoint: it never errors on a bad code,
	// it just reports a zero discount.
	ValidateCode(ctx context.Context, code string, bookingAmount float64, venueID primitive.ObjectID) (*PromoValidationResult, error)
}

type promoCodeService struct {
	promoRepo  interfaces.PromoCodeRepository
	calculator *pricing.Calculator
	logger     *logger.Logger
}

func NewPromoCodeService(promoRepo interfaces.PromoCodeRepository, calculator *pricing.Calculator, logger *logger.Logger) PromoCodeService {
	return &promoCodeService{
		promoRepo:  promoRepo,
		calculator: calculator,
		logger:     logger,
	}
}

func (s *promoCodeService) CreatePromoCode(ctx context.Context, req *validators.CreatePromoCodeRequest) (*models.PromoCode, error) {
	if verrs := validators.ValidateCreatePromoCode(req); len(verrs) > 0 {
		return nil, apperrors.Validation(verrs.Error())
	}

	venueIDs := make([]primitive.ObjectID, 0, len(req.ApplicableVenues))
	for _, hex := range req.ApplicableVenues {
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			return nil, apperrors.Validation("invalid venue id in applicable_venues")
		}
		venueIDs = append(venueIDs, id)
	}

	promo := &models.PromoCode{
		Code:              strings.ToUpper(strings.TrimSpace(req.Code)),
		Description:       req.Description,
		DiscountType:      models.DiscountType(req.DiscountType),
		DiscountValue:     req.DiscountValue,
		MaxDiscountAmount: req.MaxDiscountAmount,
		MinBookingAmount:  req.MinBookingAmount,
		UsageLimit:        req.UsageLimit,
		ApplicableVenues:  venueIDs,
		ValidFrom:         req.ValidFrom,
		ValidUntil:        req.ValidUntil,
		IsActive:          true,
	}

	if err := s.promoRepo.Create(ctx, promo); err != nil {
		return nil, err
	}

	s.logger.WithField("code", promo.Code).Info("Promo code created")

	return promo, nil
}

func (s *promoCodeService) GetPromoCode(ctx context.Context, id primitive.ObjectID) (*models.PromoCode, error) {
	return s.promoRepo.GetByID(ctx, id)
}

func (s *promoCodeService) UpdatePromoCode(ctx context.Context, id primitive.ObjectID, req *validators.UpdatePromoCodeRequest) (*models.PromoCode, error) {
	if verrs := validators.ValidateStruct(req); len(verrs) > 0 {
		return nil, apperrors.Validation(verrs.Error())
	}

	updates := make(map[string]interface{})
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.DiscountValue != nil {
		updates["discount_value"] = *req.DiscountValue
	}
	if req.MaxDiscountAmount != nil {
		updates["max_discount_amount"] = *req.MaxDiscountAmount
	}
	if req.MinBookingAmount != nil {
		updates["min_booking_amount"] = *req.MinBookingAmount
	}
	if req.UsageLimit != nil {
		updates["usage_limit"] = *req.UsageLimit
	}
	if req.ValidUntil != nil {
		updates["valid_until"] = *req.ValidUntil
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		return s.promoRepo.GetByID(ctx, id)
	}

	if err := s.promoRepo.Update(ctx, id, updates); err != nil {
		return nil, err
	}

	return s.promoRepo.GetByID(ctx, id)
}

func (s *promoCodeService) DeletePromoCode(ctx context.Context, id primitive.ObjectID) error {
	return s.promoRepo.Delete(ctx, id)
}

func (s *promoCodeService) ListPromoCodes(ctx context.Context, activeOnly bool, params *utils.PaginationParams) ([]*models.PromoCode, int64, error) {
	if activeOnly {
		return s.promoRepo.GetActive(ctx, params)
	}
	return s.promoRepo.List(ctx, params)
}

func (s *promoCodeService) ValidateCode(ctx context.Context, code string, bookingAmount float64, venueID primitive.ObjectID) (*PromoValidationResult, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))

	result := &PromoValidationResult{Code: normalized}

	promo, err := s.promoRepo.GetByCode(ctx, normalized)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return result, nil
		}
		return nil, err
	}

	discount := s.calculator.ApplyPromo(promo, bookingAmount, venueID, time.Now())
	result.Valid = discount > 0
	result.Discount = discount

	return result, nil
}
