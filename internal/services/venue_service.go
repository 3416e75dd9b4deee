package services

import (
	"context"

	"courtside/internal/apperrors"
	"courtside/internal/models"
	"courtside/internal/repositories/interfaces"
	"courtside/internal/utils"
	"courtside/internal/validators"
	"courtside/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VenueService interface {
	CreateVenue(ctx context.Context, ownerID primitive.ObjectID, req *validators.CreateVenueRequest) (*models.Venue, error)
	GetVenue(ctx context.Context, id primitive.ObjectID) (*models.Venue, error)
	UpdateVenue(ctx context.Context, id, actorID primitive.ObjectID, actorType string, req *validators.UpdateVenueRequest) (*models.Venue, error)
	DeleteVenue(ctx context.Context, id, actorID primitive.ObjectID, actorType string) error
	GetActiveVenues(ctx context.Context, params *utils.PaginationParams) ([]*models.Venue, int64, error)
	GetVenuesByOwner(ctx context.Context, ownerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Venue, int64, error)
	GetVenuesByCity(ctx context.Context, city string, params *utils.PaginationParams) ([]*models.Venue, int64, error)
}

type venueService struct {
	venueRepo interfaces.VenueRepository
	logger    *logger.Logger
}

func NewVenueService(venueRepo interfaces.VenueRepository, logger *logger.Logger) VenueService {
	return &venueService{
		venueRepo: venueRepo,
		logger:    logger,
	}
}

func (s *venueService) CreateVenue(ctx context.Context, ownerID primitive.ObjectID, req *validators.CreateVenueRequest) (*models.Venue, error) {
	if verrs := validators.ValidateCreateVenue(req); len(verrs) > 0 {
		return nil, apperrors.Validation(verrs.Error())
	}

	currency := req.Currency
	if currency == "" {
		currency = utils.DefaultCurrency
	}

	venue := &models.Venue{
		OwnerID:     ownerID,
		Name:        req.Name,
		Description: req.Description,
		Sport:       models.SportType(req.Sport),
		Address:     req.Address,
		City:        req.City,
		HourlyRate:  req.HourlyRate,
		Currency:    currency,
		OpenHour:    req.OpenHour,
		CloseHour:   req.CloseHour,
		Capacity:    req.Capacity,
		IsActive:    true,
	}

	if err := s.venueRepo.Create(ctx, venue); err != nil {
		return nil, err
	}

	s.logger.WithVenueID(venue.ID).WithUserID(ownerID).Info("Venue created")

	return venue, nil
}

func (s *venueService) GetVenue(ctx context.Context, id primitive.ObjectID) (*models.Venue, error) {
	return s.venueRepo.GetByID(ctx, id)
}

func (s *venueService) UpdateVenue(ctx context.Context, id, actorID primitive.ObjectID, actorType string, req *validators.UpdateVenueRequest) (*models.Venue, error) {
	if verrs := validators.ValidateStruct(req); len(verrs) > 0 {
		return nil, apperrors.Validation(verrs.Error())
	}

	venue, err := s.venueRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeOwner(venue, actorID, actorType); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.HourlyRate != nil {
		updates["hourly_rate"] = *req.HourlyRate
	}
	if req.OpenHour != nil {
		updates["open_hour"] = *req.OpenHour
	}
	if req.CloseHour != nil {
		updates["close_hour"] = *req.CloseHour
	}
	if req.Capacity != nil {
		updates["capacity"] = *req.Capacity
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		return venue, nil
	}

	if err := s.venueRepo.Update(ctx, id, updates); err != nil {
		return nil, err
	}

	return s.venueRepo.GetByID(ctx, id)
}

func (s *venueService) DeleteVenue(ctx context.Context, id, actorID primitive.ObjectID, actorType string) error {
	venue, err := s.venueRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizeOwner(venue, actorID, actorType); err != nil {
		return err
	}

	return s.venueRepo.Delete(ctx, id)
}

func (s *venueService) GetActiveVenues(ctx context.Context, params *utils.PaginationParams) ([]*models.Venue, int64, error) {
	return s.venueRepo.GetActive(ctx, params)
}

func (s *venueService) GetVenuesByOwner(ctx context.Context, ownerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Venue, int64, error) {
	return s.venueRepo.GetByOwner(ctx, ownerID, params)
}

func (s *venueService) GetVenuesByCity(ctx context.Context, city string, params *utils.PaginationParams) ([]*models.Venue, int64, error) {
	return s.venueRepo.GetByCity(ctx, city, params)
}

func (s *venueService) authorizeOwner(venue *models.Venue, actorID primitive.ObjectID, actorType string) error {
	if actorType == "admin" || venue.OwnerID == actorID {
		return nil
	}
	return apperrors.Forbidden("only the venue owner may perform this action")
}
