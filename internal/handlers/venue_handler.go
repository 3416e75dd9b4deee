package handlers

import (
	"courtside/internal/middleware"
	"courtside/internal/models"
	"courtside/internal/services"
	"courtside/internal/utils"
	"courtside/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VenueHandler struct {
	venueService services.VenueService
}

func NewVenueHandler(venueService services.VenueService) *VenueHandler {
	return &VenueHandler{
		venueService: venueService,
	}
}

// CreateVenue registers a new venue owned by the authenticated user
func (h *VenueHandler) CreateVenue(c *gin.Context) {
	var request validators.CreateVenueRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	venue, err := h.venueService.CreateVenue(c.Request.Context(), ownerID, &request)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "Venue created successfully", venue)
}

// GetVenue retrieves a single venue
func (h *VenueHandler) GetVenue(c *gin.Context) {
	venueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid venue ID")
		return
	}

	venue, err := h.venueService.GetVenue(c.Request.Context(), venueID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Venue retrieved", venue)
}

// UpdateVenue updates venue details; owner only
func (h *VenueHandler) UpdateVenue(c *gin.Context) {
	venueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid venue ID")
		return
	}

	var request validators.UpdateVenueRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	venue, err := h.venueService.UpdateVenue(c.Request.Context(), venueID, userID, middleware.GetUserType(c), &request)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Venue updated successfully", venue)
}

// DeleteVenue deactivates a venue; owner only
func (h *VenueHandler) DeleteVenue(c *gin.Context) {
	venueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid venue ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	if err := h.venueService.DeleteVenue(c.Request.Context(), venueID, userID, middleware.GetUserType(c)); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Venue deleted successfully", nil)
}

// ListVenues lists active venues, optionally filtered by city
func (h *VenueHandler) ListVenues(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	var venues []*models.Venue
	var total int64
	var err error

	if city := c.Query("city"); city != "" {
		venues, total, err = h.venueService.GetVenuesByCity(c.Request.Context(), city, params)
	} else {
		venues, total, err = h.venueService.GetActiveVenues(c.Request.Context(), params)
	}
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Venues retrieved", venues, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	})
}

// GetMyVenues lists the authenticated owner's venues
func (h *VenueHandler) GetMyVenues(c *gin.Context) {
	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	params := utils.GetPaginationParams(c)
	venues, total, err := h.venueService.GetVenuesByOwner(c.Request.Context(), ownerID, params)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Venues retrieved", venues, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	})
}
