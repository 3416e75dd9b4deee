package handlers

import (
	"strconv"

	"courtside/internal/services"
	"courtside/internal/utils"
	"courtside/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PromoCodeHandler struct {
	promoService services.PromoCodeService
}

func NewPromoCodeHandler(promoService services.PromoCodeService) *PromoCodeHandler {
	return &PromoCodeHandler{
		promoService: promoService,
	}
}

// CreatePromoCode registers a new promo code; admin only
func (h *PromoCodeHandler) CreatePromoCode(c *gin.Context) {
	var request validators.CreatePromoCodeRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	promo, err := h.promoService.CreatePromoCode(c.Request.Context(), &request)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "Promo code created successfully", promo)
}

// GetPromoCode retrieves a promo code by id; admin only
func (h *PromoCodeHandler) GetPromoCode(c *gin.Context) {
	promoID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid promo code ID")
		return
	}

	promo, err := h.promoService.GetPromoCode(c.Request.Context(), promoID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Promo code retrieved", promo)
}

// UpdatePromoCode updates promo code settings; admin only
func (h *PromoCodeHandler) UpdatePromoCode(c *gin.Context) {
	promoID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid promo code ID")
		return
	}

	var request validators.UpdatePromoCodeRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	promo, err := h.promoService.UpdatePromoCode(c.Request.Context(), promoID, &request)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Promo code updated successfully", promo)
}

// DeletePromoCode removes a promo code; admin only
func (h *PromoCodeHandler) DeletePromoCode(c *gin.Context) {
	promoID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid promo code ID")
		return
	}

	if err := h.promoService.DeletePromoCode(c.Request.Context(), promoID); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Promo code deleted successfully", nil)
}

// ListPromoCodes lists promo codes; admin only
func (h *PromoCodeHandler) ListPromoCodes(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	activeOnly := c.Query("active") == "true"

	promos, total, err := h.promoService.ListPromoCodes(c.Request.Context(), activeOnly, params)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Promo codes retrieved", promos, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	})
}

// ValidatePromoCode previews a code's discount for a given amount and venue
func (h *PromoCodeHandler) ValidatePromoCode(c *gin.Context) {
	code := c.Param("code")

	amount, err := strconv.ParseFloat(c.Query("amount"), 64)
	if err != nil || amount <= 0 {
		utils.BadRequestResponse(c, "A positive amount query parameter is required")
		return
	}

	venueID, err := primitive.ObjectIDFromHex(c.Query("venue_id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid venue_id")
		return
	}

	result, err := h.promoService.ValidateCode(c.Request.Context(), code, amount, venueID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Promo code validated", result)
}
