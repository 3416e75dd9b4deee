package handlers

import (
	"context"
	"errors"
	"time"

	"courtside/internal/middleware"
	"courtside/internal/models"
	"courtside/internal/services"
	"courtside/internal/utils"
	"courtside/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingHandler struct {
	bookingService services.BookingService
	pricingService services.PricingService
}

func NewBookingHandler(bookingService services.BookingService, pricingService services.PricingService) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		pricingService: pricingService,
	}
}

// CreateBooking reserves a venue slot for the authenticated user
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var request validators.CreateBookingRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	booking, err := h.bookingService.CreateBooking(c.Request.Context(), userID, &request)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "Booking created successfully", booking)
}

// CheckAvailability reports whether a window is free and suggests alternatives
func (h *BookingHandler) CheckAvailability(c *gin.Context) {
	var request validators.CheckAvailabilityRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	venueID, err := primitive.ObjectIDFromHex(request.VenueID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid venue ID")
		return
	}

	result, err := h.bookingService.CheckAvailability(c.Request.Context(), venueID, request.StartTime, request.EndTime)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Availability checked", result)
}

// PreviewPrice quotes a prospective booking without reserving anything
func (h *BookingHandler) PreviewPrice(c *gin.Context) {
	var request validators.PricePreviewRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if verrs := validators.ValidateStruct(&request); len(verrs) > 0 {
		utils.BadRequestResponse(c, verrs.Error())
		return
	}

	venueID, err := primitive.ObjectIDFromHex(request.VenueID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid venue ID")
		return
	}

	quote, err := h.pricingService.PreviewPrice(c.Request.Context(), venueID, request.StartTime, request.EndTime, request.Participants, request.PromoCodes)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Price calculated", quote)
}

// GetBooking retrieves a single booking
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid booking ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	booking, err := h.bookingService.GetBooking(c.Request.Context(), bookingID, userID, middleware.GetUserType(c))
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Booking retrieved", booking)
}

// UpdateBooking moves a booking's window or participant count
func (h *BookingHandler) UpdateBooking(c *gin.Context) {
	bookingID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid booking ID")
		return
	}

	var request validators.UpdateBookingRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	booking, err := h.bookingService.UpdateBooking(c.Request.Context(), bookingID, userID, middleware.GetUserType(c), &request)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Booking updated successfully", booking)
}

// CancelBooking cancels an active booking and computes any refund
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	bookingID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid booking ID")
		return
	}

	var request validators.CancelBookingRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	booking, err := h.bookingService.CancelBooking(c.Request.Context(), bookingID, userID, middleware.GetUserType(c), request.Reason)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Booking cancelled successfully", booking)
}

// ConfirmPayment records payment and confirms the booking
func (h *BookingHandler) ConfirmPayment(c *gin.Context) {
	bookingID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid booking ID")
		return
	}

	var request validators.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	booking, err := h.bookingService.ConfirmPayment(c.Request.Context(), bookingID, userID, middleware.GetUserType(c), &request)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Payment confirmed successfully", booking)
}

// CheckIn records arrival at the venue
func (h *BookingHandler) CheckIn(c *gin.Context) {
	h.transition(c, h.bookingService.CheckIn, "Checked in successfully")
}

// CheckOut completes the booking
func (h *BookingHandler) CheckOut(c *gin.Context) {
	h.transition(c, h.bookingService.CheckOut, "Checked out successfully")
}

// MarkNoShow flags a missed booking; venue owner only
func (h *BookingHandler) MarkNoShow(c *gin.Context) {
	h.transition(c, h.bookingService.MarkNoShow, "Booking marked as no-show")
}

// GetMyBookings lists the authenticated user's bookings
func (h *BookingHandler) GetMyBookings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	params := utils.GetPaginationParams(c)
	bookings, total, err := h.bookingService.GetUserBookings(c.Request.Context(), userID, params)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Bookings retrieved", bookings, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	})
}

// GetVenueBookings lists a venue's bookings; venue owner only
func (h *BookingHandler) GetVenueBookings(c *gin.Context) {
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

	params := utils.GetPaginationParams(c)
	bookings, total, err := h.bookingService.GetVenueBookings(c.Request.Context(), venueID, userID, middleware.GetUserType(c), params)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Bookings retrieved", bookings, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
	})
}

// GetVenueCalendar lists the active bookings holding slots on a given day
func (h *BookingHandler) GetVenueCalendar(c *gin.Context) {
	venueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid venue ID")
		return
	}

	day := time.Now()
	if dateStr := c.Query("date"); dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid date, expected YYYY-MM-DD")
			return
		}
		day = parsed
	}

	bookings, err := h.bookingService.GetVenueCalendar(c.Request.Context(), venueID, day)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Calendar retrieved", bookings)
}

// GetVenueAnalytics returns booking and revenue stats; venue owner only
func (h *BookingHandler) GetVenueAnalytics(c *gin.Context) {
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

	startDate, endDate, err := parseDateRange(c)
	if err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}

	stats, err := h.bookingService.GetVenueAnalytics(c.Request.Context(), venueID, userID, middleware.GetUserType(c), startDate, endDate)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Analytics retrieved", stats)
}

// GetDashboardStats returns platform-wide booking stats; admin only
func (h *BookingHandler) GetDashboardStats(c *gin.Context) {
	startDate, endDate, err := parseDateRange(c)
	if err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}

	stats, err := h.bookingService.GetDashboardStats(c.Request.Context(), startDate, endDate)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Dashboard stats retrieved", stats)
}

// transition factors out the shared shape of the id-only status transitions.
func (h *BookingHandler) transition(c *gin.Context, fn func(ctx context.Context, id, actorID primitive.ObjectID, actorType string) (*models.Booking, error), message string) {
	bookingID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid booking ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	booking, err := fn(c.Request.Context(), bookingID, userID, middleware.GetUserType(c))
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, message, booking)
}

// parseDateRange reads start_date/end_date query params, defaulting to the
// last 30 days.
func parseDateRange(c *gin.Context) (time.Time, time.Time, error) {
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -30)

	if value := c.Query("start_date"); value != "" {
		parsed, err := time.Parse("2006-01-02", value)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid start_date, expected YYYY-MM-DD")
		}
		startDate = parsed
	}
	if value := c.Query("end_date"); value != "" {
		parsed, err := time.Parse("2006-01-02", value)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid end_date, expected YYYY-MM-DD")
		}
		endDate = utils.EndOfDay(parsed)
	}

	return startDate, endDate, nil
}
