package routes

import (
	"courtside/internal/handlers"
	"courtside/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes sets up routes for the booking lifecycle
func SetupBookingRoutes(r *gin.RouterGroup, bookingHandler *handlers.BookingHandler, jwtSecret string) {
	bookings := r.Group("/bookings")
	bookings.Use(middleware.AuthRequired(jwtSecret))
	{
		bookings.POST("", bookingHandler.CreateBooking)
		bookings.POST("/check-availability", bookingHandler.CheckAvailability)
		bookings.POST("/price-preview", bookingHandler.PreviewPrice)
		bookings.GET("/me", bookingHandler.GetMyBookings)

		bookings.GET("/:id", bookingHandler.GetBooking)
		bookings.PATCH("/:id", bookingHandler.UpdateBooking)
		bookings.POST("/:id/cancel", bookingHandler.CancelBooking)
		bookings.POST("/:id/confirm-payment", bookingHandler.ConfirmPayment)
		bookings.POST("/:id/checkin", bookingHandler.CheckIn)
		bookings.POST("/:id/checkout", bookingHandler.CheckOut)
		bookings.POST("/:id/no-show", bookingHandler.MarkNoShow)
	}

	// Admin routes for platform-wide stats
	admin := r.Group("/admin/bookings")
	admin.Use(middleware.AuthRequired(jwtSecret), middleware.AdminRequired())
	{
		admin.GET("/dashboard", bookingHandler.GetDashboardStats)
	}
}
