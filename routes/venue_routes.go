package routes

import (
	"courtside/internal/handlers"
	"courtside/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupVenueRoutes sets up routes for venue management and venue-scoped reads
func SetupVenueRoutes(r *gin.RouterGroup, venueHandler *handlers.VenueHandler, bookingHandler *handlers.BookingHandler, jwtSecret string) {
	// Public discovery routes
	venues := r.Group("/venues")
	{
		venues.GET("", venueHandler.ListVenues)
		venues.GET("/:id", venueHandler.GetVenue)
		venues.GET("/:id/calendar", bookingHandler.GetVenueCalendar)
	}

	// Protected management routes
	managed := r.Group("/venues")
	managed.Use(middleware.AuthRequired(jwtSecret), middleware.VenueOwnerRequired())
	{
		managed.POST("", venueHandler.CreateVenue)
		managed.GET("/me", venueHandler.GetMyVenues)
		managed.PATCH("/:id", venueHandler.UpdateVenue)
		managed.DELETE("/:id", venueHandler.DeleteVenue)
		managed.GET("/:id/bookings", bookingHandler.GetVenueBookings)
		managed.GET("/:id/analytics", bookingHandler.GetVenueAnalytics)
	}
}
