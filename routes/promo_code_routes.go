package routes

import (
	"courtside/internal/handlers"
	"courtside/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupPromoCodeRoutes sets up routes for promo code management and validation
func SetupPromoCodeRoutes(r *gin.RouterGroup, promoHandler *handlers.PromoCodeHandler, jwtSecret string) {
	// Authenticated users may preview what a code is worth
	promos := r.Group("/promo-codes")
	promos.Use(middleware.AuthRequired(jwtSecret))
	{
		promos.GET("/:code/validate", promoHandler.ValidatePromoCode)
	}

	// Management is admin only
	admin := r.Group("/admin/promo-codes")
	admin.Use(middleware.AuthRequired(jwtSecret), middleware.AdminRequired())
	{
		admin.POST("", promoHandler.CreatePromoCode)
		admin.GET("", promoHandler.ListPromoCodes)
		admin.GET("/:id", promoHandler.GetPromoCode)
		admin.PATCH("/:id", promoHandler.UpdatePromoCode)
		admin.DELETE("/:id", promoHandler.DeletePromoCode)
	}
}
