package routes

import (
	"github.com/labstack/echo/v4"

	"dooh/internal/api/middleware"
	"dooh/internal/handlers"
	"dooh/internal/models"
)

// Handlers groups the marketplace handlers mounted under /api/v1.
type Handlers struct {
	Campaigns *handlers.CampaignHandler
	Screens   *handlers.ScreenHandler
	Discovery *handlers.DiscoveryHandler
	Bookings  *handlers.BookingHandler
	Analytics *handlers.AnalyticsHandler
}

// SetupMarketplaceRoutes mounts the role-gated routes. api must already
// carry the auth middleware.
func SetupMarketplaceRoutes(api *echo.Group, h Handlers) {
	advertiser := middleware.RequireRole(models.UserRoleAdvertiser)
	owner := middleware.RequireRole(models.UserRoleScreenOwner)
	anyProfile := middleware.RequireProfile()

	campaigns := api.Group("/campaigns", advertiser)
	campaigns.POST("", h.Campaigns.Create)
	campaigns.GET("", h.Campaigns.List)
	campaigns.PUT("/:id/status", h.Campaigns.SetStatus)

	screens := api.Group("/screens", owner)
	screens.POST("", h.Screens.Create)
	screens.GET("", h.Screens.List)
	screens.GET("/schedule", h.Screens.Schedule)
	screens.PUT("/:id", h.Screens.Update)
	screens.PUT("/:id/active", h.Screens.SetActive)

	discover := api.Group("/discover", anyProfile)
	discover.GET("/screens", h.Discovery.Search)
	discover.POST("/intent", h.Discovery.Intent)

	bookings := api.Group("/bookings")
	bookings.GET("", h.Bookings.List, anyProfile)
	bookings.POST("", h.Bookings.Create, advertiser)
	bookings.POST("/bulk", h.Bookings.CreateBulk, advertiser)
	bookings.PUT("/:id/status", h.Bookings.Transition, owner)

	api.GET("/analytics", h.Analytics.Dashboard, anyProfile)
}
