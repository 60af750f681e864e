package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "dooh/docs/swagger"
	"dooh/internal/api/registry"
	"dooh/internal/handlers"
	"dooh/internal/routes"
)

func (s *Server) registerRoutes() {
	// Health check
	// @Summary Health check
	// @Description Check if the server is running
	// @Accept json
	// @Produce json
	// @Success 200 {object} map[string]string "OK"
	// @Router /health [get]
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	if s.deps.UploadsDir != "" {
		s.echo.Static(uploadsPrefix(s.config.Storage.PublicURL), s.deps.UploadsDir)
	}

	// API v1 group
	api := s.echo.Group("/api/v1")
	api.GET("", func(c echo.Context) error {
		return c.String(http.StatusOK, "DOOH marketplace API v1")
	})

	routes.SetupAuthRoutes(api, s.auth, handlers.NewAuthHandler(s.deps.Auth))

	protected := api.Group("", s.auth.Middleware())
	routes.SetupMarketplaceRoutes(protected, routes.Handlers{
		Campaigns: handlers.NewCampaignHandler(s.deps.Campaigns),
		Screens:   handlers.NewScreenHandler(s.deps.Screens, s.deps.Bookings),
		Discovery: handlers.NewDiscoveryHandler(s.deps.Discovery),
		Bookings:  handlers.NewBookingHandler(s.deps.Bookings),
		Analytics: handlers.NewAnalyticsHandler(s.deps.Analytics),
	})

	if s.db != nil {
		registry.RegisterCRUDRoutes(protected, s.db)
	}
}
