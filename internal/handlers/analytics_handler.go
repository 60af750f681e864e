package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"dooh/internal/api/middleware"
	"dooh/internal/services"
)

type AnalyticsHandler struct {
	analytics AnalyticsProvider
}

func NewAnalyticsHandler(analytics AnalyticsProvider) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Dashboard returns role-specific statistics for a range.
// @Summary Analytics
// @Tags analytics
// @Security BearerAuth
// @Produce json
// @Param range query string false "7d, 30d or 90d" default(30d)
// @Success 200 {object} services.Analytics
// @Failure 400 {object} map[string]string "Unknown range"
// @Router /api/v1/analytics [get]
func (h *AnalyticsHandler) Dashboard(c echo.Context) error {
	out, err := h.analytics.Dashboard(c.Request().Context(), middleware.GetUserID(c), middleware.GetUserRole(c), services.AnalyticsRange(c.QueryParam("range")))
	if err != nil {
		return MapError(err)
	}
	return c.JSON(http.StatusOK, out)
}
