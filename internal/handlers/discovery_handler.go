package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"dooh/internal/services"
)

type DiscoveryHandler struct {
	discovery Discoverer
}

func NewDiscoveryHandler(discovery Discoverer) *DiscoveryHandler {
	return &DiscoveryHandler{discovery: discovery}
}

type IntentRequest struct {
	ScreenIDs []string `json:"screenIds" validate:"required,min=1,dive,uuid"`
}

// Search lists active screens matching the filters.
// @Summary Discover screens
// @Tags discovery
// @Security BearerAuth
// @Produce json
// @Param q query string false "Matches name, location or address"
// @Param type query string false "Screen type"
// @Param max_rate query number false "Maximum hourly rate"
// @Param min_size query number false "Minimum size in inches"
// @Success 200 {array} services.ScreenListing
// @Router /api/v1/discover/screens [get]
func (h *DiscoveryHandler) Search(c echo.Context) error {
	filter := services.ScreenFilter{
		Term:       c.QueryParam("q"),
		ScreenType: c.QueryParam("type"),
	}
	var err error
	if v := c.QueryParam("max_rate"); v != "" {
		if filter.MaxHourlyRate, err = strconv.ParseFloat(v, 64); err != nil {
			return badRequest("max_rate must be a number")
		}
	}
	if v := c.QueryParam("min_size"); v != "" {
		if filter.MinSizeInches, err = strconv.ParseFloat(v, 64); err != nil {
			return badRequest("min_size must be a number")
		}
	}

	listings, err := h.discovery.Search(c.Request().Context(), filter)
	if err != nil {
		return MapError(err)
	}
	return c.JSON(http.StatusOK, listings)
}

// Intent summarises a multi-screen selection before booking.
// @Summary Booking intent
// @Tags discovery
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body IntentRequest true "Selected screens"
// @Success 200 {object} services.BookingIntent
// @Router /api/v1/discover/intent [post]
func (h *DiscoveryHandler) Intent(c echo.Context) error {
	var req IntentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	intent, err := h.discovery.Intent(c.Request().Context(), services.NewSelection(req.ScreenIDs...).IDs())
	if err != nil {
		return MapError(err)
	}
	return c.JSON(http.StatusOK, intent)
}
