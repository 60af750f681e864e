package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"dooh/internal/api/middleware"
	"dooh/internal/services"
)

type ScreenHandler struct {
	screens  ScreenManager
	bookings BookingManager
}

func NewScreenHandler(screens ScreenManager, bookings BookingManager) *ScreenHandler {
	return &ScreenHandler{screens: screens, bookings: bookings}
}

type ScreenRequest struct {
	Name       string  `json:"name" validate:"required,min=2"`
	Location   string  `json:"location" validate:"required"`
	Address    string  `json:"address"`
	ScreenType string  `json:"screenType" validate:"required"`
	SizeInches float64 `json:"sizeInches" validate:"gte=0"`
	Resolution string  `json:"resolution"`
	HourlyRate float64 `json:"hourlyRate" validate:"gt=0"`
	Currency   string  `json:"currency" validate:"omitempty,len=3"`
}

func (r ScreenRequest) input() services.ScreenInput {
	return services.ScreenInput{
		Name:       r.Name,
		Location:   r.Location,
		Address:    r.Address,
		ScreenType: r.ScreenType,
		SizeInches: r.SizeInches,
		Resolution: r.Resolution,
		HourlyRate: r.HourlyRate,
		Currency:   r.Currency,
	}
}

type ScreenActiveRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

func (h *ScreenHandler) bindScreen(c echo.Context) (services.ScreenInput, error) {
	var req ScreenRequest
	if err := c.Bind(&req); err != nil {
		return services.ScreenInput{}, badRequest(err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return services.ScreenInput{}, err
	}
	return req.input(), nil
}

// Create lists a new screen owned by the caller.
// @Summary Create screen
// @Tags screens
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body ScreenRequest true "Screen details"
// @Success 201 {object} models.Screen
// @Failure 400 {object} map[string]string "Validation error"
// @Router /api/v1/screens [post]
func (h *ScreenHandler) Create(c echo.Context) error {
	in, err := h.bindScreen(c)
	if err != nil {
		return err
	}
	screen, err := h.screens.CreateScreen(c.Request().Context(), middleware.GetUserID(c), in)
	if err != nil {
		return MapError(err)
	}
	return c.JSON(http.StatusCreated, screen)
}

// List returns the caller's screens, active or not.
// @Summary List own screens
// @Tags screens
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.Screen
// @Router /api/v1/screens [get]
func (h *ScreenHandler) List(c echo.Context) error {
	screens, err := h.screens.ListOwnScreens(c.Request().Context(), middleware.GetUserID(c))
	if err != nil {
		return MapError(err)
	}
	return c.JSON(http.StatusOK, screens)
}

// Update edits a screen's listing details.
// @Summary Update screen
// @Tags screens
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Screen ID"
// @Param request body ScreenRequest true "Screen details"
// @Success 200 {object} models.Screen
// @Failure 403 {object} map[string]string "Not your screen"
// @Router /api/v1/screens/{id} [put]
func (h *ScreenHandler) Update(c echo.Context) error {
	id, err := bindPathID(c)
	if err != nil {
		return err
	}
	in, err := h.bindScreen(c)
	if err != nil {
		return err
	}
	screen, err := h.screens.UpdateScreen(c.Request().Context(), middleware.GetUserID(c), id, in)
	if err != nil {
		return MapError(err)
	}
	return c.JSON(http.StatusOK, screen)
}

// SetActive shows or hides a screen in discovery.
// @Summary Toggle screen visibility
// @Tags screens
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Screen ID"
// @Param request body ScreenActiveRequest true "Visibility"
// @Success 200 {object} models.Screen
// @Router /api/v1/screens/{id}/active [put]
func (h *ScreenHandler) SetActive(c echo.Context) error {
	id, err := bindPathID(c)
	if err != nil {
		return err
	}
	var req ScreenActiveRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	screen, err := h.screens.SetScreenActive(c.Request().Context(), middleware.GetUserID(c), id, *req.IsActive)
	if err != nil {
		return MapError(err)
	}
	return c.JSON(http.StatusOK, screen)
}

// Schedule lists approved, not yet ended bookings on the caller's screens.
// @Summary Screen content schedule
// @Tags screens
// @Security BearerAuth
// @Produce json
// @Success 200 {array} services.ScheduleEntry
// @Router /api/v1/screens/schedule [get]
func (h *ScreenHandler) Schedule(c echo.Context) error {
	entries, err := h.bookings.Schedule(c.Request().Context(), middleware.GetUserID(c))
	if err != nil {
		return MapError(err)
	}
	return c.JSON(http.StatusOK, entries)
}
