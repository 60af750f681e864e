package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"dooh/internal/api/middleware"
	"dooh/internal/models"
	"dooh/internal/services"
)

type BookingHandler struct {
	bookings BookingManager
}

func NewBookingHandler(bookings BookingManager) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

type BookingRequest struct {
	CampaignID string    `json:"campaignId" validate:"required,uuid"`
	ScreenID   string    `json:"screenId" validate:"required,uuid"`
	Start      time.Time `json:"startDatetime" validate:"required"`
	End        time.Time `json:"endDatetime" validate:"required,gtfield=Start"`
	TotalCost  float64   `json:"totalCost" validate:"gte=0"`
}

type BulkBookingRequest struct {
	CampaignID string    `json:"campaignId" validate:"required,uuid"`
	ScreenIDs  []string  `json:"screenIds" validate:"required,min=1,dive,uuid"`
	Start      time.Time `json:"startDatetime" validate:"required"`
	End        time.Time `json:"endDatetime" validate:"required,gtfield=Start"`
}

type BookingStatusRequest struct {
	Status string `json:"status" validate:"required,booking_decision"`
}

type TransitionResponse struct {
	Booking *models.Booking        `json:"booking"`
	Board   *services.BookingBoard `json:"board"`
}

// Create requests a booking of one screen for one campaign.
// @Summary Request booking
// @Tags bookings
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body BookingRequest true "Booking window"
// @Success 201 {object} models.Booking
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 409 {object} map[string]string "Overlaps an approved booking"
// @Failure 429 {object} map[string]string "Too many requests"
// @Router /api/v1/bookings [post]
func (h *BookingHandler) Create(c echo.Context) error {
	var req BookingRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	booking, err := h.bookings.Create(c.Request().Context(), middleware.GetUserID(c), services.BookingRequest{
		CampaignID: req.CampaignID,
		ScreenID:   req.ScreenID,
		Start:      req.Start,
		End:        req.End,
		TotalCost:  req.TotalCost,
	})
	if err != nil {
		return MapError(err)
	}
	return c.JSON(http.StatusCreated, booking)
}

// CreateBulk files one booking request per selected screen.
// @Summary Request bookings for a selection
// @Description Each screen is booked independently; per-screen failures are reported inline.
// @Tags bookings
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body BulkBookingRequest true "Selection and window"
// @Success 207 {array} services.BulkBookingResult
// @Router /api/v1/bookings/bulk [post]
func (h *BookingHandler) CreateBulk(c echo.Context) error {
	var req BulkBookingRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	results, err := h.bookings.CreateMany(c.Request().Context(), middleware.GetUserID(c), req.CampaignID, req.ScreenIDs, req.Start, req.End)
	if err != nil {
		return MapError(err)
	}
	return c.JSON(http.StatusMultiStatus, results)
}

// List returns the caller's booking board.
// @Summary Booking board
// @Tags bookings
// @Security BearerAuth
// @Produce json
// @Success 200 {object} services.BookingBoard
// @Router /api/v1/bookings [get]
func (h *BookingHandler) List(c echo.Context) error {
	board, err := h.bookings.Board(c.Request().Context(), middleware.GetUserID(c), middleware.GetUserRole(c))
	if err != nil {
		return MapError(err)
	}
	return c.JSON(http.StatusOK, board)
}

// Transition approves or rejects a pending booking and returns the refreshed
// board.
// @Summary Approve or reject booking
// @Tags bookings
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body BookingStatusRequest true "Decision"
// @Success 200 {object} TransitionResponse
// @Failure 403 {object} map[string]string "Not the screen owner"
// @Failure 409 {object} map[string]string "Conflict or already decided"
// @Router /api/v1/bookings/{id}/status [put]
func (h *BookingHandler) Transition(c echo.Context) error {
	id, err := bindPathID(c)
	if err != nil {
		return err
	}
	var req BookingStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	userID := middleware.GetUserID(c)
	booking, err := h.bookings.Transition(ctx, userID, id, models.BookingStatus(req.Status))
	if err != nil {
		return MapError(err)
	}
	board, err := h.bookings.Board(ctx, userID, middleware.GetUserRole(c))
	if err != nil {
		return MapError(err)
	}
	return c.JSON(http.StatusOK, TransitionResponse{Booking: booking, Board: board})
}
