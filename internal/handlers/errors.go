package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"dooh/internal/services"
)

// MapError turns a service error into the HTTP error the client sees.
// Unknown errors surface as 500 with their message.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}

	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, services.ErrForbidden), errors.Is(err, services.ErrNoProfile):
		code = http.StatusForbidden
	case errors.Is(err, services.ErrValidation):
		code = http.StatusBadRequest
		return echo.NewHTTPError(code, strings.TrimPrefix(err.Error(), services.ErrValidation.Error()+": ")).SetInternal(err)
	case errors.Is(err, services.ErrBookingConflict),
		errors.Is(err, services.ErrStaleBooking),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrDuplicate):
		code = http.StatusConflict
	case errors.Is(err, services.ErrRateLimited):
		code = http.StatusTooManyRequests
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrUnauthorized):
		code = http.StatusUnauthorized
	}
	return echo.NewHTTPError(code, err.Error()).SetInternal(err)
}

func badRequest(msg string) error {
	return echo.NewHTTPError(http.StatusBadRequest, msg)
}

// PathID is the :id route parameter of a resource.
type PathID struct {
	ID string `param:"id" validate:"required,uuid"`
}

// bindPathID reads and validates :id without touching the request body.
func bindPathID(c echo.Context) (string, error) {
	var p PathID
	if err := (&echo.DefaultBinder{}).BindPathParams(c, &p); err != nil {
		return "", badRequest(err.Error())
	}
	if err := c.Validate(&p); err != nil {
		return "", err
	}
	return p.ID, nil
}
