package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"dooh/internal/models"
	"dooh/internal/services"
)

// RequireRole admits sessions whose profile has one of roles. A session
// without a profile gets the degraded-mode message rather than a bare 403.
func RequireRole(roles ...models.UserRole) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := GetSession(c)
			if sess == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Not signed in")
			}
			if sess.Role() == "" {
				return echo.NewHTTPError(http.StatusForbidden, services.ErrNoProfile.Error())
			}
			if !sess.HasRole(roles...) {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
			}
			return next(c)
		}
	}
}

// RequireProfile admits any session with a resolved profile.
func RequireProfile() echo.MiddlewareFunc {
	return RequireRole(models.UserRoleAdvertiser, models.UserRoleScreenOwner, models.UserRoleAdmin)
}
