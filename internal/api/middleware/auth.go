package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"dooh/internal/models"
	"dooh/internal/services"
	"dooh/internal/session"
	"dooh/internal/utils/logger"
)

var log = logger.New("auth_middleware")

const sessionKey = "session"

// Authenticator resolves a bearer token to its live session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*session.Session, error)
}

type AuthMiddleware struct {
	auth Authenticator
}

func NewAuthMiddleware(auth Authenticator) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

func (m *AuthMiddleware) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing authorization header")
			}

			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization header format")
			}

			sess, err := m.auth.Authenticate(c.Request().Context(), tokenParts[1])
			if err != nil {
				if !errors.Is(err, services.ErrUnauthorized) {
					log.Warn("Authentication failed: %v", err)
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired session")
			}

			SetSession(c, sess)
			return next(c)
		}
	}
}

// SetSession stores the session and its derived values on the context.
func SetSession(c echo.Context, sess *session.Session) {
	c.Set(sessionKey, sess)
	c.Set("userID", sess.UserID)
	c.Set("email", sess.Email)
	c.Set("role", string(sess.Role()))
}

// GetSession Helper functions to get values from context
func GetSession(c echo.Context) *session.Session {
	if sess, ok := c.Get(sessionKey).(*session.Session); ok {
		return sess
	}
	return nil
}

func GetUserID(c echo.Context) string {
	if id, ok := c.Get("userID").(string); ok {
		return id
	}
	return ""
}

func GetUserRole(c echo.Context) models.UserRole {
	if role, ok := c.Get("role").(string); ok {
		return models.UserRole(role)
	}
	return ""
}
