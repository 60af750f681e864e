package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-advanced-admin/admin"
	admingorm "github.com/go-advanced-admin/orm-gorm"
	adminecho "github.com/go-advanced-admin/web-echo"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	authmw "dooh/internal/api/middleware"
	"dooh/internal/api/validator"
	"dooh/internal/config"
	"dooh/internal/handlers"
	"dooh/internal/models"
	console "dooh/internal/utils/logger"
)

// Auth is what the server needs from the auth service: the handler surface
// plus token authentication for the middleware.
type Auth interface {
	handlers.AuthManager
	authmw.Authenticator
}

// Dependencies are the services behind the HTTP surface.
type Dependencies struct {
	Auth      Auth
	Campaigns handlers.CampaignManager
	Screens   handlers.ScreenManager
	Discovery handlers.Discoverer
	Bookings  handlers.BookingManager
	Analytics handlers.AnalyticsProvider
	// UploadsDir is served under the storage public URL path when creatives
	// are stored on local disk.
	UploadsDir string
}

type Server struct {
	echo   *echo.Echo
	config *config.Config
	db     *gorm.DB
	deps   Dependencies
	auth   *authmw.AuthMiddleware
}

var log = console.New("API-Server")

// NewServer @title DOOH Marketplace API
// @version 1.0
// @description Screen listings, campaigns, discovery, bookings and analytics for the DOOH marketplace.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func NewServer(cfg *config.Config, db *gorm.DB, deps Dependencies) *Server {
	e := echo.New()
	e.HideBanner = true

	// Create custom validator
	e.Validator = validator.NewValidator()

	// Configure middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderContentLength},
	}))
	e.Use(middleware.RequestID())
	e.Use(middleware.Secure())
	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: 30 * time.Second,
	}))
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
	}))
	e.Use(middleware.BodyLimit("60M"))
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(20))))

	// Custom error handler
	e.HTTPErrorHandler = customHTTPErrorHandler

	s := &Server{
		echo:   e,
		config: cfg,
		db:     db,
		deps:   deps,
		auth:   authmw.NewAuthMiddleware(deps.Auth),
	}

	if db != nil {
		if err := models.CreateAdminFromEnv(db, cfg); err != nil {
			log.Warn("Warning: Failed to create admin: %v", err)
		}
		if err := s.registerAdminPanel(); err != nil {
			log.Warn("Warning: Admin panel disabled: %v", err)
		}
	}

	s.registerRoutes()
	return s
}

// registerAdminPanel mounts the gorm-backed admin panel. Access is limited
// to sessions whose profile role is admin.
func (s *Server) registerAdminPanel() error {
	gormIntegrator := admingorm.NewIntegrator(s.db)
	echoIntegrator := adminecho.NewIntegrator(s.echo.Group(""))

	permissionChecker := func(request admin.PermissionRequest, ctx interface{}) (bool, error) {
		c, ok := ctx.(echo.Context)
		if !ok {
			return false, nil
		}
		token := strings.TrimPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
		if token == "" {
			return false, nil
		}
		sess, err := s.deps.Auth.Authenticate(c.Request().Context(), token)
		if err != nil {
			return false, nil
		}
		return sess.HasRole(models.UserRoleAdmin), nil
	}

	adminPanel, err := admin.NewPanel(gormIntegrator, echoIntegrator, permissionChecker, nil)
	if err != nil {
		return fmt.Errorf("failed to create admin panel: %w", err)
	}

	app, err := adminPanel.RegisterApp("Marketplace", "DOOH Marketplace", nil)
	if err != nil {
		return fmt.Errorf("failed to register admin app: %w", err)
	}
	for _, m := range []interface{}{
		&models.UserProfile{},
		&models.Screen{},
		&models.Campaign{},
		&models.Creative{},
		&models.Booking{},
		&models.Notification{},
	} {
		if _, err := app.RegisterModel(m, nil); err != nil {
			return fmt.Errorf("failed to register %T: %w", m, err)
		}
	}
	log.Success("Admin panel registered")
	return nil
}

func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Echo exposes the router, mainly for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Health check endpoint
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"version": "1.0.0",
		"time":    time.Now().Format(time.RFC3339),
	})
}

// uploadsPrefix is the path part of the storage public URL, e.g. "/uploads".
func uploadsPrefix(publicURL string) string {
	u, err := url.Parse(publicURL)
	if err != nil || u.Path == "" || u.Path == "/" {
		return "/uploads"
	}
	return strings.TrimSuffix(u.Path, "/")
}

// Custom HTTP error handler
func customHTTPErrorHandler(err error, c echo.Context) {
	var (
		code    = http.StatusInternalServerError
		message interface{}
	)

	var (
		he *echo.HTTPError
		ve validator.ValidationErrors
	)
	switch {
	case errors.As(err, &ve):
		code = http.StatusBadRequest
		message = ve.Fields()
	case errors.As(err, &he):
		code = he.Code
		message = he.Message
	default:
		if mapped, ok := handlers.MapError(err).(*echo.HTTPError); ok {
			code = mapped.Code
			message = mapped.Message
		} else {
			message = http.StatusText(code)
		}
	}

	if code >= http.StatusInternalServerError {
		log.Warn("%s %s failed: %v", c.Request().Method, c.Request().URL.Path, err)
	}

	if !c.Response().Committed {
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, map[string]interface{}{
				"error": message,
				"code":  code,
				"time":  time.Now().Format(time.RFC3339),
			})
		}
		if err != nil {
			c.Echo().Logger.Error(err)
		}
	}
}
