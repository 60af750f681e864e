package routes

import (
	"github.com/labstack/echo/v4"

	"dooh/internal/api/middleware"
	"dooh/internal/handlers"
)

func SetupAuthRoutes(api *echo.Group, auth *middleware.AuthMiddleware, authHandler *handlers.AuthHandler) {
	authGroup := api.Group("/auth")

	// Public routes (no auth required)
	authGroup.POST("/signup", authHandler.SignUp)
	authGroup.POST("/signin", authHandler.SignIn)

	// Session routes work without a profile so degraded sessions can retry
	protected := authGroup.Group("", auth.Middleware())
	protected.POST("/signout", authHandler.SignOut)
	protected.GET("/session", authHandler.Session)
	protected.POST("/session/resolve", authHandler.Resolve)

	api.PUT("/profile", authHandler.UpdateProfile, auth.Middleware(), middleware.RequireProfile())
}
