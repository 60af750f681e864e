package registry

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"dooh/internal/api/controllers"
	"dooh/internal/api/middleware"
	"dooh/internal/models"
	"dooh/internal/services"
)

// RegisterCRUDRoutes registers the generic read routes. Every route is scoped
// to rows owned by the caller.
func RegisterCRUDRoutes(g *echo.Group, db *gorm.DB) {
	registerNotificationRoutes(g, services.NewBaseService(db, models.Notification{}))
}

func recipientScope(c echo.Context) map[string]interface{} {
	return map[string]interface{}{"recipient_id": middleware.GetUserID(c)}
}

func registerNotificationRoutes(g *echo.Group, notificationService services.BaseService[models.Notification]) {
	notificationController := controllers.NewBaseController(
		notificationService,
		recipientScope,
		[]string{"is_read", "type"},
		[]string{"created_at"},
	)
	notificationGroup := g.Group("/notifications")
	notificationGroup.Use(middleware.RequireProfile())

	// @Summary List notifications
	// @Description List the caller's notifications, newest first
	// @Tags notifications
	// @Produce json
	// @Param is_read query bool false "Filter by read state"
	// @Param type query string false "Filter by notification type"
	// @Param page query int false "Page"
	// @Param limit query int false "Page size"
	// @Success 200 {object} map[string]interface{}
	// @Failure 401 {object} map[string]string "Unauthorized"
	// @Router /api/v1/notifications [get]
	notificationGroup.GET("", notificationController.List)
	// @Summary Get notification
	// @Tags notifications
	// @Produce json
	// @Param id path string true "Notification ID"
	// @Success 200 {object} models.Notification
	// @Failure 404 {object} map[string]string "Not found"
	// @Router /api/v1/notifications/{id} [get]
	notificationGroup.GET("/:id", notificationController.Get)
	// @Summary Mark notification read
	// @Tags notifications
	// @Produce json
	// @Param id path string true "Notification ID"
	// @Success 200 {object} models.Notification
	// @Failure 404 {object} map[string]string "Not found"
	// @Router /api/v1/notifications/{id}/read [post]
	notificationGroup.POST("/:id/read", notificationController.Patch(map[string]interface{}{"is_read": true}))
}
