package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"compaward_backend/internals/features/notifications/notifications/controller"
)

func NotificationRoutes(api fiber.Router, db *gorm.DB) {
	ctrl := controller.NewNotificationController(db)

	g := api.Group("/notifications")
	g.Get("/", ctrl.List)
	g.Get("/unread-count", ctrl.UnreadCount)
	g.Post("/read-all", ctrl.MarkAllRead)
	g.Post("/:id/read", ctrl.MarkRead)
	g.Delete("/:id", ctrl.Delete)
}
