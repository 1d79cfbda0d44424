package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	notificationRoute "compaward_backend/internals/features/notifications/notifications/route"
	userRoute "compaward_backend/internals/features/users/users/route"
)

// UserRoutes: account, profile and inbox endpoints.
func UserRoutes(api fiber.Router, admin fiber.Router, db *gorm.DB) {
	userRoute.UserMeRoutes(api, db)
	notificationRoute.NotificationRoutes(api, db)

	userRoute.UserAdminRoutes(admin, db)
}
