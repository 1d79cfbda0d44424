package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"compaward_backend/internals/constants"
	"compaward_backend/internals/features/awards/applications/controller"
	notifService "compaward_backend/internals/features/notifications/notifications/service"
	"compaward_backend/internals/helpers/storage"
	"compaward_backend/internals/middlewares"
	authMiddleware "compaward_backend/internals/middlewares/auth"
)

func ApplicationUserRoutes(api fiber.Router, db *gorm.DB, store storage.BlobStore, notifier notifService.Notifier) {
	ctrl := controller.NewApplicationController(db, store, notifier)

	g := api.Group("/award-applications")
	g.Get("/", ctrl.List)
	g.Get("/:id", ctrl.Get)
	g.Post("/", middlewares.UploadRateLimiter(), ctrl.Apply)
	g.Patch("/:id", middlewares.UploadRateLimiter(), ctrl.Update)
	g.Delete("/:id", ctrl.Delete)
}

func ApplicationAdminRoutes(admin fiber.Router, db *gorm.DB, store storage.BlobStore, notifier notifService.Notifier) {
	ctrl := controller.NewApplicationController(db, store, notifier)

	g := admin.Group("/award-applications", authMiddleware.RequireAction(constants.ActionApplicationReview))
	g.Post("/:id/approve", ctrl.Approve)
	g.Post("/:id/reject", ctrl.Reject)
}
