package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"compaward_backend/internals/constants"
	"compaward_backend/internals/features/competitions/events/controller"
	"compaward_backend/internals/helpers/storage"
	authMiddleware "compaward_backend/internals/middlewares/auth"
)

func EventUserRoutes(api fiber.Router, db *gorm.DB, store storage.BlobStore) {
	ctrl := controller.NewEventController(db, store)

	api.Get("/events", ctrl.List)
	api.Get("/events/:id", ctrl.Get)
}

// EventAdminRoutes mounts under /api/a. Works export lives with the team routes.
func EventAdminRoutes(admin fiber.Router, db *gorm.DB, store storage.BlobStore) {
	ctrl := controller.NewEventController(db, store)

	g := admin.Group("/events")
	manage := authMiddleware.RequireAction(constants.ActionEventManage)
	stage := authMiddleware.RequireAction(constants.ActionEventStage)

	g.Post("/", manage, ctrl.Create)
	g.Patch("/:id", manage, ctrl.Update)
	g.Delete("/:id", manage, ctrl.Delete)

	g.Post("/:id/next-stage", stage, ctrl.NextStage)
	g.Post("/:id/set-status", stage, ctrl.SetStatus)
	g.Post("/:id/archive", stage, ctrl.Archive)
}
