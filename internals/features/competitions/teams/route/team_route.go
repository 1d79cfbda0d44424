package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"compaward_backend/internals/constants"
	"compaward_backend/internals/features/competitions/teams/controller"
	notifService "compaward_backend/internals/features/notifications/notifications/service"
	"compaward_backend/internals/helpers/storage"
	"compaward_backend/internals/middlewares"
	authMiddleware "compaward_backend/internals/middlewares/auth"
)

// TeamUserRoutes: leaders, members and instructors.
func TeamUserRoutes(api fiber.Router, db *gorm.DB, store storage.BlobStore, notifier notifService.Notifier) {
	ctrl := controller.NewTeamController(db, store, notifier)

	g := api.Group("/teams")
	g.Get("/", ctrl.List)
	g.Get("/my-participation", ctrl.MyParticipation)
	g.Get("/:id", ctrl.Get)
	g.Post("/", authMiddleware.RequireAction(constants.ActionTeamCreate), ctrl.Create)
	g.Post("/:id/submit-registration", ctrl.SubmitRegistration)
	g.Post("/:id/upload-files", middlewares.UploadRateLimiter(), ctrl.UploadFiles)
	g.Patch("/:id/update-info", ctrl.UpdateInfo)
	g.Delete("/:id", ctrl.Delete)
}

// TeamAdminRoutes mounts under /api/a.
func TeamAdminRoutes(admin fiber.Router, db *gorm.DB, store storage.BlobStore, notifier notifService.Notifier) {
	ctrl := controller.NewTeamController(db, store, notifier)

	g := admin.Group("/teams")
	g.Post("/:id/review-shortlist", authMiddleware.RequireAction(constants.ActionTeamReview), ctrl.ReviewShortlist)
	g.Post("/:id/review-award", authMiddleware.RequireAction(constants.ActionTeamReview), ctrl.ReviewAward)
	g.Post("/:id/reset-to-draft", authMiddleware.RequireAction(constants.ActionTeamReset), ctrl.ResetToDraft)

	admin.Get("/events/:id/export-works", authMiddleware.RequireAction(constants.ActionTeamExport), ctrl.ExportWorks)
}
