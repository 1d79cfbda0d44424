package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"compaward_backend/internals/constants"
	"compaward_backend/internals/features/awards/reports/controller"
	authMiddleware "compaward_backend/internals/middlewares/auth"
)

func ReportAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctrl := controller.NewReportController(db)

	admin.Get("/reports", authMiddleware.RequireAction(constants.ActionReport), ctrl.Report)
	admin.Get("/statistics", authMiddleware.RequireAction(constants.ActionStatistics), ctrl.Statistics)
}
