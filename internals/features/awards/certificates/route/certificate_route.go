package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"compaward_backend/internals/constants"
	"compaward_backend/internals/features/awards/certificates/controller"
	"compaward_backend/internals/helpers/storage"
	authMiddleware "compaward_backend/internals/middlewares/auth"
)

func CertificateUserRoutes(api fiber.Router, db *gorm.DB, store storage.BlobStore) {
	ctrl := controller.NewCertificateController(db, store)

	api.Get("/certificates", ctrl.List)
	api.Get("/certificates/:id", ctrl.Get)
}

func CertificateAdminRoutes(admin fiber.Router, db *gorm.DB, store storage.BlobStore) {
	ctrl := controller.NewCertificateController(db, store)

	admin.Delete("/certificates/:id", authMiddleware.RequireAction(constants.ActionCertificateDelete), ctrl.Delete)
}
