package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	applicationRoute "compaward_backend/internals/features/awards/applications/route"
	awardRoute "compaward_backend/internals/features/awards/awards/route"
	certificateRoute "compaward_backend/internals/features/awards/certificates/route"
	reportRoute "compaward_backend/internals/features/awards/reports/route"
	notifService "compaward_backend/internals/features/notifications/notifications/service"
	"compaward_backend/internals/helpers/storage"
)

func AwardUserRoutes(api fiber.Router, db *gorm.DB, store storage.BlobStore, notifier notifService.Notifier) {
	awardRoute.AwardUserRoutes(api, db)
	certificateRoute.CertificateUserRoutes(api, db, store)
	applicationRoute.ApplicationUserRoutes(api, db, store, notifier)
}

func AwardAdminRoutes(admin fiber.Router, db *gorm.DB, store storage.BlobStore, notifier notifService.Notifier) {
	awardRoute.AwardAdminRoutes(admin, db)
	certificateRoute.CertificateAdminRoutes(admin, db, store)
	applicationRoute.ApplicationAdminRoutes(admin, db, store, notifier)
	reportRoute.ReportAdminRoutes(admin, db)
}
