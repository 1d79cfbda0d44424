package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	catalogRoute "compaward_backend/internals/features/competitions/catalog/route"
	eventRoute "compaward_backend/internals/features/competitions/events/route"
	teamRoute "compaward_backend/internals/features/competitions/teams/route"
	notifService "compaward_backend/internals/features/notifications/notifications/service"
	"compaward_backend/internals/helpers/storage"
)

func CompetitionUserRoutes(api fiber.Router, db *gorm.DB, store storage.BlobStore, notifier notifService.Notifier) {
	catalogRoute.CatalogUserRoutes(api, db)
	eventRoute.EventUserRoutes(api, db, store)
	teamRoute.TeamUserRoutes(api, db, store, notifier)
}

func CompetitionAdminRoutes(admin fiber.Router, db *gorm.DB, store storage.BlobStore, notifier notifService.Notifier) {
	catalogRoute.CatalogAdminRoutes(admin, db)
	eventRoute.EventAdminRoutes(admin, db, store)
	teamRoute.TeamAdminRoutes(admin, db, store, notifier)
}
