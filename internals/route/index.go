package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"compaward_backend/internals/constants"
	notifService "compaward_backend/internals/features/notifications/notifications/service"
	"compaward_backend/internals/helpers/storage"
	authMiddleware "compaward_backend/internals/middlewares/auth"
	routeDetails "compaward_backend/internals/route/details"
)

var startTime time.Time

// Deps are the collaborators shared by every feature.
type Deps struct {
	Store    storage.BlobStore
	Notifier notifService.Notifier
}

func SetupRoutes(app *fiber.App, db *gorm.DB, deps Deps) {
	startTime = time.Now()

	BaseRoutes(app, db)

	// ===================== GROUPS =====================
	log.Println("[INFO] Setting up PRIVATE group...")
	api := app.Group("/api", authMiddleware.AuthMiddleware(db))

	// competition staff (per-route action checks)
	log.Println("[INFO] Setting up STAFF group...")
	staff := api.Group("/a")

	// system administrators
	log.Println("[INFO] Setting up ADMIN group...")
	admin := api.Group("/admin", authMiddleware.OnlyRoles("administrators only", constants.RoleAdministrator))

	// ===================== MOUNT ROUTES =====================
	log.Println("[INFO] Mounting User routes...")
	routeDetails.UserRoutes(api, admin, db)

	log.Println("[INFO] Mounting Competition routes...")
	routeDetails.CompetitionUserRoutes(api, db, deps.Store, deps.Notifier)
	routeDetails.CompetitionAdminRoutes(staff, db, deps.Store, deps.Notifier)

	log.Println("[INFO] Mounting Award routes...")
	routeDetails.AwardUserRoutes(api, db, deps.Store, deps.Notifier)
	routeDetails.AwardAdminRoutes(staff, db, deps.Store, deps.Notifier)
}
