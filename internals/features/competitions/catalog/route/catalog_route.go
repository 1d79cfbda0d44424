package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"compaward_backend/internals/constants"
	"compaward_backend/internals/features/competitions/catalog/controller"
	authMiddleware "compaward_backend/internals/middlewares/auth"
)

// CatalogUserRoutes: read-only catalog for any logged-in user.
func CatalogUserRoutes(api fiber.Router, db *gorm.DB) {
	cat := controller.NewCatalogController(db)
	comp := controller.NewCompetitionController(db)

	api.Get("/categories", cat.ListCategories)
	api.Get("/levels", cat.ListLevels)
	api.Get("/competitions", comp.List)
	api.Get("/competitions/:id", comp.Get)
}

// CatalogAdminRoutes mounts under /api/a.
func CatalogAdminRoutes(admin fiber.Router, db *gorm.DB) {
	cat := controller.NewCatalogController(db)
	comp := controller.NewCompetitionController(db)
	guard := authMiddleware.RequireAction(constants.ActionCatalogManage)

	categories := admin.Group("/categories", guard)
	categories.Post("/", cat.CreateCategory)
	categories.Put("/:id", cat.UpdateCategory)
	categories.Delete("/:id", cat.DeleteCategory)

	levels := admin.Group("/levels", guard)
	levels.Post("/", cat.CreateLevel)
	levels.Put("/:id", cat.UpdateLevel)
	levels.Delete("/:id", cat.DeleteLevel)

	competitions := admin.Group("/competitions", guard)
	competitions.Post("/", comp.Create)
	competitions.Patch("/:id", comp.Update)
	competitions.Delete("/:id", comp.Delete)
}
