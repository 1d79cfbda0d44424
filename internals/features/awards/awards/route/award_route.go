package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"compaward_backend/internals/constants"
	"compaward_backend/internals/features/awards/awards/controller"
	userService "compaward_backend/internals/features/users/users/service"
	authMiddleware "compaward_backend/internals/middlewares/auth"
)

func AwardUserRoutes(api fiber.Router, db *gorm.DB) {
	ctrl := controller.NewAwardController(db, userService.Resolver{})

	api.Get("/awards", ctrl.List)
	api.Get("/awards/:id", ctrl.Get)
}

func AwardAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctrl := controller.NewAwardController(db, userService.Resolver{})

	g := admin.Group("/awards", authMiddleware.RequireAction(constants.ActionAwardManage))
	g.Post("/", ctrl.Create)
	g.Patch("/:id", ctrl.Update)
	g.Delete("/:id", ctrl.Delete)
}
