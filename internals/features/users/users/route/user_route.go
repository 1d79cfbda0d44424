package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"compaward_backend/internals/constants"
	"compaward_backend/internals/features/users/users/controller"
	authMiddleware "compaward_backend/internals/middlewares/auth"
)

// UserAdminRoutes mounts under /api/admin (authenticated).
func UserAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctrl := controller.NewUserController(db)

	users := admin.Group("/users", authMiddleware.RequireAction(constants.ActionUserManage))
	users.Get("/", ctrl.List)
	users.Post("/", ctrl.Register)
	users.Get("/:id", ctrl.Get)
	users.Patch("/:id", ctrl.Update)
	users.Delete("/:id", ctrl.Delete)

	roles := admin.Group("/roles", authMiddleware.RequireAction(constants.ActionUserManage))
	roles.Get("/", ctrl.ListRoles)
	roles.Get("/statistics", ctrl.RoleStatistics)
}

// UserMeRoutes mounts under /api (authenticated).
func UserMeRoutes(api fiber.Router, db *gorm.DB) {
	ctrl := controller.NewMeController(db)

	me := api.Group("/me")
	me.Get("/", ctrl.GetMe)
	me.Get("/profile", ctrl.GetProfile)
	me.Put("/profile", ctrl.UpdateProfile)
	me.Post("/change-password", ctrl.ChangePassword)

	api.Get("/profiles/search", authMiddleware.RequireAction(constants.ActionProfileSearch), ctrl.SearchProfiles)
}
