package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"compaward_backend/internals/features/users/users/dto"
	"compaward_backend/internals/features/users/users/service"
	helper "compaward_backend/internals/helpers"
	"compaward_backend/internals/helpers/authz"
)

type UserController struct {
	DB *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db}
}

// GET /api/admin/users
func (uc *UserController) List(c *fiber.Ctx) error {
	var f dto.UserFilter
	if err := c.QueryParser(&f); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid query")
	}
	p := helper.ParseFiber(c, "user_id", "asc", helper.AdminOpts)

	rows, total, err := service.List(c.UserContext(), uc.DB, f, p)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonList(c, "users fetched", dto.FromModels(rows), p.Pagination(total))
}

// GET /api/admin/users/:id
func (uc *UserController) Get(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	u, err := service.GetByID(c.UserContext(), uc.DB, id)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "user fetched", dto.FromModel(u))
}

// POST /api/admin/users
func (uc *UserController) Register(c *fiber.Ctx) error {
	var req dto.RegisterUserRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Normalize()
	if err := helper.ValidateStruct(&req); err != nil {
		return helper.FromServiceError(c, err)
	}

	u, err := service.Register(c.UserContext(), uc.DB, req)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonCreated(c, "user registered", dto.FromModel(u))
}

// PATCH /api/admin/users/:id
func (uc *UserController) Update(c *fiber.Ctx) error {
	actor, err := authz.FromCtx(c)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromServiceError(c, err)
	}

	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Normalize()
	if err := helper.ValidateStruct(&req); err != nil {
		return helper.FromServiceError(c, err)
	}

	u, err := service.Update(c.UserContext(), uc.DB, actor, id, req)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "user updated", dto.FromModel(u))
}

// DELETE /api/admin/users/:id
func (uc *UserController) Delete(c *fiber.Ctx) error {
	actor, err := authz.FromCtx(c)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	if err := service.Delete(c.UserContext(), uc.DB, actor, id); err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonDeleted(c, "user deleted", fiber.Map{"id": id})
}

// GET /api/admin/roles
func (uc *UserController) ListRoles(c *fiber.Ctx) error {
	rs, err := service.ListRoles(c.UserContext(), uc.DB)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "roles fetched", rs)
}

// GET /api/admin/roles/statistics
func (uc *UserController) RoleStatistics(c *fiber.Ctx) error {
	st, err := service.RoleStatistics(c.UserContext(), uc.DB)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "role statistics", st)
}
