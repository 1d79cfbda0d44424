package controller

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"compaward_backend/internals/features/users/users/dto"
	"compaward_backend/internals/features/users/users/service"
	helper "compaward_backend/internals/helpers"
	"compaward_backend/internals/helpers/authz"
)

type MeController struct {
	DB *gorm.DB
}

func NewMeController(db *gorm.DB) *MeController {
	return &MeController{DB: db}
}

// GET /api/me
func (mc *MeController) GetMe(c *fiber.Ctx) error {
	actor, err := authz.FromCtx(c)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	u, err := service.GetByID(c.UserContext(), mc.DB, actor.UserID)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.FromModel(u))
}

// GET /api/me/profile
func (mc *MeController) GetProfile(c *fiber.Ctx) error {
	actor, err := authz.FromCtx(c)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	p, err := service.GetOrCreateProfile(c.UserContext(), mc.DB, actor.UserID)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "profile fetched", dto.FromProfile(p))
}

// PUT /api/me/profile
func (mc *MeController) UpdateProfile(c *fiber.Ctx) error {
	actor, err := authz.FromCtx(c)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	var req dto.ProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Normalize()
	if err := helper.ValidateStruct(&req); err != nil {
		return helper.FromServiceError(c, err)
	}
	p, err := service.UpdateProfile(c.UserContext(), mc.DB, actor.UserID, req)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "profile updated", dto.FromProfile(p))
}

// POST /api/me/change-password
func (mc *MeController) ChangePassword(c *fiber.Ctx) error {
	actor, err := authz.FromCtx(c)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	var req dto.ChangePasswordRequest
	if err := helper.ParseAndValidate(c, &req); err != nil {
		return helper.FromServiceError(c, err)
	}
	if err := service.ChangePassword(c.UserContext(), mc.DB, actor.UserID, req); err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "password changed", nil)
}

// GET /api/profiles/search?q=
func (mc *MeController) SearchProfiles(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit"))
	rows, err := service.SearchProfiles(c.UserContext(), mc.DB, c.Query("q"), limit)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "profiles fetched", dto.FromModels(rows))
}
