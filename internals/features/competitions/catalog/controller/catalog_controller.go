package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"compaward_backend/internals/features/competitions/catalog/dto"
	"compaward_backend/internals/features/competitions/catalog/service"
	helper "compaward_backend/internals/helpers"
	"compaward_backend/internals/helpers/apperror"
)

type CatalogController struct {
	DB *gorm.DB
}

func NewCatalogController(db *gorm.DB) *CatalogController {
	return &CatalogController{DB: db}
}

func uintParam(c *fiber.Ctx, name string) (uint, error) {
	n, err := c.ParamsInt(name)
	if err != nil || n <= 0 {
		return 0, apperror.FieldError(name, name+" must be a positive integer")
	}
	return uint(n), nil
}

// ========== CATEGORY ==========

// GET /api/categories
func (cc *CatalogController) ListCategories(c *fiber.Ctx) error {
	rows, err := service.ListCategories(c.UserContext(), cc.DB)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "categories fetched", rows)
}

// POST /api/a/categories
func (cc *CatalogController) CreateCategory(c *fiber.Ctx) error {
	var req dto.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Normalize()
	if err := helper.ValidateStruct(&req); err != nil {
		return helper.FromServiceError(c, err)
	}
	m, err := service.CreateCategory(c.UserContext(), cc.DB, req)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonCreated(c, "category created", m)
}

// PUT /api/a/categories/:id
func (cc *CatalogController) UpdateCategory(c *fiber.Ctx) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	var req dto.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Normalize()
	if err := helper.ValidateStruct(&req); err != nil {
		return helper.FromServiceError(c, err)
	}
	m, err := service.UpdateCategory(c.UserContext(), cc.DB, id, req)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "category updated", m)
}

// DELETE /api/a/categories/:id
func (cc *CatalogController) DeleteCategory(c *fiber.Ctx) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	if err := service.DeleteCategory(c.UserContext(), cc.DB, id); err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonDeleted(c, "category deleted", fiber.Map{"id": id})
}

// ========== LEVEL ==========

// GET /api/levels
func (cc *CatalogController) ListLevels(c *fiber.Ctx) error {
	rows, err := service.ListLevels(c.UserContext(), cc.DB)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "levels fetched", rows)
}

// POST /api/a/levels
func (cc *CatalogController) CreateLevel(c *fiber.Ctx) error {
	var req dto.LevelRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Normalize()
	if err := helper.ValidateStruct(&req); err != nil {
		return helper.FromServiceError(c, err)
	}
	m, err := service.CreateLevel(c.UserContext(), cc.DB, req)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonCreated(c, "level created", m)
}

// PUT /api/a/levels/:id
func (cc *CatalogController) UpdateLevel(c *fiber.Ctx) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	var req dto.LevelRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Normalize()
	if err := helper.ValidateStruct(&req); err != nil {
		return helper.FromServiceError(c, err)
	}
	m, err := service.UpdateLevel(c.UserContext(), cc.DB, id, req)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "level updated", m)
}

// DELETE /api/a/levels/:id
func (cc *CatalogController) DeleteLevel(c *fiber.Ctx) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	if err := service.DeleteLevel(c.UserContext(), cc.DB, id); err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonDeleted(c, "level deleted", fiber.Map{"id": id})
}
