package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"compaward_backend/internals/features/competitions/catalog/dto"
	"compaward_backend/internals/features/competitions/catalog/service"
	helper "compaward_backend/internals/helpers"
	"compaward_backend/internals/helpers/authz"
)

type CompetitionController struct {
	DB *gorm.DB
}

func NewCompetitionController(db *gorm.DB) *CompetitionController {
	return &CompetitionController{DB: db}
}

// GET /api/competitions?q=&year=&category_id=&level_id=
func (cc *CompetitionController) List(c *fiber.Ctx) error {
	var f dto.CompetitionFilter
	if err := c.QueryParser(&f); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid query")
	}
	p := helper.ParseFiber(c, "year", "desc", helper.DefaultOpts)
	rows, total, err := service.ListCompetitions(c.UserContext(), cc.DB, f, p)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonList(c, "competitions fetched", dto.FromCompetitions(rows), p.Pagination(total))
}

// GET /api/competitions/:id
func (cc *CompetitionController) Get(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	m, err := service.GetCompetition(c.UserContext(), cc.DB, id)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "competition fetched", dto.FromCompetition(m))
}

// POST /api/a/competitions
func (cc *CompetitionController) Create(c *fiber.Ctx) error {
	actor, err := authz.FromCtx(c)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	var req dto.CreateCompetitionRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Normalize()
	if err := helper.ValidateStruct(&req); err != nil {
		return helper.FromServiceError(c, err)
	}
	m, err := service.CreateCompetition(c.UserContext(), cc.DB, actor.UserID, req)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonCreated(c, "competition created", dto.FromCompetition(m))
}

// PATCH /api/a/competitions/:id
func (cc *CompetitionController) Update(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	var req dto.UpdateCompetitionRequest
	if err := helper.ParseAndValidate(c, &req); err != nil {
		return helper.FromServiceError(c, err)
	}
	m, err := service.UpdateCompetition(c.UserContext(), cc.DB, id, req)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "competition updated", dto.FromCompetition(m))
}

// DELETE /api/a/competitions/:id
func (cc *CompetitionController) Delete(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	if err := service.DeleteCompetition(c.UserContext(), cc.DB, id); err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonDeleted(c, "competition deleted", fiber.Map{"id": id})
}
