package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"compaward_backend/internals/features/awards/awards/dto"
	"compaward_backend/internals/features/awards/awards/service"
	helper "compaward_backend/internals/helpers"
	"compaward_backend/internals/helpers/authz"
)

type AwardController struct {
	DB  *gorm.DB
	Svc *service.Service
}

func NewAwardController(db *gorm.DB, users service.UserResolver) *AwardController {
	return &AwardController{DB: db, Svc: service.NewService(db, users)}
}

// GET /api/awards?competition_id=&event_id=&award_level=&participant=&year=
func (ac *AwardController) List(c *fiber.Ctx) error {
	compID, err := helper.ParseUUIDQuery(c, "competition_id")
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	eventID, err := helper.ParseUUIDQuery(c, "event_id")
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	f := dto.AwardFilter{
		CompetitionID: compID,
		EventID:       eventID,
		AwardLevel:    c.Query("award_level"),
		Participant:   c.Query("participant"),
		Year:          c.QueryInt("year", 0),
	}
	p := helper.ParseFiber(c, "award_date", "desc", helper.DefaultOpts)

	rows, total, err := ac.Svc.List(c.UserContext(), f, p)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonList(c, "awards fetched", dto.FromModels(rows), p.Pagination(total))
}

// GET /api/awards/:id
func (ac *AwardController) Get(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	a, err := ac.Svc.Get(c.UserContext(), id)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "award fetched", dto.FromModel(a))
}

// POST /api/a/awards
func (ac *AwardController) Create(c *fiber.Ctx) error {
	actor, err := authz.FromCtx(c)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	var req dto.CreateAwardRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Normalize()
	if err := helper.ValidateStruct(&req); err != nil {
		return helper.FromServiceError(c, err)
	}
	a, err := ac.Svc.Create(c.UserContext(), actor.UserID, req)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonCreated(c, "award created", dto.FromModel(a))
}

// PATCH /api/a/awards/:id
func (ac *AwardController) Update(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	var req dto.UpdateAwardRequest
	if err := helper.ParseAndValidate(c, &req); err != nil {
		return helper.FromServiceError(c, err)
	}
	a, err := ac.Svc.Update(c.UserContext(), id, req)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "award updated", dto.FromModel(a))
}

// DELETE /api/a/awards/:id
func (ac *AwardController) Delete(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	if err := ac.Svc.Delete(c.UserContext(), id); err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonDeleted(c, "award deleted", fiber.Map{"id": id})
}
