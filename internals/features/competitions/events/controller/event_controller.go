package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"compaward_backend/internals/features/competitions/events/dto"
	"compaward_backend/internals/features/competitions/events/model"
	"compaward_backend/internals/features/competitions/events/service"
	helper "compaward_backend/internals/helpers"
	"compaward_backend/internals/helpers/authz"
	"compaward_backend/internals/helpers/storage"
)

type EventController struct {
	DB    *gorm.DB
	Store storage.BlobStore
}

func NewEventController(db *gorm.DB, store storage.BlobStore) *EventController {
	return &EventController{DB: db, Store: store}
}

// ========== READ ==========

// GET /api/events?competition_id=&status=
func (ec *EventController) List(c *fiber.Ctx) error {
	actor, err := authz.FromCtx(c)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	var f dto.EventFilter
	if err := c.QueryParser(&f); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid query")
	}
	p := helper.ParseFiber(c, "start_time", "desc", helper.DefaultOpts)
	rows, total, err := service.List(c.UserContext(), ec.DB, actor, f, p)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonList(c, "events fetched", dto.FromModels(rows), p.Pagination(total))
}

// GET /api/events/:id
func (ec *EventController) Get(c *fiber.Ctx) error {
	actor, err := authz.FromCtx(c)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	m, err := service.Get(c.UserContext(), ec.DB, actor, id)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "event fetched", dto.FromModel(m))
}

// ========== CRUD (admin) ==========

// POST /api/a/events
func (ec *EventController) Create(c *fiber.Ctx) error {
	var req dto.CreateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Normalize()
	if err := helper.ValidateStruct(&req); err != nil {
		return helper.FromServiceError(c, err)
	}
	m, err := service.Create(c.UserContext(), ec.DB, req)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonCreated(c, "event created", dto.FromModel(m))
}

// PATCH /api/a/events/:id
func (ec *EventController) Update(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	var req dto.UpdateEventRequest
	if err := helper.ParseAndValidate(c, &req); err != nil {
		return helper.FromServiceError(c, err)
	}
	m, err := service.Update(c.UserContext(), ec.DB, id, req)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "event updated", dto.FromModel(m))
}

// DELETE /api/a/events/:id
func (ec *EventController) Delete(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	if err := service.Delete(c.UserContext(), ec.DB, id); err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonDeleted(c, "event deleted", fiber.Map{"id": id})
}

// ========== STAGES ==========

// POST /api/a/events/:id/next-stage
func (ec *EventController) NextStage(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	m, err := service.AdvanceStage(c.UserContext(), ec.DB, id)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "event moved to "+string(m.Status), dto.FromModel(m))
}

// POST /api/a/events/:id/set-status
func (ec *EventController) SetStatus(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	var req dto.SetStatusRequest
	if err := helper.ParseAndValidate(c, &req); err != nil {
		return helper.FromServiceError(c, err)
	}
	st, _ := model.ParseEventStatus(req.Status)
	m, err := service.SetStatus(c.UserContext(), ec.DB, id, st)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "event status set", dto.FromModel(m))
}

// POST /api/a/events/:id/archive
func (ec *EventController) Archive(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	m, err := service.Archive(c.UserContext(), ec.DB, ec.Store, id)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "event archived", dto.FromModel(m))
}
