package controller

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"compaward_backend/internals/features/competitions/teams/dto"
	"compaward_backend/internals/features/competitions/teams/service"
	notifService "compaward_backend/internals/features/notifications/notifications/service"
	helper "compaward_backend/internals/helpers"
	"compaward_backend/internals/helpers/apperror"
	"compaward_backend/internals/helpers/authz"
	"compaward_backend/internals/helpers/storage"
)

type TeamController struct {
	Svc *service.Service
}

func NewTeamController(db *gorm.DB, store storage.BlobStore, notifier notifService.Notifier) *TeamController {
	return &TeamController{Svc: service.NewService(db, store, notifier)}
}

// ========== READ ==========

// GET /api/teams?event_id=&status=
func (tc *TeamController) List(c *fiber.Ctx) error {
	actor, err := authz.FromCtx(c)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	var f dto.TeamFilter
	if err := c.QueryParser(&f); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid query")
	}
	p := helper.ParseFiber(c, "created_at", "desc", helper.DefaultOpts)
	rows, total, err := tc.Svc.List(c.UserContext(), actor, f, p)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonList(c, "teams fetched", dto.FromModels(rows, tc.Svc.URL), p.Pagination(total))
}

// GET /api/teams/:id
func (tc *TeamController) Get(c *fiber.Ctx) error {
	actor, err := authz.FromCtx(c)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	t, err := tc.Svc.Get(c.UserContext(), actor, id)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "team fetched", dto.FromModel(t, tc.Svc.URL))
}

// GET /api/teams/my-participation?event_id=
func (tc *TeamController) MyParticipation(c *fiber.Ctx) error {
	actor, err := authz.FromCtx(c)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	eventID, err := helper.ParseUUIDQuery(c, "event_id")
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	if eventID == nil {
		return helper.FromServiceError(c, apperror.FieldError("event_id", "event_id is required"))
	}
	out, err := tc.Svc.MyParticipation(c.UserContext(), actor, *eventID)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "participation fetched", out)
}

// ========== LEADER ==========

// POST /api/teams
func (tc *TeamController) Create(c *fiber.Ctx) error {
	actor, err := authz.FromCtx(c)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	var req dto.CreateTeamRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Normalize()
	if err := helper.ValidateStruct(&req); err != nil {
		return helper.FromServiceError(c, err)
	}
	t, err := tc.Svc.Create(c.UserContext(), actor, req)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonCreated(c, "team created", dto.FromModel(t, tc.Svc.URL))
}

// POST /api/teams/:id/submit-registration
func (tc *TeamController) SubmitRegistration(c *fiber.Ctx) error {
	actor, err := authz.FromCtx(c)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	t, err := tc.Svc.SubmitRegistration(c.UserContext(), actor, id)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "registration submitted, waiting for screening", dto.FromModel(t, tc.Svc.URL))
}

// PATCH /api/teams/:id/update-info
func (tc *TeamController) UpdateInfo(c *fiber.Ctx) error {
	actor, err := authz.FromCtx(c)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	var req dto.UpdateInfoRequest
	if err := helper.ParseAndValidate(c, &req); err != nil {
		return helper.FromServiceError(c, err)
	}
	t, err := tc.Svc.UpdateInfo(c.UserContext(), actor, id, req)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "team updated", dto.FromModel(t, tc.Svc.URL))
}

func readPart(c *fiber.Ctx, field string) (*dto.FileInput, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		// absent part
		return nil, nil
	}
	return readHeader(field, fh)
}

func readHeader(field string, fh *multipart.FileHeader) (*dto.FileInput, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, apperror.FieldError(field, "cannot read uploaded file")
	}
	defer f.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, f); err != nil {
		return nil, apperror.FieldError(field, "cannot read uploaded file")
	}
	return &dto.FileInput{Filename: fh.Filename, Data: buf.Bytes()}, nil
}

// POST /api/teams/:id/upload-files (multipart: works, attachment)
func (tc *TeamController) UploadFiles(c *fiber.Ctx) error {
	actor, err := authz.FromCtx(c)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	var in dto.UploadFilesInput
	if in.Works, err = readPart(c, "works"); err != nil {
		return helper.FromServiceError(c, err)
	}
	if in.Attachment, err = readPart(c, "attachment"); err != nil {
		return helper.FromServiceError(c, err)
	}
	t, err := tc.Svc.UploadFiles(c.UserContext(), actor, id, in)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "files uploaded", dto.FromModel(t, tc.Svc.URL))
}

// DELETE /api/teams/:id
func (tc *TeamController) Delete(c *fiber.Ctx) error {
	actor, err := authz.FromCtx(c)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	if err := tc.Svc.Delete(c.UserContext(), actor, id); err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonDeleted(c, "team deleted", fiber.Map{"id": id})
}

// ========== ADMIN ==========

// POST /api/a/teams/:id/review-shortlist
func (tc *TeamController) ReviewShortlist(c *fiber.Ctx) error {
	actor, err := authz.FromCtx(c)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	var req dto.ReviewShortlistRequest
	if err := helper.ParseAndValidate(c, &req); err != nil {
		return helper.FromServiceError(c, err)
	}
	t, err := tc.Svc.ReviewShortlist(c.UserContext(), actor, id, req.Action, req.Reason)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "team screened", dto.FromModel(t, tc.Svc.URL))
}

// POST /api/a/teams/:id/review-award
func (tc *TeamController) ReviewAward(c *fiber.Ctx) error {
	actor, err := authz.FromCtx(c)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	var req dto.ReviewAwardRequest
	if err := helper.ParseAndValidate(c, &req); err != nil {
		return helper.FromServiceError(c, err)
	}
	t, err := tc.Svc.ReviewAward(c.UserContext(), actor, id, req.Action)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "team reviewed", dto.FromModel(t, tc.Svc.URL))
}

// POST /api/a/teams/:id/reset-to-draft
func (tc *TeamController) ResetToDraft(c *fiber.Ctx) error {
	actor, err := authz.FromCtx(c)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	t, err := tc.Svc.ResetToDraft(c.UserContext(), actor, id)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "team reset to draft", dto.FromModel(t, tc.Svc.URL))
}

// GET /api/a/events/:id/export-works
func (tc *TeamController) ExportWorks(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	var buf bytes.Buffer
	if _, err := tc.Svc.ExportWorks(c.UserContext(), id, &buf); err != nil {
		return helper.FromServiceError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/zip")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="export_event_%s.zip"`, id))
	return c.Send(buf.Bytes())
}
