package controller

import (
	"bytes"
	"io"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"compaward_backend/internals/features/awards/applications/dto"
	"compaward_backend/internals/features/awards/applications/model"
	"compaward_backend/internals/features/awards/applications/service"
	notifService "compaward_backend/internals/features/notifications/notifications/service"
	helper "compaward_backend/internals/helpers"
	"compaward_backend/internals/helpers/apperror"
	"compaward_backend/internals/helpers/authz"
	"compaward_backend/internals/helpers/storage"
)

type ApplicationController struct {
	Svc *service.Service
}

func NewApplicationController(db *gorm.DB, store storage.BlobStore, notifier notifService.Notifier) *ApplicationController {
	return &ApplicationController{Svc: service.NewService(db, store, notifier)}
}

func readImage(c *fiber.Ctx) (*dto.CertImage, error) {
	fh, err := c.FormFile("cert_image")
	if err != nil {
		return nil, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, apperror.FieldError("cert_image", "cannot read uploaded file")
	}
	defer f.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, f); err != nil {
		return nil, apperror.FieldError("cert_image", "cannot read uploaded file")
	}
	return &dto.CertImage{Filename: fh.Filename, Data: buf.Bytes()}, nil
}

func parsePayload(raw string, out interface{}) error {
	if err := sonic.UnmarshalString(raw, out); err != nil {
		return apperror.FieldError("payload", "payload must be a JSON object")
	}
	return nil
}

// ========== READ ==========

// GET /api/award-applications?status=
func (ac *ApplicationController) List(c *fiber.Ctx) error {
	actor, err := authz.FromCtx(c)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	var f dto.ApplicationFilter
	if err := c.QueryParser(&f); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid query")
	}
	p := helper.ParseFiber(c, "created_at", "desc", helper.DefaultOpts)
	rows, total, err := ac.Svc.List(c.UserContext(), actor, f, p)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonList(c, "applications fetched", dto.FromModels(rows, ac.Svc.URL), p.Pagination(total))
}

// GET /api/award-applications/:id
func (ac *ApplicationController) Get(c *fiber.Ctx) error {
	actor, err := authz.FromCtx(c)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	m, err := ac.Svc.Get(c.UserContext(), actor, id)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "application fetched", dto.FromModel(m, ac.Svc.URL))
}

// ========== APPLICANT ==========

// POST /api/award-applications (multipart: cert_no, award_level, award_date, payload, cert_image)
func (ac *ApplicationController) Apply(c *fiber.Ctx) error {
	actor, err := authz.FromCtx(c)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	req := dto.ApplyRequest{
		CertNo:     c.FormValue("cert_no"),
		AwardLevel: c.FormValue("award_level"),
		AwardDate:  c.FormValue("award_date"),
	}
	if raw := strings.TrimSpace(c.FormValue("payload")); raw != "" {
		if err := parsePayload(raw, &req.Payload); err != nil {
			return helper.FromServiceError(c, err)
		}
	}
	req.Normalize()
	if err := helper.ValidateStruct(req); err != nil {
		return helper.FromServiceError(c, err)
	}
	img, err := readImage(c)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	if img == nil {
		return helper.FromServiceError(c, apperror.FieldError("cert_image", "certificate image is required"))
	}

	m, err := ac.Svc.Apply(c.UserContext(), actor, req, *img)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonCreated(c, "application submitted", dto.FromModel(m, ac.Svc.URL))
}

// PATCH /api/award-applications/:id (multipart; every field optional)
func (ac *ApplicationController) Update(c *fiber.Ctx) error {
	actor, err := authz.FromCtx(c)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromServiceError(c, err)
	}

	var req dto.UpdateApplicationRequest
	optional := func(key string) *string {
		if v := c.FormValue(key); v != "" {
			return &v
		}
		return nil
	}
	req.CertNo = optional("cert_no")
	req.AwardLevel = optional("award_level")
	req.AwardDate = optional("award_date")
	if raw := strings.TrimSpace(c.FormValue("payload")); raw != "" {
		var payload model.ApplicationPayload
		if err := parsePayload(raw, &payload); err != nil {
			return helper.FromServiceError(c, err)
		}
		req.Payload = &payload
	}
	if err := helper.ValidateStruct(req); err != nil {
		return helper.FromServiceError(c, err)
	}
	img, err := readImage(c)
	if err != nil {
		return helper.FromServiceError(c, err)
	}

	m, err := ac.Svc.Update(c.UserContext(), actor, id, req, img)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "application updated", dto.FromModel(m, ac.Svc.URL))
}

// DELETE /api/award-applications/:id
func (ac *ApplicationController) Delete(c *fiber.Ctx) error {
	actor, err := authz.FromCtx(c)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	if err := ac.Svc.Delete(c.UserContext(), actor, id); err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonDeleted(c, "application deleted", fiber.Map{"id": id})
}

// ========== REVIEW ==========

// POST /api/a/award-applications/:id/approve
func (ac *ApplicationController) Approve(c *fiber.Ctx) error {
	actor, err := authz.FromCtx(c)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	m, err := ac.Svc.Approve(c.UserContext(), actor, id)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "application approved", dto.FromModel(m, ac.Svc.URL))
}

// POST /api/a/award-applications/:id/reject
func (ac *ApplicationController) Reject(c *fiber.Ctx) error {
	actor, err := authz.FromCtx(c)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	var req dto.RejectRequest
	if len(c.Body()) > 0 {
		if err := helper.ParseAndValidate(c, &req); err != nil {
			return helper.FromServiceError(c, err)
		}
	}
	m, err := ac.Svc.Reject(c.UserContext(), actor, id, req.Remark)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "application rejected", dto.FromModel(m, ac.Svc.URL))
}
