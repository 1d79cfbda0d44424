package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"compaward_backend/internals/features/awards/certificates/service"
	helper "compaward_backend/internals/helpers"
	"compaward_backend/internals/helpers/storage"
)

type CertificateController struct {
	DB    *gorm.DB
	Store storage.BlobStore
}

func NewCertificateController(db *gorm.DB, store storage.BlobStore) *CertificateController {
	return &CertificateController{DB: db, Store: store}
}

// GET /api/certificates?q=
func (cc *CertificateController) List(c *fiber.Ctx) error {
	p := helper.ParseFiber(c, "created_at", "desc", helper.DefaultOpts)
	rows, total, err := service.List(c.UserContext(), cc.DB, c.Query("q"), p)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonList(c, "certificates fetched", rows, p.Pagination(total))
}

// GET /api/certificates/:id
func (cc *CertificateController) Get(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	m, err := service.Get(c.UserContext(), cc.DB, id)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "certificate fetched", m)
}

// DELETE /api/a/certificates/:id
func (cc *CertificateController) Delete(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	if err := service.Delete(c.UserContext(), cc.DB, cc.Store, id); err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonDeleted(c, "certificate deleted", fiber.Map{"id": id})
}
