package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"compaward_backend/internals/features/notifications/notifications/service"
	helper "compaward_backend/internals/helpers"
	"compaward_backend/internals/helpers/authz"
)

type NotificationController struct {
	DB *gorm.DB
}

func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{DB: db}
}

// GET /api/notifications?unread=true
func (nc *NotificationController) List(c *fiber.Ctx) error {
	actor, err := authz.FromCtx(c)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	p := helper.ParseFiber(c, "created_at", "desc", helper.DefaultOpts)
	rows, total, err := service.List(c.UserContext(), nc.DB, actor.UserID, c.QueryBool("unread", false), p)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonList(c, "notifications fetched", rows, p.Pagination(total))
}

// GET /api/notifications/unread-count
func (nc *NotificationController) UnreadCount(c *fiber.Ctx) error {
	actor, err := authz.FromCtx(c)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	n, err := service.UnreadCount(c.UserContext(), nc.DB, actor.UserID)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "ok", fiber.Map{"unread": n})
}

// POST /api/notifications/:id/read
func (nc *NotificationController) MarkRead(c *fiber.Ctx) error {
	actor, err := authz.FromCtx(c)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	if err := service.MarkRead(c.UserContext(), nc.DB, actor.UserID, id); err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "notification read", fiber.Map{"id": id})
}

// POST /api/notifications/read-all
func (nc *NotificationController) MarkAllRead(c *fiber.Ctx) error {
	actor, err := authz.FromCtx(c)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	n, err := service.MarkAllRead(c.UserContext(), nc.DB, actor.UserID)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "notifications read", fiber.Map{"updated": n})
}

// DELETE /api/notifications/:id
func (nc *NotificationController) Delete(c *fiber.Ctx) error {
	actor, err := authz.FromCtx(c)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	if err := service.Delete(c.UserContext(), nc.DB, actor.UserID, id); err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonDeleted(c, "notification deleted", fiber.Map{"id": id})
}
