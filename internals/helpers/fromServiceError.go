package helper

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"compaward_backend/internals/helpers/apperror"
	"compaward_backend/internals/helpers/errreport"
)

// FromServiceError maps a service error to the JSON error shape.
// Internal errors are reported and answered with a generic message.
func FromServiceError(c *fiber.Ctx, err error) error {
	if err == nil {
		return nil
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return JsonError(c, fe.Code, fe.Message)
	}

	ae, ok := apperror.As(err)
	if !ok {
		ae = apperror.Internal(err, "")
	}

	switch ae.Kind {
	case apperror.KindValidation:
		return JsonValidationError(c, ae.Message, ae.Fields)
	case apperror.KindStateConflict:
		return JsonErrorWithDetails(c, fiber.StatusConflict, ae.Message, fiber.Map{"current_status": ae.CurrentStatus})
	case apperror.KindReference:
		return JsonErrorWithDetails(c, fiber.StatusBadRequest, ae.Message, fiber.Map{"missing": ae.Missing})
	case apperror.KindPermission:
		return JsonError(c, fiber.StatusForbidden, ae.Message)
	case apperror.KindNotFound:
		return JsonError(c, fiber.StatusNotFound, ae.Message)
	case apperror.KindIntegrity:
		return JsonErrorWithDetails(c, fiber.StatusConflict, ae.Message, fiber.Map{"blocking": ae.Blocking})
	}

	errreport.Report(err, map[string]interface{}{
		"method": c.Method(),
		"path":   c.OriginalURL(),
		"reqid":  c.Locals("reqid"),
	})
	return JsonError(c, fiber.StatusInternalServerError, "internal server error")
}

// ErrorHandler is the fiber app-level handler for errors returned by middleware.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return FromServiceError(c, err)
}
