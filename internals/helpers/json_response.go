package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Success   bool                `json:"success"`
	Message   string              `json:"message"`
	ErrorCode string              `json:"error_code,omitempty"`
	Errors    map[string][]string `json:"errors,omitempty"`
	Details   fiber.Map           `json:"details,omitempty"`
}

var errorCodes = map[int]string{
	fiber.StatusBadRequest:          "BAD_REQUEST",
	fiber.StatusUnauthorized:        "UNAUTHORIZED",
	fiber.StatusForbidden:           "FORBIDDEN",
	fiber.StatusNotFound:            "NOT_FOUND",
	fiber.StatusConflict:            "CONFLICT",
	fiber.StatusUnprocessableEntity: "VALIDATION_ERROR",
	fiber.StatusTooManyRequests:     "TOO_MANY_REQUESTS",
}

func errorCode(status int) string {
	if code, ok := errorCodes[status]; ok {
		return code
	}
	if status >= 500 {
		return "INTERNAL_ERROR"
	}
	return "ERROR"
}

func orDefault(msg, def string) string {
	if strings.TrimSpace(msg) == "" {
		return def
	}
	return msg
}

func JsonError(c *fiber.Ctx, status int, message string) error {
	return JsonErrorWithDetails(c, status, message, nil)
}

// JsonErrorWithDetails carries extra keys such as current_status, missing or blocking.
func JsonErrorWithDetails(c *fiber.Ctx, status int, message string, details fiber.Map) error {
	if status == 0 {
		status = fiber.StatusInternalServerError
	}
	return c.Status(status).JSON(ErrorResponse{
		Message:   orDefault(message, fiber.ErrInternalServerError.Message),
		ErrorCode: errorCode(status),
		Details:   details,
	})
}

// JsonValidationError answers 422 with per-field messages.
func JsonValidationError(c *fiber.Ctx, message string, fieldErrors map[string][]string) error {
	if fieldErrors == nil {
		fieldErrors = map[string][]string{}
	}
	return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{
		Message:   orDefault(message, "validation failed"),
		ErrorCode: errorCode(fiber.StatusUnprocessableEntity),
		Errors:    fieldErrors,
	})
}

func jsonSuccess(c *fiber.Ctx, status int, message string, data any, extra fiber.Map) error {
	body := fiber.Map{"success": true, "message": message, "data": data}
	for k, v := range extra {
		body[k] = v
	}
	return c.Status(status).JSON(body)
}

// JsonList adds the pagination block; Count defaults to the page size of data.
func JsonList(c *fiber.Ctx, message string, data any, pagination *Pagination) error {
	var extra fiber.Map
	if pagination != nil {
		p := *pagination
		if p.Count == 0 {
			p.Count = lenOf(data)
		}
		extra = fiber.Map{"pagination": p}
	}
	return jsonSuccess(c, fiber.StatusOK, orDefault(message, "ok"), data, extra)
}

func JsonOK(c *fiber.Ctx, message string, data any) error {
	return jsonSuccess(c, fiber.StatusOK, orDefault(message, "ok"), data, nil)
}

func JsonCreated(c *fiber.Ctx, message string, data any) error {
	return jsonSuccess(c, fiber.StatusCreated, orDefault(message, "created"), data, nil)
}

func JsonUpdated(c *fiber.Ctx, message string, data any) error {
	return jsonSuccess(c, fiber.StatusOK, orDefault(message, "updated"), data, nil)
}

func JsonDeleted(c *fiber.Ctx, message string, data any) error {
	return jsonSuccess(c, fiber.StatusOK, orDefault(message, "deleted"), data, nil)
}
