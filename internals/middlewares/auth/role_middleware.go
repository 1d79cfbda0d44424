package auth

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"compaward_backend/internals/constants"
	helper "compaward_backend/internals/helpers"
	"compaward_backend/internals/helpers/authz"
)

// RequireAction lets the request through when the caller's roles allow the action.
func RequireAction(action constants.Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := authz.FromCtx(c)
		if err != nil {
			return helper.FromServiceError(c, err)
		}
		if err := authz.Require(actor, action); err != nil {
			log.Printf("[AUTH] %s denied %s (roles=%v)", actor.UserID, action, actor.Roles)
			return helper.FromServiceError(c, err)
		}
		return c.Next()
	}
}

// OnlyRoles is the plain role guard used by route groups.
func OnlyRoles(customMessage string, roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := authz.FromCtx(c)
		if err != nil {
			return helper.FromServiceError(c, err)
		}
		if !actor.HasAnyRole(roles) {
			if customMessage == "" {
				customMessage = "Forbidden: you are not authorized to access this resource"
			}
			return helper.JsonError(c, fiber.StatusForbidden, customMessage)
		}
		return c.Next()
	}
}
