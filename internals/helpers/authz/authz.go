package authz

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"compaward_backend/internals/constants"
	"compaward_backend/internals/helpers/apperror"
)

const (
	LocUserID = "user_id"
	LocRoles  = "roles"
)

// Actor is the authenticated caller passed explicitly into services.
type Actor struct {
	UserID uuid.UUID
	Roles  []string
}

func (a Actor) HasRole(role string) bool {
	for _, r := range a.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

func (a Actor) HasAnyRole(roles []string) bool {
	for _, r := range roles {
		if a.HasRole(r) {
			return true
		}
	}
	return false
}

// Can reports whether the actor's roles allow the action.
func Can(a Actor, action constants.Action) bool {
	allowed, ok := constants.ActionRoles[action]
	if !ok {
		return false
	}
	return a.HasAnyRole(allowed)
}

// Require returns a permission error when Can is false.
func Require(a Actor, action constants.Action) error {
	if !Can(a, action) {
		return apperror.Permission(constants.ActionError(action))
	}
	return nil
}

// FromCtx builds the actor from locals written by the JWT middleware.
func FromCtx(c *fiber.Ctx) (Actor, error) {
	var a Actor
	switch v := c.Locals(LocUserID).(type) {
	case uuid.UUID:
		a.UserID = v
	case string:
		id, err := uuid.Parse(strings.TrimSpace(v))
		if err != nil {
			return Actor{}, fiber.NewError(fiber.StatusUnauthorized, "invalid user id in token")
		}
		a.UserID = id
	}
	if a.UserID == uuid.Nil {
		return Actor{}, fiber.NewError(fiber.StatusUnauthorized, "not logged in")
	}
	if roles, ok := c.Locals(LocRoles).([]string); ok {
		a.Roles = roles
	}
	return a, nil
}
