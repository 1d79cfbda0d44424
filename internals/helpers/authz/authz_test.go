package authz

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compaward_backend/internals/constants"
	"compaward_backend/internals/helpers/apperror"
)

func listed(roles []string, r string) bool {
	for _, x := range roles {
		if x == r {
			return true
		}
	}
	return false
}

func TestEveryActionFollowsItsRoleTable(t *testing.T) {
	for action, allowed := range constants.ActionRoles {
		for _, role := range constants.AllRoles {
			a := Actor{UserID: uuid.New(), Roles: []string{role}}
			assert.Equal(t, listed(allowed, role), Can(a, action), "%s as %s", action, role)
		}
		assert.False(t, Can(Actor{UserID: uuid.New()}, action), "%s without roles", action)
	}
}

func TestUnknownActionIsDenied(t *testing.T) {
	a := Actor{UserID: uuid.New(), Roles: constants.AllRoles}
	assert.False(t, Can(a, constants.Action("team.teleport")))
}

func TestRequireReturnsPermissionError(t *testing.T) {
	student := Actor{UserID: uuid.New(), Roles: []string{constants.RoleStudent}}
	err := Require(student, constants.ActionTeamReview)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindPermission))
	assert.Contains(t, err.Error(), "review teams")

	assert.NoError(t, Require(student, constants.ActionTeamCreate))
}

func TestHasRoleIgnoresCase(t *testing.T) {
	a := Actor{Roles: []string{"teacher"}}
	assert.True(t, a.HasRole(constants.RoleTeacher))
	assert.True(t, a.HasAnyRole([]string{constants.RoleStudent, constants.RoleTeacher}))
	assert.False(t, a.HasAnyRole(constants.CompetitionStaff))
}

func TestFromCtx(t *testing.T) {
	id := uuid.New()
	app := fiber.New()
	app.Get("/ok", func(c *fiber.Ctx) error {
		c.Locals(LocUserID, id.String())
		c.Locals(LocRoles, []string{constants.RoleTeacher})
		a, err := FromCtx(c)
		if err != nil {
			return err
		}
		if a.UserID != id || !a.HasRole(constants.RoleTeacher) {
			return c.SendStatus(fiber.StatusTeapot)
		}
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/anon", func(c *fiber.Ctx) error {
		_, err := FromCtx(c)
		return err
	})

	res, err := app.Test(httptest.NewRequest("GET", "/ok", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	res, err = app.Test(httptest.NewRequest("GET", "/anon", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
}
