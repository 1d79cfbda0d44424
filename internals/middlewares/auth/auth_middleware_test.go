package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"compaward_backend/internals/configs"
	"compaward_backend/internals/constants"
	userModel "compaward_backend/internals/features/users/users/model"
	helper "compaward_backend/internals/helpers"
	"compaward_backend/internals/helpers/authz"
	"compaward_backend/internals/testutil"
)

const testSecret = "test-secret"

func sign(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func newApp(db *gorm.DB) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: helper.ErrorHandler})
	api := app.Group("/api", AuthMiddleware(db))
	api.Get("/me", func(c *fiber.Ctx) error {
		a, err := authz.FromCtx(c)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"id": a.UserID.String(), "roles": a.Roles})
	})
	api.Get("/review", RequireAction(constants.ActionTeamReview), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	api.Get("/root", OnlyRoles("", constants.RoleAdministrator), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func get(t *testing.T, app *fiber.App, path, token string) int {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := app.Test(req)
	require.NoError(t, err)
	return res.StatusCode
}

func TestAuthMiddleware(t *testing.T) {
	configs.JWTSecret = testSecret
	db := testutil.NewDB(t)
	student := testutil.CreateUser(t, db, "S100", constants.RoleStudent)
	admin := testutil.CreateUser(t, db, "ADM", constants.RoleCompetitionAdmin)
	app := newApp(db)

	valid := func(id uuid.UUID) string {
		return sign(t, testSecret, jwt.MapClaims{"id": id.String(), "exp": time.Now().Add(time.Hour).Unix()})
	}

	assert.Equal(t, fiber.StatusOK, get(t, app, "/api/me", valid(student.ID)))
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/api/me", ""))
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/api/me", sign(t, "other", jwt.MapClaims{
		"id": student.ID.String(), "exp": time.Now().Add(time.Hour).Unix(),
	})))
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/api/me", sign(t, testSecret, jwt.MapClaims{
		"id": student.ID.String(), "exp": time.Now().Add(-time.Hour).Unix(),
	})))
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/api/me", valid(uuid.New())))

	// roles come from the database, not the token
	assert.Equal(t, fiber.StatusForbidden, get(t, app, "/api/review", valid(student.ID)))
	assert.Equal(t, fiber.StatusNoContent, get(t, app, "/api/review", valid(admin.ID)))
	assert.Equal(t, fiber.StatusForbidden, get(t, app, "/api/root", valid(admin.ID)))

	require.NoError(t, db.Model(&userModel.UserModel{}).Where("id = ?", student.ID).Update("is_active", false).Error)
	assert.Equal(t, fiber.StatusForbidden, get(t, app, "/api/me", valid(student.ID)))
}
