package auth

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"

	"compaward_backend/internals/configs"
	userService "compaward_backend/internals/features/users/users/service"
	"compaward_backend/internals/helpers/apperror"
	"compaward_backend/internals/helpers/authz"
)

// AuthMiddleware verifies the bearer token and loads the caller's roles from the
// database. Tokens are issued elsewhere; only "id" and "exp" are read.
func AuthMiddleware(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, err := bearerToken(c)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		secretKey := configs.JWTSecret
		if secretKey == "" {
			log.Println("[ERROR] JWT_SECRET is empty")
			return fiber.NewError(fiber.StatusInternalServerError, "Missing JWT Secret")
		}

		claims := jwt.MapClaims{}
		parser := jwt.Parser{SkipClaimsValidation: true}
		if _, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.ErrUnauthorized
			}
			return []byte(secretKey), nil
		}); err != nil {
			log.Println("[AUTH] token parse failed:", err)
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Token parse error")
		}

		if err := checkExpiry(claims, 30*time.Second); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		userID, err := subjectID(claims)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		u, err := userService.LoadActive(c.UserContext(), db, userID)
		if err != nil {
			switch apperror.KindOf(err) {
			case apperror.KindNotFound:
				return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - User not found")
			case apperror.KindPermission:
				return fiber.NewError(fiber.StatusForbidden, "Your account has been disabled")
			}
			return err
		}

		c.Locals(authz.LocUserID, u.ID.String())
		c.Locals(authz.LocRoles, u.RoleNames())
		return c.Next()
	}
}
