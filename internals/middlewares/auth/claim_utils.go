package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var (
	errNoToken      = errors.New("unauthorized - no token provided")
	errTokenFormat  = errors.New("unauthorized - invalid token format")
	errTokenExpired = errors.New("unauthorized - token expired")
	errTokenSubject = errors.New("unauthorized - invalid or missing user id")
)

// bearerToken reads "Authorization: Bearer <jwt>", falling back to the
// access_token cookie used by the web client.
func bearerToken(c *fiber.Ctx) (string, error) {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if header == "" {
		if tok := strings.TrimSpace(c.Cookies("access_token")); tok != "" {
			return tok, nil
		}
		return "", errNoToken
	}
	scheme, tok, ok := strings.Cut(header, " ")
	tok = strings.Trim(strings.TrimSpace(tok), "\"'")
	if !ok || !strings.EqualFold(scheme, "Bearer") || tok == "" {
		return "", errTokenFormat
	}
	return tok, nil
}

// checkExpiry requires an exp claim; skew absorbs clock drift.
func checkExpiry(claims jwt.MapClaims, skew time.Duration) error {
	if _, ok := claims["exp"]; !ok {
		return errTokenExpired
	}
	if !claims.VerifyExpiresAt(time.Now().Add(-skew).Unix(), true) {
		return errTokenExpired
	}
	return nil
}

func subjectID(claims jwt.MapClaims) (uuid.UUID, error) {
	s, ok := claims["id"].(string)
	if !ok {
		return uuid.Nil, errTokenSubject
	}
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, errTokenSubject
	}
	return id, nil
}
