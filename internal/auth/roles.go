package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/staff-console/pkg/util/errorutil"
)

// RequireSession ensures an operator is signed in.
func RequireSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("sign in required")
		}
		return c.Next()
	}
}
