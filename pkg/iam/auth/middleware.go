package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/heyitsgautham/skil-sync-fullstack/pkg/kernel"
)

const (
	localsAccountID = "account_id"
	localsEmail     = "account_email"
	localsRole      = "account_role"
)

// Middleware validates bearer tokens and, when roles are given, enforces
// that the token carries one of them.
func Middleware(tokenService TokenService, roles ...Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Missing authorization header")
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid authorization format")
		}

		claims, err := tokenService.ValidateToken(parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
		}

		if len(roles) > 0 {
			allowed := false
			for _, r := range roles {
				if claims.Role == r {
					allowed = true
					break
				}
			}
			if !allowed {
				return fiber.NewError(fiber.StatusForbidden, "Insufficient role")
			}
		}

		c.Locals(localsAccountID, claims.AccountID)
		c.Locals(localsEmail, claims.Email)
		c.Locals(localsRole, claims.Role)

		return c.Next()
	}
}

// GetAccountID extracts the authenticated account id from the request context.
func GetAccountID(c *fiber.Ctx) (kernel.AccountID, bool) {
	id, ok := c.Locals(localsAccountID).(kernel.AccountID)
	return id, ok
}

// GetEmail extracts the authenticated email from the request context.
func GetEmail(c *fiber.Ctx) (kernel.Email, bool) {
	email, ok := c.Locals(localsEmail).(kernel.Email)
	return email, ok
}

// GetRole extracts the authenticated role from the request context.
func GetRole(c *fiber.Ctx) (Role, bool) {
	role, ok := c.Locals(localsRole).(Role)
	return role, ok
}
