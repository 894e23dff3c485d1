package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sweetshop/internal/domain"
	apperrors "github.com/spec-kit/sweetshop/pkg/util"
)

// RequireAuthenticated ensures a principal was loaded.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}

// RequireRole ensures the principal has one of the allowed roles.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.User.Role]; !exists {
			return apperrors.NewForbidden(domain.ErrForbidden.Error())
		}
		return c.Next()
	}
}

// RequireAdmin rejects non-admin callers before any handler runs.
func RequireAdmin() fiber.Handler {
	return RequireRole(domain.RoleAdmin)
}
