package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/lifebridge/internal/domain"
	apperrors "github.com/spec-kit/lifebridge/pkg/util"
)

// RequireRole ensures the caller holds one of the allowed roles.
// Admins pass every guard.
func RequireRole(allowed ...domain.UserRole) fiber.Handler {
	allowedSet := make(map[domain.UserRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.User == nil {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 || principal.User.Role == domain.RoleAdmin {
			return c.Next()
		}
		if _, exists := allowedSet[principal.User.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
