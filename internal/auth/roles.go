package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/parking-service/internal/domain"
	apperrors "github.com/spec-kit/parking-service/pkg/util/errorutil"
)

// RequireRole ensures the principal holds one of the allowed roles.
// The role is read from the stored user, not the token, so a stale claim
// cannot grant access.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.User == nil {
			return apperrors.NewUnauthorized(unauthorizedMessage)
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.User.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
