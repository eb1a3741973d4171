package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/securohelp/case-service/internal/domain"
	apperrors "github.com/securohelp/case-service/pkg/util/errorutil"
)

// RequireRole ensures the principal has one of the allowed roles.
func RequireRole(allowed ...domain.UserRole) fiber.Handler {
	allowedSet := make(map[domain.UserRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.Account == nil {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Account.Role]; !exists {
			return apperrors.NewDomainError("FORBIDDEN", "insufficient role", http.StatusForbidden, nil)
		}
		return c.Next()
	}
}
