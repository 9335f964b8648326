package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-crm/internal/domain"
	apperrors "github.com/spec-kit/support-crm/pkg/util/errorutil"
)

// Access is the outcome of a role gate check.
type Access int

const (
	Deny Access = iota
	Allow
)

// LoginRoute is where unauthenticated page requests land.
const LoginRoute = "/login"

// ResolveAccess decides whether a role may enter a route group that
// requires another role. Admins pass every gate.
func ResolveAccess(role, required domain.Role) Access {
	if !role.IsValid() {
		return Deny
	}
	if role == domain.RoleAdmin || role == required {
		return Allow
	}
	return Deny
}

// HomeRoute maps a role to its landing page.
func HomeRoute(role domain.Role) string {
	switch role {
	case domain.RoleAdmin:
		return "/overview"
	case domain.RoleAgent:
		return "/workspace"
	case domain.RoleCustomer:
		return "/dashboard"
	}
	return LoginRoute
}

// GuardPage protects a dashboard route group. A role mismatch redirects to
// the caller's own home route and a missing or broken session redirects to
// login; neither case surfaces an error to the client.
func GuardPage(required domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return c.Redirect(LoginRoute, fiber.StatusFound)
		}
		if ResolveAccess(principal.User.Role, required) != Allow {
			return c.Redirect(HomeRoute(principal.User.Role), fiber.StatusFound)
		}
		return c.Next()
	}
}

// RequireRole protects API routes, answering 403 on mismatch.
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
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
