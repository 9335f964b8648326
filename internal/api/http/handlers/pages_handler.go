package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-crm/internal/auth"
)

// PagesHandler answers the role-gated dashboard shells. The frontend owns
// the rendering; these endpoints exist so the role gate has real routes to
// protect and return the shell descriptor the client hydrates from.
type PagesHandler struct{}

// NewPagesHandler constructs handler.
func NewPagesHandler() *PagesHandler {
	return &PagesHandler{}
}

// Login GET /login. An already-authenticated caller is bounced to their
// own home route instead of seeing the login page again.
func (h *PagesHandler) Login(c *fiber.Ctx) error {
	if principal, ok := auth.PrincipalFromContext(c); ok {
		return c.Redirect(auth.HomeRoute(principal.User.Role), fiber.StatusFound)
	}
	return c.JSON(fiber.Map{"page": "login"})
}

// Overview GET /overview. Admin landing page.
func (h *PagesHandler) Overview(c *fiber.Ctx) error {
	return shellResponse(c, "overview")
}

// Workspace GET /workspace. Agent landing page.
func (h *PagesHandler) Workspace(c *fiber.Ctx) error {
	return shellResponse(c, "workspace")
}

// Dashboard GET /dashboard. Customer landing page.
func (h *PagesHandler) Dashboard(c *fiber.Ctx) error {
	return shellResponse(c, "dashboard")
}

func shellResponse(c *fiber.Ctx, page string) error {
	principal, _ := auth.PrincipalFromContext(c)
	return c.JSON(fiber.Map{
		"page": page,
		"user": fiber.Map{
			"id":   principal.User.ID,
			"name": principal.User.Name,
			"role": principal.User.Role,
		},
	})
}
