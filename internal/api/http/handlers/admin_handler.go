package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-crm/internal/api/dto"
	"github.com/spec-kit/support-crm/internal/service"
	apperrors "github.com/spec-kit/support-crm/pkg/util/errorutil"
)

// AdminHandler exposes admin-only operations: role reassignment and the
// tag registry.
type AdminHandler struct {
	auth *service.AuthService
	tags *service.TagService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(authService *service.AuthService, tagService *service.TagService) *AdminHandler {
	return &AdminHandler{auth: authService, tags: tagService}
}

// ChangeRole PATCH /api/admin/users/:id/role.
func (h *AdminHandler) ChangeRole(c *fiber.Ctx) error {
	var req dto.ChangeRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.auth.ChangeRole(c.Context(), c.Params("id"), req.Role); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"role": req.Role}})
}

// CreateTag POST /api/admin/tags.
func (h *AdminHandler) CreateTag(c *fiber.Ctx) error {
	var req dto.CreateTagRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	tag, err := h.tags.CreateTag(c.Context(), req.Name, req.Color)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.TagResponse{ID: tag.ID, Name: tag.Name, Color: tag.Color}})
}

// ListTags GET /api/admin/tags.
func (h *AdminHandler) ListTags(c *fiber.Ctx) error {
	tags, err := h.tags.ListTags(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.TagResponse, 0, len(tags))
	for _, tag := range tags {
		items = append(items, dto.TagResponse{ID: tag.ID, Name: tag.Name, Color: tag.Color})
	}
	return c.JSON(fiber.Map{"data": items})
}
