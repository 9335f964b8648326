package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-crm/internal/api/dto"
	"github.com/spec-kit/support-crm/internal/storage"
	apperrors "github.com/spec-kit/support-crm/pkg/util/errorutil"
)

// UploadsHandler stores attachment binaries.
type UploadsHandler struct {
	store storage.ObjectStore
}

// NewUploadsHandler constructs handler.
func NewUploadsHandler(store storage.ObjectStore) *UploadsHandler {
	return &UploadsHandler{store: store}
}

// Upload POST /api/uploads/:kind. Accepts a single file per request,
// capped per kind (image 4MB, pdf 8MB, text 1MB). The route sits behind
// the auth middleware, so unauthenticated callers never reach it.
func (h *UploadsHandler) Upload(c *fiber.Ctx) error {
	kind, ok := storage.KindFor(c.Params("kind"))
	if !ok {
		return apperrors.NewValidationError("unknown upload kind", map[string]any{"kind": c.Params("kind")})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("file required", nil)
	}
	if fileHeader.Size > kind.MaxBytes {
		return apperrors.NewValidationError("file too large", map[string]any{
			"max_bytes": kind.MaxBytes,
			"size":      fileHeader.Size,
		})
	}

	f, err := fileHeader.Open()
	if err != nil {
		return apperrors.NewValidationError("unreadable file", nil)
	}
	defer f.Close()

	obj, err := h.store.Save(c.Context(), fileHeader.Filename, f)
	if err != nil {
		return apperrors.NewUpstreamError("storage", err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.UploadResponse{Path: obj.Path, URL: obj.URL}})
}

// Setup POST /api/storage/setup. Idempotently ensures the attachment
// bucket exists.
func (h *UploadsHandler) Setup(c *fiber.Ctx) error {
	if err := h.store.EnsureBucket(c.Context()); err != nil {
		return apperrors.NewUpstreamError("storage", err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"ready": true}})
}
