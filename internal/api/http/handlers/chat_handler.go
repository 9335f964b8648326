package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-crm/internal/api/dto"
	"github.com/spec-kit/support-crm/internal/embedding"
	"github.com/spec-kit/support-crm/internal/service"
	apperrors "github.com/spec-kit/support-crm/pkg/util/errorutil"
)

// ChatHandler serves retrieval-augmented prompt assembly and the
// chat-side embedding endpoint.
type ChatHandler struct {
	service  *service.ChatService
	embedder embedding.Embedder
}

// NewChatHandler constructs handler.
func NewChatHandler(chatService *service.ChatService, embedder embedding.Embedder) *ChatHandler {
	return &ChatHandler{service: chatService, embedder: embedder}
}

// Assemble POST /api/chat. Returns the rendered prompt and cited
// sources; calling the LLM is left to the client.
func (h *ChatHandler) Assemble(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	prompt, err := h.service.Assemble(c.Context(), req.Query)
	if err != nil {
		return err
	}

	sources := make([]dto.ChatSourceResponse, 0, len(prompt.Sources))
	for _, src := range prompt.Sources {
		sources = append(sources, dto.ChatSourceResponse{
			Kind:       string(src.Kind),
			ID:         src.ID,
			Title:      src.Title,
			Similarity: src.Similarity,
		})
	}
	return c.JSON(fiber.Map{"data": dto.ChatResponse{Prompt: prompt.Prompt, Sources: sources}})
}

// GenerateEmbedding POST /api/chat/generate-embedding.
func (h *ChatHandler) GenerateEmbedding(c *fiber.Ctx) error {
	return generateEmbedding(c, h.embedder)
}
