package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-crm/internal/api/dto"
	"github.com/spec-kit/support-crm/internal/auth"
	"github.com/spec-kit/support-crm/internal/domain"
	"github.com/spec-kit/support-crm/internal/embedding"
	"github.com/spec-kit/support-crm/internal/service"
	apperrors "github.com/spec-kit/support-crm/pkg/util/errorutil"
)

// KBHandler manages knowledge-base endpoints.
type KBHandler struct {
	service  *service.KBService
	embedder embedding.Embedder
}

// NewKBHandler constructs handler. The embedder backs the KB-side
// generate-embedding endpoint.
func NewKBHandler(kbService *service.KBService, embedder embedding.Embedder) *KBHandler {
	return &KBHandler{service: kbService, embedder: embedder}
}

// CreateArticle POST /api/kb/articles.
func (h *KBHandler) CreateArticle(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ArticleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	article, err := h.service.CreateArticle(c.Context(), principal.User.ID, service.ArticleInput{
		Title:      req.Title,
		Content:    req.Content,
		CategoryID: req.CategoryID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": articleResponse(article)})
}

// UpdateArticle PUT /api/kb/articles/:id.
func (h *KBHandler) UpdateArticle(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ArticleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	article, err := h.service.UpdateArticle(c.Context(), principal.User.ID, c.Params("id"), service.ArticleInput{
		Title:      req.Title,
		Content:    req.Content,
		CategoryID: req.CategoryID,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": articleResponse(article)})
}

// DeleteArticle DELETE /api/kb/articles/:id.
func (h *KBHandler) DeleteArticle(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.DeleteArticle(c.Context(), principal.User.ID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// RecentArticles GET /api/kb/articles/recent.
func (h *KBHandler) RecentArticles(c *fiber.Ctx) error {
	articles, err := h.service.RecentArticles(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.ArticleResponse, 0, len(articles))
	for i := range articles {
		items = append(items, articleResponse(&articles[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetArticle GET /api/kb/articles/:id.
func (h *KBHandler) GetArticle(c *fiber.Ctx) error {
	article, err := h.service.GetArticle(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": articleResponse(article)})
}

// CreateCategory POST /api/kb/categories.
func (h *KBHandler) CreateCategory(c *fiber.Ctx) error {
	var req dto.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	category, err := h.service.CreateCategory(c.Context(), req.Name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.CategoryResponse{ID: category.ID, Name: category.Name}})
}

// ListCategories GET /api/kb/categories.
func (h *KBHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.service.ListCategories(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.CategoryResponse, 0, len(categories))
	for _, category := range categories {
		items = append(items, dto.CategoryResponse{ID: category.ID, Name: category.Name})
	}
	return c.JSON(fiber.Map{"data": items})
}

// GenerateEmbedding POST /api/kb/generate-embedding.
func (h *KBHandler) GenerateEmbedding(c *fiber.Ctx) error {
	return generateEmbedding(c, h.embedder)
}

func generateEmbedding(c *fiber.Ctx, embedder embedding.Embedder) error {
	var req dto.GenerateEmbeddingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	vector, err := embedder.Embed(c.Context(), req.Text)
	if err != nil {
		return err
	}
	return c.JSON(dto.GenerateEmbeddingResponse{Embedding: vector})
}

func articleResponse(article *domain.KBArticle) dto.ArticleResponse {
	return dto.ArticleResponse{
		ID:         article.ID,
		Title:      article.Title,
		Content:    article.Content,
		CategoryID: article.CategoryID,
		Category:   article.CategoryName,
		CreatedAt:  article.CreatedAt,
		UpdatedAt:  article.UpdatedAt,
	}
}
