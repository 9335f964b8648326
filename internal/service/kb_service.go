package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-crm/internal/domain"
	"github.com/spec-kit/support-crm/internal/events"
	"github.com/spec-kit/support-crm/internal/repository"
	apperrors "github.com/spec-kit/support-crm/pkg/util/errorutil"
)

const recentArticleLimit = 5

// KBService manages knowledge-base articles. Every save publishes an
// event so the article's embedding is regenerated from the latest
// title+content.
type KBService struct {
	articles   repository.KBRepository
	dispatcher events.Dispatcher
}

// NewKBService constructs the service.
func NewKBService(articles repository.KBRepository, dispatcher events.Dispatcher) *KBService {
	return &KBService{articles: articles, dispatcher: dispatcher}
}

// ArticleInput describes article create/update payload.
type ArticleInput struct {
	Title      string
	Content    string
	CategoryID *string
}

// CreateArticle stores a new article and schedules its embedding.
func (s *KBService) CreateArticle(ctx context.Context, actorID string, input ArticleInput) (*domain.KBArticle, error) {
	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" || content == "" {
		return nil, apperrors.NewValidationError("title and content required", nil)
	}

	article := &domain.KBArticle{
		Title:      title,
		Content:    content,
		CategoryID: input.CategoryID,
	}
	if err := s.articles.CreateArticle(ctx, article); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventArticleSaved, article.ID, actorID)
	return article, nil
}

// UpdateArticle edits an article; the stale embedding is replaced.
func (s *KBService) UpdateArticle(ctx context.Context, actorID, articleID string, input ArticleInput) (*domain.KBArticle, error) {
	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" || content == "" {
		return nil, apperrors.NewValidationError("title and content required", nil)
	}

	article, err := s.articles.GetArticle(ctx, articleID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("article", map[string]any{"id": articleID})
		}
		return nil, err
	}

	article.Title = title
	article.Content = content
	article.CategoryID = input.CategoryID
	if err := s.articles.UpdateArticle(ctx, article); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventArticleSaved, article.ID, actorID)
	return article, nil
}

// DeleteArticle removes an article together with its index document, so
// no stale embedding outlives the source text.
func (s *KBService) DeleteArticle(ctx context.Context, actorID, articleID string) error {
	if err := s.articles.DeleteArticle(ctx, articleID); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("article", map[string]any{"id": articleID})
		}
		return err
	}
	s.publish(ctx, events.EventArticleDeleted, articleID, actorID)
	return nil
}

// RecentArticles returns up to five newest articles with joined
// category, newest first.
func (s *KBService) RecentArticles(ctx context.Context) ([]domain.KBArticle, error) {
	return s.articles.ListRecentArticles(ctx, recentArticleLimit)
}

// GetArticle fetches a single article.
func (s *KBService) GetArticle(ctx context.Context, articleID string) (*domain.KBArticle, error) {
	article, err := s.articles.GetArticle(ctx, articleID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("article", map[string]any{"id": articleID})
		}
		return nil, err
	}
	return article, nil
}

// CreateCategory adds an article category.
func (s *KBService) CreateCategory(ctx context.Context, name string) (*domain.KBCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	category := &domain.KBCategory{Name: name}
	if err := s.articles.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// ListCategories lists article categories.
func (s *KBService) ListCategories(ctx context.Context) ([]domain.KBCategory, error) {
	return s.articles.ListCategories(ctx)
}

func (s *KBService) publish(ctx context.Context, eventType events.EventType, subjectID, actorID string) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		ActorID:   actorID,
		Timestamp: time.Now(),
	})
}
