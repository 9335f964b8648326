package service

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-crm/internal/domain"
	"github.com/spec-kit/support-crm/internal/events"
	apperrors "github.com/spec-kit/support-crm/pkg/util/errorutil"
)

type fakeKBRepo struct {
	articles   map[string]*domain.KBArticle
	categories []domain.KBCategory
	nextID     int
}

func newFakeKBRepo() *fakeKBRepo {
	return &fakeKBRepo{articles: map[string]*domain.KBArticle{}}
}

func (r *fakeKBRepo) CreateArticle(_ context.Context, article *domain.KBArticle) error {
	r.nextID++
	article.ID = fmt.Sprintf("a%d", r.nextID)
	article.CreatedAt = time.Now().Add(time.Duration(r.nextID) * time.Second)
	article.UpdatedAt = article.CreatedAt
	copied := *article
	r.articles[article.ID] = &copied
	return nil
}

func (r *fakeKBRepo) UpdateArticle(_ context.Context, article *domain.KBArticle) error {
	if _, ok := r.articles[article.ID]; !ok {
		return pgx.ErrNoRows
	}
	article.UpdatedAt = time.Now()
	copied := *article
	r.articles[article.ID] = &copied
	return nil
}

func (r *fakeKBRepo) DeleteArticle(_ context.Context, id string) error {
	if _, ok := r.articles[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.articles, id)
	return nil
}

func (r *fakeKBRepo) GetArticle(_ context.Context, id string) (*domain.KBArticle, error) {
	article, ok := r.articles[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *article
	return &copied, nil
}

func (r *fakeKBRepo) ListRecentArticles(_ context.Context, limit int) ([]domain.KBArticle, error) {
	all, _ := r.ListArticles(context.Background())
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *fakeKBRepo) ListArticles(context.Context) ([]domain.KBArticle, error) {
	var out []domain.KBArticle
	for _, article := range r.articles {
		out = append(out, *article)
	}
	return out, nil
}

func (r *fakeKBRepo) UpdateEmbedding(_ context.Context, id string, embedding []float32) error {
	article, ok := r.articles[id]
	if !ok {
		return pgx.ErrNoRows
	}
	article.ContentEmbedding = embedding
	return nil
}

func (r *fakeKBRepo) CreateCategory(_ context.Context, category *domain.KBCategory) error {
	category.ID = fmt.Sprintf("c%d", len(r.categories)+1)
	r.categories = append(r.categories, *category)
	return nil
}

func (r *fakeKBRepo) ListCategories(context.Context) ([]domain.KBCategory, error) {
	return r.categories, nil
}

func TestCreateArticlePublishesSaveEvent(t *testing.T) {
	repo := newFakeKBRepo()
	dispatcher := &fakeDispatcher{}
	svc := NewKBService(repo, dispatcher)

	article, err := svc.CreateArticle(context.Background(), "admin-1", ArticleInput{
		Title:   "  Resetting two-factor auth  ",
		Content: "Contact support with your recovery code.",
	})
	if err != nil {
		t.Fatalf("CreateArticle: %v", err)
	}
	if article.Title != "Resetting two-factor auth" {
		t.Errorf("title = %q, want trimmed", article.Title)
	}
	if len(dispatcher.published) != 1 || dispatcher.published[0].Type != events.EventArticleSaved {
		t.Fatalf("events = %+v, want one article_saved", dispatcher.published)
	}
	if dispatcher.published[0].SubjectID != article.ID {
		t.Errorf("event subject = %q, want %q", dispatcher.published[0].SubjectID, article.ID)
	}
}

func TestCreateArticleValidation(t *testing.T) {
	svc := NewKBService(newFakeKBRepo(), &fakeDispatcher{})

	cases := []ArticleInput{
		{Title: "", Content: "body"},
		{Title: "head", Content: ""},
		{Title: "  ", Content: "  "},
	}
	for _, input := range cases {
		if _, err := svc.CreateArticle(context.Background(), "admin-1", input); !apperrors.IsValidation(err) {
			t.Errorf("CreateArticle(%+v) error = %v, want validation error", input, err)
		}
	}
}

func TestUpdateArticleRepublishesSaveEvent(t *testing.T) {
	repo := newFakeKBRepo()
	dispatcher := &fakeDispatcher{}
	svc := NewKBService(repo, dispatcher)
	ctx := context.Background()

	article, err := svc.CreateArticle(ctx, "admin-1", ArticleInput{Title: "Old title", Content: "Old body."})
	if err != nil {
		t.Fatalf("CreateArticle: %v", err)
	}

	updated, err := svc.UpdateArticle(ctx, "admin-1", article.ID, ArticleInput{Title: "New title", Content: "New body."})
	if err != nil {
		t.Fatalf("UpdateArticle: %v", err)
	}
	if updated.Title != "New title" || updated.Content != "New body." {
		t.Errorf("update not applied: %+v", updated)
	}
	if len(dispatcher.published) != 2 || dispatcher.published[1].Type != events.EventArticleSaved {
		t.Fatalf("events = %+v, want second article_saved", dispatcher.published)
	}
}

func TestUpdateArticleNotFound(t *testing.T) {
	svc := NewKBService(newFakeKBRepo(), &fakeDispatcher{})

	_, err := svc.UpdateArticle(context.Background(), "admin-1", "missing", ArticleInput{Title: "t", Content: "c"})
	var domainErr *apperrors.DomainError
	if !asDomainError(err, &domainErr) || domainErr.Code != "NOT_FOUND" {
		t.Fatalf("error = %v, want not found", err)
	}
}

func TestDeleteArticlePublishesDeleteEvent(t *testing.T) {
	repo := newFakeKBRepo()
	dispatcher := &fakeDispatcher{}
	svc := NewKBService(repo, dispatcher)
	ctx := context.Background()

	article, err := svc.CreateArticle(ctx, "admin-1", ArticleInput{Title: "Short lived", Content: "Gone soon."})
	if err != nil {
		t.Fatalf("CreateArticle: %v", err)
	}

	if err := svc.DeleteArticle(ctx, "admin-1", article.ID); err != nil {
		t.Fatalf("DeleteArticle: %v", err)
	}
	last := dispatcher.published[len(dispatcher.published)-1]
	if last.Type != events.EventArticleDeleted || last.SubjectID != article.ID {
		t.Fatalf("last event = %+v, want article_deleted for %s", last, article.ID)
	}

	if _, err := svc.GetArticle(ctx, article.ID); err == nil {
		t.Fatal("deleted article still readable")
	}
}

func TestRecentArticlesCapsAtFiveNewestFirst(t *testing.T) {
	repo := newFakeKBRepo()
	svc := NewKBService(repo, &fakeDispatcher{})
	ctx := context.Background()

	for i := 1; i <= 7; i++ {
		if _, err := svc.CreateArticle(ctx, "admin-1", ArticleInput{
			Title:   fmt.Sprintf("Article %d", i),
			Content: "body",
		}); err != nil {
			t.Fatalf("CreateArticle(%d): %v", i, err)
		}
	}

	recent, err := svc.RecentArticles(ctx)
	if err != nil {
		t.Fatalf("RecentArticles: %v", err)
	}
	if len(recent) != 5 {
		t.Fatalf("recent = %d articles, want 5", len(recent))
	}
	if recent[0].Title != "Article 7" {
		t.Errorf("first recent = %q, want the newest", recent[0].Title)
	}
	for i := 1; i < len(recent); i++ {
		if recent[i].CreatedAt.After(recent[i-1].CreatedAt) {
			t.Fatalf("recent articles out of order at %d", i)
		}
	}
}
