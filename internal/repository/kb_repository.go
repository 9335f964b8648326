package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-crm/internal/domain"
)

// KBRepository manages knowledge-base articles and categories.
type KBRepository interface {
	CreateArticle(ctx context.Context, article *domain.KBArticle) error
	UpdateArticle(ctx context.Context, article *domain.KBArticle) error
	DeleteArticle(ctx context.Context, id string) error
	GetArticle(ctx context.Context, id string) (*domain.KBArticle, error)
	ListRecentArticles(ctx context.Context, limit int) ([]domain.KBArticle, error)
	ListArticles(ctx context.Context) ([]domain.KBArticle, error)
	UpdateEmbedding(ctx context.Context, id string, embedding []float32) error
	CreateCategory(ctx context.Context, category *domain.KBCategory) error
	ListCategories(ctx context.Context) ([]domain.KBCategory, error)
}

type kbRepository struct {
	pool *pgxpool.Pool
}

// NewKBRepository instantiates repository.
func NewKBRepository(pool *pgxpool.Pool) KBRepository {
	return &kbRepository{pool: pool}
}

func (r *kbRepository) CreateArticle(ctx context.Context, article *domain.KBArticle) error {
	const query = `
        INSERT INTO kb_articles (title, content, category_id)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		article.Title,
		article.Content,
		article.CategoryID,
	).Scan(&article.ID, &article.CreatedAt, &article.UpdatedAt)
}

func (r *kbRepository) UpdateArticle(ctx context.Context, article *domain.KBArticle) error {
	const query = `
        UPDATE kb_articles SET title=$1, content=$2, category_id=$3, updated_at=NOW()
        WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query,
		article.Title,
		article.Content,
		article.CategoryID,
		article.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *kbRepository) DeleteArticle(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM kb_articles WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

const articleColumns = `a.id, a.title, a.content, a.category_id, COALESCE(c.name, ''), a.content_embedding, a.created_at, a.updated_at`

func (r *kbRepository) GetArticle(ctx context.Context, id string) (*domain.KBArticle, error) {
	query := `
        SELECT ` + articleColumns + `
        FROM kb_articles a LEFT JOIN kb_categories c ON c.id = a.category_id
        WHERE a.id=$1`
	var article domain.KBArticle
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&article.ID,
		&article.Title,
		&article.Content,
		&article.CategoryID,
		&article.CategoryName,
		&article.ContentEmbedding,
		&article.CreatedAt,
		&article.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &article, nil
}

// ListRecentArticles returns the newest articles with joined category,
// newest first.
func (r *kbRepository) ListRecentArticles(ctx context.Context, limit int) ([]domain.KBArticle, error) {
	if limit <= 0 {
		limit = 5
	}
	query := `
        SELECT ` + articleColumns + `
        FROM kb_articles a LEFT JOIN kb_categories c ON c.id = a.category_id
        ORDER BY a.created_at DESC LIMIT $1`
	return r.listArticles(ctx, query, limit)
}

func (r *kbRepository) ListArticles(ctx context.Context) ([]domain.KBArticle, error) {
	query := `
        SELECT ` + articleColumns + `
        FROM kb_articles a LEFT JOIN kb_categories c ON c.id = a.category_id
        ORDER BY a.updated_at DESC`
	return r.listArticles(ctx, query)
}

func (r *kbRepository) listArticles(ctx context.Context, query string, args ...any) ([]domain.KBArticle, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.KBArticle
	for rows.Next() {
		var article domain.KBArticle
		if err := rows.Scan(
			&article.ID,
			&article.Title,
			&article.Content,
			&article.CategoryID,
			&article.CategoryName,
			&article.ContentEmbedding,
			&article.CreatedAt,
			&article.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, article)
	}
	return result, rows.Err()
}

func (r *kbRepository) UpdateEmbedding(ctx context.Context, id string, embedding []float32) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE kb_articles SET content_embedding=$1 WHERE id=$2`, embedding, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *kbRepository) CreateCategory(ctx context.Context, category *domain.KBCategory) error {
	const query = `
        INSERT INTO kb_categories (name)
        VALUES ($1)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query, category.Name).Scan(&category.ID, &category.CreatedAt)
}

func (r *kbRepository) ListCategories(ctx context.Context) ([]domain.KBCategory, error) {
	const query = `SELECT id, name, created_at FROM kb_categories ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.KBCategory
	for rows.Next() {
		var category domain.KBCategory
		if err := rows.Scan(&category.ID, &category.Name, &category.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, category)
	}
	return result, rows.Err()
}
