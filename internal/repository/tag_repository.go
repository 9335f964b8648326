package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-crm/internal/domain"
)

// TagRepository manages the admin-administered tag registry.
type TagRepository interface {
	Create(ctx context.Context, tag *domain.Tag) error
	GetByName(ctx context.Context, name string) (*domain.Tag, error)
	List(ctx context.Context) ([]domain.Tag, error)
}

type tagRepository struct {
	pool *pgxpool.Pool
}

// NewTagRepository constructs repository.
func NewTagRepository(pool *pgxpool.Pool) TagRepository {
	return &tagRepository{pool: pool}
}

func (r *tagRepository) Create(ctx context.Context, tag *domain.Tag) error {
	const query = `
        INSERT INTO tags (name, color)
        VALUES ($1,$2)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query, tag.Name, tag.Color).Scan(&tag.ID, &tag.CreatedAt)
}

func (r *tagRepository) GetByName(ctx context.Context, name string) (*domain.Tag, error) {
	const query = `SELECT id, name, color, created_at FROM tags WHERE name=$1`
	var tag domain.Tag
	if err := r.pool.QueryRow(ctx, query, name).Scan(&tag.ID, &tag.Name, &tag.Color, &tag.CreatedAt); err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepository) List(ctx context.Context) ([]domain.Tag, error) {
	const query = `SELECT id, name, color, created_at FROM tags ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Tag
	for rows.Next() {
		var tag domain.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Color, &tag.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, tag)
	}
	return result, rows.Err()
}
