package service

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-crm/internal/domain"
	"github.com/spec-kit/support-crm/internal/repository"
	apperrors "github.com/spec-kit/support-crm/pkg/util/errorutil"
)

// TagService administers the tag registry. Tag names are unique.
type TagService struct {
	tags repository.TagRepository
}

// NewTagService constructs the service.
func NewTagService(tags repository.TagRepository) *TagService {
	return &TagService{tags: tags}
}

// CreateTag registers a new tag.
func (s *TagService) CreateTag(ctx context.Context, name, color string) (*domain.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	if _, err := s.tags.GetByName(ctx, name); err == nil {
		return nil, apperrors.NewConflict("tag name already exists", map[string]any{"name": name})
	} else if err != pgx.ErrNoRows {
		return nil, err
	}

	tag := &domain.Tag{Name: name, Color: strings.TrimSpace(color)}
	if err := s.tags.Create(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// ListTags lists the registry.
func (s *TagService) ListTags(ctx context.Context) ([]domain.Tag, error) {
	return s.tags.List(ctx)
}
