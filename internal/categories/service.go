package categories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/devhaven/marketplace-backend/pkg/db"
	"github.com/devhaven/marketplace-backend/pkg/db/models"
	pkgerrors "github.com/devhaven/marketplace-backend/pkg/errors"
)

var slugInvalidRe = regexp.MustCompile(`[^a-z0-9]+`)

// CreateCategoryRequest carries the fields for a new category.
type CreateCategoryRequest struct {
	Name        string     `json:"name" validate:"required"`
	Description *string    `json:"description,omitempty"`
	ImageURL    *string    `json:"image_url,omitempty" validate:"omitempty,url"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
}

// Service exposes read and admin write operations on categories.
type Service interface {
	List(ctx context.Context) ([]models.Category, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	Create(ctx context.Context, req CreateCategoryRequest) (*models.Category, error)
}

type categoryRepository interface {
	Create(ctx context.Context, category *models.Category) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
}

type service struct {
	repo categoryRepository
}

// NewService constructs a category service.
func NewService(repo categoryRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("category repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context) ([]models.Category, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}
	return rows, nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	row, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load category")
	}
	return row, nil
}

func (s *service) Create(ctx context.Context, req CreateCategoryRequest) (*models.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	if req.ParentID != nil {
		if _, err := s.repo.FindByID(ctx, *req.ParentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "parent category not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load parent category")
		}
	}

	row, err := s.repo.Create(ctx, &models.Category{
		Name:        name,
		Slug:        Slugify(name),
		Description: req.Description,
		ImageURL:    req.ImageURL,
		ParentID:    req.ParentID,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "idx_categories_slug") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create category")
	}
	return row, nil
}

// Slugify lowercases the name and collapses runs of non-alphanumerics to a dash.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugInvalidRe.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
