package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/beautypos-api/internal/domain/entity"
	"github.com/sangkips/beautypos-api/internal/domain/repository"
	"github.com/sangkips/beautypos-api/pkg/apperror"
)

// CategoryService handles category-related operations
type CategoryService struct {
	categoryRepo repository.CategoryRepository
}

// NewCategoryService creates a new category service
func NewCategoryService(categoryRepo repository.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// CategoryInput represents the create/update category input
type CategoryInput struct {
	Name        string
	Description *string
}

// CreateCategory creates a new category with a unique name
func (s *CategoryService) CreateCategory(ctx context.Context, input *CategoryInput) (*entity.Category, error) {
	name := strings.TrimSpace(input.Name)
	if err := s.ensureNameFree(ctx, name, uuid.Nil); err != nil {
		return nil, err
	}

	category := &entity.Category{Name: name, Description: input.Description}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) ensureNameFree(ctx context.Context, name string, self uuid.UUID) error {
	if name == "" {
		return apperror.NewFieldError("name", "name is required")
	}
	existing, err := s.categoryRepo.GetByName(ctx, name)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != self {
		return apperror.NewConflictError("Category with this name already exists")
	}
	return nil
}

// GetCategory retrieves a category by ID
func (s *CategoryService) GetCategory(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, apperror.NewNotFoundError("Category")
	}
	return category, nil
}

// UpdateCategory renames or re-describes a category
func (s *CategoryService) UpdateCategory(ctx context.Context, id uuid.UUID, input *CategoryInput) (*entity.Category, error) {
	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if err := s.ensureNameFree(ctx, name, id); err != nil {
		return nil, err
	}
	category.Name = name
	category.Description = input.Description

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory deletes a category that no product references
func (s *CategoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetCategory(ctx, id); err != nil {
		return err
	}
	count, err := s.categoryRepo.CountProducts(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperror.NewConflictError("Category still has products")
	}
	return s.categoryRepo.Delete(ctx, id)
}

// ListCategories lists categories ordered by name
func (s *CategoryService) ListCategories(ctx context.Context, search string) ([]entity.Category, error) {
	return s.categoryRepo.List(ctx, search)
}
