package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"nexus-store/internal/model"
	"nexus-store/internal/repository"
	"nexus-store/internal/slug"

	"github.com/rs/zerolog"
)

type categoryService struct {
	categoryRepo repository.CategoryRepository
	logger       zerolog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(categoryRepo repository.CategoryRepository, logger zerolog.Logger) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		logger:       logger.With().Str("service", "category").Logger(),
	}
}

var errCategoryName = model.Validationf(model.ErrCodeValidationFailed, "Category name must contain letters or digits")

func (s *categoryService) List(ctx context.Context) ([]model.Category, error) {
	categories, err := s.categoryRepo.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *categoryService) ListAll(ctx context.Context) ([]model.Category, error) {
	categories, err := s.categoryRepo.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *categoryService) GetByID(ctx context.Context, id int64) (*model.CategoryDetail, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if category == nil || !category.IsActive {
		return nil, model.ErrCategoryNotFound
	}

	children, err := s.categoryRepo.ListChildren(ctx, id, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list subcategories: %w", err)
	}

	return &model.CategoryDetail{Category: *category, Subcategories: children}, nil
}

func (s *categoryService) Create(ctx context.Context, req *model.CreateCategoryRequest) (*model.Category, error) {
	name := strings.TrimSpace(req.Name)
	categorySlug := slug.Make(name)
	if categorySlug == "" {
		return nil, errCategoryName
	}

	if req.ParentID != nil {
		if err := s.checkParentExists(ctx, *req.ParentID); err != nil {
			return nil, err
		}
	}

	category := &model.Category{
		Name:        name,
		Description: req.Description,
		ParentID:    req.ParentID,
		Slug:        categorySlug,
		IsActive:    req.IsActive == nil || *req.IsActive,
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("category_id", category.ID).
		Str("slug", category.Slug).
		Msg("category created")

	return s.reload(ctx, category.ID)
}

func (s *categoryService) Update(ctx context.Context, id int64, req *model.UpdateCategoryRequest) (*model.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if category == nil {
		return nil, model.ErrCategoryNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		categorySlug := slug.Make(name)
		if categorySlug == "" {
			return nil, errCategoryName
		}
		category.Name = name
		category.Slug = categorySlug
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	if req.ParentID != nil {
		if err := s.checkParent(ctx, id, *req.ParentID); err != nil {
			return nil, err
		}
		category.ParentID = req.ParentID
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("category_id", id).Msg("category updated")

	return s.reload(ctx, id)
}

func (s *categoryService) Delete(ctx context.Context, id int64) error {
	ok, err := s.categoryRepo.SoftDelete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if !ok {
		return model.ErrCategoryNotFound
	}

	s.logger.Info().Int64("category_id", id).Msg("category deactivated")
	return nil
}

func (s *categoryService) checkParentExists(ctx context.Context, parentID int64) error {
	parent, err := s.categoryRepo.GetByID(ctx, parentID)
	if err != nil {
		return fmt.Errorf("failed to get parent category: %w", err)
	}
	if parent == nil {
		return model.ErrInvalidParent
	}
	return nil
}

// checkParent rejects parents that do not exist or that sit inside the
// category's own subtree.
func (s *categoryService) checkParent(ctx context.Context, id, parentID int64) error {
	if err := s.checkParentExists(ctx, parentID); err != nil {
		return err
	}

	subtree, err := s.categoryRepo.SubtreeIDs(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load category subtree: %w", err)
	}
	if slices.Contains(subtree, parentID) {
		return model.ErrInvalidParent
	}
	return nil
}

func (s *categoryService) reload(ctx context.Context, id int64) (*model.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload category: %w", err)
	}
	if category == nil {
		return nil, model.ErrCategoryNotFound
	}
	return category, nil
}
