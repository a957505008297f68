package service

import (
	"context"
	"fmt"
	"time"

	"bookstore/internal/model"
	"bookstore/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const defaultPopularLimit = 5

// categoryService implements CategoryService.
type categoryService struct {
	repo     repository.CategoryRepository
	bookRepo repository.BookRepository
	logger   zerolog.Logger
	now      func() time.Time
}

// NewCategoryService creates a new category service.
func NewCategoryService(
	repo repository.CategoryRepository,
	bookRepo repository.BookRepository,
	logger zerolog.Logger,
) CategoryService {
	return &categoryService{
		repo:     repo,
		bookRepo: bookRepo,
		logger:   logger.With().Str("service", "category").Logger(),
		now:      time.Now,
	}
}

// Create adds a category. A parent turns it into a subcategory.
func (s *categoryService) Create(ctx context.Context, req *model.CategoryRequest) (*model.Category, error) {
	slug := model.Slugify(req.Name)
	if slug == "" {
		return nil, model.InvalidInput("category name must contain letters or digits")
	}

	existing, err := s.repo.FindByNameOrSlug(ctx, req.Name, slug)
	if err != nil {
		s.logger.Error().Err(err).Str("name", req.Name).Msg("failed to check category name")
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	if existing != nil {
		return nil, model.InvalidInput("category with this name already exists")
	}

	if req.ParentCategoryID != nil {
		if _, err := s.GetByID(ctx, *req.ParentCategoryID); err != nil {
			return nil, err
		}
	}

	now := s.now().UTC()
	category := &model.Category{
		ID:               uuid.New(),
		Name:             req.Name,
		Slug:             slug,
		Description:      req.Description,
		Image:            req.Image,
		ParentCategoryID: req.ParentCategoryID,
		IsSubCategory:    req.IsSubCategory || req.ParentCategoryID != nil,
		IsActive:         true,
		DisplayOrder:     req.DisplayOrder,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Create(ctx, category); err != nil {
		if _, ok := model.AsDomainError(err); ok {
			return nil, err
		}
		s.logger.Error().Err(err).Str("name", req.Name).Msg("failed to create category")
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.logger.Info().
		Str("category_id", category.ID.String()).
		Str("slug", category.Slug).
		Msg("category created")
	return category, nil
}

func (s *categoryService) GetByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("category_id", id.String()).Msg("failed to get category")
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if category == nil {
		return nil, model.ErrCategoryNotFound
	}
	return category, nil
}

func (s *categoryService) GetBySlug(ctx context.Context, slug string) (*model.Category, error) {
	category, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		s.logger.Error().Err(err).Str("slug", slug).Msg("failed to get category")
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if category == nil {
		return nil, model.ErrCategoryNotFound
	}
	return category, nil
}

func (s *categoryService) List(ctx context.Context) ([]model.Category, error) {
	return s.list(ctx, "all", s.repo.ListActive)
}

func (s *categoryService) ListMain(ctx context.Context) ([]model.Category, error) {
	return s.list(ctx, "main", s.repo.ListMain)
}

func (s *categoryService) ListSub(ctx context.Context, parentID uuid.UUID) ([]model.Category, error) {
	if _, err := s.GetByID(ctx, parentID); err != nil {
		return nil, err
	}
	return s.list(ctx, "sub", func(ctx context.Context) ([]model.Category, error) {
		return s.repo.ListSub(ctx, parentID)
	})
}

func (s *categoryService) list(
	ctx context.Context,
	scope string,
	fetch func(context.Context) ([]model.Category, error),
) ([]model.Category, error) {
	categories, err := fetch(ctx)
	if err != nil {
		s.logger.Error().Err(err).Str("scope", scope).Msg("failed to list categories")
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	if categories == nil {
		categories = []model.Category{}
	}
	return categories, nil
}

// Update applies a partial update. Renaming regenerates the slug.
func (s *categoryService) Update(ctx context.Context, id uuid.UUID, upd *model.CategoryUpdate) (*model.Category, error) {
	category, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil && *upd.Name != category.Name {
		slug := model.Slugify(*upd.Name)
		if slug == "" {
			return nil, model.InvalidInput("category name must contain letters or digits")
		}
		existing, err := s.repo.FindByNameOrSlug(ctx, *upd.Name, slug)
		if err != nil {
			s.logger.Error().Err(err).Str("name", *upd.Name).Msg("failed to check category name")
			return nil, fmt.Errorf("failed to update category: %w", err)
		}
		if existing != nil && existing.ID != id {
			return nil, model.InvalidInput("category with this name already exists")
		}
		category.Name = *upd.Name
		category.Slug = slug
	}

	if upd.ParentCategoryID != nil {
		if *upd.ParentCategoryID == id {
			return nil, model.InvalidInput("category cannot be its own parent")
		}
		if _, err := s.GetByID(ctx, *upd.ParentCategoryID); err != nil {
			return nil, err
		}
		category.ParentCategoryID = upd.ParentCategoryID
		category.IsSubCategory = true
	}
	if upd.Description != nil {
		category.Description = *upd.Description
	}
	if upd.Image != nil {
		category.Image = *upd.Image
	}
	if upd.IsActive != nil {
		category.IsActive = *upd.IsActive
	}
	if upd.DisplayOrder != nil {
		category.DisplayOrder = *upd.DisplayOrder
	}
	category.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, category); err != nil {
		if _, ok := model.AsDomainError(err); ok {
			return nil, err
		}
		s.logger.Error().Err(err).Str("category_id", id.String()).Msg("failed to update category")
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	s.logger.Info().Str("category_id", id.String()).Msg("category updated")
	return category, nil
}

// Delete removes a category unless it still has subcategories.
func (s *categoryService) Delete(ctx context.Context, id uuid.UUID) error {
	children, err := s.repo.CountChildren(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("category_id", id.String()).Msg("failed to count subcategories")
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if children > 0 {
		return model.InvalidInput("cannot delete a category that has subcategories")
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("category_id", id.String()).Msg("failed to delete category")
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if !deleted {
		return model.ErrCategoryNotFound
	}

	s.logger.Info().Str("category_id", id.String()).Msg("category deleted")
	return nil
}

// Books returns the books filed under the category, matched by name.
func (s *categoryService) Books(ctx context.Context, slug string, page, limit int) (*model.CategoryBooks, error) {
	category, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	page, limit = normalisePage(page, limit)
	books, total, err := s.bookRepo.ListByCategory(ctx, category.Name, limit, (page-1)*limit)
	if err != nil {
		s.logger.Error().Err(err).Str("slug", slug).Msg("failed to list category books")
		return nil, fmt.Errorf("failed to list category books: %w", err)
	}

	return &model.CategoryBooks{
		Category: category,
		BookPage: model.NewBookPage(books, page, limit, total),
	}, nil
}

// Popular ranks categories by how many books are filed under them.
// Book categories with no matching category record are skipped.
func (s *categoryService) Popular(ctx context.Context, limit int) ([]model.CategoryCount, error) {
	if limit < 1 {
		limit = defaultPopularLimit
	}

	counts, err := s.bookRepo.CountByCategory(ctx, limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to count books by category")
		return nil, fmt.Errorf("failed to load popular categories: %w", err)
	}
	if len(counts) == 0 {
		return []model.CategoryCount{}, nil
	}

	names := make([]string, len(counts))
	for i, c := range counts {
		names[i] = c.Category
	}

	categories, err := s.repo.GetByNames(ctx, names)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load categories by name")
		return nil, fmt.Errorf("failed to load popular categories: %w", err)
	}

	byName := make(map[string]model.Category, len(categories))
	for _, c := range categories {
		byName[c.Name] = c
	}

	popular := make([]model.CategoryCount, 0, len(counts))
	for _, c := range counts {
		category, ok := byName[c.Category]
		if !ok {
			continue
		}
		popular = append(popular, model.CategoryCount{
			ID:        category.ID,
			Name:      category.Name,
			Slug:      category.Slug,
			Image:     category.Image,
			BookCount: c.Count,
		})
	}
	return popular, nil
}
