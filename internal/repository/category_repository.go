package repository

import (
	"context"
	"errors"
	"fmt"

	"bookstore/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const categoryColumns = `id, name, slug, description, image, parent_category_id,
	is_sub_category, is_active, display_order, created_at, updated_at`

// categoryRepository implements the CategoryRepository interface using PostgreSQL.
type categoryRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCategoryRepository creates a new PostgreSQL-backed category repository.
func NewCategoryRepository(pool *pgxpool.Pool, logger zerolog.Logger) CategoryRepository {
	return &categoryRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "category").Logger(),
	}
}

func scanCategory(row pgx.Row) (*model.Category, error) {
	var c model.Category
	err := row.Scan(
		&c.ID, &c.Name, &c.Slug, &c.Description, &c.Image, &c.ParentCategoryID,
		&c.IsSubCategory, &c.IsActive, &c.DisplayOrder, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepository) one(ctx context.Context, where string, args ...any) (*model.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE ` + where + ` LIMIT 1`

	c, err := scanCategory(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query category")
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return c, nil
}

func (r *categoryRepository) many(ctx context.Context, where string, args ...any) ([]model.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE ` + where + ` ORDER BY display_order, name`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query categories")
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan category row")
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, *c)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating category rows")
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// Create inserts a new category.
func (r *categoryRepository) Create(ctx context.Context, c *model.Category) error {
	query := `
		INSERT INTO categories (` + categoryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		c.ID, c.Name, c.Slug, c.Description, c.Image, c.ParentCategoryID,
		c.IsSubCategory, c.IsActive, c.DisplayOrder, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.InvalidInput("category with this name already exists")
		}
		r.logger.Error().Err(err).Str("category", c.Name).Msg("failed to create category")
		return fmt.Errorf("failed to create category: %w", err)
	}

	r.logger.Debug().Str("category_id", c.ID.String()).Msg("category created successfully")
	return nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	return r.one(ctx, "id = $1", id)
}

func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*model.Category, error) {
	return r.one(ctx, "slug = $1", slug)
}

// FindByNameOrSlug returns any category already using the name or slug.
func (r *categoryRepository) FindByNameOrSlug(ctx context.Context, name, slug string) (*model.Category, error) {
	return r.one(ctx, "name = $1 OR slug = $2", name, slug)
}

// ListActive returns active categories ordered by display order then name.
func (r *categoryRepository) ListActive(ctx context.Context) ([]model.Category, error) {
	return r.many(ctx, "is_active")
}

// ListMain returns active top-level categories.
func (r *categoryRepository) ListMain(ctx context.Context) ([]model.Category, error) {
	return r.many(ctx, "is_active AND NOT is_sub_category")
}

// ListSub returns active children of a category.
func (r *categoryRepository) ListSub(ctx context.Context, parentID uuid.UUID) ([]model.Category, error) {
	return r.many(ctx, "is_active AND parent_category_id = $1", parentID)
}

// GetByNames returns the categories with the given names.
func (r *categoryRepository) GetByNames(ctx context.Context, names []string) ([]model.Category, error) {
	if len(names) == 0 {
		return []model.Category{}, nil
	}
	return r.many(ctx, "name = ANY($1)", names)
}

// Update overwrites the mutable fields of a category.
func (r *categoryRepository) Update(ctx context.Context, c *model.Category) error {
	query := `
		UPDATE categories SET
			name = $2, slug = $3, description = $4, image = $5, parent_category_id = $6,
			is_sub_category = $7, is_active = $8, display_order = $9, updated_at = $10
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		c.ID, c.Name, c.Slug, c.Description, c.Image, c.ParentCategoryID,
		c.IsSubCategory, c.IsActive, c.DisplayOrder, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.InvalidInput("category with this name already exists")
		}
		r.logger.Error().Err(err).Str("category_id", c.ID.String()).Msg("failed to update category")
		return fmt.Errorf("failed to update category: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrCategoryNotFound
	}
	return nil
}

// Delete removes a category, reporting whether it existed.
func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("category_id", id.String()).Msg("failed to delete category")
		return false, fmt.Errorf("failed to delete category: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// CountChildren returns how many categories name id as their parent.
func (r *categoryRepository) CountChildren(ctx context.Context, id uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM categories WHERE parent_category_id = $1`, id).Scan(&n)
	if err != nil {
		r.logger.Error().Err(err).Str("category_id", id.String()).Msg("failed to count subcategories")
		return 0, fmt.Errorf("failed to count subcategories: %w", err)
	}
	return n, nil
}
