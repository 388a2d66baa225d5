package repository

import (
	"context"
	"errors"
	"fmt"

	"nexus-store/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type categoryRepository struct {
	baseRepository
}

// NewCategoryRepository creates a new PostgreSQL-backed category repository.
func NewCategoryRepository(pool *pgxpool.Pool, logger zerolog.Logger) CategoryRepository {
	return &categoryRepository{baseRepository: newBase(pool, logger, "category")}
}

const categoryColumns = `
	c.id, c.name, c.description, c.parent_id, parent.name, c.slug, c.is_active, c.created_at, c.updated_at
`

func scanCategory(row pgx.Row, c *model.Category) error {
	return row.Scan(
		&c.ID,
		&c.Name,
		&c.Description,
		&c.ParentID,
		&c.ParentName,
		&c.Slug,
		&c.IsActive,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
}

func (r *categoryRepository) Create(ctx context.Context, c *model.Category) error {
	query := `
		INSERT INTO categories (name, description, parent_id, slug, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query, c.Name, c.Description, c.ParentID, c.Slug, c.IsActive).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return model.ErrSlugExists
		}
		if foreignKeyViolation(err) {
			return model.ErrInvalidParent
		}
		r.logger.Error().Err(err).Str("slug", c.Slug).Msg("failed to create category")
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

func (r *categoryRepository) Update(ctx context.Context, c *model.Category) error {
	query := `
		UPDATE categories
		SET name = $2, description = $3, parent_id = $4, slug = $5, is_active = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query, c.ID, c.Name, c.Description, c.ParentID, c.Slug, c.IsActive).
		Scan(&c.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return model.ErrCategoryNotFound
		case foreignKeyViolation(err):
			return model.ErrInvalidParent
		}
		if _, ok := uniqueViolation(err); ok {
			return model.ErrSlugExists
		}
		r.logger.Error().Err(err).Int64("category_id", c.ID).Msg("failed to update category")
		return fmt.Errorf("failed to update category: %w", err)
	}

	return nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	query := `SELECT ` + categoryColumns + `
		FROM categories c
		LEFT JOIN categories parent ON parent.id = c.parent_id
		WHERE c.id = $1
	`

	var c model.Category
	if err := scanCategory(r.pool.QueryRow(ctx, query, id), &c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Int64("category_id", id).Msg("category not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("category_id", id).Msg("failed to query category")
		return nil, fmt.Errorf("failed to query category: %w", err)
	}

	return &c, nil
}

func (r *categoryRepository) List(ctx context.Context, activeOnly bool) ([]model.Category, error) {
	query := `SELECT ` + categoryColumns + `
		FROM categories c
		LEFT JOIN categories parent ON parent.id = c.parent_id
		WHERE ($1 = FALSE OR c.is_active)
		ORDER BY c.name, c.id
	`
	return r.queryCategories(ctx, query, activeOnly)
}

func (r *categoryRepository) ListChildren(ctx context.Context, parentID int64, activeOnly bool) ([]model.Category, error) {
	query := `SELECT ` + categoryColumns + `
		FROM categories c
		LEFT JOIN categories parent ON parent.id = c.parent_id
		WHERE c.parent_id = $1 AND ($2 = FALSE OR c.is_active)
		ORDER BY c.name, c.id
	`
	return r.queryCategories(ctx, query, parentID, activeOnly)
}

func (r *categoryRepository) queryCategories(ctx context.Context, query string, args ...any) ([]model.Category, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query categories")
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := scanCategory(rows, &c); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan category row")
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating category rows")
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

func (r *categoryRepository) SubtreeIDs(ctx context.Context, id int64) ([]int64, error) {
	// UNION (not UNION ALL) stops the walk if the tree ever contains a cycle.
	query := `
		WITH RECURSIVE subtree(id) AS (
			SELECT id FROM categories WHERE id = $1
			UNION
			SELECT c.id FROM categories c JOIN subtree s ON c.parent_id = s.id
		)
		SELECT id FROM subtree
	`

	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		r.logger.Error().Err(err).Int64("category_id", id).Msg("failed to query category subtree")
		return nil, fmt.Errorf("failed to query category subtree: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("failed to collect category subtree: %w", err)
	}

	return ids, nil
}

func (r *categoryRepository) SoftDelete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE categories SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Int64("category_id", id).Msg("failed to deactivate category")
		return false, fmt.Errorf("failed to deactivate category: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *categoryRepository) EnsureBySlug(ctx context.Context, q DBTX, name, slug string) (int64, error) {
	// The no-op update makes RETURNING yield the existing row on conflict.
	query := `
		INSERT INTO categories (name, slug)
		VALUES ($1, $2)
		ON CONFLICT (slug) DO UPDATE SET slug = EXCLUDED.slug
		RETURNING id
	`

	var id int64
	if err := q.QueryRow(ctx, query, name, slug).Scan(&id); err != nil {
		r.logger.Error().Err(err).Str("slug", slug).Msg("failed to ensure category")
		return 0, fmt.Errorf("failed to ensure category %s: %w", slug, err)
	}

	return id, nil
}
