package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"nexus-store/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	baseRepository
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{baseRepository: newBase(pool, logger, "product")}
}

const productColumns = `
	p.id, p.name, p.description, p.price, p.category_id, c.name, c.slug,
	p.stock_quantity, p.sku, p.is_active, p.is_featured, p.created_at, p.updated_at
`

// productOrderBy maps listing sorts to ORDER BY clauses. The id tiebreaker
// keeps pagination stable.
var productOrderBy = map[model.ProductSort]string{
	model.SortPriceAsc:  "p.price ASC, p.id ASC",
	model.SortPriceDesc: "p.price DESC, p.id DESC",
	model.SortDateAsc:   "p.created_at ASC, p.id ASC",
	model.SortDateDesc:  "p.created_at DESC, p.id DESC",
	model.SortNameAsc:   "p.name ASC, p.id ASC",
	model.SortNameDesc:  "p.name DESC, p.id DESC",
}

func scanProduct(row pgx.Row, p *model.Product) error {
	ref := &model.CategoryRef{}
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.CategoryID,
		&ref.Name,
		&ref.Slug,
		&p.StockQuantity,
		&p.SKU,
		&p.IsActive,
		&p.IsFeatured,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	ref.ID = p.CategoryID
	p.Category = ref
	return nil
}

func (r *productRepository) Create(ctx context.Context, p *model.Product) error {
	query := `
		INSERT INTO products (name, description, price, category_id, stock_quantity, sku, is_active, is_featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		p.Name, p.Description, p.Price, p.CategoryID, p.StockQuantity, p.SKU, p.IsActive, p.IsFeatured,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return model.ErrSKUExists
		}
		if foreignKeyViolation(err) {
			return model.ErrCategoryNotFound
		}
		r.logger.Error().Err(err).Str("sku", p.SKU).Msg("failed to create product")
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

func (r *productRepository) Update(ctx context.Context, p *model.Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, category_id = $5, stock_quantity = $6,
			sku = $7, is_active = $8, is_featured = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		p.ID, p.Name, p.Description, p.Price, p.CategoryID, p.StockQuantity, p.SKU, p.IsActive, p.IsFeatured,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrProductNotFound
		}
		if _, ok := uniqueViolation(err); ok {
			return model.ErrSKUExists
		}
		if foreignKeyViolation(err) {
			return model.ErrCategoryNotFound
		}
		r.logger.Error().Err(err).Int64("product_id", p.ID).Msg("failed to update product")
		return fmt.Errorf("failed to update product: %w", err)
	}

	return nil
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1
	`

	var p model.Product
	if err := scanProduct(r.pool.QueryRow(ctx, query, id), &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Int64("product_id", id).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("product_id", id).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return &p, nil
}

// List returns one page of active products matching the filter.
func (r *productRepository) List(ctx context.Context, f model.ProductFilter) ([]model.Product, int, error) {
	f.Normalise()

	conditions := []string{"p.is_active"}
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q := strings.TrimSpace(f.Query); q != "" {
		ph := arg(likePattern(q))
		conditions = append(conditions, fmt.Sprintf("(p.name ILIKE %s OR p.description ILIKE %s)", ph, ph))
	}
	if f.MinPrice != nil {
		conditions = append(conditions, "p.price >= "+arg(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		conditions = append(conditions, "p.price <= "+arg(*f.MaxPrice))
	}
	if f.CategoryID != nil {
		conditions = append(conditions, "p.category_id = "+arg(*f.CategoryID))
	}
	if len(f.CategoryIDs) > 0 {
		conditions = append(conditions, "p.category_id = ANY("+arg(f.CategoryIDs)+")")
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM products p WHERE ` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		r.logger.Error().Err(err).Msg("failed to count products")
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	orderBy, ok := productOrderBy[f.Sort]
	if !ok {
		orderBy = productOrderBy[model.SortDateDesc]
	}

	limit := arg(f.PageSize)
	offset := arg(f.Offset())
	query := `SELECT ` + productColumns + `
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE ` + where + `
		ORDER BY ` + orderBy + `
		LIMIT ` + limit + ` OFFSET ` + offset

	products, err := r.queryProducts(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *productRepository) Featured(ctx context.Context, limit int) ([]model.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.is_active AND p.is_featured
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $1
	`
	return r.queryProducts(ctx, query, limit)
}

func (r *productRepository) queryProducts(ctx context.Context, query string, args ...any) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var p model.Product
		if err := scanProduct(rows, &p); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

func (r *productRepository) SoftDelete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE products SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Int64("product_id", id).Msg("failed to deactivate product")
		return false, fmt.Errorf("failed to deactivate product: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *productRepository) UpsertBySKU(ctx context.Context, tx pgx.Tx, p *model.Product) (bool, error) {
	// xmax is zero only for freshly inserted row versions.
	query := `
		INSERT INTO products (name, description, price, category_id, stock_quantity, sku, is_active, is_featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (sku) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			category_id = EXCLUDED.category_id,
			stock_quantity = EXCLUDED.stock_quantity,
			is_active = EXCLUDED.is_active,
			is_featured = EXCLUDED.is_featured,
			updated_at = NOW()
		RETURNING id, created_at, updated_at, (xmax = 0)
	`

	var inserted bool
	err := tx.QueryRow(ctx, query,
		p.Name, p.Description, p.Price, p.CategoryID, p.StockQuantity, p.SKU, p.IsActive, p.IsFeatured,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt, &inserted)
	if err != nil {
		r.logger.Error().Err(err).Str("sku", p.SKU).Msg("failed to upsert product")
		return false, fmt.Errorf("failed to upsert product %s: %w", p.SKU, err)
	}

	return inserted, nil
}
