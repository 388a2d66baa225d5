package repository

import (
	"context"
	"errors"
	"fmt"

	"nexus-store/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type cartRepository struct {
	baseRepository
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{baseRepository: newBase(pool, logger, "cart")}
}

func (r *cartRepository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	// The no-op update lets concurrent first accesses agree on one row.
	query := `
		INSERT INTO carts (id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id, user_id, created_at, updated_at
	`

	var cart model.Cart
	err := r.pool.QueryRow(ctx, query, uuid.New(), userID).
		Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to get or create cart")
		return nil, fmt.Errorf("failed to get or create cart: %w", err)
	}

	return &cart, nil
}

const cartLineQuery = `
	SELECT ci.id, ci.product_id, p.name, p.price, ci.quantity, ci.added_at
	FROM cart_items ci
	JOIN products p ON p.id = ci.product_id
	WHERE ci.cart_id = $1
	ORDER BY ci.added_at, ci.id
`

func (r *cartRepository) Lines(ctx context.Context, cartID uuid.UUID) ([]model.CartLine, error) {
	return r.queryLines(ctx, r.pool, cartLineQuery, cartID)
}

func (r *cartRepository) LockedLines(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) ([]model.CartLine, error) {
	return r.queryLines(ctx, tx, cartLineQuery+" FOR SHARE OF p", cartID)
}

func (r *cartRepository) queryLines(ctx context.Context, q DBTX, query string, cartID uuid.UUID) ([]model.CartLine, error) {
	rows, err := q.Query(ctx, query, cartID)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to query cart items")
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	lines := []model.CartLine{}
	for rows.Next() {
		var line model.CartLine
		err := rows.Scan(&line.ID, &line.ProductID, &line.ProductName, &line.UnitPrice, &line.Quantity, &line.AddedAt)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan cart item row")
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating cart item rows")
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return lines, nil
}

// AddItem inserts a line or merges quantity into the existing line for the
// product. Callers hold the cart row lock so item locks follow it.
func (r *cartRepository) AddItem(ctx context.Context, q DBTX, cartID uuid.UUID, productID int64, quantity int) (*model.CartItem, error) {
	query := `
		INSERT INTO cart_items (id, cart_id, product_id, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (cart_id, product_id)
			DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING id, cart_id, product_id, quantity, added_at
	`

	var item model.CartItem
	err := q.QueryRow(ctx, query, uuid.New(), cartID, productID, quantity).
		Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &item.AddedAt)
	if err != nil {
		if foreignKeyViolation(err) {
			return nil, model.ErrProductNotFound
		}
		if numericOutOfRange(err) {
			return nil, model.ErrInvalidQuantity
		}
		r.logger.Error().
			Err(err).
			Str("cart_id", cartID.String()).
			Int64("product_id", productID).
			Msg("failed to add cart item")
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	return &item, nil
}

func (r *cartRepository) LockCart(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*model.Cart, error) {
	query := `
		SELECT id, user_id, created_at, updated_at
		FROM carts
		WHERE user_id = $1
		FOR UPDATE
	`

	var cart model.Cart
	err := tx.QueryRow(ctx, query, userID).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to lock cart")
		return nil, fmt.Errorf("failed to lock cart: %w", err)
	}

	return &cart, nil
}

// LockItem locks the owning cart row and then the item row, the same order
// checkout and cart clearing use.
func (r *cartRepository) LockItem(ctx context.Context, tx pgx.Tx, itemID uuid.UUID) (*model.CartItem, uuid.UUID, error) {
	cartQuery := `
		SELECT c.id, c.user_id
		FROM carts c
		JOIN cart_items ci ON ci.cart_id = c.id
		WHERE ci.id = $1
		FOR UPDATE OF c
	`

	var cartID, owner uuid.UUID
	if err := tx.QueryRow(ctx, cartQuery, itemID).Scan(&cartID, &owner); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, uuid.Nil, nil
		}
		r.logger.Error().Err(err).Str("item_id", itemID.String()).Msg("failed to lock cart for item")
		return nil, uuid.Nil, fmt.Errorf("failed to lock cart for item: %w", err)
	}

	// The item may have gone while we waited on the cart.
	itemQuery := `
		SELECT id, cart_id, product_id, quantity, added_at
		FROM cart_items
		WHERE id = $1 AND cart_id = $2
		FOR UPDATE
	`

	var item model.CartItem
	err := tx.QueryRow(ctx, itemQuery, itemID, cartID).
		Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &item.AddedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, uuid.Nil, nil
		}
		r.logger.Error().Err(err).Str("item_id", itemID.String()).Msg("failed to lock cart item")
		return nil, uuid.Nil, fmt.Errorf("failed to lock cart item: %w", err)
	}

	return &item, owner, nil
}

func (r *cartRepository) SetQuantity(ctx context.Context, tx pgx.Tx, itemID uuid.UUID, quantity int) error {
	if _, err := tx.Exec(ctx, `UPDATE cart_items SET quantity = $2 WHERE id = $1`, itemID, quantity); err != nil {
		if numericOutOfRange(err) {
			return model.ErrInvalidQuantity
		}
		r.logger.Error().Err(err).Str("item_id", itemID.String()).Msg("failed to update cart item")
		return fmt.Errorf("failed to update cart item: %w", err)
	}
	return nil
}

func (r *cartRepository) DeleteItem(ctx context.Context, tx pgx.Tx, itemID uuid.UUID) error {
	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, itemID); err != nil {
		r.logger.Error().Err(err).Str("item_id", itemID.String()).Msg("failed to delete cart item")
		return fmt.Errorf("failed to delete cart item: %w", err)
	}
	return nil
}

func (r *cartRepository) Clear(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) (int64, error) {
	tag, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to clear cart")
		return 0, fmt.Errorf("failed to clear cart: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *cartRepository) Touch(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error {
	if _, err := tx.Exec(ctx, `UPDATE carts SET updated_at = NOW() WHERE id = $1`, cartID); err != nil {
		r.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to touch cart")
		return fmt.Errorf("failed to touch cart: %w", err)
	}
	return nil
}
