package repository

import (
	"context"

	"nexus-store/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TxBeginner starts transactions owned by the service layer.
type TxBeginner interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)
}

// CategoryRepository defines data access for the category tree.
type CategoryRepository interface {
	// Create inserts a category and fills in its ID and timestamps.
	Create(ctx context.Context, c *model.Category) error

	// Update persists every mutable field of c.
	Update(ctx context.Context, c *model.Category) error

	// GetByID returns the category with its parent name, or nil if absent.
	GetByID(ctx context.Context, id int64) (*model.Category, error)

	// List returns categories ordered by name.
	List(ctx context.Context, activeOnly bool) ([]model.Category, error)

	// ListChildren returns the direct children of a category.
	ListChildren(ctx context.Context, parentID int64, activeOnly bool) ([]model.Category, error)

	// SubtreeIDs returns id and the IDs of all of its descendants.
	SubtreeIDs(ctx context.Context, id int64) ([]int64, error)

	// SoftDelete marks a category inactive. It reports whether a row matched.
	SoftDelete(ctx context.Context, id int64) (bool, error)

	// EnsureBySlug returns the ID of the category with slug, creating it when missing.
	EnsureBySlug(ctx context.Context, q DBTX, name, slug string) (int64, error)
}

// ProductRepository defines data access for products.
type ProductRepository interface {
	TxBeginner

	// Create inserts a product and fills in its ID and timestamps.
	Create(ctx context.Context, p *model.Product) error

	// Update persists every mutable field of p.
	Update(ctx context.Context, p *model.Product) error

	// GetByID retrieves a single product with its category, or nil if absent.
	GetByID(ctx context.Context, id int64) (*model.Product, error)

	// List returns one page of active products matching f and the total match count.
	List(ctx context.Context, f model.ProductFilter) ([]model.Product, int, error)

	// Featured returns up to limit active featured products, newest first.
	Featured(ctx context.Context, limit int) ([]model.Product, error)

	// SoftDelete marks a product inactive. It reports whether a row matched.
	SoftDelete(ctx context.Context, id int64) (bool, error)

	// UpsertBySKU inserts p or updates the product with the same SKU.
	// It reports whether a new row was inserted.
	UpsertBySKU(ctx context.Context, tx pgx.Tx, p *model.Product) (bool, error)
}

// CartRepository defines data access for carts and cart items.
type CartRepository interface {
	TxBeginner

	// GetOrCreate returns the user's cart, creating it on first access.
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*model.Cart, error)

	// Lines returns the cart's items joined with current product data.
	Lines(ctx context.Context, cartID uuid.UUID) ([]model.CartLine, error)

	// AddItem atomically inserts a line or adds quantity to the existing line.
	AddItem(ctx context.Context, q DBTX, cartID uuid.UUID, productID int64, quantity int) (*model.CartItem, error)

	// LockCart locks the user's cart row, or returns nil if the user has no cart.
	LockCart(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*model.Cart, error)

	// LockedLines returns the cart's lines with product rows share-locked.
	LockedLines(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) ([]model.CartLine, error)

	// LockItem locks a cart item and returns it with the owning user ID.
	// It returns a nil item if no such row exists.
	LockItem(ctx context.Context, tx pgx.Tx, itemID uuid.UUID) (*model.CartItem, uuid.UUID, error)

	// SetQuantity updates the quantity of a cart item.
	SetQuantity(ctx context.Context, tx pgx.Tx, itemID uuid.UUID, quantity int) error

	// DeleteItem removes a cart item.
	DeleteItem(ctx context.Context, tx pgx.Tx, itemID uuid.UUID) error

	// Clear removes every item of the cart and returns how many were removed.
	Clear(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) (int64, error)

	// Touch bumps the cart's updated_at.
	Touch(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	TxBeginner

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order by its ID along with its items, or nil if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// ListByUser returns the user's orders, newest first, with items.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error)

	// ListAll returns every order, newest first, optionally filtered by status.
	ListAll(ctx context.Context, status *model.OrderStatus) ([]model.Order, error)

	// LockByID locks the order row without loading items, or returns nil if absent.
	LockByID(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error)

	// UpdateStatus sets the order status.
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.OrderStatus) error

	// HasDeliveredProduct reports whether the user holds a delivered order containing the product.
	HasDeliveredProduct(ctx context.Context, tx pgx.Tx, userID uuid.UUID, productID int64) (bool, error)
}

// PaymentRepository defines data access for payments.
type PaymentRepository interface {
	TxBeginner

	// Create inserts a payment. A second payment for the same order yields model.ErrPaymentExists.
	Create(ctx context.Context, tx pgx.Tx, p *model.Payment) error

	// GetByID retrieves a payment with its order number and owner, or nil if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)

	// GetByOrderID retrieves the payment for an order, or nil if none exists.
	GetByOrderID(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (*model.Payment, error)

	// ListByUser returns payments of the user's orders, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Payment, error)

	// ListAll returns every payment, newest first.
	ListAll(ctx context.Context) ([]model.Payment, error)

	// LockByID locks the payment row, or returns nil if absent.
	LockByID(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Payment, error)

	// UpdateStatus sets the payment status and, when non-nil, the transaction ID.
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.PaymentStatus, transactionID *string) error
}

// ReviewRepository defines data access for reviews and helpful votes.
type ReviewRepository interface {
	TxBeginner

	// Create inserts a review. A duplicate (user, product) yields model.ErrAlreadyReviewed.
	Create(ctx context.Context, tx pgx.Tx, r *model.Review) error

	// Exists reports whether the user already reviewed the product.
	Exists(ctx context.Context, tx pgx.Tx, userID uuid.UUID, productID int64) (bool, error)

	// GetByID retrieves a review, or nil if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Review, error)

	// ListByProduct returns the product's reviews, newest first.
	ListByProduct(ctx context.Context, productID int64) ([]model.Review, error)

	// ListByUser returns the user's reviews, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Review, error)

	// ListAll returns every review, newest first.
	ListAll(ctx context.Context) ([]model.Review, error)

	// Update persists rating and comment.
	Update(ctx context.Context, r *model.Review) error

	// Delete removes a review and its votes.
	Delete(ctx context.Context, id uuid.UUID) error

	// Stats aggregates the product's ratings.
	Stats(ctx context.Context, productID int64) (*model.ReviewStats, error)

	// AddVote records a helpful vote. It reports false when the vote already existed.
	AddVote(ctx context.Context, tx pgx.Tx, reviewID, userID uuid.UUID) (bool, error)

	// RemoveVote withdraws a helpful vote. It reports false when no vote existed.
	RemoveVote(ctx context.Context, tx pgx.Tx, reviewID, userID uuid.UUID) (bool, error)

	// RefreshHelpfulCount recomputes helpful_count from the vote table.
	RefreshHelpfulCount(ctx context.Context, tx pgx.Tx, reviewID uuid.UUID) (int, error)
}
