package service

import (
	"context"

	"nexus-store/internal/model"

	"github.com/google/uuid"
)

// CategoryService defines operations for the category tree.
type CategoryService interface {
	// List returns active categories.
	List(ctx context.Context) ([]model.Category, error)

	// ListAll returns every category, including inactive ones.
	ListAll(ctx context.Context) ([]model.Category, error)

	// GetByID returns an active category with its active subcategories.
	GetByID(ctx context.Context, id int64) (*model.CategoryDetail, error)

	Create(ctx context.Context, req *model.CreateCategoryRequest) (*model.Category, error)
	Update(ctx context.Context, id int64, req *model.UpdateCategoryRequest) (*model.Category, error)

	// Delete deactivates a category.
	Delete(ctx context.Context, id int64) error
}

// ProductService defines operations for product management.
type ProductService interface {
	// List retrieves one page of active products.
	List(ctx context.Context, f model.ProductFilter) (*model.ProductPage, error)

	// Search is List annotated with hints for empty results.
	Search(ctx context.Context, f model.ProductFilter) (*model.ProductSearchResult, error)

	// ListByCategory lists products of a category and all of its descendants.
	ListByCategory(ctx context.Context, categoryID int64, f model.ProductFilter) (*model.ProductPage, error)

	// Featured returns the newest featured products.
	Featured(ctx context.Context) ([]model.Product, error)

	// GetByID retrieves a single active product by ID.
	GetByID(ctx context.Context, id int64) (*model.Product, error)

	Create(ctx context.Context, req *model.CreateProductRequest) (*model.Product, error)
	Update(ctx context.Context, id int64, req *model.UpdateProductRequest) (*model.Product, error)

	// Delete deactivates a product.
	Delete(ctx context.Context, id int64) error
}

// CartService defines operations on the caller's cart.
type CartService interface {
	// Get returns the caller's cart with computed totals, creating it on first access.
	Get(ctx context.Context, userID uuid.UUID) (*model.CartView, error)

	// AddItem adds quantity of a product, merging into an existing line.
	AddItem(ctx context.Context, userID uuid.UUID, req *model.AddToCartRequest) (*model.CartItem, error)

	IncreaseItem(ctx context.Context, userID, itemID uuid.UUID) (*model.CartItemResponse, error)

	// DecreaseItem removes the line when its quantity is one.
	DecreaseItem(ctx context.Context, userID, itemID uuid.UUID) (*model.CartItemResponse, error)

	UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*model.CartItemResponse, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error

	// Clear empties the cart and returns the number of removed lines.
	Clear(ctx context.Context, userID uuid.UUID) (int64, error)
}

// OrderService defines operations for order management.
type OrderService interface {
	// CreateOrder converts the caller's cart into a pending order. A non-empty
	// idempotencyKey that was already used by the caller is rejected.
	CreateOrder(ctx context.Context, userID uuid.UUID, idempotencyKey string, req *model.CreateOrderRequest) (*model.OrderResponse, error)

	// GetByID retrieves one of the caller's orders with all items.
	GetByID(ctx context.Context, userID, id uuid.UUID) (*model.OrderResponse, error)

	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.OrderResponse, error)

	// Cancel cancels a pending or confirmed order of the caller.
	Cancel(ctx context.Context, userID, id uuid.UUID, reason string) (*model.OrderResponse, error)

	AdminList(ctx context.Context, status *model.OrderStatus) ([]model.OrderResponse, error)
	AdminGet(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error)

	// UpdateStatus applies an administrative transition.
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*model.OrderResponse, error)
}

// PaymentService defines operations for order payments.
type PaymentService interface {
	Create(ctx context.Context, userID uuid.UUID, req *model.CreatePaymentRequest) (*model.Payment, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*model.Payment, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Payment, error)

	// ProcessMock simulates a gateway charge on a pending payment.
	ProcessMock(ctx context.Context, userID, id uuid.UUID, req *model.ProcessMockPaymentRequest) (*model.ProcessMockPaymentResponse, error)

	// RequestRefund refunds a completed payment and cancels its order.
	RequestRefund(ctx context.Context, userID, id uuid.UUID, req *model.RefundRequest) (*model.RefundResponse, error)

	AdminList(ctx context.Context) ([]model.Payment, error)
	AdminGet(ctx context.Context, id uuid.UUID) (*model.Payment, error)

	// UpdateStatus applies an administrative transition and its order side effect.
	UpdateStatus(ctx context.Context, id uuid.UUID, req *model.UpdatePaymentStatusRequest) (*model.Payment, error)

	// Webhook acknowledges a provider callback.
	Webhook(ctx context.Context, provider string, payload []byte) (*model.WebhookResponse, error)
}

// ReviewService defines operations for product reviews.
type ReviewService interface {
	ListByProduct(ctx context.Context, productID int64) ([]model.Review, error)
	Stats(ctx context.Context, productID int64) (*model.ReviewStats, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Review, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Review, error)
	ListAll(ctx context.Context) ([]model.Review, error)

	// Create records a verified-purchase review.
	Create(ctx context.Context, userID uuid.UUID, username string, req *model.CreateReviewRequest) (*model.Review, error)

	Update(ctx context.Context, userID, id uuid.UUID, req *model.UpdateReviewRequest) (*model.Review, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// Vote records (helpful=true) or withdraws a helpful vote.
	Vote(ctx context.Context, userID, id uuid.UUID, helpful bool) (*model.HelpfulVoteResponse, error)
}
