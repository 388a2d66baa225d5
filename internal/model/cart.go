package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart is the single mutable basket owned by a user.
type Cart struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CartItem is one (product, quantity) line in a cart.
type CartItem struct {
	ID        uuid.UUID `json:"id"`
	CartID    uuid.UUID `json:"cart_id"`
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

// CartLine is a cart item joined with the current product data.
type CartLine struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	ItemTotal   decimal.Decimal `json:"item_total"`
	AddedAt     time.Time       `json:"added_at"`
}

// CartView is the response for GET /api/cart.
type CartView struct {
	ID         uuid.UUID       `json:"id"`
	Items      []CartLine      `json:"items"`
	CartTotal  decimal.Decimal `json:"cart_total"`
	TotalItems int             `json:"total_items"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// NewCartView computes line and cart totals for the given lines.
func NewCartView(cart *Cart, lines []CartLine) *CartView {
	view := &CartView{
		ID:        cart.ID,
		Items:     make([]CartLine, 0, len(lines)),
		CartTotal: decimal.Zero,
		CreatedAt: cart.CreatedAt,
		UpdatedAt: cart.UpdatedAt,
	}
	for _, line := range lines {
		line.ItemTotal = line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		view.CartTotal = view.CartTotal.Add(line.ItemTotal)
		view.TotalItems += line.Quantity
		view.Items = append(view.Items, line)
	}
	return view
}

// MaxCartItemQuantity caps a single cart line, including merged adds.
const MaxCartItemQuantity = 999

// AddToCartRequest is the payload for POST /api/cart/add.
type AddToCartRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  *int  `json:"quantity" validate:"omitempty,gte=1,lte=999"`
}

// UpdateCartItemRequest is the payload for PUT/PATCH /api/cart/items/{id}/update.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,gte=1,lte=999"`
}

// CartItemResponse acknowledges a cart item mutation. Item is nil when the
// mutation removed the line.
type CartItemResponse struct {
	Message string    `json:"message"`
	Item    *CartItem `json:"item"`
	Removed bool      `json:"removed"`
}
