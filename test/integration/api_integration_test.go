package integration

import (
	"fmt"
	"net/http"
	"testing"

	"nexus-store/internal/events"
	"nexus-store/internal/handler"
	"nexus-store/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorefront_Integration(t *testing.T) {
	srv := SetupTestServer(t)

	admin := NewUser(t, "admin", true)
	buyer := NewUser(t, "amina", false)
	other := NewUser(t, "brian", false)

	t.Run("health reports the database", func(t *testing.T) {
		w := srv.Do(t, nil, http.MethodGet, "/health", nil)
		body := Decode[map[string]string](t, w, http.StatusOK)
		assert.Equal(t, "ok", body["database"])
	})

	// Catalog
	kitchen := Decode[model.Category](t, srv.Do(t, &admin, http.MethodPost, "/api/categories/create",
		model.CreateCategoryRequest{Name: "Kitchen & Dining"}), http.StatusCreated)
	assert.Equal(t, "kitchen-dining", kitchen.Slug)

	mugs := Decode[model.Category](t, srv.Do(t, &admin, http.MethodPost, "/api/categories/create",
		model.CreateCategoryRequest{Name: "Mugs", ParentID: &kitchen.ID}), http.StatusCreated)

	t.Run("customers cannot manage the catalog", func(t *testing.T) {
		w := srv.Do(t, &buyer, http.MethodPost, "/api/categories/create", model.CreateCategoryRequest{Name: "Nope"})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	mug := Decode[model.Product](t, srv.Do(t, &admin, http.MethodPost, "/api/products/create", model.CreateProductRequest{
		Name:          "Enamel Mug",
		Price:         decimal.RequireFromString("12.50"),
		CategoryID:    mugs.ID,
		StockQuantity: 40,
		SKU:           "MUG-1",
		IsFeatured:    true,
	}), http.StatusCreated)
	kettle := Decode[model.Product](t, srv.Do(t, &admin, http.MethodPost, "/api/products/create", model.CreateProductRequest{
		Name:          "Kettle",
		Price:         decimal.RequireFromString("39.00"),
		CategoryID:    kitchen.ID,
		StockQuantity: 5,
		SKU:           "KET-1",
	}), http.StatusCreated)

	t.Run("duplicate sku conflicts", func(t *testing.T) {
		w := srv.Do(t, &admin, http.MethodPost, "/api/products/create", model.CreateProductRequest{
			Name:       "Other Mug",
			Price:      decimal.RequireFromString("9"),
			CategoryID: mugs.ID,
			SKU:        "MUG-1",
		})
		require.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("anonymous search", func(t *testing.T) {
		page := Decode[model.ProductPage](t, srv.Do(t, nil, http.MethodGet, "/api/products/search?q=mug&sort=price_asc", nil), http.StatusOK)
		require.Len(t, page.Results, 1)
		assert.Equal(t, mug.ID, page.Results[0].ID)

		featured := Decode[[]model.Product](t, srv.Do(t, nil, http.MethodGet, "/api/products/featured", nil), http.StatusOK)
		require.Len(t, featured, 1)
		assert.Equal(t, "MUG-1", featured[0].SKU)
	})

	// Cart
	t.Run("empty cart cannot be checked out", func(t *testing.T) {
		w := srv.Do(t, &buyer, http.MethodPost, "/api/orders/create", model.CreateOrderRequest{ShippingAddress: "12 Moi Avenue"})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	two := 2
	added := Decode[model.CartItemResponse](t, srv.Do(t, &buyer, http.MethodPost, "/api/cart/add",
		model.AddToCartRequest{ProductID: mug.ID, Quantity: &two}), http.StatusCreated)
	require.NotNil(t, added.Item)
	Decode[model.CartItemResponse](t, srv.Do(t, &buyer, http.MethodPost, "/api/cart/add",
		model.AddToCartRequest{ProductID: kettle.ID}), http.StatusCreated)
	Decode[model.CartItemResponse](t, srv.Do(t, &buyer, http.MethodPost,
		fmt.Sprintf("/api/cart/items/%s/increase", added.Item.ID), nil), http.StatusOK)

	cart := Decode[model.CartView](t, srv.Do(t, &buyer, http.MethodGet, "/api/cart", nil), http.StatusOK)
	assert.Equal(t, 4, cart.TotalItems)
	assert.True(t, cart.CartTotal.Equal(decimal.RequireFromString("76.50")), "got %s", cart.CartTotal)

	// Checkout
	order := Decode[model.OrderResponse](t, srv.Do(t, &buyer, http.MethodPost, "/api/orders/create",
		model.CreateOrderRequest{ShippingAddress: "12 Moi Avenue"}, handler.IdempotencyKeyHeader, "checkout-1"), http.StatusCreated)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("76.50")))
	assert.Len(t, order.Items, 2)
	assert.True(t, order.CanCancel)

	t.Run("replayed idempotency key is rejected", func(t *testing.T) {
		w := srv.Do(t, &buyer, http.MethodPost, "/api/orders/create",
			model.CreateOrderRequest{ShippingAddress: "12 Moi Avenue"}, handler.IdempotencyKeyHeader, "checkout-1")
		require.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("checkout empties the cart", func(t *testing.T) {
		cart := Decode[model.CartView](t, srv.Do(t, &buyer, http.MethodGet, "/api/cart", nil), http.StatusOK)
		assert.Empty(t, cart.Items)
	})

	t.Run("orders of other users are hidden", func(t *testing.T) {
		w := srv.Do(t, &other, http.MethodGet, "/api/orders/"+order.ID.String(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("review before delivery is refused", func(t *testing.T) {
		w := srv.Do(t, &buyer, http.MethodPost, "/api/reviews/create",
			model.CreateReviewRequest{ProductID: mug.ID, Rating: 5, Comment: "Lovely"})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, model.ErrCodeNotVerifiedPurchase, Decode[model.ErrorResponse](t, w, http.StatusBadRequest).Error)
	})

	// Payment
	payment := Decode[model.Payment](t, srv.Do(t, &buyer, http.MethodPost, "/api/payments/create",
		model.CreatePaymentRequest{OrderID: order.ID.String(), PaymentMethod: "mpesa"}), http.StatusCreated)
	assert.Equal(t, model.PaymentStatusPending, payment.Status)
	assert.True(t, payment.Amount.Equal(order.TotalAmount))

	processed := Decode[model.ProcessMockPaymentResponse](t, srv.Do(t, &buyer, http.MethodPost,
		"/api/payments/"+payment.ID.String()+"/process-mock", nil), http.StatusOK)
	assert.Equal(t, model.PaymentStatusCompleted, processed.Status)
	require.NotNil(t, processed.TransactionID)

	confirmed := Decode[model.OrderResponse](t, srv.Do(t, &buyer, http.MethodGet, "/api/orders/"+order.ID.String(), nil), http.StatusOK)
	assert.Equal(t, model.OrderStatusConfirmed, confirmed.Status)

	// Fulfilment
	t.Run("orders cannot skip shipping", func(t *testing.T) {
		w := srv.Do(t, &admin, http.MethodPut, "/api/orders/admin/"+order.ID.String()+"/status",
			model.UpdateOrderStatusRequest{Status: "delivered"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	for _, status := range []model.OrderStatus{model.OrderStatusShipped, model.OrderStatusDelivered} {
		updated := Decode[model.OrderResponse](t, srv.Do(t, &admin, http.MethodPut, "/api/orders/admin/"+order.ID.String()+"/status",
			model.UpdateOrderStatusRequest{Status: string(status)}), http.StatusOK)
		assert.Equal(t, status, updated.Status)
	}

	t.Run("delivered orders cannot be cancelled", func(t *testing.T) {
		w := srv.Do(t, &buyer, http.MethodPost, "/api/orders/"+order.ID.String()+"/cancel", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	// Reviews
	review := Decode[model.Review](t, srv.Do(t, &buyer, http.MethodPost, "/api/reviews/create",
		model.CreateReviewRequest{ProductID: mug.ID, Rating: 4, Comment: "  Keeps tea hot  "}), http.StatusCreated)
	assert.True(t, review.VerifiedPurchase)
	assert.Equal(t, "amina", review.Username)
	assert.Equal(t, "Keeps tea hot", review.Comment)

	t.Run("second review is refused", func(t *testing.T) {
		w := srv.Do(t, &buyer, http.MethodPost, "/api/reviews/create",
			model.CreateReviewRequest{ProductID: mug.ID, Rating: 1, Comment: "Again"})
		assert.Equal(t, model.ErrCodeAlreadyReviewed, Decode[model.ErrorResponse](t, w, http.StatusBadRequest).Error)
	})

	t.Run("helpful votes", func(t *testing.T) {
		yes, no := true, false
		target := "/api/reviews/" + review.ID.String() + "/helpful"

		own := srv.Do(t, &buyer, http.MethodPost, target, model.HelpfulVoteRequest{Helpful: &yes})
		assert.Equal(t, http.StatusBadRequest, own.Code)

		vote := Decode[model.HelpfulVoteResponse](t, srv.Do(t, &other, http.MethodPost, target, model.HelpfulVoteRequest{Helpful: &yes}), http.StatusOK)
		assert.Equal(t, 1, vote.HelpfulCount)

		again := srv.Do(t, &other, http.MethodPost, target, model.HelpfulVoteRequest{Helpful: &yes})
		assert.Equal(t, model.ErrCodeAlreadyVoted, Decode[model.ErrorResponse](t, again, http.StatusBadRequest).Error)

		withdrawn := Decode[model.HelpfulVoteResponse](t, srv.Do(t, &other, http.MethodPost, target, model.HelpfulVoteRequest{Helpful: &no}), http.StatusOK)
		assert.Equal(t, 0, withdrawn.HelpfulCount)
	})

	t.Run("product stats", func(t *testing.T) {
		stats := Decode[model.ReviewStats](t, srv.Do(t, nil, http.MethodGet, fmt.Sprintf("/api/reviews/product/%d/stats", mug.ID), nil), http.StatusOK)
		assert.Equal(t, 1, stats.TotalReviews)
		assert.InDelta(t, 4.0, stats.AverageRating, 0.001)
		assert.Equal(t, 1, stats.RatingBreakdown["4"])
		assert.Equal(t, 1, stats.VerifiedPurchases)
	})

	types := srv.Events.Types()
	require.NotEmpty(t, types)
	assert.Equal(t, events.TypeOrderCreated, types[0])
	assert.Contains(t, types, events.TypePaymentStatusChanged)
	assert.Contains(t, types, events.TypeOrderStatusChanged)
}

func TestCancellation_Integration(t *testing.T) {
	srv := SetupTestServer(t)

	admin := NewUser(t, "admin", true)
	buyer := NewUser(t, "amina", false)

	category := Decode[model.Category](t, srv.Do(t, &admin, http.MethodPost, "/api/categories/create",
		model.CreateCategoryRequest{Name: "Garden"}), http.StatusCreated)
	product := Decode[model.Product](t, srv.Do(t, &admin, http.MethodPost, "/api/products/create", model.CreateProductRequest{
		Name:          "Trowel",
		Price:         decimal.RequireFromString("7.25"),
		CategoryID:    category.ID,
		StockQuantity: 12,
		SKU:           "TRW-1",
	}), http.StatusCreated)

	Decode[model.CartItemResponse](t, srv.Do(t, &buyer, http.MethodPost, "/api/cart/add",
		model.AddToCartRequest{ProductID: product.ID}), http.StatusCreated)
	order := Decode[model.OrderResponse](t, srv.Do(t, &buyer, http.MethodPost, "/api/orders/create",
		model.CreateOrderRequest{ShippingAddress: "4 Garden Lane"}), http.StatusCreated)

	payment := Decode[model.Payment](t, srv.Do(t, &buyer, http.MethodPost, "/api/payments/create",
		model.CreatePaymentRequest{OrderID: order.ID.String(), PaymentMethod: "card"}), http.StatusCreated)

	cancelled := Decode[model.OrderResponse](t, srv.Do(t, &buyer, http.MethodPost, "/api/orders/"+order.ID.String()+"/cancel",
		model.CancelOrderRequest{Reason: "changed my mind"}), http.StatusOK)
	assert.Equal(t, model.OrderStatusCancelled, cancelled.Status)
	assert.False(t, cancelled.CanCancel)

	t.Run("cancellation leaves the payment alone", func(t *testing.T) {
		p := Decode[model.Payment](t, srv.Do(t, &buyer, http.MethodGet, "/api/payments/"+payment.ID.String(), nil), http.StatusOK)
		assert.Equal(t, model.PaymentStatusPending, p.Status)
	})

	t.Run("cancelled orders cannot be paid for again", func(t *testing.T) {
		w := srv.Do(t, &buyer, http.MethodPost, "/api/payments/create",
			model.CreatePaymentRequest{OrderID: order.ID.String(), PaymentMethod: "card"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("admin listing filters by status", func(t *testing.T) {
		orders := Decode[[]model.OrderResponse](t, srv.Do(t, &admin, http.MethodGet, "/api/orders/admin/all?status=cancelled", nil), http.StatusOK)
		require.Len(t, orders, 1)
		assert.Equal(t, order.ID, orders[0].ID)

		w := srv.Do(t, &admin, http.MethodGet, "/api/orders/admin/all?status=lost", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
