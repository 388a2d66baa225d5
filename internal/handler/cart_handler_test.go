package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"nexus-store/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCartHandler_RequiresCaller(t *testing.T) {
	svc := new(MockCartService)
	h := NewCartHandler(svc, NewValidator(), zerolog.Nop())

	w := serve(t, "/api/cart", h.RegisterRoutes, nil, http.MethodGet, "/api/cart", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	svc.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestCartHandler_Get(t *testing.T) {
	svc := new(MockCartService)
	h := NewCartHandler(svc, NewValidator(), zerolog.Nop())
	svc.On("Get", mock.Anything, customer.UserID).Return(&model.CartView{
		ID:         uuid.New(),
		Items:      []model.CartLine{{ProductID: 1, Quantity: 2, ItemTotal: decimal.RequireFromString("12.50")}},
		CartTotal:  decimal.RequireFromString("12.50"),
		TotalItems: 2,
	}, nil)

	w := serve(t, "/api/cart", h.RegisterRoutes, customer, http.MethodGet, "/api/cart", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var body model.CartView
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, 2, body.TotalItems)
	assert.True(t, body.CartTotal.Equal(decimal.RequireFromString("12.5")))
}

func TestCartHandler_Add(t *testing.T) {
	tests := []struct {
		name           string
		body           any
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{name: "Default quantity", body: map[string]any{"product_id": 4}, expectedStatus: http.StatusCreated, expectService: true},
		{name: "Inactive product", body: map[string]any{"product_id": 4}, mockError: model.ErrProductInactive, expectedStatus: http.StatusBadRequest, expectService: true},
		{name: "Zero quantity", body: map[string]any{"product_id": 4, "quantity": 0}, expectedStatus: http.StatusBadRequest},
		{name: "Missing product", body: map[string]any{"quantity": 1}, expectedStatus: http.StatusBadRequest},
		{name: "Quantity over the line cap", body: map[string]any{"product_id": 4, "quantity": model.MaxCartItemQuantity + 1}, expectedStatus: http.StatusBadRequest},
		{name: "Quantity past int32", body: map[string]any{"product_id": 4, "quantity": int64(1) << 40}, expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockCartService)
			h := NewCartHandler(svc, NewValidator(), zerolog.Nop())
			if tt.expectService {
				var item *model.CartItem
				if tt.mockError == nil {
					item = &model.CartItem{ID: uuid.New(), ProductID: 4, Quantity: 1}
				}
				svc.On("AddItem", mock.Anything, customer.UserID, mock.MatchedBy(func(req *model.AddToCartRequest) bool {
					return req.ProductID == 4 && req.Quantity == nil
				})).Return(item, tt.mockError)
			}

			w := serve(t, "/api/cart", h.RegisterRoutes, customer, http.MethodPost, "/api/cart/add", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestCartHandler_ItemRoutes(t *testing.T) {
	itemID := uuid.New()
	base := "/api/cart/items/" + itemID.String()

	tests := []struct {
		name           string
		method         string
		path           string
		body           any
		setup          func(*MockCartService)
		expectedStatus int
	}{
		{
			name:   "Increase",
			method: http.MethodPost,
			path:   base + "/increase",
			setup: func(m *MockCartService) {
				m.On("IncreaseItem", mock.Anything, customer.UserID, itemID).
					Return(&model.CartItemResponse{Message: "Quantity increased"}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "Decrease removes last unit",
			method: http.MethodPost,
			path:   base + "/decrease",
			setup: func(m *MockCartService) {
				m.On("DecreaseItem", mock.Anything, customer.UserID, itemID).
					Return(&model.CartItemResponse{Message: "Item removed from cart", Removed: true}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "Update quantity",
			method: http.MethodPut,
			path:   base + "/update",
			body:   map[string]any{"quantity": 7},
			setup: func(m *MockCartService) {
				m.On("UpdateItem", mock.Anything, customer.UserID, itemID, 7).
					Return(&model.CartItemResponse{Message: "Cart item updated"}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Update rejects zero",
			method:         http.MethodPatch,
			path:           base + "/update",
			body:           map[string]any{"quantity": 0},
			setup:          func(*MockCartService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Update rejects a quantity over the line cap",
			method:         http.MethodPut,
			path:           base + "/update",
			body:           map[string]any{"quantity": model.MaxCartItemQuantity + 1},
			setup:          func(*MockCartService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "Remove another user's item",
			method: http.MethodDelete,
			path:   base + "/remove",
			setup: func(m *MockCartService) {
				m.On("RemoveItem", mock.Anything, customer.UserID, itemID).Return(model.ErrCartItemNotOwned)
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "Malformed item id",
			method:         http.MethodPost,
			path:           "/api/cart/items/42/increase",
			setup:          func(*MockCartService) {},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockCartService)
			h := NewCartHandler(svc, NewValidator(), zerolog.Nop())
			tt.setup(svc)

			w := serve(t, "/api/cart", h.RegisterRoutes, customer, tt.method, tt.path, tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestCartHandler_Clear(t *testing.T) {
	svc := new(MockCartService)
	h := NewCartHandler(svc, NewValidator(), zerolog.Nop())
	svc.On("Clear", mock.Anything, customer.UserID).Return(int64(3), nil)

	w := serve(t, "/api/cart", h.RegisterRoutes, customer, http.MethodDelete, "/api/cart/clear", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var body ClearCartResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, int64(3), body.ItemsRemoved)
}
