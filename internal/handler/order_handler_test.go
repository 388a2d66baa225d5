package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"nexus-store/internal/auth"
	"nexus-store/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestOrderHandler_Create(t *testing.T) {
	created := &model.OrderResponse{
		ID:          uuid.New(),
		UserID:      customer.UserID,
		OrderNumber: "ORD-20240305102030-1A2B3C4D",
		TotalAmount: decimal.RequireFromString("24.00"),
		Status:      model.OrderStatusPending,
		CanCancel:   true,
	}
	address := "12 Harbour Road, Mombasa"

	tests := []struct {
		name           string
		caller         *auth.Caller
		body           any
		key            string
		mockReturn     *model.OrderResponse
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Success",
			caller:         customer,
			body:           map[string]any{"shipping_address": address},
			mockReturn:     created,
			expectedStatus: http.StatusCreated,
			expectService:  true,
		},
		{
			name:           "Idempotency key is forwarded",
			caller:         customer,
			body:           map[string]any{"shipping_address": address},
			key:            "checkout-42",
			mockReturn:     created,
			expectedStatus: http.StatusCreated,
			expectService:  true,
		},
		{
			name:           "Repeated submission",
			caller:         customer,
			body:           map[string]any{"shipping_address": address},
			key:            "checkout-42",
			mockError:      model.ErrDuplicateSubmission,
			expectedStatus: http.StatusConflict,
			expectService:  true,
		},
		{
			name:           "Empty cart",
			caller:         customer,
			body:           map[string]any{"shipping_address": address},
			mockError:      model.ErrCartEmpty,
			expectedStatus: http.StatusBadRequest,
			expectService:  true,
		},
		{
			name:           "Missing address",
			caller:         customer,
			body:           map[string]any{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invalid JSON",
			caller:         customer,
			body:           "{invalid json}",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Anonymous",
			body:           map[string]any{"shipping_address": address},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockOrderService)
			h := NewOrderHandler(svc, NewValidator(), zerolog.Nop())
			if tt.expectService {
				svc.On("CreateOrder", mock.Anything, customer.UserID, tt.key, &model.CreateOrderRequest{ShippingAddress: address}).
					Return(tt.mockReturn, tt.mockError)
			}

			r := chiRequest{method: http.MethodPost, target: "/api/orders/create", body: tt.body}
			if tt.key != "" {
				r.header = map[string]string{IdempotencyKeyHeader: " " + tt.key + " "}
			}
			w := r.serve(t, "/api/orders", h.RegisterRoutes, tt.caller)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.mockReturn != nil {
				var body model.OrderResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
				assert.Equal(t, created.OrderNumber, body.OrderNumber)
				assert.True(t, body.CanCancel)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_Get(t *testing.T) {
	orderID := uuid.New()

	tests := []struct {
		name           string
		path           string
		mockReturn     *model.OrderResponse
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Success",
			path:           "/api/orders/" + orderID.String(),
			mockReturn:     &model.OrderResponse{ID: orderID},
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Other user's order",
			path:           "/api/orders/" + orderID.String(),
			mockError:      model.ErrOrderNotFound,
			expectedStatus: http.StatusNotFound,
			expectService:  true,
		},
		{
			name:           "Invalid UUID",
			path:           "/api/orders/invalid-uuid",
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockOrderService)
			h := NewOrderHandler(svc, NewValidator(), zerolog.Nop())
			if tt.expectService {
				svc.On("GetByID", mock.Anything, customer.UserID, orderID).Return(tt.mockReturn, tt.mockError)
			}

			w := serve(t, "/api/orders", h.RegisterRoutes, customer, http.MethodGet, tt.path, nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_Cancel(t *testing.T) {
	orderID := uuid.New()

	tests := []struct {
		name           string
		body           any
		reason         string
		mockError      error
		expectedStatus int
	}{
		{name: "Without body", reason: "", expectedStatus: http.StatusOK},
		{name: "With reason", body: map[string]any{"reason": "  changed my mind "}, reason: "changed my mind", expectedStatus: http.StatusOK},
		{name: "Already shipped", mockError: model.ErrOrderNotCancellable, expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockOrderService)
			h := NewOrderHandler(svc, NewValidator(), zerolog.Nop())
			var resp *model.OrderResponse
			if tt.mockError == nil {
				resp = &model.OrderResponse{ID: orderID, Status: model.OrderStatusCancelled}
			}
			svc.On("Cancel", mock.Anything, customer.UserID, orderID, tt.reason).Return(resp, tt.mockError)

			w := serve(t, "/api/orders", h.RegisterRoutes, customer, http.MethodPost, "/api/orders/"+orderID.String()+"/cancel", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_Admin(t *testing.T) {
	orderID := uuid.New()

	t.Run("customers are forbidden", func(t *testing.T) {
		svc := new(MockOrderService)
		h := NewOrderHandler(svc, NewValidator(), zerolog.Nop())

		w := serve(t, "/api/orders", h.RegisterRoutes, customer, http.MethodGet, "/api/orders/admin/all", nil)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, model.ErrCodeForbidden, decodeError(t, w).Error)
	})

	t.Run("list filtered by status", func(t *testing.T) {
		svc := new(MockOrderService)
		h := NewOrderHandler(svc, NewValidator(), zerolog.Nop())
		shipped := model.OrderStatusShipped
		svc.On("AdminList", mock.Anything, &shipped).Return([]model.OrderResponse{{ID: orderID}}, nil)

		w := serve(t, "/api/orders", h.RegisterRoutes, staff, http.MethodGet, "/api/orders/admin/all?status=shipped", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("unknown status filter", func(t *testing.T) {
		svc := new(MockOrderService)
		h := NewOrderHandler(svc, NewValidator(), zerolog.Nop())

		w := serve(t, "/api/orders", h.RegisterRoutes, staff, http.MethodGet, "/api/orders/admin/all?status=lost", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, model.ErrCodeInvalidStatus, decodeError(t, w).Error)
	})

	t.Run("admin get is not scoped to the caller", func(t *testing.T) {
		svc := new(MockOrderService)
		h := NewOrderHandler(svc, NewValidator(), zerolog.Nop())
		svc.On("AdminGet", mock.Anything, orderID).Return(&model.OrderResponse{ID: orderID}, nil)

		w := serve(t, "/api/orders", h.RegisterRoutes, staff, http.MethodGet, "/api/orders/admin/"+orderID.String(), nil)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	for _, method := range []string{http.MethodPut, http.MethodPatch} {
		t.Run("status update via "+method, func(t *testing.T) {
			svc := new(MockOrderService)
			h := NewOrderHandler(svc, NewValidator(), zerolog.Nop())
			svc.On("UpdateStatus", mock.Anything, orderID, "delivered").
				Return(nil, model.Validationf(model.ErrCodeInvalidTransition, "cannot change order status from %s to %s", "pending", "delivered"))

			w := serve(t, "/api/orders", h.RegisterRoutes, staff, method, "/api/orders/admin/"+orderID.String()+"/status", map[string]any{"status": "delivered"})

			assert.Equal(t, http.StatusBadRequest, w.Code)
			body := decodeError(t, w)
			assert.Equal(t, model.ErrCodeInvalidTransition, body.Error)
			assert.Equal(t, "cannot change order status from pending to delivered", body.Message)
		})
	}
}
