package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment is the single payment record attached to an order.
type Payment struct {
	ID            uuid.UUID       `json:"id"`
	OrderID       uuid.UUID       `json:"order_id"`
	OrderNumber   string          `json:"order_number"`
	UserID        uuid.UUID       `json:"user_id"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Amount        decimal.Decimal `json:"amount"`
	Status        PaymentStatus   `json:"status"`
	TransactionID *string         `json:"transaction_id"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// CreatePaymentRequest is the payload for POST /api/payments/create.
type CreatePaymentRequest struct {
	OrderID       string `json:"order_id" validate:"required,uuid"`
	PaymentMethod string `json:"payment_method" validate:"required"`
}

// UpdatePaymentStatusRequest is the payload for the admin status update.
type UpdatePaymentStatusRequest struct {
	Status        string  `json:"status" validate:"required"`
	TransactionID *string `json:"transaction_id" validate:"omitempty,max=100"`
}

// ProcessMockPaymentRequest simulates a gateway callback. Success defaults to true.
type ProcessMockPaymentRequest struct {
	Success       *bool  `json:"success"`
	TransactionID string `json:"transaction_id" validate:"max=100"`
}

// ProcessMockPaymentResponse reports the outcome of a simulated charge.
type ProcessMockPaymentResponse struct {
	Message       string        `json:"message"`
	Status        PaymentStatus `json:"status"`
	TransactionID *string       `json:"transaction_id"`
}

// RefundRequest is the payload for POST /api/payments/{id}/request-refund.
type RefundRequest struct {
	Reason       string           `json:"reason" validate:"required,max=1000"`
	RefundAmount *decimal.Decimal `json:"refund_amount"`
}

// RefundResponse acknowledges a refund.
type RefundResponse struct {
	Message      string          `json:"message"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
	Reason       string          `json:"reason"`
}

// WebhookResponse acknowledges a provider callback.
type WebhookResponse struct {
	Status string `json:"status"`
}

// PaymentProviders lists the providers accepted on the webhook route.
var PaymentProviders = map[string]bool{
	"stripe": true,
	"mpesa":  true,
	"paypal": true,
}
