// Package events publishes order lifecycle notifications after the
// corresponding database transaction has committed.
package events

import (
	"context"
	"time"

	"nexus-store/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event types.
const (
	TypeOrderCreated         = "order.created"
	TypeOrderStatusChanged   = "order.status_changed"
	TypeOrderCancelled       = "order.cancelled"
	TypePaymentStatusChanged = "payment.status_changed"
)

// Event is the JSON document written for every lifecycle change.
type Event struct {
	Type           string              `json:"type"`
	OrderID        uuid.UUID           `json:"order_id"`
	OrderNumber    string              `json:"order_number"`
	UserID         uuid.UUID           `json:"user_id"`
	Status         model.OrderStatus   `json:"status"`
	PreviousStatus model.OrderStatus   `json:"previous_status,omitempty"`
	TotalAmount    decimal.Decimal     `json:"total_amount"`
	PaymentID      *uuid.UUID          `json:"payment_id,omitempty"`
	PaymentStatus  model.PaymentStatus `json:"payment_status,omitempty"`
	Reason         string              `json:"reason,omitempty"`
	OccurredAt     time.Time           `json:"occurred_at"`
}

// Publisher delivers events to a message broker.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

func orderEvent(eventType string, o *model.Order) Event {
	return Event{
		Type:        eventType,
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		UserID:      o.UserID,
		Status:      o.Status,
		TotalAmount: o.TotalAmount,
		OccurredAt:  time.Now().UTC(),
	}
}

// OrderCreated describes a freshly checked-out order.
func OrderCreated(o *model.Order) Event {
	return orderEvent(TypeOrderCreated, o)
}

// OrderStatusChanged describes an administrative status update. o carries the new status.
func OrderStatusChanged(o *model.Order, previous model.OrderStatus) Event {
	e := orderEvent(TypeOrderStatusChanged, o)
	e.PreviousStatus = previous
	return e
}

// OrderCancelled describes an owner cancellation.
func OrderCancelled(o *model.Order, previous model.OrderStatus, reason string) Event {
	e := orderEvent(TypeOrderCancelled, o)
	e.PreviousStatus = previous
	e.Reason = reason
	return e
}

// PaymentStatusChanged describes a payment transition and the order status it forced.
func PaymentStatusChanged(p *model.Payment, o *model.Order) Event {
	e := orderEvent(TypePaymentStatusChanged, o)
	id := p.ID
	e.PaymentID = &id
	e.PaymentStatus = p.Status
	return e
}

type nopPublisher struct{}

// NewNopPublisher returns a Publisher that drops every event.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) Publish(context.Context, Event) error { return nil }
func (nopPublisher) Close() error                         { return nil }
