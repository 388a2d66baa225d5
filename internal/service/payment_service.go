package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"nexus-store/internal/events"
	"nexus-store/internal/model"
	"nexus-store/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type paymentService struct {
	paymentRepo repository.PaymentRepository
	orderRepo   repository.OrderRepository
	publisher   events.Publisher
	logger      zerolog.Logger
	now         func() time.Time
}

// NewPaymentService creates a new payment service.
func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	orderRepo repository.OrderRepository,
	publisher events.Publisher,
	logger zerolog.Logger,
) PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		publisher:   publisher,
		logger:      logger.With().Str("service", "payment").Logger(),
		now:         time.Now,
	}
}

// newTransactionID returns TXN<yyyymmddhhmmss><4 digits>.
func newTransactionID(now time.Time) string {
	return fmt.Sprintf("TXN%s%d", now.UTC().Format("20060102150405"), 1000+rand.IntN(9000))
}

func (s *paymentService) Create(ctx context.Context, userID uuid.UUID, req *model.CreatePaymentRequest) (payment *model.Payment, err error) {
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return nil, model.ErrOrderNotFound
	}
	method := model.PaymentMethod(strings.ToLower(strings.TrimSpace(req.PaymentMethod)))
	if !method.Valid() {
		return nil, model.ErrInvalidPaymentMethod
	}

	tx, err := s.paymentRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}
	defer rollbackOnError(ctx, tx, &err, s.logger)

	order, err := s.orderRepo.LockByID(ctx, tx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}
	if order == nil || order.UserID != userID {
		return nil, model.ErrOrderNotFound
	}

	existing, err := s.paymentRepo.GetByOrderID(ctx, tx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing payment: %w", err)
	}
	if existing != nil {
		return nil, model.ErrPaymentExists
	}

	if order.Status != model.OrderStatusPending && order.Status != model.OrderStatusConfirmed {
		return nil, model.ErrOrderNotPayable
	}

	payment = &model.Payment{
		ID:            uuid.New(),
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		UserID:        order.UserID,
		PaymentMethod: method,
		Amount:        order.TotalAmount,
		Status:        model.PaymentStatusPending,
	}
	if err = s.paymentRepo.Create(ctx, tx, payment); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit payment: %w", err)
	}

	s.logger.Info().
		Str("payment_id", payment.ID.String()).
		Str("order_id", order.ID.String()).
		Str("method", string(method)).
		Str("amount", payment.Amount.StringFixed(2)).
		Msg("payment created")

	return payment, nil
}

func (s *paymentService) GetByID(ctx context.Context, userID, id uuid.UUID) (*model.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	if payment == nil || payment.UserID != userID {
		return nil, model.ErrPaymentNotFound
	}
	return payment, nil
}

func (s *paymentService) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Payment, error) {
	payments, err := s.paymentRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

func (s *paymentService) ProcessMock(
	ctx context.Context,
	userID, id uuid.UUID,
	req *model.ProcessMockPaymentRequest,
) (*model.ProcessMockPaymentResponse, error) {
	success := req.Success == nil || *req.Success

	next := model.PaymentStatusFailed
	var transactionID *string
	if success {
		next = model.PaymentStatusCompleted
		txn := strings.TrimSpace(req.TransactionID)
		if txn == "" {
			txn = newTransactionID(s.now())
		}
		transactionID = &txn
	}

	payment, err := s.transition(ctx, id, next, transactionID, func(p *model.Payment) error {
		if p.UserID != userID {
			return model.ErrPaymentNotFound
		}
		if p.Status != model.PaymentStatusPending {
			return model.ErrPaymentNotPending
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := &model.ProcessMockPaymentResponse{
		Message: "Payment failed",
		Status:  payment.Status,
	}
	if success {
		resp.Message = "Payment processed successfully"
		resp.TransactionID = payment.TransactionID
	}
	return resp, nil
}

func (s *paymentService) RequestRefund(ctx context.Context, userID, id uuid.UUID, req *model.RefundRequest) (*model.RefundResponse, error) {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, model.ErrRefundReasonRequired
	}

	var amount = req.RefundAmount
	payment, err := s.transition(ctx, id, model.PaymentStatusRefunded, nil, func(p *model.Payment) error {
		if p.UserID != userID {
			return model.ErrPaymentNotFound
		}
		if p.Status != model.PaymentStatusCompleted {
			return model.ErrPaymentNotRefundable
		}
		if amount == nil {
			full := p.Amount
			amount = &full
			return nil
		}
		if !amount.IsPositive() || amount.GreaterThan(p.Amount) {
			return model.ErrInvalidRefund
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("payment_id", payment.ID.String()).
		Str("refund_amount", amount.StringFixed(2)).
		Str("reason", reason).
		Msg("refund requested")

	return &model.RefundResponse{
		Message:      "Refund request submitted successfully",
		RefundAmount: *amount,
		Reason:       reason,
	}, nil
}

func (s *paymentService) AdminList(ctx context.Context) ([]model.Payment, error) {
	payments, err := s.paymentRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

func (s *paymentService) AdminGet(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	return s.reload(ctx, id)
}

func (s *paymentService) UpdateStatus(ctx context.Context, id uuid.UUID, req *model.UpdatePaymentStatusRequest) (*model.Payment, error) {
	next, err := model.ParsePaymentStatus(req.Status)
	if err != nil {
		return nil, err
	}

	var transactionID *string
	if req.TransactionID != nil {
		if txn := strings.TrimSpace(*req.TransactionID); txn != "" {
			transactionID = &txn
		}
	}
	if next == model.PaymentStatusCompleted && transactionID == nil {
		return nil, model.ErrTransactionIDRequired
	}

	return s.transition(ctx, id, next, transactionID, nil)
}

func (s *paymentService) Webhook(ctx context.Context, provider string, payload []byte) (*model.WebhookResponse, error) {
	provider = strings.ToLower(provider)
	if !model.PaymentProviders[provider] {
		return nil, model.ErrUnknownProvider
	}

	s.logger.Info().
		Str("provider", provider).
		Int("payload_bytes", len(payload)).
		Msg("payment webhook received")

	return &model.WebhookResponse{Status: "Webhook received"}, nil
}

// transition moves a payment to next and forces the owning order into the
// matching status inside one transaction. check runs against the locked
// payment before the transition table is consulted.
func (s *paymentService) transition(
	ctx context.Context,
	id uuid.UUID,
	next model.PaymentStatus,
	transactionID *string,
	check func(*model.Payment) error,
) (payment *model.Payment, err error) {
	tx, err := s.paymentRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}
	defer rollbackOnError(ctx, tx, &err, s.logger)

	payment, err = s.paymentRepo.LockByID(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to lock payment: %w", err)
	}
	if payment == nil {
		return nil, model.ErrPaymentNotFound
	}
	if check != nil {
		if err = check(payment); err != nil {
			return nil, err
		}
	}

	previous := payment.Status
	if !previous.CanTransitionTo(next) {
		return nil, model.Validationf(model.ErrCodeInvalidTransition,
			"cannot change payment status from %s to %s", previous, next)
	}

	if err = s.paymentRepo.UpdateStatus(ctx, tx, id, next, transactionID); err != nil {
		return nil, err
	}

	order, err := s.orderRepo.LockByID(ctx, tx, payment.OrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	if status, ok := next.OrderEffect(); ok && status != order.Status {
		if err = s.orderRepo.UpdateStatus(ctx, tx, order.ID, status); err != nil {
			return nil, err
		}
		order.Status = status
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}

	payment.Status = next
	if transactionID != nil {
		payment.TransactionID = transactionID
	}

	s.logger.Info().
		Str("payment_id", id.String()).
		Str("from", string(previous)).
		Str("to", string(next)).
		Str("order_status", string(order.Status)).
		Msg("payment status updated")

	publish(ctx, s.publisher, events.PaymentStatusChanged(payment, order), s.logger)

	return s.reload(ctx, id)
}

func (s *paymentService) reload(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	if payment == nil {
		return nil, model.ErrPaymentNotFound
	}
	return payment, nil
}
