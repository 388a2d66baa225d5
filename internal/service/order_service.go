package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"nexus-store/internal/events"
	"nexus-store/internal/idempotency"
	"nexus-store/internal/model"
	"nexus-store/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo repository.OrderRepository
	cartRepo  repository.CartRepository
	guard     idempotency.Guard
	publisher events.Publisher
	logger    zerolog.Logger
	now       func() time.Time
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	guard idempotency.Guard,
	publisher events.Publisher,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		cartRepo:  cartRepo,
		guard:     guard,
		publisher: publisher,
		logger:    logger.With().Str("service", "order").Logger(),
		now:       time.Now,
	}
}

// newOrderNumber returns ORD-<yyyymmddhhmmss>-<8 hex chars>.
func newOrderNumber(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102150405"), strings.ToUpper(suffix))
}

// CreateOrder converts the caller's cart into a pending order within a
// single transaction, then empties the cart.
func (s *orderService) CreateOrder(
	ctx context.Context,
	userID uuid.UUID,
	idempotencyKey string,
	req *model.CreateOrderRequest,
) (resp *model.OrderResponse, err error) {
	address := strings.TrimSpace(req.ShippingAddress)
	if utf8.RuneCountInString(address) < model.MinShippingAddressLength {
		return nil, model.ErrInvalidAddress
	}

	if idempotencyKey != "" {
		claimed, claimErr := s.guard.Claim(ctx, userID.String(), idempotencyKey)
		if claimErr != nil {
			return nil, fmt.Errorf("failed to check idempotency key: %w", claimErr)
		}
		if !claimed {
			s.logger.Warn().
				Str("user_id", userID.String()).
				Str("idempotency_key", idempotencyKey).
				Msg("duplicate order submission")
			return nil, model.ErrDuplicateSubmission
		}
		// A failed checkout leaves the key reusable.
		defer func() {
			if err == nil {
				return
			}
			if relErr := s.guard.Release(context.WithoutCancel(ctx), userID.String(), idempotencyKey); relErr != nil {
				s.logger.Warn().Err(relErr).Msg("failed to release idempotency key")
			}
		}()
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	defer rollbackOnError(ctx, tx, &err, s.logger)

	cart, err := s.cartRepo.LockCart(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock cart: %w", err)
	}
	if cart == nil {
		return nil, model.ErrCartEmpty
	}

	lines, err := s.cartRepo.LockedLines(ctx, tx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart items: %w", err)
	}
	if len(lines) == 0 {
		return nil, model.ErrCartEmpty
	}

	order := &model.Order{
		ID:              uuid.New(),
		UserID:          userID,
		OrderNumber:     newOrderNumber(s.now()),
		ShippingAddress: address,
		Status:          model.OrderStatusPending,
		TotalAmount:     decimal.Zero,
		Items:           make([]model.OrderItem, 0, len(lines)),
	}
	for _, line := range lines {
		item := model.OrderItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			Price:       line.UnitPrice,
		}
		order.TotalAmount = order.TotalAmount.Add(item.LineTotal())
		order.Items = append(order.Items, item)
	}

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return nil, err
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, order.Items); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order items")
		return nil, err
	}

	if _, err = s.cartRepo.Clear(ctx, tx, cart.ID); err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Int("item_count", len(order.Items)).
		Str("total", order.TotalAmount.StringFixed(2)).
		Msg("order created successfully")

	publish(ctx, s.publisher, events.OrderCreated(order), s.logger)

	return model.NewOrderResponse(order), nil
}

func (s *orderService) GetByID(ctx context.Context, userID, id uuid.UUID) (*model.OrderResponse, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil || order.UserID != userID {
		return nil, model.ErrOrderNotFound
	}
	return model.NewOrderResponse(order), nil
}

func (s *orderService) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.OrderResponse, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return toOrderResponses(orders), nil
}

func (s *orderService) Cancel(ctx context.Context, userID, id uuid.UUID, reason string) (resp *model.OrderResponse, err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}
	defer rollbackOnError(ctx, tx, &err, s.logger)

	order, err := s.orderRepo.LockByID(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}
	if order == nil || order.UserID != userID {
		return nil, model.ErrOrderNotFound
	}
	if !order.Status.Cancellable() {
		return nil, model.ErrOrderNotCancellable
	}

	previous := order.Status
	if err = s.orderRepo.UpdateStatus(ctx, tx, id, model.OrderStatusCancelled); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Str("previous_status", string(previous)).
		Str("reason", reason).
		Msg("order cancelled")

	order.Status = model.OrderStatusCancelled
	publish(ctx, s.publisher, events.OrderCancelled(order, previous, reason), s.logger)

	return s.reload(ctx, id)
}

func (s *orderService) AdminList(ctx context.Context, status *model.OrderStatus) ([]model.OrderResponse, error) {
	orders, err := s.orderRepo.ListAll(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return toOrderResponses(orders), nil
}

func (s *orderService) AdminGet(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	return s.reload(ctx, id)
}

// UpdateStatus moves an order along the lifecycle table under a row lock.
func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (resp *model.OrderResponse, err error) {
	next, err := model.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	defer rollbackOnError(ctx, tx, &err, s.logger)

	order, err := s.orderRepo.LockByID(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	previous := order.Status
	if !previous.CanTransitionTo(next) {
		return nil, model.Validationf(model.ErrCodeInvalidTransition,
			"cannot change order status from %s to %s", previous, next)
	}

	if err = s.orderRepo.UpdateStatus(ctx, tx, id, next); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Str("from", string(previous)).
		Str("to", string(next)).
		Msg("order status updated")

	order.Status = next
	publish(ctx, s.publisher, events.OrderStatusChanged(order, previous), s.logger)

	return s.reload(ctx, id)
}

func (s *orderService) reload(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	return model.NewOrderResponse(order), nil
}

func toOrderResponses(orders []model.Order) []model.OrderResponse {
	out := make([]model.OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, *model.NewOrderResponse(&orders[i]))
	}
	return out
}
