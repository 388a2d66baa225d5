package service

import (
	"context"
	"fmt"

	"nexus-store/internal/model"
	"nexus-store/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

func (s *cartService) Get(ctx context.Context, userID uuid.UUID) (*model.CartView, error) {
	cart, err := s.cartRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	lines, err := s.cartRepo.Lines(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart items: %w", err)
	}

	return model.NewCartView(cart, lines), nil
}

// AddItem merges quantity into the user's cart. The cart row is locked before
// the item row is written so concurrent checkouts and item updates agree on
// lock order.
func (s *cartService) AddItem(ctx context.Context, userID uuid.UUID, req *model.AddToCartRequest) (item *model.CartItem, err error) {
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if !validQuantity(quantity) {
		return nil, model.ErrInvalidQuantity
	}

	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}
	if !product.IsActive {
		return nil, model.ErrProductInactive
	}

	if _, err = s.cartRepo.GetOrCreate(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	tx, err := s.cartRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}
	defer rollbackOnError(ctx, tx, &err, s.logger)

	cart, err := s.cartRepo.LockCart(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, fmt.Errorf("failed to add cart item: cart for user %s vanished", userID)
	}

	item, err = s.cartRepo.AddItem(ctx, tx, cart.ID, product.ID, quantity)
	if err != nil {
		return nil, err
	}
	if !validQuantity(item.Quantity) {
		return nil, model.ErrInvalidQuantity
	}

	if err = s.cartRepo.Touch(ctx, tx, cart.ID); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	s.logger.Debug().
		Str("cart_id", cart.ID.String()).
		Int64("product_id", product.ID).
		Int("quantity", item.Quantity).
		Msg("cart item added")

	return item, nil
}

func validQuantity(q int) bool {
	return q >= 1 && q <= model.MaxCartItemQuantity
}

func (s *cartService) IncreaseItem(ctx context.Context, userID, itemID uuid.UUID) (*model.CartItemResponse, error) {
	return s.mutateItem(ctx, userID, itemID, func(current int) int { return current + 1 }, "Quantity increased")
}

func (s *cartService) DecreaseItem(ctx context.Context, userID, itemID uuid.UUID) (*model.CartItemResponse, error) {
	return s.mutateItem(ctx, userID, itemID, func(current int) int { return current - 1 }, "Quantity decreased")
}

func (s *cartService) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*model.CartItemResponse, error) {
	if !validQuantity(quantity) {
		return nil, model.ErrInvalidQuantity
	}
	return s.mutateItem(ctx, userID, itemID, func(int) int { return quantity }, "Quantity updated")
}

func (s *cartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error {
	_, err := s.mutateItem(ctx, userID, itemID, func(int) int { return 0 }, "Item removed from cart")
	return err
}

// mutateItem locks the item, checks ownership and applies next to its
// quantity. A resulting quantity below one removes the line; one above
// MaxCartItemQuantity is rejected.
func (s *cartService) mutateItem(
	ctx context.Context,
	userID, itemID uuid.UUID,
	next func(current int) int,
	message string,
) (resp *model.CartItemResponse, err error) {
	tx, err := s.cartRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}
	defer rollbackOnError(ctx, tx, &err, s.logger)

	item, owner, err := s.cartRepo.LockItem(ctx, tx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}
	if item == nil {
		return nil, model.ErrCartItemNotFound
	}
	if owner != userID {
		s.logger.Warn().
			Str("item_id", itemID.String()).
			Str("user_id", userID.String()).
			Msg("cart item belongs to another user")
		return nil, model.ErrCartItemNotOwned
	}

	quantity := next(item.Quantity)
	if quantity > model.MaxCartItemQuantity {
		return nil, model.ErrInvalidQuantity
	}
	resp = &model.CartItemResponse{Message: message}
	if quantity < 1 {
		if err = s.cartRepo.DeleteItem(ctx, tx, itemID); err != nil {
			return nil, err
		}
		resp.Removed = true
		resp.Message = "Item removed from cart"
	} else {
		if err = s.cartRepo.SetQuantity(ctx, tx, itemID, quantity); err != nil {
			return nil, err
		}
		item.Quantity = quantity
		resp.Item = item
	}

	if err = s.cartRepo.Touch(ctx, tx, item.CartID); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}

	return resp, nil
}

func (s *cartService) Clear(ctx context.Context, userID uuid.UUID) (removed int64, err error) {
	tx, err := s.cartRepo.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to clear cart: %w", err)
	}
	defer rollbackOnError(ctx, tx, &err, s.logger)

	cart, err := s.cartRepo.LockCart(ctx, tx, userID)
	if err != nil {
		return 0, err
	}
	if cart == nil {
		return 0, tx.Commit(ctx)
	}

	if removed, err = s.cartRepo.Clear(ctx, tx, cart.ID); err != nil {
		return 0, err
	}
	if err = s.cartRepo.Touch(ctx, tx, cart.ID); err != nil {
		return 0, err
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to clear cart: %w", err)
	}

	s.logger.Debug().Str("cart_id", cart.ID.String()).Int64("removed", removed).Msg("cart cleared")
	return removed, nil
}
