package service

import (
	"context"
	"fmt"
	"strings"

	"nexus-store/internal/model"
	"nexus-store/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type reviewService struct {
	reviewRepo  repository.ReviewRepository
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) ReviewService {
	return &reviewService{
		reviewRepo:  reviewRepo,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "review").Logger(),
	}
}

func validRating(r int) bool {
	return r >= model.MinRating && r <= model.MaxRating
}

func (s *reviewService) ListByProduct(ctx context.Context, productID int64) ([]model.Review, error) {
	reviews, err := s.reviewRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

func (s *reviewService) Stats(ctx context.Context, productID int64) (*model.ReviewStats, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}

	stats, err := s.reviewRepo.Stats(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute review stats: %w", err)
	}
	return stats, nil
}

func (s *reviewService) GetByID(ctx context.Context, id uuid.UUID) (*model.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	if review == nil {
		return nil, model.ErrReviewNotFound
	}
	return review, nil
}

func (s *reviewService) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Review, error) {
	reviews, err := s.reviewRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

func (s *reviewService) ListAll(ctx context.Context) ([]model.Review, error) {
	reviews, err := s.reviewRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

// Create checks eligibility inside the inserting transaction.
func (s *reviewService) Create(
	ctx context.Context,
	userID uuid.UUID,
	username string,
	req *model.CreateReviewRequest,
) (review *model.Review, err error) {
	if !validRating(req.Rating) {
		return nil, model.ErrInvalidRating
	}

	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil || !product.IsActive {
		return nil, model.ErrProductNotFound
	}

	tx, err := s.reviewRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	defer rollbackOnError(ctx, tx, &err, s.logger)

	exists, err := s.reviewRepo.Exists(ctx, tx, userID, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing review: %w", err)
	}
	if exists {
		return nil, model.ErrAlreadyReviewed
	}

	delivered, err := s.orderRepo.HasDeliveredProduct(ctx, tx, userID, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to check purchase history: %w", err)
	}
	if !delivered {
		return nil, model.ErrNotVerifiedPurchase
	}

	review = &model.Review{
		ID:               uuid.New(),
		UserID:           userID,
		Username:         username,
		ProductID:        product.ID,
		ProductName:      product.Name,
		Rating:           req.Rating,
		Comment:          strings.TrimSpace(req.Comment),
		VerifiedPurchase: true,
	}
	if err = s.reviewRepo.Create(ctx, tx, review); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit review: %w", err)
	}

	s.logger.Info().
		Str("review_id", review.ID.String()).
		Int64("product_id", product.ID).
		Int("rating", review.Rating).
		Msg("review created")

	return review, nil
}

func (s *reviewService) Update(ctx context.Context, userID, id uuid.UUID, req *model.UpdateReviewRequest) (*model.Review, error) {
	review, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Rating != nil {
		if !validRating(*req.Rating) {
			return nil, model.ErrInvalidRating
		}
		review.Rating = *req.Rating
	}
	if req.Comment != nil {
		review.Comment = strings.TrimSpace(*req.Comment)
	}

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}

	s.logger.Info().Str("review_id", id.String()).Msg("review updated")
	return review, nil
}

func (s *reviewService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.reviewRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("review_id", id.String()).Msg("review deleted")
	return nil
}

func (s *reviewService) Vote(ctx context.Context, userID, id uuid.UUID, helpful bool) (resp *model.HelpfulVoteResponse, err error) {
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	if review == nil {
		return nil, model.ErrReviewNotFound
	}
	if review.UserID == userID {
		return nil, model.ErrOwnReviewVote
	}

	tx, err := s.reviewRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to record vote: %w", err)
	}
	defer rollbackOnError(ctx, tx, &err, s.logger)

	var changed bool
	message := "Review marked as helpful"
	if helpful {
		if changed, err = s.reviewRepo.AddVote(ctx, tx, id, userID); err != nil {
			return nil, err
		}
		if !changed {
			return nil, model.ErrAlreadyVoted
		}
	} else {
		if changed, err = s.reviewRepo.RemoveVote(ctx, tx, id, userID); err != nil {
			return nil, err
		}
		if !changed {
			return nil, model.ErrNotVoted
		}
		message = "Helpful vote removed"
	}

	count, err := s.reviewRepo.RefreshHelpfulCount(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to record vote: %w", err)
	}

	return &model.HelpfulVoteResponse{Message: message, HelpfulCount: count}, nil
}

// owned returns the review when it belongs to userID. Reviews of other
// users are reported as missing.
func (s *reviewService) owned(ctx context.Context, userID, id uuid.UUID) (*model.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	if review == nil || review.UserID != userID {
		return nil, model.ErrReviewNotFound
	}
	return review, nil
}
