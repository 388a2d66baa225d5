package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"nexus-store/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type reviewRepository struct {
	baseRepository
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool *pgxpool.Pool, logger zerolog.Logger) ReviewRepository {
	return &reviewRepository{baseRepository: newBase(pool, logger, "review")}
}

const reviewSelect = `
	SELECT r.id, r.user_id, r.username, r.product_id, p.name, r.rating, r.comment,
		r.verified_purchase, r.helpful_count, r.created_at, r.updated_at
	FROM reviews r
	JOIN products p ON p.id = r.product_id
`

func scanReview(row pgx.Row, rv *model.Review) error {
	return row.Scan(
		&rv.ID,
		&rv.UserID,
		&rv.Username,
		&rv.ProductID,
		&rv.ProductName,
		&rv.Rating,
		&rv.Comment,
		&rv.VerifiedPurchase,
		&rv.HelpfulCount,
		&rv.CreatedAt,
		&rv.UpdatedAt,
	)
}

func (r *reviewRepository) Create(ctx context.Context, tx pgx.Tx, rv *model.Review) error {
	query := `
		INSERT INTO reviews (id, user_id, username, product_id, rating, comment, verified_purchase)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING helpful_count, created_at, updated_at
	`

	err := tx.QueryRow(ctx, query,
		rv.ID, rv.UserID, rv.Username, rv.ProductID, rv.Rating, rv.Comment, rv.VerifiedPurchase,
	).Scan(&rv.HelpfulCount, &rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return model.ErrAlreadyReviewed
		}
		if foreignKeyViolation(err) {
			return model.ErrProductNotFound
		}
		r.logger.Error().
			Err(err).
			Str("user_id", rv.UserID.String()).
			Int64("product_id", rv.ProductID).
			Msg("failed to create review")
		return fmt.Errorf("failed to create review: %w", err)
	}

	return nil
}

func (r *reviewRepository) Exists(ctx context.Context, tx pgx.Tx, userID uuid.UUID, productID int64) (bool, error) {
	var ok bool
	query := `SELECT EXISTS (SELECT 1 FROM reviews WHERE user_id = $1 AND product_id = $2)`
	if err := tx.QueryRow(ctx, query, userID, productID).Scan(&ok); err != nil {
		r.logger.Error().Err(err).Msg("failed to check existing review")
		return false, fmt.Errorf("failed to check existing review: %w", err)
	}
	return ok, nil
}

func (r *reviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Review, error) {
	var rv model.Review
	if err := scanReview(r.pool.QueryRow(ctx, reviewSelect+` WHERE r.id = $1`, id), &rv); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("review_id", id.String()).Msg("review not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("review_id", id.String()).Msg("failed to query review")
		return nil, fmt.Errorf("failed to query review: %w", err)
	}
	return &rv, nil
}

func (r *reviewRepository) ListByProduct(ctx context.Context, productID int64) ([]model.Review, error) {
	return r.list(ctx, reviewSelect+` WHERE r.product_id = $1 ORDER BY r.created_at DESC, r.id`, productID)
}

func (r *reviewRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Review, error) {
	return r.list(ctx, reviewSelect+` WHERE r.user_id = $1 ORDER BY r.created_at DESC, r.id`, userID)
}

func (r *reviewRepository) ListAll(ctx context.Context) ([]model.Review, error) {
	return r.list(ctx, reviewSelect+` ORDER BY r.created_at DESC, r.id`)
}

func (r *reviewRepository) list(ctx context.Context, query string, args ...any) ([]model.Review, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query reviews")
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	reviews := []model.Review{}
	for rows.Next() {
		var rv model.Review
		if err := scanReview(rows, &rv); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan review row")
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, rv)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating review rows")
		return nil, fmt.Errorf("error iterating reviews: %w", err)
	}

	return reviews, nil
}

func (r *reviewRepository) Update(ctx context.Context, rv *model.Review) error {
	query := `
		UPDATE reviews
		SET rating = $2, comment = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	if err := r.pool.QueryRow(ctx, query, rv.ID, rv.Rating, rv.Comment).Scan(&rv.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrReviewNotFound
		}
		r.logger.Error().Err(err).Str("review_id", rv.ID.String()).Msg("failed to update review")
		return fmt.Errorf("failed to update review: %w", err)
	}

	return nil
}

func (r *reviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("review_id", id.String()).Msg("failed to delete review")
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrReviewNotFound
	}
	return nil
}

func (r *reviewRepository) Stats(ctx context.Context, productID int64) (*model.ReviewStats, error) {
	query := `
		SELECT
			COALESCE(ROUND(AVG(rating)::numeric, 1), 0)::float8,
			COUNT(*),
			COUNT(*) FILTER (WHERE verified_purchase),
			COUNT(*) FILTER (WHERE rating = 1),
			COUNT(*) FILTER (WHERE rating = 2),
			COUNT(*) FILTER (WHERE rating = 3),
			COUNT(*) FILTER (WHERE rating = 4),
			COUNT(*) FILTER (WHERE rating = 5)
		FROM reviews
		WHERE product_id = $1
	`

	stats := &model.ReviewStats{ProductID: productID}
	var breakdown [model.MaxRating]int
	err := r.pool.QueryRow(ctx, query, productID).Scan(
		&stats.AverageRating,
		&stats.TotalReviews,
		&stats.VerifiedPurchases,
		&breakdown[0],
		&breakdown[1],
		&breakdown[2],
		&breakdown[3],
		&breakdown[4],
	)
	if err != nil {
		r.logger.Error().Err(err).Int64("product_id", productID).Msg("failed to aggregate reviews")
		return nil, fmt.Errorf("failed to aggregate reviews: %w", err)
	}

	stats.RatingBreakdown = make(map[string]int, model.MaxRating)
	for i, n := range breakdown {
		stats.RatingBreakdown[strconv.Itoa(i+1)] = n
	}

	return stats, nil
}

func (r *reviewRepository) AddVote(ctx context.Context, tx pgx.Tx, reviewID, userID uuid.UUID) (bool, error) {
	query := `
		INSERT INTO review_helpful_votes (review_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`

	tag, err := tx.Exec(ctx, query, reviewID, userID)
	if err != nil {
		if foreignKeyViolation(err) {
			return false, model.ErrReviewNotFound
		}
		r.logger.Error().Err(err).Str("review_id", reviewID.String()).Msg("failed to record helpful vote")
		return false, fmt.Errorf("failed to record helpful vote: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

func (r *reviewRepository) RemoveVote(ctx context.Context, tx pgx.Tx, reviewID, userID uuid.UUID) (bool, error) {
	tag, err := tx.Exec(ctx, `DELETE FROM review_helpful_votes WHERE review_id = $1 AND user_id = $2`, reviewID, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("review_id", reviewID.String()).Msg("failed to withdraw helpful vote")
		return false, fmt.Errorf("failed to withdraw helpful vote: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *reviewRepository) RefreshHelpfulCount(ctx context.Context, tx pgx.Tx, reviewID uuid.UUID) (int, error) {
	query := `
		UPDATE reviews
		SET helpful_count = (SELECT COUNT(*) FROM review_helpful_votes WHERE review_id = $1)
		WHERE id = $1
		RETURNING helpful_count
	`

	var count int
	if err := tx.QueryRow(ctx, query, reviewID).Scan(&count); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, model.ErrReviewNotFound
		}
		r.logger.Error().Err(err).Str("review_id", reviewID.String()).Msg("failed to refresh helpful count")
		return 0, fmt.Errorf("failed to refresh helpful count: %w", err)
	}

	return count, nil
}
