package model

import (
	"time"

	"github.com/google/uuid"
)

// Rating bounds for reviews.
const (
	MinRating = 1
	MaxRating = 5
)

// Review is one user's rating of a product.
type Review struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"user_id"`
	Username         string    `json:"username"`
	ProductID        int64     `json:"product_id"`
	ProductName      string    `json:"product_name"`
	Rating           int       `json:"rating"`
	Comment          string    `json:"comment"`
	VerifiedPurchase bool      `json:"verified_purchase"`
	HelpfulCount     int       `json:"helpful_count"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// CreateReviewRequest is the payload for POST /api/reviews/create.
type CreateReviewRequest struct {
	ProductID int64  `json:"product_id" validate:"required,gt=0"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment" validate:"required,max=2000"`
}

// UpdateReviewRequest is the payload for PUT/PATCH /api/reviews/{id}/update.
type UpdateReviewRequest struct {
	Rating  *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Comment *string `json:"comment" validate:"omitempty,min=1,max=2000"`
}

// HelpfulVoteRequest is the payload for POST /api/reviews/{id}/helpful.
type HelpfulVoteRequest struct {
	Helpful *bool `json:"helpful" validate:"required"`
}

// HelpfulVoteResponse reports the new helpful count.
type HelpfulVoteResponse struct {
	Message      string `json:"message"`
	HelpfulCount int    `json:"helpful_count"`
}

// ReviewStats summarises the ratings of a product.
type ReviewStats struct {
	ProductID         int64          `json:"product_id"`
	AverageRating     float64        `json:"average_rating"`
	TotalReviews      int            `json:"total_reviews"`
	RatingBreakdown   map[string]int `json:"rating_breakdown"`
	VerifiedPurchases int            `json:"verified_purchases"`
}
