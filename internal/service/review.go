package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gorm.io/gorm"

	"github.com/essencia/shop-api/internal/models"
	"github.com/essencia/shop-api/internal/mykafka"
	"github.com/essencia/shop-api/internal/repo"
	"github.com/essencia/shop-api/internal/transport"
)

type ReviewService struct {
	Repo     *repo.GormRepo
	Producer mykafka.Publisher
}

// SubmitReview creates the actor's one review for the product. The
// (product, user) pair is unique both as a pre-check and as a DB
// index, so a racing duplicate insert still comes back as
// ErrDuplicateReview rather than a partial success.
func (svc *ReviewService) SubmitReview(ctx context.Context, actor Actor, productID uint, req transport.SubmitReviewRequest) (*models.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}

	var review *models.Review
	err := svc.Repo.InTx(ctx, func(txr *repo.GormRepo) error {
		if _, err := txr.GetProduct(ctx, productID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: product %d", ErrNotFound, productID)
			}
			return err
		}

		exists, err := txr.ReviewExists(ctx, productID, actor.ID)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: product %d", ErrDuplicateReview, productID)
		}

		verified, err := txr.HasPurchased(ctx, actor.ID, productID)
		if err != nil {
			return err
		}

		review = &models.Review{
			ProductID:          productID,
			UserID:             actor.ID,
			Rating:             req.Rating,
			Comment:            req.Comment,
			IsVerifiedPurchase: verified,
		}
		if err := txr.CreateReview(ctx, review); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: product %d", ErrDuplicateReview, productID)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, svc.Producer, "review_events", fmt.Sprint(productID), map[string]any{
		"type":       "review_created",
		"product_id": productID,
		"user_id":    actor.ID,
		"rating":     review.Rating,
	})
	return review, nil
}

// AverageRating returns the product's mean rating rounded to one
// decimal place, or nil (not zero) when the product has no reviews.
func (svc *ReviewService) AverageRating(ctx context.Context, productID uint) (*float64, int64, error) {
	count, avg, err := svc.Repo.RatingSummary(ctx, productID)
	if err != nil {
		return nil, 0, err
	}
	if count == 0 {
		return nil, 0, nil
	}
	rounded := math.Round(avg*10) / 10
	return &rounded, count, nil
}
