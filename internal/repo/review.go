package repo

import (
	"context"

	"github.com/essencia/shop-api/internal/models"
)

func (r *GormRepo) CreateReview(ctx context.Context, rev *models.Review) error {
	return r.DB.WithContext(ctx).Create(rev).Error
}

func (r *GormRepo) ReviewExists(ctx context.Context, productID, userID uint) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Review{}).
		Where("product_id = ? AND user_id = ?", productID, userID).
		Count(&n).Error
	return n > 0, err
}

func (r *GormRepo) ListReviews(ctx context.Context, productID uint) ([]models.Review, error) {
	var reviews []models.Review
	err := r.DB.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

// RatingSummary returns the review count and the raw rating average.
// avg is only meaningful when count > 0.
func (r *GormRepo) RatingSummary(ctx context.Context, productID uint) (count int64, avg float64, err error) {
	var row struct {
		Count int64
		Avg   float64
	}
	err = r.DB.WithContext(ctx).Model(&models.Review{}).
		Select("COUNT(*) AS count, COALESCE(AVG(rating), 0) AS avg").
		Where("product_id = ?", productID).
		Scan(&row).Error
	return row.Count, row.Avg, err
}
