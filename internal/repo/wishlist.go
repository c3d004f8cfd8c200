package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/essencia/shop-api/internal/models"
)

// AddToWishlist is idempotent: re-adding a product the user already
// wishlisted succeeds without a second row.
func (r *GormRepo) AddToWishlist(ctx context.Context, userID, productID uint) (*models.Wishlist, error) {
	entry := &models.Wishlist{UserID: userID, ProductID: productID}
	err := r.DB.WithContext(ctx).Create(entry).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		var existing models.Wishlist
		if err := r.DB.WithContext(ctx).
			Where("user_id = ? AND product_id = ?", userID, productID).
			First(&existing).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *GormRepo) RemoveFromWishlist(ctx context.Context, userID, productID uint) error {
	res := r.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.Wishlist{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) ListWishlist(ctx context.Context, userID uint) ([]models.Wishlist, error) {
	var entries []models.Wishlist
	err := r.DB.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&entries).Error
	return entries, err
}
