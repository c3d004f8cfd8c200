package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/essencia/shop-api/internal/models"
)

// SubscribeNewsletter is idempotent: a fresh email is inserted, a
// known one is re-activated.
func (r *GormRepo) SubscribeNewsletter(ctx context.Context, email string) (*models.Newsletter, error) {
	var sub models.Newsletter
	err := r.DB.WithContext(ctx).Where("email = ?", email).First(&sub).Error
	switch {
	case err == nil:
		if !sub.IsActive {
			sub.IsActive = true
			if err := r.DB.WithContext(ctx).Save(&sub).Error; err != nil {
				return nil, err
			}
		}
		return &sub, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		sub = models.Newsletter{Email: email, IsActive: true}
		if err := r.DB.WithContext(ctx).Create(&sub).Error; err != nil {
			return nil, err
		}
		return &sub, nil
	default:
		return nil, err
	}
}
