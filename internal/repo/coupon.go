package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/essencia/shop-api/internal/models"
)

func (r *GormRepo) GetCouponByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var cp models.Coupon
	if err := r.DB.WithContext(ctx).Where("code = ?", code).First(&cp).Error; err != nil {
		return nil, err
	}
	return &cp, nil
}

// IncrementCouponUsage bumps times_used only while the usage cap
// allows it; with the guard in the UPDATE itself no interleaving of
// concurrent orders can exceed usage_limit.
func (r *GormRepo) IncrementCouponUsage(ctx context.Context, couponID uint) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.Coupon{}).
		Where("id = ? AND (usage_limit = 0 OR times_used < usage_limit)", couponID).
		UpdateColumn("times_used", gorm.Expr("times_used + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *GormRepo) CreateCoupon(ctx context.Context, cp *models.Coupon) error {
	return r.DB.WithContext(ctx).Create(cp).Error
}
