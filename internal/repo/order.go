package repo

import (
	"context"

	"github.com/essencia/shop-api/internal/models"
)

func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.DB.WithContext(ctx).Create(order).Error
}

func (r *GormRepo) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).Preload("Items").First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) ListOrders(ctx context.Context, userID uint, limit, offset int) ([]models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{}).Preload("Items")
	if userID != 0 {
		q = q.Where("user_id = ?", userID)
	}

	var orders []models.Order
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) UpdateOrderStatus(ctx context.Context, order *models.Order, status string) error {
	return r.DB.WithContext(ctx).Model(order).Update("status", status).Error
}

func (r *GormRepo) UpdateOrderPaymentStatus(ctx context.Context, order *models.Order, paymentStatus string) error {
	return r.DB.WithContext(ctx).Model(order).Update("payment_status", paymentStatus).Error
}

func (r *GormRepo) UpdateOrderTracking(ctx context.Context, order *models.Order, tracking string) error {
	return r.DB.WithContext(ctx).Model(order).Update("tracking_number", tracking).Error
}

// HasPurchased reports whether the user has a non-cancelled order
// containing the product. Feeds the verified-purchase review flag.
func (r *GormRepo) HasPurchased(ctx context.Context, userID, productID uint) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND order_items.product_id = ? AND orders.status <> ?",
			userID, productID, models.OrderStatusCancelled).
		Count(&n).Error
	return n > 0, err
}
