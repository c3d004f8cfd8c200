package repo

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/essencia/shop-api/internal/models"
	"github.com/essencia/shop-api/internal/transport"
)

func (r *GormRepo) CountOrders(ctx context.Context, since *time.Time) (int64, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{})
	if since != nil {
		q = q.Where("created_at >= ?", *since)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

// SumRevenue tolerates an empty window: no rows means zero revenue,
// never an error.
func (r *GormRepo) SumRevenue(ctx context.Context, since *time.Time) (decimal.Decimal, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{}).
		Select("COALESCE(SUM(total_amount), 0)")
	if since != nil {
		q = q.Where("created_at >= ?", *since)
	}
	var total decimal.Decimal
	if err := q.Scan(&total).Error; err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func (r *GormRepo) CountCustomers(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("role <> ?", "admin").
		Count(&n).Error
	return n, err
}

func (r *GormRepo) CountLowStockProducts(ctx context.Context, threshold uint) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("stock <= ? AND is_active = ?", threshold, true).
		Count(&n).Error
	return n, err
}

func (r *GormRepo) TopProductsByOrderCount(ctx context.Context, limit int) ([]transport.TopProduct, error) {
	var rows []transport.TopProduct
	err := r.DB.WithContext(ctx).Model(&models.Product{}).
		Select("products.*, COUNT(order_items.id) AS order_count").
		Joins("LEFT JOIN order_items ON order_items.product_id = products.id").
		Group("products.id").
		Order("order_count DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *GormRepo) OrdersByStatus(ctx context.Context) ([]transport.StatusCount, error) {
	var rows []transport.StatusCount
	err := r.DB.WithContext(ctx).Model(&models.Order{}).
		Select("status, COUNT(id) AS count").
		Group("status").
		Order("status ASC").
		Scan(&rows).Error
	return rows, err
}
