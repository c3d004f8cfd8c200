package service

import (
	"context"
	"fmt"
	"time"

	"github.com/essencia/shop-api/internal/repo"
	"github.com/essencia/shop-api/internal/transport"
)

const (
	defaultWindowDays = 30
	lowStockThreshold = 10
	topProductsLimit  = 5
)

type DashboardService struct {
	Repo *repo.GormRepo
}

// Stats computes the admin dashboard aggregates over a trailing
// window. A window with no orders yields zero counts and zero
// revenue, never an error.
func (svc *DashboardService) Stats(ctx context.Context, actor Actor, windowDays int) (*transport.DashboardStats, error) {
	if !actor.Admin {
		return nil, fmt.Errorf("%w: admin only", ErrForbidden)
	}
	if windowDays <= 0 {
		windowDays = defaultWindowDays
	}
	since := time.Now().UTC().AddDate(0, 0, -windowDays)

	stats := &transport.DashboardStats{}
	var err error

	if stats.TotalOrders, err = svc.Repo.CountOrders(ctx, nil); err != nil {
		return nil, err
	}
	if stats.RecentOrders, err = svc.Repo.CountOrders(ctx, &since); err != nil {
		return nil, err
	}
	if stats.TotalRevenue, err = svc.Repo.SumRevenue(ctx, nil); err != nil {
		return nil, err
	}
	if stats.RecentRevenue, err = svc.Repo.SumRevenue(ctx, &since); err != nil {
		return nil, err
	}
	if stats.TotalCustomers, err = svc.Repo.CountCustomers(ctx); err != nil {
		return nil, err
	}
	if stats.LowStockProducts, err = svc.Repo.CountLowStockProducts(ctx, lowStockThreshold); err != nil {
		return nil, err
	}
	if stats.TopProducts, err = svc.Repo.TopProductsByOrderCount(ctx, topProductsLimit); err != nil {
		return nil, err
	}
	if stats.OrdersByStatus, err = svc.Repo.OrdersByStatus(ctx); err != nil {
		return nil, err
	}
	return stats, nil
}
