package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/essencia/shop-api/internal/models"
	"github.com/essencia/shop-api/internal/mykafka"
	"github.com/essencia/shop-api/internal/repo"
	"github.com/essencia/shop-api/internal/transport"
)

type OrderService struct {
	Repo     *repo.GormRepo
	Producer mykafka.Publisher
}

// PlaceOrder validates the request against current stock and the
// optional coupon, snapshots effective prices into the order lines
// and commits order, items, stock decrements and the coupon usage
// increment as one transaction. Nothing is persisted on any failure.
func (svc *OrderService) PlaceOrder(ctx context.Context, actor Actor, req transport.PlaceOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: items required", ErrValidation)
	}
	for _, it := range req.Items {
		if it.ProductID == 0 {
			return nil, fmt.Errorf("%w: product_id required", ErrValidation)
		}
		if it.Quantity == 0 {
			return nil, fmt.Errorf("%w: quantity must be > 0", ErrValidation)
		}
	}
	if req.ShippingAddress == "" {
		return nil, fmt.Errorf("%w: shipping_address required", ErrValidation)
	}
	if req.Email == "" {
		return nil, fmt.Errorf("%w: email required", ErrValidation)
	}

	shipping := decimal.Zero
	if req.ShippingCost != nil {
		if req.ShippingCost.IsNegative() {
			return nil, fmt.Errorf("%w: shipping_cost must be >= 0", ErrValidation)
		}
		shipping = *req.ShippingCost
	}

	billing := req.BillingAddress
	if billing == "" {
		billing = req.ShippingAddress
	}

	var order *models.Order
	err := svc.Repo.InTx(ctx, func(txr *repo.GormRepo) error {
		subtotal := decimal.Zero
		items := make([]models.OrderItem, 0, len(req.Items))
		for _, it := range req.Items {
			p, err := txr.GetProduct(ctx, it.ProductID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: product %d", ErrNotFound, it.ProductID)
			}
			if err != nil {
				return err
			}
			if p.Stock < it.Quantity {
				return insufficientStock(p.Name, it.Quantity, p.Stock)
			}

			price := p.EffectivePrice()
			subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(it.Quantity))))
			items = append(items, models.OrderItem{
				ProductID: p.ID,
				Quantity:  it.Quantity,
				Price:     price,
			})
		}

		discount := decimal.Zero
		var couponID *uint
		if req.CouponCode != "" {
			cp, err := txr.GetCouponByCode(ctx, req.CouponCode)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: coupon %q", ErrNotFound, req.CouponCode)
			}
			if err != nil {
				return err
			}
			if !cp.UsableAt(txr.DB.NowFunc(), subtotal) {
				return fmt.Errorf("%w: %s", ErrCouponInvalid, cp.Code)
			}
			discount = subtotal.
				Mul(decimal.NewFromInt(int64(cp.DiscountPercent))).
				Div(decimal.NewFromInt(100)).
				Round(2)
			couponID = &cp.ID
		}

		// Guarded decrements; a raced-away row means another order won
		// the remaining stock after our read.
		for _, it := range items {
			ok, err := txr.DecrementStock(ctx, it.ProductID, it.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				p, gerr := txr.GetProduct(ctx, it.ProductID)
				if gerr != nil {
					return fmt.Errorf("%w: product %d", ErrInsufficientStock, it.ProductID)
				}
				return insufficientStock(p.Name, it.Quantity, p.Stock)
			}
		}

		if couponID != nil {
			ok, err := txr.IncrementCouponUsage(ctx, *couponID)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: usage limit reached", ErrCouponInvalid)
			}
		}

		order = &models.Order{
			UserID:          actor.ID,
			Status:          models.OrderStatusPending,
			PaymentStatus:   models.PaymentStatusPending,
			TotalAmount:     subtotal.Sub(discount).Add(shipping),
			DiscountAmount:  discount,
			ShippingCost:    shipping,
			ShippingAddress: req.ShippingAddress,
			BillingAddress:  billing,
			Phone:           req.Phone,
			Email:           req.Email,
			Notes:           req.Notes,
			CouponID:        couponID,
			Items:           items,
		}
		return txr.CreateOrder(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, svc.Producer, "order_events", fmt.Sprint(order.ID), map[string]any{
		"type":     "order_created",
		"order_id": order.ID,
		"user_id":  order.UserID,
		"total":    order.TotalAmount,
	})
	return order, nil
}

// TransitionStatus moves an order along the fulfillment lifecycle.
// Admin only; the transition table is closed, cancellation is the
// only back-edge and shipped/delivered orders cannot be cancelled.
func (svc *OrderService) TransitionStatus(ctx context.Context, actor Actor, orderID uint, newStatus string) (*models.Order, error) {
	if !actor.Admin {
		return nil, fmt.Errorf("%w: admin only", ErrForbidden)
	}
	if !models.IsOrderStatus(newStatus) {
		return nil, fmt.Errorf("%w: invalid status %q", ErrValidation, newStatus)
	}

	var order *models.Order
	err := svc.Repo.InTx(ctx, func(txr *repo.GormRepo) error {
		var err error
		order, err = txr.GetOrder(ctx, orderID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		if err != nil {
			return err
		}

		from := order.Status
		if !models.CanTransition(from, newStatus) {
			return fmt.Errorf("%w: cannot transition from %s to %s", ErrConflict, from, newStatus)
		}

		if newStatus == models.OrderStatusShipped && order.TrackingNumber == "" {
			if err := txr.UpdateOrderTracking(ctx, order, uuid.NewString()); err != nil {
				return err
			}
		}
		return txr.UpdateOrderStatus(ctx, order, newStatus)
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, svc.Producer, "order_events", fmt.Sprint(order.ID), map[string]any{
		"type":     "order_status_changed",
		"order_id": order.ID,
		"status":   order.Status,
	})
	return order, nil
}

// CancelOrder is the customer-facing back-edge: the owner (or an
// admin) may cancel while the order is not yet shipped.
func (svc *OrderService) CancelOrder(ctx context.Context, actor Actor, orderID uint) (*models.Order, error) {
	var order *models.Order
	err := svc.Repo.InTx(ctx, func(txr *repo.GormRepo) error {
		var err error
		order, err = txr.GetOrder(ctx, orderID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		if err != nil {
			return err
		}
		if order.UserID != actor.ID && !actor.Admin {
			return fmt.Errorf("%w: not your order", ErrForbidden)
		}
		if !models.CanTransition(order.Status, models.OrderStatusCancelled) {
			return fmt.Errorf("%w: cannot cancel a %s order", ErrConflict, order.Status)
		}
		return txr.UpdateOrderStatus(ctx, order, models.OrderStatusCancelled)
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, svc.Producer, "order_events", fmt.Sprint(order.ID), map[string]any{
		"type":     "order_status_changed",
		"order_id": order.ID,
		"status":   order.Status,
	})
	return order, nil
}

// UpdatePaymentStatus sets the payment axis; it never touches the
// fulfillment status.
func (svc *OrderService) UpdatePaymentStatus(ctx context.Context, actor Actor, orderID uint, paymentStatus string) (*models.Order, error) {
	if !actor.Admin {
		return nil, fmt.Errorf("%w: admin only", ErrForbidden)
	}
	if !models.IsPaymentStatus(paymentStatus) {
		return nil, fmt.Errorf("%w: invalid payment status %q", ErrValidation, paymentStatus)
	}

	order, err := svc.Repo.GetOrder(ctx, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}
	if err != nil {
		return nil, err
	}
	if err := svc.Repo.UpdateOrderPaymentStatus(ctx, order, paymentStatus); err != nil {
		return nil, err
	}
	return order, nil
}

func (svc *OrderService) GetOrder(ctx context.Context, actor Actor, orderID uint) (*models.Order, error) {
	order, err := svc.Repo.GetOrder(ctx, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}
	if err != nil {
		return nil, err
	}
	if order.UserID != actor.ID && !actor.Admin {
		return nil, fmt.Errorf("%w: not your order", ErrForbidden)
	}
	return order, nil
}

// ListOrders returns the actor's own orders; admins see everything.
func (svc *OrderService) ListOrders(ctx context.Context, actor Actor, limit, offset int) ([]models.Order, error) {
	userID := actor.ID
	if actor.Admin {
		userID = 0
	}
	return svc.Repo.ListOrders(ctx, userID, limit, offset)
}
