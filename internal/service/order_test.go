package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/essencia/shop-api/internal/models"
	"github.com/essencia/shop-api/internal/transport"
)

func placeOrderRequest(items ...transport.PlaceOrderItem) transport.PlaceOrderRequest {
	return transport.PlaceOrderRequest{
		ShippingAddress: "1 rue des Lilas, Paris",
		Phone:           "+33600000000",
		Email:           "client@test.local",
		Items:           items,
	}
}

func TestPlaceOrder_TotalsAndPriceSnapshot(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	svc := &OrderService{Repo: r, Producer: &fakePublisher{}}
	ctx := context.Background()

	prod := seedProduct(t, r, "serum", "10.00", 5, nil)
	user := seedUser(t, r, "alice", "user")

	order, err := svc.PlaceOrder(ctx, Actor{ID: user.ID}, placeOrderRequest(
		transport.PlaceOrderItem{ProductID: prod.ID, Quantity: 3},
	))
	require.NoError(t, err)

	require.Len(t, order.Items, 1)
	assert.True(t, order.Items[0].Price.Equal(dec(t, "10.00")), "item price %s", order.Items[0].Price)
	assert.True(t, order.TotalAmount.Equal(dec(t, "30.00")), "total %s", order.TotalAmount)
	assert.True(t, order.DiscountAmount.IsZero())
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)

	got, err := r.GetProduct(ctx, prod.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(2), got.Stock)

	// Later catalog price edits must not leak into the stored line.
	require.NoError(t, r.DB.Model(&models.Product{}).Where("id = ?", prod.ID).
		Update("price", dec(t, "99.99")).Error)

	stored, err := r.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.True(t, stored.Items[0].Price.Equal(dec(t, "10.00")))
	assert.True(t, stored.TotalAmount.Equal(dec(t, "30.00")))
}

func TestPlaceOrder_UsesDiscountPrice(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	svc := &OrderService{Repo: r}
	ctx := context.Background()

	discount := "8.50"
	prod := seedProduct(t, r, "cream", "10.00", 10, &discount)
	user := seedUser(t, r, "bob", "user")

	order, err := svc.PlaceOrder(ctx, Actor{ID: user.ID}, placeOrderRequest(
		transport.PlaceOrderItem{ProductID: prod.ID, Quantity: 2},
	))
	require.NoError(t, err)

	assert.True(t, order.Items[0].Price.Equal(dec(t, "8.50")))
	assert.True(t, order.TotalAmount.Equal(dec(t, "17.00")))
}

func TestPlaceOrder_Validation(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	svc := &OrderService{Repo: r}
	ctx := context.Background()

	prod := seedProduct(t, r, "soap", "3.00", 10, nil)

	tests := []struct {
		name string
		req  transport.PlaceOrderRequest
	}{
		{name: "empty items", req: placeOrderRequest()},
		{name: "zero quantity", req: placeOrderRequest(transport.PlaceOrderItem{ProductID: prod.ID, Quantity: 0})},
		{name: "missing product id", req: placeOrderRequest(transport.PlaceOrderItem{Quantity: 1})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.PlaceOrder(ctx, Actor{ID: 1}, tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	noAddress := placeOrderRequest(transport.PlaceOrderItem{ProductID: prod.ID, Quantity: 1})
	noAddress.ShippingAddress = ""
	_, err := svc.PlaceOrder(ctx, Actor{ID: 1}, noAddress)
	assert.ErrorIs(t, err, ErrValidation)

	negShipping := placeOrderRequest(transport.PlaceOrderItem{ProductID: prod.ID, Quantity: 1})
	neg := dec(t, "-1.00")
	negShipping.ShippingCost = &neg
	_, err = svc.PlaceOrder(ctx, Actor{ID: 1}, negShipping)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPlaceOrder_ProductNotFound(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	svc := &OrderService{Repo: r}

	_, err := svc.PlaceOrder(context.Background(), Actor{ID: 1}, placeOrderRequest(
		transport.PlaceOrderItem{ProductID: 4242, Quantity: 1},
	))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPlaceOrder_InsufficientStockRollsBackEverything(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	svc := &OrderService{Repo: r}
	ctx := context.Background()

	full := seedProduct(t, r, "shampoo", "5.00", 10, nil)
	scarce := seedProduct(t, r, "limited", "20.00", 1, nil)
	user := seedUser(t, r, "carol", "user")

	_, err := svc.PlaceOrder(ctx, Actor{ID: user.ID}, placeOrderRequest(
		transport.PlaceOrderItem{ProductID: full.ID, Quantity: 2},
		transport.PlaceOrderItem{ProductID: scarce.ID, Quantity: 3},
	))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	// Nothing may be persisted: no order, no partial decrement.
	var orderCount int64
	require.NoError(t, r.DB.Model(&models.Order{}).Count(&orderCount).Error)
	assert.Zero(t, orderCount)

	got, err := r.GetProduct(ctx, full.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(10), got.Stock)
}

func TestPlaceOrder_CouponDiscountAndShipping(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	svc := &OrderService{Repo: r}
	ctx := context.Background()

	prod := seedProduct(t, r, "mask", "10.00", 5, nil)
	user := seedUser(t, r, "dora", "user")
	cp := seedCoupon(t, r, "SAVE10", 10, "20.00", 0)

	req := placeOrderRequest(transport.PlaceOrderItem{ProductID: prod.ID, Quantity: 3})
	req.CouponCode = "SAVE10"
	shipping := dec(t, "4.90")
	req.ShippingCost = &shipping

	order, err := svc.PlaceOrder(ctx, Actor{ID: user.ID}, req)
	require.NoError(t, err)

	assert.True(t, order.DiscountAmount.Equal(dec(t, "3.00")), "discount %s", order.DiscountAmount)
	assert.True(t, order.TotalAmount.Equal(dec(t, "31.90")), "total %s", order.TotalAmount)
	require.NotNil(t, order.CouponID)
	assert.Equal(t, cp.ID, *order.CouponID)

	var stored models.Coupon
	require.NoError(t, r.DB.First(&stored, cp.ID).Error)
	assert.Equal(t, uint(1), stored.TimesUsed)
}

func TestPlaceOrder_CouponRejections(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	svc := &OrderService{Repo: r}
	ctx := context.Background()

	prod := seedProduct(t, r, "oil", "10.00", 50, nil)
	user := seedUser(t, r, "eve", "user")

	inactive := seedCoupon(t, r, "INACTIVE", 10, "0", 0)
	require.NoError(t, r.DB.Model(inactive).Update("is_active", false).Error)

	expired := seedCoupon(t, r, "EXPIRED", 10, "0", 0)
	require.NoError(t, r.DB.Model(expired).
		Update("valid_to", expired.ValidFrom).Error)

	seedCoupon(t, r, "BIGMIN", 10, "500.00", 0)

	tests := []struct {
		name    string
		code    string
		wantErr error
	}{
		{name: "unknown code", code: "NOPE", wantErr: ErrNotFound},
		{name: "inactive", code: "INACTIVE", wantErr: ErrCouponInvalid},
		{name: "outside window", code: "EXPIRED", wantErr: ErrCouponInvalid},
		{name: "below minimum", code: "BIGMIN", wantErr: ErrCouponInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := placeOrderRequest(transport.PlaceOrderItem{ProductID: prod.ID, Quantity: 1})
			req.CouponCode = tt.code
			_, err := svc.PlaceOrder(ctx, Actor{ID: user.ID}, req)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	// Rejected coupons must not cost stock.
	got, err := r.GetProduct(ctx, prod.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(50), got.Stock)
}

func TestPlaceOrder_CouponUsageLimit(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	svc := &OrderService{Repo: r}
	ctx := context.Background()

	prod := seedProduct(t, r, "lotion", "30.00", 100, nil)
	user := seedUser(t, r, "frank", "user")
	cp := seedCoupon(t, r, "THRICE", 5, "0", 3)

	succeeded := 0
	for i := 0; i < 5; i++ {
		req := placeOrderRequest(transport.PlaceOrderItem{ProductID: prod.ID, Quantity: 1})
		req.CouponCode = "THRICE"
		_, err := svc.PlaceOrder(ctx, Actor{ID: user.ID}, req)
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrCouponInvalid)
		}
	}
	assert.Equal(t, 3, succeeded)

	var stored models.Coupon
	require.NoError(t, r.DB.First(&stored, cp.ID).Error)
	assert.Equal(t, uint(3), stored.TimesUsed)
}

func TestPlaceOrder_ConcurrentCouponRedemptionsRespectLimit(t *testing.T) {
	r := newTestRepo(t)
	svc := &OrderService{Repo: r}
	ctx := context.Background()

	prod := seedProduct(t, r, "bundle", "40.00", 100, nil)
	user := seedUser(t, r, "nina", "user")
	cp := seedCoupon(t, r, "RACED", 5, "0", 3)

	const workers = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := placeOrderRequest(transport.PlaceOrderItem{ProductID: prod.ID, Quantity: 1})
			req.CouponCode = "RACED"
			_, err := svc.PlaceOrder(ctx, Actor{ID: user.ID}, req)
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, ErrCouponInvalid)
			}
		}()
	}
	wg.Wait()

	// The guarded increment caps redemptions at usage_limit no matter
	// how the attempts interleave, and failed orders roll back whole.
	assert.Equal(t, 3, succeeded)

	var stored models.Coupon
	require.NoError(t, r.DB.First(&stored, cp.ID).Error)
	assert.Equal(t, uint(3), stored.TimesUsed)

	var orderCount int64
	require.NoError(t, r.DB.Model(&models.Order{}).Count(&orderCount).Error)
	assert.Equal(t, int64(3), orderCount)

	got, err := r.GetProduct(ctx, prod.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(97), got.Stock)
}

func TestPlaceOrder_ConcurrentOrdersNeverOversell(t *testing.T) {
	r := newTestRepo(t)
	svc := &OrderService{Repo: r}
	ctx := context.Background()

	prod := seedProduct(t, r, "hyped", "10.00", 5, nil)
	user := seedUser(t, r, "grace", "user")

	const workers = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.PlaceOrder(ctx, Actor{ID: user.ID}, placeOrderRequest(
				transport.PlaceOrderItem{ProductID: prod.ID, Quantity: 2},
			))
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, ErrInsufficientStock)
			}
		}()
	}
	wg.Wait()

	// floor(5/2) winners, and stock can never go negative.
	assert.Equal(t, 2, succeeded)

	got, err := r.GetProduct(ctx, prod.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(1), got.Stock)
}

func TestTransitionStatus_ForwardPath(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	svc := &OrderService{Repo: r, Producer: &fakePublisher{}}
	ctx := context.Background()

	prod := seedProduct(t, r, "toner", "12.00", 10, nil)
	user := seedUser(t, r, "henry", "user")
	admin := Actor{ID: seedUser(t, r, "root", "admin").ID, Admin: true}

	order, err := svc.PlaceOrder(ctx, Actor{ID: user.ID}, placeOrderRequest(
		transport.PlaceOrderItem{ProductID: prod.ID, Quantity: 1},
	))
	require.NoError(t, err)

	for _, next := range []string{
		models.OrderStatusConfirmed,
		models.OrderStatusProcessing,
		models.OrderStatusShipped,
		models.OrderStatusDelivered,
	} {
		order, err = svc.TransitionStatus(ctx, admin, order.ID, next)
		require.NoError(t, err, "transition to %s", next)
		assert.Equal(t, next, order.Status)
	}

	// Shipping assigns a tracking number exactly once.
	stored, err := r.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.TrackingNumber)

	// Payment axis is untouched by fulfillment transitions.
	assert.Equal(t, models.PaymentStatusPending, stored.PaymentStatus)
}

func TestTransitionStatus_Rejections(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	svc := &OrderService{Repo: r}
	ctx := context.Background()

	prod := seedProduct(t, r, "balm", "9.00", 10, nil)
	user := seedUser(t, r, "iris", "user")
	admin := Actor{ID: seedUser(t, r, "boss", "admin").ID, Admin: true}

	order, err := svc.PlaceOrder(ctx, Actor{ID: user.ID}, placeOrderRequest(
		transport.PlaceOrderItem{ProductID: prod.ID, Quantity: 1},
	))
	require.NoError(t, err)

	_, err = svc.TransitionStatus(ctx, Actor{ID: user.ID}, order.ID, models.OrderStatusConfirmed)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.TransitionStatus(ctx, admin, order.ID, "misplaced")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.TransitionStatus(ctx, admin, 4242, models.OrderStatusConfirmed)
	assert.ErrorIs(t, err, ErrNotFound)

	// Skipping ahead and walking backwards are both conflicts.
	_, err = svc.TransitionStatus(ctx, admin, order.ID, models.OrderStatusDelivered)
	assert.ErrorIs(t, err, ErrConflict)

	order, err = svc.TransitionStatus(ctx, admin, order.ID, models.OrderStatusConfirmed)
	require.NoError(t, err)
	_, err = svc.TransitionStatus(ctx, admin, order.ID, models.OrderStatusPending)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCancelOrder_Rules(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	svc := &OrderService{Repo: r}
	ctx := context.Background()

	prod := seedProduct(t, r, "scrub", "7.00", 20, nil)
	owner := Actor{ID: seedUser(t, r, "jane", "user").ID}
	stranger := Actor{ID: seedUser(t, r, "kyle", "user").ID}
	admin := Actor{ID: seedUser(t, r, "chief", "admin").ID, Admin: true}

	order, err := svc.PlaceOrder(ctx, owner, placeOrderRequest(
		transport.PlaceOrderItem{ProductID: prod.ID, Quantity: 1},
	))
	require.NoError(t, err)

	_, err = svc.CancelOrder(ctx, stranger, order.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	cancelled, err := svc.CancelOrder(ctx, owner, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)

	// A shipped order is past the cancellation back-edge.
	second, err := svc.PlaceOrder(ctx, owner, placeOrderRequest(
		transport.PlaceOrderItem{ProductID: prod.ID, Quantity: 1},
	))
	require.NoError(t, err)
	for _, next := range []string{models.OrderStatusConfirmed, models.OrderStatusProcessing, models.OrderStatusShipped} {
		second, err = svc.TransitionStatus(ctx, admin, second.ID, next)
		require.NoError(t, err)
	}
	_, err = svc.CancelOrder(ctx, owner, second.ID)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUpdatePaymentStatus(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	svc := &OrderService{Repo: r}
	ctx := context.Background()

	prod := seedProduct(t, r, "mist", "15.00", 10, nil)
	owner := Actor{ID: seedUser(t, r, "lena", "user").ID}
	admin := Actor{ID: seedUser(t, r, "ops", "admin").ID, Admin: true}

	order, err := svc.PlaceOrder(ctx, owner, placeOrderRequest(
		transport.PlaceOrderItem{ProductID: prod.ID, Quantity: 1},
	))
	require.NoError(t, err)

	_, err = svc.UpdatePaymentStatus(ctx, owner, order.ID, models.PaymentStatusPaid)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.UpdatePaymentStatus(ctx, admin, order.ID, "gold")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.UpdatePaymentStatus(ctx, admin, order.ID, models.PaymentStatusPaid)
	require.NoError(t, err)

	stored, err := r.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, stored.PaymentStatus)
	assert.Equal(t, models.OrderStatusPending, stored.Status)
}

func TestListOrders_Scoping(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	svc := &OrderService{Repo: r}
	ctx := context.Background()

	prod := seedProduct(t, r, "gel", "6.00", 50, nil)
	alice := Actor{ID: seedUser(t, r, "a1", "user").ID}
	bella := Actor{ID: seedUser(t, r, "b1", "user").ID}
	admin := Actor{ID: seedUser(t, r, "adm", "admin").ID, Admin: true}

	for i, actor := range []Actor{alice, alice, bella} {
		_, err := svc.PlaceOrder(ctx, actor, placeOrderRequest(
			transport.PlaceOrderItem{ProductID: prod.ID, Quantity: 1},
		))
		require.NoError(t, err, fmt.Sprintf("order %d", i))
	}

	mine, err := svc.ListOrders(ctx, alice, 10, 0)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	all, err := svc.ListOrders(ctx, admin, 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestPlaceOrder_PublishesEvent(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	pub := &fakePublisher{}
	svc := &OrderService{Repo: r, Producer: pub}

	prod := seedProduct(t, r, "kit", "25.00", 5, nil)
	user := seedUser(t, r, "mona", "user")

	_, err := svc.PlaceOrder(context.Background(), Actor{ID: user.ID}, placeOrderRequest(
		transport.PlaceOrderItem{ProductID: prod.ID, Quantity: 1},
	))
	require.NoError(t, err)
	assert.Equal(t, 1, pub.count())
	assert.Equal(t, "order_events", pub.events[0].Topic)
}
