package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from, to string
		want     bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusConfirmed, OrderStatusProcessing, true},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusShipped, OrderStatusDelivered, true},

		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusConfirmed, OrderStatusCancelled, true},
		{OrderStatusProcessing, OrderStatusCancelled, true},
		{OrderStatusShipped, OrderStatusCancelled, false},

		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusConfirmed, OrderStatusPending, false},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPending, false},
		{"bogus", OrderStatusPending, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestIsOrderStatus(t *testing.T) {
	t.Parallel()

	for _, s := range []string{
		OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled,
	} {
		assert.True(t, IsOrderStatus(s), s)
	}
	assert.False(t, IsOrderStatus("paid"))
	assert.False(t, IsOrderStatus(""))
}

func TestEffectivePrice(t *testing.T) {
	t.Parallel()

	p := Product{Price: decimal.NewFromInt(20)}
	assert.True(t, p.EffectivePrice().Equal(decimal.NewFromInt(20)))

	discounted := decimal.NewFromInt(15)
	p.DiscountPrice = &discounted
	assert.True(t, p.EffectivePrice().Equal(discounted))
}

func TestCouponUsableAt(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	base := Coupon{
		DiscountPercent: 10,
		MinimumAmount:   decimal.NewFromInt(20),
		ValidFrom:       now.Add(-time.Hour),
		ValidTo:         now.Add(time.Hour),
		IsActive:        true,
	}

	subtotal := decimal.NewFromInt(30)
	assert.True(t, base.UsableAt(now, subtotal))

	inactive := base
	inactive.IsActive = false
	assert.False(t, inactive.UsableAt(now, subtotal))

	assert.False(t, base.UsableAt(now.Add(2*time.Hour), subtotal))
	assert.False(t, base.UsableAt(now.Add(-2*time.Hour), subtotal))

	// The window is inclusive at the start and exclusive at the end.
	assert.True(t, base.UsableAt(base.ValidFrom, subtotal))
	assert.False(t, base.UsableAt(base.ValidTo, subtotal))

	assert.False(t, base.UsableAt(now, decimal.NewFromInt(19)))
	assert.True(t, base.UsableAt(now, decimal.NewFromInt(20)))
}
