package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/essencia/shop-api/internal/logging"
	"github.com/essencia/shop-api/internal/mykafka"
)

var (
	ErrValidation        = errors.New("validation")         // 400
	ErrNotFound          = errors.New("not found")          // 404
	ErrForbidden         = errors.New("forbidden")          // 403
	ErrConflict          = errors.New("conflict")           // 409
	ErrInsufficientStock = errors.New("insufficient stock") // 409
	ErrCouponInvalid     = errors.New("coupon invalid")     // 400
	ErrDuplicateReview   = errors.New("duplicate review")   // 409
)

// Actor is the authenticated identity every operation receives.
// Privilege is decided once at operation entry from the Admin
// capability, never re-derived inside.
type Actor struct {
	ID    uint
	Admin bool
}

func insufficientStock(name string, requested, available uint) error {
	return fmt.Errorf("%w: %s: requested %d, available %d", ErrInsufficientStock, name, requested, available)
}

// publish is fire-and-forget: event delivery never fails the request,
// failures are only logged.
func publish(ctx context.Context, p mykafka.Publisher, topic, key string, event map[string]any) {
	if p == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := p.PublishEvent(pubCtx, topic, key, event); err != nil {
		logging.FromContext(ctx).Error("kafka publish error", "topic", topic, "error", err)
	}
}
