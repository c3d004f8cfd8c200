package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/essencia/shop-api/internal/models"
	"github.com/essencia/shop-api/internal/repo"
)

func newTestRepo(t *testing.T) *repo.GormRepo {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Profile{},
		&models.Category{},
		&models.Product{},
		&models.ProductImage{},
		&models.Wishlist{},
		&models.Review{},
		&models.Coupon{},
		&models.Order{},
		&models.OrderItem{},
		&models.Newsletter{},
	))

	return repo.New(db)
}

type publishedEvent struct {
	Topic string
	Key   string
	Event any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *fakePublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Topic: topic, Key: key, Event: event})
	return nil
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func seedCategory(t *testing.T, r *repo.GormRepo, slug string) *models.Category {
	t.Helper()
	cat := &models.Category{Name: slug, Slug: slug, IsActive: true}
	require.NoError(t, r.DB.Create(cat).Error)
	return cat
}

func seedProduct(t *testing.T, r *repo.GormRepo, slug, price string, stock uint, discountPrice *string) *models.Product {
	t.Helper()
	cat := seedCategory(t, r, "cat-"+slug)

	p := &models.Product{
		Name:        slug,
		Description: "test product",
		Price:       dec(t, price),
		CategoryID:  cat.ID,
		Stock:       stock,
		IsActive:    true,
		Slug:        slug,
	}
	if discountPrice != nil {
		d := dec(t, *discountPrice)
		p.DiscountPrice = &d
	}
	require.NoError(t, r.DB.Create(p).Error)
	return p
}

func seedUser(t *testing.T, r *repo.GormRepo, username, role string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@test.local", PasswordHash: "x", Role: role}
	require.NoError(t, r.DB.Create(u).Error)
	return u
}

func seedCoupon(t *testing.T, r *repo.GormRepo, code string, percent uint, minimum string, limit uint) *models.Coupon {
	t.Helper()
	cp := &models.Coupon{
		Code:            code,
		DiscountPercent: percent,
		MinimumAmount:   dec(t, minimum),
		ValidFrom:       time.Now().Add(-time.Hour),
		ValidTo:         time.Now().Add(time.Hour),
		IsActive:        true,
		UsageLimit:      limit,
	}
	require.NoError(t, r.DB.Create(cp).Error)
	return cp
}
