package config

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/essencia/shop-api/internal/models"
	"github.com/essencia/shop-api/pkg/config"
	"github.com/essencia/shop-api/pkg/db"
)

type ServiceConfig struct {
	config.Config
}

func Load() ServiceConfig {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	cfg := config.Load()

	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")
	config.MustNonEmptyBytes(cfg.JWTRefreshSecret, "REFRESH_SECRET")

	return ServiceConfig{Config: cfg}
}

func InitDB(ctx context.Context, cfg ServiceConfig) (*gorm.DB, error) {
	gdb, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	if err := gdb.AutoMigrate(
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
	); err != nil {
		return nil, err
	}
	return gdb, nil
}
