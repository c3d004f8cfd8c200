package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/essencia/shop-api/internal/cache"
	"github.com/essencia/shop-api/internal/config"
	"github.com/essencia/shop-api/internal/es"
	"github.com/essencia/shop-api/internal/httpserver"
	"github.com/essencia/shop-api/internal/logging"
	authmw "github.com/essencia/shop-api/internal/middleware/auth"
	loggingmw "github.com/essencia/shop-api/internal/middleware/logging"
	"github.com/essencia/shop-api/internal/mykafka"
	"github.com/essencia/shop-api/internal/repo"
	"github.com/essencia/shop-api/internal/search"
	"github.com/essencia/shop-api/internal/service"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)

	ctx := context.Background()
	db, err := config.InitDB(ctx, cfg)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	var producer *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = mykafka.NewProducer(cfg.KafkaBrokers)
	}
	var pub mykafka.Publisher
	if producer != nil {
		pub = producer
	}

	r := repo.New(db)

	authSvc := &service.AuthService{
		Repo:          r,
		Producer:      pub,
		JWTSecret:     cfg.JWTAccessSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
	}
	reviewSvc := &service.ReviewService{Repo: r, Producer: pub}
	orderSvc := &service.OrderService{Repo: r, Producer: pub}
	dashboardSvc := &service.DashboardService{Repo: r}
	catalogSvc := &service.CatalogService{
		Repo:     r,
		Producer: pub,
		ESIndex:  search.ProductIndex,
		Cache:    cache.NewProductCache(cfg.RedisAddr),
		Reviews:  reviewSvc,
	}

	searchHandler := &httpserver.SearchHTTP{Index: search.ProductIndex}
	if cfg.ESURL != "" {
		client, err := es.NewClient(cfg.Config)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
		catalogSvc.ES = client
		searchHandler.ES = client
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		AuthHandler:       &httpserver.AuthHTTP{Svc: authSvc},
		ProductHandler:    &httpserver.ProductHTTP{Svc: catalogSvc, Reviews: reviewSvc},
		CategoryHandler:   &httpserver.CategoryHTTP{Svc: catalogSvc},
		OrderHandler:      &httpserver.OrderHTTP{Svc: orderSvc, Dashboard: dashboardSvc},
		WishlistHandler:   &httpserver.WishlistHTTP{Repo: r},
		NewsletterHandler: &httpserver.NewsletterHTTP{Repo: r},
		SearchHandler:     searchHandler,
		TokenMW:           &authmw.TokenMiddleware{Auth: authSvc},
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()
	logger.Info("server started", "port", cfg.ServerPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Printf("kafka close error: %v", err)
		}
	}
	if err := catalogSvc.Cache.Close(); err != nil {
		log.Printf("redis close error: %v", err)
	}

	logger.Info("shutdown complete")
}
