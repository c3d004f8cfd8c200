package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/elastic/go-elasticsearch/v9"
	"gorm.io/gorm"

	"github.com/essencia/shop-api/internal/cache"
	"github.com/essencia/shop-api/internal/logging"
	"github.com/essencia/shop-api/internal/models"
	"github.com/essencia/shop-api/internal/mykafka"
	"github.com/essencia/shop-api/internal/repo"
	"github.com/essencia/shop-api/internal/search"
	"github.com/essencia/shop-api/internal/transport"
)

type CatalogService struct {
	Repo     *repo.GormRepo
	Producer mykafka.Publisher
	ES       *elasticsearch.Client
	ESIndex  string
	Cache    *cache.ProductCache
	Reviews  *ReviewService
}

func (svc *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	if p := svc.Cache.Get(ctx, id); p != nil {
		return p, nil
	}
	p, err := svc.Repo.GetProduct(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	svc.Cache.Set(ctx, p)
	return p, nil
}

// GetProductDetail is the catalog detail view with the review
// aggregate folded in.
func (svc *CatalogService) GetProductDetail(ctx context.Context, id uint) (*transport.ProductDetail, error) {
	p, err := svc.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	avg, count, err := svc.Reviews.AverageRating(ctx, id)
	if err != nil {
		return nil, err
	}
	reviews, err := svc.Repo.ListReviews(ctx, id)
	if err != nil {
		return nil, err
	}

	return &transport.ProductDetail{
		Product:       *p,
		AverageRating: avg,
		ReviewCount:   count,
		Reviews:       reviews,
	}, nil
}

func (svc *CatalogService) GetProducts(ctx context.Context, offset, limit int) (int64, []models.Product, error) {
	return svc.Repo.GetProducts(ctx, offset, limit)
}

func (svc *CatalogService) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	if req.Name == "" || req.Slug == "" {
		return nil, fmt.Errorf("%w: name and slug required", ErrValidation)
	}
	if req.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must be >= 0", ErrValidation)
	}
	if req.DiscountPrice != nil && req.DiscountPrice.IsNegative() {
		return nil, fmt.Errorf("%w: discount_price must be >= 0", ErrValidation)
	}
	if _, err := svc.Repo.GetCategory(ctx, req.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: category %d", ErrNotFound, req.CategoryID)
		}
		return nil, err
	}

	prod := &models.Product{
		Name:              req.Name,
		Description:       req.Description,
		Price:             req.Price,
		DiscountPrice:     req.DiscountPrice,
		CategoryID:        req.CategoryID,
		Stock:             req.Stock,
		Thumbnail:         req.Thumbnail,
		Image:             req.Image,
		Ingredients:       req.Ingredients,
		UsageInstructions: req.UsageInstructions,
		Weight:            req.Weight,
		IsActive:          true,
		Slug:              req.Slug,
	}
	if req.IsActive != nil {
		prod.IsActive = *req.IsActive
	}
	if req.IsFeatured != nil {
		prod.IsFeatured = *req.IsFeatured
	}

	if err := svc.Repo.CreateProduct(ctx, prod); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: slug %q already exists", ErrConflict, req.Slug)
		}
		return nil, err
	}

	svc.reindex(ctx, prod)
	publish(ctx, svc.Producer, "product_events", fmt.Sprint(prod.ID), map[string]any{
		"type":       "product_created",
		"product_id": prod.ID,
		"name":       prod.Name,
	})
	return prod, nil
}

func (svc *CatalogService) PatchProduct(ctx context.Context, id uint, req transport.PatchProductRequest) (*models.Product, error) {
	prod, err := svc.Repo.GetProduct(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	if req.Price != nil && req.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must be >= 0", ErrValidation)
	}
	if req.DiscountPrice != nil && req.DiscountPrice.IsNegative() {
		return nil, fmt.Errorf("%w: discount_price must be >= 0", ErrValidation)
	}

	if req.Name != nil {
		prod.Name = *req.Name
	}
	if req.Description != nil {
		prod.Description = *req.Description
	}
	if req.Price != nil {
		prod.Price = *req.Price
	}
	if req.DiscountPrice != nil {
		prod.DiscountPrice = req.DiscountPrice
	}
	if req.CategoryID != nil {
		if _, err := svc.Repo.GetCategory(ctx, *req.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: category %d", ErrNotFound, *req.CategoryID)
			}
			return nil, err
		}
		prod.CategoryID = *req.CategoryID
	}
	if req.Stock != nil {
		prod.Stock = *req.Stock
	}
	if req.Thumbnail != nil {
		prod.Thumbnail = *req.Thumbnail
	}
	if req.Image != nil {
		prod.Image = *req.Image
	}
	if req.Ingredients != nil {
		prod.Ingredients = *req.Ingredients
	}
	if req.UsageInstructions != nil {
		prod.UsageInstructions = *req.UsageInstructions
	}
	if req.Weight != nil {
		prod.Weight = *req.Weight
	}
	if req.IsActive != nil {
		prod.IsActive = *req.IsActive
	}
	if req.IsFeatured != nil {
		prod.IsFeatured = *req.IsFeatured
	}
	if req.Slug != nil {
		prod.Slug = *req.Slug
	}

	if err := svc.Repo.SaveProduct(ctx, prod); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: slug already exists", ErrConflict)
		}
		return nil, err
	}

	svc.Cache.Invalidate(ctx, prod.ID)
	svc.reindex(ctx, prod)
	publish(ctx, svc.Producer, "product_events", fmt.Sprint(prod.ID), map[string]any{
		"type":       "product_updated",
		"product_id": prod.ID,
		"name":       prod.Name,
	})
	return prod, nil
}

// DeleteProduct refuses to remove products that appear in orders:
// line items are audit history and must outlive catalog cleanups.
func (svc *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	n, err := svc.Repo.CountOrderItemsForProduct(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: product %d is referenced by %d order item(s)", ErrConflict, id, n)
	}

	if err := svc.Repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		return err
	}

	svc.Cache.Invalidate(ctx, id)
	if svc.ES != nil {
		if err := search.Delete(ctx, svc.ES, svc.ESIndex, id); err != nil {
			logging.FromContext(ctx).Error("es delete error", "product_id", id, "error", err)
		}
	}
	publish(ctx, svc.Producer, "product_events", fmt.Sprint(id), map[string]any{
		"type":       "product_deleted",
		"product_id": id,
	})
	return nil
}

func (svc *CatalogService) LowStock(ctx context.Context, actor Actor) ([]models.Product, error) {
	if !actor.Admin {
		return nil, fmt.Errorf("%w: admin only", ErrForbidden)
	}
	return svc.Repo.LowStockProducts(ctx, lowStockThreshold)
}

func (svc *CatalogService) GetCategories(ctx context.Context) ([]transport.CategoryResponse, error) {
	cats, err := svc.Repo.GetCategories(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]transport.CategoryResponse, 0, len(cats))
	for _, cat := range cats {
		n, err := svc.Repo.CountActiveProductsInCategory(ctx, cat.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, transport.CategoryResponse{Category: cat, ProductCount: n})
	}
	return out, nil
}

func (svc *CatalogService) CreateCategory(ctx context.Context, req transport.CreateCategoryRequest) (*models.Category, error) {
	if req.Name == "" || req.Slug == "" {
		return nil, fmt.Errorf("%w: name and slug required", ErrValidation)
	}
	cat := &models.Category{
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		Slug:        req.Slug,
		IsActive:    true,
	}
	if req.IsActive != nil {
		cat.IsActive = *req.IsActive
	}
	if err := svc.Repo.CreateCategory(ctx, cat); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: slug %q already exists", ErrConflict, req.Slug)
		}
		return nil, err
	}
	return cat, nil
}

func (svc *CatalogService) PatchCategory(ctx context.Context, id uint, req transport.PatchCategoryRequest) (*models.Category, error) {
	cat, err := svc.Repo.GetCategory(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: category %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		cat.Name = *req.Name
	}
	if req.Description != nil {
		cat.Description = *req.Description
	}
	if req.Image != nil {
		cat.Image = *req.Image
	}
	if req.Slug != nil {
		cat.Slug = *req.Slug
	}
	if req.IsActive != nil {
		cat.IsActive = *req.IsActive
	}

	if err := svc.Repo.SaveCategory(ctx, cat); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: slug already exists", ErrConflict)
		}
		return nil, err
	}
	return cat, nil
}

func (svc *CatalogService) DeleteCategory(ctx context.Context, id uint) error {
	if err := svc.Repo.DeleteCategory(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: category %d", ErrNotFound, id)
		}
		return err
	}
	return nil
}

func (svc *CatalogService) reindex(ctx context.Context, prod *models.Product) {
	if svc.ES == nil {
		return
	}
	if err := search.Index(ctx, svc.ES, svc.ESIndex, prod); err != nil {
		logging.FromContext(ctx).Error("es index error", "product_id", prod.ID, "error", err)
	}
}
