package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/essencia/shop-api/internal/models"
)

const productTTL = 10 * time.Minute

// ProductCache is a read-through cache for catalog detail pages. A
// nil *ProductCache (or one built from an empty address) is a no-op,
// so callers never branch on whether Redis is configured.
type ProductCache struct {
	client *redis.Client
}

func NewProductCache(addr string) *ProductCache {
	if addr == "" {
		return nil
	}
	return &ProductCache{client: redis.NewClient(&redis.Options{Addr: addr})}
}

func key(productID uint) string {
	return fmt.Sprintf("product:%d", productID)
}

func (c *ProductCache) Get(ctx context.Context, productID uint) *models.Product {
	if c == nil {
		return nil
	}
	raw, err := c.client.Get(ctx, key(productID)).Result()
	if err != nil {
		return nil
	}
	var p models.Product
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil
	}
	return &p
}

func (c *ProductCache) Set(ctx context.Context, p *models.Product) {
	if c == nil {
		return
	}
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	c.client.Set(ctx, key(p.ID), data, productTTL)
}

func (c *ProductCache) Invalidate(ctx context.Context, productID uint) {
	if c == nil {
		return
	}
	c.client.Del(ctx, key(productID))
}

func (c *ProductCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
