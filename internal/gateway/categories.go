package gateway

import (
	"context"
	"net/http"

	"github.com/centsible/centsible-go/internal/domain"
)

const categoriesCacheKey = "categories"

// Categories lists expense/income categories. The list changes rarely, so
// results sit in the client-side TTL cache when one is configured.
func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	if c.categories != nil {
		if cached, ok := c.categories.Get(categoriesCacheKey); ok {
			c.metrics.IncrCacheHit("categories")
			return cached, nil
		}
		c.metrics.IncrCacheMiss("categories")
	}

	raw, err := c.Request(ctx, "/categories", RequestOptions{Operation: "categories.list"})
	if err != nil {
		return nil, err
	}

	list := UnwrapCollection[domain.Category](raw, c.logger, "categories.list")
	if c.categories != nil {
		c.categories.Set(categoriesCacheKey, list)
	}
	return list, nil
}

// CreateCategory adds a category and drops the cached list.
func (c *Client) CreateCategory(ctx context.Context, cat domain.Category) (*domain.Category, error) {
	raw, err := c.Request(ctx, "/categories", RequestOptions{
		Method:    http.MethodPost,
		Operation: "categories.create",
		JSON:      cat,
	})
	if err != nil {
		return nil, err
	}
	created, err := UnwrapObject[domain.Category](raw, "categories.create")
	if err != nil {
		return nil, err
	}
	if c.categories != nil {
		c.categories.Delete(categoriesCacheKey)
	}
	return &created, nil
}
