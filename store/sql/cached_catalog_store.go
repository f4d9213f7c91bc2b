package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/goliatone/go-commerce-webhooks/core"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

const (
	customerCacheKeyPrefix = "commerce-webhooks::customer::v1"
	productCacheKeyPrefix  = "commerce-webhooks::product::v1"
)

// CachedCustomerStore caches GetByShopifyID reads; upserts write through the
// base store and invalidate the key so the next read refetches.
type CachedCustomerStore struct {
	base  core.CustomerStore
	cache repositorycache.CacheService
}

func NewCachedCustomerStore(base core.CustomerStore, cacheService repositorycache.CacheService) (*CachedCustomerStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base customer store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: customer cache service is required")
	}
	return &CachedCustomerStore{base: base, cache: cacheService}, nil
}

func CustomerCacheKey(shopifyCustomerID string) (string, error) {
	return catalogCacheKey(customerCacheKeyPrefix, shopifyCustomerID)
}

type cachedCustomerLookup struct {
	Customer core.Customer
	Found    bool
}

func (s *CachedCustomerStore) Upsert(ctx context.Context, in core.UpsertCustomerInput) (core.Customer, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.Customer{}, fmt.Errorf("sqlstore: cached customer store is not configured")
	}
	customer, err := s.base.Upsert(ctx, in)
	if err != nil {
		return core.Customer{}, err
	}
	cacheKey, err := CustomerCacheKey(customer.ShopifyCustomerID)
	if err != nil {
		return core.Customer{}, err
	}
	if err := s.cache.Delete(ctx, cacheKey); err != nil {
		return core.Customer{}, err
	}
	return customer, nil
}

func (s *CachedCustomerStore) GetByShopifyID(ctx context.Context, shopifyCustomerID string) (core.Customer, bool, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.Customer{}, false, fmt.Errorf("sqlstore: cached customer store is not configured")
	}
	cacheKey, err := CustomerCacheKey(shopifyCustomerID)
	if err != nil {
		return core.Customer{}, false, err
	}
	lookup, err := repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (cachedCustomerLookup, error) {
		customer, found, fetchErr := s.base.GetByShopifyID(ctx, shopifyCustomerID)
		if fetchErr != nil {
			return cachedCustomerLookup{}, fetchErr
		}
		return cachedCustomerLookup{Customer: customer, Found: found}, nil
	})
	if err != nil {
		return core.Customer{}, false, err
	}
	return lookup.Customer, lookup.Found, nil
}

// CachedProductStore mirrors CachedCustomerStore for product reads.
type CachedProductStore struct {
	base  core.ProductStore
	cache repositorycache.CacheService
}

func NewCachedProductStore(base core.ProductStore, cacheService repositorycache.CacheService) (*CachedProductStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base product store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: product cache service is required")
	}
	return &CachedProductStore{base: base, cache: cacheService}, nil
}

func ProductCacheKey(shopifyProductID string) (string, error) {
	return catalogCacheKey(productCacheKeyPrefix, shopifyProductID)
}

type cachedProductLookup struct {
	Product core.Product
	Found   bool
}

func (s *CachedProductStore) Upsert(ctx context.Context, in core.UpsertProductInput) (core.Product, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.Product{}, fmt.Errorf("sqlstore: cached product store is not configured")
	}
	product, err := s.base.Upsert(ctx, in)
	if err != nil {
		return core.Product{}, err
	}
	cacheKey, err := ProductCacheKey(product.ShopifyProductID)
	if err != nil {
		return core.Product{}, err
	}
	if err := s.cache.Delete(ctx, cacheKey); err != nil {
		return core.Product{}, err
	}
	return product, nil
}

func (s *CachedProductStore) GetByShopifyID(ctx context.Context, shopifyProductID string) (core.Product, bool, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.Product{}, false, fmt.Errorf("sqlstore: cached product store is not configured")
	}
	cacheKey, err := ProductCacheKey(shopifyProductID)
	if err != nil {
		return core.Product{}, false, err
	}
	lookup, err := repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (cachedProductLookup, error) {
		product, found, fetchErr := s.base.GetByShopifyID(ctx, shopifyProductID)
		if fetchErr != nil {
			return cachedProductLookup{}, fetchErr
		}
		return cachedProductLookup{Product: product, Found: found}, nil
	})
	if err != nil {
		return core.Product{}, false, err
	}
	return lookup.Product, lookup.Found, nil
}

func catalogCacheKey(prefix string, shopifyID string) (string, error) {
	shopifyID = strings.TrimSpace(shopifyID)
	if shopifyID == "" {
		return "", fmt.Errorf("sqlstore: shopify id is required for cache key")
	}
	return prefix + "::" + url.PathEscape(shopifyID), nil
}

var _ core.CustomerStore = (*CachedCustomerStore)(nil)
var _ core.ProductStore = (*CachedProductStore)(nil)
