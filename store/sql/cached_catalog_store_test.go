package sqlstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-commerce-webhooks/core"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

type stubCustomerStore struct {
	mu          sync.Mutex
	customer    core.Customer
	found       bool
	getCalls    int
	upsertCalls int
	getErr      error
}

func (s *stubCustomerStore) Upsert(_ context.Context, in core.UpsertCustomerInput) (core.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertCalls++
	s.customer = core.Customer{
		ID:                s.customer.ID,
		ShopifyCustomerID: in.ShopifyCustomerID,
		Email:             in.Email,
		FirstName:         in.FirstName,
		LastName:          in.LastName,
	}
	s.found = true
	return s.customer, nil
}

func (s *stubCustomerStore) GetByShopifyID(_ context.Context, _ string) (core.Customer, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getCalls++
	if s.getErr != nil {
		return core.Customer{}, false, s.getErr
	}
	return s.customer, s.found, nil
}

func TestCachedCustomerStore_Get_MissFetchThenHit(t *testing.T) {
	cacheService := newTestCatalogCacheService(t)
	base := &stubCustomerStore{
		customer: core.Customer{ID: "cust-1", ShopifyCustomerID: "9001", Email: "ada@example.com"},
		found:    true,
	}

	store, err := NewCachedCustomerStore(base, cacheService)
	if err != nil {
		t.Fatalf("new cached customer store: %v", err)
	}

	customer, found, err := store.GetByShopifyID(context.Background(), "9001")
	if err != nil {
		t.Fatalf("first get: %v", err)
	}
	if !found || customer.Email != "ada@example.com" {
		t.Fatalf("unexpected first lookup: found=%v customer=%+v", found, customer)
	}
	if base.getCalls != 1 {
		t.Fatalf("expected first get to fetch base store once, got %d", base.getCalls)
	}

	if _, _, err := store.GetByShopifyID(context.Background(), "9001"); err != nil {
		t.Fatalf("second get: %v", err)
	}
	if base.getCalls != 1 {
		t.Fatalf("expected second get to be cache hit, base get calls=%d", base.getCalls)
	}
}

func TestCachedCustomerStore_MissResultIsCached(t *testing.T) {
	cacheService := newTestCatalogCacheService(t)
	base := &stubCustomerStore{found: false}

	store, err := NewCachedCustomerStore(base, cacheService)
	if err != nil {
		t.Fatalf("new cached customer store: %v", err)
	}

	for i := 0; i < 2; i++ {
		_, found, lookupErr := store.GetByShopifyID(context.Background(), "404")
		if lookupErr != nil {
			t.Fatalf("lookup %d: %v", i, lookupErr)
		}
		if found {
			t.Fatalf("expected not-found lookup %d", i)
		}
	}
	if base.getCalls != 1 {
		t.Fatalf("expected not-found result to be cached, base get calls=%d", base.getCalls)
	}
}

func TestCachedCustomerStore_Upsert_InvalidatesCachedKey(t *testing.T) {
	cacheService := newTestCatalogCacheService(t)
	base := &stubCustomerStore{
		customer: core.Customer{ID: "cust-2", ShopifyCustomerID: "9002", Email: "old@example.com"},
		found:    true,
	}

	store, err := NewCachedCustomerStore(base, cacheService)
	if err != nil {
		t.Fatalf("new cached customer store: %v", err)
	}

	if _, _, err := store.GetByShopifyID(context.Background(), "9002"); err != nil {
		t.Fatalf("prime cache with get: %v", err)
	}
	if base.getCalls != 1 {
		t.Fatalf("expected one base read after cache prime, got %d", base.getCalls)
	}

	if _, err := store.Upsert(context.Background(), core.UpsertCustomerInput{
		ShopifyCustomerID: "9002",
		Email:             "new@example.com",
	}); err != nil {
		t.Fatalf("upsert through cached store: %v", err)
	}
	if base.upsertCalls != 1 {
		t.Fatalf("expected base upsert call count=1, got %d", base.upsertCalls)
	}

	customer, found, err := store.GetByShopifyID(context.Background(), "9002")
	if err != nil {
		t.Fatalf("get after upsert invalidation: %v", err)
	}
	if base.getCalls != 2 {
		t.Fatalf("expected invalidated key to force second base read, got %d", base.getCalls)
	}
	if !found || customer.Email != "new@example.com" {
		t.Fatalf("expected refreshed customer, got found=%v customer=%+v", found, customer)
	}
}

func TestCatalogCacheKey_Contract(t *testing.T) {
	key, err := CustomerCacheKey(" 9001/alpha ")
	if err != nil {
		t.Fatalf("build cache key: %v", err)
	}

	const expected = "commerce-webhooks::customer::v1::9001%2Falpha"
	if key != expected {
		t.Fatalf("unexpected cache key contract: got %q want %q", key, expected)
	}

	if _, err := ProductCacheKey("   "); err == nil {
		t.Fatalf("expected blank shopify id to be rejected")
	}
}

func TestCachedCustomerStore_PropagatesBaseErrors(t *testing.T) {
	cacheService := newTestCatalogCacheService(t)
	baseErr := errors.New("catalog lookup exploded")
	base := &stubCustomerStore{getErr: baseErr}

	store, err := NewCachedCustomerStore(base, cacheService)
	if err != nil {
		t.Fatalf("new cached customer store: %v", err)
	}

	_, _, err = store.GetByShopifyID(context.Background(), "9003")
	if !errors.Is(err, baseErr) {
		t.Fatalf("expected base error propagation, got %v", err)
	}
}

func newTestCatalogCacheService(t *testing.T) repositorycache.CacheService {
	t.Helper()
	config := repositorycache.DefaultConfig()
	config.TTL = time.Minute
	service, err := repositorycache.NewCacheService(config)
	if err != nil {
		t.Fatalf("new cache service: %v", err)
	}
	return service
}
