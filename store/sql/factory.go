package sqlstore

import (
	"fmt"

	"github.com/goliatone/go-commerce-webhooks/core"
	persistence "github.com/goliatone/go-persistence-bun"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"
)

// RepositoryFactory wires every store off one bun handle and exposes them as
// the core.StoreProvider the queue and processor consume.
type RepositoryFactory struct {
	db    *bun.DB
	cache repositorycache.CacheService

	jobStore        *JobStore
	customerStore   core.CustomerStore
	productStore    core.ProductStore
	orderStore      *OrderStore
	inventoryStore  *InventoryStore
	webhookLogStore *WebhookLogStore
}

type FactoryOption func(*RepositoryFactory)

// WithCatalogCache layers read caching over customer and product lookups.
func WithCatalogCache(cacheService repositorycache.CacheService) FactoryOption {
	return func(f *RepositoryFactory) {
		f.cache = cacheService
	}
}

func NewRepositoryFactory(options ...FactoryOption) *RepositoryFactory {
	factory := &RepositoryFactory{}
	for _, option := range options {
		if option != nil {
			option(factory)
		}
	}
	return factory
}

func NewRepositoryFactoryFromPersistence(client *persistence.Client, options ...FactoryOption) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory(options...)
	if _, err := factory.BuildStores(client); err != nil {
		return nil, err
	}
	return factory, nil
}

// NewRepositoryFactoryFromConfig opens the database described by cfg and
// builds the full store set over it.
func NewRepositoryFactoryFromConfig(cfg core.DatabaseConfig, options ...FactoryOption) (*RepositoryFactory, error) {
	db, err := OpenDB(cfg.GetDriver(), cfg.GetServer())
	if err != nil {
		return nil, err
	}
	return NewRepositoryFactoryFromDB(db, options...)
}

func NewRepositoryFactoryFromDB(db *bun.DB, options ...FactoryOption) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory(options...)
	if _, err := factory.BuildStores(db); err != nil {
		return nil, err
	}
	return factory, nil
}

func (f *RepositoryFactory) BuildStores(persistenceClient any) (core.StoreProvider, error) {
	if f == nil {
		return nil, fmt.Errorf("sqlstore: repository factory is nil")
	}
	if f.db == nil {
		db, err := resolveBunDB(persistenceClient)
		if err != nil {
			return nil, err
		}
		f.db = db
	}
	if f.jobStore != nil {
		return f, nil
	}
	if err := f.initStores(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *RepositoryFactory) DB() *bun.DB {
	if f == nil {
		return nil
	}
	return f.db
}

func (f *RepositoryFactory) JobStore() core.JobStore {
	if f == nil || f.jobStore == nil {
		return nil
	}
	return f.jobStore
}

func (f *RepositoryFactory) CustomerStore() core.CustomerStore {
	if f == nil {
		return nil
	}
	return f.customerStore
}

func (f *RepositoryFactory) ProductStore() core.ProductStore {
	if f == nil {
		return nil
	}
	return f.productStore
}

func (f *RepositoryFactory) OrderStore() core.OrderStore {
	if f == nil || f.orderStore == nil {
		return nil
	}
	return f.orderStore
}

func (f *RepositoryFactory) InventoryStore() core.InventoryStore {
	if f == nil || f.inventoryStore == nil {
		return nil
	}
	return f.inventoryStore
}

func (f *RepositoryFactory) WebhookLogStore() core.WebhookLogStore {
	if f == nil || f.webhookLogStore == nil {
		return nil
	}
	return f.webhookLogStore
}

func (f *RepositoryFactory) initStores() error {
	jobStore, err := NewJobStore(f.db)
	if err != nil {
		return err
	}
	f.jobStore = jobStore

	customerStore, err := NewCustomerStore(f.db)
	if err != nil {
		return err
	}
	f.customerStore = customerStore

	productStore, err := NewProductStore(f.db)
	if err != nil {
		return err
	}
	f.productStore = productStore

	if f.cache != nil {
		cachedCustomers, err := NewCachedCustomerStore(customerStore, f.cache)
		if err != nil {
			return err
		}
		f.customerStore = cachedCustomers

		cachedProducts, err := NewCachedProductStore(productStore, f.cache)
		if err != nil {
			return err
		}
		f.productStore = cachedProducts
	}

	orderStore, err := NewOrderStore(f.db)
	if err != nil {
		return err
	}
	f.orderStore = orderStore

	inventoryStore, err := NewInventoryStore(f.db)
	if err != nil {
		return err
	}
	f.inventoryStore = inventoryStore

	webhookLogStore, err := NewWebhookLogStore(f.db)
	if err != nil {
		return err
	}
	f.webhookLogStore = webhookLogStore

	return nil
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client type %T", candidate)
	}
}

var _ core.StoreProvider = (*RepositoryFactory)(nil)
