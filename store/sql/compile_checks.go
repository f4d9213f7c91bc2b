package sqlstore

import "github.com/goliatone/go-commerce-webhooks/core"

var (
	_ core.JobStore        = (*JobStore)(nil)
	_ core.CustomerStore   = (*CustomerStore)(nil)
	_ core.ProductStore    = (*ProductStore)(nil)
	_ core.OrderStore      = (*OrderStore)(nil)
	_ core.InventoryStore  = (*InventoryStore)(nil)
	_ core.WebhookLogStore = (*WebhookLogStore)(nil)
	_ core.StoreProvider   = (*RepositoryFactory)(nil)
)
