// Package core contains canonical domain contracts, entities, and policy for
// the commerce webhook queue. Lower-level adapters (stores, transports,
// schedulers) must depend on this package; core must not depend on them.
package core
