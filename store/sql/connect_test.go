package sqlstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-commerce-webhooks/core"
	sqlstore "github.com/goliatone/go-commerce-webhooks/store/sql"
)

func TestDialect_SupportedDrivers(t *testing.T) {
	for _, driver := range []string{"postgres", "sqlite3", "sqlite", " SQLite3 "} {
		if _, err := sqlstore.Dialect(driver); err != nil {
			t.Fatalf("expected dialect for %q, got %v", driver, err)
		}
	}

	if _, err := sqlstore.Dialect("mysql"); err == nil {
		t.Fatal("expected unsupported driver error for mysql")
	}
}

func TestOpenDB_SQLite(t *testing.T) {
	db, err := sqlstore.OpenDB("sqlite3", "file:connect-open-test?mode=memory&cache=shared&_foreign_keys=on")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var out int
	if err := db.NewRaw("SELECT 1").Scan(ctx, &out); err != nil {
		t.Fatalf("probe query: %v", err)
	}
	if out != 1 {
		t.Fatalf("expected probe result 1, got %d", out)
	}
}

func TestOpenDB_RejectsBadInput(t *testing.T) {
	if _, err := sqlstore.OpenDB("sqlite3", "   "); err == nil {
		t.Fatal("expected blank dsn rejection")
	}
	if _, err := sqlstore.OpenDB("oracle", "dsn"); err == nil {
		t.Fatal("expected unsupported driver rejection")
	}
}

func TestNewRepositoryFactoryFromConfig_SQLite(t *testing.T) {
	cfg := core.DatabaseConfig{
		Driver: "sqlite3",
		Server: "file:connect-factory-test?mode=memory&cache=shared&_foreign_keys=on",
	}

	factory, err := sqlstore.NewRepositoryFactoryFromConfig(cfg)
	if err != nil {
		t.Fatalf("build factory from config: %v", err)
	}
	defer factory.DB().Close()

	if factory.JobStore() == nil {
		t.Fatal("expected job store to be wired")
	}
	if factory.WebhookLogStore() == nil {
		t.Fatal("expected webhook log store to be wired")
	}

	if _, err := sqlstore.NewRepositoryFactoryFromConfig(core.DatabaseConfig{Driver: "mysql", Server: "dsn"}); err == nil {
		t.Fatal("expected unsupported driver rejection")
	}
}

func TestOpenDB_PostgresHandleConstruction(t *testing.T) {
	// sql.Open does not dial, so handle construction works without a server.
	db, err := sqlstore.OpenDB("postgres", "postgres://localhost:5432/webhooks?sslmode=disable")
	if err != nil {
		t.Fatalf("open postgres handle: %v", err)
	}
	db.Close()
}
