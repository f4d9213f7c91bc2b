package sqlstore

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Dialect maps a supported driver name to its bun dialect.
func Dialect(driver string) (schema.Dialect, error) {
	switch normalizeDriver(driver) {
	case DriverPostgres:
		return pgdialect.New(), nil
	case DriverSQLite:
		return sqlitedialect.New(), nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported database driver %q", driver)
	}
}

// OpenDB opens a database/sql handle for the given driver and wraps it with
// the matching bun dialect. SQLite handles are pinned to a single connection
// so in-memory databases survive across callers.
func OpenDB(driver, dsn string) (*bun.DB, error) {
	name := normalizeDriver(driver)
	dialect, err := Dialect(name)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("sqlstore: database dsn is required")
	}

	sqlDB, err := sql.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s database: %w", name, err)
	}
	if name == DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
	}
	return bun.NewDB(sqlDB, dialect), nil
}

func normalizeDriver(driver string) string {
	name := strings.ToLower(strings.TrimSpace(driver))
	if name == "sqlite" {
		return DriverSQLite
	}
	return name
}
