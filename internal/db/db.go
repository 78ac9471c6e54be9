package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Open opens and pings a database for the given driver.
func Open(driver, dsn string) (*sql.DB, error) {
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unknown db driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		// one connection: ":memory:" databases are per connection and
		// sqlite allows a single writer anyway
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate applies the embedded schema for driver. Statements are
// idempotent, so it runs on every start.
func Migrate(ctx context.Context, dbx *sql.DB, driver string) error {
	b, err := schemaFS.ReadFile("schema/" + driver + ".sql")
	if err != nil {
		return fmt.Errorf("schema for %s: %w", driver, err)
	}
	if _, err := dbx.ExecContext(ctx, string(b)); err != nil {
		return fmt.Errorf("migrate %s: %w", driver, err)
	}
	return nil
}
