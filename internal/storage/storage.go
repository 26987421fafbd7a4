// Package storage selects and opens a concrete remote-store backend from
// environment configuration.
package storage

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"agricore/internal/remote"
	"agricore/internal/remote/memory"
	"agricore/internal/remote/postgres"
	"agricore/internal/remote/sqlite"
)

// Driver identifies a concrete remote-store backend implementation.
type Driver string

const (
	// DriverMemory keeps all state in process (tests / ephemeral).
	DriverMemory Driver = "memory"
	// DriverSQLite snapshots state to an embedded sqlite file.
	DriverSQLite Driver = "sqlite"
	// DriverPostgres snapshots state to a PostgreSQL server.
	DriverPostgres Driver = "postgres"
)

// Open selects a backend using environment variables, loading a .env file
// first when one is present. Defaults to sqlite when unset.
//
//	AGRICORE_STORAGE_DRIVER: memory|sqlite|postgres (default sqlite)
//	AGRICORE_SQLITE_PATH: path to the sqlite file (default ./agricore.db)
//	AGRICORE_POSTGRES_DSN: postgres DSN when driver=postgres
func Open(ctx context.Context) (remote.Store, error) {
	_ = godotenv.Load()
	driver := os.Getenv("AGRICORE_STORAGE_DRIVER")
	if driver == "" {
		driver = string(DriverSQLite)
	}
	switch Driver(driver) {
	case DriverMemory:
		return memory.NewStore(), nil
	case DriverSQLite:
		return sqlite.NewStore(os.Getenv("AGRICORE_SQLITE_PATH"))
	case DriverPostgres:
		return postgres.NewStore(ctx, os.Getenv("AGRICORE_POSTGRES_DSN"))
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
