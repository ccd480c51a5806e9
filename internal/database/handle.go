package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/xiaoliunewbig/fantasydb/pkg/types"
)

// openHandle opens the shared driver handle for one endpoint. The handle's
// own pooling is capped to the endpoint's limits; Connection sessions pin
// individual driver connections off it.
func openHandle(cfg types.ConnectionConfig) (*sql.DB, error) {
	if cfg.Backend != types.BackendSQLite {
		return nil, fmt.Errorf("%w: %q", types.ErrBackendUnknown, cfg.Backend)
	}
	dsn, err := sqliteDSN(cfg.Database)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", cfg.Database, err)
	}
	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxConnections)
	return db, nil
}

// sqliteDSN builds the driver DSN, creating the parent directory for
// file-backed stores. ":memory:" stays as a shared in-memory database so
// every pooled session sees the same data.
func sqliteDSN(database string) (string, error) {
	if database == ":memory:" {
		return "file::memory:?cache=shared", nil
	}
	dir := filepath.Dir(database)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("creating database directory: %w", err)
		}
	}
	return "file:" + database + "?_txlock=immediate", nil
}
