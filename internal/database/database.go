package database

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/xiaoliunewbig/fantasydb/internal/logger"
	"github.com/xiaoliunewbig/fantasydb/pkg/types"
)

//go:embed schema.sql
var schemaSQL string

// Database wraps one endpoint's pool with query sugar, schema management,
// and maintenance operations. Where clauses are appended verbatim; callers
// compose them from trusted input only.
type Database struct {
	name string
	pool *Pool
	log  *zap.SugaredLogger
}

// Open builds a Database over a fresh pool for the endpoint.
func Open(name string, cfg types.ConnectionConfig) (*Database, error) {
	pool, err := NewPool(cfg)
	if err != nil {
		return nil, fmt.Errorf("opening endpoint %s: %w", name, err)
	}
	return &Database{
		name: name,
		pool: pool,
		log:  logger.For("database").With("endpoint", name),
	}, nil
}

// Name returns the endpoint name.
func (d *Database) Name() string { return d.name }

// Pool exposes the underlying pool for callers that need a long-lived
// connection, such as transactional batches.
func (d *Database) Pool() *Pool { return d.pool }

// Close shuts the pool down.
func (d *Database) Close() error { return d.pool.Close() }

// Bootstrap creates the fixed tables if absent.
func (d *Database) Bootstrap(ctx context.Context) error {
	return d.pool.Do(ctx, func(conn *Connection) error {
		for _, stmt := range splitStatements(schemaSQL) {
			if res := conn.ExecuteContext(ctx, stmt); !res.Success {
				return fmt.Errorf("bootstrapping schema: %s", res.ErrorMessage)
			}
		}
		return nil
	})
}

// Query runs one statement through a pooled connection.
func (d *Database) Query(ctx context.Context, sqlText string, params ...types.Value) types.QueryResult {
	var result types.QueryResult
	err := d.pool.Do(ctx, func(conn *Connection) error {
		result = conn.ExecuteContext(ctx, sqlText, params...)
		return nil
	})
	if err != nil {
		return types.Failure(err)
	}
	return result
}

// QueryAsync runs the statement on a worker goroutine.
func (d *Database) QueryAsync(ctx context.Context, sqlText string, params ...types.Value) *Future {
	f := newFuture()
	go func() {
		f.resolve(d.Query(ctx, sqlText, params...))
	}()
	return f
}

// Insert builds a parameterized INSERT from the column map and returns the
// last insert id. An empty map is a no-op returning 0.
func (d *Database) Insert(ctx context.Context, table string, values map[string]types.Value) (int64, error) {
	if len(values) == 0 {
		return 0, nil
	}
	cols := sortedKeys(values)
	placeholders := make([]string, len(cols))
	params := make([]types.Value, len(cols))
	for i, c := range cols {
		placeholders[i] = "?"
		params[i] = values[c]
	}
	sqlText := fmt.Sprintf("INSERT OR REPLACE INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), strings.Join(placeholders, ", "))

	result := d.Query(ctx, sqlText, params...)
	if !result.Success {
		return 0, errors.New(result.ErrorMessage)
	}
	return result.LastInsertID, nil
}

// Update builds a parameterized SET list from the column map. It reports
// whether the statement succeeded; a zero-row update is still a success.
func (d *Database) Update(ctx context.Context, table string, values map[string]types.Value, where string) (bool, error) {
	if len(values) == 0 {
		return false, nil
	}
	cols := sortedKeys(values)
	sets := make([]string, len(cols))
	params := make([]types.Value, len(cols))
	for i, c := range cols {
		sets[i] = c + " = ?"
		params[i] = values[c]
	}
	sqlText := fmt.Sprintf("UPDATE %s SET %s", table, strings.Join(sets, ", "))
	if where != "" {
		sqlText += " WHERE " + where
	}
	result := d.Query(ctx, sqlText, params...)
	if !result.Success {
		return false, errors.New(result.ErrorMessage)
	}
	return true, nil
}

// Delete removes rows matching the where clause and reports whether any
// row was removed.
func (d *Database) Delete(ctx context.Context, table, where string) (bool, error) {
	sqlText := "DELETE FROM " + table
	if where != "" {
		sqlText += " WHERE " + where
	}
	result := d.Query(ctx, sqlText)
	if !result.Success {
		return false, errors.New(result.ErrorMessage)
	}
	return result.AffectedRows > 0, nil
}

// Select reads the named columns, or every column when the slice is empty.
func (d *Database) Select(ctx context.Context, table string, columns []string, where string, params ...types.Value) types.QueryResult {
	colList := "*"
	if len(columns) > 0 {
		colList = strings.Join(columns, ", ")
	}
	sqlText := fmt.Sprintf("SELECT %s FROM %s", colList, table)
	if where != "" {
		sqlText += " WHERE " + where
	}
	return d.Query(ctx, sqlText, params...)
}

// InsertBatch replays one insert per row map inside a single transaction.
func (d *Database) InsertBatch(ctx context.Context, table string, rows []map[string]types.Value) error {
	return d.WithTransaction(ctx, func(conn *Connection) error {
		for i, values := range rows {
			if len(values) == 0 {
				continue
			}
			cols := sortedKeys(values)
			placeholders := make([]string, len(cols))
			params := make([]types.Value, len(cols))
			for j, c := range cols {
				placeholders[j] = "?"
				params[j] = values[c]
			}
			sqlText := fmt.Sprintf("INSERT OR REPLACE INTO %s (%s) VALUES (%s)",
				table, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
			if res := conn.ExecuteContext(ctx, sqlText, params...); !res.Success {
				return fmt.Errorf("batch row %d: %s", i, res.ErrorMessage)
			}
		}
		return nil
	})
}

// BatchUpdate pairs a column map with its where clause.
type BatchUpdate struct {
	Values map[string]types.Value
	Where  string
}

// UpdateBatch replays one update per entry inside a single transaction.
func (d *Database) UpdateBatch(ctx context.Context, table string, updates []BatchUpdate) error {
	return d.WithTransaction(ctx, func(conn *Connection) error {
		for i, u := range updates {
			if len(u.Values) == 0 {
				continue
			}
			cols := sortedKeys(u.Values)
			sets := make([]string, len(cols))
			params := make([]types.Value, len(cols))
			for j, c := range cols {
				sets[j] = c + " = ?"
				params[j] = u.Values[c]
			}
			sqlText := fmt.Sprintf("UPDATE %s SET %s", table, strings.Join(sets, ", "))
			if u.Where != "" {
				sqlText += " WHERE " + u.Where
			}
			if res := conn.ExecuteContext(ctx, sqlText, params...); !res.Success {
				return fmt.Errorf("batch row %d: %s", i, res.ErrorMessage)
			}
		}
		return nil
	})
}

// WithTransaction acquires one connection, opens a transaction, runs fn,
// and commits. fn's error rolls back.
func (d *Database) WithTransaction(ctx context.Context, fn func(*Connection) error) error {
	conn, err := d.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer d.pool.Release(conn)

	if err := conn.BeginTransaction(ctx); err != nil {
		return err
	}
	if err := fn(conn); err != nil {
		if rbErr := conn.Rollback(); rbErr != nil {
			d.log.Warnw("rollback failed", "error", rbErr)
		}
		return err
	}
	return conn.Commit()
}

// CreateTable issues the DDL verbatim.
func (d *Database) CreateTable(ctx context.Context, ddl string) error {
	if res := d.Query(ctx, ddl); !res.Success {
		return errors.New(res.ErrorMessage)
	}
	return nil
}

// DropTable drops the named table if present.
func (d *Database) DropTable(ctx context.Context, table string) error {
	if res := d.Query(ctx, "DROP TABLE IF EXISTS "+table); !res.Success {
		return errors.New(res.ErrorMessage)
	}
	return nil
}

// TableExists consults sqlite_master.
func (d *Database) TableExists(ctx context.Context, table string) (bool, error) {
	result := d.Query(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?",
		types.Text(table))
	if !result.Success {
		return false, errors.New(result.ErrorMessage)
	}
	return !result.Empty(), nil
}

// ListTables returns every user table, sorted by name.
func (d *Database) ListTables(ctx context.Context) ([]string, error) {
	result := d.Query(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if !result.Success {
		return nil, errors.New(result.ErrorMessage)
	}
	names := make([]string, 0, len(result.Rows))
	for i := range result.Rows {
		names = append(names, result.Value(i, "name").AsText(""))
	}
	return names, nil
}

// TableSchema returns the table's column descriptions from table_info.
func (d *Database) TableSchema(ctx context.Context, table string) (types.QueryResult, error) {
	result := d.Query(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if !result.Success {
		return result, errors.New(result.ErrorMessage)
	}
	if result.Empty() {
		return result, fmt.Errorf("%w: table %s", types.ErrNotFound, table)
	}
	return result, nil
}

// Ping verifies the endpoint answers.
func (d *Database) Ping(ctx context.Context) error {
	return d.pool.Do(ctx, func(conn *Connection) error {
		return conn.Ping(ctx)
	})
}

// Optimize asks the planner to refresh its statistics.
func (d *Database) Optimize(ctx context.Context) error {
	if res := d.Query(ctx, "PRAGMA optimize"); !res.Success {
		return errors.New(res.ErrorMessage)
	}
	return nil
}

// Vacuum rebuilds the database file, reclaiming free pages.
func (d *Database) Vacuum(ctx context.Context) error {
	if res := d.Query(ctx, "VACUUM"); !res.Success {
		return errors.New(res.ErrorMessage)
	}
	return nil
}

// Analyze gathers index statistics.
func (d *Database) Analyze(ctx context.Context) error {
	if res := d.Query(ctx, "ANALYZE"); !res.Success {
		return errors.New(res.ErrorMessage)
	}
	return nil
}

// Size reports the database size in bytes.
func (d *Database) Size(ctx context.Context) (int64, error) {
	pages := d.Query(ctx, "PRAGMA page_count")
	if !pages.Success {
		return 0, errors.New(pages.ErrorMessage)
	}
	pageSize := d.Query(ctx, "PRAGMA page_size")
	if !pageSize.Success {
		return 0, errors.New(pageSize.ErrorMessage)
	}
	return pages.Value(0, "page_count").AsInt(0) * pageSize.Value(0, "page_size").AsInt(0), nil
}

// Backup checkpoints the WAL and copies the database file to path.
func (d *Database) Backup(ctx context.Context, path string) error {
	src := d.pool.Config().Database
	if src == ":memory:" {
		return fmt.Errorf("%w: cannot back up an in-memory database", types.ErrInvalidState)
	}
	if res := d.Query(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); !res.Success {
		return errors.New(res.ErrorMessage)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating backup directory: %w", err)
	}
	if err := copyFile(src, path); err != nil {
		return fmt.Errorf("writing backup: %w", err)
	}
	d.log.Infow("backup written", "path", path)
	return nil
}

// Restore overwrites the database file from a backup. Existing sessions
// keep their view until released; callers should restore at a quiet point.
func (d *Database) Restore(ctx context.Context, path string) error {
	dst := d.pool.Config().Database
	if dst == ":memory:" {
		return fmt.Errorf("%w: cannot restore an in-memory database", types.ErrInvalidState)
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: backup %s", types.ErrNotFound, path)
	}
	if res := d.Query(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); !res.Success {
		return errors.New(res.ErrorMessage)
	}
	if err := copyFile(path, dst); err != nil {
		return fmt.Errorf("restoring backup: %w", err)
	}
	// Stale WAL frames would shadow the restored pages.
	_ = os.Remove(dst + "-wal")
	_ = os.Remove(dst + "-shm")
	d.log.Infow("backup restored", "path", path)
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func sortedKeys(m map[string]types.Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// splitStatements breaks a schema script on semicolons. The embedded
// schema contains no literals with semicolons, so a plain split suffices.
func splitStatements(script string) []string {
	var out []string
	for _, part := range strings.Split(script, ";") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
