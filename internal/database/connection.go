// Package database implements the relational access layer: single
// connections with prepared statements and transactions, a bounded
// connection pool per endpoint, a query facade with CRUD sugar, and a
// manager that routes across role-tagged endpoints.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"github.com/xiaoliunewbig/fantasydb/internal/logger"
	"github.com/xiaoliunewbig/fantasydb/pkg/types"
)

// Connection lifecycle states.
const (
	connDisconnected = "disconnected"
	connConnecting   = "connecting"
	connConnected    = "connected"
	connClosing      = "closing"
	connError        = "error"
)

// Connection lifecycle events.
const (
	connEventConnect    = "connect"
	connEventConnected  = "connected"
	connEventDisconnect = "disconnect"
	connEventFatal      = "fatal"
)

// connPragmas are applied to every fresh session. The busy timeout is set
// separately from the configured query timeout.
var connPragmas = []string{
	"PRAGMA foreign_keys = ON",
	"PRAGMA journal_mode = WAL",
	"PRAGMA cache_size = 10000",
}

// namedStmt is one named prepared statement kept for the connection's
// lifetime.
type namedStmt struct {
	stmt    *sql.Stmt
	sql     string
	isQuery bool
}

// Connection is one live session with the backing store. A connection is
// owned by whoever acquired it from the pool and must not be used from two
// goroutines at once.
type Connection struct {
	id      string
	db      *sql.DB
	conn    *sql.Conn
	machine *fsm.FSM
	tx      *sql.Tx
	stmts   map[string]*namedStmt

	queryTimeout time.Duration
	maxQuerySize int

	statsMu sync.Mutex
	stats   types.ConnectionStats

	log *zap.SugaredLogger
}

// newConnection builds an unconnected Connection over the shared handle.
func newConnection(db *sql.DB, cfg types.ConnectionConfig) *Connection {
	c := &Connection{
		id:           uuid.Must(uuid.NewV7()).String(),
		db:           db,
		stmts:        make(map[string]*namedStmt),
		queryTimeout: cfg.QueryTimeout,
		maxQuerySize: cfg.MaxQuerySize,
		log:          logger.For("database.connection"),
	}
	c.machine = fsm.NewFSM(
		connDisconnected,
		fsm.Events{
			{Name: connEventConnect, Src: []string{connDisconnected, connError}, Dst: connConnecting},
			{Name: connEventConnected, Src: []string{connConnecting}, Dst: connConnected},
			{Name: connEventDisconnect, Src: []string{connConnected, connConnecting, connError}, Dst: connClosing},
			{Name: connEventFatal, Src: []string{connConnecting, connConnected}, Dst: connError},
		},
		fsm.Callbacks{},
	)
	return c
}

// ID returns the connection's unique id.
func (c *Connection) ID() string { return c.id }

// State returns the lifecycle state name.
func (c *Connection) State() string { return c.machine.Current() }

// Connected reports whether the session is usable.
func (c *Connection) Connected() bool { return c.machine.Current() == connConnected }

// Connect pins a session and applies the connect-time PRAGMAs.
func (c *Connection) Connect(ctx context.Context) error {
	if err := c.machine.Event(ctx, connEventConnect); err != nil {
		return fmt.Errorf("%w: connect from %s", types.ErrInvalidState, c.machine.Current())
	}
	conn, err := c.db.Conn(ctx)
	if err != nil {
		_ = c.machine.Event(ctx, connEventFatal)
		return fmt.Errorf("%w: %v", types.ErrNotConnected, err)
	}
	for _, pragma := range connPragmas {
		if _, err := conn.ExecContext(ctx, pragma); err != nil {
			_ = conn.Close()
			_ = c.machine.Event(ctx, connEventFatal)
			return fmt.Errorf("applying %q: %w", pragma, err)
		}
	}
	busy := fmt.Sprintf("PRAGMA busy_timeout = %d", c.queryTimeout.Milliseconds())
	if _, err := conn.ExecContext(ctx, busy); err != nil {
		_ = conn.Close()
		_ = c.machine.Event(ctx, connEventFatal)
		return fmt.Errorf("applying busy timeout: %w", err)
	}
	c.conn = conn
	return c.machine.Event(ctx, connEventConnected)
}

// Close rolls back any open transaction, finalizes named statements, and
// releases the session. Close is idempotent.
func (c *Connection) Close() error {
	if c.machine.Current() == connClosing || c.machine.Current() == connDisconnected {
		return nil
	}
	ctx := context.Background()
	if c.tx != nil {
		if err := c.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			c.log.Warnw("rollback on close failed", "conn", c.id, "error", err)
		}
		c.tx = nil
	}
	for name, ns := range c.stmts {
		_ = ns.stmt.Close()
		delete(c.stmts, name)
	}
	_ = c.machine.Event(ctx, connEventDisconnect)
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}

// Ping verifies the session is alive.
func (c *Connection) Ping(ctx context.Context) error {
	if !c.Connected() {
		return types.ErrNotConnected
	}
	if err := c.conn.PingContext(ctx); err != nil {
		_ = c.machine.Event(ctx, connEventFatal)
		return fmt.Errorf("%w: %v", types.ErrUnavailable, err)
	}
	return nil
}

// Execute runs one statement with positional parameters bound 1-based by
// Value variant. The result is never an error: failures come back as an
// unsuccessful QueryResult carrying the failure class in its message.
func (c *Connection) Execute(sqlText string, params ...types.Value) types.QueryResult {
	ctx, cancel := context.WithTimeout(context.Background(), c.queryTimeout)
	defer cancel()
	return c.ExecuteContext(ctx, sqlText, params...)
}

// ExecuteContext is Execute with a caller-supplied context.
func (c *Connection) ExecuteContext(ctx context.Context, sqlText string, params ...types.Value) types.QueryResult {
	start := time.Now()
	result := c.run(ctx, sqlText, params)
	c.recordQuery(result.Success, time.Since(start))
	return result
}

func (c *Connection) run(ctx context.Context, sqlText string, params []types.Value) types.QueryResult {
	if !c.Connected() {
		return types.Failure(types.ErrNotConnected)
	}
	if c.maxQuerySize > 0 && len(sqlText) > c.maxQuerySize {
		return types.Failure(fmt.Errorf("%w: statement of %d bytes exceeds cap %d",
			types.ErrSyntax, len(sqlText), c.maxQuerySize))
	}
	for _, p := range params {
		if err := p.Validate(); err != nil {
			return types.Failure(err)
		}
	}

	args := make([]any, len(params))
	for i, p := range params {
		args[i] = p.Arg()
	}

	if isRowReturning(sqlText) {
		return c.runQuery(ctx, sqlText, args)
	}
	return c.runExec(ctx, sqlText, args)
}

func (c *Connection) runQuery(ctx context.Context, sqlText string, args []any) types.QueryResult {
	var rows *sql.Rows
	var err error
	if c.tx != nil {
		rows, err = c.tx.QueryContext(ctx, sqlText, args...)
	} else {
		rows, err = c.conn.QueryContext(ctx, sqlText, args...)
	}
	if err != nil {
		return types.Failure(classify(err))
	}
	defer rows.Close()

	result, err := scanRows(rows)
	if err != nil {
		return types.Failure(classify(err))
	}
	return result
}

func (c *Connection) runExec(ctx context.Context, sqlText string, args []any) types.QueryResult {
	var res sql.Result
	var err error
	if c.tx != nil {
		res, err = c.tx.ExecContext(ctx, sqlText, args...)
	} else {
		res, err = c.conn.ExecContext(ctx, sqlText, args...)
	}
	if err != nil {
		return types.Failure(classify(err))
	}
	out := types.OK()
	if n, err := res.RowsAffected(); err == nil {
		out.AffectedRows = n
	}
	if id, err := res.LastInsertId(); err == nil {
		out.LastInsertID = id
	}
	return out
}

// BeginTransaction opens a transaction. Nested transactions are rejected.
func (c *Connection) BeginTransaction(ctx context.Context) error {
	if !c.Connected() {
		return types.ErrNotConnected
	}
	if c.tx != nil {
		return fmt.Errorf("%w: transaction already active", types.ErrInvalidState)
	}
	tx, err := c.conn.BeginTx(ctx, nil)
	if err != nil {
		return classify(err)
	}
	c.tx = tx
	return nil
}

// Commit commits the active transaction.
func (c *Connection) Commit() error {
	if !c.Connected() {
		return types.ErrNotConnected
	}
	if c.tx == nil {
		return fmt.Errorf("%w: no active transaction", types.ErrInvalidState)
	}
	err := c.tx.Commit()
	c.tx = nil
	if err != nil {
		return classify(err)
	}
	return nil
}

// Rollback aborts the active transaction.
func (c *Connection) Rollback() error {
	if !c.Connected() {
		return types.ErrNotConnected
	}
	if c.tx == nil {
		return fmt.Errorf("%w: no active transaction", types.ErrInvalidState)
	}
	err := c.tx.Rollback()
	c.tx = nil
	if err != nil && !errors.Is(err, sql.ErrTxDone) {
		return classify(err)
	}
	return nil
}

// InTransaction reports whether a transaction is active.
func (c *Connection) InTransaction() bool { return c.tx != nil }

// PrepareNamed prepares a statement under a name that lives for the
// connection's lifetime. Re-preparing under the same name replaces the
// previous statement.
func (c *Connection) PrepareNamed(ctx context.Context, name, sqlText string) error {
	if !c.Connected() {
		return types.ErrNotConnected
	}
	stmt, err := c.conn.PrepareContext(ctx, sqlText)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrSyntax, err)
	}
	if old, ok := c.stmts[name]; ok {
		_ = old.stmt.Close()
	}
	c.stmts[name] = &namedStmt{stmt: stmt, sql: sqlText, isQuery: isRowReturning(sqlText)}
	return nil
}

// ExecuteNamed runs a previously prepared named statement.
func (c *Connection) ExecuteNamed(ctx context.Context, name string, params ...types.Value) types.QueryResult {
	if !c.Connected() {
		return types.Failure(types.ErrNotConnected)
	}
	ns, ok := c.stmts[name]
	if !ok {
		return types.Failure(fmt.Errorf("%w: no statement named %q", types.ErrInvalidState, name))
	}
	start := time.Now()
	args := make([]any, len(params))
	for i, p := range params {
		args[i] = p.Arg()
	}

	var result types.QueryResult
	if ns.isQuery {
		rows, err := ns.stmt.QueryContext(ctx, args...)
		if err != nil {
			result = types.Failure(classify(err))
		} else {
			defer rows.Close()
			if result, err = scanRows(rows); err != nil {
				result = types.Failure(classify(err))
			}
		}
	} else {
		res, err := ns.stmt.ExecContext(ctx, args...)
		if err != nil {
			result = types.Failure(classify(err))
		} else {
			result = types.OK()
			if n, err := res.RowsAffected(); err == nil {
				result.AffectedRows = n
			}
			if id, err := res.LastInsertId(); err == nil {
				result.LastInsertID = id
			}
		}
	}
	c.recordQuery(result.Success, time.Since(start))
	return result
}

// CloseNamed finalizes one named statement.
func (c *Connection) CloseNamed(name string) error {
	ns, ok := c.stmts[name]
	if !ok {
		return fmt.Errorf("%w: no statement named %q", types.ErrInvalidState, name)
	}
	delete(c.stmts, name)
	return ns.stmt.Close()
}

// ExecuteAsync runs the statement on a worker goroutine and returns a
// future for its result. The caller keeps exclusive ownership of the
// connection until the future resolves.
func (c *Connection) ExecuteAsync(sqlText string, params ...types.Value) *Future {
	f := newFuture()
	go func() {
		f.resolve(c.Execute(sqlText, params...))
	}()
	return f
}

// Stats returns a copy of the per-connection counters.
func (c *Connection) Stats() types.ConnectionStats {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return c.stats
}

func (c *Connection) recordQuery(success bool, elapsed time.Duration) {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	c.stats.TotalQueries++
	if success {
		c.stats.SuccessfulQueries++
	} else {
		c.stats.FailedQueries++
	}
	c.stats.TotalQueryTime += elapsed
	c.stats.LastQueryTime = time.Now()
}

// isRowReturning reports whether the statement produces a row set.
func isRowReturning(sqlText string) bool {
	head := strings.ToUpper(firstWord(sqlText))
	switch head {
	case "SELECT", "WITH", "PRAGMA", "EXPLAIN":
		return true
	}
	return false
}

func firstWord(s string) string {
	s = strings.TrimSpace(s)
	for i, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '(' {
			return s[:i]
		}
	}
	return s
}

// classify maps a driver error onto the failure-class sentinels.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %v", types.ErrTimeout, err)
	case errors.Is(err, sql.ErrConnDone):
		return fmt.Errorf("%w: %v", types.ErrNotConnected, err)
	case errors.Is(err, sql.ErrNoRows):
		return types.ErrNotFound
	case strings.Contains(err.Error(), "syntax error"):
		return fmt.Errorf("%w: %v", types.ErrSyntax, err)
	default:
		return fmt.Errorf("%w: %v", types.ErrRuntime, err)
	}
}
