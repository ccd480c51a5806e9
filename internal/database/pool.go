package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xiaoliunewbig/fantasydb/internal/logger"
	"github.com/xiaoliunewbig/fantasydb/pkg/types"
)

// Pool is a bounded set of Connections over one endpoint. Acquire blocks up
// to the configured connect timeout when every slot is checked out.
type Pool struct {
	cfg types.ConnectionConfig
	db  *sql.DB

	mu     sync.Mutex
	cond   *sync.Cond
	idle   []*Connection
	total  int
	closed bool

	log *zap.SugaredLogger
}

// NewPool opens the shared handle and pre-warms MinConnections sessions.
func NewPool(cfg types.ConnectionConfig) (*Pool, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	db, err := openHandle(cfg)
	if err != nil {
		return nil, err
	}

	p := &Pool{
		cfg: cfg,
		db:  db,
		log: logger.For("database.pool"),
	}
	p.cond = sync.NewCond(&p.mu)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()
	for i := 0; i < cfg.MinConnections; i++ {
		conn, err := p.dial(ctx)
		if err != nil {
			_ = p.Close()
			return nil, fmt.Errorf("warming pool: %w", err)
		}
		p.idle = append(p.idle, conn)
		p.total++
	}
	return p, nil
}

// dial opens one session. The caller owns the slot accounting.
func (p *Pool) dial(ctx context.Context) (*Connection, error) {
	conn := newConnection(p.db, p.cfg)
	if err := conn.Connect(ctx); err != nil {
		return nil, err
	}
	return conn, nil
}

// Acquire checks out a connection, dialing a new one while under the
// MaxConnections cap. It blocks while the pool is saturated and gives up
// with ErrPoolExhausted after the connect timeout.
func (p *Pool) Acquire(ctx context.Context) (*Connection, error) {
	deadline := time.Now().Add(p.cfg.ConnectTimeout)
	timer := time.AfterFunc(p.cfg.ConnectTimeout, func() {
		p.cond.Broadcast()
	})
	defer timer.Stop()

	p.mu.Lock()
	for {
		if p.closed {
			p.mu.Unlock()
			return nil, types.ErrPoolClosed
		}
		if n := len(p.idle); n > 0 {
			conn := p.idle[n-1]
			p.idle = p.idle[:n-1]
			p.mu.Unlock()
			if err := conn.Ping(ctx); err != nil {
				// Stale session: drop it and try again.
				p.discard(conn)
				p.mu.Lock()
				continue
			}
			return conn, nil
		}
		if p.total < p.cfg.MaxConnections {
			// Reserve the slot before dialing so a concurrent acquirer
			// at the cap waits on the cond instead of over-dialing into
			// the shared handle's own limit.
			p.total++
			p.mu.Unlock()
			dialCtx, cancel := context.WithTimeout(ctx, p.cfg.ConnectTimeout)
			conn, err := p.dial(dialCtx)
			cancel()
			if err != nil {
				p.mu.Lock()
				p.total--
				p.mu.Unlock()
				p.cond.Signal()
				if dialCtx.Err() != nil {
					return nil, fmt.Errorf("%w: dialing: %v", types.ErrTimeout, err)
				}
				return nil, err
			}
			return conn, nil
		}
		if err := ctx.Err(); err != nil {
			p.mu.Unlock()
			return nil, fmt.Errorf("%w: %v", types.ErrTimeout, err)
		}
		if time.Now().After(deadline) {
			p.mu.Unlock()
			return nil, fmt.Errorf("%w: all %d connections busy for %s",
				types.ErrPoolExhausted, p.cfg.MaxConnections, p.cfg.ConnectTimeout)
		}
		p.cond.Wait()
	}
}

// Release returns a connection to the idle set. Connections with an open
// transaction are rolled back first; unhealthy ones are dropped.
func (p *Pool) Release(conn *Connection) {
	if conn == nil {
		return
	}
	if conn.InTransaction() {
		if err := conn.Rollback(); err != nil {
			p.log.Warnw("rollback on release failed", "conn", conn.ID(), "error", err)
		}
	}
	if !conn.Connected() {
		p.discard(conn)
		return
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.discard(conn)
		return
	}
	p.idle = append(p.idle, conn)
	p.mu.Unlock()
	p.cond.Signal()
}

func (p *Pool) discard(conn *Connection) {
	_ = conn.Close()
	p.mu.Lock()
	p.total--
	p.mu.Unlock()
	p.cond.Signal()
}

// Do acquires a connection, runs fn, and releases it.
func (p *Pool) Do(ctx context.Context, fn func(*Connection) error) error {
	conn, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer p.Release(conn)
	return fn(conn)
}

// Stats reports the pool's occupancy.
func (p *Pool) Stats() (idle, total, max int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle), p.total, p.cfg.MaxConnections
}

// Config returns the endpoint config the pool was opened with.
func (p *Pool) Config() types.ConnectionConfig { return p.cfg }

// Close drains the idle set and closes the shared handle. Checked-out
// connections die when their holders release them.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	idle := p.idle
	p.idle = nil
	p.mu.Unlock()
	p.cond.Broadcast()

	for _, conn := range idle {
		_ = conn.Close()
	}
	return p.db.Close()
}
