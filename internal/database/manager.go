package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xiaoliunewbig/fantasydb/internal/logger"
	"github.com/xiaoliunewbig/fantasydb/pkg/types"
)

// MasterEndpoint is the conventional name queries fall back to when no
// endpoint is named.
const MasterEndpoint = "master"

const backupTimeLayout = "20060102-150405"

// Manager owns every configured endpoint: it opens a Database per enabled
// one, bootstraps the fixed tables, and runs the health, auto-backup, and
// cleanup loops.
type Manager struct {
	cfg types.ManagerConfig

	mu        sync.RWMutex
	databases map[string]*Database
	endpoints map[string]*types.EndpointInfo
	running   bool

	queries *queryLog
	stop    chan struct{}
	wg      sync.WaitGroup
	log     *zap.SugaredLogger
}

// NewManager builds an uninitialized manager.
func NewManager(cfg types.ManagerConfig) *Manager {
	return &Manager{
		cfg:       cfg,
		databases: make(map[string]*Database),
		endpoints: make(map[string]*types.EndpointInfo),
		queries:   newQueryLog(cfg.QueryLogSize),
		stop:      make(chan struct{}),
		log:       logger.For("database.manager"),
	}
}

// Initialize opens every enabled endpoint, bootstraps its schema, and
// starts the background loops.
func (m *Manager) Initialize(ctx context.Context) error {
	if err := m.cfg.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return types.ErrAlreadyOpen
	}
	m.mu.Unlock()

	for name, info := range m.cfg.Endpoints {
		ep := info
		ep.Name = name
		if !ep.Enabled {
			m.mu.Lock()
			m.endpoints[name] = &ep
			m.mu.Unlock()
			continue
		}
		db, err := Open(name, ep.Config)
		if err != nil {
			m.closeAll()
			return err
		}
		if err := db.Bootstrap(ctx); err != nil {
			_ = db.Close()
			m.closeAll()
			return err
		}
		ep.Healthy = true
		ep.LastPing = time.Now()
		m.mu.Lock()
		m.databases[name] = db
		m.endpoints[name] = &ep
		m.mu.Unlock()
		m.log.Infow("endpoint opened", "endpoint", name, "role", ep.Role)
	}

	m.mu.Lock()
	m.running = true
	m.mu.Unlock()

	if m.cfg.HealthCheckInterval > 0 {
		m.wg.Add(1)
		go m.healthLoop()
	}
	if m.cfg.AutoBackupInterval > 0 {
		m.wg.Add(1)
		go m.backupLoop()
	}
	if m.cfg.CleanupInterval > 0 {
		m.wg.Add(1)
		go m.cleanupLoop()
	}
	return nil
}

// Shutdown stops the loops and closes every endpoint. Safe to call twice.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = false
	m.mu.Unlock()

	close(m.stop)
	m.wg.Wait()
	m.closeAll()
	return nil
}

func (m *Manager) closeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, db := range m.databases {
		if err := db.Close(); err != nil {
			m.log.Warnw("closing endpoint failed", "endpoint", name, "error", err)
		}
		delete(m.databases, name)
	}
}

// Database returns the named endpoint's facade.
func (m *Manager) Database(name string) (*Database, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	db, ok := m.databases[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrUnknownEndpoint, name)
	}
	return db, nil
}

// DatabaseFor routes to the enabled, healthy endpoint with the given role
// carrying the highest priority. Ties break by name order.
func (m *Manager) DatabaseFor(role types.Role) (*Database, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var names []string
	for name, ep := range m.endpoints {
		if ep.Role == role && ep.Enabled && ep.Healthy {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: role %s", types.ErrNoEndpoint, role)
	}
	sort.Slice(names, func(i, j int) bool {
		pi, pj := m.endpoints[names[i]].Priority, m.endpoints[names[j]].Priority
		if pi != pj {
			return pi > pj
		}
		return names[i] < names[j]
	})
	return m.databases[names[0]], nil
}

// Query routes one statement to the named endpoint, or to the master when
// the name is empty, recording it in the query log.
func (m *Manager) Query(ctx context.Context, endpoint, sqlText string, params ...types.Value) types.QueryResult {
	if endpoint == "" {
		endpoint = MasterEndpoint
	}
	db, err := m.Database(endpoint)
	if err != nil {
		return types.Failure(err)
	}
	start := time.Now()
	result := db.Query(ctx, sqlText, params...)
	m.queries.record(QueryLogEntry{
		Endpoint:  endpoint,
		SQL:       sqlText,
		Success:   result.Success,
		Elapsed:   time.Since(start),
		Timestamp: start,
	})
	return result
}

// SetQueryCallback installs an observer for every routed statement.
func (m *Manager) SetQueryCallback(cb QueryCallback) { m.queries.setCallback(cb) }

// QueryLog returns the retained query-log entries, oldest first.
func (m *Manager) QueryLog() []QueryLogEntry { return m.queries.snapshot() }

// Endpoints returns a snapshot of endpoint states.
func (m *Manager) Endpoints() map[string]types.EndpointInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]types.EndpointInfo, len(m.endpoints))
	for name, ep := range m.endpoints {
		out[name] = *ep
	}
	return out
}

// CheckHealth pings every enabled endpoint once, updating health marks.
func (m *Manager) CheckHealth(ctx context.Context) {
	m.mu.RLock()
	names := make([]string, 0, len(m.databases))
	for name := range m.databases {
		names = append(names, name)
	}
	m.mu.RUnlock()

	for _, name := range names {
		db, err := m.Database(name)
		if err != nil {
			continue
		}
		healthy := db.Ping(ctx) == nil
		m.mu.Lock()
		if ep, ok := m.endpoints[name]; ok {
			if ep.Healthy && !healthy {
				m.log.Warnw("endpoint unhealthy", "endpoint", name)
			}
			ep.Healthy = healthy
			ep.LastPing = time.Now()
		}
		m.mu.Unlock()
	}
}

func (m *Manager) healthLoop() {
	defer m.wg.Done()
	ticker := time.NewTicker(m.cfg.HealthCheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			m.CheckHealth(ctx)
			cancel()
		}
	}
}

func (m *Manager) backupLoop() {
	defer m.wg.Done()
	ticker := time.NewTicker(m.cfg.AutoBackupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			if err := m.BackupAll(ctx); err != nil {
				m.log.Errorw("auto-backup failed", "error", err)
			}
			cancel()
		}
	}
}

func (m *Manager) cleanupLoop() {
	defer m.wg.Done()
	ticker := time.NewTicker(m.cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			m.Cleanup(ctx)
			cancel()
		}
	}
}

// BackupAll writes a dated backup per endpoint and prunes old files down
// to the retention cap.
func (m *Manager) BackupAll(ctx context.Context) error {
	dir := m.cfg.BackupDirectory
	if dir == "" {
		dir = "backups"
	}
	stamp := time.Now().UTC().Format(backupTimeLayout)

	m.mu.RLock()
	names := make([]string, 0, len(m.databases))
	for name := range m.databases {
		names = append(names, name)
	}
	m.mu.RUnlock()

	var firstErr error
	for _, name := range names {
		db, err := m.Database(name)
		if err != nil {
			continue
		}
		path := filepath.Join(dir, fmt.Sprintf("%s-%s.db", name, stamp))
		if err := db.Backup(ctx, path); err != nil {
			m.log.Errorw("backup failed", "endpoint", name, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := pruneBackups(dir, name+"-", m.cfg.MaxBackupFiles); err != nil {
			m.log.Warnw("pruning backups failed", "endpoint", name, "error", err)
		}
	}
	return firstErr
}

// Cleanup purges expired cache rows and aged-out log rows on every
// endpoint. The cache table's ttl column holds an absolute unix expiry.
func (m *Manager) Cleanup(ctx context.Context) {
	m.mu.RLock()
	names := make([]string, 0, len(m.databases))
	for name := range m.databases {
		names = append(names, name)
	}
	m.mu.RUnlock()

	now := time.Now().Unix()
	for _, name := range names {
		db, err := m.Database(name)
		if err != nil {
			continue
		}
		if res := db.Query(ctx,
			"DELETE FROM cache WHERE ttl > 0 AND ttl < ?", types.Int(now)); !res.Success {
			m.log.Warnw("cache cleanup failed", "endpoint", name, "error", res.ErrorMessage)
		}
		if m.cfg.LogRetention > 0 {
			horizon := time.Now().UTC().Add(-m.cfg.LogRetention).Format(time.RFC3339Nano)
			if res := db.Query(ctx,
				"DELETE FROM logs WHERE timestamp < ?", types.Text(horizon)); !res.Success {
				m.log.Warnw("log cleanup failed", "endpoint", name, "error", res.ErrorMessage)
			}
		}
	}
}

// pruneBackups keeps only the newest keep files with the prefix. The
// timestamped names sort lexically by age.
func pruneBackups(dir, prefix string, keep int) error {
	if keep < 1 {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	var matches []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), prefix) {
			matches = append(matches, e.Name())
		}
	}
	if len(matches) <= keep {
		return nil
	}
	sort.Strings(matches)
	for _, name := range matches[:len(matches)-keep] {
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}
