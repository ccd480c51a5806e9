// Package persist implements the persistence facade: the write-through
// path from domain aggregates to the relational backend, fronted by the
// object cache, tracked by the sync ledger, and announced on the change
// bus. It is the error boundary for callers; no backend failure escapes
// as anything but a typed error.
package persist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xiaoliunewbig/fantasydb/internal/cache"
	"github.com/xiaoliunewbig/fantasydb/internal/codec"
	"github.com/xiaoliunewbig/fantasydb/internal/database"
	"github.com/xiaoliunewbig/fantasydb/internal/events"
	"github.com/xiaoliunewbig/fantasydb/internal/ledger"
	"github.com/xiaoliunewbig/fantasydb/internal/logger"
	"github.com/xiaoliunewbig/fantasydb/pkg/types"
)

// idColumns maps each backing table to its primary key column.
var idColumns = map[string]string{
	types.TableCharacters: "id",
	types.TableItems:      "id",
	types.TableQuests:     "id",
	types.TableLevels:     "id",
	types.TableSkills:     "id",
	types.TableSaveData:   "save_slot",
}

// Facade is the public persistence surface. All methods are safe for
// concurrent use. Lock order: facade mutex, then ledger, then cache; the
// facade never holds its mutex across backend I/O.
type Facade struct {
	manager *database.Manager
	codec   *codec.Codec
	cache   *cache.Cache
	ledger  *ledger.Ledger
	bus     *events.Bus

	mu            sync.Mutex
	cfg           types.PersistenceConfig
	stats         types.PersistenceStats
	totalSaveTime time.Duration
	totalLoadTime time.Duration
	lastErr       error

	saver *autoSaver
	log   *zap.SugaredLogger
}

// New builds a facade over an initialized manager and starts the auto-save
// loop when enabled. The caller keeps ownership of the manager's lifecycle.
func New(manager *database.Manager, cfg types.PersistenceConfig) (*Facade, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cd, err := codec.New(cfg.CompressionEnabled)
	if err != nil {
		return nil, err
	}
	f := &Facade{
		manager: manager,
		codec:   cd,
		cache:   cache.New(cfg.MaxCacheSizePerType),
		ledger:  ledger.New(),
		bus:     events.NewBus(),
		cfg:     cfg,
		log:     logger.For("persist"),
	}
	f.saver = newAutoSaver(f)
	if cfg.AutoSaveEnabled {
		f.saver.start(cfg.AutoSaveInterval)
	}
	return f, nil
}

// Shutdown stops the auto-save loop, performing one final drain so no
// pending save is lost. The manager is left to its owner.
func (f *Facade) Shutdown(ctx context.Context) error {
	f.saver.stop(ctx)
	f.log.Infow("persistence facade stopped")
	return nil
}

// Bus exposes the change-event bus for subscribers.
func (f *Facade) Bus() *events.Bus { return f.bus }

// Subscribe registers a change listener.
func (f *Facade) Subscribe(fn events.Listener) events.Subscription {
	return f.bus.Subscribe(fn)
}

// Unsubscribe removes a change listener.
func (f *Facade) Unsubscribe(sub events.Subscription) { f.bus.Unsubscribe(sub) }

// Config returns the active configuration.
func (f *Facade) Config() types.PersistenceConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cfg
}

// ApplyConfig swaps the configuration, resizing the cache and re-arming
// the auto-save loop to the new interval.
func (f *Facade) ApplyConfig(cfg types.PersistenceConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	cd, err := codec.New(cfg.CompressionEnabled)
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.cfg = cfg
	f.codec = cd
	f.mu.Unlock()

	f.cache.Resize(cfg.MaxCacheSizePerType)
	f.saver.stop(context.Background())
	if cfg.AutoSaveEnabled {
		f.saver.start(cfg.AutoSaveInterval)
	}
	f.log.Infow("configuration applied",
		"auto_save", cfg.AutoSaveEnabled, "interval", cfg.AutoSaveInterval)
	return nil
}

// LastError returns the most recent operation failure, or nil.
func (f *Facade) LastError() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// Stats returns a snapshot of the counters with averages filled in.
func (f *Facade) Stats() types.PersistenceStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.stats
	out.CacheHits, out.CacheMisses = f.cache.Counters()
	if f.stats.TotalSaves > 0 {
		out.AvgSaveTime = f.totalSaveTime / time.Duration(f.stats.TotalSaves)
	}
	if f.stats.TotalLoads > 0 {
		out.AvgLoadTime = f.totalLoadTime / time.Duration(f.stats.TotalLoads)
	}
	return out
}

// ResetStats zeroes every counter.
func (f *Facade) ResetStats() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stats = types.PersistenceStats{}
	f.totalSaveTime = 0
	f.totalLoadTime = 0
	f.lastErr = nil
}

// SyncState reports the ledger state for one entity.
func (f *Facade) SyncState(entityType, id string) (types.SyncState, bool) {
	key, err := types.NewEntityKey(entityType, id)
	if err != nil {
		return "", false
	}
	return f.ledger.State(key)
}

// MarkDirty flags a cached entity as pending save so the auto-save loop
// picks it up. The entity must be in the cache.
func (f *Facade) MarkDirty(entityType, id string) error {
	key, err := types.NewEntityKey(entityType, id)
	if err != nil {
		return err
	}
	if !f.cache.Contains(entityType, id) {
		return fmt.Errorf("%w: %s is not cached", types.ErrNotFound, key)
	}
	return f.ledger.MarkPendingSave(key)
}

// Cache management passthroughs.

// ClearCache drops every cached aggregate.
func (f *Facade) ClearCache() { f.cache.Clear() }

// ClearCacheType drops every cached aggregate of one type.
func (f *Facade) ClearCacheType(entityType string) { f.cache.ClearType(entityType) }

// CacheSize reports the total number of cached aggregates.
func (f *Facade) CacheSize() int { return f.cache.Size() }

// CacheSizeForType reports the cached count for one type.
func (f *Facade) CacheSizeForType(entityType string) int { return f.cache.SizeForType(entityType) }

// BackupAll writes a dated backup of every endpoint.
func (f *Facade) BackupAll(ctx context.Context) error {
	if err := f.manager.BackupAll(ctx); err != nil {
		f.setErr(err)
		return err
	}
	return nil
}

// Restore replays a backup file into the named endpoint and drops the
// cache, which may now be stale.
func (f *Facade) Restore(ctx context.Context, endpoint, path string) error {
	db, err := f.manager.Database(endpoint)
	if err != nil {
		f.setErr(err)
		return err
	}
	if err := db.Restore(ctx, path); err != nil {
		f.setErr(err)
		return err
	}
	f.cache.Clear()
	return nil
}

func (f *Facade) setErr(err error) {
	f.mu.Lock()
	f.lastErr = err
	f.mu.Unlock()
}

func (f *Facade) master() (*database.Database, error) {
	return f.manager.DatabaseFor(types.RoleMaster)
}

func (f *Facade) validationEnabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cfg.ValidationEnabled
}

func (f *Facade) currentCodec() *codec.Codec {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.codec
}

// recordSave folds one save attempt into the counters.
func (f *Facade) recordSave(ok bool, elapsed time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stats.TotalSaves++
	if ok {
		f.stats.SuccessfulSaves++
		f.stats.LastSaveTime = time.Now()
	} else {
		f.stats.FailedSaves++
	}
	f.totalSaveTime += elapsed
}

// recordLoad folds one load attempt into the counters.
func (f *Facade) recordLoad(ok bool, elapsed time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stats.TotalLoads++
	if ok {
		f.stats.SuccessfulLoads++
		f.stats.LastLoadTime = time.Now()
	} else {
		f.stats.FailedLoads++
	}
	f.totalLoadTime += elapsed
}

// saveRow is the shared write-through path: mark pending, upsert, then on
// success cache the aggregate, mark synced, and publish the change.
func (f *Facade) saveRow(ctx context.Context, key types.EntityKey, row map[string]types.Value, aggregate any) error {
	start := time.Now()
	err := f.saveRowInner(ctx, key, row, aggregate)
	f.recordSave(err == nil, time.Since(start))
	if err != nil {
		f.setErr(err)
	}
	return err
}

func (f *Facade) saveRowInner(ctx context.Context, key types.EntityKey, row map[string]types.Value, aggregate any) error {
	db, err := f.master()
	if err != nil {
		return err
	}
	if err := f.ledger.MarkPendingSave(key); err != nil {
		return err
	}

	table := types.TableForEntity[key.Type]
	existed, err := f.rowExists(ctx, db, table, key.ID)
	if err != nil {
		_ = f.ledger.MarkError(key)
		return err
	}
	if _, err := db.Insert(ctx, table, row); err != nil {
		_ = f.ledger.MarkError(key)
		return fmt.Errorf("saving %s: %w", key, err)
	}

	f.cache.Put(key.Type, key.ID, aggregate)
	if err := f.ledger.MarkSynced(key); err != nil {
		f.log.Warnw("ledger desync", "key", key.String(), "error", err)
	}
	kind := types.ChangeCreated
	if existed {
		kind = types.ChangeUpdated
	}
	f.bus.Publish(types.NewChangeEvent(kind, key.Type, key.ID))
	return nil
}

// retryRead runs an idempotent read, retrying once when the failure is a
// timeout. Writes never retry.
func retryRead(run func() types.QueryResult) types.QueryResult {
	result := run()
	if !result.Success && errors.Is(result.Err, types.ErrTimeout) {
		result = run()
	}
	return result
}

// loadRow fetches one row by primary key, tracking the ledger transitions.
// A zero-row result is ErrNotFound.
func (f *Facade) loadRow(ctx context.Context, key types.EntityKey) (map[string]types.Value, error) {
	db, err := f.master()
	if err != nil {
		return nil, err
	}
	table := types.TableForEntity[key.Type]
	if err := f.ledger.MarkPendingLoad(key); err != nil {
		// Entity already tracked in a state that forbids pending-load;
		// the read itself is still fine.
		f.log.Debugw("load on tracked entity", "key", key.String(), "state", stateOf(f.ledger, key))
	}

	result := retryRead(func() types.QueryResult {
		return db.Select(ctx, table, nil, idColumns[table]+" = ?", types.Text(key.ID))
	})
	if !result.Success {
		_ = f.ledger.MarkError(key)
		return nil, fmt.Errorf("loading %s: %s", key, result.ErrorMessage)
	}
	if result.Empty() {
		f.ledger.Forget(key)
		return nil, fmt.Errorf("%w: %s", types.ErrNotFound, key)
	}
	if err := f.ledger.MarkSynced(key); err != nil {
		f.log.Debugw("ledger state kept", "key", key.String())
	}
	return result.RowMap(0), nil
}

func stateOf(l *ledger.Ledger, key types.EntityKey) types.SyncState {
	s, _ := l.State(key)
	return s
}

// deleteRow removes one row, the cache entry, and the ledger entry, then
// publishes the deletion. Deleting an absent entity returns false, nil.
func (f *Facade) deleteRow(ctx context.Context, key types.EntityKey) (bool, error) {
	db, err := f.master()
	if err != nil {
		f.setErr(err)
		return false, err
	}
	table := types.TableForEntity[key.Type]
	deleted, err := db.Delete(ctx, table,
		fmt.Sprintf("%s = %s", idColumns[table], types.Text(key.ID).SQLLiteral()))
	if err != nil {
		f.setErr(err)
		return false, fmt.Errorf("deleting %s: %w", key, err)
	}
	f.cache.Remove(key.Type, key.ID)
	f.ledger.Forget(key)
	if deleted {
		f.bus.Publish(types.NewChangeEvent(types.ChangeDeleted, key.Type, key.ID))
	}
	return deleted, nil
}

// existsRow checks presence, consulting the cache first.
func (f *Facade) existsRow(ctx context.Context, key types.EntityKey) (bool, error) {
	if f.cache.Contains(key.Type, key.ID) {
		return true, nil
	}
	db, err := f.master()
	if err != nil {
		f.setErr(err)
		return false, err
	}
	return f.rowExists(ctx, db, types.TableForEntity[key.Type], key.ID)
}

func (f *Facade) rowExists(ctx context.Context, db *database.Database, table, id string) (bool, error) {
	result := retryRead(func() types.QueryResult {
		return db.Select(ctx, table, []string{idColumns[table]},
			idColumns[table]+" = ?", types.Text(id))
	})
	if !result.Success {
		return false, errors.New(result.ErrorMessage)
	}
	return !result.Empty(), nil
}

// listIDs returns every primary key of the table, sorted.
func (f *Facade) listIDs(ctx context.Context, entityType string) ([]string, error) {
	db, err := f.master()
	if err != nil {
		f.setErr(err)
		return nil, err
	}
	table := types.TableForEntity[entityType]
	col := idColumns[table]
	result := retryRead(func() types.QueryResult {
		return db.Query(ctx, fmt.Sprintf("SELECT %s FROM %s ORDER BY %s", col, table, col))
	})
	if !result.Success {
		err := errors.New(result.ErrorMessage)
		f.setErr(err)
		return nil, err
	}
	ids := make([]string, 0, len(result.Rows))
	for i := range result.Rows {
		ids = append(ids, result.Value(i, col).AsText(""))
	}
	return ids, nil
}

// selectRows runs a read-only projection returning raw row maps.
func (f *Facade) selectRows(ctx context.Context, table, where string, params ...types.Value) ([]map[string]types.Value, error) {
	db, err := f.master()
	if err != nil {
		f.setErr(err)
		return nil, err
	}
	result := retryRead(func() types.QueryResult {
		return db.Select(ctx, table, nil, where, params...)
	})
	if !result.Success {
		err := errors.New(result.ErrorMessage)
		f.setErr(err)
		return nil, err
	}
	rows := make([]map[string]types.Value, 0, len(result.Rows))
	for i := range result.Rows {
		rows = append(rows, result.RowMap(i))
	}
	return rows, nil
}

// saveBatch writes every row in one transaction, then applies cache,
// ledger, and event updates post-commit.
func (f *Facade) saveBatch(ctx context.Context, entityType string, ids []string, rows []map[string]types.Value, aggregates []any) error {
	start := time.Now()
	err := f.saveBatchInner(ctx, entityType, ids, rows, aggregates)
	elapsed := time.Since(start)
	for range ids {
		f.recordSave(err == nil, elapsed/time.Duration(max(len(ids), 1)))
	}
	if err != nil {
		f.setErr(err)
	}
	return err
}

func (f *Facade) saveBatchInner(ctx context.Context, entityType string, ids []string, rows []map[string]types.Value, aggregates []any) error {
	if len(ids) == 0 {
		return nil
	}
	db, err := f.master()
	if err != nil {
		return err
	}
	table := types.TableForEntity[entityType]

	keys := make([]types.EntityKey, len(ids))
	existed := make([]bool, len(ids))
	for i, id := range ids {
		key, err := types.NewEntityKey(entityType, id)
		if err != nil {
			return err
		}
		keys[i] = key
		if existed[i], err = f.rowExists(ctx, db, table, id); err != nil {
			return err
		}
		if err := f.ledger.MarkPendingSave(key); err != nil {
			return err
		}
	}

	if err := db.InsertBatch(ctx, table, rows); err != nil {
		for _, key := range keys {
			_ = f.ledger.MarkError(key)
		}
		return fmt.Errorf("batch saving %s: %w", entityType, err)
	}

	for i, key := range keys {
		f.cache.Put(key.Type, key.ID, aggregates[i])
		if err := f.ledger.MarkSynced(key); err != nil {
			f.log.Warnw("ledger desync", "key", key.String(), "error", err)
		}
	}
	for i, key := range keys {
		kind := types.ChangeCreated
		if existed[i] {
			kind = types.ChangeUpdated
		}
		f.bus.Publish(types.NewChangeEvent(kind, key.Type, key.ID))
	}
	return nil
}
