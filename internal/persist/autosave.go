package persist

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/xiaoliunewbig/fantasydb/pkg/types"
)

// drainTimeout bounds one auto-save sweep.
const drainTimeout = time.Minute

// autoSaver replays pending saves from the ledger on a fixed interval.
type autoSaver struct {
	f *Facade

	mu      sync.Mutex
	stopCh  chan struct{}
	wg      sync.WaitGroup
	running bool
}

func newAutoSaver(f *Facade) *autoSaver {
	return &autoSaver{f: f}
}

func (a *autoSaver) start(interval time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.running {
		return
	}
	a.running = true
	a.stopCh = make(chan struct{})
	a.wg.Add(1)
	go a.loop(interval, a.stopCh)
}

// stop halts the loop and performs one final drain so nothing pending is
// lost. Safe to call when not running.
func (a *autoSaver) stop(ctx context.Context) {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return
	}
	a.running = false
	close(a.stopCh)
	a.mu.Unlock()

	a.wg.Wait()
	a.drain(ctx)
}

func (a *autoSaver) loop(interval time.Duration, stop <-chan struct{}) {
	defer a.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
			a.drain(ctx)
			cancel()
		}
	}
}

// drain replays a save for every pending entity. Entities missing from
// the cache cannot be replayed and are marked errored.
func (a *autoSaver) drain(ctx context.Context) {
	pending := a.f.ledger.PendingSaves()
	if len(pending) == 0 {
		return
	}
	a.f.log.Infow("auto-save drain", "pending", len(pending))
	for _, key := range pending {
		if err := a.replay(ctx, key); err != nil {
			a.f.log.Errorw("auto-save failed", "key", key.String(), "error", err)
		}
	}
}

func (a *autoSaver) replay(ctx context.Context, key types.EntityKey) error {
	v, ok := a.f.cache.Get(key.Type, key.ID)
	if !ok {
		_ = a.f.ledger.MarkError(key)
		return fmt.Errorf("%w: %s evicted before auto-save", types.ErrNotFound, key)
	}
	switch agg := v.(type) {
	case *types.Character:
		return a.f.SaveCharacter(ctx, agg)
	case *types.Item:
		return a.f.SaveItem(ctx, agg)
	case *types.Quest:
		return a.f.SaveQuest(ctx, agg)
	case *types.Level:
		return a.f.SaveLevel(ctx, agg)
	case *types.Skill:
		return a.f.SaveSkill(ctx, agg)
	case *types.GameSave:
		return a.f.SaveGameSave(ctx, agg)
	default:
		_ = a.f.ledger.MarkError(key)
		return fmt.Errorf("%w: cached value for %s has type %T", types.ErrEntityType, key, v)
	}
}

// TriggerAutoSave drains the pending-save set immediately. It is a no-op
// when nothing is pending.
func (f *Facade) TriggerAutoSave(ctx context.Context) {
	f.saver.drain(ctx)
}
