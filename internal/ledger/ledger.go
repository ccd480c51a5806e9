// Package ledger tracks per-entity synchronization state. Each tracked
// entity carries a small state machine over the sync states; every
// transition happens under the ledger mutex, so operations on a single
// entity key are totally ordered.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/looplab/fsm"

	"github.com/xiaoliunewbig/fantasydb/pkg/types"
)

// Transition event names.
const (
	eventMarkSave = "mark_save"
	eventMarkLoad = "mark_load"
	eventSyncOK   = "sync_ok"
	eventFail     = "fail"
	eventConflict = "conflict"
)

// newEntityFSM builds the per-entity machine. Re-marking an already
// pending save is a permitted self-transition; everything else follows
// the documented lifecycle.
func newEntityFSM(initial types.SyncState) *fsm.FSM {
	return fsm.NewFSM(
		string(initial),
		fsm.Events{
			{Name: eventMarkSave, Src: []string{
				string(types.StateSynced),
				string(types.StateError),
				string(types.StateConflict),
				string(types.StatePendingSave),
			}, Dst: string(types.StatePendingSave)},
			{Name: eventMarkLoad, Src: []string{
				string(types.StateSynced),
				string(types.StateError),
			}, Dst: string(types.StatePendingLoad)},
			{Name: eventSyncOK, Src: []string{
				string(types.StatePendingSave),
				string(types.StatePendingLoad),
			}, Dst: string(types.StateSynced)},
			{Name: eventFail, Src: []string{
				string(types.StatePendingSave),
				string(types.StatePendingLoad),
			}, Dst: string(types.StateError)},
			{Name: eventConflict, Src: []string{
				string(types.StatePendingSave),
			}, Dst: string(types.StateConflict)},
		},
		fsm.Callbacks{},
	)
}

// Ledger is the sync ledger. The zero value is not usable; call New.
type Ledger struct {
	mu      sync.Mutex
	entries map[types.EntityKey]*fsm.FSM
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{entries: make(map[types.EntityKey]*fsm.FSM)}
}

// MarkPendingSave records a local mutation awaiting persistence. Untracked
// entities enter the ledger directly in pending-save.
func (l *Ledger) MarkPendingSave(key types.EntityKey) error {
	return l.fire(key, eventMarkSave, types.StatePendingSave)
}

// MarkPendingLoad records a read in flight. Untracked entities enter the
// ledger directly in pending-load.
func (l *Ledger) MarkPendingLoad(key types.EntityKey) error {
	return l.fire(key, eventMarkLoad, types.StatePendingLoad)
}

// MarkSynced records a successful save or load.
func (l *Ledger) MarkSynced(key types.EntityKey) error {
	return l.fire(key, eventSyncOK, "")
}

// MarkError records a backend failure for an in-flight save or load.
func (l *Ledger) MarkError(key types.EntityKey) error {
	return l.fire(key, eventFail, "")
}

// MarkConflict records a version conflict detected during a pending save.
func (l *Ledger) MarkConflict(key types.EntityKey) error {
	return l.fire(key, eventConflict, "")
}

// fire applies one transition under the mutex. When the entity is
// untracked and birth is non-empty, the entity is created in that state
// instead of transitioning.
func (l *Ledger) fire(key types.EntityKey, event string, birth types.SyncState) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.entries[key]
	if !ok {
		if birth == "" {
			return fmt.Errorf("%w: %s is not tracked", types.ErrInvalidState, key)
		}
		l.entries[key] = newEntityFSM(birth)
		return nil
	}
	if err := m.Event(context.Background(), event); err != nil {
		// A declared self-transition surfaces as NoTransitionError; the
		// state is unchanged and the mark succeeded.
		var noTransition fsm.NoTransitionError
		if errors.As(err, &noTransition) {
			return nil
		}
		return fmt.Errorf("%w: %s cannot %s from %s", types.ErrInvalidState, key, event, m.Current())
	}
	return nil
}

// State returns the entity's sync state and whether it is tracked.
func (l *Ledger) State(key types.EntityKey) (types.SyncState, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.entries[key]
	if !ok {
		return "", false
	}
	return types.SyncState(m.Current()), true
}

// Forget drops an entity from the ledger, typically after deletion.
func (l *Ledger) Forget(key types.EntityKey) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, key)
}

// PendingSaves returns a sorted snapshot of every entity in pending-save.
func (l *Ledger) PendingSaves() []types.EntityKey {
	return l.inState(types.StatePendingSave)
}

// PendingLoads returns a sorted snapshot of every entity in pending-load.
func (l *Ledger) PendingLoads() []types.EntityKey {
	return l.inState(types.StatePendingLoad)
}

func (l *Ledger) inState(want types.SyncState) []types.EntityKey {
	l.mu.Lock()
	defer l.mu.Unlock()
	var keys []types.EntityKey
	for key, m := range l.entries {
		if types.SyncState(m.Current()) == want {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

// Len reports the number of tracked entities.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
