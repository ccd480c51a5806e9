package types

// SyncState is the ledger's per-entity status used by the auto-save loop.
type SyncState string

// Sync states. An entity is born synced on successful load, moves to
// pending-save on local mutation, back to synced on successful save, and
// to error on backend failure. Conflict is reserved for version-stamp
// mismatches; the core never enters it because aggregates carry no stamp.
const (
	StateSynced      SyncState = "synced"
	StatePendingSave SyncState = "pending_save"
	StatePendingLoad SyncState = "pending_load"
	StateConflict    SyncState = "conflict"
	StateError       SyncState = "error"
)
