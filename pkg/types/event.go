package types

import "time"

// ChangeKind is the operation a ChangeEvent reports.
type ChangeKind string

// Change kinds.
const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
)

// ChangeEvent describes one committed mutation of an aggregate. Events are
// immutable after construction; the Changes map, when present, must not be
// mutated by listeners.
type ChangeEvent struct {
	Kind       ChangeKind
	EntityType string
	EntityID   string
	Timestamp  time.Time
	Changes    map[string]string
}

// NewChangeEvent builds an event stamped with the current time.
func NewChangeEvent(kind ChangeKind, entityType, entityID string) ChangeEvent {
	return ChangeEvent{
		Kind:       kind,
		EntityType: entityType,
		EntityID:   entityID,
		Timestamp:  time.Now().UTC(),
	}
}

// Key returns the entity key the event refers to.
func (e ChangeEvent) Key() EntityKey {
	return EntityKey{Type: e.EntityType, ID: e.EntityID}
}
