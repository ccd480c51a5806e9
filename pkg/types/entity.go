package types

import "fmt"

// Entity type tags. The set is closed; the facade rejects anything else.
const (
	EntityCharacter = "character"
	EntityItem      = "item"
	EntityQuest     = "quest"
	EntityLevel     = "level"
	EntitySkill     = "skill"
	EntitySave      = "save"
)

// EntityTypes lists the closed entity-type set for enumeration.
var EntityTypes = []string{
	EntityCharacter,
	EntityItem,
	EntityQuest,
	EntityLevel,
	EntitySkill,
	EntitySave,
}

var validEntityTypes = map[string]bool{
	EntityCharacter: true,
	EntityItem:      true,
	EntityQuest:     true,
	EntityLevel:     true,
	EntitySkill:     true,
	EntitySave:      true,
}

// ValidEntityType reports whether t is in the closed entity-type set.
func ValidEntityType(t string) bool { return validEntityTypes[t] }

// EntityKey identifies one aggregate: a closed-set type tag plus a unique
// string id. Both parts are non-empty.
type EntityKey struct {
	Type string
	ID   string
}

// NewEntityKey builds a key, validating both parts.
func NewEntityKey(entityType, id string) (EntityKey, error) {
	if !validEntityTypes[entityType] {
		return EntityKey{}, fmt.Errorf("%w: %q", ErrEntityType, entityType)
	}
	if id == "" {
		return EntityKey{}, ErrInvalidID
	}
	return EntityKey{Type: entityType, ID: id}, nil
}

// String encodes the key as "type:id", the ledger's map key form.
func (k EntityKey) String() string { return k.Type + ":" + k.ID }
