package types

import (
	"fmt"
	"time"
)

// Character classes.
const (
	ClassWarrior  = "warrior"
	ClassMage     = "mage"
	ClassAssassin = "assassin"
)

// SkillRef is one learned skill on a character: the skill id plus the rank
// the character has trained it to.
type SkillRef struct {
	ID    string `json:"id"`
	Level int    `json:"level"`
}

// Character is a playable character aggregate. The name doubles as the
// entity id; there is no separate identifier.
type Character struct {
	Name        string
	Class       string
	Level       int
	Experience  int
	Health      int
	MaxHealth   int
	Mana        int
	MaxMana     int
	Attack      int
	Defense     int
	Speed       int
	MagicAttack int
	Skills      []SkillRef
	Equipment   map[string]string // slot name -> item id
	LastLogin   time.Time
	Created     time.Time
}

// ID returns the entity id, which is the character name.
func (c *Character) ID() string { return c.Name }

// Validate enforces the character invariants: non-empty name, level within
// [1,100], health within [0, max health], mana within [0, max mana].
func (c *Character) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: character name is empty", ErrValidation)
	}
	if c.Level < 1 || c.Level > 100 {
		return fmt.Errorf("%w: character level %d outside [1,100]", ErrValidation, c.Level)
	}
	if c.Health < 0 || c.Health > c.MaxHealth {
		return fmt.Errorf("%w: health %d outside [0,%d]", ErrValidation, c.Health, c.MaxHealth)
	}
	if c.Mana < 0 || c.Mana > c.MaxMana {
		return fmt.Errorf("%w: mana %d outside [0,%d]", ErrValidation, c.Mana, c.MaxMana)
	}
	return nil
}
