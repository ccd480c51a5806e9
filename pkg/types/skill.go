package types

import (
	"fmt"
	"time"
)

// Skill is a learnable ability aggregate.
type Skill struct {
	ID          string
	Name        string
	Type        string
	ManaCost    int
	Cooldown    float64 // seconds
	Power       int
	Description string
	Effects     []string
	Created     time.Time
}

// Validate enforces the skill invariants: non-empty id, non-negative mana
// cost and cooldown.
func (s *Skill) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("%w: skill id is empty", ErrValidation)
	}
	if s.ManaCost < 0 {
		return fmt.Errorf("%w: skill %s mana cost %d is negative", ErrValidation, s.ID, s.ManaCost)
	}
	if s.Cooldown < 0 {
		return fmt.Errorf("%w: skill %s cooldown %g is negative", ErrValidation, s.ID, s.Cooldown)
	}
	return nil
}
