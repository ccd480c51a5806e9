package types

import (
	"fmt"
	"math"
	"time"
)

// GameSave is one save slot: which character, where they stand, and an
// opaque serialized game state.
type GameSave struct {
	Slot        string
	CharacterID string
	Level       int
	CurrentMap  string
	PositionX   float64
	PositionY   float64
	GameState   string
	SaveTime    time.Time
}

// ID returns the entity id, which is the save slot name.
func (s *GameSave) ID() string { return s.Slot }

// Validate enforces the save invariants: non-empty slot and character id,
// finite position.
func (s *GameSave) Validate() error {
	if s.Slot == "" {
		return fmt.Errorf("%w: save slot is empty", ErrValidation)
	}
	if s.CharacterID == "" {
		return fmt.Errorf("%w: save %s has no character id", ErrValidation, s.Slot)
	}
	if !finite(s.PositionX) || !finite(s.PositionY) {
		return fmt.Errorf("%w: save %s position is not finite", ErrValidation, s.Slot)
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
