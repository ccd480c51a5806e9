package types

import (
	"fmt"
	"time"
)

// Level is a playable map aggregate.
type Level struct {
	ID          string
	Name        string
	Description string
	Difficulty  float64
	Enemies     []string
	Rewards     []string
	TimeLimit   int // seconds; 0 means unlimited
	Background  string
	Music       string
	Created     time.Time
}

// Validate enforces the level invariants: non-empty id, non-negative
// difficulty.
func (l *Level) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("%w: level id is empty", ErrValidation)
	}
	if l.Difficulty < 0 {
		return fmt.Errorf("%w: level %s difficulty %g is negative", ErrValidation, l.ID, l.Difficulty)
	}
	return nil
}
