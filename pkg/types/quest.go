package types

import (
	"fmt"
	"time"
)

// QuestObjective is one step of a quest: what to do and how many times.
type QuestObjective struct {
	Description string `json:"description"`
	Target      string `json:"target"`
	Count       int    `json:"count"`
}

// Quest is a quest definition aggregate.
type Quest struct {
	ID            string
	Name          string
	Description   string
	Type          string
	Objectives    []QuestObjective
	Rewards       []string
	RequiredLevel int
	Repeatable    bool
	Created       time.Time
}

// Validate enforces the quest invariants: non-empty id, required level of
// at least 1.
func (q *Quest) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("%w: quest id is empty", ErrValidation)
	}
	if q.RequiredLevel < 1 {
		return fmt.Errorf("%w: quest %s required level %d below 1", ErrValidation, q.ID, q.RequiredLevel)
	}
	return nil
}
