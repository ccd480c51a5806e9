package types

import (
	"fmt"
	"time"
)

// Item rarities, lowest to highest.
const (
	RarityCommon    = "common"
	RarityUncommon  = "uncommon"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"
)

// Item is an inventory item aggregate.
type Item struct {
	ID          string
	Name        string
	Type        string
	Rarity      string
	Level       int
	Value       int
	Weight      float64
	Description string
	Effects     []string
	Created     time.Time
}

// Validate enforces the item invariants: non-empty id, non-negative value
// and weight.
func (i *Item) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("%w: item id is empty", ErrValidation)
	}
	if i.Value < 0 {
		return fmt.Errorf("%w: item %s value %d is negative", ErrValidation, i.ID, i.Value)
	}
	if i.Weight < 0 {
		return fmt.Errorf("%w: item %s weight %g is negative", ErrValidation, i.ID, i.Weight)
	}
	return nil
}
