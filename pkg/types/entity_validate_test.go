package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validCharacter() *Character {
	return &Character{
		Name: "Brave Warrior", Class: ClassWarrior,
		Level: 15, Experience: 2500,
		Health: 120, MaxHealth: 120, Mana: 30, MaxMana: 30,
		Attack: 18, Defense: 10, Speed: 12, MagicAttack: 8,
	}
}

func TestCharacterValidate(t *testing.T) {
	assert.NoError(t, validCharacter().Validate())

	c := validCharacter()
	c.Name = ""
	assert.ErrorIs(t, c.Validate(), ErrValidation)

	c = validCharacter()
	c.Level = 0
	assert.ErrorIs(t, c.Validate(), ErrValidation)

	c = validCharacter()
	c.Level = 101
	assert.ErrorIs(t, c.Validate(), ErrValidation)

	c = validCharacter()
	c.Health = c.MaxHealth + 1
	assert.ErrorIs(t, c.Validate(), ErrValidation)

	c = validCharacter()
	c.Mana = -1
	assert.ErrorIs(t, c.Validate(), ErrValidation)
}

func TestItemValidate(t *testing.T) {
	i := &Item{ID: "iron_sword", Value: 10, Weight: 3.5}
	assert.NoError(t, i.Validate())
	assert.ErrorIs(t, (&Item{Value: 1}).Validate(), ErrValidation)
	assert.ErrorIs(t, (&Item{ID: "x", Value: -1}).Validate(), ErrValidation)
	assert.ErrorIs(t, (&Item{ID: "x", Weight: -0.1}).Validate(), ErrValidation)
}

func TestQuestValidate(t *testing.T) {
	assert.NoError(t, (&Quest{ID: "q1", RequiredLevel: 1}).Validate())
	assert.ErrorIs(t, (&Quest{RequiredLevel: 1}).Validate(), ErrValidation)
	assert.ErrorIs(t, (&Quest{ID: "q1"}).Validate(), ErrValidation)
}

func TestLevelValidate(t *testing.T) {
	assert.NoError(t, (&Level{ID: "forest", Difficulty: 0}).Validate())
	assert.ErrorIs(t, (&Level{Difficulty: 1}).Validate(), ErrValidation)
	assert.ErrorIs(t, (&Level{ID: "forest", Difficulty: -1}).Validate(), ErrValidation)
}

func TestSkillValidate(t *testing.T) {
	assert.NoError(t, (&Skill{ID: "fireball", ManaCost: 5, Cooldown: 1.5}).Validate())
	assert.ErrorIs(t, (&Skill{}).Validate(), ErrValidation)
	assert.ErrorIs(t, (&Skill{ID: "s", ManaCost: -1}).Validate(), ErrValidation)
}

func TestGameSaveValidate(t *testing.T) {
	s := &GameSave{Slot: "save_slot_1", CharacterID: "Brave Warrior", PositionX: 150.5, PositionY: 200.3}
	assert.NoError(t, s.Validate())
	assert.ErrorIs(t, (&GameSave{CharacterID: "c"}).Validate(), ErrValidation)
	assert.ErrorIs(t, (&GameSave{Slot: "s"}).Validate(), ErrValidation)

	s.PositionX = math.NaN()
	assert.ErrorIs(t, s.Validate(), ErrValidation)
	s.PositionX = math.Inf(1)
	assert.ErrorIs(t, s.Validate(), ErrValidation)
}
