package codec

import (
	"fmt"

	"github.com/xiaoliunewbig/fantasydb/pkg/types"
)

// ItemToRow maps an item onto the items table.
func (c *Codec) ItemToRow(it *types.Item) (map[string]types.Value, error) {
	effects, err := encodeJSON(it.Effects)
	if err != nil {
		return nil, fmt.Errorf("encoding effects: %w", err)
	}
	if err := checkText("description", it.Description); err != nil {
		return nil, err
	}
	return map[string]types.Value{
		"id":           types.Text(it.ID),
		"name":         types.Text(it.Name),
		"type":         types.Text(it.Type),
		"rarity":       types.Text(it.Rarity),
		"level":        types.Int(int64(it.Level)),
		"value":        types.Int(int64(it.Value)),
		"weight":       types.Float(it.Weight),
		"description":  types.Text(it.Description),
		"effects":      effects,
		"created_time": encodeTime(it.Created),
	}, nil
}

// ItemFromRow rebuilds an item from an items row.
func (c *Codec) ItemFromRow(row map[string]types.Value) (*types.Item, error) {
	it := &types.Item{
		ID:          row["id"].AsText(""),
		Name:        row["name"].AsText(""),
		Type:        row["type"].AsText(""),
		Rarity:      row["rarity"].AsText(types.RarityCommon),
		Level:       int(row["level"].AsInt(1)),
		Value:       int(row["value"].AsInt(0)),
		Weight:      row["weight"].AsFloat(0),
		Description: row["description"].AsText(""),
	}
	if err := decodeJSON(row["effects"], &it.Effects); err != nil {
		return nil, fmt.Errorf("decoding effects: %w", err)
	}
	var err error
	if it.Created, err = decodeTime(row["created_time"]); err != nil {
		return nil, err
	}
	return it, nil
}

// QuestToRow maps a quest onto the quests table.
func (c *Codec) QuestToRow(q *types.Quest) (map[string]types.Value, error) {
	objectives, err := encodeJSON(q.Objectives)
	if err != nil {
		return nil, fmt.Errorf("encoding objectives: %w", err)
	}
	rewards, err := encodeJSON(q.Rewards)
	if err != nil {
		return nil, fmt.Errorf("encoding rewards: %w", err)
	}
	if err := checkText("description", q.Description); err != nil {
		return nil, err
	}
	repeatable := int64(0)
	if q.Repeatable {
		repeatable = 1
	}
	return map[string]types.Value{
		"id":             types.Text(q.ID),
		"name":           types.Text(q.Name),
		"description":    types.Text(q.Description),
		"type":           types.Text(q.Type),
		"objectives":     objectives,
		"rewards":        rewards,
		"required_level": types.Int(int64(q.RequiredLevel)),
		"is_repeatable":  types.Int(repeatable),
		"created_time":   encodeTime(q.Created),
	}, nil
}

// QuestFromRow rebuilds a quest from a quests row.
func (c *Codec) QuestFromRow(row map[string]types.Value) (*types.Quest, error) {
	q := &types.Quest{
		ID:            row["id"].AsText(""),
		Name:          row["name"].AsText(""),
		Description:   row["description"].AsText(""),
		Type:          row["type"].AsText(""),
		RequiredLevel: int(row["required_level"].AsInt(1)),
		Repeatable:    row["is_repeatable"].AsBool(false),
	}
	if err := decodeJSON(row["objectives"], &q.Objectives); err != nil {
		return nil, fmt.Errorf("decoding objectives: %w", err)
	}
	if err := decodeJSON(row["rewards"], &q.Rewards); err != nil {
		return nil, fmt.Errorf("decoding rewards: %w", err)
	}
	var err error
	if q.Created, err = decodeTime(row["created_time"]); err != nil {
		return nil, err
	}
	return q, nil
}

// LevelToRow maps a level onto the levels table.
func (c *Codec) LevelToRow(l *types.Level) (map[string]types.Value, error) {
	enemies, err := encodeJSON(l.Enemies)
	if err != nil {
		return nil, fmt.Errorf("encoding enemies: %w", err)
	}
	rewards, err := encodeJSON(l.Rewards)
	if err != nil {
		return nil, fmt.Errorf("encoding rewards: %w", err)
	}
	if err := checkText("description", l.Description); err != nil {
		return nil, err
	}
	return map[string]types.Value{
		"id":           types.Text(l.ID),
		"name":         types.Text(l.Name),
		"description":  types.Text(l.Description),
		"difficulty":   types.Float(l.Difficulty),
		"enemies":      enemies,
		"rewards":      rewards,
		"time_limit":   types.Int(int64(l.TimeLimit)),
		"background":   types.Text(l.Background),
		"music":        types.Text(l.Music),
		"created_time": encodeTime(l.Created),
	}, nil
}

// LevelFromRow rebuilds a level from a levels row.
func (c *Codec) LevelFromRow(row map[string]types.Value) (*types.Level, error) {
	l := &types.Level{
		ID:          row["id"].AsText(""),
		Name:        row["name"].AsText(""),
		Description: row["description"].AsText(""),
		Difficulty:  row["difficulty"].AsFloat(0),
		TimeLimit:   int(row["time_limit"].AsInt(0)),
		Background:  row["background"].AsText(""),
		Music:       row["music"].AsText(""),
	}
	if err := decodeJSON(row["enemies"], &l.Enemies); err != nil {
		return nil, fmt.Errorf("decoding enemies: %w", err)
	}
	if err := decodeJSON(row["rewards"], &l.Rewards); err != nil {
		return nil, fmt.Errorf("decoding rewards: %w", err)
	}
	var err error
	if l.Created, err = decodeTime(row["created_time"]); err != nil {
		return nil, err
	}
	return l, nil
}

// SkillToRow maps a skill onto the skills table.
func (c *Codec) SkillToRow(s *types.Skill) (map[string]types.Value, error) {
	effects, err := encodeJSON(s.Effects)
	if err != nil {
		return nil, fmt.Errorf("encoding effects: %w", err)
	}
	if err := checkText("description", s.Description); err != nil {
		return nil, err
	}
	return map[string]types.Value{
		"id":           types.Text(s.ID),
		"name":         types.Text(s.Name),
		"type":         types.Text(s.Type),
		"mana_cost":    types.Int(int64(s.ManaCost)),
		"cooldown":     types.Float(s.Cooldown),
		"power":        types.Int(int64(s.Power)),
		"description":  types.Text(s.Description),
		"effects":      effects,
		"created_time": encodeTime(s.Created),
	}, nil
}

// SkillFromRow rebuilds a skill from a skills row.
func (c *Codec) SkillFromRow(row map[string]types.Value) (*types.Skill, error) {
	s := &types.Skill{
		ID:          row["id"].AsText(""),
		Name:        row["name"].AsText(""),
		Type:        row["type"].AsText(""),
		ManaCost:    int(row["mana_cost"].AsInt(0)),
		Cooldown:    row["cooldown"].AsFloat(0),
		Power:       int(row["power"].AsInt(0)),
		Description: row["description"].AsText(""),
	}
	if err := decodeJSON(row["effects"], &s.Effects); err != nil {
		return nil, fmt.Errorf("decoding effects: %w", err)
	}
	var err error
	if s.Created, err = decodeTime(row["created_time"]); err != nil {
		return nil, err
	}
	return s, nil
}

// SaveToRow maps a game save onto the save_data table. The opaque state
// payload is compressed when the codec is built with compression on.
func (c *Codec) SaveToRow(s *types.GameSave) (map[string]types.Value, error) {
	state := c.encodeState(s.GameState)
	if err := checkText("game_state", state); err != nil {
		return nil, err
	}
	return map[string]types.Value{
		"save_slot":    types.Text(s.Slot),
		"character_id": types.Text(s.CharacterID),
		"level":        types.Int(int64(s.Level)),
		"current_map":  types.Text(s.CurrentMap),
		"position_x":   types.Float(s.PositionX),
		"position_y":   types.Float(s.PositionY),
		"game_state":   types.Text(state),
		"save_time":    encodeTime(s.SaveTime),
	}, nil
}

// SaveFromRow rebuilds a game save from a save_data row.
func (c *Codec) SaveFromRow(row map[string]types.Value) (*types.GameSave, error) {
	state, err := c.decodeState(row["game_state"].AsText(""))
	if err != nil {
		return nil, err
	}
	s := &types.GameSave{
		Slot:        row["save_slot"].AsText(""),
		CharacterID: row["character_id"].AsText(""),
		Level:       int(row["level"].AsInt(1)),
		CurrentMap:  row["current_map"].AsText(""),
		PositionX:   row["position_x"].AsFloat(0),
		PositionY:   row["position_y"].AsFloat(0),
		GameState:   state,
	}
	if s.SaveTime, err = decodeTime(row["save_time"]); err != nil {
		return nil, err
	}
	return s, nil
}
