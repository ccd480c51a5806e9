package codec

import (
	"fmt"

	"github.com/xiaoliunewbig/fantasydb/pkg/types"
)

// CharacterToRow maps a character onto the characters table. Combat stats
// land in the classic attribute columns: attack as strength, speed as
// agility, magic attack as intelligence.
func (c *Codec) CharacterToRow(ch *types.Character) (map[string]types.Value, error) {
	skills, err := encodeJSON(ch.Skills)
	if err != nil {
		return nil, fmt.Errorf("encoding skills: %w", err)
	}
	equipment, err := encodeJSON(ch.Equipment)
	if err != nil {
		return nil, fmt.Errorf("encoding equipment: %w", err)
	}
	if err := checkText("name", ch.Name); err != nil {
		return nil, err
	}
	return map[string]types.Value{
		"id":              types.Text(ch.Name),
		"name":            types.Text(ch.Name),
		"class":           types.Text(ch.Class),
		"level":           types.Int(int64(ch.Level)),
		"experience":      types.Int(int64(ch.Experience)),
		"health":          types.Int(int64(ch.Health)),
		"max_health":      types.Int(int64(ch.MaxHealth)),
		"mana":            types.Int(int64(ch.Mana)),
		"max_mana":        types.Int(int64(ch.MaxMana)),
		"strength":        types.Int(int64(ch.Attack)),
		"defense":         types.Int(int64(ch.Defense)),
		"agility":         types.Int(int64(ch.Speed)),
		"intelligence":    types.Int(int64(ch.MagicAttack)),
		"skills":          skills,
		"equipment":       equipment,
		"last_login_time": encodeTime(ch.LastLogin),
		"created_time":    encodeTime(ch.Created),
	}, nil
}

// CharacterFromRow rebuilds a character from a characters row.
func (c *Codec) CharacterFromRow(row map[string]types.Value) (*types.Character, error) {
	ch := &types.Character{
		Name:        row["name"].AsText(""),
		Class:       row["class"].AsText(types.ClassWarrior),
		Level:       int(row["level"].AsInt(1)),
		Experience:  int(row["experience"].AsInt(0)),
		Health:      int(row["health"].AsInt(0)),
		MaxHealth:   int(row["max_health"].AsInt(0)),
		Mana:        int(row["mana"].AsInt(0)),
		MaxMana:     int(row["max_mana"].AsInt(0)),
		Attack:      int(row["strength"].AsInt(0)),
		Defense:     int(row["defense"].AsInt(0)),
		Speed:       int(row["agility"].AsInt(0)),
		MagicAttack: int(row["intelligence"].AsInt(0)),
	}
	if ch.Name == "" {
		ch.Name = row["id"].AsText("")
	}
	if err := decodeJSON(row["skills"], &ch.Skills); err != nil {
		return nil, fmt.Errorf("decoding skills: %w", err)
	}
	if err := decodeJSON(row["equipment"], &ch.Equipment); err != nil {
		return nil, fmt.Errorf("decoding equipment: %w", err)
	}
	var err error
	if ch.LastLogin, err = decodeTime(row["last_login_time"]); err != nil {
		return nil, err
	}
	if ch.Created, err = decodeTime(row["created_time"]); err != nil {
		return nil, err
	}
	return ch, nil
}
