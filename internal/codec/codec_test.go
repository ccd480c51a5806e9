package codec

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaoliunewbig/fantasydb/pkg/types"
)

func newCodec(t *testing.T, compress bool) *Codec {
	t.Helper()
	c, err := New(compress)
	require.NoError(t, err)
	return c
}

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

func TestCharacterRoundTrip(t *testing.T) {
	c := newCodec(t, false)
	in := &types.Character{
		Name:        "Brave Warrior",
		Class:       types.ClassWarrior,
		Level:       15,
		Experience:  2500,
		Health:      120,
		MaxHealth:   120,
		Mana:        30,
		MaxMana:     30,
		Attack:      18,
		Defense:     10,
		Speed:       12,
		MagicAttack: 8,
		Skills:      []types.SkillRef{{ID: "slash", Level: 3}, {ID: "parry", Level: 1}},
		Equipment:   map[string]string{"weapon": "iron-sword", "chest": "leather-armor"},
		LastLogin:   ts("2026-08-29T10:00:00.5Z"),
		Created:     ts("2026-01-01T00:00:00Z"),
	}

	row, err := c.CharacterToRow(in)
	require.NoError(t, err)
	assert.EqualValues(t, 18, row["strength"].AsInt(0))
	assert.EqualValues(t, 12, row["agility"].AsInt(0))
	assert.EqualValues(t, 8, row["intelligence"].AsInt(0))
	assert.Equal(t, in.Name, row["id"].AsText(""))

	out, err := c.CharacterFromRow(row)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestItemRoundTrip(t *testing.T) {
	c := newCodec(t, false)
	in := &types.Item{
		ID:          "flame-sword",
		Name:        "Flame Sword",
		Type:        "weapon",
		Rarity:      types.RarityEpic,
		Level:       20,
		Value:       1500,
		Weight:      4.25,
		Description: "A sword wreathed in fire.",
		Effects:     []string{"burn", "+10 attack"},
		Created:     ts("2026-02-02T12:00:00Z"),
	}
	row, err := c.ItemToRow(in)
	require.NoError(t, err)
	out, err := c.ItemFromRow(row)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestQuestRoundTrip(t *testing.T) {
	c := newCodec(t, false)
	in := &types.Quest{
		ID:          "slay-dragon",
		Name:        "Slay the Dragon",
		Description: "It has a hoard.",
		Type:        "main",
		Objectives: []types.QuestObjective{
			{Description: "Reach the lair", Target: "lair", Count: 1},
			{Description: "Defeat the dragon", Target: "dragon", Count: 1},
		},
		Rewards:       []string{"gold:5000", "item:dragon-scale"},
		RequiredLevel: 30,
		Repeatable:    false,
		Created:       ts("2026-03-03T08:30:00Z"),
	}
	row, err := c.QuestToRow(in)
	require.NoError(t, err)
	out, err := c.QuestFromRow(row)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestLevelRoundTrip(t *testing.T) {
	c := newCodec(t, false)
	in := &types.Level{
		ID:          "dark-forest",
		Name:        "Dark Forest",
		Description: "Watch the roots.",
		Difficulty:  3.5,
		Enemies:     []string{"wolf", "spider"},
		Rewards:     []string{"xp:200"},
		TimeLimit:   600,
		Background:  "forest.png",
		Music:       "forest.ogg",
		Created:     ts("2026-04-04T00:00:00Z"),
	}
	row, err := c.LevelToRow(in)
	require.NoError(t, err)
	out, err := c.LevelFromRow(row)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestSkillRoundTrip(t *testing.T) {
	c := newCodec(t, false)
	in := &types.Skill{
		ID:          "fireball",
		Name:        "Fireball",
		Type:        "magic",
		ManaCost:    12,
		Cooldown:    2.5,
		Power:       40,
		Description: "Hurls a ball of fire.",
		Effects:     []string{"burn"},
		Created:     ts("2026-05-05T00:00:00Z"),
	}
	row, err := c.SkillToRow(in)
	require.NoError(t, err)
	out, err := c.SkillFromRow(row)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestSaveRoundTripWithCompression(t *testing.T) {
	state := strings.Repeat(`{"inventory":["potion","sword"],"hp":120}`, 50)
	in := &types.GameSave{
		Slot:        "slot-1",
		CharacterID: "Brave Warrior",
		Level:       15,
		CurrentMap:  "dark-forest",
		PositionX:   12.5,
		PositionY:   -3.75,
		GameState:   state,
		SaveTime:    ts("2026-08-29T11:00:00Z"),
	}

	for _, compress := range []bool{false, true} {
		c := newCodec(t, compress)
		row, err := c.SaveToRow(in)
		require.NoError(t, err)
		if compress {
			stored := row["game_state"].AsText("")
			assert.True(t, strings.HasPrefix(stored, compressedPrefix))
			assert.Less(t, len(stored), len(state), "compressed payload should shrink")
		}
		out, err := c.SaveFromRow(row)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	}
}

func TestCompressedPayloadReadableWithoutCompression(t *testing.T) {
	writer := newCodec(t, true)
	reader := newCodec(t, false)

	in := &types.GameSave{
		Slot:        "slot-2",
		CharacterID: "Mage",
		Level:       1,
		GameState:   strings.Repeat("abc", 100),
		SaveTime:    ts("2026-08-29T11:00:00Z"),
	}
	row, err := writer.SaveToRow(in)
	require.NoError(t, err)
	out, err := reader.SaveFromRow(row)
	require.NoError(t, err)
	assert.Equal(t, in.GameState, out.GameState)
}

func TestOversizedTextRejected(t *testing.T) {
	c := newCodec(t, false)
	it := &types.Item{
		ID:          "big",
		Description: strings.Repeat("x", types.MaxTextSize+1),
	}
	_, err := c.ItemToRow(it)
	assert.ErrorIs(t, err, types.ErrValueTooLarge)
}

func TestBadStoredDataRejected(t *testing.T) {
	c := newCodec(t, false)

	_, err := c.CharacterFromRow(map[string]types.Value{
		"skills": types.Text("{not json"),
	})
	assert.ErrorIs(t, err, types.ErrInvalidData)

	_, err = c.ItemFromRow(map[string]types.Value{
		"created_time": types.Text("yesterday"),
	})
	assert.ErrorIs(t, err, types.ErrInvalidData)

	_, err = c.SaveFromRow(map[string]types.Value{
		"game_state": types.Text(compressedPrefix + "!!!not-base64"),
	})
	assert.ErrorIs(t, err, types.ErrInvalidData)
}

func TestZeroTimeRoundTrip(t *testing.T) {
	c := newCodec(t, false)
	row, err := c.ItemToRow(&types.Item{ID: "plain"})
	require.NoError(t, err)
	out, err := c.ItemFromRow(row)
	require.NoError(t, err)
	assert.True(t, out.Created.IsZero())
}
