package persist

import (
	"context"
	"fmt"

	"github.com/xiaoliunewbig/fantasydb/pkg/types"
)

// SaveQuest writes the quest through to the backend.
func (f *Facade) SaveQuest(ctx context.Context, q *types.Quest) error {
	if q == nil {
		return fmt.Errorf("%w: nil quest", types.ErrInvalidData)
	}
	return saveEntity(ctx, f, types.EntityQuest, q.ID, q.Validate,
		func() (map[string]types.Value, error) { return f.currentCodec().QuestToRow(q) }, q)
}

// SaveQuestAsync runs SaveQuest on a worker.
func (f *Facade) SaveQuestAsync(ctx context.Context, q *types.Quest) *Task {
	return runTask(func() error { return f.SaveQuest(ctx, q) })
}

// LoadQuest returns the quest by id, consulting the cache first.
func (f *Facade) LoadQuest(ctx context.Context, id string) (*types.Quest, error) {
	return loadEntity(ctx, f, types.EntityQuest, id, f.currentCodec().QuestFromRow)
}

// DeleteQuest removes the quest, reporting whether it existed.
func (f *Facade) DeleteQuest(ctx context.Context, id string) (bool, error) {
	return deleteEntity(ctx, f, types.EntityQuest, id)
}

// QuestExists checks presence without decoding.
func (f *Facade) QuestExists(ctx context.Context, id string) (bool, error) {
	return existsEntity(ctx, f, types.EntityQuest, id)
}

// ListQuestIDs returns every quest id, sorted.
func (f *Facade) ListQuestIDs(ctx context.Context) ([]string, error) {
	return f.listIDs(ctx, types.EntityQuest)
}

// LoadAllQuests returns every quest, decoded.
func (f *Facade) LoadAllQuests(ctx context.Context) ([]*types.Quest, error) {
	rows, err := f.selectRows(ctx, types.TableQuests, "")
	if err != nil {
		return nil, err
	}
	return loadEntities(f, rows, f.currentCodec().QuestFromRow)
}

// LoadQuestsByLevel returns quests a character of the given level may take.
func (f *Facade) LoadQuestsByLevel(ctx context.Context, level int) ([]*types.Quest, error) {
	rows, err := f.selectRows(ctx, types.TableQuests,
		"required_level <= ?", types.Int(int64(level)))
	if err != nil {
		return nil, err
	}
	return loadEntities(f, rows, f.currentCodec().QuestFromRow)
}

// LoadQuestsByType returns the quests with the given type tag.
func (f *Facade) LoadQuestsByType(ctx context.Context, questType string) ([]*types.Quest, error) {
	rows, err := f.selectRows(ctx, types.TableQuests, "type = ?", types.Text(questType))
	if err != nil {
		return nil, err
	}
	return loadEntities(f, rows, f.currentCodec().QuestFromRow)
}

// SaveQuests writes the batch atomically in one transaction.
func (f *Facade) SaveQuests(ctx context.Context, quests []*types.Quest) error {
	cd := f.currentCodec()
	ids, rows, aggregates, err := encodeBatch(f, quests,
		func(q *types.Quest) string { return q.ID },
		func(q *types.Quest) error { return q.Validate() },
		cd.QuestToRow)
	if err != nil {
		return err
	}
	return f.saveBatch(ctx, types.EntityQuest, ids, rows, aggregates)
}
