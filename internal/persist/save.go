package persist

import (
	"context"
	"fmt"

	"github.com/xiaoliunewbig/fantasydb/pkg/types"
)

// SaveGameSave writes the save slot through to the backend.
func (f *Facade) SaveGameSave(ctx context.Context, s *types.GameSave) error {
	if s == nil {
		return fmt.Errorf("%w: nil game save", types.ErrInvalidData)
	}
	return saveEntity(ctx, f, types.EntitySave, s.ID(), s.Validate,
		func() (map[string]types.Value, error) { return f.currentCodec().SaveToRow(s) }, s)
}

// SaveGameSaveAsync runs SaveGameSave on a worker.
func (f *Facade) SaveGameSaveAsync(ctx context.Context, s *types.GameSave) *Task {
	return runTask(func() error { return f.SaveGameSave(ctx, s) })
}

// LoadGameSave returns the save slot, consulting the cache first.
func (f *Facade) LoadGameSave(ctx context.Context, slot string) (*types.GameSave, error) {
	return loadEntity(ctx, f, types.EntitySave, slot, f.currentCodec().SaveFromRow)
}

// DeleteGameSave removes the save slot, reporting whether it existed.
func (f *Facade) DeleteGameSave(ctx context.Context, slot string) (bool, error) {
	return deleteEntity(ctx, f, types.EntitySave, slot)
}

// GameSaveExists checks presence without decoding.
func (f *Facade) GameSaveExists(ctx context.Context, slot string) (bool, error) {
	return existsEntity(ctx, f, types.EntitySave, slot)
}

// ListGameSaveSlots returns every save slot, sorted.
func (f *Facade) ListGameSaveSlots(ctx context.Context) ([]string, error) {
	return f.listIDs(ctx, types.EntitySave)
}

// LoadAllGameSaves returns every save slot, decoded.
func (f *Facade) LoadAllGameSaves(ctx context.Context) ([]*types.GameSave, error) {
	rows, err := f.selectRows(ctx, types.TableSaveData, "")
	if err != nil {
		return nil, err
	}
	return loadEntities(f, rows, f.currentCodec().SaveFromRow)
}

// GameSavesByCharacter returns every save slot belonging to one character.
func (f *Facade) GameSavesByCharacter(ctx context.Context, characterID string) ([]*types.GameSave, error) {
	rows, err := f.selectRows(ctx, types.TableSaveData,
		"character_id = ?", types.Text(characterID))
	if err != nil {
		return nil, err
	}
	return loadEntities(f, rows, f.currentCodec().SaveFromRow)
}

// SaveGameSaves writes the batch atomically in one transaction.
func (f *Facade) SaveGameSaves(ctx context.Context, saves []*types.GameSave) error {
	cd := f.currentCodec()
	ids, rows, aggregates, err := encodeBatch(f, saves,
		func(s *types.GameSave) string { return s.ID() },
		func(s *types.GameSave) error { return s.Validate() },
		cd.SaveToRow)
	if err != nil {
		return err
	}
	return f.saveBatch(ctx, types.EntitySave, ids, rows, aggregates)
}
