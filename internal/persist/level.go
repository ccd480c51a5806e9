package persist

import (
	"context"
	"fmt"

	"github.com/xiaoliunewbig/fantasydb/pkg/types"
)

// SaveLevel writes the level through to the backend.
func (f *Facade) SaveLevel(ctx context.Context, l *types.Level) error {
	if l == nil {
		return fmt.Errorf("%w: nil level", types.ErrInvalidData)
	}
	return saveEntity(ctx, f, types.EntityLevel, l.ID, l.Validate,
		func() (map[string]types.Value, error) { return f.currentCodec().LevelToRow(l) }, l)
}

// SaveLevelAsync runs SaveLevel on a worker.
func (f *Facade) SaveLevelAsync(ctx context.Context, l *types.Level) *Task {
	return runTask(func() error { return f.SaveLevel(ctx, l) })
}

// LoadLevel returns the level by id, consulting the cache first.
func (f *Facade) LoadLevel(ctx context.Context, id string) (*types.Level, error) {
	return loadEntity(ctx, f, types.EntityLevel, id, f.currentCodec().LevelFromRow)
}

// DeleteLevel removes the level, reporting whether it existed.
func (f *Facade) DeleteLevel(ctx context.Context, id string) (bool, error) {
	return deleteEntity(ctx, f, types.EntityLevel, id)
}

// LevelExists checks presence without decoding.
func (f *Facade) LevelExists(ctx context.Context, id string) (bool, error) {
	return existsEntity(ctx, f, types.EntityLevel, id)
}

// ListLevelIDs returns every level id, sorted.
func (f *Facade) ListLevelIDs(ctx context.Context) ([]string, error) {
	return f.listIDs(ctx, types.EntityLevel)
}

// LoadAllLevels returns every level, decoded.
func (f *Facade) LoadAllLevels(ctx context.Context) ([]*types.Level, error) {
	rows, err := f.selectRows(ctx, types.TableLevels, "")
	if err != nil {
		return nil, err
	}
	return loadEntities(f, rows, f.currentCodec().LevelFromRow)
}

// LoadLevelsByDifficulty returns levels at or below the given difficulty.
func (f *Facade) LoadLevelsByDifficulty(ctx context.Context, maxDifficulty float64) ([]*types.Level, error) {
	rows, err := f.selectRows(ctx, types.TableLevels,
		"difficulty <= ?", types.Float(maxDifficulty))
	if err != nil {
		return nil, err
	}
	return loadEntities(f, rows, f.currentCodec().LevelFromRow)
}

// SaveLevels writes the batch atomically in one transaction.
func (f *Facade) SaveLevels(ctx context.Context, levels []*types.Level) error {
	cd := f.currentCodec()
	ids, rows, aggregates, err := encodeBatch(f, levels,
		func(l *types.Level) string { return l.ID },
		func(l *types.Level) error { return l.Validate() },
		cd.LevelToRow)
	if err != nil {
		return err
	}
	return f.saveBatch(ctx, types.EntityLevel, ids, rows, aggregates)
}
