package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/xiaoliunewbig/fantasydb/pkg/types"
)

// saveEntity is the shared typed save path: validate, encode, write
// through. validate may be nil for types without extra invariants.
func saveEntity(ctx context.Context, f *Facade, entityType, id string, validate func() error, encode func() (map[string]types.Value, error), aggregate any) error {
	if f.validationEnabled() && validate != nil {
		if err := validate(); err != nil {
			f.setErr(err)
			return err
		}
	}
	key, err := types.NewEntityKey(entityType, id)
	if err != nil {
		f.setErr(err)
		return err
	}
	row, err := encode()
	if err != nil {
		f.setErr(err)
		return err
	}
	return f.saveRow(ctx, key, row, aggregate)
}

// loadEntity is the shared typed load path: cache first, then backend.
func loadEntity[T any](ctx context.Context, f *Facade, entityType, id string, decode func(map[string]types.Value) (*T, error)) (*T, error) {
	key, err := types.NewEntityKey(entityType, id)
	if err != nil {
		f.setErr(err)
		return nil, err
	}
	start := time.Now()
	if v, ok := f.cache.Get(key.Type, key.ID); ok {
		f.recordLoad(true, time.Since(start))
		return v.(*T), nil
	}
	row, err := f.loadRow(ctx, key)
	if err != nil {
		f.recordLoad(false, time.Since(start))
		f.setErr(err)
		return nil, err
	}
	out, err := decode(row)
	if err != nil {
		f.recordLoad(false, time.Since(start))
		f.setErr(err)
		return nil, err
	}
	f.cache.Put(key.Type, key.ID, out)
	f.recordLoad(true, time.Since(start))
	return out, nil
}

// loadEntities decodes a projection's rows.
func loadEntities[T any](f *Facade, rows []map[string]types.Value, decode func(map[string]types.Value) (*T, error)) ([]*T, error) {
	out := make([]*T, 0, len(rows))
	for _, row := range rows {
		v, err := decode(row)
		if err != nil {
			f.setErr(err)
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// deleteEntity is the shared typed delete path.
func deleteEntity(ctx context.Context, f *Facade, entityType, id string) (bool, error) {
	key, err := types.NewEntityKey(entityType, id)
	if err != nil {
		f.setErr(err)
		return false, err
	}
	return f.deleteRow(ctx, key)
}

// existsEntity is the shared typed existence check.
func existsEntity(ctx context.Context, f *Facade, entityType, id string) (bool, error) {
	key, err := types.NewEntityKey(entityType, id)
	if err != nil {
		return false, err
	}
	return f.existsRow(ctx, key)
}

// encodeBatch prepares a typed batch for saveBatch.
func encodeBatch[T any](f *Facade, items []*T, id func(*T) string, validate func(*T) error, encode func(*T) (map[string]types.Value, error)) ([]string, []map[string]types.Value, []any, error) {
	ids := make([]string, len(items))
	rows := make([]map[string]types.Value, len(items))
	aggregates := make([]any, len(items))
	for i, it := range items {
		if it == nil {
			return nil, nil, nil, fmt.Errorf("%w: nil aggregate at index %d", types.ErrInvalidData, i)
		}
		if f.validationEnabled() && validate != nil {
			if err := validate(it); err != nil {
				f.setErr(err)
				return nil, nil, nil, err
			}
		}
		row, err := encode(it)
		if err != nil {
			f.setErr(err)
			return nil, nil, nil, err
		}
		ids[i] = id(it)
		rows[i] = row
		aggregates[i] = it
	}
	return ids, rows, aggregates, nil
}
