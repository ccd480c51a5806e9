package persist

import (
	"context"
	"fmt"

	"github.com/xiaoliunewbig/fantasydb/pkg/types"
)

// SaveItem writes the item through to the backend.
func (f *Facade) SaveItem(ctx context.Context, it *types.Item) error {
	if it == nil {
		return fmt.Errorf("%w: nil item", types.ErrInvalidData)
	}
	return saveEntity(ctx, f, types.EntityItem, it.ID, it.Validate,
		func() (map[string]types.Value, error) { return f.currentCodec().ItemToRow(it) }, it)
}

// SaveItemAsync runs SaveItem on a worker.
func (f *Facade) SaveItemAsync(ctx context.Context, it *types.Item) *Task {
	return runTask(func() error { return f.SaveItem(ctx, it) })
}

// LoadItem returns the item by id, consulting the cache first.
func (f *Facade) LoadItem(ctx context.Context, id string) (*types.Item, error) {
	return loadEntity(ctx, f, types.EntityItem, id, f.currentCodec().ItemFromRow)
}

// DeleteItem removes the item, reporting whether it existed.
func (f *Facade) DeleteItem(ctx context.Context, id string) (bool, error) {
	return deleteEntity(ctx, f, types.EntityItem, id)
}

// ItemExists checks presence without decoding.
func (f *Facade) ItemExists(ctx context.Context, id string) (bool, error) {
	return existsEntity(ctx, f, types.EntityItem, id)
}

// ListItemIDs returns every item id, sorted.
func (f *Facade) ListItemIDs(ctx context.Context) ([]string, error) {
	return f.listIDs(ctx, types.EntityItem)
}

// LoadAllItems returns every item, decoded.
func (f *Facade) LoadAllItems(ctx context.Context) ([]*types.Item, error) {
	rows, err := f.selectRows(ctx, types.TableItems, "")
	if err != nil {
		return nil, err
	}
	return loadEntities(f, rows, f.currentCodec().ItemFromRow)
}

// LoadItemsByType returns the items with the given type tag.
func (f *Facade) LoadItemsByType(ctx context.Context, itemType string) ([]*types.Item, error) {
	rows, err := f.selectRows(ctx, types.TableItems, "type = ?", types.Text(itemType))
	if err != nil {
		return nil, err
	}
	return loadEntities(f, rows, f.currentCodec().ItemFromRow)
}

// LoadItemsByRarity returns the items with the given rarity.
func (f *Facade) LoadItemsByRarity(ctx context.Context, rarity string) ([]*types.Item, error) {
	rows, err := f.selectRows(ctx, types.TableItems, "rarity = ?", types.Text(rarity))
	if err != nil {
		return nil, err
	}
	return loadEntities(f, rows, f.currentCodec().ItemFromRow)
}

// SaveItems writes the batch atomically in one transaction.
func (f *Facade) SaveItems(ctx context.Context, items []*types.Item) error {
	cd := f.currentCodec()
	ids, rows, aggregates, err := encodeBatch(f, items,
		func(i *types.Item) string { return i.ID },
		func(i *types.Item) error { return i.Validate() },
		cd.ItemToRow)
	if err != nil {
		return err
	}
	return f.saveBatch(ctx, types.EntityItem, ids, rows, aggregates)
}
