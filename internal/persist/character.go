package persist

import (
	"context"
	"fmt"

	"github.com/xiaoliunewbig/fantasydb/pkg/types"
)

// SaveCharacter validates, encodes, and writes the character through to
// the backend, then caches it and publishes the change.
func (f *Facade) SaveCharacter(ctx context.Context, ch *types.Character) error {
	if ch == nil {
		return fmt.Errorf("%w: nil character", types.ErrInvalidData)
	}
	return saveEntity(ctx, f, types.EntityCharacter, ch.ID(), ch.Validate,
		func() (map[string]types.Value, error) { return f.currentCodec().CharacterToRow(ch) }, ch)
}

// SaveCharacterAsync runs SaveCharacter on a worker.
func (f *Facade) SaveCharacterAsync(ctx context.Context, ch *types.Character) *Task {
	return runTask(func() error { return f.SaveCharacter(ctx, ch) })
}

// LoadCharacter returns the character by name, consulting the cache first.
func (f *Facade) LoadCharacter(ctx context.Context, name string) (*types.Character, error) {
	return loadEntity(ctx, f, types.EntityCharacter, name, f.currentCodec().CharacterFromRow)
}

// LoadCharacterAsync runs LoadCharacter on a worker; the result lands in
// the cache for a later synchronous load.
func (f *Facade) LoadCharacterAsync(ctx context.Context, name string) *Task {
	return runTask(func() error {
		_, err := f.LoadCharacter(ctx, name)
		return err
	})
}

// DeleteCharacter removes the character, reporting whether it existed.
func (f *Facade) DeleteCharacter(ctx context.Context, name string) (bool, error) {
	return deleteEntity(ctx, f, types.EntityCharacter, name)
}

// CharacterExists checks presence without decoding.
func (f *Facade) CharacterExists(ctx context.Context, name string) (bool, error) {
	return existsEntity(ctx, f, types.EntityCharacter, name)
}

// ListCharacterIDs returns every character name, sorted.
func (f *Facade) ListCharacterIDs(ctx context.Context) ([]string, error) {
	return f.listIDs(ctx, types.EntityCharacter)
}

// LoadAllCharacters returns every character, decoded.
func (f *Facade) LoadAllCharacters(ctx context.Context) ([]*types.Character, error) {
	rows, err := f.selectRows(ctx, types.TableCharacters, "")
	if err != nil {
		return nil, err
	}
	return loadEntities(f, rows, f.currentCodec().CharacterFromRow)
}

// SaveCharacters writes the batch atomically in one transaction.
func (f *Facade) SaveCharacters(ctx context.Context, chars []*types.Character) error {
	cd := f.currentCodec()
	ids, rows, aggregates, err := encodeBatch(f, chars,
		func(c *types.Character) string { return c.ID() },
		func(c *types.Character) error { return c.Validate() },
		cd.CharacterToRow)
	if err != nil {
		return err
	}
	return f.saveBatch(ctx, types.EntityCharacter, ids, rows, aggregates)
}
