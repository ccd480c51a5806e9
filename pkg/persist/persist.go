// Package persist is the public entry point for the game-data store. It
// wires the database manager and the persistence facade together behind
// one Store handle while keeping implementation details internal.
//
// Example:
//
//	store, err := persist.Open(ctx, persist.Options{
//	    Manager:     managerConfig,
//	    Persistence: types.DefaultPersistenceConfig(),
//	})
//	if err != nil { ... }
//	defer store.Close(ctx)
//
//	err = store.SaveCharacter(ctx, &types.Character{Name: "Brave Warrior", Level: 1, MaxHealth: 100})
package persist

import (
	"context"

	"github.com/xiaoliunewbig/fantasydb/internal/database"
	"github.com/xiaoliunewbig/fantasydb/internal/persist"
	"github.com/xiaoliunewbig/fantasydb/pkg/types"
)

// Options configures a Store: the endpoints and loops of the database
// manager plus the facade's cache, validation, and auto-save settings.
type Options struct {
	Manager     types.ManagerConfig
	Persistence types.PersistenceConfig
}

// Store owns the full persistence stack. All facade operations are
// promoted onto it; Close shuts the auto-save loop and every endpoint.
type Store struct {
	*persist.Facade
	manager *database.Manager
}

// Open initializes the endpoints, bootstraps the fixed tables, and starts
// the background loops.
func Open(ctx context.Context, opts Options) (*Store, error) {
	manager := database.NewManager(opts.Manager)
	if err := manager.Initialize(ctx); err != nil {
		return nil, err
	}
	facade, err := persist.New(manager, opts.Persistence)
	if err != nil {
		_ = manager.Shutdown()
		return nil, err
	}
	return &Store{Facade: facade, manager: manager}, nil
}

// Manager exposes the database manager for endpoint-level operations such
// as raw queries, routing, and the query log.
func (s *Store) Manager() *database.Manager { return s.manager }

// Close drains pending saves and closes every endpoint.
func (s *Store) Close(ctx context.Context) error {
	if err := s.Facade.Shutdown(ctx); err != nil {
		_ = s.manager.Shutdown()
		return err
	}
	return s.manager.Shutdown()
}
