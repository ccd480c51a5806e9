package persist

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaoliunewbig/fantasydb/internal/database"
	"github.com/xiaoliunewbig/fantasydb/pkg/types"
)

func testManager(t *testing.T) *database.Manager {
	t.Helper()
	m := database.NewManager(types.ManagerConfig{
		Endpoints: map[string]types.EndpointInfo{
			"master": {
				Role:     types.RoleMaster,
				Enabled:  true,
				Priority: 1,
				Config: types.ConnectionConfig{
					Backend:        types.BackendSQLite,
					Database:       filepath.Join(t.TempDir(), "game.db"),
					MaxConnections: 4,
				}.WithDefaults(),
			},
		},
		BackupDirectory: filepath.Join(t.TempDir(), "backups"),
		MaxBackupFiles:  3,
	})
	require.NoError(t, m.Initialize(context.Background()))
	t.Cleanup(func() { require.NoError(t, m.Shutdown()) })
	return m
}

func testFacade(t *testing.T, mutate func(*types.PersistenceConfig)) *Facade {
	t.Helper()
	cfg := types.DefaultPersistenceConfig()
	cfg.AutoSaveEnabled = false
	cfg.MaxCacheSizePerType = 500
	if mutate != nil {
		mutate(&cfg)
	}
	f, err := New(testManager(t), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, f.Shutdown(context.Background())) })
	return f
}

func braveWarrior() *types.Character {
	return &types.Character{
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
		LastLogin:   time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC),
		Created:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateThenLoadCharacter(t *testing.T) {
	f := testFacade(t, nil)
	ctx := context.Background()

	require.NoError(t, f.SaveCharacter(ctx, braveWarrior()))
	assert.Equal(t, 1, f.CacheSizeForType(types.EntityCharacter))

	got, err := f.LoadCharacter(ctx, "Brave Warrior")
	require.NoError(t, err)
	assert.Equal(t, 15, got.Level)
	assert.Equal(t, 2500, got.Experience)
	assert.Equal(t, 120, got.Health)

	_, err = f.LoadCharacter(ctx, "Brave Warrior")
	require.NoError(t, err)
	stats := f.Stats()
	assert.EqualValues(t, 2, stats.CacheHits, "loads after save are cache hits")
	assert.EqualValues(t, 1, stats.TotalSaves)
	assert.EqualValues(t, 1, stats.SuccessfulSaves)
}

func TestCharacterRoundTripThroughBackend(t *testing.T) {
	f := testFacade(t, nil)
	ctx := context.Background()

	in := braveWarrior()
	in.Skills = []types.SkillRef{{ID: "slash", Level: 3}}
	in.Equipment = map[string]string{"weapon": "iron-sword"}
	require.NoError(t, f.SaveCharacter(ctx, in))

	// Drop the cache so the load decodes from the backend.
	f.ClearCache()
	got, err := f.LoadCharacter(ctx, in.Name)
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestSaveGameRoundTrip(t *testing.T) {
	f := testFacade(t, nil)
	ctx := context.Background()

	save := &types.GameSave{
		Slot:        "save_slot_1",
		CharacterID: "Brave Warrior",
		Level:       15,
		CurrentMap:  "forest_level",
		PositionX:   150.5,
		PositionY:   200.3,
		GameState:   `{"inventory":["potion"]}`,
		SaveTime:    time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, f.SaveGameSave(ctx, save))
	f.ClearCache()

	got, err := f.LoadGameSave(ctx, "save_slot_1")
	require.NoError(t, err)
	assert.Equal(t, "Brave Warrior", got.CharacterID)
	assert.Equal(t, "forest_level", got.CurrentMap)
	assert.Equal(t, 150.5, got.PositionX)
	assert.Equal(t, 200.3, got.PositionY)
	assert.Equal(t, save.GameState, got.GameState)
}

func TestValidationRejectsEmptyName(t *testing.T) {
	f := testFacade(t, nil)
	ctx := context.Background()

	var published int
	f.Subscribe(func(types.ChangeEvent) { published++ })

	err := f.SaveCharacter(ctx, &types.Character{Name: "", Level: 1})
	require.ErrorIs(t, err, types.ErrValidation)
	assert.Error(t, f.LastError())
	assert.Zero(t, published)

	ids, err := f.ListCharacterIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestValidationDisabledSkipsChecks(t *testing.T) {
	f := testFacade(t, func(c *types.PersistenceConfig) { c.ValidationEnabled = false })
	ctx := context.Background()

	// Level 0 violates the character invariant, but validation is off and
	// the id itself is still non-empty, so the row goes through.
	err := f.SaveCharacter(ctx, &types.Character{Name: "Rogue", Level: 0, MaxHealth: 1})
	require.NoError(t, err)
}

func TestDeleteRemovesStoreAndCache(t *testing.T) {
	f := testFacade(t, nil)
	ctx := context.Background()

	var deletions []string
	f.Subscribe(func(e types.ChangeEvent) {
		if e.Kind == types.ChangeDeleted {
			deletions = append(deletions, e.EntityType+":"+e.EntityID)
		}
	})

	hero := braveWarrior()
	hero.Name = "TempHero"
	require.NoError(t, f.SaveCharacter(ctx, hero))

	exists, err := f.CharacterExists(ctx, "TempHero")
	require.NoError(t, err)
	assert.True(t, exists)

	deleted, err := f.DeleteCharacter(ctx, "TempHero")
	require.NoError(t, err)
	assert.True(t, deleted)

	exists, err = f.CharacterExists(ctx, "TempHero")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Zero(t, f.CacheSizeForType(types.EntityCharacter))
	assert.Equal(t, []string{"character:TempHero"}, deletions)

	// Deleting again reports absent, not an error.
	deleted, err = f.DeleteCharacter(ctx, "TempHero")
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = f.LoadCharacter(ctx, "TempHero")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestBatchAtomicity(t *testing.T) {
	f := testFacade(t, nil)
	ctx := context.Background()

	var published int
	f.Subscribe(func(types.ChangeEvent) { published++ })

	a, b, c := braveWarrior(), braveWarrior(), braveWarrior()
	a.Name, b.Name, c.Name = "Alpha", "Beta", "Gamma"
	b.Level = 0 // violates validation

	err := f.SaveCharacters(ctx, []*types.Character{a, b, c})
	require.ErrorIs(t, err, types.ErrValidation)
	assert.Error(t, f.LastError())
	assert.Zero(t, published)

	ids, err := f.ListCharacterIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids, "a failed batch must leave no rows")

	for _, name := range []string{"Alpha", "Beta", "Gamma"} {
		_, tracked := f.SyncState(types.EntityCharacter, name)
		assert.False(t, tracked, "ledger must be untouched for %s", name)
	}
}

func TestBatchSaveCommitsAndPublishes(t *testing.T) {
	f := testFacade(t, nil)
	ctx := context.Background()

	var kinds []types.ChangeKind
	f.Subscribe(func(e types.ChangeEvent) { kinds = append(kinds, e.Kind) })

	a, b := braveWarrior(), braveWarrior()
	a.Name, b.Name = "Alpha", "Beta"
	require.NoError(t, f.SaveCharacters(ctx, []*types.Character{a, b}))

	ids, err := f.ListCharacterIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Beta"}, ids)
	assert.Equal(t, []types.ChangeKind{types.ChangeCreated, types.ChangeCreated}, kinds)

	for _, name := range []string{"Alpha", "Beta"} {
		state, ok := f.SyncState(types.EntityCharacter, name)
		require.True(t, ok)
		assert.Equal(t, types.StateSynced, state)
	}
}

func TestEventOrderPerEntity(t *testing.T) {
	f := testFacade(t, nil)
	ctx := context.Background()

	var kinds []types.ChangeKind
	f.Subscribe(func(e types.ChangeEvent) {
		if e.EntityID == "Brave Warrior" {
			kinds = append(kinds, e.Kind)
		}
	})

	hero := braveWarrior()
	require.NoError(t, f.SaveCharacter(ctx, hero))
	hero.Level = 16
	require.NoError(t, f.SaveCharacter(ctx, hero))
	_, err := f.DeleteCharacter(ctx, hero.Name)
	require.NoError(t, err)

	assert.Equal(t, []types.ChangeKind{
		types.ChangeCreated, types.ChangeUpdated, types.ChangeDeleted,
	}, kinds)
}

func TestAutoSaveFlushesDirtyEntities(t *testing.T) {
	f := testFacade(t, func(c *types.PersistenceConfig) {
		c.AutoSaveEnabled = true
		c.AutoSaveInterval = time.Second
	})
	ctx := context.Background()

	var mu sync.Mutex
	var updated int
	f.Subscribe(func(e types.ChangeEvent) {
		if e.Kind == types.ChangeUpdated {
			mu.Lock()
			updated++
			mu.Unlock()
		}
	})

	for i := 0; i < 5; i++ {
		hero := braveWarrior()
		hero.Name = fmt.Sprintf("Hero-%d", i)
		require.NoError(t, f.SaveCharacter(ctx, hero))
		require.NoError(t, f.MarkDirty(types.EntityCharacter, hero.Name))
	}
	assert.Len(t, listPendingSaves(f), 5)

	require.Eventually(t, func() bool {
		return len(listPendingSaves(f)) == 0
	}, 5*time.Second, 50*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 5, updated)
}

func listPendingSaves(f *Facade) []types.EntityKey {
	return f.ledger.PendingSaves()
}

func TestTriggerAutoSaveIdempotent(t *testing.T) {
	f := testFacade(t, nil)
	ctx := context.Background()

	hero := braveWarrior()
	require.NoError(t, f.SaveCharacter(ctx, hero))
	require.NoError(t, f.MarkDirty(types.EntityCharacter, hero.Name))

	f.TriggerAutoSave(ctx)
	assert.Empty(t, listPendingSaves(f))
	before := f.Stats().TotalSaves

	f.TriggerAutoSave(ctx)
	assert.Equal(t, before, f.Stats().TotalSaves, "empty drain must not write")
}

func TestShutdownDrainsPendingSaves(t *testing.T) {
	cfg := types.DefaultPersistenceConfig()
	cfg.AutoSaveEnabled = true
	cfg.AutoSaveInterval = time.Hour // only the shutdown drain may run
	f, err := New(testManager(t), cfg)
	require.NoError(t, err)

	ctx := context.Background()
	hero := braveWarrior()
	require.NoError(t, f.SaveCharacter(ctx, hero))
	require.NoError(t, f.MarkDirty(types.EntityCharacter, hero.Name))

	require.NoError(t, f.Shutdown(ctx))
	assert.Empty(t, listPendingSaves(f))
}

func TestAsyncSaveAndCancel(t *testing.T) {
	f := testFacade(t, nil)
	ctx := context.Background()

	task := f.SaveCharacterAsync(ctx, braveWarrior())
	require.NoError(t, task.Wait())
	assert.True(t, task.Done())

	got, err := f.LoadCharacter(ctx, "Brave Warrior")
	require.NoError(t, err)
	assert.Equal(t, 15, got.Level)

	gate := make(chan struct{})
	blocked := runTask(func() error {
		<-gate
		return nil
	})
	blocked.Cancel()
	close(gate)
	assert.ErrorIs(t, blocked.Wait(), types.ErrCancelled)
}

func TestMarkDirtyRequiresCachedEntity(t *testing.T) {
	f := testFacade(t, nil)
	err := f.MarkDirty(types.EntityCharacter, "nobody")
	assert.ErrorIs(t, err, types.ErrNotFound)

	err = f.MarkDirty("dragon", "smaug")
	assert.ErrorIs(t, err, types.ErrEntityType)
}

func TestProjections(t *testing.T) {
	f := testFacade(t, nil)
	ctx := context.Background()

	require.NoError(t, f.SaveItems(ctx, []*types.Item{
		{ID: "sword", Type: "weapon", Rarity: types.RarityRare, Level: 5},
		{ID: "staff", Type: "weapon", Rarity: types.RarityEpic, Level: 8},
		{ID: "tunic", Type: "armor", Rarity: types.RarityCommon, Level: 1},
	}))
	weapons, err := f.LoadItemsByType(ctx, "weapon")
	require.NoError(t, err)
	assert.Len(t, weapons, 2)
	epics, err := f.LoadItemsByRarity(ctx, types.RarityEpic)
	require.NoError(t, err)
	require.Len(t, epics, 1)
	assert.Equal(t, "staff", epics[0].ID)

	require.NoError(t, f.SaveQuests(ctx, []*types.Quest{
		{ID: "q1", Type: "main", RequiredLevel: 1},
		{ID: "q2", Type: "side", RequiredLevel: 20},
	}))
	eligible, err := f.LoadQuestsByLevel(ctx, 10)
	require.NoError(t, err)
	require.Len(t, eligible, 1)
	assert.Equal(t, "q1", eligible[0].ID)
	side, err := f.LoadQuestsByType(ctx, "side")
	require.NoError(t, err)
	assert.Len(t, side, 1)

	require.NoError(t, f.SaveLevels(ctx, []*types.Level{
		{ID: "meadow", Difficulty: 1},
		{ID: "volcano", Difficulty: 9},
	}))
	easy, err := f.LoadLevelsByDifficulty(ctx, 5)
	require.NoError(t, err)
	require.Len(t, easy, 1)
	assert.Equal(t, "meadow", easy[0].ID)

	require.NoError(t, f.SaveSkills(ctx, []*types.Skill{
		{ID: "fireball", Type: "magic"},
		{ID: "slash", Type: "melee"},
	}))
	magic, err := f.LoadSkillsByType(ctx, "magic")
	require.NoError(t, err)
	require.Len(t, magic, 1)

	require.NoError(t, f.SaveGameSaves(ctx, []*types.GameSave{
		{Slot: "s1", CharacterID: "Alpha"},
		{Slot: "s2", CharacterID: "Alpha"},
		{Slot: "s3", CharacterID: "Beta"},
	}))
	alphas, err := f.GameSavesByCharacter(ctx, "Alpha")
	require.NoError(t, err)
	assert.Len(t, alphas, 2)
}

func TestConfigAndStatisticsAccessors(t *testing.T) {
	f := testFacade(t, nil)
	ctx := context.Background()

	require.NoError(t, f.SetConfigValue(ctx, "difficulty", "hard", "game difficulty"))
	v, err := f.GetConfigValue(ctx, "difficulty")
	require.NoError(t, err)
	assert.Equal(t, "hard", v)

	_, err = f.GetConfigValue(ctx, "missing")
	assert.ErrorIs(t, err, types.ErrNotFound)

	require.NoError(t, f.SetStatistic(ctx, "total_playtime", "3600"))
	v, err = f.GetStatistic(ctx, "total_playtime")
	require.NoError(t, err)
	assert.Equal(t, "3600", v)
}

func TestEventLog(t *testing.T) {
	f := testFacade(t, nil)
	ctx := context.Background()

	require.NoError(t, f.LogEvent(ctx, "login", "player logged in", ""))
	require.NoError(t, f.LogEvent(ctx, "logout", "player logged out", `{"session":12}`))

	logs, err := f.Logs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "logout", logs[0].EventType, "newest first")
	assert.Equal(t, `{"session":12}`, logs[0].Data)
	assert.Equal(t, "{}", logs[1].Data)
}

func TestApplyConfigReArmsAutoSave(t *testing.T) {
	f := testFacade(t, nil)
	ctx := context.Background()

	hero := braveWarrior()
	require.NoError(t, f.SaveCharacter(ctx, hero))
	require.NoError(t, f.MarkDirty(types.EntityCharacter, hero.Name))

	cfg := f.Config()
	cfg.AutoSaveEnabled = true
	cfg.AutoSaveInterval = time.Second
	require.NoError(t, f.ApplyConfig(cfg))

	require.Eventually(t, func() bool {
		return len(listPendingSaves(f)) == 0
	}, 5*time.Second, 50*time.Millisecond)
}

func TestResetStatsAndLastError(t *testing.T) {
	f := testFacade(t, nil)
	ctx := context.Background()

	require.NoError(t, f.SaveCharacter(ctx, braveWarrior()))
	_, err := f.LoadCharacter(ctx, "ghost")
	require.Error(t, err)
	require.Error(t, f.LastError())
	assert.Positive(t, f.Stats().TotalSaves)

	f.ResetStats()
	assert.Zero(t, f.Stats().TotalSaves)
	assert.NoError(t, f.LastError())
}

func TestBoundedCachePerType(t *testing.T) {
	f := testFacade(t, func(c *types.PersistenceConfig) { c.MaxCacheSizePerType = 3 })
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		hero := braveWarrior()
		hero.Name = fmt.Sprintf("Hero-%d", i)
		require.NoError(t, f.SaveCharacter(ctx, hero))
	}
	assert.LessOrEqual(t, f.CacheSizeForType(types.EntityCharacter), 3)
}

func TestBackupAndRestoreThroughFacade(t *testing.T) {
	backupDir := filepath.Join(t.TempDir(), "backups")
	m := database.NewManager(types.ManagerConfig{
		Endpoints: map[string]types.EndpointInfo{
			"master": {
				Role:     types.RoleMaster,
				Enabled:  true,
				Priority: 1,
				Config: types.ConnectionConfig{
					Backend:        types.BackendSQLite,
					Database:       filepath.Join(t.TempDir(), "game.db"),
					MaxConnections: 4,
				}.WithDefaults(),
			},
		},
		BackupDirectory: backupDir,
		MaxBackupFiles:  3,
	})
	require.NoError(t, m.Initialize(context.Background()))
	t.Cleanup(func() { require.NoError(t, m.Shutdown()) })

	cfg := types.DefaultPersistenceConfig()
	cfg.AutoSaveEnabled = false
	f, err := New(m, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, f.Shutdown(context.Background())) })

	ctx := context.Background()
	require.NoError(t, f.SaveCharacter(ctx, braveWarrior()))
	require.NoError(t, f.BackupAll(ctx))

	backups, err := filepath.Glob(filepath.Join(backupDir, "master-*.db"))
	require.NoError(t, err)
	require.Len(t, backups, 1)

	deleted, err := f.DeleteCharacter(ctx, "Brave Warrior")
	require.NoError(t, err)
	require.True(t, deleted)

	require.NoError(t, f.Restore(ctx, "master", backups[0]))

	got, err := f.LoadCharacter(ctx, "Brave Warrior")
	require.NoError(t, err)
	assert.Equal(t, 15, got.Level)
}

func TestTimedOutReadRetriesOnce(t *testing.T) {
	calls := 0
	result := retryRead(func() types.QueryResult {
		calls++
		if calls == 1 {
			return types.Failure(fmt.Errorf("%w: context deadline exceeded", types.ErrTimeout))
		}
		return types.OK()
	})
	assert.True(t, result.Success)
	assert.Equal(t, 2, calls, "one retry after a timeout")

	calls = 0
	result = retryRead(func() types.QueryResult {
		calls++
		return types.Failure(fmt.Errorf("%w: context deadline exceeded", types.ErrTimeout))
	})
	assert.False(t, result.Success)
	assert.Equal(t, 2, calls, "at most one retry")

	calls = 0
	result = retryRead(func() types.QueryResult {
		calls++
		return types.Failure(types.ErrRuntime)
	})
	assert.False(t, result.Success)
	assert.Equal(t, 1, calls, "non-timeout failures do not retry")
}

func TestLoadStatsCountCacheHits(t *testing.T) {
	f := testFacade(t, nil)
	ctx := context.Background()
	require.NoError(t, f.SaveCharacter(ctx, braveWarrior()))

	_, err := f.LoadCharacter(ctx, "Brave Warrior")
	require.NoError(t, err)
	f.ClearCache()
	_, err = f.LoadCharacter(ctx, "Brave Warrior")
	require.NoError(t, err)

	stats := f.Stats()
	assert.EqualValues(t, 2, stats.TotalLoads, "cache hits count as loads")
	assert.EqualValues(t, 2, stats.SuccessfulLoads)
	assert.EqualValues(t, 1, stats.CacheHits)
	assert.EqualValues(t, 1, stats.CacheMisses)
}
