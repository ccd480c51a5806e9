package types

// Fixed table names bootstrapped by the database manager.
const (
	TableCharacters = "characters"
	TableSaveData   = "save_data"
	TableQuests     = "quests"
	TableItems      = "items"
	TableLevels     = "levels"
	TableSkills     = "skills"
	TableConfigs    = "configs"
	TableStatistics = "statistics"
	TableLogs       = "logs"
	TableCache      = "cache"
)

// StandardTableNames lists every bootstrapped table for enumeration.
var StandardTableNames = []string{
	TableCharacters,
	TableSaveData,
	TableQuests,
	TableItems,
	TableLevels,
	TableSkills,
	TableConfigs,
	TableStatistics,
	TableLogs,
	TableCache,
}

// TableForEntity maps an entity type to its backing table.
var TableForEntity = map[string]string{
	EntityCharacter: TableCharacters,
	EntityItem:      TableItems,
	EntityQuest:     TableQuests,
	EntityLevel:     TableLevels,
	EntitySkill:     TableSkills,
	EntitySave:      TableSaveData,
}
