package persist

import (
	"context"
	"fmt"

	"github.com/xiaoliunewbig/fantasydb/pkg/types"
)

// SaveSkill writes the skill through to the backend.
func (f *Facade) SaveSkill(ctx context.Context, s *types.Skill) error {
	if s == nil {
		return fmt.Errorf("%w: nil skill", types.ErrInvalidData)
	}
	return saveEntity(ctx, f, types.EntitySkill, s.ID, s.Validate,
		func() (map[string]types.Value, error) { return f.currentCodec().SkillToRow(s) }, s)
}

// SaveSkillAsync runs SaveSkill on a worker.
func (f *Facade) SaveSkillAsync(ctx context.Context, s *types.Skill) *Task {
	return runTask(func() error { return f.SaveSkill(ctx, s) })
}

// LoadSkill returns the skill by id, consulting the cache first.
func (f *Facade) LoadSkill(ctx context.Context, id string) (*types.Skill, error) {
	return loadEntity(ctx, f, types.EntitySkill, id, f.currentCodec().SkillFromRow)
}

// DeleteSkill removes the skill, reporting whether it existed.
func (f *Facade) DeleteSkill(ctx context.Context, id string) (bool, error) {
	return deleteEntity(ctx, f, types.EntitySkill, id)
}

// SkillExists checks presence without decoding.
func (f *Facade) SkillExists(ctx context.Context, id string) (bool, error) {
	return existsEntity(ctx, f, types.EntitySkill, id)
}

// ListSkillIDs returns every skill id, sorted.
func (f *Facade) ListSkillIDs(ctx context.Context) ([]string, error) {
	return f.listIDs(ctx, types.EntitySkill)
}

// LoadAllSkills returns every skill, decoded.
func (f *Facade) LoadAllSkills(ctx context.Context) ([]*types.Skill, error) {
	rows, err := f.selectRows(ctx, types.TableSkills, "")
	if err != nil {
		return nil, err
	}
	return loadEntities(f, rows, f.currentCodec().SkillFromRow)
}

// LoadSkillsByType returns the skills with the given type tag.
func (f *Facade) LoadSkillsByType(ctx context.Context, skillType string) ([]*types.Skill, error) {
	rows, err := f.selectRows(ctx, types.TableSkills, "type = ?", types.Text(skillType))
	if err != nil {
		return nil, err
	}
	return loadEntities(f, rows, f.currentCodec().SkillFromRow)
}

// SaveSkills writes the batch atomically in one transaction.
func (f *Facade) SaveSkills(ctx context.Context, skills []*types.Skill) error {
	cd := f.currentCodec()
	ids, rows, aggregates, err := encodeBatch(f, skills,
		func(s *types.Skill) string { return s.ID },
		func(s *types.Skill) error { return s.Validate() },
		cd.SkillToRow)
	if err != nil {
		return err
	}
	return f.saveBatch(ctx, types.EntitySkill, ids, rows, aggregates)
}
