// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/pdiddy/skill-catalog/pkg/types"
)

const characterColumns = `id, name, element, path, version, created_at,
	hp, attack, defense, speed, ep,
	stat_boost_1_type, stat_boost_1_value,
	stat_boost_2_type, stat_boost_2_value,
	stat_boost_3_type, stat_boost_3_value`

type scanner interface {
	Scan(dest ...any) error
}

func scanCharacter(row scanner) (types.Character, error) {
	var (
		c                      types.Character
		element, path, version sql.NullString
		createdAt              string
		stats                  [5]sql.NullInt64
		boostTypes             [3]sql.NullString
		boostValues            [3]sql.NullFloat64
	)
	err := row.Scan(
		&c.ID, &c.Name, &element, &path, &version, &createdAt,
		&stats[0], &stats[1], &stats[2], &stats[3], &stats[4],
		&boostTypes[0], &boostValues[0],
		&boostTypes[1], &boostValues[1],
		&boostTypes[2], &boostValues[2],
	)
	if err != nil {
		return c, err
	}

	c.Element = element.String
	c.Path = path.String
	c.Version = version.String
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	for i, dst := range []**int{&c.HP, &c.Attack, &c.Defense, &c.Speed, &c.EP} {
		if stats[i].Valid {
			v := int(stats[i].Int64)
			*dst = &v
		}
	}
	for i := range c.StatBoosts {
		c.StatBoosts[i].Type = boostTypes[i].String
		if boostValues[i].Valid {
			v := boostValues[i].Float64
			c.StatBoosts[i].Value = &v
		}
	}
	return c, nil
}

// Characters lists every character, newest version first. Characters
// without a version come last.
func (s *Store) Characters(ctx context.Context) ([]types.Character, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+characterColumns+` FROM characters
		 ORDER BY version IS NULL, version DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("querying characters: %w", err)
	}
	defer rows.Close()

	var out []types.Character
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning character: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Character returns one character by id.
func (s *Store) Character(ctx context.Context, id int64) (types.Character, error) {
	c, err := scanCharacter(s.db.QueryRowContext(ctx,
		`SELECT `+characterColumns+` FROM characters WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return c, fmt.Errorf("character %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return c, fmt.Errorf("looking up character %d: %w", id, err)
	}
	return c, nil
}

// skillsWithEffects loads a character's skills in category rank order,
// each with its effects in insertion order.
func (s *Store) skillsWithEffects(ctx context.Context, characterID int64) ([]types.Skill, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, category, name, description FROM skills WHERE character_id = ? ORDER BY id`,
		characterID)
	if err != nil {
		return nil, fmt.Errorf("querying skills: %w", err)
	}
	defer rows.Close()

	var skills []types.Skill
	index := make(map[int64]int)
	for rows.Next() {
		var (
			sk                types.Skill
			category          string
			name, description sql.NullString
		)
		if err := rows.Scan(&sk.ID, &category, &name, &description); err != nil {
			return nil, fmt.Errorf("scanning skill: %w", err)
		}
		sk.Category = types.Category(category)
		sk.Name = name.String
		sk.Description = description.String
		index[sk.ID] = len(skills)
		skills = append(skills, sk)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	effects, err := s.db.QueryContext(ctx,
		`SELECT bd.skill_id, bd.effect_name, bd.target_type, bd.stat_affected,
			bd.value_expression, bd.duration, bd.condition, bd.is_stackable, bd.max_stacks
		 FROM buffs_debuffs bd
		 JOIN skills s ON s.id = bd.skill_id
		 WHERE s.character_id = ?
		 ORDER BY bd.id`, characterID)
	if err != nil {
		return nil, fmt.Errorf("querying effects: %w", err)
	}
	defer effects.Close()

	for effects.Next() {
		var (
			skillID                                  int64
			e                                        types.EffectRecord
			target, stat, value, duration, condition sql.NullString
			maxStacks                                sql.NullInt64
		)
		if err := effects.Scan(&skillID, &e.EffectName, &target, &stat,
			&value, &duration, &condition, &e.IsStackable, &maxStacks); err != nil {
			return nil, fmt.Errorf("scanning effect: %w", err)
		}
		e.TargetType = types.TargetType(target.String)
		e.StatAffected = stat.String
		e.ValueExpression = value.String
		e.Duration = duration.String
		e.Condition = condition.String
		e.MaxStacks = int(maxStacks.Int64)

		i := index[skillID]
		skills[i].Effects = append(skills[i].Effects, e)
	}
	if err := effects.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(skills, func(i, j int) bool {
		return skills[i].Category.Rank() < skills[j].Category.Rank()
	})
	return skills, nil
}

func (s *Store) exists(ctx context.Context, id int64) error {
	var n int
	if err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM characters WHERE id = ?`, id,
	).Scan(&n); err != nil {
		return fmt.Errorf("looking up character %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("character %d: %w", id, ErrNotFound)
	}
	return nil
}

// Skills returns a character's skills grouped for the detail view.
func (s *Store) Skills(ctx context.Context, id int64) (types.SkillGroups, error) {
	var groups types.SkillGroups
	if err := s.exists(ctx, id); err != nil {
		return groups, err
	}

	skills, err := s.skillsWithEffects(ctx, id)
	if err != nil {
		return groups, err
	}
	for _, sk := range skills {
		switch {
		case sk.Category.IsEidolon():
			groups.Eidolons = append(groups.Eidolons, sk)
		case sk.Category.IsAdditionalEffect():
			groups.AdditionalEffects = append(groups.AdditionalEffects, sk)
		default:
			groups.Combat = append(groups.Combat, sk)
		}
	}
	return groups, nil
}

// Buffs lists the buffs and debuffs a character has at eidolon level
// eidolonLevel: every effect of its non-eidolon skills, followed by the
// eidolon enhancements unlocked at or below that level.
func (s *Store) Buffs(ctx context.Context, id int64, eidolonLevel int) ([]types.BuffView, error) {
	if err := s.exists(ctx, id); err != nil {
		return nil, err
	}

	skills, err := s.skillsWithEffects(ctx, id)
	if err != nil {
		return nil, err
	}

	var out []types.BuffView
	for _, sk := range skills {
		if sk.Category.IsEidolon() {
			continue
		}
		for _, e := range sk.Effects {
			out = append(out, types.BuffView{
				Skill:       string(sk.Category),
				Name:        e.EffectName,
				Duration:    e.Duration,
				Target:      string(e.TargetType),
				Stat:        e.StatAffected,
				Value:       e.ValueExpression,
				Note:        e.Condition,
				IsStackable: e.IsStackable,
				MaxStacks:   e.MaxStacks,
			})
		}
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT ee.eidolon_level, ee.enhancement_type, ee.enhanced_value,
			bd.effect_name, bd.target_type, bd.stat_affected, bd.value_expression,
			bd.duration, bd.is_stackable, bd.max_stacks
		 FROM eidolon_enhancements ee
		 JOIN buffs_debuffs bd ON bd.id = ee.buff_debuff_id
		 WHERE ee.character_id = ? AND ee.eidolon_level <= ?
		 ORDER BY ee.eidolon_level, ee.id`, id, eidolonLevel)
	if err != nil {
		return nil, fmt.Errorf("querying eidolon enhancements: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			level                                   int
			enhType                                 string
			enhValue, target, stat, value, duration sql.NullString
			b                                       types.BuffView
			maxStacks                               sql.NullInt64
		)
		if err := rows.Scan(&level, &enhType, &enhValue, &b.Name, &target, &stat,
			&value, &duration, &b.IsStackable, &maxStacks); err != nil {
			return nil, fmt.Errorf("scanning eidolon enhancement: %w", err)
		}
		b.Skill = string(types.Eidolon(level))
		b.Target = target.String
		b.Stat = stat.String
		b.Duration = duration.String
		b.MaxStacks = int(maxStacks.Int64)
		b.Value = enhValue.String
		if b.Value == "" {
			b.Value = value.String
		}
		b.Note = fmt.Sprintf("eidolon %d", level)
		if enhType != types.EnhancementNewEffect {
			b.Note += " " + enhType
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Delete removes a character and everything stored for it.
func (s *Store) Delete(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := deleteSkills(ctx, tx, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM characters WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting character %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting character %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("character %d: %w", id, ErrNotFound)
	}
	return tx.Commit()
}

// StatsSummary reports which characters a stats update touched.
type StatsSummary struct {
	Updated  []string `json:"updated_characters" yaml:"updated_characters"`
	NotFound []string `json:"not_found_characters" yaml:"not_found_characters"`
}

// UpdateStats overwrites base stats of characters matched by exact name.
// Nil values clear the stored stat.
func (s *Store) UpdateStats(ctx context.Context, rows []types.StatsRow) (StatsSummary, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return StatsSummary{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`UPDATE characters SET
			hp = ?, attack = ?, defense = ?, speed = ?, ep = ?,
			stat_boost_1_type = ?, stat_boost_1_value = ?,
			stat_boost_2_type = ?, stat_boost_2_value = ?,
			stat_boost_3_type = ?, stat_boost_3_value = ?
		 WHERE name = ?`)
	if err != nil {
		return StatsSummary{}, fmt.Errorf("preparing stats update: %w", err)
	}
	defer stmt.Close()

	summary := StatsSummary{Updated: []string{}, NotFound: []string{}}
	for _, r := range rows {
		args := []any{intPtr(r.HP), intPtr(r.Attack), intPtr(r.Defense), intPtr(r.Speed), intPtr(r.EP)}
		for _, b := range r.StatBoosts {
			args = append(args, nullString(b.Type), floatPtr(b.Value))
		}
		args = append(args, r.Name)

		res, err := stmt.ExecContext(ctx, args...)
		if err != nil {
			return StatsSummary{}, fmt.Errorf("updating stats of %q: %w", r.Name, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return StatsSummary{}, fmt.Errorf("updating stats of %q: %w", r.Name, err)
		}
		if n == 0 {
			summary.NotFound = append(summary.NotFound, r.Name)
		} else {
			summary.Updated = append(summary.Updated, r.Name)
		}
	}

	if err := tx.Commit(); err != nil {
		return StatsSummary{}, fmt.Errorf("committing stats update: %w", err)
	}
	return summary, nil
}

func intPtr(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func floatPtr(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}
