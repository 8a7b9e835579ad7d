// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package effect

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/pdiddy/skill-catalog/pkg/types"
)

// Stat names emitted by the rule table.
const (
	StatDamageDealt   = "damage dealt"
	StatResPen        = "all-element res penetration"
	StatDamageTaken   = "damage taken"
	StatAttack        = "attack"
	StatCritDamage    = "crit damage"
	StatMaxHP         = "max HP"
	StatDefenseIgnore = "defense-ignore"
)

// Building blocks for the patterns below. All patterns run against
// normalized text, so English is lower-case and full-width digits and
// signs are already ASCII.
const (
	num      = `\d+(?:\.\d+)?`
	plusOrBy = `(?:\+\s*|by\s+)`
)

// captures holds the named submatches of one pattern match.
type captures map[string]string

// rule is one entry of the extraction table. A rule runs only for
// categories it applies to, emits at most one record, and tries its
// patterns in order.
type rule struct {
	name     string
	applies  func(types.Category) bool
	patterns []*regexp.Regexp
	build    func(c captures, text string) (types.EffectRecord, error)
}

func (r rule) match(text string) (captures, bool) {
	for _, re := range r.patterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		c := make(captures)
		for i, name := range re.SubexpNames() {
			if name != "" {
				c[name] = m[i]
			}
		}
		return c, true
	}
	return nil, false
}

func isCategory(want types.Category) func(types.Category) bool {
	return func(c types.Category) bool { return c == want }
}

func isEidolon(level int) func(types.Category) bool {
	return func(c types.Category) bool { return c.EidolonLevel() == level }
}

func patterns(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

// rules is evaluated top to bottom. Rules of one category are independent:
// a combat skill with both a damage bonus and a penetration clause yields
// two records.
var rules = []rule{
	{
		name:    "combat-skill/damage-bonus",
		applies: isCategory(types.CategoryCombatSkill),
		patterns: patterns(
			`与ダメージ\s*\+\s*(?P<value>`+num+`)%`,
			`damage dealt\s*`+plusOrBy+`(?P<value>`+num+`)%`,
		),
		build: func(c captures, text string) (types.EffectRecord, error) {
			return types.EffectRecord{
				EffectName:      "damage dealt increase",
				TargetType:      resolveTarget(text),
				StatAffected:    StatDamageDealt,
				ValueExpression: "+" + c["value"] + "%",
				Duration:        resolveDuration(text),
			}, nil
		},
	},
	{
		name:    "combat-skill/res-penetration",
		applies: isCategory(types.CategoryCombatSkill),
		patterns: patterns(
			`全属性耐性貫通\s*\+\s*(?P<value>`+num+`)%`,
			`all[- ](?:element|type) res(?:istance)?[- ]pen(?:etration)?\s*`+plusOrBy+`(?P<value>`+num+`)%`,
		),
		build: func(c captures, text string) (types.EffectRecord, error) {
			return types.EffectRecord{
				EffectName:      "all-element res penetration",
				TargetType:      resolveTarget(text),
				StatAffected:    StatResPen,
				ValueExpression: "+" + c["value"] + "%",
				Duration:        resolveDuration(text),
				Condition:       resolveCondition(text),
			}, nil
		},
	},
	{
		name:    "ultimate/vulnerability",
		applies: isCategory(types.CategoryUltimate),
		patterns: patterns(
			`受けるダメージ\s*\+\s*(?P<value>`+num+`)%`,
			`damage taken\s*`+plusOrBy+`(?P<value>`+num+`)%`,
		),
		build: func(c captures, text string) (types.EffectRecord, error) {
			return types.EffectRecord{
				EffectName:      "enemy damage taken increase",
				TargetType:      types.TargetAllEnemies,
				StatAffected:    StatDamageTaken,
				ValueExpression: "+" + c["value"] + "%",
				Duration:        resolveDuration(text),
				Condition:       resolveCondition(text),
			}, nil
		},
	},
	{
		// "攻撃力+（ロビンの攻撃力×22.8%+200）": a flat term and a
		// percentage-of-attack term that are kept apart in the value.
		name:    "ultimate/attack-buff",
		applies: isCategory(types.CategoryUltimate),
		patterns: patterns(
			`攻撃力.*?(?P<percent>`+num+`)%.*?\+\s*(?P<flat>`+num+`)`,
			`attack power.*?(?P<percent>`+num+`)%.*?\+\s*(?P<flat>`+num+`)`,
		),
		build: func(c captures, text string) (types.EffectRecord, error) {
			return types.EffectRecord{
				EffectName:      "attack increase",
				TargetType:      resolveTarget(text),
				StatAffected:    StatAttack,
				ValueExpression: fmt.Sprintf("+%s + ATK×%s%%", c["flat"], c["percent"]),
				Duration:        resolveDuration(text),
				Condition:       resolveCondition(text),
			}, nil
		},
	},
	{
		name:    "talent/crit-damage",
		applies: isCategory(types.CategoryTalent),
		patterns: patterns(
			`会心ダメージ\s*\+\s*(?P<value>`+num+`)%`,
			`crit(?:ical)? damage\s*`+plusOrBy+`(?P<value>`+num+`)%`,
		),
		build: func(c captures, text string) (types.EffectRecord, error) {
			return types.EffectRecord{
				EffectName:      "crit damage increase",
				TargetType:      resolveTarget(text),
				StatAffected:    StatCritDamage,
				ValueExpression: "+" + c["value"] + "%",
				Duration:        types.DurationPermanent,
			}, nil
		},
	},
	{
		name:    "additional-effect/stacking-damage-bonus",
		applies: types.Category.IsAdditionalEffect,
		patterns: patterns(
			`与ダメージ\s*\+\s*(?P<value>`+num+`)%.*?最大.*?(?P<stacks>\d+)\s*層`,
			`damage dealt\s*`+plusOrBy+`(?P<value>`+num+`)%.*?max(?:imum)?.*?(?P<stacks>\d+)\s*stacks?`,
		),
		build: func(c captures, text string) (types.EffectRecord, error) {
			stacks, err := strconv.Atoi(c["stacks"])
			if err != nil {
				return types.EffectRecord{}, fmt.Errorf("parsing max stacks %q: %w", c["stacks"], err)
			}
			return types.EffectRecord{
				EffectName:      "damage dealt increase (stacking)",
				TargetType:      resolveTarget(text),
				StatAffected:    StatDamageDealt,
				ValueExpression: "+" + c["value"] + "%",
				Duration:        resolveDuration(text),
				IsStackable:     true,
				MaxStacks:       stacks,
			}, nil
		},
	},
	{
		// The bonus scales with the sum of every ally's max HP, not the
		// holder's own.
		name:    "additional-effect/max-hp",
		applies: types.Category.IsAdditionalEffect,
		patterns: patterns(
			`最大hp.*?(?P<value>`+num+`)%`,
			`max(?:imum)? hp.*?(?P<value>`+num+`)%`,
		),
		build: func(c captures, text string) (types.EffectRecord, error) {
			return types.EffectRecord{
				EffectName:      "max HP increase",
				TargetType:      resolveTarget(text),
				StatAffected:    StatMaxHP,
				ValueExpression: "+" + c["value"] + "% of all allies' combined max HP",
				Duration:        resolveDuration(text),
			}, nil
		},
	},
	{
		name:    "eidolon-4/defense-ignore",
		applies: isEidolon(4),
		patterns: patterns(
			`防御力.*?(?P<value>`+num+`)%.*?無視`,
			`ignores?\s+(?P<value>`+num+`)%\s+of\s+(?:the\s+)?(?:enemy|enemies|target)(?:'s|s')?\s+def(?:ense)?`,
			`def(?:ense)?.*?(?P<value>`+num+`)%.*?ignored`,
		),
		build: func(c captures, text string) (types.EffectRecord, error) {
			return types.EffectRecord{
				EffectName:      "defense ignore",
				TargetType:      types.TargetAllAllies,
				StatAffected:    StatDefenseIgnore,
				ValueExpression: c["value"] + "%",
				Duration:        resolveDuration(text),
				Condition:       resolveCondition(text),
			}, nil
		},
	},
}
