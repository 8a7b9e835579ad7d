// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// Category identifies the kind of skill a description belongs to. It acts
// as the namespace for effect extraction rules.
type Category string

const (
	CategoryBasicAttack Category = "basic-attack"
	CategoryCombatSkill Category = "combat-skill"
	CategoryUltimate    Category = "ultimate"
	CategoryTalent      Category = "talent"
	CategoryTechnique   Category = "technique"

	additionalEffectPrefix = "additional-effect-"
	eidolonPrefix          = "eidolon-"

	// MaxAdditionalEffect is the highest additional-effect slot.
	MaxAdditionalEffect = 3

	// MaxEidolonLevel is the highest eidolon tier.
	MaxEidolonLevel = 6
)

// AdditionalEffect returns the category for additional-effect slot n (1-3).
func AdditionalEffect(n int) Category {
	return Category(additionalEffectPrefix + strconv.Itoa(n))
}

// Eidolon returns the category for eidolon level n (1-6).
func Eidolon(n int) Category {
	return Category(eidolonPrefix + strconv.Itoa(n))
}

// baseLabels maps every accepted label of a fixed category to its
// canonical value. Keys are lower-cased with spaces and underscores
// collapsed to hyphens.
var baseLabels = map[string]Category{
	"通常攻撃":         CategoryBasicAttack,
	"basic-attack": CategoryBasicAttack,
	"戦闘スキル":        CategoryCombatSkill,
	"combat-skill": CategoryCombatSkill,
	"必殺技":          CategoryUltimate,
	"ultimate":     CategoryUltimate,
	"天賦":           CategoryTalent,
	"talent":       CategoryTalent,
	"秘技":           CategoryTechnique,
	"technique":    CategoryTechnique,
}

// numberedLabels maps label prefixes of numbered categories to the
// canonical prefix and the allowed maximum.
var numberedLabels = []struct {
	prefix string
	canon  string
	max    int
}{
	{"追加効果", additionalEffectPrefix, MaxAdditionalEffect},
	{"additional-effect-", additionalEffectPrefix, MaxAdditionalEffect},
	{"additional-effect", additionalEffectPrefix, MaxAdditionalEffect},
	{"星魂", eidolonPrefix, MaxEidolonLevel},
	{"eidolon-", eidolonPrefix, MaxEidolonLevel},
	{"eidolon", eidolonPrefix, MaxEidolonLevel},
	{"e", eidolonPrefix, MaxEidolonLevel},
}

// ParseCategory normalizes a skill-category label. Japanese labels
// (戦闘スキル, 追加効果2, 星魂4) and English labels (combat skill,
// additional effect 2, eidolon-4) are accepted.
func ParseCategory(label string) (Category, error) {
	key := strings.ToLower(strings.TrimSpace(width.Fold.String(label)))
	key = strings.NewReplacer(" ", "-", "_", "-").Replace(key)
	if key == "" {
		return "", fmt.Errorf("empty skill category")
	}

	if c, ok := baseLabels[key]; ok {
		return c, nil
	}

	for _, nl := range numberedLabels {
		rest, ok := strings.CutPrefix(key, nl.prefix)
		if !ok || rest == "" {
			continue
		}
		n, err := strconv.Atoi(rest)
		if err != nil {
			continue
		}
		if n < 1 || n > nl.max {
			return "", fmt.Errorf("skill category %q: level %d out of range 1-%d", label, n, nl.max)
		}
		return Category(nl.canon + strconv.Itoa(n)), nil
	}

	return "", fmt.Errorf("unknown skill category %q", label)
}

// IsAdditionalEffect reports whether c is one of the additional-effect slots.
func (c Category) IsAdditionalEffect() bool {
	return c.additionalSlot() > 0
}

func (c Category) additionalSlot() int {
	rest, ok := strings.CutPrefix(string(c), additionalEffectPrefix)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 || n > MaxAdditionalEffect {
		return 0
	}
	return n
}

// EidolonLevel returns the eidolon tier of c, or 0 when c is not an
// eidolon category.
func (c Category) EidolonLevel() int {
	rest, ok := strings.CutPrefix(string(c), eidolonPrefix)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 || n > MaxEidolonLevel {
		return 0
	}
	return n
}

// IsEidolon reports whether c is an eidolon category.
func (c Category) IsEidolon() bool {
	return c.EidolonLevel() > 0
}

// IsCombat reports whether c is one of the five base combat categories.
func (c Category) IsCombat() bool {
	switch c {
	case CategoryBasicAttack, CategoryCombatSkill, CategoryUltimate, CategoryTalent, CategoryTechnique:
		return true
	}
	return false
}

// Rank orders categories for display: basic attack first, eidolon 6 last,
// anything unrecognized after that.
func (c Category) Rank() int {
	switch c {
	case CategoryBasicAttack:
		return 1
	case CategoryCombatSkill:
		return 2
	case CategoryUltimate:
		return 3
	case CategoryTalent:
		return 4
	case CategoryTechnique:
		return 5
	}
	if n := c.additionalSlot(); n > 0 {
		return 5 + n
	}
	if n := c.EidolonLevel(); n > 0 {
		return 5 + MaxAdditionalEffect + n
	}
	return 6 + MaxAdditionalEffect + MaxEidolonLevel
}
