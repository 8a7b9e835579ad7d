// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Character holds the identity and base stats of a catalogued character.
// Stat fields are nil until a stats upload sets them.
type Character struct {
	// ID is assigned by storage. Zero before the character is persisted.
	ID int64 `json:"id" yaml:"id"`

	// Name is unique across the catalog and is the upsert key.
	Name string `json:"name" yaml:"name"`

	// Element is the damage element, e.g. "物理" or "quantum".
	Element string `json:"element" yaml:"element"`

	// Path is the character's combat path, e.g. "調和".
	Path string `json:"path" yaml:"path"`

	// Version is the game version the character was released in.
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	HP      *int `json:"hp" yaml:"hp"`
	Attack  *int `json:"attack" yaml:"attack"`
	Defense *int `json:"defense" yaml:"defense"`
	Speed   *int `json:"speed" yaml:"speed"`
	EP      *int `json:"ep" yaml:"ep"`

	// StatBoosts holds up to three trace stat boosts.
	StatBoosts [3]StatBoost `json:"stat_boosts" yaml:"stat_boosts"`
}

// StatBoost is one trace stat bonus, e.g. {"会心率", 5.3}.
type StatBoost struct {
	Type  string   `json:"type,omitempty" yaml:"type,omitempty"`
	Value *float64 `json:"value,omitempty" yaml:"value,omitempty"`
}

// Skill is one skill line of a character with the effects derived from it.
type Skill struct {
	// ID is assigned by storage.
	ID int64 `json:"id,omitempty" yaml:"id,omitempty"`

	Category    Category       `json:"type" yaml:"type"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	Effects     []EffectRecord `json:"effects,omitempty" yaml:"effects,omitempty"`
}

// SkillGroups partitions a character's skills the way the detail view
// presents them.
type SkillGroups struct {
	Combat            []Skill `json:"combat_skills" yaml:"combat_skills"`
	AdditionalEffects []Skill `json:"additional_effects" yaml:"additional_effects"`
	Eidolons          []Skill `json:"eidolons" yaml:"eidolons"`
}

// CharacterImport is the in-memory product of parsing one character CSV.
type CharacterImport struct {
	Character    Character            `json:"character" yaml:"character"`
	Skills       []Skill              `json:"skills" yaml:"skills"`
	Enhancements []EidolonEnhancement `json:"eidolon_enhancements,omitempty" yaml:"eidolon_enhancements,omitempty"`
}

// EffectCount returns the number of effects across all skills.
func (ci *CharacterImport) EffectCount() int {
	n := 0
	for _, s := range ci.Skills {
		n += len(s.Effects)
	}
	return n
}

// StatsRow is one row of a stats update CSV. Nil fields clear the stored
// value.
type StatsRow struct {
	Name       string       `json:"name" yaml:"name"`
	HP         *int         `json:"hp" yaml:"hp"`
	Attack     *int         `json:"attack" yaml:"attack"`
	Defense    *int         `json:"defense" yaml:"defense"`
	Speed      *int         `json:"speed" yaml:"speed"`
	EP         *int         `json:"ep" yaml:"ep"`
	StatBoosts [3]StatBoost `json:"stat_boosts" yaml:"stat_boosts"`
}
