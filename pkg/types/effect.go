// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strconv"
)

// TargetType is who an effect applies to.
type TargetType string

const (
	TargetSelf        TargetType = "self"
	TargetSingleAlly  TargetType = "single-ally"
	TargetAllAllies   TargetType = "all-allies"
	TargetSingleEnemy TargetType = "single-enemy"
	TargetAllEnemies  TargetType = "all-enemies"
	TargetUnknown     TargetType = "unknown"
)

// Duration values that are not turn counts or named states.
const (
	DurationInstant   = "instant"
	DurationPermanent = "permanent"
)

// TurnsDuration formats a duration of n turns, e.g. "3-turns".
func TurnsDuration(n int) string {
	return strconv.Itoa(n) + "-turns"
}

// WhileActive formats a duration bound to a persistent state, e.g.
// "while resonance active".
func WhileActive(state string) string {
	return "while " + state + " active"
}

// EffectRecord is a structured buff or debuff derived from one skill
// description.
type EffectRecord struct {
	// EffectName is a short human-readable label, e.g. "damage dealt increase".
	EffectName string `json:"effect_name" yaml:"effect_name"`

	TargetType TargetType `json:"target_type" yaml:"target_type"`

	// StatAffected is the domain stat the effect modifies.
	StatAffected string `json:"stat_affected" yaml:"stat_affected"`

	// ValueExpression is the amount or formula as written for humans. It is
	// never evaluated numerically.
	ValueExpression string `json:"value_expression" yaml:"value_expression"`

	// Duration is "instant", "permanent", "N-turns" or "while <state> active".
	Duration string `json:"duration" yaml:"duration"`

	// Condition is the trigger precondition. Empty means unconditional.
	Condition string `json:"condition,omitempty" yaml:"condition,omitempty"`

	IsStackable bool `json:"is_stackable" yaml:"is_stackable"`

	// MaxStacks is set only when IsStackable is true.
	MaxStacks int `json:"max_stacks,omitempty" yaml:"max_stacks,omitempty"`
}

// Validate checks the stack invariant: a stackable effect carries a
// maximum of at least one, a non-stackable effect carries none.
func (e EffectRecord) Validate() error {
	if e.IsStackable && e.MaxStacks < 1 {
		return fmt.Errorf("effect %q: stackable without a max stack count", e.EffectName)
	}
	if !e.IsStackable && e.MaxStacks != 0 {
		return fmt.Errorf("effect %q: max stacks %d on a non-stackable effect", e.EffectName, e.MaxStacks)
	}
	return nil
}

// EnhancementNewEffect is the enhancement type for an effect that an
// eidolon grants outright rather than modifies.
const EnhancementNewEffect = "new_effect"

// EidolonEnhancement records what an eidolon tier adds to or changes about
// an effect.
type EidolonEnhancement struct {
	EidolonLevel    int    `json:"eidolon_level" yaml:"eidolon_level"`
	EnhancementType string `json:"enhancement_type" yaml:"enhancement_type"`
	EnhancedValue   string `json:"enhanced_value,omitempty" yaml:"enhanced_value,omitempty"`

	// EffectName and Category identify the effect the enhancement refers
	// to. Storage resolves them to the persisted effect.
	EffectName string   `json:"effect_name" yaml:"effect_name"`
	Category   Category `json:"category,omitempty" yaml:"category,omitempty"`
}

// BuffView is one row of a character's buff/debuff listing.
type BuffView struct {
	Skill       string `json:"skill" yaml:"skill"`
	Name        string `json:"name" yaml:"name"`
	Duration    string `json:"duration" yaml:"duration"`
	Target      string `json:"target" yaml:"target"`
	Stat        string `json:"stat" yaml:"stat"`
	Value       string `json:"value" yaml:"value"`
	Note        string `json:"note" yaml:"note"`
	IsStackable bool   `json:"is_stackable" yaml:"is_stackable"`
	MaxStacks   int    `json:"max_stacks,omitempty" yaml:"max_stacks,omitempty"`
}
