// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package effect turns free-text skill descriptions into structured
// buff/debuff records using a closed table of hand-written patterns.
//
// Extraction is best-effort: text that no rule recognizes yields no
// record, and a rule whose captures do not make a valid record is skipped
// without affecting the others. The package holds no mutable state and is
// safe for concurrent use.
package effect

import (
	"github.com/pdiddy/skill-catalog/pkg/types"
)

// Extract returns the effects described by a skill of the given category.
// Only rules registered for that category are consulted; an unrecognized
// category yields nothing. Records come back in rule-table order.
func Extract(category types.Category, description string) []types.EffectRecord {
	text := normalize(description)
	if text == "" {
		return nil
	}

	var effects []types.EffectRecord
	for _, r := range rules {
		if !r.applies(category) {
			continue
		}
		c, ok := r.match(text)
		if !ok {
			continue
		}
		rec, err := r.build(c, text)
		if err != nil {
			continue
		}
		if err := rec.Validate(); err != nil {
			continue
		}
		effects = append(effects, rec)
	}
	return effects
}

// RuleNames lists the rules that apply to category, in evaluation order.
func RuleNames(category types.Category) []string {
	var names []string
	for _, r := range rules {
		if r.applies(category) {
			names = append(names, r.name)
		}
	}
	return names
}
