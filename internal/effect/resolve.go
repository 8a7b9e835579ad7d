// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package effect

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/skill-catalog/pkg/types"
)

// Conditions an effect can be gated on. Condition resolution only ever
// returns one of these values.
const (
	ConditionDivineRevelation = "divine-revelation-active"
	ConditionResonance        = "resonance-active"
	ConditionBarrier          = "barrier-active"
	ConditionSPConsumption    = "on-sp-consumption"
	ConditionAfterFollowUp    = "after-follow-up-attack"
	ConditionAfterAllyAttack  = "after-ally-attack"
	ConditionAfterAllyUlt     = "after-ally-ultimate"
)

// phraseEntry maps a set of normalized phrases to one canonical value.
type phraseEntry struct {
	value   string
	phrases []string
}

// targetPhrases is ordered by precedence. Descriptions often name several
// targets (an enemy in a trigger clause, allies as the recipient); the
// first entry that matches wins.
var targetPhrases = []phraseEntry{
	{string(types.TargetAllAllies), []string{"味方全体", "all allies"}},
	{string(types.TargetSingleAlly), []string{"味方単体", "single ally", "one ally"}},
	{string(types.TargetAllEnemies), []string{"敵全体", "all enemies"}},
	{string(types.TargetSingleEnemy), []string{"敵単体", "single enemy", "one enemy"}},
	{string(types.TargetSelf), []string{"自身"}},
}

// selfRe matches "self" as a word, so "itself" and "yourself" do not
// count as a target.
var selfRe = regexp.MustCompile(`\bself\b`)

// statePhrases name persistent states that bound an effect's duration.
var statePhrases = []phraseEntry{
	{types.WhileActive("resonance"), []string{"協奏", "resonance"}},
	{types.WhileActive("barrier"), []string{"結界", "barrier"}},
}

var permanentPhrases = []string{"永続", "permanent"}

// turnsRe matches an explicit turn count: "2ターン", "3 turns", "1 turn".
var turnsRe = regexp.MustCompile(`(\d+)\s*(?:ターン|turns?\b)`)

// conditionPhrases is the closed list of known triggers, in lookup order.
var conditionPhrases = []phraseEntry{
	{ConditionDivineRevelation, []string{"神の啓示", "divine revelation"}},
	{ConditionResonance, []string{"協奏", "resonance"}},
	{ConditionBarrier, []string{"結界展開", "barrier"}},
	{ConditionSPConsumption, []string{"sp消費", "consumes sp", "consuming sp", "sp consumption", "sp is consumed"}},
	{ConditionAfterFollowUp, []string{"追加攻撃後", "after a follow-up attack", "after follow-up attack", "after an extra attack", "after extra attack"}},
	{ConditionAfterAllyAttack, []string{"味方攻撃後", "after an ally attacks", "after ally attacks", "after allies attack"}},
	{ConditionAfterAllyUlt, []string{"味方必殺技後", "after an ally uses their ultimate", "after an ally's ultimate", "after ally ultimate"}},
}

// lookup returns the value of the first entry with a phrase contained in
// text.
func lookup(entries []phraseEntry, text string) (string, bool) {
	for _, e := range entries {
		for _, p := range e.phrases {
			if strings.Contains(text, p) {
				return e.value, true
			}
		}
	}
	return "", false
}

// resolveTarget returns the effect target named in text, or TargetUnknown.
func resolveTarget(text string) types.TargetType {
	if v, ok := lookup(targetPhrases, text); ok {
		return types.TargetType(v)
	}
	if selfRe.MatchString(text) {
		return types.TargetSelf
	}
	return types.TargetUnknown
}

// resolveDuration prefers an explicit turn count, then "permanent", then a
// named state, and falls back to instant.
func resolveDuration(text string) string {
	if m := turnsRe.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return types.TurnsDuration(n)
		}
	}
	for _, p := range permanentPhrases {
		if strings.Contains(text, p) {
			return types.DurationPermanent
		}
	}
	if v, ok := lookup(statePhrases, text); ok {
		return v
	}
	return types.DurationInstant
}

// resolveCondition returns the first known trigger mentioned in text, or
// "" when there is none.
func resolveCondition(text string) string {
	v, _ := lookup(conditionPhrases, text)
	return v
}
