// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package csvimport

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/skill-catalog/pkg/types"
)

const freeTextCSV = `キャラクター名,ロビン,
属性,物理,
運命,調和,
通常攻撃,翼の流れ,敵単体に物理属性ダメージを与える
戦闘スキル,アリア,味方全体の与ダメージ+50%、3ターン継続
天賦,調べ,味方全体の会心ダメージ+20%
追加効果1,余韻,"与ダメージ+6%、最大5層累積"
星魂4,共鳴,協奏状態中、敵の防御力を15%無視する
謎の行,x,y
`

const structuredCSV = `キャラクター名,トリビー
属性,量子
運命,調和
バージョン,3.0
スキル,戦闘スキル,スキル名,説明文
スキル,必殺技,必殺名,説明
バフ,戦闘スキル,全属性耐性貫通,all-allies,all-element res penetration,+24%,3-turns,,false,
バフ,必殺技,与ダメージ増加,all-allies,damage dealt,+30%,while barrier active,barrier-active,TRUE,3
星魂,4,星魂名,説明
星魂強化,4,全属性耐性貫通,value_up,+6%
`

func parse(t *testing.T, input string) *Result {
	t.Helper()
	res, err := New(nil).Parse(strings.NewReader(input))
	require.NoError(t, err)
	return res
}

func TestParseFreeText(t *testing.T) {
	res := parse(t, freeTextCSV)

	ci := res.Import
	assert.Equal(t, "ロビン", ci.Character.Name)
	assert.Equal(t, "物理", ci.Character.Element)
	assert.Equal(t, "調和", ci.Character.Path)
	assert.Equal(t, 5, res.FreeText)
	assert.Zero(t, res.Structured)
	assert.Len(t, res.Warnings, 1)
	assert.NotEmpty(t, res.UploadID)

	require.Len(t, ci.Skills, 5)
	assert.Equal(t, types.CategoryBasicAttack, ci.Skills[0].Category)
	assert.Empty(t, ci.Skills[0].Effects)

	combat := ci.Skills[1]
	assert.Equal(t, "アリア", combat.Name)
	require.Len(t, combat.Effects, 1)
	assert.Equal(t, types.TargetAllAllies, combat.Effects[0].TargetType)
	assert.Equal(t, "3-turns", combat.Effects[0].Duration)

	talent := ci.Skills[2]
	require.Len(t, talent.Effects, 1)
	assert.Equal(t, types.DurationPermanent, talent.Effects[0].Duration)

	additional := ci.Skills[3]
	require.Len(t, additional.Effects, 1)
	assert.True(t, additional.Effects[0].IsStackable)
	assert.Equal(t, 5, additional.Effects[0].MaxStacks)

	want := []types.EidolonEnhancement{{
		EidolonLevel:    4,
		EnhancementType: types.EnhancementNewEffect,
		EnhancedValue:   "15%",
		EffectName:      "defense ignore",
		Category:        types.Eidolon(4),
	}}
	if diff := cmp.Diff(want, ci.Enhancements); diff != "" {
		t.Errorf("enhancements mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFreeTextRejoinsUnquotedCommas(t *testing.T) {
	res := parse(t, "キャラクター名,ロビン\n戦闘スキル,アリア,味方全体の与ダメージ+30%,2ターン継続,,\n")

	require.Len(t, res.Import.Skills, 1)
	skill := res.Import.Skills[0]
	assert.Equal(t, "味方全体の与ダメージ+30%,2ターン継続", skill.Description)
	require.Len(t, skill.Effects, 1)
	assert.Equal(t, "2-turns", skill.Effects[0].Duration)
}

func TestParseFreeTextPositionalMetadata(t *testing.T) {
	input := `キャラ,ロビン
タイプ,物理
道,調和
戦闘スキル,アリア,味方全体の与ダメージ+50%、3ターン継続
謎の行,x,y
`
	res := parse(t, input)

	c := res.Import.Character
	assert.Equal(t, "ロビン", c.Name)
	assert.Equal(t, "物理", c.Element)
	assert.Equal(t, "調和", c.Path)
	require.Len(t, res.Import.Skills, 1)
	assert.Len(t, res.Import.Skills[0].Effects, 1)
	assert.Len(t, res.Warnings, 1, "unknown labels after the third line are still skipped")
}

func TestParsePositionalMetadataMixedWithLabels(t *testing.T) {
	res := parse(t, "キャラクター名,ロビン\nタイプ,物理\n戦闘スキル,アリア,説明\n")

	c := res.Import.Character
	assert.Equal(t, "ロビン", c.Name)
	assert.Equal(t, "物理", c.Element)
	assert.Empty(t, c.Path)
	assert.Empty(t, res.Warnings)
}

func TestParseStructured(t *testing.T) {
	res := parse(t, structuredCSV)

	ci := res.Import
	assert.Equal(t, "トリビー", ci.Character.Name)
	assert.Equal(t, "3.0", ci.Character.Version)
	assert.Zero(t, res.FreeText)
	assert.Equal(t, 6, res.Structured)
	assert.Empty(t, res.Warnings)

	require.Len(t, ci.Skills, 3)

	wantCombat := []types.EffectRecord{{
		EffectName:      "全属性耐性貫通",
		TargetType:      types.TargetAllAllies,
		StatAffected:    "all-element res penetration",
		ValueExpression: "+24%",
		Duration:        "3-turns",
	}}
	if diff := cmp.Diff(wantCombat, ci.Skills[0].Effects); diff != "" {
		t.Errorf("combat effects mismatch (-want +got):\n%s", diff)
	}

	wantUltimate := []types.EffectRecord{{
		EffectName:      "与ダメージ増加",
		TargetType:      types.TargetAllAllies,
		StatAffected:    "damage dealt",
		ValueExpression: "+30%",
		Duration:        "while barrier active",
		Condition:       "barrier-active",
		IsStackable:     true,
		MaxStacks:       3,
	}}
	if diff := cmp.Diff(wantUltimate, ci.Skills[1].Effects); diff != "" {
		t.Errorf("ultimate effects mismatch (-want +got):\n%s", diff)
	}

	eidolon := ci.Skills[2]
	assert.Equal(t, types.Eidolon(4), eidolon.Category)
	assert.Equal(t, "星魂名", eidolon.Name)
	assert.Empty(t, eidolon.Effects, "structured skills are not run through the extractor")

	wantEnh := []types.EidolonEnhancement{{
		EidolonLevel:    4,
		EnhancementType: "value_up",
		EnhancedValue:   "+6%",
		EffectName:      "全属性耐性貫通",
	}}
	if diff := cmp.Diff(wantEnh, ci.Enhancements); diff != "" {
		t.Errorf("enhancements mismatch (-want +got):\n%s", diff)
	}
}

func TestParseStructuredDefaults(t *testing.T) {
	input := `キャラクター名,テスト
バフ,戦闘スキル,短い行
バフ,天賦,会心,self,crit damage,+12%,permanent,,yes,
バフ,追加効果1,累積,self,damage dealt,+5%,,,true,
バフ,追加効果2,非累積,self,damage dealt,+5%,,,false,4
星魂強化,2,短い行
`
	res := parse(t, input)
	ci := res.Import

	// No skill rows: each buff category becomes an unnamed skill.
	require.Len(t, ci.Skills, 4)

	short := ci.Skills[0].Effects[0]
	assert.Equal(t, "短い行", short.EffectName)
	assert.Equal(t, types.TargetUnknown, short.TargetType)
	assert.Equal(t, types.DurationInstant, short.Duration)
	assert.False(t, short.IsStackable)

	crit := ci.Skills[1].Effects[0]
	assert.False(t, crit.IsStackable, "unparsable boolean reads as false")

	stacking := ci.Skills[2].Effects[0]
	assert.True(t, stacking.IsStackable)
	assert.Equal(t, 1, stacking.MaxStacks, "stackable row without a count defaults to 1")

	flat := ci.Skills[3].Effects[0]
	assert.False(t, flat.IsStackable)
	assert.Zero(t, flat.MaxStacks, "max stacks dropped on non-stackable rows")

	for _, s := range ci.Skills {
		for _, e := range s.Effects {
			assert.NoError(t, e.Validate())
		}
	}

	require.Len(t, ci.Enhancements, 1)
	assert.Equal(t, types.EnhancementNewEffect, ci.Enhancements[0].EnhancementType)
	assert.Empty(t, ci.Enhancements[0].EnhancedValue)

	// One bad boolean plus four buff categories without a skill row.
	assert.Len(t, res.Warnings, 5)
}

func TestParseStructuredBuffsOverrideExtraction(t *testing.T) {
	input := `キャラクター名,テスト
戦闘スキル,アリア,味方全体の与ダメージ+30%
バフ,戦闘スキル,手入力,all-allies,damage dealt,+35%,2-turns,,false,
`
	res := parse(t, input)
	require.Len(t, res.Import.Skills, 1)
	effects := res.Import.Skills[0].Effects
	require.Len(t, effects, 1)
	assert.Equal(t, "手入力", effects[0].EffectName)
	assert.Equal(t, "+35%", effects[0].ValueExpression)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"empty", "", ErrEmpty},
		{"blank lines", "\n\n,,\n", ErrEmpty},
		{"only garbage", "謎\n", ErrEmpty},
		{"no name", "属性,物理\n戦闘スキル,アリア,説明\n", ErrMissingName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(nil).Parse(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseSkipsBOM(t *testing.T) {
	res := parse(t, "\xEF\xBB\xBFキャラクター名,ロビン\n")
	assert.Equal(t, "ロビン", res.Import.Character.Name)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		record []string
		check  func(t *testing.T, l Line)
	}{
		{
			name:   "eidolon tag",
			record: []string{"星魂", "4", "名", "説明"},
			check: func(t *testing.T, l Line) {
				row, ok := l.(*TaggedRow)
				require.True(t, ok, "got %T", l)
				assert.Equal(t, TagEidolon, row.Tag)
				assert.Equal(t, "4", row.Field(0))
				assert.Empty(t, row.Field(9))
			},
		},
		{
			name:   "eidolon skill line",
			record: []string{"星魂4", "名", "説明"},
			check: func(t *testing.T, l Line) {
				line, ok := l.(*SkillLine)
				require.True(t, ok, "got %T", l)
				assert.Equal(t, types.Eidolon(4), line.Category)
			},
		},
		{
			name:   "english metadata",
			record: []string{"Element", "quantum"},
			check: func(t *testing.T, l Line) {
				line, ok := l.(*MetadataLine)
				require.True(t, ok, "got %T", l)
				assert.Equal(t, FieldElement, line.Field)
				assert.Equal(t, "quantum", line.Value)
			},
		},
		{
			name:   "english enhancement tag",
			record: []string{"eidolon enhancement", "2", "x"},
			check: func(t *testing.T, l Line) {
				row, ok := l.(*TaggedRow)
				require.True(t, ok, "got %T", l)
				assert.Equal(t, TagEnhancement, row.Tag)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := Classify(7, tt.record)
			require.NoError(t, err)
			assert.Equal(t, 7, l.Number())
			tt.check(t, l)
		})
	}
}

func TestClassifyErrors(t *testing.T) {
	for _, record := range [][]string{
		{},
		{"戦闘スキル", "名前だけ"},
		{"不明", "a", "b"},
	} {
		_, err := Classify(1, record)
		assert.Error(t, err, "%q", record)
	}
}
