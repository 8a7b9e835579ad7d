// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package csvimport

import (
	"fmt"
	"strings"

	"golang.org/x/text/width"

	"github.com/pdiddy/skill-catalog/pkg/types"
)

// Line is one classified CSV line: a *MetadataLine, a *SkillLine (free
// text, fed to the effect extractor) or a *TaggedRow (structured, trusted
// as is).
type Line interface {
	// Number is the 1-based line number in the source file.
	Number() int
}

// MetadataField names a character attribute carried by a metadata line.
type MetadataField string

const (
	FieldName    MetadataField = "name"
	FieldElement MetadataField = "element"
	FieldPath    MetadataField = "path"
	FieldVersion MetadataField = "version"
)

// MetadataLine is "キャラクター名,ロビン" and friends.
type MetadataLine struct {
	Num   int
	Field MetadataField
	Value string
}

func (l *MetadataLine) Number() int { return l.Num }

// SkillLine is a free-text skill: "category,skillName,description".
type SkillLine struct {
	Num         int
	Category    types.Category
	Name        string
	Description string
}

func (l *SkillLine) Number() int { return l.Num }

// Tag identifies the kind of a structured row.
type Tag string

const (
	TagSkill       Tag = "skill"
	TagBuff        Tag = "buff"
	TagEidolon     Tag = "eidolon"
	TagEnhancement Tag = "eidolon-enhancement"
)

// TaggedRow is a structured row. Fields excludes the tag column.
type TaggedRow struct {
	Num    int
	Tag    Tag
	Fields []string
}

func (l *TaggedRow) Number() int { return l.Num }

// Field returns the i-th field, or "" when the row is too short.
func (l *TaggedRow) Field(i int) string {
	if i < 0 || i >= len(l.Fields) {
		return ""
	}
	return strings.TrimSpace(l.Fields[i])
}

// Rest joins fields i.. with commas. Descriptions may contain unquoted
// commas that the CSV reader split apart.
func (l *TaggedRow) Rest(i int) string {
	if i >= len(l.Fields) {
		return ""
	}
	return joinFields(l.Fields[i:])
}

// joinFields rejoins split description fields, dropping the empty
// trailing columns spreadsheet exports tend to add.
func joinFields(fields []string) string {
	return strings.TrimSpace(strings.TrimRight(strings.Join(fields, ","), ", "))
}

var metadataLabels = map[string]MetadataField{
	"キャラクター名":   FieldName,
	"名前":        FieldName,
	"name":      FieldName,
	"character": FieldName,
	"属性":        FieldElement,
	"element":   FieldElement,
	"運命":        FieldPath,
	"path":      FieldPath,
	"バージョン":     FieldVersion,
	"version":   FieldVersion,
}

var tagLabels = map[string]Tag{
	"スキル":                 TagSkill,
	"skill":               TagSkill,
	"バフ":                  TagBuff,
	"buff":                TagBuff,
	"星魂":                  TagEidolon,
	"eidolon":             TagEidolon,
	"星魂強化":                TagEnhancement,
	"eidolon-enhancement": TagEnhancement,
}

func labelKey(s string) string {
	key := strings.ToLower(strings.TrimSpace(width.Fold.String(s)))
	return strings.NewReplacer(" ", "-", "_", "-").Replace(key)
}

// Classify decides what a CSV record is. Tags and metadata labels are
// checked before skill categories, so "星魂" is a structured eidolon row
// while "星魂4" is a free-text eidolon skill.
func Classify(num int, record []string) (Line, error) {
	if len(record) == 0 {
		return nil, fmt.Errorf("line %d: empty record", num)
	}
	key := labelKey(record[0])

	if tag, ok := tagLabels[key]; ok {
		return &TaggedRow{Num: num, Tag: tag, Fields: record[1:]}, nil
	}

	if field, ok := metadataLabels[key]; ok {
		value := ""
		if len(record) >= 2 {
			value = strings.TrimSpace(record[1])
		}
		return &MetadataLine{Num: num, Field: field, Value: value}, nil
	}

	category, err := types.ParseCategory(record[0])
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", num, err)
	}
	if len(record) < 3 {
		return nil, fmt.Errorf("line %d: skill line needs category, name and description, got %d fields", num, len(record))
	}
	return &SkillLine{
		Num:         num,
		Category:    category,
		Name:        strings.TrimSpace(record[1]),
		Description: joinFields(record[2:]),
	}, nil
}

// positionalFields are the fields the first three lines of a free-text
// file carry when their labels are not recognized.
var positionalFields = [...]MetadataField{FieldName, FieldElement, FieldPath}

// positionalMetadata reads field 2 of one of the first three records as
// name, element or path by position. ordinal is the 0-based index among
// non-blank records.
func positionalMetadata(ordinal, num int, record []string) (*MetadataLine, bool) {
	if ordinal >= len(positionalFields) || len(record) < 2 {
		return nil, false
	}
	value := strings.TrimSpace(record[1])
	if value == "" {
		return nil, false
	}
	return &MetadataLine{Num: num, Field: positionalFields[ordinal], Value: value}, true
}
