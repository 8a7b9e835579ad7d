// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package csvimport reads character CSV uploads into CharacterImport
// values ready for storage.
//
// Two layouts are accepted and may be mixed line by line. The structured
// layout tags every row (スキル, バフ, 星魂, 星魂強化) and is trusted
// verbatim; it is the primary format. The legacy free-text layout carries
// "category,skillName,description" lines whose effects are derived by the
// effect extractor.
package csvimport

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/skill-catalog/internal/effect"
	"github.com/pdiddy/skill-catalog/pkg/types"
)

var (
	// ErrEmpty is returned for input without a single usable line.
	ErrEmpty = errors.New("csv file is empty")

	// ErrMissingName is returned when no line names the character.
	ErrMissingName = errors.New("csv file has no character name line")
)

// Result is the outcome of parsing one upload.
type Result struct {
	// UploadID correlates log lines of one upload.
	UploadID string

	Import types.CharacterImport

	// Structured counts tagged rows, FreeText counts free-text skill lines.
	Structured int
	FreeText   int

	// Warnings lists lines that were skipped or defaulted.
	Warnings []string
}

// Importer parses character CSV files.
type Importer struct {
	logger *zap.Logger
}

// New returns an Importer that reports skipped lines to logger. A nil
// logger discards them.
func New(logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{logger: logger}
}

// Parse reads a character CSV. Malformed or unrecognized lines become
// warnings; only an empty file or a missing character name fail the
// parse.
func (im *Importer) Parse(r io.Reader) (*Result, error) {
	res := &Result{UploadID: uuid.NewString()}
	log := im.logger.With(zap.String("upload_id", res.UploadID))

	warn := func(msg string) {
		res.Warnings = append(res.Warnings, msg)
		log.Warn("skipping csv line", zap.String("reason", msg))
	}

	lines, err := readLines(r, warn)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmpty
	}

	b := newBuilder(warn)
	for _, line := range lines {
		switch l := line.(type) {
		case *MetadataLine:
			b.metadata(l)
		case *SkillLine:
			res.FreeText++
			b.freeText(l)
		case *TaggedRow:
			res.Structured++
			b.tagged(l)
		}
	}

	res.Import = b.finish()
	if res.Import.Character.Name == "" {
		return nil, ErrMissingName
	}

	log.Info("parsed character csv",
		zap.String("character", res.Import.Character.Name),
		zap.Int("skills", len(res.Import.Skills)),
		zap.Int("effects", res.Import.EffectCount()),
		zap.Int("enhancements", len(res.Import.Enhancements)),
		zap.Int("structured_rows", res.Structured),
		zap.Int("free_text_lines", res.FreeText),
		zap.Int("warnings", len(res.Warnings)),
	)
	return res, nil
}

// readLines classifies every non-blank record of r. Unlabeled records
// among the first three are name, element and path in that order.
func readLines(r io.Reader, warn func(string)) ([]Line, error) {
	reader := csv.NewReader(skipBOM(r))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var (
		lines   []Line
		ordinal int
	)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				warn(pe.Error())
				continue
			}
			return nil, fmt.Errorf("reading csv: %w", err)
		}
		if isBlank(record) {
			continue
		}
		num, _ := reader.FieldPos(0)
		line, err := Classify(num, record)
		if err != nil {
			if meta, ok := positionalMetadata(ordinal, num, record); ok {
				line, err = meta, nil
			}
		}
		ordinal++
		if err != nil {
			warn(err.Error())
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// skipBOM drops a leading UTF-8 byte order mark, which spreadsheet
// exports of Japanese text usually carry.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if b, err := br.Peek(3); err == nil && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = br.Discard(3)
	}
	return br
}

// builder accumulates classified lines into a CharacterImport.
type builder struct {
	warn func(string)

	character types.Character
	skills    []types.Skill
	// extracted marks skills whose effects come from the extractor.
	extracted []bool
	buffs    map[types.Category][]types.EffectRecord
	// buffOrder keeps categories of structured buffs in first-seen order.
	buffOrder    []types.Category
	enhancements []types.EidolonEnhancement
}

func newBuilder(warn func(string)) *builder {
	return &builder{
		warn:  warn,
		buffs: make(map[types.Category][]types.EffectRecord),
	}
}

func (b *builder) metadata(l *MetadataLine) {
	switch l.Field {
	case FieldName:
		b.character.Name = l.Value
	case FieldElement:
		b.character.Element = l.Value
	case FieldPath:
		b.character.Path = l.Value
	case FieldVersion:
		b.character.Version = l.Value
	}
}

func (b *builder) freeText(l *SkillLine) {
	b.addSkill(types.Skill{Category: l.Category, Name: l.Name, Description: l.Description}, true)
}

func (b *builder) addSkill(s types.Skill, extract bool) {
	b.skills = append(b.skills, s)
	b.extracted = append(b.extracted, extract)
}

func (b *builder) tagged(l *TaggedRow) {
	switch l.Tag {
	case TagSkill:
		category, err := types.ParseCategory(l.Field(0))
		if err != nil {
			b.warn(fmt.Sprintf("line %d: %v", l.Num, err))
			return
		}
		b.addSkill(types.Skill{Category: category, Name: l.Field(1), Description: l.Rest(2)}, false)

	case TagEidolon:
		level, err := parseLevel(l.Field(0))
		if err != nil {
			b.warn(fmt.Sprintf("line %d: %v", l.Num, err))
			return
		}
		b.addSkill(types.Skill{Category: types.Eidolon(level), Name: l.Field(1), Description: l.Rest(2)}, false)

	case TagBuff:
		category, err := types.ParseCategory(l.Field(0))
		if err != nil {
			b.warn(fmt.Sprintf("line %d: %v", l.Num, err))
			return
		}
		rec := b.buffRecord(l)
		if _, seen := b.buffs[category]; !seen {
			b.buffOrder = append(b.buffOrder, category)
		}
		b.buffs[category] = append(b.buffs[category], rec)

	case TagEnhancement:
		level, err := parseLevel(l.Field(0))
		if err != nil {
			b.warn(fmt.Sprintf("line %d: %v", l.Num, err))
			return
		}
		enh := types.EidolonEnhancement{
			EidolonLevel:    level,
			EffectName:      l.Field(1),
			EnhancementType: l.Field(2),
			EnhancedValue:   l.Field(3),
		}
		if enh.EnhancementType == "" {
			enh.EnhancementType = types.EnhancementNewEffect
		}
		b.enhancements = append(b.enhancements, enh)
	}
}

// buffRecord maps a バフ row positionally:
// category, effectName, target, stat, value, duration, condition,
// isStackable, maxStacks.
func (b *builder) buffRecord(l *TaggedRow) types.EffectRecord {
	rec := types.EffectRecord{
		EffectName:      l.Field(1),
		TargetType:      types.TargetType(l.Field(2)),
		StatAffected:    l.Field(3),
		ValueExpression: l.Field(4),
		Duration:        l.Field(5),
		Condition:       l.Field(6),
	}
	if rec.TargetType == "" {
		rec.TargetType = types.TargetUnknown
	}
	if rec.Duration == "" {
		rec.Duration = types.DurationInstant
	}

	if raw := l.Field(7); raw != "" {
		stackable, err := strconv.ParseBool(raw)
		if err != nil {
			b.warn(fmt.Sprintf("line %d: is_stackable %q is not a boolean, treating as false", l.Num, raw))
		}
		rec.IsStackable = stackable
	}

	if rec.IsStackable {
		rec.MaxStacks = 1
		if raw := l.Field(8); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				b.warn(fmt.Sprintf("line %d: max_stacks %q is not a positive integer, using 1", l.Num, raw))
			} else {
				rec.MaxStacks = n
			}
		}
	}
	return rec
}

func parseLevel(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 || n > types.MaxEidolonLevel {
		return 0, fmt.Errorf("eidolon level %q must be 1-%d", raw, types.MaxEidolonLevel)
	}
	return n, nil
}

// finish attaches effects to skills. Structured buffs of a category win
// over extraction; eidolon skills parsed from free text also produce a
// new_effect enhancement per extracted effect.
func (b *builder) finish() types.CharacterImport {
	out := types.CharacterImport{Character: b.character}
	attached := make(map[types.Category]bool)

	for i, s := range b.skills {
		if buffs, ok := b.buffs[s.Category]; ok && !attached[s.Category] {
			s.Effects = buffs
			attached[s.Category] = true
		} else if b.extracted[i] {
			s.Effects = effect.Extract(s.Category, s.Description)
			if level := s.Category.EidolonLevel(); level > 0 {
				for _, e := range s.Effects {
					out.Enhancements = append(out.Enhancements, types.EidolonEnhancement{
						EidolonLevel:    level,
						EnhancementType: types.EnhancementNewEffect,
						EnhancedValue:   e.ValueExpression,
						EffectName:      e.EffectName,
						Category:        s.Category,
					})
				}
			}
		}
		out.Skills = append(out.Skills, s)
	}

	for _, category := range b.buffOrder {
		if attached[category] {
			continue
		}
		b.warn(fmt.Sprintf("buff rows for %s have no skill row, adding an unnamed skill", category))
		out.Skills = append(out.Skills, types.Skill{Category: category, Effects: b.buffs[category]})
	}

	out.Enhancements = append(out.Enhancements, b.enhancements...)
	return out
}
