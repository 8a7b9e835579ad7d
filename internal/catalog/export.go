// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/skill-catalog/pkg/types"
)

// Export formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// ExportDocument is the full stored record of one character.
type ExportDocument struct {
	Character    types.Character            `json:"character" yaml:"character"`
	Skills       []types.Skill              `json:"skills" yaml:"skills"`
	Enhancements []types.EidolonEnhancement `json:"eidolon_enhancements" yaml:"eidolon_enhancements"`
}

// Export writes a character with its skills, effects and eidolon
// enhancements to w as YAML or JSON.
func (s *Store) Export(ctx context.Context, id int64, format string, w io.Writer) error {
	if format != FormatYAML && format != FormatJSON {
		return fmt.Errorf("unknown export format %q (want %s or %s)", format, FormatYAML, FormatJSON)
	}

	doc, err := s.exportDocument(ctx, id)
	if err != nil {
		return err
	}

	var data []byte
	switch format {
	case FormatJSON:
		data, err = json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		data = append(data, '\n')
	default:
		data, err = yaml.Marshal(doc)
		if err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
	}
	_, err = w.Write(data)
	return err
}

func (s *Store) exportDocument(ctx context.Context, id int64) (*ExportDocument, error) {
	c, err := s.Character(ctx, id)
	if err != nil {
		return nil, err
	}
	skills, err := s.skillsWithEffects(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT ee.eidolon_level, ee.enhancement_type, ee.enhanced_value,
			bd.effect_name, s.category
		 FROM eidolon_enhancements ee
		 JOIN buffs_debuffs bd ON bd.id = ee.buff_debuff_id
		 JOIN skills s ON s.id = bd.skill_id
		 WHERE ee.character_id = ?
		 ORDER BY ee.eidolon_level, ee.id`, id)
	if err != nil {
		return nil, fmt.Errorf("querying eidolon enhancements: %w", err)
	}
	defer rows.Close()

	doc := &ExportDocument{
		Character:    c,
		Skills:       skills,
		Enhancements: []types.EidolonEnhancement{},
	}
	for rows.Next() {
		var (
			enh      types.EidolonEnhancement
			value    sql.NullString
			category string
		)
		if err := rows.Scan(&enh.EidolonLevel, &enh.EnhancementType, &value,
			&enh.EffectName, &category); err != nil {
			return nil, fmt.Errorf("scanning eidolon enhancement: %w", err)
		}
		enh.EnhancedValue = value.String
		enh.Category = types.Category(category)
		doc.Enhancements = append(doc.Enhancements, enh)
	}
	return doc, rows.Err()
}
