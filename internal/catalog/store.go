// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog persists characters, their skills, effects and eidolon
// enhancements in SQLite and answers the queries the CLI and HTTP API
// need.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/skill-catalog/pkg/types"
)

const (
	defaultPath            = "data/catalog.db"
	defaultMaxOpenConns    = 10
	defaultConnMaxIdleTime = 30 * time.Second
)

// ErrNotFound is returned when a character id does not exist.
var ErrNotFound = errors.New("character not found")

// Store manages the catalog SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the catalog database at cfg.Path and creates the
// schema if it does not exist.
func Open(cfg types.StoreConfig) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = defaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = defaultMaxOpenConns
	}
	idle := cfg.ConnMaxIdleTime
	if idle <= 0 {
		idle = defaultConnMaxIdleTime
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetConnMaxIdleTime(idle)

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS characters (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			element TEXT,
			path TEXT,
			version TEXT,
			created_at TEXT NOT NULL,
			hp INTEGER,
			attack INTEGER,
			defense INTEGER,
			speed INTEGER,
			ep INTEGER,
			stat_boost_1_type TEXT,
			stat_boost_1_value REAL,
			stat_boost_2_type TEXT,
			stat_boost_2_value REAL,
			stat_boost_3_type TEXT,
			stat_boost_3_value REAL
		)`,
		`CREATE TABLE IF NOT EXISTS skills (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			character_id INTEGER NOT NULL REFERENCES characters(id),
			category TEXT NOT NULL,
			name TEXT,
			description TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS buffs_debuffs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			skill_id INTEGER NOT NULL REFERENCES skills(id),
			effect_name TEXT NOT NULL,
			target_type TEXT,
			stat_affected TEXT,
			value_expression TEXT,
			duration TEXT,
			condition TEXT,
			is_stackable INTEGER NOT NULL DEFAULT 0,
			max_stacks INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS eidolon_enhancements (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			character_id INTEGER NOT NULL REFERENCES characters(id),
			buff_debuff_id INTEGER NOT NULL REFERENCES buffs_debuffs(id),
			eidolon_level INTEGER NOT NULL,
			enhancement_type TEXT NOT NULL,
			enhanced_value TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_skills_character_id ON skills(character_id)`,
		`CREATE INDEX IF NOT EXISTS idx_buffs_debuffs_skill_id ON buffs_debuffs(skill_id)`,
		`CREATE INDEX IF NOT EXISTS idx_eidolon_enhancements_character_id ON eidolon_enhancements(character_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// ImportSummary holds counts from storing one CharacterImport.
type ImportSummary struct {
	CharacterID  int64
	Skills       int
	Effects      int
	Enhancements int

	// Unresolved counts enhancements whose effect could not be found among
	// the imported effects. They are not stored.
	Unresolved int
}

// Import stores ci, replacing every skill, effect and enhancement
// previously stored for a character of the same name. Stats set by an
// earlier stats upload are kept.
func (s *Store) Import(ctx context.Context, ci *types.CharacterImport) (ImportSummary, error) {
	if ci.Character.Name == "" {
		return ImportSummary{}, fmt.Errorf("character name is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	c := ci.Character
	_, err = tx.ExecContext(ctx,
		`INSERT INTO characters (name, element, path, version, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
			element=excluded.element, path=excluded.path, version=excluded.version`,
		c.Name, c.Element, c.Path, nullString(c.Version), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("upserting character: %w", err)
	}

	summary := ImportSummary{}
	if err := tx.QueryRowContext(ctx,
		`SELECT id FROM characters WHERE name = ?`, c.Name,
	).Scan(&summary.CharacterID); err != nil {
		return ImportSummary{}, fmt.Errorf("looking up character id: %w", err)
	}

	if err := deleteSkills(ctx, tx, summary.CharacterID); err != nil {
		return ImportSummary{}, err
	}

	skillStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO skills (character_id, category, name, description) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("preparing skill insert: %w", err)
	}
	defer skillStmt.Close()

	effectStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO buffs_debuffs (skill_id, effect_name, target_type, stat_affected,
			value_expression, duration, condition, is_stackable, max_stacks)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("preparing effect insert: %w", err)
	}
	defer effectStmt.Close()

	refs := newEffectRefs()
	for _, skill := range ci.Skills {
		res, err := skillStmt.ExecContext(ctx,
			summary.CharacterID, string(skill.Category), skill.Name, skill.Description)
		if err != nil {
			return ImportSummary{}, fmt.Errorf("inserting skill %s %q: %w", skill.Category, skill.Name, err)
		}
		skillID, err := res.LastInsertId()
		if err != nil {
			return ImportSummary{}, fmt.Errorf("reading skill id: %w", err)
		}
		summary.Skills++

		for _, e := range skill.Effects {
			res, err := effectStmt.ExecContext(ctx,
				skillID, e.EffectName, string(e.TargetType), e.StatAffected,
				e.ValueExpression, e.Duration, nullString(e.Condition),
				e.IsStackable, nullInt(e.MaxStacks),
			)
			if err != nil {
				return ImportSummary{}, fmt.Errorf("inserting effect %q: %w", e.EffectName, err)
			}
			effectID, err := res.LastInsertId()
			if err != nil {
				return ImportSummary{}, fmt.Errorf("reading effect id: %w", err)
			}
			refs.add(skill.Category, e.EffectName, effectID)
			summary.Effects++
		}
	}

	for _, enh := range ci.Enhancements {
		effectID, ok := refs.resolve(enh.Category, enh.EffectName)
		if !ok {
			summary.Unresolved++
			continue
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO eidolon_enhancements (character_id, buff_debuff_id, eidolon_level, enhancement_type, enhanced_value)
			 VALUES (?, ?, ?, ?, ?)`,
			summary.CharacterID, effectID, enh.EidolonLevel, enh.EnhancementType, nullString(enh.EnhancedValue),
		)
		if err != nil {
			return ImportSummary{}, fmt.Errorf("inserting eidolon %d enhancement: %w", enh.EidolonLevel, err)
		}
		summary.Enhancements++
	}

	if err := tx.Commit(); err != nil {
		return ImportSummary{}, fmt.Errorf("committing import: %w", err)
	}
	return summary, nil
}

// deleteSkills removes enhancements, effects and skills of a character, in
// that order.
func deleteSkills(ctx context.Context, tx *sql.Tx, characterID int64) error {
	statements := []struct {
		what  string
		query string
	}{
		{"eidolon enhancements", `DELETE FROM eidolon_enhancements WHERE character_id = ?`},
		{"effects", `DELETE FROM buffs_debuffs WHERE skill_id IN (SELECT id FROM skills WHERE character_id = ?)`},
		{"skills", `DELETE FROM skills WHERE character_id = ?`},
	}
	for _, st := range statements {
		if _, err := tx.ExecContext(ctx, st.query, characterID); err != nil {
			return fmt.Errorf("deleting old %s: %w", st.what, err)
		}
	}
	return nil
}

// effectRefs maps effect names to stored effect ids. The first effect of a
// name wins.
type effectRefs struct {
	byCategory map[string]int64
	byName     map[string]int64
}

func newEffectRefs() *effectRefs {
	return &effectRefs{
		byCategory: make(map[string]int64),
		byName:     make(map[string]int64),
	}
}

func refKey(category types.Category, name string) string {
	return string(category) + "\x00" + name
}

func (r *effectRefs) add(category types.Category, name string, id int64) {
	if _, ok := r.byCategory[refKey(category, name)]; !ok {
		r.byCategory[refKey(category, name)] = id
	}
	if _, ok := r.byName[name]; !ok {
		r.byName[name] = id
	}
}

func (r *effectRefs) resolve(category types.Category, name string) (int64, bool) {
	if category != "" {
		if id, ok := r.byCategory[refKey(category, name)]; ok {
			return id, true
		}
	}
	id, ok := r.byName[name]
	return id, ok
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: n != 0}
}
