// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package csvimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/skill-catalog/pkg/types"
)

// statsColumns is the number of columns in a stats CSV.
const statsColumns = 12

// statsHeaders are the accepted header rows of a stats CSV.
var statsHeaders = [][]string{
	{"キャラクター名", "HP", "攻撃力", "防御力", "速度", "EP",
		"ステータスブースト1種別", "ステータスブースト1数値",
		"ステータスブースト2種別", "ステータスブースト2数値",
		"ステータスブースト3種別", "ステータスブースト3数値"},
	{"name", "hp", "attack", "defense", "speed", "ep",
		"stat_boost_1_type", "stat_boost_1_value",
		"stat_boost_2_type", "stat_boost_2_value",
		"stat_boost_3_type", "stat_boost_3_value"},
}

// ErrStatsHeader is returned when the first row is not a stats header.
var ErrStatsHeader = errors.New("csv header does not match the stats layout")

// StatsResult is the outcome of parsing a stats CSV.
type StatsResult struct {
	Rows     []types.StatsRow
	Warnings []string
}

// ParseStats reads a stats CSV: a fixed header followed by one row per
// character. Rows with the wrong column count or unparsable numbers are
// skipped with a warning. Blank cells become nil.
func (im *Importer) ParseStats(r io.Reader) (*StatsResult, error) {
	reader := csv.NewReader(skipBOM(r))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}
	if !isStatsHeader(header) {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrStatsHeader,
			strings.Join(header, ","), strings.Join(statsHeaders[0], ","))
	}

	res := &StatsResult{}
	warn := func(msg string) {
		res.Warnings = append(res.Warnings, msg)
		im.logger.Warn("skipping stats row", zap.String("reason", msg))
	}

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
		line, _ := reader.FieldPos(0)
		if len(record) != statsColumns {
			warn(fmt.Sprintf("line %d: expected %d columns, got %d", line, statsColumns, len(record)))
			continue
		}
		row, err := statsRow(record)
		if err != nil {
			warn(fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		res.Rows = append(res.Rows, row)
	}

	return res, nil
}

func isStatsHeader(header []string) bool {
	if len(header) != statsColumns {
		return false
	}
	for _, want := range statsHeaders {
		match := true
		for i, h := range header {
			if !strings.EqualFold(strings.TrimSpace(h), want[i]) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func statsRow(record []string) (types.StatsRow, error) {
	for i := range record {
		record[i] = strings.TrimSpace(record[i])
	}
	row := types.StatsRow{Name: record[0]}
	if row.Name == "" {
		return row, fmt.Errorf("missing character name")
	}

	ints := []struct {
		name string
		dst  **int
		raw  string
	}{
		{"HP", &row.HP, record[1]},
		{"attack", &row.Attack, record[2]},
		{"defense", &row.Defense, record[3]},
		{"speed", &row.Speed, record[4]},
		{"EP", &row.EP, record[5]},
	}
	for _, f := range ints {
		v, err := optionalInt(f.raw)
		if err != nil {
			return row, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = v
	}

	for i := range row.StatBoosts {
		typ, raw := record[6+2*i], record[7+2*i]
		v, err := optionalFloat(raw)
		if err != nil {
			return row, fmt.Errorf("stat boost %d value: %w", i+1, err)
		}
		row.StatBoosts[i] = types.StatBoost{Type: typ, Value: v}
	}
	return row, nil
}

func optionalInt(raw string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%q is not an integer", raw)
	}
	return &n, nil
}

func optionalFloat(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%q is not a number", raw)
	}
	return &f, nil
}
