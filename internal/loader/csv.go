// Package loader builds validation frames from CSV files for the CLI.
// The engine itself does no I/O; this package is the boundary where a
// file on disk becomes a read-only frame.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/johnayoung/go-ohlcv-validator/internal/frame"
)

// indexAliases are the header names recognized as the timestamp index,
// matched case-insensitively. When none match, the first column is used.
var indexAliases = map[string]bool{
	"date":      true,
	"datetime":  true,
	"time":      true,
	"timestamp": true,
}

// timeLayouts are tried in order when parsing index values.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
}

// LoadCSV reads a CSV file into a frame. The header row is required;
// empty cells become nulls; non-index columns keep their source names
// so the engine's column mapping does the canonical resolution.
func LoadCSV(path string) (*frame.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV reads CSV data from a reader into a frame.
func ReadCSV(r io.Reader) (*frame.Frame, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("CSV needs an index column and at least one value column, got %d columns", len(header))
	}

	indexCol := 0
	for i, name := range header {
		if indexAliases[strings.ToLower(strings.TrimSpace(name))] {
			indexCol = i
			break
		}
	}

	var index []time.Time
	cells := make([][]decimal.NullDecimal, len(header))

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record at line %d: %w", line, err)
		}
		ts, err := parseTimestamp(record[indexCol])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		index = append(index, ts)
		for i, raw := range record {
			if i == indexCol {
				continue
			}
			cells[i] = append(cells[i], parseCell(raw))
		}
	}

	fr := frame.New(index)
	for i, name := range header {
		if i == indexCol {
			continue
		}
		if err := fr.SetColumn(strings.TrimSpace(name), cells[i]); err != nil {
			return nil, err
		}
	}
	return fr, nil
}

func parseTimestamp(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable timestamp %q", raw)
}

func parseCell(raw string) decimal.NullDecimal {
	value := strings.TrimSpace(raw)
	if value == "" || strings.EqualFold(value, "nan") || strings.EqualFold(value, "null") {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}
