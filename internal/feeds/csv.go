// Package feeds loads the cleaned tabular feeds the analytics tools consume:
// attendance punches, monthly branch sales, and POS transaction lines.
// A missing feed file is a valid degraded state and yields an empty feed,
// never an error.
package feeds

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"conut-agent/internal/ingest"
)

// table is a header-indexed view over a CSV file.
type table struct {
	header map[string]int
	rows   [][]string
}

func readTable(path string) (*table, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open feed %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read feed %s: %w", path, err)
	}
	if len(records) == 0 {
		return &table{header: map[string]int{}}, nil
	}

	header := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		// Header normalization is shared with the ingest cleaner so
		// alias lookups match cleaned files exactly.
		header[ingest.NormalizeColumn(name)] = i
	}
	return &table{header: header, rows: records[1:]}, nil
}

// column resolves the first matching alias to a column index.
func (t *table) column(aliases ...string) (int, bool) {
	for _, alias := range aliases {
		if idx, ok := t.header[alias]; ok {
			return idx, true
		}
	}
	return -1, false
}

func (t *table) cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseNumber parses a numeric cell, tolerating thousands separators and
// stray currency noise. Returns false when the cell carries no number.
func parseNumber(value string) (float64, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	var b strings.Builder
	for _, r := range cleaned {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

var monthNames = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// monthNumber accepts a numeric month ("9", "9.0") or a month name prefix
// ("Sep", "september") and returns 1-12, or 0 when unparseable.
func monthNumber(value string) int {
	text := strings.TrimSpace(value)
	if text == "" {
		return 0
	}
	if f, ok := parseNumber(text); ok {
		m := int(f)
		if m >= 1 && m <= 12 {
			return m
		}
		return 0
	}
	lower := strings.ToLower(text)
	if len(lower) >= 3 {
		if m, ok := monthNames[lower[:3]]; ok {
			return m
		}
	}
	return 0
}
