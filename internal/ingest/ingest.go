// Package ingest turns raw POS report exports into clean tabular CSVs.
// The raw exports are paginated report dumps: banner rows, repeated page
// headers, and empty spacer columns all have to go before the feeds
// package can read them.
package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// headerMarkers flag report chrome rows: any row whose joined text contains
// one of these is dropped.
var headerMarkers = []string{"page", "printed", "generated", "report", "division"}

// CleanedSuffix is appended to a raw file's stem to name its cleaned output.
const CleanedSuffix = "_cleaned.csv"

func normalizeText(value string) string {
	return strings.Join(strings.Fields(strings.TrimSpace(value)), " ")
}

// NormalizeColumn maps a raw report header onto its canonical snake_case
// form. The feed loaders use the same rule so cleaned files and alias
// lookups cannot disagree.
func NormalizeColumn(name string) string {
	cleaned := strings.ToLower(normalizeText(name))
	cleaned = strings.TrimPrefix(cleaned, "\uFEFF")
	replacer := strings.NewReplacer("%", "pct", "/", "_", "-", "_", "(", "", ")", "", ".", "")
	cleaned = replacer.Replace(cleaned)
	cleaned = strings.Join(strings.Fields(cleaned), "_")
	if cleaned == "" {
		return "unnamed"
	}
	return cleaned
}

func isMarkerRow(row []string) bool {
	var parts []string
	for _, v := range row {
		if text := normalizeText(v); text != "" {
			parts = append(parts, strings.ToLower(text))
		}
	}
	if len(parts) == 0 {
		return true
	}
	joined := strings.Join(parts, " ")
	for _, marker := range headerMarkers {
		if strings.Contains(joined, marker) {
			return true
		}
	}
	return false
}

func isRepeatedHeaderRow(row, columns []string) bool {
	n := len(row)
	if n > len(columns) {
		n = len(columns)
	}
	if n == 0 {
		return false
	}
	for i := 0; i < n; i++ {
		if NormalizeColumn(row[i]) != columns[i] {
			return false
		}
	}
	return true
}

// CleanReport reads one raw report CSV and returns its cleaned header and
// rows. The source_file column is appended last, carrying the lowercased
// file stem for provenance.
func CleanReport(path string) ([]string, [][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open raw report %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read raw report %s: %w", path, err)
	}

	sourceName := strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	if len(records) == 0 {
		return []string{"source_file"}, nil, nil
	}

	// 1. Normalize column names and mark spacer columns for removal.
	rawHeader := records[0]
	var keepIdx []int
	var columns []string
	for i, name := range rawHeader {
		col := NormalizeColumn(name)
		if strings.HasPrefix(col, "unnamed") {
			continue
		}
		keepIdx = append(keepIdx, i)
		columns = append(columns, col)
	}

	// 2. Drop chrome rows, repeated page headers, and all-empty rows.
	var rows [][]string
	for _, raw := range records[1:] {
		projected := make([]string, len(keepIdx))
		empty := true
		for j, idx := range keepIdx {
			if idx < len(raw) {
				projected[j] = normalizeText(raw[idx])
			}
			if projected[j] != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		if isMarkerRow(projected) {
			continue
		}
		if isRepeatedHeaderRow(projected, columns) {
			continue
		}
		rows = append(rows, append(projected, sourceName))
	}

	return append(columns, "source_file"), rows, nil
}

// IngestAll cleans every *.csv under rawDir and writes the results to
// processedDir as <stem>_cleaned.csv. Returns the written paths.
func IngestAll(rawDir, processedDir string) ([]string, error) {
	if err := os.MkdirAll(processedDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create processed dir: %w", err)
	}

	matches, err := filepath.Glob(filepath.Join(rawDir, "*.csv"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	var written []string
	for _, rawPath := range matches {
		header, rows, err := CleanReport(rawPath)
		if err != nil {
			return written, err
		}

		stem := strings.TrimSuffix(filepath.Base(rawPath), filepath.Ext(rawPath))
		outPath := filepath.Join(processedDir, stem+CleanedSuffix)
		if err := writeCSV(outPath, header, rows); err != nil {
			return written, err
		}

		log.Info().Str("raw", rawPath).Str("out", outPath).Int("rows", len(rows)).Msg("Cleaned raw report")
		written = append(written, outPath)
	}

	return written, nil
}

func writeCSV(path string, header []string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
