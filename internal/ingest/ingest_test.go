package ingest

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNormalizeColumn(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Branch Name", "branch_name"},
		{"  Employee   Name ", "employee_name"},
		{"Margin %", "margin_pct"},
		{"Punch-In/Out", "punch_in_out"},
		// A dash standing alone survives as its own underscore token,
		// matching the cleaned files already on disk.
		{"In/Out - Time", "in_out___time"},
		{"(Net.) Sales", "net_sales"},
		{"\uFEFFbranch", "branch"},
		{"   ", "unnamed"},
		{"", "unnamed"},
	}

	for _, tt := range tests {
		if got := NormalizeColumn(tt.input); got != tt.expected {
			t.Errorf("NormalizeColumn(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestIsMarkerRow(t *testing.T) {
	tests := []struct {
		name     string
		row      []string
		expected bool
	}{
		{"page banner", []string{"Page 3 of 12", ""}, true},
		{"printed banner", []string{"", "Printed on 2025-06-01"}, true},
		{"report title", []string{"Sales Report"}, true},
		{"all empty", []string{"", "  "}, true},
		{"data row", []string{"Jnah", "1500"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isMarkerRow(tt.row); got != tt.expected {
				t.Errorf("isMarkerRow(%v) = %v, want %v", tt.row, got, tt.expected)
			}
		})
	}
}

func TestCleanReport(t *testing.T) {
	raw := "" +
		"Branch Name,Net Sales,,Qty\n" +
		"Sales Report June,,,\n" +
		"Jnah,1500,ignored,3\n" +
		"Branch Name,Net Sales,,Qty\n" +
		",,,\n" +
		"Verdun,900,ignored,2\n" +
		"Page 2 of 2,,,\n"

	dir := t.TempDir()
	path := filepath.Join(dir, "REP_S_00999.csv")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	header, rows, err := CleanReport(path)
	if err != nil {
		t.Fatalf("CleanReport returned error: %v", err)
	}

	wantHeader := []string{"branch_name", "net_sales", "qty", "source_file"}
	if strings.Join(header, ",") != strings.Join(wantHeader, ",") {
		t.Fatalf("header = %v, want %v", header, wantHeader)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 data rows, got %d: %v", len(rows), rows)
	}
	if rows[0][0] != "Jnah" || rows[0][1] != "1500" || rows[0][2] != "3" {
		t.Errorf("unexpected first row: %v", rows[0])
	}
	if rows[0][3] != "rep_s_00999" {
		t.Errorf("expected lowercased stem as source_file, got %q", rows[0][3])
	}
}

func TestIngestAll(t *testing.T) {
	rawDir := t.TempDir()
	processedDir := filepath.Join(t.TempDir(), "processed")

	raw := "Branch,Sales\nReport Header,\nJnah,100\n"
	if err := os.WriteFile(filepath.Join(rawDir, "REP_S_00461.csv"), []byte(raw), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	written, err := IngestAll(rawDir, processedDir)
	if err != nil {
		t.Fatalf("IngestAll returned error: %v", err)
	}
	if len(written) != 1 {
		t.Fatalf("expected 1 written file, got %d", len(written))
	}
	if filepath.Base(written[0]) != "REP_S_00461_cleaned.csv" {
		t.Errorf("unexpected output name: %s", written[0])
	}

	file, err := os.Open(written[0])
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header plus 1 row, got %d records", len(records))
	}
	if records[1][0] != "Jnah" || records[1][1] != "100" {
		t.Errorf("unexpected data row: %v", records[1])
	}
}
