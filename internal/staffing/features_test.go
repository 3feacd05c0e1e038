package staffing

import (
	"testing"

	"conut-agent/internal/feeds"
)

func buildTestAttendance(t *testing.T) *AttendanceTable {
	t.Helper()
	feed := &feeds.AttendanceFeed{
		Records: []feeds.PunchRecord{
			// Jnah, Mon 2025-06-02: two morning employees, one evening.
			punchRecord("E1", "Jnah", "2025-06-02 07:00:00", "2025-06-02 15:00:00", 8),
			punchRecord("E2", "Jnah", "2025-06-02 08:00:00", "2025-06-02 14:00:00", 6),
			punchRecord("E3", "Jnah", "2025-06-02 18:00:00", "2025-06-02 23:00:00", 5),
			// Jnah, Mon 2025-06-09: one morning employee.
			punchRecord("E1", "Jnah", "2025-06-09 07:00:00", "2025-06-09 17:00:00", 10),
			// Verdun, Tue 2025-06-03: one afternoon employee.
			punchRecord("E9", "Verdun", "2025-06-03 13:00:00", "2025-06-03 21:00:00", 8),
		},
	}
	return NormalizeAttendance(feed)
}

func findFeature(rows []ShiftFeatureRow, branch, shift, day string) (ShiftFeatureRow, bool) {
	for _, row := range rows {
		if row.Branch == branch && row.ShiftName == shift && row.DayOfWeek == day {
			return row, true
		}
	}
	return ShiftFeatureRow{}, false
}

func TestBuildShiftFeatures(t *testing.T) {
	features := BuildShiftFeatures(buildTestAttendance(t))

	// 4 daily observations: Jnah morning x2 days, Jnah evening, Verdun afternoon.
	if features.DailyShiftRows != 4 {
		t.Errorf("DailyShiftRows = %d, want 4", features.DailyShiftRows)
	}

	morningMon, ok := findFeature(features.Rows, "Jnah", ShiftMorning, "Mon")
	if !ok {
		t.Fatal("missing Jnah morning Mon feature row")
	}
	// Daily labor: 14 (June 2) and 10 (June 9).
	if !almostEqual(morningMon.AvgLabor, 12) {
		t.Errorf("AvgLabor = %v, want 12", morningMon.AvgLabor)
	}
	// Daily headcount: 2 then 1.
	if !almostEqual(morningMon.AvgHeadcount, 1.5) {
		t.Errorf("AvgHeadcount = %v, want 1.5", morningMon.AvgHeadcount)
	}
	if morningMon.ObservedDays != 2 {
		t.Errorf("ObservedDays = %d, want 2", morningMon.ObservedDays)
	}
	if !almostEqual(morningMon.P50Labor, 12) {
		t.Errorf("P50Labor = %v, want 12", morningMon.P50Labor)
	}
	// Linear interpolation between 10 and 14 at position 0.9.
	if !almostEqual(morningMon.P90Labor, 13.6) {
		t.Errorf("P90Labor = %v, want 13.6", morningMon.P90Labor)
	}

	// Both Jnah morning days fall on Monday, so the All row matches Mon.
	morningAll, ok := findFeature(features.Rows, "Jnah", ShiftMorning, "All")
	if !ok {
		t.Fatal("missing Jnah morning All feature row")
	}
	if !almostEqual(morningAll.AvgLabor, 12) || morningAll.ObservedDays != 2 {
		t.Errorf("unexpected All row: %+v", morningAll)
	}

	eveningAll, ok := findFeature(features.Rows, "Jnah", ShiftEvening, "All")
	if !ok {
		t.Fatal("missing Jnah evening All feature row")
	}
	if !almostEqual(eveningAll.AvgLabor, 5) || !almostEqual(eveningAll.AvgHeadcount, 1) {
		t.Errorf("unexpected evening All row: %+v", eveningAll)
	}

	if _, ok := findFeature(features.Rows, "Verdun", ShiftAfternoon, "Tue"); !ok {
		t.Error("missing Verdun afternoon Tue feature row")
	}
}

func TestBuildShiftFeaturesEmpty(t *testing.T) {
	features := BuildShiftFeatures(&AttendanceTable{RowsLoaded: 3, RowsDropped: 3})
	if len(features.Rows) != 0 {
		t.Errorf("expected no feature rows, got %d", len(features.Rows))
	}
	if features.RowsDropped != 3 {
		t.Errorf("expected drop counter carried through, got %d", features.RowsDropped)
	}
}

func TestShiftFeatureTableFilterBranch(t *testing.T) {
	features := BuildShiftFeatures(buildTestAttendance(t))
	for _, row := range features.FilterBranch("JNAH") {
		if row.Branch != "Jnah" {
			t.Errorf("FilterBranch leaked row for %q", row.Branch)
		}
	}
	if len(features.FilterBranch("Jnah")) == 0 {
		t.Error("expected feature rows for Jnah")
	}
}
