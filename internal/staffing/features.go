package staffing

import "sort"

// ShiftFeatureRow is one aggregated (branch, shift, day-of-week) cell.
// DayOfWeek "All" rows aggregate across every day.
type ShiftFeatureRow struct {
	Branch       string
	ShiftName    string
	DayOfWeek    string
	AvgLabor     float64 // mean labor hours per day-shift
	AvgHeadcount float64 // mean distinct employees per day-shift
	P50Labor     float64
	P90Labor     float64
	ObservedDays int
}

// ShiftFeatureTable carries the aggregated cells plus normalization stats
// inherited from the attendance base.
type ShiftFeatureTable struct {
	Rows           []ShiftFeatureRow
	DailyShiftRows int

	RowsLoaded  int
	RowsDropped int
	DateMin     string
	DateMax     string
}

type dailyShift struct {
	branch    string
	date      string
	dayOfWeek string
	shift     string
	labor     float64
	employees map[string]bool
}

// BuildShiftFeatures collapses attendance first to per-day per-shift
// totals, then aggregates those daily observations per day-of-week and as
// an "All" row per (branch, shift).
func BuildShiftFeatures(table *AttendanceTable) *ShiftFeatureTable {
	features := &ShiftFeatureTable{
		RowsLoaded:  table.RowsLoaded,
		RowsDropped: table.RowsDropped,
		DateMin:     table.DateMin,
		DateMax:     table.DateMax,
	}
	if len(table.Rows) == 0 {
		return features
	}

	// 1. Collapse punches into daily (branch, date, shift) observations.
	type dailyKey struct{ branch, date, shift string }
	daily := make(map[dailyKey]*dailyShift)
	for _, row := range table.Rows {
		k := dailyKey{branch: row.Branch, date: row.DateIn, shift: row.ShiftName}
		obs, ok := daily[k]
		if !ok {
			obs = &dailyShift{
				branch:    row.Branch,
				date:      row.DateIn,
				dayOfWeek: row.DayOfWeek,
				shift:     row.ShiftName,
				employees: make(map[string]bool),
			}
			daily[k] = obs
		}
		obs.labor += row.Hours
		obs.employees[row.EmployeeID] = true
	}
	features.DailyShiftRows = len(daily)

	// 2. Group the daily observations per day-of-week and across all days.
	type groupKey struct{ branch, shift, dayOfWeek string }
	type group struct {
		labor     []float64
		headcount []float64
		dates     map[string]bool
	}
	groups := make(map[groupKey]*group)
	add := func(k groupKey, obs *dailyShift) {
		g, ok := groups[k]
		if !ok {
			g = &group{dates: make(map[string]bool)}
			groups[k] = g
		}
		g.labor = append(g.labor, obs.labor)
		g.headcount = append(g.headcount, float64(len(obs.employees)))
		g.dates[obs.date] = true
	}
	for _, obs := range daily {
		add(groupKey{branch: obs.branch, shift: obs.shift, dayOfWeek: obs.dayOfWeek}, obs)
		add(groupKey{branch: obs.branch, shift: obs.shift, dayOfWeek: "All"}, obs)
	}

	for k, g := range groups {
		features.Rows = append(features.Rows, ShiftFeatureRow{
			Branch:       k.branch,
			ShiftName:    k.shift,
			DayOfWeek:    k.dayOfWeek,
			AvgLabor:     Mean(g.labor),
			AvgHeadcount: Mean(g.headcount),
			P50Labor:     Quantile(g.labor, 0.5),
			P90Labor:     Quantile(g.labor, 0.9),
			ObservedDays: len(g.dates),
		})
	}
	sort.Slice(features.Rows, func(i, j int) bool {
		a, b := features.Rows[i], features.Rows[j]
		if a.Branch != b.Branch {
			return a.Branch < b.Branch
		}
		if a.ShiftName != b.ShiftName {
			return a.ShiftName < b.ShiftName
		}
		return a.DayOfWeek < b.DayOfWeek
	})

	return features
}

// FilterBranch returns the feature rows whose normalized branch matches.
func (t *ShiftFeatureTable) FilterBranch(branch string) []ShiftFeatureRow {
	want := NormalizeBranch(branch)
	var rows []ShiftFeatureRow
	for _, row := range t.Rows {
		if NormalizeBranch(row.Branch) == want {
			rows = append(rows, row)
		}
	}
	return rows
}
