package staffing

import (
	"math"
	"sort"
	"time"

	"conut-agent/internal/feeds"
)

// ProductivityRow joins one branch-month of labor hours with its matched
// sales figure. Valid is false when no sales row could be matched or labor
// hours were zero.
type ProductivityRow struct {
	Branch           string
	LaborPeriodKey   string
	LaborPeriodDate  time.Time
	TotalLaborHours  float64
	SalesPeriodUsed  string
	MonthlySales     float64
	Productivity     float64 // sales per labor hour
	Valid            bool
	ExactPeriodMatch bool
}

// ProductivityTable holds per branch-month productivity plus the
// hours-weighted global value used as the last-resort fallback.
type ProductivityTable struct {
	Rows      []ProductivityRow
	Global    *float64
	PeriodMin string
	PeriodMax string
}

func parsePeriodDate(periodKey string) (time.Time, bool) {
	ts, err := time.Parse("2006-01-02", periodKey+"-01")
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

func periodDistanceDays(a, b time.Time) int {
	days := int(a.Sub(b).Hours() / 24)
	if days < 0 {
		return -days
	}
	return days
}

// matchSalesRecord picks the sales record for a labor period: an exact
// period match wins, otherwise the record with the smallest absolute day
// distance between period starts, ties broken toward the earlier period.
func matchSalesRecord(records []feeds.SalesRecord, periodKey string, periodDate time.Time) (feeds.SalesRecord, bool) {
	var best feeds.SalesRecord
	bestDistance := math.MaxInt
	found := false
	for _, rec := range records {
		if rec.PeriodKey == periodKey {
			return rec, true
		}
		d := periodDistanceDays(rec.PeriodDate, periodDate)
		if !found || d < bestDistance || (d == bestDistance && rec.PeriodDate.Before(best.PeriodDate)) {
			best = rec
			bestDistance = d
			found = true
		}
	}
	return best, found
}

// BuildProductivity sums labor hours per branch-month and divides matched
// monthly sales by them. The global value is hours-weighted: total sales
// over total labor hours across all valid rows.
func BuildProductivity(table *AttendanceTable, sales *feeds.SalesFeed) *ProductivityTable {
	result := &ProductivityTable{}
	if len(table.Rows) == 0 {
		return result
	}

	// 1. Monthly labor hours per branch.
	type laborKey struct{ branch, period string }
	labor := make(map[laborKey]float64)
	for _, row := range table.Rows {
		labor[laborKey{branch: row.Branch, period: row.PeriodKey}] += row.Hours
	}

	// 2. Index sales records by normalized branch.
	salesByBranch := make(map[string][]feeds.SalesRecord)
	for _, rec := range sales.Records {
		norm := NormalizeBranch(rec.BranchName)
		salesByBranch[norm] = append(salesByBranch[norm], rec)
	}

	// 3. Join each labor month with its best sales record.
	for k, hours := range labor {
		periodDate, _ := parsePeriodDate(k.period)
		row := ProductivityRow{
			Branch:          k.branch,
			LaborPeriodKey:  k.period,
			LaborPeriodDate: periodDate,
			TotalLaborHours: hours,
		}
		if rec, ok := matchSalesRecord(salesByBranch[NormalizeBranch(k.branch)], k.period, periodDate); ok {
			row.SalesPeriodUsed = rec.PeriodKey
			row.MonthlySales = rec.MonthlySales
			row.ExactPeriodMatch = rec.PeriodKey == k.period
			if hours > 0 {
				row.Productivity = rec.MonthlySales / hours
				row.Valid = true
			}
		}
		result.Rows = append(result.Rows, row)
	}
	sort.Slice(result.Rows, func(i, j int) bool {
		a, b := result.Rows[i], result.Rows[j]
		if a.Branch != b.Branch {
			return a.Branch < b.Branch
		}
		return a.LaborPeriodKey < b.LaborPeriodKey
	})

	totalSales, totalLabor := 0.0, 0.0
	for _, row := range result.Rows {
		if !row.Valid {
			continue
		}
		totalSales += row.MonthlySales
		totalLabor += row.TotalLaborHours
	}
	if totalLabor > 0 {
		global := totalSales / totalLabor
		result.Global = &global
	}

	for _, row := range result.Rows {
		if result.PeriodMin == "" || row.LaborPeriodKey < result.PeriodMin {
			result.PeriodMin = row.LaborPeriodKey
		}
		if row.LaborPeriodKey > result.PeriodMax {
			result.PeriodMax = row.LaborPeriodKey
		}
	}

	return result
}

// FilterBranch returns the productivity rows whose normalized branch
// matches.
func (t *ProductivityTable) FilterBranch(branch string) []ProductivityRow {
	want := NormalizeBranch(branch)
	var rows []ProductivityRow
	for _, row := range t.Rows {
		if NormalizeBranch(row.Branch) == want {
			rows = append(rows, row)
		}
	}
	return rows
}
