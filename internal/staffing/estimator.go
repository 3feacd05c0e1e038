package staffing

import (
	"fmt"
	"math"
	"sort"

	"conut-agent/internal/feeds"
)

// Estimator turns feed snapshots into staffing recommendations.
type Estimator struct {
	Defaults Defaults
}

// NewEstimator creates an estimator with the given tunable defaults.
func NewEstimator(defaults Defaults) *Estimator {
	return &Estimator{Defaults: defaults}
}

// Snapshot bundles the derived tables one estimation run works from, so a
// benchmark can aggregate them once and estimate every branch against the
// same state.
type Snapshot struct {
	Attendance   *AttendanceTable
	Features     *ShiftFeatureTable
	Productivity *ProductivityTable
	Sales        *feeds.SalesFeed

	// RawBranches lists branch names before timestamp cleaning. Branch
	// resolution runs against these: a branch whose every row was dropped
	// still resolves, then fails with a more specific error.
	RawBranches []string
}

// BuildSnapshot normalizes attendance and derives the feature and
// productivity tables.
func BuildSnapshot(attendance *feeds.AttendanceFeed, sales *feeds.SalesFeed) *Snapshot {
	table := NormalizeAttendance(attendance)

	seen := make(map[string]bool)
	var raw []string
	for _, rec := range attendance.Records {
		if rec.Branch == "" || seen[rec.Branch] {
			continue
		}
		seen[rec.Branch] = true
		raw = append(raw, rec.Branch)
	}

	return &Snapshot{
		Attendance:   table,
		Features:     BuildShiftFeatures(table),
		Productivity: BuildProductivity(table, sales),
		Sales:        sales,
		RawBranches:  raw,
	}
}

// Estimate builds a snapshot from the feeds and produces a staffing
// recommendation. The request must already be normalized.
func (e *Estimator) Estimate(req EstimateRequest, attendance *feeds.AttendanceFeed, sales *feeds.SalesFeed) (*EstimateResult, error) {
	return e.EstimateFromSnapshot(req, BuildSnapshot(attendance, sales))
}

// EstimateFromSnapshot produces a staffing recommendation against an
// existing snapshot.
func (e *Estimator) EstimateFromSnapshot(req EstimateRequest, snap *Snapshot) (*EstimateResult, error) {
	resolved := ResolveBranch(req.Branch, snap.RawBranches)
	if resolved == "" {
		return nil, fmt.Errorf("%w: %q", ErrBranchNotFound, req.Branch)
	}

	assumptions := []string{
		"Values are scaled units, so staffing recommendations rely on relative productivity rather than absolute currency.",
		"Limited history and monthly sales granularity may reduce precision for shift-level staffing decisions.",
		"Shift definitions are based on punch-in time buckets: morning 06:00-12:00, afternoon 12:00-18:00, evening 18:00-23:59, night 00:00-06:00.",
	}

	branchSales := filterSales(snap.Sales.Records, resolved)
	branchProductivity := snap.Productivity.FilterBranch(resolved)
	branchFeatures := snap.Features.FilterBranch(resolved)
	if len(branchFeatures) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoValidAttendance, req.Branch)
	}

	var fallbackNotes []string

	// 1. Resolve demand: override, branch sales, then global latest sales.
	var demandUsed float64
	var salesPeriodUsed string
	if req.DemandOverride != nil {
		demandUsed = *req.DemandOverride
		salesPeriodUsed = req.TargetPeriod
		if salesPeriodUsed == "" {
			salesPeriodUsed = latestPeriodKey(branchSales)
		}
		fallbackNotes = append(fallbackNotes, "Demand override was provided, so monthly sales were not used to set demand.")
	} else if rec, notes, ok := selectSalesRecord(branchSales, req.TargetPeriod); ok {
		fallbackNotes = append(fallbackNotes, notes...)
		demandUsed = rec.MonthlySales
		salesPeriodUsed = rec.PeriodKey
	} else if len(snap.Sales.Records) > 0 {
		latest := latestSalesRecord(snap.Sales.Records)
		demandUsed = latest.MonthlySales
		salesPeriodUsed = latest.PeriodKey
		assumptions = append(assumptions, fmt.Sprintf(
			"No monthly sales were found for branch '%s', so the latest global sales period '%s' was used as the demand proxy.",
			resolved, salesPeriodUsed))
	} else {
		return nil, ErrNoDemandData
	}

	// 2. Resolve productivity: branch row, then the global value.
	productivitySource := "branch"
	var productivityValue float64
	var productivityPeriodUsed string
	if row, notes, ok := selectProductivityRow(branchProductivity, req.TargetPeriod); ok {
		fallbackNotes = append(fallbackNotes, notes...)
		productivityValue = row.Productivity
		productivityPeriodUsed = row.LaborPeriodKey
	} else {
		productivitySource = "global_fallback"
		if snap.Productivity.Global == nil || *snap.Productivity.Global <= 0 {
			return nil, ErrNoProductivityData
		}
		productivityValue = *snap.Productivity.Global
		assumptions = append(assumptions, fmt.Sprintf(
			"Branch-specific productivity was unavailable for '%s', so global productivity across all branches was used.",
			resolved))
	}

	// 3. Days in the target month, assuming 30 when no period resolves.
	periodForDays := req.TargetPeriod
	if periodForDays == "" {
		periodForDays = salesPeriodUsed
	}
	if periodForDays == "" {
		periodForDays = productivityPeriodUsed
	}
	days, assumed30 := daysInPeriod(periodForDays)
	if assumed30 {
		assumptions = append(assumptions, "A 30-day month was assumed because the requested or inferred period was unavailable or invalid.")
	}

	// 4. Scope the shift features to the requested day, falling back to
	// the all-day aggregate.
	dayScope := req.DayOfWeek
	if dayScope == "" {
		dayScope = "All"
	}
	scoped := filterDayOfWeek(branchFeatures, dayScope)
	if req.DayOfWeek != "" && len(scoped) == 0 {
		scoped = filterDayOfWeek(branchFeatures, "All")
		dayScope = "All"
		assumptions = append(assumptions, fmt.Sprintf(
			"No attendance history was available for day_of_week '%s', so all-day shift averages were used.",
			req.DayOfWeek))
	}

	// 5. Shift share of daily labor, with an equal-split fallback.
	var shiftShare float64
	var avgLabor, avgHeadcount, p50Labor, p90Labor *float64
	observedDays := 0
	if requested, ok := findShift(scoped, req.ShiftName); ok {
		totalAvgLabor := 0.0
		for _, row := range scoped {
			totalAvgLabor += row.AvgLabor
		}
		avgLabor = roundPtr2(requested.AvgLabor)
		avgHeadcount = roundPtr2(requested.AvgHeadcount)
		p50Labor = roundPtr2(requested.P50Labor)
		p90Labor = roundPtr2(requested.P90Labor)
		observedDays = requested.ObservedDays
		if totalAvgLabor > 0 {
			shiftShare = requested.AvgLabor / totalAvgLabor
		} else {
			shiftShare = e.Defaults.ShiftShareFallback
			assumptions = append(assumptions, fmt.Sprintf(
				"Historical shift labor totals were zero, so an equal %.0f%% shift split was used.",
				e.Defaults.ShiftShareFallback*100))
		}
	} else {
		shiftShare = e.Defaults.ShiftShareFallback
		assumptions = append(assumptions, fmt.Sprintf(
			"No attendance history was available for branch '%s' and shift '%s', so an equal %.0f%% shift split was used.",
			resolved, req.ShiftName, e.Defaults.ShiftShareFallback*100))
	}

	// 6. The staffing arithmetic.
	requiredLaborMonth := demandUsed / productivityValue
	requiredLaborPerDay := requiredLaborMonth / float64(days)
	requiredLabor := requiredLaborPerDay * shiftShare
	requiredStaffRaw := requiredLabor / math.Max(req.ShiftHours, 0.1)
	recommended := int(math.Ceil(requiredStaffRaw * (1.0 + req.BufferPct)))
	if recommended < 1 {
		recommended = 1
	}

	branchRowsUsed := len(snap.Attendance.FilterBranch(resolved))
	salesPeriodMin, salesPeriodMax := snap.Sales.PeriodRange()

	return &EstimateResult{
		Branch:           resolved,
		ShiftName:        req.ShiftName,
		RecommendedStaff: recommended,
		RequiredLaborHrs: Round2(requiredLabor),
		Productivity:     Round4(productivityValue),
		DemandUsed:       Round2(demandUsed),
		Evidence: Evidence{
			ProductivitySource:       productivitySource,
			ProductivityPeriodUsed:   productivityPeriodUsed,
			SalesPeriodUsed:          salesPeriodUsed,
			HistoricalDayScopeUsed:   dayScope,
			HistoricalAvgLaborHours:  avgLabor,
			HistoricalAvgHeadcount:   avgHeadcount,
			HistoricalP50LaborHours:  p50Labor,
			HistoricalP90LaborHours:  p90Labor,
			HistoricalObservedDays:   observedDays,
			ShiftShareUsed:           Round4(shiftShare),
			DaysInPeriodUsed:         days,
			RequiredLaborHoursMonth:  Round2(requiredLaborMonth),
			RequiredLaborHoursPerDay: Round2(requiredLaborPerDay),
			RequiredStaffRaw:         Round2(requiredStaffRaw),
			BufferPctUsed:            req.BufferPct,
			RecentMonthlySalesUsed:   Round2(demandUsed),
			FallbackNotes:            fallbackNotes,
		},
		Assumptions: assumptions,
		DataCoverage: Coverage{
			AttendanceSourcePath:        snap.Attendance.SourcePath,
			AttendanceRowsLoaded:        snap.Attendance.RowsLoaded,
			AttendanceRowsUsedForBranch: branchRowsUsed,
			AttendanceInvalidDropped:    snap.Attendance.RowsDropped,
			AttendanceDateMin:           snap.Attendance.DateMin,
			AttendanceDateMax:           snap.Attendance.DateMax,
			ShiftFeatureRowsForBranch:   len(branchFeatures),
			SalesSourcePath:             snap.Sales.SourcePath,
			SalesRowsLoaded:             len(snap.Sales.Records),
			SalesPeriodMin:              salesPeriodMin,
			SalesPeriodMax:              salesPeriodMax,
			ProductivityRowsForBranch:   len(branchProductivity),
			GlobalProductivityAvailable: snap.Productivity.Global != nil,
		},
	}, nil
}

func filterSales(records []feeds.SalesRecord, branch string) []feeds.SalesRecord {
	want := NormalizeBranch(branch)
	var out []feeds.SalesRecord
	for _, rec := range records {
		if NormalizeBranch(rec.BranchName) == want {
			out = append(out, rec)
		}
	}
	return out
}

func filterDayOfWeek(rows []ShiftFeatureRow, day string) []ShiftFeatureRow {
	var out []ShiftFeatureRow
	for _, row := range rows {
		if row.DayOfWeek == day {
			out = append(out, row)
		}
	}
	return out
}

func findShift(rows []ShiftFeatureRow, shift string) (ShiftFeatureRow, bool) {
	for _, row := range rows {
		if row.ShiftName == shift {
			return row, true
		}
	}
	return ShiftFeatureRow{}, false
}

func latestPeriodKey(records []feeds.SalesRecord) string {
	key := ""
	for _, rec := range records {
		if rec.PeriodKey > key {
			key = rec.PeriodKey
		}
	}
	return key
}

func latestSalesRecord(records []feeds.SalesRecord) feeds.SalesRecord {
	latest := records[0]
	for _, rec := range records[1:] {
		if rec.PeriodDate.After(latest.PeriodDate) {
			latest = rec
		}
	}
	return latest
}

// selectSalesRecord picks the branch sales record for a target period: the
// exact period when present, the closest one by period-start distance when
// not, and the latest record when no target was given or it failed to
// parse.
func selectSalesRecord(records []feeds.SalesRecord, targetPeriod string) (feeds.SalesRecord, []string, bool) {
	if len(records) == 0 {
		return feeds.SalesRecord{}, nil, false
	}

	sorted := make([]feeds.SalesRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].PeriodDate.Before(sorted[j].PeriodDate) })

	if targetPeriod != "" {
		for i := len(sorted) - 1; i >= 0; i-- {
			if sorted[i].PeriodKey == targetPeriod {
				return sorted[i], nil, true
			}
		}
		if targetDate, ok := parsePeriodDate(targetPeriod); ok {
			best := sorted[0]
			bestDistance := periodDistanceDays(best.PeriodDate, targetDate)
			for _, rec := range sorted[1:] {
				if d := periodDistanceDays(rec.PeriodDate, targetDate); d < bestDistance {
					best = rec
					bestDistance = d
				}
			}
			note := fmt.Sprintf("Requested target_period '%s' was unavailable; used closest sales period '%s'.", targetPeriod, best.PeriodKey)
			return best, []string{note}, true
		}
	}

	chosen := sorted[len(sorted)-1]
	var note string
	if targetPeriod != "" {
		note = "Target period format was invalid, so the latest available branch sales period was used."
	} else {
		note = fmt.Sprintf("No target_period provided; used latest branch sales period '%s'.", chosen.PeriodKey)
	}
	return chosen, []string{note}, true
}

// selectProductivityRow mirrors selectSalesRecord over valid branch
// productivity rows.
func selectProductivityRow(rows []ProductivityRow, targetPeriod string) (ProductivityRow, []string, bool) {
	var valid []ProductivityRow
	for _, row := range rows {
		if row.Valid {
			valid = append(valid, row)
		}
	}
	if len(valid) == 0 {
		return ProductivityRow{}, nil, false
	}
	sort.Slice(valid, func(i, j int) bool { return valid[i].LaborPeriodDate.Before(valid[j].LaborPeriodDate) })

	if targetPeriod != "" {
		for i := len(valid) - 1; i >= 0; i-- {
			if valid[i].LaborPeriodKey == targetPeriod {
				return valid[i], nil, true
			}
		}
		if targetDate, ok := parsePeriodDate(targetPeriod); ok {
			best := valid[0]
			bestDistance := periodDistanceDays(best.LaborPeriodDate, targetDate)
			for _, row := range valid[1:] {
				if d := periodDistanceDays(row.LaborPeriodDate, targetDate); d < bestDistance {
					best = row
					bestDistance = d
				}
			}
			note := fmt.Sprintf("Requested target_period '%s' had no exact productivity row; used closest labor period '%s'.", targetPeriod, best.LaborPeriodKey)
			return best, []string{note}, true
		}
	}

	chosen := valid[len(valid)-1]
	var note string
	if targetPeriod != "" {
		note = "Target period format was invalid, so the latest available branch productivity row was used."
	} else {
		note = fmt.Sprintf("No target_period provided; used latest productivity row '%s'.", chosen.LaborPeriodKey)
	}
	return chosen, []string{note}, true
}

// daysInPeriod returns the number of days in a YYYY-MM month, or 30 with
// the assumed flag set when the period is missing or unparseable.
func daysInPeriod(periodKey string) (int, bool) {
	if periodKey == "" {
		return 30, true
	}
	start, ok := parsePeriodDate(periodKey)
	if !ok {
		return 30, true
	}
	return start.AddDate(0, 1, -1).Day(), false
}

func roundPtr2(v float64) *float64 {
	rounded := Round2(v)
	return &rounded
}
