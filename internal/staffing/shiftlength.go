package staffing

import (
	"fmt"
	"sort"

	"conut-agent/internal/feeds"
)

// SummarizeShiftLengths computes descriptive shift-length statistics per
// branch, optionally scoped by branch, shift, and day of week. The request
// must already be normalized.
func SummarizeShiftLengths(req ShiftLengthRequest, attendance *feeds.AttendanceFeed) (*ShiftLengthResult, error) {
	table := NormalizeAttendance(attendance)
	if len(table.Rows) == 0 {
		return nil, ErrNoAttendanceData
	}

	rows := table.Rows
	branchFilter := ""
	if req.Branch != "" {
		resolved := ResolveBranch(req.Branch, table.Branches())
		if resolved == "" {
			return nil, fmt.Errorf("%w: %q", ErrBranchNotFound, req.Branch)
		}
		branchFilter = resolved
		rows = table.FilterBranch(resolved)
	}

	var filtered []Punch
	for _, row := range rows {
		if req.ShiftName != "" && row.ShiftName != req.ShiftName {
			continue
		}
		if req.DayOfWeek != "" && row.DayOfWeek != req.DayOfWeek {
			continue
		}
		filtered = append(filtered, row)
	}
	if len(filtered) == 0 {
		return nil, ErrNoMatchingRows
	}

	type branchAgg struct {
		hours     []float64
		employees map[string]bool
	}
	byBranch := make(map[string]*branchAgg)
	var allHours []float64
	allEmployees := make(map[string]bool)
	for _, row := range filtered {
		agg, ok := byBranch[row.Branch]
		if !ok {
			agg = &branchAgg{employees: make(map[string]bool)}
			byBranch[row.Branch] = agg
		}
		agg.hours = append(agg.hours, row.Hours)
		agg.employees[row.EmployeeID] = true
		allHours = append(allHours, row.Hours)
		allEmployees[row.EmployeeID] = true
	}

	stats := make([]BranchShiftStats, 0, len(byBranch))
	for branch, agg := range byBranch {
		stats = append(stats, BranchShiftStats{
			Branch:             branch,
			AverageShiftLength: Round2(Mean(agg.hours)),
			MedianShiftLength:  Round2(Median(agg.hours)),
			P90ShiftLength:     Round2(Quantile(agg.hours, 0.9)),
			ShiftCount:         len(agg.hours),
			UniqueEmployees:    len(agg.employees),
		})
	}
	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].AverageShiftLength != stats[j].AverageShiftLength {
			return stats[i].AverageShiftLength > stats[j].AverageShiftLength
		}
		return stats[i].Branch < stats[j].Branch
	})

	dayScope := req.DayOfWeek
	if dayScope == "" {
		dayScope = "All"
	}

	return &ShiftLengthResult{
		BranchFilter:       branchFilter,
		ShiftName:          req.ShiftName,
		AverageShiftLength: Round2(Mean(allHours)),
		BranchStats:        stats,
		Evidence: ShiftLengthEvidence{
			MedianShiftLength: Round2(Median(allHours)),
			P90ShiftLength:    Round2(Quantile(allHours, 0.9)),
			ShiftCount:        len(filtered),
			UniqueEmployees:   len(allEmployees),
			DayOfWeekUsed:     dayScope,
		},
		Assumptions: []string{
			"Average shift length is measured from cleaned attendance work duration values.",
			"Shift bucket filters are based on punch-in time, not mid-shift overlap.",
			"This is descriptive summary logic, not a predictive model.",
		},
		DataCoverage: ShiftLengthCoverage{
			AttendanceRowsLoaded:     table.RowsLoaded,
			AttendanceInvalidDropped: table.RowsDropped,
			AttendanceSourcePath:     table.SourcePath,
			AttendanceDateMin:        table.DateMin,
			AttendanceDateMax:        table.DateMax,
			BranchFilterApplied:      branchFilter,
		},
	}, nil
}
