package staffing

import (
	"fmt"
	"regexp"
)

// Shift buckets derived from punch-in hour.
const (
	ShiftMorning   = "morning"
	ShiftAfternoon = "afternoon"
	ShiftEvening   = "evening"
	ShiftNight     = "night"
)

// DayOfWeekOrder lists day labels in reporting order.
var DayOfWeekOrder = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

var periodKeyPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// ValidShift reports whether name is one of the four shift buckets.
func ValidShift(name string) bool {
	switch name {
	case ShiftMorning, ShiftAfternoon, ShiftEvening, ShiftNight:
		return true
	}
	return false
}

// ValidDayOfWeek reports whether day is one of the Mon..Sun labels.
func ValidDayOfWeek(day string) bool {
	for _, d := range DayOfWeekOrder {
		if d == day {
			return true
		}
	}
	return false
}

// ValidPeriodKey reports whether key has the YYYY-MM shape.
func ValidPeriodKey(key string) bool {
	return periodKeyPattern.MatchString(key)
}

// EstimateRequest asks for a staffing recommendation for one branch shift.
// TargetPeriod, DayOfWeek, and DemandOverride are optional.
type EstimateRequest struct {
	Branch         string
	TargetPeriod   string
	DayOfWeek      string
	ShiftName      string
	ShiftHours     float64
	BufferPct      float64
	DemandOverride *float64
}

// Normalize applies defaults and validates ranges. Defaults come from the
// configured staffing defaults so operators can tune them per deployment.
func (r *EstimateRequest) Normalize(defaults Defaults) error {
	if r.Branch == "" {
		return fmt.Errorf("branch is required")
	}
	if !ValidShift(r.ShiftName) {
		return fmt.Errorf("shift_name %q is not one of morning, afternoon, evening, night", r.ShiftName)
	}
	if r.TargetPeriod != "" && !ValidPeriodKey(r.TargetPeriod) {
		return fmt.Errorf("target_period %q must use the YYYY-MM format", r.TargetPeriod)
	}
	if r.DayOfWeek != "" && !ValidDayOfWeek(r.DayOfWeek) {
		return fmt.Errorf("day_of_week %q must be one of Mon..Sun", r.DayOfWeek)
	}
	if r.ShiftHours == 0 {
		r.ShiftHours = defaults.ShiftHours
	}
	if r.ShiftHours <= 0 || r.ShiftHours > 24 {
		return fmt.Errorf("shift_hours must be in (0, 24], got %v", r.ShiftHours)
	}
	if r.BufferPct < 0 || r.BufferPct > 1 {
		return fmt.Errorf("buffer_pct must be in [0, 1], got %v", r.BufferPct)
	}
	if r.DemandOverride != nil && *r.DemandOverride < 0 {
		return fmt.Errorf("demand_override must be non-negative")
	}
	return nil
}

// Defaults carry the tunable estimation constants.
type Defaults struct {
	ShiftHours         float64
	BufferPct          float64
	ShiftShareFallback float64
}

// Evidence is the intermediate-value trail attached to an estimate so the
// arithmetic can be audited.
type Evidence struct {
	ProductivitySource       string   `json:"productivity_source"`
	ProductivityPeriodUsed   string   `json:"productivity_period_used,omitempty"`
	SalesPeriodUsed          string   `json:"sales_period_used,omitempty"`
	HistoricalDayScopeUsed   string   `json:"historical_day_scope_used"`
	HistoricalAvgLaborHours  *float64 `json:"historical_avg_labor_hours_per_day_shift"`
	HistoricalAvgHeadcount   *float64 `json:"historical_avg_headcount_per_day_shift"`
	HistoricalP50LaborHours  *float64 `json:"historical_p50_labor_hours_per_day_shift"`
	HistoricalP90LaborHours  *float64 `json:"historical_p90_labor_hours_per_day_shift"`
	HistoricalObservedDays   int      `json:"historical_observed_days"`
	ShiftShareUsed           float64  `json:"shift_share_used"`
	DaysInPeriodUsed         int      `json:"days_in_period_used"`
	RequiredLaborHoursMonth  float64  `json:"required_labor_hours_month"`
	RequiredLaborHoursPerDay float64  `json:"required_labor_hours_per_day_all_shifts"`
	RequiredStaffRaw         float64  `json:"required_staff_raw"`
	BufferPctUsed            float64  `json:"buffer_pct_used"`
	RecentMonthlySalesUsed   float64  `json:"recent_monthly_sales_used"`
	FallbackNotes            []string `json:"fallback_notes"`
}

// Coverage records where the inputs came from and how much survived
// cleaning.
type Coverage struct {
	AttendanceSourcePath        string `json:"attendance_source_path"`
	AttendanceRowsLoaded        int    `json:"attendance_rows_loaded"`
	AttendanceRowsUsedForBranch int    `json:"attendance_rows_used_for_branch"`
	AttendanceInvalidDropped    int    `json:"attendance_invalid_rows_dropped"`
	AttendanceDateMin           string `json:"attendance_date_min,omitempty"`
	AttendanceDateMax           string `json:"attendance_date_max,omitempty"`
	ShiftFeatureRowsForBranch   int    `json:"shift_feature_rows_for_branch"`
	SalesSourcePath             string `json:"sales_source_path"`
	SalesRowsLoaded             int    `json:"sales_rows_loaded"`
	SalesPeriodMin              string `json:"sales_period_min,omitempty"`
	SalesPeriodMax              string `json:"sales_period_max,omitempty"`
	ProductivityRowsForBranch   int    `json:"productivity_rows_for_branch"`
	GlobalProductivityAvailable bool   `json:"global_productivity_available"`
}

// EstimateResult is a full staffing recommendation with its audit trail.
type EstimateResult struct {
	Branch           string   `json:"branch"`
	ShiftName        string   `json:"shift_name"`
	RecommendedStaff int      `json:"recommended_staff"`
	RequiredLaborHrs float64  `json:"required_labor_hours"`
	Productivity     float64  `json:"productivity_sales_per_labor_hour"`
	DemandUsed       float64  `json:"demand_used"`
	Evidence         Evidence `json:"evidence"`
	Assumptions      []string `json:"assumptions"`
	DataCoverage     Coverage `json:"data_coverage"`
}

// BenchmarkRequest asks for a cross-branch understaffing ranking.
type BenchmarkRequest struct {
	TargetPeriod   string
	DayOfWeek      string
	ShiftName      string
	ShiftHours     float64
	BufferPct      float64
	DemandOverride *float64
	TopN           int
}

// Normalize applies defaults and validates ranges. The shift defaults to
// evening, the busiest bucket for most branches.
func (r *BenchmarkRequest) Normalize(defaults Defaults) error {
	if r.ShiftName == "" {
		r.ShiftName = ShiftEvening
	}
	if !ValidShift(r.ShiftName) {
		return fmt.Errorf("shift_name %q is not one of morning, afternoon, evening, night", r.ShiftName)
	}
	if r.TargetPeriod != "" && !ValidPeriodKey(r.TargetPeriod) {
		return fmt.Errorf("target_period %q must use the YYYY-MM format", r.TargetPeriod)
	}
	if r.DayOfWeek != "" && !ValidDayOfWeek(r.DayOfWeek) {
		return fmt.Errorf("day_of_week %q must be one of Mon..Sun", r.DayOfWeek)
	}
	if r.ShiftHours == 0 {
		r.ShiftHours = defaults.ShiftHours
	}
	if r.ShiftHours <= 0 || r.ShiftHours > 24 {
		return fmt.Errorf("shift_hours must be in (0, 24], got %v", r.ShiftHours)
	}
	if r.BufferPct < 0 || r.BufferPct > 1 {
		return fmt.Errorf("buffer_pct must be in [0, 1], got %v", r.BufferPct)
	}
	if r.DemandOverride != nil && *r.DemandOverride < 0 {
		return fmt.Errorf("demand_override must be non-negative")
	}
	if r.TopN == 0 {
		r.TopN = 5
	}
	if r.TopN < 1 || r.TopN > 20 {
		return fmt.Errorf("top_n must be in [1, 20], got %d", r.TopN)
	}
	return nil
}

// RankedBranch is one row of the understaffing ranking.
type RankedBranch struct {
	Branch                 string  `json:"branch"`
	RecommendedStaff       int     `json:"recommended_staff"`
	HistoricalAvgHeadcount float64 `json:"historical_avg_headcount"`
	HeadcountGap           float64 `json:"headcount_gap"`
	HeadcountGapRatio      float64 `json:"headcount_gap_ratio"`
	DemandUsed             float64 `json:"demand_used"`
	Productivity           float64 `json:"productivity_sales_per_labor_hour"`
	RequiredLaborHrs       float64 `json:"required_labor_hours"`
	SalesPeriodUsed        string  `json:"sales_period_used,omitempty"`
	ProductivityPeriodUsed string  `json:"productivity_period_used,omitempty"`
}

// BenchmarkEvidence summarizes the ranking run.
type BenchmarkEvidence struct {
	BranchesEvaluated         int     `json:"branches_evaluated"`
	TopN                      int     `json:"top_n"`
	DayOfWeekUsed             string  `json:"day_of_week_used"`
	BufferPctUsed             float64 `json:"buffer_pct_used"`
	DemandOverrideUsed        bool    `json:"demand_override_used"`
	GlobalProductivityResorts int     `json:"global_productivity_fallback_count"`
}

// BenchmarkCoverage records input provenance for the ranking run.
type BenchmarkCoverage struct {
	AttendanceRowsLoaded     int    `json:"attendance_rows_loaded"`
	AttendanceSourcePath     string `json:"attendance_source_path"`
	SalesRowsLoaded          int    `json:"sales_rows_loaded"`
	SalesSourcePath          string `json:"sales_source_path"`
	BranchesInAttendance     int    `json:"branches_in_attendance"`
	BenchmarkPeriodRequested string `json:"benchmark_period_requested,omitempty"`
}

// BenchmarkResult ranks the most understaffed branches for one shift.
type BenchmarkResult struct {
	ShiftName      string            `json:"shift_name"`
	TargetPeriod   string            `json:"target_period,omitempty"`
	BranchesRanked []RankedBranch    `json:"branches_ranked"`
	Evidence       BenchmarkEvidence `json:"evidence"`
	Assumptions    []string          `json:"assumptions"`
	DataCoverage   BenchmarkCoverage `json:"data_coverage"`
}

// ShiftLengthRequest asks for a descriptive shift-length summary.
// All filters are optional.
type ShiftLengthRequest struct {
	Branch    string
	ShiftName string
	DayOfWeek string
}

// Normalize validates the optional filters.
func (r *ShiftLengthRequest) Normalize() error {
	if r.ShiftName != "" && !ValidShift(r.ShiftName) {
		return fmt.Errorf("shift_name %q is not one of morning, afternoon, evening, night", r.ShiftName)
	}
	if r.DayOfWeek != "" && !ValidDayOfWeek(r.DayOfWeek) {
		return fmt.Errorf("day_of_week %q must be one of Mon..Sun", r.DayOfWeek)
	}
	return nil
}

// BranchShiftStats is one branch row of the shift-length summary.
type BranchShiftStats struct {
	Branch             string  `json:"branch"`
	AverageShiftLength float64 `json:"average_shift_length_hours"`
	MedianShiftLength  float64 `json:"median_shift_length_hours"`
	P90ShiftLength     float64 `json:"p90_shift_length_hours"`
	ShiftCount         int     `json:"shift_count"`
	UniqueEmployees    int     `json:"unique_employees"`
}

// ShiftLengthEvidence summarizes the filtered population.
type ShiftLengthEvidence struct {
	MedianShiftLength float64 `json:"median_shift_length_hours"`
	P90ShiftLength    float64 `json:"p90_shift_length_hours"`
	ShiftCount        int     `json:"shift_count"`
	UniqueEmployees   int     `json:"unique_employees"`
	DayOfWeekUsed     string  `json:"day_of_week_used"`
}

// ShiftLengthCoverage records input provenance for the summary.
type ShiftLengthCoverage struct {
	AttendanceRowsLoaded     int    `json:"attendance_rows_loaded"`
	AttendanceInvalidDropped int    `json:"attendance_invalid_rows_dropped"`
	AttendanceSourcePath     string `json:"attendance_source_path"`
	AttendanceDateMin        string `json:"attendance_date_min,omitempty"`
	AttendanceDateMax        string `json:"attendance_date_max,omitempty"`
	BranchFilterApplied      string `json:"branch_filter_applied,omitempty"`
}

// ShiftLengthResult is the descriptive shift-length summary.
type ShiftLengthResult struct {
	BranchFilter       string              `json:"branch_filter,omitempty"`
	ShiftName          string              `json:"shift_name,omitempty"`
	AverageShiftLength float64             `json:"average_shift_length_hours"`
	BranchStats        []BranchShiftStats  `json:"branch_stats"`
	Evidence           ShiftLengthEvidence `json:"evidence"`
	Assumptions        []string            `json:"assumptions"`
	DataCoverage       ShiftLengthCoverage `json:"data_coverage"`
}
