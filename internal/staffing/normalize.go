// Package staffing implements the sales-driven staffing estimation
// pipeline: attendance normalization, shift feature aggregation, branch
// productivity, and the estimation and benchmarking operations built on
// top of them.
package staffing

import (
	"strings"
	"time"

	"conut-agent/internal/feeds"
)

// punchLayouts are tried in order when parsing punch timestamps.
var punchLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05Z07:00",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
}

// Punch is one validated attendance row with its derived labels.
type Punch struct {
	EmployeeID   string
	EmployeeName string
	Branch       string
	PunchIn      time.Time
	PunchOut     time.Time
	Hours        float64

	DateIn    string // YYYY-MM-DD of punch-in
	HourIn    int
	DayOfWeek string // Mon..Sun
	ShiftName string
	PeriodKey string // YYYY-MM
}

// AttendanceTable is the cleaned attendance base every downstream
// aggregation starts from.
type AttendanceTable struct {
	Rows        []Punch
	RowsLoaded  int
	RowsDropped int
	DateMin     string
	DateMax     string
	SourcePath  string
}

// NormalizeBranch lowercases and collapses whitespace for branch matching.
func NormalizeBranch(value string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(value))), " ")
}

// ShiftFromHour maps a punch-in hour to its shift bucket.
func ShiftFromHour(hour int) string {
	switch {
	case hour >= 6 && hour < 12:
		return ShiftMorning
	case hour >= 12 && hour < 18:
		return ShiftAfternoon
	case hour >= 18 && hour <= 23:
		return ShiftEvening
	default:
		return ShiftNight
	}
}

func parsePunchTime(value string) (time.Time, bool) {
	text := strings.TrimSpace(value)
	if text == "" {
		return time.Time{}, false
	}
	for _, layout := range punchLayouts {
		if ts, err := time.Parse(layout, text); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// NormalizeAttendance validates raw punch records and derives the labels
// the aggregations key on. A row is dropped when either timestamp fails to
// parse or no positive work duration can be established. The precomputed
// duration wins when present and positive; otherwise the punch interval is
// used.
func NormalizeAttendance(feed *feeds.AttendanceFeed) *AttendanceTable {
	table := &AttendanceTable{
		RowsLoaded: len(feed.Records),
		SourcePath: feed.SourcePath,
	}

	for _, rec := range feed.Records {
		in, okIn := parsePunchTime(rec.PunchIn)
		out, okOut := parsePunchTime(rec.PunchOut)
		if !okIn || !okOut {
			table.RowsDropped++
			continue
		}

		hours := out.Sub(in).Hours()
		if rec.HasWorkDuration && rec.WorkDurationHours > 0 {
			hours = rec.WorkDurationHours
		}
		if hours <= 0 {
			table.RowsDropped++
			continue
		}

		punch := Punch{
			EmployeeID:   rec.EmployeeID,
			EmployeeName: rec.EmployeeName,
			Branch:       rec.Branch,
			PunchIn:      in,
			PunchOut:     out,
			Hours:        hours,
			DateIn:       in.Format("2006-01-02"),
			HourIn:       in.Hour(),
			DayOfWeek:    in.Format("Mon"),
			ShiftName:    ShiftFromHour(in.Hour()),
			PeriodKey:    in.Format("2006-01"),
		}
		table.Rows = append(table.Rows, punch)

		if table.DateMin == "" || punch.DateIn < table.DateMin {
			table.DateMin = punch.DateIn
		}
		if punch.DateIn > table.DateMax {
			table.DateMax = punch.DateIn
		}
	}

	return table
}

// Branches returns the distinct raw branch names in first-seen order.
func (t *AttendanceTable) Branches() []string {
	seen := make(map[string]bool)
	var branches []string
	for _, row := range t.Rows {
		if row.Branch == "" || seen[row.Branch] {
			continue
		}
		seen[row.Branch] = true
		branches = append(branches, row.Branch)
	}
	return branches
}

// FilterBranch returns the rows whose normalized branch matches.
func (t *AttendanceTable) FilterBranch(branch string) []Punch {
	want := NormalizeBranch(branch)
	var rows []Punch
	for _, row := range t.Rows {
		if NormalizeBranch(row.Branch) == want {
			rows = append(rows, row)
		}
	}
	return rows
}
