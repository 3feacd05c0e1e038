package feeds

import (
	"github.com/rs/zerolog/log"
)

// PunchRecord is one raw attendance row: a single employee punch pair.
// Timestamps stay as text here; parsing and validation happen in the
// staffing normalizer so that drop counters live in one place.
type PunchRecord struct {
	EmployeeID   string
	EmployeeName string
	Branch       string
	PunchIn      string
	PunchOut     string

	// WorkDurationHours is the precomputed duration when the upstream
	// export carried one. HasWorkDuration distinguishes 0 from absent.
	WorkDurationHours float64
	HasWorkDuration   bool

	SourceFile string
}

// AttendanceFeed is the raw attendance table plus its provenance.
type AttendanceFeed struct {
	Records    []PunchRecord
	SourcePath string
}

// LoadAttendance reads the cleaned attendance CSV. A missing file yields an
// empty feed: downstream staffing logic treats that as a valid
// low-information state.
func LoadAttendance(path string) (*AttendanceFeed, error) {
	feed := &AttendanceFeed{SourcePath: path}

	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	if t == nil {
		log.Warn().Str("path", path).Msg("Attendance feed missing, continuing with empty table")
		return feed, nil
	}

	idCol, _ := t.column("employee_id", "emp_id", "staff_id")
	nameCol, _ := t.column("employee_name", "name", "staff_name")
	branchCol, _ := t.column("branch", "branch_name", "store", "location")
	inCol, _ := t.column("punch_in_timestamp", "punch_in", "time_in", "clock_in")
	outCol, _ := t.column("punch_out_timestamp", "punch_out", "time_out", "clock_out")
	durCol, hasDur := t.column("work_duration_hours", "duration_hours")
	srcCol, _ := t.column("source_file")

	for _, row := range t.rows {
		rec := PunchRecord{
			EmployeeID:   t.cell(row, idCol),
			EmployeeName: t.cell(row, nameCol),
			Branch:       t.cell(row, branchCol),
			PunchIn:      t.cell(row, inCol),
			PunchOut:     t.cell(row, outCol),
			SourceFile:   t.cell(row, srcCol),
		}
		if hasDur {
			if hours, ok := parseNumber(t.cell(row, durCol)); ok {
				rec.WorkDurationHours = hours
				rec.HasWorkDuration = true
			}
		}
		feed.Records = append(feed.Records, rec)
	}

	log.Debug().Str("path", path).Int("rows", len(feed.Records)).Msg("Loaded attendance feed")
	return feed, nil
}
