package staffing

import "errors"

// Sentinel errors for the estimation pipeline. The API layer maps these to
// status codes, so callers must compare with errors.Is.
var (
	// ErrBranchNotFound means the requested branch matched no attendance
	// branch, neither exactly nor as a unique partial match.
	ErrBranchNotFound = errors.New("branch not found in attendance data")

	// ErrNoValidAttendance means the branch exists but every one of its
	// rows was dropped during timestamp cleaning.
	ErrNoValidAttendance = errors.New("branch has no valid attendance rows after timestamp cleaning")

	// ErrNoDemandData means no sales figure could be resolved at any
	// fallback level, including the global latest period.
	ErrNoDemandData = errors.New("monthly sales data is unavailable, so demand could not be estimated")

	// ErrNoProductivityData means neither a branch productivity row nor a
	// positive global productivity value was available.
	ErrNoProductivityData = errors.New("productivity could not be computed from attendance and monthly sales")

	// ErrNoAttendanceData means the attendance feed is empty.
	ErrNoAttendanceData = errors.New("attendance data is unavailable")

	// ErrNoMatchingRows means the shift length filters excluded every row.
	ErrNoMatchingRows = errors.New("no attendance rows matched the requested branch/shift filters")
)
