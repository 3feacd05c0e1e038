package staffing

import "strings"

// ResolveBranch maps a requested branch name onto one of the available raw
// branch names. Matching is case and whitespace insensitive: an exact
// normalized match wins, then a partial match in either direction, but only
// when exactly one branch matches. Returns "" when nothing (or more than
// one thing) matches.
func ResolveBranch(requested string, available []string) string {
	if len(available) == 0 {
		return ""
	}
	want := NormalizeBranch(requested)
	if want == "" {
		return ""
	}

	for _, branch := range available {
		if NormalizeBranch(branch) == want {
			return branch
		}
	}

	var partial []string
	for _, branch := range available {
		have := NormalizeBranch(branch)
		if strings.Contains(have, want) || strings.Contains(want, have) {
			partial = append(partial, branch)
		}
	}
	if len(partial) == 1 {
		return partial[0]
	}
	return ""
}
