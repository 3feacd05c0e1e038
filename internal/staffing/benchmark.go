package staffing

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"conut-agent/internal/feeds"
)

// benchmarkConcurrency bounds how many branch estimates run at once.
const benchmarkConcurrency = 8

// Benchmark estimates every branch under the same shift parameters and
// ranks them by how far the recommendation exceeds the historical average
// headcount. All branch estimates share one snapshot, so each ranked row
// matches what a direct estimate for that branch would return.
func (e *Estimator) Benchmark(ctx context.Context, req BenchmarkRequest, attendance *feeds.AttendanceFeed, sales *feeds.SalesFeed) (*BenchmarkResult, error) {
	snap := BuildSnapshot(attendance, sales)
	branches := append([]string(nil), snap.RawBranches...)
	sort.Strings(branches)
	if len(branches) == 0 {
		return nil, ErrNoAttendanceData
	}

	results := make([]*EstimateResult, len(branches))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(benchmarkConcurrency)
	var mu sync.Mutex
	fallbackCount := 0

	for i, branch := range branches {
		i, branch := i, branch
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			branchReq := EstimateRequest{
				Branch:         branch,
				TargetPeriod:   req.TargetPeriod,
				DayOfWeek:      req.DayOfWeek,
				ShiftName:      req.ShiftName,
				ShiftHours:     req.ShiftHours,
				BufferPct:      req.BufferPct,
				DemandOverride: req.DemandOverride,
			}
			result, err := e.EstimateFromSnapshot(branchReq, snap)
			if err != nil {
				return err
			}
			results[i] = result
			if result.Evidence.ProductivitySource == "global_fallback" {
				mu.Lock()
				fallbackCount++
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ranked := make([]RankedBranch, 0, len(results))
	for _, result := range results {
		historical := 0.0
		if result.Evidence.HistoricalAvgHeadcount != nil {
			historical = *result.Evidence.HistoricalAvgHeadcount
		}
		gap := Round2(float64(result.RecommendedStaff) - historical)
		denom := historical
		if denom < 1 {
			denom = 1
		}
		ranked = append(ranked, RankedBranch{
			Branch:                 result.Branch,
			RecommendedStaff:       result.RecommendedStaff,
			HistoricalAvgHeadcount: Round2(historical),
			HeadcountGap:           gap,
			HeadcountGapRatio:      Round4(gap / denom),
			DemandUsed:             result.DemandUsed,
			Productivity:           result.Productivity,
			RequiredLaborHrs:       result.RequiredLaborHrs,
			SalesPeriodUsed:        result.Evidence.SalesPeriodUsed,
			ProductivityPeriodUsed: result.Evidence.ProductivityPeriodUsed,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.HeadcountGap != b.HeadcountGap {
			return a.HeadcountGap > b.HeadcountGap
		}
		if a.DemandUsed != b.DemandUsed {
			return a.DemandUsed > b.DemandUsed
		}
		return a.Productivity < b.Productivity
	})

	top := ranked
	if len(top) > req.TopN {
		top = top[:req.TopN]
	}

	dayScope := req.DayOfWeek
	if dayScope == "" {
		dayScope = "All"
	}

	return &BenchmarkResult{
		ShiftName:      req.ShiftName,
		TargetPeriod:   req.TargetPeriod,
		BranchesRanked: top,
		Evidence: BenchmarkEvidence{
			BranchesEvaluated:         len(ranked),
			TopN:                      req.TopN,
			DayOfWeekUsed:             dayScope,
			BufferPctUsed:             req.BufferPct,
			DemandOverrideUsed:        req.DemandOverride != nil,
			GlobalProductivityResorts: fallbackCount,
		},
		Assumptions: []string{
			"Branches are ranked by the gap between recommended staff and historical average headcount for the requested shift.",
			"A positive headcount_gap indicates the branch is likely understaffed relative to its sales-driven labor requirement.",
			"Values are scaled units, so comparisons reflect relative staffing pressure rather than absolute labor cost.",
			"Shift definitions are based on punch-in time buckets.",
		},
		DataCoverage: BenchmarkCoverage{
			AttendanceRowsLoaded:     snap.Attendance.RowsLoaded,
			AttendanceSourcePath:     snap.Attendance.SourcePath,
			SalesRowsLoaded:          len(snap.Sales.Records),
			SalesSourcePath:          snap.Sales.SourcePath,
			BranchesInAttendance:     len(branches),
			BenchmarkPeriodRequested: req.TargetPeriod,
		},
	}, nil
}
