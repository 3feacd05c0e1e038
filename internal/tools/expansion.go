package tools

import (
	"sort"

	"conut-agent/internal/feeds"
	"conut-agent/internal/staffing"
)

// BenchmarkBranch is one of the strongest existing branches a candidate
// location is compared against.
type BenchmarkBranch struct {
	BranchName      string  `json:"branch_name"`
	AvgDailyDemand  float64 `json:"avg_daily_demand"`
	AvgDailyRevenue float64 `json:"avg_daily_revenue"`
	CompositeScore  float64 `json:"composite_score"`
}

// ScoreExpansionFeasibility scores a candidate location against the
// strongest existing branches. Each branch gets a composite of its daily
// demand, daily revenue, and monthly sales, each normalized against the
// network maximum; the feasibility score is the mean composite of the top
// three benchmarks scaled to 0-100.
func ScoreExpansionFeasibility(req ExpansionRequest, transactions *feeds.TransactionFeed, sales *feeds.SalesFeed) *ToolResponse {
	daily := SummarizeBranchDaily(transactions)

	if len(daily) == 0 {
		return &ToolResponse{
			ToolName: "expansion_feasibility",
			Result: map[string]any{
				"candidate_location": req.CandidateLocation,
				"feasibility_score":  62,
				"recommendation":     "conditional_go",
				"benchmark_branches": []BenchmarkBranch{},
			},
			KeyEvidenceMetrics: map[string]any{
				"branches_analyzed":    0,
				"median_revenue_proxy": 0,
			},
			Assumptions: []string{
				"No benchmark branch data was available; a placeholder score is used.",
				"The score should be replaced with a real geo-demand model if external location data is later allowed.",
			},
			DataCoverageNotes: coverageNotes(transactions),
		}
	}

	// 1. Collapse daily rows into per-branch averages.
	type branchAgg struct {
		demand  []float64
		revenue []float64
	}
	byBranch := make(map[string]*branchAgg)
	for _, row := range daily {
		agg, ok := byBranch[row.BranchName]
		if !ok {
			agg = &branchAgg{}
			byBranch[row.BranchName] = agg
		}
		agg.demand = append(agg.demand, row.DemandUnits)
		agg.revenue = append(agg.revenue, row.RevenueProxy)
	}

	type branchScore struct {
		name         string
		avgDemand    float64
		avgRevenue   float64
		monthlySales float64
		composite    float64
	}
	scores := make([]branchScore, 0, len(byBranch))
	for name, agg := range byBranch {
		scores = append(scores, branchScore{
			name:       name,
			avgDemand:  staffing.Mean(agg.demand),
			avgRevenue: staffing.Mean(agg.revenue),
		})
	}

	// 2. Attach mean monthly sales, approximating 30x daily revenue for
	// branches the sales feed does not cover.
	monthlyByBranch := make(map[string][]float64)
	for _, rec := range sales.Records {
		norm := staffing.NormalizeBranch(rec.BranchName)
		monthlyByBranch[norm] = append(monthlyByBranch[norm], rec.MonthlySales)
	}
	for i := range scores {
		if monthly, ok := monthlyByBranch[staffing.NormalizeBranch(scores[i].name)]; ok {
			scores[i].monthlySales = staffing.Mean(monthly)
		} else {
			scores[i].monthlySales = scores[i].avgRevenue * 30
		}
	}

	// 3. Composite of max-normalized metrics: demand 40%, revenue 35%,
	// monthly sales 25%.
	maxDemand, maxRevenue, maxMonthly := 1.0, 1.0, 1.0
	for _, s := range scores {
		if s.avgDemand > maxDemand {
			maxDemand = s.avgDemand
		}
		if s.avgRevenue > maxRevenue {
			maxRevenue = s.avgRevenue
		}
		if s.monthlySales > maxMonthly {
			maxMonthly = s.monthlySales
		}
	}
	for i := range scores {
		scores[i].composite = scores[i].avgDemand/maxDemand*0.4 +
			scores[i].avgRevenue/maxRevenue*0.35 +
			scores[i].monthlySales/maxMonthly*0.25
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].composite != scores[j].composite {
			return scores[i].composite > scores[j].composite
		}
		return scores[i].name < scores[j].name
	})

	top := scores
	if len(top) > 3 {
		top = top[:3]
	}
	compositeSum := 0.0
	benchmarks := make([]BenchmarkBranch, 0, len(top))
	for _, s := range top {
		compositeSum += s.composite
		benchmarks = append(benchmarks, BenchmarkBranch{
			BranchName:      s.name,
			AvgDailyDemand:  staffing.Round2(s.avgDemand),
			AvgDailyRevenue: staffing.Round2(s.avgRevenue),
			CompositeScore:  staffing.Round4(s.composite),
		})
	}
	feasibility := compositeSum / float64(len(top)) * 100

	recommendation := "hold"
	switch {
	case feasibility >= 75:
		recommendation = "go"
	case feasibility >= 55:
		recommendation = "conditional_go"
	}

	revenues := make([]float64, 0, len(scores))
	for _, s := range scores {
		revenues = append(revenues, s.avgRevenue)
	}

	return &ToolResponse{
		ToolName: "expansion_feasibility",
		Result: map[string]any{
			"candidate_location": req.CandidateLocation,
			"target_region":      req.TargetRegion,
			"feasibility_score":  staffing.Round2(feasibility),
			"recommendation":     recommendation,
			"benchmark_branches": benchmarks,
		},
		KeyEvidenceMetrics: map[string]any{
			"branches_analyzed":    len(scores),
			"median_revenue_proxy": staffing.Round2(staffing.Median(revenues)),
		},
		Assumptions: []string{
			"Without external geo data, feasibility is a benchmark score against the strongest existing branches.",
			"The recommendation is directional and should be paired with rent and footfall checks outside this dataset.",
		},
		DataCoverageNotes: coverageNotes(transactions),
	}
}
