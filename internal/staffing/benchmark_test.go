package staffing

import (
	"context"
	"errors"
	"testing"

	"conut-agent/internal/feeds"
)

func benchmarkFixture() (*feeds.AttendanceFeed, *feeds.SalesFeed) {
	attendance := &feeds.AttendanceFeed{
		Records: []feeds.PunchRecord{
			// Jnah: one evening employee against strong sales.
			punchRecord("E1", "Jnah", "2025-07-07 18:00:00", "2025-07-08 02:00:00", 8),
			// Verdun: three evening employees against weak sales.
			punchRecord("E2", "Verdun", "2025-07-07 18:00:00", "2025-07-08 02:00:00", 8),
			punchRecord("E3", "Verdun", "2025-07-07 18:00:00", "2025-07-08 02:00:00", 8),
			punchRecord("E4", "Verdun", "2025-07-07 18:00:00", "2025-07-08 02:00:00", 8),
		},
	}
	sales := &feeds.SalesFeed{Records: []feeds.SalesRecord{
		salesRecord("Jnah", "2025-07", 100000),
		salesRecord("Verdun", "2025-07", 5000),
	}}
	return attendance, sales
}

func TestBenchmarkRanksUnderstaffedFirst(t *testing.T) {
	attendance, sales := benchmarkFixture()
	estimator := NewEstimator(testDefaults())

	req := BenchmarkRequest{ShiftName: ShiftEvening, ShiftHours: 8, BufferPct: 0.15, TopN: 5}
	if err := req.Normalize(testDefaults()); err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	result, err := estimator.Benchmark(context.Background(), req, attendance, sales)
	if err != nil {
		t.Fatalf("Benchmark returned error: %v", err)
	}

	if result.Evidence.BranchesEvaluated != 2 {
		t.Errorf("BranchesEvaluated = %d, want 2", result.Evidence.BranchesEvaluated)
	}
	if len(result.BranchesRanked) != 2 {
		t.Fatalf("expected 2 ranked branches, got %d", len(result.BranchesRanked))
	}

	// Jnah's single employee leaves no slack, while Verdun's three staff
	// exceed its weak demand, so Jnah carries the larger gap.
	first := result.BranchesRanked[0]
	if first.Branch != "Jnah" {
		t.Errorf("top branch = %q, want Jnah", first.Branch)
	}
	if first.HeadcountGap <= result.BranchesRanked[1].HeadcountGap {
		t.Errorf("ranking not descending by gap: %v", result.BranchesRanked)
	}
}

func TestBenchmarkMatchesDirectEstimate(t *testing.T) {
	attendance, sales := benchmarkFixture()
	estimator := NewEstimator(testDefaults())

	benchReq := BenchmarkRequest{ShiftName: ShiftEvening, ShiftHours: 8, BufferPct: 0.15, TopN: 5}
	benchResult, err := estimator.Benchmark(context.Background(), benchReq, attendance, sales)
	if err != nil {
		t.Fatalf("Benchmark returned error: %v", err)
	}

	for _, row := range benchResult.BranchesRanked {
		direct, err := estimator.Estimate(EstimateRequest{
			Branch: row.Branch, ShiftName: ShiftEvening, ShiftHours: 8, BufferPct: 0.15,
		}, attendance, sales)
		if err != nil {
			t.Fatalf("Estimate(%s) returned error: %v", row.Branch, err)
		}
		if row.RecommendedStaff != direct.RecommendedStaff {
			t.Errorf("%s: benchmark staff %d != direct estimate %d", row.Branch, row.RecommendedStaff, direct.RecommendedStaff)
		}
		if row.DemandUsed != direct.DemandUsed {
			t.Errorf("%s: benchmark demand %v != direct %v", row.Branch, row.DemandUsed, direct.DemandUsed)
		}
	}
}

func TestBenchmarkTopNTrims(t *testing.T) {
	attendance, sales := benchmarkFixture()
	estimator := NewEstimator(testDefaults())

	req := BenchmarkRequest{ShiftName: ShiftEvening, ShiftHours: 8, BufferPct: 0.15, TopN: 1}
	result, err := estimator.Benchmark(context.Background(), req, attendance, sales)
	if err != nil {
		t.Fatalf("Benchmark returned error: %v", err)
	}
	if len(result.BranchesRanked) != 1 {
		t.Errorf("expected 1 ranked branch, got %d", len(result.BranchesRanked))
	}
	if result.Evidence.BranchesEvaluated != 2 {
		t.Errorf("trimming must not change BranchesEvaluated, got %d", result.Evidence.BranchesEvaluated)
	}
}

func TestBenchmarkNoAttendance(t *testing.T) {
	estimator := NewEstimator(testDefaults())
	_, err := estimator.Benchmark(context.Background(), BenchmarkRequest{
		ShiftName: ShiftEvening, ShiftHours: 8, TopN: 5,
	}, &feeds.AttendanceFeed{}, &feeds.SalesFeed{})
	if !errors.Is(err, ErrNoAttendanceData) {
		t.Errorf("expected ErrNoAttendanceData, got %v", err)
	}
}

func TestBenchmarkRequestNormalize(t *testing.T) {
	defaults := testDefaults()

	req := BenchmarkRequest{}
	if err := req.Normalize(defaults); err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if req.ShiftName != ShiftEvening {
		t.Errorf("expected evening default, got %q", req.ShiftName)
	}
	if req.TopN != 5 {
		t.Errorf("expected top_n default 5, got %d", req.TopN)
	}
	if req.ShiftHours != 8 {
		t.Errorf("expected shift hours default 8, got %v", req.ShiftHours)
	}

	bad := BenchmarkRequest{TopN: 21}
	if err := bad.Normalize(defaults); err == nil {
		t.Error("expected error for top_n above 20")
	}
}
