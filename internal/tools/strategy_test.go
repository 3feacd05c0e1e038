package tools

import (
	"strings"
	"testing"

	"conut-agent/internal/feeds"
)

func strategyFixture() *feeds.TransactionFeed {
	return &feeds.TransactionFeed{
		SourcePath: "txn.csv",
		Records: []feeds.TransactionLine{
			txLine("1", "Iced Latte", "Jnah", 1, 12, "2025-06-01"),
			txLine("1", "Chocolate Milkshake", "Jnah", 1, 8, "2025-06-01"),
			txLine("2", "Espresso Doppio", "Jnah", 1, 6, "2025-06-01"),
			txLine("2", "Chocolate Milkshake", "Jnah", 1, 8, "2025-06-01"),
			txLine("3", "Flat White", "Jnah", 1, 10, "2025-06-02"),
		},
	}
}

func TestCategoryKeywordShare(t *testing.T) {
	metrics := CategoryKeywordShare(strategyFixture(), []string{"coffee", "milkshake"})
	if len(metrics) != 2 {
		t.Fatalf("expected 2 category metrics, got %d", len(metrics))
	}

	coffee := metrics[0]
	if coffee.Category != "coffee" || coffee.Lines != 3 {
		t.Errorf("unexpected coffee metric: %+v", coffee)
	}
	// Latte 12 + espresso 6 + flat white 10.
	if coffee.RevenueProxy != 28 {
		t.Errorf("coffee revenue = %v, want 28", coffee.RevenueProxy)
	}

	milkshake := metrics[1]
	if milkshake.Lines != 2 || milkshake.RevenueProxy != 16 {
		t.Errorf("unexpected milkshake metric: %+v", milkshake)
	}
}

func TestCategoryKeywordShareWholeWords(t *testing.T) {
	feed := &feeds.TransactionFeed{Records: []feeds.TransactionLine{
		txLine("1", "Mochaccino Special", "Jnah", 1, 5, "2025-06-01"),
	}}
	metrics := CategoryKeywordShare(feed, []string{"coffee"})
	// "mocha" must not match inside "mochaccino".
	if metrics[0].Lines != 0 {
		t.Errorf("expected no whole-word match, got %d lines", metrics[0].Lines)
	}
}

func TestBuildGrowthStrategy(t *testing.T) {
	req := GrowthStrategyRequest{FocusCategories: []string{"coffee", "milkshake"}}
	resp := BuildGrowthStrategy(req, strategyFixture())

	if resp.ToolName != "growth_strategy" {
		t.Errorf("ToolName = %q", resp.ToolName)
	}

	recommendations, ok := resp.Result["recommendations"].([]string)
	if !ok {
		t.Fatalf("unexpected recommendations type: %T", resp.Result["recommendations"])
	}

	// Milkshake holds the smaller revenue share (16 of 44), so it is the
	// flagged whitespace.
	foundWhitespace := false
	for _, rec := range recommendations {
		if strings.Contains(rec, "whitespace: milkshake") {
			foundWhitespace = true
		}
	}
	if !foundWhitespace {
		t.Errorf("expected milkshake whitespace recommendation, got %v", recommendations)
	}

	if got := resp.KeyEvidenceMetrics["category_lines_analyzed"]; got != 5 {
		t.Errorf("category_lines_analyzed = %v, want 5", got)
	}
	if got := resp.KeyEvidenceMetrics["categories_tracked"]; got != 2 {
		t.Errorf("categories_tracked = %v, want 2", got)
	}

	metrics := resp.Result["category_metrics"].([]CategoryMetric)
	if metrics[0].RevenueShare <= metrics[1].RevenueShare {
		t.Errorf("expected coffee share above milkshake share: %v", metrics)
	}
}

func TestBuildGrowthStrategyPlaceholder(t *testing.T) {
	resp := BuildGrowthStrategy(GrowthStrategyRequest{FocusCategories: []string{"coffee"}}, &feeds.TransactionFeed{})

	if resp.Result["placeholder"] != true {
		t.Errorf("expected placeholder result, got %v", resp.Result)
	}
	if got := resp.KeyEvidenceMetrics["category_lines_analyzed"]; got != 0 {
		t.Errorf("category_lines_analyzed = %v, want 0", got)
	}
}

func TestGrowthStrategyRequestNormalize(t *testing.T) {
	req := GrowthStrategyRequest{}
	if err := req.Normalize(); err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if len(req.FocusCategories) != 2 || req.FocusCategories[0] != "coffee" {
		t.Errorf("unexpected default categories: %v", req.FocusCategories)
	}
}
