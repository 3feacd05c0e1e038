package tools

import (
	"fmt"

	"conut-agent/internal/feeds"
	"conut-agent/internal/staffing"
)

// BuildGrowthStrategy turns focus-category revenue shares and the top
// mined combo into a small set of growth recommendations.
func BuildGrowthStrategy(req GrowthStrategyRequest, transactions *feeds.TransactionFeed) *ToolResponse {
	metrics := CategoryKeywordShare(transactions, req.FocusCategories)

	if len(metrics) == 0 {
		return &ToolResponse{
			ToolName: "growth_strategy",
			Result: map[string]any{
				"focus_categories": req.FocusCategories,
				"recommendations": []string{
					"Bundle coffee with breakfast pastry during morning hours.",
					"Promote milkshake add-ons with dessert-heavy baskets.",
					"Feature low-friction upsell prompts in POS and delivery menus.",
				},
				"placeholder": true,
			},
			KeyEvidenceMetrics: map[string]any{
				"category_lines_analyzed": 0,
			},
			Assumptions: []string{
				"No category-level data found; recommendations are rule-based placeholders.",
			},
			DataCoverageNotes: coverageNotes(transactions),
		}
	}

	totalRevenue := 0.0
	for _, m := range metrics {
		totalRevenue += m.RevenueProxy
	}
	if totalRevenue == 0 {
		totalRevenue = 1
	}
	totalLines := 0
	for i := range metrics {
		metrics[i].RevenueShare = staffing.Round4(metrics[i].RevenueProxy / totalRevenue)
		totalLines += metrics[i].Lines
	}
	weakest := metrics[0]
	for _, m := range metrics[1:] {
		if m.RevenueShare < weakest.RevenueShare {
			weakest = m
		}
	}

	var recommendations []string
	for _, m := range metrics {
		recommendations = append(recommendations, fmt.Sprintf(
			"Protect and scale %s where share is %.1f%% of tracked focus-category revenue.",
			m.Category, m.RevenueShare*100))
	}
	recommendations = append(recommendations, fmt.Sprintf(
		"Primary whitespace: %s under-indexes in the tracked mix; use meal bundles and homepage placement.",
		weakest.Category))

	comboReq := ComboRequest{Branch: req.Branch, TopN: 3, MinSupport: 0.01}
	comboResponse := RecommendCombos(comboReq, transactions)
	if combos, ok := comboResponse.Result["combos"].([]ComboPair); ok && len(combos) > 0 && !combos[0].Placeholder {
		top := combos[0]
		recommendations = append(recommendations, fmt.Sprintf(
			"Test an attach offer built around %s + %s to lift basket add-ons.",
			top.Items[0], top.Items[1]))
	}

	branch := req.Branch
	if branch == "" {
		branch = "all"
	}

	return &ToolResponse{
		ToolName: "growth_strategy",
		Result: map[string]any{
			"branch":           branch,
			"focus_categories": req.FocusCategories,
			"category_metrics": metrics,
			"recommendations":  recommendations,
		},
		KeyEvidenceMetrics: map[string]any{
			"category_lines_analyzed": totalLines,
			"categories_tracked":      len(metrics),
		},
		Assumptions: []string{
			"Category detection is keyword-based and depends on item naming conventions.",
			"This is intended as a decision-support heuristic, not a marketing attribution model.",
		},
		DataCoverageNotes: coverageNotes(transactions),
	}
}
