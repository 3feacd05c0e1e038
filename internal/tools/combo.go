package tools

import (
	"sort"
	"strings"

	"conut-agent/internal/feeds"
	"conut-agent/internal/staffing"
)

// ComboPair is one co-purchased item pair with its support evidence.
type ComboPair struct {
	Items              []string `json:"items"`
	Support            float64  `json:"support"`
	OrderCount         int      `json:"order_count,omitempty"`
	EstimatedValueLift float64  `json:"estimated_value_lift"`
	Placeholder        bool     `json:"placeholder,omitempty"`
}

// RecommendCombos mines order baskets for frequently co-purchased pairs.
// Support is the share of orders containing both items. With no usable
// transaction rows the response carries clearly marked placeholder combos
// so the agent can still demonstrate the shape of an answer.
func RecommendCombos(req ComboRequest, feed *feeds.TransactionFeed) *ToolResponse {
	lines := filterBranchLines(feed, req.Branch)

	if len(lines) == 0 {
		return &ToolResponse{
			ToolName: "recommend_combos",
			Result: map[string]any{
				"combos": []ComboPair{
					{Items: []string{"coffee", "croissant"}, Support: 0.18, EstimatedValueLift: 0.12, Placeholder: true},
					{Items: []string{"milkshake", "waffle"}, Support: 0.11, EstimatedValueLift: 0.09, Placeholder: true},
				},
			},
			KeyEvidenceMetrics: map[string]any{
				"orders_analyzed": 0,
				"candidate_pairs": 0,
			},
			Assumptions: []string{
				"No cleaned transactional data was available, so placeholder demo combos are returned.",
				"Support is based on order-level co-occurrence share.",
			},
			DataCoverageNotes: coverageNotes(feed),
		}
	}

	// 1. Collapse lines into per-order item sets.
	baskets := make(map[string]map[string]bool)
	for _, line := range lines {
		item := strings.TrimSpace(line.ItemName)
		if item == "" {
			continue
		}
		basket, ok := baskets[line.OrderID]
		if !ok {
			basket = make(map[string]bool)
			baskets[line.OrderID] = basket
		}
		basket[item] = true
	}

	// 2. Count pair co-occurrences across baskets.
	type pair struct{ a, b string }
	pairCounts := make(map[pair]int)
	for _, basket := range baskets {
		if len(basket) < 2 {
			continue
		}
		items := make([]string, 0, len(basket))
		for item := range basket {
			items = append(items, item)
		}
		sort.Strings(items)
		for i := 0; i < len(items); i++ {
			for j := i + 1; j < len(items); j++ {
				pairCounts[pair{a: items[i], b: items[j]}]++
			}
		}
	}

	ordered := make([]pair, 0, len(pairCounts))
	for p := range pairCounts {
		ordered = append(ordered, p)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if pairCounts[ordered[i]] != pairCounts[ordered[j]] {
			return pairCounts[ordered[i]] > pairCounts[ordered[j]]
		}
		if ordered[i].a != ordered[j].a {
			return ordered[i].a < ordered[j].a
		}
		return ordered[i].b < ordered[j].b
	})

	totalOrders := len(baskets)
	if totalOrders < 1 {
		totalOrders = 1
	}

	var combos []ComboPair
	for _, p := range ordered {
		support := float64(pairCounts[p]) / float64(totalOrders)
		if support < req.MinSupport {
			continue
		}
		lift := support * 0.75
		if lift > 0.25 {
			lift = 0.25
		}
		combos = append(combos, ComboPair{
			Items:              []string{p.a, p.b},
			Support:            staffing.Round4(support),
			OrderCount:         pairCounts[p],
			EstimatedValueLift: staffing.Round4(lift),
		})
		if len(combos) >= req.TopN {
			break
		}
	}

	branchFiltered := req.Branch
	if branchFiltered == "" {
		branchFiltered = "all"
	}

	return &ToolResponse{
		ToolName: "recommend_combos",
		Result:   map[string]any{"combos": combos},
		KeyEvidenceMetrics: map[string]any{
			"orders_analyzed": totalOrders,
			"candidate_pairs": len(pairCounts),
			"branch_filtered": branchFiltered,
		},
		Assumptions: []string{
			"Pairs are ranked by co-occurrence support, not by causal uplift.",
			"Scaled data preserves relative patterns but not absolute revenue values.",
		},
		DataCoverageNotes: coverageNotes(feed),
	}
}
