package tools

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"conut-agent/internal/feeds"
	"conut-agent/internal/staffing"
)

// categoryAliases lists the item-name keywords that count toward each
// known category. Unknown categories match their own name.
var categoryAliases = map[string][]string{
	"coffee": {
		"coffee", "latte", "espresso", "macchiato", "cappuccino",
		"mocha", "americano", "flat white", "cortado", "frappe",
	},
	"milkshake": {"milkshake"},
}

// DailyBranchRow is one branch-day of POS activity.
type DailyBranchRow struct {
	BranchName   string  `json:"branch_name"`
	Date         string  `json:"date"`
	DemandUnits  float64 `json:"demand_units"`
	RevenueProxy float64 `json:"revenue_proxy"`
	LineCount    int     `json:"line_count"`
	OrderCount   int     `json:"order_count"`
}

// SummarizeBranchDaily collapses transaction lines into per branch-day
// demand and revenue totals. Lines without a usable timestamp are skipped.
func SummarizeBranchDaily(feed *feeds.TransactionFeed) []DailyBranchRow {
	type key struct{ branch, date string }
	type agg struct {
		demand  float64
		revenue float64
		lines   int
		orders  map[string]bool
	}
	byDay := make(map[key]*agg)
	for _, line := range feed.Records {
		if line.EventTime.IsZero() {
			continue
		}
		k := key{branch: line.BranchName, date: line.EventTime.Format("2006-01-02")}
		a, ok := byDay[k]
		if !ok {
			a = &agg{orders: make(map[string]bool)}
			byDay[k] = a
		}
		a.demand += line.Qty
		a.revenue += line.Amount
		a.lines++
		a.orders[line.OrderID] = true
	}

	rows := make([]DailyBranchRow, 0, len(byDay))
	for k, a := range byDay {
		rows = append(rows, DailyBranchRow{
			BranchName:   k.branch,
			Date:         k.date,
			DemandUnits:  a.demand,
			RevenueProxy: a.revenue,
			LineCount:    a.lines,
			OrderCount:   len(a.orders),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].BranchName != rows[j].BranchName {
			return rows[i].BranchName < rows[j].BranchName
		}
		return rows[i].Date < rows[j].Date
	})
	return rows
}

// CategoryMetric is the tracked share of one focus category.
type CategoryMetric struct {
	Category     string  `json:"category"`
	Lines        int     `json:"lines"`
	QtyUnits     float64 `json:"qty_units"`
	RevenueProxy float64 `json:"revenue_proxy"`
	RevenueShare float64 `json:"revenue_share"`
}

// CategoryKeywordShare tallies lines, units, and revenue per focus
// category using whole-word keyword matching on item names.
func CategoryKeywordShare(feed *feeds.TransactionFeed, categories []string) []CategoryMetric {
	if len(feed.Records) == 0 {
		return nil
	}

	metrics := make([]CategoryMetric, 0, len(categories))
	for _, category := range categories {
		keywords, ok := categoryAliases[strings.ToLower(category)]
		if !ok {
			keywords = []string{strings.ToLower(category)}
		}
		var parts []string
		for _, kw := range keywords {
			parts = append(parts, regexp.QuoteMeta(kw))
		}
		pattern := regexp.MustCompile(`\b(` + strings.Join(parts, "|") + `)\b`)

		metric := CategoryMetric{Category: category}
		for _, line := range feed.Records {
			if pattern.MatchString(strings.ToLower(line.ItemName)) {
				metric.Lines++
				metric.QtyUnits += line.Qty
				metric.RevenueProxy += line.Amount
			}
		}
		metrics = append(metrics, metric)
	}
	return metrics
}

// filterBranchLines returns the lines whose normalized branch matches, or
// all lines when branch is empty.
func filterBranchLines(feed *feeds.TransactionFeed, branch string) []feeds.TransactionLine {
	if branch == "" {
		return feed.Records
	}
	want := staffing.NormalizeBranch(branch)
	var out []feeds.TransactionLine
	for _, line := range feed.Records {
		if staffing.NormalizeBranch(line.BranchName) == want {
			out = append(out, line)
		}
	}
	return out
}

func coverageNotes(feed *feeds.TransactionFeed) []string {
	if len(feed.Records) == 0 {
		return []string{fmt.Sprintf("No cleaned transaction rows available at %s.", feed.SourcePath)}
	}
	return []string{fmt.Sprintf("Loaded %d transaction lines from %s.", len(feed.Records), feed.SourcePath)}
}
