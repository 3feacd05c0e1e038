package feeds

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
)

// SalesRecord is one aggregated monthly sales figure for a branch.
// Sales values are scaled/anonymized units, not currency.
type SalesRecord struct {
	BranchName   string
	PeriodKey    string // YYYY-MM
	PeriodDate   time.Time
	MonthlySales float64
	SourceFile   string
}

// SalesFeed is the aggregated monthly sales table plus its provenance.
type SalesFeed struct {
	Records    []SalesRecord
	RowsLoaded int
	SourcePath string
}

// LoadMonthlySales reads the cleaned monthly sales CSV. Rows may carry an
// explicit period_key or a year+month pair (month numeric or named); rows
// with the same branch and period are summed into one record. A missing
// file yields an empty feed.
func LoadMonthlySales(path string) (*SalesFeed, error) {
	feed := &SalesFeed{SourcePath: path}

	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	if t == nil {
		log.Warn().Str("path", path).Msg("Monthly sales feed missing, continuing with empty table")
		return feed, nil
	}
	feed.RowsLoaded = len(t.rows)

	branchCol, _ := t.column("branch_name", "branch", "store", "location")
	periodCol, hasPeriod := t.column("period_key", "period")
	yearCol, _ := t.column("year")
	monthCol, _ := t.column("month", "month_name")
	salesCol, _ := t.column("monthly_sales", "total_sales", "net_sales", "sales", "amount")
	srcCol, _ := t.column("source_file")

	type key struct{ branch, period string }
	sums := make(map[key]*SalesRecord)

	for _, row := range t.rows {
		branch := t.cell(row, branchCol)
		if branch == "" {
			continue
		}

		period := ""
		if hasPeriod {
			period = t.cell(row, periodCol)
		}
		if period == "" {
			year, okYear := parseNumber(t.cell(row, yearCol))
			month := monthNumber(t.cell(row, monthCol))
			if !okYear || month == 0 {
				continue
			}
			period = fmt.Sprintf("%04d-%02d", int(year), month)
		}

		periodDate, err := time.Parse("2006-01-02", period+"-01")
		if err != nil {
			continue
		}

		sales, _ := parseNumber(t.cell(row, salesCol))

		k := key{branch: branch, period: period}
		if existing, ok := sums[k]; ok {
			existing.MonthlySales += sales
			continue
		}
		sums[k] = &SalesRecord{
			BranchName:   branch,
			PeriodKey:    period,
			PeriodDate:   periodDate,
			MonthlySales: sales,
			SourceFile:   t.cell(row, srcCol),
		}
	}

	for _, rec := range sums {
		feed.Records = append(feed.Records, *rec)
	}
	sort.Slice(feed.Records, func(i, j int) bool {
		if feed.Records[i].BranchName != feed.Records[j].BranchName {
			return feed.Records[i].BranchName < feed.Records[j].BranchName
		}
		return feed.Records[i].PeriodKey < feed.Records[j].PeriodKey
	})

	log.Debug().Str("path", path).Int("rows", len(feed.Records)).Msg("Loaded monthly sales feed")
	return feed, nil
}

// PeriodRange returns the earliest and latest period keys in the feed.
func (f *SalesFeed) PeriodRange() (string, string) {
	if len(f.Records) == 0 {
		return "", ""
	}
	minKey, maxKey := f.Records[0].PeriodKey, f.Records[0].PeriodKey
	for _, rec := range f.Records[1:] {
		if rec.PeriodKey < minKey {
			minKey = rec.PeriodKey
		}
		if rec.PeriodKey > maxKey {
			maxKey = rec.PeriodKey
		}
	}
	return minKey, maxKey
}
