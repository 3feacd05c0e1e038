package feeds

import (
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// TransactionLine is one POS line item from the cleaned sales export.
type TransactionLine struct {
	OrderID    string
	ItemName   string
	BranchName string
	Qty        float64
	Amount     float64
	EventTime  time.Time // zero when the export had no usable timestamp
	SourceFile string
}

// TransactionFeed is the POS line-item table plus its provenance.
type TransactionFeed struct {
	Records    []TransactionLine
	RowsLoaded int
	SourcePath string
}

var transactionTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04",
	"01/02/2006",
}

// LoadTransactions reads the cleaned POS transactions CSV. A missing file
// yields an empty feed.
func LoadTransactions(path string) (*TransactionFeed, error) {
	feed := &TransactionFeed{SourcePath: path}

	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	if t == nil {
		log.Warn().Str("path", path).Msg("Transactions feed missing, continuing with empty table")
		return feed, nil
	}
	feed.RowsLoaded = len(t.rows)

	orderCol, hasOrder := t.column("order_id", "order_no", "order_number", "invoice_no", "check_no", "receipt_no", "bill_no")
	itemCol, _ := t.column("item_name", "item_name_normalized", "menu_item", "product_name", "item", "description")
	branchCol, hasBranch := t.column("branch", "branch_name", "store", "location")
	qtyCol, hasQty := t.column("line_qty", "qty", "quantity", "sold_qty", "item_qty")
	amountCol, hasAmount := t.column("line_amount", "net_sales", "sales", "amount", "total", "line_total")
	dateCol, hasDate := t.column("business_date", "date", "order_date", "created_at", "datetime")
	timeCol, hasTime := t.column("time", "order_time", "created_time")
	srcCol, _ := t.column("source_file")

	for i, row := range t.rows {
		item := t.cell(row, itemCol)
		if item == "" {
			continue
		}

		line := TransactionLine{
			ItemName:   item,
			BranchName: "all_branches",
			Qty:        1,
			SourceFile: t.cell(row, srcCol),
		}
		if hasOrder {
			line.OrderID = t.cell(row, orderCol)
		}
		if line.OrderID == "" {
			line.OrderID = strconv.Itoa(i)
		}
		if hasBranch {
			if branch := t.cell(row, branchCol); branch != "" {
				line.BranchName = branch
			}
		}
		if hasQty {
			if qty, ok := parseNumber(t.cell(row, qtyCol)); ok {
				line.Qty = qty
			}
		}
		if hasAmount {
			if amount, ok := parseNumber(t.cell(row, amountCol)); ok {
				line.Amount = amount
			}
		}
		if hasDate {
			text := t.cell(row, dateCol)
			if hasTime {
				if clock := t.cell(row, timeCol); clock != "" {
					text = text + " " + clock
				}
			}
			for _, layout := range transactionTimeLayouts {
				if ts, err := time.Parse(layout, text); err == nil {
					line.EventTime = ts
					break
				}
			}
		}

		feed.Records = append(feed.Records, line)
	}

	log.Debug().Str("path", path).Int("rows", len(feed.Records)).Msg("Loaded transactions feed")
	return feed, nil
}
