package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// ParamMarginRate is the config parameter applied to revenue to
	// estimate profit margin.
	ParamMarginRate = "margin_rate"

	// TopCategoryInvalid marks a summary produced from an unparseable
	// report date. TopCategoryNoData marks a valid date with no sales.
	// Callers rely on the two being distinguishable.
	TopCategoryInvalid = "Invalid ReportDate"
	TopCategoryNoData  = "No data"
)

// DateLayout is the only accepted report date format.
const DateLayout = "2006-01-02"

// Transaction is a single immutable sales record. Customer attributes are
// carried through ingestion but never read by the KPI logic.
type Transaction struct {
	ID          string
	Date        time.Time
	CustomerID  string
	Gender      string
	Age         int
	Category    string
	Quantity    int64
	UnitPrice   decimal.Decimal
	TotalAmount decimal.Decimal
}

// Validate enforces the write-time invariants of the fact store.
func (t Transaction) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("transaction id is required")
	}
	if t.Date.IsZero() {
		return fmt.Errorf("transaction %s: date is required", t.ID)
	}
	if t.Category == "" {
		return fmt.Errorf("transaction %s: category is required", t.ID)
	}
	if t.Quantity < 0 {
		return fmt.Errorf("transaction %s: quantity must be non-negative", t.ID)
	}
	if t.UnitPrice.IsNegative() {
		return fmt.Errorf("transaction %s: unit price must be non-negative", t.ID)
	}
	if t.TotalAmount.IsNegative() {
		return fmt.Errorf("transaction %s: total amount must be non-negative", t.ID)
	}
	return nil
}

// DailyAggregate is the per-date projection over the fact store: summed
// revenue and distinct transaction count. Recomputed on every read.
type DailyAggregate struct {
	Date    time.Time
	Revenue decimal.Decimal
	Orders  int64
}

// CategoryAggregate is the per-(date, category) revenue projection.
type CategoryAggregate struct {
	Date     time.Time
	Category string
	Revenue  decimal.Decimal
}

// KpiSummary is the single record returned by every report invocation.
// It is never persisted. ReportDate is nil only on the invalid-input path.
type KpiSummary struct {
	ReportDate         *string         `json:"report_date"`
	TotalRevenue       decimal.Decimal `json:"total_revenue"`
	TotalOrders        int64           `json:"total_orders"`
	AverageOrderValue  decimal.Decimal `json:"average_order_value"`
	EstimatedMargin    decimal.Decimal `json:"estimated_margin"`
	TopCategory        string          `json:"top_category"`
	TopCategoryRevenue decimal.Decimal `json:"top_category_revenue"`
}
