package report_test

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-analytics/internal/model"
	"sales-analytics/internal/report"
	"sales-analytics/internal/store"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	date, err := time.Parse(model.DateLayout, s)
	require.NoError(t, err)
	return date
}

func addSales(t *testing.T, st *store.MemoryStore, date, category string, count int, amount string) {
	t.Helper()
	d := mustDate(t, date)
	amt := decimal.RequireFromString(amount)
	txs := make([]model.Transaction, 0, count)
	for i := 0; i < count; i++ {
		txs = append(txs, model.Transaction{
			ID:          fmt.Sprintf("%s-%s-%s-%d", date, category, amount, i),
			Date:        d,
			Category:    category,
			Quantity:    1,
			UnitPrice:   amt,
			TotalAmount: amt,
		})
	}
	require.NoError(t, st.InsertTransactions(context.Background(), txs))
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(decimal.RequireFromString(want)),
		"expected %s, got %s", want, got.String())
}

func TestDailyInvalidInput(t *testing.T) {
	st := store.NewMemoryStore()
	svc := report.NewService(st, testLogger())

	for _, input := range []string{"", "   ", "not-a-date", "2023-02-30", "TOTAL 2023-12-29", "29/12/2023"} {
		t.Run(fmt.Sprintf("input=%q", input), func(t *testing.T) {
			summary, err := svc.Daily(context.Background(), input)
			require.NoError(t, err)

			assert.Nil(t, summary.ReportDate)
			assert.Equal(t, model.TopCategoryInvalid, summary.TopCategory)
			assert.EqualValues(t, 0, summary.TotalOrders)
			assertDecimal(t, "0", summary.TotalRevenue)
			assertDecimal(t, "0", summary.AverageOrderValue)
			assertDecimal(t, "0", summary.EstimatedMargin)
			assertDecimal(t, "0", summary.TopCategoryRevenue)
		})
	}
}

func TestDailyNoData(t *testing.T) {
	st := store.NewMemoryStore()
	st.SetParameter(model.ParamMarginRate, decimal.RequireFromString("0.30"))
	addSales(t, st, "2023-12-28", "Windows", 3, "100.00")

	svc := report.NewService(st, testLogger())
	summary, err := svc.Daily(context.Background(), "2023-12-29")
	require.NoError(t, err)

	require.NotNil(t, summary.ReportDate)
	assert.Equal(t, "2023-12-29", *summary.ReportDate)
	assert.Equal(t, model.TopCategoryNoData, summary.TopCategory)
	assert.EqualValues(t, 0, summary.TotalOrders)
	assertDecimal(t, "0", summary.TotalRevenue)
	assertDecimal(t, "0", summary.AverageOrderValue)
	assertDecimal(t, "0", summary.EstimatedMargin)
	assertDecimal(t, "0", summary.TopCategoryRevenue)
}

func TestDailySingleCategory(t *testing.T) {
	st := store.NewMemoryStore()
	st.SetParameter(model.ParamMarginRate, decimal.RequireFromString("0.30"))
	addSales(t, st, "2023-12-29", "Beauty", 4, "25.00")

	svc := report.NewService(st, testLogger())
	summary, err := svc.Daily(context.Background(), "2023-12-29")
	require.NoError(t, err)

	// With a single category, total revenue and top-category revenue must
	// coincide.
	assert.Equal(t, "Beauty", summary.TopCategory)
	assertDecimal(t, "100.00", summary.TotalRevenue)
	assertDecimal(t, "100.00", summary.TopCategoryRevenue)
	assert.EqualValues(t, 4, summary.TotalOrders)
	assertDecimal(t, "25.00", summary.AverageOrderValue)
	assertDecimal(t, "30.00", summary.EstimatedMargin)
}

func TestDailyWorkedExample(t *testing.T) {
	// 94 orders totaling 10200.50, Windows leading with 5400.00,
	// margin rate 0.30.
	st := store.NewMemoryStore()
	st.SetParameter(model.ParamMarginRate, decimal.RequireFromString("0.30"))
	addSales(t, st, "2023-12-29", "Windows", 54, "100.00")
	addSales(t, st, "2023-12-29", "Doors", 39, "120.00")
	addSales(t, st, "2023-12-29", "Doors", 1, "120.50")

	svc := report.NewService(st, testLogger())
	summary, err := svc.Daily(context.Background(), "2023-12-29")
	require.NoError(t, err)

	require.NotNil(t, summary.ReportDate)
	assert.Equal(t, "2023-12-29", *summary.ReportDate)
	assert.EqualValues(t, 94, summary.TotalOrders)
	assertDecimal(t, "10200.50", summary.TotalRevenue)
	assertDecimal(t, "108.515957", summary.AverageOrderValue)
	assert.Equal(t, "108.52", summary.AverageOrderValue.StringFixed(2))
	assertDecimal(t, "3060.15", summary.EstimatedMargin)
	assert.Equal(t, "Windows", summary.TopCategory)
	assertDecimal(t, "5400.00", summary.TopCategoryRevenue)

	// An ISO timestamp for the same day yields the identical record.
	isoSummary, err := svc.Daily(context.Background(), "2023-12-29T07:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, summary, isoSummary)
}

func TestDailyTopCategoryTieBreak(t *testing.T) {
	st := store.NewMemoryStore()
	st.SetParameter(model.ParamMarginRate, decimal.RequireFromString("0.30"))
	addSales(t, st, "2023-12-29", "Windows", 2, "250.00")
	addSales(t, st, "2023-12-29", "Doors", 5, "100.00")
	addSales(t, st, "2023-12-29", "Beauty", 1, "400.00")

	svc := report.NewService(st, testLogger())
	summary, err := svc.Daily(context.Background(), "2023-12-29")
	require.NoError(t, err)

	// Doors and Windows tie at 500.00; the lexicographically smaller name
	// wins.
	assert.Equal(t, "Doors", summary.TopCategory)
	assertDecimal(t, "500.00", summary.TopCategoryRevenue)
}

func TestDailyMissingMarginRate(t *testing.T) {
	st := store.NewMemoryStore()
	addSales(t, st, "2023-12-29", "Clothing", 2, "50.00")

	svc := report.NewService(st, testLogger())
	summary, err := svc.Daily(context.Background(), "2023-12-29")
	require.NoError(t, err)

	// Missing configuration degrades to a zero margin, never an error.
	assertDecimal(t, "100.00", summary.TotalRevenue)
	assertDecimal(t, "0", summary.EstimatedMargin)
	assert.Equal(t, "Clothing", summary.TopCategory)
}

func TestDailyIdempotent(t *testing.T) {
	st := store.NewMemoryStore()
	st.SetParameter(model.ParamMarginRate, decimal.RequireFromString("0.25"))
	addSales(t, st, "2023-12-29", "Windows", 3, "99.99")
	addSales(t, st, "2023-12-29", "Beauty", 2, "10.01")

	svc := report.NewService(st, testLogger())
	first, err := svc.Daily(context.Background(), "2023-12-29")
	require.NoError(t, err)
	second, err := svc.Daily(context.Background(), "2023-12-29")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
