package report

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"sales-analytics/internal/model"
	"sales-analytics/internal/store"
)

// avgPrecision is the fractional-digit precision of the average order
// value; revenue and margin are rounded to 2 digits at the boundary.
const avgPrecision = 6

// Service computes the daily KPI summary. It is a pure read over the store:
// no state across calls, safe under concurrent invocations.
type Service struct {
	store  store.Store
	logger *logrus.Logger
}

func NewService(st store.Store, logger *logrus.Logger) *Service {
	return &Service{store: st, logger: logger}
}

// Daily returns exactly one KPI summary for the given report date text.
// Malformed input and missing data never produce an error — automation
// always receives a well-formed single record, marked with one of the two
// sentinel top-category values. The returned error is reserved for
// storage/connectivity failures.
func (s *Service) Daily(ctx context.Context, reportDate string) (model.KpiSummary, error) {
	date, ok := NormalizeReportDate(reportDate)
	if !ok {
		return model.KpiSummary{
			ReportDate:         nil,
			TotalRevenue:       decimal.Zero,
			TotalOrders:        0,
			AverageOrderValue:  decimal.Zero,
			EstimatedMargin:    decimal.Zero,
			TopCategory:        model.TopCategoryInvalid,
			TopCategoryRevenue: decimal.Zero,
		}, nil
	}

	marginRate, found, err := s.store.GetParameter(ctx, model.ParamMarginRate)
	if err != nil {
		return model.KpiSummary{}, fmt.Errorf("load margin rate: %w", err)
	}
	if !found {
		// Degrades to a zero margin instead of failing, to keep the
		// no-error contract. Warn so the misconfiguration is visible.
		s.logger.WithField("parameter", model.ParamMarginRate).
			Warn("margin rate not configured, estimated margin will be zero")
		marginRate = decimal.Zero
	}

	daily, err := s.store.DailyAggregate(ctx, date)
	if err != nil {
		return model.KpiSummary{}, fmt.Errorf("daily aggregate: %w", err)
	}
	categories, err := s.store.CategoryAggregates(ctx, date)
	if err != nil {
		return model.KpiSummary{}, fmt.Errorf("category aggregates: %w", err)
	}

	dateStr := date.Format(model.DateLayout)
	summary := model.KpiSummary{
		ReportDate:         &dateStr,
		TotalRevenue:       decimal.Zero,
		AverageOrderValue:  decimal.Zero,
		EstimatedMargin:    decimal.Zero,
		TopCategory:        model.TopCategoryNoData,
		TopCategoryRevenue: decimal.Zero,
	}

	if daily != nil {
		summary.TotalRevenue = daily.Revenue.Round(2)
		summary.TotalOrders = daily.Orders
		if daily.Orders > 0 {
			summary.AverageOrderValue = daily.Revenue.DivRound(decimal.NewFromInt(daily.Orders), avgPrecision)
		}
		summary.EstimatedMargin = daily.Revenue.Mul(marginRate).Round(2)
	}

	if top := topCategory(categories); top != nil {
		summary.TopCategory = top.Category
		summary.TopCategoryRevenue = top.Revenue.Round(2)
	}

	return summary, nil
}

// topCategory picks the row with the highest revenue; exact ties go to the
// lexicographically smaller category name. Returns nil for an empty slice.
func topCategory(categories []model.CategoryAggregate) *model.CategoryAggregate {
	var best *model.CategoryAggregate
	for i := range categories {
		c := &categories[i]
		if best == nil ||
			c.Revenue.GreaterThan(best.Revenue) ||
			(c.Revenue.Equal(best.Revenue) && c.Category < best.Category) {
			best = c
		}
	}
	return best
}
