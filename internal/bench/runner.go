package bench

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	hdrhistogram "github.com/HdrHistogram/hdrhistogram-go"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"sales-analytics/internal/model"
	"sales-analytics/internal/report"
	"sales-analytics/internal/store"
)

type Result struct {
	Operations     int64
	Errors         int64
	Throughput     float64
	P95Latency     time.Duration
	P99Latency     time.Duration
	AverageLatency time.Duration
	ErrorRate      float64
	TotalTime      time.Duration
}

type Options struct {
	Concurrency int
	Duration    time.Duration
	// Dates are cycled through by the workers; report-date strings, so the
	// invalid-input path can be benchmarked too.
	Dates []string
}

// Run drives the KPI summary operation concurrently for the configured
// duration and reports latency percentiles. The operation is a pure read,
// so workers never contend on anything but the store.
func Run(ctx context.Context, svc *report.Service, opts Options) (*Result, error) {
	if opts.Concurrency <= 0 {
		return nil, fmt.Errorf("concurrency must be positive")
	}
	if len(opts.Dates) == 0 {
		return nil, fmt.Errorf("at least one report date is required")
	}

	var wg sync.WaitGroup
	var operations, errCount int64

	// Max latency of 10 seconds, significant figures of 3
	histogram := hdrhistogram.New(1, 10000000000, 3)
	var histMu sync.Mutex

	startTime := time.Now()
	deadline := startTime.Add(opts.Duration)

	for i := 0; i < opts.Concurrency; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			local := hdrhistogram.New(1, 10000000000, 3)
			n := worker
			for time.Now().Before(deadline) {
				date := opts.Dates[n%len(opts.Dates)]
				n++

				opStart := time.Now()
				_, err := svc.Daily(ctx, date)
				latency := time.Since(opStart)

				atomic.AddInt64(&operations, 1)
				if err != nil {
					atomic.AddInt64(&errCount, 1)
					continue
				}
				local.RecordValue(latency.Nanoseconds())
			}
			histMu.Lock()
			histogram.Merge(local)
			histMu.Unlock()
		}(i)
	}

	wg.Wait()
	totalTime := time.Since(startTime)

	result := &Result{
		Operations:     operations,
		Errors:         errCount,
		Throughput:     float64(operations) / totalTime.Seconds(),
		P95Latency:     time.Duration(histogram.ValueAtQuantile(95)),
		P99Latency:     time.Duration(histogram.ValueAtQuantile(99)),
		AverageLatency: time.Duration(int64(histogram.Mean())),
		TotalTime:      totalTime,
	}
	if operations > 0 {
		result.ErrorRate = float64(errCount) / float64(operations)
	}
	return result, nil
}

// Seed fills the fact store with synthetic transactions: perDay rows per
// day for the given number of days ending at endDate, spread over a fixed
// category set. Returns the report-date strings it populated.
func Seed(ctx context.Context, st store.Store, endDate time.Time, days, perDay int) ([]string, error) {
	categories := []string{"Beauty", "Clothing", "Electronics", "Windows"}

	var dates []string
	for d := 0; d < days; d++ {
		date := endDate.AddDate(0, 0, -d)
		dates = append(dates, date.Format(model.DateLayout))

		batch := make([]model.Transaction, 0, perDay)
		for i := 0; i < perDay; i++ {
			quantity := int64(i%4 + 1)
			unitPrice := decimal.NewFromInt(int64(i%50 + 1))
			batch = append(batch, model.Transaction{
				ID:          uuid.New().String(),
				Date:        date,
				CustomerID:  uuid.New().String(),
				Category:    categories[i%len(categories)],
				Quantity:    quantity,
				UnitPrice:   unitPrice,
				TotalAmount: unitPrice.Mul(decimal.NewFromInt(quantity)),
			})
		}
		if err := st.InsertTransactions(ctx, batch); err != nil {
			return nil, err
		}
	}
	return dates, nil
}
