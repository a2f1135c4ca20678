package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"sales-analytics/internal/model"
)

// MemoryStore keeps the fact and config stores in process memory. It backs
// tests and local runs; the aggregate views are recomputed on every read,
// same as the database-backed stores.
type MemoryStore struct {
	mu     sync.RWMutex
	txs    map[string]model.Transaction
	params map[string]decimal.Decimal
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		txs:    make(map[string]model.Transaction),
		params: make(map[string]decimal.Decimal),
	}
}

func (ms *MemoryStore) Connect(dsn string) error { return nil }

func (ms *MemoryStore) Close() error { return nil }

func (ms *MemoryStore) Init(ctx context.Context) error { return nil }

func (ms *MemoryStore) InsertTransactions(ctx context.Context, txs []model.Transaction) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	// Validate the whole batch before mutating anything so a failed batch
	// leaves the store unchanged, matching the SQL stores' transactions.
	for _, t := range txs {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvariant, err)
		}
		if _, exists := ms.txs[t.ID]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateTransaction, t.ID)
		}
	}
	seen := make(map[string]bool, len(txs))
	for _, t := range txs {
		if seen[t.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateTransaction, t.ID)
		}
		seen[t.ID] = true
	}

	for _, t := range txs {
		ms.txs[t.ID] = t
	}
	return nil
}

func sameDate(a, b time.Time) bool {
	return a.Format(model.DateLayout) == b.Format(model.DateLayout)
}

func (ms *MemoryStore) DailyAggregate(ctx context.Context, date time.Time) (*model.DailyAggregate, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	agg := model.DailyAggregate{Date: date, Revenue: decimal.Zero}
	for _, t := range ms.txs {
		if sameDate(t.Date, date) {
			agg.Revenue = agg.Revenue.Add(t.TotalAmount)
			agg.Orders++
		}
	}
	if agg.Orders == 0 {
		return nil, nil
	}
	return &agg, nil
}

func (ms *MemoryStore) CategoryAggregates(ctx context.Context, date time.Time) ([]model.CategoryAggregate, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	byCategory := make(map[string]decimal.Decimal)
	for _, t := range ms.txs {
		if sameDate(t.Date, date) {
			byCategory[t.Category] = byCategory[t.Category].Add(t.TotalAmount)
		}
	}

	var aggs []model.CategoryAggregate
	for category, revenue := range byCategory {
		aggs = append(aggs, model.CategoryAggregate{Date: date, Category: category, Revenue: revenue})
	}
	return aggs, nil
}

func (ms *MemoryStore) GetParameter(ctx context.Context, name string) (decimal.Decimal, bool, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	v, ok := ms.params[name]
	if !ok {
		return decimal.Zero, false, nil
	}
	return v, true, nil
}

func (ms *MemoryStore) EnsureParameter(ctx context.Context, name string, value decimal.Decimal) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, exists := ms.params[name]; !exists {
		ms.params[name] = value
	}
	return nil
}

// SetParameter overwrites a parameter unconditionally. Administrative use.
func (ms *MemoryStore) SetParameter(name string, value decimal.Decimal) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.params[name] = value
}
