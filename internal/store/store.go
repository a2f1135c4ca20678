package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"sales-analytics/internal/model"
)

var (
	// ErrDuplicateTransaction is returned when an insert collides with an
	// existing transaction identifier. The fact store is append-only, so
	// there is no update path.
	ErrDuplicateTransaction = errors.New("store: duplicate transaction id")

	// ErrInvariant is returned when a write violates the quantity/price/
	// amount constraints.
	ErrInvariant = errors.New("store: transaction violates write invariants")
)

// Store is the storage contract shared by all backends: an append-only
// sales fact store, the two recomputed-on-read aggregate views over it,
// and a name -> decimal config parameter store.
//
// DailyAggregate returns nil (not a zero-valued row) when the date has no
// transactions, so callers can tell "absent" from "legitimately zero".
// CategoryAggregates returns the raw per-category rows for the date in no
// guaranteed order; ranking is the report service's job so every backend
// shares one code path for it.
type Store interface {
	Connect(dsn string) error
	Close() error

	// Init creates tables, constraints and the date index. Idempotent.
	Init(ctx context.Context) error

	InsertTransactions(ctx context.Context, txs []model.Transaction) error
	DailyAggregate(ctx context.Context, date time.Time) (*model.DailyAggregate, error)
	CategoryAggregates(ctx context.Context, date time.Time) ([]model.CategoryAggregate, error)

	GetParameter(ctx context.Context, name string) (decimal.Decimal, bool, error)
	// EnsureParameter inserts the parameter with the given value only if it
	// does not exist yet. An operator-set value is never overwritten.
	EnsureParameter(ctx context.Context, name string, value decimal.Decimal) error
}
