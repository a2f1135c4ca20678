package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"

	"sales-analytics/internal/model"
)

type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStoreFromDB wraps an existing handle. Used by tests.
func NewMySQLStoreFromDB(db *sql.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

func (ms *MySQLStore) Connect(dsn string) error {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return err
	}
	ms.db = db
	return nil
}

func (ms *MySQLStore) Close() error {
	return ms.db.Close()
}

func (ms *MySQLStore) Init(ctx context.Context) error {
	for _, stmt := range GetSalesSchemaMySQL() {
		if _, err := ms.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (ms *MySQLStore) InsertTransactions(ctx context.Context, txs []model.Transaction) error {
	tx, err := ms.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	for _, t := range txs {
		if verr := t.Validate(); verr != nil {
			tx.Rollback()
			return fmt.Errorf("%w: %v", ErrInvariant, verr)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO sales_transactions
				(transaction_id, sale_date, customer_id, gender, age, product_category, quantity, unit_price, total_amount)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.Date.Format(model.DateLayout), t.CustomerID, t.Gender, t.Age,
			t.Category, t.Quantity, t.UnitPrice.String(), t.TotalAmount.String())
		if err != nil {
			tx.Rollback()
			return mapMySQLError(err)
		}
	}

	return tx.Commit()
}

func mapMySQLError(err error) error {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1062:
			return fmt.Errorf("%w: %v", ErrDuplicateTransaction, err)
		case 3819:
			return fmt.Errorf("%w: %v", ErrInvariant, err)
		}
	}
	return err
}

func (ms *MySQLStore) DailyAggregate(ctx context.Context, date time.Time) (*model.DailyAggregate, error) {
	var revenue string
	var orders int64
	err := ms.db.QueryRowContext(ctx,
		`SELECT CAST(SUM(total_amount) AS CHAR), COUNT(DISTINCT transaction_id)
		 FROM sales_transactions
		 WHERE sale_date = ?
		 GROUP BY sale_date`, date.Format(model.DateLayout)).Scan(&revenue, &orders)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rev, err := decimal.NewFromString(revenue)
	if err != nil {
		return nil, fmt.Errorf("parse revenue %q: %w", revenue, err)
	}
	return &model.DailyAggregate{Date: date, Revenue: rev, Orders: orders}, nil
}

func (ms *MySQLStore) CategoryAggregates(ctx context.Context, date time.Time) ([]model.CategoryAggregate, error) {
	rows, err := ms.db.QueryContext(ctx,
		`SELECT product_category, CAST(SUM(total_amount) AS CHAR)
		 FROM sales_transactions
		 WHERE sale_date = ?
		 GROUP BY product_category`, date.Format(model.DateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var aggs []model.CategoryAggregate
	for rows.Next() {
		var category, revenue string
		if err := rows.Scan(&category, &revenue); err != nil {
			return nil, err
		}
		rev, err := decimal.NewFromString(revenue)
		if err != nil {
			return nil, fmt.Errorf("parse revenue %q: %w", revenue, err)
		}
		aggs = append(aggs, model.CategoryAggregate{Date: date, Category: category, Revenue: rev})
	}
	return aggs, rows.Err()
}

func (ms *MySQLStore) GetParameter(ctx context.Context, name string) (decimal.Decimal, bool, error) {
	var value string
	err := ms.db.QueryRowContext(ctx,
		`SELECT CAST(param_value AS CHAR) FROM config_parameters WHERE param_name = ?`, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}

	v, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("parse parameter %s=%q: %w", name, value, err)
	}
	return v, true, nil
}

func (ms *MySQLStore) EnsureParameter(ctx context.Context, name string, value decimal.Decimal) error {
	_, err := ms.db.ExecContext(ctx,
		`INSERT IGNORE INTO config_parameters (param_name, param_value) VALUES (?, ?)`,
		name, value.String())
	return err
}
