package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"sales-analytics/internal/model"
)

type PostgresStore struct {
	conn *pgx.Conn
}

func (ps *PostgresStore) Connect(dsn string) error {
	conn, err := pgx.Connect(context.Background(), dsn)
	if err != nil {
		return err
	}
	ps.conn = conn
	return nil
}

func (ps *PostgresStore) Close() error {
	return ps.conn.Close(context.Background())
}

func (ps *PostgresStore) Init(ctx context.Context) error {
	for _, stmt := range GetSalesSchemaPostgres() {
		if _, err := ps.conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (ps *PostgresStore) InsertTransactions(ctx context.Context, txs []model.Transaction) (err error) {
	tx, err := ps.conn.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback(ctx)
			panic(p) // re-panic after rollback
		} else if err != nil {
			tx.Rollback(ctx) // err is non-nil; don't change it
		} else {
			err = tx.Commit(ctx) // err is nil; if Commit returns error, update err
		}
	}()

	for _, t := range txs {
		if verr := t.Validate(); verr != nil {
			err = fmt.Errorf("%w: %v", ErrInvariant, verr)
			return err
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO sales_transactions
				(transaction_id, sale_date, customer_id, gender, age, product_category, quantity, unit_price, total_amount)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			t.ID, t.Date, t.CustomerID, t.Gender, t.Age, t.Category, t.Quantity,
			t.UnitPrice.String(), t.TotalAmount.String())
		if err != nil {
			err = mapPgError(err)
			return err
		}
	}
	return nil
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%w: %v", ErrDuplicateTransaction, err)
		case "23514":
			return fmt.Errorf("%w: %v", ErrInvariant, err)
		}
	}
	return err
}

func (ps *PostgresStore) DailyAggregate(ctx context.Context, date time.Time) (*model.DailyAggregate, error) {
	var revenue string
	var orders int64
	err := ps.conn.QueryRow(ctx,
		`SELECT SUM(total_amount)::text, COUNT(DISTINCT transaction_id)
		 FROM sales_transactions
		 WHERE sale_date = $1
		 GROUP BY sale_date`, date).Scan(&revenue, &orders)
	if errors.Is(err, pgx.ErrNoRows) {
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

func (ps *PostgresStore) CategoryAggregates(ctx context.Context, date time.Time) ([]model.CategoryAggregate, error) {
	rows, err := ps.conn.Query(ctx,
		`SELECT product_category, SUM(total_amount)::text
		 FROM sales_transactions
		 WHERE sale_date = $1
		 GROUP BY product_category`, date)
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

func (ps *PostgresStore) GetParameter(ctx context.Context, name string) (decimal.Decimal, bool, error) {
	var value string
	err := ps.conn.QueryRow(ctx,
		`SELECT param_value::text FROM config_parameters WHERE param_name = $1`, name).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
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

func (ps *PostgresStore) EnsureParameter(ctx context.Context, name string, value decimal.Decimal) error {
	_, err := ps.conn.Exec(ctx,
		`INSERT INTO config_parameters (param_name, param_value)
		 VALUES ($1, $2)
		 ON CONFLICT (param_name) DO NOTHING`, name, value.String())
	return err
}
