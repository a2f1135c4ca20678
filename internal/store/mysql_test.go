package store_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-analytics/internal/model"
	"sales-analytics/internal/store"
)

func newMockStore(t *testing.T) (*store.MySQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return store.NewMySQLStoreFromDB(db), mock
}

func TestMySQLDailyAggregate(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT CAST\(SUM\(total_amount\) AS CHAR\), COUNT\(DISTINCT transaction_id\)`).
		WithArgs("2023-12-29").
		WillReturnRows(sqlmock.NewRows([]string{"revenue", "orders"}).AddRow("10200.50", 94))

	daily, err := st.DailyAggregate(context.Background(), mustDate(t, "2023-12-29"))
	require.NoError(t, err)
	require.NotNil(t, daily)
	assert.EqualValues(t, 94, daily.Orders)
	assert.True(t, daily.Revenue.Equal(decimal.RequireFromString("10200.50")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLDailyAggregateAbsent(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT CAST\(SUM\(total_amount\) AS CHAR\), COUNT\(DISTINCT transaction_id\)`).
		WithArgs("2024-01-01").
		WillReturnRows(sqlmock.NewRows([]string{"revenue", "orders"}))

	daily, err := st.DailyAggregate(context.Background(), mustDate(t, "2024-01-01"))
	require.NoError(t, err)
	assert.Nil(t, daily)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLCategoryAggregates(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT product_category, CAST\(SUM\(total_amount\) AS CHAR\)`).
		WithArgs("2023-12-29").
		WillReturnRows(sqlmock.NewRows([]string{"product_category", "revenue"}).
			AddRow("Windows", "5400.00").
			AddRow("Doors", "4800.50"))

	cats, err := st.CategoryAggregates(context.Background(), mustDate(t, "2023-12-29"))
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Windows", cats[0].Category)
	assert.True(t, cats[0].Revenue.Equal(decimal.RequireFromString("5400.00")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLGetParameter(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT CAST\(param_value AS CHAR\) FROM config_parameters`).
		WithArgs(model.ParamMarginRate).
		WillReturnRows(sqlmock.NewRows([]string{"param_value"}).AddRow("0.3000"))

	v, found, err := st.GetParameter(context.Background(), model.ParamMarginRate)
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, v.Equal(decimal.RequireFromString("0.30")))

	mock.ExpectQuery(`SELECT CAST\(param_value AS CHAR\) FROM config_parameters`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"param_value"}))

	_, found, err = st.GetParameter(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLEnsureParameter(t *testing.T) {
	st, mock := newMockStore(t)

	value := decimal.RequireFromString("0.30")
	mock.ExpectExec(`INSERT IGNORE INTO config_parameters`).
		WithArgs(model.ParamMarginRate, value.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, st.EnsureParameter(context.Background(), model.ParamMarginRate, value))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLInsertTransactions(t *testing.T) {
	st, mock := newMockStore(t)

	sale := tx("t1", "2023-12-29", "Windows", "10.00")

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO sales_transactions`).
		WithArgs(sale.ID, "2023-12-29", sale.CustomerID, sale.Gender, sale.Age,
			sale.Category, sale.Quantity, sale.UnitPrice.String(), sale.TotalAmount.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, st.InsertTransactions(context.Background(), []model.Transaction{sale}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLInsertRejectsInvariantViolation(t *testing.T) {
	st, mock := newMockStore(t)

	bad := tx("t1", "2023-12-29", "Windows", "10.00")
	bad.Quantity = -1

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := st.InsertTransactions(context.Background(), []model.Transaction{bad})
	assert.ErrorIs(t, err, store.ErrInvariant)
	assert.NoError(t, mock.ExpectationsWereMet())
}
