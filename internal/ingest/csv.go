package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"sales-analytics/internal/model"
	"sales-analytics/internal/store"
)

// Upstream export column order. A header row is always present.
const numColumns = 9

const batchSize = 500

type Result struct {
	Loaded  int
	Skipped int
}

// LoadCSV bulk-loads the delimited sales export into the fact store.
// Malformed rows are logged and skipped, not fatal: bulk loads run
// unattended. Insert failures (connectivity, duplicate identifiers) abort
// the load and are returned to the caller.
func LoadCSV(ctx context.Context, r io.Reader, st store.Store, logger *logrus.Logger) (Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = numColumns

	if _, err := reader.Read(); err != nil {
		return Result{}, fmt.Errorf("read header: %w", err)
	}

	var result Result
	var batch []model.Transaction
	line := 1

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := st.InsertTransactions(ctx, batch); err != nil {
			return err
		}
		result.Loaded += len(batch)
		batch = batch[:0]
		return nil
	}

	for {
		line++
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				result.Skipped++
				logger.WithFields(logrus.Fields{"line": line, "error": err.Error()}).
					Warn("skipping malformed csv row")
				continue
			}
			return result, err
		}

		tx, err := parseRow(row)
		if err != nil {
			result.Skipped++
			logger.WithFields(logrus.Fields{"line": line, "error": err.Error()}).
				Warn("skipping invalid transaction row")
			continue
		}

		batch = append(batch, tx)
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return result, err
			}
		}
	}

	if err := flush(); err != nil {
		return result, err
	}
	return result, nil
}

func parseRow(row []string) (model.Transaction, error) {
	for i := range row {
		row[i] = strings.TrimSpace(row[i])
	}

	date, err := time.Parse(model.DateLayout, row[1])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("date: %w", err)
	}

	age := 0
	if row[4] != "" {
		age, err = strconv.Atoi(row[4])
		if err != nil {
			return model.Transaction{}, fmt.Errorf("age: %w", err)
		}
	}

	quantity, err := strconv.ParseInt(row[6], 10, 64)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("quantity: %w", err)
	}

	unitPrice, err := decimal.NewFromString(row[7])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("unit price: %w", err)
	}

	totalAmount, err := decimal.NewFromString(row[8])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("total amount: %w", err)
	}

	tx := model.Transaction{
		ID:          row[0],
		Date:        date,
		CustomerID:  row[2],
		Gender:      row[3],
		Age:         age,
		Category:    row[5],
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		TotalAmount: totalAmount,
	}
	if err := tx.Validate(); err != nil {
		return model.Transaction{}, err
	}
	return tx, nil
}
