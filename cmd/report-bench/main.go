package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"sales-analytics/internal/bench"
	"sales-analytics/internal/config"
	"sales-analytics/internal/model"
	"sales-analytics/internal/report"
	"sales-analytics/internal/store"
)

func main() {
	var exitCode int
	defer func() {
		os.Exit(exitCode)
	}()

	backend := flag.String("db", "postgres", "storage backend (postgres, mysql, mongo, or memory)")
	configPath := flag.String("config", "config.yaml", "path to config file")
	concurrency := flag.Int("concurrency", 0, "number of concurrent workers (default from config)")
	duration := flag.Duration("duration", 0, "duration of the run (default from config)")
	seedDays := flag.Int("seed-days", 7, "days of synthetic transactions to seed")
	seedPerDay := flag.Int("seed-per-day", 1000, "synthetic transactions per seeded day")

	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.WithError(err).Error("failed to load config")
		exitCode = 1
		return
	}

	if *concurrency == 0 {
		*concurrency = cfg.Bench.DefaultConcurrency
	}
	if *duration == 0 {
		d, err := time.ParseDuration(cfg.Bench.DefaultDuration)
		if err != nil {
			logger.WithError(err).Error("invalid default duration")
			exitCode = 1
			return
		}
		*duration = d
	}

	stores := map[string]store.Store{
		"postgres": &store.PostgresStore{},
		"mysql":    &store.MySQLStore{},
		"mongo":    &store.MongoStore{},
		"memory":   store.NewMemoryStore(),
	}

	st, ok := stores[*backend]
	if !ok {
		logger.Errorf("unsupported storage backend: %s", *backend)
		exitCode = 1
		return
	}

	var dsn string
	switch *backend {
	case "postgres":
		dsn = cfg.Databases.Postgres
	case "mysql":
		dsn = cfg.Databases.MySQL
	case "mongo":
		dsn = cfg.Databases.Mongo
	}
	if err := st.Connect(dsn); err != nil {
		logger.WithError(err).Errorf("failed to connect to %s", *backend)
		exitCode = 1
		return
	}
	defer st.Close()

	ctx := context.Background()

	if err := st.Init(ctx); err != nil {
		logger.WithError(err).Error("failed to initialize schema")
		exitCode = 1
		return
	}

	marginRate, err := decimal.NewFromString(cfg.Report.DefaultMarginRate)
	if err != nil {
		logger.WithError(err).Error("invalid default margin rate")
		exitCode = 1
		return
	}
	if err := st.EnsureParameter(ctx, model.ParamMarginRate, marginRate); err != nil {
		logger.WithError(err).Error("failed to seed margin rate")
		exitCode = 1
		return
	}

	endDate := time.Now().UTC().Truncate(24 * time.Hour)
	dates, err := bench.Seed(ctx, st, endDate, *seedDays, *seedPerDay)
	if err != nil {
		logger.WithError(err).Error("failed to seed transactions")
		exitCode = 1
		return
	}

	fmt.Printf("Running KPI report benchmark on %s (%d workers, %s)...\n", *backend, *concurrency, *duration)

	result, err := bench.Run(ctx, report.NewService(st, logger), bench.Options{
		Concurrency: *concurrency,
		Duration:    *duration,
		Dates:       dates,
	})
	if err != nil {
		logger.WithError(err).Error("benchmark failed")
		exitCode = 1
		return
	}

	jsonOutput, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.WithError(err).Error("failed to marshal result")
		exitCode = 1
		return
	}
	fmt.Println(string(jsonOutput))
}
