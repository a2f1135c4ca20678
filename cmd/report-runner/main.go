package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"sales-analytics/internal/config"
	"sales-analytics/internal/ingest"
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
	reportDate := flag.String("date", "", "report date passed to the KPI operation")
	csvPath := flag.String("load", "", "optional CSV file to bulk-load before reporting")

	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.WithError(err).Error("failed to load config")
		exitCode = 1
		return
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

	if *csvPath != "" {
		f, err := os.Open(*csvPath)
		if err != nil {
			logger.WithError(err).Error("failed to open CSV file")
			exitCode = 1
			return
		}
		result, err := ingest.LoadCSV(ctx, f, st, logger)
		f.Close()
		if err != nil {
			logger.WithError(err).Error("bulk load failed")
			exitCode = 1
			return
		}
		logger.WithFields(logrus.Fields{"loaded": result.Loaded, "skipped": result.Skipped}).
			Info("bulk load complete")
	}

	svc := report.NewService(st, logger)
	summary, err := svc.Daily(ctx, *reportDate)
	if err != nil {
		logger.WithError(err).Error("kpi summary failed")
		exitCode = 1
		return
	}

	jsonOutput, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		logger.WithError(err).Error("failed to marshal summary")
		exitCode = 1
		return
	}
	fmt.Println(string(jsonOutput))
}
