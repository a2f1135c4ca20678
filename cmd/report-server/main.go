package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"sales-analytics/internal/config"
	"sales-analytics/internal/model"
	"sales-analytics/internal/report"
	"sales-analytics/internal/server"
	"sales-analytics/internal/store"
)

func main() {
	backend := flag.String("db", "postgres", "storage backend (postgres, mysql, mongo, or memory)")
	configPath := flag.String("config", "config.yaml", "path to config file")

	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.WithError(err).Fatal("failed to load config")
	}

	stores := map[string]store.Store{
		"postgres": &store.PostgresStore{},
		"mysql":    &store.MySQLStore{},
		"mongo":    &store.MongoStore{},
		"memory":   store.NewMemoryStore(),
	}

	st, ok := stores[*backend]
	if !ok {
		logger.Fatalf("unsupported storage backend: %s", *backend)
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
		logger.WithError(err).Fatalf("failed to connect to %s", *backend)
	}
	defer st.Close()

	ctx := context.Background()

	if err := st.Init(ctx); err != nil {
		logger.WithError(err).Fatal("failed to initialize schema")
	}

	marginRate, err := decimal.NewFromString(cfg.Report.DefaultMarginRate)
	if err != nil {
		logger.WithError(err).Fatal("invalid default margin rate")
	}
	if err := st.EnsureParameter(ctx, model.ParamMarginRate, marginRate); err != nil {
		logger.WithError(err).Fatal("failed to seed margin rate")
	}

	svc := report.NewService(st, logger)
	router := server.New(svc, logger)

	srv := &http.Server{
		Addr:    cfg.Server.ListenAddr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Fatal("server forced to shutdown")
	}
	logger.Info("server shutdown complete")
}
