package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jadygoy/cafe_backend/config"
	"github.com/jadygoy/cafe_backend/metrics"
	"github.com/jadygoy/cafe_backend/middlewares"
	"github.com/jadygoy/cafe_backend/models"
	"github.com/jadygoy/cafe_backend/utils"
	"github.com/sirupsen/logrus"
)

const defaultPort = "8080"

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	if err := utils.RegisterValidators(); err != nil {
		logger.WithFields(logrus.Fields{"field": "validators"}).Fatal(err.Error())
	}

	store, sqlDB := openStore(logger)
	defer func() {
		if err := config.CloseDatabase(); err != nil {
			logger.WithFields(logrus.Fields{"field": "database"}).Warn("close database: " + err.Error())
		}
	}()

	config.ConnectRedisWithRetry()
	var (
		cache  models.ReportCache
		locker models.DateLocker
	)
	if rdb := config.GetRedisDB(); rdb != nil {
		cache = models.NewRedisReportCache(rdb, config.ReportCacheTTL())
		locker = models.NewRedisDateLocker(config.GetRedisLock())
	}
	defer func() {
		_ = config.CloseRedis()
	}()

	metrics.Init(sqlDB)

	logger.WithFields(logrus.Fields{"field": "users"}).
		Warn("user pins are stored and compared in plain text; keep this service on a trusted network")

	a := &app{
		ledger:    models.NewReportLedger(store, cache, locker, logger),
		directory: models.NewUserDirectory(store, logger),
		limiter:   middlewares.RateLimiterFromEnv(config.GetRedisDB()),
		logger:    logger,
	}
	r := newRouter(a, corsConfigFromEnv())

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		// ListenAndServe returns http.ErrServerClosed on graceful shutdown.
		serverErrCh <- srv.ListenAndServe()
	}()

	logger.WithFields(logrus.Fields{
		"info": "Connection Established",
	}).Info("listening on http://localhost:", port, "/api/")

	select {
	case <-sigCtx.Done():
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}
}

// openStore selects the backend from STORE_DRIVER (mysql by default).
// The returned *sql.DB is nil for the in-memory store.
func openStore(logger *logrus.Logger) (models.Store, *sql.DB) {
	driver := strings.ToLower(strings.TrimSpace(os.Getenv("STORE_DRIVER")))
	switch driver {
	case "memory":
		logger.WithFields(logrus.Fields{"field": "store"}).Warn("STORE_DRIVER=memory; data is lost on restart")
		return models.NewMemoryStore(), nil
	case "", "mysql":
	default:
		logger.WithFields(logrus.Fields{"field": "store"}).Fatalf("unknown STORE_DRIVER %q", driver)
	}

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()

	// AutoMigrate can hold table locks; allow running it as a separate job.
	if config.BoolFromEnv("SKIP_MIGRATIONS") {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	} else if err := models.MigrateTable(db); err != nil {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Fatal(err.Error())
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.WithFields(logrus.Fields{"field": "database"}).Warn("db stats unavailable: " + err.Error())
		sqlDB = nil
	}
	return models.NewGormStore(db), sqlDB
}
