/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the weekly transaction ledger server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load environment configuration (.env honored)
  2. Build the zap logger
  3. Open the SQLite store
  4. Wire service, cache, and HTTP router
  5. Start server with graceful shutdown

ENVIRONMENT:
  PORT           HTTP server port (default: 8080)
  DB_PATH        SQLite database path (default: ./data/ledger.db)
                 Use ":memory:" for an in-memory database
  STORE_TIMEOUT  Per-operation store deadline (default: 5s)
  LOG_LEVEL      debug|info|warn|error (default: info)
  AUTH_TOKENS    credential:principal pairs, comma separated

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/cashlytics/ledger-engine/api"
	"github.com/cashlytics/ledger-engine/config"
	"github.com/cashlytics/ledger-engine/ledger"
	"github.com/cashlytics/ledger-engine/logging"
	"github.com/cashlytics/ledger-engine/store/sqlite"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	log, err := logging.New(logging.Config{Level: cfg.LogLevel, Development: cfg.LogDev})
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	store, err := sqlite.New(cfg.DBPath, sqlite.WithOpTimeout(cfg.StoreTimeout))
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer store.Close()

	service := ledger.NewService(store, ledger.NewMemoryReportCache(), log)
	resolver := ledger.NewStaticResolver(cfg.AuthTokens)
	handler := api.NewHandler(service, log)
	router := api.NewRouter(handler, resolver, log)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting",
			zap.String("addr", server.Addr),
			zap.String("db", cfg.DBPath))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
