package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/tinwood/ledgerd/internal/config"
	"github.com/tinwood/ledgerd/internal/events"
	eventskafka "github.com/tinwood/ledgerd/internal/events/kafka"
	"github.com/tinwood/ledgerd/internal/httpapi"
	"github.com/tinwood/ledgerd/internal/ledger"
	"github.com/tinwood/ledgerd/internal/registry"
	"github.com/tinwood/ledgerd/internal/scheduler"
	"github.com/tinwood/ledgerd/internal/service/book"
	"github.com/tinwood/ledgerd/internal/storage/sqlite"
	"github.com/tinwood/ledgerd/internal/worker"
)

func main() {
	cfg := config.Load()
	logger := buildLoggerFromEnv()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := registry.New(cfg.DataDir, func(path string) (registry.Store, error) {
		return sqlite.Open(path)
	})
	if err := reg.Discover(); err != nil {
		logger.Error("discover ledgers", "err", err)
		os.Exit(1)
	}
	defer reg.Close()
	logger.Info("ledgers registered", "count", len(reg.Names()), "data_dir", cfg.DataDir)

	var pub events.Publisher = events.Noop{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := eventskafka.NewPublisher(cfg.KafkaBrokers)
		defer kp.Close()
		pub = kp
		logger.Info("event publishing enabled", "brokers", cfg.KafkaBrokers)
	}
	pool := worker.NewPool(2)
	defer pool.Stop()

	svc := book.New(reg, pub, pool, logger)

	sched := scheduler.New(reg, cfg.SweepInterval, logger,
		scheduler.WithNotify(func(name string, e ledger.Entry) {
			svc.NotifyAppended(name, e, true)
		}),
	)
	schedDone := make(chan struct{})
	go func() {
		defer close(schedDone)
		sched.Run(ctx)
	}()

	srv := &http.Server{
		Addr: ":" + cfg.HTTPPort,
		Handler: httpapi.New(svc, httpapi.Options{
			StaticDir:      cfg.StaticDir,
			AllowedOrigins: cfg.CORSOrigins,
		}, logger).Handler(),
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("ledger service listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctxShutdown); err != nil {
			logger.Error("server shutdown error", "err", err)
		}
	case err := <-errCh:
		logger.Error("server error", "err", err)
	}

	// Join the scheduler before the deferred pool and publisher teardown so a
	// mid-flight sweep cannot submit work to a stopped pool.
	stop()
	<-schedDone
}

// parseLogLevel maps env values to slog.Leveler
func parseLogLevel(s string) slog.Leveler {
	switch s {
	case "DEBUG", "debug":
		return slog.LevelDebug
	case "WARN", "WARNING", "warn", "warning":
		return slog.LevelWarn
	case "ERROR", "ERR", "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// buildLoggerFromEnv selects level via LOG_LEVEL and format via LOG_FORMAT
// (json|text, default json).
func buildLoggerFromEnv() *slog.Logger {
	level := parseLogLevel(os.Getenv("LOG_LEVEL"))
	format := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_FORMAT")))
	if format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
