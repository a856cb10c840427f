package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sheikh-saqib/personal-finance-ledger/internal/config"
	"github.com/sheikh-saqib/personal-finance-ledger/internal/events/kafka"
	"github.com/sheikh-saqib/personal-finance-ledger/internal/events/logging"
	"github.com/sheikh-saqib/personal-finance-ledger/internal/interfaces"
	"github.com/sheikh-saqib/personal-finance-ledger/internal/ledger"
	"github.com/sheikh-saqib/personal-finance-ledger/internal/locking"
	"github.com/sheikh-saqib/personal-finance-ledger/internal/metrics"
	"github.com/sheikh-saqib/personal-finance-ledger/internal/server"
	"github.com/sheikh-saqib/personal-finance-ledger/internal/storage"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "ledger:", err)
		os.Exit(1)
	}
}

// loadConfig reads the env file, the environment and then the flags, each
// overriding the previous one.
func loadConfig(args []string) (config.AppConfig, error) {
	flags := pflag.NewFlagSet("ledger", pflag.ContinueOnError)
	envFile := flags.String("env-file", ".env", "dotenv file to load before reading the environment")
	httpAddr := flags.String("http-addr", "", "listen address, overrides HTTP_ADDR")
	store := flags.String("store", "", "ledger store (memory, postgres, sqlite), overrides LEDGER_STORE")
	if err := flags.Parse(args); err != nil {
		return config.AppConfig{}, err
	}

	if err := godotenv.Load(*envFile); err != nil && flags.Changed("env-file") {
		return config.AppConfig{}, fmt.Errorf("load %s: %w", *envFile, err)
	}

	cfg := config.Load()
	if flags.Changed("http-addr") {
		cfg.HTTPAddr = *httpAddr
	}
	if flags.Changed("store") {
		cfg.LedgerStore = *store
	}
	return cfg, cfg.Validate()
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

func newLocker(ctx context.Context, cfg config.AppConfig, logger *zap.Logger) (interfaces.AccountLocker, io.Closer, error) {
	if cfg.LockBackend != "redis" {
		return locking.NewLocalLocker(), nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
	}
	locker, err := locking.NewRedisLocker(rdb, locking.RedisOptions{}, logger)
	if err != nil {
		_ = rdb.Close()
		return nil, nil, err
	}
	logger.Info("using redis account locks", zap.String("addr", cfg.RedisAddr))
	return locker, rdb, nil
}

func newPublisher(cfg config.AppConfig, logger *zap.Logger) (interfaces.EventPublisher, io.Closer) {
	if len(cfg.KafkaBrokers) == 0 {
		return logging.NewPublisher(logger), nil
	}
	p := kafka.NewPublisher(cfg.KafkaBrokers)
	logger.Info("publishing ledger events to kafka", zap.Strings("brokers", cfg.KafkaBrokers))
	return p, p
}

func run(args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := storage.Open(ctx, storage.Config{
		Backend:      cfg.LedgerStore,
		DatabaseURL:  cfg.DatabaseURL,
		DBDriver:     cfg.DBDriver,
		DBMaxRetries: cfg.DBMaxRetries,
		SQLitePath:   cfg.SQLitePath,
	}, logger)
	if err != nil {
		return fmt.Errorf("open ledger store: %w", err)
	}
	defer closeLogged(logger, "ledger store", backend)

	locker, lockCloser, err := newLocker(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if lockCloser != nil {
		defer closeLogged(logger, "redis client", lockCloser)
	}

	publisher, pubCloser := newPublisher(cfg, logger)
	if pubCloser != nil {
		defer closeLogged(logger, "kafka publisher", pubCloser)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	l := ledger.NewLedger(backend.Accounts, backend.Store,
		ledger.WithLocker(locker),
		ledger.WithPublisher(publisher),
		ledger.WithLogger(logger.Named("ledger")),
		ledger.WithMetrics(metrics.New(reg)),
	)

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: server.NewRouter(server.NewHandler(l, backend.Accounts, logger), server.RouterOptions{
			Logger:         logger.Named("http"),
			Gatherer:       reg,
			RequestTimeout: cfg.RequestTimeout,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("ledger server starting",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("store", cfg.LedgerStore),
			zap.String("locks", cfg.LockBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("ledger server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func closeLogged(logger *zap.Logger, what string, c io.Closer) {
	if err := c.Close(); err != nil {
		logger.Warn("close failed", zap.String("component", what), zap.Error(err))
	}
}
