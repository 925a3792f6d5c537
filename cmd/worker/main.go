package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jewelry/config"
	"jewelry/infrastructure/messaging"
	"jewelry/infrastructure/messaging/kafka"
	"jewelry/infrastructure/persistence/mysql"
	"jewelry/pkg/logger"
	"jewelry/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("Worker startup failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := parseConfigPath()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Log, cfg.App.Env); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Database.Type != "mysql" {
		logger.Info("Outbox worker needs database.type=mysql; exiting", zap.String("type", cfg.Database.Type))
		return nil
	}

	db, err := mysql.ConfigFrom(cfg.Database).Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to MySQL: %w", err)
	}

	publisher, closePublisher, err := newPublisher(cfg)
	if err != nil {
		return err
	}
	defer closePublisher()

	worker, err := mysql.NewOutboxWorker(
		mysql.NewOutboxRepository(db),
		publisher,
		cfg.Worker.PollInterval,
		cfg.Worker.BatchSize,
		cfg.Worker.MaxRetries,
	)
	if err != nil {
		return fmt.Errorf("failed to create outbox worker: %w", err)
	}
	m := metrics.New(prometheus.NewRegistry())
	worker.WithObserver(m)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.Metrics.Enabled && cfg.Worker.MetricsAddr != "" {
		srv := serveMetrics(cfg.Worker.MetricsAddr, cfg.Metrics.Path, m)
		defer func() { _ = srv.Close() }()
	}

	logger.Info("Outbox worker started",
		zap.Duration("poll_interval", cfg.Worker.PollInterval),
		zap.Int("batch_size", cfg.Worker.BatchSize),
		zap.Int("max_retries", cfg.Worker.MaxRetries),
		zap.Strings("kafka_brokers", cfg.Kafka.Brokers),
	)

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("outbox worker exited with error: %w", err)
	}

	logger.Info("Outbox worker stopped")
	return nil
}

// newPublisher returns the kafka publisher when brokers are configured and
// the logging publisher otherwise.
func newPublisher(cfg *config.Config) (messaging.Publisher, func(), error) {
	if len(cfg.Kafka.Brokers) == 0 {
		logger.Info("No kafka brokers configured; outbox events go to the log")
		return &messaging.LoggingPublisher{}, func() {}, nil
	}

	p, err := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}
	return p, func() {
		if err := p.Close(); err != nil {
			logger.Warn("kafka publisher close failed", zap.Error(err))
		}
	}, nil
}

func serveMetrics(addr, path string, m *metrics.Metrics) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("worker metrics server stopped", zap.Error(err))
		}
	}()
	return srv
}

func parseConfigPath() string {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.Parse()
	return configPath
}
