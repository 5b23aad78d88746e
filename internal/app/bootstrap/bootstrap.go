package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	votingcore "ballotbox/contexts/elections/voting-core"
	"ballotbox/contexts/elections/voting-core/adapters/hashing"
	postgresadapter "ballotbox/contexts/elections/voting-core/adapters/postgres"
	promadapter "ballotbox/contexts/elections/voting-core/adapters/prometheus"
	"ballotbox/contexts/elections/voting-core/application/workers"
	"ballotbox/internal/platform/config"
	"ballotbox/internal/platform/db"
	"ballotbox/internal/platform/httpserver"
	"ballotbox/internal/platform/messaging"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

// Package bootstrap is the composition root. Construction and wiring live
// here so module code stays framework-agnostic.

// Core is the database-backed voting module shared by every process.
type Core struct {
	Database   *db.Database
	Repository *postgresadapter.Repository
	Module     votingcore.Module
	Registry   *prometheus.Registry

	shutdownTracing func(context.Context) error
}

func BuildCore(cfg config.Config, logger *slog.Logger) (*Core, error) {
	hasher, err := hashing.NewHasher(cfg.TokenHashAlgorithm)
	if err != nil {
		return nil, err
	}
	shutdownTracing, err := setupTracing(context.Background(), cfg, os.Stdout)
	if err != nil {
		return nil, err
	}
	database, err := db.Connect(db.Options{
		Driver:  cfg.DatabaseDriver,
		DSN:     cfg.DSN(),
		Tracing: cfg.DBTracing,
	})
	if err != nil {
		_ = shutdownTracing(context.Background())
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := postgresadapter.AutoMigrate(database.DB); err != nil {
			_ = database.Close()
			_ = shutdownTracing(context.Background())
			return nil, fmt.Errorf("migrate voting-core schema: %w", err)
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	repo := postgresadapter.NewRepository(database.DB, logger)
	module := votingcore.NewModule(votingcore.Dependencies{
		Tokens:      repo,
		Ballots:     repo,
		Votes:       repo,
		Outbox:      repo,
		Hasher:      hasher,
		Generator:   hashing.RandomTokens{Bytes: hashing.DefaultTokenBytes},
		Clock:       postgresadapter.SystemClock{},
		IDGen:       postgresadapter.UUIDGenerator{},
		Metrics:     promadapter.NewMetrics(registry),
		TokenTTL:    cfg.TokenTTL,
		BatchLimit:  cfg.TokenBatchLimit,
		Prevalidate: cfg.CastPrevalidate,
		Logger:      logger,
	})
	return &Core{
		Database:   database,
		Repository: repo,
		Module:     module,
		Registry:   registry,

		shutdownTracing: shutdownTracing,
	}, nil
}

// Close releases the database and flushes pending spans.
func (c *Core) Close() error {
	if c == nil {
		return nil
	}
	err := c.Database.Close()
	if c.shutdownTracing != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = errors.Join(err, c.shutdownTracing(ctx))
	}
	return err
}

type APIApp struct {
	core   *Core
	server *httpserver.Server
	logger *slog.Logger
}

func BuildAPI(cfg config.Config, logger *slog.Logger) (*APIApp, error) {
	logger = logger.With("service", cfg.ServiceName, "process", "api")
	core, err := BuildCore(cfg, logger)
	if err != nil {
		return nil, err
	}

	opts := []httpserver.Option{
		httpserver.WithHealthCheck(core.Database.Ping),
		httpserver.WithShutdownTimeout(cfg.ShutdownTimeout),
	}
	if cfg.MetricsEnabled {
		opts = append(opts, httpserver.WithMetrics(core.Registry))
	}
	server := httpserver.New(core.Module, logger, normalizeAddr(cfg.HTTPPort), opts...)
	return &APIApp{
		core:   core,
		server: server,
		logger: logger,
	}, nil
}

func (a *APIApp) Run(ctx context.Context) error {
	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)
	return a.server.Start(ctx)
}

func (a *APIApp) Close() error {
	return a.core.Close()
}

type WorkerApp struct {
	core         *Core
	bus          *messaging.Bus
	outboxRelay  workers.OutboxRelay
	ballots      workers.BallotProjectionConsumer
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildWorker(cfg config.Config, logger *slog.Logger) (*WorkerApp, error) {
	logger = logger.With("service", cfg.ServiceName, "process", "worker")
	core, err := BuildCore(cfg, logger)
	if err != nil {
		return nil, err
	}
	bus := messaging.NewBus(cfg.KafkaBrokers, logger)

	pollInterval := cfg.OutboxPollInterval
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	return &WorkerApp{
		core: core,
		bus:  bus,
		outboxRelay: workers.OutboxRelay{
			Outbox:    core.Repository,
			Publisher: bus,
			Clock:     postgresadapter.SystemClock{},
			BatchSize: cfg.OutboxBatchSize,
			Logger:    logger,
		},
		ballots: workers.BallotProjectionConsumer{
			Subscriber: bus,
			Dedup:      core.Repository,
			Ballots:    core.Repository,
			Clock:      postgresadapter.SystemClock{},
			DedupTTL:   7 * 24 * time.Hour,
			Disabled:   !cfg.EnableBallotConsumer,
			Logger:     logger,
		},
		pollInterval: pollInterval,
		logger:       logger,
	}, nil
}

// Run starts the consumers and relays the outbox until ctx is cancelled.
func (w *WorkerApp) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	if err := w.ballots.Start(gctx); err != nil {
		return err
	}

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	g.Go(func() error {
		return runRelayLoop(gctx, w.outboxRelay, w.pollInterval, w.logger)
	})
	g.Go(func() error {
		<-gctx.Done()
		w.bus.Wait()
		return nil
	})
	return g.Wait()
}

func (w *WorkerApp) Close() error {
	return w.core.Close()
}

// runRelayLoop keeps going after a failed cycle; the failed rows stay pending.
func runRelayLoop(ctx context.Context, relay workers.OutboxRelay, interval time.Duration, logger *slog.Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := relay.RunOnce(ctx); err != nil && ctx.Err() == nil {
			logger.Warn("outbox relay cycle failed",
				"event", "bootstrap_worker_relay_failed",
				"module", "internal/app/bootstrap",
				"layer", "platform",
				"error", err.Error(),
			)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") || strings.Contains(value, ":") {
		return value
	}
	return ":" + value
}
