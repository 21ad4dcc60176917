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

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rx3lixir/event-discovery/event-grpc/server"
	"github.com/rx3lixir/event-discovery/internal/config"
	"github.com/rx3lixir/event-discovery/internal/dataloader"
	"github.com/rx3lixir/event-discovery/internal/db"
	"github.com/rx3lixir/event-discovery/internal/discovery"
	"github.com/rx3lixir/event-discovery/internal/httpapi"
	"github.com/rx3lixir/event-discovery/internal/opensearch"
	"github.com/rx3lixir/event-discovery/pkg/consistency"
	"github.com/rx3lixir/event-discovery/pkg/health"
	"github.com/rx3lixir/event-discovery/pkg/logger"
	"github.com/rx3lixir/event-discovery/pkg/metrics"
)

const (
	openSearchInitRetries = 10
	healthRefreshInterval = 10 * time.Second
	uptimeUpdateInterval  = 15 * time.Second
	poolMetricsInterval   = 15 * time.Second
)

func main() {
	var (
		configPath = flag.String("config", "", "path to YAML config file")
		reindex    = flag.Bool("reindex", false, "rebuild the OpenSearch index from PostgreSQL and exit")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *reindex {
		err = runReindex(ctx, cfg, log)
	} else {
		err = run(ctx, cfg, log)
	}
	if err != nil {
		log.Error("Service stopped with error", "error", err)
		os.Exit(1)
	}
}

// runReindex полностью перестраивает индекс из PostgreSQL
func runReindex(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	if cfg.Postgres.DSN == "" {
		return config.ErrPostgresDSNRequired
	}

	pool, err := db.CreatePostgresPool(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
	if err != nil {
		return err
	}
	defer pool.Close()

	index, err := opensearch.NewService(&cfg.OpenSearch, log)
	if err != nil {
		return fmt.Errorf("failed to create opensearch service: %w", err)
	}
	if err := index.Init(ctx, openSearchInitRetries); err != nil {
		return fmt.Errorf("failed to init opensearch: %w", err)
	}

	source := db.NewPostgresStore(pool, log, db.WithTable(cfg.Postgres.Table))

	start := time.Now()
	indexed, err := index.Reindex(ctx, source, cfg.Sync.BatchSize)
	if err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}

	log.Info("Reindex completed",
		"index", index.IndexName(),
		"indexed", indexed,
		"duration", time.Since(start),
	)
	return nil
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	loc, err := cfg.Discovery.Location()
	if err != nil {
		return err
	}

	metrics.SetServiceInfo(cfg.Service.Version, cfg.Service.Name, cfg.Service.Environment)

	healthSrv := health.NewServer(log,
		health.WithServiceName(cfg.Service.Name),
		health.WithVersion(cfg.Service.Version),
		health.WithPort(cfg.Health.Addr),
		health.WithCheckTimeout(cfg.Health.CheckTimeout),
	)
	healthSrv.AddCheck("memory", health.MemoryChecker(cfg.Health.MaxHeapBytes))

	// == Исполнители == \\

	var source db.EventSearcher
	if cfg.Postgres.DSN != "" {
		pool, err := db.CreatePostgresPool(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
		if err != nil {
			return err
		}
		defer pool.Close()

		source = db.NewPostgresStore(pool, log, db.WithTable(cfg.Postgres.Table))
		healthSrv.AddCheck("postgres", health.PostgresChecker(pool))
		go updatePoolMetrics(ctx, pool)

		log.Info("Connected to PostgreSQL", "table", cfg.Postgres.Table)
	}

	var index *opensearch.Service
	if cfg.Discovery.Backend == config.BackendOpenSearch {
		index, err = opensearch.NewService(&cfg.OpenSearch, log)
		if err != nil {
			return fmt.Errorf("failed to create opensearch service: %w", err)
		}
		if err := index.Init(ctx, openSearchInitRetries); err != nil {
			return fmt.Errorf("failed to init opensearch: %w", err)
		}
		healthSrv.AddCheck("opensearch", health.OpenSearchChecker(index))

		log.Info("Connected to OpenSearch", "index", index.IndexName())
	}

	var backend db.EventSearcher
	switch cfg.Discovery.Backend {
	case config.BackendPostgres:
		backend = source
	case config.BackendOpenSearch:
		backend = index
	}

	apiOpts := []httpapi.Option{httpapi.WithAllowedOrigins(cfg.HTTP.AllowedOrigins)}

	// Оба исполнителя доступны: индекс заполняется из базы, их выдачу можно сверить
	if source != nil && index != nil {
		loader := dataloader.NewLoader(source, index, cfg.Sync.Loader(), log)
		if cfg.Sync.OnStartup {
			if _, err := loader.InitializeOpenSearchData(ctx); err != nil {
				log.Warn("Initial index sync failed, serving existing index", "error", err)
			}
		}
		apiOpts = append(apiOpts, httpapi.WithSyncStatus(loader))

		if cfg.Sync.ConsistencyCheck {
			apiOpts = append(apiOpts, httpapi.WithConsistency(consistency.New(source, index, log)))
		}
	}

	svc := discovery.NewService(backend, cfg.Discovery.Backend, log,
		discovery.WithLocation(loc),
		discovery.WithStructuredTimeFilters(cfg.Discovery.StructuredTimeFilters),
		discovery.WithPageSizes(cfg.Discovery.DefaultPageSize, cfg.Discovery.MaxPageSize),
	)

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           httpapi.New(svc, log, apiOpts...).Handler(),
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	// == Запуск серверов == \\

	errCh := make(chan error, 4)

	go func() {
		log.Info("HTTP server is listening",
			"address", cfg.HTTP.Addr,
			"backend", cfg.Discovery.Backend,
			"timezone", loc.String(),
		)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	if cfg.Health.Enabled {
		go func() {
			if err := healthSrv.Start(); err != nil {
				errCh <- err
			}
		}()
	}

	var metricsSrv *metrics.MetricsServer
	if cfg.Metrics.Enabled {
		metricsSrv = metrics.NewMetricsServer(cfg.Metrics.Addr, log)
		metricsSrv.StartUptimeUpdater(ctx, cfg.Service.Name, uptimeUpdateInterval)
		go func() {
			if err := metricsSrv.Start(); err != nil {
				errCh <- err
			}
		}()
	}

	var grpcSrv *server.Server
	if cfg.GRPC.Enabled {
		grpcSrv = server.NewServer(cfg.GRPC.Addr, cfg.Service.Name, healthSrv, log)
		go grpcSrv.WatchHealth(ctx, healthRefreshInterval)
		go func() {
			if err := grpcSrv.Start(); err != nil {
				errCh <- err
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case runErr = <-errCh:
		log.Error("Server failed, shutting down", "error", runErr)
	}

	// == Остановка == \\

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to shutdown HTTP server", "error", err)
	}
	if grpcSrv != nil {
		grpcSrv.Shutdown(shutdownCtx)
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			log.Error("Failed to shutdown metrics server", "error", err)
		}
	}
	if cfg.Health.Enabled {
		if err := healthSrv.Shutdown(shutdownCtx); err != nil {
			log.Error("Failed to shutdown health server", "error", err)
		}
	}

	log.Info("Service stopped")
	return runErr
}

// updatePoolMetrics публикует состояние пула соединений
func updatePoolMetrics(ctx context.Context, pool *pgxpool.Pool) {
	ticker := time.NewTicker(poolMetricsInterval)
	defer ticker.Stop()

	for {
		stat := pool.Stat()
		metrics.UpdateDatabasePoolMetrics(stat.AcquiredConns(), stat.IdleConns(), stat.TotalConns())

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
