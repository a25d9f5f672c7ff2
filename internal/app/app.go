package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"HeadlineTrends/internal/api"
	"HeadlineTrends/internal/config"
	"HeadlineTrends/internal/infrastructure/llm"
	"HeadlineTrends/internal/infrastructure/ml"
	"HeadlineTrends/internal/infrastructure/newsapi"
	"HeadlineTrends/internal/infrastructure/storage/filestore"
	"HeadlineTrends/internal/infrastructure/storage/sqlstore"
	"HeadlineTrends/internal/logging"
	"HeadlineTrends/internal/ports"
	"HeadlineTrends/internal/usecase"
)

// sqliteFile is the database file name used when cache.backend is sqlite and no DSN is set.
const sqliteFile = "headlines.db"

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	store    ports.CacheStore
	closer   func() error
	pipeline *usecase.Pipeline
	session  *usecase.Session
}

// New builds the adapters selected by cfg and the pipeline on top of them.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	store, closer, err := openStore(ctx, cfg.Cache)
	if err != nil {
		return nil, err
	}

	source := newsapi.NewClient(cfg.NewsAPI, nil, baseLogger.With("component", "newsapi"))
	analysis := ml.NewClient(cfg.Enrichment, nil)
	topics := llm.NewTopicClient(cfg.Enrichment, nil)

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:    source,
		Store:     store,
		Sentiment: analysis,
		Entities:  analysis,
		Topics:    topics,
		Logger:    baseLogger.With("component", "pipeline"),
		PageSize:  cfg.NewsAPI.PageSize,
		Language:  cfg.NewsAPI.Language,
		Workers:   cfg.Enrichment.Workers,
	})

	baseLogger.Debug("application wired", "backend", cfg.Cache.Backend, "workers", cfg.Enrichment.Workers)

	return &Application{
		cfg:      cfg,
		logger:   baseLogger,
		store:    store,
		closer:   closer,
		pipeline: pipeline,
		session:  usecase.NewSession(),
	}, nil
}

// Pipeline returns the wired pipeline.
func (a *Application) Pipeline() *usecase.Pipeline {
	return a.pipeline
}

// Session returns the process-wide session.
func (a *Application) Session() *usecase.Session {
	return a.session
}

// Serve runs the HTTP API until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	server := api.NewServer(a.pipeline, a.session, a.cfg, a.logger.With("component", "api"))
	return server.ListenAndServe(ctx, a.cfg.API.Addr)
}

// Close releases the cache store.
func (a *Application) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer()
}

func openStore(ctx context.Context, cfg config.CacheConfig) (ports.CacheStore, func() error, error) {
	switch cfg.Backend {
	case config.BackendFile, "":
		return filestore.New(cfg.Dir), nil, nil
	case config.BackendSQLite:
		dsn := cfg.DSN
		if dsn == "" {
			dsn = filepath.Join(cfg.Dir, sqliteFile)
		}
		if cfg.Dir != "" {
			if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("create cache dir: %w", err)
			}
		}
		store, err := sqlstore.Open(ctx, sqlstore.DriverSQLite, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite cache: %w", err)
		}
		return store, store.Close, nil
	case config.BackendPostgres:
		store, err := sqlstore.Open(ctx, sqlstore.DriverPostgres, cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres cache: %w", err)
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownBackend, cfg.Backend)
	}
}
