package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/fitplan/internal/config"
	"github.com/jonathan/fitplan/internal/db"
	"github.com/jonathan/fitplan/internal/enrich"
	"github.com/jonathan/fitplan/internal/llm"
	"github.com/jonathan/fitplan/internal/mongodb"
	"github.com/jonathan/fitplan/internal/observability"
	"github.com/jonathan/fitplan/internal/planner"
	"github.com/jonathan/fitplan/internal/types"
)

// catalogStore is the catalog surface shared by both storage backends.
type catalogStore interface {
	SearchExercises(ctx context.Context, query string, page, limit int) (*types.CatalogPage, error)
	GetExerciseByID(ctx context.Context, exerciseID string) (*types.CatalogExercise, error)
	UpsertExercises(ctx context.Context, exercises []types.CatalogExercise) (int, error)
}

// storage bundles the selected backend. Plans and Catalog are nil for driver "none".
type storage struct {
	Plans   planner.Store
	Catalog catalogStore
	Ping    func(ctx context.Context) error
	Migrate func(ctx context.Context) error
	Close   func()
}

// loadConfig reads configuration and applies persistent flag overrides.
func loadConfig(opts *globalOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.Log.Format = opts.logFormat
	}
	if opts.dbDriver != "" {
		cfg.Database.Driver = opts.dbDriver
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setup loads configuration and builds the logger.
func setup(opts *globalOptions) (*config.Config, *zap.Logger, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, nil, err
	}
	logger, err := observability.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logger, nil
}

// openStorage connects to the configured backend.
func openStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*storage, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		if cfg.Database.URL == "" {
			return nil, fmt.Errorf("database.url is required for postgres (set FITPLAN_DATABASE_URL or DATABASE_URL)")
		}
		database, err := db.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		logger.Debug("connected to postgres")
		return &storage{
			Plans:   database,
			Catalog: database,
			Ping:    database.Ping,
			Migrate: database.Migrate,
			Close:   database.Close,
		}, nil

	case config.DriverMongo:
		if cfg.Database.URL == "" {
			return nil, fmt.Errorf("database.url is required for mongo")
		}
		store, err := mongodb.Connect(ctx, cfg.Database.URL, cfg.Database.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
		}
		logger.Debug("connected to mongodb", zap.String("database", cfg.Database.Name))
		return &storage{
			Plans:   store,
			Catalog: store,
			Ping:    store.Ping,
			Migrate: store.EnsureIndexes,
			Close:   store.Close,
		}, nil

	default:
		return &storage{Close: func() {}}, nil
	}
}

// requireStorage is openStorage for commands that cannot run without a database.
func requireStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*storage, error) {
	if cfg.Database.Driver == config.DriverNone {
		return nil, fmt.Errorf("this command needs a database; database.driver is %q", config.DriverNone)
	}
	return openStorage(ctx, cfg, logger)
}

// newPlanner builds the pipeline service over the given storage.
func newPlanner(cfg *config.Config, client llm.Client, store *storage, logger *zap.Logger) *planner.Service {
	opts := planner.Options{
		CatalogHints: cfg.Planner.CatalogHints,
		Enrich:       cfg.EnrichOptions(),
	}
	var catalog enrich.Catalog
	if store.Catalog != nil {
		catalog = store.Catalog
	}
	return planner.New(client, store.Plans, catalog, opts, logger.Named("planner"))
}
