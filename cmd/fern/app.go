package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/config"
	"github.com/Ramsey-B/fern/internal/repositories/reportrun"
	"github.com/Ramsey-B/fern/pkg/cache"
	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/events"
	"github.com/Ramsey-B/fern/pkg/graph"
	"github.com/Ramsey-B/fern/pkg/kafka"
	"github.com/Ramsey-B/fern/pkg/loader"
	"github.com/Ramsey-B/fern/pkg/logging"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/recommend"
	"github.com/Ramsey-B/fern/pkg/seeding"
	"github.com/Ramsey-B/fern/pkg/similarity"
	"github.com/Ramsey-B/fern/pkg/skiprules"
	"github.com/Ramsey-B/fern/pkg/speed"
	"github.com/Ramsey-B/fern/pkg/startup"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// app holds the wired dependencies of one command invocation.
type app struct {
	cfg       *config.Config
	logger    ectologger.Logger
	flushLogs func()
	boot      *startup.Startup
	offline   bool

	store    graph.Store
	client   *graph.Client
	producer *kafka.Producer
	cache    *cache.Client
	db       *database.Database
	catalog  *similarity.Catalog
	service  *recommend.Service

	shutdownTracing func(context.Context) error
}

type appOptions struct {
	offline  bool
	useRules bool
}

func newApp(ctx context.Context, cfg *config.Config, opts appOptions) (*app, error) {
	logger, flushLogs, err := logging.New(logging.Config{Level: cfg.LogLevel, Pretty: cfg.PrettyLogs})
	if err != nil {
		return nil, err
	}

	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		ServiceName: cfg.AppName,
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    cfg.OTLPInsecure,
	})
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:             cfg,
		logger:          logger,
		flushLogs:       flushLogs,
		boot:            startup.New(logger, cfg.StartupMaxAttempts),
		offline:         opts.offline,
		shutdownTracing: shutdownTracing,
	}

	if opts.offline {
		a.store = graph.NewMemoryStore()
	} else {
		client, err := graph.NewClient(graph.Config{
			URI:      cfg.Neo4jURI,
			Username: cfg.Neo4jUser,
			Password: cfg.Neo4jPassword,
			Database: cfg.Neo4jDatabase,
		}, logger)
		if err != nil {
			return nil, err
		}
		a.client = client
		a.store = graph.NewNeo4jStore(client, logger)
		a.boot.Add(client)
	}

	if cfg.KafkaEnabled {
		a.producer = kafka.NewProducer(kafka.ProducerConfig{
			Brokers:      cfg.KafkaBrokers,
			Topic:        cfg.KafkaOutputTopic,
			BatchSize:    cfg.KafkaBatchSize,
			BatchTimeout: time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond,
			RequiredAcks: cfg.KafkaRequiredAcks,
			Compression:  cfg.KafkaCompression,
		}, logger)
		a.boot.Add(a.producer)
	}
	if cfg.RedisEnabled {
		a.cache = cache.NewClient(cache.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, logger)
		a.boot.Add(a.cache)
	}
	if cfg.ArchiveEnabled() {
		a.db = database.New(database.Config{
			DSN:                 cfg.DatabaseDSN(),
			DatabaseName:        cfg.DatabaseName,
			MaxOpenConns:        cfg.DatabaseMaxOpenConns,
			ConnMaxLifetime:     cfg.DatabaseConnMaxLifetime,
			MigrationFolderPath: cfg.DatabaseMigrationFolderPath,
			AutoRollback:        true,
		}, logger)
		a.boot.Add(a.db)
	}

	if err := a.boot.Start(ctx); err != nil {
		_ = shutdownTracing(ctx)
		return nil, err
	}

	if err := a.buildService(opts); err != nil {
		a.Close(ctx)
		return nil, err
	}
	return a, nil
}

func (a *app) buildService(opts appOptions) error {
	cfg := a.cfg
	svc := recommend.NewService(a.store, recommend.Options{
		Skip: skiprules.Thresholds{
			SkipRate:   cfg.SkipRateThreshold,
			Percentage: cfg.SkipPercentageThreshold,
			MinSkipped: cfg.MinSkipped,
		},
		Speed: speed.Thresholds{
			Number:     cfg.ThresholdNumber,
			Percentage: cfg.ThresholdPercentage,
		},
		UseRules: opts.useRules,
	}, a.logger).WithSeeder(seeding.NewSeeder(a.store, a.logger))

	catalog, err := similarity.LoadCatalog(cfg.SimilarityProjectionsFile)
	if err != nil {
		return err
	}
	a.catalog = catalog

	if a.client != nil {
		linker := similarity.NewLinker(graph.NewGDS(a.client, a.logger), catalog, cfg.SimilarityTopK, a.logger)
		if a.cache != nil {
			linker.WithCache(a.cache, cfg.SimilarityCacheTTL)
		}
		svc.WithLinker(linker)
	}
	if a.cache != nil {
		svc.WithCache(a.cache)
	}
	if a.producer != nil {
		svc.WithEvents(events.NewEmitter(a.producer, a.logger))
	}
	if a.db != nil {
		svc.WithArchive(reportrun.NewRepository(a.db.DB(), a.logger))
	}

	a.service = svc
	return nil
}

// loadDataset reads the input folder and applies the activity limit.
func (a *app) loadDataset() (models.Dataset, error) {
	ds, err := loader.NewLoader(a.cfg.DataFolder, a.logger).Load()
	if err != nil {
		return ds, err
	}
	return loader.ApplyLimit(ds, a.cfg.UserVideoActLimit), nil
}

// prepareReads seeds the in-memory store in offline mode so reads have data.
func (a *app) prepareReads(ctx context.Context) error {
	if !a.offline {
		return nil
	}
	ds, err := a.loadDataset()
	if err != nil {
		return err
	}
	if _, err := a.service.Seed(ctx, ds, false); err != nil {
		return fmt.Errorf("failed to seed in-memory graph: %w", err)
	}
	return nil
}

// Close stops every started dependency and flushes telemetry.
func (a *app) Close(ctx context.Context) {
	if err := a.boot.Stop(ctx); err != nil {
		a.logger.WithError(err).Warn("Failed to stop dependencies cleanly")
	}
	if err := a.shutdownTracing(ctx); err != nil {
		a.logger.WithError(err).Warn("Failed to flush traces")
	}
	a.flushLogs()
}
