// Package app assembles the full server from configuration: storage, LLM and
// search collaborators, optional Kafka events and Redis sessions, metrics,
// and the REST interface.  Both the apiserver binary and the CLI serve
// command run through here.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/APISource-Intelligence/internal/config"
	"github.com/turtacn/APISource-Intelligence/internal/discovery"
	"github.com/turtacn/APISource-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/APISource-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/APISource-Intelligence/internal/infrastructure/monitoring/logging"
	appprom "github.com/turtacn/APISource-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/APISource-Intelligence/internal/intelligence/agents"
	"github.com/turtacn/APISource-Intelligence/internal/intelligence/search"
	httpserver "github.com/turtacn/APISource-Intelligence/internal/interfaces/http"
	"github.com/turtacn/APISource-Intelligence/internal/nlp/classifier"
	"github.com/turtacn/APISource-Intelligence/internal/retry"
	"github.com/turtacn/APISource-Intelligence/internal/session"
)

// RunServer wires every collaborator from cfg and serves until ctx is
// canceled.
func RunServer(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
	if cfg.Database.AutoMigrate {
		if err := postgres.RunMigrations(cfg.Database); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
	}
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer pool.Close()

	var appMetrics *appprom.AppMetrics
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		collector, registry := appprom.NewCollector()
		appMetrics = appprom.NewAppMetrics(collector)
		metricsHandler = appprom.Handler(registry)
	}

	manufacturerRepo := postgres.NewManufacturerRepo(pool, logger)
	buyerRepo := postgres.NewBuyerRepo(pool, logger)
	if appMetrics != nil {
		manufacturerRepo.WithMetrics(appMetrics)
		buyerRepo.WithMetrics(appMetrics)
	}

	// LLM agents, tried in configured order.
	completers := make([]agents.ChatCompleter, 0, len(cfg.LLM.Providers))
	for _, p := range cfg.LLM.Providers {
		completers = append(completers,
			agents.NewOpenAIClient(p.Name, p.BaseURL, p.APIKey, p.Model, p.Timeout))
		logger.Info("registered llm provider",
			logging.String("name", p.Name), logging.String("model", p.Model))
	}
	if len(completers) == 0 {
		return fmt.Errorf("no llm providers configured; set llm.providers in the config")
	}

	retryCfg := retry.Config{
		MaxAttempts: cfg.LLM.MaxAttempts,
		BaseBackoff: cfg.LLM.BaseBackoff,
		MaxBackoff:  cfg.LLM.MaxBackoff,
	}

	var events discovery.EventPublisher
	if cfg.Kafka.Enabled() {
		producer := kafka.NewProducer(cfg.Kafka, logger)
		defer producer.Close()
		events = producer
	}

	manufacturers, err := discovery.NewManufacturerService(
		completers, manufacturerRepo, retryCfg, events, logger)
	if err != nil {
		return err
	}
	manufacturers.WithGeneration(cfg.LLM.MaxTokens, cfg.LLM.Temperature)
	buyers, err := discovery.NewBuyerService(completers, buyerRepo,
		discovery.BuyerConfidence{
			Strict:  int(cfg.Discovery.StrictMinConfidence),
			Relaxed: int(cfg.Discovery.RelaxedMinConfidence),
		}, retryCfg, events, logger)
	if err != nil {
		return err
	}
	buyers.WithGeneration(cfg.LLM.MaxTokens, cfg.LLM.Temperature)
	if appMetrics != nil {
		manufacturers.WithMetrics(appMetrics)
		buyers.WithMetrics(appMetrics)
	}

	// Patent landscape analysis needs at least one search backend.
	var analyzer *discovery.RelevanceAnalyzer
	if searchers := BuildSearchers(cfg.Search); len(searchers) > 0 {
		analyzer, err = discovery.NewRelevanceAnalyzer(searchers, classifier.Policy{
			SynthesisThreshold: cfg.Discovery.SynthesisThreshold,
			SynthesisRatio:     cfg.Discovery.SynthesisRatio,
		}, cfg.Search.MaxResults, logger)
		if err != nil {
			return err
		}
		// The first configured provider writes the route summary.
		analyzer.WithSummaryAgent(completers[0], retryCfg).
			WithGeneration(cfg.LLM.MaxTokens, cfg.LLM.Temperature)
		if appMetrics != nil {
			analyzer.WithMetrics(appMetrics)
		}
	} else {
		logger.Warn("no search backends configured, synthesis analysis disabled")
	}

	// Session store: Redis when configured, in-memory otherwise.
	var sessions session.Store
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		sessions = session.NewRedisStore(rdb, cfg.Redis.TTL)
	} else {
		sessions = session.NewMemoryStore(cfg.Discovery.SessionTTL)
	}

	opts := httpserver.Options{
		Config:              cfg.Server,
		Manufacturers:       manufacturers,
		Buyers:              buyers,
		Analyzer:            analyzer,
		Sessions:            sessions,
		ManufacturerRecords: manufacturerRepo,
		BuyerRecords:        buyerRepo,
		ProgressBuffer:      cfg.Discovery.ProgressBuffer,
		HealthFn: func(ctx context.Context) error {
			return postgres.HealthCheck(ctx, pool)
		},
		Logger: logger,
	}
	if appMetrics != nil {
		opts.Metrics = appMetrics
		opts.MetricsHandler = metricsHandler
		opts.MetricsPath = cfg.Metrics.Path
	}

	srv := httpserver.NewServer(opts)
	logger.Info("apiserver starting",
		logging.String("addr", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)))
	return srv.Run(ctx)
}

// BuildSearchers instantiates every search backend with credentials present.
func BuildSearchers(cfg config.SearchConfig) []search.Searcher {
	var searchers []search.Searcher
	if cfg.GoogleCSEKey != "" && cfg.GoogleCSECX != "" {
		searchers = append(searchers, search.NewGoogleCSE(cfg.GoogleCSEKey, cfg.GoogleCSECX))
	}
	if cfg.SerpAPIKey != "" {
		searchers = append(searchers, search.NewSerpAPI(cfg.SerpAPIKey))
	}
	return searchers
}

//Personal.AI order the ending
