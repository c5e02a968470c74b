package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/trebound/catalog-search/internal/config"
	"github.com/trebound/catalog-search/internal/db/postgres"
	dbRedis "github.com/trebound/catalog-search/internal/db/redis"
	logpkg "github.com/trebound/catalog-search/internal/logger"
	"github.com/trebound/catalog-search/internal/metrics"
	budgetrepo "github.com/trebound/catalog-search/internal/repository/budget"
	catalogrepo "github.com/trebound/catalog-search/internal/repository/catalog"
	snapshotrepo "github.com/trebound/catalog-search/internal/repository/snapshot"
	chiTransport "github.com/trebound/catalog-search/internal/transport/chi"
	openaiGen "github.com/trebound/catalog-search/internal/transport/openai"
	cataloguc "github.com/trebound/catalog-search/internal/usecase/catalog"
	generationuc "github.com/trebound/catalog-search/internal/usecase/generation"
	healthuc "github.com/trebound/catalog-search/internal/usecase/health"
	usageuc "github.com/trebound/catalog-search/internal/usecase/usage"
	searchuc "github.com/trebound/catalog-search/internal/usecase/search"
	"github.com/trebound/catalog-search/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()
	logpkg.SetDefault(logger)

	logger.Info("Starting catalog search API server",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Bool("mirror_enabled", cfg.Mirror.Enabled),
		zap.Bool("generation_enabled", cfg.Generation.Enabled()),
	)

	weights, err := scoringWeights(cfg.Search.Weights)
	if err != nil {
		logger.Fatal("Invalid scoring weights", zap.Error(err))
	}

	ctx := context.Background()

	// Catalog database
	catalogDB, err := postgres.Open(postgres.Config{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetimeSec) * time.Second,
	})
	if err != nil {
		logger.Fatal("Failed to open catalog database", zap.Error(err))
	}
	defer catalogDB.Close()

	// Searches degrade to the "contact us" answer while the database is down,
	// so a slow database does not block startup.
	if err := catalogDB.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Warn("Catalog database not ready, continuing", zap.Error(err))
	} else {
		logger.Info("Connected to catalog database")
	}

	metrics.RegisterSearchMetrics()
	metrics.RegisterGenerationMetrics()

	cache := cataloguc.New(catalogrepo.New(catalogDB.SQL()), logger).
		WithTTL(time.Duration(cfg.Cache.TTLSec) * time.Second).
		WithRefreshTimeout(time.Duration(cfg.Cache.RefreshTimeoutSec) * time.Second).
		WithLimits(cataloguc.Limits{
			Activities:   cfg.Cache.MaxActivities,
			Venues:       cfg.Cache.MaxVenues,
			Destinations: cfg.Cache.MaxDestinations,
		})

	healthSvc := healthuc.New(catalogDB, logger)

	// Optional Redis mirror: snapshot copy and budget counters.
	var mirrorStore *dbRedis.Store
	if cfg.Mirror.Enabled {
		mirrorStore, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Mirror.Addrs,
			Username: cfg.Mirror.Username,
			Password: cfg.Mirror.Password,
			DB:       cfg.Mirror.DB,
		})
		if err != nil {
			logger.Fatal("Failed to create mirror store", zap.Error(err))
		}
		defer mirrorStore.Close()

		if err := mirrorStore.WaitForReady(ctx, time.Duration(cfg.Mirror.ReadinessTimeout)*time.Second); err != nil {
			logger.Warn("Mirror not ready, continuing", zap.Error(err))
		}

		mirror := snapshotrepo.New(mirrorStore, cfg.Mirror.KeyPrefix).
			WithTTL(time.Duration(cfg.Mirror.SnapshotTTLSec) * time.Second)
		cache.WithMirror(mirror)
		healthSvc.WithMirror(mirrorStore)
	}

	// Generation chain: OpenAI -> Instrumented (budget + logging).
	var generator searchuc.Generator
	var budgetReader usageuc.BudgetReader
	if cfg.Generation.Enabled() {
		base := openaiGen.NewGenerator(&openaiGen.Config{
			APIKey:      cfg.Generation.APIKey,
			BaseURL:     cfg.Generation.BaseURL,
			Model:       cfg.Generation.Model,
			MaxTokens:   cfg.Generation.MaxTokens,
			Temperature: cfg.Generation.Temperature,
			Provider:    cfg.Generation.Provider,
			Logger:      logger,
		})

		// Pass a nil interface (not a typed nil pointer) when no budget is configured.
		var budgetChecker generationuc.BudgetChecker
		if budget := newBudget(ctx, cfg.Generation, mirrorStore, cfg.Mirror.KeyPrefix, logger); budget != nil {
			budgetChecker = budget
			budgetReader = budget
		}

		generator = generationuc.NewInstrumentedGenerator(
			base, cfg.Generation.Provider, cfg.Generation.Model, budgetChecker, logger,
		)
		healthSvc.WithGeneration(base)
		logger.Info("Generator created",
			zap.String("provider", cfg.Generation.Provider),
			zap.String("model", cfg.Generation.Model),
		)
	}

	responder := searchuc.NewResponder(generator).
		WithTimeout(time.Duration(cfg.Generation.TimeoutSec) * time.Second)
	assembler := searchuc.NewAssembler(searchuc.NewScorer(weights), searchuc.Limits{
		Activities:   cfg.Search.MaxActivities,
		Venues:       cfg.Search.MaxVenues,
		Destinations: cfg.Search.MaxDestinations,
	})
	searchSvc := searchuc.New(cache, assembler, responder).
		WithMaxQueryLength(cfg.Search.MaxQueryLength)

	// Warm the cache so the first query does not pay for the refresh.
	warm := cache.Snapshot(ctx)
	logger.Info("Catalog cache warmed",
		zap.Bool("available", warm.Available()),
		zap.Bool("partial", warm.Partial),
		zap.Int("items", warm.Total()),
	)

	usageSvc := usageuc.New(budgetReader)

	server := chiTransport.NewServer(searchSvc, healthSvc, usageSvc, logger)
	handler := chiTransport.NewRouter(server, cfg.Auth.APIKeys)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// newBudget returns nil when no token limit is configured.
func newBudget(
	ctx context.Context,
	cfg config.GenerationConfig,
	store *dbRedis.Store,
	keyPrefix string,
	logger *zap.Logger,
) *generationuc.BudgetTracker {
	b := cfg.Budget
	if b.DailyTokenLimit <= 0 && b.MonthlyTokenLimit <= 0 {
		return nil
	}

	action := generationuc.BudgetActionWarn
	if b.Action == "reject" {
		action = generationuc.BudgetActionReject
	}
	tracker := generationuc.NewBudgetTracker(cfg.Provider, generationuc.Limits{
		Daily:   b.DailyTokenLimit,
		Monthly: b.MonthlyTokenLimit,
	}, action, logger)

	if store != nil {
		tracker.WithStore(ctx, budgetrepo.New(store, budgetrepo.DefaultDailyTTL, budgetrepo.DefaultMonthlyTTL), keyPrefix)
	}
	return tracker
}

// scoringWeights maps configured weights onto the scorer, defaulting when unset.
func scoringWeights(wc *config.WeightsConfig) (searchuc.Weights, error) {
	if wc == nil {
		return searchuc.DefaultWeights(), nil
	}
	field := func(f config.FieldWeightsConfig) searchuc.FieldWeights {
		return searchuc.FieldWeights{Name: f.Name, Description: f.Description, Location: f.Location, Facet: f.Facet}
	}
	w := searchuc.Weights{
		Exact: field(wc.Exact),
		Combination: searchuc.CombinationWeights{
			Base:  wc.Combination.Base,
			Decay: wc.Combination.Decay,
			Floor: wc.Combination.Floor,
			Share: field(wc.Combination.Share),
		},
		Keyword:    field(wc.Keyword),
		ExactBonus: wc.ExactBonus,
	}
	if err := w.Validate(); err != nil {
		return searchuc.Weights{}, fmt.Errorf("search.weights: %w", err)
	}
	return w, nil
}
