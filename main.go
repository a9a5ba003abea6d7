package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dvoryanov/tipscraper/config"
	"github.com/dvoryanov/tipscraper/helpers"
	"github.com/dvoryanov/tipscraper/internal/extract"
	"github.com/dvoryanov/tipscraper/internal/tip"
	"github.com/dvoryanov/tipscraper/logger"
	"github.com/dvoryanov/tipscraper/services/cache"
	"github.com/dvoryanov/tipscraper/services/publisher"
	"github.com/dvoryanov/tipscraper/services/server"
	"github.com/dvoryanov/tipscraper/services/worker"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("tips_url", cfg.TipsURL).
		Dur("refresh_interval", cfg.RefreshInterval).
		Msg("Starting application")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize services
	services := initializeServices(ctx, cfg)
	defer services.Cleanup()

	// Build the extraction pipeline
	var defaultStake *tip.Money
	if cfg.DefaultStake > 0 {
		stake := tip.Pounds(cfg.DefaultStake)
		defaultStake = &stake
	}
	pipeline := extract.New(extract.Options{DefaultStake: defaultStake})

	fetcher := helpers.NewFetcher(cfg.LoginURL, cfg.SiteEmail, cfg.SitePassword)

	// Create and start the refresh worker
	w := worker.NewWorker(
		ctx,
		worker.Config{
			URL:       cfg.TipsURL,
			CacheKey:  "tipscraper_fetch_block",
			BlockTime: cfg.BlockTime,
			MaxTips:   cfg.MaxTips,
			Interval:  cfg.RefreshInterval,
		},
		fetcher,
		pipeline,
		services.Batch,
		services.RateCache,
		services.Publisher,
	)

	workerDone := make(chan error, 1)
	go func() {
		log.Info().Msg("Starting refresh worker")
		workerDone <- w.Start()
	}()

	// Start the HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: server.New(services.Batch, w, cfg.MaxTips).Router(),
	}

	serverDone := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Port).Msg("Starting HTTP server")
		serverDone <- srv.ListenAndServe()
	}()

	// Wait for shutdown signal or component failure
	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
	case err := <-workerDone:
		if err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("Worker exited with error")
		}
	case err := <-serverDone:
		if err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("HTTP server exited with error")
		}
	}

	// Graceful shutdown
	log.Info().Msg("Shutting down gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)
}

// Services holds all the initialized services
type Services struct {
	Batch     *cache.BatchCache
	RateCache cache.CacheService
	Publisher publisher.Publisher
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
	}
}

// initializeServices initializes all required services
func initializeServices(ctx context.Context, cfg *config.Config) *Services {
	services := &Services{
		Batch:     cache.NewBatchCache(cfg.CacheTTL),
		RateCache: cache.NewMemcacheService(cfg.MemcacheAddr),
	}
	logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)

	services.Publisher = publisher.NewRedisPublisher(
		ctx,
		cfg.RedisAddr,
		cfg.RedisDB,
		cfg.RedisStream,
		cfg.RedisStreamMaxLength,
	)
	logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
		cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)

	return services
}
