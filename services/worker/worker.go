package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dvoryanov/tipscraper/internal/tip"
	"github.com/dvoryanov/tipscraper/logger"
	scrapeerr "github.com/dvoryanov/tipscraper/pkg/errors"
	"github.com/dvoryanov/tipscraper/services/cache"
	"github.com/dvoryanov/tipscraper/services/publisher"
)

// PageFetcher retrieves the raw payload of the tips page.
type PageFetcher interface {
	Fetch(url string) (string, error)
}

// Extractor turns one raw payload into a tip batch.
type Extractor interface {
	ExtractTips(rawPayload string, maxCount int) []tip.Tip
}

// Config configures the refresh worker.
type Config struct {
	URL       string
	CacheKey  string
	BlockTime time.Duration
	MaxTips   int
	Interval  time.Duration
}

// Worker periodically fetches the tips page, runs the extraction pipeline
// and swaps the result into the batch cache.
type Worker struct {
	ctx       context.Context
	cfg       Config
	fetcher   PageFetcher
	extractor Extractor
	batch     *cache.BatchCache
	rateCache cache.CacheService
	publisher publisher.Publisher
	log       *logger.Logger
}

// NewWorker creates a new worker. rateCache and pub may be nil; the worker
// then skips rate-limit bookkeeping and publishing.
func NewWorker(
	ctx context.Context,
	cfg Config,
	fetcher PageFetcher,
	extractor Extractor,
	batch *cache.BatchCache,
	rateCache cache.CacheService,
	pub publisher.Publisher,
) *Worker {
	return &Worker{
		ctx:       ctx,
		cfg:       cfg,
		fetcher:   fetcher,
		extractor: extractor,
		batch:     batch,
		rateCache: rateCache,
		publisher: pub,
		log:       logger.ForWorker(),
	}
}

// Start runs the refresh loop until the context is cancelled.
func (w *Worker) Start() error {
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		start := time.Now()
		count, err := w.RefreshOnce()
		if err != nil {
			w.log.Warn().Err(err).Msg("refresh failed")
		} else {
			w.log.Info().
				Int("tips", count).
				Dur("elapsed", time.Since(start)).
				Msg("refreshed tip batch")
		}

		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		case <-ticker.C:
		}
	}
}

// RefreshOnce fetches the page, extracts tips and replaces the cached
// batch. The cache keeps its previous batch when the pass yields nothing,
// so a broken upstream page degrades to stale data rather than no data.
func (w *Worker) RefreshOnce() (int, error) {
	payload, err := w.fetchWithBlock()
	if err != nil {
		return 0, err
	}

	tips := w.extractor.ExtractTips(payload, w.cfg.MaxTips)
	if len(tips) == 0 {
		return 0, scrapeerr.NewNoData("worker")
	}

	w.batch.Put(tips)

	if w.publisher != nil {
		if err := w.publisher.PublishBatch(tips); err != nil {
			w.log.Error().Err(err).Msg("failed to publish batch")
		}
	}

	return len(tips), nil
}

// fetchWithBlock fetches the page unless a rate-limit block key is active,
// and sets the block key when the site rate-limits us.
func (w *Worker) fetchWithBlock() (string, error) {
	if w.rateCache != nil && w.cfg.CacheKey != "" {
		if _, err := w.rateCache.Get(w.cfg.CacheKey); err == nil {
			return "", scrapeerr.NewRateLimit(w.cfg.CacheKey, w.cfg.BlockTime)
		}
	}

	payload, err := w.fetcher.Fetch(w.cfg.URL)
	if err != nil {
		var serr *scrapeerr.ScrapeError
		if errors.As(err, &serr) && serr.Type == scrapeerr.ErrorTypeRateLimit &&
			w.rateCache != nil && w.cfg.CacheKey != "" {
			blockSeconds := fmt.Sprintf("%d", int(w.cfg.BlockTime/time.Second))
			w.rateCache.Set(w.cfg.CacheKey, []byte(blockSeconds), w.cfg.BlockTime)
		}
		return "", err
	}

	return payload, nil
}
