package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dvoryanov/tipscraper/internal/extract"
	"github.com/dvoryanov/tipscraper/internal/tip"
	scrapeerr "github.com/dvoryanov/tipscraper/pkg/errors"
	"github.com/dvoryanov/tipscraper/services/cache"
)

type stubFetcher struct {
	payload string
	err     error
	calls   int
}

func (s *stubFetcher) Fetch(url string) (string, error) {
	s.calls++
	return s.payload, s.err
}

type mapCache struct {
	entries map[string][]byte
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string][]byte)}
}

func (m *mapCache) Get(key string) ([]byte, error) {
	if v, ok := m.entries[key]; ok {
		return v, nil
	}
	return nil, errors.New("cache miss")
}

func (m *mapCache) Set(key string, value []byte, _ time.Duration) error {
	m.entries[key] = value
	return nil
}

func (m *mapCache) Delete(key string) error {
	delete(m.entries, key)
	return nil
}

type recordingPublisher struct {
	batches [][]tip.Tip
	err     error
}

func (r *recordingPublisher) PublishBatch(tips []tip.Tip) error {
	if r.err != nil {
		return r.err
	}
	r.batches = append(r.batches, tips)
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

const statePayload = `window.__INITIAL_STATE__={"PORTFOLIO_TIP_CACHED":{
	"k1":{"title":"A v B","result":1,"profit":6.32},
	"k2":{"title":"C v D","result":0,"profit":-10}}};`

func testConfig() Config {
	return Config{
		URL:       "https://example.com/results",
		CacheKey:  "fetch_block",
		BlockTime: time.Minute,
		MaxTips:   50,
		Interval:  time.Minute,
	}
}

func TestRefreshOnce(t *testing.T) {
	fetcher := &stubFetcher{payload: statePayload}
	batch := cache.NewBatchCache(time.Minute)
	pub := &recordingPublisher{}

	w := NewWorker(context.Background(), testConfig(), fetcher, extract.New(extract.Options{}), batch, nil, pub)

	count, err := w.RefreshOnce()
	assert.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 2, batch.Len())

	tips, _, fresh := batch.Snapshot()
	assert.True(t, fresh)
	assert.Equal(t, "A v B", tips[0].Event)
	assert.Equal(t, tip.ResultWon, tips[0].Result)

	assert.Len(t, pub.batches, 1)
	assert.Len(t, pub.batches[0], 2)
}

func TestRefreshOnceRespectsMaxTips(t *testing.T) {
	cfg := testConfig()
	cfg.MaxTips = 1

	fetcher := &stubFetcher{payload: statePayload}
	batch := cache.NewBatchCache(time.Minute)
	w := NewWorker(context.Background(), cfg, fetcher, extract.New(extract.Options{}), batch, nil, nil)

	count, err := w.RefreshOnce()
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRefreshOnceNoDataKeepsCache(t *testing.T) {
	batch := cache.NewBatchCache(time.Minute)
	batch.Put([]tip.Tip{{Event: "A v B"}})

	fetcher := &stubFetcher{payload: "<html><body>maintenance page</body></html>"}
	w := NewWorker(context.Background(), testConfig(), fetcher, extract.New(extract.Options{}), batch, nil, nil)

	count, err := w.RefreshOnce()
	assert.Error(t, err)
	assert.Zero(t, count)

	var serr *scrapeerr.ScrapeError
	assert.ErrorAs(t, err, &serr)
	assert.Equal(t, scrapeerr.ErrorTypeNoData, serr.Type)

	// the stale batch survives the empty pass
	assert.Equal(t, 1, batch.Len())
}

func TestRefreshOnceFetchError(t *testing.T) {
	batch := cache.NewBatchCache(time.Minute)
	fetcher := &stubFetcher{err: scrapeerr.NewNetwork("fetcher", "request failed", errors.New("connection refused"))}
	w := NewWorker(context.Background(), testConfig(), fetcher, extract.New(extract.Options{}), batch, nil, nil)

	_, err := w.RefreshOnce()
	assert.Error(t, err)
	assert.Zero(t, batch.Len())
}

func TestRefreshOnceSetsBlockKeyOnRateLimit(t *testing.T) {
	rateCache := newMapCache()
	fetcher := &stubFetcher{err: scrapeerr.NewRateLimit("fetcher", time.Minute)}
	batch := cache.NewBatchCache(time.Minute)
	w := NewWorker(context.Background(), testConfig(), fetcher, extract.New(extract.Options{}), batch, rateCache, nil)

	_, err := w.RefreshOnce()
	assert.Error(t, err)

	_, cached := rateCache.entries["fetch_block"]
	assert.True(t, cached)
}

func TestRefreshOnceShortCircuitsWhileBlocked(t *testing.T) {
	rateCache := newMapCache()
	rateCache.Set("fetch_block", []byte("60"), time.Minute)

	fetcher := &stubFetcher{payload: statePayload}
	batch := cache.NewBatchCache(time.Minute)
	w := NewWorker(context.Background(), testConfig(), fetcher, extract.New(extract.Options{}), batch, rateCache, nil)

	_, err := w.RefreshOnce()
	var serr *scrapeerr.ScrapeError
	assert.ErrorAs(t, err, &serr)
	assert.Equal(t, scrapeerr.ErrorTypeRateLimit, serr.Type)
	assert.Zero(t, fetcher.calls)
}

func TestRefreshOncePublisherFailureIsNotFatal(t *testing.T) {
	fetcher := &stubFetcher{payload: statePayload}
	batch := cache.NewBatchCache(time.Minute)
	pub := &recordingPublisher{err: errors.New("stream unavailable")}
	w := NewWorker(context.Background(), testConfig(), fetcher, extract.New(extract.Options{}), batch, nil, pub)

	count, err := w.RefreshOnce()
	assert.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 2, batch.Len())
}

func TestStartStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	cfg := testConfig()
	cfg.Interval = 10 * time.Millisecond

	fetcher := &stubFetcher{payload: statePayload}
	batch := cache.NewBatchCache(time.Minute)
	w := NewWorker(ctx, cfg, fetcher, extract.New(extract.Options{}), batch, nil, nil)

	done := make(chan error, 1)
	go func() { done <- w.Start() }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}

	assert.GreaterOrEqual(t, fetcher.calls, 1)
	assert.Equal(t, 2, batch.Len())
}
