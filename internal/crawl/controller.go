// Package crawl drives a harvest run: it walks listing pages, fans detail
// fetches out to a bounded worker pool, and stops once the wanted number of
// records is persisted or the source runs dry.
package crawl

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/project-tktt/job-harvester/internal/cleaner"
	"github.com/project-tktt/job-harvester/internal/domain"
	"github.com/project-tktt/job-harvester/internal/extract"
	"github.com/project-tktt/job-harvester/internal/fetch"
	"github.com/project-tktt/job-harvester/internal/reconcile"
	"github.com/project-tktt/job-harvester/internal/sink"
	"github.com/project-tktt/job-harvester/internal/siteurl"
)

// SeenStore answers whether a job key was persisted by an earlier run.
type SeenStore interface {
	Seen(ctx context.Context, key string) (bool, error)
	MarkSeen(ctx context.Context, key string) error
}

// Config holds the knobs of one harvest run.
type Config struct {
	// StartURLs overrides the search-built entry point. Detail URLs are
	// harvested directly, listing URLs are paginated.
	StartURLs []string

	Keyword      string
	Location     string
	PostedFilter string

	ResultsWanted int
	MaxPages      int

	// CollectDetails controls whether previews are followed to their detail
	// pages. When off, previews are flattened and persisted as-is.
	CollectDetails bool

	// Dedupe enables the cross-run seen store. In-run dedup always applies.
	Dedupe bool

	ListConcurrency   int
	DetailConcurrency int

	// Delay is the politeness pause before each fetch, randomized around
	// the configured value. Zero disables the pause.
	Delay time.Duration
}

func (c *Config) applyDefaults() {
	if c.ResultsWanted < 1 {
		c.ResultsWanted = 1
	}
	if c.MaxPages < 1 {
		c.MaxPages = 1
	}
	if c.ListConcurrency < 1 {
		c.ListConcurrency = 1
	}
	if c.DetailConcurrency < 1 {
		c.DetailConcurrency = 1
	}
}

// Summary reports what a finished run did.
type Summary struct {
	Saved        int
	PagesFetched int
}

// Controller owns the state of one run. Build a fresh one per run.
type Controller struct {
	cfg     Config
	fetcher fetch.Fetcher
	out     sink.Sink
	seen    SeenStore

	extractor  *extract.Extractor
	reconciler *reconcile.Reconciler
	log        *zap.Logger
	backoff    BackoffPolicy

	state     *crawlState
	listSem   chan struct{}
	detailSem chan struct{}
	wg        sync.WaitGroup
}

// New wires a controller. The seen store may be nil, in which case only
// in-run dedup applies.
func New(cfg Config, fetcher fetch.Fetcher, out sink.Sink, seen SeenStore, log *zap.Logger) *Controller {
	cfg.applyDefaults()
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		cfg:        cfg,
		fetcher:    fetcher,
		out:        out,
		seen:       seen,
		extractor:  extract.New(log),
		reconciler: reconcile.New(cleaner.New()),
		log:        log,
		backoff:    DefaultBackoff(),
		state:      newCrawlState(),
		listSem:    make(chan struct{}, cfg.ListConcurrency),
		detailSem:  make(chan struct{}, cfg.DetailConcurrency),
	}
}

// Run seeds the crawl and blocks until every spawned worker finishes.
func (c *Controller) Run(ctx context.Context) (Summary, error) {
	if c.fetcher == nil || c.out == nil {
		return Summary{}, errors.New("crawl: fetcher and sink are required")
	}

	seeds := c.cfg.StartURLs
	if len(seeds) == 0 {
		seeds = []string{siteurl.BuildSearchURL(siteurl.SearchParams{
			Keyword:      c.cfg.Keyword,
			Location:     c.cfg.Location,
			PostedWithin: c.cfg.PostedFilter,
		})}
	}

	for _, raw := range seeds {
		u := siteurl.Normalize(raw)
		if siteurl.ClassifyPath(u) == siteurl.Detail {
			preview := &domain.JobPreview{JobID: siteurl.JobID(u), JobURL: u}
			if c.state.reserveDetail(preview.Key(), c.cfg.ResultsWanted) {
				c.spawnDetail(ctx, preview)
			}
			continue
		}
		c.spawnListing(ctx, u)
	}

	c.wg.Wait()
	summary := Summary{Saved: c.state.savedCount(), PagesFetched: c.state.pagesFetched()}
	c.log.Info("harvest finished",
		zap.Int("saved", summary.Saved),
		zap.Int("pages_fetched", summary.PagesFetched))
	return summary, ctx.Err()
}

func (c *Controller) spawnListing(ctx context.Context, url string) {
	if !c.state.markListing(url) {
		return
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.listSem <- struct{}{}
		defer func() { <-c.listSem }()
		c.processListing(ctx, url)
	}()
}

func (c *Controller) spawnDetail(ctx context.Context, preview *domain.JobPreview) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.detailSem <- struct{}{}
		defer func() { <-c.detailSem }()
		c.processDetail(ctx, preview)
	}()
}

func (c *Controller) processListing(ctx context.Context, url string) {
	if ctx.Err() != nil {
		return
	}
	if c.state.remainingCapacity(c.cfg.ResultsWanted) <= 0 {
		return
	}
	if !c.state.tryIncPage(c.cfg.MaxPages) {
		return
	}

	if err := c.pause(ctx); err != nil {
		return
	}
	page, err := c.fetcher.Fetch(ctx, url, fetch.Options{})
	if err != nil {
		// A failed page only loses its own previews. The chain continues;
		// the page ceiling and cycle guard still bound it.
		c.log.Warn("listing fetch failed", zap.String("url", url), zap.Error(err))
		c.spawnListing(ctx, siteurl.NextListingURL(url))
		return
	}

	res := c.extractor.Listing(page.Doc, page.Body, url)
	listedTotal := c.state.addListed(len(res.Previews))
	strategy := "markup"
	if res.FromPayload {
		strategy = "payload"
	}
	c.log.Info("listing page scanned",
		zap.String("url", url),
		zap.String("strategy", strategy),
		zap.Int("previews", len(res.Previews)),
		zap.Int("total_reported", res.TotalReported))

	for _, preview := range res.Previews {
		key := preview.Key()
		if key == "" {
			continue
		}
		if !c.state.reserveDetail(key, c.cfg.ResultsWanted) {
			continue
		}
		if skip := c.previouslySeen(ctx, key); skip {
			c.state.markFailed(key)
			continue
		}

		if c.cfg.CollectDetails {
			c.spawnDetail(ctx, preview)
			continue
		}
		c.persistFlattened(ctx, preview, key)
	}

	if c.state.remainingCapacity(c.cfg.ResultsWanted) <= 0 {
		return
	}
	if len(res.Previews) == 0 {
		return
	}
	if res.TotalReported > 0 && listedTotal >= res.TotalReported {
		return
	}
	c.spawnListing(ctx, siteurl.NextListingURL(url))
}

// processDetail fetches a claimed detail page, retrying with backoff when no
// strategy yields usable content. After the attempt ceiling whatever the
// strategies produced is accepted, so a sparse page still becomes a record.
func (c *Controller) processDetail(ctx context.Context, preview *domain.JobPreview) {
	key := preview.Key()

	var det extract.DetailResult
	for attempt := 1; ; attempt++ {
		if err := c.sleep(ctx, c.backoff.Delay(attempt)); err != nil {
			c.state.markFailed(key)
			return
		}
		if err := c.pause(ctx); err != nil {
			c.state.markFailed(key)
			return
		}

		page, err := c.fetcher.Fetch(ctx, preview.JobURL, fetch.Options{Referer: siteurl.DefaultOrigin + siteurl.ListingPath})
		if err != nil {
			c.log.Warn("detail fetch failed",
				zap.String("url", preview.JobURL), zap.Error(err))
			c.state.markFailed(key)
			return
		}

		det = c.extractor.Detail(page.Doc, page.Body, preview.JobURL)
		if det.Usable() {
			break
		}
		if attempt >= c.backoff.MaxAttempts {
			c.log.Warn("accepting detail page without usable content",
				zap.String("url", preview.JobURL), zap.Int("attempts", attempt))
			break
		}
		c.log.Debug("detail page not usable yet, retrying",
			zap.String("url", preview.JobURL), zap.Int("attempt", attempt))
	}

	record := c.reconciler.Build(preview.JobURL, det, preview)
	if record == nil {
		c.log.Error("detail page produced no valid record",
			zap.String("url", preview.JobURL))
		c.state.markFailed(key)
		return
	}

	// A worker may land after concurrent siblings already met the target.
	if !c.state.finishDetail(key, c.cfg.ResultsWanted) {
		c.log.Debug("dropping late record past target",
			zap.String("url", preview.JobURL))
		return
	}
	if err := c.out.Append(ctx, record); err != nil {
		c.log.Error("persist failed",
			zap.String("url", preview.JobURL), zap.Error(err))
		return
	}
	c.markSeen(ctx, key)
}

func (c *Controller) persistFlattened(ctx context.Context, preview *domain.JobPreview, key string) {
	record := c.reconciler.FlattenPreview(preview)
	if record == nil {
		c.state.markFailed(key)
		return
	}
	if !c.state.finishDetail(key, c.cfg.ResultsWanted) {
		return
	}
	if err := c.out.Append(ctx, record); err != nil {
		c.log.Error("persist failed",
			zap.String("url", preview.JobURL), zap.Error(err))
		return
	}
	c.markSeen(ctx, key)
}

func (c *Controller) previouslySeen(ctx context.Context, key string) bool {
	if !c.cfg.Dedupe || c.seen == nil {
		return false
	}
	seen, err := c.seen.Seen(ctx, key)
	if err != nil {
		c.log.Warn("seen-store lookup failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return seen
}

func (c *Controller) markSeen(ctx context.Context, key string) {
	if !c.cfg.Dedupe || c.seen == nil {
		return
	}
	if err := c.seen.MarkSeen(ctx, key); err != nil {
		c.log.Warn("seen-store mark failed", zap.String("key", key), zap.Error(err))
	}
}

// pause waits a randomized politeness delay, half to one-and-a-half times
// the configured value.
func (c *Controller) pause(ctx context.Context) error {
	if c.cfg.Delay <= 0 {
		return ctx.Err()
	}
	return c.sleep(ctx, c.cfg.Delay/2+randomJitter(c.cfg.Delay))
}

func (c *Controller) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
