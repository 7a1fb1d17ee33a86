package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/regscout/internal/cache"
	"github.com/ppiankov/regscout/internal/extract"
	"github.com/ppiankov/regscout/internal/metrics"
	"github.com/ppiankov/regscout/internal/model"
)

// ErrNoContent is returned (wrapped in a FetchFailure) when a page has no text
var ErrNoContent = extract.ErrNoContent

// FetchFailure is the only error Scrape returns. No partial page accompanies it.
type FetchFailure struct {
	URL    string
	Reason string
	Err    error
}

func (f *FetchFailure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("fetch %s: %s: %v", f.URL, f.Reason, f.Err)
	}
	return fmt.Sprintf("fetch %s: %s", f.URL, f.Reason)
}

func (f *FetchFailure) Unwrap() error {
	return f.Err
}

// ScrapeOptions controls a single Scrape call
type ScrapeOptions struct {
	UseCache  bool
	Timeout   time.Duration // overall budget including retries; 0 means none
	SourceTag string
}

// DefaultScrapeOptions uses the cache with no overall deadline
func DefaultScrapeOptions() ScrapeOptions {
	return ScrapeOptions{UseCache: true}
}

// defaultSourceTag labels pages fetched without a source
const defaultSourceTag = "Unknown"

// Scraper turns a URL into a cleaned RawPage, consulting the page cache first
type Scraper struct {
	fetcher    *Fetcher
	cache      cache.Cache
	limits     extract.TextLimits
	references *extract.ReferenceExtractor
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewScraper creates a scraper. A nil cache disables caching regardless of options.
func NewScraper(fetcher *Fetcher, c cache.Cache, limits extract.TextLimits, m *metrics.Metrics, logger *zap.Logger) *Scraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scraper{
		fetcher:    fetcher,
		cache:      c,
		limits:     limits,
		references: extract.NewReferenceExtractor(),
		metrics:    m,
		logger:     logger,
	}
}

// Scrape returns the cached page for rawURL when allowed, otherwise fetches,
// cleans and caches it. Every error is a *FetchFailure.
func (s *Scraper) Scrape(ctx context.Context, rawURL string, opts ScrapeOptions) (*model.RawPage, error) {
	useCache := opts.UseCache && s.cache != nil
	key := cache.CacheKey(rawURL)

	if useCache {
		if page, ok := s.cached(key); ok {
			s.metrics.CacheHit()
			s.logger.Debug("cache hit", zap.String("url", rawURL))
			if opts.SourceTag != "" {
				page.SourceTag = opts.SourceTag
			}
			return page, nil
		}
		s.metrics.CacheMiss()
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	page, err := s.fetchPage(ctx, rawURL, opts.SourceTag)
	if err != nil {
		s.metrics.Failure()
		return nil, err
	}

	if useCache {
		s.store(key, page)
	}
	return page, nil
}

func (s *Scraper) fetchPage(ctx context.Context, rawURL, sourceTag string) (*model.RawPage, error) {
	result, err := s.fetcher.FetchWithRetry(ctx, rawURL)
	if err != nil {
		reason := "request failed"
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			reason = "timed out"
		case errors.Is(err, ErrDisallowed):
			reason = "blocked by robots.txt"
		}
		return nil, &FetchFailure{URL: rawURL, Reason: reason, Err: err}
	}

	if sourceTag == "" {
		sourceTag = defaultSourceTag
	}

	doc, err := extract.CleanHTML(result.HTML, s.limits)
	if err != nil {
		return nil, &FetchFailure{URL: rawURL, Reason: "no content", Err: err}
	}

	refs, err := s.references.Extract(result.HTML, result.FinalURL)
	if err != nil {
		s.logger.Debug("reference extraction failed", zap.String("url", rawURL), zap.Error(err))
	}

	return &model.RawPage{
		Title:       doc.Title,
		URL:         rawURL,
		SourceTag:   sourceTag,
		CleanedText: doc.Text,
		References:  refs,
	}, nil
}

func (s *Scraper) cached(key string) (*model.RawPage, bool) {
	data, found := s.cache.Get(key)
	if !found {
		return nil, false
	}

	var page model.RawPage
	if err := json.Unmarshal(data, &page); err != nil {
		s.logger.Warn("discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &page, true
}

// store writes the page to the cache. Failures are logged and never surface to the caller.
func (s *Scraper) store(key string, page *model.RawPage) {
	data, err := json.Marshal(page)
	if err != nil {
		s.logger.Warn("cache encode failed", zap.String("url", page.URL), zap.Error(err))
		return
	}
	if err := s.cache.Set(key, data); err != nil {
		s.logger.Warn("cache write failed", zap.String("url", page.URL), zap.Error(err))
	}
}
