package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/regscout/internal/cache"
	"github.com/ppiankov/regscout/internal/extract"
	"github.com/ppiankov/regscout/internal/llm"
	"github.com/ppiankov/regscout/internal/metrics"
	"github.com/ppiankov/regscout/internal/model"
	"github.com/ppiankov/regscout/internal/record"
	"github.com/ppiankov/regscout/internal/tag"
	"github.com/ppiankov/regscout/internal/util"
	"github.com/ppiankov/regscout/internal/worker"
)

// Options are the per-run settings stamped on every record
type Options struct {
	Status string
	Date   string // YYYY-MM-DD; empty means today (UTC)
	Scrape ScrapeOptions
}

// Pipeline orchestrates scrape -> extract -> tag -> assemble for one URL
type Pipeline struct {
	scraper  *Scraper
	strategy extract.Strategy
	tagger   *tag.Tagger
	opts     Options
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// New wires a pipeline from explicit components
func New(scraper *Scraper, strategy extract.Strategy, tagger *tag.Tagger, opts Options, m *metrics.Metrics, logger *zap.Logger) *Pipeline {
	if strategy == nil {
		strategy = extract.NewRuleStrategy(nil)
	}
	if tagger == nil {
		tagger = tag.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		scraper:  scraper,
		strategy: strategy,
		tagger:   tagger,
		opts:     opts,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// NewPipeline creates a pipeline from configuration
func NewPipeline(cfg *model.Config, opts Options, m *metrics.Metrics, logger *zap.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	fetchOpts := []FetcherOption{
		WithMaxAttempts(cfg.HTTP.MaxAttempts),
		WithRateLimiter(worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)),
		WithFetchMetrics(m),
		WithFetchLogger(logger),
	}
	if cfg.HTTP.RespectRobots {
		fetchOpts = append(fetchOpts, WithRobots(util.NewRobotsChecker(cfg.HTTP.UserAgent, cfg.HTTP.Timeout)))
	}

	fetcher := NewFetcher(
		cfg.HTTP.Timeout,
		cfg.HTTP.UserAgent,
		cfg.HTTP.MaxBodyBytes,
		cfg.HTTP.InsecureTLS,
		cfg.HTTP.HTTPProxy,
		cfg.HTTP.HTTPSProxy,
		cfg.HTTP.NoProxy,
		fetchOpts...,
	)

	var pageCache cache.Cache
	if cfg.Cache.Enabled {
		pageCache = cache.New(cfg.Cache.Dir)
	}

	limits := extract.TextLimits{
		MaxLength:      cfg.Extract.MaxTextLength,
		TruncateWindow: cfg.Extract.TruncateWindow,
	}
	scraper := NewScraper(fetcher, pageCache, limits, m, logger)

	rules := extract.NewFieldExtractor(cfg.Extract.MinTextLength)
	var strategy extract.Strategy = extract.NewRuleStrategy(rules)

	if cfg.Extract.Strategy == "llm" {
		llmConfig := llm.ConfigFromModel(cfg)
		provider, err := llm.NewProvider(llmConfig)
		if err != nil {
			return nil, fmt.Errorf("init LLM provider: %w", err)
		}
		strategy = llm.NewQAStrategy(provider, rules, llmConfig, logger)
	}

	if opts.Status == "" {
		opts.Status = cfg.Output.Status
	}
	opts.Scrape.UseCache = opts.Scrape.UseCache && cfg.Cache.Enabled

	return New(scraper, strategy, tag.New(), opts, m, logger), nil
}

// degradable is a strategy backed by a remote service that can check its
// reachability and name a local replacement
type degradable interface {
	Ready(ctx context.Context) error
	Fallback() extract.Strategy
}

// Preflight checks the extraction strategy once before a run. When its backend
// is unreachable the pipeline switches to the fallback strategy for the rest of
// the run and the check error is returned for reporting.
func (p *Pipeline) Preflight(ctx context.Context) error {
	d, ok := p.strategy.(degradable)
	if !ok {
		return nil
	}
	if err := d.Ready(ctx); err != nil {
		p.logger.Warn("extraction backend unavailable, using fallback",
			zap.String("strategy", p.strategy.Name()),
			zap.Error(err))
		p.strategy = d.Fallback()
		return err
	}
	return nil
}

// Strategy returns the extraction strategy in use
func (p *Pipeline) Strategy() extract.Strategy {
	return p.strategy
}

// FetchPage scrapes url with the pipeline's scrape options
func (p *Pipeline) FetchPage(ctx context.Context, url string) (*model.RawPage, error) {
	return p.scraper.Scrape(ctx, url, p.opts.Scrape)
}

// Process turns one URL into a regulation record. Fetch failures are returned
// as *FetchFailure; extraction itself never fails.
func (p *Pipeline) Process(ctx context.Context, url string) (*model.RegulationRecord, error) {
	page, err := p.FetchPage(ctx, url)
	if err != nil {
		return nil, err
	}

	rec, err := p.Build(ctx, page, url)
	if err != nil {
		return nil, err
	}

	p.logger.Info("record assembled",
		zap.String("url", url),
		zap.String("id", rec.ID),
		zap.Float64("confidence", rec.Confidence),
		zap.Int("tags", len(rec.Tags)))

	return rec, nil
}

// Build extracts, tags and assembles a record from an already scraped page
func (p *Pipeline) Build(ctx context.Context, page *model.RawPage, sourceURL string) (*model.RegulationRecord, error) {
	start := time.Now()
	fields, err := p.strategy.Extract(ctx, page.CleanedText, page.URL)
	if err != nil {
		return nil, fmt.Errorf("extract fields: %w", err)
	}
	p.metrics.ObserveExtract(time.Since(start).Seconds())

	tags := p.tagger.Tag(page.CleanedText)

	date := p.opts.Date
	if date == "" {
		date = p.now().UTC().Format("2006-01-02")
	}

	rec := record.Assemble(page, fields, tags, sourceURL, p.opts.Status, date)
	rec.References = page.References
	p.metrics.Record()

	return &rec, nil
}
