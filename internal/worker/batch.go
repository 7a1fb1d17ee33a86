package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/regscout/internal/model"
)

// Processor turns a URL into a regulation record
type Processor interface {
	Process(ctx context.Context, url string) (*model.RegulationRecord, error)
}

// PageFetcher turns a URL into a cleaned page
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (*model.RawPage, error)
}

// ProcessJob represents one URL to turn into a record
type ProcessJob struct {
	URL       string
	Processor Processor
}

// Execute executes the process job
func (j *ProcessJob) Execute(ctx context.Context) Result {
	rec, err := j.Processor.Process(ctx, j.URL)
	if err != nil {
		return j.Fail(err)
	}
	return &ProcessResult{URL: j.URL, Record: rec}
}

// Fail implements Job
func (j *ProcessJob) Fail(err error) Result {
	return &ProcessResult{URL: j.URL, Error: err}
}

// ProcessResult represents the result of a process job
type ProcessResult struct {
	URL    string
	Record *model.RegulationRecord
	Error  error
}

// GetError returns the error from the process result
func (r *ProcessResult) GetError() error {
	return r.Error
}

// FetchJob represents one URL to scrape
type FetchJob struct {
	URL     string
	Fetcher PageFetcher
}

// Execute executes the fetch job
func (j *FetchJob) Execute(ctx context.Context) Result {
	page, err := j.Fetcher.FetchPage(ctx, j.URL)
	if err != nil {
		return j.Fail(err)
	}
	return &FetchResult{URL: j.URL, Page: page}
}

// Fail implements Job
func (j *FetchJob) Fail(err error) Result {
	return &FetchResult{URL: j.URL, Error: err}
}

// FetchResult is a scraped page or the failure that replaced it
type FetchResult struct {
	URL   string
	Page  *model.RawPage
	Error error
}

// GetError returns the error from the fetch result
func (r *FetchResult) GetError() error {
	return r.Error
}

// BatchProcessor processes multiple URLs concurrently. Politeness (per-host
// rate limits, robots.txt) belongs to the Processor's fetcher.
type BatchProcessor struct {
	processor   Processor
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(processor Processor, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		processor:   processor,
		concurrency: concurrency,
	}
}

// ProcessURLs processes multiple URLs concurrently and returns one result per
// URL. Result order is not guaranteed. URLs not started before ctx is done
// come back as failures carrying ctx.Err().
func (b *BatchProcessor) ProcessURLs(ctx context.Context, urls []string) []*ProcessResult {
	if len(urls) == 0 {
		return []*ProcessResult{}
	}

	jobs := make([]Job, len(urls))
	for i, url := range urls {
		jobs[i] = &ProcessJob{
			URL:       url,
			Processor: b.processor,
		}
	}

	results := NewPool(ctx, b.concurrency).Run(jobs)

	processResults := make([]*ProcessResult, len(results))
	for i, result := range results {
		processResults[i] = result.(*ProcessResult)
	}

	return processResults
}

// ProcessFile reads URLs from a file and processes them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*ProcessResult, error) {
	urls, err := ReadURLsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read URLs: %w", err)
	}

	return b.ProcessURLs(ctx, urls), nil
}

// FetchMany scrapes urls with at most concurrency fetches in flight and
// returns one result per URL, with the same cancellation rule as ProcessURLs.
func (b *BatchProcessor) FetchMany(ctx context.Context, fetcher PageFetcher, urls []string) []*FetchResult {
	if len(urls) == 0 {
		return []*FetchResult{}
	}

	jobs := make([]Job, len(urls))
	for i, url := range urls {
		jobs[i] = &FetchJob{
			URL:     url,
			Fetcher: fetcher,
		}
	}

	results := NewPool(ctx, b.concurrency).Run(jobs)

	fetchResults := make([]*FetchResult, len(results))
	for i, result := range results {
		fetchResults[i] = result.(*FetchResult)
	}

	return fetchResults
}

// Records returns the successful records, dropping failures
func Records(results []*ProcessResult) []model.RegulationRecord {
	records := make([]model.RegulationRecord, 0, len(results))
	for _, r := range results {
		if r.Error == nil && r.Record != nil {
			records = append(records, *r.Record)
		}
	}
	return records
}

// ReadURLsFromFile reads URLs from a file (one per line)
func ReadURLsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var urls []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Deduplicate URLs
		if !seen[line] {
			seen[line] = true
			urls = append(urls, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return urls, nil
}
