package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/regscout/internal/metrics"
	"github.com/ppiankov/regscout/internal/pipeline"
	"github.com/ppiankov/regscout/internal/record"
	"github.com/ppiankov/regscout/internal/worker"
)

var (
	batchFlags  runFlags
	concurrency int
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Process multiple URLs from a file concurrently",
	Long: `Batch processes multiple URLs from a file (one URL per line).

Features:
- Concurrent processing with configurable workers
- Per-host rate limiting
- Comment lines (starting with #) are ignored, duplicates removed
- URLs that fail to fetch are reported and dropped; the batch continues
- All records are written to the records file in one piece

Example:
  regscout batch urls.txt
  regscout batch urls.txt --concurrency 10 --out regulations.json
  regscout discover https://www.federalregister.gov/api/v1/documents.rss --out urls.txt && regscout batch urls.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchFlags.register(batchCmd, true)
	batchCmd.Flags().IntVarP(&concurrency, "concurrency", "c", 0, "number of concurrent workers (default from config)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := batchFlags.apply(cmd, cfg); err != nil {
		return err
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency.Workers = concurrency
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID))

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  regscout Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Output:       %s\n", cfg.Output.RecordsPath)
	fmt.Fprintf(os.Stderr, "  Run ID:       %s\n", runID)
	fmt.Fprintf(os.Stderr, "\n")

	p, err := pipeline.NewPipeline(cfg, batchFlags.options(cfg), metrics.Default(), logger)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := p.Preflight(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "⚠ %v; using rule-based extraction\n", err)
	}

	// Per-host rate limiting happens in the pipeline's fetcher
	processor := worker.NewBatchProcessor(p, cfg.Concurrency.Workers)

	fmt.Fprintf(os.Stderr, "⚙️  Processing URLs with %d workers...\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "\n")

	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	failureCount := 0
	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.URL, result.Error)
			logger.Warn("url dropped", zap.String("url", result.URL), zap.Error(result.Error))
			continue
		}
		fmt.Fprintf(os.Stderr, "✓ %s (%s, confidence %.2f)\n", result.Record.Bill, result.URL, result.Record.Confidence)
	}

	records := worker.Records(results)
	store := record.NewStore(cfg.Output.RecordsPath)
	if err := store.WriteAll(records); err != nil {
		return fmt.Errorf("write records: %w", err)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d URLs\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", len(records))
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", store.Path())
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}
