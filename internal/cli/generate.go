package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/regscout/internal/metrics"
	"github.com/ppiankov/regscout/internal/model"
	"github.com/ppiankov/regscout/internal/pipeline"
	"github.com/ppiankov/regscout/internal/record"
)

var generateFlags runFlags

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate <url>",
	Short: "Scrape one regulation page and write its record",
	Long: `Generate fetches a single regulatory page and:
- Cleans it down to the main content text
- Extracts nine fields (bill, docket, jurisdiction, overview, requirements,
  penalties, key dates, covered products, exemptions)
- Tags it with topical keywords
- Writes a one-record JSON array to the records file

A fetch failure is fatal and nothing is written.

Example:
  regscout generate https://www.epa.gov/assessing-and-managing-chemicals-under-tsca/tsca-section-8a7-reporting-and-recordkeeping --source EPA
  regscout generate https://example.gov/rule --date 2025-11-13 --out regulations.json --no-cache`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateFlags.register(generateCmd, true)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	url := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := generateFlags.apply(cmd, cfg); err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID))

	p, err := pipeline.NewPipeline(cfg, generateFlags.options(cfg), metrics.Default(), logger)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := p.Preflight(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "⚠ %v; using rule-based extraction\n", err)
	}

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Generating: %s\n", url)
		fmt.Fprintf(os.Stderr, "Strategy:   %s\n", p.Strategy().Name())
		fmt.Fprintf(os.Stderr, "Cache:      %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	rec, err := p.Process(ctx, url)
	if err != nil {
		return fmt.Errorf("generate failed: %w", err)
	}

	store := record.NewStore(cfg.Output.RecordsPath)
	if err := store.WriteAll([]model.RegulationRecord{*rec}); err != nil {
		return fmt.Errorf("write records: %w", err)
	}

	fmt.Fprintf(os.Stderr, "✓ %s (%s, confidence %.2f, %d tags)\n", rec.Bill, rec.Jurisdiction, rec.Confidence, len(rec.Tags))
	fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", store.Path())

	return nil
}
