package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/regscout/internal/metrics"
	"github.com/ppiankov/regscout/internal/model"
	"github.com/ppiankov/regscout/internal/pipeline"
	"github.com/ppiankov/regscout/internal/worker"
)

var fetchFlags runFlags

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch <url> [url...]",
	Short: "Fetch and clean pages, printing them as JSON",
	Long: `Fetch scrapes pages and prints the cleaned page (title, source, text,
references) as JSON without extracting fields. Useful for checking what the
extractor will see. Several URLs are fetched concurrently and printed as an array.

Example:
  regscout fetch https://www.epa.gov/pfas --source EPA
  regscout fetch https://a.gov/x https://b.gov/y --no-cache`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchFlags.register(fetchCmd, false)
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := fetchFlags.apply(cmd, cfg); err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	p, err := pipeline.NewPipeline(cfg, fetchFlags.options(cfg), metrics.Default(), logger)
	if err != nil {
		return err
	}

	ctx := context.Background()
	var out any

	if len(args) == 1 {
		page, err := p.FetchPage(ctx, args[0])
		if err != nil {
			return fmt.Errorf("fetch failed: %w", err)
		}
		out = page
	} else {
		results := worker.NewBatchProcessor(nil, cfg.Concurrency.Workers).FetchMany(ctx, p, args)

		pages := make([]*model.RawPage, 0, len(results))
		for _, r := range results {
			if r.Error != nil {
				fmt.Fprintf(os.Stderr, "✗ %s: %v\n", r.URL, r.Error)
				continue
			}
			pages = append(pages, r.Page)
		}
		if len(pages) == 0 {
			return fmt.Errorf("fetch failed: no page could be fetched")
		}
		out = pages
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}
