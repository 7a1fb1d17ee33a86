package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/regscout/internal/model"
	"github.com/ppiankov/regscout/internal/pipeline"
)

// runFlags are shared by generate, batch and fetch
type runFlags struct {
	source      string
	status      string
	date        string
	out         string
	noCache     bool
	timeout     time.Duration
	strategy    string
	llmProvider string
	llmModel    string
}

func (f *runFlags) register(cmd *cobra.Command, withOutput bool) {
	cmd.Flags().StringVar(&f.source, "source", "", "source label stored with the page (e.g. EPA)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "bypass the page cache (force fresh fetch)")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "per-request timeout (default from config)")

	if !withOutput {
		return
	}
	cmd.Flags().StringVar(&f.status, "status", "", "record status (default from config, \"final\")")
	cmd.Flags().StringVar(&f.date, "date", "", "lastUpdated date YYYY-MM-DD (default today, UTC)")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "records file path (default from config)")
	cmd.Flags().StringVar(&f.strategy, "strategy", "", "field extraction strategy: rules or llm")
	cmd.Flags().StringVar(&f.llmProvider, "llm-provider", "", "LLM provider for --strategy llm (openai, ollama)")
	cmd.Flags().StringVar(&f.llmModel, "llm-model", "", "LLM model name")
}

// apply overrides cfg with the flags the user actually set
func (f *runFlags) apply(cmd *cobra.Command, cfg *model.Config) error {
	flags := cmd.Flags()
	if flags.Changed("timeout") {
		cfg.HTTP.Timeout = f.timeout
	}
	if f.noCache {
		cfg.Cache.Enabled = false
	}
	if flags.Changed("status") {
		cfg.Output.Status = f.status
	}
	if flags.Changed("out") {
		cfg.Output.RecordsPath = f.out
	}
	if flags.Changed("strategy") {
		cfg.Extract.Strategy = f.strategy
	}
	if flags.Changed("llm-provider") {
		cfg.LLM.Provider = f.llmProvider
	}
	if flags.Changed("llm-model") {
		cfg.LLM.Model = f.llmModel
	}
	if f.date != "" {
		if _, err := time.Parse("2006-01-02", f.date); err != nil {
			return fmt.Errorf("invalid --date %q: expected YYYY-MM-DD", f.date)
		}
	}
	return nil
}

func (f *runFlags) options(cfg *model.Config) pipeline.Options {
	scrape := pipeline.DefaultScrapeOptions()
	scrape.SourceTag = f.source
	scrape.UseCache = cfg.Cache.Enabled

	return pipeline.Options{
		Status: cfg.Output.Status,
		Date:   f.date,
		Scrape: scrape,
	}
}
