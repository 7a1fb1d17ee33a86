package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/regscout/internal/feed"
)

var (
	discoverOut   string
	discoverLimit int
)

// discoverCmd represents the discover command
var discoverCmd = &cobra.Command{
	Use:   "discover <feed-url>",
	Short: "List document URLs announced by an RSS/Atom feed",
	Long: `Discover reads an agency RSS or Atom feed (for example a Federal Register
agency feed) and prints the linked document URLs, one per line. The output
is a valid input file for 'regscout batch'.

Example:
  regscout discover "https://www.federalregister.gov/api/v1/documents.rss?conditions[agencies][]=environmental-protection-agency"
  regscout discover https://echa.europa.eu/rss --limit 20 --out urls.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runDiscover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)
	discoverCmd.Flags().StringVarP(&discoverOut, "out", "o", "", "write URLs to this file instead of stdout")
	discoverCmd.Flags().IntVar(&discoverLimit, "limit", 50, "maximum number of URLs (0 = no limit)")
}

func runDiscover(cmd *cobra.Command, args []string) (err error) {
	feedURL := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.Timeout)
	defer cancel()

	entries, err := feed.NewDiscoverer(cfg.HTTP.Timeout, cfg.HTTP.UserAgent, logger).Discover(ctx, feedURL, discoverLimit)
	if err != nil {
		return fmt.Errorf("discover failed: %w", err)
	}

	w := cmd.OutOrStdout()
	if discoverOut != "" {
		f, err := os.Create(discoverOut)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("close output file: %w", closeErr)
			}
		}()
		w = f
	}

	bw := bufio.NewWriter(w)
	if discoverOut != "" {
		fmt.Fprintf(bw, "# %s\n# discovered %s\n", feedURL, time.Now().UTC().Format(time.RFC3339))
	}
	for _, u := range feed.URLs(entries) {
		fmt.Fprintln(bw, u)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write URLs: %w", err)
	}

	fmt.Fprintf(os.Stderr, "✓ Discovered %d URLs\n", len(entries))
	if discoverOut != "" {
		fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", discoverOut)
	}
	return nil
}
