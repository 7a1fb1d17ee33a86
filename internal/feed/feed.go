// Package feed turns agency RSS/Atom feeds into document URLs for batch runs.
package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
)

// Entry is one document announced by a feed
type Entry struct {
	URL       string     `json:"url"`
	Title     string     `json:"title"`
	Published *time.Time `json:"published,omitempty"`
}

// Discoverer reads feeds with a shared parser
type Discoverer struct {
	parser *gofeed.Parser
	logger *zap.Logger
}

// NewDiscoverer creates a discoverer that identifies itself with userAgent
func NewDiscoverer(timeout time.Duration, userAgent string, logger *zap.Logger) *Discoverer {
	if logger == nil {
		logger = zap.NewNop()
	}
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent
	parser.Client = &http.Client{Timeout: timeout}
	return &Discoverer{parser: parser, logger: logger}
}

// Discover fetches feedURL and returns up to limit entries in feed order.
// Items without a usable http(s) link are skipped and duplicate links collapse.
// limit <= 0 means no limit.
func (d *Discoverer) Discover(ctx context.Context, feedURL string, limit int) ([]Entry, error) {
	parsed, err := d.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching feed %s: %w", feedURL, err)
	}

	entries := Entries(parsed, feedURL, limit)
	d.logger.Debug("feed discovered",
		zap.String("feed", feedURL),
		zap.String("title", parsed.Title),
		zap.Int("items", len(parsed.Items)),
		zap.Int("entries", len(entries)))

	return entries, nil
}

// Entries converts a parsed feed, resolving relative links against base
func Entries(parsed *gofeed.Feed, base string, limit int) []Entry {
	seen := make(map[string]bool)
	entries := make([]Entry, 0, len(parsed.Items))

	for _, item := range parsed.Items {
		if limit > 0 && len(entries) >= limit {
			break
		}

		link := itemLink(item, base)
		if link == "" || seen[link] {
			continue
		}
		seen[link] = true

		published := item.PublishedParsed
		if published == nil {
			published = item.UpdatedParsed
		}

		entries = append(entries, Entry{
			URL:       link,
			Title:     strings.TrimSpace(item.Title),
			Published: published,
		})
	}
	return entries
}

// URLs returns the entry links
func URLs(entries []Entry) []string {
	urls := make([]string, len(entries))
	for i, e := range entries {
		urls[i] = e.URL
	}
	return urls
}

func itemLink(item *gofeed.Item, base string) string {
	raw := strings.TrimSpace(item.Link)
	if raw == "" && len(item.Links) > 0 {
		raw = strings.TrimSpace(item.Links[0])
	}
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if !u.IsAbs() {
		b, err := url.Parse(base)
		if err != nil {
			return ""
		}
		u = b.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	u.Fragment = ""
	return u.String()
}
