package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ErrNoContent is returned when a page has no usable content container
var ErrNoContent = errors.New("no content container found")

// noiseSelector lists page chrome that never carries regulatory text
const noiseSelector = "script, style, noscript, template, iframe, svg, nav, header, footer, aside, button, " +
	"[role=navigation], [role=banner], [role=contentinfo], [aria-hidden=true], " +
	".usa-banner, .breadcrumb, .breadcrumbs, .skip-link, .sidebar, .cookie-banner, #cookie-banner, .share-links"

// semanticSelectors are tried first, then classSelectors, then body
var semanticSelectors = []string{"main", "[role=main]", "article"}

var classSelectors = []string{
	"#main-content",
	".main-content",
	"#content",
	".content",
	".page-content",
	".field-item",
	".body-content",
}

// Block-level elements start a new paragraph; lineTags start a new line
var blockTags = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "main": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "dl": true, "table": true, "blockquote": true,
	"pre": true, "figure": true, "hr": true, "address": true,
}

var lineTags = map[string]bool{
	"br": true, "li": true, "tr": true, "dt": true, "dd": true, "figcaption": true,
}

var (
	inlineSpace = regexp.MustCompile(`\s+`)
	lineSpace   = regexp.MustCompile(`[ \t\f\r\v\x{00a0}]+`)
)

// Document is the cleaned form of an HTML page
type Document struct {
	Title string
	Text  string
}

// TextLimits bounds the cleaned text
type TextLimits struct {
	MaxLength      int // runes; 0 disables truncation
	TruncateWindow int // trailing runes searched for a sentence boundary
}

// DefaultTextLimits returns the 50,000 / 5,000 rune limits
func DefaultTextLimits() TextLimits {
	return TextLimits{MaxLength: 50_000, TruncateWindow: 5_000}
}

// CleanHTML strips page chrome, selects the main content container and returns
// normalized, truncated plain text
func CleanHTML(htmlContent string, limits TextLimits) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	title := strings.TrimSpace(inlineSpace.ReplaceAllString(doc.Find("title").First().Text(), " "))
	if title == "" {
		title = "Untitled"
	}

	doc.Find(noiseSelector).Remove()

	container := selectContainer(doc)
	if container == nil {
		return nil, ErrNoContent
	}

	var buf strings.Builder
	for _, n := range container.Nodes {
		writeText(&buf, n)
	}

	text := Truncate(NormalizeWhitespace(buf.String()), limits.MaxLength, limits.TruncateWindow)
	if text == "" {
		return nil, ErrNoContent
	}

	return &Document{Title: title, Text: text}, nil
}

// selectContainer prefers semantic containers, then class/id heuristics, then body
func selectContainer(doc *goquery.Document) *goquery.Selection {
	for _, group := range [][]string{semanticSelectors, classSelectors, {"body"}} {
		for _, selector := range group {
			var found *goquery.Selection
			doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
				if strings.TrimSpace(s.Text()) != "" {
					found = s
					return false
				}
				return true
			})
			if found != nil {
				return found
			}
		}
	}
	return nil
}

// writeText renders visible text, turning block boundaries into line breaks
func writeText(buf *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		buf.WriteString(inlineSpace.ReplaceAllString(n.Data, " "))
		return
	case html.ElementNode:
		if blockTags[n.Data] {
			buf.WriteString("\n\n")
			defer buf.WriteString("\n\n")
		} else if lineTags[n.Data] {
			buf.WriteString("\n")
			defer buf.WriteString("\n")
		}
	case html.CommentNode:
		return
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(buf, c)
	}
}

// NormalizeWhitespace collapses runs of spaces, trims every line and keeps at
// most one blank line between paragraphs
func NormalizeWhitespace(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(lineSpace.ReplaceAllString(line, " "))
		if line == "" {
			if len(out) > 0 && !blank {
				out = append(out, "")
				blank = true
			}
			continue
		}
		out = append(out, line)
		blank = false
	}

	return strings.TrimSpace(strings.Join(out, "\n"))
}

// Truncate cuts text to maxLen runes. When it has to cut, it ends at the last
// sentence terminator inside the trailing window so the final sentence stays whole.
func Truncate(text string, maxLen, window int) string {
	if maxLen <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}

	prefix := runes[:maxLen]
	start := maxLen - window
	if start < 0 {
		start = 0
	}

	for i := len(prefix) - 1; i >= start; i-- {
		if prefix[i] == '.' || prefix[i] == '!' || prefix[i] == '?' {
			return strings.TrimSpace(string(prefix[:i+1]))
		}
	}

	return strings.TrimSpace(string(prefix))
}
