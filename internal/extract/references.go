package extract

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// maxReferences caps the links kept per document
const maxReferences = 20

// regulatoryHosts are non-.gov hosts that publish regulatory text
var regulatoryHosts = []string{
	"ecfr.gov",
	"federalregister.gov",
	"regulations.gov",
	"europa.eu",
	"echa.europa.eu",
	"govinfo.gov",
}

// ReferenceExtractor collects links to other regulatory documents
type ReferenceExtractor struct {
	max int
}

// NewReferenceExtractor creates a new reference extractor
func NewReferenceExtractor() *ReferenceExtractor {
	return &ReferenceExtractor{max: maxReferences}
}

// Extract returns absolute http(s) links to regulatory hosts in document order
func (e *ReferenceExtractor) Extract(htmlContent string, sourceURL string) ([]string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, err
	}

	baseURL, err := url.Parse(sourceURL)
	if err != nil {
		return nil, err
	}

	var links []string
	var walk func(*html.Node)

	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				resolved := resolveURL(baseURL, strings.TrimSpace(attr.Val))
				if resolved != "" && isRegulatoryLink(resolved) {
					links = append(links, resolved)
				}
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)

	links = dedupe(links, sourceURL)
	if len(links) > e.max {
		links = links[:e.max]
	}
	return links, nil
}

// resolveURL resolves a relative URL against a base URL
func resolveURL(base *url.URL, href string) string {
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}

	// Skip javascript: and mailto: links
	if strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
		return ""
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(parsed)

	// Only keep http/https URLs
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}

	resolved.Fragment = ""
	return resolved.String()
}

// isRegulatoryLink matches .gov hosts and known regulatory publishers
func isRegulatoryLink(link string) bool {
	parsed, err := url.Parse(link)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())

	if strings.HasSuffix(host, ".gov") {
		return true
	}
	for _, h := range regulatoryHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// dedupe removes repeated links and the page itself
func dedupe(links []string, self string) []string {
	seen := map[string]bool{self: true}
	var unique []string

	for _, link := range links {
		if !seen[link] {
			seen[link] = true
			unique = append(unique, link)
		}
	}

	return unique
}
