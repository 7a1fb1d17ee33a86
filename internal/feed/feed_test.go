package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
)

const agencyFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Environmental Protection Agency documents</title>
<link>https://www.federalregister.gov/agencies/environmental-protection-agency</link>
<item>
<title> TSCA Section 8(a)(7) Reporting for PFAS </title>
<link>https://www.federalregister.gov/documents/2023/10/11/2023-22094/pfas-reporting</link>
<pubDate>Wed, 11 Oct 2023 04:00:00 GMT</pubDate>
</item>
<item>
<title>Duplicate announcement</title>
<link>https://www.federalregister.gov/documents/2023/10/11/2023-22094/pfas-reporting#top</link>
</item>
<item>
<title>Relative link</title>
<link>/documents/2024/01/02/2024-00001/notice</link>
</item>
<item>
<title>No link</title>
</item>
<item>
<title>Mail link</title>
<link>mailto:docket@epa.gov</link>
</item>
</channel>
</rss>`

func TestDiscover(t *testing.T) {
	var ua string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = fmt.Fprint(w, agencyFeed)
	}))
	defer server.Close()

	d := NewDiscoverer(5*time.Second, "regscout-test", nil)
	entries, err := d.Discover(context.Background(), server.URL+"/feed.rss", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ua != "regscout-test" {
		t.Errorf("expected user agent regscout-test, got %q", ua)
	}

	want := []string{
		"https://www.federalregister.gov/documents/2023/10/11/2023-22094/pfas-reporting",
		server.URL + "/documents/2024/01/02/2024-00001/notice",
	}
	got := URLs(entries)
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d: expected %s, got %s", i, want[i], got[i])
		}
	}

	if entries[0].Title != "TSCA Section 8(a)(7) Reporting for PFAS" {
		t.Errorf("title not trimmed: %q", entries[0].Title)
	}
	if entries[0].Published == nil || entries[0].Published.Year() != 2023 {
		t.Errorf("expected 2023 publish date, got %v", entries[0].Published)
	}
	if entries[1].Published != nil {
		t.Errorf("expected no publish date, got %v", entries[1].Published)
	}
}

func TestDiscover_Limit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, agencyFeed)
	}))
	defer server.Close()

	d := NewDiscoverer(5*time.Second, "regscout-test", nil)
	entries, err := d.Discover(context.Background(), server.URL, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
}

func TestDiscover_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	d := NewDiscoverer(5*time.Second, "regscout-test", nil)
	_, err := d.Discover(context.Background(), server.URL, 0)
	if err == nil {
		t.Fatal("expected error for 404 feed")
	}
	if !strings.Contains(err.Error(), "fetching feed") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestEntries_AtomLinks(t *testing.T) {
	atom := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
<title>ECHA news</title>
<entry>
<title>Restriction proposal</title>
<link href="https://echa.europa.eu/-/restriction-proposal"/>
<updated>2024-02-07T10:00:00Z</updated>
</entry>
</feed>`

	parsed, err := gofeed.NewParser().ParseString(atom)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	entries := Entries(parsed, "https://echa.europa.eu/feed", 0)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].URL != "https://echa.europa.eu/-/restriction-proposal" {
		t.Errorf("unexpected URL %s", entries[0].URL)
	}
	if entries[0].Published == nil {
		t.Error("expected updated date to stand in for published")
	}
}
