package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/regscout/internal/model"
)

// MockProcessor implements Processor and PageFetcher
type MockProcessor struct {
	FailURLs map[string]bool
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (m *MockProcessor) track() func() {
	n := m.inFlight.Add(1)
	for {
		old := m.maxSeen.Load()
		if n <= old || m.maxSeen.CompareAndSwap(old, n) {
			break
		}
	}
	time.Sleep(10 * time.Millisecond) // Simulate work
	return func() { m.inFlight.Add(-1) }
}

func (m *MockProcessor) Process(ctx context.Context, url string) (*model.RegulationRecord, error) {
	defer m.track()()
	if m.FailURLs[url] {
		return nil, errors.New("fetch failed")
	}
	return &model.RegulationRecord{ID: url, SourceURLs: []string{url}}, nil
}

func (m *MockProcessor) FetchPage(ctx context.Context, url string) (*model.RawPage, error) {
	defer m.track()()
	if m.FailURLs[url] {
		return nil, errors.New("fetch failed")
	}
	return &model.RawPage{URL: url, Title: "Untitled", CleanedText: "text"}, nil
}

func writeURLFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "urls.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBatchProcessor_ProcessURLs(t *testing.T) {
	processor := NewBatchProcessor(&MockProcessor{}, 2)

	urls := []string{"https://www.epa.gov/a", "https://www.fda.gov/b", "https://www.osha.gov/c"}

	results := processor.ProcessURLs(context.Background(), urls)

	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}

	for _, res := range results {
		if res.Error != nil {
			t.Errorf("unexpected error for %s: %v", res.URL, res.Error)
		}
		if res.Record == nil || res.Record.ID != res.URL {
			t.Errorf("expected record for %s", res.URL)
		}
	}
}

func TestBatchProcessor_FailuresDropped(t *testing.T) {
	mock := &MockProcessor{FailURLs: map[string]bool{"https://www.epa.gov/bad": true}}
	processor := NewBatchProcessor(mock, 2)

	results := processor.ProcessURLs(context.Background(), []string{
		"https://www.epa.gov/good",
		"https://www.epa.gov/bad",
		"https://www.epa.gov/also-good",
	})

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	records := Records(results)
	if len(records) != 2 {
		t.Fatalf("expected 2 records after dropping failures, got %d", len(records))
	}
	for _, r := range records {
		if strings.HasSuffix(r.ID, "/bad") {
			t.Error("failed URL should not produce a record")
		}
	}
}

func TestBatchProcessor_ProcessURLs_Empty(t *testing.T) {
	processor := NewBatchProcessor(&MockProcessor{}, 2)

	results := processor.ProcessURLs(context.Background(), []string{})
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestBatchProcessor_FetchMany(t *testing.T) {
	mock := &MockProcessor{FailURLs: map[string]bool{"https://www.epa.gov/3": true}}
	processor := NewBatchProcessor(mock, 3)

	var urls []string
	for i := 0; i < 12; i++ {
		urls = append(urls, "https://www.epa.gov/"+string(rune('a'+i)))
	}
	urls = append(urls, "https://www.epa.gov/3")

	results := processor.FetchMany(context.Background(), mock, urls)

	if len(results) != len(urls) {
		t.Fatalf("expected %d results, got %d", len(urls), len(results))
	}

	var got []string
	failures := 0
	for _, r := range results {
		if r.Error != nil {
			failures++
			if r.Page != nil {
				t.Error("expected no page alongside an error")
			}
			continue
		}
		got = append(got, r.Page.URL)
	}
	if failures != 1 {
		t.Errorf("expected 1 failure, got %d", failures)
	}

	sort.Strings(got)
	if len(got) != 12 || got[0] != "https://www.epa.gov/a" {
		t.Errorf("unexpected pages: %v", got)
	}

	if peak := mock.maxSeen.Load(); peak > 3 {
		t.Errorf("expected at most 3 concurrent fetches, saw %d", peak)
	}
}

func TestBatchProcessor_CanceledURLsReportedAsFailures(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	processor := NewBatchProcessor(&MockProcessor{}, 2)
	urls := []string{"https://www.epa.gov/a", "https://www.epa.gov/b", "https://www.epa.gov/c"}

	results := processor.ProcessURLs(ctx, urls)
	if len(results) != len(urls) {
		t.Fatalf("expected one result per URL, got %d", len(results))
	}

	var got []string
	for _, r := range results {
		if !errors.Is(r.Error, context.Canceled) {
			t.Errorf("%s: expected context.Canceled, got %v", r.URL, r.Error)
		}
		got = append(got, r.URL)
	}
	sort.Strings(got)
	if strings.Join(got, ",") != strings.Join(urls, ",") {
		t.Errorf("expected every URL reported, got %v", got)
	}
	if len(Records(results)) != 0 {
		t.Error("expected no records from canceled work")
	}
}

func TestReadURLsFromFile(t *testing.T) {
	content := `https://www.epa.gov/pfas
# comment
https://www.fda.gov/food
   
https://www.cpsc.gov/rules   `

	urls, err := ReadURLsFromFile(writeURLFile(t, content))
	if err != nil {
		t.Fatalf("ReadURLsFromFile failed: %v", err)
	}

	expected := []string{"https://www.epa.gov/pfas", "https://www.fda.gov/food", "https://www.cpsc.gov/rules"}
	if len(urls) != len(expected) {
		t.Fatalf("expected %d URLs, got %d", len(expected), len(urls))
	}

	for i, url := range urls {
		if url != expected[i] {
			t.Errorf("expected URL %s at index %d, got %s", expected[i], i, url)
		}
	}
}

func TestReadURLsFromFile_NonExistent(t *testing.T) {
	_, err := ReadURLsFromFile("non_existent_file.txt")
	if err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestProcessResult_GetError(t *testing.T) {
	r1 := &ProcessResult{URL: "https://www.epa.gov", Error: nil}
	if r1.GetError() != nil {
		t.Errorf("expected nil error, got %v", r1.GetError())
	}

	expected := errors.New("fetch failed")
	r2 := &ProcessResult{URL: "https://www.epa.gov", Error: expected}
	if r2.GetError() != expected {
		t.Errorf("expected %v, got %v", expected, r2.GetError())
	}
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	path := writeURLFile(t, "https://www.epa.gov/a\nhttps://www.epa.gov/b\n# comment\n\nhttps://www.epa.gov/c\n")

	processor := NewBatchProcessor(&MockProcessor{}, 2)

	results, err := processor.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}

	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}
}

func TestBatchProcessor_ProcessFile_NonExistent(t *testing.T) {
	processor := NewBatchProcessor(&MockProcessor{}, 2)

	_, err := processor.ProcessFile(context.Background(), "no_such_file.txt")
	if err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestBatchProcessor_ProcessFile_Empty(t *testing.T) {
	processor := NewBatchProcessor(&MockProcessor{}, 2)

	results, err := processor.ProcessFile(context.Background(), writeURLFile(t, ""))
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected 0 results for empty file, got %d", len(results))
	}
}

func TestReadURLsFromFile_Deduplication(t *testing.T) {
	urls, err := ReadURLsFromFile(writeURLFile(t, "https://www.epa.gov/pfas\nhttps://www.epa.gov/pfas"))
	if err != nil {
		t.Fatalf("ReadURLsFromFile failed: %v", err)
	}

	if len(urls) != 1 {
		t.Errorf("expected 1 URL after deduplication, got %d", len(urls))
	}
}
