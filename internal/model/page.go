package model

// RawPage is the cleaned text of a fetched document plus its source metadata
type RawPage struct {
	Title       string   `json:"title"`                // <title> text, "Untitled" when missing
	URL         string   `json:"url"`                  // URL that was requested
	SourceTag   string   `json:"source"`               // Caller-supplied source label (e.g., "EPA")
	CleanedText string   `json:"cleanedText"`          // Normalized plain text of the main content
	References  []string `json:"references,omitempty"` // Links to other regulatory documents
}
