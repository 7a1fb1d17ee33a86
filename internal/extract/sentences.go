package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxFragmentLength is the longest piece treated as an abbreviation such as "U.S."
const maxFragmentLength = 4

// splitSentences splits text into sentences (simple heuristic). Line breaks are
// hard boundaries; '.', '!' and '?' end a sentence when followed by whitespace.
func splitSentences(text string) []string {
	var sentences []string

	for _, line := range strings.Split(text, "\n") {
		var current strings.Builder

		for i, r := range line {
			current.WriteRune(r)

			if r == '.' || r == '!' || r == '?' {
				// Look ahead to avoid splitting on decimals like 704.3
				if i+1 < len(line) && (line[i+1] == ' ' || line[i+1] == '\t') {
					sentences = appendSentence(sentences, current.String())
					current.Reset()
				}
			}
		}

		if current.Len() > 0 {
			sentences = appendSentence(sentences, current.String())
		}
	}

	return sentences
}

func appendSentence(sentences []string, s string) []string {
	s = strings.TrimSpace(s)
	if isFragment(s) {
		return sentences
	}
	return append(sentences, s)
}

// isFragment reports pieces that cannot carry a rule match: abbreviations
// split off at their dot and pieces with no letters at all.
func isFragment(s string) bool {
	if utf8.RuneCountInString(s) <= maxFragmentLength {
		return true
	}
	return strings.IndexFunc(s, unicode.IsLetter) < 0
}

// paragraphs splits text into blank-line delimited blocks
func paragraphs(text string) []string {
	var blocks []string
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.TrimSpace(strings.ReplaceAll(block, "\n", " "))
		if block != "" {
			blocks = append(blocks, block)
		}
	}
	return blocks
}

// head returns at most n runes from the start of text
func head(text string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range text {
		if count == n {
			return text[:i]
		}
		count++
	}
	return text
}

// clip truncates to n runes and appends "..." when something was cut
func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(head(s, n)) + "..."
}
