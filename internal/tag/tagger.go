// Package tag labels regulatory text with topical keywords.
package tag

import (
	"strings"

	"github.com/ppiankov/regscout/internal/model"
)

// Vocabulary is the ordered keyword list; output follows this order
var Vocabulary = []model.Tag{
	{Keyword: "pfas", Category: model.CategoryRegulatedSubstance},
	{Keyword: "textile", Category: model.CategoryProductType},
	{Keyword: "exemption", Category: model.CategoryCompliance},
	{Keyword: "penalty", Category: model.CategoryEnforcement},
	{Keyword: "reporting", Category: model.CategoryRequirement},
}

// Tagger matches keywords as case-insensitive substrings. "textiles" matches
// "textile"; no word-boundary check is applied.
type Tagger struct {
	vocabulary []model.Tag
}

// New creates a tagger over the default vocabulary
func New() *Tagger {
	return &Tagger{vocabulary: Vocabulary}
}

// Tag returns one tag per vocabulary keyword present in text, in vocabulary order.
// The result is never nil.
func (t *Tagger) Tag(text string) []model.Tag {
	lower := strings.ToLower(text)

	tags := make([]model.Tag, 0, len(t.vocabulary))
	for _, v := range t.vocabulary {
		if strings.Contains(lower, v.Keyword) {
			tags = append(tags, v)
		}
	}
	return tags
}
