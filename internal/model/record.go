package model

import (
	"encoding/json"
	"fmt"
)

// Category is the topical class of a tag keyword
type Category string

const (
	CategoryRegulatedSubstance Category = "regulated_substance"
	CategoryProductType        Category = "product_type"
	CategoryCompliance         Category = "compliance"
	CategoryEnforcement        Category = "enforcement"
	CategoryRequirement        Category = "requirement"
)

// Tag is a (keyword, category) pair found in a document
type Tag struct {
	Keyword  string
	Category Category
}

// MarshalJSON encodes the tag as a two-element array, the shape the review console reads
func (t Tag) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{t.Keyword, string(t.Category)})
}

// UnmarshalJSON decodes a [keyword, category] pair
func (t *Tag) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("decode tag: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("decode tag: expected 2 elements, got %d", len(pair))
	}
	t.Keyword = pair[0]
	t.Category = Category(pair[1])
	return nil
}

// RegulationRecord is the persisted unit served to the front end
type RegulationRecord struct {
	ID           string   `json:"id"`           // Derived from the bill name
	Jurisdiction string   `json:"jurisdiction"` // Issuing agency
	Bill         string   `json:"bill"`         // Citation or title
	Docket       string   `json:"docket"`       // Docket number or sentinel
	Status       string   `json:"status"`       // e.g., "final", "proposed"
	Confidence   float64  `json:"confidence"`   // Mean of field confidences, 2 decimals
	LastUpdated  string   `json:"lastUpdated"`  // YYYY-MM-DD
	SourceURLs   []string `json:"sourceUrls"`
	Fields       FieldSet `json:"fields"`
	Tags         []Tag    `json:"tags"`
	References   []string `json:"references,omitempty"` // Outbound links to other regulatory documents
}
