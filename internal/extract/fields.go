package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/regscout/internal/model"
)

// DefaultMinTextLength is the shortest cleaned text worth running rules over
const DefaultMinTextLength = 100

// FieldExtractor runs one independent rule per field over cleaned text
type FieldExtractor struct {
	minTextLength int
}

// NewFieldExtractor creates an extractor; minTextLength <= 0 uses the default
func NewFieldExtractor(minTextLength int) *FieldExtractor {
	if minTextLength <= 0 {
		minTextLength = DefaultMinTextLength
	}
	return &FieldExtractor{minTextLength: minTextLength}
}

// Skipped reports whether text is too short to extract from with default settings
func Skipped(text string) bool {
	return NewFieldExtractor(DefaultMinTextLength).Skipped(text)
}

// Skipped reports whether Extract would return the empty field set for text
func (e *FieldExtractor) Skipped(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) < e.minTextLength
}

// Extract returns all nine fields. It never fails: a rule that finds nothing
// yields the field's sentinel answer with confidence 0.
func (e *FieldExtractor) Extract(text, sourceURL string) model.FieldSet {
	if e.Skipped(text) {
		return model.EmptyFieldSet()
	}

	doc := newRuleInput(text, sourceURL)

	fields := make(model.FieldSet, len(fieldRules))
	for _, r := range fieldRules {
		fields[r.name] = r.fn(doc)
	}
	return fields.Complete()
}

// ruleInput carries the shared, read-only views of one document
type ruleInput struct {
	text      string
	host      string
	sentences []string
}

func newRuleInput(text, sourceURL string) *ruleInput {
	return &ruleInput{
		text:      text,
		host:      hostOf(sourceURL),
		sentences: splitSentences(text),
	}
}

// matching returns up to limit sentences for which match is true
func (in *ruleInput) matching(match func(string) bool, limit int) []string {
	var out []string
	for _, s := range in.sentences {
		if match(s) {
			out = append(out, s)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

type fieldRule struct {
	name model.FieldName
	fn   func(*ruleInput) model.FieldResult
}

var fieldRules = []fieldRule{
	{model.FieldBillName, billNameRule},
	{model.FieldDocketNumber, docketNumberRule},
	{model.FieldJurisdiction, jurisdictionRule},
	{model.FieldOverview, overviewRule},
	{model.FieldRequirements, requirementsRule},
	{model.FieldPenalties, penaltiesRule},
	{model.FieldKeyDates, keyDatesRule},
	{model.FieldCoveredProducts, coveredProductsRule},
	{model.FieldExemptions, exemptionsRule},
}

func found(answer string, confidence float64) model.FieldResult {
	return model.FieldResult{Answer: answer, Confidence: confidence}
}
