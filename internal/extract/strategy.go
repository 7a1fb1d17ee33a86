package extract

import (
	"context"

	"github.com/ppiankov/regscout/internal/model"
)

// Strategy produces the nine-field set for a document
type Strategy interface {
	Name() string
	Extract(ctx context.Context, text, sourceURL string) (model.FieldSet, error)
}

// RuleStrategy is the default Strategy backed by the pattern rules
type RuleStrategy struct {
	extractor *FieldExtractor
}

// NewRuleStrategy wraps a FieldExtractor
func NewRuleStrategy(extractor *FieldExtractor) *RuleStrategy {
	if extractor == nil {
		extractor = NewFieldExtractor(DefaultMinTextLength)
	}
	return &RuleStrategy{extractor: extractor}
}

// Name implements Strategy
func (s *RuleStrategy) Name() string {
	return "rules"
}

// Extract implements Strategy. It only fails when ctx is already done.
func (s *RuleStrategy) Extract(ctx context.Context, text, sourceURL string) (model.FieldSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.extractor.Extract(text, sourceURL), nil
}

// Extractor exposes the underlying rule extractor
func (s *RuleStrategy) Extractor() *FieldExtractor {
	return s.extractor
}
