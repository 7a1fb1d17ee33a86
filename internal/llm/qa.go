package llm

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/ppiankov/regscout/internal/extract"
	"github.com/ppiankov/regscout/internal/model"
)

// maxDocumentRunes bounds the text sent with each question
const maxDocumentRunes = 12_000

// QAStrategy asks the provider one question per field. Any field the provider
// cannot answer falls back to the rule-based result for that field.
type QAStrategy struct {
	provider Provider
	rules    *extract.FieldExtractor
	config   Config
	logger   *zap.Logger
}

// NewQAStrategy creates a question-answering strategy
func NewQAStrategy(provider Provider, rules *extract.FieldExtractor, config Config, logger *zap.Logger) *QAStrategy {
	if rules == nil {
		rules = extract.NewFieldExtractor(extract.DefaultMinTextLength)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QAStrategy{
		provider: provider,
		rules:    rules,
		config:   config,
		logger:   logger,
	}
}

// Name implements extract.Strategy
func (s *QAStrategy) Name() string {
	if s.provider == nil {
		return "llm"
	}
	return "llm:" + s.provider.Name()
}

// Ready reports an error when the provider cannot be reached. Without a
// provider the strategy is rules-only and always ready.
func (s *QAStrategy) Ready(ctx context.Context) error {
	if s.provider == nil {
		return nil
	}
	if !s.provider.IsAvailable(ctx) {
		return fmt.Errorf("llm provider %s is not reachable", s.provider.Name())
	}
	return nil
}

// Fallback returns the rule-based strategy this strategy degrades to
func (s *QAStrategy) Fallback() extract.Strategy {
	return extract.NewRuleStrategy(s.rules)
}

// Extract implements extract.Strategy
func (s *QAStrategy) Extract(ctx context.Context, text, sourceURL string) (model.FieldSet, error) {
	if s.rules.Skipped(text) {
		return model.EmptyFieldSet(), nil
	}

	fallback := s.rules.Extract(text, sourceURL)
	if s.provider == nil {
		return fallback, nil
	}

	document := extract.Truncate(text, maxDocumentRunes, maxDocumentRunes/10)

	fields := make(model.FieldSet, len(Questions))
	for _, name := range model.FieldNames() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := s.provider.Answer(ctx, AnswerRequest{
			Field:     name,
			Question:  Questions[name],
			Document:  document,
			Model:     s.config.Model,
			MaxTokens: s.config.MaxTokens,
		})
		if err != nil || resp == nil || resp.Answer == "" || resp.Answer == model.Sentinel(name) {
			if err != nil {
				s.logger.Warn("llm answer failed, using rule result",
					zap.String("field", string(name)),
					zap.String("provider", s.provider.Name()),
					zap.Error(err))
			}
			fields[name] = fallback.Get(name)
			continue
		}

		fields[name] = model.FieldResult{
			Answer:     resp.Answer,
			Confidence: math.Round(resp.Confidence*100) / 100,
		}
	}

	return fields, nil
}
