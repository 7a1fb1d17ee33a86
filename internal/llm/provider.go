package llm

import (
	"context"
	"fmt"

	"github.com/ppiankov/regscout/internal/model"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Answer responds to one extraction question over a document
	Answer(ctx context.Context, req AnswerRequest) (*AnswerResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// AnswerRequest is one question asked about one document
type AnswerRequest struct {
	Field    model.FieldName
	Question string

	// Document is the cleaned text, already trimmed to the context budget
	Document string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// AnswerResponse is the provider's answer with its self-reported score
type AnswerResponse struct {
	Answer     string
	Confidence float64
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama's /v1)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Model:     "",
		Timeout:   30,
		MaxTokens: 300,
	}
}

// Questions are asked once per field, in canonical field order
var Questions = map[model.FieldName]string{
	model.FieldBillName:        "What is the name or citation of this regulation or rule?",
	model.FieldDocketNumber:    "What is the docket number for this rule?",
	model.FieldJurisdiction:    "Which agency or country issued this regulation?",
	model.FieldOverview:        "Summarize the purpose of this regulation in 2 sentences.",
	model.FieldRequirements:    "What are the reporting or compliance requirements for manufacturers?",
	model.FieldPenalties:       "What are the penalties for non-compliance?",
	model.FieldKeyDates:        "What are the key dates, including deadlines and effective dates?",
	model.FieldCoveredProducts: "Which products or substances are covered by this regulation?",
	model.FieldExemptions:      "What exemptions or exclusions are included in this regulation?",
}

// BuildPrompt constructs the extraction prompt for one question
func BuildPrompt(req AnswerRequest) string {
	return fmt.Sprintf(`Answer the question using ONLY the regulatory document below.

RULES:
1. Quote or closely paraphrase the document. Do not use outside knowledge.
2. If the document does not answer the question, reply with the answer %q and confidence 0.
3. Reply with a single JSON object: {"answer": "<text>", "confidence": <number between 0 and 1>}

Question: %s

Document:
"""
%s
"""`, model.Sentinel(req.Field), req.Question, req.Document)
}
