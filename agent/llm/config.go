// Package llm derives per-task model configurations from one Azure OpenAI
// deployment. Tasks differ only in their output token budget: turn replies
// stay short for voice, summaries and quote digests get more room.
package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "callflow/agent/contract"
	azureopenaix "callflow/pkg/azureopenai"
)

type Task string

const (
	TaskTurn    Task = "turn"
	TaskSummary Task = "summary"
	TaskQuote   Task = "quote"
)

type Config struct {
	Endpoint       string        `envconfig:"ENDPOINT" split_words:"true" required:"true"`
	APIKey         string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Deployment     string        `envconfig:"DEPLOYMENT" split_words:"true" required:"true"`
	APIVersion     string        `envconfig:"API_VERSION" split_words:"true" default:"2024-06-01"`
	Temperature    float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.7"`
	Timeout        time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	EmbeddingModel string        `envconfig:"EMBEDDING_MODEL" split_words:"true" default:"text-embedding-3-small"`

	TurnMaxTokens    int `envconfig:"TURN_MAX_TOKENS" split_words:"true" default:"90"`
	SummaryMaxTokens int `envconfig:"SUMMARY_MAX_TOKENS" split_words:"true" default:"512"`
	QuoteMaxTokens   int `envconfig:"QUOTE_MAX_TOKENS" split_words:"true" default:"400"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: azure openai api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Endpoint) == "" {
		return fmt.Errorf("%w: azure openai endpoint is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Deployment) == "" {
		return fmt.Errorf("%w: azure openai deployment is required", contractx.ErrValidation)
	}
	return nil
}

// AzureFor returns the model configuration for one task. Each task gets
// its own explicitly constructed model instance; nothing is shared as
// ambient global state.
func (c Config) AzureFor(task Task) azureopenaix.Config {
	maxTokens := c.TurnMaxTokens
	switch task {
	case TaskSummary:
		maxTokens = c.SummaryMaxTokens
	case TaskQuote:
		maxTokens = c.QuoteMaxTokens
	}
	if maxTokens <= 0 {
		maxTokens = 90
	}

	return azureopenaix.Config{
		Endpoint:       strings.TrimSpace(c.Endpoint),
		APIKey:         strings.TrimSpace(c.APIKey),
		Deployment:     strings.TrimSpace(c.Deployment),
		APIVersion:     strings.TrimSpace(c.APIVersion),
		MaxTokens:      &maxTokens,
		Temperature:    c.Temperature,
		Timeout:        c.Timeout,
		EmbeddingModel: strings.TrimSpace(c.EmbeddingModel),
	}
}
