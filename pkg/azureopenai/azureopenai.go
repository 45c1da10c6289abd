// Package azureopenai builds chat models and an embeddings client against
// an Azure OpenAI deployment.
package azureopenai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openaimodel "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
	"github.com/openai/openai-go/option"
)

type ModelBuilder interface {
	New(ctx context.Context) (model.ToolCallingChatModel, error)
}

var _ ModelBuilder = (*Config)(nil)

type Config struct {
	Endpoint       string        `envconfig:"ENDPOINT" split_words:"true" required:"true"`
	APIKey         string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Deployment     string        `envconfig:"DEPLOYMENT" split_words:"true" required:"true"`
	APIVersion     string        `envconfig:"API_VERSION" split_words:"true" default:"2024-06-01"`
	MaxTokens      *int          `envconfig:"MAX_TOKENS" split_words:"true"`
	Temperature    float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.7"`
	Timeout        time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	EmbeddingModel string        `envconfig:"EMBEDDING_MODEL" split_words:"true" default:"text-embedding-3-small"`
}

// New creates a chat model bound to the configured deployment.
func (c *Config) New(ctx context.Context) (model.ToolCallingChatModel, error) {
	conf := &openaimodel.ChatModelConfig{
		ByAzure:     true,
		BaseURL:     strings.TrimRight(strings.TrimSpace(c.Endpoint), "/"),
		APIKey:      strings.TrimSpace(c.APIKey),
		APIVersion:  strings.TrimSpace(c.APIVersion),
		Model:       strings.TrimSpace(c.Deployment),
		MaxTokens:   c.MaxTokens,
		Temperature: &c.Temperature,
		Timeout:     c.Timeout,
	}

	m, err := openaimodel.NewChatModel(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("azureopenai: create chat model: %w", err)
	}
	return m, nil
}

// NewClient creates an OpenAI SDK client configured for the Azure endpoint.
func NewClient(cfg Config) *openaisdk.Client {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil
	}

	opts := []option.RequestOption{
		azure.WithEndpoint(strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/"), strings.TrimSpace(cfg.APIVersion)),
		azure.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
	}

	client := openaisdk.NewClient(opts...)
	return &client
}

// EmbeddingClient computes dense query embeddings for retrieval.
type EmbeddingClient struct {
	client *openaisdk.Client
	model  string
}

func NewEmbeddingClient(cfg Config) (*EmbeddingClient, error) {
	client := NewClient(cfg)
	if client == nil {
		return nil, errors.New("azureopenai: api key is required")
	}
	modelName := strings.TrimSpace(cfg.EmbeddingModel)
	if modelName == "" {
		return nil, errors.New("azureopenai: embedding model is required")
	}
	return &EmbeddingClient{client: client, model: modelName}, nil
}

func (e *EmbeddingClient) Embed(ctx context.Context, text string) ([]float64, error) {
	resp, err := e.client.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
		Input: openaisdk.EmbeddingNewParamsInputUnion{
			OfString: openaisdk.String(text),
		},
		Model: openaisdk.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("azureopenai: embed query: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("azureopenai: embedding response has no data")
	}
	return resp.Data[0].Embedding, nil
}
