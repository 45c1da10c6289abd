// Package qdrant is a minimal REST client for Qdrant point search, scoped
// to what the retrieval path needs.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTopK          = 5
	maxResponseSizeBytes = 2 << 20
)

type Config struct {
	URL        string        `envconfig:"URL" split_words:"true" required:"true"`
	APIKey     string        `envconfig:"API_KEY" split_words:"true"`
	Collection string        `envconfig:"COLLECTION" split_words:"true" default:"insurance_docs"`
	TopK       int           `envconfig:"TOP_K" split_words:"true" default:"5"`
	Timeout    time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

// Option customizes a Client.
type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func WithTopK(k int) Option {
	return func(c *Client) {
		if k > 0 {
			c.topK = k
		}
	}
}

// Client searches one Qdrant collection over its REST API.
type Client struct {
	baseURL    string
	apiKey     string
	collection string
	topK       int
	httpClient *http.Client
}

func NewClient(cfg Config, opts ...Option) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if baseURL == "" {
		return nil, errors.New("qdrant url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid qdrant url: %w", err)
	}

	collection := strings.TrimSpace(cfg.Collection)
	if collection == "" {
		return nil, errors.New("qdrant collection is required")
	}

	topK := cfg.TopK
	if topK <= 0 {
		topK = defaultTopK
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &Client{
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		collection: collection,
		topK:       topK,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// Point is one scored search hit with the payload fields the call agent
// uses. Missing payload values fall back to the ingestion defaults.
type Point struct {
	Score   float64
	Source  string
	Page    string
	Content string
}

type searchRequest struct {
	Vector      []float64 `json:"vector"`
	Limit       int       `json:"limit"`
	WithPayload bool      `json:"with_payload"`
}

type searchResponse struct {
	Result []struct {
		Score   float64 `json:"score"`
		Payload struct {
			Source  string `json:"source"`
			Page    any    `json:"page"`
			Content string `json:"content"`
		} `json:"payload"`
	} `json:"result"`
	Status any `json:"status"`
}

// Search runs a vector search and returns hits in Qdrant's rank order.
func (c *Client) Search(ctx context.Context, vector []float64) ([]Point, error) {
	if len(vector) == 0 {
		return nil, errors.New("qdrant: empty query vector")
	}

	body, err := json.Marshal(searchRequest{
		Vector:      vector,
		Limit:       c.topK,
		WithPayload: true,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: marshal search request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/collections/%s/points/search", c.baseURL, url.PathEscape(c.collection))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("qdrant: build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("qdrant: execute search: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("qdrant: read search response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("qdrant: http status=%d body=%s", resp.StatusCode, string(raw))
	}

	var parsed searchResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("qdrant: decode search response: %w", err)
	}

	points := make([]Point, 0, len(parsed.Result))
	for _, hit := range parsed.Result {
		source := strings.TrimSpace(hit.Payload.Source)
		if source == "" {
			source = "Unknown"
		}
		page := "N/A"
		if hit.Payload.Page != nil {
			page = fmt.Sprint(hit.Payload.Page)
		}
		points = append(points, Point{
			Score:   hit.Score,
			Source:  source,
			Page:    page,
			Content: hit.Payload.Content,
		})
	}
	return points, nil
}
