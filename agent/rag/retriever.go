package rag

import (
	"context"
	"errors"
	"fmt"

	"callflow/agent/contract"
	"callflow/pkg/qdrant"
)

// Embedder turns a query string into a vector. Satisfied by
// azureopenai.EmbeddingClient.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Searcher is the vector store surface the retriever needs.
type Searcher interface {
	Search(ctx context.Context, vector []float64) ([]qdrant.Point, error)
}

// QdrantRetriever embeds the query and searches a Qdrant collection.
type QdrantRetriever struct {
	embedder Embedder
	store    Searcher
}

func NewQdrantRetriever(embedder Embedder, store Searcher) (*QdrantRetriever, error) {
	if embedder == nil {
		return nil, errors.New("rag: embedder is required")
	}
	if store == nil {
		return nil, errors.New("rag: vector store is required")
	}
	return &QdrantRetriever{embedder: embedder, store: store}, nil
}

func (r *QdrantRetriever) Search(ctx context.Context, query string) ([]contract.RetrievedDoc, error) {
	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	points, err := r.store.Search(ctx, vector)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	docs := make([]contract.RetrievedDoc, 0, len(points))
	for _, p := range points {
		docs = append(docs, contract.RetrievedDoc{
			Source:  p.Source,
			Page:    p.Page,
			Content: p.Content,
		})
	}
	return docs, nil
}
