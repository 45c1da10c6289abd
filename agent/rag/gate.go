// Package rag retrieves knowledge-base context for a turn and formats it
// for prompt injection.
package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"callflow/agent/contract"
)

// NoResultsSentinel is injected verbatim when retrieval finds nothing, so
// the model knows the knowledge base was consulted and came back empty.
const NoResultsSentinel = "No relevant documents were found in the knowledge base."

// Gate wraps a retriever and degrades to the sentinel instead of failing
// the turn. A nil Gate is valid and always returns the sentinel.
type Gate struct {
	retriever contract.Retriever
}

func NewGate(retriever contract.Retriever) *Gate {
	return &Gate{retriever: retriever}
}

// Retrieve searches the knowledge base and renders the hits as numbered
// document blocks. Errors and empty result sets both yield the sentinel;
// retrieval is best effort and must never abort the conversation.
func (g *Gate) Retrieve(ctx context.Context, query string) string {
	if g == nil || g.retriever == nil {
		return NoResultsSentinel
	}

	docs, err := g.retriever.Search(ctx, query)
	if err != nil {
		log.Warn().Err(err).Msg("knowledge base search failed, continuing without context")
		return NoResultsSentinel
	}
	if len(docs) == 0 {
		return NoResultsSentinel
	}

	blocks := make([]string, 0, len(docs))
	for i, doc := range docs {
		blocks = append(blocks, fmt.Sprintf("=== Retrieved Document %d ===\nSource: %s, Page: %s\n%s",
			i+1, doc.Source, doc.Page, doc.Content))
	}
	return strings.Join(blocks, "\n\n")
}
