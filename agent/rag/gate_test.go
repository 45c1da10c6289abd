package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"callflow/agent/contract"
	"callflow/pkg/qdrant"
)

type fakeRetriever struct {
	docs []contract.RetrievedDoc
	err  error
}

func (f *fakeRetriever) Search(_ context.Context, _ string) ([]contract.RetrievedDoc, error) {
	return f.docs, f.err
}

func TestGateFormatsDocuments(t *testing.T) {
	t.Parallel()

	gate := NewGate(&fakeRetriever{docs: []contract.RetrievedDoc{
		{Source: "policy.pdf", Page: "3", Content: "Deductibles apply per claim."},
		{Source: "faq.md", Page: "N/A", Content: "Coverage starts at binding."},
	}})

	got := gate.Retrieve(context.Background(), "what is my deductible")

	if !strings.Contains(got, "=== Retrieved Document 1 ===\nSource: policy.pdf, Page: 3\nDeductibles apply per claim.") {
		t.Errorf("first document block malformed:\n%s", got)
	}
	if !strings.Contains(got, "=== Retrieved Document 2 ===\nSource: faq.md, Page: N/A\nCoverage starts at binding.") {
		t.Errorf("second document block malformed:\n%s", got)
	}
	if strings.Contains(got, NoResultsSentinel) {
		t.Error("sentinel must not appear when documents were found")
	}
}

func TestGateSentinelOnEmpty(t *testing.T) {
	t.Parallel()

	gate := NewGate(&fakeRetriever{docs: nil})
	if got := gate.Retrieve(context.Background(), "anything"); got != NoResultsSentinel {
		t.Errorf("expected sentinel, got %q", got)
	}
}

func TestGateSentinelOnError(t *testing.T) {
	t.Parallel()

	gate := NewGate(&fakeRetriever{err: errors.New("qdrant down")})
	if got := gate.Retrieve(context.Background(), "anything"); got != NoResultsSentinel {
		t.Errorf("expected sentinel on retriever error, got %q", got)
	}
}

func TestNilGateIsSafe(t *testing.T) {
	t.Parallel()

	var gate *Gate
	if got := gate.Retrieve(context.Background(), "anything"); got != NoResultsSentinel {
		t.Errorf("expected sentinel on nil gate, got %q", got)
	}
}

type fakeEmbedder struct {
	vector []float64
	err    error
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) ([]float64, error) {
	return f.vector, f.err
}

type fakeStore struct {
	gotVector []float64
	points    []qdrant.Point
	err       error
}

func (f *fakeStore) Search(_ context.Context, vector []float64) ([]qdrant.Point, error) {
	f.gotVector = vector
	return f.points, f.err
}

func TestQdrantRetrieverMapsPoints(t *testing.T) {
	t.Parallel()

	store := &fakeStore{points: []qdrant.Point{
		{Score: 0.9, Source: "handbook.pdf", Page: "7", Content: "claims process"},
	}}
	retriever, err := NewQdrantRetriever(&fakeEmbedder{vector: []float64{0.1, 0.2}}, store)
	if err != nil {
		t.Fatalf("NewQdrantRetriever: %v", err)
	}

	docs, err := retriever.Search(context.Background(), "claims")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(store.gotVector) != 2 {
		t.Errorf("expected embedded vector forwarded, got %v", store.gotVector)
	}
	if len(docs) != 1 || docs[0].Source != "handbook.pdf" || docs[0].Page != "7" {
		t.Errorf("unexpected docs: %+v", docs)
	}
}

func TestQdrantRetrieverEmbedFailure(t *testing.T) {
	t.Parallel()

	retriever, err := NewQdrantRetriever(&fakeEmbedder{err: errors.New("rate limited")}, &fakeStore{})
	if err != nil {
		t.Fatalf("NewQdrantRetriever: %v", err)
	}
	if _, err := retriever.Search(context.Background(), "claims"); err == nil {
		t.Fatal("expected error when embedding fails")
	}
}
