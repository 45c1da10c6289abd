package contract

import "context"

// Responder sends an ordered message sequence to a language model and
// returns its raw text reply. Distinct instances carry distinct output
// token budgets (turn replies vs summarization vs preload).
type Responder interface {
	Respond(ctx context.Context, conversation []Message) (string, error)
}

// Retriever is the knowledge-retrieval collaborator: given a query string
// it returns ranked text snippets with source/page metadata. It may return
// an empty slice.
type Retriever interface {
	Search(ctx context.Context, query string) ([]RetrievedDoc, error)
}

// ReportSink persists terminal call reports. Sink failures must never fail
// the turn that produced the report.
type ReportSink interface {
	Save(ctx context.Context, report CallReport) error
}
