// Package preload warms the quotation summary in the background so the
// first turn of a call never waits on the pricing service.
package preload

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"callflow/agent/contract"
	"callflow/agent/prompt"
)

// QuoteSource provides the raw quotation payload. Satisfied by
// quote.Client.
type QuoteSource interface {
	Fetch(ctx context.Context) (json.RawMessage, error)
}

// Result is the outcome of one preload run. OK is false when the fetch or
// the summarization failed; the summary is then empty and callers fall
// back to their unavailable text.
type Result struct {
	Summary string
	OK      bool
}

// Loader fetches and summarizes the quotation exactly once. The result is
// write-once: Start publishes it and Snapshot reads it without blocking.
type Loader struct {
	source QuoteSource
	model  contract.Responder

	once   sync.Once
	done   chan struct{}
	result Result
}

func NewLoader(source QuoteSource, model contract.Responder) *Loader {
	return &Loader{
		source: source,
		model:  model,
		done:   make(chan struct{}),
	}
}

// Start kicks off the preload in a goroutine. Subsequent calls are no-ops.
func (l *Loader) Start(ctx context.Context) {
	if l == nil {
		return
	}
	l.once.Do(func() {
		go l.run(ctx)
	})
}

func (l *Loader) run(ctx context.Context) {
	raw, err := l.source.Fetch(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("quotation fetch failed, call proceeds without quote")
		l.complete(Result{})
		return
	}

	summary, err := l.model.Respond(ctx, []contract.Message{
		{Role: contract.RoleUser, Content: prompt.RenderQuoteSummary(raw)},
	})
	if err != nil {
		log.Warn().Err(err).Msg("quotation summarization failed, call proceeds without quote")
		l.complete(Result{})
		return
	}

	summary = strings.TrimSpace(summary)
	l.complete(Result{Summary: summary, OK: summary != ""})
}

func (l *Loader) complete(r Result) {
	l.result = r
	close(l.done)
}

// Snapshot returns the preloaded summary if it is ready. It never blocks:
// a run still in flight reports not-ready, and a nil Loader is valid.
func (l *Loader) Snapshot() (string, bool) {
	if l == nil {
		return "", false
	}
	select {
	case <-l.done:
		return l.result.Summary, l.result.OK
	default:
		return "", false
	}
}
