package preload

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"callflow/agent/contract"
)

type fakeSource struct {
	payload json.RawMessage
	err     error
	block   chan struct{}
}

func (f *fakeSource) Fetch(_ context.Context) (json.RawMessage, error) {
	if f.block != nil {
		<-f.block
	}
	return f.payload, f.err
}

type fakeResponder struct {
	reply string
	err   error
	calls int
}

func (f *fakeResponder) Respond(_ context.Context, _ []contract.Message) (string, error) {
	f.calls++
	return f.reply, f.err
}

func waitReady(t *testing.T, l *Loader) (string, bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatal("preloader did not complete in time")
		default:
		}
		if summary, ok := l.Snapshot(); ok || completed(l) {
			return summary, ok
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func completed(l *Loader) bool {
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}

func TestLoaderPublishesSummary(t *testing.T) {
	t.Parallel()

	responder := &fakeResponder{reply: "Premium 420.50 per year, 12 month term."}
	loader := NewLoader(&fakeSource{payload: json.RawMessage(`{"premium":420.50}`)}, responder)
	loader.Start(context.Background())

	summary, ok := waitReady(t, loader)
	if !ok {
		t.Fatal("expected preload to succeed")
	}
	if summary != "Premium 420.50 per year, 12 month term." {
		t.Errorf("unexpected summary: %q", summary)
	}
}

func TestLoaderFetchFailure(t *testing.T) {
	t.Parallel()

	responder := &fakeResponder{reply: "should not be called"}
	loader := NewLoader(&fakeSource{err: errors.New("pricing service down")}, responder)
	loader.Start(context.Background())

	summary, ok := waitReady(t, loader)
	if ok || summary != "" {
		t.Errorf("expected empty not-ok result, got %q, %v", summary, ok)
	}
	if responder.calls != 0 {
		t.Errorf("summarizer must not run after fetch failure, got %d calls", responder.calls)
	}
}

func TestLoaderSummarizeFailure(t *testing.T) {
	t.Parallel()

	loader := NewLoader(
		&fakeSource{payload: json.RawMessage(`{}`)},
		&fakeResponder{err: errors.New("model unavailable")},
	)
	loader.Start(context.Background())

	if _, ok := waitReady(t, loader); ok {
		t.Error("expected not-ok result when summarization fails")
	}
}

func TestSnapshotBeforeCompletion(t *testing.T) {
	t.Parallel()

	block := make(chan struct{})
	loader := NewLoader(&fakeSource{payload: json.RawMessage(`{}`), block: block}, &fakeResponder{reply: "late"})
	loader.Start(context.Background())

	if summary, ok := loader.Snapshot(); ok || summary != "" {
		t.Errorf("expected not-ready snapshot, got %q, %v", summary, ok)
	}
	close(block)

	if _, ok := waitReady(t, loader); !ok {
		t.Error("expected preload to finish after unblocking")
	}
}

func TestStartIsIdempotent(t *testing.T) {
	t.Parallel()

	responder := &fakeResponder{reply: "once"}
	loader := NewLoader(&fakeSource{payload: json.RawMessage(`{}`)}, responder)
	loader.Start(context.Background())
	loader.Start(context.Background())
	loader.Start(context.Background())

	if _, ok := waitReady(t, loader); !ok {
		t.Fatal("expected preload to succeed")
	}
	if responder.calls != 1 {
		t.Errorf("expected a single summarization run, got %d", responder.calls)
	}
}

func TestNilLoaderIsSafe(t *testing.T) {
	t.Parallel()

	var loader *Loader
	loader.Start(context.Background())
	if summary, ok := loader.Snapshot(); ok || summary != "" {
		t.Errorf("nil loader must report not-ready, got %q, %v", summary, ok)
	}
}
