// Package orchestrator wires the turn pipeline into a compiled graph and
// exposes the single entry point the transport layer calls.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/google/uuid"

	"callflow/agent/contract"
	"callflow/agent/domain"
	"callflow/agent/nodes"
	"callflow/agent/preload"
	"callflow/agent/rag"
	"callflow/agent/summary"
)

const (
	nodeValidateRequest = "validate_request"
	nodeEnsureSession   = "ensure_session"
	nodeRetrieve        = "retrieve"
	nodeInvokeModel     = "invoke_model"
	nodeParseSignal     = "parse_signal"
	nodeSummarize       = "summarize"
	nodeFinalizeReply   = "finalize_reply"
)

// Orchestrator runs one conversational turn end to end.
type Orchestrator struct {
	deps   nodes.Deps
	runner compose.Runnable[*nodes.State, contract.TurnResponse]

	summaryResponder contract.Responder

	now   func() time.Time
	newID func() string
}

// Option overrides a collaborator, mainly for tests.
type Option func(*Orchestrator)

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(o *Orchestrator) {
		if newID != nil {
			o.newID = newID
		}
	}
}

// WithRetrievalGate attaches knowledge-base retrieval. Without it the
// retrieve step is a pass-through.
func WithRetrievalGate(gate *rag.Gate) Option {
	return func(o *Orchestrator) {
		o.deps.Gate = gate
	}
}

// WithPreloader attaches the background quotation loader consulted when a
// new session's system prompt is rendered.
func WithPreloader(loader *preload.Loader) Option {
	return func(o *Orchestrator) {
		o.deps.Preloader = loader
	}
}

// WithReportSink attaches best-effort call-report persistence.
func WithReportSink(sink contract.ReportSink) Option {
	return func(o *Orchestrator) {
		o.deps.Reports = sink
	}
}

// WithDefaultLanguage seeds new sessions with a language before the model
// has reported one.
func WithDefaultLanguage(lang string) Option {
	return func(o *Orchestrator) {
		o.deps.DefaultLanguage = lang
	}
}

// WithSummaryResponder uses a dedicated model for the terminal summary
// pass. Summaries need a larger output budget than voice turns.
func WithSummaryResponder(r contract.Responder) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.summaryResponder = r
		}
	}
}

func New(ctx context.Context, dom domain.Config, responder contract.Responder, opts ...Option) (*Orchestrator, error) {
	if err := dom.Validate(); err != nil {
		return nil, err
	}
	if responder == nil {
		return nil, errors.New("orchestrator: responder is required")
	}

	o := &Orchestrator{
		deps: nodes.Deps{
			Domain:    dom,
			Responder: responder,
		},
		summaryResponder: responder,
		now:              time.Now,
		newID:            uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	o.deps.Extractor = summary.NewExtractor(o.summaryResponder, dom)

	runner, err := o.compile(ctx)
	if err != nil {
		return nil, err
	}
	o.runner = runner
	return o, nil
}

// compile builds the turn graph:
//
//	START -> validate_request -> ensure_session
//	  forced end:  -> summarize -> finalize_reply
//	  otherwise:   -> retrieve -> invoke_model -> parse_signal
//	     model reported END: -> summarize -> finalize_reply
//	     otherwise:          -> finalize_reply
func (o *Orchestrator) compile(ctx context.Context) (compose.Runnable[*nodes.State, contract.TurnResponse], error) {
	g := compose.NewGraph[*nodes.State, contract.TurnResponse]()

	lambdas := []struct {
		name string
		node *compose.Lambda
	}{
		{nodeValidateRequest, compose.InvokableLambda(o.deps.ValidateRequest(o.newID))},
		{nodeEnsureSession, compose.InvokableLambda(o.deps.EnsureSession)},
		{nodeRetrieve, compose.InvokableLambda(o.deps.Retrieve)},
		{nodeInvokeModel, compose.InvokableLambda(o.deps.InvokeModel)},
		{nodeParseSignal, compose.InvokableLambda(o.deps.ParseSignal)},
		{nodeSummarize, compose.InvokableLambda(o.deps.Summarize)},
		{nodeFinalizeReply, compose.InvokableLambda(o.deps.FinalizeReply)},
	}
	for _, l := range lambdas {
		if err := g.AddLambdaNode(l.name, l.node); err != nil {
			return nil, fmt.Errorf("add node %s: %w", l.name, err)
		}
	}

	forcedEndBranch := compose.NewGraphBranch(
		func(_ context.Context, s *nodes.State) (string, error) {
			if s.ForcedEnd {
				return nodeSummarize, nil
			}
			return nodeRetrieve, nil
		},
		map[string]bool{nodeSummarize: true, nodeRetrieve: true},
	)
	if err := g.AddBranch(nodeEnsureSession, forcedEndBranch); err != nil {
		return nil, fmt.Errorf("add forced-end branch: %w", err)
	}

	endedBranch := compose.NewGraphBranch(
		func(_ context.Context, s *nodes.State) (string, error) {
			if s.Session.Ended() {
				return nodeSummarize, nil
			}
			return nodeFinalizeReply, nil
		},
		map[string]bool{nodeSummarize: true, nodeFinalizeReply: true},
	)
	if err := g.AddBranch(nodeParseSignal, endedBranch); err != nil {
		return nil, fmt.Errorf("add end-of-call branch: %w", err)
	}

	edges := [][2]string{
		{compose.START, nodeValidateRequest},
		{nodeValidateRequest, nodeEnsureSession},
		{nodeRetrieve, nodeInvokeModel},
		{nodeInvokeModel, nodeParseSignal},
		{nodeSummarize, nodeFinalizeReply},
		{nodeFinalizeReply, compose.END},
	}
	for _, edge := range edges {
		if err := g.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	return g.Compile(ctx, compose.WithGraphName("callflow.turn"))
}

// HandleTurn executes one turn of the call.
func (o *Orchestrator) HandleTurn(ctx context.Context, req contract.TurnRequest) (contract.TurnResponse, error) {
	s := &nodes.State{
		Req: req,
		Now: o.now(),
	}
	return o.runner.Invoke(ctx, s)
}
