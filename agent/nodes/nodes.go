// Package nodes implements the per-step logic of the turn graph. Each node
// takes the turn state, advances it, and hands it to the next node; the
// orchestrator owns the wiring.
package nodes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"callflow/agent/contract"
	"callflow/agent/domain"
	"callflow/agent/preload"
	"callflow/agent/rag"
	"callflow/agent/signal"
	"callflow/agent/state"
	"callflow/agent/summary"
)

// State is the mutable value threaded through one turn of the graph.
type State struct {
	Req     contract.TurnRequest
	Now     time.Time
	Session *state.Session

	// ForcedEnd is set when the caller demands termination; the turn then
	// skips the model and goes straight to summarization.
	ForcedEnd bool

	// RetrievedInfo is the rendered knowledge-base context for this turn,
	// empty when retrieval did not run.
	RetrievedInfo string

	Signal contract.ControlSignal
}

// Deps carries the collaborators the nodes invoke. Gate, Preloader and
// Reports are optional; nil disables the corresponding step.
type Deps struct {
	Domain    domain.Config
	Responder contract.Responder
	Extractor *summary.Extractor
	Gate      *rag.Gate
	Preloader *preload.Loader
	Reports   contract.ReportSink

	// DefaultLanguage seeds a new session until the model reports the
	// caller's actual language.
	DefaultLanguage string
}

// ValidateRequest rejects turns missing required fields, assigns a session
// id when the caller did not supply one, and flags caller-forced ends.
func (d Deps) ValidateRequest(newID func() string) func(ctx context.Context, s *State) (*State, error) {
	return func(_ context.Context, s *State) (*State, error) {
		s.Req.UserID = strings.TrimSpace(s.Req.UserID)
		s.Req.Message = strings.TrimSpace(s.Req.Message)
		if s.Req.UserID == "" || s.Req.Message == "" {
			return nil, fmt.Errorf("%w: user_id and message are required", contract.ErrMissingField)
		}
		if strings.TrimSpace(s.Req.SessionID) == "" {
			s.Req.SessionID = newID()
		}
		s.ForcedEnd = s.Req.CallStatus == contract.StatusEnd
		return s, nil
	}
}

// EnsureSession builds the turn's session: a fresh one with the rendered
// system prompt when the caller sent no conversation, otherwise a resumed
// and validated one.
func (d Deps) EnsureSession(_ context.Context, s *State) (*State, error) {
	if len(s.Req.Conversation) == 0 {
		quoteSummary, _ := d.Preloader.Snapshot()
		systemPrompt := d.Domain.SystemPrompt(s.Req.Name, s.Now.Hour(), quoteSummary, "")
		s.Session = state.New(s.Req.SessionID, systemPrompt)
		s.Session.SetLanguage(d.DefaultLanguage)
		return s, nil
	}

	s.Session = state.Resume(s.Req.SessionID, s.Req.Conversation)
	if err := s.Session.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Retrieve consults the knowledge base when the previous agent reply asked
// for it. The flag lives in the control block of the last agent message,
// which the caller echoes back unstripped.
func (d Deps) Retrieve(ctx context.Context, s *State) (*State, error) {
	if !d.Domain.RAGEnabled || d.Gate == nil {
		return s, nil
	}
	last, ok := s.Session.LastAgentMessage()
	if !ok {
		return s, nil
	}
	if sig := signal.Parse(last); sig.RetrievalNeeded {
		s.RetrievedInfo = d.Gate.Retrieve(ctx, s.Req.Message)
	}
	return s, nil
}

// InvokeModel runs the chat model for this turn. The session is only
// mutated after the model succeeds, so a failed turn leaves no partial
// transcript behind.
func (d Deps) InvokeModel(ctx context.Context, s *State) (*State, error) {
	msgs := make([]contract.Message, 0, len(s.Session.Messages)+2)
	msgs = append(msgs, s.Session.Messages...)
	if s.RetrievedInfo != "" {
		msgs = append(msgs, contract.Message{
			Role:    contract.RoleSystem,
			Content: "Relevant information from the knowledge base:\n" + s.RetrievedInfo,
		})
	}
	msgs = append(msgs, contract.Message{Role: contract.RoleUser, Content: s.Req.Message})

	started := time.Now()
	reply, err := d.Responder.Respond(ctx, msgs)
	if err != nil {
		return nil, fmt.Errorf("%w: turn generation: %w", contract.ErrModelInvoke, err)
	}
	log.Debug().
		Str("session_id", s.Req.SessionID).
		Dur("latency", time.Since(started)).
		Msg("model turn completed")

	s.Session.AppendUser(s.Req.Message)
	s.Session.AppendAgent(reply)
	return s, nil
}

// ParseSignal folds the control block of the new agent reply into the
// session.
func (d Deps) ParseSignal(_ context.Context, s *State) (*State, error) {
	last, ok := s.Session.LastAgentMessage()
	if !ok {
		return s, nil
	}
	s.Signal = signal.Parse(last)
	s.Session.SetLanguage(s.Signal.Language)
	if s.Signal.CallStatus == contract.StatusEnd {
		s.Session.End()
	}
	return s, nil
}

// Summarize runs the terminal summary pass and records the call report.
// Report persistence is best effort; a sink failure never fails the turn.
func (d Deps) Summarize(ctx context.Context, s *State) (*State, error) {
	out, err := d.Extractor.Extract(ctx, s.Session.Messages)
	if err != nil {
		return nil, err
	}
	s.Session.Summary = out
	s.Session.End()

	if d.Reports != nil {
		report := contract.CallReport{
			SessionID: s.Req.SessionID,
			UserID:    s.Req.UserID,
			Domain:    d.Domain.Name,
			Language:  s.Session.Language,
			Summary:   out,
			EndedAt:   time.Now().UTC(),
		}
		if err := d.Reports.Save(ctx, report); err != nil {
			log.Warn().Err(err).Str("session_id", s.Req.SessionID).Msg("call report persistence failed")
		}
	}
	return s, nil
}

// FinalizeReply builds the transport response. The agent text is the last
// reply with its control block stripped.
func (d Deps) FinalizeReply(_ context.Context, s *State) (contract.TurnResponse, error) {
	agentText := ""
	if last, ok := s.Session.LastAgentMessage(); ok {
		agentText = signal.Strip(last)
	}

	resp := contract.TurnResponse{
		SessionID:  s.Req.SessionID,
		Agent:      agentText,
		CallStatus: s.Session.CallStatus,
	}
	if s.Session.Language != "" {
		lang := s.Session.Language
		resp.Language = &lang
	}
	if s.Session.Summary != "" {
		summaryJSON := s.Session.Summary
		resp.Summary = &summaryJSON
	}
	return resp, nil
}
