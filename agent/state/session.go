// Package state holds the strongly typed call-session record. The
// transport layer is stateless: a Session lives for exactly one turn and is
// rebuilt from the caller-supplied conversation on every request.
package state

import (
	"fmt"
	"strings"

	contractx "callflow/agent/contract"
)

// Session is the mutable aggregate owned by one in-flight turn.
type Session struct {
	ID         string
	Messages   []contractx.Message
	CallStatus contractx.CallStatus
	Language   string
	Summary    string
}

// New creates a fresh session with the rendered system prompt as its first
// and only message.
func New(id string, systemPrompt string) *Session {
	return &Session{
		ID: id,
		Messages: []contractx.Message{
			{Role: contractx.RoleSystem, Content: systemPrompt},
		},
		CallStatus: contractx.StatusOngoing,
	}
}

// Resume rebuilds a session from a caller-supplied conversation. Roles are
// normalized so transports that speak "assistant" interoperate.
func Resume(id string, conversation []contractx.Message) *Session {
	msgs := make([]contractx.Message, 0, len(conversation))
	for _, m := range conversation {
		msgs = append(msgs, contractx.Message{
			Role:    NormalizeRole(m.Role),
			Content: m.Content,
		})
	}
	return &Session{
		ID:         id,
		Messages:   msgs,
		CallStatus: contractx.StatusOngoing,
	}
}

// NormalizeRole maps transport role aliases onto the canonical set.
func NormalizeRole(r contractx.Role) contractx.Role {
	switch strings.ToLower(strings.TrimSpace(string(r))) {
	case "system":
		return contractx.RoleSystem
	case "agent", "assistant", "ai":
		return contractx.RoleAgent
	default:
		return contractx.RoleUser
	}
}

func (s *Session) AppendUser(content string) {
	s.Messages = append(s.Messages, contractx.Message{Role: contractx.RoleUser, Content: content})
}

func (s *Session) AppendAgent(content string) {
	s.Messages = append(s.Messages, contractx.Message{Role: contractx.RoleAgent, Content: content})
}

// LastAgentMessage returns the content of the most recent AGENT message.
func (s *Session) LastAgentMessage() (string, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == contractx.RoleAgent {
			return s.Messages[i].Content, true
		}
	}
	return "", false
}

// SetLanguage records the detected language. An empty detection never
// clears a previously detected value.
func (s *Session) SetLanguage(lang string) {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return
	}
	s.Language = lang
}

// End moves the session into its terminal state. END never transitions
// back to ONGOING.
func (s *Session) End() {
	s.CallStatus = contractx.StatusEnd
}

func (s *Session) Ended() bool {
	return s.CallStatus == contractx.StatusEnd
}

// Validate checks the session invariant: exactly one SYSTEM message,
// placed first.
func (s *Session) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: session is nil", contractx.ErrValidation)
	}
	if len(s.Messages) == 0 {
		return fmt.Errorf("%w: conversation is empty", contractx.ErrValidation)
	}
	if s.Messages[0].Role != contractx.RoleSystem {
		return fmt.Errorf("%w: first message must be the system prompt", contractx.ErrValidation)
	}
	for _, m := range s.Messages[1:] {
		if m.Role == contractx.RoleSystem {
			return fmt.Errorf("%w: conversation has more than one system message", contractx.ErrValidation)
		}
	}
	return nil
}
