package contract

import "time"

// Role identifies who produced a message in a call transcript.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
	RoleAgent  Role = "agent"
)

// CallStatus is the externally observable lifecycle state of a call.
// END is terminal: once a session reports END no further turns occur.
type CallStatus string

const (
	StatusOngoing CallStatus = "ONGOING"
	StatusEnd     CallStatus = "END"
)

// Message is one immutable unit of dialogue.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ControlSignal is the machine-readable state a model embeds at the end of
// its free-text reply. It is derived per response and folded into the
// session immediately; it is never persisted on its own.
type ControlSignal struct {
	CallStatus      CallStatus
	Language        string
	RetrievalNeeded bool
}

// TurnRequest is one inbound request/turn from the transport layer. The
// transport is stateless: the caller carries the conversation between turns
// and resubmits it with every request.
type TurnRequest struct {
	UserID       string     `json:"user_id"`
	Name         string     `json:"name,omitempty"`
	Message      string     `json:"message"`
	CallStatus   CallStatus `json:"call_status,omitempty"`
	SessionID    string     `json:"session_id,omitempty"`
	Conversation []Message  `json:"conversation,omitempty"`
}

// TurnResponse is what the caller receives for every successful turn.
// Language and Summary are null until the model reports a language and the
// terminal summary pass has run, respectively.
type TurnResponse struct {
	SessionID  string     `json:"session_id"`
	Agent      string     `json:"agent"`
	CallStatus CallStatus `json:"call_status"`
	Language   *string    `json:"language"`
	Summary    *string    `json:"summary"`
}

// RetrievedDoc is a ranked snippet returned by the retrieval collaborator.
type RetrievedDoc struct {
	Source  string
	Page    string
	Content string
}

// CallReport is the reporting record persisted when a call reaches END.
type CallReport struct {
	SessionID string
	UserID    string
	Domain    string
	Language  string
	Summary   string
	EndedAt   time.Time
}
