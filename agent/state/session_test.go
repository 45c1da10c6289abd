package state

import (
	"errors"
	"testing"

	contractx "callflow/agent/contract"
)

func TestNewSessionStartsWithSystemMessage(t *testing.T) {
	t.Parallel()

	s := New("s1", "You are the agent.")
	if len(s.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(s.Messages))
	}
	if s.Messages[0].Role != contractx.RoleSystem {
		t.Fatalf("first message role = %q, want system", s.Messages[0].Role)
	}
	if s.CallStatus != contractx.StatusOngoing {
		t.Fatalf("CallStatus = %q, want ONGOING", s.CallStatus)
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestResumeNormalizesRoles(t *testing.T) {
	t.Parallel()

	s := Resume("s1", []contractx.Message{
		{Role: "system", Content: "prompt"},
		{Role: "USER", Content: "hi"},
		{Role: "assistant", Content: "hello"},
	})

	want := []contractx.Role{contractx.RoleSystem, contractx.RoleUser, contractx.RoleAgent}
	for i, role := range want {
		if s.Messages[i].Role != role {
			t.Fatalf("message %d role = %q, want %q", i, s.Messages[i].Role, role)
		}
	}
}

func TestSetLanguageNeverReverts(t *testing.T) {
	t.Parallel()

	s := New("s1", "prompt")
	s.SetLanguage("English")
	s.SetLanguage("  ")
	if s.Language != "English" {
		t.Fatalf("Language = %q, want English after empty update", s.Language)
	}
	s.SetLanguage("Hindi")
	if s.Language != "Hindi" {
		t.Fatalf("Language = %q, want Hindi", s.Language)
	}
}

func TestLastAgentMessage(t *testing.T) {
	t.Parallel()

	s := New("s1", "prompt")
	if _, ok := s.LastAgentMessage(); ok {
		t.Fatalf("expected no agent message in a fresh session")
	}
	s.AppendUser("hi")
	s.AppendAgent("hello")
	s.AppendUser("bye")
	got, ok := s.LastAgentMessage()
	if !ok || got != "hello" {
		t.Fatalf("LastAgentMessage() = %q/%v, want \"hello\"/true", got, ok)
	}
}

func TestValidateRejectsBrokenConversations(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		msgs []contractx.Message
	}{
		{"empty", nil},
		{"no system first", []contractx.Message{{Role: contractx.RoleUser, Content: "hi"}}},
		{"duplicate system", []contractx.Message{
			{Role: contractx.RoleSystem, Content: "a"},
			{Role: contractx.RoleSystem, Content: "b"},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s := &Session{ID: "s1", Messages: tc.msgs, CallStatus: contractx.StatusOngoing}
			if err := s.Validate(); !errors.Is(err, contractx.ErrValidation) {
				t.Fatalf("Validate() error = %v, want ErrValidation", err)
			}
		})
	}
}
