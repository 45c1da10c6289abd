// Package summary extracts the structured end-of-call summary from a
// finished transcript.
package summary

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"callflow/agent/contract"
	"callflow/agent/domain"
)

const emptySummary = "{}"

// Extractor asks the model for a schema-shaped JSON summary of the call.
type Extractor struct {
	model contract.Responder
	dom   domain.Config
}

func NewExtractor(model contract.Responder, dom domain.Config) *Extractor {
	return &Extractor{model: model, dom: dom}
}

// Extract renders the transcript, prompts the model, and returns the
// summary as a JSON object string. Model failures are returned as errors;
// an unparseable reply degrades to "{}" so the call can still close.
func (e *Extractor) Extract(ctx context.Context, messages []contract.Message) (string, error) {
	transcript := renderTranscript(messages)
	if transcript == "" {
		return emptySummary, nil
	}

	reply, err := e.model.Respond(ctx, []contract.Message{
		{Role: contract.RoleSystem, Content: e.dom.SummaryPrompt},
		{Role: contract.RoleUser, Content: transcript},
	})
	if err != nil {
		return "", fmt.Errorf("%w: summary extraction: %w", contract.ErrModelInvoke, err)
	}

	parsed, ok := parseSummary(reply)
	if !ok {
		log.Warn().Str("reply", truncate(reply, 200)).Msg("summary reply was not valid JSON, recording empty summary")
		return emptySummary, nil
	}

	for _, field := range e.dom.SummaryFields {
		if _, present := parsed[field]; !present {
			parsed[field] = nil
		}
	}

	out, err := json.Marshal(parsed)
	if err != nil {
		return emptySummary, nil
	}
	return string(out), nil
}

// renderTranscript flattens the conversation into labeled lines. The
// system prompt is not part of what gets summarized.
func renderTranscript(messages []contract.Message) string {
	var b strings.Builder
	for _, msg := range messages {
		switch msg.Role {
		case contract.RoleUser:
			b.WriteString("User: ")
		case contract.RoleAgent:
			b.WriteString("Agent: ")
		default:
			continue
		}
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

func parseSummary(reply string) (map[string]any, bool) {
	candidate := stripCodeFence(strings.TrimSpace(reply))
	candidate = firstJSONObject(candidate)
	if candidate == "" {
		return nil, false
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
		return nil, false
	}
	return parsed, true
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// firstJSONObject returns the first balanced top-level object in s,
// tracking strings and escapes so braces in values do not end the scan.
func firstJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
