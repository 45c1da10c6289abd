// Package signal extracts the structured control block a model appends to
// its free-text replies. Parsing is best-effort by contract: anything that
// is not a well-formed control block degrades to the ONGOING default and is
// never surfaced as an error.
package signal

import (
	"encoding/json"
	"strings"
	"unicode"

	contractx "callflow/agent/contract"
)

type controlPayload struct {
	CallStatus string `json:"call_status"`
	RAGNeeded  string `json:"RAG_needed"`
	Language   string `json:"language"`
}

// Parse extracts the last well-formed control block from a model reply.
// Replies without a valid block yield {ONGOING, "", false}.
func Parse(text string) contractx.ControlSignal {
	sig := contractx.ControlSignal{CallStatus: contractx.StatusOngoing}

	payload, _, ok := lastControlBlock(text)
	if !ok {
		return sig
	}

	sig.CallStatus = contractx.CallStatus(payload.CallStatus)
	sig.Language = strings.TrimSpace(payload.Language)
	sig.RetrievalNeeded = strings.EqualFold(strings.TrimSpace(payload.RAGNeeded), "yes")
	return sig
}

// Strip returns the user-visible text of a reply: the reply with any
// trailing control block removed. Stripping is idempotent.
func Strip(text string) string {
	out := strings.TrimSpace(text)
	for {
		next, changed := stripTrailingBlock(out)
		if !changed {
			return next
		}
		out = next
	}
}

func stripTrailingBlock(text string) (string, bool) {
	trimmed := strings.TrimRightFunc(text, unicode.IsSpace)
	for i := len(trimmed) - 1; i >= 0; i-- {
		if trimmed[i] != '{' {
			continue
		}
		end, ok := balancedEnd(trimmed, i)
		if !ok || end != len(trimmed) {
			continue
		}
		if _, valid := parseControl(trimmed[i:end]); !valid {
			continue
		}
		return strings.TrimSpace(trimmed[:i]), true
	}
	return strings.TrimSpace(text), false
}

// lastControlBlock scans candidate objects right to left so the last valid
// block wins, matching the "model appends the signal to every reply"
// contract even when earlier text quotes a similar object.
func lastControlBlock(text string) (controlPayload, int, bool) {
	for i := len(text) - 1; i >= 0; i-- {
		if text[i] != '{' {
			continue
		}
		end, ok := balancedEnd(text, i)
		if !ok {
			continue
		}
		if payload, valid := parseControl(text[i:end]); valid {
			return payload, i, true
		}
	}
	return controlPayload{}, -1, false
}

func parseControl(candidate string) (controlPayload, bool) {
	var payload controlPayload
	if err := json.Unmarshal([]byte(candidate), &payload); err != nil {
		return controlPayload{}, false
	}
	switch contractx.CallStatus(payload.CallStatus) {
	case contractx.StatusEnd, contractx.StatusOngoing:
		return payload, true
	}
	return controlPayload{}, false
}

// balancedEnd returns the index just past the '}' matching the '{' at
// start, honouring JSON string and escape rules so braces inside string
// values do not count.
func balancedEnd(s string, start int) (int, bool) {
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
				return i + 1, true
			}
		}
	}
	return 0, false
}
