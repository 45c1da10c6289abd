package signal

import (
	"testing"

	contractx "callflow/agent/contract"
)

func TestParseExtractsEmbeddedSignal(t *testing.T) {
	t.Parallel()

	reply := "Thanks for confirming, I will note that down.\n" +
		`{"call_status": "END", "RAG_needed": "No", "language": "English"}`

	sig := Parse(reply)
	if sig.CallStatus != contractx.StatusEnd {
		t.Fatalf("CallStatus = %q, want END", sig.CallStatus)
	}
	if sig.Language != "English" {
		t.Fatalf("Language = %q, want English", sig.Language)
	}
	if sig.RetrievalNeeded {
		t.Fatalf("RetrievalNeeded = true, want false")
	}
}

func TestParseRetrievalRequested(t *testing.T) {
	t.Parallel()

	reply := `Let me check that for you. {"call_status": "ONGOING", "RAG_needed": "Yes", "language": "Hindi"}`
	sig := Parse(reply)
	if sig.CallStatus != contractx.StatusOngoing {
		t.Fatalf("CallStatus = %q, want ONGOING", sig.CallStatus)
	}
	if !sig.RetrievalNeeded {
		t.Fatalf("RetrievalNeeded = false, want true")
	}
	if sig.Language != "Hindi" {
		t.Fatalf("Language = %q, want Hindi", sig.Language)
	}
}

func TestParseDefaultsOnMissingOrMalformedBlock(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		reply string
	}{
		{"no block", "Hello! How can I help you today?"},
		{"malformed json", `Sure. {"call_status": "END", }`},
		{"wrong status value", `Done. {"call_status": "FINISHED"}`},
		{"unbalanced braces", `Done. {"call_status": "END"`},
		{"empty reply", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			sig := Parse(tc.reply)
			if sig.CallStatus != contractx.StatusOngoing {
				t.Fatalf("CallStatus = %q, want ONGOING", sig.CallStatus)
			}
			if sig.Language != "" {
				t.Fatalf("Language = %q, want empty", sig.Language)
			}
			if sig.RetrievalNeeded {
				t.Fatalf("RetrievalNeeded = true, want false")
			}
		})
	}
}

func TestParseLastBlockWins(t *testing.T) {
	t.Parallel()

	reply := `The format is {"call_status": "ONGOING"} as discussed. Goodbye!` + "\n" +
		`{"call_status": "END", "language": "English"}`

	sig := Parse(reply)
	if sig.CallStatus != contractx.StatusEnd {
		t.Fatalf("CallStatus = %q, want END from the last block", sig.CallStatus)
	}
}

func TestParseIgnoresBracesInsideStrings(t *testing.T) {
	t.Parallel()

	reply := `{"call_status": "ONGOING", "language": "English", "note": "use {braces} freely"}`
	sig := Parse(reply)
	if sig.CallStatus != contractx.StatusOngoing {
		t.Fatalf("CallStatus = %q, want ONGOING", sig.CallStatus)
	}
	if sig.Language != "English" {
		t.Fatalf("Language = %q, want English", sig.Language)
	}
}

func TestStripRemovesTrailingBlock(t *testing.T) {
	t.Parallel()

	reply := "Perfect, I have your details.  \n" +
		`{"call_status": "END", "RAG_needed": "No", "language": "English"}`

	got := Strip(reply)
	want := "Perfect, I have your details."
	if got != want {
		t.Fatalf("Strip() = %q, want %q", got, want)
	}
}

func TestStripIsIdempotent(t *testing.T) {
	t.Parallel()

	cases := []string{
		`Hello there. {"call_status": "ONGOING", "RAG_needed": "No", "language": "English"}`,
		"No control block at all.",
		`Twice. {"call_status": "ONGOING"} {"call_status": "END"}`,
		"",
	}

	for _, reply := range cases {
		once := Strip(reply)
		twice := Strip(once)
		if once != twice {
			t.Fatalf("Strip not idempotent for %q: first %q, second %q", reply, once, twice)
		}
	}
}

func TestStripKeepsNonTrailingJSON(t *testing.T) {
	t.Parallel()

	reply := `The payload {"call_status": "ONGOING"} appears mid-sentence, not at the end.`
	if got := Strip(reply); got != reply {
		t.Fatalf("Strip() = %q, want unchanged text", got)
	}
}
