package prompt

import (
	"strings"
	"testing"
)

func TestRenderSystemFillsPlaceholders(t *testing.T) {
	t.Parallel()

	out := RenderSystem(Insurance().System, "Priya", 14, "Premium 420.50 per year.", "")

	if strings.Contains(out, "{{") {
		t.Errorf("unresolved placeholder remains:\n%s", out)
	}
	if !strings.Contains(out, "Priya") {
		t.Error("customer name missing from rendered prompt")
	}
	if !strings.Contains(out, "14") {
		t.Error("current hour missing from rendered prompt")
	}
	if !strings.Contains(out, "Premium 420.50 per year.") {
		t.Error("quotation summary missing from rendered prompt")
	}
}

func TestRenderSystemDefaults(t *testing.T) {
	t.Parallel()

	out := RenderSystem(Insurance().System, "  ", 9, "", "")

	if !strings.Contains(out, "Customer") {
		t.Error("expected neutral customer name fallback")
	}
	if !strings.Contains(out, quotationUnavailable) {
		t.Error("expected quotation-unavailable fallback text")
	}
}

func TestRenderQuoteSummary(t *testing.T) {
	t.Parallel()

	out := RenderQuoteSummary([]byte(`{"premium": 420.50}`))

	if !strings.Contains(out, `{"premium": 420.50}`) {
		t.Error("quotation payload missing from prompt")
	}
	if strings.Contains(out, "{{QUOTATION_JSON}}") {
		t.Error("unresolved placeholder remains")
	}
}

func TestEmbeddedPromptsNonEmpty(t *testing.T) {
	t.Parallel()

	for name, set := range map[string]Set{"insurance": Insurance(), "lending": Lending()} {
		if set.System == "" || set.Summary == "" {
			t.Errorf("domain %s has an empty embedded prompt", name)
		}
	}
}
