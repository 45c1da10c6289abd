// Package domain parameterizes the orchestration core. A Config carries
// everything that differs between call campaigns: the system-prompt
// template, the summary schema, and which collaborators (retrieval,
// quotation preload) the campaign uses. The orchestration logic itself is
// domain-agnostic.
package domain

import (
	"fmt"
	"strings"

	contractx "callflow/agent/contract"
	promptx "callflow/agent/prompt"
)

type Config struct {
	Name           string
	SystemTemplate string
	SummaryPrompt  string

	// SummaryFields is the fixed report schema: every field appears in the
	// extracted summary, null when the transcript does not determine it.
	SummaryFields []string

	RAGEnabled     bool
	PreloadEnabled bool
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: domain name is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.SystemTemplate) == "" {
		return fmt.Errorf("%w: domain %s has no system template", contractx.ErrValidation, c.Name)
	}
	if strings.TrimSpace(c.SummaryPrompt) == "" {
		return fmt.Errorf("%w: domain %s has no summary prompt", contractx.ErrValidation, c.Name)
	}
	if len(c.SummaryFields) == 0 {
		return fmt.Errorf("%w: domain %s has no summary schema", contractx.ErrValidation, c.Name)
	}
	return nil
}

// SystemPrompt renders the campaign's system message for a new session.
func (c Config) SystemPrompt(customerName string, hour int, quoteSummary, userProps string) string {
	return promptx.RenderSystem(c.SystemTemplate, customerName, hour, quoteSummary, userProps)
}

// ByName resolves a campaign configuration from its runtime flag value.
func ByName(name string) (Config, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "insurance":
		return Insurance(), nil
	case "lending":
		return Lending(), nil
	default:
		return Config{}, fmt.Errorf("%w: unknown domain %q", contractx.ErrValidation, name)
	}
}
