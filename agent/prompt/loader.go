// Package prompt owns the embedded prompt assets and their placeholder
// substitution. Prompt text is configuration: nothing in here carries
// orchestration logic.
package prompt

import (
	_ "embed"
	"strconv"
	"strings"
)

var (
	//go:embed template/insurance_system.txt
	insuranceSystemRaw string

	//go:embed template/insurance_summary.txt
	insuranceSummaryRaw string

	//go:embed template/lending_system.txt
	lendingSystemRaw string

	//go:embed template/lending_summary.txt
	lendingSummaryRaw string

	//go:embed template/quote_summary.txt
	quoteSummaryRaw string
)

// Set holds the prompt pair one domain needs.
type Set struct {
	System  string
	Summary string
}

func Insurance() Set {
	return Set{
		System:  strings.TrimSpace(insuranceSystemRaw),
		Summary: strings.TrimSpace(insuranceSummaryRaw),
	}
}

func Lending() Set {
	return Set{
		System:  strings.TrimSpace(lendingSystemRaw),
		Summary: strings.TrimSpace(lendingSummaryRaw),
	}
}

// quotationUnavailable is what the agent sees until the preloader has a
// summary ready; the preloader must never block the first turn.
const quotationUnavailable = "Quotation data is not yet available for this call."

// RenderSystem fills a system template's placeholders. Empty values fall
// back to neutral defaults so a template never shows a raw placeholder.
func RenderSystem(template, customerName string, hour int, quoteSummary, userProps string) string {
	if strings.TrimSpace(customerName) == "" {
		customerName = "Customer"
	}
	if strings.TrimSpace(quoteSummary) == "" {
		quoteSummary = quotationUnavailable
	}
	if strings.TrimSpace(userProps) == "" {
		userProps = "No live user properties available."
	}

	r := strings.NewReplacer(
		"{{CUSTOMER_NAME}}", customerName,
		"{{CURRENT_HOUR}}", strconv.Itoa(hour),
		"{{QUOTATION_SUMMARY}}", quoteSummary,
		"{{USER_PROPERTIES}}", userProps,
	)
	return r.Replace(template)
}

// RenderQuoteSummary builds the constrained summarization prompt for raw
// quotation JSON.
func RenderQuoteSummary(quotationJSON []byte) string {
	return strings.ReplaceAll(
		strings.TrimSpace(quoteSummaryRaw),
		"{{QUOTATION_JSON}}",
		strings.TrimSpace(string(quotationJSON)),
	)
}
