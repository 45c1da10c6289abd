package domain

import promptx "callflow/agent/prompt"

// Insurance is the bike-insurance renewal campaign: knowledge-base
// retrieval and the quotation preload are both in play.
func Insurance() Config {
	prompts := promptx.Insurance()
	return Config{
		Name:           "insurance",
		SystemTemplate: prompts.System,
		SummaryPrompt:  prompts.Summary,
		SummaryFields: []string{
			"Disposition",
			"SubDisposition",
			"UserName",
			"BikeRegistrationNumber",
			"BikeMakeModel",
			"PolicyExpiryDate",
			"CoverType",
			"AddOnsDiscussed",
			"NomineeDetailsProvided",
			"KYCDetailsProvided",
			"WantsExpertConnection",
			"ObjectionsOrSpecialScenarios",
			"TechnicalIssues",
			"Language",
			"Summary",
		},
		RAGEnabled:     true,
		PreloadEnabled: true,
	}
}
