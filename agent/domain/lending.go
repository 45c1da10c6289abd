package domain

import promptx "callflow/agent/prompt"

// Lending is the loan-inquiry campaign. It runs without retrieval or
// quotation preload; the field names below match the reporting pipeline
// downstream, spelling quirks included.
func Lending() Config {
	prompts := promptx.Lending()
	return Config{
		Name:           "lending",
		SystemTemplate: prompts.System,
		SummaryPrompt:  prompts.Summary,
		SummaryFields: []string{
			"Disposition",
			"SubDisposition",
			"LoanType",
			"LoanAmount",
			"CurrentCity",
			"CurrentCityPinCode",
			"PropertyCity",
			"PropertyPinCode",
			"WithinMuncipalLimits",
			"PropertyStage",
			"PropetyType",
			"OccupationStatus",
			"MonthlySalary",
			"MonthlyBonus",
			"TotalMonthlyIncome",
			"SalaryCreditMode",
			"BusinessType",
			"ProfessionalCertificateAvailable",
			"BusinessRegistrationAvailable",
			"ITR/CACertificate",
			"Profit",
			"CIBILScore",
			"ExistingEMIs",
			"EMIBounce",
			"Co-Applicant",
			"Co-ApplicantIncome",
			"OutstandingLoanAmt",
			"TopUpAmt",
			"CurrentLender",
			"CurrentInterestRate",
			"CurrentTenure",
		},
		RAGEnabled:     false,
		PreloadEnabled: false,
	}
}
