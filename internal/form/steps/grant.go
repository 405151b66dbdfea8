package steps

// Step ids of the grant application form.
const (
	BasicInfo            = "basic-info"
	BusinessOverview     = "business-overview"
	BusinessModel        = "business-model"
	FundingGoals         = "funding-goals"
	CompetitiveLandscape = "competitive-landscape"
	FinancialDocuments   = "financial-documents"
)

// Field names with special handling.
const (
	FieldCompanyName            = "company_name"
	FieldFounderEmail           = "founder_email"
	FieldWebsiteURL             = "website_url"
	FieldFinancialStatementsURL = "financial_statements_url"
)

func grantSteps() []Step {
	return []Step{
		{
			ID:          BasicInfo,
			Title:       "Basic Information",
			Description: "Tell us about your company and contact details",
			Fields: []Field{
				{Name: FieldCompanyName, Label: "Company name", Kind: KindText, MaxLength: 100},
				{Name: "founder_name", Label: "Founder name", Kind: KindText, MaxLength: 100},
				{Name: FieldFounderEmail, Label: "Founder email", Kind: KindEmail},
				{Name: FieldWebsiteURL, Label: "Website URL", Kind: KindURL},
			},
		},
		{
			ID:          BusinessOverview,
			Title:       "Business Overview",
			Description: "Describe your business and what you do",
			Fields: []Field{
				{
					Name: "business_description", Label: "Business description", Kind: KindLongForm,
					Prompt: "Describe your business in 2 minutes - what do you do and who do you serve?",
				},
				{
					Name: "environmental_problem", Label: "Environmental problem description", Kind: KindLongForm,
					Prompt: "What environmental problem are you solving?",
				},
			},
		},
		{
			ID:          BusinessModel,
			Title:       "Business Model & Achievements",
			Description: "How you make money and what you have achieved",
			Fields: []Field{
				{
					Name: "business_model", Label: "Business model description", Kind: KindLongForm,
					Prompt: "What's your business model - how do you make money?",
				},
				{
					Name: "key_achievements", Label: "Key achievements description", Kind: KindLongForm,
					Prompt: "What are your key achievements in the last 12 months?",
				},
			},
		},
		{
			ID:          FundingGoals,
			Title:       "Funding & Future Goals",
			Description: "How you will use funding and your future plans",
			Fields: []Field{
				{
					Name: "funding_use", Label: "Funding use description", Kind: KindLongForm,
					Prompt: "What would you use this grant funding for specifically?",
				},
				{
					Name: "future_goals", Label: "Future goals description", Kind: KindLongForm,
					Prompt: "What are your goals for the next 2 years?",
				},
			},
		},
		{
			ID:          CompetitiveLandscape,
			Title:       "Competitive Landscape",
			Description: "Your competition and unique positioning",
			Fields: []Field{
				{
					Name: "competitors", Label: "Competitors description", Kind: KindLongForm,
					Prompt: "Who are your main competitors or alternatives?",
				},
				{
					Name: "unique_positioning", Label: "Unique positioning description", Kind: KindLongForm,
					Prompt: "Why is your company uniquely positioned to succeed?",
				},
			},
		},
		{
			ID:          FinancialDocuments,
			Title:       "Financial Documents",
			Description: "Upload your financial statements",
			Fields: []Field{
				{Name: FieldFinancialStatementsURL, Label: "Financial statements", Kind: KindFile, Optional: true},
			},
		},
	}
}

var grant = mustNew(grantSteps())

func mustNew(list []Step) *Config {
	c, err := New(list)
	if err != nil {
		panic(err)
	}
	return c
}

// Grant returns the grant application form configuration.
func Grant() *Config {
	return grant
}
