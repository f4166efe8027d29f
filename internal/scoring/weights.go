package scoring

import "time"

// RecencyBand awards Points to postings younger than MaxAge. Bands are checked
// in order, so they must be sorted by ascending MaxAge.
type RecencyBand struct {
	MaxAge time.Duration
	Points int
	Reason string
}

// Weights are the tunable point values of the rule-based model.
type Weights struct {
	Base             int `mapstructure:"base"`
	IncludeThreshold int `mapstructure:"include-threshold"`
	JobsToScore      int `mapstructure:"jobs-to-score"`

	ColdStartProgramme      int `mapstructure:"cold-start-programme"`
	ColdStartStructuredRole int `mapstructure:"cold-start-structured-role"`
	ColdStartEstablished    int `mapstructure:"cold-start-established"`

	EarlyCareerHigh      int `mapstructure:"early-career-high"`
	EarlyCareerMedium    int `mapstructure:"early-career-medium"`
	EarlyCareerProgramme int `mapstructure:"early-career-programme"`
	SeniorityPenalty     int `mapstructure:"seniority-penalty"`

	RemotePenalty int `mapstructure:"remote-penalty"`
	TargetCity    int `mapstructure:"target-city"`
	EULocation    int `mapstructure:"eu-location"`

	DirectCareerMatch int `mapstructure:"direct-career-match"`
	OverlapMinTerms   int `mapstructure:"overlap-min-terms"`
	OverlapBase       int `mapstructure:"overlap-base"`
	OverlapPerTerm    int `mapstructure:"overlap-per-term"`
	OverlapCap        int `mapstructure:"overlap-cap"`
	FamilyBase        int `mapstructure:"family-base"`
	FamilyPerKeyword  int `mapstructure:"family-per-keyword"`
	FamilyCap         int `mapstructure:"family-cap"`

	Tier1Company int `mapstructure:"tier1-company"`
	Tier2Company int `mapstructure:"tier2-company"`
	Startup      int `mapstructure:"startup"`
	NamedCompany int `mapstructure:"named-company"`

	Recency []RecencyBand `mapstructure:"-"`
}

const day = 24 * time.Hour

// DefaultWeights returns the hand-tuned defaults.
func DefaultWeights() Weights {
	return Weights{
		Base:             45,
		IncludeThreshold: 70,
		JobsToScore:      20,

		ColdStartProgramme:      15,
		ColdStartStructuredRole: 10,
		ColdStartEstablished:    5,

		EarlyCareerHigh:      25,
		EarlyCareerMedium:    15,
		EarlyCareerProgramme: 20,
		SeniorityPenalty:     -20,

		RemotePenalty: -10,
		TargetCity:    20,
		EULocation:    15,

		DirectCareerMatch: 18,
		OverlapMinTerms:   2,
		OverlapBase:       5,
		OverlapPerTerm:    2,
		OverlapCap:        20,
		FamilyBase:        5,
		FamilyPerKeyword:  3,
		FamilyCap:         15,

		Tier1Company: 12,
		Tier2Company: 8,
		Startup:      6,
		NamedCompany: 3,

		Recency: []RecencyBand{
			{MaxAge: 1 * day, Points: 10, Reason: "posted today"},
			{MaxAge: 3 * day, Points: 8, Reason: "posted this week"},
			{MaxAge: 7 * day, Points: 6, Reason: "posted recently"},
			{MaxAge: 14 * day, Points: 4, Reason: "posted within 2 weeks"},
			{MaxAge: 28 * day, Points: 2, Reason: "posted this month"},
		},
	}
}

// Lexicon holds the keyword lists the rules match against. Matching is a
// case-insensitive substring test.
type Lexicon struct {
	ProgrammePhrases   []string
	StructuredRoles    []string
	LargeEmployerHints []string

	HighValueTerms   []string
	MediumValueTerms []string
	ProgrammeTerms   []string
	SeniorTerms      []string

	RemoteHints []string
	EUHints     []string

	// CareerFamilies maps a family name to keywords counted in posting text
	// when the family name appears in the user's expertise.
	CareerFamilies map[string][]string

	Tier1Companies []string
	Tier2Companies []string
	StartupHints   []string
	LegalSuffixes  []string
}

// DefaultLexicon returns the built-in keyword lists.
func DefaultLexicon() Lexicon {
	return Lexicon{
		ProgrammePhrases: []string{
			"graduate scheme", "graduate program", "graduate programme", "trainee program",
			"internship program", "rotation program", "campus recruiting", "university",
			"entry level program", "junior program", "associate program", "apprentice",
		},
		StructuredRoles: []string{
			"graduate", "intern", "trainee", "associate", "entry level", "junior",
			"campus hire", "new grad", "recent graduate",
		},
		LargeEmployerHints: []string{
			"multinational", "fortune 500", "ftse 100", "dax 30", "cac 40",
			"blue chip", "established", "leading", "global",
		},

		HighValueTerms:   []string{"intern", "internship", "graduate", "new grad", "entry level", "junior", "trainee"},
		MediumValueTerms: []string{"associate", "assistant", "coordinator", "specialist", "analyst"},
		ProgrammeTerms:   []string{"programme", "program", "scheme", "rotation", "campus"},
		SeniorTerms:      []string{"senior", "staff", "principal", "lead", "manager", "director", "head", "vp", "chief", "executive"},

		RemoteHints: []string{"remote", "work from home"},
		EUHints: []string{
			"uk", "united kingdom", "ireland", "germany", "france", "spain", "portugal", "italy",
			"netherlands", "belgium", "luxembourg", "denmark", "sweden", "norway", "finland",
			"amsterdam", "rotterdam", "london", "dublin", "paris", "berlin", "munich",
			"madrid", "barcelona", "lisbon", "milan", "rome", "stockholm", "copenhagen",
		},

		CareerFamilies: map[string][]string{
			"software":   {"developer", "engineer", "programmer", "software", "frontend", "backend", "full stack", "mobile"},
			"data":       {"analyst", "data", "analytics", "data science", "machine learning", "ai", "business intelligence"},
			"marketing":  {"marketing", "brand", "digital", "content", "social media", "growth", "product marketing"},
			"sales":      {"sales", "business development", "account", "revenue", "partnerships", "commercial"},
			"consulting": {"consultant", "advisory", "strategy", "management consulting", "business analysis"},
			"finance":    {"finance", "financial", "accounting", "investment", "banking", "trading", "risk"},
			"product":    {"product", "product management", "product owner", "product analyst", "product designer"},
			"design":     {"designer", "design", "ui", "ux", "graphic", "visual", "user experience"},
			"operations": {"operations", "operational", "process", "supply chain", "logistics", "project management"},
		},

		Tier1Companies: []string{
			"google", "microsoft", "apple", "amazon", "meta", "netflix", "spotify", "uber", "airbnb",
			"mckinsey", "bain", "bcg", "deloitte", "pwc", "ey", "kpmg",
			"goldman sachs", "jpmorgan", "morgan stanley", "blackrock",
		},
		Tier2Companies: []string{
			"klarna", "zalando", "delivery hero", "hellofresh", "n26", "revolut",
			"sap", "siemens", "bosch", "adidas", "bmw", "mercedes", "volkswagen",
		},
		StartupHints:  []string{"startup", "scaleup", "series a", "series b", "unicorn", "venture"},
		LegalSuffixes: []string{"ltd", "inc"},
	}
}
