package intake

// Rules holds every alias table, classification table, and threshold the
// normalizer and aggregator consult. It is built once at process start and
// passed by reference; nothing mutates it afterward.
type Rules struct {
	ProgramAliases     map[string]string
	SchoolTypeAliases  map[string]string
	CitizenshipAliases map[string]string
	ReferralAliases    map[string]string
	IncomeAliases      map[string]string

	// PersonalEmailProviders are consumer mailbox domains classified as
	// "personal" ahead of the generic .com check.
	PersonalEmailProviders map[string]bool

	// CallingCodes maps an international dialing prefix to a country label.
	// Lookup is longest-prefix-first so "44" wins over "4".
	CallingCodes map[string]string

	// NoteTagRules maps a tag to the phrases whose presence in the
	// eligibility notes assigns it. First matching phrase per tag wins.
	NoteTagRules []NoteTagRule

	DateTimeFormats []string
	DateFormats     []string

	StaleAfterDays int
	LowGPACutoff   float64
	GPAMin         float64
	GPAMax         float64

	// Graduation year window relative to the current year.
	GradYearPastWindow   int
	GradYearFutureWindow int
}

// NoteTagRule binds one tag to its trigger phrases.
type NoteTagRule struct {
	Tag     string
	Phrases []string
}

// DefaultRules returns the rule set used in production. Tests share it so
// expectations stay aligned with the shipped tables.
func DefaultRules() *Rules {
	return &Rules{
		ProgramAliases: map[string]string{
			"stem scholars":  "STEM Scholars",
			"stem":           "STEM Scholars",
			"arts catalyst":  "Arts Catalyst",
			"arts":           "Arts Catalyst",
			"health futures": "Health Futures",
			"health":         "Health Futures",
		},
		SchoolTypeAliases: map[string]string{
			"public":            "Public",
			"public school":     "Public",
			"private":           "Private",
			"private school":    "Private",
			"independent":       "Private",
			"charter":           "Charter",
			"charter school":    "Charter",
			"homeschool":        "Homeschool",
			"home school":       "Homeschool",
			"homeschooled":      "Homeschool",
			"international":     "International",
			"intl":              "International",
			"community college": "Community College",
		},
		CitizenshipAliases: map[string]string{
			"us citizen":            "US Citizen",
			"u s citizen":           "US Citizen",
			"citizen":               "US Citizen",
			"usa":                   "US Citizen",
			"permanent resident":    "Permanent Resident",
			"green card":            "Permanent Resident",
			"green card holder":     "Permanent Resident",
			"pr":                    "Permanent Resident",
			"daca":                  "DACA",
			"international":         "International",
			"international student": "International",
			"student visa":          "International",
			"f1":                    "International",
			"f 1":                   "International",
			"refugee":               "Refugee/Asylee",
			"asylee":                "Refugee/Asylee",
			"asylum":                "Refugee/Asylee",
			"other":                 "Other",
		},
		ReferralAliases: map[string]string{
			"school counselor":  "School Counselor",
			"counselor":         "School Counselor",
			"guidance counselor": "School Counselor",
			"teacher":           "Teacher",
			"instagram":         "Social Media",
			"facebook":          "Social Media",
			"tiktok":            "Social Media",
			"twitter":           "Social Media",
			"social":            "Social Media",
			"social media":      "Social Media",
			"website":           "Website",
			"web":               "Website",
			"online search":     "Website",
			"google":            "Website",
			"friend":            "Word of Mouth",
			"family":            "Word of Mouth",
			"word of mouth":     "Word of Mouth",
			"community org":     "Community Organization",
			"community organization": "Community Organization",
			"nonprofit":         "Community Organization",
			"email":             "Email Outreach",
			"newsletter":        "Email Outreach",
		},
		IncomeAliases: map[string]string{
			"low":           "Under 40k",
			"low income":    "Under 40k",
			"under 40k":     "Under 40k",
			"below 40k":     "Under 40k",
			"lower middle":  "40k-70k",
			"middle":        "40k-70k",
			"middle income": "40k-70k",
			"upper middle":  "70k-100k",
			"high":          "Over 100k",
			"high income":   "Over 100k",
			"over 100k":     "Over 100k",
			"above 100k":    "Over 100k",
			"prefer not to say": "Undisclosed",
			"decline to state":  "Undisclosed",
		},
		PersonalEmailProviders: map[string]bool{
			"gmail.com":      true,
			"googlemail.com": true,
			"yahoo.com":      true,
			"ymail.com":      true,
			"aol.com":        true,
			"hotmail.com":    true,
			"outlook.com":    true,
			"live.com":       true,
			"msn.com":        true,
			"icloud.com":     true,
			"me.com":         true,
			"protonmail.com": true,
			"proton.me":      true,
		},
		CallingCodes: map[string]string{
			"1":   "US/Canada",
			"7":   "Russia/Kazakhstan",
			"20":  "Egypt",
			"27":  "South Africa",
			"30":  "Greece",
			"31":  "Netherlands",
			"33":  "France",
			"34":  "Spain",
			"39":  "Italy",
			"44":  "United Kingdom",
			"49":  "Germany",
			"52":  "Mexico",
			"55":  "Brazil",
			"61":  "Australia",
			"63":  "Philippines",
			"81":  "Japan",
			"82":  "South Korea",
			"84":  "Vietnam",
			"86":  "China",
			"91":  "India",
			"92":  "Pakistan",
			"234": "Nigeria",
			"254": "Kenya",
			"353": "Ireland",
			"880": "Bangladesh",
			"971": "UAE",
		},
		NoteTagRules: []NoteTagRule{
			{Tag: "docs_complete", Phrases: []string{"all docs", "documents complete", "docs complete", "paperwork complete"}},
			{Tag: "transcript_pending", Phrases: []string{"transcript"}},
			{Tag: "recommendation_pending", Phrases: []string{"recommendation", "rec letter", "reference letter"}},
			{Tag: "financial_aid", Phrases: []string{"fafsa", "financial aid", "aid form"}},
			{Tag: "interview", Phrases: []string{"interview"}},
			{Tag: "deferred", Phrases: []string{"defer"}},
			{Tag: "urgent", Phrases: []string{"urgent", "asap", "follow up immediately"}},
		},
		DateTimeFormats: []string{
			"2006-01-02 15:04:05",
			"2006-01-02T15:04:05",
			"2006-01-02 15:04",
			"01/02/2006 15:04",
		},
		DateFormats: []string{
			"2006-01-02",
			"2006/01/02",
			"01/02/2006",
		},
		StaleAfterDays:       30,
		LowGPACutoff:         2.5,
		GPAMin:               0,
		GPAMax:               4.0,
		GradYearPastWindow:   1,
		GradYearFutureWindow: 6,
	}
}

// headerAliases maps lowercase free-text header labels to canonical row keys.
// Applied at the ingestion boundary before any field rule runs.
var headerAliases = map[string]string{
	"applicant id":      "applicant_id",
	"application id":    "applicant_id",
	"id":                "applicant_id",
	"full name":         "name",
	"applicant name":    "name",
	"email address":     "email",
	"e mail":            "email",
	"phone number":      "phone",
	"cell":              "phone",
	"mobile":            "phone",
	"program name":      "program",
	"school":            "school_type",
	"type of school":    "school_type",
	"citizenship":       "citizenship_status",
	"referral":          "referral_source",
	"how did you hear":  "referral_source",
	"income":            "income_bracket",
	"income bracket":    "income_bracket",
	"household income":  "income_bracket",
	"grad year":         "graduation_year",
	"graduation":        "graduation_year",
	"expected graduation": "graduation_year",
	"submitted at":      "submission_date",
	"submitted":         "submission_date",
	"submission date":   "submission_date",
	"first gen":         "first_gen",
	"first gen status":  "first_gen",
	"first generation":  "first_gen",
	"notes":             "eligibility_notes",
	"eligibility note":  "eligibility_notes",
}

// CanonicalHeader resolves a raw header label to its canonical row key:
// alias lookup first, else lower-case with spaces collapsed to underscores.
func CanonicalHeader(raw string) string {
	key := normalizeKey(raw)
	if canonical, ok := headerAliases[key]; ok {
		return canonical
	}
	return replaceSpaces(key)
}
