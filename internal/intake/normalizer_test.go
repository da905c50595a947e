package intake

import (
	"testing"
	"time"

	"github.com/groupscholar/intake-normalizer/internal/domain"
)

func testNormalizer() *Normalizer {
	return NewNormalizer(DefaultRules(), time.Date(2026, 2, 1, 10, 30, 0, 0, time.UTC))
}

func TestNormalizeBasicRow(t *testing.T) {
	n := testNormalizer()
	app := n.Normalize(RawRow{
		"applicant_id":    "A-1",
		"name":            "Alex Example",
		"email":           "Alex@Example.com",
		"program":         "stem scholars",
		"gpa":             "3.4",
		"submission_date": "2026-01-20",
	})

	if app.Program != "STEM Scholars" {
		t.Errorf("program = %q, want STEM Scholars", app.Program)
	}
	if app.EmailDomainCategory != "commercial" {
		t.Errorf("email domain category = %q, want commercial", app.EmailDomainCategory)
	}
	if app.GPA == nil || *app.GPA != 3.4 {
		t.Errorf("gpa = %v, want 3.4", app.GPA)
	}
	for _, f := range []domain.Flag{domain.FlagLowGPA, domain.FlagInvalidGPA, domain.FlagGPAOutOfRange} {
		if app.HasFlag(f) {
			t.Errorf("unexpected flag %s", f)
		}
	}
	if app.SubmissionDate != "2026-01-20" {
		t.Errorf("submission date = %q", app.SubmissionDate)
	}
	if app.SubmissionAgeDays == nil || *app.SubmissionAgeDays != 12 {
		t.Errorf("submission age = %v, want 12", app.SubmissionAgeDays)
	}
	if app.SubmissionAgeBucket != "8-14 days" {
		t.Errorf("age bucket = %q", app.SubmissionAgeBucket)
	}
	if app.SubmissionRecency != "active" {
		t.Errorf("recency = %q", app.SubmissionRecency)
	}
}

func TestNormalizeProgram(t *testing.T) {
	n := testNormalizer()
	tests := []struct {
		name    string
		input   string
		want    string
		flagged bool
	}{
		{"alias", "stem scholars", "STEM Scholars", false},
		{"alias short", "HEALTH", "Health Futures", false},
		{"unknown title-cased", "future leaders", "Future Leaders", false},
		{"empty gets sentinel", "", "Unspecified", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := n.Normalize(RawRow{"program": tt.input})
			if app.Program != tt.want {
				t.Errorf("program = %q, want %q", app.Program, tt.want)
			}
			if app.HasFlag(domain.FlagMissingProgram) != tt.flagged {
				t.Errorf("missing_program = %v, want %v", !tt.flagged, tt.flagged)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	n := testNormalizer()
	tests := []struct {
		name     string
		email    string
		category string
		flag     domain.Flag
	}{
		{"missing", "", "missing", domain.FlagMissingEmail},
		{"no at sign", "alexexample.com", "invalid", domain.FlagInvalidEmail},
		{"two at signs", "a@@example.com", "invalid", domain.FlagInvalidEmail},
		{"no domain dot", "alex@example", "invalid", domain.FlagInvalidEmail},
		{"embedded space", "alex smith@example.com", "invalid", domain.FlagInvalidEmail},
		{"education", "riley@school.edu", "education", ""},
		{"nonprofit", "sam@helpers.org", "nonprofit", ""},
		{"government", "pat@city.gov", "government", ""},
		{"network", "lee@provider.net", "network", ""},
		{"personal beats commercial", "casey@gmail.com", "personal", ""},
		{"commercial", "jo@company.com", "commercial", ""},
		{"other tld", "ana@uni.ac.uk", "other", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := n.Normalize(RawRow{"email": tt.email})
			if app.EmailDomainCategory != tt.category {
				t.Errorf("category = %q, want %q", app.EmailDomainCategory, tt.category)
			}
			if tt.flag != "" && !app.HasFlag(tt.flag) {
				t.Errorf("missing expected flag %s", tt.flag)
			}
		})
	}
}

func TestNormalizeGPA(t *testing.T) {
	n := testNormalizer()
	tests := []struct {
		name     string
		gpa      string
		want     *float64
		hasFlags []domain.Flag
		noFlags  []domain.Flag
	}{
		{"valid", "3.75", ptr(3.75), nil, []domain.Flag{domain.FlagLowGPA, domain.FlagGPAOutOfRange}},
		{"rounded", "3.456", ptr(3.46), nil, nil},
		{"low", "2.1", ptr(2.1), []domain.Flag{domain.FlagLowGPA}, []domain.Flag{domain.FlagGPAOutOfRange}},
		{"above range", "4.3", ptr(4.3), []domain.Flag{domain.FlagGPAOutOfRange}, []domain.Flag{domain.FlagLowGPA}},
		// Range check precedence: below-zero is out of range, never low.
		{"below range", "-1.0", ptr(-1.0), []domain.Flag{domain.FlagGPAOutOfRange}, []domain.Flag{domain.FlagLowGPA}},
		{"unparseable", "three point two", nil, []domain.Flag{domain.FlagInvalidGPA}, []domain.Flag{domain.FlagLowGPA, domain.FlagGPAOutOfRange}},
		{"empty", "", nil, nil, []domain.Flag{domain.FlagInvalidGPA}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := n.Normalize(RawRow{"gpa": tt.gpa})
			switch {
			case tt.want == nil && app.GPA != nil:
				t.Errorf("gpa = %v, want nil", *app.GPA)
			case tt.want != nil && (app.GPA == nil || *app.GPA != *tt.want):
				t.Errorf("gpa = %v, want %v", app.GPA, *tt.want)
			}
			for _, f := range tt.hasFlags {
				if !app.HasFlag(f) {
					t.Errorf("missing expected flag %s", f)
				}
			}
			for _, f := range tt.noFlags {
				if app.HasFlag(f) {
					t.Errorf("unexpected flag %s", f)
				}
			}
		})
	}
}

func TestNormalizeGraduationYear(t *testing.T) {
	n := testNormalizer() // current year 2026
	tests := []struct {
		name   string
		year   string
		bucket string
		flags  []domain.Flag
	}{
		{"current", "2026", "current", nil},
		{"next year", "2027", "next_year", nil},
		{"future", "2029", "future", nil},
		{"overdue in range", "2025", "overdue", nil},
		{"overdue out of range", "2020", "overdue", []domain.Flag{domain.FlagGraduationYearOutOfRange}},
		{"far future", "2034", "future", []domain.Flag{domain.FlagGraduationYearOutOfRange}},
		{"invalid", "twenty26", "unknown", []domain.Flag{domain.FlagInvalidGraduationYear}},
		{"empty", "", "unknown", []domain.Flag{domain.FlagMissingGraduationYear}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := n.Normalize(RawRow{"graduation_year": tt.year})
			if app.GraduationYearBucket != tt.bucket {
				t.Errorf("bucket = %q, want %q", app.GraduationYearBucket, tt.bucket)
			}
			for _, f := range tt.flags {
				if !app.HasFlag(f) {
					t.Errorf("missing expected flag %s", f)
				}
			}
		})
	}
}

func TestNormalizeSubmissionDate(t *testing.T) {
	n := testNormalizer() // today = 2026-02-01
	tests := []struct {
		name       string
		input      string
		date       string
		timeBucket string
		recency    string
		flags      []domain.Flag
	}{
		{"date only", "2026-01-30", "2026-01-30", "unknown", "fresh", nil},
		{"slash date", "2026/01/30", "2026-01-30", "unknown", "fresh", nil},
		{"us date", "01/30/2026", "2026-01-30", "unknown", "fresh", nil},
		{"datetime morning", "2026-01-30 09:15:00", "2026-01-30", "morning", "fresh", nil},
		{"datetime evening", "2026-01-30T19:00:00", "2026-01-30", "evening", "fresh", nil},
		{"datetime late night", "2026-01-30 02:00", "2026-01-30", "late_night", "fresh", nil},
		{"stale", "2025-12-01", "2025-12-01", "unknown", "backlog", []domain.Flag{domain.FlagStaleSubmission}},
		{"future", "2026-03-01", "2026-03-01", "unknown", "missing", []domain.Flag{domain.FlagFutureSubmissionDate}},
		{"invalid", "soon", "", "unknown", "missing", []domain.Flag{domain.FlagInvalidSubmissionDate}},
		{"empty", "", "", "unknown", "missing", []domain.Flag{domain.FlagMissingSubmissionDate}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := n.Normalize(RawRow{"submission_date": tt.input})
			if app.SubmissionDate != tt.date {
				t.Errorf("date = %q, want %q", app.SubmissionDate, tt.date)
			}
			if app.SubmissionTimeBucket != tt.timeBucket {
				t.Errorf("time bucket = %q, want %q", app.SubmissionTimeBucket, tt.timeBucket)
			}
			if app.SubmissionRecency != tt.recency {
				t.Errorf("recency = %q, want %q", app.SubmissionRecency, tt.recency)
			}
			for _, f := range tt.flags {
				if !app.HasFlag(f) {
					t.Errorf("missing expected flag %s", f)
				}
			}
		})
	}
}

func TestFutureSubmissionHasNoAge(t *testing.T) {
	n := testNormalizer()
	app := n.Normalize(RawRow{"submission_date": "2026-06-01"})
	if app.SubmissionAgeDays != nil {
		t.Errorf("age = %v, want nil for future date", *app.SubmissionAgeDays)
	}
	if app.SubmissionAgeBucket != "future" {
		t.Errorf("age bucket = %q, want future", app.SubmissionAgeBucket)
	}
	if app.HasFlag(domain.FlagStaleSubmission) {
		t.Error("future date must not be stale")
	}
}

func TestNormalizeIncome(t *testing.T) {
	n := testNormalizer()
	tests := []struct {
		input string
		want  string
	}{
		{"<=40k", "Under 40k"},
		{"under 40k", "Under 40k"},
		{"40k-70k", "40k-70k"},
		{"40k to 70k", "40k-70k"},
		{"$40,000 - $70,000", "40k-70k"},
		{"70k-100k", "70k-100k"},
		{">100k", "Over 100k"},
		{"100k+", "Over 100k"},
		{">=100k", "Over 100k"},
		{"above 150k", "Over 100k"},
		// Lower bounds under 100k span several brackets; keep them verbatim.
		{">40k", ">40k"},
		{"50k+", "50k+"},
		{"low income", "Under 40k"},
		{"prefer not to say", "Undisclosed"},
		{"weird value", "weird value"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			app := n.Normalize(RawRow{"income_bracket": tt.input})
			if app.IncomeBracket != tt.want {
				t.Errorf("income %q = %q, want %q", tt.input, app.IncomeBracket, tt.want)
			}
		})
	}
}

func TestNormalizeCitizenship(t *testing.T) {
	n := testNormalizer()

	app := n.Normalize(RawRow{"citizenship_status": "Green Card"})
	if app.CitizenshipStatus != "Permanent Resident" {
		t.Errorf("citizenship = %q", app.CitizenshipStatus)
	}

	app = n.Normalize(RawRow{"citizenship_status": "martian"})
	if app.CitizenshipStatus != "Other" {
		t.Errorf("unmatched citizenship = %q, want Other", app.CitizenshipStatus)
	}
	if !app.HasFlag(domain.FlagUnrecognizedCitizenshipStatus) {
		t.Error("missing unrecognized_citizenship_status flag")
	}

	app = n.Normalize(RawRow{"citizenship_status": ""})
	if !app.HasFlag(domain.FlagMissingCitizenshipStatus) {
		t.Error("missing missing_citizenship_status flag")
	}
}

func TestNormalizeSchoolTypeAndReferral(t *testing.T) {
	n := testNormalizer()

	app := n.Normalize(RawRow{"school_type": "home-school", "referral_source": "Instagram"})
	if app.SchoolType != "Homeschool" {
		t.Errorf("school type = %q, want Homeschool", app.SchoolType)
	}
	if app.ReferralSource != "Social Media" {
		t.Errorf("referral = %q, want Social Media", app.ReferralSource)
	}

	// Unmatched values fall back to title case.
	app = n.Normalize(RawRow{"school_type": "trade  school", "referral_source": "radio ad"})
	if app.SchoolType != "Trade School" {
		t.Errorf("school type = %q, want Trade School", app.SchoolType)
	}
	if app.ReferralSource != "Radio Ad" {
		t.Errorf("referral = %q, want Radio Ad", app.ReferralSource)
	}
}

func TestContactChannel(t *testing.T) {
	n := testNormalizer()
	tests := []struct {
		name  string
		row   RawRow
		want  string
	}{
		{"both", RawRow{"email": "a@b.com", "phone": "312-555-0101"}, "email_and_phone"},
		{"email only no phone column", RawRow{"email": "a@b.com"}, "email_only"},
		{"email only invalid phone", RawRow{"email": "a@b.com", "phone": "not-a-number"}, "email_only"},
		{"phone only", RawRow{"email": "", "phone": "312-555-0101"}, "phone_only"},
		{"phone only invalid email", RawRow{"email": "broken", "phone": "312-555-0101"}, "phone_only"},
		{"neither", RawRow{"email": "", "phone": ""}, "missing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := n.Normalize(tt.row)
			if app.ContactChannel != tt.want {
				t.Errorf("contact channel = %q, want %q", app.ContactChannel, tt.want)
			}
		})
	}
}

func TestExtractNoteTags(t *testing.T) {
	n := testNormalizer()

	app := n.Normalize(RawRow{"eligibility_notes": "Transcript pending; needs FAFSA follow up ASAP"})
	want := map[string]bool{"transcript_pending": true, "financial_aid": true, "urgent": true}
	if len(app.NoteTags) != len(want) {
		t.Fatalf("note tags = %v, want %d tags", app.NoteTags, len(want))
	}
	for _, tag := range app.NoteTags {
		if !want[tag] {
			t.Errorf("unexpected tag %q", tag)
		}
	}

	app = n.Normalize(RawRow{"eligibility_notes": "All docs complete"})
	if len(app.NoteTags) != 1 || app.NoteTags[0] != "docs_complete" {
		t.Errorf("note tags = %v, want [docs_complete]", app.NoteTags)
	}
}

func TestRequiredIdentityFields(t *testing.T) {
	n := testNormalizer()
	app := n.Normalize(RawRow{"applicant_id": "  ", "name": ""})
	if !app.HasFlag(domain.FlagMissingApplicantID) || !app.HasFlag(domain.FlagMissingName) {
		t.Errorf("flags = %v, want missing identity flags", app.Flags)
	}
}

func TestFlagsNeverDuplicated(t *testing.T) {
	n := testNormalizer()
	app := n.Normalize(RawRow{"email": ""})
	n.Refresh(app)
	n.Refresh(app)

	seen := make(map[domain.Flag]bool)
	for _, f := range app.Flags {
		if seen[f] {
			t.Fatalf("flag %s appears twice: %v", f, app.Flags)
		}
		seen[f] = true
	}
}

func TestCanonicalHeader(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Applicant ID", "applicant_id"},
		{"APPLICATION ID", "applicant_id"},
		{"Full Name", "name"},
		{"Email Address", "email"},
		{"E-Mail", "email"},
		{"First-Generation", "first_gen"},
		{"Submitted At", "submission_date"},
		{"Household Income", "income_bracket"},
		{"Essay Topic", "essay_topic"},
	}
	for _, tt := range tests {
		if got := CanonicalHeader(tt.raw); got != tt.want {
			t.Errorf("CanonicalHeader(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func ptr(v float64) *float64 { return &v }
