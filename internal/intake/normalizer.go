package intake

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/groupscholar/intake-normalizer/internal/domain"
)

// RawRow is one ingested CSV row keyed by canonical header name.
type RawRow map[string]string

// Normalizer turns raw rows into normalized, classified applications.
// Deterministic: the only ambient input is the reference date given at
// construction time.
type Normalizer struct {
	rules *Rules
	today time.Time
	title cases.Caser
}

// NewNormalizer builds a normalizer over an immutable rule set. The today
// value is truncated to a calendar date and anchors every age computation.
func NewNormalizer(rules *Rules, today time.Time) *Normalizer {
	return &Normalizer{
		rules: rules,
		today: time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC),
		title: cases.Title(language.English),
	}
}

// Normalize applies every field rule to one raw row and returns the
// normalized application with its initial derived state. Field problems
// become flags; nothing here returns an error.
func (n *Normalizer) Normalize(row RawRow) *domain.Application {
	app := &domain.Application{
		ApplicantID: strings.TrimSpace(row["applicant_id"]),
		Name:        strings.TrimSpace(row["name"]),
		NoteTags:    []string{},
	}

	if app.ApplicantID == "" {
		app.AddFlag(domain.FlagMissingApplicantID)
	}
	if app.Name == "" {
		app.AddFlag(domain.FlagMissingName)
	}

	n.normalizeEmail(app, row)
	n.normalizePhone(app, row)
	app.ContactChannel = contactChannel(app)

	n.normalizeProgram(app, row)
	n.normalizeSchoolType(app, row)
	n.normalizeCitizenship(app, row)
	n.normalizeReferral(app, row)
	n.normalizeIncome(app, row)
	n.normalizeGPA(app, row)
	n.normalizeGraduationYear(app, row)
	n.normalizeSubmission(app, row)

	app.FirstGen = parseBool(row["first_gen"])
	app.EligibilityNotes = strings.TrimSpace(row["eligibility_notes"])
	app.NoteTags = n.extractNoteTags(app.EligibilityNotes)

	n.Refresh(app)
	return app
}

func (n *Normalizer) normalizeEmail(app *domain.Application, row RawRow) {
	email := strings.TrimSpace(row["email"])
	app.Email = email

	switch {
	case email == "":
		app.AddFlag(domain.FlagMissingEmail)
		app.EmailDomainCategory = "missing"
	case !isEmail(email):
		app.AddFlag(domain.FlagInvalidEmail)
		app.EmailDomainCategory = "invalid"
	default:
		app.EmailDomainCategory = n.classifyEmailDomain(emailDomain(email))
	}
}

// isEmail applies the intake validity rule: exactly one @, non-empty local
// part, a dot somewhere in the domain, and no embedded whitespace.
func isEmail(v string) bool {
	if strings.Count(v, "@") != 1 {
		return false
	}
	if strings.ContainsAny(v, " \t") {
		return false
	}
	at := strings.Index(v, "@")
	local, dom := v[:at], v[at+1:]
	return local != "" && strings.Contains(dom, ".")
}

func emailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at >= len(email)-1 {
		return ""
	}
	return strings.ToLower(email[at+1:])
}

func (n *Normalizer) classifyEmailDomain(domainName string) string {
	switch {
	case strings.HasSuffix(domainName, ".edu"):
		return "education"
	case strings.HasSuffix(domainName, ".org"):
		return "nonprofit"
	case strings.HasSuffix(domainName, ".gov"):
		return "government"
	case strings.HasSuffix(domainName, ".net"):
		return "network"
	case n.rules.PersonalEmailProviders[domainName]:
		return "personal"
	case strings.HasSuffix(domainName, ".com"):
		return "commercial"
	default:
		return "other"
	}
}

// contactChannel classifies reachability from the two channels independently.
// An invalid or missing phone counts as no phone; same for email.
func contactChannel(app *domain.Application) string {
	hasEmail := app.Email != "" && !app.HasFlag(domain.FlagInvalidEmail)
	hasPhone := app.PhoneNormalized != ""
	switch {
	case hasEmail && hasPhone:
		return "email_and_phone"
	case hasEmail:
		return "email_only"
	case hasPhone:
		return "phone_only"
	default:
		return "missing"
	}
}

func (n *Normalizer) normalizeProgram(app *domain.Application, row RawRow) {
	raw := strings.TrimSpace(row["program"])
	if raw == "" {
		app.Program = "Unspecified"
		app.AddFlag(domain.FlagMissingProgram)
		return
	}
	if canonical, ok := n.rules.ProgramAliases[strings.ToLower(raw)]; ok {
		app.Program = canonical
		return
	}
	app.Program = n.title.String(strings.ToLower(raw))
}

func (n *Normalizer) normalizeSchoolType(app *domain.Application, row RawRow) {
	raw := strings.TrimSpace(row["school_type"])
	if raw == "" {
		app.AddFlag(domain.FlagMissingSchoolType)
		return
	}
	key := normalizeKey(raw)
	if canonical, ok := n.rules.SchoolTypeAliases[key]; ok {
		app.SchoolType = canonical
		return
	}
	app.SchoolType = n.title.String(key)
}

func (n *Normalizer) normalizeCitizenship(app *domain.Application, row RawRow) {
	raw := strings.TrimSpace(row["citizenship_status"])
	if raw == "" {
		app.AddFlag(domain.FlagMissingCitizenshipStatus)
		return
	}
	key := normalizeKey(raw)
	if canonical, ok := n.rules.CitizenshipAliases[key]; ok {
		app.CitizenshipStatus = canonical
		return
	}
	app.CitizenshipStatus = "Other"
	app.AddFlag(domain.FlagUnrecognizedCitizenshipStatus)
}

func (n *Normalizer) normalizeReferral(app *domain.Application, row RawRow) {
	raw := strings.TrimSpace(row["referral_source"])
	if raw == "" {
		app.AddFlag(domain.FlagMissingReferralSource)
		return
	}
	key := normalizeKey(raw)
	if canonical, ok := n.rules.ReferralAliases[key]; ok {
		app.ReferralSource = canonical
		return
	}
	app.ReferralSource = n.title.String(key)
}

var (
	// Hyphens are already collapsed to spaces by normalizeKey, so a bare
	// space is accepted as the range separator alongside "to".
	incomeRangeRe = regexp.MustCompile(`^(\d+)k?(?:\s*to\s*|\s+)(\d+)k?$`)
	incomeUpperRe = regexp.MustCompile(`^(?:<|<=|under|below)\s*(\d+)k?$`)
	incomeLowerRe = regexp.MustCompile(`^(?:>|>=|over|above)\s*(\d+)k?\+?$|^(\d+)k?\+$`)
)

func (n *Normalizer) normalizeIncome(app *domain.Application, row RawRow) {
	raw := strings.TrimSpace(row["income_bracket"])
	if raw == "" {
		app.AddFlag(domain.FlagMissingIncome)
		return
	}
	key := normalizeKey(raw)
	if canonical, ok := n.rules.IncomeAliases[key]; ok {
		app.IncomeBracket = canonical
		return
	}
	if bucket, ok := parseIncomeRange(key); ok {
		app.IncomeBracket = bucket
		return
	}
	// Unmatched and unparseable income values pass through verbatim.
	app.IncomeBracket = raw
}

// parseIncomeRange maps numeric range and bound patterns (40k-70k, <=40k,
// >100k, 100k+) onto the four canonical brackets by upper bound.
func parseIncomeRange(key string) (string, bool) {
	compact := strings.ReplaceAll(strings.ReplaceAll(key, "$", ""), ",", "")
	compact = strings.Join(strings.Fields(compact), " ")

	if m := incomeRangeRe.FindStringSubmatch(compact); m != nil {
		return incomeBucketByUpper(parseThousands(m[2])), true
	}
	if m := incomeUpperRe.FindStringSubmatch(compact); m != nil {
		return incomeBucketByUpper(parseThousands(m[1])), true
	}
	if m := incomeLowerRe.FindStringSubmatch(compact); m != nil {
		digits := m[1]
		if digits == "" {
			digits = m[2]
		}
		// A lower bound pins a bracket only when it clears the top one;
		// ">40k" spans several brackets, so it passes through verbatim.
		if parseThousands(digits) >= 100 {
			return "Over 100k", true
		}
	}
	return "", false
}

func parseThousands(digits string) int {
	v, _ := strconv.Atoi(digits)
	if v >= 1000 {
		v /= 1000
	}
	return v
}

func incomeBucketByUpper(upper int) string {
	switch {
	case upper <= 40:
		return "Under 40k"
	case upper <= 70:
		return "40k-70k"
	case upper <= 100:
		return "70k-100k"
	default:
		return "Over 100k"
	}
}

func (n *Normalizer) normalizeGPA(app *domain.Application, row RawRow) {
	raw := strings.TrimSpace(row["gpa"])
	if raw == "" {
		return
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		app.AddFlag(domain.FlagInvalidGPA)
		return
	}
	gpa := math.Round(parsed*100) / 100
	app.GPA = &gpa

	// Range check takes precedence: an out-of-range GPA never also counts
	// as low, even when it is below the low cutoff.
	if gpa < n.rules.GPAMin || gpa > n.rules.GPAMax {
		app.AddFlag(domain.FlagGPAOutOfRange)
	} else if gpa < n.rules.LowGPACutoff {
		app.AddFlag(domain.FlagLowGPA)
	}
}

func (n *Normalizer) normalizeGraduationYear(app *domain.Application, row RawRow) {
	raw := strings.TrimSpace(row["graduation_year"])
	if raw == "" {
		app.AddFlag(domain.FlagMissingGraduationYear)
		app.GraduationYearBucket = "unknown"
		return
	}
	if !isDigits(raw) {
		app.AddFlag(domain.FlagInvalidGraduationYear)
		app.GraduationYearBucket = "unknown"
		return
	}
	year, _ := strconv.Atoi(raw)
	app.GraduationYear = &year

	current := n.today.Year()
	if year < current-n.rules.GradYearPastWindow || year > current+n.rules.GradYearFutureWindow {
		app.AddFlag(domain.FlagGraduationYearOutOfRange)
	}
	switch {
	case year < current:
		app.GraduationYearBucket = "overdue"
	case year == current:
		app.GraduationYearBucket = "current"
	case year == current+1:
		app.GraduationYearBucket = "next_year"
	default:
		app.GraduationYearBucket = "future"
	}
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func (n *Normalizer) normalizeSubmission(app *domain.Application, row RawRow) {
	raw := strings.TrimSpace(row["submission_date"])
	app.SubmissionTimeBucket = "unknown"
	app.SubmissionRecency = "missing"

	if raw == "" {
		app.AddFlag(domain.FlagMissingSubmissionDate)
		return
	}

	parsed, hour, ok := n.parseSubmission(raw)
	if !ok {
		app.AddFlag(domain.FlagInvalidSubmissionDate)
		return
	}

	app.SubmissionDate = parsed.Format("2006-01-02")
	if hour != nil {
		app.SubmissionHour = hour
		app.SubmissionTimeBucket = timeBucket(*hour)
	}

	day := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
	if day.After(n.today) {
		app.AddFlag(domain.FlagFutureSubmissionDate)
		app.SubmissionAgeBucket = "future"
		return
	}

	age := int(n.today.Sub(day) / (24 * time.Hour))
	app.SubmissionAgeDays = &age
	app.SubmissionAgeBucket = ageBucket(age)
	app.SubmissionRecency = recencyBucket(age)
}

// parseSubmission tries the datetime layouts first, then the date-only
// layouts. First match wins; the hour is only known for datetime layouts.
func (n *Normalizer) parseSubmission(raw string) (time.Time, *int, bool) {
	for _, layout := range n.rules.DateTimeFormats {
		if t, err := time.Parse(layout, raw); err == nil {
			h := t.Hour()
			return t, &h, true
		}
	}
	for _, layout := range n.rules.DateFormats {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil, true
		}
	}
	return time.Time{}, nil, false
}

func timeBucket(hour int) string {
	switch {
	case hour >= 5 && hour <= 8:
		return "early_morning"
	case hour >= 9 && hour <= 11:
		return "morning"
	case hour >= 12 && hour <= 16:
		return "afternoon"
	case hour >= 17 && hour <= 20:
		return "evening"
	default:
		return "late_night"
	}
}

func ageBucket(days int) string {
	switch {
	case days <= 7:
		return "0-7 days"
	case days <= 14:
		return "8-14 days"
	case days <= 30:
		return "15-30 days"
	case days <= 60:
		return "31-60 days"
	case days <= 90:
		return "61-90 days"
	default:
		return "90+ days"
	}
}

func recencyBucket(days int) string {
	switch {
	case days <= 7:
		return "fresh"
	case days <= 30:
		return "active"
	case days <= 60:
		return "stale"
	case days <= 90:
		return "backlog"
	default:
		return "archive"
	}
}

// extractNoteTags matches the notes against the tag phrase table.
// Case-insensitive substring match; first matching phrase per tag wins and
// a tag is never assigned twice.
func (n *Normalizer) extractNoteTags(notes string) []string {
	tags := []string{}
	if notes == "" {
		return tags
	}
	lower := strings.ToLower(notes)
	for _, rule := range n.rules.NoteTagRules {
		for _, phrase := range rule.Phrases {
			if strings.Contains(lower, phrase) {
				tags = append(tags, rule.Tag)
				break
			}
		}
	}
	return tags
}

func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "y", "true", "1":
		return true
	default:
		return false
	}
}

// normalizeKey lowers, trims, and collapses separator characters to single
// spaces so alias lookups tolerate user-entered variation.
func normalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", " ", "/", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

func replaceSpaces(s string) string {
	return strings.ReplaceAll(s, " ", "_")
}
