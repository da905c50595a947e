package domain

// Flag identifies one validation or quality issue attached to an application.
type Flag string

const (
	FlagMissingApplicantID             Flag = "missing_applicant_id"
	FlagMissingName                    Flag = "missing_name"
	FlagMissingEmail                   Flag = "missing_email"
	FlagInvalidEmail                   Flag = "invalid_email"
	FlagMissingPhone                   Flag = "missing_phone"
	FlagInvalidPhone                   Flag = "invalid_phone"
	FlagMissingProgram                 Flag = "missing_program"
	FlagMissingSchoolType              Flag = "missing_school_type"
	FlagMissingReferralSource          Flag = "missing_referral_source"
	FlagMissingIncome                  Flag = "missing_income"
	FlagMissingCitizenshipStatus       Flag = "missing_citizenship_status"
	FlagUnrecognizedCitizenshipStatus  Flag = "unrecognized_citizenship_status"
	FlagLowGPA                         Flag = "low_gpa"
	FlagInvalidGPA                     Flag = "invalid_gpa"
	FlagGPAOutOfRange                  Flag = "gpa_out_of_range"
	FlagInvalidSubmissionDate          Flag = "invalid_submission_date"
	FlagFutureSubmissionDate           Flag = "future_submission_date"
	FlagMissingSubmissionDate          Flag = "missing_submission_date"
	FlagStaleSubmission                Flag = "stale_submission"
	FlagMissingGraduationYear          Flag = "missing_graduation_year"
	FlagInvalidGraduationYear          Flag = "invalid_graduation_year"
	FlagGraduationYearOutOfRange       Flag = "graduation_year_out_of_range"
	FlagDuplicateEmail                 Flag = "duplicate_email"
	FlagDuplicateApplicantID           Flag = "duplicate_applicant_id"
	FlagDuplicatePhone                 Flag = "duplicate_phone"
)

// AllFlags lists every flag the normalizer can raise, in a stable order.
// The aggregator iterates this so summary counters cover the whole taxonomy.
var AllFlags = []Flag{
	FlagMissingApplicantID,
	FlagMissingName,
	FlagMissingEmail,
	FlagInvalidEmail,
	FlagMissingPhone,
	FlagInvalidPhone,
	FlagMissingProgram,
	FlagMissingSchoolType,
	FlagMissingReferralSource,
	FlagMissingIncome,
	FlagMissingCitizenshipStatus,
	FlagUnrecognizedCitizenshipStatus,
	FlagLowGPA,
	FlagInvalidGPA,
	FlagGPAOutOfRange,
	FlagInvalidSubmissionDate,
	FlagFutureSubmissionDate,
	FlagMissingSubmissionDate,
	FlagStaleSubmission,
	FlagMissingGraduationYear,
	FlagInvalidGraduationYear,
	FlagGraduationYearOutOfRange,
	FlagDuplicateEmail,
	FlagDuplicateApplicantID,
	FlagDuplicatePhone,
}

// Severity enumerates the flag severity tiers, worst first.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityClean    Severity = "clean"
)

// ReviewStatus enumerates where an application sits in the review pipeline.
type ReviewStatus string

const (
	ReviewReady        ReviewStatus = "ready"
	ReviewNeedsFollow  ReviewStatus = "needs_follow_up"
	ReviewNeedsReview  ReviewStatus = "needs_review"
	ReviewIncomplete   ReviewStatus = "incomplete"
)

// ReviewPriority enumerates how urgently a record needs human attention.
type ReviewPriority string

const (
	PriorityReady  ReviewPriority = "ready"
	PriorityLow    ReviewPriority = "low"
	PriorityMedium ReviewPriority = "medium"
	PriorityHigh   ReviewPriority = "high"
)

// Application is one fully normalized, classified scholarship application.
// It is created once by the normalizer; after that only the duplicate pass
// and the derived-state refresh mutate it.
type Application struct {
	ApplicantID string `json:"applicant_id" db:"applicant_id"`
	Name        string `json:"name" db:"name"`

	Email               string `json:"email,omitempty" db:"email"`
	EmailDomainCategory string `json:"email_domain_category" db:"email_domain_category"`

	Phone           string `json:"phone,omitempty" db:"phone"`
	PhoneNormalized string `json:"phone_normalized,omitempty" db:"phone_normalized"`
	PhoneCountry    string `json:"phone_country,omitempty" db:"phone_country"`
	ContactChannel  string `json:"contact_channel" db:"contact_channel"`

	Program           string `json:"program" db:"program"`
	SchoolType        string `json:"school_type,omitempty" db:"school_type"`
	CitizenshipStatus string `json:"citizenship_status,omitempty" db:"citizenship_status"`
	ReferralSource    string `json:"referral_source,omitempty" db:"referral_source"`

	GPA           *float64 `json:"gpa" db:"gpa"`
	IncomeBracket string   `json:"income_bracket,omitempty" db:"income_bracket"`

	GraduationYear       *int   `json:"graduation_year" db:"graduation_year"`
	GraduationYearBucket string `json:"graduation_year_bucket" db:"graduation_year_bucket"`

	SubmissionDate       string `json:"submission_date,omitempty" db:"submission_date"` // YYYY-MM-DD
	SubmissionHour       *int   `json:"submission_hour" db:"submission_hour"`
	SubmissionTimeBucket string `json:"submission_time_bucket" db:"submission_time_bucket"`
	SubmissionAgeDays    *int   `json:"submission_age_days" db:"submission_age_days"`
	SubmissionAgeBucket  string `json:"submission_age_bucket,omitempty" db:"submission_age_bucket"`
	SubmissionRecency    string `json:"submission_recency" db:"submission_recency"`

	FirstGen         bool     `json:"first_gen" db:"first_gen"`
	EligibilityNotes string   `json:"eligibility_notes,omitempty" db:"eligibility_notes"`
	NoteTags         []string `json:"note_tags" db:"note_tags"`

	// Derived quality state. Every field below is a pure function of Flags
	// and must be refreshed whenever Flags changes.
	Flags            []Flag         `json:"flags" db:"flags"`
	FlagSeverity     Severity       `json:"flag_severity" db:"flag_severity"`
	ReviewStatus     ReviewStatus   `json:"review_status" db:"review_status"`
	ReviewPriority   ReviewPriority `json:"review_priority" db:"review_priority"`
	DataQualityScore int            `json:"data_quality_score" db:"data_quality_score"`
	ReadinessScore   int            `json:"readiness_score" db:"readiness_score"`
	ReadinessBucket  string         `json:"readiness_bucket" db:"readiness_bucket"`
}

// HasFlag reports whether the flag is already present on the application.
func (a *Application) HasFlag(f Flag) bool {
	for _, existing := range a.Flags {
		if existing == f {
			return true
		}
	}
	return false
}

// AddFlag appends a flag unless it is already present, preserving order.
func (a *Application) AddFlag(f Flag) {
	if !a.HasFlag(f) {
		a.Flags = append(a.Flags, f)
	}
}

// RemoveFlag deletes a flag if present, preserving the order of the rest.
func (a *Application) RemoveFlag(f Flag) {
	for i, existing := range a.Flags {
		if existing == f {
			a.Flags = append(a.Flags[:i], a.Flags[i+1:]...)
			return
		}
	}
}
