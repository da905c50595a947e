package domain

// DuplicateCounts holds the number of distinct keys (not records) that
// occurred two or more times in the batch, per duplicate dimension.
type DuplicateCounts struct {
	Email       int `json:"duplicate_email"`
	ApplicantID int `json:"duplicate_applicant_id"`
	Phone       int `json:"duplicate_phone"`
}

// Summary is the batch-level roll-up built once after duplicate detection
// and the derived-state refresh have finished. Immutable once built.
type Summary struct {
	TotalRows int `json:"total_rows"`

	// One counter per flag in the taxonomy.
	FlagCounts map[Flag]int `json:"flag_counts"`

	FirstGen            int `json:"first_gen"`
	FlaggedApplications int `json:"flagged_applications"`

	DuplicateEmail       int `json:"duplicate_email"`
	DuplicateApplicantID int `json:"duplicate_applicant_id"`
	DuplicatePhone       int `json:"duplicate_phone"`

	FlaggedRate  float64 `json:"flagged_rate"`
	FirstGenRate float64 `json:"first_gen_rate"`

	GPAAvg *float64 `json:"gpa_avg"`
	GPAMin *float64 `json:"gpa_min"`
	GPAMax *float64 `json:"gpa_max"`

	DataQualityAvg *float64 `json:"data_quality_avg"`
	DataQualityMin *int     `json:"data_quality_min"`
	DataQualityMax *int     `json:"data_quality_max"`

	ReadinessAvg *float64 `json:"readiness_avg"`
	ReadinessMin *int     `json:"readiness_min"`
	ReadinessMax *int     `json:"readiness_max"`

	SubmissionAgeAvg *float64 `json:"submission_age_avg"`
	SubmissionAgeMin *int     `json:"submission_age_min"`
	SubmissionAgeMax *int     `json:"submission_age_max"`

	ProgramCounts        map[string]int     `json:"program_counts"`
	ProgramGPAAvg        map[string]float64 `json:"program_gpa_avg"`
	FirstGenProgramCounts map[string]int    `json:"first_gen_program_counts"`
	FirstGenProgramRates  map[string]float64 `json:"first_gen_program_rates"`

	SchoolTypeCounts          map[string]int `json:"school_type_counts"`
	ReferralSourceCounts      map[string]int `json:"referral_source_counts"`
	IncomeBracketCounts       map[string]int `json:"income_bracket_counts"`
	CitizenshipStatusCounts   map[string]int `json:"citizenship_status_counts"`
	NoteTagCounts             map[string]int `json:"note_tag_counts"`
	EmailDomainCounts         map[string]int `json:"email_domain_counts"`
	EmailDomainCategoryCounts map[string]int `json:"email_domain_category_counts"`
	PhoneCountryCounts        map[string]int `json:"phone_country_counts"`
	ContactChannelCounts      map[string]int `json:"contact_channel_counts"`
	SubmissionWeekdayCounts   map[string]int `json:"submission_weekday_counts"`
	SubmissionTimeCounts      map[string]int `json:"submission_time_counts"`
	ReviewStatusCounts        map[string]int `json:"review_status_counts"`
	ReviewPriorityCounts      map[string]int `json:"review_priority_counts"`
	FlagSeverityCounts        map[string]int `json:"flag_severity_counts"`
	QualityTierCounts         map[string]int `json:"quality_tier_counts"`
	ReadinessBucketCounts     map[string]int `json:"readiness_bucket_counts"`
	SubmissionAgeBucketCounts map[string]int `json:"submission_age_bucket_counts"`
	SubmissionRecencyCounts   map[string]int `json:"submission_recency_counts"`
	GraduationYearCounts      map[string]int `json:"graduation_year_counts"`
	GraduationYearBucketCounts map[string]int `json:"graduation_year_bucket_counts"`

	SubmissionStart string `json:"submission_start,omitempty"`
	SubmissionEnd   string `json:"submission_end,omitempty"`
}

// Scorecard is the machine-readable quality digest written alongside the
// human report. It repeats the summary distributions and adds per-flag rates
// plus a raw email-domain frequency table.
type Scorecard struct {
	TotalRows           int     `json:"total_rows"`
	FlaggedApplications int     `json:"flagged_applications"`
	FlaggedRate         float64 `json:"flagged_rate"`
	FirstGenRate        float64 `json:"first_gen_rate"`

	FlagRates map[Flag]float64 `json:"flag_rates"`

	ProgramCounts         map[string]int     `json:"program_counts"`
	ProgramGPAAvg         map[string]float64 `json:"program_gpa_avg"`
	FirstGenProgramCounts map[string]int     `json:"first_gen_program_counts"`
	FirstGenProgramRates  map[string]float64 `json:"first_gen_program_rates"`

	SchoolTypeCounts          map[string]int `json:"school_type_counts"`
	ReferralSourceCounts      map[string]int `json:"referral_source_counts"`
	IncomeBracketCounts       map[string]int `json:"income_bracket_counts"`
	CitizenshipStatusCounts   map[string]int `json:"citizenship_status_counts"`
	NoteTagCounts             map[string]int `json:"note_tag_counts"`
	EmailDomainCounts         map[string]int `json:"email_domain_counts"`
	EmailDomainCategoryCounts map[string]int `json:"email_domain_category_counts"`
	PhoneCountryCounts        map[string]int `json:"phone_country_counts"`
	ContactChannelCounts      map[string]int `json:"contact_channel_counts"`
	SubmissionWeekdayCounts   map[string]int `json:"submission_weekday_counts"`
	ReviewStatusCounts        map[string]int `json:"review_status_counts"`
	ReviewPriorityCounts      map[string]int `json:"review_priority_counts"`
	FlagSeverityCounts        map[string]int `json:"flag_severity_counts"`
	QualityTierCounts         map[string]int `json:"quality_tier_counts"`
	ReadinessBucketCounts     map[string]int `json:"readiness_bucket_counts"`
	SubmissionAgeBucketCounts map[string]int `json:"submission_age_bucket_counts"`
	SubmissionRecencyCounts   map[string]int `json:"submission_recency_counts"`
	GraduationYearCounts      map[string]int `json:"graduation_year_counts"`
	GraduationYearBucketCounts map[string]int `json:"graduation_year_bucket_counts"`

	GPAAvg *float64 `json:"gpa_avg"`
	GPAMin *float64 `json:"gpa_min"`
	GPAMax *float64 `json:"gpa_max"`

	DataQualityAvg *float64 `json:"data_quality_avg"`
	DataQualityMin *int     `json:"data_quality_min"`
	DataQualityMax *int     `json:"data_quality_max"`

	ReadinessAvg *float64 `json:"readiness_avg"`
	ReadinessMin *int     `json:"readiness_min"`
	ReadinessMax *int     `json:"readiness_max"`

	SubmissionAgeAvg *float64 `json:"submission_age_avg"`
	SubmissionAgeMin *int     `json:"submission_age_min"`
	SubmissionAgeMax *int     `json:"submission_age_max"`

	SubmissionStart string `json:"submission_start,omitempty"`
	SubmissionEnd   string `json:"submission_end,omitempty"`
}
