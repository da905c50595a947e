package intake

import "github.com/groupscholar/intake-normalizer/internal/domain"

// criticalFlags are issues that make a record unreviewable as submitted:
// broken identity or contact data, or a cross-record identity collision.
var criticalFlags = map[domain.Flag]bool{
	domain.FlagMissingApplicantID:   true,
	domain.FlagMissingName:          true,
	domain.FlagMissingEmail:         true,
	domain.FlagInvalidEmail:         true,
	domain.FlagDuplicateEmail:       true,
	domain.FlagDuplicateApplicantID: true,
}

// highFlags are structural problems a reviewer must resolve before scoring
// the application. Everything not critical or high counts as medium.
var highFlags = map[domain.Flag]bool{
	domain.FlagInvalidGPA:              true,
	domain.FlagGPAOutOfRange:           true,
	domain.FlagInvalidSubmissionDate:   true,
	domain.FlagFutureSubmissionDate:    true,
	domain.FlagMissingSubmissionDate:   true,
	domain.FlagInvalidPhone:            true,
	domain.FlagDuplicatePhone:          true,
	domain.FlagMissingProgram:          true,
	domain.FlagInvalidGraduationYear:   true,
	domain.FlagGraduationYearOutOfRange: true,
	domain.FlagUnrecognizedCitizenshipStatus: true,
}

// Score penalties per severity tier.
const (
	qualityPenaltyCritical = 25
	qualityPenaltyHigh     = 10
	qualityPenaltyOther    = 5

	readinessPenaltyCritical = 30
	readinessPenaltyHigh     = 15
	readinessPenaltyOther    = 8
)

func severityOf(f domain.Flag) domain.Severity {
	switch {
	case criticalFlags[f]:
		return domain.SeverityCritical
	case highFlags[f]:
		return domain.SeverityHigh
	default:
		return domain.SeverityMedium
	}
}

// flagSeverity returns the worst tier present, or clean for an empty set.
func flagSeverity(flags []domain.Flag) domain.Severity {
	if len(flags) == 0 {
		return domain.SeverityClean
	}
	worst := domain.SeverityMedium
	for _, f := range flags {
		switch severityOf(f) {
		case domain.SeverityCritical:
			return domain.SeverityCritical
		case domain.SeverityHigh:
			worst = domain.SeverityHigh
		}
	}
	return worst
}

// reviewLadder maps the severity composition of the flag set onto the
// 4-level review status/priority ladder.
func reviewLadder(flags []domain.Flag) (domain.ReviewStatus, domain.ReviewPriority) {
	switch flagSeverity(flags) {
	case domain.SeverityCritical:
		return domain.ReviewIncomplete, domain.PriorityHigh
	case domain.SeverityHigh:
		return domain.ReviewNeedsReview, domain.PriorityMedium
	case domain.SeverityMedium:
		return domain.ReviewNeedsFollow, domain.PriorityLow
	default:
		return domain.ReviewReady, domain.PriorityReady
	}
}

func dataQualityScore(flags []domain.Flag) int {
	score := 100
	for _, f := range flags {
		switch severityOf(f) {
		case domain.SeverityCritical:
			score -= qualityPenaltyCritical
		case domain.SeverityHigh:
			score -= qualityPenaltyHigh
		default:
			score -= qualityPenaltyOther
		}
	}
	if score < 0 {
		score = 0
	}
	return score
}

func readinessScore(flags []domain.Flag) int {
	score := 100
	for _, f := range flags {
		switch severityOf(f) {
		case domain.SeverityCritical:
			score -= readinessPenaltyCritical
		case domain.SeverityHigh:
			score -= readinessPenaltyHigh
		default:
			score -= readinessPenaltyOther
		}
	}
	if score < 0 {
		score = 0
	}
	return score
}

func readinessBucket(score int) string {
	switch {
	case score >= 85:
		return "ready"
	case score >= 65:
		return "needs_follow_up"
	case score >= 45:
		return "needs_review"
	default:
		return "incomplete"
	}
}

// qualityTier buckets the data-quality score for aggregation.
func qualityTier(score int) string {
	switch {
	case score >= 90:
		return "excellent"
	case score >= 75:
		return "good"
	case score >= 50:
		return "needs_attention"
	default:
		return "critical"
	}
}

// Refresh re-derives every field that is a function of the flag set, plus the
// stale-submission flag itself (which depends on the submission age, not on
// other flags). Idempotent; safe to invoke any number of times. Must run
// after any pass that mutates Flags, duplicate detection in particular.
func (n *Normalizer) Refresh(app *domain.Application) {
	if app.SubmissionAgeDays != nil && *app.SubmissionAgeDays >= n.rules.StaleAfterDays {
		app.AddFlag(domain.FlagStaleSubmission)
	} else {
		app.RemoveFlag(domain.FlagStaleSubmission)
	}

	app.FlagSeverity = flagSeverity(app.Flags)
	app.ReviewStatus, app.ReviewPriority = reviewLadder(app.Flags)
	app.DataQualityScore = dataQualityScore(app.Flags)
	app.ReadinessScore = readinessScore(app.Flags)
	app.ReadinessBucket = readinessBucket(app.ReadinessScore)
}

// RefreshAll refreshes derived state on every application in the batch.
func (n *Normalizer) RefreshAll(apps []*domain.Application) {
	for _, app := range apps {
		n.Refresh(app)
	}
}
