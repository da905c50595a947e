package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/groupscholar/intake-normalizer/internal/domain"
)

var flagLabels = map[domain.Flag]string{
	domain.FlagMissingApplicantID:            "Missing applicant ID",
	domain.FlagMissingName:                   "Missing applicant name",
	domain.FlagMissingEmail:                  "Missing email",
	domain.FlagInvalidEmail:                  "Invalid email",
	domain.FlagMissingPhone:                  "Missing phone",
	domain.FlagInvalidPhone:                  "Invalid phone",
	domain.FlagMissingProgram:                "Missing program",
	domain.FlagMissingSchoolType:             "Missing school type",
	domain.FlagMissingReferralSource:         "Missing referral source",
	domain.FlagMissingIncome:                 "Missing income bracket",
	domain.FlagMissingCitizenshipStatus:      "Missing citizenship status",
	domain.FlagUnrecognizedCitizenshipStatus: "Unrecognized citizenship status",
	domain.FlagLowGPA:                        "Low GPA",
	domain.FlagInvalidGPA:                    "Invalid GPA format",
	domain.FlagGPAOutOfRange:                 "GPA out of range",
	domain.FlagInvalidSubmissionDate:         "Invalid submission date",
	domain.FlagFutureSubmissionDate:          "Submission date in future",
	domain.FlagMissingSubmissionDate:         "Missing submission date",
	domain.FlagStaleSubmission:               "Stale submission",
	domain.FlagMissingGraduationYear:         "Missing graduation year",
	domain.FlagInvalidGraduationYear:         "Invalid graduation year",
	domain.FlagGraduationYearOutOfRange:      "Graduation year out of range",
	domain.FlagDuplicateEmail:                "Duplicate email",
	domain.FlagDuplicateApplicantID:          "Duplicate applicant ID",
	domain.FlagDuplicatePhone:                "Duplicate phone",
}

func flagLabel(f domain.Flag) string {
	if label, ok := flagLabels[f]; ok {
		return label
	}
	return strings.ReplaceAll(string(f), "_", " ")
}

// FollowUpReason renders the flag list as a human-readable reason string.
func FollowUpReason(flags []domain.Flag) string {
	reasons := make([]string, len(flags))
	for i, f := range flags {
		reasons[i] = flagLabel(f)
	}
	return strings.Join(reasons, "; ")
}

// WriteIssues writes one CSV row per flagged application.
func WriteIssues(apps []*domain.Application, path string) error {
	rows := [][]string{{
		"applicant_id", "name", "email", "program", "submission_date",
		"flags", "follow_up_reason",
	}}
	for _, app := range apps {
		if len(app.Flags) == 0 {
			continue
		}
		rows = append(rows, []string{
			app.ApplicantID,
			app.Name,
			app.Email,
			app.Program,
			app.SubmissionDate,
			joinFlags(app.Flags),
			FollowUpReason(app.Flags),
		})
	}
	return writeCSV(path, rows)
}

var priorityRank = map[domain.ReviewPriority]int{
	domain.PriorityHigh:   0,
	domain.PriorityMedium: 1,
	domain.PriorityLow:    2,
	domain.PriorityReady:  3,
}

// WriteFollowUpQueue writes the review work queue: every application that is
// not ready, most urgent first (priority, then lowest readiness score).
func WriteFollowUpQueue(apps []*domain.Application, path string) error {
	queue := make([]*domain.Application, 0, len(apps))
	for _, app := range apps {
		if app.ReviewStatus != domain.ReviewReady {
			queue = append(queue, app)
		}
	}
	sort.SliceStable(queue, func(i, j int) bool {
		if priorityRank[queue[i].ReviewPriority] != priorityRank[queue[j].ReviewPriority] {
			return priorityRank[queue[i].ReviewPriority] < priorityRank[queue[j].ReviewPriority]
		}
		return queue[i].ReadinessScore < queue[j].ReadinessScore
	})

	rows := [][]string{{
		"applicant_id", "name", "email", "phone", "program",
		"review_status", "review_priority", "readiness_score",
		"flags", "recommended_action",
	}}
	for _, app := range queue {
		rows = append(rows, []string{
			app.ApplicantID,
			app.Name,
			app.Email,
			app.Phone,
			app.Program,
			string(app.ReviewStatus),
			string(app.ReviewPriority),
			strconv.Itoa(app.ReadinessScore),
			joinFlags(app.Flags),
			recommendedAction(app),
		})
	}
	return writeCSV(path, rows)
}

func recommendedAction(app *domain.Application) string {
	switch app.ReviewStatus {
	case domain.ReviewIncomplete:
		return "Contact applicant to complete identity or contact details"
	case domain.ReviewNeedsReview:
		return "Verify flagged fields before committee review"
	default:
		return "Follow up on minor data gaps"
	}
}

func joinFlags(flags []domain.Flag) string {
	parts := make([]string, len(flags))
	for i, f := range flags {
		parts[i] = string(f)
	}
	return strings.Join(parts, "; ")
}

func writeCSV(path string, rows [][]string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
