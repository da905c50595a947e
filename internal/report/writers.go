// Package report writes the run artifacts: normalized JSON, the human
// summary report, the flagged-issues CSV, the follow-up queue, and the
// scorecard JSON. All writers are read-only consumers of the entities.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/groupscholar/intake-normalizer/internal/domain"
)

// WriteJSON writes the normalized applications as indented JSON.
func WriteJSON(apps []*domain.Application, path string) error {
	payload, err := json.MarshalIndent(apps, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal applications: %w", err)
	}
	return writeFile(path, payload)
}

// WriteScorecard writes the scorecard digest as indented JSON.
func WriteScorecard(card *domain.Scorecard, path string) error {
	payload, err := json.MarshalIndent(card, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal scorecard: %w", err)
	}
	return writeFile(path, payload)
}

// WriteReport writes the human-readable batch summary.
func WriteReport(s *domain.Summary, path string) error {
	var b strings.Builder

	b.WriteString("# Intake Normalization Summary\n\n")
	fmt.Fprintf(&b, "Total applications: %d\n", s.TotalRows)
	fmt.Fprintf(&b, "Flagged applications: %d (%.1f%%)\n", s.FlaggedApplications, s.FlaggedRate)
	fmt.Fprintf(&b, "First-gen applicants: %d (%.1f%%)\n", s.FirstGen, s.FirstGenRate)
	fmt.Fprintf(&b, "Duplicate emails: %d\n", s.DuplicateEmail)
	fmt.Fprintf(&b, "Duplicate applicant IDs: %d\n", s.DuplicateApplicantID)
	fmt.Fprintf(&b, "Duplicate phones: %d\n", s.DuplicatePhone)
	fmt.Fprintf(&b, "GPA average: %s\n", fmtFloat(s.GPAAvg))
	fmt.Fprintf(&b, "GPA range: %s to %s\n", fmtFloat(s.GPAMin), fmtFloat(s.GPAMax))
	fmt.Fprintf(&b, "Data quality average: %s\n", fmtFloat(s.DataQualityAvg))
	fmt.Fprintf(&b, "Readiness average: %s\n", fmtFloat(s.ReadinessAvg))
	fmt.Fprintf(&b, "Submission age average (days): %s\n", fmtFloat(s.SubmissionAgeAvg))
	fmt.Fprintf(&b, "Submission window: %s to %s\n", orNA(s.SubmissionStart), orNA(s.SubmissionEnd))

	b.WriteString("\n## Validation flags\n")
	for _, flag := range domain.AllFlags {
		if count := s.FlagCounts[flag]; count > 0 {
			fmt.Fprintf(&b, "- %s: %d\n", flagLabel(flag), count)
		}
	}

	writeSection(&b, "Applications by program", s.ProgramCounts)

	b.WriteString("\n## GPA by program\n")
	for _, program := range sortedKeys(s.ProgramCounts) {
		if avg, ok := s.ProgramGPAAvg[program]; ok {
			fmt.Fprintf(&b, "- %s: %.2f\n", program, avg)
		} else {
			fmt.Fprintf(&b, "- %s: n/a\n", program)
		}
	}

	b.WriteString("\n## First-gen rate by program\n")
	for _, program := range sortedKeys(s.ProgramCounts) {
		fmt.Fprintf(&b, "- %s: %.1f%% (%d)\n", program, s.FirstGenProgramRates[program], s.FirstGenProgramCounts[program])
	}

	writeSection(&b, "Review status", s.ReviewStatusCounts)
	writeSection(&b, "Review priority", s.ReviewPriorityCounts)
	writeSection(&b, "Flag severity", s.FlagSeverityCounts)
	writeSection(&b, "Quality tier", s.QualityTierCounts)
	writeSection(&b, "Readiness bucket", s.ReadinessBucketCounts)
	writeSection(&b, "Submission recency", s.SubmissionRecencyCounts)
	writeSection(&b, "School type", s.SchoolTypeCounts)
	writeSection(&b, "Citizenship status", s.CitizenshipStatusCounts)
	writeSection(&b, "Referral source", s.ReferralSourceCounts)
	writeSection(&b, "Income bracket", s.IncomeBracketCounts)
	writeSection(&b, "Contact channel", s.ContactChannelCounts)
	writeSection(&b, "Email domain category", s.EmailDomainCategoryCounts)
	writeSection(&b, "Phone country", s.PhoneCountryCounts)
	writeSection(&b, "Graduation year bucket", s.GraduationYearBucketCounts)

	return writeFile(path, []byte(b.String()))
}

func writeSection(b *strings.Builder, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	fmt.Fprintf(b, "\n## %s\n", title)
	for _, key := range sortedKeys(counts) {
		fmt.Fprintf(b, "- %s: %d\n", key, counts[key])
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func fmtFloat(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}

func orNA(v string) string {
	if v == "" {
		return "n/a"
	}
	return v
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
