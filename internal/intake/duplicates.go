package intake

import (
	"strings"

	"github.com/groupscholar/intake-normalizer/internal/domain"
)

// DetectDuplicates finds applications sharing a normalized email, applicant
// id, or phone and flags every affected record. Email and applicant id
// compare case-insensitively after trimming; phones compare on the
// normalized E.164-like form only, so unparseable phones never collide.
// The returned counts are distinct keys with two or more occurrences, not
// record counts. Idempotent: flags are never appended twice.
//
// This is a whole-batch barrier pass; callers must run RefreshAll afterward
// so derived state catches up with the new flags.
func DetectDuplicates(apps []*domain.Application) domain.DuplicateCounts {
	emailCounts := make(map[string]int)
	idCounts := make(map[string]int)
	phoneCounts := make(map[string]int)

	for _, app := range apps {
		if key := dupKey(app.Email); key != "" {
			emailCounts[key]++
		}
		if key := dupKey(app.ApplicantID); key != "" {
			idCounts[key]++
		}
		if app.PhoneNormalized != "" {
			phoneCounts[app.PhoneNormalized]++
		}
	}

	for _, app := range apps {
		if key := dupKey(app.Email); key != "" && emailCounts[key] > 1 {
			app.AddFlag(domain.FlagDuplicateEmail)
		}
		if key := dupKey(app.ApplicantID); key != "" && idCounts[key] > 1 {
			app.AddFlag(domain.FlagDuplicateApplicantID)
		}
		if app.PhoneNormalized != "" && phoneCounts[app.PhoneNormalized] > 1 {
			app.AddFlag(domain.FlagDuplicatePhone)
		}
	}

	return domain.DuplicateCounts{
		Email:       countCollisions(emailCounts),
		ApplicantID: countCollisions(idCounts),
		Phone:       countCollisions(phoneCounts),
	}
}

func dupKey(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

func countCollisions(counts map[string]int) int {
	collisions := 0
	for _, c := range counts {
		if c > 1 {
			collisions++
		}
	}
	return collisions
}
