package intake

import (
	"math"
	"strconv"
	"time"

	"github.com/groupscholar/intake-normalizer/internal/domain"
)

// Aggregate rolls the finalized batch into one Summary. It must run after
// duplicate detection and the derived-state refresh; it never mutates the
// applications, so re-running it over the same batch yields identical output.
func Aggregate(apps []*domain.Application, dup domain.DuplicateCounts) *domain.Summary {
	s := &domain.Summary{
		TotalRows:            len(apps),
		FlagCounts:           make(map[domain.Flag]int, len(domain.AllFlags)),
		DuplicateEmail:       dup.Email,
		DuplicateApplicantID: dup.ApplicantID,
		DuplicatePhone:       dup.Phone,

		ProgramCounts:         make(map[string]int),
		ProgramGPAAvg:         make(map[string]float64),
		FirstGenProgramCounts: make(map[string]int),
		FirstGenProgramRates:  make(map[string]float64),

		SchoolTypeCounts:           make(map[string]int),
		ReferralSourceCounts:       make(map[string]int),
		IncomeBracketCounts:        make(map[string]int),
		CitizenshipStatusCounts:    make(map[string]int),
		NoteTagCounts:              make(map[string]int),
		EmailDomainCounts:          make(map[string]int),
		EmailDomainCategoryCounts:  make(map[string]int),
		PhoneCountryCounts:         make(map[string]int),
		ContactChannelCounts:       make(map[string]int),
		SubmissionWeekdayCounts:    make(map[string]int),
		SubmissionTimeCounts:       make(map[string]int),
		ReviewStatusCounts:         make(map[string]int),
		ReviewPriorityCounts:       make(map[string]int),
		FlagSeverityCounts:         make(map[string]int),
		QualityTierCounts:          make(map[string]int),
		ReadinessBucketCounts:      make(map[string]int),
		SubmissionAgeBucketCounts:  make(map[string]int),
		SubmissionRecencyCounts:    make(map[string]int),
		GraduationYearCounts:       make(map[string]int),
		GraduationYearBucketCounts: make(map[string]int),
	}
	for _, f := range domain.AllFlags {
		s.FlagCounts[f] = 0
	}

	var gpas, quality, readiness, ages floatReservoir
	programGPAs := make(map[string]*floatReservoir)

	for _, app := range apps {
		for _, f := range app.Flags {
			s.FlagCounts[f]++
		}
		if len(app.Flags) > 0 {
			s.FlaggedApplications++
		}
		if app.FirstGen {
			s.FirstGen++
			s.FirstGenProgramCounts[app.Program]++
		}

		s.ProgramCounts[app.Program]++
		s.SchoolTypeCounts[orMissing(app.SchoolType)]++
		s.ReferralSourceCounts[orMissing(app.ReferralSource)]++
		s.IncomeBracketCounts[orMissing(app.IncomeBracket)]++
		s.CitizenshipStatusCounts[orMissing(app.CitizenshipStatus)]++
		s.EmailDomainCategoryCounts[app.EmailDomainCategory]++
		s.ContactChannelCounts[app.ContactChannel]++
		s.SubmissionTimeCounts[app.SubmissionTimeBucket]++
		s.ReviewStatusCounts[string(app.ReviewStatus)]++
		s.ReviewPriorityCounts[string(app.ReviewPriority)]++
		s.FlagSeverityCounts[string(app.FlagSeverity)]++
		s.QualityTierCounts[qualityTier(app.DataQualityScore)]++
		s.ReadinessBucketCounts[app.ReadinessBucket]++
		s.SubmissionRecencyCounts[app.SubmissionRecency]++
		s.GraduationYearBucketCounts[app.GraduationYearBucket]++

		if app.PhoneCountry != "" {
			s.PhoneCountryCounts[app.PhoneCountry]++
		}
		if app.SubmissionAgeBucket != "" {
			s.SubmissionAgeBucketCounts[app.SubmissionAgeBucket]++
		}
		if app.GraduationYear != nil {
			s.GraduationYearCounts[strconv.Itoa(*app.GraduationYear)]++
		}
		if domainName := emailDomain(app.Email); domainName != "" && !app.HasFlag(domain.FlagInvalidEmail) {
			s.EmailDomainCounts[domainName]++
		}
		for _, tag := range app.NoteTags {
			s.NoteTagCounts[tag]++
		}

		if app.SubmissionDate != "" {
			if t, err := time.Parse("2006-01-02", app.SubmissionDate); err == nil {
				s.SubmissionWeekdayCounts[t.Weekday().String()]++
			}
			if s.SubmissionStart == "" || app.SubmissionDate < s.SubmissionStart {
				s.SubmissionStart = app.SubmissionDate
			}
			if s.SubmissionEnd == "" || app.SubmissionDate > s.SubmissionEnd {
				s.SubmissionEnd = app.SubmissionDate
			}
		}

		if app.GPA != nil {
			gpas.add(*app.GPA)
			r, ok := programGPAs[app.Program]
			if !ok {
				r = &floatReservoir{}
				programGPAs[app.Program] = r
			}
			r.add(*app.GPA)
		}
		quality.add(float64(app.DataQualityScore))
		readiness.add(float64(app.ReadinessScore))
		if app.SubmissionAgeDays != nil {
			ages.add(float64(*app.SubmissionAgeDays))
		}
	}

	s.FlaggedRate = rate(s.FlaggedApplications, s.TotalRows)
	s.FirstGenRate = rate(s.FirstGen, s.TotalRows)

	// Every program gets a first-gen entry, including rate 0.0 with no
	// first-gen applicants at all.
	for program, total := range s.ProgramCounts {
		count := s.FirstGenProgramCounts[program]
		s.FirstGenProgramCounts[program] = count
		s.FirstGenProgramRates[program] = rate(count, total)
	}
	for program, r := range programGPAs {
		s.ProgramGPAAvg[program] = round2(r.avg())
	}

	s.GPAAvg, s.GPAMin, s.GPAMax = gpas.stats()
	s.DataQualityAvg, s.DataQualityMin, s.DataQualityMax = quality.intStats()
	s.ReadinessAvg, s.ReadinessMin, s.ReadinessMax = readiness.intStats()
	s.SubmissionAgeAvg, s.SubmissionAgeMin, s.SubmissionAgeMax = ages.intStats()

	return s
}

// BuildScorecard derives the machine-readable digest from the finalized
// batch and its summary. Per-flag rates are fractions of total rows rounded
// to four decimals; only flags that actually occurred appear.
func BuildScorecard(apps []*domain.Application, s *domain.Summary) *domain.Scorecard {
	flagRates := make(map[domain.Flag]float64)
	for flag, count := range s.FlagCounts {
		if count == 0 {
			continue
		}
		if s.TotalRows == 0 {
			flagRates[flag] = 0
			continue
		}
		flagRates[flag] = math.Round(float64(count)/float64(s.TotalRows)*10000) / 10000
	}

	return &domain.Scorecard{
		TotalRows:           s.TotalRows,
		FlaggedApplications: s.FlaggedApplications,
		FlaggedRate:         s.FlaggedRate,
		FirstGenRate:        s.FirstGenRate,
		FlagRates:           flagRates,

		ProgramCounts:         s.ProgramCounts,
		ProgramGPAAvg:         s.ProgramGPAAvg,
		FirstGenProgramCounts: s.FirstGenProgramCounts,
		FirstGenProgramRates:  s.FirstGenProgramRates,

		SchoolTypeCounts:           s.SchoolTypeCounts,
		ReferralSourceCounts:       s.ReferralSourceCounts,
		IncomeBracketCounts:        s.IncomeBracketCounts,
		CitizenshipStatusCounts:    s.CitizenshipStatusCounts,
		NoteTagCounts:              s.NoteTagCounts,
		EmailDomainCounts:          s.EmailDomainCounts,
		EmailDomainCategoryCounts:  s.EmailDomainCategoryCounts,
		PhoneCountryCounts:         s.PhoneCountryCounts,
		ContactChannelCounts:       s.ContactChannelCounts,
		SubmissionWeekdayCounts:    s.SubmissionWeekdayCounts,
		ReviewStatusCounts:         s.ReviewStatusCounts,
		ReviewPriorityCounts:       s.ReviewPriorityCounts,
		FlagSeverityCounts:         s.FlagSeverityCounts,
		QualityTierCounts:          s.QualityTierCounts,
		ReadinessBucketCounts:      s.ReadinessBucketCounts,
		SubmissionAgeBucketCounts:  s.SubmissionAgeBucketCounts,
		SubmissionRecencyCounts:    s.SubmissionRecencyCounts,
		GraduationYearCounts:       s.GraduationYearCounts,
		GraduationYearBucketCounts: s.GraduationYearBucketCounts,

		GPAAvg: s.GPAAvg, GPAMin: s.GPAMin, GPAMax: s.GPAMax,
		DataQualityAvg: s.DataQualityAvg, DataQualityMin: s.DataQualityMin, DataQualityMax: s.DataQualityMax,
		ReadinessAvg: s.ReadinessAvg, ReadinessMin: s.ReadinessMin, ReadinessMax: s.ReadinessMax,
		SubmissionAgeAvg: s.SubmissionAgeAvg, SubmissionAgeMin: s.SubmissionAgeMin, SubmissionAgeMax: s.SubmissionAgeMax,

		SubmissionStart: s.SubmissionStart,
		SubmissionEnd:   s.SubmissionEnd,
	}
}

// floatReservoir collects values for avg/min/max. An empty reservoir yields
// nil stats, never zeros.
type floatReservoir struct {
	sum      float64
	min, max float64
	n        int
}

func (r *floatReservoir) add(v float64) {
	if r.n == 0 || v < r.min {
		r.min = v
	}
	if r.n == 0 || v > r.max {
		r.max = v
	}
	r.sum += v
	r.n++
}

func (r *floatReservoir) avg() float64 {
	if r.n == 0 {
		return 0
	}
	return r.sum / float64(r.n)
}

func (r *floatReservoir) stats() (*float64, *float64, *float64) {
	if r.n == 0 {
		return nil, nil, nil
	}
	avg := round2(r.avg())
	min, max := r.min, r.max
	return &avg, &min, &max
}

func (r *floatReservoir) intStats() (*float64, *int, *int) {
	if r.n == 0 {
		return nil, nil, nil
	}
	avg := round2(r.avg())
	min, max := int(r.min), int(r.max)
	return &avg, &min, &max
}

// rate is count/total as a percentage rounded to one decimal; 0.0 when the
// total is zero.
func rate(count, total int) float64 {
	if total == 0 {
		return 0.0
	}
	return math.Round(float64(count)/float64(total)*1000) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func orMissing(v string) string {
	if v == "" {
		return "Missing"
	}
	return v
}
