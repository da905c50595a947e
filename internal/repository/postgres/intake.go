// Package postgres persists finalized batches to the relational store.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/groupscholar/intake-normalizer/internal/domain"
)

// IntakeRepo writes normalized batches to PostgreSQL.
type IntakeRepo struct{ db *sql.DB }

// NewIntakeRepo creates a Postgres-backed intake repository.
func NewIntakeRepo(db *sql.DB) *IntakeRepo { return &IntakeRepo{db: db} }

// EnsureSchema applies idempotent schema setup for the export tables.
func (r *IntakeRepo) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS intake_batches (
			batch_id UUID PRIMARY KEY,
			batch_label TEXT,
			total_rows INTEGER NOT NULL,
			flagged_applications INTEGER NOT NULL,
			flagged_rate NUMERIC(5,1) NOT NULL,
			first_gen INTEGER NOT NULL,
			first_gen_rate NUMERIC(5,1) NOT NULL,
			duplicate_email INTEGER NOT NULL,
			duplicate_applicant_id INTEGER NOT NULL,
			duplicate_phone INTEGER NOT NULL,
			gpa_avg NUMERIC(4,2),
			gpa_min NUMERIC(4,2),
			gpa_max NUMERIC(4,2),
			data_quality_avg NUMERIC(5,2),
			data_quality_min INTEGER,
			data_quality_max INTEGER,
			readiness_avg NUMERIC(5,2),
			readiness_min INTEGER,
			readiness_max INTEGER,
			submission_age_avg NUMERIC(7,2),
			submission_age_min INTEGER,
			submission_age_max INTEGER,
			submission_start DATE,
			submission_end DATE,
			flag_counts JSONB NOT NULL,
			program_counts JSONB NOT NULL,
			program_gpa_avg JSONB NOT NULL,
			first_gen_program_counts JSONB NOT NULL,
			first_gen_program_rates JSONB NOT NULL,
			distributions JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS intake_applications (
			id BIGSERIAL PRIMARY KEY,
			batch_id UUID NOT NULL REFERENCES intake_batches(batch_id) ON DELETE CASCADE,
			applicant_id TEXT,
			name TEXT,
			email TEXT,
			email_domain_category TEXT NOT NULL,
			phone TEXT,
			phone_normalized TEXT,
			phone_country TEXT,
			contact_channel TEXT NOT NULL,
			program TEXT NOT NULL,
			school_type TEXT,
			citizenship_status TEXT,
			referral_source TEXT,
			gpa NUMERIC(4,2),
			income_bracket TEXT,
			graduation_year INTEGER,
			graduation_year_bucket TEXT NOT NULL,
			submission_date DATE,
			submission_hour INTEGER,
			submission_time_bucket TEXT NOT NULL,
			submission_age_days INTEGER,
			submission_age_bucket TEXT,
			submission_recency TEXT NOT NULL,
			first_gen BOOLEAN NOT NULL,
			eligibility_notes TEXT,
			note_tags TEXT[] NOT NULL,
			flags TEXT[] NOT NULL,
			flag_severity TEXT NOT NULL,
			review_status TEXT NOT NULL,
			review_priority TEXT NOT NULL,
			data_quality_score INTEGER NOT NULL,
			readiness_score INTEGER NOT NULL,
			readiness_bucket TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_intake_applications_batch ON intake_applications(batch_id)`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// InsertBatch writes the summary row and every application row in one
// transaction and returns the generated batch id.
func (r *IntakeRepo) InsertBatch(ctx context.Context, apps []*domain.Application, summary *domain.Summary, label string) (uuid.UUID, error) {
	batchID := uuid.New()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := insertSummary(ctx, tx, batchID, summary, label); err != nil {
		return uuid.Nil, err
	}
	for _, app := range apps {
		if err := insertApplication(ctx, tx, batchID, app); err != nil {
			return uuid.Nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("commit batch: %w", err)
	}
	return batchID, nil
}

func insertSummary(ctx context.Context, tx *sql.Tx, batchID uuid.UUID, s *domain.Summary, label string) error {
	flagCounts, err := json.Marshal(s.FlagCounts)
	if err != nil {
		return fmt.Errorf("marshal flag counts: %w", err)
	}
	distributions, err := json.Marshal(map[string]map[string]int{
		"school_type":            s.SchoolTypeCounts,
		"referral_source":        s.ReferralSourceCounts,
		"income_bracket":         s.IncomeBracketCounts,
		"citizenship_status":     s.CitizenshipStatusCounts,
		"note_tags":              s.NoteTagCounts,
		"email_domains":          s.EmailDomainCounts,
		"email_domain_category":  s.EmailDomainCategoryCounts,
		"phone_country":          s.PhoneCountryCounts,
		"contact_channel":        s.ContactChannelCounts,
		"submission_weekday":     s.SubmissionWeekdayCounts,
		"submission_time":        s.SubmissionTimeCounts,
		"review_status":          s.ReviewStatusCounts,
		"review_priority":        s.ReviewPriorityCounts,
		"flag_severity":          s.FlagSeverityCounts,
		"quality_tier":           s.QualityTierCounts,
		"readiness_bucket":       s.ReadinessBucketCounts,
		"submission_age_bucket":  s.SubmissionAgeBucketCounts,
		"submission_recency":     s.SubmissionRecencyCounts,
		"graduation_year":        s.GraduationYearCounts,
		"graduation_year_bucket": s.GraduationYearBucketCounts,
	})
	if err != nil {
		return fmt.Errorf("marshal distributions: %w", err)
	}
	programCounts, _ := json.Marshal(s.ProgramCounts)
	programGPAAvg, _ := json.Marshal(s.ProgramGPAAvg)
	firstGenCounts, _ := json.Marshal(s.FirstGenProgramCounts)
	firstGenRates, _ := json.Marshal(s.FirstGenProgramRates)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO intake_batches (
			batch_id, batch_label, total_rows, flagged_applications, flagged_rate,
			first_gen, first_gen_rate,
			duplicate_email, duplicate_applicant_id, duplicate_phone,
			gpa_avg, gpa_min, gpa_max,
			data_quality_avg, data_quality_min, data_quality_max,
			readiness_avg, readiness_min, readiness_max,
			submission_age_avg, submission_age_min, submission_age_max,
			submission_start, submission_end,
			flag_counts, program_counts, program_gpa_avg,
			first_gen_program_counts, first_gen_program_rates, distributions
		) VALUES (
			$1, NULLIF($2,''), $3, $4, $5,
			$6, $7,
			$8, $9, $10,
			$11, $12, $13,
			$14, $15, $16,
			$17, $18, $19,
			$20, $21, $22,
			NULLIF($23,'')::date, NULLIF($24,'')::date,
			$25, $26, $27,
			$28, $29, $30
		)`,
		batchID, label, s.TotalRows, s.FlaggedApplications, s.FlaggedRate,
		s.FirstGen, s.FirstGenRate,
		s.DuplicateEmail, s.DuplicateApplicantID, s.DuplicatePhone,
		s.GPAAvg, s.GPAMin, s.GPAMax,
		s.DataQualityAvg, s.DataQualityMin, s.DataQualityMax,
		s.ReadinessAvg, s.ReadinessMin, s.ReadinessMax,
		s.SubmissionAgeAvg, s.SubmissionAgeMin, s.SubmissionAgeMax,
		s.SubmissionStart, s.SubmissionEnd,
		string(flagCounts), string(programCounts), string(programGPAAvg),
		string(firstGenCounts), string(firstGenRates), string(distributions),
	)
	if err != nil {
		return fmt.Errorf("insert batch summary: %w", err)
	}
	return nil
}

func insertApplication(ctx context.Context, tx *sql.Tx, batchID uuid.UUID, app *domain.Application) error {
	flags := make([]string, len(app.Flags))
	for i, f := range app.Flags {
		flags[i] = string(f)
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO intake_applications (
			batch_id, applicant_id, name, email, email_domain_category,
			phone, phone_normalized, phone_country, contact_channel,
			program, school_type, citizenship_status, referral_source,
			gpa, income_bracket, graduation_year, graduation_year_bucket,
			submission_date, submission_hour, submission_time_bucket,
			submission_age_days, submission_age_bucket, submission_recency,
			first_gen, eligibility_notes, note_tags, flags,
			flag_severity, review_status, review_priority,
			data_quality_score, readiness_score, readiness_bucket
		) VALUES (
			$1, $2, $3, NULLIF($4,''), $5,
			NULLIF($6,''), NULLIF($7,''), NULLIF($8,''), $9,
			$10, NULLIF($11,''), NULLIF($12,''), NULLIF($13,''),
			$14, NULLIF($15,''), $16, $17,
			NULLIF($18,'')::date, $19, $20,
			$21, NULLIF($22,''), $23,
			$24, NULLIF($25,''), $26, $27,
			$28, $29, $30,
			$31, $32, $33
		)`,
		batchID, app.ApplicantID, app.Name, app.Email, app.EmailDomainCategory,
		app.Phone, app.PhoneNormalized, app.PhoneCountry, app.ContactChannel,
		app.Program, app.SchoolType, app.CitizenshipStatus, app.ReferralSource,
		app.GPA, app.IncomeBracket, app.GraduationYear, app.GraduationYearBucket,
		app.SubmissionDate, app.SubmissionHour, app.SubmissionTimeBucket,
		app.SubmissionAgeDays, app.SubmissionAgeBucket, app.SubmissionRecency,
		app.FirstGen, app.EligibilityNotes, pq.Array(app.NoteTags), pq.Array(flags),
		string(app.FlagSeverity), string(app.ReviewStatus), string(app.ReviewPriority),
		app.DataQualityScore, app.ReadinessScore, app.ReadinessBucket,
	)
	if err != nil {
		return fmt.Errorf("insert application %q: %w", app.ApplicantID, err)
	}
	return nil
}
