package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groupscholar/intake-normalizer/internal/domain"
)

func testBatch() ([]*domain.Application, *domain.Summary) {
	apps := []*domain.Application{
		{
			ApplicantID:          "A-1",
			Name:                 "Alex",
			Email:                "alex@example.com",
			EmailDomainCategory:  "commercial",
			ContactChannel:       "email_only",
			Program:              "STEM Scholars",
			GraduationYearBucket: "current",
			SubmissionTimeBucket: "unknown",
			SubmissionRecency:    "fresh",
			NoteTags:             []string{},
			FlagSeverity:         domain.SeverityClean,
			ReviewStatus:         domain.ReviewReady,
			ReviewPriority:       domain.PriorityReady,
			DataQualityScore:     100,
			ReadinessScore:       100,
			ReadinessBucket:      "ready",
		},
	}
	summary := &domain.Summary{
		TotalRows:     1,
		FlagCounts:    map[domain.Flag]int{},
		ProgramCounts: map[string]int{"STEM Scholars": 1},
	}
	return apps, summary
}

func TestEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS intake_batches").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS intake_applications").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_intake_applications_batch").WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewIntakeRepo(db)
	require.NoError(t, repo.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertBatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	apps, summary := testBatch()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO intake_batches").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO intake_applications").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	repo := NewIntakeRepo(db)
	batchID, err := repo.InsertBatch(context.Background(), apps, summary, "spring-2026")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, batchID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertBatchRollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	apps, summary := testBatch()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO intake_batches").WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	repo := NewIntakeRepo(db)
	_, err = repo.InsertBatch(context.Background(), apps, summary, "")
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
