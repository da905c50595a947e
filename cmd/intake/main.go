package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/groupscholar/intake-normalizer/internal/config"
	"github.com/groupscholar/intake-normalizer/internal/domain"
	"github.com/groupscholar/intake-normalizer/internal/ingest"
	"github.com/groupscholar/intake-normalizer/internal/intake"
	"github.com/groupscholar/intake-normalizer/internal/pkg/logger"
	"github.com/groupscholar/intake-normalizer/internal/report"
	"github.com/groupscholar/intake-normalizer/internal/repository/postgres"
)

func main() {
	var (
		inputPath     = flag.String("input", "", "Path to intake CSV file (required)")
		outPath       = flag.String("out", "", "Path to write normalized JSON (required)")
		reportPath    = flag.String("report", "", "Path to write summary report (required)")
		issuesPath    = flag.String("issues", "", "Optional path to write flagged applications CSV")
		queuePath     = flag.String("queue", "", "Optional path to write follow-up queue CSV")
		scorecardPath = flag.String("scorecard", "", "Optional path to write scorecard JSON")
		configPath    = flag.String("config", "config.yaml", "Path to YAML config file")
		useDB         = flag.Bool("db", false, "Also export the batch to Postgres")
		dbURL         = flag.String("db-url", "", "Database URL override")
		batchLabel    = flag.String("batch-label", "", "Optional label for the ingestion batch")
		verbose       = flag.Bool("verbose", false, "Enable debug logging")
	)
	flag.Parse()

	if *verbose {
		logger.SetLevel(logger.DEBUG)
	}

	if *inputPath == "" || *outPath == "" || *reportPath == "" {
		log.Fatal("[intake] --input, --out and --report are required")
	}

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatalf("[intake] load config: %v", err)
	}

	// Resolve the connection string up front so a missing URL aborts the
	// run before any output is written.
	resolvedURL := ""
	if *useDB {
		resolvedURL, err = cfg.ResolveDatabaseURL(*dbURL)
		if err != nil {
			log.Fatalf("[intake] %v", err)
		}
	}

	rules := intake.DefaultRules()
	if cfg.Intake.StaleAfterDays > 0 {
		rules.StaleAfterDays = cfg.Intake.StaleAfterDays
	}
	label := *batchLabel
	if label == "" {
		label = cfg.Intake.DefaultBatchLabel
	}

	rows, err := ingest.ReadApplications(*inputPath)
	if err != nil {
		log.Fatalf("[intake] read %s: %v", *inputPath, err)
	}
	logger.Info("intake file read", "path", *inputPath, "rows", len(rows))

	normalizer := intake.NewNormalizer(rules, time.Now())
	apps := make([]*domain.Application, len(rows))
	for i, row := range rows {
		apps[i] = normalizer.Normalize(row)
	}

	dup := intake.DetectDuplicates(apps)
	normalizer.RefreshAll(apps)
	summary := intake.Aggregate(apps, dup)
	logger.Info("batch normalized",
		"total", summary.TotalRows,
		"flagged", summary.FlaggedApplications,
		"duplicate_emails", dup.Email)

	if err := report.WriteJSON(apps, *outPath); err != nil {
		log.Fatalf("[intake] %v", err)
	}
	if err := report.WriteReport(summary, *reportPath); err != nil {
		log.Fatalf("[intake] %v", err)
	}
	if *issuesPath != "" {
		if err := report.WriteIssues(apps, *issuesPath); err != nil {
			log.Fatalf("[intake] %v", err)
		}
	}
	if *queuePath != "" {
		if err := report.WriteFollowUpQueue(apps, *queuePath); err != nil {
			log.Fatalf("[intake] %v", err)
		}
	}
	if *scorecardPath != "" {
		card := intake.BuildScorecard(apps, summary)
		if err := report.WriteScorecard(card, *scorecardPath); err != nil {
			log.Fatalf("[intake] %v", err)
		}
	}

	fmt.Printf("Normalized %d applications across %d programs.\n",
		summary.TotalRows, len(summary.ProgramCounts))

	if *useDB {
		batchID, err := exportBatch(resolvedURL, apps, summary, label)
		if err != nil {
			log.Fatalf("[intake] export to Postgres: %v", err)
		}
		logger.Info("batch exported", "batch_id", batchID, "label", label)
		fmt.Printf("Exported batch %s to Postgres.\n", batchID)
	}
}

func exportBatch(url string, apps []*domain.Application, summary *domain.Summary, label string) (string, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return "", fmt.Errorf("connect: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		return "", fmt.Errorf("ping: %w", err)
	}

	repo := postgres.NewIntakeRepo(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return "", err
	}
	batchID, err := repo.InsertBatch(ctx, apps, summary, label)
	if err != nil {
		return "", err
	}
	return batchID.String(), nil
}
