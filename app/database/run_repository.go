package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

type runRepository struct {
	db *DB
}

func NewRunRepository(db *DB) RunRepository {
	return &runRepository{db: db}
}

func (r *runRepository) SaveRun(ctx context.Context, run Run) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO scrape_runs (id, started_at, finished_at, resolved, failed, drops, failed_sources)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.StartedAt.UnixMilli(), run.FinishedAt.UnixMilli(),
		run.Resolved, run.Failed, run.Drops, strings.Join(run.FailedSources, "\n"))

	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	return nil
}

// GetLastRun returns nil when no run has finished yet.
func (r *runRepository) GetLastRun(ctx context.Context) (*Run, error) {
	var (
		run                   Run
		startedAt, finishedAt int64
		failedSources         string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, started_at, finished_at, resolved, failed, drops, failed_sources
		FROM scrape_runs
		ORDER BY finished_at DESC
		LIMIT 1
	`).Scan(&run.ID, &startedAt, &finishedAt, &run.Resolved, &run.Failed, &run.Drops, &failedSources)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last run: %w", err)
	}

	run.StartedAt = time.UnixMilli(startedAt).UTC()
	run.FinishedAt = time.UnixMilli(finishedAt).UTC()
	run.FailedSources = []string{}
	if failedSources != "" {
		run.FailedSources = strings.Split(failedSources, "\n")
	}

	return &run, nil
}
