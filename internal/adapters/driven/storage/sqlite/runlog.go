package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chartsift/chartsift/internal/core/domain"
)

// RecordRun inserts or replaces a run summary by run id.
func (s *Store) RecordRun(ctx context.Context, report *domain.RunReport) error {
	if report == nil || report.RunID == "" {
		return fmt.Errorf("%w: run report with a run id is required", domain.ErrInvalidInput)
	}

	countsJSON, err := json.Marshal(report.EntityCounts)
	if err != nil {
		return fmt.Errorf("marshalling entity counts: %w", err)
	}
	failuresJSON, err := json.Marshal(report.Failures)
	if err != nil {
		return fmt.Errorf("marshalling failures: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, finished_at, total, succeeded, failed, skipped, entity_counts, failures)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			started_at = excluded.started_at,
			finished_at = excluded.finished_at,
			total = excluded.total,
			succeeded = excluded.succeeded,
			failed = excluded.failed,
			skipped = excluded.skipped,
			entity_counts = excluded.entity_counts,
			failures = excluded.failures
	`, report.RunID, report.StartedAt.UTC(), report.FinishedAt.UTC(),
		report.Total, report.Succeeded, report.Failed, report.Skipped,
		string(countsJSON), string(failuresJSON))

	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first. A limit of zero
// or less returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]domain.RunReport, error) {
	query := `
		SELECT id, started_at, finished_at, total, succeeded, failed, skipped, entity_counts, failures
		FROM runs
		ORDER BY started_at DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var reports []domain.RunReport //nolint:prealloc // size unknown from query
	for rows.Next() {
		var report domain.RunReport
		var countsJSON, failuresJSON string
		if err := rows.Scan(&report.RunID, &report.StartedAt, &report.FinishedAt,
			&report.Total, &report.Succeeded, &report.Failed, &report.Skipped,
			&countsJSON, &failuresJSON); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}

		if err := json.Unmarshal([]byte(countsJSON), &report.EntityCounts); err != nil {
			return nil, fmt.Errorf("unmarshalling entity counts: %w", err)
		}
		if err := json.Unmarshal([]byte(failuresJSON), &report.Failures); err != nil {
			return nil, fmt.Errorf("unmarshalling failures: %w", err)
		}

		reports = append(reports, report)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}

	return reports, nil
}
