package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crewsite/internal/domain/report"
	"crewsite/internal/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReportRepo persists daily work reports.
type ReportRepo struct {
	pool *pgxpool.Pool
}

// NewReportRepo constructs a new ReportRepo.
func NewReportRepo(pool *pgxpool.Pool) ports.ReportRepository {
	return &ReportRepo{pool: pool}
}

// Create inserts a submitted report. The unique (worker_id, site_id, report_date)
// index keeps one report per worker per site per day.
func (repo *ReportRepo) Create(ctx context.Context, r *report.DailyReport) error {
	_, err := db(ctx, repo.pool).Exec(ctx, `
		INSERT INTO daily_reports (
			id, worker_id, site_id, report_date,
			hours_worked, progress_made, materials_needed, issues, submitted_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		r.ID, r.WorkerID, r.SiteID, r.Date,
		r.HoursWorked, r.ProgressMade, r.MaterialsNeeded, r.Issues, r.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("insert daily report: %w", err)
	}
	return nil
}

// FindForDay returns the worker's report for the given UTC day at the site, or
// ErrNotFound.
func (repo *ReportRepo) FindForDay(ctx context.Context, workerID, siteID string, day time.Time) (*report.DailyReport, error) {
	day = day.UTC().Truncate(24 * time.Hour)

	row := db(ctx, repo.pool).QueryRow(ctx, `
		SELECT id, worker_id, site_id, report_date,
		       hours_worked, progress_made, materials_needed, issues, submitted_at
		FROM daily_reports
		WHERE worker_id = $1
		  AND site_id = $2
		  AND report_date = $3
	`, workerID, siteID, day)

	out, err := scanReport(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return out, err
}

// ListForWorker returns the worker's reports with report_date inside [from, to],
// oldest first.
func (repo *ReportRepo) ListForWorker(ctx context.Context, workerID string, from, to time.Time) ([]*report.DailyReport, error) {
	rows, err := db(ctx, repo.pool).Query(ctx, `
		SELECT id, worker_id, site_id, report_date,
		       hours_worked, progress_made, materials_needed, issues, submitted_at
		FROM daily_reports
		WHERE worker_id = $1
		  AND report_date >= $2
		  AND report_date <= $3
		ORDER BY report_date ASC
	`, workerID, from.UTC().Truncate(24*time.Hour), to.UTC().Truncate(24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("list daily reports: %w", err)
	}
	defer rows.Close()

	var out []*report.DailyReport
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan daily report: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanReport(row pgx.Row) (*report.DailyReport, error) {
	var out report.DailyReport
	err := row.Scan(
		&out.ID, &out.WorkerID, &out.SiteID, &out.Date,
		&out.HoursWorked, &out.ProgressMade, &out.MaterialsNeeded, &out.Issues, &out.SubmittedAt,
	)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
