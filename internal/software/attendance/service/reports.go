package service

import (
	"context"
	"errors"
	"time"

	"crewsite/internal/domain/report"
	"crewsite/internal/general/contracts"
	"crewsite/internal/general/postgres"
	"crewsite/internal/ports"
)

// ErrReportExists rejects a second report for the same worker, site and day.
var ErrReportExists = errors.New("daily report already submitted for this day")

// SubmitReport stores the worker's end-of-day report for today.
func (service *attendanceService) SubmitReport(ctx context.Context, in ports.SubmitReportInput) (*report.DailyReport, error) {
	now := time.Now().UTC()

	existing, err := service.reports.FindForDay(ctx, in.WorkerID, in.SiteID, now)
	if err == nil && existing != nil {
		return nil, ErrReportExists
	}
	if err != nil && !errors.Is(err, postgres.ErrNotFound) {
		return nil, err
	}

	r, err := report.New(in.WorkerID, in.SiteID, now, in.HoursWorked, in.ProgressMade, in.MaterialsNeeded, in.Issues)
	if err != nil {
		return nil, err
	}

	if err := service.reports.Create(ctx, r); err != nil {
		service.logger.Error(ctx, "report_submit_failed", "Failed to store daily report", err, map[string]any{
			"worker_id": in.WorkerID,
			"site_id":   in.SiteID,
		})
		return nil, err
	}

	service.logger.Info(ctx, "report_submitted", "Daily report submitted", map[string]any{
		"report_id": r.ID,
		"worker_id": r.WorkerID,
		"site_id":   r.SiteID,
		"day":       r.Date.Format("2006-01-02"),
	})

	return r, nil
}

// TodayReport returns today's report for the worker at the site, or nil.
func (service *attendanceService) TodayReport(ctx context.Context, workerID, siteID string) (*report.DailyReport, error) {
	r, err := service.reports.FindForDay(ctx, workerID, siteID, time.Now().UTC())
	if errors.Is(err, postgres.ErrNotFound) {
		return nil, nil
	}
	return r, err
}

// ReportHistory returns the worker's reports inside [from, to].
func (service *attendanceService) ReportHistory(ctx context.Context, workerID string, from, to time.Time) ([]*report.DailyReport, error) {
	return service.reports.ListForWorker(ctx, workerID, from, to)
}

// MissingReport reports whether the worker's daily report for now's calendar
// day is overdue: past the configured deadline and not submitted. An overdue
// report also emits a reminder message for the notification consumer.
func (service *attendanceService) MissingReport(ctx context.Context, workerID, siteID string, now time.Time) (bool, error) {
	deadlineHour := service.cfg.Reports.DeadlineHour
	deadlineMinute := service.cfg.Reports.DeadlineMinute

	if !report.PastDeadline(now, deadlineHour, deadlineMinute) {
		return false, nil
	}

	r, err := service.reports.FindForDay(ctx, workerID, siteID, now)
	if err != nil && !errors.Is(err, postgres.ErrNotFound) {
		return false, err
	}
	if r != nil {
		return false, nil
	}

	day := now.UTC().Format("2006-01-02")
	deadline := time.Date(now.Year(), now.Month(), now.Day(), deadlineHour, deadlineMinute, 0, 0, now.Location())
	msg := contracts.MissingReportMessage{
		WorkerID: workerID,
		SiteID:   siteID,
		Day:      day,
		Deadline: deadline,
		Envelope: contracts.Envelope{
			CorrelationID: generateCorrelationID(),
			Producer:      "attendance-service",
			SentAt:        time.Now().UTC(),
		},
	}
	if err := service.publishMissingReport(ctx, msg); err != nil {
		service.logger.Error(ctx, "missing_report_publish_failed", "Failed to publish missing-report reminder", err, map[string]any{
			"worker_id": workerID,
			"site_id":   siteID,
			"day":       day,
		})
	}

	return true, nil
}
