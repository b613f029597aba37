package service

import (
	"context"
	"errors"
	"time"

	"crewsite/internal/domain/attendance"
	"crewsite/internal/general/postgres"
)

// History returns the worker's attendance records inside [from, to].
func (service *attendanceService) History(ctx context.Context, workerID string, from, to time.Time) ([]*attendance.Record, error) {
	records, err := service.records.ListForWorker(ctx, workerID, from, to)
	if err != nil {
		service.logger.Error(ctx, "attendance_history_failed", "Failed to list attendance history", err, map[string]any{
			"worker_id": workerID,
		})
		return nil, err
	}
	return records, nil
}

// TodayRecord returns the worker's record for the current UTC day at the site,
// open or closed, or nil when the worker has not clocked in today.
func (service *attendanceService) TodayRecord(ctx context.Context, workerID, siteID string) (*attendance.Record, error) {
	dayStart := time.Now().UTC().Truncate(24 * time.Hour)
	dayEnd := dayStart.Add(24*time.Hour - time.Nanosecond)

	records, err := service.records.ListForWorker(ctx, workerID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	// latest record for this site wins
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].SiteID == siteID {
			return records[i], nil
		}
	}
	return nil, nil
}

// CrewAttendance returns the records of everyone on the site's crew inside
// [from, to], for manager dashboards.
func (service *attendanceService) CrewAttendance(ctx context.Context, siteID string, from, to time.Time) ([]*attendance.Record, error) {
	s, err := service.sites.GetByID(ctx, siteID)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return nil, err
		}
		service.logger.Error(ctx, "crew_attendance_failed", "Failed to resolve site", err, map[string]any{
			"site_id": siteID,
		})
		return nil, err
	}

	records, err := service.records.ListForWorkers(ctx, s.Crew, from, to)
	if err != nil {
		service.logger.Error(ctx, "crew_attendance_failed", "Failed to list crew attendance", err, map[string]any{
			"site_id": siteID,
		})
		return nil, err
	}
	return records, nil
}
