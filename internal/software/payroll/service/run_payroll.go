package service

import (
	"context"

	"crewsite/internal/domain/payroll"
	"crewsite/internal/ports"
)

// RunPayroll computes a payroll batch for one site's crew over the requested
// period. The heavy lifting lives in the payroll domain aggregator; this
// orchestrates data access and optional persistence.
func (service *payrollService) RunPayroll(ctx context.Context, in ports.RunPayrollInput) (ports.RunPayrollResult, error) {
	var out ports.RunPayrollResult

	if in.PeriodEnd.Before(in.PeriodStart) {
		return out, payroll.ErrInvalidPeriod
	}

	s, err := service.sites.GetByID(ctx, in.SiteID)
	if err != nil {
		service.logger.Error(ctx, "payroll_run_failed", "Failed to resolve site", err, map[string]any{
			"site_id":    in.SiteID,
			"manager_id": in.ManagerID,
		})
		return out, err
	}

	records, err := service.records.ListForWorkers(ctx, s.Crew, in.PeriodStart, in.PeriodEnd)
	if err != nil {
		service.logger.Error(ctx, "payroll_run_failed", "Failed to list attendance records", err, map[string]any{
			"site_id": in.SiteID,
		})
		return out, err
	}

	profiles, err := service.workers.GetProfiles(ctx, s.Crew)
	if err != nil {
		service.logger.Error(ctx, "payroll_run_failed", "Failed to load pay profiles", err, map[string]any{
			"site_id": in.SiteID,
		})
		return out, err
	}

	batch, err := payroll.Aggregate(records, profiles, in.PeriodStart, in.PeriodEnd)
	if err != nil {
		service.logger.Error(ctx, "payroll_aggregate_failed", "Payroll aggregation failed", err, map[string]any{
			"site_id": in.SiteID,
		})
		return out, err
	}
	out.Batch = batch

	if in.Persist {
		runID, err := service.runs.SaveRun(ctx, in.ManagerID, in.SiteID, batch)
		if err != nil {
			service.logger.Error(ctx, "payroll_run_save_failed", "Failed to persist payroll run", err, map[string]any{
				"site_id": in.SiteID,
			})
			return out, err
		}
		out.RunID = runID
	}

	service.logger.Info(ctx, "payroll_run_completed", "Payroll batch computed", map[string]any{
		"site_id":      in.SiteID,
		"manager_id":   in.ManagerID,
		"run_id":       out.RunID,
		"entries":      len(batch.Entries),
		"total_hours":  batch.GrandTotalHours,
		"total_pay":    batch.GrandTotalPay,
		"period_start": batch.PeriodStart,
		"period_end":   batch.PeriodEnd,
	})

	return out, nil
}

// GetRun loads one stored payroll batch.
func (service *payrollService) GetRun(ctx context.Context, runID string) (*payroll.Batch, error) {
	return service.runs.GetRun(ctx, runID)
}

// ListRuns returns the manager's stored runs, newest first.
func (service *payrollService) ListRuns(ctx context.Context, managerID string) ([]ports.PayrollRunInfo, error) {
	return service.runs.ListRuns(ctx, managerID)
}
