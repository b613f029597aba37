package service

import (
	"context"

	"crewsite/internal/export"

	"github.com/xuri/excelize/v2"
)

// ExportCSV renders a stored run as CSV line items. The stored totals are
// formatted as-is, never recomputed.
func (service *payrollService) ExportCSV(ctx context.Context, runID string) (string, error) {
	batch, err := service.runs.GetRun(ctx, runID)
	if err != nil {
		return "", err
	}

	out, err := export.WriteCSV(batch)
	if err != nil {
		service.logger.Error(ctx, "payroll_export_failed", "Failed to render CSV export", err, map[string]any{
			"run_id": runID,
		})
		return "", err
	}

	service.logger.Info(ctx, "payroll_exported", "Payroll run exported as CSV", map[string]any{
		"run_id":  runID,
		"entries": len(batch.Entries),
	})
	return out, nil
}

// ExportWorkbook renders a stored run as a two-sheet XLSX workbook.
func (service *payrollService) ExportWorkbook(ctx context.Context, runID string) (*excelize.File, error) {
	batch, err := service.runs.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}

	f, err := export.BuildWorkbook(batch)
	if err != nil {
		service.logger.Error(ctx, "payroll_export_failed", "Failed to render workbook export", err, map[string]any{
			"run_id": runID,
		})
		return nil, err
	}

	service.logger.Info(ctx, "payroll_exported", "Payroll run exported as workbook", map[string]any{
		"run_id":  runID,
		"entries": len(batch.Entries),
	})
	return f, nil
}
