package export

import (
	"fmt"

	"crewsite/internal/domain/payroll"

	"github.com/xuri/excelize/v2"
)

const (
	sheetSummary = "Summary"
	sheetDetails = "Details"
)

var summaryHeader = []string{
	"worker_id", "worker_name", "rate", "total_hours", "total_pay",
}

// BuildWorkbook renders a two-sheet XLSX: Summary holds one row per worker
// plus a grand-total row, Details mirrors the CSV line items. The caller owns
// the returned file and is responsible for Close.
func BuildWorkbook(batch *payroll.Batch) (*excelize.File, error) {
	f := excelize.NewFile()

	// the default sheet becomes Summary, Details is added after it
	f.SetSheetName(f.GetSheetName(0), sheetSummary)
	if _, err := f.NewSheet(sheetDetails); err != nil {
		return nil, fmt.Errorf("create details sheet: %w", err)
	}

	if err := writeSummarySheet(f, batch); err != nil {
		return nil, err
	}
	if err := writeDetailsSheet(f, batch); err != nil {
		return nil, err
	}

	return f, nil
}

func writeSummarySheet(f *excelize.File, batch *payroll.Batch) error {
	if err := setRow(f, sheetSummary, 1, toAny(summaryHeader)); err != nil {
		return err
	}

	row := 2
	for _, entry := range batch.Entries {
		cells := []any{
			entry.WorkerID,
			entry.DisplayName,
			entry.HourlyRate,
			entry.TotalHours,
			entry.TotalPay,
		}
		if err := setRow(f, sheetSummary, row, cells); err != nil {
			return err
		}
		row++
	}

	// grand totals on the last row, offset by one blank line
	row++
	totals := []any{
		"TOTAL", "", "",
		batch.GrandTotalHours,
		batch.GrandTotalPay,
	}
	return setRow(f, sheetSummary, row, totals)
}

func writeDetailsSheet(f *excelize.File, batch *payroll.Batch) error {
	if err := setRow(f, sheetDetails, 1, toAny(detailHeader)); err != nil {
		return err
	}

	row := 2
	for _, entry := range batch.Entries {
		for _, item := range entry.LineItems {
			cells := []any{
				item.WorkerID,
				entry.DisplayName,
				item.SiteID,
				item.ShiftDate,
				item.HoursWorked,
				entry.HourlyRate,
				item.Verified,
				item.Subtotal,
			}
			if err := setRow(f, sheetDetails, row, cells); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

// setRow writes one row of cells starting at column A.
func setRow(f *excelize.File, sheet string, row int, cells []any) error {
	for i, v := range cells {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("set cell %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
