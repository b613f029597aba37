// Package export renders computed payroll batches into portable file formats.
// It only formats: totals come from the aggregator and are never recomputed
// here, so the CSV and the workbook can never disagree with the API response.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"crewsite/internal/domain/payroll"
)

// detailHeader is the column order of both the CSV and the workbook detail
// sheet. External payroll tooling parses these by name, so the order is fixed.
var detailHeader = []string{
	"worker_id", "worker_name", "site_id", "date", "hours", "rate", "verified", "subtotal",
}

// WriteCSV renders one line-item row per completed shift, preceded by the
// header row. Money and hours are printed with two decimals.
func WriteCSV(batch *payroll.Batch) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(detailHeader); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}

	for _, entry := range batch.Entries {
		for _, item := range entry.LineItems {
			row := []string{
				item.WorkerID,
				entry.DisplayName,
				item.SiteID,
				item.ShiftDate,
				money(item.HoursWorked),
				money(entry.HourlyRate),
				strconv.FormatBool(item.Verified),
				money(item.Subtotal),
			}
			if err := w.Write(row); err != nil {
				return "", fmt.Errorf("write csv row: %w", err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// money prints a float with exactly two decimal places.
func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
