package export

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"crewsite/internal/domain/payroll"
)

func sampleBatch() *payroll.Batch {
	return &payroll.Batch{
		PeriodStart: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2024, 3, 15, 23, 59, 59, 0, time.UTC),
		Entries: []payroll.Entry{
			{
				WorkerID:    "w1",
				DisplayName: "Ana Flores",
				HourlyRate:  25,
				LineItems: []payroll.LineItem{
					{WorkerID: "w1", SiteID: "s1", ShiftDate: "2024-03-04", HoursWorked: 8, Verified: true, Subtotal: 200},
					{WorkerID: "w1", SiteID: "s1", ShiftDate: "2024-03-05", HoursWorked: 7.5, Verified: false, Subtotal: 187.5},
				},
				TotalHours: 15.5,
				TotalPay:   387.5,
			},
			{
				WorkerID:    "w2",
				DisplayName: "Bo Lindqvist",
				HourlyRate:  30,
				LineItems: []payroll.LineItem{
					{WorkerID: "w2", SiteID: "s2", ShiftDate: "2024-03-04", HoursWorked: 9, Verified: true, Subtotal: 270},
				},
				TotalHours: 9,
				TotalPay:   270,
			},
		},
		GrandTotalHours: 24.5,
		GrandTotalPay:   657.5,
	}
}

func TestWriteCSV(t *testing.T) {
	out, err := WriteCSV(sampleBatch())
	if err != nil {
		t.Fatalf("WriteCSV err = %v", err)
	}

	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("output is not parseable csv: %v", err)
	}

	if len(rows) != 4 {
		t.Fatalf("row count = %d, want header + 3 line items", len(rows))
	}

	wantHeader := "worker_id,worker_name,site_id,date,hours,rate,verified,subtotal"
	if got := strings.Join(rows[0], ","); got != wantHeader {
		t.Errorf("header = %q, want %q", got, wantHeader)
	}

	first := rows[1]
	want := []string{"w1", "Ana Flores", "s1", "2024-03-04", "8.00", "25.00", "true", "200.00"}
	for i := range want {
		if first[i] != want[i] {
			t.Errorf("row1[%d] = %q, want %q", i, first[i], want[i])
		}
	}

	if rows[2][6] != "false" {
		t.Errorf("out-of-range shift should have verified=false, got %q", rows[2][6])
	}
	if rows[3][0] != "w2" || rows[3][7] != "270.00" {
		t.Errorf("row3 = %v", rows[3])
	}
}

func TestWriteCSVEmptyBatch(t *testing.T) {
	out, err := WriteCSV(&payroll.Batch{})
	if err != nil {
		t.Fatalf("WriteCSV err = %v", err)
	}

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 1 {
		t.Fatalf("empty batch should render only the header, got %d lines", len(lines))
	}
}

func TestBuildWorkbook(t *testing.T) {
	f, err := BuildWorkbook(sampleBatch())
	if err != nil {
		t.Fatalf("BuildWorkbook err = %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "Summary" || sheets[1] != "Details" {
		t.Fatalf("sheets = %v, want [Summary Details]", sheets)
	}

	summary, err := f.GetRows("Summary")
	if err != nil {
		t.Fatalf("GetRows(Summary) err = %v", err)
	}
	// header + 2 workers + blank spacer + totals
	if len(summary) != 5 {
		t.Fatalf("summary rows = %d, want 5", len(summary))
	}
	if summary[1][0] != "w1" || summary[1][1] != "Ana Flores" {
		t.Errorf("summary row1 = %v", summary[1])
	}
	totals := summary[4]
	if totals[0] != "TOTAL" {
		t.Errorf("totals label = %q", totals[0])
	}
	if totals[4] != "657.5" {
		t.Errorf("grand total pay cell = %q, want 657.5", totals[4])
	}

	details, err := f.GetRows("Details")
	if err != nil {
		t.Fatalf("GetRows(Details) err = %v", err)
	}
	if len(details) != 4 {
		t.Fatalf("details rows = %d, want header + 3", len(details))
	}
	if got := strings.Join(details[0], ","); got != strings.Join(detailHeader, ",") {
		t.Errorf("details header = %q", got)
	}
	if details[3][0] != "w2" || details[3][3] != "2024-03-04" {
		t.Errorf("details row3 = %v", details[3])
	}
}
