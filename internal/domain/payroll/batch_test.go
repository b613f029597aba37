package payroll

import (
	"errors"
	"testing"
	"time"

	"crewsite/internal/domain/attendance"
	"crewsite/internal/domain/geo"
	"crewsite/internal/domain/worker"
)

var payrollFence = geo.Fence{
	SiteID:       "s1",
	Center:       geo.Coordinate{Latitude: 49.2827, Longitude: -123.1207},
	RadiusMeters: 200,
}

func closedRecord(t *testing.T, workerID, siteID string, in time.Time, hours float64) *attendance.Record {
	t.Helper()
	loc := geo.Coordinate{Latitude: 49.2828, Longitude: -123.1208}
	record, err := attendance.ClockIn(workerID, siteID, in, loc, payrollFence, "")
	if err != nil {
		t.Fatalf("ClockIn err = %v", err)
	}
	if err := record.Close(in.Add(time.Duration(hours*float64(time.Hour))), loc); err != nil {
		t.Fatalf("Close err = %v", err)
	}
	return record
}

func openRecord(t *testing.T, workerID, siteID string, in time.Time) *attendance.Record {
	t.Helper()
	loc := geo.Coordinate{Latitude: 49.2828, Longitude: -123.1208}
	record, err := attendance.ClockIn(workerID, siteID, in, loc, payrollFence, "")
	if err != nil {
		t.Fatalf("ClockIn err = %v", err)
	}
	return record
}

func profileMap(profiles ...*worker.PayProfile) map[string]*worker.PayProfile {
	m := make(map[string]*worker.PayProfile, len(profiles))
	for _, p := range profiles {
		m[p.WorkerID] = p
	}
	return m
}

func TestAggregateTotals(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 15, 23, 59, 59, 0, time.UTC)

	records := []*attendance.Record{
		closedRecord(t, "w1", "s1", time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC), 8.0),
		closedRecord(t, "w1", "s1", time.Date(2025, 3, 4, 8, 0, 0, 0, time.UTC), 7.5),
		closedRecord(t, "w1", "s2", time.Date(2025, 3, 5, 8, 0, 0, 0, time.UTC), 9.0),
	}
	profiles := profileMap(&worker.PayProfile{WorkerID: "w1", DisplayName: "Ana Silva", HourlyRate: 25.00})

	batch, err := Aggregate(records, profiles, start, end)
	if err != nil {
		t.Fatalf("Aggregate err = %v", err)
	}
	if len(batch.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(batch.Entries))
	}
	entry := batch.Entries[0]
	if entry.TotalHours != 24.5 {
		t.Errorf("TotalHours = %v, want 24.5", entry.TotalHours)
	}
	if entry.TotalPay != 612.50 {
		t.Errorf("TotalPay = %v, want 612.50", entry.TotalPay)
	}
	if len(entry.LineItems) != 3 {
		t.Fatalf("line items = %d, want 3", len(entry.LineItems))
	}
	// Chronological order by clock-in.
	if entry.LineItems[0].ShiftDate != "2025-03-03" || entry.LineItems[2].ShiftDate != "2025-03-05" {
		t.Errorf("line items out of order: %v, %v, %v",
			entry.LineItems[0].ShiftDate, entry.LineItems[1].ShiftDate, entry.LineItems[2].ShiftDate)
	}
	if batch.GrandTotalHours != 24.5 || batch.GrandTotalPay != 612.50 {
		t.Errorf("grand totals = %v h / %v, want 24.5 / 612.50", batch.GrandTotalHours, batch.GrandTotalPay)
	}
}

func TestAggregateTotalsFromUnroundedValues(t *testing.T) {
	// Each shift is 1/3 h at 10.00/h: subtotal rounds to 3.33, but three shifts
	// must total 10.00, not 9.99.
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	var records []*attendance.Record
	for day := 3; day <= 5; day++ {
		records = append(records, closedRecord(t, "w1", "s1",
			time.Date(2025, 3, day, 8, 0, 0, 0, time.UTC), 1.0/3.0))
	}
	profiles := profileMap(&worker.PayProfile{WorkerID: "w1", DisplayName: "Ana", HourlyRate: 10.00})

	batch, err := Aggregate(records, profiles, start, end)
	if err != nil {
		t.Fatalf("Aggregate err = %v", err)
	}
	entry := batch.Entries[0]
	if entry.LineItems[0].Subtotal != 3.33 {
		t.Errorf("line subtotal = %v, want 3.33", entry.LineItems[0].Subtotal)
	}
	if entry.TotalPay != 10.00 {
		t.Errorf("TotalPay = %v, want 10.00 (sum of unrounded subtotals)", entry.TotalPay)
	}
	if entry.TotalHours != 1.00 {
		t.Errorf("TotalHours = %v, want 1.00", entry.TotalHours)
	}
}

func TestAggregateUnknownWorkerFailsBatch(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	records := []*attendance.Record{
		closedRecord(t, "w1", "s1", time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC), 8),
		closedRecord(t, "ghost", "s1", time.Date(2025, 3, 4, 8, 0, 0, 0, time.UTC), 8),
	}
	profiles := profileMap(&worker.PayProfile{WorkerID: "w1", DisplayName: "Ana", HourlyRate: 25})

	if _, err := Aggregate(records, profiles, start, end); !errors.Is(err, ErrUnknownWorker) {
		t.Fatalf("Aggregate err = %v, want ErrUnknownWorker", err)
	}
}

func TestAggregateFiltersWindowAndOpenShifts(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	records := []*attendance.Record{
		closedRecord(t, "w1", "s1", time.Date(2025, 2, 28, 8, 0, 0, 0, time.UTC), 8), // before window
		closedRecord(t, "w1", "s1", start, 8),                                        // boundary start, inclusive
		closedRecord(t, "w1", "s1", end, 4),                                          // boundary end, inclusive
		closedRecord(t, "w1", "s1", time.Date(2025, 3, 16, 8, 0, 0, 0, time.UTC), 8), // after window
		openRecord(t, "w1", "s1", time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)),      // open, excluded
	}
	profiles := profileMap(&worker.PayProfile{WorkerID: "w1", DisplayName: "Ana", HourlyRate: 20})

	batch, err := Aggregate(records, profiles, start, end)
	if err != nil {
		t.Fatalf("Aggregate err = %v", err)
	}
	entry := batch.Entries[0]
	if len(entry.LineItems) != 2 {
		t.Fatalf("line items = %d, want 2 (inclusive boundaries, no open shifts)", len(entry.LineItems))
	}
	if entry.TotalHours != 12 {
		t.Errorf("TotalHours = %v, want 12", entry.TotalHours)
	}
}

func TestAggregateEntryOrderDeterministic(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	records := []*attendance.Record{
		closedRecord(t, "w2", "s1", time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC), 8),
		closedRecord(t, "w1", "s1", time.Date(2025, 3, 4, 8, 0, 0, 0, time.UTC), 8),
		closedRecord(t, "w3", "s1", time.Date(2025, 3, 5, 8, 0, 0, 0, time.UTC), 8),
	}
	profiles := profileMap(
		&worker.PayProfile{WorkerID: "w3", DisplayName: "C", HourlyRate: 10},
		&worker.PayProfile{WorkerID: "w1", DisplayName: "A", HourlyRate: 10},
		&worker.PayProfile{WorkerID: "w2", DisplayName: "B", HourlyRate: 10},
	)

	batch, err := Aggregate(records, profiles, start, end)
	if err != nil {
		t.Fatalf("Aggregate err = %v", err)
	}
	var got []string
	for _, e := range batch.Entries {
		got = append(got, e.WorkerID)
	}
	want := []string{"w1", "w2", "w3"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry order = %v, want %v", got, want)
		}
	}
}

func TestAggregateInvalidPeriod(t *testing.T) {
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	if _, err := Aggregate(nil, nil, start, start.Add(-time.Hour)); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("err = %v, want ErrInvalidPeriod", err)
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{3.333333, 3.33},
		{8.875, 8.88}, // exactly representable half case, rounds away from zero
		{-8.875, -8.88},
		{612.499999999, 612.5},
		{0, 0},
	}
	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
