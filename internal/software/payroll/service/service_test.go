package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"crewsite/internal/domain/attendance"
	"crewsite/internal/domain/geo"
	"crewsite/internal/domain/payroll"
	"crewsite/internal/domain/site"
	"crewsite/internal/domain/worker"
	"crewsite/internal/general/logger"
	"crewsite/internal/general/postgres"
	"crewsite/internal/ports"
)

// ---- in-memory fakes ----

type fakeRecordsRepo struct {
	records []*attendance.Record
}

func (repo *fakeRecordsRepo) Create(context.Context, *attendance.Record) error { return nil }
func (repo *fakeRecordsRepo) Update(context.Context, *attendance.Record) error { return nil }
func (repo *fakeRecordsRepo) GetByID(context.Context, string) (*attendance.Record, error) {
	return nil, postgres.ErrNotFound
}
func (repo *fakeRecordsRepo) FindOpen(context.Context, string, string) (*attendance.Record, error) {
	return nil, postgres.ErrNotFound
}
func (repo *fakeRecordsRepo) ListForWorker(context.Context, string, time.Time, time.Time) ([]*attendance.Record, error) {
	return nil, nil
}

func (repo *fakeRecordsRepo) ListForWorkers(_ context.Context, workerIDs []string, from, to time.Time) ([]*attendance.Record, error) {
	var out []*attendance.Record
	for _, record := range repo.records {
		for _, id := range workerIDs {
			if record.WorkerID == id && !record.ClockInAt.Before(from) && !record.ClockInAt.After(to) {
				out = append(out, record)
			}
		}
	}
	return out, nil
}

type fakeSitesRepo struct {
	site *site.Site
}

func (repo *fakeSitesRepo) Create(context.Context, *site.Site) error { return nil }
func (repo *fakeSitesRepo) Update(context.Context, *site.Site) error { return nil }
func (repo *fakeSitesRepo) GetByID(_ context.Context, siteID string) (*site.Site, error) {
	if repo.site != nil && repo.site.ID == siteID {
		return repo.site, nil
	}
	return nil, postgres.ErrNotFound
}

type fakeWorkersRepo struct {
	profiles map[string]*worker.PayProfile
}

func (repo *fakeWorkersRepo) GetProfile(_ context.Context, workerID string) (*worker.PayProfile, error) {
	if p, ok := repo.profiles[workerID]; ok {
		return p, nil
	}
	return nil, postgres.ErrNotFound
}

func (repo *fakeWorkersRepo) GetProfiles(_ context.Context, workerIDs []string) (map[string]*worker.PayProfile, error) {
	out := make(map[string]*worker.PayProfile)
	for _, id := range workerIDs {
		if p, ok := repo.profiles[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type fakeRunsRepo struct {
	saved map[string]*payroll.Batch
	n     int
}

func (repo *fakeRunsRepo) SaveRun(_ context.Context, _, _ string, batch *payroll.Batch) (string, error) {
	if repo.saved == nil {
		repo.saved = make(map[string]*payroll.Batch)
	}
	repo.n++
	id := "run-" + strings.Repeat("x", repo.n)
	repo.saved[id] = batch
	return id, nil
}

func (repo *fakeRunsRepo) GetRun(_ context.Context, runID string) (*payroll.Batch, error) {
	if b, ok := repo.saved[runID]; ok {
		return b, nil
	}
	return nil, postgres.ErrNotFound
}

func (repo *fakeRunsRepo) ListRuns(context.Context, string) ([]ports.PayrollRunInfo, error) {
	return nil, nil
}

// ---- helpers ----

func closedRecord(t *testing.T, workerID string, clockIn time.Time, hours float64) *attendance.Record {
	t.Helper()
	loc, _ := geo.NewCoordinate(49.2827, -123.1207)
	fence := geo.Fence{SiteID: "s1", Center: loc, RadiusMeters: 200}
	record, err := attendance.ClockIn(workerID, "s1", clockIn, loc, fence, "")
	if err != nil {
		t.Fatalf("ClockIn err = %v", err)
	}
	if err := record.Close(clockIn.Add(time.Duration(hours*float64(time.Hour))), loc); err != nil {
		t.Fatalf("Close err = %v", err)
	}
	return record
}

func newPayrollFixture(t *testing.T) (ports.PayrollService, *fakeRecordsRepo, *fakeRunsRepo) {
	t.Helper()

	records := &fakeRecordsRepo{}
	runs := &fakeRunsRepo{}
	sites := &fakeSitesRepo{site: &site.Site{ID: "s1", Crew: []string{"w1", "w2"}}}
	workers := &fakeWorkersRepo{profiles: map[string]*worker.PayProfile{
		"w1": {WorkerID: "w1", DisplayName: "Ana Flores", HourlyRate: 25},
		"w2": {WorkerID: "w2", DisplayName: "Bo Lindqvist", HourlyRate: 30},
	}}

	svc := NewPayrollService(logger.New("payroll-service-test"), records, sites, workers, runs)
	return svc, records, runs
}

// ---- tests ----

func TestRunPayroll(t *testing.T) {
	svc, records, _ := newPayrollFixture(t)

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 15, 23, 59, 59, 0, time.UTC)

	records.records = []*attendance.Record{
		closedRecord(t, "w1", start.Add(9*time.Hour), 8),
		closedRecord(t, "w1", start.Add(33*time.Hour), 7.5),
		closedRecord(t, "w2", start.Add(9*time.Hour), 9),
	}

	out, err := svc.RunPayroll(context.Background(), ports.RunPayrollInput{
		ManagerID: "m1", SiteID: "s1", PeriodStart: start, PeriodEnd: end,
	})
	if err != nil {
		t.Fatalf("RunPayroll err = %v", err)
	}
	if out.RunID != "" {
		t.Errorf("run should not be persisted without Persist, got %q", out.RunID)
	}

	batch := out.Batch
	if len(batch.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(batch.Entries))
	}
	if batch.Entries[0].WorkerID != "w1" || batch.Entries[1].WorkerID != "w2" {
		t.Errorf("entries not ordered by worker ID: %v, %v", batch.Entries[0].WorkerID, batch.Entries[1].WorkerID)
	}
	if batch.Entries[0].TotalPay != 387.5 {
		t.Errorf("w1 total pay = %v, want 387.5", batch.Entries[0].TotalPay)
	}
	if batch.GrandTotalHours != 24.5 {
		t.Errorf("grand total hours = %v, want 24.5", batch.GrandTotalHours)
	}
	if batch.GrandTotalPay != 657.5 {
		t.Errorf("grand total pay = %v, want 657.5", batch.GrandTotalPay)
	}
}

func TestRunPayrollPersistAndExport(t *testing.T) {
	svc, records, runs := newPayrollFixture(t)

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 14)
	records.records = []*attendance.Record{closedRecord(t, "w1", start.Add(9*time.Hour), 8)}

	out, err := svc.RunPayroll(context.Background(), ports.RunPayrollInput{
		ManagerID: "m1", SiteID: "s1", PeriodStart: start, PeriodEnd: end, Persist: true,
	})
	if err != nil {
		t.Fatalf("RunPayroll err = %v", err)
	}
	if out.RunID == "" {
		t.Fatalf("persisted run has no ID")
	}
	if runs.saved[out.RunID] == nil {
		t.Fatalf("batch was not stored")
	}

	csvOut, err := svc.ExportCSV(context.Background(), out.RunID)
	if err != nil {
		t.Fatalf("ExportCSV err = %v", err)
	}
	if !strings.HasPrefix(csvOut, "worker_id,worker_name,site_id,date,hours,rate,verified,subtotal") {
		t.Errorf("csv header missing: %q", csvOut[:min(len(csvOut), 80)])
	}
	if !strings.Contains(csvOut, "Ana Flores") {
		t.Errorf("csv missing worker name: %q", csvOut)
	}

	wb, err := svc.ExportWorkbook(context.Background(), out.RunID)
	if err != nil {
		t.Fatalf("ExportWorkbook err = %v", err)
	}
	defer wb.Close()
	sheets := wb.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "Summary" {
		t.Errorf("sheets = %v", sheets)
	}
}

func TestRunPayrollUnknownWorkerFailsBatch(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 14)

	// w2 still has attendance but no pay profile
	records := &fakeRecordsRepo{records: []*attendance.Record{
		closedRecord(t, "w2", start.Add(9*time.Hour), 9),
	}}
	svc := NewPayrollService(
		logger.New("payroll-service-test"),
		records,
		&fakeSitesRepo{site: &site.Site{ID: "s1", Crew: []string{"w2"}}},
		&fakeWorkersRepo{profiles: map[string]*worker.PayProfile{}},
		&fakeRunsRepo{},
	)

	_, err := svc.RunPayroll(context.Background(), ports.RunPayrollInput{
		ManagerID: "m1", SiteID: "s1", PeriodStart: start, PeriodEnd: end,
	})
	if !errors.Is(err, payroll.ErrUnknownWorker) {
		t.Fatalf("err = %v, want ErrUnknownWorker", err)
	}
}

func TestRunPayrollInvalidPeriod(t *testing.T) {
	svc, _, _ := newPayrollFixture(t)

	start := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	_, err := svc.RunPayroll(context.Background(), ports.RunPayrollInput{
		ManagerID: "m1", SiteID: "s1", PeriodStart: start, PeriodEnd: start.AddDate(0, 0, -7),
	})
	if !errors.Is(err, payroll.ErrInvalidPeriod) {
		t.Fatalf("err = %v, want ErrInvalidPeriod", err)
	}
}

func TestExportUnknownRun(t *testing.T) {
	svc, _, _ := newPayrollFixture(t)

	if _, err := svc.ExportCSV(context.Background(), "nope"); !errors.Is(err, postgres.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
