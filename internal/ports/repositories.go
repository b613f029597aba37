package ports

import (
	"context"
	"time"

	"crewsite/internal/domain/attendance"
	"crewsite/internal/domain/payroll"
	"crewsite/internal/domain/report"
	"crewsite/internal/domain/site"
	"crewsite/internal/domain/worker"
)

// UnitOfWork runs a function within a single database transaction.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// AttendanceRepository persists attendance records. FindOpen must be called
// inside the clock-in transaction so that the one-open-shift-per-(worker,site)
// invariant cannot be raced by two concurrent clock-ins.
type AttendanceRepository interface {
	Create(ctx context.Context, record *attendance.Record) error
	Update(ctx context.Context, record *attendance.Record) error
	GetByID(ctx context.Context, recordID string) (*attendance.Record, error)
	FindOpen(ctx context.Context, workerID, siteID string) (*attendance.Record, error)
	ListForWorker(ctx context.Context, workerID string, from, to time.Time) ([]*attendance.Record, error)
	ListForWorkers(ctx context.Context, workerIDs []string, from, to time.Time) ([]*attendance.Record, error)
}

// SiteRepository persists job sites and their crew rosters.
type SiteRepository interface {
	Create(ctx context.Context, s *site.Site) error
	Update(ctx context.Context, s *site.Site) error
	GetByID(ctx context.Context, siteID string) (*site.Site, error)
}

// WorkerRepository resolves pay profiles. GetProfiles returns a map keyed by
// worker ID containing only the profiles that exist; the aggregator decides
// whether a missing one is fatal.
type WorkerRepository interface {
	GetProfile(ctx context.Context, workerID string) (*worker.PayProfile, error)
	GetProfiles(ctx context.Context, workerIDs []string) (map[string]*worker.PayProfile, error)
}

// ReportRepository persists daily work reports.
type ReportRepository interface {
	Create(ctx context.Context, r *report.DailyReport) error
	FindForDay(ctx context.Context, workerID, siteID string, day time.Time) (*report.DailyReport, error)
	ListForWorker(ctx context.Context, workerID string, from, to time.Time) ([]*report.DailyReport, error)
}

// PayrollRunRepository stores computed payroll batches for later retrieval.
type PayrollRunRepository interface {
	SaveRun(ctx context.Context, managerID, siteID string, batch *payroll.Batch) (string, error)
	GetRun(ctx context.Context, runID string) (*payroll.Batch, error)
	ListRuns(ctx context.Context, managerID string) ([]PayrollRunInfo, error)
}

// PayrollRunInfo is the listing row for a stored payroll run.
type PayrollRunInfo struct {
	RunID         string    `json:"run_id"`
	SiteID        string    `json:"site_id"`
	PeriodStart   time.Time `json:"period_start"`
	PeriodEnd     time.Time `json:"period_end"`
	GrandTotalPay float64   `json:"grand_total_pay"`
	CreatedAt     time.Time `json:"created_at"`
}
