package ports

import (
	"context"
	"time"

	"crewsite/internal/domain/attendance"
	"crewsite/internal/domain/payroll"
	"crewsite/internal/domain/report"
	"crewsite/internal/domain/site"

	"github.com/xuri/excelize/v2"
)

// ----- DTOs for the Attendance Service -----

// ClockInInput is the validated input for POST /workers/{worker_id}/clock-in.
type ClockInInput struct {
	WorkerID  string  // from path
	SiteID    string  // from body
	Latitude  float64 // from body
	Longitude float64 // from body
	PhotoURL  string  // opaque reference, upload handled elsewhere
}

// ClockInResult matches the API response for a clock-in.
type ClockInResult struct {
	RecordID       string    `json:"record_id"`
	Status         string    `json:"status"` // VERIFIED | OUT_OF_RANGE
	DistanceMeters float64   `json:"distance_meters"`
	ClockInAt      time.Time `json:"clock_in_at"`
}

// ClockOutInput is the validated input for POST /workers/{worker_id}/clock-out.
type ClockOutInput struct {
	WorkerID  string // from path
	RecordID  string // from body
	Latitude  float64
	Longitude float64
}

// ClockOutResult matches the API response for a clock-out.
type ClockOutResult struct {
	RecordID    string    `json:"record_id"`
	ClockOutAt  time.Time `json:"clock_out_at"`
	HoursWorked float64   `json:"hours_worked"`
	Status      string    `json:"status"` // unchanged from clock-in
}

// SubmitReportInput is the validated input for POST /workers/{worker_id}/reports.
type SubmitReportInput struct {
	WorkerID        string
	SiteID          string
	HoursWorked     float64
	ProgressMade    string
	MaterialsNeeded string
	Issues          []string
}

// CreateSiteInput is the validated input for POST /sites.
type CreateSiteInput struct {
	ManagerID    string
	Name         string
	Address      string
	Latitude     float64
	Longitude    float64
	RadiusMeters float64 // 0 means the configured default
}

// ----- Attendance Service Interface -----

// AttendanceService exposes the boundary of the attendance service: the shift
// ledger plus the site and daily-report operations that feed it.
type AttendanceService interface {
	ClockIn(ctx context.Context, in ClockInInput) (ClockInResult, error)
	ClockOut(ctx context.Context, in ClockOutInput) (ClockOutResult, error)
	History(ctx context.Context, workerID string, from, to time.Time) ([]*attendance.Record, error)
	TodayRecord(ctx context.Context, workerID, siteID string) (*attendance.Record, error)
	CrewAttendance(ctx context.Context, siteID string, from, to time.Time) ([]*attendance.Record, error)

	SubmitReport(ctx context.Context, in SubmitReportInput) (*report.DailyReport, error)
	TodayReport(ctx context.Context, workerID, siteID string) (*report.DailyReport, error)
	ReportHistory(ctx context.Context, workerID string, from, to time.Time) ([]*report.DailyReport, error)
	MissingReport(ctx context.Context, workerID, siteID string, now time.Time) (bool, error)

	CreateSite(ctx context.Context, in CreateSiteInput) (*site.Site, error)
	GetSite(ctx context.Context, siteID string) (*site.Site, error)
	AssignWorker(ctx context.Context, siteID, workerID string) (*site.Site, error)
	RemoveWorker(ctx context.Context, siteID, workerID string) (*site.Site, error)

	StartFeedConsumer(ctx context.Context)
}

// ----- DTOs for the Payroll Service -----

// RunPayrollInput is the validated input for POST /payroll/runs.
type RunPayrollInput struct {
	ManagerID   string
	SiteID      string
	PeriodStart time.Time
	PeriodEnd   time.Time
	Persist     bool // store the computed batch as a run
}

// RunPayrollResult matches the API response for a payroll run.
type RunPayrollResult struct {
	RunID string         `json:"run_id,omitempty"` // empty when not persisted
	Batch *payroll.Batch `json:"batch"`
}

// ----- Payroll Service Interface -----

// PayrollService exposes the boundary of the payroll service.
type PayrollService interface {
	RunPayroll(ctx context.Context, in RunPayrollInput) (RunPayrollResult, error)
	GetRun(ctx context.Context, runID string) (*payroll.Batch, error)
	ListRuns(ctx context.Context, managerID string) ([]PayrollRunInfo, error)
	ExportCSV(ctx context.Context, runID string) (string, error)
	ExportWorkbook(ctx context.Context, runID string) (*excelize.File, error)
}
