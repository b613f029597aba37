package report

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DailyReport is the domain entity corresponding to the `daily_reports` table:
// one end-of-day work summary per worker per site.
type DailyReport struct {
	ID              string
	WorkerID        string
	SiteID          string
	Date            time.Time // UTC calendar day the report covers
	HoursWorked     float64
	ProgressMade    string
	MaterialsNeeded string
	Issues          []string
	SubmittedAt     time.Time
}

var (
	ErrWorkerRequired = errors.New("worker id is required")
	ErrSiteRequired   = errors.New("site id is required")
	ErrNegativeHours  = errors.New("hours worked cannot be negative")
)

// Deadline is the local cut-off after which an unsubmitted report counts as
// missing. The hour is configurable; this is the default from product.
const (
	DefaultDeadlineHour   = 18
	DefaultDeadlineMinute = 0
)

// New constructs a submitted daily report for the given day.
func New(workerID, siteID string, day time.Time, hoursWorked float64, progress, materials string, issues []string) (*DailyReport, error) {
	if workerID = strings.TrimSpace(workerID); workerID == "" {
		return nil, ErrWorkerRequired
	}
	if siteID = strings.TrimSpace(siteID); siteID == "" {
		return nil, ErrSiteRequired
	}
	if hoursWorked < 0 {
		return nil, ErrNegativeHours
	}

	day = day.UTC().Truncate(24 * time.Hour)
	return &DailyReport{
		ID:              uuid.NewString(),
		WorkerID:        workerID,
		SiteID:          siteID,
		Date:            day,
		HoursWorked:     hoursWorked,
		ProgressMade:    strings.TrimSpace(progress),
		MaterialsNeeded: strings.TrimSpace(materials),
		Issues:          issues,
		SubmittedAt:     time.Now().UTC(),
	}, nil
}

// PastDeadline reports whether now is at or past the report deadline on its
// own calendar day. Used by the missing-report check: before the deadline a
// missing report is not yet "missing".
func PastDeadline(now time.Time, deadlineHour, deadlineMinute int) bool {
	h, m := now.Hour(), now.Minute()
	return h > deadlineHour || (h == deadlineHour && m >= deadlineMinute)
}
