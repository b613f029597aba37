package attendance

import (
	"errors"
	"strings"
	"time"

	"crewsite/internal/domain/geo"

	"github.com/google/uuid"
)

// Record is the domain entity corresponding to the `attendance_records` table.
// One record is one shift: it is created by clock-in, mutated exactly once by
// clock-out, and never deleted here (archival is an external concern).
type Record struct {
	ID       string
	WorkerID string
	SiteID   string

	ClockInAt       time.Time
	ClockInLocation geo.Coordinate

	// Clock-out fields stay nil while the shift is open.
	ClockOutAt       *time.Time
	ClockOutLocation *geo.Coordinate

	// Status is derived from the clock-in geofence verdict and never changes.
	Status Status

	// DistanceAtClockInMeters is the evaluator output stored verbatim for audit.
	DistanceAtClockInMeters float64

	// PhotoURL is an opaque reference to the verification photo.
	PhotoURL string
}

var (
	ErrWorkerRequired    = errors.New("worker id is required")
	ErrSiteRequired      = errors.New("site id is required")
	ErrShiftAlreadyOpen  = errors.New("worker already has an open shift at this site")
	ErrNoOpenShift       = errors.New("no open shift to clock out of")
	ErrShiftStillOpen    = errors.New("shift is still open")
	ErrInvalidTimestamp  = errors.New("clock-out time cannot precede clock-in time")
	ErrZeroClockInTime   = errors.New("clock-in time must be a valid timestamp")
)

// ClockIn evaluates the worker's location against the site fence and creates a
// new open record. The verification status is fixed here: VERIFIED inside the
// fence, OUT_OF_RANGE outside. PENDING is never produced by this path.
func ClockIn(workerID, siteID string, at time.Time, location geo.Coordinate, fence geo.Fence, photoURL string) (*Record, error) {
	if workerID = strings.TrimSpace(workerID); workerID == "" {
		return nil, ErrWorkerRequired
	}
	if siteID = strings.TrimSpace(siteID); siteID == "" {
		return nil, ErrSiteRequired
	}
	if at.IsZero() {
		return nil, ErrZeroClockInTime
	}

	verdict, err := geo.Evaluate(location, fence)
	if err != nil {
		return nil, err
	}

	status := StatusOutOfRange
	if verdict.WithinRadius {
		status = StatusVerified
	}

	return &Record{
		ID:                      uuid.NewString(),
		WorkerID:                workerID,
		SiteID:                  siteID,
		ClockInAt:               at.UTC(),
		ClockInLocation:         location,
		Status:                  status,
		DistanceAtClockInMeters: verdict.DistanceMeters,
		PhotoURL:                strings.TrimSpace(photoURL),
	}, nil
}

// Open reports whether the shift has not been clocked out yet.
func (record *Record) Open() bool {
	return record.ClockOutAt == nil
}

// Close records the clock-out time and location. The clock-out location is
// range-checked and stored for audit but deliberately does not re-evaluate the
// fence: a worker who leaves the site after arriving still attended.
func (record *Record) Close(at time.Time, location geo.Coordinate) error {
	if !record.Open() {
		return ErrNoOpenShift
	}
	if err := location.Validate(); err != nil {
		return err
	}
	at = at.UTC()
	if at.Before(record.ClockInAt) {
		return ErrInvalidTimestamp
	}

	record.ClockOutAt = &at
	record.ClockOutLocation = &location
	return nil
}

// HoursWorked returns the shift duration in decimal hours. The record must be
// closed; Close's timestamp guard keeps the result non-negative.
func (record *Record) HoursWorked() (float64, error) {
	if record.Open() {
		return 0, ErrShiftStillOpen
	}
	return record.ClockOutAt.Sub(record.ClockInAt).Hours(), nil
}

// ShiftDate is the UTC calendar date of the clock-in, used as the payroll
// grouping key, formatted as YYYY-MM-DD.
func (record *Record) ShiftDate() string {
	return record.ClockInAt.UTC().Format("2006-01-02")
}
