package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crewsite/internal/domain/attendance"
	"crewsite/internal/domain/geo"
	"crewsite/internal/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned by lookups that matched no row.
var ErrNotFound = errors.New("not found")

// AttendanceRepo persists attendance records using pgx and plain SQL.
type AttendanceRepo struct {
	pool *pgxpool.Pool
}

// NewAttendanceRepo constructs a new AttendanceRepo.
func NewAttendanceRepo(pool *pgxpool.Pool) ports.AttendanceRepository {
	return &AttendanceRepo{pool: pool}
}

const attendanceColumns = `
	id, worker_id, site_id,
	clock_in_at, clock_in_lat, clock_in_lng,
	clock_out_at, clock_out_lat, clock_out_lng,
	status, distance_at_clock_in_m, photo_url
`

// Create inserts a freshly opened record. Must run inside the clock-in
// transaction so that the open-shift check and the insert are atomic.
func (repo *AttendanceRepo) Create(ctx context.Context, record *attendance.Record) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO attendance_records (
			id, worker_id, site_id,
			clock_in_at, clock_in_lat, clock_in_lng,
			status, distance_at_clock_in_m, photo_url
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		record.ID,
		record.WorkerID,
		record.SiteID,
		record.ClockInAt,
		record.ClockInLocation.Latitude,
		record.ClockInLocation.Longitude,
		record.Status.String(),
		record.DistanceAtClockInMeters,
		record.PhotoURL,
	)
	if err != nil {
		return fmt.Errorf("insert attendance record: %w", err)
	}
	return nil
}

// Update writes the clock-out fields. Status and the clock-in columns are
// immutable after Create, so only the mutable half is touched.
func (repo *AttendanceRepo) Update(ctx context.Context, record *attendance.Record) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	var outLat, outLng *float64
	if record.ClockOutLocation != nil {
		outLat = &record.ClockOutLocation.Latitude
		outLng = &record.ClockOutLocation.Longitude
	}

	tag, err := tx.Exec(ctx, `
		UPDATE attendance_records
		SET clock_out_at = $2, clock_out_lat = $3, clock_out_lng = $4
		WHERE id = $1
	`, record.ID, record.ClockOutAt, outLat, outLng)
	if err != nil {
		return fmt.Errorf("update attendance record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("attendance record %s: %w", record.ID, ErrNotFound)
	}
	return nil
}

// GetByID fetches one record by its ID.
func (repo *AttendanceRepo) GetByID(ctx context.Context, recordID string) (*attendance.Record, error) {
	row := db(ctx, repo.pool).QueryRow(ctx, `
		SELECT `+attendanceColumns+`
		FROM attendance_records
		WHERE id = $1
	`, recordID)

	record, err := scanAttendance(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("attendance record %s: %w", recordID, ErrNotFound)
	}
	return record, err
}

// FindOpen returns the worker's open shift at the site, or ErrNotFound. Callers
// enforcing the one-open-shift rule must call this inside WithinTx.
func (repo *AttendanceRepo) FindOpen(ctx context.Context, workerID, siteID string) (*attendance.Record, error) {
	row := db(ctx, repo.pool).QueryRow(ctx, `
		SELECT `+attendanceColumns+`
		FROM attendance_records
		WHERE worker_id = $1
		  AND site_id = $2
		  AND clock_out_at IS NULL
		ORDER BY clock_in_at DESC
		LIMIT 1
	`, workerID, siteID)

	record, err := scanAttendance(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return record, err
}

// ListForWorker returns the worker's records with clock-in inside [from, to],
// oldest first.
func (repo *AttendanceRepo) ListForWorker(ctx context.Context, workerID string, from, to time.Time) ([]*attendance.Record, error) {
	rows, err := db(ctx, repo.pool).Query(ctx, `
		SELECT `+attendanceColumns+`
		FROM attendance_records
		WHERE worker_id = $1
		  AND clock_in_at >= $2
		  AND clock_in_at <= $3
		ORDER BY clock_in_at ASC
	`, workerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list attendance for worker: %w", err)
	}
	defer rows.Close()

	return collectAttendance(rows)
}

// ListForWorkers returns the records of all given workers with clock-in inside
// [from, to], oldest first. An empty ID list yields an empty result.
func (repo *AttendanceRepo) ListForWorkers(ctx context.Context, workerIDs []string, from, to time.Time) ([]*attendance.Record, error) {
	if len(workerIDs) == 0 {
		return nil, nil
	}

	rows, err := db(ctx, repo.pool).Query(ctx, `
		SELECT `+attendanceColumns+`
		FROM attendance_records
		WHERE worker_id = ANY($1)
		  AND clock_in_at >= $2
		  AND clock_in_at <= $3
		ORDER BY clock_in_at ASC
	`, workerIDs, from, to)
	if err != nil {
		return nil, fmt.Errorf("list attendance for workers: %w", err)
	}
	defer rows.Close()

	return collectAttendance(rows)
}

// --- scanning helpers ---

func scanAttendance(row pgx.Row) (*attendance.Record, error) {
	var (
		record  attendance.Record
		status  string
		outAt   *time.Time
		outLat  *float64
		outLng  *float64
	)

	err := row.Scan(
		&record.ID, &record.WorkerID, &record.SiteID,
		&record.ClockInAt, &record.ClockInLocation.Latitude, &record.ClockInLocation.Longitude,
		&outAt, &outLat, &outLng,
		&status, &record.DistanceAtClockInMeters, &record.PhotoURL,
	)
	if err != nil {
		return nil, err
	}

	record.Status, _ = attendance.ParseStatus(status)
	record.ClockOutAt = outAt
	if outLat != nil && outLng != nil {
		record.ClockOutLocation = &geo.Coordinate{Latitude: *outLat, Longitude: *outLng}
	}

	return &record, nil
}

func collectAttendance(rows pgx.Rows) ([]*attendance.Record, error) {
	var out []*attendance.Record
	for rows.Next() {
		record, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attendance record: %w", err)
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
