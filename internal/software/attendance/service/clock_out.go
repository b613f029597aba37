package service

import (
	"context"
	"errors"
	"time"

	"crewsite/internal/domain/attendance"
	"crewsite/internal/domain/geo"
	"crewsite/internal/general/contracts"
	"crewsite/internal/ports"
)

// ErrRecordOwnership guards clock-out against closing someone else's shift.
var ErrRecordOwnership = errors.New("record does not belong to this worker")

// ClockOut closes the shift identified by the record ID. The clock-out
// location is stored for audit only; the verification status stays whatever
// clock-in decided.
func (service *attendanceService) ClockOut(ctx context.Context, in ports.ClockOutInput) (ports.ClockOutResult, error) {
	var out ports.ClockOutResult
	corrID := generateCorrelationID()

	location, err := geo.NewCoordinate(in.Latitude, in.Longitude)
	if err != nil {
		return out, err
	}

	var record *attendance.Record
	var hours float64
	err = service.uow.WithinTx(ctx, func(ctx context.Context) error {
		record, err = service.records.GetByID(ctx, in.RecordID)
		if err != nil {
			return err
		}
		if record.WorkerID != in.WorkerID {
			return ErrRecordOwnership
		}

		if err := record.Close(time.Now().UTC(), location); err != nil {
			return err
		}

		hours, err = record.HoursWorked()
		if err != nil {
			return err
		}

		return service.records.Update(ctx, record)
	})
	if err != nil {
		service.logger.Error(ctx, "clock_out_failed", "Failed to clock out", err, map[string]any{
			"worker_id":  in.WorkerID,
			"record_id":  in.RecordID,
			"request_id": corrID,
		})
		return out, err
	}

	out = ports.ClockOutResult{
		RecordID:    record.ID,
		ClockOutAt:  *record.ClockOutAt,
		HoursWorked: hours,
		Status:      record.Status.String(),
	}

	event := contracts.AttendanceEventMessage{
		Event:       "clock_out",
		RecordID:    record.ID,
		WorkerID:    record.WorkerID,
		SiteID:      record.SiteID,
		Status:      record.Status.String(),
		Location:    contracts.GeoPoint{Lat: in.Latitude, Lng: in.Longitude},
		HoursWorked: hours,
		OccurredAt:  *record.ClockOutAt,
		Envelope: contracts.Envelope{
			CorrelationID: corrID,
			Producer:      "attendance-service",
			SentAt:        time.Now().UTC(),
		},
	}
	if err := service.publishAttendanceEvent(ctx, contracts.RouteClockOut, event); err != nil {
		service.logger.Error(ctx, "clock_out_publish_failed", "Failed to publish clock-out event", err, map[string]any{
			"record_id":  record.ID,
			"request_id": corrID,
		})
	}

	service.logger.Info(ctx, "clocked_out", "Worker clocked out", map[string]any{
		"record_id":    record.ID,
		"worker_id":    record.WorkerID,
		"site_id":      record.SiteID,
		"hours_worked": hours,
		"clock_out_at": record.ClockOutAt,
		"request_id":   corrID,
	})

	return out, nil
}
