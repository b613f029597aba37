package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"crewsite/internal/domain/attendance"
	"crewsite/internal/domain/geo"
	"crewsite/internal/general/contracts"
	"crewsite/internal/general/postgres"
	"crewsite/internal/ports"
)

// ClockIn opens a new shift. The geofence verdict is evaluated here, fixed on
// the record, and never revisited. The open-shift check and the insert run in
// one transaction so two concurrent clock-ins cannot both pass.
func (service *attendanceService) ClockIn(ctx context.Context, in ports.ClockInInput) (ports.ClockInResult, error) {
	var out ports.ClockInResult
	corrID := generateCorrelationID()

	location, err := geo.NewCoordinate(in.Latitude, in.Longitude)
	if err != nil {
		return out, err
	}

	var record *attendance.Record
	err = service.uow.WithinTx(ctx, func(ctx context.Context) error {
		// resolve the site and its fence
		s, err := service.sites.GetByID(ctx, in.SiteID)
		if err != nil {
			return err
		}

		// reject a second open shift at the same site
		if open, err := service.records.FindOpen(ctx, in.WorkerID, in.SiteID); err == nil && open != nil {
			return attendance.ErrShiftAlreadyOpen
		} else if err != nil && !errors.Is(err, postgres.ErrNotFound) {
			return err
		}

		record, err = attendance.ClockIn(in.WorkerID, in.SiteID, time.Now().UTC(), location, s.Fence(), in.PhotoURL)
		if err != nil {
			return err
		}

		return service.records.Create(ctx, record)
	})
	if err != nil {
		service.logger.Error(ctx, "clock_in_failed", "Failed to clock in", err, map[string]any{
			"worker_id":  in.WorkerID,
			"site_id":    in.SiteID,
			"request_id": corrID,
		})
		return out, err
	}

	out = ports.ClockInResult{
		RecordID:       record.ID,
		Status:         record.Status.String(),
		DistanceMeters: record.DistanceAtClockInMeters,
		ClockInAt:      record.ClockInAt,
	}

	// publish the event; a broken broker must not undo a committed clock-in
	event := contracts.AttendanceEventMessage{
		Event:          "clock_in",
		RecordID:       record.ID,
		WorkerID:       record.WorkerID,
		SiteID:         record.SiteID,
		Status:         record.Status.String(),
		Location:       contracts.GeoPoint{Lat: in.Latitude, Lng: in.Longitude},
		DistanceMeters: record.DistanceAtClockInMeters,
		OccurredAt:     record.ClockInAt,
		Envelope: contracts.Envelope{
			CorrelationID: corrID,
			Producer:      "attendance-service",
			SentAt:        time.Now().UTC(),
		},
	}
	routingKey := contracts.RouteClockInPrefix + strings.ToLower(record.Status.String())
	if err := service.publishAttendanceEvent(ctx, routingKey, event); err != nil {
		service.logger.Error(ctx, "clock_in_publish_failed", "Failed to publish clock-in event", err, map[string]any{
			"record_id":  record.ID,
			"request_id": corrID,
		})
	}

	service.logger.Info(ctx, "clocked_in", "Worker clocked in", map[string]any{
		"record_id":   record.ID,
		"worker_id":   record.WorkerID,
		"site_id":     record.SiteID,
		"status":      record.Status.String(),
		"distance_m":  record.DistanceAtClockInMeters,
		"clock_in_at": record.ClockInAt,
		"request_id":  corrID,
	})

	return out, nil
}
