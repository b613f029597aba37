package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"time"

	"crewsite/internal/general/contracts"
)

// generateCorrelationID creates a simple correlation ID for tracing requests.
func generateCorrelationID() string {
	var b [3]byte // 6 hex chars
	_, _ = rand.Read(b[:])
	ts := time.Now().UTC().Format("20060102T150405")
	return "req_" + ts + "_" + hex.EncodeToString(b[:])
}

// publishAttendanceEvent sends one attendance event to the topic exchange and
// mirrors it on the fanout exchange so connected dashboards see it live.
func (service *attendanceService) publishAttendanceEvent(ctx context.Context, routingKey string, msg contracts.AttendanceEventMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := service.pub.Publish(contracts.ExchangeAttendanceTopic, routingKey, body); err != nil {
		return err
	}

	// fanout ignores routing keys; pass an empty routing key
	if err := service.pub.Publish(contracts.ExchangeFeedFanout, "", body); err != nil {
		return err
	}

	service.logger.Info(ctx, "attendance_event_published", "Published attendance event to RabbitMQ", map[string]any{
		"routing_key": routingKey,
		"event":       msg.Event,
		"record_id":   msg.RecordID,
		"worker_id":   msg.WorkerID,
		"site_id":     msg.SiteID,
	})

	return nil
}

// publishMissingReport notifies downstream consumers about an overdue report.
func (service *attendanceService) publishMissingReport(ctx context.Context, msg contracts.MissingReportMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := service.pub.Publish(contracts.ExchangeAttendanceTopic, contracts.RouteReportMissing, body); err != nil {
		return err
	}

	service.logger.Info(ctx, "missing_report_published", "Published missing-report reminder to RabbitMQ", map[string]any{
		"worker_id": msg.WorkerID,
		"site_id":   msg.SiteID,
		"day":       msg.Day,
	})

	return nil
}
