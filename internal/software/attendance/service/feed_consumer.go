package service

import (
	"context"
	"encoding/json"
	"time"

	"crewsite/internal/general/contracts"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StartFeedConsumer consumes the feed broadcast queue and pushes every
// attendance event to connected manager dashboards. Runs until ctx is
// cancelled, retrying when the broker connection drops.
func (service *attendanceService) StartFeedConsumer(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			err := service.rabbitmq.Consume(ctx, contracts.QueueFeedBroadcast, "attendance-feed", 16,
				func(ctx context.Context, d amqp.Delivery) error {
					var event contracts.AttendanceEventMessage
					if err := json.Unmarshal(d.Body, &event); err != nil {
						// poison message; nack without requeue via error return
						return err
					}

					service.feed.Broadcast(event)

					service.logger.Debug(ctx, "feed_event_delivered", "Pushed attendance event to dashboards", map[string]any{
						"event":     event.Event,
						"record_id": event.RecordID,
						"worker_id": event.WorkerID,
						"managers":  service.feed.ConnectedManagers(),
					})
					return nil
				})
			if err != nil {
				service.logger.Error(ctx, "feed_consumer_stopped", "Feed consumer exited, retrying", err, nil)
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(3 * time.Second):
			}
		}
	}()
}
