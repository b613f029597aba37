package rabbitmq

import (
	"fmt"

	"crewsite/internal/general/contracts"

	amqp "github.com/rabbitmq/amqp091-go"
)

// declareTopology declares the exchanges, queues and bindings every service
// relies on. It is idempotent and re-run on every (re)connect.
func declareTopology(ch *amqp.Channel) error {
	// exchanges
	if err := ch.ExchangeDeclare(
		contracts.ExchangeAttendanceTopic, // name
		"topic",                           // kind
		true,                              // durable
		false,                             // auto-delete
		false,                             // internal
		false,                             // no-wait
		nil,                               // args
	); err != nil {
		return fmt.Errorf("declare exchange %s: %w", contracts.ExchangeAttendanceTopic, err)
	}

	if err := ch.ExchangeDeclare(
		contracts.ExchangeFeedFanout,
		"fanout",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("declare exchange %s: %w", contracts.ExchangeFeedFanout, err)
	}

	// queues
	queues := []string{
		contracts.QueueAttendanceEvents,
		contracts.QueueMissingReports,
		contracts.QueueFeedBroadcast,
	}
	for _, q := range queues {
		if _, err := ch.QueueDeclare(
			q,     // name
			true,  // durable
			false, // auto-delete
			false, // exclusive
			false, // no-wait
			nil,   // args
		); err != nil {
			return fmt.Errorf("declare queue %s: %w", q, err)
		}
	}

	// bindings
	bindings := []struct {
		queue    string
		key      string
		exchange string
	}{
		// every clock-in regardless of verdict lands in the events queue
		{contracts.QueueAttendanceEvents, contracts.RouteClockInPrefix + "*", contracts.ExchangeAttendanceTopic},
		{contracts.QueueAttendanceEvents, contracts.RouteClockOut, contracts.ExchangeAttendanceTopic},
		{contracts.QueueMissingReports, contracts.RouteReportMissing, contracts.ExchangeAttendanceTopic},
		// fanout ignores the routing key
		{contracts.QueueFeedBroadcast, "", contracts.ExchangeFeedFanout},
	}
	for _, b := range bindings {
		if err := ch.QueueBind(b.queue, b.key, b.exchange, false, nil); err != nil {
			return fmt.Errorf("bind %s to %s (%s): %w", b.queue, b.exchange, b.key, err)
		}
	}

	return nil
}
