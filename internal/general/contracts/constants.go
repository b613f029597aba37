package contracts

// Exchanges
const (
	ExchangeAttendanceTopic = "attendance_topic"
	ExchangeFeedFanout      = "feed_fanout"
)

// Queues
const (
	QueueAttendanceEvents = "attendance_events"
	QueueMissingReports   = "missing_reports"
	QueueFeedBroadcast    = "feed_broadcast"
)

// Routing patterns
const (
	RouteClockInPrefix    = "attendance.clock_in."  // {status: verified|out_of_range}
	RouteClockOut         = "attendance.clock_out"  // no suffix
	RouteReportMissing    = "report.missing"        // daily-report reminder
)
