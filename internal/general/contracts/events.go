package contracts

import "time"

// AttendanceEventMessage is published on every clock-in/clock-out and fanned
// out to manager dashboards through the feed exchange.
type AttendanceEventMessage struct {
	Event          string    `json:"event"` // "clock_in" | "clock_out"
	RecordID       string    `json:"record_id"`
	WorkerID       string    `json:"worker_id"`
	SiteID         string    `json:"site_id"`
	Status         string    `json:"status"` // VERIFIED | OUT_OF_RANGE
	Location       GeoPoint  `json:"location"`
	DistanceMeters float64   `json:"distance_meters,omitempty"` // clock-in only
	HoursWorked    float64   `json:"hours_worked,omitempty"`    // clock-out only
	OccurredAt     time.Time `json:"occurred_at"`
	Envelope
}

// MissingReportMessage asks the notification collaborator to nudge a worker
// whose daily report is still missing past the deadline.
type MissingReportMessage struct {
	WorkerID string    `json:"worker_id"`
	SiteID   string    `json:"site_id"`
	Day      string    `json:"day"` // YYYY-MM-DD
	Deadline time.Time `json:"deadline"`
	Envelope
}
