package attendance

import (
	"errors"
	"strings"
)

// Status is the verification outcome of a clock-in as stored in the
// `attendance_records` table. It is fixed when the record is created and never
// changes afterwards.
type Status string

const (
	// StatusPending is reserved for a future manual-review workflow. Clock-in
	// never produces it directly, but stored records carrying it are accepted.
	StatusPending    Status = "PENDING"
	StatusVerified   Status = "VERIFIED"
	StatusOutOfRange Status = "OUT_OF_RANGE"
)

var ErrInvalidStatus = errors.New("invalid attendance status")

// ParseStatus normalizes (uppercases+trims) and validates a status string.
func ParseStatus(in string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(in)))
	if status.Valid() {
		return status, nil
	}
	return "", ErrInvalidStatus
}

// Valid reports whether status is one of the allowed constants.
func (status Status) Valid() bool {
	switch status {
	case StatusPending, StatusVerified, StatusOutOfRange:
		return true
	default:
		return false
	}
}

// String returns the string representation of the Status.
func (status Status) String() string {
	return string(status)
}

// Verified reports whether the clock-in location was inside the site fence.
func (status Status) Verified() bool {
	return status == StatusVerified
}
