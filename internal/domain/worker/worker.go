package worker

import (
	"errors"
	"strings"
	"time"
)

// PayProfile is the payroll-relevant slice of a worker's profile. It is
// supplied by the profile store and read-only to the payroll core.
type PayProfile struct {
	WorkerID    string
	DisplayName string
	HourlyRate  float64
	Role        Role
	Phone       string
	CreatedAt   time.Time
}

var (
	ErrWorkerRequired = errors.New("worker id is required")
	ErrNameRequired   = errors.New("display name is required")
	ErrInvalidRate    = errors.New("hourly rate must be greater than zero")
)

// NewPayProfile validates and constructs a pay profile.
func NewPayProfile(workerID, displayName string, hourlyRate float64, role Role) (*PayProfile, error) {
	if workerID = strings.TrimSpace(workerID); workerID == "" {
		return nil, ErrWorkerRequired
	}
	if displayName = strings.TrimSpace(displayName); displayName == "" {
		return nil, ErrNameRequired
	}
	if hourlyRate <= 0 {
		return nil, ErrInvalidRate
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	return &PayProfile{
		WorkerID:    workerID,
		DisplayName: displayName,
		HourlyRate:  hourlyRate,
		Role:        role,
		CreatedAt:   time.Now().UTC(),
	}, nil
}
