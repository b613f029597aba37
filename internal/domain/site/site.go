package site

import (
	"errors"
	"slices"
	"strings"
	"time"

	"crewsite/internal/domain/geo"
)

// Site is the domain entity corresponding to the `sites` table. Its geofence is
// owned by management and read-only to the attendance core.
type Site struct {
	ID           string
	Name         string
	Address      string
	Center       geo.Coordinate
	RadiusMeters float64
	ManagerID    string
	Crew         []string // worker IDs assigned to this site
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

var (
	ErrNameRequired    = errors.New("site name is required")
	ErrManagerRequired = errors.New("manager id is required")
	ErrWorkerRequired  = errors.New("worker id is required")
	ErrAlreadyAssigned = errors.New("worker is already on the crew")
	ErrNotAssigned     = errors.New("worker is not on the crew")
)

// New constructs a site. A non-positive radius falls back to the default.
func New(name, address, managerID string, center geo.Coordinate, radiusMeters float64) (*Site, error) {
	if name = strings.TrimSpace(name); name == "" {
		return nil, ErrNameRequired
	}
	if managerID = strings.TrimSpace(managerID); managerID == "" {
		return nil, ErrManagerRequired
	}
	if err := center.Validate(); err != nil {
		return nil, err
	}
	if radiusMeters <= 0 {
		radiusMeters = geo.DefaultRadiusMeters
	}

	now := time.Now().UTC()
	return &Site{
		Name:         name,
		Address:      strings.TrimSpace(address),
		Center:       center,
		RadiusMeters: radiusMeters,
		ManagerID:    managerID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Fence returns the geofence used to verify clock-ins at this site.
func (site *Site) Fence() geo.Fence {
	return geo.Fence{SiteID: site.ID, Center: site.Center, RadiusMeters: site.RadiusMeters}
}

// AssignWorker adds a worker to the crew roster.
func (site *Site) AssignWorker(workerID string) error {
	if workerID = strings.TrimSpace(workerID); workerID == "" {
		return ErrWorkerRequired
	}
	if slices.Contains(site.Crew, workerID) {
		return ErrAlreadyAssigned
	}
	site.Crew = append(site.Crew, workerID)
	site.UpdatedAt = time.Now().UTC()
	return nil
}

// RemoveWorker drops a worker from the crew roster.
func (site *Site) RemoveWorker(workerID string) error {
	idx := slices.Index(site.Crew, workerID)
	if idx < 0 {
		return ErrNotAssigned
	}
	site.Crew = slices.Delete(site.Crew, idx, idx+1)
	site.UpdatedAt = time.Now().UTC()
	return nil
}
