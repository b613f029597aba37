package geo

import "errors"

var ErrInvalidRadius = errors.New("geofence radius must be greater than zero")

// DefaultRadiusMeters is used when a site does not configure its own radius.
const DefaultRadiusMeters = 200.0

// Fence is a circular boundary around a job site.
type Fence struct {
	SiteID       string
	Center       Coordinate
	RadiusMeters float64
}

// NewFence validates the center and radius.
func NewFence(siteID string, center Coordinate, radiusMeters float64) (Fence, error) {
	if err := center.Validate(); err != nil {
		return Fence{}, err
	}
	if radiusMeters <= 0 {
		return Fence{}, ErrInvalidRadius
	}
	return Fence{SiteID: siteID, Center: center, RadiusMeters: radiusMeters}, nil
}

// Verdict is the outcome of evaluating a point against a fence.
type Verdict struct {
	WithinRadius   bool
	DistanceMeters float64
}

// Evaluate classifies a point as inside or outside the fence. The boundary is
// inclusive: a point at exactly RadiusMeters counts as within. The distance is
// returned unrounded; presentation layers round if they need to.
func Evaluate(point Coordinate, fence Fence) (Verdict, error) {
	if fence.RadiusMeters <= 0 {
		return Verdict{}, ErrInvalidRadius
	}
	distance, err := DistanceMeters(point, fence.Center)
	if err != nil {
		return Verdict{}, err
	}
	return Verdict{
		WithinRadius:   distance <= fence.RadiusMeters,
		DistanceMeters: distance,
	}, nil
}
