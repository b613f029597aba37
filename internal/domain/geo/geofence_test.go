package geo

import (
	"errors"
	"math"
	"testing"
)

func TestNewCoordinateRanges(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		wantErr  error
	}{
		{"valid downtown", 49.2827, -123.1207, nil},
		{"north pole", 90, 0, nil},
		{"date line", 0, -180, nil},
		{"lat too high", 90.0001, 0, ErrInvalidLatitude},
		{"lat too low", -91, 0, ErrInvalidLatitude},
		{"lon too high", 0, 180.5, ErrInvalidLongitude},
		{"lon too low", 0, -181, ErrInvalidLongitude},
		{"lat NaN", math.NaN(), 0, ErrInvalidLatitude},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCoordinate(tt.lat, tt.lon)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewCoordinate(%v, %v) err = %v, want %v", tt.lat, tt.lon, err, tt.wantErr)
			}
		})
	}
}

func TestDistanceMetersSymmetry(t *testing.T) {
	a := Coordinate{Latitude: 49.2827, Longitude: -123.1207}
	b := Coordinate{Latitude: 49.3000, Longitude: -123.1207}

	ab, err := DistanceMeters(a, b)
	if err != nil {
		t.Fatalf("DistanceMeters(a, b) err = %v", err)
	}
	ba, err := DistanceMeters(b, a)
	if err != nil {
		t.Fatalf("DistanceMeters(b, a) err = %v", err)
	}
	if ab != ba {
		t.Errorf("distance not symmetric: %v vs %v", ab, ba)
	}

	self, err := DistanceMeters(a, a)
	if err != nil {
		t.Fatalf("DistanceMeters(a, a) err = %v", err)
	}
	if self != 0 {
		t.Errorf("DistanceMeters(a, a) = %v, want 0", self)
	}
}

func TestDistanceMetersInvalidInput(t *testing.T) {
	valid := Coordinate{Latitude: 49, Longitude: -123}
	bad := Coordinate{Latitude: 91, Longitude: 0}

	if _, err := DistanceMeters(bad, valid); !errors.Is(err, ErrInvalidLatitude) {
		t.Errorf("first arg invalid: err = %v, want ErrInvalidLatitude", err)
	}
	if _, err := DistanceMeters(valid, bad); !errors.Is(err, ErrInvalidLatitude) {
		t.Errorf("second arg invalid: err = %v, want ErrInvalidLatitude", err)
	}
}

func TestEvaluateBoundaryInclusive(t *testing.T) {
	center := Coordinate{Latitude: 49.2827, Longitude: -123.1207}
	point := Coordinate{Latitude: 49.2850, Longitude: -123.1207}

	distance, err := DistanceMeters(point, center)
	if err != nil {
		t.Fatalf("DistanceMeters err = %v", err)
	}

	// A fence whose radius equals the exact distance must report within.
	fence := Fence{SiteID: "site-1", Center: center, RadiusMeters: distance}
	verdict, err := Evaluate(point, fence)
	if err != nil {
		t.Fatalf("Evaluate err = %v", err)
	}
	if !verdict.WithinRadius {
		t.Errorf("point at exactly radius distance should be within the fence")
	}
	if verdict.DistanceMeters != distance {
		t.Errorf("verdict distance %v, want %v unrounded", verdict.DistanceMeters, distance)
	}

	// Barely outside.
	fence.RadiusMeters = distance - 0.001
	verdict, err = Evaluate(point, fence)
	if err != nil {
		t.Fatalf("Evaluate err = %v", err)
	}
	if verdict.WithinRadius {
		t.Errorf("point past the radius should be outside the fence")
	}
}

func TestEvaluateSiteScenario(t *testing.T) {
	// Fence at downtown Vancouver with a 200 m radius.
	fence := Fence{
		SiteID:       "cambie-marine",
		Center:       Coordinate{Latitude: 49.2827, Longitude: -123.1207},
		RadiusMeters: 200,
	}

	near := Coordinate{Latitude: 49.2828, Longitude: -123.1208}
	verdict, err := Evaluate(near, fence)
	if err != nil {
		t.Fatalf("Evaluate(near) err = %v", err)
	}
	if !verdict.WithinRadius {
		t.Errorf("point ~13 m from center should be within 200 m fence (distance %v)", verdict.DistanceMeters)
	}
	if verdict.DistanceMeters < 10 || verdict.DistanceMeters > 16 {
		t.Errorf("distance = %v m, want about 13 m", verdict.DistanceMeters)
	}

	far := Coordinate{Latitude: 49.3000, Longitude: -123.1207}
	verdict, err = Evaluate(far, fence)
	if err != nil {
		t.Fatalf("Evaluate(far) err = %v", err)
	}
	if verdict.WithinRadius {
		t.Errorf("point ~1.9 km from center should be outside 200 m fence (distance %v)", verdict.DistanceMeters)
	}
	if verdict.DistanceMeters < 1800 || verdict.DistanceMeters > 2000 {
		t.Errorf("distance = %v m, want about 1900 m", verdict.DistanceMeters)
	}
}

func TestNewFence(t *testing.T) {
	center := Coordinate{Latitude: 49.2827, Longitude: -123.1207}

	if _, err := NewFence("s1", center, 0); !errors.Is(err, ErrInvalidRadius) {
		t.Errorf("zero radius: err = %v, want ErrInvalidRadius", err)
	}
	if _, err := NewFence("s1", Coordinate{Latitude: 100}, 200); !errors.Is(err, ErrInvalidLatitude) {
		t.Errorf("bad center: err = %v, want ErrInvalidLatitude", err)
	}
	fence, err := NewFence("s1", center, 200)
	if err != nil {
		t.Fatalf("valid fence err = %v", err)
	}
	if fence.RadiusMeters != 200 || fence.SiteID != "s1" {
		t.Errorf("unexpected fence %+v", fence)
	}
}
