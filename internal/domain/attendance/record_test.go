package attendance

import (
	"errors"
	"testing"
	"time"

	"crewsite/internal/domain/geo"
)

var testFence = geo.Fence{
	SiteID:       "cambie-marine",
	Center:       geo.Coordinate{Latitude: 49.2827, Longitude: -123.1207},
	RadiusMeters: 200,
}

func TestClockInVerdictFixesStatus(t *testing.T) {
	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	near := geo.Coordinate{Latitude: 49.2828, Longitude: -123.1208}
	record, err := ClockIn("w1", "cambie-marine", at, near, testFence, "photos/a.jpg")
	if err != nil {
		t.Fatalf("ClockIn(near) err = %v", err)
	}
	if record.Status != StatusVerified {
		t.Errorf("near clock-in status = %s, want VERIFIED", record.Status)
	}
	if record.DistanceAtClockInMeters <= 0 || record.DistanceAtClockInMeters > 200 {
		t.Errorf("distance = %v, want the ~13 m evaluator output stored verbatim", record.DistanceAtClockInMeters)
	}
	if !record.Open() {
		t.Errorf("fresh record should be open")
	}
	if record.ID == "" {
		t.Errorf("record should get an ID at creation")
	}

	far := geo.Coordinate{Latitude: 49.3000, Longitude: -123.1207}
	record, err = ClockIn("w1", "cambie-marine", at, far, testFence, "")
	if err != nil {
		t.Fatalf("ClockIn(far) err = %v", err)
	}
	if record.Status != StatusOutOfRange {
		t.Errorf("far clock-in status = %s, want OUT_OF_RANGE", record.Status)
	}
}

func TestClockInValidation(t *testing.T) {
	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	loc := geo.Coordinate{Latitude: 49.2828, Longitude: -123.1208}

	if _, err := ClockIn("", "s1", at, loc, testFence, ""); !errors.Is(err, ErrWorkerRequired) {
		t.Errorf("empty worker: err = %v, want ErrWorkerRequired", err)
	}
	if _, err := ClockIn("w1", " ", at, loc, testFence, ""); !errors.Is(err, ErrSiteRequired) {
		t.Errorf("blank site: err = %v, want ErrSiteRequired", err)
	}
	if _, err := ClockIn("w1", "s1", time.Time{}, loc, testFence, ""); !errors.Is(err, ErrZeroClockInTime) {
		t.Errorf("zero time: err = %v, want ErrZeroClockInTime", err)
	}
	bad := geo.Coordinate{Latitude: 95, Longitude: 0}
	if _, err := ClockIn("w1", "s1", at, bad, testFence, ""); !errors.Is(err, geo.ErrInvalidLatitude) {
		t.Errorf("bad location: err = %v, want ErrInvalidLatitude", err)
	}
}

func TestCloseLifecycle(t *testing.T) {
	in := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	loc := geo.Coordinate{Latitude: 49.2828, Longitude: -123.1208}

	record, err := ClockIn("w1", "s1", in, loc, testFence, "")
	if err != nil {
		t.Fatalf("ClockIn err = %v", err)
	}

	// Clock-out before clock-in is rejected and leaves the shift open.
	if err := record.Close(in.Add(-time.Minute), loc); !errors.Is(err, ErrInvalidTimestamp) {
		t.Errorf("early clock-out: err = %v, want ErrInvalidTimestamp", err)
	}
	if !record.Open() {
		t.Fatalf("rejected clock-out must not close the shift")
	}

	out := in.Add(8*time.Hour + 30*time.Minute)
	statusBefore := record.Status
	if err := record.Close(out, geo.Coordinate{Latitude: 49.5, Longitude: -123.2}); err != nil {
		t.Fatalf("Close err = %v", err)
	}
	if record.Open() {
		t.Errorf("record should be closed")
	}
	if record.Status != statusBefore {
		t.Errorf("clock-out must not change verification status: %s -> %s", statusBefore, record.Status)
	}
	if record.ClockOutLocation == nil || record.ClockOutLocation.Latitude != 49.5 {
		t.Errorf("clock-out location not recorded: %+v", record.ClockOutLocation)
	}

	// Second clock-out on a closed record.
	if err := record.Close(out.Add(time.Hour), loc); !errors.Is(err, ErrNoOpenShift) {
		t.Errorf("double clock-out: err = %v, want ErrNoOpenShift", err)
	}
}

func TestHoursWorked(t *testing.T) {
	in := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	loc := geo.Coordinate{Latitude: 49.2828, Longitude: -123.1208}

	record, err := ClockIn("w1", "s1", in, loc, testFence, "")
	if err != nil {
		t.Fatalf("ClockIn err = %v", err)
	}

	if _, err := record.HoursWorked(); !errors.Is(err, ErrShiftStillOpen) {
		t.Errorf("open shift: err = %v, want ErrShiftStillOpen", err)
	}

	// 09:00 to 17:30 is exactly 8.5 hours.
	if err := record.Close(in.Add(8*time.Hour+30*time.Minute), loc); err != nil {
		t.Fatalf("Close err = %v", err)
	}
	hours, err := record.HoursWorked()
	if err != nil {
		t.Fatalf("HoursWorked err = %v", err)
	}
	if hours != 8.5 {
		t.Errorf("HoursWorked = %v, want 8.5", hours)
	}
}

func TestShiftDate(t *testing.T) {
	in := time.Date(2025, 3, 10, 23, 45, 0, 0, time.UTC)
	loc := geo.Coordinate{Latitude: 49.2828, Longitude: -123.1208}
	record, err := ClockIn("w1", "s1", in, loc, testFence, "")
	if err != nil {
		t.Fatalf("ClockIn err = %v", err)
	}
	if got := record.ShiftDate(); got != "2025-03-10" {
		t.Errorf("ShiftDate = %q, want 2025-03-10", got)
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{"verified", StatusVerified, false},
		{" OUT_OF_RANGE ", StatusOutOfRange, false},
		{"pending", StatusPending, false},
		{"flagged", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseStatus(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidStatus) {
				t.Errorf("ParseStatus(%q) err = %v, want ErrInvalidStatus", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseStatus(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
		}
	}
}
