package target

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestFixedSkyAdvancesWithSiderealTime(t *testing.T) {
	ref := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	fs := FixedSky{Name: "polaris", RARad: 0, DecRad: 1.5, RefTime: ref}

	c0, err := fs.Coordinate(ref, Location{})
	if err != nil {
		t.Fatalf("Coordinate: %v", err)
	}
	if c0.HourAngleRad != 0 {
		t.Fatalf("hour angle at ref time = %v, want 0", c0.HourAngleRad)
	}

	later := ref.Add(time.Hour)
	c1, err := fs.Coordinate(later, Location{})
	if err != nil {
		t.Fatalf("Coordinate: %v", err)
	}
	if c1.HourAngleRad <= 0 {
		t.Fatalf("hour angle an hour later = %v, want > 0", c1.HourAngleRad)
	}
	if c1.DecRad != 1.5 {
		t.Fatalf("declination changed: got %v, want 1.5", c1.DecRad)
	}
}

func TestFixedSkyWrapsHourAngle(t *testing.T) {
	ref := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	fs := FixedSky{Name: "far-future", RARad: 0, DecRad: 0, RefTime: ref}

	c, err := fs.Coordinate(ref.Add(30*24*time.Hour), Location{})
	if err != nil {
		t.Fatalf("Coordinate: %v", err)
	}
	if c.HourAngleRad < 0 || c.HourAngleRad >= 2*math.Pi {
		t.Fatalf("hour angle %v not wrapped into [0, 2pi)", c.HourAngleRad)
	}
}

type fakeBody struct {
	ra, dec float64
	err     error
}

func (f fakeBody) Position(time.Time, Location) (float64, float64, error) {
	return f.ra, f.dec, f.err
}

func TestSolarSystemBodyPropagatesEphemerisError(t *testing.T) {
	boom := errors.New("ephemeris unavailable")
	body := SolarSystemBody{Name: "mars", Body: fakeBody{err: boom}}

	_, err := body.Coordinate(time.Now(), Location{})
	if !errors.Is(err, boom) {
		t.Fatalf("got err %v, want wrapped %v", err, boom)
	}
}

func TestEphemerisQueryRequiresResolver(t *testing.T) {
	q := EphemerisQuery{Designation: "ceres"}
	if _, err := q.Coordinate(time.Now(), Location{}); err == nil {
		t.Fatalf("expected error with no resolver configured")
	}
}

func TestEphemerisQueryUsesResolver(t *testing.T) {
	want := Coordinate{HourAngleRad: 1, DecRad: 2}
	q := EphemerisQuery{
		Designation: "ceres",
		Resolve: func(time.Time, Location, string) (Coordinate, error) {
			return want, nil
		},
	}
	got, err := q.Coordinate(time.Now(), Location{})
	if err != nil {
		t.Fatalf("Coordinate: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestVelocityFiniteDifference(t *testing.T) {
	ref := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	fs := FixedSky{Name: "test", RARad: 0, DecRad: 0, RefTime: ref}

	ha, dec, err := Velocity(fs, ref, Location{}, time.Second)
	if err != nil {
		t.Fatalf("Velocity: %v", err)
	}
	if !almostEqual(ha, siderealRate, 1e-9) {
		t.Fatalf("hour angle rate = %v, want ~%v", ha, siderealRate)
	}
	if dec != 0 {
		t.Fatalf("declination rate = %v, want 0", dec)
	}
}

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
