// Package target defines the celestial-target oracle the coordinator
// samples: a capability that, given a moment in time and an observer
// location, yields an hour-angle/declination pair in radians.
package target

import (
	"fmt"
	"math"
	"time"
)

// Location is an observer's position on Earth, used by targets whose
// apparent coordinates depend on where they're viewed from (Solar-System
// bodies; fixed stars do not, but still take one for a uniform
// interface).
type Location struct {
	LatitudeRad  float64
	LongitudeRad float64
	ElevationM   float64
}

// Coordinate is an hour-angle/declination pair, in radians.
type Coordinate struct {
	HourAngleRad float64
	DecRad       float64
}

// Target yields the apparent position of a celestial object at a given
// instant, as seen from loc.
type Target interface {
	Coordinate(t time.Time, loc Location) (Coordinate, error)
	fmt.Stringer
}

// FixedSky is a target given by a right ascension and declination valid
// at RefTime; its hour angle starts from RARad and is advanced for sidereal drift
// between the reference time and the query time, since a fixed-sky object
// does not move in right ascension/declination but the mount's hour-angle
// frame rotates under it as the Earth turns.
type FixedSky struct {
	Name    string
	RARad   float64 // right ascension at RefTime, radians
	DecRad  float64
	RefTime time.Time
}

// siderealRate is the angular rate of the hour-angle frame against a
// fixed right ascension: 2*pi radians per sidereal day.
const siderealRate = 2 * math.Pi / 86164.0905

func (f FixedSky) Coordinate(t time.Time, _ Location) (Coordinate, error) {
	elapsed := t.Sub(f.RefTime).Seconds()
	ha := wrapRad(f.RARad + siderealRate*elapsed)
	return Coordinate{HourAngleRad: ha, DecRad: f.DecRad}, nil
}

func (f FixedSky) String() string { return fmt.Sprintf("FixedSky(%s)", f.Name) }

// SolarSystemBody is a target resolved by name against an externally
// supplied ephemeris function — the mount core has no orbital-mechanics
// model of its own; it only asks a Body for a geocentric position.
type SolarSystemBody struct {
	Name string
	Body EphemerisBody
}

// EphemerisBody computes a body's apparent right ascension/declination at
// a given time, as seen from an observer location. Implementations are
// expected to be supplied externally (e.g. backed by a planetary
// ephemeris library); this package only defines the shape.
type EphemerisBody interface {
	Position(t time.Time, loc Location) (raRad, decRad float64, err error)
}

func (s SolarSystemBody) Coordinate(t time.Time, loc Location) (Coordinate, error) {
	ra, dec, err := s.Body.Position(t, loc)
	if err != nil {
		return Coordinate{}, fmt.Errorf("target: solar system body %q: %w", s.Name, err)
	}
	gst := GreenwichSiderealRad(t)
	ha := wrapRad(gst + loc.LongitudeRad - ra)
	return Coordinate{HourAngleRad: ha, DecRad: dec}, nil
}

func (s SolarSystemBody) String() string { return fmt.Sprintf("SolarSystemBody(%s)", s.Name) }

// EphemerisQuery resolves a named object against an external catalog
// service at query time, rather than holding a fixed position or a
// pre-bound ephemeris. Grounded on the reference implementation's
// name-based Target protocol, generalized to any catalog lookup rather
// than one tied to a specific ephemeris package.
type EphemerisQuery struct {
	Designation string
	Resolve     func(t time.Time, loc Location, designation string) (Coordinate, error)
}

func (q EphemerisQuery) Coordinate(t time.Time, loc Location) (Coordinate, error) {
	if q.Resolve == nil {
		return Coordinate{}, fmt.Errorf("target: ephemeris query %q: no resolver configured", q.Designation)
	}
	c, err := q.Resolve(t, loc, q.Designation)
	if err != nil {
		return Coordinate{}, fmt.Errorf("target: ephemeris query %q: %w", q.Designation, err)
	}
	return c, nil
}

func (q EphemerisQuery) String() string { return fmt.Sprintf("EphemerisQuery(%s)", q.Designation) }

// GreenwichSiderealRad approximates Greenwich mean sidereal time, in
// radians, using the standard low-precision polynomial referenced to the
// J2000 epoch. Precise enough for hour-angle tracking purposes; a full
// ephemeris-backed implementation can always substitute its own
// EphemerisBody instead of relying on this approximation.
//
// Exported so callers converting between right ascension and hour angle
// outside this package (e.g. the Stellarium bridge's outbound position
// reports) use the same sidereal-time approximation SolarSystemBody does,
// rather than a second implementation drifting out of sync with it.
func GreenwichSiderealRad(t time.Time) float64 {
	j2000 := time.Date(2000, time.January, 1, 12, 0, 0, 0, time.UTC)
	daysSinceJ2000 := t.Sub(j2000).Hours() / 24

	gmstHours := 18.697374558 + 24.06570982441908*daysSinceJ2000
	gmstHours = math.Mod(gmstHours, 24)
	if gmstHours < 0 {
		gmstHours += 24
	}
	return gmstHours / 24 * 2 * math.Pi
}

// WrapAngle wraps a radians into [0, 2*pi).
func WrapAngle(a float64) float64 {
	const twoPi = 2 * math.Pi
	a = math.Mod(a, twoPi)
	if a < 0 {
		a += twoPi
	}
	return a
}

func wrapRad(a float64) float64 { return WrapAngle(a) }

// Velocity estimates a target's angular velocity (radians/s) by
// finite-differencing its Coordinate over dt, matching the coordinator's
// acquisition-phase finite-difference sampling.
func Velocity(tg Target, t time.Time, loc Location, dt time.Duration) (haRadPerSec, decRadPerSec float64, err error) {
	c0, err := tg.Coordinate(t, loc)
	if err != nil {
		return 0, 0, err
	}
	c1, err := tg.Coordinate(t.Add(dt), loc)
	if err != nil {
		return 0, 0, err
	}

	dha := wrapRad(c1.HourAngleRad-c0.HourAngleRad+math.Pi) - math.Pi
	seconds := dt.Seconds()
	return dha / seconds, (c1.DecRad - c0.DecRad) / seconds, nil
}
