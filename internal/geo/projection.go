package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// ErrOutOfRange is matched by every *OutOfRangeError via errors.Is.
var ErrOutOfRange = errors.New("coordinate out of range")

// OutOfRangeError reports an input outside the projector's domain.
type OutOfRangeError struct {
	Field string
	Value float64
	Min   float64
	Max   float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s %v outside [%v, %v]", e.Field, e.Value, e.Min, e.Max)
}

// Is makes errors.Is(err, ErrOutOfRange) hold.
func (e *OutOfRangeError) Is(target error) bool {
	return target == ErrOutOfRange
}

// Location is a geographic position in degrees.
type Location struct {
	Lat float64 // -90..90, north positive
	Lng float64 // -180..180, east positive
}

// LocationFromPoint converts an orb.Point ([lon, lat]) to a Location.
func LocationFromPoint(p orb.Point) Location {
	return Location{Lat: p.Lat(), Lng: p.Lon()}
}

// Point returns the location as an orb.Point.
func (l Location) Point() orb.Point {
	return orb.Point{l.Lng, l.Lat}
}

// Validate checks the location against the projector's domain.
func (l Location) Validate() error {
	if err := checkRange("latitude", l.Lat, -90, 90); err != nil {
		return err
	}
	return checkRange("longitude", l.Lng, -180, 180)
}

// Project maps a geographic coordinate onto a sphere of the given radius.
//
// Convention: north pole at +Y, polar angle φ = 90° − lat, azimuthal angle
// θ = lng + 180°, x = −r·sinφ·cosθ, y = r·cosφ, z = r·sinφ·sinθ.
// Inputs outside the domain are rejected, never wrapped.
func Project(lat, lng, radius float64) (Vec3, error) {
	if err := (Location{Lat: lat, Lng: lng}).Validate(); err != nil {
		return Vec3{}, err
	}
	if math.IsNaN(radius) || math.IsInf(radius, 0) || radius < 0 {
		return Vec3{}, &OutOfRangeError{Field: "radius", Value: radius, Min: 0, Max: math.Inf(1)}
	}

	// Both poles collapse to a single point; sin(π) is not exactly zero in
	// floating point so snap instead of trusting the trig.
	if lat == 90 {
		return Vec3{Y: radius}, nil
	}
	if lat == -90 {
		return Vec3{Y: -radius}, nil
	}

	phi := DegToRad(90 - lat)
	theta := DegToRad(lng + 180)

	return Vec3{
		X: -radius * math.Sin(phi) * math.Cos(theta),
		Y: radius * math.Cos(phi),
		Z: radius * math.Sin(phi) * math.Sin(theta),
	}, nil
}

// ProjectLocation is Project for a Location.
func ProjectLocation(l Location, radius float64) (Vec3, error) {
	return Project(l.Lat, l.Lng, radius)
}

func checkRange(field string, v, lo, hi float64) error {
	if math.IsNaN(v) || v < lo || v > hi {
		return &OutOfRangeError{Field: field, Value: v, Min: lo, Max: hi}
	}
	return nil
}
