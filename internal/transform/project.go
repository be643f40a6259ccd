// Package transform provides the coordinate math for flight-path geometry:
// projecting geographic positions onto a reference sphere and interpolating
// great-circle arcs between them.
//
// The projection is the standard spherical-to-Cartesian transform with
// longitude as azimuth and latitude as elevation from the equatorial plane.
// Orientation is fixed once: (0°, 0°) maps to (+radius, 0, 0), longitude
// +90° to +Y, and the north pole to +Z. The sphere is abstract: radius is
// whatever unit the caller renders in, not meters on an ellipsoid.
//
// Reference: Williams, "Aviation Formulary", intermediate points on a
// great circle.
package transform

import (
	"fmt"
	"math"
)

// GeoPoint is a geographic position. Latitude and longitude are in degrees;
// altitude is in the same unit as the projection radius and lifts the point
// off the sphere surface (0 = on the sphere).
type GeoPoint struct {
	Lat float64
	Lon float64
	Alt float64
}

// Point3D is a Cartesian position derived from a GeoPoint and a sphere radius.
type Point3D struct {
	X, Y, Z float64
}

// InvalidGeoPointError reports a coordinate outside the geographic domain.
type InvalidGeoPointError struct {
	Lat, Lon, Alt float64
	Reason        string
}

func (e *InvalidGeoPointError) Error() string {
	return fmt.Sprintf("invalid geographic point (lat=%.4f lon=%.4f alt=%.2f): %s",
		e.Lat, e.Lon, e.Alt, e.Reason)
}

// CheckGeoPoint verifies that p is a usable geographic position: latitude in
// [-90, 90], longitude in [-180, 180], altitude >= 0, all values finite.
// Returns an *InvalidGeoPointError describing the first violation found.
func CheckGeoPoint(p GeoPoint) error {
	bad := func(reason string) error {
		return &InvalidGeoPointError{Lat: p.Lat, Lon: p.Lon, Alt: p.Alt, Reason: reason}
	}

	if math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) ||
		math.IsNaN(p.Lon) || math.IsInf(p.Lon, 0) ||
		math.IsNaN(p.Alt) || math.IsInf(p.Alt, 0) {
		return bad("coordinate is NaN or infinite")
	}
	if p.Lat < -90 || p.Lat > 90 {
		return bad("latitude outside [-90, 90]")
	}
	if p.Lon < -180 || p.Lon > 180 {
		return bad("longitude outside [-180, 180]")
	}
	if p.Alt < 0 {
		return bad("negative altitude")
	}
	return nil
}

// Project converts a geographic point to Cartesian coordinates on a sphere
// of the given radius. Altitude adds to the radius. Deterministic and pure;
// out-of-range input is the caller's problem (see CheckGeoPoint).
//
// Both poles collapse to a single point regardless of longitude. That is the
// geometry, not an error.
func Project(p GeoPoint, radius float64) Point3D {
	lat := p.Lat * math.Pi / 180.0
	lon := p.Lon * math.Pi / 180.0
	r := radius + p.Alt

	cosLat := math.Cos(lat)
	return Point3D{
		X: r * cosLat * math.Cos(lon),
		Y: r * cosLat * math.Sin(lon),
		Z: r * math.Sin(lat),
	}
}

// Unproject recovers the geographic point for a Cartesian position produced
// by Project with the same radius. Altitude comes back as the distance above
// the sphere. At the poles longitude degenerates and is reported as 0.
func Unproject(pt Point3D, radius float64) GeoPoint {
	r := math.Sqrt(pt.X*pt.X + pt.Y*pt.Y + pt.Z*pt.Z)
	if r == 0 {
		return GeoPoint{Alt: -radius}
	}

	lat := math.Atan2(pt.Z, math.Hypot(pt.X, pt.Y)) * 180.0 / math.Pi
	lon := math.Atan2(pt.Y, pt.X) * 180.0 / math.Pi
	return GeoPoint{Lat: lat, Lon: lon, Alt: r - radius}
}

// ValidatePoint3D checks that a projected point is finite and lies on or
// above the sphere of the given radius, within a small relative tolerance.
// Returns true if valid.
func ValidatePoint3D(pt Point3D, radius float64) bool {
	if math.IsNaN(pt.X) || math.IsNaN(pt.Y) || math.IsNaN(pt.Z) {
		return false
	}
	if math.IsInf(pt.X, 0) || math.IsInf(pt.Y, 0) || math.IsInf(pt.Z, 0) {
		return false
	}

	mag := math.Sqrt(pt.X*pt.X + pt.Y*pt.Y + pt.Z*pt.Z)
	return mag >= radius*(1.0-1e-9)
}
