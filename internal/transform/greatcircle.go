package transform

import (
	"fmt"
	"math"
)

// Degeneracy thresholds for great-circle interpolation, in radians.
// Below coincidentEps the endpoints are treated as the same point; within
// antipodalEps of π the shorter arc is not unique.
const (
	coincidentEps = 1e-10
	antipodalEps  = 1e-10
)

// AmbiguousPathError reports antipodal endpoints. Every great circle through
// two antipodal points has the same length, so there is no single shorter
// arc to interpolate along.
type AmbiguousPathError struct {
	Origin      GeoPoint
	Destination GeoPoint
}

func (e *AmbiguousPathError) Error() string {
	return fmt.Sprintf("antipodal endpoints (%.4f, %.4f) and (%.4f, %.4f) have no unique great-circle arc",
		e.Origin.Lat, e.Origin.Lon, e.Destination.Lat, e.Destination.Lon)
}

// AngularDistance returns the central angle between two geographic points in
// radians, computed with the haversine formula. Result is in [0, π].
// Altitude does not participate; the angle is measured on the sphere surface.
func AngularDistance(a, b GeoPoint) float64 {
	lat1 := a.Lat * math.Pi / 180.0
	lat2 := b.Lat * math.Pi / 180.0
	dLat := (b.Lat - a.Lat) * math.Pi / 180.0
	dLon := (b.Lon - a.Lon) * math.Pi / 180.0

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	if h > 1 {
		h = 1 // float drift can push h just past 1 for near-antipodal pairs
	}

	return 2 * math.Asin(math.Sqrt(h))
}

// Interpolate returns steps+1 geographic points along the shorter
// great-circle arc from a to b, evenly spaced in central angle:
// index 0 is exactly a, index steps is exactly b, and intermediate points
// follow the spherical linear interpolation
//
//	P(t) = (sin((1-t)Δ)/sin Δ)·A + (sin(tΔ)/sin Δ)·B
//
// on the unit-vector forms of the endpoints. Altitude is interpolated
// linearly between a.Alt and b.Alt.
//
// Coincident endpoints (Δ below coincidentEps) yield steps+1 copies of a.
// Antipodal endpoints fail with an *AmbiguousPathError rather than silently
// picking one of the infinitely many arcs.
func Interpolate(a, b GeoPoint, steps int) ([]GeoPoint, error) {
	if steps < 1 {
		return nil, fmt.Errorf("interpolation steps must be >= 1, got %d", steps)
	}
	if err := CheckGeoPoint(a); err != nil {
		return nil, err
	}
	if err := CheckGeoPoint(b); err != nil {
		return nil, err
	}

	pts := make([]GeoPoint, steps+1)

	delta := AngularDistance(a, b)
	if delta < coincidentEps {
		for i := range pts {
			pts[i] = a
		}
		return pts, nil
	}
	if math.Abs(delta-math.Pi) < antipodalEps {
		return nil, &AmbiguousPathError{Origin: a, Destination: b}
	}

	lat1 := a.Lat * math.Pi / 180.0
	lon1 := a.Lon * math.Pi / 180.0
	lat2 := b.Lat * math.Pi / 180.0
	lon2 := b.Lon * math.Pi / 180.0

	// Unit vectors for the endpoints.
	x1 := math.Cos(lat1) * math.Cos(lon1)
	y1 := math.Cos(lat1) * math.Sin(lon1)
	z1 := math.Sin(lat1)
	x2 := math.Cos(lat2) * math.Cos(lon2)
	y2 := math.Cos(lat2) * math.Sin(lon2)
	z2 := math.Sin(lat2)

	sinDelta := math.Sin(delta)

	pts[0] = a
	pts[steps] = b
	for i := 1; i < steps; i++ {
		t := float64(i) / float64(steps)
		fa := math.Sin((1-t)*delta) / sinDelta
		fb := math.Sin(t*delta) / sinDelta

		x := fa*x1 + fb*x2
		y := fa*y1 + fb*y2
		z := fa*z1 + fb*z2

		pts[i] = GeoPoint{
			Lat: math.Atan2(z, math.Hypot(x, y)) * 180.0 / math.Pi,
			Lon: math.Atan2(y, x) * 180.0 / math.Pi,
			Alt: a.Alt + t*(b.Alt-a.Alt),
		}
	}

	return pts, nil
}
