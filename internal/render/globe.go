package render

import (
	"math"

	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/transform"
)

// camera is a fixed orthographic view of the globe: the point at
// (viewLat, viewLon) faces the viewer.
type camera struct {
	sinLon, cosLon float64
	sinLat, cosLat float64
}

func newCamera(viewLon, viewLat float64) camera {
	lon := viewLon * math.Pi / 180
	lat := viewLat * math.Pi / 180
	return camera{
		sinLon: math.Sin(lon), cosLon: math.Cos(lon),
		sinLat: math.Sin(lat), cosLat: math.Cos(lat),
	}
}

// view rotates a sphere point into camera space. u runs right across the
// screen, v up, and depth toward the viewer; depth > 0 is the front
// hemisphere.
func (c camera) view(p transform.Point3D, invRadius float64) (u, v, depth float64) {
	x := p.X * invRadius
	y := p.Y * invRadius
	z := p.Z * invRadius

	// Spin the view meridian onto the x axis, then tilt the view latitude
	// onto the equator.
	x1 := x*c.cosLon + y*c.sinLon
	y1 := -x*c.sinLon + y*c.cosLon

	depth = x1*c.cosLat + z*c.sinLat
	u = y1
	v = -x1*c.sinLat + z*c.cosLat
	return u, v, depth
}

// graticule returns the grid polylines drawn on the globe: parallels every
// 30 degrees between ±60 and meridians every 30 degrees, each sampled
// densely enough to curve smoothly.
func graticule() [][]transform.GeoPoint {
	var lines [][]transform.GeoPoint

	for lat := -60.0; lat <= 60; lat += 30 {
		var line []transform.GeoPoint
		for lon := -180.0; lon <= 180; lon += 5 {
			line = append(line, transform.GeoPoint{Lat: lat, Lon: lon})
		}
		lines = append(lines, line)
	}

	for lon := -180.0; lon < 180; lon += 30 {
		var line []transform.GeoPoint
		for lat := -85.0; lat <= 85; lat += 5 {
			line = append(line, transform.GeoPoint{Lat: lat, Lon: lon})
		}
		lines = append(lines, line)
	}

	return lines
}
