package track

import (
	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/flights"
	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/transform"
)

// Build constructs the path track for a single flight record: validates
// both endpoints, interpolates the great-circle arc, and projects every
// point onto the globe.
//
// A record whose origin equals its destination is legal. The track
// degenerates to a stationary point that still occupies its reveal window.
// Antipodal endpoints fail: there is no single great circle to draw.
// Failures come back as *flights.InvalidFlightRecordError wrapping the
// underlying transform error.
func Build(rec flights.Record, cfg Config) (*PathTrack, error) {
	cfg = cfg.withDefaults()

	origin := transform.GeoPoint{Lat: rec.Source.Lat, Lon: rec.Source.Lng}
	dest := transform.GeoPoint{Lat: rec.Target.Lat, Lon: rec.Target.Lng}

	if err := transform.CheckGeoPoint(origin); err != nil {
		return nil, &flights.InvalidFlightRecordError{
			Index:    rec.Seq,
			FlightID: rec.ID,
			Field:    "source",
			Reason:   "coordinates out of range",
			Err:      err,
		}
	}
	if err := transform.CheckGeoPoint(dest); err != nil {
		return nil, &flights.InvalidFlightRecordError{
			Index:    rec.Seq,
			FlightID: rec.ID,
			Field:    "target",
			Reason:   "coordinates out of range",
			Err:      err,
		}
	}

	geo, err := transform.Interpolate(origin, dest, cfg.Steps)
	if err != nil {
		return nil, &flights.InvalidFlightRecordError{
			Index:    rec.Seq,
			FlightID: rec.ID,
			Reason:   "no drawable great-circle path",
			Err:      err,
		}
	}

	points := make([]transform.Point3D, len(geo))
	for i, g := range geo {
		points[i] = transform.Project(g, cfg.Radius)
	}

	duration := cfg.DurationFrames
	if rec.DurationFrames > 0 {
		duration = rec.DurationFrames
	}

	return &PathTrack{
		ID:             rec.ID,
		SeqNum:         rec.Seq,
		Origin:         origin,
		Destination:    dest,
		OriginName:     rec.Source.City,
		DestName:       rec.Target.City,
		Geo:            geo,
		Points:         points,
		Color:          rec.Color,
		Vehicle:        rec.Vehicle,
		Date:           rec.Date,
		DurationFrames: duration,
	}, nil
}
