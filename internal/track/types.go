// Package track turns validated flight records into animation-ready path
// tracks: the great-circle polyline between the endpoints, interpolated at a
// fixed step count and projected onto the globe sphere.
package track

import (
	"fmt"
	"runtime"
	"time"

	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/transform"
)

const (
	// DefaultSteps is the interpolation step count per path, giving
	// DefaultSteps+1 points from origin to destination.
	DefaultSteps = 50

	// DefaultRadius is the unit globe radius paths are projected onto.
	DefaultRadius = 1.0
)

// PathTrack is one flight's fully built path. Geo holds the interpolated
// geographic polyline, Points its projection onto the sphere; both have
// Steps+1 entries with index 0 the origin and the last index the
// destination. Immutable after build: frames alias these slices and must
// never write to them.
type PathTrack struct {
	ID             string
	SeqNum         int
	Origin         transform.GeoPoint
	Destination    transform.GeoPoint
	OriginName     string
	DestName       string
	Geo            []transform.GeoPoint
	Points         []transform.Point3D
	Color          string
	Vehicle        string
	Date           time.Time
	DurationFrames int
}

// Label returns a human-readable name for the track's journey.
func (t *PathTrack) Label() string {
	return fmt.Sprintf("%s to %s", t.OriginName, t.DestName)
}

// Config holds path building parameters.
type Config struct {
	Steps          int     // interpolation steps per path (default DefaultSteps)
	Radius         float64 // globe radius (default DefaultRadius)
	DurationFrames int     // reveal window per track, unless the record overrides it
	Workers        int     // batch build pool size (default runtime.NumCPU())
}

func (c Config) withDefaults() Config {
	if c.Steps < 1 {
		c.Steps = DefaultSteps
	}
	if c.Radius <= 0 {
		c.Radius = DefaultRadius
	}
	if c.DurationFrames < 1 {
		c.DurationFrames = 1
	}
	if c.Workers < 1 {
		c.Workers = runtime.NumCPU()
	}
	return c
}

// BuildError ties one failed build back to its input record.
type BuildError struct {
	Index    int
	FlightID string
	Err      error
}

func (e BuildError) Error() string {
	return fmt.Sprintf("build track for flight %s (index %d): %v", e.FlightID, e.Index, e.Err)
}

func (e BuildError) Unwrap() error {
	return e.Err
}

// BuildResult is the outcome of a batch build. Tracks keeps the input
// record order; Failed lists the records that could not be built, ordered
// by input index.
type BuildResult struct {
	Tracks []*PathTrack
	Failed []BuildError
}
