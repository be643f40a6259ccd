// Package flights loads and holds the journey list that drives the
// animation: origin/destination city pairs with a travel date and a vehicle
// kind, read from a JSON file or URL.
package flights

import (
	"fmt"
	"time"
)

// Endpoint is one end of a journey.
type Endpoint struct {
	Lat  float64
	Lng  float64
	City string
}

// Record is a single validated journey. Records are ordered by travel date
// within a FlightSet; Seq is the position after sorting and Color the
// palette color assigned from it unless the file supplied one.
// DurationFrames is 0 unless the file overrides the animation plan's
// per-path reveal window.
type Record struct {
	ID             string
	Seq            int
	Source         Endpoint
	Target         Endpoint
	Date           time.Time
	Vehicle        string
	Color          string
	DurationFrames int
}

// Label returns a human-readable name for the journey.
func (r Record) Label() string {
	return fmt.Sprintf("%s to %s", r.Source.City, r.Target.City)
}

// FlightSet is a complete parsed flight list from one source.
type FlightSet struct {
	Source    string
	FetchedAt time.Time
	Records   []Record
}

// InvalidFlightRecordError reports a flight entry that cannot be used:
// either malformed in the input file or geometrically unusable when the
// path is built. Err carries the underlying cause when there is one.
type InvalidFlightRecordError struct {
	Index    int
	FlightID string
	Field    string
	Reason   string
	Err      error
}

func (e *InvalidFlightRecordError) Error() string {
	id := e.FlightID
	if id == "" {
		id = fmt.Sprintf("#%d", e.Index)
	}
	if e.Field != "" {
		return fmt.Sprintf("flight %s: field %q: %s", id, e.Field, e.Reason)
	}
	return fmt.Sprintf("flight %s: %s", id, e.Reason)
}

func (e *InvalidFlightRecordError) Unwrap() error {
	return e.Err
}

// EmptyFlightListError reports a source that yielded no usable flights.
// Whether that is fatal is the caller's call; an animation over zero paths
// is itself well defined.
type EmptyFlightListError struct {
	Source string
}

func (e *EmptyFlightListError) Error() string {
	return fmt.Sprintf("flight list %q contains no usable flights", e.Source)
}
