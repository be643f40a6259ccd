package flights

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"time"
)

// dateLayout is the travel date form used by the flight list file.
const dateLayout = "2006-01-02"

// Wire shapes for the flight list file. Coordinate fields are pointers so a
// missing field can be told apart from a legitimate zero.
type endpointJSON struct {
	Lat  *float64 `json:"lat"`
	Lng  *float64 `json:"lng"`
	City string   `json:"city"`
}

type recordJSON struct {
	Source         *endpointJSON `json:"source"`
	Target         *endpointJSON `json:"target"`
	Date           string        `json:"date"`
	Vehicle        string        `json:"vehicle"`
	Color          string        `json:"color"`
	DurationFrames *int          `json:"duration_frames"`
}

// Parse reads a JSON flight list from r and returns the validated set,
// ordered by travel date (stable, so same-day flights keep file order).
// Malformed records are skipped with a warning and collected in the second
// return value; one bad entry never sinks its siblings. A list with no
// usable flights fails with *EmptyFlightListError.
func Parse(r io.Reader, source string, logger *slog.Logger) (*FlightSet, []*InvalidFlightRecordError, error) {
	var raw []recordJSON
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, nil, fmt.Errorf("decoding flight list %s: %w", source, err)
	}

	var (
		recs     []Record
		rejected []*InvalidFlightRecordError
	)
	for i, rj := range raw {
		rec, recErr := convertRecord(i, rj)
		if recErr != nil {
			rejected = append(rejected, recErr)
			logger.Warn("skipping malformed flight record", "index", i, "reason", recErr.Reason, "field", recErr.Field)
			continue
		}
		recs = append(recs, rec)
	}

	if len(recs) == 0 {
		return nil, rejected, &EmptyFlightListError{Source: source}
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Date.Before(recs[j].Date)
	})
	for i := range recs {
		recs[i].Seq = i
		recs[i].ID = fmt.Sprintf("f%03d", i)
		if recs[i].Color == "" {
			recs[i].Color = PaletteColor(i)
		}
	}

	return &FlightSet{
		Source:    source,
		FetchedAt: time.Now().UTC(),
		Records:   recs,
	}, rejected, nil
}

// ParseFile reads and parses the flight list at path.
func ParseFile(path string, logger *slog.Logger) (*FlightSet, []*InvalidFlightRecordError, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening flight list: %w", err)
	}
	defer f.Close()
	return Parse(f, path, logger)
}

func convertRecord(index int, rj recordJSON) (Record, *InvalidFlightRecordError) {
	bad := func(field, reason string) *InvalidFlightRecordError {
		return &InvalidFlightRecordError{Index: index, Field: field, Reason: reason}
	}

	if rj.Source == nil {
		return Record{}, bad("source", "missing")
	}
	if rj.Target == nil {
		return Record{}, bad("target", "missing")
	}
	if rj.Source.Lat == nil || rj.Source.Lng == nil {
		return Record{}, bad("source", "missing lat/lng")
	}
	if rj.Target.Lat == nil || rj.Target.Lng == nil {
		return Record{}, bad("target", "missing lat/lng")
	}
	if rj.Date == "" {
		return Record{}, bad("date", "missing")
	}

	date, err := time.Parse(dateLayout, rj.Date)
	if err != nil {
		recErr := bad("date", fmt.Sprintf("%q is not a %s date", rj.Date, dateLayout))
		recErr.Err = err
		return Record{}, recErr
	}

	var duration int
	if rj.DurationFrames != nil {
		if *rj.DurationFrames < 1 {
			return Record{}, bad("duration_frames", "must be >= 1")
		}
		duration = *rj.DurationFrames
	}

	return Record{
		Source:         Endpoint{Lat: *rj.Source.Lat, Lng: *rj.Source.Lng, City: rj.Source.City},
		Target:         Endpoint{Lat: *rj.Target.Lat, Lng: *rj.Target.Lng, City: rj.Target.City},
		Date:           date,
		Vehicle:        rj.Vehicle,
		Color:          rj.Color,
		DurationFrames: duration,
	}, nil
}
