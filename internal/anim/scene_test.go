package anim

import (
	"fmt"
	"testing"
	"time"

	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/flights"
	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/track"
)

func sceneTracks(t *testing.T, n, duration int) []*track.PathTrack {
	t.Helper()
	cfg := track.Config{Steps: 4, DurationFrames: duration}
	tracks := make([]*track.PathTrack, 0, n)
	for i := 0; i < n; i++ {
		rec := flights.Record{
			ID:     fmt.Sprintf("f%03d", i),
			Seq:    i,
			Source: flights.Endpoint{Lat: float64(10 * i), Lng: float64(20 * i), City: "A"},
			Target: flights.Endpoint{Lat: float64(10*i + 5), Lng: float64(20*i + 30), City: "B"},
			Color:  "#FF6B6B",
		}
		tr, err := track.Build(rec, cfg)
		if err != nil {
			t.Fatalf("build %s: %v", rec.ID, err)
		}
		tracks = append(tracks, tr)
	}
	return tracks
}

func TestNewScene_WiresScheduleAndReplayer(t *testing.T) {
	set := &flights.FlightSet{Source: "test", FetchedAt: time.Now()}
	sc := NewScene(set, sceneTracks(t, 3, 5), 60)

	if sc.Schedule.TotalFrames != 60 {
		t.Errorf("schedule total = %d, want 60", sc.Schedule.TotalFrames)
	}
	if sc.Frames.Total() != sc.Schedule.TotalFrames {
		t.Errorf("replayer total = %d, want schedule total %d", sc.Frames.Total(), sc.Schedule.TotalFrames)
	}
	if len(sc.Schedule.Windows) != 3 {
		t.Errorf("schedule holds %d windows, want 3", len(sc.Schedule.Windows))
	}

	if _, ok := sc.Track("f001"); !ok {
		t.Error("track lookup by id failed")
	}
	if _, ok := sc.Track("missing"); ok {
		t.Error("lookup of unknown id reported ok")
	}
}

// Reveal windows larger than the requested frame count stretch the scene
// instead of truncating the last paths.
func TestNewScene_StretchesShortTotal(t *testing.T) {
	sc := NewScene(&flights.FlightSet{}, sceneTracks(t, 3, 10), 12)

	if want := 30; sc.Schedule.TotalFrames != want {
		t.Fatalf("schedule total = %d, want %d", sc.Schedule.TotalFrames, want)
	}
	if sc.Frames.Total() != 30 {
		t.Errorf("replayer total = %d, want 30", sc.Frames.Total())
	}

	last, ok := sc.Frames.Get(29)
	if !ok {
		t.Fatal("last frame out of range")
	}
	if !last.Ending {
		t.Error("final frame not marked ending")
	}
}
