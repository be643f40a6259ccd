package anim

import (
	"time"

	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/flights"
	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/timeline"
	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/track"
)

// Scene is one complete build of the animation: the flight set it came
// from, the tracks built from it, the reveal schedule, and a shared
// replayer over the resulting frame sequence. A Scene never changes once
// built; a reload builds a fresh Scene and swaps the pointer, so readers
// that started on the old one keep a consistent view until they finish.
type Scene struct {
	Set      *flights.FlightSet
	Tracks   []*track.PathTrack
	Schedule timeline.Schedule
	Frames   *Replayer
	BuiltAt  time.Time

	byID map[string]*track.PathTrack
}

// NewScene assembles a scene from built tracks. totalFrames bounds the
// replayable sequence; the schedule stretches it when the per-path reveal
// windows need more room.
func NewScene(set *flights.FlightSet, tracks []*track.PathTrack, totalFrames int) *Scene {
	sched := timeline.NewSchedule(tracks, totalFrames)
	byID := make(map[string]*track.PathTrack, len(tracks))
	for _, tr := range tracks {
		byID[tr.ID] = tr
	}
	return &Scene{
		Set:      set,
		Tracks:   tracks,
		Schedule: sched,
		Frames:   NewReplayer(tracks, Config{}, sched.TotalFrames),
		BuiltAt:  time.Now(),
		byID:     byID,
	}
}

// Track returns the track with the given ID.
func (s *Scene) Track(id string) (*track.PathTrack, bool) {
	tr, ok := s.byID[id]
	return tr, ok
}
