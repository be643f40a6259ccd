// Package timeline lays the animation out over the frame clock: which path
// track reveals during which frame window, and how long the whole run is.
package timeline

import (
	"sort"

	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/track"
)

// Window is the frame range during which one track is revealing.
// Half-open: the track owns frames [StartFrame, EndFrame).
type Window struct {
	TrackID    string `json:"track_id"`
	SeqNum     int    `json:"seq_num"`
	Label      string `json:"label"`
	StartFrame int    `json:"start_frame"`
	EndFrame   int    `json:"end_frame"`
}

// Schedule is the complete reveal plan. Windows are consecutive and
// gap-free, in track order, starting at frame 0. TotalFrames covers the
// windows plus any static tail where the finished globe holds on screen.
type Schedule struct {
	Windows     []Window `json:"windows"`
	TotalFrames int      `json:"total_frames"`
}

// Plan returns the reveal window length for n paths sharing a total frame
// budget: an equal split, never less than one frame per path.
func Plan(n, totalFrames int) int {
	if n < 1 {
		return 0
	}
	per := totalFrames / n
	if per < 1 {
		per = 1
	}
	return per
}

// NewSchedule builds the reveal plan from the tracks' own durations. When
// the windows outrun totalFrames the schedule stretches to fit them; when
// they fall short the difference becomes the static tail.
func NewSchedule(tracks []*track.PathTrack, totalFrames int) Schedule {
	windows := make([]Window, 0, len(tracks))
	start := 0
	for _, t := range tracks {
		d := t.DurationFrames
		if d < 1 {
			d = 1
		}
		windows = append(windows, Window{
			TrackID:    t.ID,
			SeqNum:     t.SeqNum,
			Label:      t.Label(),
			StartFrame: start,
			EndFrame:   start + d,
		})
		start += d
	}

	if totalFrames < start {
		totalFrames = start
	}
	return Schedule{Windows: windows, TotalFrames: totalFrames}
}

// At returns the window that owns the given frame. Frames past the last
// window (the static tail, or anything beyond the run) report no window.
func (s Schedule) At(frame int) (Window, bool) {
	if frame < 0 || len(s.Windows) == 0 {
		return Window{}, false
	}
	last := s.Windows[len(s.Windows)-1]
	if frame >= last.EndFrame {
		return Window{}, false
	}

	i := sort.Search(len(s.Windows), func(i int) bool {
		return s.Windows[i].EndFrame > frame
	})
	w := s.Windows[i]
	if frame < w.StartFrame {
		return Window{}, false
	}
	return w, true
}

// RevealFrames reports how many frames the reveal phase itself occupies,
// before any static tail.
func (s Schedule) RevealFrames() int {
	if len(s.Windows) == 0 {
		return 0
	}
	return s.Windows[len(s.Windows)-1].EndFrame
}
