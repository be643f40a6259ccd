// Package anim drives the frame-accumulation state machine: paths reveal
// one after another along the frame clock, and once a path has fully
// revealed it is committed to the completed set and stays on the globe in
// every later frame.
//
// An Accumulator is owned by exactly one driver and does no locking. To
// share frames across goroutines, take CurrentFrame or Snapshot values;
// never hand the live Accumulator around. Replayer wraps one behind a
// read-write lock for the concurrent random-access case.
package anim

import (
	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/track"
)

// Config holds animation parameters.
type Config struct {
	// DefaultDurationFrames is the reveal window for tracks that carry no
	// duration of their own (default 1).
	DefaultDurationFrames int
}

func (c Config) withDefaults() Config {
	if c.DefaultDurationFrames < 1 {
		c.DefaultDurationFrames = 1
	}
	return c
}

// Accumulator steps the animation one tick at a time over an immutable
// track list. The zero ticks position is Idle with nothing revealed; an
// empty track list starts Done, which is an empty animation, not an error.
type Accumulator struct {
	tracks []*track.PathTrack
	cfg    Config
	state  State
}

// New creates an accumulator over the given tracks. The track slice and
// the track buffers must not be mutated afterwards; frames alias them.
func New(tracks []*track.PathTrack, cfg Config) *Accumulator {
	a := &Accumulator{tracks: tracks, cfg: cfg.withDefaults()}
	a.Reset()
	return a
}

// Reset rewinds to the initial state.
func (a *Accumulator) Reset() {
	a.state = State{Completed: make(map[string]bool)}
	if len(a.tracks) == 0 {
		a.state.Phase = Done
	}
}

// Phase reports the current phase.
func (a *Accumulator) Phase() Phase {
	return a.state.Phase
}

// FrameIndex reports how many ticks have happened.
func (a *Accumulator) FrameIndex() int {
	return a.state.FrameIndex
}

// Snapshot returns a copy of the state, safe to keep or hand to another
// goroutine.
func (a *Accumulator) Snapshot() State {
	return a.state.clone()
}

// duration returns the reveal window of the given track.
func (a *Accumulator) duration(t *track.PathTrack) int {
	if t.DurationFrames >= 1 {
		return t.DurationFrames
	}
	return a.cfg.DefaultDurationFrames
}

// Advance moves the animation forward one tick.
//
// The active path's visible prefix grows to floor(len(points) * k / d)
// where k counts ticks spent on the path and d is its reveal window, so
// the reveal lands exactly on the last point at tick d. When the prefix
// reaches full length the path's ID is committed to the completed set
// first, and only then do the active index and progress counters move on.
// Committing before the counters reset is what keeps a finished path on
// the globe once the next one starts drawing over the same counters.
//
// Advance never fails. Ticking past Done only increments the frame index.
func (a *Accumulator) Advance() {
	s := &a.state
	if s.Phase == Done {
		s.FrameIndex++
		return
	}

	tr := a.tracks[s.ActivePath]
	d := a.duration(tr)
	n := len(tr.Points)

	s.ActiveTicks++
	target := n * s.ActiveTicks / d
	if target > n {
		target = n
	}
	if target > s.ActiveProgress {
		s.ActiveProgress = target
	}
	s.Phase = Revealing

	if s.ActiveProgress == n {
		s.Completed[tr.ID] = true
		if s.ActivePath+1 < len(a.tracks) {
			s.ActivePath++
			s.ActiveProgress = 0
			s.ActiveTicks = 0
			s.Phase = PathComplete
		} else {
			s.ActivePath = len(a.tracks)
			s.Phase = Done
		}
	}

	s.FrameIndex++
}

// Seek rewinds and replays to the given frame index. Replay is bounded:
// once the animation reaches Done the remaining distance is covered by
// moving the frame clock directly, since content no longer changes.
func (a *Accumulator) Seek(frame int) {
	if frame < 0 {
		frame = 0
	}
	a.Reset()
	for a.state.FrameIndex < frame && a.state.Phase != Done {
		a.Advance()
	}
	a.state.FrameIndex = frame
}
