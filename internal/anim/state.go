package anim

// Phase is where the animation currently stands.
type Phase int

const (
	// Idle means no ticks have happened yet; nothing is revealed.
	Idle Phase = iota
	// Revealing means the active path is part-way through its reveal.
	Revealing
	// PathComplete marks the tick on which a path just finished: its ID is
	// already committed and the successor is active with zero progress.
	PathComplete
	// Done means every path is committed. Further ticks only move the
	// frame clock; frame content is frozen.
	Done
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Revealing:
		return "revealing"
	case PathComplete:
		return "path_complete"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// State is the full animation position. It is a small value: copying it
// (with the Completed set cloned) captures everything needed to reproduce
// the current frame, which is what makes replay and scrubbing cheap.
//
// Completed is the committed-path set. It only ever grows, and a path's
// geometry is drawn from it, never from the progress counters of a path
// that has since moved on.
type State struct {
	Phase          Phase
	FrameIndex     int
	ActivePath     int // index into the track list; len(tracks) once done
	ActiveProgress int // visible points of the active path
	ActiveTicks    int // ticks spent on the active path so far
	Completed      map[string]bool
}

// clone returns a deep copy safe to hand across goroutine boundaries.
func (s State) clone() State {
	c := s
	c.Completed = make(map[string]bool, len(s.Completed))
	for id := range s.Completed {
		c.Completed[id] = true
	}
	return c
}
