package anim

import (
	"sync"

	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/metrics"
	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/track"
)

// Replayer provides concurrent random access to the frame sequence. It
// owns a private Accumulator and memoizes each frame the first time it is
// computed, so many readers (stream clients, frame lookups) share one
// replay instead of each running the animation from the start.
//
// Frames are addressed by their zero-based position in the emitted
// sequence: frame k is the state after k+1 ticks. Once the animation
// reaches Done the remaining frames share the frozen content, so the memo
// stops growing at that point regardless of the total frame count.
type Replayer struct {
	mu     sync.RWMutex
	acc    *Accumulator
	frames []Frame
	doneAt int // memo position where Done was reached, -1 until known
	total  int
}

// NewReplayer creates a replayer over the tracks, bounded to totalFrames
// emitted frames.
func NewReplayer(tracks []*track.PathTrack, cfg Config, totalFrames int) *Replayer {
	if totalFrames < 0 {
		totalFrames = 0
	}
	return &Replayer{
		acc:    New(tracks, cfg),
		doneAt: -1,
		total:  totalFrames,
	}
}

// Total reports the number of frames the replayer serves.
func (r *Replayer) Total() int {
	return r.total
}

// Get returns frame k. Out-of-range indexes report ok=false.
func (r *Replayer) Get(k int) (Frame, bool) {
	if k < 0 || k >= r.total {
		return Frame{}, false
	}

	r.mu.RLock()
	if k < len(r.frames) {
		f := r.frames[k]
		r.mu.RUnlock()
		return f, true
	}
	if r.doneAt >= 0 {
		f := r.frames[r.doneAt]
		r.mu.RUnlock()
		f.Index = k + 1
		return f, true
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	for len(r.frames) <= k && r.doneAt < 0 {
		r.acc.Advance()
		metrics.IncAdvanceTicks()
		f := r.acc.CurrentFrame()
		metrics.IncFramesComputed()
		r.frames = append(r.frames, f)
		if r.acc.Phase() == Done {
			r.doneAt = len(r.frames) - 1
		}
	}

	if k < len(r.frames) {
		return r.frames[k], true
	}
	f := r.frames[r.doneAt]
	f.Index = k + 1
	return f, true
}
