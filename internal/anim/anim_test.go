package anim

import (
	"fmt"
	"testing"

	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/flights"
	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/track"
	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/transform"
)

// mkTrack builds a track by hand with npts distinct points.
func mkTrack(id string, seq, npts, duration int) *track.PathTrack {
	geo := make([]transform.GeoPoint, npts)
	pts := make([]transform.Point3D, npts)
	for i := range geo {
		geo[i] = transform.GeoPoint{Lat: 10, Lon: float64(i)}
		pts[i] = transform.Project(geo[i], 1.0)
	}
	return &track.PathTrack{
		ID:             id,
		SeqNum:         seq,
		OriginName:     "Origin " + id,
		DestName:       "Dest " + id,
		Geo:            geo,
		Points:         pts,
		Color:          "#FF6B6B",
		Vehicle:        "plane",
		DurationFrames: duration,
	}
}

// visibleSet maps each path ID in a frame to its visible prefix length.
func visibleSet(f Frame) map[string]int {
	vs := make(map[string]int, len(f.Paths))
	for _, p := range f.Paths {
		vs[p.ID] = len(p.Points)
	}
	return vs
}

func TestAdvance_MonotonicAccumulation(t *testing.T) {
	tracks := []*track.PathTrack{
		mkTrack("f000", 0, 5, 4),
		mkTrack("f001", 1, 9, 3),
		mkTrack("f002", 2, 3, 7),
	}
	a := New(tracks, Config{})

	prev := visibleSet(a.CurrentFrame())
	for tick := 1; tick <= 20; tick++ {
		a.Advance()
		cur := visibleSet(a.CurrentFrame())

		for id, n := range prev {
			if cur[id] < n {
				t.Fatalf("tick %d: path %s shrank from %d to %d visible points",
					tick, id, n, cur[id])
			}
		}
		prev = cur
	}
}

func TestAdvance_PathCompletionCommit(t *testing.T) {
	a := New([]*track.PathTrack{
		mkTrack("f000", 0, 5, 4),
		mkTrack("f001", 1, 5, 4),
	}, Config{})

	for i := 0; i < 4; i++ {
		a.Advance()
	}

	s := a.Snapshot()
	if !s.Completed["f000"] {
		t.Error("first path not committed after its reveal window")
	}
	if s.ActivePath != 1 {
		t.Errorf("active path index = %d, want 1", s.ActivePath)
	}
	if s.ActiveProgress != 0 || s.ActiveTicks != 0 {
		t.Errorf("successor counters not reset: progress %d, ticks %d",
			s.ActiveProgress, s.ActiveTicks)
	}
	if s.Phase != PathComplete {
		t.Errorf("phase = %v, want %v", s.Phase, PathComplete)
	}

	// Last path: committing transitions to Done instead.
	for i := 0; i < 4; i++ {
		a.Advance()
	}
	s = a.Snapshot()
	if !s.Completed["f001"] {
		t.Error("last path not committed")
	}
	if s.Phase != Done {
		t.Errorf("phase = %v, want %v", s.Phase, Done)
	}
	if s.ActivePath != 2 {
		t.Errorf("active path index = %d, want past-end 2", s.ActivePath)
	}
}

// TestTwoFlightEndToEnd replays the scenario where an accumulator that
// forgets to commit finished paths loses the first flight as soon as the
// second starts drawing.
func TestTwoFlightEndToEnd(t *testing.T) {
	cfg := track.Config{Steps: 4, DurationFrames: 4}
	a2b, err := track.Build(flights.Record{
		ID:     "a2b",
		Source: flights.Endpoint{Lat: 0, Lng: 0, City: "A"},
		Target: flights.Endpoint{Lat: 0, Lng: 40, City: "B"},
	}, cfg)
	if err != nil {
		t.Fatalf("build a2b: %v", err)
	}
	c2d, err := track.Build(flights.Record{
		ID:     "c2d",
		Seq:    1,
		Source: flights.Endpoint{Lat: 10, Lng: 50, City: "C"},
		Target: flights.Endpoint{Lat: 10, Lng: 90, City: "D"},
	}, cfg)
	if err != nil {
		t.Fatalf("build c2d: %v", err)
	}

	a := New([]*track.PathTrack{a2b, c2d}, Config{})

	for i := 0; i < 4; i++ {
		a.Advance()
	}
	f := a.CurrentFrame()

	first, ok := f.Path("a2b")
	if !ok {
		t.Fatal("first flight missing from frame after its reveal window")
	}
	if !first.Complete || len(first.Points) != 5 {
		t.Errorf("first flight: complete=%v points=%d, want complete with 5", first.Complete, len(first.Points))
	}
	second, ok := f.Path("c2d")
	if !ok {
		t.Fatal("second flight missing from frame at handover")
	}
	if len(second.Points) != 0 {
		t.Errorf("second flight already shows %d points at handover, want 0", len(second.Points))
	}
	if second.Tip != nil {
		t.Error("second flight has a moving tip before revealing started")
	}
	if second.Origin.Label != "C" {
		t.Errorf("second flight origin marker %q, want C", second.Origin.Label)
	}
	if f.ActivePath != "c2d" {
		t.Errorf("active path %q, want c2d", f.ActivePath)
	}

	for i := 0; i < 4; i++ {
		a.Advance()
	}
	f = a.CurrentFrame()

	for _, id := range []string{"a2b", "c2d"} {
		p, ok := f.Path(id)
		if !ok {
			t.Fatalf("path %s missing from final frame", id)
		}
		if !p.Complete || len(p.Points) != 5 {
			t.Errorf("path %s: complete=%v points=%d, want complete with 5", id, p.Complete, len(p.Points))
		}
	}
	if !f.Ending {
		t.Error("final frame not marked ending")
	}
	if f.ActivePath != "" {
		t.Errorf("done frame still has active path %q", f.ActivePath)
	}
	if f.PointCount() != 10 {
		t.Errorf("final frame has %d points, want 10", f.PointCount())
	}
}

func TestAdvance_DoneOverTicking(t *testing.T) {
	a := New([]*track.PathTrack{mkTrack("f000", 0, 5, 2)}, Config{})

	for i := 0; i < 2; i++ {
		a.Advance()
	}
	if a.Phase() != Done {
		t.Fatalf("phase = %v, want %v", a.Phase(), Done)
	}
	before := a.CurrentFrame()

	for i := 0; i < 10; i++ {
		a.Advance()
	}
	after := a.CurrentFrame()

	if after.Index != before.Index+10 {
		t.Errorf("frame clock stuck: %d -> %d, want +10", before.Index, after.Index)
	}
	if after.PointCount() != before.PointCount() {
		t.Errorf("frame content changed past done: %d -> %d points",
			before.PointCount(), after.PointCount())
	}
	if len(after.Paths) != len(before.Paths) {
		t.Errorf("path count changed past done: %d -> %d",
			len(before.Paths), len(after.Paths))
	}
}

func TestNew_EmptyTracks(t *testing.T) {
	a := New(nil, Config{})

	if a.Phase() != Done {
		t.Errorf("empty animation phase = %v, want %v", a.Phase(), Done)
	}
	f := a.CurrentFrame()
	if len(f.Paths) != 0 || f.PointCount() != 0 {
		t.Errorf("empty animation produced a non-empty frame: %+v", f)
	}
	if !f.Ending {
		t.Error("empty animation frame not marked ending")
	}

	a.Advance()
	if a.FrameIndex() != 1 {
		t.Errorf("frame index = %d after tick, want 1", a.FrameIndex())
	}
}

func TestAdvance_UnevenReveal(t *testing.T) {
	// 5 points over 3 ticks: prefix lengths 1, 3, 5.
	a := New([]*track.PathTrack{mkTrack("f000", 0, 5, 3)}, Config{})
	want := []int{1, 3, 5}
	for i, w := range want {
		a.Advance()
		got := len(a.CurrentFrame().Paths[0].Points)
		if got != w {
			t.Errorf("tick %d: %d visible points, want %d", i+1, got, w)
		}
	}
	if a.Phase() != Done {
		t.Errorf("phase = %v, want %v", a.Phase(), Done)
	}

	// 3 points over 5 ticks: reveal stalls some ticks but completes
	// exactly at the end of the window.
	a = New([]*track.PathTrack{mkTrack("f000", 0, 3, 5)}, Config{})
	want = []int{0, 1, 1, 2, 3}
	for i, w := range want {
		a.Advance()
		got := len(a.CurrentFrame().Paths[0].Points)
		if got != w {
			t.Errorf("tick %d: %d visible points, want %d", i+1, got, w)
		}
	}
	if a.Phase() != Done {
		t.Errorf("phase = %v, want %v", a.Phase(), Done)
	}
}

func TestCurrentFrame_FreshComputation(t *testing.T) {
	a := New([]*track.PathTrack{mkTrack("f000", 0, 5, 4)}, Config{})
	a.Advance()

	f1 := a.CurrentFrame()
	f2 := a.CurrentFrame()

	if len(f1.Paths) != 1 || len(f2.Paths) != 1 {
		t.Fatalf("expected one path per frame, got %d and %d", len(f1.Paths), len(f2.Paths))
	}

	// Scribbling over one frame's path list must not leak into the next.
	f1.Paths[0] = VisiblePath{ID: "clobbered"}
	f3 := a.CurrentFrame()
	if f3.Paths[0].ID != "f000" {
		t.Errorf("frame buffer reused across calls: got path %q", f3.Paths[0].ID)
	}
}

func TestSeek_DeterministicReplay(t *testing.T) {
	tracks := []*track.PathTrack{
		mkTrack("f000", 0, 5, 4),
		mkTrack("f001", 1, 7, 3),
	}

	a := New(tracks, Config{})
	recorded := make([]Frame, 0, 12)
	for i := 0; i < 12; i++ {
		a.Advance()
		recorded = append(recorded, a.CurrentFrame())
	}

	b := New(tracks, Config{})
	for k := len(recorded); k >= 1; k-- {
		b.Seek(k)
		got := b.CurrentFrame()
		want := recorded[k-1]

		if got.Index != want.Index {
			t.Errorf("seek %d: index %d, want %d", k, got.Index, want.Index)
		}
		gotVS, wantVS := visibleSet(got), visibleSet(want)
		if len(gotVS) != len(wantVS) {
			t.Errorf("seek %d: %d paths, want %d", k, len(gotVS), len(wantVS))
			continue
		}
		for id, n := range wantVS {
			if gotVS[id] != n {
				t.Errorf("seek %d: path %s has %d points, want %d", k, id, gotVS[id], n)
			}
		}
		if got.ActivePath != want.ActivePath {
			t.Errorf("seek %d: active %q, want %q", k, got.ActivePath, want.ActivePath)
		}
	}

	// Seeking past the reveal leaves content frozen with the clock moved.
	b.Seek(500)
	if b.FrameIndex() != 500 {
		t.Errorf("frame index after far seek = %d, want 500", b.FrameIndex())
	}
	if b.Phase() != Done {
		t.Errorf("phase after far seek = %v, want %v", b.Phase(), Done)
	}
}

func TestSnapshot_Isolation(t *testing.T) {
	a := New([]*track.PathTrack{
		mkTrack("f000", 0, 5, 2),
		mkTrack("f001", 1, 5, 2),
	}, Config{})

	a.Advance()
	snap := a.Snapshot()
	if len(snap.Completed) != 0 {
		t.Fatalf("unexpected completions in snapshot: %v", snap.Completed)
	}

	a.Advance()
	a.Advance()
	if len(snap.Completed) != 0 {
		t.Error("snapshot shares the completed set with the live state")
	}
	if !a.Snapshot().Completed["f000"] {
		t.Error("live state lost its completion")
	}
}

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{Idle, "idle"},
		{Revealing, "revealing"},
		{PathComplete, "path_complete"},
		{Done, "done"},
		{Phase(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tt.phase, got, tt.want)
		}
	}
}

func BenchmarkAdvance200(b *testing.B) {
	tracks := make([]*track.PathTrack, 6)
	for i := range tracks {
		tracks[i] = mkTrack(fmt.Sprintf("f%03d", i), i, 51, 33)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a := New(tracks, Config{})
		for k := 0; k < 200; k++ {
			a.Advance()
			a.CurrentFrame()
		}
	}
}
