package anim

import (
	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/track"
	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/transform"
)

// MarkerInfo is a labeled point on the globe: a city endpoint or the
// moving tip of the active path.
type MarkerInfo struct {
	Geo   transform.GeoPoint
	Point transform.Point3D
	Label string
}

// VisiblePath is one path's contribution to a frame. Points and Geo alias
// the owning track's buffers and must be treated as read-only. For a
// completed path they are the full polyline; for the active path, the
// revealed prefix. Destination carries the endpoint either way; renderers
// show its marker only once Complete is set. Tip is non-nil only while the
// path is actively revealing with at least one visible point.
type VisiblePath struct {
	ID          string
	SeqNum      int
	Points      []transform.Point3D
	Geo         []transform.GeoPoint
	Color       string
	Vehicle     string
	Complete    bool
	Origin      MarkerInfo
	Destination MarkerInfo
	Tip         *MarkerInfo
}

// Frame is one fully specified snapshot of the animation: every committed
// path in full plus the active path's prefix. Each frame carries the whole
// accumulated picture, so consumers replace what they showed before rather
// than adding to it.
type Frame struct {
	Index      int
	Paths      []VisiblePath
	ActivePath string // ID of the revealing path, "" once done
	Ending     bool   // set from the tick the last path commits
}

// PointCount returns the total number of visible points across all paths.
func (f Frame) PointCount() int {
	var n int
	for _, p := range f.Paths {
		n += len(p.Points)
	}
	return n
}

// Path returns the visible path with the given ID.
func (f Frame) Path(id string) (VisiblePath, bool) {
	for _, p := range f.Paths {
		if p.ID == id {
			return p, true
		}
	}
	return VisiblePath{}, false
}

// CurrentFrame computes the frame for the current state. It is a pure
// query: built fresh on every call from the completed set and the active
// prefix, with no buffer reuse between calls.
func (a *Accumulator) CurrentFrame() Frame {
	f := Frame{
		Index:  a.state.FrameIndex,
		Ending: a.state.Phase == Done,
		Paths:  make([]VisiblePath, 0, len(a.state.Completed)+1),
	}

	for i, tr := range a.tracks {
		switch {
		case a.state.Completed[tr.ID]:
			f.Paths = append(f.Paths, completedPath(tr))
		case i == a.state.ActivePath:
			f.Paths = append(f.Paths, activePath(tr, a.state.ActiveProgress))
			f.ActivePath = tr.ID
		}
	}
	return f
}

func endpointMarker(g transform.GeoPoint, p transform.Point3D, label string) MarkerInfo {
	return MarkerInfo{Geo: g, Point: p, Label: label}
}

func completedPath(tr *track.PathTrack) VisiblePath {
	n := len(tr.Points)
	return VisiblePath{
		ID:          tr.ID,
		SeqNum:      tr.SeqNum,
		Points:      tr.Points,
		Geo:         tr.Geo,
		Color:       tr.Color,
		Vehicle:     tr.Vehicle,
		Complete:    true,
		Origin:      endpointMarker(tr.Geo[0], tr.Points[0], tr.OriginName),
		Destination: endpointMarker(tr.Geo[n-1], tr.Points[n-1], tr.DestName),
	}
}

func activePath(tr *track.PathTrack, progress int) VisiblePath {
	n := len(tr.Points)
	vp := VisiblePath{
		ID:          tr.ID,
		SeqNum:      tr.SeqNum,
		Points:      tr.Points[:progress],
		Geo:         tr.Geo[:progress],
		Color:       tr.Color,
		Vehicle:     tr.Vehicle,
		Origin:      endpointMarker(tr.Geo[0], tr.Points[0], tr.OriginName),
		Destination: endpointMarker(tr.Geo[n-1], tr.Points[n-1], tr.DestName),
	}
	if progress > 0 {
		tip := endpointMarker(tr.Geo[progress-1], tr.Points[progress-1], "")
		vp.Tip = &tip
	}
	return vp
}
