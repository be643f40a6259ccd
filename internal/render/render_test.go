package render

import (
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/anim"
	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/flights"
	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/track"
	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/transform"
)

// midReveal builds a frame with one committed path and one mid-reveal, all
// on the hemisphere facing the default camera.
func midReveal(t *testing.T) anim.Frame {
	t.Helper()
	cfg := track.Config{Steps: 6, DurationFrames: 3}
	recs := []flights.Record{
		{
			ID:      "f000",
			Source:  flights.Endpoint{Lat: 10, Lng: -60, City: "A"},
			Target:  flights.Endpoint{Lat: 25, Lng: -10, City: "B"},
			Vehicle: "plane",
			Color:   "#FF6B6B",
		},
		{
			ID:      "f001",
			Seq:     1,
			Source:  flights.Endpoint{Lat: 25, Lng: -10, City: "B"},
			Target:  flights.Endpoint{Lat: 5, Lng: 50, City: "C"},
			Vehicle: "train",
			Color:   "#4ECDC4",
		},
	}

	tracks := make([]*track.PathTrack, 0, len(recs))
	for _, rec := range recs {
		tr, err := track.Build(rec, cfg)
		if err != nil {
			t.Fatalf("build %s: %v", rec.ID, err)
		}
		tracks = append(tracks, tr)
	}

	acc := anim.New(tracks, anim.Config{})
	for i := 0; i < 5; i++ {
		acc.Advance()
	}
	return acc.CurrentFrame()
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{}.withDefaults()
	if o.Width != 1400 || o.Height != 900 {
		t.Errorf("default canvas %dx%d, want 1400x900", o.Width, o.Height)
	}
	if o.ViewLat != 20 || o.ViewLon != 0 {
		t.Errorf("default view (%v, %v), want (20, 0)", o.ViewLat, o.ViewLon)
	}
	if o.Supersample != 2 || o.Radius != 1.0 {
		t.Errorf("defaults: supersample %d radius %v", o.Supersample, o.Radius)
	}
	if o.Title != defaultTitle {
		t.Errorf("default title %q", o.Title)
	}
}

func TestCamera_HemisphereCulling(t *testing.T) {
	cam := newCamera(0, 0)

	front := transform.Project(transform.GeoPoint{Lat: 0, Lon: 0}, 1)
	if _, _, depth := cam.view(front, 1); depth <= 0 {
		t.Errorf("camera-facing point has depth %v, want > 0", depth)
	}

	back := transform.Project(transform.GeoPoint{Lat: 0, Lon: 180}, 1)
	if _, _, depth := cam.view(back, 1); depth > 0 {
		t.Errorf("antipodal point has depth %v, want <= 0", depth)
	}

	// Tilting the camera to the pole brings it into view.
	top := newCamera(0, 90)
	pole := transform.Project(transform.GeoPoint{Lat: 90, Lon: 0}, 1)
	if _, _, depth := top.view(pole, 1); depth <= 0 {
		t.Errorf("pole under polar camera has depth %v, want > 0", depth)
	}
}

func TestToCanvas_CenterPoint(t *testing.T) {
	r, err := New(Options{Width: 200, Height: 140, Supersample: 1})
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	// The default camera centers on (20, 0), so that point lands on the
	// middle of the canvas.
	p := transform.Project(transform.GeoPoint{Lat: 20, Lon: 0}, 1)
	x, y, ok := r.toCanvas(p, 100, 70, 50)
	if !ok {
		t.Fatal("camera-facing point culled")
	}
	if ex, ey := 100.0, 70.0; absf(x-ex) > 0.5 || absf(y-ey) > 0.5 {
		t.Errorf("center point at (%v, %v), want (%v, %v)", x, y, ex, ey)
	}
}

func TestRenderFrame_CanvasSize(t *testing.T) {
	r, err := New(Options{Width: 200, Height: 140, Supersample: 2})
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	img := r.RenderFrame(midReveal(t))
	b := img.Bounds()
	if b.Dx() != 200 || b.Dy() != 140 {
		t.Errorf("canvas %dx%d, want 200x140 after downsample", b.Dx(), b.Dy())
	}
}

func TestRenderFrame_DrawsPaths(t *testing.T) {
	r, err := New(Options{Width: 200, Height: 140, Supersample: 1})
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	empty := r.RenderFrame(anim.Frame{Ending: true})
	full := r.RenderFrame(midReveal(t))

	b := empty.Bounds()
	var differs bool
	for y := b.Min.Y; y < b.Max.Y && !differs; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if empty.At(x, y) != full.At(x, y) {
				differs = true
				break
			}
		}
	}
	if !differs {
		t.Error("frame with paths renders identically to an empty frame")
	}
}

func TestPNGSequence_SaveAndDecode(t *testing.T) {
	r, err := New(Options{Width: 120, Height: 80, Supersample: 1})
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	seq := PNGSequence{Dir: t.TempDir()}
	if err := seq.Save(7, r.RenderFrame(midReveal(t))); err != nil {
		t.Fatalf("save: %v", err)
	}

	want := filepath.Join(seq.Dir, "frame_0007.png")
	f, err := os.Open(want)
	if err != nil {
		t.Fatalf("expected frame at %s: %v", want, err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Errorf("saved frame does not decode: %v", err)
	}
}

func TestGIF_RoundTrip(t *testing.T) {
	r, err := New(Options{Width: 80, Height: 60, Supersample: 1})
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	g := NewGIF(4)
	frame := midReveal(t)
	g.Add(r.RenderFrame(frame))
	g.Add(r.RenderFrame(frame))
	if g.Len() != 2 {
		t.Fatalf("assembler holds %d frames, want 2", g.Len())
	}

	path := filepath.Join(t.TempDir(), "journey.gif")
	if err := g.WriteFile(path); err != nil {
		t.Fatalf("write gif: %v", err)
	}
	if _, err := os.Stat(path + ".part"); err == nil {
		t.Error("temp file left behind after publish")
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open gif: %v", err)
	}
	defer f.Close()
	decoded, err := gif.DecodeAll(f)
	if err != nil {
		t.Fatalf("decode gif: %v", err)
	}
	if len(decoded.Image) != 2 {
		t.Errorf("gif holds %d frames, want 2", len(decoded.Image))
	}
	if decoded.LoopCount != 0 {
		t.Errorf("loop count %d, want 0 (loop forever)", decoded.LoopCount)
	}
}

func TestGIF_RejectsEmpty(t *testing.T) {
	g := NewGIF(4)
	if err := g.WriteFile(filepath.Join(t.TempDir(), "empty.gif")); err == nil {
		t.Error("expected error encoding an empty animation")
	}
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
