// Package render rasterizes animation frames: an orthographic globe with
// the accumulated flight paths, endpoint markers, and captions. Every
// frame is drawn from scratch onto a fresh canvas; the frame itself
// already carries the full accumulated picture, so the renderer never
// keeps state between frames.
package render

import (
	"fmt"
	"image"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/anim"
	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/flights"
	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/transform"
)

// Colors follow the original dark-globe look.
const (
	colorSpace    = "#000000"
	colorOcean    = "#001428" // rgb(0, 20, 40)
	colorGrid     = "#646464" // rgb(100, 100, 100)
	colorText     = "#FFFFFF"
	colorMarker   = "#FFFFFF"
	defaultTitle  = "World Travel Journey Animation"
	completedWide = 2.0
	activeWide    = 7.0
)

// Options holds renderer parameters.
type Options struct {
	Width       int     // canvas width (default 1400)
	Height      int     // canvas height (default 900)
	ViewLon     float64 // camera center longitude (default 0)
	ViewLat     float64 // camera center latitude (default 20)
	Radius      float64 // sphere radius the tracks were projected onto (default 1)
	Supersample int     // draw at this scale then downsample (default 2)
	Title       string  // caption across the top (default defaultTitle)
	TotalFrames int     // for the frame counter caption; 0 hides the total
}

func (o Options) withDefaults() Options {
	if o.Width < 1 {
		o.Width = 1400
	}
	if o.Height < 1 {
		o.Height = 900
	}
	if o.ViewLat == 0 && o.ViewLon == 0 {
		o.ViewLat = 20
	}
	if o.Radius <= 0 {
		o.Radius = 1.0
	}
	if o.Supersample < 1 {
		o.Supersample = 2
	}
	if o.Title == "" {
		o.Title = defaultTitle
	}
	return o
}

// Renderer rasterizes frames with a fixed view and canvas. Safe for
// sequential use; create one per goroutine for parallel rendering.
type Renderer struct {
	opts   Options
	cam    camera
	ss     float64
	titleF font.Face
	textF  font.Face
	labelF font.Face
	grid   [][]transform.GeoPoint
}

// New creates a renderer.
func New(opts Options) (*Renderer, error) {
	opts = opts.withDefaults()
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse embedded font: %w", err)
	}

	ss := float64(opts.Supersample)
	return &Renderer{
		opts:   opts,
		cam:    newCamera(opts.ViewLon, opts.ViewLat),
		ss:     ss,
		titleF: truetype.NewFace(f, &truetype.Options{Size: 24 * ss}),
		textF:  truetype.NewFace(f, &truetype.Options{Size: 16 * ss}),
		labelF: truetype.NewFace(f, &truetype.Options{Size: 13 * ss}),
		grid:   graticule(),
	}, nil
}

// RenderFrame draws one frame and returns the finished image.
func (r *Renderer) RenderFrame(f anim.Frame) image.Image {
	w := r.opts.Width * r.opts.Supersample
	h := r.opts.Height * r.opts.Supersample
	dc := gg.NewContext(w, h)

	cx := float64(w) / 2
	cy := float64(h) / 2
	globeR := 0.42 * minf(float64(w), float64(h))

	dc.SetHexColor(colorSpace)
	dc.Clear()

	// Ocean disc and limb.
	dc.SetHexColor(colorOcean)
	dc.DrawCircle(cx, cy, globeR)
	dc.Fill()
	dc.SetHexColor(colorGrid)
	dc.SetLineWidth(1.5 * r.ss)
	dc.DrawCircle(cx, cy, globeR)
	dc.Stroke()

	// Graticule.
	dc.SetHexColor(colorGrid)
	dc.SetLineWidth(0.75 * r.ss)
	for _, line := range r.grid {
		r.strokeGeoline(dc, line, cx, cy, globeR)
	}

	// Paths: completed first so the active path draws on top.
	for _, p := range f.Paths {
		if p.Complete {
			r.drawPath(dc, p, cx, cy, globeR, completedWide)
		}
	}
	for _, p := range f.Paths {
		if !p.Complete {
			r.drawPath(dc, p, cx, cy, globeR, activeWide)
		}
	}

	// Markers over the linework.
	for _, p := range f.Paths {
		r.drawMarkers(dc, p, cx, cy, globeR)
	}

	r.drawCaptions(dc, f, float64(w), float64(h))

	if r.opts.Supersample == 1 {
		return dc.Image()
	}
	dst := image.NewRGBA(image.Rect(0, 0, r.opts.Width, r.opts.Height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), dc.Image(), dc.Image().Bounds(), xdraw.Over, nil)
	return dst
}

// toCanvas maps a track point to canvas coordinates. ok reports whether
// the point is on the visible hemisphere.
func (r *Renderer) toCanvas(p transform.Point3D, cx, cy, globeR float64) (x, y float64, ok bool) {
	u, v, depth := r.cam.view(p, 1/r.opts.Radius)
	if depth <= 0 {
		return 0, 0, false
	}
	return cx + u*globeR, cy - v*globeR, true
}

// strokePolyline strokes the visible runs of a projected polyline,
// breaking wherever the line passes behind the globe.
func (r *Renderer) strokePolyline(dc *gg.Context, pts []transform.Point3D, cx, cy, globeR float64) {
	inRun := false
	for _, p := range pts {
		x, y, ok := r.toCanvas(p, cx, cy, globeR)
		if !ok {
			if inRun {
				dc.Stroke()
				inRun = false
			}
			continue
		}
		if !inRun {
			dc.MoveTo(x, y)
			inRun = true
		} else {
			dc.LineTo(x, y)
		}
	}
	if inRun {
		dc.Stroke()
	}
}

func (r *Renderer) strokeGeoline(dc *gg.Context, line []transform.GeoPoint, cx, cy, globeR float64) {
	pts := make([]transform.Point3D, len(line))
	for i, g := range line {
		pts[i] = transform.Project(g, r.opts.Radius)
	}
	r.strokePolyline(dc, pts, cx, cy, globeR)
}

func (r *Renderer) drawPath(dc *gg.Context, p anim.VisiblePath, cx, cy, globeR, width float64) {
	if len(p.Points) < 2 {
		return
	}
	dc.SetHexColor(p.Color)
	dc.SetLineWidth(width * r.ss)
	r.strokePolyline(dc, p.Points, cx, cy, globeR)
}

func (r *Renderer) drawMarkers(dc *gg.Context, p anim.VisiblePath, cx, cy, globeR float64) {
	r.drawEndpoint(dc, p.Origin, cx, cy, globeR)
	if p.Complete {
		r.drawEndpoint(dc, p.Destination, cx, cy, globeR)
	}
	if p.Tip != nil {
		x, y, ok := r.toCanvas(p.Tip.Point, cx, cy, globeR)
		if !ok {
			return
		}
		style := flights.StyleFor(p.Vehicle)
		dc.SetHexColor(style.Color)
		dc.DrawCircle(x, y, 7*r.ss)
		dc.Fill()
		dc.SetHexColor(colorMarker)
		dc.SetLineWidth(1.5 * r.ss)
		dc.DrawCircle(x, y, 7*r.ss)
		dc.Stroke()
	}
}

func (r *Renderer) drawEndpoint(dc *gg.Context, m anim.MarkerInfo, cx, cy, globeR float64) {
	x, y, ok := r.toCanvas(m.Point, cx, cy, globeR)
	if !ok {
		return
	}
	dc.SetHexColor(colorMarker)
	dc.DrawCircle(x, y, 3.5*r.ss)
	dc.Fill()
	if m.Label != "" {
		dc.SetFontFace(r.labelF)
		dc.SetHexColor(colorText)
		dc.DrawStringAnchored(m.Label, x+8*r.ss, y-8*r.ss, 0, 0.5)
	}
}

func (r *Renderer) drawCaptions(dc *gg.Context, f anim.Frame, w, h float64) {
	dc.SetHexColor(colorText)
	dc.SetFontFace(r.titleF)
	dc.DrawStringAnchored(r.opts.Title, w/2, 32*r.ss, 0.5, 0.5)

	dc.SetFontFace(r.textF)
	status := "Journey complete"
	if !f.Ending {
		if p, ok := f.Path(f.ActivePath); ok {
			status = fmt.Sprintf("%s to %s", p.Origin.Label, p.Destination.Label)
		} else {
			status = ""
		}
	}
	if status != "" {
		dc.DrawStringAnchored(status, 24*r.ss, h-24*r.ss, 0, 0.5)
	}

	counter := fmt.Sprintf("frame %d", f.Index)
	if r.opts.TotalFrames > 0 {
		counter = fmt.Sprintf("frame %d / %d", f.Index, r.opts.TotalFrames)
	}
	dc.DrawStringAnchored(counter, w-24*r.ss, h-24*r.ss, 1, 0.5)
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
