package render

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
)

// PNGSequence writes numbered frame images into a directory.
type PNGSequence struct {
	Dir     string
	Pattern string // frame filename pattern (default "frame_%04d.png")
}

// Path returns the file path for frame k.
func (s PNGSequence) Path(k int) string {
	pattern := s.Pattern
	if pattern == "" {
		pattern = "frame_%04d.png"
	}
	return filepath.Join(s.Dir, fmt.Sprintf(pattern, k))
}

// Save encodes frame k as PNG.
func (s PNGSequence) Save(k int, img image.Image) error {
	path := s.Path(k)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// GIF assembles rendered frames into a looping animated GIF. Frames are
// palettized as they are added so only the quantized images stay resident.
type GIF struct {
	images []*image.Paletted
	delays []int
	delay  int // centiseconds per frame
}

// NewGIF creates an assembler with the given per-frame delay in
// centiseconds. The original player steps frames every 40ms, so 4 is the
// default.
func NewGIF(delayCS int) *GIF {
	if delayCS < 1 {
		delayCS = 4
	}
	return &GIF{delay: delayCS}
}

// Add palettizes and appends one frame.
func (g *GIF) Add(img image.Image) {
	pimg := image.NewPaletted(img.Bounds(), palette.Plan9)
	draw.FloydSteinberg.Draw(pimg, pimg.Bounds(), img, image.Point{})
	g.images = append(g.images, pimg)
	g.delays = append(g.delays, g.delay)
}

// Len reports the number of frames added so far.
func (g *GIF) Len() int {
	return len(g.images)
}

// WriteFile encodes the animation to <path>.part and renames it into
// place. The GIF loops forever.
func (g *GIF) WriteFile(path string) error {
	if len(g.images) == 0 {
		return fmt.Errorf("no frames to encode")
	}

	tmp := path + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}

	err = gif.EncodeAll(f, &gif.GIF{
		Image:     g.images,
		Delay:     g.delays,
		LoopCount: 0,
	})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return os.Rename(tmp, path)
}
