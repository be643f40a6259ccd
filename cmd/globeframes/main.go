package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/anim"
	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/export"
	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/flights"
	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/render"
	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/timeline"
	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/track"
)

func main() {
	input := flag.String("input", "flights.json", "flight list JSON file")
	out := flag.String("out", "frames.json", "frame dump output path")
	frames := flag.Int("frames", 200, "total animation frames")
	steps := flag.Int("steps", 50, "interpolation steps per path")
	radius := flag.Float64("radius", 1.0, "sphere radius")
	reveal := flag.Int("reveal", 0, "reveal frames per path (0 derives from -frames)")
	workers := flag.Int("workers", 0, "track build workers (0 uses all CPUs)")
	pngDir := flag.String("png-dir", "", "also render every frame as PNG into this directory")
	gifPath := flag.String("gif", "", "also assemble an animated GIF at this path")
	delay := flag.Int("delay", 4, "GIF frame delay in centiseconds")
	colorSeed := flag.Int64("color-seed", 0, "shuffle path colors with this seed (0 keeps palette order)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	set, rejected, err := flights.ParseFile(*input, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR reading flight list:", err)
		os.Exit(1)
	}
	for _, rej := range rejected {
		fmt.Fprintln(os.Stderr, "skipped:", rej)
	}
	fmt.Printf("Loaded %d flights from %s\n", len(set.Records), set.Source)

	if *colorSeed != 0 {
		rng := rand.New(rand.NewSource(*colorSeed))
		for i := range set.Records {
			set.Records[i].Color = flights.RandomPaletteColor(rng)
		}
	}

	revealFrames := *reveal
	if revealFrames < 1 {
		revealFrames = timeline.Plan(len(set.Records), *frames)
	}

	res := track.BuildAll(context.Background(), set.Records, track.Config{
		Steps:          *steps,
		Radius:         *radius,
		DurationFrames: revealFrames,
		Workers:        *workers,
	}, logger)
	for _, fail := range res.Failed {
		fmt.Fprintln(os.Stderr, "build failed:", fail.Error())
	}
	if len(res.Tracks) == 0 {
		fmt.Fprintln(os.Stderr, "ERROR: no usable tracks, nothing to export")
		os.Exit(1)
	}

	sched := timeline.NewSchedule(res.Tracks, *frames)
	total := sched.TotalFrames
	fmt.Printf("Animating %d tracks over %d frames (%d reveal frames each)\n",
		len(res.Tracks), total, revealFrames)

	var (
		renderer *render.Renderer
		seq      *render.PNGSequence
		g        *render.GIF
	)
	if *pngDir != "" || *gifPath != "" {
		renderer, err = render.New(render.Options{Radius: *radius, TotalFrames: total})
		if err != nil {
			fmt.Fprintln(os.Stderr, "ERROR creating renderer:", err)
			os.Exit(1)
		}
		if *pngDir != "" {
			if err := os.MkdirAll(*pngDir, 0o755); err != nil {
				fmt.Fprintln(os.Stderr, "ERROR creating PNG directory:", err)
				os.Exit(1)
			}
			seq = &render.PNGSequence{Dir: *pngDir}
		}
		if *gifPath != "" {
			g = render.NewGIF(*delay)
		}
	}

	fw, err := export.CreateFile(*out)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR creating dump file:", err)
		os.Exit(1)
	}

	bar := progressbar.Default(int64(total), "frames")
	acc := anim.New(res.Tracks, anim.Config{})

	err = export.Run(acc, total, func(k int, f anim.Frame) error {
		if err := fw.Write(export.FromFrame(k, f)); err != nil {
			return err
		}
		if renderer != nil {
			img := renderer.RenderFrame(f)
			if seq != nil {
				if err := seq.Save(k, img); err != nil {
					return err
				}
			}
			if g != nil {
				g.Add(img)
			}
		}
		_ = bar.Add(1)
		return nil
	})
	if err != nil {
		fw.Discard()
		fmt.Fprintln(os.Stderr, "ERROR exporting frames:", err)
		os.Exit(1)
	}
	if err := fw.Close(); err != nil {
		fmt.Fprintln(os.Stderr, "ERROR finalizing dump file:", err)
		os.Exit(1)
	}
	_ = bar.Finish()

	if g != nil {
		if err := g.WriteFile(*gifPath); err != nil {
			fmt.Fprintln(os.Stderr, "ERROR writing GIF:", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s (%d frames)\n", *gifPath, g.Len())
	}

	fmt.Printf("Exported %d frames to %s\n", total, *out)
}
