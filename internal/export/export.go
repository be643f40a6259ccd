// Package export runs the animation to completion and serializes every
// frame to the JSON dump the rendering side consumes. Each record carries
// the frame's full accumulated content, so a consumer renders any record
// standalone and replaces, never merges, what it drew before.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/anim"
	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/metrics"
)

// Run ticks the accumulator through the given number of frames, calling
// fn with each emitted frame and its zero-based sequence position.
func Run(acc *anim.Accumulator, frames int, fn func(k int, f anim.Frame) error) error {
	for k := 0; k < frames; k++ {
		acc.Advance()
		metrics.IncAdvanceTicks()
		f := acc.CurrentFrame()
		metrics.IncFramesComputed()
		if err := fn(k, f); err != nil {
			return fmt.Errorf("frame %d: %w", k, err)
		}
	}
	return nil
}

// Dump runs the animation and streams the records to w.
func Dump(acc *anim.Accumulator, frames int, w io.Writer) error {
	start := time.Now()
	enc := NewWriter(w)
	err := Run(acc, frames, func(k int, f anim.Frame) error {
		return enc.Write(FromFrame(k, f))
	})
	if err == nil {
		err = enc.Close()
	}
	metrics.RecordExport(time.Since(start), err)
	return err
}

// DumpFile runs the animation and writes the dump to path atomically.
func DumpFile(acc *anim.Accumulator, frames int, path string) error {
	start := time.Now()
	fw, err := CreateFile(path)
	if err != nil {
		metrics.RecordExport(time.Since(start), err)
		return err
	}

	err = Run(acc, frames, func(k int, f anim.Frame) error {
		return fw.Write(FromFrame(k, f))
	})
	if err != nil {
		fw.Discard()
		metrics.RecordExport(time.Since(start), err)
		return err
	}

	err = fw.Close()
	metrics.RecordExport(time.Since(start), err)
	return err
}
