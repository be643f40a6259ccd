package track

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/flights"
	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/metrics"
)

// buildJob is a unit of work for the batch build pool.
type buildJob struct {
	index int
	rec   flights.Record
}

// buildOutcome is the result of building one record.
type buildOutcome struct {
	index int
	track *PathTrack
	err   error
}

// BuildAll builds tracks for every record using a worker pool. One bad
// record never aborts the batch: failures are logged, collected into the
// result, and the siblings keep building. Tracks come back in input record
// order regardless of which worker finished first.
func BuildAll(ctx context.Context, recs []flights.Record, cfg Config, logger *slog.Logger) BuildResult {
	if len(recs) == 0 {
		return BuildResult{}
	}

	cfg = cfg.withDefaults()
	workers := cfg.Workers
	if workers > len(recs) {
		workers = len(recs)
	}

	start := time.Now()

	jobs := make(chan buildJob, workers*2)
	outcomes := make(chan buildOutcome, workers*2)

	// Start workers.
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				tr, err := Build(job.rec, cfg)
				select {
				case outcomes <- buildOutcome{index: job.index, track: tr, err: err}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	// Feed jobs in a goroutine.
	go func() {
		defer close(jobs)
		for i, rec := range recs {
			select {
			case jobs <- buildJob{index: i, rec: rec}:
			case <-ctx.Done():
				return
			}
		}
	}()

	// Close outcomes when all workers are done.
	go func() {
		wg.Wait()
		close(outcomes)
	}()

	// Collect, restoring input order.
	byIndex := make([]*PathTrack, len(recs))
	var failed []BuildError

	for out := range outcomes {
		if out.err != nil {
			logger.Warn("track build failed",
				"flight_index", out.index,
				"flight_id", recs[out.index].ID,
				"error", out.err,
			)
			failed = append(failed, BuildError{
				Index:    out.index,
				FlightID: recs[out.index].ID,
				Err:      out.err,
			})
			continue
		}
		byIndex[out.index] = out.track
	}

	tracks := make([]*PathTrack, 0, len(recs))
	for _, t := range byIndex {
		if t != nil {
			tracks = append(tracks, t)
		}
	}
	sort.Slice(failed, func(i, j int) bool { return failed[i].Index < failed[j].Index })

	duration := time.Since(start)
	metrics.RecordTrackBuild(duration, len(tracks), len(failed))

	logger.Info("track batch built",
		"built", len(tracks),
		"failed", len(failed),
		"steps", cfg.Steps,
		"workers", workers,
		"duration_ms", duration.Milliseconds(),
	)

	return BuildResult{Tracks: tracks, Failed: failed}
}
