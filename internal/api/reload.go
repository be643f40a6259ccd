package api

import (
	"bytes"
	"context"
	"fmt"

	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/anim"
	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/flights"
	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/metrics"
	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/timeline"
	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/track"
)

// Reload fetches the flight list, rebuilds every track, and swaps in the
// new scene as one unit. Streams that started on the previous scene keep
// playing it to the end; new connections and frame lookups see the new
// one immediately. On any error the current scene stays in place.
func (s *Server) Reload(ctx context.Context) (*anim.Scene, error) {
	// One reload at a time; readers never block on this.
	s.store.Lock()
	defer s.store.Unlock()

	data, fetchedAt, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching flight list: %w", err)
	}

	set, rejected, err := flights.Parse(bytes.NewReader(data), s.fetcher.Source(), s.logger)
	if err != nil {
		return nil, err
	}
	set.FetchedAt = fetchedAt

	reveal := s.cfg.RevealFrames
	if reveal < 1 {
		reveal = timeline.Plan(len(set.Records), s.cfg.TotalFrames)
	}
	res := track.BuildAll(ctx, set.Records, track.Config{
		Steps:          s.cfg.Steps,
		Radius:         s.cfg.Radius,
		DurationFrames: reveal,
		Workers:        s.cfg.Workers,
	}, s.logger)
	if len(res.Tracks) == 0 {
		return nil, fmt.Errorf("no usable tracks in %s: all %d records failed to build", set.Source, len(res.Failed))
	}

	sc := anim.NewScene(set, res.Tracks, s.cfg.TotalFrames)
	s.store.Set(set)
	s.scene.Store(sc)
	metrics.SetFlightsLoaded(len(set.Records))

	s.logger.Info("scene loaded",
		"source", set.Source,
		"flights", len(set.Records),
		"rejected_records", len(rejected),
		"build_failures", len(res.Failed),
		"tracks", len(res.Tracks),
		"total_frames", sc.Frames.Total(),
	)
	return sc, nil
}
