package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/anim"
	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/export"
	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/timeline"
	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/track"
	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/transform"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// currentScene fetches the served scene, answering 503 when no flight
// data has been loaded yet.
func (s *Server) currentScene(w http.ResponseWriter) *anim.Scene {
	sc := s.scene.Load()
	if sc == nil {
		writeError(w, http.StatusServiceUnavailable, "no flight data loaded")
	}
	return sc
}

type flightSummary struct {
	ID             string `json:"id"`
	Seq            int    `json:"seq"`
	From           string `json:"from"`
	To             string `json:"to"`
	Vehicle        string `json:"vehicle,omitempty"`
	Color          string `json:"color"`
	Date           string `json:"date,omitempty"`
	DurationFrames int    `json:"duration_frames,omitempty"`
}

type flightsResponse struct {
	Source      string          `json:"source"`
	FetchedAt   string          `json:"fetched_at"`
	FlightCount int             `json:"flight_count"`
	Flights     []flightSummary `json:"flights"`
}

// handleFlights serves GET /api/v1/flights: the loaded journey list.
func (s *Server) handleFlights(w http.ResponseWriter, r *http.Request) {
	sc := s.currentScene(w)
	if sc == nil {
		return
	}

	resp := flightsResponse{
		Source:      sc.Set.Source,
		FetchedAt:   sc.Set.FetchedAt.UTC().Format(time.RFC3339),
		FlightCount: len(sc.Set.Records),
		Flights:     make([]flightSummary, len(sc.Set.Records)),
	}
	for i, rec := range sc.Set.Records {
		fs := flightSummary{
			ID:             rec.ID,
			Seq:            rec.Seq,
			From:           rec.Source.City,
			To:             rec.Target.City,
			Vehicle:        rec.Vehicle,
			Color:          rec.Color,
			DurationFrames: rec.DurationFrames,
		}
		if !rec.Date.IsZero() {
			fs.Date = rec.Date.Format("2006-01-02")
		}
		resp.Flights[i] = fs
	}
	writeJSON(w, http.StatusOK, resp)
}

type trackSummary struct {
	ID             string `json:"id"`
	Seq            int    `json:"seq"`
	Label          string `json:"label"`
	Vehicle        string `json:"vehicle,omitempty"`
	Color          string `json:"color"`
	PointCount     int    `json:"point_count"`
	DurationFrames int    `json:"duration_frames"`
}

// handleTracks serves GET /api/v1/tracks: one summary per built track.
// Full polylines are per-track via /api/v1/tracks/{id}.
func (s *Server) handleTracks(w http.ResponseWriter, r *http.Request) {
	sc := s.currentScene(w)
	if sc == nil {
		return
	}

	summaries := make([]trackSummary, len(sc.Tracks))
	for i, tr := range sc.Tracks {
		summaries[i] = trackSummary{
			ID:             tr.ID,
			Seq:            tr.SeqNum,
			Label:          tr.Label(),
			Vehicle:        tr.Vehicle,
			Color:          tr.Color,
			PointCount:     len(tr.Points),
			DurationFrames: tr.DurationFrames,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"track_count": len(summaries),
		"tracks":      summaries,
	})
}

type endpointDetail struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Name string  `json:"name,omitempty"`
}

type trackDetail struct {
	ID             string         `json:"id"`
	Seq            int            `json:"seq"`
	Label          string         `json:"label"`
	Vehicle        string         `json:"vehicle,omitempty"`
	Color          string         `json:"color"`
	DurationFrames int            `json:"duration_frames"`
	Origin         endpointDetail `json:"origin"`
	Destination    endpointDetail `json:"destination"`
	Lat            []float64      `json:"lat"`
	Lon            []float64      `json:"lon"`
	Points         [][3]float64   `json:"points"`
}

// handleTrackByID serves GET /api/v1/tracks/{id}: the full polyline.
func (s *Server) handleTrackByID(w http.ResponseWriter, r *http.Request) {
	sc := s.currentScene(w)
	if sc == nil {
		return
	}

	tr, ok := sc.Track(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown track id")
		return
	}
	writeJSON(w, http.StatusOK, detailFromTrack(tr))
}

func detailFromTrack(tr *track.PathTrack) trackDetail {
	d := trackDetail{
		ID:             tr.ID,
		Seq:            tr.SeqNum,
		Label:          tr.Label(),
		Vehicle:        tr.Vehicle,
		Color:          tr.Color,
		DurationFrames: tr.DurationFrames,
		Origin:         endpointFrom(tr.Origin, tr.OriginName),
		Destination:    endpointFrom(tr.Destination, tr.DestName),
		Lat:            make([]float64, len(tr.Geo)),
		Lon:            make([]float64, len(tr.Geo)),
		Points:         make([][3]float64, len(tr.Points)),
	}
	for i, g := range tr.Geo {
		d.Lat[i] = g.Lat
		d.Lon[i] = g.Lon
	}
	for i, p := range tr.Points {
		d.Points[i] = [3]float64{p.X, p.Y, p.Z}
	}
	return d
}

func endpointFrom(g transform.GeoPoint, name string) endpointDetail {
	return endpointDetail{Lat: g.Lat, Lon: g.Lon, Name: name}
}

type timelineResponse struct {
	TotalFrames  int               `json:"total_frames"`
	RevealFrames int               `json:"reveal_frames"`
	WindowCount  int               `json:"window_count"`
	Windows      []timeline.Window `json:"windows"`
}

// handleTimeline serves GET /api/v1/timeline: the reveal schedule.
func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	sc := s.currentScene(w)
	if sc == nil {
		return
	}

	writeJSON(w, http.StatusOK, timelineResponse{
		TotalFrames:  sc.Schedule.TotalFrames,
		RevealFrames: sc.Schedule.RevealFrames(),
		WindowCount:  len(sc.Schedule.Windows),
		Windows:      sc.Schedule.Windows,
	})
}

// handleFrame serves GET /api/v1/frames/{index}: one frame by position,
// computed through the shared replayer. clamp=1 pins out-of-range indexes
// to the final frame instead of 404ing, which lets clients ask for "the
// end" without knowing the total.
func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	k, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || k < 0 {
		writeError(w, http.StatusBadRequest, "invalid frame index")
		return
	}

	sc := s.currentScene(w)
	if sc == nil {
		return
	}

	f, ok := sc.Frames.Get(k)
	if !ok {
		clamp, _ := strconv.ParseBool(r.URL.Query().Get("clamp"))
		if !clamp || sc.Frames.Total() == 0 {
			writeJSON(w, http.StatusNotFound, map[string]any{
				"error":        "frame out of range",
				"total_frames": sc.Frames.Total(),
			})
			return
		}
		k = sc.Frames.Total() - 1
		f, _ = sc.Frames.Get(k)
	}

	writeJSON(w, http.StatusOK, export.FromFrame(k, f))
}

// handleReload serves POST /api/v1/admin/reload: re-fetch the flight
// list, rebuild all tracks, and swap the scene.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	sc, err := s.Reload(r.Context())
	if err != nil {
		s.logger.Error("reload failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"source":       sc.Set.Source,
		"flight_count": len(sc.Set.Records),
		"track_count":  len(sc.Tracks),
		"total_frames": sc.Frames.Total(),
	})
}
