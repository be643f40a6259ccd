package export

import (
	"fmt"

	"github.com/Guo-lab/Flight-3D-Globe-Animation/internal/anim"
)

// EndpointRecord is a labeled endpoint marker in the dump.
type EndpointRecord struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Name string  `json:"name,omitempty"`
}

// TipRecord is the moving tip of the revealing path.
type TipRecord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// PathRecord carries one visible path with every visible point, tagged
// with the owning path's identity and style so overlapping paths stay
// distinguishable downstream.
type PathRecord struct {
	ID          string         `json:"id"`
	Seq         int            `json:"seq"`
	Vehicle     string         `json:"vehicle"`
	Color       string         `json:"color"`
	Complete    bool           `json:"complete"`
	PointCount  int            `json:"point_count"`
	Lat         []float64      `json:"lat"`
	Lon         []float64      `json:"lon"`
	Points      [][3]float64   `json:"points"`
	Origin      EndpointRecord `json:"origin"`
	Destination EndpointRecord `json:"destination"`
	Tip         *TipRecord     `json:"tip,omitempty"`
}

// Record is one exported frame: the full accumulated picture at one tick.
type Record struct {
	FrameNumber int          `json:"frame_number"`
	FrameName   string       `json:"frame_name"`
	ActivePath  string       `json:"active_path,omitempty"`
	Ending      bool         `json:"ending"`
	PathCount   int          `json:"path_count"`
	Paths       []PathRecord `json:"paths"`
}

// FromFrame serializes the frame emitted at sequence position k.
func FromFrame(k int, f anim.Frame) Record {
	rec := Record{
		FrameNumber: k,
		FrameName:   fmt.Sprintf("frame_%d", k),
		ActivePath:  f.ActivePath,
		Ending:      f.Ending,
		PathCount:   len(f.Paths),
		Paths:       make([]PathRecord, 0, len(f.Paths)),
	}

	for _, p := range f.Paths {
		pr := PathRecord{
			ID:         p.ID,
			Seq:        p.SeqNum,
			Vehicle:    p.Vehicle,
			Color:      p.Color,
			Complete:   p.Complete,
			PointCount: len(p.Points),
			Lat:        make([]float64, 0, len(p.Geo)),
			Lon:        make([]float64, 0, len(p.Geo)),
			Points:     make([][3]float64, 0, len(p.Points)),
			Origin: EndpointRecord{
				Lat:  p.Origin.Geo.Lat,
				Lon:  p.Origin.Geo.Lon,
				Name: p.Origin.Label,
			},
			Destination: EndpointRecord{
				Lat:  p.Destination.Geo.Lat,
				Lon:  p.Destination.Geo.Lon,
				Name: p.Destination.Label,
			},
		}
		for _, g := range p.Geo {
			pr.Lat = append(pr.Lat, g.Lat)
			pr.Lon = append(pr.Lon, g.Lon)
		}
		for _, pt := range p.Points {
			pr.Points = append(pr.Points, [3]float64{pt.X, pt.Y, pt.Z})
		}
		if p.Tip != nil {
			pr.Tip = &TipRecord{Lat: p.Tip.Geo.Lat, Lon: p.Tip.Geo.Lon}
		}
		rec.Paths = append(rec.Paths, pr)
	}
	return rec
}
