package flights

import "math/rand"

// VehicleStyle pairs a marker color with the icon drawn at the moving tip.
type VehicleStyle struct {
	Color string
	Icon  string
}

// DefaultVehicleStyle is used for vehicle kinds missing from the table.
var DefaultVehicleStyle = VehicleStyle{Color: "#FFA726", Icon: "📍"}

var vehicleStyles = map[string]VehicleStyle{
	"plane":  {Color: "#FF6B6B", Icon: "✈️"},
	"train":  {Color: "#4ECDC4", Icon: "🚄"},
	"car":    {Color: "#45B7D1", Icon: "🚗"},
	"socket": {Color: "#F7B7A3", Icon: "🚀"},
	"ship":   {Color: "#FFB400", Icon: "🚢"},
}

// StyleFor returns the marker style for a vehicle kind, falling back to
// DefaultVehicleStyle for unknown kinds.
func StyleFor(vehicle string) VehicleStyle {
	if s, ok := vehicleStyles[vehicle]; ok {
		return s
	}
	return DefaultVehicleStyle
}

// PathPalette is the color cycle assigned to flight paths, distinct from the
// vehicle marker colors so overlapping paths stay distinguishable.
var PathPalette = []string{
	"#FF6B6B", // coral
	"#4ECDC4", // turquoise
	"#556270", // dark blue-gray
	"#C7F464", // lime
	"#FFA726", // amber
	"#66BB6A", // green
	"#29B6F6", // sky blue
	"#AB47BC", // purple
}

// PaletteColor returns the palette entry for path sequence number n.
// Deterministic, so replays of the same flight set color paths identically.
func PaletteColor(n int) string {
	if n < 0 {
		n = -n
	}
	return PathPalette[n%len(PathPalette)]
}

// RandomPaletteColor draws a palette entry from rng. Callers that want the
// shuffled look seed the rng themselves so runs stay reproducible.
func RandomPaletteColor(rng *rand.Rand) string {
	return PathPalette[rng.Intn(len(PathPalette))]
}
