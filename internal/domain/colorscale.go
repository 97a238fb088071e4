package domain

// Color is a #rrggbb hex color.
type Color string

// NoDataColor marks a zero count. The style resolver renders it transparent.
const NoDataColor Color = "#ffffff"

// Bucket is one half-open [Min, Max) intensity interval of a color scale.
type Bucket struct {
	Min   float64
	Max   float64
	Color Color
}

// Scale maps intensities in (0, 1] to colors. Buckets are ordered and contiguous;
// the last bucket is closed on the right so intensity 1 has a color.
type Scale struct {
	Name    string
	Buckets []Bucket
}

// FineScale is the ten-step yellow-to-dark-red ramp used for choropleth fills.
var FineScale = Scale{
	Name: "fine",
	Buckets: []Bucket{
		{Min: 0.00001, Max: 0.1, Color: "#ffffcc"},
		{Min: 0.1, Max: 0.2, Color: "#ffeda0"},
		{Min: 0.2, Max: 0.3, Color: "#fed976"},
		{Min: 0.3, Max: 0.4, Color: "#feb24c"},
		{Min: 0.4, Max: 0.5, Color: "#fd8d3c"},
		{Min: 0.5, Max: 0.6, Color: "#fc4e2a"},
		{Min: 0.6, Max: 0.7, Color: "#e31a1c"},
		{Min: 0.7, Max: 0.8, Color: "#bd0026"},
		{Min: 0.8, Max: 0.9, Color: "#800026"},
		{Min: 0.9, Max: 1, Color: "#4d0019"},
	},
}

// CoarseScale is the four-step ramp used by the marker and label views.
var CoarseScale = Scale{
	Name: "coarse",
	Buckets: []Bucket{
		{Min: 0, Max: 0.25, Color: "#ffffb2"},
		{Min: 0.25, Max: 0.5, Color: "#fecc5c"},
		{Min: 0.5, Max: 0.75, Color: "#fd8d3c"},
		{Min: 0.75, Max: 1, Color: "#e31a1c"},
	},
}

// ScaleByName returns FineScale or CoarseScale. Anything else yields FineScale.
func ScaleByName(name string) Scale {
	if name == CoarseScale.Name {
		return CoarseScale
	}
	return FineScale
}

// Intensity normalizes count against max into [0, 1]. A non-positive max yields 1
// for any positive count and 0 otherwise.
func Intensity(count, maxCount int) float64 {
	if count <= 0 {
		return 0
	}
	if maxCount <= 0 {
		return 1
	}
	v := float64(count) / float64(maxCount)
	if v > 1 {
		return 1
	}
	return v
}

// ColorFor colors count relative to max on the fine scale.
func ColorFor(count, maxCount int) Color {
	return FineScale.ColorFor(count, maxCount)
}

// ColorFor colors count relative to max on s. Zero counts get NoDataColor.
func (s Scale) ColorFor(count, maxCount int) Color {
	if count <= 0 {
		return NoDataColor
	}
	return s.ColorForIntensity(Intensity(count, maxCount))
}

// ColorForIntensity returns the bucket color containing v. Positive intensities
// below the first bucket use the first bucket; v >= 1 uses the last.
func (s Scale) ColorForIntensity(v float64) Color {
	if len(s.Buckets) == 0 || v <= 0 {
		return NoDataColor
	}
	for _, b := range s.Buckets {
		if v >= b.Min && v < b.Max {
			return b.Color
		}
	}
	if v < s.Buckets[0].Min {
		return s.Buckets[0].Color
	}
	return s.Buckets[len(s.Buckets)-1].Color
}

// LegendEntry is one row of the map legend.
type LegendEntry struct {
	Value int   `json:"value"`
	Color Color `json:"color"`
}

// DefaultLegendSteps and DefaultLegendCeiling reproduce the legend of the web map.
var DefaultLegendSteps = []int{0, 20, 40, 60, 80, 100, 120, 140, 160, 180, 200}

const DefaultLegendCeiling = 210

// Legend colors each step against ceiling. Steps with zero intensity have no
// bucket and are omitted.
func Legend(s Scale, steps []int, ceiling int) []LegendEntry {
	entries := make([]LegendEntry, 0, len(steps))
	for _, step := range steps {
		if Intensity(step, ceiling) <= 0 {
			continue
		}
		entries = append(entries, LegendEntry{Value: step, Color: s.ColorFor(step, ceiling)})
	}
	return entries
}
