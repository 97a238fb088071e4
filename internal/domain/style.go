package domain

import "fmt"

// StyleKind tells the renderer how to draw a feature.
type StyleKind string

const (
	// StyleSuppressed draws nothing; the base map shows through.
	StyleSuppressed StyleKind = "suppressed"
	// StyleOutline draws only the country border stroke.
	StyleOutline StyleKind = "outline"
	// StyleDefault is the neutral fill for regions without a single-metric value.
	StyleDefault StyleKind = "default"
	// StyleFilled carries a scale color for the selected metric.
	StyleFilled StyleKind = "filled"
)

// Style is the visual result for one feature.
type Style struct {
	Kind        StyleKind `json:"kind"`
	Fill        Color     `json:"fill,omitempty"`
	FillOpacity float64   `json:"fill_opacity,omitempty"`
	Stroke      Color     `json:"stroke,omitempty"`
	StrokeWidth float64   `json:"stroke_width,omitempty"`
	Label       string    `json:"label,omitempty"`
	Count       int       `json:"count,omitempty"`
	Max         int       `json:"max,omitempty"`
}

const strokeColor Color = "#000000"

var (
	suppressedStyle = Style{Kind: StyleSuppressed}
	outlineStyle    = Style{Kind: StyleOutline, Stroke: strokeColor, StrokeWidth: 2}
	defaultStyle    = Style{Kind: StyleDefault, Fill: NoDataColor, FillOpacity: 0.1, Stroke: strokeColor, StrokeWidth: 1}
)

// ResolveOptions tune presentation without changing which features are drawn.
type ResolveOptions struct {
	// Scale colors filled features. The zero value uses FineScale.
	Scale Scale
	// CountryTint fills the aggregate view with per-country colors instead of the
	// neutral default.
	CountryTint bool
}

// ResolveStyle resolves a feature style with default options.
func ResolveStyle(props FeatureProperties, f Filter, idx Index, maxima MaxCounts, today string) Style {
	return Resolve(props, f, idx, maxima, today, ResolveOptions{})
}

// Resolve maps one tile feature and the active filter to a style. It is total:
// unknown ids, layers, filters and keys degrade to suppression or the neutral
// default.
func Resolve(props FeatureProperties, f Filter, idx Index, maxima MaxCounts, today string, opts ResolveOptions) Style {
	if props.Layer == LayerOutline {
		return outlineStyle
	}
	if props.Layer != LayerMicroRegions || !IsCurrent(props, today) || !IsConsidered(props.ID) {
		return suppressedStyle
	}

	if f.IsAggregate() && opts.CountryTint {
		if fill, ok := CountryFill(props.ID); ok {
			return Style{Kind: StyleDefault, Fill: fill, FillOpacity: 1, Stroke: strokeColor, StrokeWidth: 1}
		}
	}

	region, ok := idx.Lookup(props.ID)
	if !ok || f.IsAggregate() {
		return defaultStyle
	}

	key, ok := f.MetricKey()
	if !ok {
		return suppressedStyle
	}
	count := f.counts(region)[key]
	if count <= 0 {
		return suppressedStyle
	}
	maxCount := maxima.Lookup(key)

	scale := opts.Scale
	if len(scale.Buckets) == 0 {
		scale = FineScale
	}
	return Style{
		Kind:        StyleFilled,
		Fill:        scale.ColorFor(count, maxCount),
		FillOpacity: 0.8,
		Stroke:      strokeColor,
		StrokeWidth: 1,
		Label:       fmt.Sprintf("%d/%d", count, maxCount),
		Count:       count,
		Max:         maxCount,
	}
}
