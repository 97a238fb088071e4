package domain

import (
	"regexp"
	"strings"
)

// Layer is the vector-tile layer a polygon was drawn from.
type Layer int

const (
	LayerOther Layer = iota
	LayerOutline
	LayerMicroRegions
	LayerMicroRegionsElevation
)

var layerNames = map[Layer]string{
	LayerOther:                 "other",
	LayerOutline:               "outline",
	LayerMicroRegions:          "micro-regions",
	LayerMicroRegionsElevation: "micro-regions_elevation",
}

func (l Layer) String() string {
	if name, ok := layerNames[l]; ok {
		return name
	}
	return "other"
}

// ParseLayer maps a tile layer name to a Layer. Unknown names become LayerOther.
func ParseLayer(name string) Layer {
	switch name {
	case "outline":
		return LayerOutline
	case "micro-regions":
		return LayerMicroRegions
	case "micro-regions_elevation":
		return LayerMicroRegionsElevation
	default:
		return LayerOther
	}
}

// FeatureProperties are the attributes of one tile polygon as seen by the engine.
type FeatureProperties struct {
	ID        string
	Layer     Layer
	StartDate string
	EndDate   string
}

// isoDateRe accepts YYYY-MM-DD. Longer ISO timestamps are cut to their date part first.
var isoDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// NewFeatureProperties validates raw tile attributes. Malformed dates are treated as
// absent so a broken tile never hides or breaks the rest of the map.
func NewFeatureProperties(id, layer, startDate, endDate string) FeatureProperties {
	return FeatureProperties{
		ID:        strings.TrimSpace(id),
		Layer:     ParseLayer(strings.TrimSpace(layer)),
		StartDate: normalizeDate(startDate),
		EndDate:   normalizeDate(endDate),
	}
}

func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	if !isoDateRe.MatchString(s) {
		return ""
	}
	return s
}

// consideredPrefixes are the region id prefixes covered by the dataset.
var consideredPrefixes = []string{"AT", "CH", "DE", "IT-2", "IT-3", "IT-5"}

// IsConsidered reports whether a region id belongs to a country the map colors.
func IsConsidered(id string) bool {
	for _, p := range consideredPrefixes {
		if strings.HasPrefix(id, p) {
			return true
		}
	}
	return false
}
