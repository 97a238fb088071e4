package domain

import (
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// SuperRegion is a coarse grouping of micro-regions drawn as one pie chart.
type SuperRegion string

const (
	SuperCH      SuperRegion = "CH"
	SuperDE      SuperRegion = "DE"
	SuperTirol   SuperRegion = "AT-07"
	SuperVorarl  SuperRegion = "AT-08"
	SuperSalzbg  SuperRegion = "AT-05"
	SuperATOther SuperRegion = "AT-other"
	SuperBozen   SuperRegion = "IT-32-BZ"
	SuperITOther SuperRegion = "IT-other"
)

// AllSuperRegions lists every super-region in overlay order.
var AllSuperRegions = []SuperRegion{
	SuperCH, SuperDE, SuperTirol, SuperVorarl, SuperSalzbg, SuperATOther, SuperBozen, SuperITOther,
}

// anchors are the lon/lat positions of the pie charts.
var anchors = map[SuperRegion]orb.Point{
	SuperCH:      {8.2275, 46.8182},  // middle of Switzerland
	SuperDE:      {11.3833, 47.6167}, // south of Bad Tölz
	SuperTirol:   {11.4, 47.2683},    // Innsbruck
	SuperVorarl:  {9.8167, 47.1667},  // Bludenz
	SuperSalzbg:  {12.8, 47.3167},    // Zell am See
	SuperATOther: {15.45, 47.0667},   // Graz
	SuperBozen:   {11.35, 46.5},      // Bozen
	SuperITOther: {10.8333, 46.0833}, // north of Lake Garda
}

// Anchor returns the fixed map position of sr.
func Anchor(sr SuperRegion) (orb.Point, bool) {
	p, ok := anchors[sr]
	return p, ok
}

// classification is evaluated top to bottom; the first matching prefix wins.
var classification = []struct {
	prefix string
	region SuperRegion
}{
	{"CH", SuperCH},
	{"DE", SuperDE},
	{"AT-07", SuperTirol},
	{"AT-08", SuperVorarl},
	{"AT-05", SuperSalzbg},
	{"AT", SuperATOther},
	{"IT-32-BZ", SuperBozen},
	{"IT", SuperITOther},
}

// Classify assigns a region code to its super-region.
func Classify(code string) (SuperRegion, bool) {
	for _, c := range classification {
		if strings.HasPrefix(code, c.prefix) {
			return c.region, true
		}
	}
	return "", false
}

// Totals accumulates the counts of every micro-region in one super-region.
type Totals struct {
	DangerLevels      map[string]int `json:"dangerLevels"`
	AvalancheProblems map[string]int `json:"avalancheProblems"`
}

func newTotals() Totals {
	t := Totals{
		DangerLevels:      make(map[string]int, len(DangerLevels)),
		AvalancheProblems: make(map[string]int, len(ProblemKeys)),
	}
	for _, l := range DangerLevels {
		t.DangerLevels[string(l)] = 0
	}
	for _, p := range ProblemKeys {
		t.AvalancheProblems[string(p)] = 0
	}
	return t
}

// SuperRegionTotals maps every super-region to its totals.
type SuperRegionTotals map[SuperRegion]Totals

// Aggregate sums region counts into super-regions. The result always holds all
// super-regions with every known key, zero-filled. Codes matching no rule are
// skipped.
func Aggregate(summaries []RegionSummary) SuperRegionTotals {
	out := make(SuperRegionTotals, len(AllSuperRegions))
	for _, sr := range AllSuperRegions {
		out[sr] = newTotals()
	}
	for i := range summaries {
		sr, ok := Classify(summaries[i].Code)
		if !ok {
			continue
		}
		t := out[sr]
		for level, n := range summaries[i].RatingCounts {
			t.DangerLevels[level] += n
		}
		for problem, n := range summaries[i].AvalancheProblemCounts {
			t.AvalancheProblems[problem] += n
		}
	}
	return out
}

// PieSlice is one segment of a super-region pie chart.
type PieSlice struct {
	Label string `json:"label"`
	Value int    `json:"value"`
	Color Color  `json:"color"`
}

var (
	dangerLevelColors = []Color{"#ccffcc", "#ffff00", "#ff9900", "#ff0000", "#9102ff"}

	// pieProblemOrder is the segment order of the problem pie.
	pieProblemOrder = []ProblemKey{
		ProblemWindDriftedSnow,
		ProblemNewSnow,
		ProblemWetSnow,
		ProblemGlidingSnow,
		ProblemPersistentWeakLayers,
	}
	avalancheProblemColors = []Color{"#3366ff", "#ff9900", "#33cc33", "#ff3300", "#cc00cc"}
)

// PieSeries returns the ordered slices of one super-region's pie for category.
func PieSeries(t Totals, category Category) []PieSlice {
	if category == CategoryProblem {
		slices := make([]PieSlice, len(pieProblemOrder))
		for i, key := range pieProblemOrder {
			label, _ := LabelForProblem(key)
			slices[i] = PieSlice{Label: string(label), Value: t.AvalancheProblems[string(key)], Color: avalancheProblemColors[i]}
		}
		return slices
	}
	slices := make([]PieSlice, len(DangerLevels))
	for i, level := range DangerLevels {
		slices[i] = PieSlice{Label: string(level), Value: t.DangerLevels[string(level)], Color: dangerLevelColors[i]}
	}
	return slices
}

// OverlayGeoJSON renders the aggregate view as one point feature per super-region
// anchor carrying its pie slices.
func OverlayGeoJSON(totals SuperRegionTotals, category Category) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, sr := range AllSuperRegions {
		t, ok := totals[sr]
		if !ok {
			continue
		}
		f := geojson.NewFeature(anchors[sr])
		f.ID = string(sr)
		f.Properties["super_region"] = string(sr)
		f.Properties["category"] = string(category)
		f.Properties["slices"] = PieSeries(t, category)
		fc.Append(f)
	}
	return fc
}
