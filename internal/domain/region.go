package domain

import (
	"encoding/json"
	"fmt"
)

// DangerLevel is a European avalanche danger rating, "1" (low) through "5" (very high).
// Levels are kept as strings because they key the rating_counts object in the dataset.
type DangerLevel string

const (
	DangerLow          DangerLevel = "1"
	DangerModerate     DangerLevel = "2"
	DangerConsiderable DangerLevel = "3"
	DangerHigh         DangerLevel = "4"
	DangerVeryHigh     DangerLevel = "5"
)

// DangerLevels lists all ratings in ascending order.
var DangerLevels = []DangerLevel{DangerLow, DangerModerate, DangerConsiderable, DangerHigh, DangerVeryHigh}

// IsDangerLevel reports whether s is one of the five rating literals.
func IsDangerLevel(s string) bool {
	switch DangerLevel(s) {
	case DangerLow, DangerModerate, DangerConsiderable, DangerHigh, DangerVeryHigh:
		return true
	default:
		return false
	}
}

// ProblemKey identifies an avalanche problem as it appears in avalanche_problem_counts.
type ProblemKey string

const (
	ProblemWindDriftedSnow      ProblemKey = "wind_drifted_snow"
	ProblemPersistentWeakLayers ProblemKey = "persistent_weak_layers"
	ProblemNewSnow              ProblemKey = "new_snow"
	ProblemGlidingSnow          ProblemKey = "gliding_snow"
	ProblemWetSnow              ProblemKey = "wet_snow"
)

// ProblemKeys lists all problem keys in dataset order.
var ProblemKeys = []ProblemKey{
	ProblemWindDriftedSnow,
	ProblemPersistentWeakLayers,
	ProblemNewSnow,
	ProblemGlidingSnow,
	ProblemWetSnow,
}

// ProblemLabel is the German display label shown in the filter control.
type ProblemLabel string

const (
	LabelTriebschnee ProblemLabel = "Triebschnee"
	LabelAltschnee   ProblemLabel = "Altschnee"
	LabelNeuschnee   ProblemLabel = "Neuschnee"
	LabelGleitschnee ProblemLabel = "Gleitschnee"
	LabelNassschnee  ProblemLabel = "Nassschnee"
)

var (
	labelToProblem = map[ProblemLabel]ProblemKey{
		LabelTriebschnee: ProblemWindDriftedSnow,
		LabelAltschnee:   ProblemPersistentWeakLayers,
		LabelNeuschnee:   ProblemNewSnow,
		LabelGleitschnee: ProblemGlidingSnow,
		LabelNassschnee:  ProblemWetSnow,
	}
	problemToLabel = invertLabels(labelToProblem)
)

func invertLabels(m map[ProblemLabel]ProblemKey) map[ProblemKey]ProblemLabel {
	out := make(map[ProblemKey]ProblemLabel, len(m))
	for label, key := range m {
		out[key] = label
	}
	return out
}

// ProblemKeyForLabel maps a display label to its dataset key.
func ProblemKeyForLabel(label string) (ProblemKey, bool) {
	key, ok := labelToProblem[ProblemLabel(label)]
	return key, ok
}

// LabelForProblem maps a dataset key back to its display label.
func LabelForProblem(key ProblemKey) (ProblemLabel, bool) {
	label, ok := problemToLabel[key]
	return label, ok
}

// RegionSummary holds the bulletin statistics of one micro-region for the season.
type RegionSummary struct {
	Code                   string         `json:"code"`
	Name                   string         `json:"name"`
	RatingCounts           map[string]int `json:"rating_counts"`
	AvalancheProblemCounts map[string]int `json:"avalanche_problem_counts"`
}

// RatingCount returns how often level was issued for the region.
func (r *RegionSummary) RatingCount(level string) int {
	return r.RatingCounts[level]
}

// ProblemCount returns how often the problem was reported for the region.
func (r *RegionSummary) ProblemCount(key ProblemKey) int {
	return r.AvalancheProblemCounts[string(key)]
}

// ParseRegionSummaries decodes a region_summary.json payload. Records with missing
// count objects get empty maps and negative counts are dropped, so a single bad
// record never fails the whole dataset.
func ParseRegionSummaries(data []byte) ([]RegionSummary, error) {
	var summaries []RegionSummary
	if err := json.Unmarshal(data, &summaries); err != nil {
		return nil, fmt.Errorf("parse region summaries: %w", err)
	}
	for i := range summaries {
		summaries[i] = normalizeSummary(summaries[i])
	}
	return summaries, nil
}

func normalizeSummary(r RegionSummary) RegionSummary {
	r.RatingCounts = cleanCounts(r.RatingCounts)
	r.AvalancheProblemCounts = cleanCounts(r.AvalancheProblemCounts)
	return r
}

func cleanCounts(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		if v < 0 {
			continue
		}
		out[k] = v
	}
	return out
}

// Index maps region codes to their summary for constant-time lookup.
type Index map[string]*RegionSummary

// NewIndex builds an Index. When a code appears more than once the last record wins.
func NewIndex(summaries []RegionSummary) Index {
	idx := make(Index, len(summaries))
	for i := range summaries {
		idx[summaries[i].Code] = &summaries[i]
	}
	return idx
}

// Lookup returns the summary for code. A nil Index behaves as empty.
func (idx Index) Lookup(code string) (*RegionSummary, bool) {
	r, ok := idx[code]
	return r, ok
}

// Duplicates returns the codes that occur more than once, in first-seen order.
func Duplicates(summaries []RegionSummary) []string {
	seen := make(map[string]int, len(summaries))
	var dups []string
	for _, r := range summaries {
		seen[r.Code]++
		if seen[r.Code] == 2 {
			dups = append(dups, r.Code)
		}
	}
	return dups
}
