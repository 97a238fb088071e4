package domain

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		code     string
		expected SuperRegion
		ok       bool
	}{
		{"CH-4211", SuperCH, true},
		{"DE-BY-11", SuperDE, true},
		{"AT-07-14", SuperTirol, true},
		{"AT-0701", SuperTirol, true},
		{"AT-08-02", SuperVorarl, true},
		{"AT-05-18", SuperSalzbg, true},
		{"AT-02-01", SuperATOther, true},
		{"AT-06", SuperATOther, true},
		{"IT-32-BZ-01", SuperBozen, true},
		{"IT-32-TN-01", SuperITOther, true},
		{"IT-23-AO-01", SuperITOther, true},
		{"FR-01", "", false},
		{"SI1", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			sr, ok := Classify(tt.code)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, sr)
		})
	}
}

func TestAggregate_SumsByPrefix(t *testing.T) {
	summaries := []RegionSummary{
		{Code: "AT-0701", RatingCounts: map[string]int{"1": 3}},
		{Code: "AT-0702", RatingCounts: map[string]int{"1": 2}},
	}

	totals := Aggregate(summaries)
	assert.Equal(t, 5, totals[SuperTirol].DangerLevels["1"])
	assert.Equal(t, 0, totals[SuperATOther].DangerLevels["1"])
}

func TestAggregate_FullyPopulated(t *testing.T) {
	totals := Aggregate(nil)

	require.Len(t, totals, len(AllSuperRegions))
	for _, sr := range AllSuperRegions {
		tot, ok := totals[sr]
		require.True(t, ok, "missing %s", sr)
		for _, l := range DangerLevels {
			v, ok := tot.DangerLevels[string(l)]
			assert.True(t, ok)
			assert.Zero(t, v)
		}
		for _, p := range ProblemKeys {
			v, ok := tot.AvalancheProblems[string(p)]
			assert.True(t, ok)
			assert.Zero(t, v)
		}
	}
}

func TestAggregate_MatchesClassifiedSums(t *testing.T) {
	summaries := mockSummaries()
	totals := Aggregate(summaries)

	for _, sr := range AllSuperRegions {
		want := 0
		for _, r := range summaries {
			if got, ok := Classify(r.Code); ok && got == sr {
				want += sumCounts(r.RatingCounts)
			}
		}
		assert.Equal(t, want, sumCounts(totals[sr].DangerLevels), "super-region %s", sr)
	}

	assert.Equal(t, 12, totals[SuperTirol].AvalancheProblems["wind_drifted_snow"])
	assert.Equal(t, 5, totals[SuperBozen].AvalancheProblems["persistent_weak_layers"])
	assert.Equal(t, 2, totals[SuperITOther].DangerLevels["2"])
}

func TestAggregate_DropsUnclassified(t *testing.T) {
	totals := Aggregate([]RegionSummary{{Code: "FR-01", RatingCounts: map[string]int{"5": 99}}})

	for _, sr := range AllSuperRegions {
		assert.Zero(t, totals[sr].DangerLevels["5"])
	}
}

func TestAggregate_KeepsUnknownKeys(t *testing.T) {
	totals := Aggregate([]RegionSummary{
		{Code: "DE-BY-11", AvalancheProblemCounts: map[string]int{"cornices": 2}},
	})
	assert.Equal(t, 2, totals[SuperDE].AvalancheProblems["cornices"])
}

func TestAggregate_OrderIndependent(t *testing.T) {
	summaries := mockSummaries()
	want := Aggregate(summaries)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 5; i++ {
		shuffled := append([]RegionSummary(nil), summaries...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		if diff := cmp.Diff(want, Aggregate(shuffled)); diff != "" {
			t.Fatalf("aggregate depends on order (-want +got):\n%s", diff)
		}
	}
}

func TestAnchor(t *testing.T) {
	for _, sr := range AllSuperRegions {
		p, ok := Anchor(sr)
		require.True(t, ok, "anchor for %s", sr)
		assert.True(t, p.Lon() > 5 && p.Lon() < 17, "lon of %s", sr)
		assert.True(t, p.Lat() > 45 && p.Lat() < 48.5, "lat of %s", sr)
	}

	_, ok := Anchor("FR")
	assert.False(t, ok)
}

func TestPieSeries(t *testing.T) {
	totals := Aggregate(mockSummaries())

	t.Run("danger levels", func(t *testing.T) {
		slices := PieSeries(totals[SuperTirol], CategoryDanger)
		require.Len(t, slices, 5)
		assert.Equal(t, PieSlice{Label: "1", Value: 5, Color: "#ccffcc"}, slices[0])
		assert.Equal(t, PieSlice{Label: "3", Value: 4, Color: "#ff9900"}, slices[2])
		assert.Equal(t, Color("#9102ff"), slices[4].Color)
	})

	t.Run("problems", func(t *testing.T) {
		slices := PieSeries(totals[SuperTirol], CategoryProblem)
		require.Len(t, slices, 5)
		labels := make([]string, len(slices))
		for i, s := range slices {
			labels[i] = s.Label
		}
		assert.Equal(t, []string{"Triebschnee", "Neuschnee", "Nassschnee", "Gleitschnee", "Altschnee"}, labels)
		assert.Equal(t, 12, slices[0].Value)
		assert.Equal(t, 3, slices[1].Value)
	})
}

func TestOverlayGeoJSON(t *testing.T) {
	fc := OverlayGeoJSON(Aggregate(mockSummaries()), CategoryDanger)
	require.Len(t, fc.Features, len(AllSuperRegions))

	first := fc.Features[0]
	assert.Equal(t, string(SuperCH), first.Properties["super_region"])
	assert.Equal(t, "Point", first.Geometry.GeoJSONType())

	data, err := json.Marshal(fc)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"FeatureCollection"`)
	assert.Contains(t, string(data), `"IT-32-BZ"`)
}

func sumCounts(m map[string]int) int {
	total := 0
	for _, v := range m {
		total += v
	}
	return total
}
