package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntensity(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		max      int
		expected float64
	}{
		{"half", 5, 10, 0.5},
		{"equal", 10, 10, 1},
		{"clamped above max", 15, 10, 1},
		{"zero count", 0, 10, 0},
		{"negative count", -3, 10, 0},
		{"zero max positive count", 4, 0, 1},
		{"zero max zero count", 0, 0, 0},
		{"negative max", 2, -1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Intensity(tt.count, tt.max), 1e-9)
		})
	}
}

func TestColorFor_FineScale(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		max      int
		expected Color
	}{
		{"zero is no data", 0, 10, NoDataColor},
		{"lowest bucket", 1, 100, "#ffffcc"},
		{"bucket lower edge inclusive", 1, 10, "#ffeda0"},
		{"middle", 55, 100, "#fc4e2a"},
		{"top bucket", 95, 100, "#4d0019"},
		{"exactly max", 100, 100, "#4d0019"},
		{"above max", 300, 100, "#4d0019"},
		{"zero max", 3, 0, "#4d0019"},
		{"tiny intensity below first bucket", 1, 1_000_000, "#ffffcc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ColorFor(tt.count, tt.max))
		})
	}
}

func TestColorFor_CoarseScale(t *testing.T) {
	tests := []struct {
		count    int
		expected Color
	}{
		{0, NoDataColor},
		{10, "#ffffb2"},
		{25, "#fecc5c"},
		{49, "#fecc5c"},
		{50, "#fd8d3c"},
		{75, "#e31a1c"},
		{100, "#e31a1c"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, CoarseScale.ColorFor(tt.count, 100), "count %d", tt.count)
	}
}

func TestColorFor_Monotonic(t *testing.T) {
	for _, scale := range []Scale{FineScale, CoarseScale} {
		t.Run(scale.Name, func(t *testing.T) {
			const maxCount = 37
			prev := -1
			for count := 1; count <= maxCount+5; count++ {
				idx := bucketIndex(t, scale, scale.ColorFor(count, maxCount))
				assert.GreaterOrEqual(t, idx, prev, "count %d", count)
				prev = idx
			}
		})
	}
}

func TestScaleBucketsPartition(t *testing.T) {
	for _, scale := range []Scale{FineScale, CoarseScale} {
		t.Run(scale.Name, func(t *testing.T) {
			require.NotEmpty(t, scale.Buckets)
			assert.InDelta(t, 1.0, scale.Buckets[len(scale.Buckets)-1].Max, 1e-12)
			for i := 1; i < len(scale.Buckets); i++ {
				assert.InDelta(t, scale.Buckets[i-1].Max, scale.Buckets[i].Min, 1e-12, "gap before bucket %d", i)
				assert.Less(t, scale.Buckets[i].Min, scale.Buckets[i].Max)
			}
		})
	}
}

func TestScaleByName(t *testing.T) {
	assert.Equal(t, CoarseScale.Name, ScaleByName("coarse").Name)
	assert.Equal(t, FineScale.Name, ScaleByName("fine").Name)
	assert.Equal(t, FineScale.Name, ScaleByName("").Name)
}

func TestLegend(t *testing.T) {
	entries := Legend(FineScale, DefaultLegendSteps, DefaultLegendCeiling)

	require.Len(t, entries, len(DefaultLegendSteps)-1, "step 0 has no bucket")
	assert.Equal(t, LegendEntry{Value: 20, Color: "#ffffcc"}, entries[0])
	assert.Equal(t, LegendEntry{Value: 200, Color: "#4d0019"}, entries[len(entries)-1])
}

func bucketIndex(t *testing.T, s Scale, c Color) int {
	t.Helper()
	for i, b := range s.Buckets {
		if b.Color == c {
			return i
		}
	}
	t.Fatalf("color %s not in scale %s", c, s.Name)
	return -1
}
