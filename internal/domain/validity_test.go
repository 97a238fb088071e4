package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestIsCurrent(t *testing.T) {
	bounded := FeatureProperties{StartDate: "2024-01-01", EndDate: "2024-06-01"}

	tests := []struct {
		name     string
		props    FeatureProperties
		today    string
		expected bool
	}{
		{"inside range", bounded, "2024-03-01", true},
		{"on start date", bounded, "2024-01-01", true},
		{"on end date is exclusive", bounded, "2024-06-01", false},
		{"before start", bounded, "2023-12-31", false},
		{"after end", bounded, "2025-01-01", false},
		{"no bounds", FeatureProperties{}, "2024-03-01", true},
		{"open start", FeatureProperties{EndDate: "2024-06-01"}, "1999-01-01", true},
		{"open end", FeatureProperties{StartDate: "2024-01-01"}, "2099-01-01", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsCurrent(tt.props, tt.today))
		})
	}
}

func TestToday(t *testing.T) {
	t.Run("explicit clock", func(t *testing.T) {
		c := clockwork.NewFakeClockAt(time.Date(2024, 2, 29, 23, 30, 0, 0, time.UTC))
		assert.Equal(t, "2024-02-29", Today(c))
	})

	t.Run("converts to UTC", func(t *testing.T) {
		cet := time.FixedZone("CET", 3600)
		c := clockwork.NewFakeClockAt(time.Date(2024, 3, 1, 0, 30, 0, 0, cet))
		assert.Equal(t, "2024-02-29", Today(c))
	})

	t.Run("package clock", func(t *testing.T) {
		SetClock(clockwork.NewFakeClockAt(time.Date(2023, 12, 24, 12, 0, 0, 0, time.UTC)))
		defer SetClock(nil)
		assert.Equal(t, "2023-12-24", Today(nil))
	})
}

func TestNewFeatureProperties(t *testing.T) {
	tests := []struct {
		name      string
		id        string
		layer     string
		start     string
		end       string
		wantLayer Layer
		wantStart string
		wantEnd   string
	}{
		{"micro region", "AT-07-01", "micro-regions", "2024-01-01", "2024-06-01", LayerMicroRegions, "2024-01-01", "2024-06-01"},
		{"outline", "AT", "outline", "", "", LayerOutline, "", ""},
		{"elevation", "AT-07-01", "micro-regions_elevation", "", "", LayerMicroRegionsElevation, "", ""},
		{"unknown layer", "AT-07-01", "labels", "", "", LayerOther, "", ""},
		{"timestamp cut to date", "CH-1111", "micro-regions", "2024-01-01T00:00:00Z", "", LayerMicroRegions, "2024-01-01", ""},
		{"malformed date dropped", "CH-1111", "micro-regions", "yesterday", "2024-13", LayerMicroRegions, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewFeatureProperties(tt.id, tt.layer, tt.start, tt.end)
			assert.Equal(t, tt.id, p.ID)
			assert.Equal(t, tt.wantLayer, p.Layer)
			assert.Equal(t, tt.wantStart, p.StartDate)
			assert.Equal(t, tt.wantEnd, p.EndDate)
		})
	}
}

func TestLayerString(t *testing.T) {
	assert.Equal(t, "micro-regions", LayerMicroRegions.String())
	assert.Equal(t, "outline", LayerOutline.String())
	assert.Equal(t, "other", Layer(42).String())
}

func TestIsConsidered(t *testing.T) {
	tests := []struct {
		id       string
		expected bool
	}{
		{"AT-07-01", true},
		{"CH-4211", true},
		{"DE-BY-11", true},
		{"IT-32-BZ-01", true},
		{"IT-21-VCO-01", true},
		{"IT-57-MC-01", true},
		{"IT-10-01", false},
		{"FR-01", false},
		{"SI1", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsConsidered(tt.id))
		})
	}
}
