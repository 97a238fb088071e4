package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

var countryColors = map[string]Color{
	"AT": "#ff6b6b",
	"CH": "#4ecdc4",
	"DE": "#ffe66d",
	"IT": "#1a535c",
	"FR": "#7cb518",
	"SI": "#f7b801",
	"LI": "#ff9f1c",
}

// countryShifts brighten or darken sub-regions so they stand out from their
// country. Matching is by prefix and every matching entry applies.
var countryShifts = []struct {
	prefix  string
	percent float64
}{
	{"AT-07", 0.4},
	{"AT-08", -0.4},
	{"AT-05", -0.6},
	{"IT-32-BZ", 0.4},
}

// CountryFill returns the aggregate-view tint for a region id.
func CountryFill(id string) (Color, bool) {
	if len(id) < 2 {
		return "", false
	}
	c, ok := countryColors[id[:2]]
	if !ok {
		return "", false
	}
	for _, s := range countryShifts {
		if strings.HasPrefix(id, s.prefix) {
			c = ShiftColor(c, s.percent)
		}
	}
	return c, true
}

// ShiftColor scales each RGB channel by (1 + percent), clamped to [0, 255].
// Invalid input is returned unchanged.
func ShiftColor(c Color, percent float64) Color {
	s := string(c)
	if len(s) != 7 || s[0] != '#' {
		return c
	}
	var rgb [3]float64
	for i := range rgb {
		v, err := strconv.ParseUint(s[1+2*i:3+2*i], 16, 8)
		if err != nil {
			return c
		}
		ch := float64(v)
		rgb[i] = math.Min(255, math.Max(0, ch+ch*percent))
	}
	return Color(fmt.Sprintf("#%02x%02x%02x",
		int(math.Round(rgb[0])), int(math.Round(rgb[1])), int(math.Round(rgb[2]))))
}
