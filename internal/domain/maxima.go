package domain

// MaxCounts holds, per metric key, the highest count any region reached.
type MaxCounts map[string]int

// ComputeMaxima derives the per-key maxima over both count maps of every summary.
// Keys never observed are absent. Danger levels and problem keys do not overlap,
// so one flat map serves both.
func ComputeMaxima(summaries []RegionSummary) MaxCounts {
	maxima := make(MaxCounts)
	for i := range summaries {
		maxima.observe(summaries[i].RatingCounts)
		maxima.observe(summaries[i].AvalancheProblemCounts)
	}
	return maxima
}

func (m MaxCounts) observe(counts map[string]int) {
	for key, v := range counts {
		if cur, ok := m[key]; !ok || v > cur {
			m[key] = v
		}
	}
}

// Lookup returns the ceiling for key, defaulting to 1 when the key is absent or
// not positive so it is always safe as a divisor.
func (m MaxCounts) Lookup(key string) int {
	if v, ok := m[key]; ok && v > 0 {
		return v
	}
	return 1
}
