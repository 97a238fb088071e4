// Command genmock writes a deterministic region_summary.json fixture covering
// every super-region, for local runs and the test suites. It runs the generated
// records through the domain package so the printed stats match what the service
// will compute.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock/region_summary.json -seed 42
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"

	"github.com/couchcryptid/avalanche-stats/internal/domain"
)

// regionGroup is one family of micro-region codes: prefix-01 .. prefix-N.
type regionGroup struct {
	prefix string
	name   string
	count  int
}

var groups = []regionGroup{
	{prefix: "AT-02", name: "Kärnten", count: 6},
	{prefix: "AT-05", name: "Salzburg", count: 8},
	{prefix: "AT-06", name: "Steiermark", count: 6},
	{prefix: "AT-07", name: "Tirol", count: 12},
	{prefix: "AT-08", name: "Vorarlberg", count: 6},
	{prefix: "CH", name: "Schweiz", count: 10},
	{prefix: "DE-BY", name: "Bayern", count: 6},
	{prefix: "IT-32-BZ", name: "Südtirol", count: 8},
	{prefix: "IT-32-TN", name: "Trentino", count: 6},
	{prefix: "IT-23", name: "Aosta", count: 4},
	{prefix: "IT-25", name: "Lombardia", count: 4},
}

// foreign codes are outside every considered prefix and every super-region.
var foreign = []regionGroup{
	{prefix: "FR", name: "Savoie", count: 2},
	{prefix: "SI", name: "Julijske Alpe", count: 2},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for region_summary.json")
	seed := flag.Uint64("seed", 42, "random seed; equal seeds give identical files")
	days := flag.Int("days", 120, "bulletin days per season; bounds every count")
	withForeign := flag.Bool("foreign", false, "add regions outside the considered countries")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if *days <= 0 {
		return fmt.Errorf("-days must be positive")
	}

	all := groups
	if *withForeign {
		all = append(append([]regionGroup{}, groups...), foreign...)
	}
	summaries := generate(rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15)), all, *days)

	if err := writeJSON(*out, summaries); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote %d regions: %s", len(summaries), *out)

	printStats(summaries)
	return nil
}

func generate(rng *rand.Rand, gs []regionGroup, days int) []domain.RegionSummary {
	var out []domain.RegionSummary //nolint:prealloc // size depends on groups
	for _, g := range gs {
		for i := 1; i <= g.count; i++ {
			code := regionCode(g.prefix, i)
			out = append(out, domain.RegionSummary{
				Code:                   code,
				Name:                   fmt.Sprintf("%s %d", g.name, i),
				RatingCounts:           ratingCounts(rng, days),
				AvalancheProblemCounts: problemCounts(rng, days),
			})
		}
	}
	return out
}

// regionCode follows the dataset convention: Swiss codes are four digits,
// everything else uses a two-digit suffix.
func regionCode(prefix string, i int) string {
	if prefix == "CH" {
		return fmt.Sprintf("CH-%d", 1110+i)
	}
	return fmt.Sprintf("%s-%02d", prefix, i)
}

// ratingCounts spreads the season over danger levels with a bias toward the
// middle levels, like real seasons. Levels that never occur are omitted.
func ratingCounts(rng *rand.Rand, days int) map[string]int {
	weights := []int{20, 35, 30, 12, 3}
	counts := make(map[string]int)
	for range days {
		level := pick(rng, weights)
		counts[string(domain.DangerLevels[level])]++
	}
	return counts
}

// problemCounts draws each problem independently; a day can report several.
func problemCounts(rng *rand.Rand, days int) map[string]int {
	probabilities := map[domain.ProblemKey]float64{
		domain.ProblemWindDriftedSnow:      0.55,
		domain.ProblemNewSnow:              0.30,
		domain.ProblemPersistentWeakLayers: 0.25,
		domain.ProblemWetSnow:              0.20,
		domain.ProblemGlidingSnow:          0.10,
	}
	counts := make(map[string]int)
	for _, key := range domain.ProblemKeys {
		n := 0
		for range days {
			if rng.Float64() < probabilities[key] {
				n++
			}
		}
		if n > 0 {
			counts[string(key)] = n
		}
	}
	return counts
}

func pick(rng *rand.Rand, weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	r := rng.IntN(total)
	for i, w := range weights {
		if r < w {
			return i
		}
		r -= w
	}
	return len(weights) - 1
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(summaries []domain.RegionSummary) {
	maxima := domain.ComputeMaxima(summaries)
	totals := domain.Aggregate(summaries)

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Regions: %d\n", len(summaries))

	keys := make([]string, 0, len(maxima))
	for k := range maxima {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Println("Maxima:")
	for _, k := range keys {
		fmt.Printf("  %s=%d\n", k, maxima[k])
	}

	fmt.Println("Super-regions:")
	for _, sr := range domain.AllSuperRegions {
		t := totals[sr]
		fmt.Printf("  %-9s levels=%v problems=%v\n", sr, t.DangerLevels, t.AvalancheProblems)
	}
}
