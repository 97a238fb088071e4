// Command validate performs data integrity checks on a region_summary.json file
// before it is published: schema and count sanity, code uniqueness, super-region
// coverage, and consistency of the derived maxima and super-region totals.
//
// Usage:
//
//	go run ./cmd/validate -dataset data/mock/region_summary.json [-strict]
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/couchcryptid/avalanche-stats/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// rawRecord mirrors the dataset before normalization so negative counts and
// missing maps are still visible.
type rawRecord struct {
	Code                   string          `json:"code"`
	Name                   string          `json:"name"`
	RatingCounts           *map[string]int `json:"rating_counts"`
	AvalancheProblemCounts *map[string]int `json:"avalanche_problem_counts"`
}

func main() {
	dataset := flag.String("dataset", "", "path to region_summary.json")
	strict := flag.Bool("strict", false, "fail on regions outside the considered countries")
	flag.Parse()

	if *dataset == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*dataset, *strict); code != 0 {
		os.Exit(code)
	}
}

func run(path string, strict bool) int {
	fmt.Println("=== Region Summary Integrity Validation ===")
	fmt.Println()

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read dataset: %v\n", err)
		return 1
	}
	var raw []rawRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: decode dataset: %v\n", err)
		return 1
	}
	summaries, err := domain.ParseRegionSummaries(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateSchema(raw),
		validateUniqueness(summaries),
		validateCoverage(summaries, strict),
		validateDerived(summaries),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d\n", len(summaries))
	printSuperRegions(domain.Aggregate(summaries))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phases ──

func validateSchema(raw []rawRecord) *phase {
	p := &phase{name: "Phase 1: Schema and counts"}
	known := make(map[string]bool, len(domain.ProblemKeys))
	for _, k := range domain.ProblemKeys {
		known[string(k)] = true
	}

	for i := range raw {
		r := &raw[i]
		if r.Code == "" {
			p.errorf("record %d: empty code", i)
			continue
		}
		if r.RatingCounts == nil {
			p.errorf("%s: missing rating_counts", r.Code)
		} else {
			for level, n := range *r.RatingCounts {
				if !domain.IsDangerLevel(level) {
					p.errorf("%s: unknown danger level %q", r.Code, level)
				}
				if n < 0 {
					p.errorf("%s: negative count %d for level %s", r.Code, n, level)
				}
			}
		}
		if r.AvalancheProblemCounts == nil {
			p.errorf("%s: missing avalanche_problem_counts", r.Code)
		} else {
			for key, n := range *r.AvalancheProblemCounts {
				if !known[key] {
					p.errorf("%s: unknown avalanche problem %q", r.Code, key)
				}
				if n < 0 {
					p.errorf("%s: negative count %d for problem %s", r.Code, n, key)
				}
			}
		}
	}
	return p
}

func validateUniqueness(summaries []domain.RegionSummary) *phase {
	p := &phase{name: "Phase 2: Unique region codes"}
	for _, code := range domain.Duplicates(summaries) {
		p.errorf("duplicate code %s: the last record wins", code)
	}
	return p
}

func validateCoverage(summaries []domain.RegionSummary, strict bool) *phase {
	p := &phase{name: "Phase 3: Super-region coverage"}
	var ignored []string
	for i := range summaries {
		code := summaries[i].Code
		_, classified := domain.Classify(code)
		switch {
		case domain.IsConsidered(code) && !classified:
			p.errorf("%s: considered on the map but in no super-region", code)
		case !domain.IsConsidered(code):
			ignored = append(ignored, code)
		}
	}
	if len(ignored) > 0 {
		fmt.Printf("Regions outside the considered countries (never drawn): %v\n", ignored)
		if strict {
			for _, code := range ignored {
				p.errorf("%s: outside the considered countries", code)
			}
		}
	}
	return p
}

func validateDerived(summaries []domain.RegionSummary) *phase {
	p := &phase{name: "Phase 4: Maxima and super-region totals"}
	maxima := domain.ComputeMaxima(summaries)
	totals := domain.Aggregate(summaries)

	classifiedSums := map[string]int{}
	for i := range summaries {
		r := &summaries[i]
		for _, counts := range []map[string]int{r.RatingCounts, r.AvalancheProblemCounts} {
			for key, n := range counts {
				if n > maxima[key] {
					p.errorf("%s: %s=%d exceeds maximum %d", r.Code, key, n, maxima[key])
				}
			}
		}
		if _, ok := domain.Classify(r.Code); !ok {
			continue
		}
		for key, n := range r.RatingCounts {
			classifiedSums["rating:"+key] += n
		}
		for key, n := range r.AvalancheProblemCounts {
			classifiedSums["problem:"+key] += n
		}
	}

	superSums := map[string]int{}
	for _, t := range totals {
		for key, n := range t.DangerLevels {
			superSums["rating:"+key] += n
		}
		for key, n := range t.AvalancheProblems {
			superSums["problem:"+key] += n
		}
	}
	for key, n := range classifiedSums {
		if superSums[key] != n {
			p.errorf("%s: super-region total %d != region sum %d", key, superSums[key], n)
		}
	}
	if len(totals) != len(domain.AllSuperRegions) {
		p.errorf("expected %d super-regions, got %d", len(domain.AllSuperRegions), len(totals))
	}
	return p
}

func printSuperRegions(totals domain.SuperRegionTotals) {
	fmt.Println("Super-region totals:")
	for _, sr := range domain.AllSuperRegions {
		t := totals[sr]
		fmt.Printf("  %-9s %s | %s\n", sr, formatCounts(t.DangerLevels), formatCounts(t.AvalancheProblems))
	}
}

func formatCounts(m map[string]int) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := ""
	for i, k := range keys {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%s=%d", k, m[k])
	}
	return out
}
