package domain

import (
	"errors"
	"fmt"
)

// Category selects which statistic the map shows.
type Category string

const (
	CategoryDanger  Category = "Gefahrenstufe"
	CategoryProblem Category = "Lawinenprobleme"
)

// AllValue selects the aggregate pie-chart view instead of a single metric.
const AllValue = "alle"

// Filter is the active selection of the filter control.
type Filter struct {
	Category Category `json:"category"`
	Value    string   `json:"value"`
}

// DefaultFilter is the selection the map starts with.
var DefaultFilter = Filter{Category: CategoryDanger, Value: AllValue}

// IsAggregate reports whether the filter selects the aggregate view.
func (f Filter) IsAggregate() bool {
	return f.Value == AllValue
}

// WithCategory switches category. The value resets to AllValue because values of
// one category mean nothing in the other.
func (f Filter) WithCategory(c Category) Filter {
	if c == f.Category {
		return f
	}
	return Filter{Category: c, Value: AllValue}
}

// MetricKey returns the count key the filter selects: the danger level itself, or
// the dataset key of a problem label. Aggregate and unmapped values have no key.
func (f Filter) MetricKey() (string, bool) {
	if f.Value == "" || f.IsAggregate() {
		return "", false
	}
	switch f.Category {
	case CategoryDanger:
		return f.Value, true
	case CategoryProblem:
		key, ok := ProblemKeyForLabel(f.Value)
		return string(key), ok
	default:
		return "", false
	}
}

// counts picks the count map of r the filter's category reads from.
func (f Filter) counts(r *RegionSummary) map[string]int {
	if f.Category == CategoryProblem {
		return r.AvalancheProblemCounts
	}
	return r.RatingCounts
}

var (
	ErrUnknownCategory = errors.New("unknown filter category")
	ErrUnknownValue    = errors.New("unknown filter value")
)

// Validate checks that the filter names an option the control offers.
func (f Filter) Validate() error {
	opts, ok := filterOptions[f.Category]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, f.Category)
	}
	for _, o := range opts {
		if o == f.Value {
			return nil
		}
	}
	return fmt.Errorf("%w: %q for %s", ErrUnknownValue, f.Value, f.Category)
}

var filterOptions = map[Category][]string{
	CategoryDanger: {AllValue, "1", "2", "3", "4", "5"},
	CategoryProblem: {
		AllValue,
		string(LabelTriebschnee),
		string(LabelAltschnee),
		string(LabelNeuschnee),
		string(LabelGleitschnee),
		string(LabelNassschnee),
	},
}

// FilterOptions lists the selectable values of a category, AllValue first.
func FilterOptions(c Category) []string {
	opts := filterOptions[c]
	out := make([]string, len(opts))
	copy(out, opts)
	return out
}
