// Package session scopes per-map caches to one map session. A session remembers
// where features are (for label placement) and the styles it already resolved, and
// drops both whenever the dataset generation or the filter changes.
package session

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/couchcryptid/avalanche-stats/internal/domain"
	"github.com/couchcryptid/avalanche-stats/internal/observability"
	"github.com/couchcryptid/avalanche-stats/internal/snapshot"
	"github.com/paulmach/orb"
)

// Session is the cache owned by one open map.
type Session struct {
	id      string
	opts    domain.ResolveOptions
	metrics *observability.Metrics

	mu         sync.Mutex
	filter     domain.Filter
	generation uint64
	styles     *styleCache
	extents    map[string]extent
	lastUsed   time.Time
}

// extent is where a feature was seen and the tile attributes it was seen with.
type extent struct {
	props  domain.FeatureProperties
	center orb.Point
}

func newSession(id string, f domain.Filter, opts domain.ResolveOptions, cacheSize int, metrics *observability.Metrics, now time.Time) *Session {
	return &Session{
		id:       id,
		opts:     opts,
		metrics:  metrics,
		filter:   f,
		styles:   newStyleCache(cacheSize),
		extents:  make(map[string]extent),
		lastUsed: now,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Filter returns the active filter.
func (s *Session) Filter() domain.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// SetFilter changes the active filter and drops everything derived from the old one.
func (s *Session) SetFilter(f domain.Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f == s.filter {
		return
	}
	s.filter = f
	s.invalidate()
}

// RecordExtent stores the center of a feature's bounding box the first time the
// feature is seen on a tile of snap, together with its tile attributes.
func (s *Session) RecordExtent(snap *snapshot.Snapshot, props domain.FeatureProperties, b orb.Bound) {
	if props.ID == "" || b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sync(snap)
	if _, ok := s.extents[props.ID]; ok {
		return
	}
	s.extents[props.ID] = extent{props: props, center: b.Center()}
}

// Center returns the recorded label position of a feature.
func (s *Session) Center(id string) (orb.Point, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.extents[id]
	return e.center, ok
}

// Resolve returns the style of props under the session filter, from cache when the
// snapshot generation is unchanged.
func (s *Session) Resolve(snap *snapshot.Snapshot, props domain.FeatureProperties, today string) domain.Style {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sync(snap)

	k := keyOf(props, today)
	if style, ok := s.styles.get(k); ok {
		s.metrics.SessionCache.WithLabelValues("hit").Inc()
		return style
	}
	s.metrics.SessionCache.WithLabelValues("miss").Inc()

	style := domain.Resolve(props, s.filter, snap.Index, snap.Maxima, today, s.opts)
	s.styles.put(k, style)
	return style
}

// Marker is a label anchored at a feature center for marker-based views.
type Marker struct {
	ID       string       `json:"id"`
	Position orb.Point    `json:"position"`
	Label    string       `json:"label"`
	Color    domain.Color `json:"color"`
}

// Markers builds labels, ordered by feature ID, for every recorded feature whose
// recorded attributes resolve to a filled style. Marker colors use the coarse scale.
func (s *Session) Markers(snap *snapshot.Snapshot, today string) []Marker {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sync(snap)

	markers := make([]Marker, 0, len(s.extents))
	for id, e := range s.extents {
		style := domain.Resolve(e.props, s.filter, snap.Index, snap.Maxima, today,
			domain.ResolveOptions{Scale: domain.CoarseScale})
		if style.Kind != domain.StyleFilled {
			continue
		}
		markers = append(markers, Marker{ID: id, Position: e.center, Label: style.Label, Color: style.Fill})
	}
	slices.SortFunc(markers, func(a, b Marker) int { return strings.Compare(a.ID, b.ID) })
	return markers
}

// CachedStyles reports how many styles the session currently holds.
func (s *Session) CachedStyles() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.styles.len()
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastUsed = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// sync drops cached state built against an older snapshot. Caller holds mu.
func (s *Session) sync(snap *snapshot.Snapshot) {
	if snap.Generation == s.generation {
		return
	}
	s.generation = snap.Generation
	s.invalidate()
}

// invalidate clears derived state. Caller holds mu.
func (s *Session) invalidate() {
	s.styles.reset()
	s.extents = make(map[string]extent)
}
