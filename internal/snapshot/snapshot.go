// Package snapshot holds the immutable dataset view the style endpoints read from.
package snapshot

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/avalanche-stats/internal/domain"
)

// Snapshot is one loaded dataset with everything derived from it. It is never
// mutated after Build, so readers can share it without locking.
type Snapshot struct {
	Generation   uint64
	LoadedAt     time.Time
	Summaries    []domain.RegionSummary
	Index        domain.Index
	Maxima       domain.MaxCounts
	SuperRegions domain.SuperRegionTotals
}

// Build derives maxima, super-region totals and the lookup index from summaries.
func Build(generation uint64, summaries []domain.RegionSummary, loadedAt time.Time) *Snapshot {
	return &Snapshot{
		Generation:   generation,
		LoadedAt:     loadedAt,
		Summaries:    summaries,
		Index:        domain.NewIndex(summaries),
		Maxima:       domain.ComputeMaxima(summaries),
		SuperRegions: domain.Aggregate(summaries),
	}
}

// Empty is the view before any dataset loads: every lookup misses.
func Empty() *Snapshot {
	return Build(0, nil, time.Time{})
}

// Loaded reports whether the snapshot came from a real fetch.
func (s *Snapshot) Loaded() bool {
	return s.Generation > 0
}

// Ticket identifies one fetch. Only the most recently issued ticket may install.
type Ticket uint64

// Store publishes the current snapshot. Reads are a single atomic load.
type Store struct {
	current atomic.Pointer[Snapshot]
	issued  atomic.Uint64

	mu sync.Mutex // serializes Install
}

// NewStore returns a Store holding the empty snapshot.
func NewStore() *Store {
	s := &Store{}
	s.current.Store(Empty())
	return s
}

// Current returns the installed snapshot. It is never nil.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Begin issues a ticket for a new fetch, superseding every earlier ticket.
func (s *Store) Begin() Ticket {
	return Ticket(s.issued.Add(1))
}

// Install builds and publishes a snapshot for ticket. It returns false without
// changing anything when a newer fetch has begun since ticket was issued.
func (s *Store) Install(ticket Ticket, summaries []domain.RegionSummary, loadedAt time.Time) (*Snapshot, bool) {
	snap := Build(uint64(ticket), summaries, loadedAt)

	s.mu.Lock()
	defer s.mu.Unlock()
	if uint64(ticket) != s.issued.Load() {
		return nil, false
	}
	s.current.Store(snap)
	return snap, true
}
