package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/avalanche-stats/internal/domain"
	"github.com/couchcryptid/avalanche-stats/internal/observability"
	"github.com/couchcryptid/avalanche-stats/internal/snapshot"
	"github.com/jonboulle/clockwork"
)

// Fetcher loads the full region summary dataset.
type Fetcher interface {
	Fetch(ctx context.Context) ([]domain.RegionSummary, error)
}

// Publisher forwards a freshly installed snapshot downstream.
type Publisher interface {
	Publish(ctx context.Context, snap *snapshot.Snapshot) error
}

// Trigger blocks until an out-of-schedule refresh is requested.
type Trigger interface {
	Wait(ctx context.Context) error
}

// Refresher keeps the snapshot store current: it loads once at start, then again
// on every interval tick or trigger.
type Refresher struct {
	fetcher   Fetcher
	store     *snapshot.Store
	publisher Publisher
	trigger   Trigger
	clock     clockwork.Clock
	interval  time.Duration
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
}

// Option configures optional Refresher collaborators.
type Option func(*Refresher)

// WithPublisher publishes every installed snapshot.
func WithPublisher(p Publisher) Option { return func(r *Refresher) { r.publisher = p } }

// WithTrigger adds an external refresh trigger.
func WithTrigger(t Trigger) Option { return func(r *Refresher) { r.trigger = t } }

// WithClock replaces the real clock, for tests.
func WithClock(c clockwork.Clock) Option { return func(r *Refresher) { r.clock = c } }

// New creates a Refresher for store.
func New(f Fetcher, store *snapshot.Store, interval time.Duration, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Refresher {
	r := &Refresher{
		fetcher:  f,
		store:    store,
		clock:    clockwork.NewRealClock(),
		interval: interval,
		logger:   logger,
		metrics:  metrics,
	}
	if r.interval <= 0 {
		r.interval = 15 * time.Minute
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CheckReadiness returns nil once a dataset has been installed.
func (r *Refresher) CheckReadiness(_ context.Context) error {
	if !r.ready.Load() {
		return errors.New("no region summary dataset loaded yet")
	}
	return nil
}

// Run executes the refresh loop until the context is cancelled.
func (r *Refresher) Run(ctx context.Context) error {
	r.logger.Info("refresher started", "interval", r.interval)
	r.metrics.RefresherRunning.Set(1)
	defer r.metrics.RefresherRunning.Set(0)

	r.loadUntilReady(ctx)

	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	triggered := r.watchTrigger(ctx)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("refresher stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
		case <-triggered:
			r.logger.Info("refresh triggered")
		}
		if err := r.RefreshNow(ctx); err != nil && ctx.Err() == nil {
			r.logger.Error("refresh failed, keeping previous snapshot", "error", err)
		}
	}
}

// loadUntilReady retries the initial load with exponential backoff. The service
// serves the empty snapshot meanwhile.
func (r *Refresher) loadUntilReady(ctx context.Context) {
	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		err := r.RefreshNow(ctx)
		if err == nil || ctx.Err() != nil {
			return
		}
		// A superseded load installed nothing; only a concurrent RefreshNow that
		// succeeded makes the service ready.
		if errors.Is(err, ErrSuperseded) && r.ready.Load() {
			return
		}
		r.logger.Error("initial dataset load failed", "error", err, "retry_in", backoff)
		if !sleepWithContext(ctx, r.clock, backoff) {
			return
		}
		backoff = nextBackoff(backoff, maxBackoff)
	}
}

// watchTrigger turns the blocking Trigger into a channel. It returns nil (a channel
// that never fires) when no trigger is configured.
func (r *Refresher) watchTrigger(ctx context.Context) <-chan struct{} {
	if r.trigger == nil {
		return nil
	}
	ch := make(chan struct{}, 1)
	go func() {
		for {
			if err := r.trigger.Wait(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				r.logger.Warn("refresh trigger failed", "error", err)
				if !sleepWithContext(ctx, r.clock, time.Second) {
					return
				}
				continue
			}
			select {
			case ch <- struct{}{}:
			default: // a refresh is already pending
			}
		}
	}()
	return ch
}

// ErrSuperseded reports that a newer fetch started while this one was running.
var ErrSuperseded = errors.New("dataset fetch superseded by a newer one")

// RefreshNow fetches the dataset and installs it unless a newer fetch began in
// the meantime. On failure the previous snapshot stays in place.
func (r *Refresher) RefreshNow(ctx context.Context) error {
	start := r.clock.Now()
	ticket := r.store.Begin()

	summaries, err := r.fetcher.Fetch(ctx)
	if err != nil {
		r.metrics.RefreshErrors.Inc()
		return err
	}

	if dups := domain.Duplicates(summaries); len(dups) > 0 {
		r.logger.Warn("duplicate region codes in dataset, last record wins", "codes", dups)
	}

	snap, ok := r.store.Install(ticket, summaries, r.clock.Now())
	if !ok {
		r.metrics.StaleDiscards.Inc()
		r.logger.Info("discarding stale dataset", "ticket", ticket)
		return ErrSuperseded
	}

	r.metrics.Refreshes.Inc()
	r.metrics.DatasetRegions.Set(float64(len(snap.Summaries)))
	r.metrics.DatasetGeneration.Set(float64(snap.Generation))
	r.metrics.RefreshDuration.Observe(r.clock.Since(start).Seconds())
	r.ready.Store(true)
	r.logger.Info("snapshot installed", "generation", snap.Generation, "regions", len(snap.Summaries))

	if r.publisher != nil {
		if err := r.publisher.Publish(ctx, snap); err != nil {
			r.metrics.PublishErrors.Inc()
			r.logger.Warn("publish super-region totals failed", "error", err, "generation", snap.Generation)
		}
	}
	return nil
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, clock clockwork.Clock, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
