// Package aggregator owns the canonical dashboard snapshot. It polls the
// backend's feeds on a fixed cadence, fans the requests out concurrently and
// reconciles partial failures into one consistent snapshot per cycle.
package aggregator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"solwatch/config"
	"solwatch/internal/api"
	"solwatch/internal/metrics"
	"solwatch/internal/model"
	"solwatch/internal/notify"
	"solwatch/logger"
)

// ErrRefreshLimited is returned when a manual refresh is dropped by the rate
// limiter. Scheduled cycles are never limited.
var ErrRefreshLimited = errors.New("manual refresh rate limited")

// Cycle summarises one completed refresh cycle for observers.
type Cycle struct {
	ID         string            `json:"id"`
	StartedAt  time.Time         `json:"started_at"`
	DurationMs float64           `json:"duration_ms"`
	Manual     bool              `json:"manual"`
	Failed     bool              `json:"failed"`
	FeedErrors map[string]string `json:"feed_errors,omitempty"`
}

// Aggregator produces a fresh snapshot on demand and on a fixed schedule,
// tolerating independent feed failures. The snapshot is replaced wholesale;
// overlapping cycles are not deduplicated and the last writer wins.
type Aggregator struct {
	client   *api.Client
	log      *logger.Entry
	notices  *notify.Center
	interval time.Duration
	limiter  *rate.Limiter

	mu       sync.RWMutex
	snapshot model.Snapshot
	ready    bool
	loading  bool
	subs     []func(Cycle)
}

func New(cfg config.AggregatorConfig, client *api.Client, notices *notify.Center, log *logger.Log) *Aggregator {
	perSecond := rate.Limit(float64(cfg.ManualRefreshPerMinute) / 60.0)
	return &Aggregator{
		client:   client,
		log:      log.WithComponent("aggregator"),
		notices:  notices,
		interval: cfg.RefreshInterval,
		limiter:  rate.NewLimiter(perSecond, cfg.ManualRefreshBurst),
		loading:  true,
	}
}

// Subscribe registers an observer invoked after every completed cycle.
// Observers must be registered before Run starts.
func (a *Aggregator) Subscribe(fn func(Cycle)) {
	if fn == nil {
		return
	}
	a.mu.Lock()
	a.subs = append(a.subs, fn)
	a.mu.Unlock()
}

// Run performs one immediate cycle and then one per interval until the
// context is cancelled. Cancelling stops the ticker unconditionally; a cycle
// still in flight at that point resolves as a no-op.
func (a *Aggregator) Run(ctx context.Context) error {
	a.log.WithFields(logger.Fields{"interval": a.interval.String()}).Info("aggregator starting")

	a.refresh(ctx, false)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			a.log.Info("aggregator stopped")
			return ctx.Err()
		case <-ticker.C:
			a.refresh(ctx, false)
		}
	}
}

// Refresh runs one cycle out of band from the timer, sharing the snapshot.
// It is safe to call concurrently with scheduled cycles.
func (a *Aggregator) Refresh(ctx context.Context) error {
	if !a.limiter.Allow() {
		a.log.Warn("manual refresh dropped by rate limiter")
		return ErrRefreshLimited
	}
	a.refresh(ctx, true)
	return nil
}

// Snapshot returns the current snapshot. The returned value shares slice
// backing with the stored snapshot, which is never mutated after a cycle.
func (a *Aggregator) Snapshot() model.Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshot
}

// Ready reports whether the first cycle has completed. Until then the shell
// renders a single loading indicator in place of all content.
func (a *Aggregator) Ready() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.ready
}

// Loading reports whether a cycle has never yet settled.
func (a *Aggregator) Loading() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loading
}

func (a *Aggregator) refresh(ctx context.Context, manual bool) {
	start := time.Now()
	result := a.fetchAll(ctx)

	// A resolution after cancellation must be a no-op, not a crash: the
	// shell may already be gone.
	if ctx.Err() != nil {
		return
	}

	cycle := Cycle{
		ID:        uuid.NewString(),
		StartedAt: start,
		Manual:    manual,
	}

	a.mu.Lock()
	next, err := reconcile(a.snapshot, result)
	a.snapshot = next
	a.ready = a.ready || err == nil
	// The loading flag transitions to false exactly once per cycle,
	// success and required-failure alike.
	a.loading = false
	subs := a.subs
	a.mu.Unlock()

	cycle.DurationMs = float64(time.Since(start).Nanoseconds()) / 1e6
	cycle.FeedErrors = result.feedErrors()

	if err != nil {
		cycle.Failed = true
		logger.IncrementCycleFailed()
		metrics.IncrementCycleFailed()
		a.notices.Error("Failed to refresh dashboard data")
		a.log.WithError(err).WithFields(logger.Fields{
			"cycle":       cycle.ID,
			"duration_ms": cycle.DurationMs,
			"manual":      manual,
		}).Error("refresh cycle failed; previous snapshot retained")
	} else {
		logger.IncrementCycleOK()
		metrics.IncrementCycleOK()
		if manual {
			a.notices.Success("Dashboard refreshed")
		}
		a.log.WithFields(logger.Fields{
			"cycle":       cycle.ID,
			"duration_ms": cycle.DurationMs,
			"manual":      manual,
			"feed_errors": len(cycle.FeedErrors),
		}).Debug("refresh cycle completed")
	}

	for _, fn := range subs {
		fn(cycle)
	}
}

// fetchAll issues the eight feed requests concurrently and waits for all of
// them to settle. Ordering between responses is irrelevant; the result record
// is reconciled by field, not by arrival order.
func (a *Aggregator) fetchAll(ctx context.Context) cycleResult {
	var result cycleResult
	var wg sync.WaitGroup

	run := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	run(func() {
		result.stats, result.statsErr = a.client.Stats(ctx)
		a.recordFeed(FeedStats, result.statsErr)
	})
	run(func() {
		result.users, result.usersErr = a.client.Users(ctx)
		a.recordFeed(FeedUsers, result.usersErr)
	})
	run(func() {
		result.trades, result.tradesErr = a.client.Trades(ctx)
		a.recordFeed(FeedTrades, result.tradesErr)
	})
	run(func() {
		result.payments, result.paymentsErr = a.client.Payments(ctx)
		a.recordFeed(FeedPayments, result.paymentsErr)
	})
	run(func() {
		result.price, result.priceErr = a.client.SolPrice(ctx)
		a.recordFeed(FeedSolPrice, result.priceErr)
	})
	run(func() {
		result.trending, result.trendingErr = a.client.TrendingTokens(ctx)
		a.recordFeed(FeedTrendingTokens, result.trendingErr)
	})
	run(func() {
		result.whales, result.whalesErr = a.client.WhaleActivities(ctx)
		a.recordFeed(FeedWhaleActivities, result.whalesErr)
	})
	run(func() {
		result.tradingStats, result.tradingStatsErr = a.client.TradingStats(ctx)
		a.recordFeed(FeedTradingStats, result.tradingStatsErr)
	})

	wg.Wait()
	return result
}

func (a *Aggregator) recordFeed(feed string, err error) {
	logger.RecordFeedFetch(feed, err != nil)
	if err != nil {
		metrics.IncrementFeedError(feed)
		a.log.WithError(err).WithFields(logger.Fields{"feed": feed}).Debug("feed fetch failed")
	}
}
