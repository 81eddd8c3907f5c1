package aggregator

import (
	"fmt"

	"solwatch/internal/model"
)

// Feed names, used for metrics and per-cycle error reporting.
const (
	FeedStats           = "stats"
	FeedUsers           = "users"
	FeedTrades          = "trades"
	FeedPayments        = "payments"
	FeedSolPrice        = "sol_price"
	FeedTrendingTokens  = "trending_tokens"
	FeedWhaleActivities = "whale_activities"
	FeedTradingStats    = "trading_stats"
)

// cycleResult carries one explicit result per feed for a single refresh
// cycle. The fan-out fills it; reconcile applies the required/optional policy
// in one place instead of scattering fallbacks at each call site.
type cycleResult struct {
	stats    model.Stats
	statsErr error

	users    []model.User
	usersErr error

	trades    []model.Trade
	tradesErr error

	payments    []model.Payment
	paymentsErr error

	price    float64
	priceErr error

	trending    []model.TrendingToken
	trendingErr error

	whales    []model.WhaleActivity
	whalesErr error

	tradingStats    model.TradingStats
	tradingStatsErr error
}

// feedErrors maps each failed feed to its error message, required and
// optional alike.
func (r cycleResult) feedErrors() map[string]string {
	out := map[string]string{}
	record := func(feed string, err error) {
		if err != nil {
			out[feed] = err.Error()
		}
	}
	record(FeedStats, r.statsErr)
	record(FeedUsers, r.usersErr)
	record(FeedTrades, r.tradesErr)
	record(FeedPayments, r.paymentsErr)
	record(FeedSolPrice, r.priceErr)
	record(FeedTrendingTokens, r.trendingErr)
	record(FeedWhaleActivities, r.whalesErr)
	record(FeedTradingStats, r.tradingStatsErr)
	if len(out) == 0 {
		return nil
	}
	return out
}

// requiredErr returns the first required-feed error, if any. Stats, users,
// trades, payments and the SOL price are required: any one of them failing
// invalidates the whole cycle.
func (r cycleResult) requiredErr() error {
	switch {
	case r.statsErr != nil:
		return fmt.Errorf("%s: %w", FeedStats, r.statsErr)
	case r.usersErr != nil:
		return fmt.Errorf("%s: %w", FeedUsers, r.usersErr)
	case r.tradesErr != nil:
		return fmt.Errorf("%s: %w", FeedTrades, r.tradesErr)
	case r.paymentsErr != nil:
		return fmt.Errorf("%s: %w", FeedPayments, r.paymentsErr)
	case r.priceErr != nil:
		return fmt.Errorf("%s: %w", FeedSolPrice, r.priceErr)
	default:
		return nil
	}
}

// reconcile combines a cycle's feed results into the next snapshot. On a
// required-feed failure the previous snapshot is returned untouched. Optional
// feeds degrade individually to an empty list or object without failing the
// cycle.
func reconcile(prev model.Snapshot, r cycleResult) (model.Snapshot, error) {
	if err := r.requiredErr(); err != nil {
		return prev, err
	}

	next := model.Snapshot{
		Stats:           r.stats,
		Users:           r.users,
		Trades:          r.trades,
		Payments:        r.payments,
		SolPriceUSD:     r.price,
		TrendingTokens:  r.trending,
		WhaleActivities: r.whales,
		TradingStats:    r.tradingStats,
	}

	if r.trendingErr != nil {
		next.TrendingTokens = []model.TrendingToken{}
	}
	if r.whalesErr != nil {
		next.WhaleActivities = []model.WhaleActivity{}
	}
	if r.tradingStatsErr != nil || next.TradingStats == nil {
		next.TradingStats = model.TradingStats{}
	}

	return next, nil
}
