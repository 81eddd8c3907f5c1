package aggregator

import (
	"errors"
	"testing"

	"solwatch/internal/model"
)

func fullResult() cycleResult {
	return cycleResult{
		stats:        model.Stats{TotalUsers: 42, ActiveWallets: 10, TotalTrades: 7, TotalProfitUSD: 13.5, WhaleActivitiesToday: 2},
		users:        []model.User{{ID: "u1", Username: "ana"}},
		trades:       []model.Trade{{ID: "t9", TokenSymbol: "BONK"}},
		payments:     []model.Payment{{ID: "p3"}},
		price:        151.2,
		trending:     []model.TrendingToken{{Symbol: "WIF"}},
		whales:       []model.WhaleActivity{{TokenSymbol: "WIF"}},
		tradingStats: model.TradingStats{"total_trades": float64(7)},
	}
}

func TestReconcileAllFeedsSucceed(t *testing.T) {
	next, err := reconcile(model.Snapshot{}, fullResult())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.Stats.TotalUsers != 42 || next.SolPriceUSD != 151.2 {
		t.Fatalf("snapshot not populated: %+v", next)
	}
	if len(next.Users) != 1 || len(next.TrendingTokens) != 1 {
		t.Fatalf("feed slices not carried over: %+v", next)
	}
}

func TestReconcileRequiredFailureKeepsPreviousSnapshot(t *testing.T) {
	prev := model.Snapshot{
		Stats:       model.Stats{TotalUsers: 42},
		SolPriceUSD: 151.2,
		Users:       []model.User{{ID: "u1", Username: "ana"}},
	}

	r := fullResult()
	r.usersErr = errors.New("backend down")

	next, err := reconcile(prev, r)
	if err == nil {
		t.Fatal("expected required-feed error")
	}
	if next.Stats.TotalUsers != 42 || next.SolPriceUSD != 151.2 {
		t.Fatalf("previous snapshot not preserved: %+v", next)
	}
	if len(next.Users) != 1 || next.Users[0].Username != "ana" {
		t.Fatalf("previous users not preserved: %+v", next.Users)
	}
}

func TestReconcileOptionalFailureDegradesToEmpty(t *testing.T) {
	r := fullResult()
	r.trendingErr = errors.New("timeout")
	r.tradingStatsErr = errors.New("timeout")

	next, err := reconcile(model.Snapshot{}, r)
	if err != nil {
		t.Fatalf("optional failure must not fail the cycle: %v", err)
	}
	if next.TrendingTokens == nil || len(next.TrendingTokens) != 0 {
		t.Fatalf("expected empty trending list, got %+v", next.TrendingTokens)
	}
	if next.TradingStats == nil || len(next.TradingStats) != 0 {
		t.Fatalf("expected empty trading stats, got %+v", next.TradingStats)
	}
	if len(next.WhaleActivities) != 1 {
		t.Fatalf("healthy optional feed lost: %+v", next.WhaleActivities)
	}
	if next.Stats.TotalUsers != 42 {
		t.Fatalf("required feeds lost: %+v", next.Stats)
	}
}

func TestFeedErrorsReportsEveryFailure(t *testing.T) {
	r := fullResult()
	if r.feedErrors() != nil {
		t.Fatal("expected nil error map for a clean cycle")
	}

	r.statsErr = errors.New("boom")
	r.whalesErr = errors.New("slow")
	errs := r.feedErrors()
	if len(errs) != 2 {
		t.Fatalf("expected 2 feed errors, got %v", errs)
	}
	if errs[FeedStats] != "boom" || errs[FeedWhaleActivities] != "slow" {
		t.Fatalf("unexpected error map: %v", errs)
	}
}
