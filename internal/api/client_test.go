package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"solwatch/config"
)

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(config.APIConfig{
		BaseURL:   srv.URL,
		Timeout:   5 * time.Second,
		UserAgent: "solwatch-test/1.0",
	})
}

func TestStatsDecodesCounters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/stats" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("User-Agent"); got != "solwatch-test/1.0" {
			t.Errorf("unexpected user agent: %s", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"total_users":42,"active_wallets":10,"total_trades":7,"total_profit_usd":13.5,"whale_activities_today":2}`)
	}))
	defer srv.Close()

	stats, err := newTestClient(srv).Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalUsers != 42 || stats.ActiveWallets != 10 || stats.TotalTrades != 7 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.TotalProfitUSD != 13.5 || stats.WhaleActivitiesToday != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestStatsDefaultsAbsentFieldsToZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"total_users":3}`)
	}))
	defer srv.Close()

	stats, err := newTestClient(srv).Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalUsers != 3 || stats.ActiveWallets != 0 || stats.TotalProfitUSD != 0 {
		t.Fatalf("absent fields should decode to zero: %+v", stats)
	}
}

func TestSolPriceUnwrapsEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sol-price" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"price_usd":142.37}`)
	}))
	defer srv.Close()

	price, err := newTestClient(srv).SolPrice(context.Background())
	if err != nil {
		t.Fatalf("SolPrice failed: %v", err)
	}
	if price != 142.37 {
		t.Fatalf("unexpected price: %v", price)
	}
}

func TestTrendingTokensUnwrapsEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"tokens":[{"address":"So111","symbol":"BONK","name":"Bonk","price_usd":0.00002,"price_change_24h":12.5,"liquidity_usd":90000,"volume_24h":120000}]}`)
	}))
	defer srv.Close()

	tokens, err := newTestClient(srv).TrendingTokens(context.Background())
	if err != nil {
		t.Fatalf("TrendingTokens failed: %v", err)
	}
	if len(tokens) != 1 || tokens[0].Symbol != "BONK" || tokens[0].LiquidityUSD != 90000 {
		t.Fatalf("unexpected tokens: %+v", tokens)
	}
}

func TestRugCheckPostsAddressInPath(t *testing.T) {
	var method, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		fmt.Fprint(w, `{"token_address":"abc123","is_safe":false,"risk_score":0.82,"warnings":["low liquidity","mint authority enabled"],"details":{"liquidity_usd":1200.5,"holder_count":31}}`)
	}))
	defer srv.Close()

	result, err := newTestClient(srv).RugCheck(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("RugCheck failed: %v", err)
	}
	if method != http.MethodPost {
		t.Errorf("expected POST, got %s", method)
	}
	if path != "/api/rugcheck/abc123" {
		t.Errorf("unexpected path: %s", path)
	}
	if result.IsSafe || result.RiskScore != 0.82 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(result.Warnings) != 2 || result.Warnings[0] != "low liquidity" {
		t.Fatalf("warnings order not preserved: %v", result.Warnings)
	}
	if _, ok := result.Details["holder_count"]; !ok {
		t.Fatalf("details not decoded: %v", result.Details)
	}
}

func TestHTTPErrorStatusIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := newTestClient(srv).Trades(context.Background()); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestRequestHonorsContextCancellation(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := newTestClient(srv).Users(ctx); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
