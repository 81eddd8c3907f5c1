package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"solwatch/config"
	"solwatch/internal/model"
)

// Client talks to the trading backend's HTTP JSON API under /api. It issues
// plain requests with no retries; recovery is the caller's concern.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(cfg config.APIConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: userAgentTransport{agent: cfg.UserAgent},
		},
	}
}

func (c *Client) Stats(ctx context.Context) (model.Stats, error) {
	var out model.Stats
	err := c.getJSON(ctx, "/api/stats", &out)
	return out, err
}

func (c *Client) Users(ctx context.Context) ([]model.User, error) {
	var out struct {
		Users []model.User `json:"users"`
	}
	if err := c.getJSON(ctx, "/api/users", &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

func (c *Client) Trades(ctx context.Context) ([]model.Trade, error) {
	var out struct {
		Trades []model.Trade `json:"trades"`
	}
	if err := c.getJSON(ctx, "/api/trades", &out); err != nil {
		return nil, err
	}
	return out.Trades, nil
}

func (c *Client) Payments(ctx context.Context) ([]model.Payment, error) {
	var out struct {
		Payments []model.Payment `json:"payments"`
	}
	if err := c.getJSON(ctx, "/api/payments", &out); err != nil {
		return nil, err
	}
	return out.Payments, nil
}

func (c *Client) SolPrice(ctx context.Context) (float64, error) {
	var out struct {
		PriceUSD float64 `json:"price_usd"`
	}
	if err := c.getJSON(ctx, "/api/sol-price", &out); err != nil {
		return 0, err
	}
	return out.PriceUSD, nil
}

func (c *Client) TrendingTokens(ctx context.Context) ([]model.TrendingToken, error) {
	var out struct {
		Tokens []model.TrendingToken `json:"tokens"`
	}
	if err := c.getJSON(ctx, "/api/trending-tokens", &out); err != nil {
		return nil, err
	}
	return out.Tokens, nil
}

func (c *Client) WhaleActivities(ctx context.Context) ([]model.WhaleActivity, error) {
	var out struct {
		Activities []model.WhaleActivity `json:"activities"`
	}
	if err := c.getJSON(ctx, "/api/whale-activities", &out); err != nil {
		return nil, err
	}
	return out.Activities, nil
}

func (c *Client) TradingStats(ctx context.Context) (model.TradingStats, error) {
	var out model.TradingStats
	if err := c.getJSON(ctx, "/api/trading-stats", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SystemStatus(ctx context.Context) (model.SystemStatus, error) {
	var out model.SystemStatus
	err := c.getJSON(ctx, "/api/system-status", &out)
	return out, err
}

// RugCheck runs the backend's token risk assessment. The address travels in
// the path; there is no request body.
func (c *Client) RugCheck(ctx context.Context, address string) (*model.RugCheckResult, error) {
	endpoint := c.baseURL + "/api/rugcheck/" + url.PathEscape(address)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var out model.RugCheckResult
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode rugcheck response: %w", err)
	}
	return &out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	body, err := c.do(req)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP error: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}
