package model

// TradeType is the direction of a trade as reported by the backend.
type TradeType string

const (
	TradeBuy  TradeType = "BUY"
	TradeSell TradeType = "SELL"
)

// TradeStatus is display-only here; no transition is driven by this service.
type TradeStatus string

const (
	TradePending   TradeStatus = "PENDING"
	TradeCompleted TradeStatus = "COMPLETED"
	TradeFailed    TradeStatus = "FAILED"
)

// PaymentStatus mirrors the backend's payment lifecycle states.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
)

// CryptoType is the currency a payment was made in.
type CryptoType string

const (
	CryptoSOL CryptoType = "SOL"
	CryptoETH CryptoType = "ETH"
	CryptoBTC CryptoType = "BTC"
)

// Stats holds the aggregate counters shown on the overview tab. All values
// arrive verbatim from the backend; absent fields decode to zero.
type Stats struct {
	TotalUsers           int     `json:"total_users"`
	ActiveWallets        int     `json:"active_wallets"`
	TotalTrades          int     `json:"total_trades"`
	TotalProfitUSD       float64 `json:"total_profit_usd"`
	WhaleActivitiesToday int     `json:"whale_activities_today"`
}

type User struct {
	ID         string  `json:"id"`
	TelegramID int64   `json:"telegram_id"`
	Username   string  `json:"username,omitempty"`
	Credits    float64 `json:"credits"`
	IsAdmin    bool    `json:"is_admin"`
	CreatedAt  string  `json:"created_at"`
}

type Trade struct {
	ID             string      `json:"id"`
	UserTelegramID int64       `json:"user_telegram_id"`
	TokenSymbol    string      `json:"token_symbol,omitempty"`
	TradeType      TradeType   `json:"trade_type"`
	AmountSol      float64     `json:"amount_sol"`
	ProfitUSD      float64     `json:"profit_usd"`
	Status         TradeStatus `json:"status"`
	CreatedAt      string      `json:"created_at"`
}

type Payment struct {
	ID             string        `json:"id"`
	UserTelegramID int64         `json:"user_telegram_id"`
	AmountGBP      float64       `json:"amount_gbp"`
	CryptoType     CryptoType    `json:"crypto_type"`
	CryptoAmount   float64       `json:"crypto_amount"`
	Status         PaymentStatus `json:"status"`
	CreatedAt      string        `json:"created_at"`
}

type WhaleActivity struct {
	WhaleAddress string  `json:"whale_address"`
	TokenAddress string  `json:"token_address,omitempty"`
	TokenSymbol  string  `json:"token_symbol,omitempty"`
	Action       string  `json:"action"`
	Amount       float64 `json:"amount"`
	MarketCap    float64 `json:"market_cap,omitempty"`
	DetectedAt   string  `json:"detected_at"`
}

type TrendingToken struct {
	Address        string  `json:"address"`
	Symbol         string  `json:"symbol"`
	Name           string  `json:"name"`
	PriceUSD       float64 `json:"price_usd"`
	PriceChange24h float64 `json:"price_change_24h"`
	LiquidityUSD   float64 `json:"liquidity_usd"`
	Volume24h      float64 `json:"volume_24h"`
}

// TradingStats is an open-ended stats object; keys are rendered only when the
// backend sends them.
type TradingStats map[string]interface{}

// RugCheckResult is the verdict returned by POST /rugcheck/{address}.
// Details keys (liquidity_usd, holder_count, age_hours, ...) are optional and
// must never be defaulted on the client side.
type RugCheckResult struct {
	TokenAddress string                 `json:"token_address,omitempty"`
	IsSafe       bool                   `json:"is_safe"`
	RiskScore    float64                `json:"risk_score"`
	Warnings     []string               `json:"warnings"`
	Details      map[string]interface{} `json:"details,omitempty"`
}

// SystemStatus is the backend health summary polled for the dashboard footer.
type SystemStatus struct {
	Status              string `json:"status"`
	LiveTradingEnabled  bool   `json:"live_trading_enabled"`
	WhaleMonitorActive  bool   `json:"whale_monitor_active"`
	ActiveTradingUsers  int    `json:"active_trading_users"`
	TrackedWhaleWallets int    `json:"tracked_whale_wallets"`
}

// Snapshot is one consistent bundle of all dashboard data produced by a
// single aggregator cycle. It is replaced wholesale; nothing mutates a
// snapshot field-by-field outside a cycle.
type Snapshot struct {
	Stats           Stats           `json:"stats"`
	Users           []User          `json:"users"`
	Trades          []Trade         `json:"trades"`
	Payments        []Payment       `json:"payments"`
	SolPriceUSD     float64         `json:"sol_price_usd"`
	TrendingTokens  []TrendingToken `json:"trending_tokens"`
	WhaleActivities []WhaleActivity `json:"whale_activities"`
	TradingStats    TradingStats    `json:"trading_stats"`
}
