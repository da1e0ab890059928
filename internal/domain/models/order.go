package models

// Order sides, types and time-in-force values accepted by the ledger.
const (
	SideBuy  = "BUY"
	SideSell = "SELL"

	OrderTypeMarket = "MARKET"
	OrderTypeLimit  = "LIMIT"

	TIFDay = "DAY"
	TIFGTC = "GTC"
)

// OrderIntent is the record handed to the persistence collaborator. It is
// built once from an analysis plus sizing and never mutated afterwards.
type OrderIntent struct {
	TimestampUTC string   `json:"timestamp_utc"`
	Ticker       string   `json:"ticker"`
	Side         string   `json:"side"`
	OrderType    string   `json:"order_type"`
	TIF          string   `json:"tif"`
	Qty          int64    `json:"qty"`
	Notional     float64  `json:"notional"`
	PriceRef     float64  `json:"price_ref"`
	LimitPrice   *float64 `json:"limit_price,omitempty"`
	Stop         *float64 `json:"stop,omitempty"`
	Target       *float64 `json:"target,omitempty"`
	RiskPct      float64  `json:"risk_pct"`
	Regime       string   `json:"regime"`
	Score        float64  `json:"score"`
	CostBps      int      `json:"cost_bps"`
	Status       string   `json:"status"`
	Tags         string   `json:"tags"`
	RealizedPnL  float64  `json:"realized_pnl"`
}

// Position is an open broker position.
type Position struct {
	Ticker string  `json:"ticker"`
	Qty    int64   `json:"qty"`
	Side   string  `json:"side"`
	Price  float64 `json:"price"`
}

// AccountState is the broker account snapshot used by liveness checks.
type AccountState struct {
	Status string `json:"status"`
	Broker string `json:"broker"`
}

// Sizing is the ATR-based position sizing result.
type Sizing struct {
	Qty      int64   `json:"qty"`
	StopDist float64 `json:"stop_dist"`
	RiskCash float64 `json:"risk_cash"`
}
