package models

// Requests for the decision API endpoints. Defined in domain for consistency
// and reuse; defaults and validation run in pkg/http.

type AnalyzeRequest struct {
	Ticker      string  `query:"ticker" json:"ticker" validate:"required"`
	SpreadBps   int     `query:"spread_bps" json:"spread_bps" default:"5" validate:"gte=0,lte=200"`
	SlippageBps int     `query:"slippage_bps" json:"slippage_bps" default:"5" validate:"gte=0,lte=200"`
	FeeBps      int     `query:"fee_bps" json:"fee_bps" default:"2" validate:"gte=0,lte=200"`
	Profile     string  `query:"profile" json:"profile" default:"Trend" validate:"oneof=Trend MeanReversion Defensive"`
	WinRate     float64 `query:"win_rate" json:"win_rate" default:"0.52" validate:"gt=0,lt=1"`
	Payoff      float64 `query:"payoff" json:"payoff" default:"2.0" validate:"gte=0.5,lte=10"`
	RiskPct     float64 `query:"risk_pct" json:"risk_pct" default:"2.0" validate:"gt=0,lte=5"`
}

type OrderRequest struct {
	AnalyzeRequest
	Side      string  `json:"side" validate:"oneof=BUY SELL"`
	OrderType string  `json:"order_type" default:"MARKET" validate:"oneof=MARKET LIMIT"`
	TIF       string  `json:"tif" default:"DAY" validate:"oneof=DAY GTC"`
	Capital   float64 `json:"capital" default:"10000" validate:"gt=0"`
	StopATR   float64 `json:"stop_atr" validate:"gte=0,lte=4"`
	TargetR   float64 `json:"target_r" validate:"gte=0,lte=5"`
	Tags      string  `json:"tags"`
}

type ScreenerRequest struct {
	Category string `query:"category" json:"category" validate:"required"`
	Sample   int    `query:"n" json:"n" default:"10" validate:"gte=1,lte=50"`
}

type LedgerRequest struct {
	Limit int `query:"limit" json:"limit" default:"200" validate:"gte=1,lte=1000"`
}

type UniverseRequest struct {
	Category   string `query:"category" json:"category"`
	OnlyActive bool   `query:"only_active" json:"only_active" default:"true"`
}
