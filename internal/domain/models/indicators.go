package models

import "time"

// IndicatorRow is one bar augmented with every derived statistic. Rows are
// only exposed once all fields are defined, so the warm-up prefix of a series
// never appears in engine output.
type IndicatorRow struct {
	Time     time.Time `json:"t"`
	Close    float64   `json:"close"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Volume   float64   `json:"volume"`
	Ret      float64   `json:"ret"`
	LogRet   float64   `json:"logret"`
	SMA20    float64   `json:"sma20"`
	SMA50    float64   `json:"sma50"`
	STD20    float64   `json:"std20"`
	ZScore   float64   `json:"zscore"`
	RSI14    float64   `json:"rsi14"`
	ATR14    float64   `json:"atr14"`
	Equity   float64   `json:"equity"`
	Peak     float64   `json:"peak"`
	Drawdown float64   `json:"drawdown"`
	VolAnn   float64   `json:"vol_ann"`
	Skew60   float64   `json:"skew60"`
	Kurt60   float64   `json:"kurt60"`
	VaR95    float64   `json:"var95"`
	CVaR95   float64   `json:"cvar95"`
}
