package models

import (
	"math"
	"time"
)

// Bar is one normalized daily OHLCV record. Timestamps are UTC, strictly
// increasing and deduplicated by the acquisition layer. AdjClose falls back
// to Close during normalization, so CloseFinal is defined for every retained
// bar; a bar with no usable close must not survive normalization.
type Bar struct {
	Time     time.Time `json:"t"`
	Open     float64   `json:"o"`
	High     float64   `json:"h"`
	Low      float64   `json:"l"`
	Close    float64   `json:"c"`
	AdjClose float64   `json:"ac"`
	Volume   float64   `json:"v"`
}

// CloseFinal returns the adjusted close, falling back to the raw close.
func (b Bar) CloseFinal() float64 {
	if b.AdjClose > 0 && !math.IsNaN(b.AdjClose) {
		return b.AdjClose
	}
	return b.Close
}

// FetchAttempt records one acquisition attempt for diagnostics.
type FetchAttempt struct {
	Source   string `json:"source"`
	Lookback string `json:"lookback"`
	OK       bool   `json:"ok"`
	Rows     int    `json:"rows"`
	Ms       int64  `json:"ms"`
	Err      string `json:"err,omitempty"`
}

// FetchMeta summarizes how a bar series was obtained.
type FetchMeta struct {
	Used     string         `json:"used"`
	Attempts []FetchAttempt `json:"attempts"`
}
