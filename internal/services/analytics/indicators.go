package analytics

import (
	"math"

	"AtlasQuant/internal/domain/models"
)

const (
	// TradingDays is the annualization base for daily volatility.
	TradingDays = 252

	// Epsilon guards divisions against exactly-zero denominators.
	Epsilon = 1e-9

	tailWindow     = 60
	tailMinSamples = 10
)

// IndicatorEngine derives the full rolling indicator set from a normalized
// bar series. It is stateless; Compute recomputes everything from scratch on
// each call.
type IndicatorEngine struct{}

// NewIndicatorEngine creates an IndicatorEngine.
func NewIndicatorEngine() *IndicatorEngine { return &IndicatorEngine{} }

// Compute returns one IndicatorRow per bar, dropping every row where any
// derived field is still undefined. The warm-up prefix (longest window plus
// the first return) therefore never appears in the output. An undersized or
// empty result means insufficient history and is not an error; a series with
// no usable close is a DataError.
func (e *IndicatorEngine) Compute(bars []models.Bar) ([]models.IndicatorRow, error) {
	if len(bars) == 0 {
		return nil, nil
	}

	n := len(bars)
	close := make([]float64, n)
	for i, b := range bars {
		c := b.CloseFinal()
		if math.IsNaN(c) || c <= 0 {
			return nil, NewDataError("indicators", "no close-equivalent field in series")
		}
		close[i] = c
	}

	ret := nanSlice(n)
	logret := nanSlice(n)
	for i := 1; i < n; i++ {
		ret[i] = close[i]/close[i-1] - 1
		logret[i] = math.Log(close[i] / close[i-1])
	}

	sma20 := rollingMean(close, 20)
	sma50 := rollingMean(close, 50)
	std20 := rollingStd(close, 20)

	zscore := nanSlice(n)
	for i := range zscore {
		zscore[i] = (close[i] - sma20[i]) / (std20[i] + Epsilon)
	}

	// RSI14 from rolling means of clipped deltas.
	gain := nanSlice(n)
	loss := nanSlice(n)
	for i := 1; i < n; i++ {
		delta := close[i] - close[i-1]
		gain[i] = math.Max(delta, 0)
		loss[i] = math.Max(-delta, 0)
	}
	avgGain := rollingMean(gain, 14)
	avgLoss := rollingMean(loss, 14)
	rsi := nanSlice(n)
	for i := range rsi {
		rs := avgGain[i] / (avgLoss[i] + Epsilon)
		rsi[i] = 100 - 100/(1+rs)
	}

	// ATR14 over the true range; the first bar has no previous close, so its
	// range collapses to high-low.
	tr := nanSlice(n)
	tr[0] = bars[0].High - bars[0].Low
	for i := 1; i < n; i++ {
		hl := bars[i].High - bars[i].Low
		hc := math.Abs(bars[i].High - close[i-1])
		lc := math.Abs(bars[i].Low - close[i-1])
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}
	atr := rollingMean(tr, 14)

	// Equity curve treats the first (undefined) return as zero.
	equity := make([]float64, n)
	acc := 1.0
	for i := range equity {
		r := ret[i]
		if math.IsNaN(r) {
			r = 0
		}
		acc *= 1 + r
		equity[i] = acc
	}
	peak := rollingMax(equity)
	drawdown := make([]float64, n)
	for i := range drawdown {
		drawdown[i] = (equity[i] - peak[i]) / peak[i]
	}

	volStd := rollingStd(logret, 20)
	volAnn := nanSlice(n)
	for i := range volAnn {
		volAnn[i] = volStd[i] * math.Sqrt(TradingDays) * 100
	}

	skew60 := rollingSkew(ret, tailWindow)
	kurt60 := rollingKurt(ret, tailWindow)

	var95 := nanSlice(n)
	cvar95 := nanSlice(n)
	for i := tailWindow - 1; i < n; i++ {
		w := dropNaN(ret[i-tailWindow+1 : i+1])
		if len(w) < tailMinSamples {
			continue
		}
		v := quantile(w, 0.05)
		var95[i] = v
		tailSum, tailN := 0.0, 0
		for _, r := range w {
			if r <= v {
				tailSum += r
				tailN++
			}
		}
		if tailN > 0 {
			cvar95[i] = tailSum / float64(tailN)
		}
	}

	rows := make([]models.IndicatorRow, 0, n)
	for i := 0; i < n; i++ {
		row := models.IndicatorRow{
			Time:     bars[i].Time,
			Close:    close[i],
			High:     bars[i].High,
			Low:      bars[i].Low,
			Volume:   bars[i].Volume,
			Ret:      ret[i],
			LogRet:   logret[i],
			SMA20:    sma20[i],
			SMA50:    sma50[i],
			STD20:    std20[i],
			ZScore:   zscore[i],
			RSI14:    rsi[i],
			ATR14:    atr[i],
			Equity:   equity[i],
			Peak:     peak[i],
			Drawdown: drawdown[i],
			VolAnn:   volAnn[i],
			Skew60:   skew60[i],
			Kurt60:   kurt60[i],
			VaR95:    var95[i],
			CVaR95:   cvar95[i],
		}
		if rowDefined(row) {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func rowDefined(r models.IndicatorRow) bool {
	for _, v := range []float64{
		r.Ret, r.LogRet, r.SMA20, r.SMA50, r.STD20, r.ZScore, r.RSI14,
		r.ATR14, r.Equity, r.Peak, r.Drawdown, r.VolAnn, r.Skew60, r.Kurt60,
		r.VaR95, r.CVaR95,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
