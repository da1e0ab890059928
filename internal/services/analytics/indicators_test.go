package analytics

import (
	"errors"
	"math"
	"testing"
	"time"

	"AtlasQuant/internal/domain/models"
)

// geometricBars builds a synthetic daily series with constant growth per bar.
func geometricBars(n int, start, growth float64) []models.Bar {
	bars := make([]models.Bar, n)
	t0 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	px := start
	for i := 0; i < n; i++ {
		bars[i] = models.Bar{
			Time:     t0.AddDate(0, 0, i),
			Open:     px * 0.999,
			High:     px * 1.01,
			Low:      px * 0.99,
			Close:    px,
			AdjClose: px,
			Volume:   1000,
		}
		px *= 1 + growth
	}
	return bars
}

func TestComputeDropsWarmupPrefix(t *testing.T) {
	bars := geometricBars(130, 100, 0.005)
	rows, err := NewIndicatorEngine().Compute(bars)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Skew60/Kurt60 need 60 defined returns and the first return is
	// undefined, so the first complete row is bar 60.
	if got, want := len(rows), 130-60; got != want {
		t.Fatalf("rows = %d, want %d", got, want)
	}
	if !rows[0].Time.Equal(bars[60].Time) {
		t.Fatalf("first row at %v, want %v", rows[0].Time, bars[60].Time)
	}
}

func TestComputeZScoreFiniteAndDrawdownNonPositive(t *testing.T) {
	bars := geometricBars(200, 50, 0.002)
	// Inject a crash so drawdown is exercised.
	for i := 150; i < len(bars); i++ {
		bars[i].Close *= 0.7
		bars[i].AdjClose *= 0.7
		bars[i].High *= 0.7
		bars[i].Low *= 0.7
	}
	rows, err := NewIndicatorEngine().Compute(bars)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, r := range rows {
		if math.IsNaN(r.ZScore) || math.IsInf(r.ZScore, 0) {
			t.Fatalf("zscore not finite at %v", r.Time)
		}
		if r.Drawdown > 0 {
			t.Fatalf("drawdown positive at %v: %v", r.Time, r.Drawdown)
		}
	}
}

func TestComputeUptrendShape(t *testing.T) {
	rows, err := NewIndicatorEngine().Compute(geometricBars(130, 100, 0.005))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	last := rows[len(rows)-1]
	if last.SMA20 <= last.SMA50 {
		t.Fatalf("expected SMA20 > SMA50, got %v <= %v", last.SMA20, last.SMA50)
	}
	if last.Close <= last.SMA20 {
		t.Fatalf("expected close above SMA20")
	}
	if last.VolAnn >= 25 {
		t.Fatalf("expected calm vol, got %v", last.VolAnn)
	}
	if last.Drawdown != 0 {
		t.Fatalf("expected zero drawdown, got %v", last.Drawdown)
	}
	if last.RSI14 < 99 {
		t.Fatalf("all-gain series should pin RSI near 100, got %v", last.RSI14)
	}
}

func TestComputeInsufficientHistoryIsNotAnError(t *testing.T) {
	rows, err := NewIndicatorEngine().Compute(geometricBars(40, 100, 0.005))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected empty result for short history, got %d rows", len(rows))
	}
}

func TestComputeMissingCloseIsDataError(t *testing.T) {
	bars := geometricBars(80, 100, 0.005)
	bars[10].Close = 0
	bars[10].AdjClose = math.NaN()
	_, err := NewIndicatorEngine().Compute(bars)
	var de *DataError
	if !errors.As(err, &de) {
		t.Fatalf("expected DataError, got %v", err)
	}
}

func TestQuantileLinearInterpolation(t *testing.T) {
	xs := []float64{4, 1, 3, 2}
	// h = 0.05*3 = 0.15 between the two smallest order statistics.
	if got, want := quantile(xs, 0.05), 1.15; math.Abs(got-want) > 1e-12 {
		t.Fatalf("quantile = %v, want %v", got, want)
	}
	if got := quantile([]float64{7}, 0.05); got != 7 {
		t.Fatalf("single-element quantile = %v, want 7", got)
	}
}

func TestRollingStdSample(t *testing.T) {
	xs := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	out := rollingStd(xs, len(xs))
	// Sample std (ddof=1) of this classic set is sqrt(32/7).
	want := math.Sqrt(32.0 / 7.0)
	if math.Abs(out[len(out)-1]-want) > 1e-12 {
		t.Fatalf("std = %v, want %v", out[len(out)-1], want)
	}
}
