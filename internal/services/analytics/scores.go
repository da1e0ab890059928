package analytics

import (
	"math"
	"strings"

	"AtlasQuant/internal/domain/models"
)

// Weights balance the three factor scores in the multi-factor blend.
type Weights struct {
	Trend   float64 `yaml:"trend"`
	MeanRev float64 `yaml:"meanrev"`
	Risk    float64 `yaml:"risk"`
}

// Sum returns the total weight mass.
func (w Weights) Sum() float64 { return w.Trend + w.MeanRev + w.Risk }

// ScoreEngine produces the multi-factor 0-100 score from the latest
// indicator row, its short history, cost and regime label.
type ScoreEngine struct {
	weights Weights
}

// NewScoreEngine validates the weights at construction; a non-positive
// weight sum is a ConfigError, never silently defaulted.
func NewScoreEngine(w Weights) (*ScoreEngine, error) {
	if w.Sum() <= 0 {
		return nil, NewConfigError("weights", "weight sum must be positive")
	}
	if w.Trend < 0 || w.MeanRev < 0 || w.Risk < 0 {
		return nil, NewConfigError("weights", "weights must be non-negative")
	}
	return &ScoreEngine{weights: w}, nil
}

// TrendScore blends the moving-average stance with the SMA20 slope.
func (e *ScoreEngine) TrendScore(rows []models.IndicatorRow) (float64, error) {
	if len(rows) < slopeLookback+1 {
		return 0, NewDataError("scores", "need at least 6 indicator rows for slope")
	}
	last := rows[len(rows)-1]
	prev := rows[len(rows)-1-slopeLookback]
	slope := (last.SMA20 - prev.SMA20) / (math.Abs(prev.SMA20) + Epsilon)

	base := 50.0
	if last.SMA20 > last.SMA50 && last.Close > last.SMA20 {
		base += 25
	}
	if last.SMA20 < last.SMA50 && last.Close < last.SMA20 {
		base -= 20
	}
	slopeScore := clamp(50+clamp(slope*450, -3, 3)*15, 0, 100)
	return clamp(base*0.55+slopeScore*0.45, 0, 100), nil
}

// MeanRevScore rewards discounted prices and penalizes over-extension.
func (e *ScoreEngine) MeanRevScore(last models.IndicatorRow) float64 {
	z := last.ZScore
	return clamp(50-18*z-12*math.Max(0, z-1.0), 0, 100)
}

// RiskScore penalizes volatility, drawdown and tail losses.
func (e *ScoreEngine) RiskScore(last models.IndicatorRow) float64 {
	vPen := clamp((last.VolAnn-20)*1.9, 0, 80)
	ddPen := clamp(math.Abs(last.Drawdown)*180, 0, 80)
	tailPen := clamp(math.Abs(last.CVaR95)*650, 0, 80) + clamp(math.Abs(last.VaR95)*500, 0, 60)
	return clamp(100-(0.45*vPen+0.35*ddPen+0.20*tailPen), 0, 100)
}

// Multi combines the factor scores, then applies cost and regime penalties.
// All returned scores are rounded to one decimal.
func (e *ScoreEngine) Multi(rows []models.IndicatorRow, costBps int, regimeLabel string) (models.ScoreBreakdown, error) {
	if len(rows) == 0 {
		return models.ScoreBreakdown{}, NewDataError("scores", "empty indicator series")
	}
	last := rows[len(rows)-1]

	ts, err := e.TrendScore(rows)
	if err != nil {
		return models.ScoreBreakdown{}, err
	}
	mr := e.MeanRevScore(last)
	rk := e.RiskScore(last)

	wsum := e.weights.Sum()
	raw := ts*(e.weights.Trend/wsum) + mr*(e.weights.MeanRev/wsum) + rk*(e.weights.Risk/wsum)

	costPen := clamp(float64(costBps)*2.8, 0, 80)
	regimePen := 0.0
	if strings.Contains(regimeLabel, models.RegimeStress) {
		regimePen = 45
	} else if strings.Contains(regimeLabel, models.RegimeVol) {
		regimePen = 25
	}

	final := clamp(raw-(0.55*costPen+0.45*regimePen), 0, 100)
	return models.ScoreBreakdown{
		TrendScore:   round1(ts),
		MeanRevScore: round1(mr),
		RiskScore:    round1(rk),
		FinalScore:   round1(final),
	}, nil
}
