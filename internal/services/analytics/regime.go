package analytics

import (
	"math"

	"AtlasQuant/internal/domain/models"
)

const (
	volHostileAnn   = 45.0
	stressDrawdown  = -0.20
	zExtremeAbs     = 2.0
	slopeLookback   = 5
	operabilityBase = 75
)

// RegimeClassifier labels the current market state from the latest indicator
// row plus a short history, and computes the operability score.
type RegimeClassifier struct{}

// NewRegimeClassifier creates a RegimeClassifier.
func NewRegimeClassifier() *RegimeClassifier { return &RegimeClassifier{} }

// Assess classifies the regime from the tail of an indicator series. It
// needs at least slopeLookback+1 rows for the SMA20 slope; shorter input is
// a DataError because the pipeline guarantees the warm-up already covers it.
func (c *RegimeClassifier) Assess(rows []models.IndicatorRow, costBps int) (models.RegimeAssessment, error) {
	if len(rows) < slopeLookback+1 {
		return models.RegimeAssessment{}, NewDataError("regime", "need at least 6 indicator rows for slope")
	}

	last := rows[len(rows)-1]
	prev := rows[len(rows)-1-slopeLookback]
	slope := (last.SMA20 - prev.SMA20) / (math.Abs(prev.SMA20) + Epsilon)

	up := last.SMA20 > last.SMA50 && last.Close > last.SMA20 && slope > 0
	down := last.SMA20 < last.SMA50 && last.Close < last.SMA20 && slope < 0
	volHostile := last.VolAnn > volHostileAnn
	stress := last.Drawdown < stressDrawdown

	label := models.RegimeTransition
	switch {
	case stress:
		label = models.RegimeStress
	case volHostile:
		label = models.RegimeVol
	case up:
		label = models.RegimeUptrend
	case down:
		label = models.RegimeDowntrend
	}

	if math.Abs(last.ZScore) >= zExtremeAbs && !stress {
		if last.ZScore > 0 {
			label += " EXT"
		} else {
			label += " DISC"
		}
	}

	// Each penalty is truncated to an integer before subtraction.
	score := operabilityBase
	score -= int(math.Abs(last.ZScore) * 7)
	score -= int(math.Max(0, last.VolAnn-25))
	score -= int(math.Abs(last.Drawdown) * 120)
	score -= int(float64(costBps) * 0.8)
	score = int(clamp(float64(score), 0, 100))

	return models.RegimeAssessment{
		Label:       label,
		ZScore:      last.ZScore,
		VolAnn:      last.VolAnn,
		Drawdown:    last.Drawdown,
		Slope:       slope,
		Operability: score,
	}, nil
}
