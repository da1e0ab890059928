package analytics

import (
	"math"
	"math/rand"
	"time"

	"AtlasQuant/internal/domain/models"
)

const (
	// DefaultRuinSims and DefaultRuinTrades size the Monte Carlo run.
	DefaultRuinSims   = 2400
	DefaultRuinTrades = 220

	ruinBarrier = -0.50
)

// RuinParams are the trade-level assumptions for the ruin simulation. They
// are clamped into valid ranges, never rejected.
type RuinParams struct {
	WinRate      float64
	Payoff       float64
	RiskPerTrade float64
	Sims         int
	Trades       int
}

func (p RuinParams) clamped() RuinParams {
	p.WinRate = clamp(p.WinRate, 0.01, 0.99)
	p.Payoff = clamp(p.Payoff, 0.5, 10.0)
	p.RiskPerTrade = clamp(p.RiskPerTrade, 0.001, 0.2)
	if p.Sims <= 0 {
		p.Sims = DefaultRuinSims
	}
	if p.Trades <= 0 {
		p.Trades = DefaultRuinTrades
	}
	return p
}

// RuinSimulator estimates the probability of capital ruin over sequences of
// Bernoulli trade outcomes. The random source is injectable so tests can be
// deterministic; production runs unseeded.
type RuinSimulator struct {
	rng *rand.Rand
}

// NewRuinSimulator creates a simulator. A nil source falls back to a
// time-seeded one.
func NewRuinSimulator(src rand.Source) *RuinSimulator {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &RuinSimulator{rng: rand.New(src)}
}

// Estimate runs the simulation and returns the percentage of sequences whose
// cumulative path ever breaches the ruin barrier. It never fails.
func (s *RuinSimulator) Estimate(params RuinParams) models.RuinEstimate {
	p := params.clamped()

	ruined := 0
	for i := 0; i < p.Sims; i++ {
		equity := 0.0
		for j := 0; j < p.Trades; j++ {
			if s.rng.Float64() < p.WinRate {
				equity += p.Payoff * p.RiskPerTrade
			} else {
				equity -= p.RiskPerTrade
			}
			if equity < ruinBarrier {
				ruined++
				break
			}
		}
	}

	return models.RuinEstimate{
		RuinPct:      float64(ruined) / float64(p.Sims) * 100,
		WinRate:      p.WinRate,
		Payoff:       p.Payoff,
		RiskPerTrade: p.RiskPerTrade,
		Sims:         p.Sims,
		Trades:       p.Trades,
	}
}

// SizeByATR computes position size from capital at risk and an ATR-multiple
// stop distance. Quantity is floored and never negative.
func SizeByATR(price, atr, capital, riskPct, stopATRMult float64) models.Sizing {
	riskCash := capital * (riskPct / 100.0)
	stopDist := atr * stopATRMult
	qty := int64(math.Max(0, riskCash/(stopDist+1e-12)))
	return models.Sizing{Qty: qty, StopDist: stopDist, RiskCash: riskCash}
}
