package analytics

import (
	"math"
	"math/rand"
	"testing"
)

func TestRuinDeterministicWithSeed(t *testing.T) {
	params := RuinParams{WinRate: 0.5, Payoff: 2.0, RiskPerTrade: 0.02, Sims: 10000, Trades: 220}
	a := NewRuinSimulator(rand.NewSource(42)).Estimate(params)
	b := NewRuinSimulator(rand.NewSource(42)).Estimate(params)
	if a.RuinPct != b.RuinPct {
		t.Fatalf("same seed produced %v vs %v", a.RuinPct, b.RuinPct)
	}
}

func TestRuinClampsParameters(t *testing.T) {
	est := NewRuinSimulator(rand.NewSource(1)).Estimate(RuinParams{
		WinRate:      1.5,
		Payoff:       0.0,
		RiskPerTrade: 0.9,
	})
	if est.WinRate != 0.99 {
		t.Fatalf("win_rate = %v, want clamp to 0.99", est.WinRate)
	}
	if est.Payoff != 0.5 {
		t.Fatalf("payoff = %v, want clamp to 0.5", est.Payoff)
	}
	if est.RiskPerTrade != 0.2 {
		t.Fatalf("risk_per_trade = %v, want clamp to 0.2", est.RiskPerTrade)
	}
	if est.Sims != DefaultRuinSims || est.Trades != DefaultRuinTrades {
		t.Fatalf("defaults not applied: sims=%d trades=%d", est.Sims, est.Trades)
	}
}

func TestRuinOrdering(t *testing.T) {
	params := func(wr float64) RuinParams {
		return RuinParams{WinRate: wr, Payoff: 1.0, RiskPerTrade: 0.1, Sims: 4000, Trades: 220}
	}
	losing := NewRuinSimulator(rand.NewSource(7)).Estimate(params(0.25))
	winning := NewRuinSimulator(rand.NewSource(7)).Estimate(params(0.85))
	if losing.RuinPct <= winning.RuinPct {
		t.Fatalf("ruin for 25%% win rate (%v) should exceed 85%% (%v)", losing.RuinPct, winning.RuinPct)
	}
	if losing.RuinPct < 0 || losing.RuinPct > 100 {
		t.Fatalf("ruin pct out of range: %v", losing.RuinPct)
	}
}

func TestSizeByATR(t *testing.T) {
	s := SizeByATR(100, 2.0, 10000, 2.0, 2.0)
	if s.RiskCash != 200 {
		t.Fatalf("risk_cash = %v, want 200", s.RiskCash)
	}
	if s.StopDist != 4.0 {
		t.Fatalf("stop_dist = %v, want 4", s.StopDist)
	}
	if s.Qty != 50 {
		t.Fatalf("qty = %v, want 50", s.Qty)
	}
}

func TestSizeByATRZeroATR(t *testing.T) {
	s := SizeByATR(100, 0, 10000, 2.0, 2.0)
	if s.Qty < 0 {
		t.Fatalf("qty must never be negative, got %d", s.Qty)
	}
	if math.IsInf(float64(s.Qty), 0) {
		t.Fatalf("qty must be finite")
	}
}
