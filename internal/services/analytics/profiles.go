package analytics

// Profile bundles the per-strategy risk limits: the cap on capital risked
// per trade, stop/target geometry, the cost ceiling and the strict regime
// thresholds fed into the verdict policy.
type Profile struct {
	RiskCapPct      float64 `yaml:"risk_cap_pct"`
	StopATR         float64 `yaml:"stop_atr"`
	TargetR         float64 `yaml:"target_r"`
	MaxCostBlockBps int     `yaml:"max_cost_block_bps"`
	StrictVol       float64 `yaml:"strict_vol"`
	StrictDDPct     float64 `yaml:"strict_dd_pct"`
}

// Validate rejects limits that would disable the checks built on them.
func (p Profile) Validate(name string) error {
	if p.RiskCapPct <= 0 {
		return NewConfigError(name+".risk_cap_pct", "must be positive")
	}
	if p.StopATR <= 0 {
		return NewConfigError(name+".stop_atr", "must be positive")
	}
	if p.TargetR <= 0 {
		return NewConfigError(name+".target_r", "must be positive")
	}
	if p.MaxCostBlockBps <= 0 {
		return NewConfigError(name+".max_cost_block_bps", "must be positive")
	}
	if p.StrictVol <= 0 {
		return NewConfigError(name+".strict_vol", "must be positive")
	}
	if p.StrictDDPct >= 0 {
		return NewConfigError(name+".strict_dd_pct", "must be negative")
	}
	return nil
}

// DefaultProfiles returns the built-in strategy profiles.
func DefaultProfiles() map[string]Profile {
	return map[string]Profile{
		"Trend": {
			RiskCapPct:      2.0,
			StopATR:         2.0,
			TargetR:         2.2,
			MaxCostBlockBps: 35,
			StrictVol:       60,
			StrictDDPct:     -35,
		},
		"MeanReversion": {
			RiskCapPct:      1.5,
			StopATR:         1.6,
			TargetR:         1.6,
			MaxCostBlockBps: 28,
			StrictVol:       55,
			StrictDDPct:     -30,
		},
		"Defensive": {
			RiskCapPct:      1.0,
			StopATR:         2.4,
			TargetR:         1.5,
			MaxCostBlockBps: 22,
			StrictVol:       45,
			StrictDDPct:     -20,
		},
	}
}

// DefaultRuinThresholdPct is the verdict ruin ceiling shared by all
// profiles.
const DefaultRuinThresholdPct = 22.0

// DefaultWeights are the multi-factor blend weights.
func DefaultWeights() Weights {
	return Weights{Trend: 0.50, MeanRev: 0.15, Risk: 0.35}
}
