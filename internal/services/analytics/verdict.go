package analytics

import (
	"strings"

	"AtlasQuant/internal/domain/models"
)

const operabilityFloor = 35

// Policy holds the strict thresholds the verdict cascade enforces on top of
// the regime/score/ruin inputs.
type Policy struct {
	StrictVol        float64 `yaml:"strict_vol"`
	StrictDDPct      float64 `yaml:"strict_dd_pct"`
	RuinThresholdPct float64 `yaml:"ruin_threshold_pct"`
}

// VerdictEngine is the ordered rule cascade producing the final
// authorization status. Status only escalates; reasons accumulate in
// evaluation order regardless of the status already reached.
type VerdictEngine struct {
	policy Policy
}

// NewVerdictEngine validates the policy at construction: thresholds must
// point the right way or the whole cascade is meaningless.
func NewVerdictEngine(p Policy) (*VerdictEngine, error) {
	if p.StrictVol <= 0 {
		return nil, NewConfigError("strict_vol", "must be positive")
	}
	if p.StrictDDPct >= 0 {
		return nil, NewConfigError("strict_dd_pct", "must be negative")
	}
	if p.RuinThresholdPct <= 0 {
		return nil, NewConfigError("ruin_threshold_pct", "must be positive")
	}
	return &VerdictEngine{policy: p}, nil
}

type statusLevel int

const (
	levelAuthorized statusLevel = iota
	levelDefensive
	levelBlocked
)

func (l statusLevel) status() string {
	switch l {
	case levelBlocked:
		return models.StatusBlocked
	case levelDefensive:
		return models.StatusDefensive
	default:
		return models.StatusAuthorized
	}
}

func (l statusLevel) command() string {
	switch l {
	case levelBlocked:
		return models.CommandBlocked
	case levelDefensive:
		return models.CommandDefensive
	default:
		return models.CommandReady
	}
}

// Decide runs the cascade. It never fails: the result always carries a
// status and a non-empty reason list.
func (e *VerdictEngine) Decide(regime models.RegimeAssessment, cost models.CostBreakdown, ruinPct float64, score models.ScoreBreakdown) models.Verdict {
	level := levelAuthorized
	var reasons []string

	escalate := func(to statusLevel, reason string) {
		if to > level {
			level = to
		}
		reasons = append(reasons, reason)
	}

	if cost.Blocked {
		escalate(levelBlocked, "COST_BLOCK")
	}
	if strings.Contains(regime.Label, models.RegimeStress) {
		escalate(levelDefensive, "REGIME_STRESS")
	}
	if strings.Contains(regime.Label, models.RegimeVol) {
		escalate(levelDefensive, "REGIME_VOL")
	}
	if regime.VolAnn > e.policy.StrictVol {
		escalate(levelDefensive, "VOL_LIMIT")
	}
	if regime.Drawdown*100 < e.policy.StrictDDPct {
		escalate(levelDefensive, "DD_LIMIT")
	}
	if ruinPct > e.policy.RuinThresholdPct {
		escalate(levelDefensive, "RUIN_HIGH")
	}
	if regime.Operability < operabilityFloor {
		escalate(levelDefensive, "OPERABILITY_LOW")
	}
	if score.FinalScore < 40 {
		escalate(levelDefensive, "SCORE_LOW")
	}

	if len(reasons) == 0 {
		reasons = []string{"OK"}
	}
	return models.Verdict{
		Status:  level.status(),
		Command: level.command(),
		Reasons: reasons,
	}
}
