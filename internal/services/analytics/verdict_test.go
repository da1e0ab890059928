package analytics

import (
	"errors"
	"reflect"
	"testing"

	"AtlasQuant/internal/domain/models"
)

func testPolicy() Policy {
	return Policy{StrictVol: 60, StrictDDPct: -35, RuinThresholdPct: 22}
}

func calmInputs() (models.RegimeAssessment, models.CostBreakdown, float64, models.ScoreBreakdown) {
	regime := models.RegimeAssessment{Label: models.RegimeUptrend, VolAnn: 15, Drawdown: -0.02, Operability: 70}
	cost := models.CostBreakdown{TotalBps: 10, MaxBlockBps: 35}
	score := models.ScoreBreakdown{FinalScore: 65}
	return regime, cost, 5.0, score
}

func TestVerdictAuthorizedWhenNothingTriggers(t *testing.T) {
	e, err := NewVerdictEngine(testPolicy())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v := e.Decide(calmInputs())
	if v.Status != models.StatusAuthorized || v.Command != models.CommandReady {
		t.Fatalf("got %s/%s, want AUTHORIZED/READY", v.Status, v.Command)
	}
	if !reflect.DeepEqual(v.Reasons, []string{"OK"}) {
		t.Fatalf("reasons = %v, want [OK]", v.Reasons)
	}
}

func TestVerdictCostBlockOverridesEverything(t *testing.T) {
	e, _ := NewVerdictEngine(testPolicy())
	regime, cost, ruin, score := calmInputs()
	cost.Blocked = true
	// Add defensive triggers too; status must stay BLOCKED.
	regime.Label = models.RegimeStress
	score.FinalScore = 10

	v := e.Decide(regime, cost, ruin, score)
	if v.Status != models.StatusBlocked || v.Command != models.CommandBlocked {
		t.Fatalf("got %s/%s, want BLOCKED/BLOCKED", v.Status, v.Command)
	}
	if v.Reasons[0] != "COST_BLOCK" {
		t.Fatalf("first reason = %q, want COST_BLOCK", v.Reasons[0])
	}
	// Later defensive rules still append their reasons.
	want := []string{"COST_BLOCK", "REGIME_STRESS", "SCORE_LOW"}
	if !reflect.DeepEqual(v.Reasons, want) {
		t.Fatalf("reasons = %v, want %v", v.Reasons, want)
	}
}

func TestVerdictStressIsAtLeastDefensive(t *testing.T) {
	e, _ := NewVerdictEngine(testPolicy())
	regime, cost, ruin, score := calmInputs()
	regime.Label = models.RegimeStress
	regime.Drawdown = -0.25

	v := e.Decide(regime, cost, ruin, score)
	if v.Status != models.StatusDefensive {
		t.Fatalf("status = %s, want DEFENSIVE", v.Status)
	}
	found := false
	for _, r := range v.Reasons {
		if r == "REGIME_STRESS" {
			found = true
		}
	}
	if !found {
		t.Fatalf("reasons %v missing REGIME_STRESS", v.Reasons)
	}
}

func TestVerdictThresholdRules(t *testing.T) {
	e, _ := NewVerdictEngine(testPolicy())

	cases := []struct {
		name   string
		mutate func(*models.RegimeAssessment, *models.CostBreakdown, *float64, *models.ScoreBreakdown)
		reason string
	}{
		{"vol limit", func(r *models.RegimeAssessment, _ *models.CostBreakdown, _ *float64, _ *models.ScoreBreakdown) {
			r.VolAnn = 61
		}, "VOL_LIMIT"},
		{"dd limit", func(r *models.RegimeAssessment, _ *models.CostBreakdown, _ *float64, _ *models.ScoreBreakdown) {
			r.Drawdown = -0.40
		}, "DD_LIMIT"},
		{"ruin high", func(_ *models.RegimeAssessment, _ *models.CostBreakdown, ruin *float64, _ *models.ScoreBreakdown) {
			*ruin = 30
		}, "RUIN_HIGH"},
		{"operability low", func(r *models.RegimeAssessment, _ *models.CostBreakdown, _ *float64, _ *models.ScoreBreakdown) {
			r.Operability = 34
		}, "OPERABILITY_LOW"},
		{"score low", func(_ *models.RegimeAssessment, _ *models.CostBreakdown, _ *float64, s *models.ScoreBreakdown) {
			s.FinalScore = 39.9
		}, "SCORE_LOW"},
	}

	for _, tc := range cases {
		regime, cost, ruin, score := calmInputs()
		tc.mutate(&regime, &cost, &ruin, &score)
		v := e.Decide(regime, cost, ruin, score)
		if v.Status != models.StatusDefensive {
			t.Fatalf("%s: status = %s, want DEFENSIVE", tc.name, v.Status)
		}
		if !reflect.DeepEqual(v.Reasons, []string{tc.reason}) {
			t.Fatalf("%s: reasons = %v, want [%s]", tc.name, v.Reasons, tc.reason)
		}
	}
}

func TestVerdictStatusOrderIndependent(t *testing.T) {
	// The final status depends only on the set of triggered rules, not on
	// which of them fires first: any blocked trigger wins over any number of
	// defensive ones.
	e, _ := NewVerdictEngine(testPolicy())
	regime, cost, ruin, score := calmInputs()
	score.FinalScore = 5 // defensive trigger evaluated last
	cost.Blocked = true  // blocking trigger evaluated first

	v := e.Decide(regime, cost, ruin, score)
	if v.Status != models.StatusBlocked {
		t.Fatalf("status = %s, want BLOCKED regardless of later defensive rules", v.Status)
	}
}

func TestVerdictPolicyValidation(t *testing.T) {
	var ce *ConfigError
	if _, err := NewVerdictEngine(Policy{StrictVol: 0, StrictDDPct: -35, RuinThresholdPct: 22}); !errors.As(err, &ce) {
		t.Fatalf("zero strict_vol should be ConfigError, got %v", err)
	}
	if _, err := NewVerdictEngine(Policy{StrictVol: 60, StrictDDPct: 35, RuinThresholdPct: 22}); !errors.As(err, &ce) {
		t.Fatalf("positive strict_dd_pct should be ConfigError, got %v", err)
	}
	if _, err := NewVerdictEngine(Policy{StrictVol: 60, StrictDDPct: -35, RuinThresholdPct: 0}); !errors.As(err, &ce) {
		t.Fatalf("zero ruin threshold should be ConfigError, got %v", err)
	}
}
