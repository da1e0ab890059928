package analytics

import (
	"errors"
	"testing"
)

func TestCostComputeBreakdown(t *testing.T) {
	cost, err := NewCostModel().Compute(20, 20, 10, 40)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cost.TotalBps != 50 {
		t.Fatalf("total = %d, want 50", cost.TotalBps)
	}
	if !cost.Blocked {
		t.Fatalf("expected blocked at 50 >= 40")
	}
	if cost.BreakEvenPct != 0.005 {
		t.Fatalf("break_even = %v, want 0.005", cost.BreakEvenPct)
	}
}

func TestCostBlockBoundaryInclusive(t *testing.T) {
	cost, err := NewCostModel().Compute(10, 10, 10, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cost.Blocked {
		t.Fatalf("total == max_block must block")
	}
	cost, _ = NewCostModel().Compute(10, 10, 9, 30)
	if cost.Blocked {
		t.Fatalf("total below max_block must not block")
	}
}

func TestCostMonotonic(t *testing.T) {
	m := NewCostModel()
	prev := -1
	for spread := 0; spread <= 30; spread += 5 {
		cost, err := m.Compute(spread, 5, 2, 100)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cost.TotalBps < prev {
			t.Fatalf("total_bps decreased: %d after %d", cost.TotalBps, prev)
		}
		prev = cost.TotalBps
	}
}

func TestCostRejectsInvalidInputs(t *testing.T) {
	var ce *ConfigError
	if _, err := NewCostModel().Compute(-1, 0, 0, 30); !errors.As(err, &ce) {
		t.Fatalf("negative spread should be ConfigError, got %v", err)
	}
	if _, err := NewCostModel().Compute(1, 1, 1, 0); !errors.As(err, &ce) {
		t.Fatalf("zero max_block should be ConfigError, got %v", err)
	}
}
