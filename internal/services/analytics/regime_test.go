package analytics

import (
	"errors"
	"strings"
	"testing"

	"AtlasQuant/internal/domain/models"
)

// flatRows builds indicator rows with identical values except the last one.
func flatRows(n int, base models.IndicatorRow, last models.IndicatorRow) []models.IndicatorRow {
	rows := make([]models.IndicatorRow, n)
	for i := range rows {
		rows[i] = base
	}
	rows[n-1] = last
	return rows
}

func TestRegimeStressWins(t *testing.T) {
	base := models.IndicatorRow{SMA20: 100, SMA50: 100, Close: 100}
	last := base
	last.Drawdown = -0.25
	last.VolAnn = 50 // stress outranks hostile vol
	reg, err := NewRegimeClassifier().Assess(flatRows(10, base, last), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reg.Label != models.RegimeStress {
		t.Fatalf("label = %q, want STRESS", reg.Label)
	}
}

func TestRegimeUptrendLabel(t *testing.T) {
	rows := make([]models.IndicatorRow, 10)
	for i := range rows {
		sma := 100 + float64(i)
		rows[i] = models.IndicatorRow{SMA20: sma, SMA50: sma - 5, Close: sma + 2}
	}
	reg, err := NewRegimeClassifier().Assess(rows, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reg.Label != models.RegimeUptrend {
		t.Fatalf("label = %q, want UPTREND", reg.Label)
	}
	if reg.Slope <= 0 {
		t.Fatalf("slope = %v, want > 0", reg.Slope)
	}
}

func TestRegimeExtensionSuffix(t *testing.T) {
	base := models.IndicatorRow{SMA20: 100, SMA50: 100, Close: 100}
	over := base
	over.ZScore = 2.5
	reg, err := NewRegimeClassifier().Assess(flatRows(10, base, over), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(reg.Label, " EXT") {
		t.Fatalf("label = %q, want EXT suffix", reg.Label)
	}

	disc := base
	disc.ZScore = -2.1
	reg, _ = NewRegimeClassifier().Assess(flatRows(10, base, disc), 0)
	if !strings.HasSuffix(reg.Label, " DISC") {
		t.Fatalf("label = %q, want DISC suffix", reg.Label)
	}

	// Stress suppresses the suffix.
	stressed := base
	stressed.ZScore = 2.5
	stressed.Drawdown = -0.3
	reg, _ = NewRegimeClassifier().Assess(flatRows(10, base, stressed), 0)
	if reg.Label != models.RegimeStress {
		t.Fatalf("label = %q, want plain STRESS", reg.Label)
	}
}

func TestRegimeOperabilityPenalties(t *testing.T) {
	base := models.IndicatorRow{SMA20: 100, SMA50: 100, Close: 100}
	last := base
	last.ZScore = 1.0  // -7
	last.VolAnn = 30.0 // -5
	last.Drawdown = -0.10
	// drawdown penalty: int(0.10*120) = 12
	reg, err := NewRegimeClassifier().Assess(flatRows(10, base, last), 10) // cost: int(8.0) = 8
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := reg.Operability, 75-7-5-12-8; got != want {
		t.Fatalf("operability = %d, want %d", got, want)
	}
}

func TestRegimeOperabilityClamped(t *testing.T) {
	base := models.IndicatorRow{SMA20: 100, SMA50: 100, Close: 100}
	last := base
	last.ZScore = 5
	last.VolAnn = 120
	last.Drawdown = -0.6
	reg, err := NewRegimeClassifier().Assess(flatRows(10, base, last), 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reg.Operability != 0 {
		t.Fatalf("operability = %d, want clamp to 0", reg.Operability)
	}
}

func TestRegimeNeedsSlopeHistory(t *testing.T) {
	rows := flatRows(5, models.IndicatorRow{}, models.IndicatorRow{})
	_, err := NewRegimeClassifier().Assess(rows, 0)
	var de *DataError
	if !errors.As(err, &de) {
		t.Fatalf("expected DataError for short history, got %v", err)
	}
}
