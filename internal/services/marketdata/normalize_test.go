package marketdata

import (
	"math"
	"testing"
	"time"

	"AtlasQuant/internal/domain/models"
)

func day(n int) time.Time {
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestNormalizeSortsAndDedupes(t *testing.T) {
	raw := []models.Bar{
		{Time: day(2), Close: 102},
		{Time: day(0), Close: 100},
		{Time: day(1), Close: 101},
		{Time: day(1), Close: 101.5}, // later record for the same day wins
	}
	out := Normalize(raw)
	if len(out) != 3 {
		t.Fatalf("len = %d, want 3", len(out))
	}
	for i := 1; i < len(out); i++ {
		if !out[i].Time.After(out[i-1].Time) {
			t.Fatalf("times not strictly increasing at %d", i)
		}
	}
	if out[1].Close != 101.5 {
		t.Fatalf("dedup kept %v, want later record 101.5", out[1].Close)
	}
}

func TestNormalizeDropsUnusableCloses(t *testing.T) {
	raw := []models.Bar{
		{Time: day(0), Close: 100},
		{Time: day(1), Close: math.NaN(), AdjClose: math.NaN()},
		{Time: day(2), Close: 0},
		{Time: day(3), Close: 102},
	}
	out := Normalize(raw)
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
}

func TestNormalizeBackfills(t *testing.T) {
	raw := []models.Bar{
		{Time: day(0), Close: 100, Volume: -5},
	}
	out := Normalize(raw)
	if len(out) != 1 {
		t.Fatalf("len = %d, want 1", len(out))
	}
	b := out[0]
	if b.AdjClose != 100 || b.Open != 100 || b.High != 100 || b.Low != 100 {
		t.Fatalf("OHLC not backfilled from close: %+v", b)
	}
	if b.Volume != 0 {
		t.Fatalf("negative volume should clamp to 0, got %v", b.Volume)
	}
}

func TestNormalizeAdjCloseFallsBackToClose(t *testing.T) {
	raw := []models.Bar{
		{Time: day(0), AdjClose: 99.5},
	}
	out := Normalize(raw)
	if len(out) != 1 || out[0].Close != 99.5 {
		t.Fatalf("close should backfill from adj close, got %+v", out)
	}
	if out[0].CloseFinal() != 99.5 {
		t.Fatalf("CloseFinal = %v, want 99.5", out[0].CloseFinal())
	}
}
