package marketdata

import (
	"math"
	"sort"

	"AtlasQuant/internal/domain/models"
)

// Normalize turns a raw series into the shape the indicator engine expects:
// sorted ascending by time, deduplicated on the day, unusable closes dropped,
// adjusted close backfilled from close and missing OHLC backfilled from the
// close so every retained bar is fully defined.
func Normalize(raw []models.Bar) []models.Bar {
	if len(raw) == 0 {
		return nil
	}

	out := make([]models.Bar, 0, len(raw))
	for _, b := range raw {
		if !usable(b.Close) && !usable(b.AdjClose) {
			continue
		}
		if !usable(b.Close) {
			b.Close = b.AdjClose
		}
		if !usable(b.AdjClose) {
			b.AdjClose = b.Close
		}
		if !usable(b.Open) {
			b.Open = b.Close
		}
		if !usable(b.High) {
			b.High = math.Max(b.Open, b.Close)
		}
		if !usable(b.Low) {
			b.Low = math.Min(b.Open, b.Close)
		}
		if b.Volume < 0 || math.IsNaN(b.Volume) {
			b.Volume = 0
		}
		b.Time = b.Time.UTC()
		out = append(out, b)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })

	// Keep the last record for a duplicated day.
	dedup := out[:0]
	for _, b := range out {
		day := b.Time.Format("2006-01-02")
		if n := len(dedup); n > 0 && dedup[n-1].Time.Format("2006-01-02") == day {
			dedup[n-1] = b
			continue
		}
		dedup = append(dedup, b)
	}
	return dedup
}

func usable(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
