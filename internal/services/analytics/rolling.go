package analytics

import (
	"math"
	"sort"
)

// Rolling helpers over float64 slices. NaN marks undefined values; window
// statistics are undefined until the trailing window holds a full set of
// defined observations, which mirrors how the warm-up prefix behaves.

func rollingMean(xs []float64, window int) []float64 {
	out := nanSlice(len(xs))
	for i := window - 1; i < len(xs); i++ {
		sum := 0.0
		ok := true
		for _, v := range xs[i-window+1 : i+1] {
			if math.IsNaN(v) {
				ok = false
				break
			}
			sum += v
		}
		if ok {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// rollingStd computes the sample standard deviation (ddof=1).
func rollingStd(xs []float64, window int) []float64 {
	out := nanSlice(len(xs))
	if window < 2 {
		return out
	}
	for i := window - 1; i < len(xs); i++ {
		w := xs[i-window+1 : i+1]
		sum, sum2 := 0.0, 0.0
		ok := true
		for _, v := range w {
			if math.IsNaN(v) {
				ok = false
				break
			}
			sum += v
			sum2 += v * v
		}
		if !ok {
			continue
		}
		n := float64(window)
		mean := sum / n
		variance := (sum2 - n*mean*mean) / (n - 1)
		if variance < 0 {
			variance = 0
		}
		out[i] = math.Sqrt(variance)
	}
	return out
}

func rollingMax(xs []float64) []float64 {
	out := make([]float64, len(xs))
	peak := math.Inf(-1)
	for i, v := range xs {
		if v > peak {
			peak = v
		}
		out[i] = peak
	}
	return out
}

// rollingSkew computes the moment-based skewness g1 over a full window.
func rollingSkew(xs []float64, window int) []float64 {
	return rollingMoment(xs, window, func(w []float64) float64 {
		m2, m3, _ := centralMoments(w)
		if m2 == 0 {
			return 0
		}
		return m3 / math.Pow(m2, 1.5)
	})
}

// rollingKurt computes the excess (Fisher) kurtosis g2 over a full window.
func rollingKurt(xs []float64, window int) []float64 {
	return rollingMoment(xs, window, func(w []float64) float64 {
		m2, _, m4 := centralMoments(w)
		if m2 == 0 {
			return 0
		}
		return m4/(m2*m2) - 3
	})
}

func rollingMoment(xs []float64, window int, f func([]float64) float64) []float64 {
	out := nanSlice(len(xs))
	for i := window - 1; i < len(xs); i++ {
		w := dropNaN(xs[i-window+1 : i+1])
		if len(w) < window {
			continue
		}
		out[i] = f(w)
	}
	return out
}

func centralMoments(w []float64) (m2, m3, m4 float64) {
	n := float64(len(w))
	mean := 0.0
	for _, v := range w {
		mean += v
	}
	mean /= n
	for _, v := range w {
		d := v - mean
		m2 += d * d
		m3 += d * d * d
		m4 += d * d * d * d
	}
	m2 /= n
	m3 /= n
	m4 /= n
	return m2, m3, m4
}

// quantile computes the q-quantile with linear interpolation between order
// statistics, matching the numpy default.
func quantile(xs []float64, q float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	h := q * float64(len(sorted)-1)
	lo := int(math.Floor(h))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

func dropNaN(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, v := range xs {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
