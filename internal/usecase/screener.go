package usecase

import (
	"context"
	"sort"

	"AtlasQuant/internal/domain/models"
	drepo "AtlasQuant/internal/domain/repository"
	"AtlasQuant/internal/service/ratelimit"
	"AtlasQuant/internal/services/analytics"
	"AtlasQuant/pkg/logger"
)

// Screener scans a bounded sample of a category and surfaces the most
// stretched instruments first. Tickers that fail to fetch or lack history
// are skipped, never fatal.
type Screener struct {
	universe   drepo.UniverseStore
	source     drepo.BarSource
	indicators *analytics.IndicatorEngine
	limiter    *ratelimit.Limiter
	metrics    drepo.Metrics
	log        *logger.Logger

	fetchBurst  float64
	fetchPerSec float64
}

// NewScreener creates a screener over the universe catalog. Fetches are
// rate-limited so a wide scan cannot hammer the upstream source.
func NewScreener(universe drepo.UniverseStore, source drepo.BarSource, limiter *ratelimit.Limiter, metrics drepo.Metrics, log *logger.Logger) *Screener {
	return &Screener{
		universe:    universe,
		source:      source,
		indicators:  analytics.NewIndicatorEngine(),
		limiter:     limiter,
		metrics:     metrics,
		log:         log,
		fetchBurst:  5,
		fetchPerSec: 2,
	}
}

// Scan samples up to n instruments of the category and returns their latest
// snapshot rows sorted by z-score ascending.
func (s *Screener) Scan(ctx context.Context, category string, n int) ([]models.ScreenerRow, error) {
	if n <= 0 {
		n = 10
	}
	instruments, err := s.universe.List(ctx, category, true)
	if err != nil {
		return nil, err
	}
	if len(instruments) > n {
		instruments = instruments[:n]
	}

	rows := make([]models.ScreenerRow, 0, len(instruments))
	for _, in := range instruments {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if s.limiter != nil && !s.limiter.Allow("screener_fetch", s.fetchBurst, s.fetchPerSec) {
			s.metrics.RecordError("screener_throttle")
			continue
		}

		row, ok := s.snapshot(ctx, in.Ticker)
		if !ok {
			continue
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].ZScore < rows[j].ZScore })
	return rows, nil
}

func (s *Screener) snapshot(ctx context.Context, ticker string) (models.ScreenerRow, bool) {
	bars, _, err := s.source.FetchDaily(ctx, ticker)
	if err != nil {
		s.metrics.RecordError("screener_fetch")
		if s.log != nil {
			s.log.Warn("screener fetch failed", logger.String("ticker", ticker), logger.Error(err))
		}
		return models.ScreenerRow{}, false
	}
	rows, err := s.indicators.Compute(bars)
	if err != nil || len(rows) == 0 {
		s.metrics.RecordError("screener_indicators")
		return models.ScreenerRow{}, false
	}
	last := rows[len(rows)-1]
	return models.ScreenerRow{
		Ticker: ticker,
		Price:  last.Close,
		ZScore: last.ZScore,
		RSI14:  last.RSI14,
		VolAnn: last.VolAnn,
	}, true
}
