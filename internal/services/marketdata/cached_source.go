package marketdata

import (
	"context"
	"strings"
	"time"

	"AtlasQuant/internal/domain/models"
	drepo "AtlasQuant/internal/domain/repository"
	"AtlasQuant/pkg/cache"
	"AtlasQuant/pkg/logger"
)

// cachedSeries is the cache payload for one acquired series.
type cachedSeries struct {
	Bars []models.Bar     `json:"bars"`
	Meta models.FetchMeta `json:"meta"`
}

// CachedSource wraps a BarSource with a TTL cache so repeated analyses of
// the same ticker inside the TTL reuse the acquired series. Cache failures
// degrade to a direct fetch.
type CachedSource struct {
	next  drepo.BarSource
	cache cache.Service
	ttl   time.Duration
	log   *logger.Logger
}

// NewCachedSource wraps next with the given cache service and TTL.
func NewCachedSource(next drepo.BarSource, c cache.Service, ttl time.Duration, log *logger.Logger) *CachedSource {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CachedSource{next: next, cache: c, ttl: ttl, log: log}
}

func (s *CachedSource) FetchDaily(ctx context.Context, ticker string) ([]models.Bar, models.FetchMeta, error) {
	key := cache.GenerateKey("bars:daily", strings.ToUpper(ticker))

	var hit cachedSeries
	if err := s.cache.Get(ctx, key, &hit); err == nil && len(hit.Bars) > 0 {
		hit.Meta.Used = hit.Meta.Used + ":cached"
		return hit.Bars, hit.Meta, nil
	}

	bars, meta, err := s.next.FetchDaily(ctx, ticker)
	if err != nil {
		return nil, meta, err
	}

	if err := s.cache.Set(ctx, key, cachedSeries{Bars: bars, Meta: meta}, s.ttl); err != nil && s.log != nil {
		s.log.Warn("bar cache write failed", logger.String("key", key), logger.Error(err))
	}
	return bars, meta, nil
}

var _ drepo.BarSource = (*CachedSource)(nil)
