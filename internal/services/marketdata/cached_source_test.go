package marketdata

import (
	"context"
	"testing"
	"time"

	"AtlasQuant/internal/domain/models"
	"AtlasQuant/pkg/cache"
)

type countingSource struct {
	calls int
	bars  []models.Bar
}

func (s *countingSource) FetchDaily(context.Context, string) ([]models.Bar, models.FetchMeta, error) {
	s.calls++
	return s.bars, models.FetchMeta{Used: "2y"}, nil
}

func TestCachedSourceServesSecondFetchFromCache(t *testing.T) {
	src := &countingSource{bars: []models.Bar{{Time: day(0), Close: 100, AdjClose: 100}}}
	cs := NewCachedSource(src, cache.NewMemoryCache(), time.Minute, nil)

	ctx := context.Background()
	bars, meta, err := cs.FetchDaily(ctx, "petr4.sa")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 1 || meta.Used != "2y" {
		t.Fatalf("first fetch wrong: %d bars, used %q", len(bars), meta.Used)
	}

	// Same ticker in different case must hit the same key.
	bars, meta, err = cs.FetchDaily(ctx, "PETR4.SA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.calls != 1 {
		t.Fatalf("source called %d times, want 1", src.calls)
	}
	if len(bars) != 1 || meta.Used != "2y:cached" {
		t.Fatalf("cached fetch wrong: %d bars, used %q", len(bars), meta.Used)
	}
}
