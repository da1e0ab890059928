package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	drepo "AtlasQuant/internal/domain/repository"
	mid "AtlasQuant/internal/middleware"
	"AtlasQuant/pkg/cache"
)

// LastPriceSink is the tape pipeline's downstream: it keeps the last-price
// gauge fresh and mirrors the print into the cache so screener and analysis
// responses can surface a recent price without hitting the tape.
type LastPriceSink struct {
	metrics drepo.Metrics
	cache   cache.Service
	ttl     time.Duration
}

// NewLastPriceSink creates the sink. The cache may be nil.
func NewLastPriceSink(metrics drepo.Metrics, c cache.Service, ttl time.Duration) *LastPriceSink {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &LastPriceSink{metrics: metrics, cache: c, ttl: ttl}
}

func (s *LastPriceSink) Process(ctx context.Context, t *drepo.Tick) error {
	s.metrics.RecordLastPrice(t.Ticker, t.Price)
	if s.cache == nil {
		return nil
	}
	key := cache.GenerateKey("last_price", strings.ToUpper(t.Ticker))
	return s.cache.Set(ctx, key, t.Price, s.ttl)
}

// TapeCollector wires the market stream into the tape pipeline and owns the
// reconnect loop.
type TapeCollector struct {
	stream  drepo.MarketStream
	pipe    *mid.TapePipeline
	metrics drepo.Metrics
}

// NewTapeCollector creates a collector over the given stream and pipeline.
func NewTapeCollector(stream drepo.MarketStream, pipe *mid.TapePipeline, metrics drepo.Metrics) *TapeCollector {
	return &TapeCollector{stream: stream, pipe: pipe, metrics: metrics}
}

// IsConnected reports whether the tape stream is up.
func (c *TapeCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

// Start connects, subscribes and launches the consume loop.
func (c *TapeCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return fmt.Errorf("tape start: %w", err)
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return fmt.Errorf("tape subscribe: %w", err)
	}
	c.pipe.Start(ctx)
	ticks, errs := c.stream.Read(ctx)
	go c.consume(ctx, ticks, errs)
	return nil
}

func (c *TapeCollector) consume(ctx context.Context, ticks <-chan *drepo.Tick, errs <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errs:
			if err != nil {
				c.metrics.RecordError("tape_stream")
				if rErr := c.stream.Reconnect(ctx); rErr != nil {
					c.metrics.RecordError("tape_reconnect")
					return
				}
				ticks, errs = c.stream.Read(ctx)
			}
		case t := <-ticks:
			if t == nil {
				continue
			}
			_ = c.pipe.Process(ctx, t)
		}
	}
}

// Shutdown stops the pipeline and closes the stream.
func (c *TapeCollector) Shutdown(_ context.Context) error {
	c.pipe.Stop()
	return c.stream.Close()
}
