package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	drepo "AtlasQuant/internal/domain/repository"
)

type recordingSink struct {
	mu    sync.Mutex
	ticks []*drepo.Tick
	fail  bool
}

func (s *recordingSink) Process(_ context.Context, t *drepo.Tick) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("sink down")
	}
	s.ticks = append(s.ticks, t)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ticks)
}

type noopMetrics struct{}

func (noopMetrics) RecordAnalysis(string, string)   {}
func (noopMetrics) RecordSafetyDenial(string)       {}
func (noopMetrics) RecordError(string)              {}
func (noopMetrics) RecordLastPrice(string, float64) {}
func (noopMetrics) RecordLatency(string, float64)   {}

func tick(ticker string, price float64) *drepo.Tick {
	return &drepo.Tick{Ticker: ticker, Timestamp: time.Now().Unix(), Price: price, Volume: 100}
}

func TestTapePipelineForwardsValidTicks(t *testing.T) {
	sink := &recordingSink{}
	p := NewTapePipeline(sink, noopMetrics{})
	if err := p.Process(context.Background(), tick("PETR4.SA", 31.5)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sink.count() != 1 {
		t.Fatalf("sink received %d ticks, want 1", sink.count())
	}
}

func TestTapePipelineRejectsInvalidTicks(t *testing.T) {
	sink := &recordingSink{}
	p := NewTapePipeline(sink, noopMetrics{})

	cases := []*drepo.Tick{
		nil,
		{Ticker: "", Timestamp: 1, Price: 1, Volume: 1},
		{Ticker: "X", Timestamp: 0, Price: 1, Volume: 1},
		{Ticker: "X", Timestamp: 1, Price: -1, Volume: 1},
	}
	for i, tc := range cases {
		if err := p.Process(context.Background(), tc); err == nil {
			t.Fatalf("case %d: invalid tick accepted", i)
		}
	}
	if sink.count() != 0 {
		t.Fatalf("sink received %d ticks, want 0", sink.count())
	}
}

func TestTapePipelineThrottlesPerTicker(t *testing.T) {
	sink := &recordingSink{}
	p := NewTapePipeline(sink, noopMetrics{}, WithMaxRPS(1))

	// Two prints for the same ticker in quick succession: second is dropped
	// without error.
	if err := p.Process(context.Background(), tick("VALE3.SA", 60)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.Process(context.Background(), tick("VALE3.SA", 60.1)); err != nil {
		t.Fatalf("throttled tick must not error: %v", err)
	}
	// A different ticker is not affected.
	if err := p.Process(context.Background(), tick("PETR4.SA", 31)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sink.count() != 2 {
		t.Fatalf("sink received %d ticks, want 2", sink.count())
	}
}

func TestTapePipelineBuffersOnSinkFailure(t *testing.T) {
	sink := &recordingSink{fail: true}
	p := NewTapePipeline(sink, noopMetrics{}, WithBufferSize(8))

	if err := p.Process(context.Background(), tick("PETR4.SA", 31.5)); err == nil {
		t.Fatalf("sink failure must surface an error")
	}

	// Recover the sink, start the flusher and wait for the buffered tick.
	sink.mu.Lock()
	sink.fail = false
	sink.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	defer p.Stop()

	deadline := time.After(3 * time.Second)
	for sink.count() == 0 {
		select {
		case <-deadline:
			t.Fatalf("buffered tick never flushed")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
