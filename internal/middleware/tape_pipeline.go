package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	drepo "AtlasQuant/internal/domain/repository"
)

// TickSink is the downstream consumer the pipeline feeds.
type TickSink interface {
	Process(ctx context.Context, t *drepo.Tick) error
}

// TapePipeline sits between the websocket tape and its consumers. It
// validates prints, throttles per ticker, and buffers when the downstream
// sink is unavailable so a flapping consumer never stalls the read loop.
type TapePipeline struct {
	sink    TickSink
	metrics drepo.Metrics
	maxRPS  int
	bufSize int
	bufCh   chan *drepo.Tick
	stopCh  chan struct{}
	started bool
	mu      sync.Mutex

	seenMu   sync.Mutex
	lastSeen map[string]time.Time // per-ticker last accepted time
}

type PipelineOption func(*TapePipeline)

// WithMaxRPS caps accepted prints per second per ticker.
func WithMaxRPS(n int) PipelineOption {
	return func(p *TapePipeline) {
		if n > 0 {
			p.maxRPS = n
		}
	}
}

// WithBufferSize sets the retry buffer capacity.
func WithBufferSize(n int) PipelineOption {
	return func(p *TapePipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// NewTapePipeline creates a pipeline feeding the given sink.
func NewTapePipeline(sink TickSink, metrics drepo.Metrics, opts ...PipelineOption) *TapePipeline {
	p := &TapePipeline{
		sink:     sink,
		metrics:  metrics,
		maxRPS:   20,
		bufSize:  1000,
		stopCh:   make(chan struct{}),
		lastSeen: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.bufCh = make(chan *drepo.Tick, p.bufSize)
	return p
}

// Start launches background flushing of buffered ticks.
func (p *TapePipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-p.stopCh:
				return
			case t := <-p.bufCh:
				if t == nil {
					continue
				}
				if err := p.sink.Process(ctx, t); err != nil {
					if backoff < 2*time.Second {
						backoff *= 2
					}
					p.metrics.RecordError("tape_flush")
					time.Sleep(backoff)
					// requeue if space; drop otherwise
					select {
					case p.bufCh <- t:
					default:
						p.metrics.RecordError("tape_buffer_drop")
					}
				} else {
					backoff = 50 * time.Millisecond
				}
			}
		}
	}()
}

// Stop stops the background flushing.
func (p *TapePipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
}

// Process validates and throttles one print, forwarding it downstream and
// buffering it when the sink fails.
func (p *TapePipeline) Process(ctx context.Context, t *drepo.Tick) error {
	start := time.Now()
	if err := validateTick(t); err != nil {
		p.metrics.RecordError("tape_validate")
		return err
	}
	if !p.allow(t.Ticker, start) {
		// throttled; drop silently
		p.metrics.RecordError("tape_throttle")
		return nil
	}

	if err := p.sink.Process(ctx, t); err != nil {
		p.metrics.RecordError("tape_sink")
		select {
		case p.bufCh <- t:
		default:
			p.metrics.RecordError("tape_buffer_full")
		}
		return fmt.Errorf("tape downstream: %w", err)
	}
	p.metrics.RecordLatency("tape_process", time.Since(start).Seconds())
	return nil
}

func validateTick(t *drepo.Tick) error {
	if t == nil {
		return fmt.Errorf("tick nil")
	}
	if t.Ticker == "" {
		return fmt.Errorf("ticker empty")
	}
	if t.Timestamp <= 0 {
		return fmt.Errorf("timestamp invalid")
	}
	if t.Price < 0 || t.Volume < 0 {
		return fmt.Errorf("negative price/volume")
	}
	return nil
}

func (p *TapePipeline) allow(ticker string, now time.Time) bool {
	if p.maxRPS <= 0 {
		return true
	}
	p.seenMu.Lock()
	defer p.seenMu.Unlock()
	last := p.lastSeen[ticker]
	if last.IsZero() || now.Sub(last) >= time.Second/time.Duration(p.maxRPS) {
		p.lastSeen[ticker] = now
		return true
	}
	return false
}
