package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	drepo "AtlasQuant/internal/domain/repository"
	"AtlasQuant/pkg/logger"

	"github.com/gorilla/websocket"
)

// StreamConfig configures the live tape stream.
type StreamConfig struct {
	URL            string        `yaml:"url"`
	Token          string        `yaml:"token"`
	Symbols        []string      `yaml:"symbols"`
	ReconnectDelay time.Duration `yaml:"reconnect_delay"`
	PingInterval   time.Duration `yaml:"ping_interval"`
}

// Stream is a MarketStream backed by a trade-print websocket feed.
type Stream struct {
	cfg StreamConfig
	log *logger.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
}

// NewStream creates a websocket tape stream.
func NewStream(cfg StreamConfig, log *logger.Logger) drepo.MarketStream {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = 5 * time.Second
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 20 * time.Second
	}
	return &Stream{cfg: cfg, log: log}
}

// Connect establishes the websocket connection.
func (s *Stream) Connect(ctx context.Context) error {
	u := s.cfg.URL
	if s.cfg.Token != "" {
		u = fmt.Sprintf("%s?token=%s", s.cfg.URL, s.cfg.Token)
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("tape connect: %w", err)
	}
	s.mu.Lock()
	s.conn = conn
	s.connected = true
	s.mu.Unlock()
	if s.log != nil {
		s.log.Info("tape stream connected", logger.String("url", s.cfg.URL))
	}
	return nil
}

// Subscribe subscribes to the configured symbols.
func (s *Stream) Subscribe(_ context.Context) error {
	s.mu.Lock()
	conn, connected := s.conn, s.connected
	s.mu.Unlock()
	if conn == nil || !connected {
		return fmt.Errorf("tape stream not connected")
	}
	for _, sym := range s.cfg.Symbols {
		msg := map[string]string{"type": "subscribe", "symbol": sym}
		if err := conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", sym, err)
		}
	}
	return nil
}

type tapePrint struct {
	S string  `json:"s"`
	P float64 `json:"p"`
	V float64 `json:"v"`
	T int64   `json:"t"` // ms
}

type tapeFrame struct {
	Type string      `json:"type"`
	Data []tapePrint `json:"data"`
}

// Read streams ticks until the context is cancelled or the socket fails.
// Ticks are dropped on backpressure rather than blocking the read loop.
func (s *Stream) Read(ctx context.Context) (<-chan *drepo.Tick, <-chan error) {
	ticks := make(chan *drepo.Tick, 1024)
	errs := make(chan error, 1)

	go func() {
		ticker := time.NewTicker(s.cfg.PingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.mu.Lock()
				conn := s.conn
				s.mu.Unlock()
				if conn != nil {
					_ = conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	go func() {
		defer close(ticks)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			s.mu.Lock()
			conn := s.conn
			s.mu.Unlock()
			if conn == nil {
				errs <- fmt.Errorf("tape conn nil")
				return
			}
			_, b, err := conn.ReadMessage()
			if err != nil {
				errs <- fmt.Errorf("tape read: %w", err)
				return
			}
			var frame tapeFrame
			if err := json.Unmarshal(b, &frame); err != nil {
				// ignore non-JSON frames
				continue
			}
			if frame.Type != "trade" {
				continue
			}
			for _, p := range frame.Data {
				tick := &drepo.Tick{
					Ticker:    p.S,
					Timestamp: p.T / 1000,
					Price:     p.P,
					Volume:    p.V,
				}
				select {
				case ticks <- tick:
				default:
					// drop on backpressure
				}
			}
		}
	}()

	return ticks, errs
}

// Reconnect closes and re-establishes the connection, then resubscribes.
func (s *Stream) Reconnect(ctx context.Context) error {
	_ = s.Close()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.cfg.ReconnectDelay):
	}
	if err := s.Connect(ctx); err != nil {
		return err
	}
	return s.Subscribe(ctx)
}

// Close closes the websocket connection.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// IsConnected reports connection status.
func (s *Stream) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}
