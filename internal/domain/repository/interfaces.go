package repository

import (
	"context"

	"AtlasQuant/internal/domain/models"
)

// BarSource acquires a normalized daily bar series for a ticker. It retries
// with progressively shorter lookbacks and never runs unsolicited; callers
// trigger it per analysis request.
type BarSource interface {
	FetchDaily(ctx context.Context, ticker string) ([]models.Bar, models.FetchMeta, error)
}

// Tick is one live trade print from the tape stream.
type Tick struct {
	Ticker    string
	Timestamp int64
	Price     float64
	Volume    float64
}

// MarketStream is a live tick feed (websocket tape).
type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *Tick, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// LedgerStore persists order intents and serves realized-P&L reads. The
// store must provide read-after-write consistency: the kill-switch P&L read
// can never be stale relative to a concurrently committed order log.
type LedgerStore interface {
	Init(ctx context.Context) error
	LogOrder(ctx context.Context, intent *models.OrderIntent) error
	ReadLedger(ctx context.Context, limit int) ([]models.OrderIntent, error)
	DailyRealizedPnL(ctx context.Context, dateUTC string) (float64, error)
	Health(ctx context.Context) error
	Close() error
}

// UniverseStore persists and serves the instrument catalog.
type UniverseStore interface {
	Init(ctx context.Context) error
	Upsert(ctx context.Context, rows []models.Instrument) (int, error)
	List(ctx context.Context, category string, onlyActive bool) ([]models.Instrument, error)
	Close() error
}

// DecisionPublisher streams analysis reports and order intents to the
// reporting collaborator. Publishing is best-effort; a failed publish never
// fails the decision itself.
type DecisionPublisher interface {
	PublishReport(ctx context.Context, report *models.AnalysisReport) error
	PublishIntent(ctx context.Context, intent *models.OrderIntent) error
	Close() error
}

// Broker is the execution venue used by the safety gate for liveness and
// position checks. Only a paper implementation exists in this repo.
type Broker interface {
	Ping(ctx context.Context) bool
	OpenPositions(ctx context.Context) ([]models.Position, error)
	AccountState(ctx context.Context) (models.AccountState, error)
}

// Metrics abstracts the Prometheus recorder for domain code.
type Metrics interface {
	RecordAnalysis(ticker, status string)
	RecordSafetyDenial(reason string)
	RecordError(kind string)
	RecordLastPrice(ticker string, price float64)
	RecordLatency(op string, seconds float64)
}
