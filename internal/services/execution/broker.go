package execution

import (
	"context"
	"strings"
	"sync"

	"AtlasQuant/internal/domain/models"
	drepo "AtlasQuant/internal/domain/repository"
)

// PaperBroker is an in-memory Broker for the paper-trading path. Real order
// routing is out of scope; the safety gate only needs liveness and open
// positions.
type PaperBroker struct {
	mu        sync.RWMutex
	positions []models.Position
	offline   bool
}

// NewPaperBroker creates a PaperBroker with no open positions.
func NewPaperBroker() *PaperBroker { return &PaperBroker{} }

// Ping reports broker liveness.
func (b *PaperBroker) Ping(_ context.Context) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return !b.offline
}

// OpenPositions returns a copy of the open positions.
func (b *PaperBroker) OpenPositions(_ context.Context) ([]models.Position, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]models.Position, len(b.positions))
	copy(out, b.positions)
	return out, nil
}

// AccountState returns the paper account snapshot.
func (b *PaperBroker) AccountState(_ context.Context) (models.AccountState, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	status := "OK"
	if b.offline {
		status = "OFFLINE"
	}
	return models.AccountState{Status: status, Broker: "PAPER"}, nil
}

// SetPositions replaces the open position set.
func (b *PaperBroker) SetPositions(positions []models.Position) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.positions = make([]models.Position, len(positions))
	copy(b.positions, positions)
}

// SetOffline toggles simulated liveness.
func (b *PaperBroker) SetOffline(offline bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.offline = offline
}

// HasOpenPosition reports whether any open position matches the ticker,
// case-insensitively.
func HasOpenPosition(positions []models.Position, ticker string) bool {
	for _, p := range positions {
		if strings.EqualFold(p.Ticker, ticker) {
			return true
		}
	}
	return false
}

var _ drepo.Broker = (*PaperBroker)(nil)
