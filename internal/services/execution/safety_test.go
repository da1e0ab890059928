package execution

import (
	"context"
	"errors"
	"testing"
	"time"

	"AtlasQuant/internal/domain/models"
	"AtlasQuant/internal/services/analytics"
)

type fakeLedger struct {
	pnl float64
	err error
}

func (f *fakeLedger) Init(context.Context) error                       { return nil }
func (f *fakeLedger) LogOrder(context.Context, *models.OrderIntent) error { return nil }
func (f *fakeLedger) ReadLedger(context.Context, int) ([]models.OrderIntent, error) {
	return nil, nil
}
func (f *fakeLedger) DailyRealizedPnL(context.Context, string) (float64, error) {
	return f.pnl, f.err
}
func (f *fakeLedger) Health(context.Context) error { return nil }
func (f *fakeLedger) Close() error                 { return nil }

func testSafetyConfig() SafetyConfig {
	return SafetyConfig{
		MarketTZ:            "America/Sao_Paulo",
		OpenHHMM:            "10:00",
		CloseHHMM:           "17:55",
		AuctionPreOpenStart: "09:45",
		AuctionPreOpenEnd:   "10:00",
		AuctionCloseStart:   "17:45",
		AuctionCloseEnd:     "18:10",
		MaxDailyLossPct:     3.0,
		RequireFlat:         true,
	}
}

// clockAt returns a fixed clock at the given market-local hour and minute.
func clockAt(t *testing.T, hour, minute int) func() time.Time {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	at := time.Date(2025, 6, 10, hour, minute, 0, 0, loc)
	return func() time.Time { return at }
}

func testOrder() *models.OrderIntent {
	return &models.OrderIntent{Ticker: "PETR4.SA", Side: models.SideBuy, Qty: 100}
}

func TestSafetyGateAllowsCleanOrder(t *testing.T) {
	gate, err := NewSafetyGate(testSafetyConfig(), &fakeLedger{pnl: 0}, NewPaperBroker(), clockAt(t, 11, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dec, err := gate.Validate(context.Background(), testOrder(), 10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dec.OK || dec.Reason != "OK" {
		t.Fatalf("got %+v, want ok", dec)
	}
}

func TestSafetyGateBrokerOffline(t *testing.T) {
	broker := NewPaperBroker()
	broker.SetOffline(true)
	gate, _ := NewSafetyGate(testSafetyConfig(), &fakeLedger{}, broker, clockAt(t, 11, 0))
	dec, err := gate.Validate(context.Background(), testOrder(), 10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dec.OK || dec.Reason != "BROKER_OFFLINE" {
		t.Fatalf("got %+v, want BROKER_OFFLINE", dec)
	}
}

func TestSafetyGateTradingWindows(t *testing.T) {
	cases := []struct {
		name   string
		hour   int
		minute int
		reason string
	}{
		{"pre-open auction", 9, 50, "AUCTION_PRE_OPEN"},
		{"close auction", 17, 50, "AUCTION_CLOSE"},
		{"before session", 8, 0, "OUTSIDE_MARKET_HOURS"},
		{"after session", 19, 0, "OUTSIDE_MARKET_HOURS"},
	}
	for _, tc := range cases {
		gate, err := NewSafetyGate(testSafetyConfig(), &fakeLedger{}, NewPaperBroker(), clockAt(t, tc.hour, tc.minute))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		dec, err := gate.Validate(context.Background(), testOrder(), 10000)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if dec.OK || dec.Reason != tc.reason {
			t.Fatalf("%s: got %+v, want %s", tc.name, dec, tc.reason)
		}
	}
}

func TestSafetyGatePositionAlreadyOpen(t *testing.T) {
	broker := NewPaperBroker()
	broker.SetPositions([]models.Position{{Ticker: "petr4.sa", Qty: 100, Side: models.SideBuy}})
	gate, _ := NewSafetyGate(testSafetyConfig(), &fakeLedger{}, broker, clockAt(t, 11, 0))
	dec, err := gate.Validate(context.Background(), testOrder(), 10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dec.OK || dec.Reason != "POSITION_ALREADY_OPEN" {
		t.Fatalf("got %+v, want POSITION_ALREADY_OPEN", dec)
	}

	// The check is policy-flagged: with require_flat off the same order
	// passes.
	cfg := testSafetyConfig()
	cfg.RequireFlat = false
	gate, _ = NewSafetyGate(cfg, &fakeLedger{}, broker, clockAt(t, 11, 0))
	dec, _ = gate.Validate(context.Background(), testOrder(), 10000)
	if !dec.OK {
		t.Fatalf("got %+v, want ok with require_flat disabled", dec)
	}
}

func TestSafetyGateKillSwitch(t *testing.T) {
	gate, _ := NewSafetyGate(testSafetyConfig(), &fakeLedger{pnl: -350}, NewPaperBroker(), clockAt(t, 11, 0))
	dec, err := gate.Validate(context.Background(), testOrder(), 10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dec.OK {
		t.Fatalf("expected kill-switch denial, got %+v", dec)
	}
	if want := "KILL_SWITCH_DAILY_LOSS pnl=-350.00 limit=-300.00"; dec.Reason != want {
		t.Fatalf("reason = %q, want %q", dec.Reason, want)
	}
}

func TestSafetyGateKillSwitchBoundary(t *testing.T) {
	// Exactly at the limit still trips: pnl must exceed the limit to pass.
	gate, _ := NewSafetyGate(testSafetyConfig(), &fakeLedger{pnl: -300}, NewPaperBroker(), clockAt(t, 11, 0))
	dec, _ := gate.Validate(context.Background(), testOrder(), 10000)
	if dec.OK {
		t.Fatalf("pnl == limit must deny, got %+v", dec)
	}
}

func TestSafetyGateConfigValidation(t *testing.T) {
	var ce *analytics.ConfigError

	cfg := testSafetyConfig()
	cfg.MarketTZ = "Not/AZone"
	if _, err := NewSafetyGate(cfg, &fakeLedger{}, NewPaperBroker(), nil); !errors.As(err, &ce) {
		t.Fatalf("bad tz should be ConfigError, got %v", err)
	}

	cfg = testSafetyConfig()
	cfg.OpenHHMM = "25:00"
	if _, err := NewSafetyGate(cfg, &fakeLedger{}, NewPaperBroker(), nil); !errors.As(err, &ce) {
		t.Fatalf("bad window should be ConfigError, got %v", err)
	}

	cfg = testSafetyConfig()
	cfg.MaxDailyLossPct = 0
	if _, err := NewSafetyGate(cfg, &fakeLedger{}, NewPaperBroker(), nil); !errors.As(err, &ce) {
		t.Fatalf("zero loss limit should be ConfigError, got %v", err)
	}
}

func TestSafetyGateLedgerErrorPropagates(t *testing.T) {
	gate, _ := NewSafetyGate(testSafetyConfig(), &fakeLedger{err: errors.New("ch down")}, NewPaperBroker(), clockAt(t, 11, 0))
	if _, err := gate.Validate(context.Background(), testOrder(), 10000); err == nil {
		t.Fatalf("expected error when ledger read fails")
	}
}
