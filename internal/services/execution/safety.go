package execution

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"AtlasQuant/internal/domain/models"
	drepo "AtlasQuant/internal/domain/repository"
	"AtlasQuant/internal/services/analytics"
)

// SafetyConfig describes the trading window and the daily-loss kill switch.
// HHMM fields use "15:04" notation in the market's local time zone.
type SafetyConfig struct {
	MarketTZ            string  `yaml:"market_tz"`
	OpenHHMM            string  `yaml:"open_hhmm"`
	CloseHHMM           string  `yaml:"close_hhmm"`
	AuctionPreOpenStart string  `yaml:"auction_pre_open_start"`
	AuctionPreOpenEnd   string  `yaml:"auction_pre_open_end"`
	AuctionCloseStart   string  `yaml:"auction_close_start"`
	AuctionCloseEnd     string  `yaml:"auction_close_end"`
	MaxDailyLossPct     float64 `yaml:"max_daily_loss_pct"`
	RequireFlat         bool    `yaml:"require_flat"`
}

// SafetyGate runs the pre-submission checks, short-circuiting on the first
// failure. Denials are control outcomes carrying a reason code, not errors.
type SafetyGate struct {
	cfg    SafetyConfig
	loc    *time.Location
	store  drepo.LedgerStore
	broker drepo.Broker
	now    func() time.Time
}

// NewSafetyGate resolves the market time zone and validates the window
// configuration up front. A nil clock defaults to time.Now.
func NewSafetyGate(cfg SafetyConfig, store drepo.LedgerStore, broker drepo.Broker, now func() time.Time) (*SafetyGate, error) {
	loc, err := time.LoadLocation(cfg.MarketTZ)
	if err != nil {
		return nil, analytics.NewConfigError("market_tz", fmt.Sprintf("unknown time zone %q", cfg.MarketTZ))
	}
	for _, hhmm := range []string{
		cfg.OpenHHMM, cfg.CloseHHMM,
		cfg.AuctionPreOpenStart, cfg.AuctionPreOpenEnd,
		cfg.AuctionCloseStart, cfg.AuctionCloseEnd,
	} {
		if _, _, err := parseHHMM(hhmm); err != nil {
			return nil, analytics.NewConfigError("trading_window", err.Error())
		}
	}
	if cfg.MaxDailyLossPct <= 0 {
		return nil, analytics.NewConfigError("max_daily_loss_pct", "must be positive")
	}
	if now == nil {
		now = time.Now
	}
	return &SafetyGate{cfg: cfg, loc: loc, store: store, broker: broker, now: now}, nil
}

// Validate runs the gate for one order intent against current capital.
func (g *SafetyGate) Validate(ctx context.Context, order *models.OrderIntent, capital float64) (models.SafetyDecision, error) {
	if !g.broker.Ping(ctx) {
		return models.SafetyDecision{OK: false, Reason: "BROKER_OFFLINE"}, nil
	}

	if ok, reason := g.tradingTime(); !ok {
		return models.SafetyDecision{OK: false, Reason: reason}, nil
	}

	if g.cfg.RequireFlat {
		positions, err := g.broker.OpenPositions(ctx)
		if err != nil {
			return models.SafetyDecision{}, fmt.Errorf("open positions: %w", err)
		}
		if HasOpenPosition(positions, order.Ticker) {
			return models.SafetyDecision{OK: false, Reason: "POSITION_ALREADY_OPEN"}, nil
		}
	}

	dateUTC := g.now().UTC().Format("2006-01-02")
	pnl, err := g.store.DailyRealizedPnL(ctx, dateUTC)
	if err != nil {
		return models.SafetyDecision{}, fmt.Errorf("daily realized pnl: %w", err)
	}
	limit := -(capital * g.cfg.MaxDailyLossPct / 100.0)
	if pnl <= limit {
		return models.SafetyDecision{
			OK:     false,
			Reason: fmt.Sprintf("KILL_SWITCH_DAILY_LOSS pnl=%.2f limit=%.2f", pnl, limit),
		}, nil
	}

	return models.SafetyDecision{OK: true, Reason: "OK"}, nil
}

// tradingTime checks the auction blackouts first, then the session window.
func (g *SafetyGate) tradingTime() (bool, string) {
	now := g.now().In(g.loc)
	if g.inRange(now, g.cfg.AuctionPreOpenStart, g.cfg.AuctionPreOpenEnd) {
		return false, "AUCTION_PRE_OPEN"
	}
	if g.inRange(now, g.cfg.AuctionCloseStart, g.cfg.AuctionCloseEnd) {
		return false, "AUCTION_CLOSE"
	}
	if !g.inRange(now, g.cfg.OpenHHMM, g.cfg.CloseHHMM) {
		return false, "OUTSIDE_MARKET_HOURS"
	}
	return true, "OK"
}

func (g *SafetyGate) inRange(now time.Time, start, end string) bool {
	sh, sm, _ := parseHHMM(start)
	eh, em, _ := parseHHMM(end)
	st := time.Date(now.Year(), now.Month(), now.Day(), sh, sm, 0, 0, now.Location())
	en := time.Date(now.Year(), now.Month(), now.Day(), eh, em, 0, 0, now.Location())
	return !now.Before(st) && !now.After(en)
}

func parseHHMM(hhmm string) (int, int, error) {
	parts := strings.Split(hhmm, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid HH:MM value %q", hhmm)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", hhmm)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", hhmm)
	}
	return h, m, nil
}
