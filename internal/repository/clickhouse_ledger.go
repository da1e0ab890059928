package repository

import (
	"context"
	"database/sql"
	"fmt"

	"AtlasQuant/internal/domain/models"
	drepo "AtlasQuant/internal/domain/repository"
)

// ClickHouseLedger implements LedgerStore on a ClickHouse table. Orders are
// append-only; realized P&L lands on closing records and is aggregated per
// UTC day for the kill switch.
type ClickHouseLedger struct {
	db    *sql.DB
	table string
}

// NewClickHouseLedger creates a ledger store on the given table.
func NewClickHouseLedger(db *sql.DB, table string) drepo.LedgerStore {
	if table == "" {
		table = "order_ledger"
	}
	return &ClickHouseLedger{db: db, table: table}
}

// Init ensures the ledger table exists.
func (s *ClickHouseLedger) Init(ctx context.Context) error {
	q := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		timestamp_utc String,
		ticker        String,
		side          String,
		order_type    String,
		tif           String,
		qty           Int64,
		notional      Float64,
		price_ref     Float64,
		limit_price   Nullable(Float64),
		stop          Nullable(Float64),
		target        Nullable(Float64),
		risk_pct      Float64,
		regime        String,
		score         Float64,
		cost_bps      Int32,
		status        String,
		tags          String,
		realized_pnl  Float64
	) ENGINE = MergeTree() ORDER BY (timestamp_utc, ticker)`, s.table)
	if _, err := s.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("ledger init: %w", err)
	}
	return nil
}

// LogOrder appends one intent. The write is synchronous so the daily P&L
// read that follows can never miss it.
func (s *ClickHouseLedger) LogOrder(ctx context.Context, intent *models.OrderIntent) error {
	q := fmt.Sprintf(`INSERT INTO %s (
		timestamp_utc, ticker, side, order_type, tif, qty, notional, price_ref,
		limit_price, stop, target, risk_pct, regime, score, cost_bps, status, tags, realized_pnl
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.table)

	_, err := s.db.ExecContext(ctx, q,
		intent.TimestampUTC,
		intent.Ticker,
		intent.Side,
		intent.OrderType,
		intent.TIF,
		intent.Qty,
		intent.Notional,
		intent.PriceRef,
		intent.LimitPrice,
		intent.Stop,
		intent.Target,
		intent.RiskPct,
		intent.Regime,
		intent.Score,
		int32(intent.CostBps),
		intent.Status,
		intent.Tags,
		intent.RealizedPnL,
	)
	if err != nil {
		return fmt.Errorf("ledger insert: %w", err)
	}
	return nil
}

// ReadLedger returns the most recent intents, newest first.
func (s *ClickHouseLedger) ReadLedger(ctx context.Context, limit int) ([]models.OrderIntent, error) {
	if limit <= 0 {
		limit = 100
	}
	q := fmt.Sprintf(`SELECT
		timestamp_utc, ticker, side, order_type, tif, qty, notional, price_ref,
		limit_price, stop, target, risk_pct, regime, score, cost_bps, status, tags, realized_pnl
	FROM %s ORDER BY timestamp_utc DESC LIMIT ?`, s.table)

	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("ledger read: %w", err)
	}
	defer rows.Close()

	var out []models.OrderIntent
	for rows.Next() {
		var it models.OrderIntent
		var costBps int32
		if err := rows.Scan(
			&it.TimestampUTC, &it.Ticker, &it.Side, &it.OrderType, &it.TIF,
			&it.Qty, &it.Notional, &it.PriceRef,
			&it.LimitPrice, &it.Stop, &it.Target,
			&it.RiskPct, &it.Regime, &it.Score, &costBps,
			&it.Status, &it.Tags, &it.RealizedPnL,
		); err != nil {
			return nil, fmt.Errorf("ledger scan: %w", err)
		}
		it.CostBps = int(costBps)
		out = append(out, it)
	}
	return out, rows.Err()
}

// DailyRealizedPnL sums realized P&L over intents stamped on the given UTC
// date (YYYY-MM-DD).
func (s *ClickHouseLedger) DailyRealizedPnL(ctx context.Context, dateUTC string) (float64, error) {
	q := fmt.Sprintf(
		"SELECT sum(realized_pnl) FROM %s WHERE substring(timestamp_utc, 1, 10) = ?", s.table)

	var pnl sql.NullFloat64
	if err := s.db.QueryRowContext(ctx, q, dateUTC).Scan(&pnl); err != nil {
		return 0, fmt.Errorf("daily pnl: %w", err)
	}
	return pnl.Float64, nil
}

// Health pings the underlying pool.
func (s *ClickHouseLedger) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close is a no-op; the pool is owned by the clickhouse client.
func (s *ClickHouseLedger) Close() error {
	return nil
}
