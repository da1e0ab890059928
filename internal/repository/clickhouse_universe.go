package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"AtlasQuant/internal/domain/models"
	drepo "AtlasQuant/internal/domain/repository"
)

// ClickHouseUniverse implements UniverseStore on a ReplacingMergeTree so an
// upsert of an existing ticker replaces the prior row.
type ClickHouseUniverse struct {
	db    *sql.DB
	table string
}

// NewClickHouseUniverse creates a universe store on the given table.
func NewClickHouseUniverse(db *sql.DB, table string) drepo.UniverseStore {
	if table == "" {
		table = "universe"
	}
	return &ClickHouseUniverse{db: db, table: table}
}

// Init ensures the catalog table exists.
func (s *ClickHouseUniverse) Init(ctx context.Context) error {
	q := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		name            String,
		category        String,
		ticker          String,
		currency_code   String,
		base            String,
		country         String,
		exchange        String,
		priority_source String,
		bridge_key      String,
		is_active       UInt8,
		updated_at      DateTime DEFAULT now()
	) ENGINE = ReplacingMergeTree(updated_at) ORDER BY ticker`, s.table)
	if _, err := s.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("universe init: %w", err)
	}
	return nil
}

// Upsert inserts or replaces catalog rows, returning how many were written.
// Rows without a ticker are skipped.
func (s *ClickHouseUniverse) Upsert(ctx context.Context, instruments []models.Instrument) (int, error) {
	if len(instruments) == 0 {
		return 0, nil
	}

	values := make([]string, 0, len(instruments))
	args := make([]interface{}, 0, len(instruments)*10)
	for _, in := range instruments {
		if strings.TrimSpace(in.Ticker) == "" {
			continue
		}
		active := uint8(0)
		if in.IsActive {
			active = 1
		}
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			in.Name, in.Category, in.Ticker, in.CurrencyCode, in.Base,
			in.Country, in.Exchange, in.PrioritySource, in.BridgeKey, active,
		)
	}
	if len(values) == 0 {
		return 0, nil
	}

	q := fmt.Sprintf(`INSERT INTO %s (
		name, category, ticker, currency_code, base, country, exchange,
		priority_source, bridge_key, is_active
	) VALUES %s`, s.table, strings.Join(values, ","))
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return 0, fmt.Errorf("universe upsert: %w", err)
	}
	return len(values), nil
}

// List returns catalog rows, optionally filtered by category and activity.
// FINAL collapses replaced versions of the same ticker.
func (s *ClickHouseUniverse) List(ctx context.Context, category string, onlyActive bool) ([]models.Instrument, error) {
	var where []string
	var args []interface{}
	if category != "" {
		where = append(where, "category = ?")
		args = append(args, category)
	}
	if onlyActive {
		where = append(where, "is_active = 1")
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	q := fmt.Sprintf(`SELECT
		name, category, ticker, currency_code, base, country, exchange,
		priority_source, bridge_key, is_active
	FROM %s FINAL%s ORDER BY ticker`, s.table, clause)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("universe list: %w", err)
	}
	defer rows.Close()

	var out []models.Instrument
	for rows.Next() {
		var in models.Instrument
		var active uint8
		if err := rows.Scan(
			&in.Name, &in.Category, &in.Ticker, &in.CurrencyCode, &in.Base,
			&in.Country, &in.Exchange, &in.PrioritySource, &in.BridgeKey, &active,
		); err != nil {
			return nil, fmt.Errorf("universe scan: %w", err)
		}
		in.IsActive = active == 1
		out = append(out, in)
	}
	return out, rows.Err()
}

// Close is a no-op; the pool is owned by the clickhouse client.
func (s *ClickHouseUniverse) Close() error {
	return nil
}
