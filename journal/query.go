package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/papertrader/broker"
	"github.com/rustyeddy/papertrader/market"
)

const tradeColumns = `id, account_id, order_id, position_id, symbol, asset_type, side, quantity, price, pnl, time, type, reason`

type scanner interface {
	Scan(dest ...any) error
}

func scanTrade(s scanner) (TradeRecord, error) {
	var (
		rec              TradeRecord
		class, side, typ string
		pnl              sql.NullFloat64
	)
	err := s.Scan(
		&rec.ID,
		&rec.AccountID,
		&rec.OrderID,
		&rec.PositionID,
		&rec.Symbol,
		&class,
		&side,
		&rec.Quantity,
		&rec.Price,
		&pnl,
		&rec.Time,
		&typ,
		&rec.Reason,
	)
	if err != nil {
		return TradeRecord{}, err
	}
	rec.AssetClass = market.AssetClass(class)
	rec.Side = broker.Side(side)
	rec.Type = EventType(typ)
	if pnl.Valid {
		v := pnl.Float64
		rec.PnL = &v
	}
	return rec, nil
}

func collectTrades(rows *sql.Rows) ([]TradeRecord, error) {
	defer rows.Close()
	var out []TradeRecord
	for rows.Next() {
		rec, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Trades returns the newest limit records for an account, oldest first.
func (j *SQLite) Trades(accountID string, limit int) ([]TradeRecord, error) {
	if limit <= 0 {
		rows, err := j.db.Query(`
			SELECT `+tradeColumns+`
			FROM trades
			WHERE account_id = ?
			ORDER BY time ASC, rowid ASC`, accountID)
		if err != nil {
			return nil, err
		}
		return collectTrades(rows)
	}

	rows, err := j.db.Query(`
		SELECT `+tradeColumns+`
		FROM trades
		WHERE account_id = ?
		ORDER BY time DESC, rowid DESC
		LIMIT ?`, accountID, limit)
	if err != nil {
		return nil, err
	}
	out, err := collectTrades(rows)
	if err != nil {
		return nil, err
	}
	for i, k := 0, len(out)-1; i < k; i, k = i+1, k-1 {
		out[i], out[k] = out[k], out[i]
	}
	return out, nil
}

// GetTrade returns a single record by ID.
func (j *SQLite) GetTrade(recordID string) (TradeRecord, error) {
	row := j.db.QueryRow(`
		SELECT `+tradeColumns+`
		FROM trades
		WHERE id = ?`, recordID)

	rec, err := scanTrade(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TradeRecord{}, fmt.Errorf("trade record %q not found", recordID)
		}
		return TradeRecord{}, err
	}
	return rec, nil
}

// ListTradesBetween returns records of every account with time in [start, end).
func (j *SQLite) ListTradesBetween(start, end time.Time) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT `+tradeColumns+`
		FROM trades
		WHERE time >= ? AND time < ?
		ORDER BY time ASC, rowid ASC`, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	return collectTrades(rows)
}

// ListEquity returns an account's equity curve.
func (j *SQLite) ListEquity(accountID string) ([]EquitySnapshot, error) {
	rows, err := j.db.Query(`
		SELECT account_id, time, balance, equity, margin_used, free_margin
		FROM equity
		WHERE account_id = ?
		ORDER BY time ASC, rowid ASC`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var e EquitySnapshot
		if err := rows.Scan(&e.AccountID, &e.Time, &e.Balance, &e.Equity, &e.MarginUsed, &e.FreeMargin); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
