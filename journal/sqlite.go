package journal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite persists history in a SQLite database so it survives restarts.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// A single connection serialises writers; SQLite would otherwise
	// return SQLITE_BUSY under concurrent inserts.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply journal schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	var pnl sql.NullFloat64
	if t.PnL != nil {
		pnl = sql.NullFloat64{Float64: *t.PnL, Valid: true}
	}
	_, err := j.db.Exec(`
		INSERT INTO trades
		(id, account_id, order_id, position_id, symbol, asset_type, side, quantity, price, pnl, time, type, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.AccountID, t.OrderID, t.PositionID, t.Symbol, string(t.AssetClass),
		string(t.Side), t.Quantity, t.Price, pnl, t.Time.UTC(), string(t.Type), t.Reason,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(account_id, time, balance, equity, margin_used, free_margin)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.AccountID, e.Time.UTC(), e.Balance, e.Equity, e.MarginUsed, e.FreeMargin,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
