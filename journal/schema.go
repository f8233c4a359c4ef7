// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	id TEXT PRIMARY KEY,
	account_id TEXT NOT NULL,
	order_id TEXT NOT NULL,
	position_id TEXT NOT NULL,
	symbol TEXT NOT NULL,
	asset_type TEXT NOT NULL,
	side TEXT NOT NULL,
	quantity REAL NOT NULL,
	price REAL NOT NULL,
	pnl REAL,
	time DATETIME NOT NULL,
	type TEXT NOT NULL,
	reason TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_trades_account_time ON trades(account_id, time);
CREATE INDEX IF NOT EXISTS idx_trades_position ON trades(position_id);

CREATE TABLE IF NOT EXISTS equity (
	account_id TEXT NOT NULL,
	time DATETIME NOT NULL,
	balance REAL NOT NULL,
	equity REAL NOT NULL,
	margin_used REAL NOT NULL,
	free_margin REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_equity_account_time ON equity(account_id, time);
`
