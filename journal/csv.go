package journal

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"
)

var (
	tradesHeader = []string{"id", "account_id", "order_id", "position_id", "symbol", "asset_type", "side", "quantity", "price", "pnl", "time", "type", "reason"}
	equityHeader = []string{"account_id", "time", "balance", "equity", "margin_used", "free_margin"}
)

// CSV appends history to two CSV files for export. Reads are served from
// an in-memory index of the records written by this process.
type CSV struct {
	*Memory

	mu     sync.Mutex
	trades *csv.Writer
	equity *csv.Writer
	tf, ef *os.File
}

func NewCSV(tradesPath, equityPath string) (*CSV, error) {
	tf, tw, err := createCSV(tradesPath, tradesHeader)
	if err != nil {
		return nil, err
	}
	ef, ew, err := createCSV(equityPath, equityHeader)
	if err != nil {
		_ = tf.Close()
		return nil, err
	}
	return &CSV{Memory: NewMemory(), trades: tw, equity: ew, tf: tf, ef: ef}, nil
}

// createCSV truncates path and writes header. The file is closed on any
// failure.
func createCSV(path string, header []string) (*os.File, *csv.Writer, error) {
	fh, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	w := csv.NewWriter(fh)
	if err := w.Write(header); err != nil {
		_ = fh.Close()
		return nil, nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = fh.Close()
		return nil, nil, fmt.Errorf("write %s header: %w", path, err)
	}
	return fh, w, nil
}

func (j *CSV) RecordTrade(t TradeRecord) error {
	pnl := ""
	if t.PnL != nil {
		pnl = f(*t.PnL)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	err := j.trades.Write([]string{
		t.ID,
		t.AccountID,
		t.OrderID,
		t.PositionID,
		t.Symbol,
		string(t.AssetClass),
		string(t.Side),
		f(t.Quantity),
		f(t.Price),
		pnl,
		t.Time.UTC().Format(time.RFC3339Nano),
		string(t.Type),
		t.Reason,
	})
	if err != nil {
		return err
	}
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	return j.Memory.RecordTrade(t)
}

func (j *CSV) RecordEquity(e EquitySnapshot) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	err := j.equity.Write([]string{
		e.AccountID,
		e.Time.UTC().Format(time.RFC3339Nano),
		f(e.Balance),
		f(e.Equity),
		f(e.MarginUsed),
		f(e.FreeMargin),
	})
	if err != nil {
		return err
	}
	j.equity.Flush()
	if err := j.equity.Error(); err != nil {
		return err
	}
	return j.Memory.RecordEquity(e)
}

func (j *CSV) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	j.equity.Flush()
	if err := j.equity.Error(); err != nil {
		return err
	}

	if err := j.tf.Close(); err != nil {
		return err
	}
	return j.ef.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
