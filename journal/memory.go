package journal

import "sync"

// Memory keeps history in process memory. It is the default journal and
// loses everything on restart.
type Memory struct {
	mu     sync.RWMutex
	trades map[string][]TradeRecord
	equity map[string][]EquitySnapshot
}

func NewMemory() *Memory {
	return &Memory{
		trades: make(map[string][]TradeRecord),
		equity: make(map[string][]EquitySnapshot),
	}
}

func (m *Memory) RecordTrade(t TradeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trades[t.AccountID] = append(m.trades[t.AccountID], t)
	return nil
}

func (m *Memory) RecordEquity(e EquitySnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.equity[e.AccountID] = append(m.equity[e.AccountID], e)
	return nil
}

func (m *Memory) Trades(accountID string, limit int) ([]TradeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return tail(m.trades[accountID], limit), nil
}

// Equity returns every snapshot recorded for an account.
func (m *Memory) Equity(accountID string) []EquitySnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]EquitySnapshot, len(m.equity[accountID]))
	copy(out, m.equity[accountID])
	return out
}

func (m *Memory) Close() error { return nil }
