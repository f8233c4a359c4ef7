package sim

import (
	"sort"
	"sync"
)

// Store owns every account, order and position. The RWMutex guards the
// maps; each account's mutex guards that account and its positions.
// owners maps a position to its account so the account lock can be taken
// before the position is read.
type Store struct {
	mu        sync.RWMutex
	accounts  map[string]*accountState
	positions map[string]*Position
	owners    map[string]string
	orders    map[string]Order
}

type accountState struct {
	mu        sync.Mutex
	acct      Account
	positions []string
}

func NewStore() *Store {
	return &Store{
		accounts:  make(map[string]*accountState),
		positions: make(map[string]*Position),
		owners:    make(map[string]string),
		orders:    make(map[string]Order),
	}
}

func (s *Store) addAccount(a Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.ID] = &accountState{acct: a}
}

func (s *Store) account(id string) (*accountState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.accounts[id]
	if !ok {
		return nil, newError(KindAccountNotFound, "account %s not found", id)
	}
	return st, nil
}

// addFill stores the order and its position. The caller holds st.mu.
func (s *Store) addFill(st *accountState, o Order, p Position) {
	s.mu.Lock()
	s.orders[o.ID] = o
	s.positions[p.ID] = &p
	s.owners[p.ID] = p.AccountID
	s.mu.Unlock()
	st.positions = append(st.positions, p.ID)
}

// positionAccount returns the account that owns a position.
func (s *Store) positionAccount(id string) (*accountState, error) {
	s.mu.RLock()
	aid, ok := s.owners[id]
	st := s.accounts[aid]
	s.mu.RUnlock()
	if !ok || st == nil {
		return nil, newError(KindPositionNotFound, "position %s not found", id)
	}
	return st, nil
}

// position returns the stored position. The caller holds the owning
// account's mutex.
func (s *Store) position(id string) (*Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.positions[id]
	if !ok {
		return nil, newError(KindPositionNotFound, "position %s not found", id)
	}
	return p, nil
}

// openPositions returns the live positions of an account in fill order.
// The caller holds st.mu.
func (s *Store) openPositions(st *accountState) []*Position {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Position
	for _, pid := range st.positions {
		if p := s.positions[pid]; p != nil && p.IsOpen() {
			out = append(out, p)
		}
	}
	return out
}

func (s *Store) allPositions(st *accountState) []*Position {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Position, 0, len(st.positions))
	for _, pid := range st.positions {
		if p := s.positions[pid]; p != nil {
			out = append(out, p)
		}
	}
	return out
}

func (s *Store) order(id string) (Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	return o, ok
}

func (s *Store) accountIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.accounts))
	for id := range s.accounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func clonePosition(p Position) Position {
	p.StopLoss = cloneFloat(p.StopLoss)
	p.TakeProfit = cloneFloat(p.TakeProfit)
	p.ClosePrice = cloneFloat(p.ClosePrice)
	if p.ClosedAt != nil {
		t := *p.ClosedAt
		p.ClosedAt = &t
	}
	return p
}

func cloneOrder(o Order) Order {
	o.StopLoss = cloneFloat(o.StopLoss)
	o.TakeProfit = cloneFloat(o.TakeProfit)
	return o
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
