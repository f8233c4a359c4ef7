package sim

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/papertrader/broker"
	"github.com/rustyeddy/papertrader/internal/id"
	"github.com/rustyeddy/papertrader/journal"
	"github.com/rustyeddy/papertrader/market"
)

// Close reasons recorded on positions and journal entries.
const (
	ReasonManual        = "manual"
	ReasonStopLoss      = "stop_loss"
	ReasonTakeProfit    = "take_profit"
	ReasonAccountClosed = "account_closed"
)

const DefaultQuoteTimeout = 2 * time.Second

var _ broker.Broker = (*Engine)(nil)

// Observer is notified of engine events. Calls happen after the account
// lock is released, so an observer may call back into the engine.
type Observer interface {
	OrderFilled(o Order)
	OrderRejected(symbol string, kind Kind)
	PositionClosed(p Position, realized float64, reason string)
}

// AccountDefaults fill the fields a create request leaves out.
type AccountDefaults struct {
	Balance  float64
	Currency string
	Leverage int
}

func DefaultAccountDefaults() AccountDefaults {
	return AccountDefaults{Balance: 10000, Currency: "USD", Leverage: market.DefaultLeverage(market.Forex)}
}

// Engine routes orders against the store: it prices them, checks margin,
// opens and closes positions, and keeps each account's ledger consistent.
type Engine struct {
	reg          *market.Registry
	feed         market.PriceFeed
	journal      journal.Journal
	store        *Store
	ids          *id.Generator
	now          func() time.Time
	log          *zap.Logger
	defaults     AccountDefaults
	quoteTimeout time.Duration

	obsMu    sync.RWMutex
	observer Observer
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func WithQuoteTimeout(d time.Duration) Option {
	return func(e *Engine) { e.quoteTimeout = d }
}

func WithAccountDefaults(d AccountDefaults) Option {
	return func(e *Engine) { e.defaults = d }
}

func NewEngine(reg *market.Registry, feed market.PriceFeed, j journal.Journal, opts ...Option) *Engine {
	e := &Engine{
		reg:          reg,
		feed:         feed,
		journal:      j,
		store:        NewStore(),
		now:          time.Now,
		log:          zap.NewNop(),
		defaults:     DefaultAccountDefaults(),
		quoteTimeout: DefaultQuoteTimeout,
	}
	for _, o := range opts {
		o(e)
	}
	if e.journal == nil {
		e.journal = journal.NewMemory()
	}
	e.ids = id.NewGenerator(e.now)
	return e
}

// SetObserver installs an optional observer. Pass nil to remove it.
func (e *Engine) SetObserver(o Observer) {
	e.obsMu.Lock()
	defer e.obsMu.Unlock()
	e.observer = o
}

// SetQuoteTimeout must be called before the engine is shared.
func (e *Engine) SetQuoteTimeout(d time.Duration) { e.quoteTimeout = d }

func (e *Engine) Registry() *market.Registry { return e.reg }

// Quote prices symbol through the feed, bounded by the quote timeout.
func (e *Engine) Quote(ctx context.Context, symbol string) (market.Quote, error) {
	if e.quoteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.quoteTimeout)
		defer cancel()
	}
	q, err := e.feed.Quote(ctx, symbol)
	if err != nil {
		return market.Quote{}, quoteError(symbol, err)
	}
	return q, nil
}

func (e *Engine) CreateAccount(ctx context.Context, req broker.CreateAccountRequest) (Account, error) {
	if err := ctx.Err(); err != nil {
		return Account{}, err
	}

	balance := e.defaults.Balance
	if req.InitialBalance != nil {
		balance = *req.InitialBalance
	}
	if !(balance > 0) {
		return Account{}, newError(KindInvalidRequest, "initial balance must be positive")
	}

	leverage := e.defaults.Leverage
	if req.Leverage != nil {
		leverage = *req.Leverage
	}
	if leverage < 1 {
		return Account{}, newError(KindInvalidRequest, "leverage must be at least 1")
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = e.defaults.Currency
	}

	allowed := append([]market.AssetClass(nil), market.AllAssetClasses...)
	if len(req.AllowedAssetClasses) > 0 {
		allowed = allowed[:0]
		seen := make(map[market.AssetClass]bool)
		for _, s := range req.AllowedAssetClasses {
			c, err := market.ParseAssetClass(s)
			if err != nil {
				return Account{}, &Error{Kind: KindInvalidRequest, Msg: "allowed asset types", Err: err}
			}
			if !seen[c] {
				seen[c] = true
				allowed = append(allowed, c)
			}
		}
	}

	now := e.now()
	a := Account{
		ID:                  e.ids.New(),
		UserID:              req.UserID,
		Currency:            currency,
		Leverage:            leverage,
		InitialBalance:      balance,
		Balance:             balance,
		Equity:              balance,
		FreeMargin:          balance,
		Status:              AccountActive,
		AllowedAssetClasses: allowed,
		CreatedAt:           now,
	}
	e.store.addAccount(a)
	e.snapshot(a, now)

	e.log.Info("account created",
		zap.String("account_id", a.ID),
		zap.Int64("user_id", a.UserID),
		zap.Float64("balance", a.Balance),
		zap.Int("leverage", a.Leverage))
	return a.clone(), nil
}

func (e *Engine) PlaceOrder(ctx context.Context, req broker.PlaceOrderRequest) (broker.OrderResult, error) {
	o, p, err := e.placeOrder(ctx, req)
	if err != nil {
		e.notifyRejected(req.Symbol, KindOf(err))
		return broker.OrderResult{}, err
	}
	e.notifyFilled(o)

	return broker.OrderResult{
		OrderID:        o.ID,
		PositionID:     p.ID,
		ExecutionPrice: o.Price,
		RequiredMargin: o.RequiredMargin,
		AssetClass:     o.AssetClass,
		LeverageUsed:   o.Leverage,
	}, nil
}

func (e *Engine) placeOrder(ctx context.Context, req broker.PlaceOrderRequest) (Order, Position, error) {
	side, err := broker.ParseSide(string(req.Side))
	if err != nil {
		return Order{}, Position{}, &Error{Kind: KindInvalidRequest, Err: err}
	}
	otype := broker.Market
	if req.OrderType != "" {
		if otype, err = broker.ParseOrderType(string(req.OrderType)); err != nil {
			return Order{}, Position{}, &Error{Kind: KindInvalidRequest, Err: err}
		}
	}
	if !(req.Quantity > 0) {
		return Order{}, Position{}, newError(KindInvalidQuantity, "quantity must be positive, got %g", req.Quantity)
	}
	if req.Price != nil && !(*req.Price > 0) {
		return Order{}, Position{}, newError(KindInvalidRequest, "price must be positive")
	}

	st, err := e.store.account(req.AccountID)
	if err != nil {
		return Order{}, Position{}, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if !st.acct.Active() {
		return Order{}, Position{}, newError(KindAccountNotActive, "account %s is %s", st.acct.ID, st.acct.Status)
	}

	in, err := e.reg.Lookup(req.Symbol)
	if err != nil {
		return Order{}, Position{}, quoteError(req.Symbol, err)
	}
	if !st.acct.Allows(in.AssetClass) {
		return Order{}, Position{}, newError(KindAssetClassNotAllowed,
			"asset type %s is not allowed for account %s", in.AssetClass, st.acct.ID)
	}

	var price float64
	if otype != broker.Market && req.Price != nil {
		price = *req.Price
	} else {
		q, err := e.Quote(ctx, in.Symbol)
		if err != nil {
			return Order{}, Position{}, err
		}
		price = q.Ask
		if side == broker.Sell {
			price = q.Bid
		}
	}

	leverage := effectiveLeverage(in.AssetClass, st.acct.Leverage)
	margin := RequiredMargin(in.AssetClass, price, req.Quantity, in.ContractSize, leverage)

	a := st.acct.clone()
	if err := a.ReserveMargin(margin); err != nil {
		return Order{}, Position{}, err
	}

	now := e.now()
	o := Order{
		ID:             e.ids.New(),
		AccountID:      a.ID,
		Symbol:         in.Symbol,
		AssetClass:     in.AssetClass,
		Type:           otype,
		Side:           side,
		Quantity:       req.Quantity,
		Price:          price,
		StopLoss:       cloneFloat(req.StopLoss),
		TakeProfit:     cloneFloat(req.TakeProfit),
		RequiredMargin: margin,
		ContractSize:   in.ContractSize,
		Leverage:       leverage,
		Status:         OrderFilled,
		CreatedAt:      now,
	}
	p := OpenPosition(e.ids.New(), o)

	if err := e.journal.RecordTrade(journal.TradeRecord{
		ID:         e.ids.New(),
		AccountID:  a.ID,
		OrderID:    o.ID,
		PositionID: p.ID,
		Symbol:     o.Symbol,
		AssetClass: o.AssetClass,
		Side:       o.Side,
		Quantity:   o.Quantity,
		Price:      o.Price,
		Time:       now,
		Type:       journal.EventOpen,
	}); err != nil {
		return Order{}, Position{}, fmt.Errorf("record open: %w", err)
	}

	st.acct = a
	e.store.addFill(st, o, p)
	e.snapshot(a, now)

	return cloneOrder(o), clonePosition(p), nil
}

func (e *Engine) ClosePosition(ctx context.Context, req broker.ClosePositionRequest) (broker.CloseResult, error) {
	st, err := e.store.positionAccount(req.PositionID)
	if err != nil {
		return broker.CloseResult{}, err
	}
	reason := req.Reason
	if reason == "" {
		reason = ReasonManual
	}

	st.mu.Lock()
	res, ev, err := e.closeHeld(ctx, st, req.PositionID, req.Quantity, reason)
	st.mu.Unlock()
	if err != nil {
		return broker.CloseResult{}, err
	}

	e.notifyClosed(ev)
	return res, nil
}

// closeHeld closes qty of a position at market. The caller holds st.mu.
func (e *Engine) closeHeld(ctx context.Context, st *accountState, positionID string, qty *float64, reason string) (broker.CloseResult, closeEvent, error) {
	pos, err := e.store.position(positionID)
	if err != nil {
		return broker.CloseResult{}, closeEvent{}, err
	}
	if !pos.IsOpen() {
		return broker.CloseResult{}, closeEvent{}, newError(KindPositionNotOpen, "position %s is not open", pos.ID)
	}
	q := pos.RemainingQuantity
	if qty != nil {
		q = *qty
	}
	if q <= 0 || q > pos.RemainingQuantity+qtyEpsilon {
		return broker.CloseResult{}, closeEvent{}, newError(KindInvalidQuantity,
			"close quantity %g must be in (0, %g]", q, pos.RemainingQuantity)
	}

	quote, err := e.Quote(ctx, pos.Symbol)
	if err != nil {
		return broker.CloseResult{}, closeEvent{}, err
	}

	res, ev, err := e.closeLocked(st, pos, q, markPrice(pos.Side, quote), reason)
	if err != nil {
		return broker.CloseResult{}, closeEvent{}, err
	}
	e.snapshot(st.acct, e.now())
	return res, ev, nil
}

type closeEvent struct {
	pos      Position
	realized float64
	reason   string
}

// closeLocked realizes qty of pos at price and books the result into the
// account. Nothing is mutated unless the journal accepts the record.
// The caller holds st.mu.
func (e *Engine) closeLocked(st *accountState, pos *Position, qty, price float64, reason string) (broker.CloseResult, closeEvent, error) {
	now := e.now()
	p := clonePosition(*pos)
	realized, released, err := p.Close(price, qty, now, reason)
	if err != nil {
		return broker.CloseResult{}, closeEvent{}, err
	}
	closedQty := pos.RemainingQuantity - p.RemainingQuantity

	a := st.acct.clone()
	a.ReleaseMargin(released)
	a.ApplyRealizedPnL(realized, e.openUnrealized(st, p))
	a.RecordTradeOutcome(realized)

	pnl := realized
	if err := e.journal.RecordTrade(journal.TradeRecord{
		ID:         e.ids.New(),
		AccountID:  a.ID,
		OrderID:    p.OrderID,
		PositionID: p.ID,
		Symbol:     p.Symbol,
		AssetClass: p.AssetClass,
		Side:       p.Side,
		Quantity:   closedQty,
		Price:      price,
		PnL:        &pnl,
		Time:       now,
		Type:       journal.EventClose,
		Reason:     reason,
	}); err != nil {
		return broker.CloseResult{}, closeEvent{}, fmt.Errorf("record close: %w", err)
	}

	*pos = p
	st.acct = a

	return broker.CloseResult{
			PositionID:        p.ID,
			ClosePrice:        price,
			RealizedPnL:       realized,
			AssetClass:        p.AssetClass,
			RemainingQuantity: p.RemainingQuantity,
			Closed:            !p.IsOpen(),
		}, closeEvent{
			pos:      clonePosition(p),
			realized: realized,
			reason:   reason,
		}, nil
}

// openUnrealized sums the stored unrealized P&L of the account's open
// positions, with updated standing in for its stored copy.
func (e *Engine) openUnrealized(st *accountState, updated Position) float64 {
	var sum float64
	for _, p := range e.store.openPositions(st) {
		if p.ID == updated.ID {
			continue
		}
		sum += p.UnrealizedPnL
	}
	if updated.IsOpen() {
		sum += updated.UnrealizedPnL
	}
	return sum
}

// RefreshAccount marks every open position to market and recomputes the
// account's equity and free margin. Repeated calls at unchanged prices give
// identical results.
func (e *Engine) RefreshAccount(ctx context.Context, accountID string) (Account, error) {
	st, err := e.store.account(accountID)
	if err != nil {
		return Account{}, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, _, err := e.refreshLocked(ctx, st); err != nil {
		return Account{}, err
	}
	return st.acct.clone(), nil
}

// refreshLocked quotes every open symbol before touching any position, so
// a failed quote leaves the account as it was. The caller holds st.mu.
func (e *Engine) refreshLocked(ctx context.Context, st *accountState) ([]*Position, map[string]market.Quote, error) {
	open := e.store.openPositions(st)
	quotes := make(map[string]market.Quote)
	for _, p := range open {
		if _, ok := quotes[p.Symbol]; ok {
			continue
		}
		q, err := e.Quote(ctx, p.Symbol)
		if err != nil {
			return nil, nil, err
		}
		quotes[p.Symbol] = q
	}

	var unrealized float64
	for _, p := range open {
		pnl, _ := p.MarkToMarket(markPrice(p.Side, quotes[p.Symbol]))
		unrealized += pnl
	}
	st.acct.Revalue(unrealized)
	return open, quotes, nil
}

// CloseAccount liquidates every open position at market and marks the
// account closed. A closed account rejects new orders.
func (e *Engine) CloseAccount(ctx context.Context, accountID, reason string) (Account, error) {
	st, err := e.store.account(accountID)
	if err != nil {
		return Account{}, err
	}
	if reason == "" {
		reason = ReasonAccountClosed
	}

	st.mu.Lock()
	acct, events, err := e.closeAccountLocked(ctx, st, reason)
	st.mu.Unlock()

	for _, ev := range events {
		e.notifyClosed(ev)
	}
	if err != nil {
		return Account{}, err
	}
	e.log.Info("account closed",
		zap.String("account_id", acct.ID),
		zap.Float64("balance", acct.Balance),
		zap.Int("positions_closed", len(events)))
	return acct, nil
}

func (e *Engine) closeAccountLocked(ctx context.Context, st *accountState, reason string) (Account, []closeEvent, error) {
	if !st.acct.Active() {
		return Account{}, nil, newError(KindAccountNotActive, "account %s is already %s", st.acct.ID, st.acct.Status)
	}

	open, quotes, err := e.refreshLocked(ctx, st)
	if err != nil {
		return Account{}, nil, err
	}

	var events []closeEvent
	for _, p := range open {
		_, ev, err := e.closeLocked(st, p, p.RemainingQuantity, markPrice(p.Side, quotes[p.Symbol]), reason)
		if err != nil {
			return Account{}, events, err
		}
		events = append(events, ev)
	}

	now := e.now()
	st.acct.Status = AccountClosed
	st.acct.ClosedAt = &now
	e.snapshot(st.acct, now)
	return st.acct.clone(), events, nil
}

// CheckTriggers refreshes an account and closes every position whose stop
// loss or take profit is hit at its mark price. It returns the IDs of the
// positions it closed.
func (e *Engine) CheckTriggers(ctx context.Context, accountID string) ([]string, error) {
	st, err := e.store.account(accountID)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	events, err := e.checkTriggersLocked(ctx, st)
	st.mu.Unlock()

	ids := make([]string, 0, len(events))
	for _, ev := range events {
		ids = append(ids, ev.pos.ID)
		e.notifyClosed(ev)
	}
	return ids, err
}

func (e *Engine) checkTriggersLocked(ctx context.Context, st *accountState) ([]closeEvent, error) {
	if !st.acct.Active() {
		return nil, nil
	}
	open, quotes, err := e.refreshLocked(ctx, st)
	if err != nil {
		return nil, err
	}

	var events []closeEvent
	for _, p := range open {
		mark := markPrice(p.Side, quotes[p.Symbol])
		var reason string
		switch {
		case p.StopLossHit(mark):
			reason = ReasonStopLoss
		case p.TakeProfitHit(mark):
			reason = ReasonTakeProfit
		default:
			continue
		}
		_, ev, err := e.closeLocked(st, p, p.RemainingQuantity, mark, reason)
		if err != nil {
			return events, err
		}
		events = append(events, ev)
	}
	if len(events) > 0 {
		e.snapshot(st.acct, e.now())
	}
	return events, nil
}

// SweepTriggers runs CheckTriggers over every account. Failures on one
// account do not stop the sweep.
func (e *Engine) SweepTriggers(ctx context.Context) ([]string, error) {
	var (
		closed []string
		errs   []error
	)
	for _, aid := range e.store.accountIDs() {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		ids, err := e.CheckTriggers(ctx, aid)
		closed = append(closed, ids...)
		if err != nil {
			errs = append(errs, fmt.Errorf("account %s: %w", aid, err))
		}
	}
	return closed, errors.Join(errs...)
}

// Account returns a copy of the stored account without revaluing it.
func (e *Engine) Account(accountID string) (Account, error) {
	st, err := e.store.account(accountID)
	if err != nil {
		return Account{}, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.acct.clone(), nil
}

func (e *Engine) AccountIDs() []string { return e.store.accountIDs() }

// Positions lists an account's positions in fill order.
func (e *Engine) Positions(accountID string, includeClosed bool) ([]Position, error) {
	st, err := e.store.account(accountID)
	if err != nil {
		return nil, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	var out []Position
	for _, p := range e.store.allPositions(st) {
		if p.IsOpen() || includeClosed {
			out = append(out, clonePosition(*p))
		}
	}
	return out, nil
}

func (e *Engine) Position(positionID string) (Position, error) {
	st, err := e.store.positionAccount(positionID)
	if err != nil {
		return Position{}, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	pos, err := e.store.position(positionID)
	if err != nil {
		return Position{}, err
	}
	return clonePosition(*pos), nil
}

func (e *Engine) Order(orderID string) (Order, error) {
	o, ok := e.store.order(orderID)
	if !ok {
		return Order{}, newError(KindOrderNotFound, "order %s not found", orderID)
	}
	return cloneOrder(o), nil
}

// History returns the most recent limit journal records for an account,
// oldest first. limit <= 0 returns all of them.
func (e *Engine) History(ctx context.Context, accountID string, limit int) ([]journal.TradeRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := e.store.account(accountID); err != nil {
		return nil, err
	}
	recs, err := e.journal.Trades(accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("history %s: %w", accountID, err)
	}
	return recs, nil
}

// snapshot records the ledger after a mutation. State is already
// committed, so a failure is only logged.
func (e *Engine) snapshot(a Account, at time.Time) {
	err := e.journal.RecordEquity(journal.EquitySnapshot{
		AccountID:  a.ID,
		Time:       at,
		Balance:    a.Balance,
		Equity:     a.Equity,
		MarginUsed: a.MarginUsed,
		FreeMargin: a.FreeMargin,
	})
	if err != nil {
		e.log.Warn("equity snapshot failed", zap.String("account_id", a.ID), zap.Error(err))
	}
}

func (e *Engine) obs() Observer {
	e.obsMu.RLock()
	defer e.obsMu.RUnlock()
	return e.observer
}

func (e *Engine) notifyFilled(o Order) {
	e.log.Debug("order filled",
		zap.String("account_id", o.AccountID),
		zap.String("order_id", o.ID),
		zap.String("symbol", o.Symbol),
		zap.String("side", string(o.Side)),
		zap.Float64("price", o.Price))
	if obs := e.obs(); obs != nil {
		obs.OrderFilled(o)
	}
}

func (e *Engine) notifyRejected(symbol string, kind Kind) {
	e.log.Debug("order rejected", zap.String("symbol", symbol), zap.String("kind", string(kind)))
	if obs := e.obs(); obs != nil {
		obs.OrderRejected(symbol, kind)
	}
}

func (e *Engine) notifyClosed(ev closeEvent) {
	e.log.Debug("position closed",
		zap.String("account_id", ev.pos.AccountID),
		zap.String("position_id", ev.pos.ID),
		zap.String("reason", ev.reason),
		zap.Float64("realized_pnl", ev.realized))
	if obs := e.obs(); obs != nil {
		obs.PositionClosed(ev.pos, ev.realized, ev.reason)
	}
}
