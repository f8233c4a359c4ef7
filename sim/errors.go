package sim

import (
	"errors"
	"fmt"

	"github.com/rustyeddy/papertrader/market"
)

// Kind is the machine-readable class of an engine error.
type Kind string

const (
	KindUnknownSymbol        Kind = "unknown_symbol"
	KindAssetClassNotAllowed Kind = "asset_class_not_allowed"
	KindInsufficientMargin   Kind = "insufficient_margin"
	KindAccountNotFound      Kind = "account_not_found"
	KindAccountNotActive     Kind = "account_not_active"
	KindPositionNotFound     Kind = "position_not_found"
	KindPositionNotOpen      Kind = "position_not_open"
	KindOrderNotFound        Kind = "order_not_found"
	KindInvalidQuantity      Kind = "invalid_quantity"
	KindInvalidRequest       Kind = "invalid_request"
	KindInternal             Kind = "internal"
)

// Error is returned for every rejected request. Two Errors match under
// errors.Is when their kinds are equal.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrUnknownSymbol        = &Error{Kind: KindUnknownSymbol}
	ErrAssetClassNotAllowed = &Error{Kind: KindAssetClassNotAllowed}
	ErrInsufficientMargin   = &Error{Kind: KindInsufficientMargin}
	ErrAccountNotFound      = &Error{Kind: KindAccountNotFound}
	ErrAccountNotActive     = &Error{Kind: KindAccountNotActive}
	ErrPositionNotFound     = &Error{Kind: KindPositionNotFound}
	ErrPositionNotOpen      = &Error{Kind: KindPositionNotOpen}
	ErrOrderNotFound        = &Error{Kind: KindOrderNotFound}
	ErrInvalidQuantity      = &Error{Kind: KindInvalidQuantity}
	ErrInvalidRequest       = &Error{Kind: KindInvalidRequest}
)

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// quoteError classifies a price-feed failure.
func quoteError(symbol string, err error) error {
	if errors.Is(err, market.ErrUnknownSymbol) {
		return &Error{Kind: KindUnknownSymbol, Msg: fmt.Sprintf("symbol %s not found", symbol), Err: err}
	}
	return fmt.Errorf("quote %s: %w", symbol, err)
}

// NotFound reports whether kind names a missing entity.
func (k Kind) NotFound() bool {
	switch k {
	case KindAccountNotFound, KindPositionNotFound, KindOrderNotFound:
		return true
	}
	return false
}

// KindOf reports the kind of err, or KindInternal when err did not come
// from the engine's taxonomy.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, market.ErrUnknownSymbol) {
		return KindUnknownSymbol
	}
	return KindInternal
}
