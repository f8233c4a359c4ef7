package sim

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/papertrader/market"
)

func TestErrorKinds(t *testing.T) {
	t.Parallel()

	err := newError(KindInsufficientMargin, "need %d", 5)
	assert.ErrorIs(t, err, ErrInsufficientMargin)
	assert.NotErrorIs(t, err, ErrInvalidQuantity)
	assert.Equal(t, "need 5", err.Error())

	wrapped := fmt.Errorf("place: %w", err)
	assert.Equal(t, KindInsufficientMargin, KindOf(wrapped))
	assert.ErrorIs(t, wrapped, ErrInsufficientMargin)
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, KindUnknownSymbol, KindOf(fmt.Errorf("%w: XYZ", market.ErrUnknownSymbol)))
	assert.Equal(t, KindInternal, KindOf(errors.New("disk full")))

	qe := quoteError("XYZ", market.ErrUnknownSymbol)
	assert.Equal(t, KindUnknownSymbol, KindOf(qe))
	assert.ErrorIs(t, qe, market.ErrUnknownSymbol)
}

func TestKindNotFound(t *testing.T) {
	t.Parallel()

	assert.True(t, KindAccountNotFound.NotFound())
	assert.True(t, KindPositionNotFound.NotFound())
	assert.True(t, KindOrderNotFound.NotFound())
	assert.False(t, KindInsufficientMargin.NotFound())
	assert.False(t, KindInternal.NotFound())
}
