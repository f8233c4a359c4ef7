package broker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSide(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Side
		wantErr bool
	}{
		{"buy", Buy, false},
		{"SELL", Sell, false},
		{" buy ", Buy, false},
		{"long", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseSide(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseOrderType(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"market", "limit", "stop", "LIMIT"} {
		_, err := ParseOrderType(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseOrderType("iceberg")
	assert.Error(t, err)
}

func TestSideSign(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1.0, Buy.Sign())
	assert.Equal(t, -1.0, Sell.Sign())
}
