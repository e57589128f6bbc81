package markets

import (
	"bytes"
	"context"
	"testing"

	"binarytrader/src/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	markets []model.Market
	err     error
}

func (f fakeSource) GetMarkets(ctx context.Context) ([]model.Market, error) {
	return f.markets, f.err
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	err := Print(context.Background(), fakeSource{markets: []model.Market{
		{Symbol: "ETH/USDT", Currency: "ETH", Pair: "USDT", Status: false},
		{Symbol: "BTC/USDT", Currency: "BTC", Pair: "USDT", Status: true},
	}}, &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "ETH/USDT")
	assert.Contains(t, out, "inactive")
	assert.Contains(t, out, "default: BTC/USDT\n")
}

func TestPrintSourceError(t *testing.T) {
	err := Print(context.Background(), fakeSource{err: assert.AnError}, &bytes.Buffer{})
	require.ErrorIs(t, err, assert.AnError)
}
