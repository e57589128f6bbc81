package connectors

import (
	"errors"
	"sync"
	"testing"

	"github.com/nntaoli-project/goex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTickerSource struct {
	mu     sync.Mutex
	prices map[string]float64
	asked  []string
}

func (f *fakeTickerSource) GetTicker(pair goex.CurrencyPair) (*goex.Ticker, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := pair.CurrencyA.Symbol + "/" + pair.CurrencyB.Symbol
	f.asked = append(f.asked, key)
	p, ok := f.prices[key]
	if !ok {
		return nil, errors.New("unknown pair")
	}
	return &goex.Ticker{Pair: pair, Last: p}, nil
}

func TestCurrencyPairFor(t *testing.T) {
	cases := []struct {
		in          string
		base, quote string
		ok          bool
	}{
		{in: "BTC/USDT", base: "BTC", quote: "USDT", ok: true},
		{in: "btcusdt", base: "BTC", quote: "USDT", ok: true},
		{in: "DOGEUSDT", base: "DOGE", quote: "USDT", ok: true},
		{in: "ETH-BTC", base: "ETH", quote: "BTC", ok: true},
		{in: "USDT", ok: false},
		{in: "", ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			pair, ok := CurrencyPairFor(tc.in)
			require.Equal(t, tc.ok, ok)
			if ok {
				assert.Equal(t, tc.base, pair.CurrencyA.Symbol)
				assert.Equal(t, tc.quote, pair.CurrencyB.Symbol)
			}
		})
	}
}

func TestTickerPollerPollOnce(t *testing.T) {
	src := &fakeTickerSource{prices: map[string]float64{"BTC/USDT": 50100, "ETH/USDT": 0}}
	p := NewTickerPoller(src, 0)
	p.Track("BTC/USDT", "ETH/USDT", "XRP/USDT", " ")

	got := map[string]float64{}
	p.PollOnce(func(symbol string, price float64) { got[symbol] = price })

	assert.Equal(t, map[string]float64{"BTC/USDT": 50100}, got)
	assert.Len(t, src.asked, 3)

	p.Track()
	src.asked = nil
	p.PollOnce(func(string, float64) { t.Fatal("no symbols tracked") })
	assert.Empty(t, src.asked)
}
